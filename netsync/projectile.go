package netsync

import (
	"time"

	"github.com/bastionworks/ironclad-mp/shared/gamemath"
	"github.com/bastionworks/ironclad-mp/shared/messages"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// ProjectileTuning controls remote shell tracking.
type ProjectileTuning struct {
	MaxLifetime time.Duration // removed after this even without a hit message
	RecentSync  time.Duration // shells synced this recently are not dead reckoned
	LaunchDelay time.Duration // visibility deferred to absorb transmission latency
}

// DefaultProjectileTuning matches the 20 Hz projectile sync cadence.
func DefaultProjectileTuning() ProjectileTuning {
	return ProjectileTuning{
		MaxLifetime: 8 * time.Second,
		RecentSync:  50 * time.Millisecond,
		LaunchDelay: 100 * time.Millisecond,
	}
}

const projectileFadeIn = 0.1 // seconds, visual only

// ProjectileState is one remote-fired shell's kinematic state.
type ProjectileState struct {
	ID       uint
	OwnerID  uint
	Position gamemath.Vec3
	Velocity gamemath.Vec3
	Cannon   messages.CannonType

	SpawnedAt time.Time
	LastSync  time.Time

	fade  *gween.Tween
	alpha float32
}

// Alpha is the render opacity, ramping in over the first visible frames.
func (p *ProjectileState) Alpha() float32 {
	return p.alpha
}

// ProjectileTracker renders remote-fired shells with minimal, cheap
// simulation. Local shells are never tracked here; local prediction renders
// those.
type ProjectileTracker struct {
	tuning  ProjectileTuning
	localID uint

	shells  map[uint]*ProjectileState
	removed []uint

	// localOwned remembers ids whose spawn was rejected as locally owned, so
	// the server's broadcast updates for them cannot sneak back in through
	// Sync's lazy registration. Entries age out with the shell lifetime.
	localOwned map[uint]time.Time
}

// NewProjectileTracker creates a tracker that rejects shells owned by
// localID.
func NewProjectileTracker(localID uint, tuning ProjectileTuning) *ProjectileTracker {
	return &ProjectileTracker{
		tuning:     tuning,
		localID:    localID,
		shells:     make(map[uint]*ProjectileState),
		localOwned: make(map[uint]time.Time),
	}
}

// Spawn begins tracking a shell. Local-owned and non-finite spawns are
// rejected. A re-spawn of a tracked id overwrites it (latest wins).
func (t *ProjectileTracker) Spawn(ev messages.ProjectileSpawn, now time.Time) bool {
	if ev.OwnerID == t.localID {
		t.localOwned[ev.ID] = now
		return false
	}
	pos := gamemath.Vec3{X: ev.X, Y: ev.Y, Z: ev.Z}
	vel := gamemath.Vec3{X: ev.VelX, Y: ev.VelY, Z: ev.VelZ}
	if !pos.IsFinite() || !vel.IsFinite() {
		return false
	}

	t.shells[ev.ID] = &ProjectileState{
		ID:        ev.ID,
		OwnerID:   ev.OwnerID,
		Position:  pos,
		Velocity:  vel,
		Cannon:    ev.Cannon,
		SpawnedAt: now,
		LastSync:  now,
		fade:      gween.New(0, 1, projectileFadeIn, ease.OutQuad),
	}
	return true
}

// Sync overwrites a shell's kinematic state from a periodic network update.
// Latest wins, no queue. An update for an untracked id lazily registers it
// (its spawn message may have been lost) unless the id was rejected as
// locally owned.
func (t *ProjectileTracker) Sync(ev messages.ProjectileUpdate, now time.Time) {
	if _, ok := t.localOwned[ev.ID]; ok {
		return
	}
	pos := gamemath.Vec3{X: ev.X, Y: ev.Y, Z: ev.Z}
	vel := gamemath.Vec3{X: ev.VelX, Y: ev.VelY, Z: ev.VelZ}
	if !pos.IsFinite() || !vel.IsFinite() {
		return
	}

	shell, ok := t.shells[ev.ID]
	if !ok {
		shell = &ProjectileState{
			ID:        ev.ID,
			SpawnedAt: now,
			fade:      gween.New(0, 1, projectileFadeIn, ease.OutQuad),
		}
		t.shells[ev.ID] = shell
	}
	shell.Position = pos
	shell.Velocity = vel
	shell.LastSync = now
}

// Hit stops tracking a shell and queues its removal for the renderer.
func (t *ProjectileTracker) Hit(id uint) {
	delete(t.localOwned, id)
	if _, ok := t.shells[id]; !ok {
		return
	}
	delete(t.shells, id)
	t.removed = append(t.removed, id)
}

// Advance steps every tracked shell by dt seconds. Shells without a recent
// sync dead reckon along their last known velocity; shells past the maximum
// lifetime are removed.
func (t *ProjectileTracker) Advance(now time.Time, dt float64) {
	for id, at := range t.localOwned {
		if now.Sub(at) > t.tuning.MaxLifetime {
			delete(t.localOwned, id)
		}
	}
	for id, shell := range t.shells {
		if now.Sub(shell.SpawnedAt) > t.tuning.MaxLifetime {
			delete(t.shells, id)
			t.removed = append(t.removed, id)
			continue
		}
		if now.Sub(shell.LastSync) > t.tuning.RecentSync {
			shell.Position = shell.Position.Add(shell.Velocity.Scale(dt))
		}
		if t.Visible(shell, now) {
			shell.alpha, _ = shell.fade.Update(float32(dt))
		}
	}
}

// Visible reports whether a shell has passed its launch delay.
func (t *ProjectileTracker) Visible(shell *ProjectileState, now time.Time) bool {
	return now.Sub(shell.SpawnedAt) >= t.tuning.LaunchDelay
}

// Each calls fn for every tracked shell. Iteration order is unspecified.
func (t *ProjectileTracker) Each(fn func(*ProjectileState)) {
	for _, shell := range t.shells {
		fn(shell)
	}
}

// Get returns a tracked shell by id.
func (t *ProjectileTracker) Get(id uint) (*ProjectileState, bool) {
	shell, ok := t.shells[id]
	return shell, ok
}

// Len returns the number of tracked shells.
func (t *ProjectileTracker) Len() int {
	return len(t.shells)
}

// DrainRemoved returns ids removed since the last call, so the renderer can
// release their resources.
func (t *ProjectileTracker) DrainRemoved() []uint {
	out := t.removed
	t.removed = nil
	return out
}

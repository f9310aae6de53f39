package netsync

import (
	"time"

	"github.com/bastionworks/ironclad-mp/shared/gamemath"
	"github.com/bastionworks/ironclad-mp/shared/messages"
	"github.com/bastionworks/ironclad-mp/tags"
	"github.com/leap-fish/necs/esync"
	"github.com/yohamta/donburi"
)

// NetInterp carries a remote tank's interpolation state on its entity.
var NetInterp = donburi.NewComponentType[InterpState]()

// Phase is the registry's renderer-readiness state. Messages that arrive
// while Pending are deferred and drained exactly once on the Ready
// transition; there are no retry timers.
type Phase uint8

const (
	PhasePending Phase = iota
	PhaseReady
)

// deferredCap bounds the pending-message FIFO. When full the oldest entry is
// dropped; only the newest positional truth matters.
const deferredCap = 256

type deferredMsg struct {
	msg any
	at  time.Time
}

// Options configures a Registry.
type Options struct {
	LocalID uint

	Interp     InterpTuning
	Reconcile  ReconcileTuning
	Projectile ProjectileTuning

	// RejoinWindow is how long a departed id stays tombstoned. Partial
	// snapshots for a tombstoned id are dropped; a full roster listing the
	// id clears the tombstone.
	RejoinWindow time.Duration

	MetricsWindow time.Duration

	// PredictedAt returns the locally predicted position for an input
	// sequence, for reconciliation diff computation.
	PredictedAt func(seq uint32) (gamemath.Vec3, bool)

	// LocalPose returns the local tank's current predicted pose.
	LocalPose func() (Pose, bool)
}

/// Registry is the one place with entity lifecycle authority: an id-keyed map
// per entity kind, scoped to the match session. It owns the remote tank
// entities inside the donburi world, the projectile tracker, and the local
// reconciler.
type Registry struct {
	world donburi.World
	opts  Options

	reconciler  *LocalReconciler
	projectiles *ProjectileTracker
	metrics     *SyncMetrics

	tanks      map[uint]donburi.Entity
	tombstones map[uint]time.Time

	localState    messages.TankSnapshot
	hasLocalState bool

	phase    Phase
	deferred []deferredMsg
	attach   func(*donburi.Entry)
}

// NewRegistry creates a registry in the Pending phase.
func NewRegistry(world donburi.World, opts Options) *Registry {
	if opts.Interp.StaleAfter == 0 {
		opts.Interp = DefaultInterpTuning()
	}
	if opts.Reconcile.HardThreshold == 0 {
		opts.Reconcile = DefaultReconcileTuning()
	}
	if opts.Projectile.MaxLifetime == 0 {
		opts.Projectile = DefaultProjectileTuning()
	}
	if opts.RejoinWindow == 0 {
		opts.RejoinWindow = 3 * time.Second
	}
	if opts.MetricsWindow == 0 {
		opts.MetricsWindow = 5 * time.Second
	}

	metrics := NewSyncMetrics(opts.MetricsWindow)
	return &Registry{
		world:       world,
		opts:        opts,
		reconciler:  NewLocalReconciler(opts.Reconcile, metrics),
		projectiles: NewProjectileTracker(opts.LocalID, opts.Projectile),
		metrics:     metrics,
		tanks:       make(map[uint]donburi.Entity),
		tombstones:  make(map[uint]time.Time),
	}
}

// Options reports the resolved configuration the registry runs with,
// defaults filled in.
func (r *Registry) Options() Options {
	return r.opts
}

func (r *Registry) Phase() Phase { return r.phase }

func (r *Registry) World() donburi.World { return r.world }

func (r *Registry) Reconciler() *LocalReconciler { return r.reconciler }

func (r *Registry) Projectiles() *ProjectileTracker { return r.projectiles }

func (r *Registry) Metrics() *SyncMetrics { return r.metrics }

// SetReady transitions Pending → Ready and drains the deferred queue exactly
// once, in arrival order. attach, if non-nil, is invoked on every remote
// tank entry the registry creates, so the scene can add render components.
// Returns the number of drained messages; later calls are no-ops.
func (r *Registry) SetReady(attach func(*donburi.Entry)) int {
	if r.phase == PhaseReady {
		return 0
	}
	r.phase = PhaseReady
	r.attach = attach

	queued := r.deferred
	r.deferred = nil
	for _, d := range queued {
		r.dispatch(d.msg, d.at)
	}
	return len(queued)
}

// Dispatch routes one decoded message by kind. While Pending the message is
// deferred. A malformed message affects at most its own entity; the tick
// loop always completes.
func (r *Registry) Dispatch(msg any, now time.Time) {
	if r.phase == PhasePending {
		if len(r.deferred) >= deferredCap {
			r.deferred = r.deferred[1:]
		}
		r.deferred = append(r.deferred, deferredMsg{msg: msg, at: now})
		return
	}
	r.dispatch(msg, now)
}

func (r *Registry) dispatch(msg any, now time.Time) {
	switch m := msg.(type) {
	case messages.TankSnapshot:
		r.applyTank(m, now, false)

	case messages.Roster:
		present := make(map[uint]bool, len(m.Tanks))
		for _, snap := range m.Tanks {
			present[snap.ID] = true
			r.applyTank(snap, now, true)
		}
		r.pruneAbsent(present, now)

	case messages.Reconciliation:
		r.applyReconciliation(m, now)

	case messages.ProjectileSpawn:
		r.projectiles.Spawn(m, now)

	case messages.ProjectileUpdate:
		r.projectiles.Sync(m, now)

	case messages.ProjectileHit:
		r.projectiles.Hit(m.ID)

	case messages.EntityLeft:
		r.removeTank(m.ID, now)

	default:
		// Unknown kinds are dropped; the closed set above is the protocol.
	}
}

// applyTank routes one tank snapshot: the local id goes to the reconciler,
// everything else to that tank's interpolator, created lazily on first
// sight.
func (r *Registry) applyTank(snap messages.TankSnapshot, now time.Time, roster bool) {
	if snap.ID == r.opts.LocalID {
		r.applyLocal(snap, now)
		return
	}

	if at, ok := r.tombstones[snap.ID]; ok {
		expired := now.Sub(at) >= r.opts.RejoinWindow
		if !expired && !roster {
			// Departed id: drop instead of resurrecting.
			r.metrics.Rejected++
			return
		}
		delete(r.tombstones, snap.ID)
	}

	entity, ok := r.tanks[snap.ID]
	if !ok || !r.world.Valid(entity) {
		entity = r.spawnTank(snap.ID)
	}

	entry := r.world.Entry(entity)
	interp := NetInterp.Get(entry)
	if !interp.OnSnapshot(Snapshot{TankSnapshot: snap, ReceivedAt: now}, r.opts.Interp) {
		r.metrics.Rejected++
	}
}

func (r *Registry) spawnTank(id uint) donburi.Entity {
	entity := r.world.Create(tags.RemoteTank, NetInterp)
	entry := r.world.Entry(entity)

	entry.AddComponent(esync.NetworkIdComponent)
	esync.NetworkIdComponent.SetValue(entry, esync.NetworkId(id))

	if r.attach != nil {
		r.attach(entry)
	}
	r.tanks[id] = entity
	return entity
}

func (r *Registry) applyLocal(snap messages.TankSnapshot, now time.Time) {
	r.localState = snap
	r.hasLocalState = true

	s := Snapshot{TankSnapshot: snap, ReceivedAt: now}
	if !s.Finite() {
		r.metrics.Rejected++
		return
	}
	predicted := s.Pos()
	if r.opts.LocalPose != nil {
		if pose, ok := r.opts.LocalPose(); ok {
			predicted = pose.Position
		}
	}
	r.reconciler.Observe(s.Pose(), predicted, now)
}

func (r *Registry) applyReconciliation(m messages.Reconciliation, now time.Time) {
	server := Pose{
		Position:  gamemath.Vec3{X: m.X, Y: m.Y, Z: m.Z},
		Yaw:       m.Yaw,
		TurretYaw: m.TurretYaw,
		AimPitch:  m.AimPitch,
		Visible:   true,
	}

	predicted := server.Position
	found := false
	if r.opts.PredictedAt != nil {
		predicted, found = r.opts.PredictedAt(m.LastSequence)
	}
	if !found && r.opts.LocalPose != nil {
		if pose, ok := r.opts.LocalPose(); ok {
			predicted = pose.Position
		}
	}
	r.reconciler.Observe(server, predicted, now)
}

func (r *Registry) pruneAbsent(present map[uint]bool, now time.Time) {
	for id := range r.tanks {
		if !present[id] {
			r.removeTank(id, now)
		}
	}
}

// removeTank destroys a tank entity and tombstones the id so late snapshots
// cannot resurrect it.
func (r *Registry) removeTank(id uint, now time.Time) {
	r.tombstones[id] = now
	entity, ok := r.tanks[id]
	if !ok {
		return
	}
	delete(r.tanks, id)
	if r.world.Valid(entity) {
		r.world.Entry(entity).Remove()
	}
}

// Advance is the once-per-tick update pass: every remote tank's pose and
// every tracked shell is recomputed here and nowhere else, so no entity is
// ever observed half-updated within a frame.
func (r *Registry) Advance(now time.Time, dt float64, rtt time.Duration) {
	for id, entity := range r.tanks {
		if !r.world.Valid(entity) {
			delete(r.tanks, id)
			continue
		}
		interp := NetInterp.Get(r.world.Entry(entity))
		interp.Advance(now, dt, rtt, r.opts.Interp)
	}
	r.projectiles.Advance(now, dt)
}

// Pose returns the current rendered pose for a remote tank.
func (r *Registry) Pose(id uint) (Pose, bool) {
	entity, ok := r.tanks[id]
	if !ok || !r.world.Valid(entity) {
		return Pose{}, false
	}
	return NetInterp.Get(r.world.Entry(entity)).Current, true
}

// EachTank calls fn for every live remote tank.
func (r *Registry) EachTank(fn func(id uint, state *InterpState)) {
	for id, entity := range r.tanks {
		if r.world.Valid(entity) {
			fn(id, NetInterp.Get(r.world.Entry(entity)))
		}
	}
}

// TankCount returns the number of live remote tanks.
func (r *Registry) TankCount() int {
	return len(r.tanks)
}

// LocalState returns the server's latest belief about the local tank
// (health, status), if any has arrived.
func (r *Registry) LocalState() (messages.TankSnapshot, bool) {
	return r.localState, r.hasLocalState
}

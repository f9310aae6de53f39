package core

import (
	"math"
	"time"

	"github.com/bastionworks/ironclad-mp/config"
	"github.com/bastionworks/ironclad-mp/shared/messages"
	"github.com/bastionworks/ironclad-mp/tags"
	"github.com/leap-fish/necs/router"
	"github.com/solarlune/resolv"
)

const (
	shellSize      = 4.0
	mortarGravity  = 180.0 // world units per second squared
	shellGroundY   = 0.5
	shellSyncEvery = 3 // ticks between ProjectileUpdate broadcasts
)

// ServerShell is one in-flight projectile on the authoritative simulation.
type ServerShell struct {
	ID      uint
	Owner   *router.NetworkClient
	OwnerID uint

	X, Y, Z          float64
	VelX, VelY, VelZ float64
	Cannon           messages.CannonType

	Object    *resolv.Object
	SpawnedAt time.Time
}

func (s *Server) spawnShell(client *router.NetworkClient, ts *TankSession) {
	cannon := config.Cannons[uint8(ts.Cannon)]
	if time.Since(ts.LastFire) < cannon.Cooldown {
		return
	}
	ts.LastFire = time.Now()

	pos := ts.Body.Position()
	yaw := ts.Body.TurretYaw
	pitch := ts.Body.AimPitch

	s.nextShellID++
	shell := &ServerShell{
		ID:        s.nextShellID,
		Owner:     client,
		OwnerID:   uint(s.networkID(ts)),
		X:         pos.X,
		Y:         shellGroundY,
		Z:         pos.Z,
		VelX:      math.Cos(yaw) * cannon.Speed,
		VelZ:      math.Sin(yaw) * cannon.Speed,
		Cannon:    ts.Cannon,
		SpawnedAt: time.Now(),
	}
	if ts.Cannon == messages.CannonMortar {
		// Pitch trades horizontal speed for arc height.
		shell.VelY = -pitch * cannon.Speed
	}

	shell.Object = resolv.NewObject(shell.X-shellSize/2, shell.Z-shellSize/2, shellSize, shellSize, tags.ResolvShell)
	shell.Object.SetShape(resolv.NewRectangle(0, 0, shellSize, shellSize))
	s.arena.Space.Add(shell.Object)

	s.shells[shell.ID] = shell

	s.broadcast(messages.ProjectileSpawn{
		ID:      shell.ID,
		OwnerID: shell.OwnerID,
		X:       shell.X, Y: shell.Y, Z: shell.Z,
		VelX: shell.VelX, VelY: shell.VelY, VelZ: shell.VelZ,
		Cannon: shell.Cannon,
	})
}

// updateShells advances every shell by dt seconds, resolving wall and tank
// hits. Runs once per server tick.
func (s *Server) updateShells(dt float64, tickCount uint64) {
	for id, shell := range s.shells {
		if time.Since(shell.SpawnedAt) > config.Projectile.MaxLifetime {
			s.removeShell(id, 0, false)
			continue
		}

		if shell.Cannon == messages.CannonMortar {
			shell.VelY -= mortarGravity * dt
			shell.Y += shell.VelY * dt
			if shell.Y <= 0 {
				s.removeShell(id, 0, true)
				continue
			}
		}

		dx := shell.VelX * dt
		dz := shell.VelZ * dt

		if check := shell.Object.Check(dx, dz, tags.ResolvSolid, tags.ResolvTank); check != nil {
			if spent, targetID := s.resolveShellContact(shell, check); spent {
				s.removeShell(id, targetID, true)
				continue
			}
		}

		shell.X += dx
		shell.Z += dz
		shell.Object.X = shell.X - shellSize/2
		shell.Object.Y = shell.Z - shellSize/2
		shell.Object.Update()

		if tickCount%shellSyncEvery == 0 {
			s.broadcast(messages.ProjectileUpdate{
				ID: shell.ID,
				X:  shell.X, Y: shell.Y, Z: shell.Z,
				VelX: shell.VelX, VelY: shell.VelY, VelZ: shell.VelZ,
			})
		}
	}
}

// resolveShellContact applies damage when a shell reaches a tank, and stops
// it at walls. Returns whether the shell is spent and the hit tank's id.
func (s *Server) resolveShellContact(shell *ServerShell, check *resolv.Collision) (bool, uint) {
	if hulls := check.ObjectsByTags(tags.ResolvTank); len(hulls) > 0 {
		for _, hull := range hulls {
			target := s.sessionByObject(hull)
			if target == nil || !target.alive() {
				continue
			}
			id := s.networkID(target)
			if id == shell.OwnerID {
				continue // no self-hits at the muzzle
			}
			s.applyDamage(target, config.Cannons[uint8(shell.Cannon)].Damage)
			return true, id
		}
	}
	if solids := check.ObjectsByTags(tags.ResolvSolid); len(solids) > 0 {
		return true, 0
	}
	return false, 0
}

func (s *Server) removeShell(id, targetID uint, broadcastHit bool) {
	shell, ok := s.shells[id]
	if !ok {
		return
	}
	delete(s.shells, id)
	s.arena.Space.Remove(shell.Object)

	if broadcastHit {
		s.broadcast(messages.ProjectileHit{ID: id, TargetID: targetID})
	}
}

package systems

import (
	"github.com/bastionworks/ironclad-mp/netsync"
	"github.com/bastionworks/ironclad-mp/network"
	"github.com/bastionworks/ironclad-mp/shared/gamemath"
	"github.com/bastionworks/ironclad-mp/shared/leveldata"
	"github.com/bastionworks/ironclad-mp/shared/messages"
	"github.com/bastionworks/ironclad-mp/tags"
	"github.com/solarlune/resolv"
)

// NetPrediction owns client-side prediction state for the local tank. The
// same drive model runs on the server; the reconciler only has to absorb the
// residual drift.
type NetPrediction struct {
	Buffer *network.PredictionBuffer

	Space *resolv.Space
	Body  *network.TankBody

	// Pose is the local tank's render pose, kept in lockstep with Body.
	Pose netsync.Pose

	Initialized bool // true after the first authoritative spawn position
}

// NewNetPrediction creates a new prediction system.
func NewNetPrediction() *NetPrediction {
	return &NetPrediction{
		Buffer: &network.PredictionBuffer{},
	}
}

// InitCollision builds a resolv space from the arena walls and places the
// hull body at a spawn point.
func (p *NetPrediction) InitCollision(arena *leveldata.Arena, spawnX, spawnZ float64) {
	p.Space = resolv.NewSpace(int(arena.Width), int(arena.Depth), 16, 16)

	for _, w := range arena.Walls {
		obj := resolv.NewObject(w.X, w.Z, w.Width, w.Depth, tags.ResolvSolid)
		obj.SetShape(resolv.NewRectangle(0, 0, w.Width, w.Depth))
		p.Space.Add(obj)
	}

	p.Body = network.NewTankBody(p.Space, spawnX, spawnZ)
	p.Pose = netsync.Pose{Position: p.Body.Position(), Visible: true}
}

// PredictStep applies one 60 Hz drive step, folds in any pending server
// correction, and records the outcome for later reconciliation.
func (p *NetPrediction) PredictStep(input messages.DriveInput, reconciler *netsync.LocalReconciler) {
	if p.Body == nil {
		return
	}

	p.Body.Step(input)
	pos, yaw, turretYaw, aimPitch := p.Body.Pose()
	p.Pose.Position = pos
	p.Pose.Yaw = yaw
	p.Pose.TurretYaw = turretYaw
	p.Pose.AimPitch = aimPitch

	// Corrections run inside the physics step, between integrate and store,
	// so the buffer records the corrected result.
	if reconciler != nil && reconciler.Pending() {
		reconciler.ApplyCorrection(p.Body, &p.Pose)
		// The ignore tier touches only the pose; push the turret back into
		// the body either way.
		p.Body.TurretYaw = p.Pose.TurretYaw
		p.Body.AimPitch = p.Pose.AimPitch
	}

	p.Buffer.Store(input, p.Pose.Position)
}

// AcceptSpawn teleports the body to the server's spawn position before any
// input has been sent. There is nothing to reconcile against yet.
func (p *NetPrediction) AcceptSpawn(pos gamemath.Vec3, yaw float64) {
	if p.Body == nil {
		return
	}
	p.Body.SetTransform(pos, yaw)
	p.Body.Refresh()
	p.Pose.Position = pos
	p.Pose.Yaw = yaw
	p.Initialized = true
}

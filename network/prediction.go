package network

import (
	"math"

	"github.com/bastionworks/ironclad-mp/config"
	"github.com/bastionworks/ironclad-mp/shared/gamemath"
	"github.com/bastionworks/ironclad-mp/shared/messages"
	"github.com/bastionworks/ironclad-mp/tags"
	"github.com/solarlune/resolv"
)

const predictionBufferSize = 64

// InputRecord stores an input alongside the predicted position after applying it.
type InputRecord struct {
	Input     messages.DriveInput
	Predicted gamemath.Vec3
}

// PredictionBuffer is a ring buffer that stores recent inputs and their
// predicted outcomes for server reconciliation.
type PredictionBuffer struct {
	history [predictionBufferSize]InputRecord
	nextSeq uint32
}

// Store saves an input and the resulting predicted position.
func (pb *PredictionBuffer) Store(input messages.DriveInput, predicted gamemath.Vec3) {
	idx := input.Sequence % predictionBufferSize
	pb.history[idx] = InputRecord{
		Input:     input,
		Predicted: predicted,
	}
	pb.nextSeq = input.Sequence + 1
}

// Get retrieves a stored record by sequence number. Returns false if not found
// or if the slot has been overwritten.
func (pb *PredictionBuffer) Get(seq uint32) (InputRecord, bool) {
	idx := seq % predictionBufferSize
	record := pb.history[idx]
	if record.Input.Sequence != seq {
		return InputRecord{}, false
	}
	return record, true
}

// NextSeq returns the next sequence number to assign.
func (pb *PredictionBuffer) NextSeq() uint32 {
	return pb.nextSeq
}

// PredictedAt returns the predicted position for a sequence, for computing
// drift against the server's authoritative result.
func (pb *PredictionBuffer) PredictedAt(seq uint32) (gamemath.Vec3, bool) {
	record, ok := pb.Get(seq)
	if !ok {
		return gamemath.Vec3{}, false
	}
	return record.Predicted, true
}

// GetUnacknowledged returns all stored inputs with sequence numbers greater
// than lastAcked and less than nextSeq (i.e. inputs the server hasn't
// confirmed yet).
func (pb *PredictionBuffer) GetUnacknowledged(lastAcked uint32) []InputRecord {
	var results []InputRecord
	for seq := lastAcked + 1; seq < pb.nextSeq; seq++ {
		if record, ok := pb.Get(seq); ok {
			results = append(results, record)
		}
	}
	return results
}

// TankBody is the local tank's predicted physics state. The arena floor is
// the X/Z plane; the resolv space is 2D with space-Y standing in for
// world-Z. Elevation is flat, so world-Y stays 0 on the client.
type TankBody struct {
	Object *resolv.Object

	Yaw       float64
	TurretYaw float64
	AimPitch  float64

	Speed     float64 // signed, along the hull heading
	kinematic bool
}

// NewTankBody creates the body at a spawn point and registers it in the space.
func NewTankBody(space *resolv.Space, x, z float64) *TankBody {
	size := config.Tank.HullSize
	obj := resolv.NewObject(x-size/2, z-size/2, size, size, tags.ResolvTank)
	obj.SetShape(resolv.NewRectangle(0, 0, size, size))
	space.Add(obj)

	return &TankBody{Object: obj}
}

// Position returns the hull center in world coordinates.
func (b *TankBody) Position() gamemath.Vec3 {
	size := config.Tank.HullSize
	return gamemath.Vec3{X: b.Object.X + size/2, Z: b.Object.Y + size/2}
}

// Pose returns the body's full current pose.
func (b *TankBody) Pose() (gamemath.Vec3, float64, float64, float64) {
	return b.Position(), b.Yaw, b.TurretYaw, b.AimPitch
}

// Step advances the drive model by one 60 Hz step and resolves wall
// collisions. The same model runs on the server; matching it exactly is what
// keeps reconciliation drift inside the ignore band.
func (b *TankBody) Step(input messages.DriveInput) {
	if b.kinematic {
		return
	}

	// Hull turn. Steering works at any speed; tanks turn in place.
	b.Yaw = gamemath.WrapAngle(b.Yaw + float64(input.Steer)*config.Tank.TurnSpeed)

	// Throttle along the heading.
	if input.Throttle != 0 {
		b.Speed += float64(input.Throttle) * config.Tank.Acceleration
	} else {
		b.Speed = gamemath.ApplyFriction(b.Speed, config.Tank.Friction)
	}
	maxFwd := config.Tank.MaxSpeed
	maxRev := config.Tank.MaxSpeed * config.Tank.ReverseScale
	if b.Speed > maxFwd {
		b.Speed = maxFwd
	} else if b.Speed < -maxRev {
		b.Speed = -maxRev
	}

	// Turret slews toward the requested absolute aim, rate limited.
	turretDelta := gamemath.AngleDiff(b.TurretYaw, input.TurretYaw)
	turretDelta = gamemath.ClampSpeed(turretDelta, config.Tank.TurretTurn)
	b.TurretYaw = gamemath.WrapAngle(b.TurretYaw + turretDelta)
	b.AimPitch = input.AimPitch

	dx := math.Cos(b.Yaw) * b.Speed
	dz := math.Sin(b.Yaw) * b.Speed

	// Axis-separated wall resolution, walls stop but never damage.
	if dx != 0 {
		if check := b.Object.Check(dx, 0, tags.ResolvSolid); check != nil {
			if solids := check.ObjectsByTags(tags.ResolvSolid); len(solids) > 0 {
				dx = check.ContactWithObject(solids[0]).X()
			}
		}
		b.Object.X += dx
	}
	if dz != 0 {
		if check := b.Object.Check(0, dz, tags.ResolvSolid); check != nil {
			if solids := check.ObjectsByTags(tags.ResolvSolid); len(solids) > 0 {
				dz = check.ContactWithObject(solids[0]).Y()
			}
		}
		b.Object.Y += dz
	}
	b.Object.Update()
}

// SetKinematic suspends (true) or resumes (false) the drive integration so a
// correction can move the body without the solver reacting.
func (b *TankBody) SetKinematic(k bool) {
	b.kinematic = k
}

// ZeroVelocity clears the hull's drive speed.
func (b *TankBody) ZeroVelocity() {
	b.Speed = 0
}

// SetTransform teleports the body to a world position and heading.
func (b *TankBody) SetTransform(pos gamemath.Vec3, yaw float64) {
	size := config.Tank.HullSize
	b.Object.X = pos.X - size/2
	b.Object.Y = pos.Z - size/2
	b.Yaw = yaw
}

// Refresh re-registers the body's cell occupancy after a direct move.
func (b *TankBody) Refresh() {
	b.Object.Update()
}

package network

import (
	"math"
	"testing"

	"github.com/bastionworks/ironclad-mp/config"
	"github.com/bastionworks/ironclad-mp/shared/gamemath"
	"github.com/bastionworks/ironclad-mp/shared/messages"
	"github.com/bastionworks/ironclad-mp/tags"
	"github.com/solarlune/resolv"
)

func TestPredictionBufferStoreAndGet(t *testing.T) {
	var pb PredictionBuffer

	for seq := uint32(0); seq < 5; seq++ {
		pb.Store(messages.DriveInput{Sequence: seq, Throttle: 1}, gamemath.Vec3{X: float64(seq)})
	}

	for seq := uint32(0); seq < 5; seq++ {
		rec, ok := pb.Get(seq)
		if !ok {
			t.Fatalf("Get(%d) not found", seq)
		}
		if rec.Input.Sequence != seq || rec.Predicted.X != float64(seq) {
			t.Errorf("Get(%d) = seq %d, X %v", seq, rec.Input.Sequence, rec.Predicted.X)
		}
	}

	if _, ok := pb.Get(99); ok {
		t.Error("Get(99) should not find an unstored sequence")
	}
}

func TestPredictionBufferOverwriteInvalidatesOldSeq(t *testing.T) {
	var pb PredictionBuffer

	pb.Store(messages.DriveInput{Sequence: 1}, gamemath.Vec3{X: 1})
	// Same ring slot, 64 sequences later.
	pb.Store(messages.DriveInput{Sequence: 1 + predictionBufferSize}, gamemath.Vec3{X: 2})

	if _, ok := pb.Get(1); ok {
		t.Error("overwritten slot should not serve the old sequence")
	}
	rec, ok := pb.Get(1 + predictionBufferSize)
	if !ok || rec.Predicted.X != 2 {
		t.Errorf("new sequence should be served, got ok=%v X=%v", ok, rec.Predicted.X)
	}
}

func TestPredictionBufferNextSeq(t *testing.T) {
	var pb PredictionBuffer

	if pb.NextSeq() != 0 {
		t.Fatalf("fresh buffer NextSeq = %d, want 0", pb.NextSeq())
	}
	pb.Store(messages.DriveInput{Sequence: 9}, gamemath.Vec3{})
	if pb.NextSeq() != 10 {
		t.Errorf("NextSeq = %d, want 10", pb.NextSeq())
	}
}

func TestPredictedAt(t *testing.T) {
	var pb PredictionBuffer

	pb.Store(messages.DriveInput{Sequence: 3}, gamemath.Vec3{X: 7, Z: -2})

	pos, ok := pb.PredictedAt(3)
	if !ok || pos.X != 7 || pos.Z != -2 {
		t.Errorf("PredictedAt(3) = %v, %v", pos, ok)
	}
	if _, ok := pb.PredictedAt(4); ok {
		t.Error("PredictedAt should miss for an unstored sequence")
	}
}

func TestGetUnacknowledged(t *testing.T) {
	var pb PredictionBuffer

	for seq := uint32(0); seq < 10; seq++ {
		pb.Store(messages.DriveInput{Sequence: seq}, gamemath.Vec3{X: float64(seq)})
	}

	pending := pb.GetUnacknowledged(4)
	if len(pending) != 5 {
		t.Fatalf("unacked count = %d, want 5", len(pending))
	}
	for i, rec := range pending {
		want := uint32(5 + i)
		if rec.Input.Sequence != want {
			t.Errorf("pending[%d].Sequence = %d, want %d", i, rec.Input.Sequence, want)
		}
	}

	if got := pb.GetUnacknowledged(9); len(got) != 0 {
		t.Errorf("fully acked buffer should return nothing, got %d", len(got))
	}
}

func newTestBody() *TankBody {
	space := resolv.NewSpace(1000, 1000, 16, 16)
	return NewTankBody(space, 100, 100)
}

func TestTankBodyAcceleratesToMaxSpeed(t *testing.T) {
	body := newTestBody()

	for i := 0; i < 120; i++ {
		body.Step(messages.DriveInput{Throttle: 1})
	}
	if body.Speed != config.Tank.MaxSpeed {
		t.Errorf("forward speed = %v, want clamp at %v", body.Speed, config.Tank.MaxSpeed)
	}
	if body.Position().X <= 100 {
		t.Errorf("body should have driven +X at yaw 0, got %v", body.Position().X)
	}

	for i := 0; i < 120; i++ {
		body.Step(messages.DriveInput{Throttle: -1})
	}
	maxRev := -config.Tank.MaxSpeed * config.Tank.ReverseScale
	if body.Speed != maxRev {
		t.Errorf("reverse speed = %v, want clamp at %v", body.Speed, maxRev)
	}
}

func TestTankBodyCoastingFrictionStops(t *testing.T) {
	body := newTestBody()
	body.Speed = 1.0

	for i := 0; i < 60; i++ {
		body.Step(messages.DriveInput{})
	}
	if body.Speed != 0 {
		t.Errorf("friction should bring a coasting tank to rest, speed = %v", body.Speed)
	}
}

func TestTankBodyTurretSlewIsRateLimited(t *testing.T) {
	body := newTestBody()

	body.Step(messages.DriveInput{TurretYaw: 1.0})
	if math.Abs(body.TurretYaw-config.Tank.TurretTurn) > 1e-9 {
		t.Errorf("one step should slew exactly %v, got %v", config.Tank.TurretTurn, body.TurretYaw)
	}

	for i := 0; i < 60; i++ {
		body.Step(messages.DriveInput{TurretYaw: 1.0})
	}
	if math.Abs(body.TurretYaw-1.0) > 1e-9 {
		t.Errorf("turret should converge on the requested aim, got %v", body.TurretYaw)
	}
}

func TestTankBodyStopsAtWall(t *testing.T) {
	space := resolv.NewSpace(1000, 1000, 16, 16)
	body := NewTankBody(space, 100, 100)

	wall := resolv.NewObject(120, 50, 10, 100, tags.ResolvSolid)
	space.Add(wall)

	for i := 0; i < 300; i++ {
		body.Step(messages.DriveInput{Throttle: 1})
	}

	// Hull right edge may touch but never penetrate the wall face at x=120.
	rightEdge := body.Object.X + config.Tank.HullSize
	if rightEdge > 120+1e-6 {
		t.Errorf("hull penetrated the wall: right edge at %v", rightEdge)
	}
	if rightEdge < 119 {
		t.Errorf("hull should have driven up against the wall, right edge at %v", rightEdge)
	}
}

func TestTankBodyKinematicFreeze(t *testing.T) {
	body := newTestBody()

	body.SetKinematic(true)
	body.Step(messages.DriveInput{Throttle: 1})
	if got := body.Position(); got.X != 100 || got.Z != 100 {
		t.Errorf("kinematic body must ignore drive input, moved to %v", got)
	}

	body.SetTransform(gamemath.Vec3{X: 300, Z: 200}, math.Pi/2)
	body.Refresh()
	body.ZeroVelocity()
	body.SetKinematic(false)

	got := body.Position()
	if got.X != 300 || got.Z != 200 {
		t.Errorf("SetTransform should place the hull center exactly, got %v", got)
	}
	if body.Yaw != math.Pi/2 {
		t.Errorf("SetTransform yaw = %v", body.Yaw)
	}

	body.Step(messages.DriveInput{Throttle: 1})
	if body.Speed == 0 {
		t.Error("body should drive again after leaving kinematic mode")
	}
}

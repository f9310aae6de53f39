package netsync

import (
	"math"
	"testing"
	"time"

	"github.com/bastionworks/ironclad-mp/shared/gamemath"
)

// recordingBody captures the call sequence the reconciler makes on the
// physics body.
type recordingBody struct {
	ops       []string
	pos       gamemath.Vec3
	yaw       float64
	kinematic bool
}

func (b *recordingBody) SetKinematic(k bool) {
	b.kinematic = k
	if k {
		b.ops = append(b.ops, "kinematic-on")
	} else {
		b.ops = append(b.ops, "kinematic-off")
	}
}

func (b *recordingBody) ZeroVelocity() {
	b.ops = append(b.ops, "zero-velocity")
}

func (b *recordingBody) SetTransform(pos gamemath.Vec3, yaw float64) {
	b.pos, b.yaw = pos, yaw
	b.ops = append(b.ops, "set-transform")
}

func (b *recordingBody) Refresh() {
	b.ops = append(b.ops, "refresh")
}

func testTuning() ReconcileTuning {
	return ReconcileTuning{
		IgnoreBand:      0.5,
		HardThreshold:   2.0,
		SoftBlend:       0.3,
		TurretTolerance: 0.02,
	}
}

func serverPoseAt(x, y, z float64) Pose {
	return Pose{Position: gamemath.Vec3{X: x, Y: y, Z: z}, Visible: true}
}

func TestHardCorrectionTeleportsExactly(t *testing.T) {
	r := NewLocalReconciler(testTuning(), nil)
	body := &recordingBody{}
	pose := Pose{}

	r.Observe(serverPoseAt(5, 0, 0), pose.Position, time.Now())
	if !r.ApplyCorrection(body, &pose) {
		t.Fatal("hard correction reported no change")
	}

	if pose.Position != (gamemath.Vec3{X: 5, Y: 0, Z: 0}) {
		t.Fatalf("hard correction gave %+v, want exactly (5,0,0)", pose.Position)
	}

	// The two-phase body switch, in order.
	want := []string{"kinematic-on", "zero-velocity", "set-transform", "refresh", "kinematic-off", "zero-velocity"}
	if len(body.ops) != len(want) {
		t.Fatalf("body ops = %v, want %v", body.ops, want)
	}
	for i := range want {
		if body.ops[i] != want[i] {
			t.Fatalf("body op %d = %s, want %s (full: %v)", i, body.ops[i], want[i], body.ops)
		}
	}
	if body.kinematic {
		t.Fatal("body left in kinematic mode")
	}
}

func TestSoftCorrectionBlendsAndConverges(t *testing.T) {
	tuning := testTuning()
	tuning.IgnoreBand = 0.001
	r := NewLocalReconciler(tuning, nil)
	pose := Pose{}
	now := time.Now()

	r.Observe(serverPoseAt(1, 0, 0), pose.Position, now)
	r.ApplyCorrection(&recordingBody{}, &pose)
	if math.Abs(pose.Position.X-0.3) > 1e-9 {
		t.Fatalf("after one soft correction x = %f, want 0.3", pose.Position.X)
	}

	// Each correction applies once per message, so repeated messages
	// converge geometrically.
	for i := 0; i < 14; i++ {
		now = now.Add(100 * time.Millisecond)
		r.Observe(serverPoseAt(1, 0, 0), pose.Position, now)
		r.ApplyCorrection(&recordingBody{}, &pose)
	}
	if d := math.Abs(pose.Position.X - 1); d > 0.005 {
		t.Fatalf("after 15 corrections x = %f, still %f from target", pose.Position.X, d)
	}
}

func TestSoftCorrectionNotReappliedPerFrame(t *testing.T) {
	r := NewLocalReconciler(testTuning(), nil)
	pose := Pose{}

	r.Observe(serverPoseAt(1, 0, 0), pose.Position, time.Now())
	r.ApplyCorrection(&recordingBody{}, &pose)
	after := pose.Position

	// No new message: further apply calls must not accumulate.
	for i := 0; i < 5; i++ {
		if r.ApplyCorrection(&recordingBody{}, &pose) {
			t.Fatal("correction applied again without a new message")
		}
	}
	if pose.Position != after {
		t.Fatalf("pose crept from %+v to %+v without new data", after, pose.Position)
	}
}

func TestIgnoreBandLeavesPositionAlone(t *testing.T) {
	tuning := testTuning()
	tuning.IgnoreBand = 0.15
	r := NewLocalReconciler(tuning, nil)
	pose := Pose{}
	body := &recordingBody{}

	r.Observe(serverPoseAt(0.05, 0, 0), pose.Position, time.Now())
	if r.ApplyCorrection(body, &pose) {
		t.Fatal("in-band diff reported a change")
	}
	if pose.Position != (gamemath.Vec3{}) {
		t.Fatalf("in-band diff mutated position: %+v", pose.Position)
	}
	if len(body.ops) != 0 {
		t.Fatalf("in-band diff touched the body: %v", body.ops)
	}
}

func TestTurretResyncsInsideIgnoreBand(t *testing.T) {
	r := NewLocalReconciler(testTuning(), nil)
	pose := Pose{TurretYaw: 0.5, AimPitch: -0.2}

	server := serverPoseAt(0.05, 0, 0)
	server.TurretYaw = 1.2
	server.AimPitch = 0.1
	r.Observe(server, pose.Position, time.Now())
	r.ApplyCorrection(&recordingBody{}, &pose)

	if pose.TurretYaw != 1.2 {
		t.Fatalf("turret yaw = %f, want resynced 1.2", pose.TurretYaw)
	}
	if pose.AimPitch != 0.1 {
		t.Fatalf("aim pitch = %f, want resynced 0.1", pose.AimPitch)
	}
	if pose.Position != (gamemath.Vec3{}) {
		t.Fatal("turret resync must not move the chassis")
	}
}

func TestNonFiniteServerPoseIsNoOp(t *testing.T) {
	r := NewLocalReconciler(testTuning(), nil)

	r.Observe(serverPoseAt(math.NaN(), 0, 0), gamemath.Vec3{}, time.Now())
	if r.Pending() {
		t.Fatal("NaN server pose accepted")
	}

	bad := serverPoseAt(1, 0, 0)
	bad.Yaw = math.Inf(-1)
	r.Observe(bad, gamemath.Vec3{}, time.Now())
	if r.Pending() {
		t.Fatal("Inf yaw accepted")
	}
}

func TestDriftRecordedInMetrics(t *testing.T) {
	metrics := NewSyncMetrics(time.Minute)
	r := NewLocalReconciler(testTuning(), metrics)
	now := time.Now()

	r.Observe(serverPoseAt(3, 0, 4), gamemath.Vec3{}, now)
	if metrics.Count() != 1 {
		t.Fatalf("metrics count = %d, want 1", metrics.Count())
	}
	if math.Abs(metrics.Max()-5) > 1e-9 {
		t.Fatalf("recorded drift = %f, want 5", metrics.Max())
	}
}

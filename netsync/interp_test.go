package netsync

import (
	"math"
	"testing"
	"time"

	"github.com/bastionworks/ironclad-mp/shared/gamemath"
	"github.com/bastionworks/ironclad-mp/shared/messages"
)

const frameDt = 1.0 / 60

func snapAt(t time.Time, id uint, x, y, z float64) Snapshot {
	return Snapshot{
		TankSnapshot: messages.TankSnapshot{
			ID: id, X: x, Y: y, Z: z,
			Health: 100, MaxHealth: 100,
			Status: messages.StatusAlive,
		},
		ReceivedAt: t,
	}
}

func TestFirstSnapshotSnapsDirectly(t *testing.T) {
	var s InterpState
	tuning := DefaultInterpTuning()
	t0 := time.Now()

	if !s.OnSnapshot(snapAt(t0, 7, 3, 0, -2), tuning) {
		t.Fatal("valid first snapshot rejected")
	}
	if s.Alpha != 1 {
		t.Fatalf("first snapshot alpha = %f, want 1", s.Alpha)
	}
	want := gamemath.Vec3{X: 3, Y: 0, Z: -2}
	if s.Current.Position != want {
		t.Fatalf("first snapshot pose = %+v, want %+v", s.Current.Position, want)
	}
	if !s.Current.Visible {
		t.Fatal("alive tank must be visible")
	}
}

func TestAlphaStaysInUnitInterval(t *testing.T) {
	var s InterpState
	tuning := DefaultInterpTuning()
	t0 := time.Now()

	now := t0
	for i := 0; i < 200; i++ {
		if i%7 == 0 {
			s.OnSnapshot(snapAt(now, 1, float64(i), 0, 0), tuning)
		}
		s.Advance(now, frameDt, 30*time.Millisecond, tuning)
		if s.Alpha < 0 || s.Alpha > 1 {
			t.Fatalf("alpha %f escaped [0,1] at step %d", s.Alpha, i)
		}
		now = now.Add(time.Second / 60)
	}
}

func TestIdenticalSnapshotIsIdempotent(t *testing.T) {
	var s InterpState
	tuning := DefaultInterpTuning()
	t0 := time.Now()

	s.OnSnapshot(snapAt(t0, 1, 0, 0, 0), tuning)
	s.OnSnapshot(snapAt(t0.Add(50*time.Millisecond), 1, 4, 0, 0), tuning)
	for i := 0; i < 30; i++ {
		s.Advance(t0.Add(50*time.Millisecond), frameDt, 0, tuning)
	}
	settled := s.Current.Position

	// Same payload again: must not reset the segment or move the pose.
	s.OnSnapshot(snapAt(t0.Add(55*time.Millisecond), 1, 4, 0, 0), tuning)
	if s.Alpha != 1 {
		t.Fatalf("identical snapshot reset alpha to %f", s.Alpha)
	}
	s.Advance(t0.Add(55*time.Millisecond), frameDt, 0, tuning)
	if s.Current.Position != settled {
		t.Fatalf("identical snapshot moved pose from %+v to %+v", settled, s.Current.Position)
	}
}

func TestStoppedTankHoldsUnderConfirmingSnapshots(t *testing.T) {
	var s InterpState
	tuning := DefaultInterpTuning()
	t0 := time.Now()

	// Establish 10 units/s of motion ending at x=1, then the tank parks.
	s.OnSnapshot(snapAt(t0, 1, 0, 0, 0), tuning)
	s.OnSnapshot(snapAt(t0.Add(100*time.Millisecond), 1, 1, 0, 0), tuning)

	// The server keeps confirming the parked pose with identical snapshots.
	// Those confirmations must count as fresh data: no dead reckoning on the
	// pre-stop velocity.
	step := time.Second / 60
	now := t0.Add(100 * time.Millisecond)
	lastSnap := now
	for i := 0; i < 120; i++ {
		now = now.Add(step)
		if now.Sub(lastSnap) >= 40*time.Millisecond {
			s.OnSnapshot(snapAt(now, 1, 1, 0, 0), tuning)
			lastSnap = now
		}
		s.Advance(now, frameDt, 30*time.Millisecond, tuning)
	}

	if math.Abs(s.Current.Position.X-1) > 0.05 {
		t.Fatalf("parked tank drifted to x = %f, want ~1", s.Current.Position.X)
	}
	if s.Alpha != 1 {
		t.Fatalf("confirming snapshots should leave the finished segment alone, alpha = %f", s.Alpha)
	}
}

func TestInterpolationConvergesToLatest(t *testing.T) {
	var s InterpState
	tuning := DefaultInterpTuning()
	t0 := time.Now()

	s.OnSnapshot(snapAt(t0, 1, 0, 0, 0), tuning)
	s.OnSnapshot(snapAt(t0.Add(40*time.Millisecond), 1, 2, 0, 1), tuning)

	prevDist := math.Inf(1)
	now := t0.Add(40 * time.Millisecond)
	target := gamemath.Vec3{X: 2, Y: 0, Z: 1}
	for i := 0; i < 30; i++ {
		s.Advance(now, frameDt, 30*time.Millisecond, tuning)
		d := s.Current.Position.Dist(target)
		if d > prevDist+1e-9 {
			t.Fatalf("distance to target grew at step %d: %f > %f", i, d, prevDist)
		}
		prevDist = d
	}
	if prevDist > 1e-9 {
		t.Fatalf("pose never reached target, still %f away", prevDist)
	}
}

func TestDeadReckoningMovesBeyondLastSnapshot(t *testing.T) {
	var s InterpState
	tuning := DefaultInterpTuning()
	t0 := time.Now()

	// Two snapshots establish 10 units/s along +x.
	s.OnSnapshot(snapAt(t0, 1, 0, 0, 0), tuning)
	s.OnSnapshot(snapAt(t0.Add(100*time.Millisecond), 1, 1, 0, 0), tuning)

	// Fresh frames up to the staleness cutoff, then a frame past it.
	step := time.Second / 60
	now := t0.Add(100 * time.Millisecond)
	for i := 0; i < 4; i++ {
		now = now.Add(step)
		s.Advance(now, frameDt, 30*time.Millisecond, tuning)
	}

	if s.Current.Position.X <= 1.0 {
		t.Fatalf("expected extrapolation past the last snapshot, x = %f", s.Current.Position.X)
	}
	if s.Current.Position.Y != 0 || math.Abs(s.Current.Position.Z) > 1e-9 {
		t.Fatalf("extrapolation left the +x axis: %+v", s.Current.Position)
	}
}

func TestNonFiniteSnapshotRejected(t *testing.T) {
	var s InterpState
	tuning := DefaultInterpTuning()
	t0 := time.Now()

	s.OnSnapshot(snapAt(t0, 1, 5, 0, 5), tuning)
	before := s.Current

	bad := snapAt(t0.Add(50*time.Millisecond), 1, math.NaN(), 0, 0)
	if s.OnSnapshot(bad, tuning) {
		t.Fatal("NaN snapshot accepted")
	}
	bad = snapAt(t0.Add(60*time.Millisecond), 1, 0, math.Inf(1), 0)
	if s.OnSnapshot(bad, tuning) {
		t.Fatal("Inf snapshot accepted")
	}
	if s.Current != before {
		t.Fatalf("rejected snapshot disturbed the pose: %+v", s.Current)
	}
}

func TestYawTakesShortestPath(t *testing.T) {
	var s InterpState
	tuning := DefaultInterpTuning()
	t0 := time.Now()

	first := snapAt(t0, 1, 0, 0, 0)
	first.Yaw = math.Pi - 0.05
	s.OnSnapshot(first, tuning)

	second := snapAt(t0.Add(40*time.Millisecond), 1, 0, 0, 0)
	second.Yaw = -math.Pi + 0.05
	s.OnSnapshot(second, tuning)

	now := t0.Add(40 * time.Millisecond)
	prev := s.Current.Yaw
	for i := 0; i < 30; i++ {
		s.Advance(now, frameDt, 0, tuning)
		step := math.Abs(gamemath.AngleDiff(prev, s.Current.Yaw))
		if step > math.Pi {
			t.Fatalf("yaw traveled %f > π in one frame", step)
		}
		prev = s.Current.Yaw
	}
	if math.Abs(gamemath.AngleDiff(s.Current.Yaw, -math.Pi+0.05)) > 1e-6 {
		t.Fatalf("yaw settled at %f, want %f", s.Current.Yaw, -math.Pi+0.05)
	}
}

func TestDeadTankFreezesAndHides(t *testing.T) {
	var s InterpState
	tuning := DefaultInterpTuning()
	t0 := time.Now()

	s.OnSnapshot(snapAt(t0, 1, 2, 0, 2), tuning)

	dead := snapAt(t0.Add(50*time.Millisecond), 1, 9, 0, 9)
	dead.Status = messages.StatusDead
	dead.Health = 0
	s.OnSnapshot(dead, tuning)

	frozen := s.Current.Position
	now := t0.Add(50 * time.Millisecond)
	for i := 0; i < 10; i++ {
		now = now.Add(time.Second / 60)
		s.Advance(now, frameDt, 0, tuning)
	}
	if s.Current.Visible {
		t.Fatal("dead tank still visible")
	}
	if s.Current.Position != frozen {
		t.Fatalf("dead tank pose moved from %+v to %+v", frozen, s.Current.Position)
	}
}

func TestTurretTracksIndependentlyOfChassis(t *testing.T) {
	var s InterpState
	tuning := DefaultInterpTuning()
	t0 := time.Now()

	first := snapAt(t0, 1, 0, 0, 0)
	s.OnSnapshot(first, tuning)

	// Chassis stays put, only the turret swings.
	second := snapAt(t0.Add(40*time.Millisecond), 1, 0, 0, 0)
	second.TurretYaw = 1.0
	s.OnSnapshot(second, tuning)

	now := t0.Add(40 * time.Millisecond)
	for i := 0; i < 30; i++ {
		s.Advance(now, frameDt, 0, tuning)
	}
	if s.Current.Yaw != 0 {
		t.Fatalf("chassis yaw moved to %f", s.Current.Yaw)
	}
	if math.Abs(s.Current.TurretYaw-1.0) > 1e-6 {
		t.Fatalf("turret yaw settled at %f, want 1.0", s.Current.TurretYaw)
	}
}

func TestAdaptiveRateSlowsWithLatency(t *testing.T) {
	tuning := DefaultInterpTuning()
	cases := []struct {
		rtt  time.Duration
		want float64
	}{
		{10 * time.Millisecond, 0.3},
		{49 * time.Millisecond, 0.3},
		{50 * time.Millisecond, 0.2},
		{149 * time.Millisecond, 0.2},
		{150 * time.Millisecond, 0.1},
		{400 * time.Millisecond, 0.1},
	}
	for _, c := range cases {
		if got := tuning.rateFor(c.rtt); got != c.want {
			t.Errorf("rateFor(%v) = %f, want %f", c.rtt, got, c.want)
		}
	}
}

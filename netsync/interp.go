package netsync

import (
	"time"

	"github.com/bastionworks/ironclad-mp/shared/gamemath"
	"github.com/bastionworks/ironclad-mp/shared/messages"
)

// InterpTuning controls remote-entity smoothing. Zero values are replaced by
// DefaultInterpTuning in NewRegistry; tests construct it directly.
type InterpTuning struct {
	StaleAfter         time.Duration // no fresh data for longer than this => dead reckoning
	ExtrapolationBlend float64       // per-frame blend toward the extrapolated point
	HistoryWindow      time.Duration // snapshot history ring bound

	LowRTT      time.Duration
	MidRTT      time.Duration
	RateLowRTT  float64
	RateMidRTT  float64
	RateHighRTT float64
}

// DefaultInterpTuning matches a 20 Hz snapshot cadence.
func DefaultInterpTuning() InterpTuning {
	return InterpTuning{
		StaleAfter:         50 * time.Millisecond,
		ExtrapolationBlend: 0.3,
		HistoryWindow:      time.Second,
		LowRTT:             50 * time.Millisecond,
		MidRTT:             150 * time.Millisecond,
		RateLowRTT:         0.3,
		RateMidRTT:         0.2,
		RateHighRTT:        0.1,
	}
}

// rateFor picks the interpolation advance rate for the measured round-trip
// time. Higher latency gets a slower, smoother catch-up so network jitter is
// not amplified into visual jitter.
func (t InterpTuning) rateFor(rtt time.Duration) float64 {
	switch {
	case rtt < t.LowRTT:
		return t.RateLowRTT
	case rtt < t.MidRTT:
		return t.RateMidRTT
	default:
		return t.RateHighRTT
	}
}

type historySample struct {
	At  time.Time
	Pos gamemath.Vec3
	Yaw float64
}

// InterpState smooths one remote tank between server snapshots. Each
// instance exclusively owns its history ring; there is no cross-entity
// shared state.
type InterpState struct {
	// Current is the rendered pose, recomputed once per tick in Advance.
	Current Pose

	Prev   Snapshot
	Latest Snapshot

	// Velocity is estimated from the two most recent known positions and
	// used only while extrapolating.
	Velocity gamemath.Vec3

	// Alpha is the normalized progress through the current interpolation
	// segment. Monotonically rises toward 1 between snapshots and resets to
	// 0 the instant a new snapshot arrives.
	Alpha float64

	LastUpdate  time.Time
	Initialized bool

	// start is the pose captured when the latest snapshot arrived, so the
	// segment begins at whatever was actually on screen and cannot pop.
	start Pose

	history []historySample
}

// OnSnapshot stores a freshly received snapshot as the new interpolation
// target. Returns false when the snapshot is rejected (non-finite
// coordinates); the previous valid pose is retained and no error escapes to
// the tick loop.
func (s *InterpState) OnSnapshot(snap Snapshot, tuning InterpTuning) bool {
	if !snap.Finite() {
		return false
	}

	// Re-applying an identical snapshot confirms the current pose without
	// resetting the segment. The freshness stamp still advances so a parked
	// tank is never mistaken for a silent feed and dead-reckoned away.
	if s.Initialized && snap.TankSnapshot == s.Latest.TankSnapshot {
		if snap.ReceivedAt.After(s.LastUpdate) {
			s.LastUpdate = snap.ReceivedAt
		}
		return true
	}

	if !s.Initialized {
		// First-ever snapshot: snap directly, there is no origin to
		// interpolate from.
		s.Prev = snap
		s.Latest = snap
		s.Current = snap.Pose()
		s.start = s.Current
		s.Alpha = 1
		s.LastUpdate = snap.ReceivedAt
		s.Initialized = true
		s.pushHistory(snap, tuning.HistoryWindow)
		return true
	}

	s.pushHistory(s.Latest, tuning.HistoryWindow)
	s.Velocity = s.estimateVelocity(snap)

	s.Prev = s.Latest
	s.Latest = snap
	s.start = s.Current
	s.Alpha = 0
	s.LastUpdate = snap.ReceivedAt
	return true
}

func (s *InterpState) pushHistory(snap Snapshot, window time.Duration) {
	s.history = append(s.history, historySample{
		At:  snap.ReceivedAt,
		Pos: snap.Pos(),
		Yaw: snap.Yaw,
	})
	cutoff := snap.ReceivedAt.Add(-window)
	i := 0
	for i < len(s.history) && s.history[i].At.Before(cutoff) {
		i++
	}
	if i > 0 {
		s.history = append(s.history[:0], s.history[i:]...)
	}
}

// estimateVelocity derives units-per-second motion from the two most recent
// known positions: the newest history sample and the incoming snapshot.
// With fewer than two samples the estimate is discarded.
func (s *InterpState) estimateVelocity(next Snapshot) gamemath.Vec3 {
	if len(s.history) == 0 {
		return gamemath.Vec3{}
	}
	last := s.history[len(s.history)-1]
	dt := next.ReceivedAt.Sub(last.At).Seconds()
	if dt <= 0 {
		return s.Velocity
	}
	return next.Pos().Sub(last.Pos).Scale(1 / dt)
}

// Advance recomputes the rendered pose for this tick. dt is the frame delta
// in seconds; rtt selects the adaptive interpolation rate.
func (s *InterpState) Advance(now time.Time, dt float64, rtt time.Duration, tuning InterpTuning) {
	if !s.Initialized {
		return
	}

	// Visibility follows status alone. A dead tank's last pose is frozen,
	// not interpolated further.
	s.Current.Visible = s.Latest.Status == messages.StatusAlive
	if !s.Current.Visible {
		return
	}

	staleness := now.Sub(s.LastUpdate)
	if staleness > tuning.StaleAfter {
		s.advanceStale(staleness, tuning)
		return
	}

	rate := tuning.rateFor(rtt)
	s.Alpha = min(1, s.Alpha+rate*dt*60)
	k := gamemath.Smoothstep(s.Alpha)

	s.Current.Position = s.start.Position.Lerp(s.Latest.Pos(), k)
	s.Current.Yaw = gamemath.LerpAngle(s.start.Yaw, s.Latest.Yaw, k)

	// Turret and aim pitch track the same segment independently of the
	// chassis: same curve, own channels.
	s.Current.TurretYaw = gamemath.LerpAngle(s.start.TurretYaw, s.Latest.TurretYaw, k)
	s.Current.AimPitch = gamemath.Lerp(s.start.AimPitch, s.Latest.AimPitch, k)
}

// advanceStale dead reckons past the last snapshot. The rendered position is
// blended toward the extrapolated point rather than snapped, so the visual
// does not jump when a real snapshot finally lands.
func (s *InterpState) advanceStale(staleness time.Duration, tuning InterpTuning) {
	extrapolated := s.Latest.Pos().Add(s.Velocity.Scale(staleness.Seconds()))
	s.Current.Position = s.Current.Position.Lerp(extrapolated, tuning.ExtrapolationBlend)
	// Angles hold their last value; there is no angular velocity estimate
	// worth trusting over a gap.
}

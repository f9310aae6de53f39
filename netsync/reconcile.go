package netsync

import (
	"math"
	"time"

	"github.com/bastionworks/ironclad-mp/shared/gamemath"
)

// PhysicsBody is the local simulation body the reconciler corrects. The
// prediction layer owns the concrete implementation; the engine never sees
// collision internals.
type PhysicsBody interface {
	// SetKinematic switches the body between solver-driven (false) and
	// externally-animated (true) modes.
	SetKinematic(kinematic bool)

	// ZeroVelocity clears residual linear and angular velocity.
	ZeroVelocity()

	// SetTransform writes position and chassis yaw directly.
	SetTransform(pos gamemath.Vec3, yaw float64)

	// Refresh forces the body's world transform to recompute immediately.
	Refresh()
}

// ReconcileTuning holds the three-tier correction constants.
// IgnoreBand must be below HardThreshold.
type ReconcileTuning struct {
	IgnoreBand      float64
	HardThreshold   float64
	SoftBlend       float64
	TurretTolerance float64
}

// DefaultReconcileTuning matches a 0.1-unit positional wire grid.
func DefaultReconcileTuning() ReconcileTuning {
	return ReconcileTuning{
		IgnoreBand:      0.15,
		HardThreshold:   2.0,
		SoftBlend:       0.3,
		TurretTolerance: 0.02,
	}
}

// ReconcileSample is the current authoritative belief about the local tank.
// Only the latest is kept; history adds nothing once newer truth exists.
type ReconcileSample struct {
	ServerPose   Pose
	PositionDiff float64
	ReceivedAt   time.Time
}

// LocalReconciler bounds drift between the locally-simulated tank and server
// authority. Movement authority stays with the local simulation between
// corrections; the policy here is active corrective blending (the
// pure-local-authority alternative is not implemented).
type LocalReconciler struct {
	tuning  ReconcileTuning
	metrics *SyncMetrics

	sample  ReconcileSample
	pending bool
}

// NewLocalReconciler creates a reconciler. metrics may be nil.
func NewLocalReconciler(tuning ReconcileTuning, metrics *SyncMetrics) *LocalReconciler {
	return &LocalReconciler{tuning: tuning, metrics: metrics}
}

// Observe stores a new authoritative pose for the local tank, replacing any
// unapplied one. A non-finite server pose is a no-op.
func (r *LocalReconciler) Observe(server Pose, predicted gamemath.Vec3, now time.Time) {
	if !server.Position.IsFinite() || !gamemath.IsFinite(server.Yaw) {
		return
	}
	diff := server.Position.Dist(predicted)
	r.sample = ReconcileSample{
		ServerPose:   server,
		PositionDiff: diff,
		ReceivedAt:   now,
	}
	r.pending = true
	if r.metrics != nil {
		r.metrics.Record(diff, now)
	}
}

// Pending reports whether an authoritative pose awaits application.
func (r *LocalReconciler) Pending() bool {
	return r.pending
}

// Latest returns the most recent sample for diagnostics.
func (r *LocalReconciler) Latest() ReconcileSample {
	return r.sample
}

// ApplyCorrection applies the pending sample to the local pose and body.
// The physics collaborator calls this during its own step; each sample is
// applied exactly once, never re-blended per frame. Returns true when the
// position or chassis yaw changed.
func (r *LocalReconciler) ApplyCorrection(body PhysicsBody, pose *Pose) bool {
	if !r.pending {
		return false
	}
	r.pending = false

	server := r.sample.ServerPose
	diff := r.sample.PositionDiff

	switch {
	case diff <= r.tuning.IgnoreBand:
		// Inside the codec quantization noise floor: not real drift. The
		// turret and aim pitch still resynchronize on their own tolerance.
		r.resyncTurret(pose, server)
		return false

	case diff <= r.tuning.HardThreshold:
		// Soft: close a fixed fraction of the remaining gap, once per
		// message. Convergence is monotonic and rate-bounded, no snap.
		pose.Position = pose.Position.Lerp(server.Position, r.tuning.SoftBlend)
		pose.Yaw = gamemath.LerpAngle(pose.Yaw, server.Yaw, r.tuning.SoftBlend)
		r.resyncTurret(pose, server)
		if body != nil {
			body.SetTransform(pose.Position, pose.Yaw)
			body.Refresh()
		}
		return true

	default:
		// Hard: teleport. The two-phase kinematic switch keeps the solver
		// from reacting to the jump on its next step and re-diverging.
		pose.Position = server.Position
		pose.Yaw = server.Yaw
		pose.TurretYaw = server.TurretYaw
		pose.AimPitch = server.AimPitch
		if body != nil {
			body.SetKinematic(true)
			body.ZeroVelocity()
			body.SetTransform(server.Position, server.Yaw)
			body.Refresh()
			body.SetKinematic(false)
			body.ZeroVelocity()
		}
		return true
	}
}

func (r *LocalReconciler) resyncTurret(pose *Pose, server Pose) {
	if math.Abs(gamemath.AngleDiff(pose.TurretYaw, server.TurretYaw)) > r.tuning.TurretTolerance {
		pose.TurretYaw = server.TurretYaw
	}
	if math.Abs(pose.AimPitch-server.AimPitch) > r.tuning.TurretTolerance {
		pose.AimPitch = server.AimPitch
	}
}

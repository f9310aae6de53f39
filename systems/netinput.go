package systems

import (
	"log"
	"math"
	"time"

	cfg "github.com/bastionworks/ironclad-mp/config"
	"github.com/bastionworks/ironclad-mp/netsync"
	"github.com/bastionworks/ironclad-mp/shared/messages"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/yohamta/donburi/ecs"
)

const resendInterval = 50 * time.Millisecond

const aimPitchStep = 0.02

type netInputState struct {
	lastThrottle int
	lastSteer    int
	lastFire     bool
	lastTurret   float64
	aimPitch     float64
	lastSendTime time.Time
}

// NewNetworkInputSystem returns an ECS system that polls keyboard and mouse
// input, applies it locally for prediction, and sends DriveInput messages to
// the server when the control state changes.
func NewNetworkInputSystem(sendFn func(any) error, prediction *NetPrediction, reg *netsync.Registry) func(*ecs.ECS) {
	state := &netInputState{}

	return func(e *ecs.ECS) {
		if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
			ToggleCollisionDebug()
		}

		throttle := 0
		if anyKeyPressed(cfg.KeyBindings[cfg.ActionForward]) {
			throttle++
		}
		if anyKeyPressed(cfg.KeyBindings[cfg.ActionReverse]) {
			throttle--
		}
		steer := 0
		if anyKeyPressed(cfg.KeyBindings[cfg.ActionSteerLeft]) {
			steer--
		}
		if anyKeyPressed(cfg.KeyBindings[cfg.ActionSteerRight]) {
			steer++
		}
		fire := anyKeyPressed(cfg.KeyBindings[cfg.ActionFire]) ||
			ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)

		if anyKeyPressed(cfg.KeyBindings[cfg.ActionAimUp]) {
			state.aimPitch += aimPitchStep
		}
		if anyKeyPressed(cfg.KeyBindings[cfg.ActionAimDown]) {
			state.aimPitch -= aimPitchStep
		}
		state.aimPitch = math.Max(-0.8, math.Min(0.8, state.aimPitch))

		// The camera centers on the local tank, so cursor direction from
		// screen center is the absolute turret aim.
		mx, my := ebiten.CursorPosition()
		turretYaw := math.Atan2(
			float64(my)-float64(cfg.C.Height)/2,
			float64(mx)-float64(cfg.C.Width)/2,
		)

		input := messages.DriveInput{
			Sequence:  prediction.Buffer.NextSeq(),
			Throttle:  throttle,
			Steer:     steer,
			TurretYaw: turretYaw,
			AimPitch:  state.aimPitch,
			Fire:      fire,
			Timestamp: time.Now().UnixMilli(),
		}

		// Predict locally every frame; corrections fold in during the step.
		prediction.PredictStep(input, reg.Reconciler())

		changed := throttle != state.lastThrottle ||
			steer != state.lastSteer ||
			fire != state.lastFire ||
			math.Abs(turretYaw-state.lastTurret) > 0.01

		now := time.Now()
		if !changed && now.Sub(state.lastSendTime) < resendInterval {
			return
		}

		if err := sendFn(input); err != nil {
			log.Printf("[netinput] send error: %v", err)
		}

		state.lastThrottle = throttle
		state.lastSteer = steer
		state.lastFire = fire
		state.lastTurret = turretYaw
		state.lastSendTime = now
	}
}

func anyKeyPressed(keys []ebiten.Key) bool {
	for _, k := range keys {
		if ebiten.IsKeyPressed(k) {
			return true
		}
	}
	return false
}

package systems

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/bastionworks/ironclad-mp/components"
	cfg "github.com/bastionworks/ironclad-mp/config"
	"github.com/bastionworks/ironclad-mp/netsync"
	"github.com/bastionworks/ironclad-mp/shared/messages"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/yohamta/donburi/ecs"
)

const turretLength = 16.0

// NetRenderer draws the networked match: arena, tanks, shells, HUD. It owns
// no entity state; everything comes from the registry and prediction.
type NetRenderer struct {
	Registry   *netsync.Registry
	Prediction *NetPrediction
	RTT        func() time.Duration
}

func (r *NetRenderer) camera(e *ecs.ECS) (offX, offZ float64) {
	entry, ok := components.Camera.First(e.World)
	if !ok {
		return 0, 0
	}
	cam := components.Camera.Get(entry)
	return cam.Position.X - float64(cfg.C.Width)/2, cam.Position.Y - float64(cfg.C.Height)/2
}

// DrawArena fills the floor and draws the wall blocks.
func (r *NetRenderer) DrawArena(e *ecs.ECS, screen *ebiten.Image) {
	screen.Fill(cfg.DarkFloor)

	arenaEntry, ok := components.Arena.First(e.World)
	if !ok {
		return
	}
	arena := components.Arena.Get(arenaEntry).Arena
	if arena == nil {
		return
	}

	offX, offZ := r.camera(e)
	for _, w := range arena.Walls {
		vector.DrawFilledRect(screen,
			float32(w.X-offX), float32(w.Z-offZ),
			float32(w.Width), float32(w.Depth),
			cfg.WallGrey, false)
	}
}

// DrawTanks draws the local predicted tank and every remote tank at its
// interpolated pose.
func (r *NetRenderer) DrawTanks(e *ecs.ECS, screen *ebiten.Image) {
	offX, offZ := r.camera(e)

	colorIndex := 0
	r.Registry.EachTank(func(id uint, state *netsync.InterpState) {
		if !state.Current.Visible {
			return
		}
		hull := cfg.TankColors[colorIndex%len(cfg.TankColors)]
		colorIndex++
		drawTank(screen, state.Current, hull, offX, offZ)

		label := fmt.Sprintf("ID:%d %d/%d", id, state.Latest.Health, state.Latest.MaxHealth)
		ebitenutil.DebugPrintAt(screen,
			label,
			int(state.Current.Position.X-offX)-len(label)*3,
			int(state.Current.Position.Z-offZ)-int(cfg.Tank.HullSize)-14)
	})

	if r.Prediction != nil && r.Prediction.Body != nil {
		pose := r.Prediction.Pose
		if local, ok := r.Registry.LocalState(); !ok || local.Status == messages.StatusAlive {
			drawTank(screen, pose, cfg.BrightGreen, offX, offZ)
		}
	}
}

func drawTank(screen *ebiten.Image, pose netsync.Pose, hull color.RGBA, offX, offZ float64) {
	size := float32(cfg.Tank.HullSize)
	x := float32(pose.Position.X-offX) - size/2
	z := float32(pose.Position.Z-offZ) - size/2
	vector.DrawFilledRect(screen, x, z, size, size, hull, false)

	// Hull heading notch.
	hx := float32(pose.Position.X-offX) + float32(math.Cos(pose.Yaw))*size/2
	hz := float32(pose.Position.Z-offZ) + float32(math.Sin(pose.Yaw))*size/2
	vector.DrawFilledRect(screen, hx-2, hz-2, 4, 4, cfg.White, false)

	// Turret barrel.
	cx := float32(pose.Position.X - offX)
	cz := float32(pose.Position.Z - offZ)
	tx := cx + float32(math.Cos(pose.TurretYaw)*turretLength)
	tz := cz + float32(math.Sin(pose.TurretYaw)*turretLength)
	vector.StrokeLine(screen, cx, cz, tx, tz, 3, cfg.SteelGrey, false)
}

// DrawProjectiles draws tracked remote shells with their fade-in alpha.
func (r *NetRenderer) DrawProjectiles(e *ecs.ECS, screen *ebiten.Image) {
	offX, offZ := r.camera(e)
	now := time.Now()

	r.Registry.Projectiles().Each(func(shell *netsync.ProjectileState) {
		if !r.Registry.Projectiles().Visible(shell, now) {
			return
		}
		a := shell.Alpha()
		c := color.RGBA{
			R: uint8(float32(cfg.TracerWhite.R) * a),
			G: uint8(float32(cfg.TracerWhite.G) * a),
			B: uint8(float32(cfg.TracerWhite.B) * a),
			A: uint8(float32(cfg.TracerWhite.A) * a),
		}
		vector.DrawFilledCircle(screen,
			float32(shell.Position.X-offX), float32(shell.Position.Z-offZ),
			3, c, false)
	})
}

// DrawNetworkHUD prints connection and sync diagnostics.
func (r *NetRenderer) DrawNetworkHUD(e *ecs.ECS, screen *ebiten.Image) {
	metrics := r.Registry.Metrics()
	info := fmt.Sprintf("Online - Tanks: %d Shells: %d RTT: %dms Drift avg %.2f max %.2f Rejected: %d",
		r.Registry.TankCount()+1,
		r.Registry.Projectiles().Len(),
		r.RTT().Milliseconds(),
		metrics.Mean(), metrics.Max(), metrics.Rejected)
	ebitenutil.DebugPrintAt(screen, info, 4, 4)

	if local, ok := r.Registry.LocalState(); ok {
		hp := fmt.Sprintf("HP %d/%d", local.Health, local.MaxHealth)
		ebitenutil.DebugPrintAt(screen, hp, 4, cfg.C.Height-18)
	}
}

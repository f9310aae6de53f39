package systems

import (
	"math"

	"github.com/bastionworks/ironclad-mp/components"
	"github.com/bastionworks/ironclad-mp/config"
	"github.com/yohamta/donburi/ecs"
)

// NewNetCameraSystem returns an update system that follows the local tank's
// predicted position, clamped to the arena bounds.
func NewNetCameraSystem(prediction *NetPrediction) func(*ecs.ECS) {
	return func(e *ecs.ECS) {
		cameraEntry, ok := components.Camera.First(e.World)
		if !ok {
			return
		}
		camera := components.Camera.Get(cameraEntry)

		arenaEntry, ok := components.Arena.First(e.World)
		if !ok {
			return
		}
		arena := components.Arena.Get(arenaEntry).Arena
		if arena == nil || prediction.Body == nil {
			return
		}

		pos := prediction.Pose.Position
		targetX := pos.X
		targetZ := pos.Z

		zoom := camera.Zoom
		if zoom == 0 {
			zoom = 1.0
		}
		visibleW := float64(config.C.Width) / zoom
		visibleH := float64(config.C.Height) / zoom

		minX, maxX := visibleW/2, arena.Width-visibleW/2
		minZ, maxZ := visibleH/2, arena.Depth-visibleH/2
		if minX > maxX {
			minX = arena.Width / 2
			maxX = minX
		}
		if minZ > maxZ {
			minZ = arena.Depth / 2
			maxZ = minZ
		}

		targetX = math.Max(minX, math.Min(maxX, targetX))
		targetZ = math.Max(minZ, math.Min(maxZ, targetZ))

		camera.Position.X += (targetX - camera.Position.X) * config.Camera.FollowSmoothing
		camera.Position.Y += (targetZ - camera.Position.Y) * config.Camera.FollowSmoothing
	}
}

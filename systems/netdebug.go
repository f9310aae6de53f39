package systems

import (
	"image/color"

	cfg "github.com/bastionworks/ironclad-mp/config"
	"github.com/bastionworks/ironclad-mp/tags"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/yohamta/donburi/ecs"
)

var showCollisionDebug bool

// ToggleCollisionDebug flips the collision overlay on or off.
func ToggleCollisionDebug() {
	showCollisionDebug = !showCollisionDebug
}

// DrawDebug outlines every object in the prediction collision space so
// desyncs between the drawn tanks and the solver can be spotted by eye.
func (r *NetRenderer) DrawDebug(e *ecs.ECS, screen *ebiten.Image) {
	if !showCollisionDebug || r.Prediction.Space == nil {
		return
	}

	offX, offZ := r.camera(e)
	viewW := float64(cfg.C.Width)
	viewH := float64(cfg.C.Height)

	for _, obj := range r.Prediction.Space.Objects() {
		if obj.X+obj.W < offX || obj.X > offX+viewW || obj.Y+obj.H < offZ || obj.Y > offZ+viewH {
			continue
		}

		c := color.RGBA{0, 255, 255, 255}
		if obj.HasTags(tags.ResolvSolid) {
			c = color.RGBA{100, 100, 100, 255}
		} else if obj.HasTags(tags.ResolvTank) {
			c = color.RGBA{0, 255, 0, 255}
		}

		vector.StrokeRect(screen,
			float32(obj.X-offX), float32(obj.Y-offZ),
			float32(obj.W), float32(obj.H),
			1, c, false)
	}
}

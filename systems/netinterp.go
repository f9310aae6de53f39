package systems

import (
	"time"

	"github.com/bastionworks/ironclad-mp/netsync"
	"github.com/yohamta/donburi/ecs"
)

const frameDt = 1.0 / 60.0

// NewNetInterpSystem returns the once-per-tick sync update: every remote
// tank's interpolator and every tracked shell advances here, nowhere else.
func NewNetInterpSystem(reg *netsync.Registry, rtt func() time.Duration) func(*ecs.ECS) {
	return func(e *ecs.ECS) {
		reg.Advance(time.Now(), frameDt, rtt())
	}
}

package tags

import "github.com/yohamta/donburi"

var (
	LocalTank  = donburi.NewTag().SetName("LocalTank")
	RemoteTank = donburi.NewTag().SetName("RemoteTank")
	Projectile = donburi.NewTag().SetName("Projectile")
)

// Resolv tags for prediction and server collision
const (
	ResolvSolid = "solid"
	ResolvTank  = "tank"
	ResolvShell = "shell"
)

package config

import "github.com/hajimehoshi/ebiten/v2"

// ActionID identifies a bindable control action.
type ActionID int

const (
	ActionForward ActionID = iota
	ActionReverse
	ActionSteerLeft
	ActionSteerRight
	ActionFire
	ActionAimUp
	ActionAimDown
)

// KeyBindings maps actions to keys. Multiple keys per action are allowed.
var KeyBindings = map[ActionID][]ebiten.Key{
	ActionForward:    {ebiten.KeyW, ebiten.KeyUp},
	ActionReverse:    {ebiten.KeyS, ebiten.KeyDown},
	ActionSteerLeft:  {ebiten.KeyA, ebiten.KeyLeft},
	ActionSteerRight: {ebiten.KeyD, ebiten.KeyRight},
	ActionFire:       {ebiten.KeySpace},
	ActionAimUp:      {ebiten.KeyR},
	ActionAimDown:    {ebiten.KeyF},
}

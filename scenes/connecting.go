package scenes

import (
	"fmt"
	"image/color"

	"github.com/bastionworks/ironclad-mp/network"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// SceneChanger allows scenes to trigger transitions
type SceneChanger interface {
	ChangeScene(scene interface{})
}

// ConnectingScene waits for the join handshake to complete, then hands off
// to the arena.
type ConnectingScene struct {
	sceneChanger SceneChanger
	netClient    *network.Client
}

func NewConnectingScene(sc SceneChanger, client *network.Client) *ConnectingScene {
	return &ConnectingScene{sceneChanger: sc, netClient: client}
}

func (cs *ConnectingScene) Update() {
	if cs.netClient.State() == network.StateJoinedGame {
		cs.sceneChanger.ChangeScene(NewArenaScene(cs.sceneChanger, cs.netClient))
	}
}

func (cs *ConnectingScene) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)

	msg := "Connecting..."
	switch cs.netClient.State() {
	case network.StateConnected:
		msg = "Joining match..."
	case network.StateError:
		msg = fmt.Sprintf("Connection failed: %v", cs.netClient.LastError())
	case network.StateDisconnected:
		msg = "Disconnected"
	}
	ebitenutil.DebugPrintAt(screen, msg, 8, 8)
}

package main

import (
	"flag"
	"image"
	"log"
	"os"

	"github.com/bastionworks/ironclad-mp/config"
	"github.com/bastionworks/ironclad-mp/network"
	"github.com/bastionworks/ironclad-mp/scenes"
	"github.com/bastionworks/ironclad-mp/shared/protocol"
	"github.com/hajimehoshi/ebiten/v2"
)

const clientVersion = "0.3.0"

type Scene interface {
	Update()
	Draw(screen *ebiten.Image)
}

type Game struct {
	bounds image.Rectangle
	scene  Scene
}

// ChangeScene switches to a new scene
func (g *Game) ChangeScene(scene interface{}) {
	g.scene = scene.(Scene)
}

func NewGame(firstScene func(sc scenes.SceneChanger) Scene) *Game {
	g := &Game{
		bounds: image.Rectangle{},
	}
	g.scene = firstScene(g)
	return g
}

func (g *Game) Update() error {
	g.scene.Update()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.scene.Draw(screen)
}

func (g *Game) Layout(width, height int) (int, int) {
	g.bounds = image.Rect(0, 0, config.C.Width, config.C.Height)
	return config.C.Width, config.C.Height
}

func main() {
	addr := flag.String("addr", "localhost:7777", "server address (host:port)")
	master := flag.String("master", "", "master server URL; opens the server browser instead of -addr")
	name := flag.String("name", "", "player name")
	flag.Parse()

	playerName := *name
	if playerName == "" {
		if host, err := os.Hostname(); err == nil {
			playerName = host
		} else {
			playerName = "tanker"
		}
	}

	// Register network components for client-side deserialization
	if err := protocol.RegisterComponents(); err != nil {
		log.Fatalf("Failed to register network components: %v", err)
	}

	ebiten.SetWindowSize(config.C.Width, config.C.Height)
	ebiten.SetWindowTitle("Ironclad")

	client := network.NewClient()

	firstScene := func(sc scenes.SceneChanger) Scene {
		if *master != "" {
			return scenes.NewBrowserScene(sc, client, *master, clientVersion, playerName)
		}
		client.Connect(*addr, clientVersion, playerName)
		return scenes.NewConnectingScene(sc, client)
	}

	if err := ebiten.RunGame(NewGame(firstScene)); err != nil {
		log.Fatal(err)
	}
}

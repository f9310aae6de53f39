package scenes

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	cfg "github.com/bastionworks/ironclad-mp/config"
	"github.com/bastionworks/ironclad-mp/network"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// serverListing mirrors the master's /servers response.
type serverListing struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	Arena      string `json:"arena"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"maxPlayers"`
	TickRate   int    `json:"tickRate"`
	Region     string `json:"region"`
	Version    string `json:"version"`
}

// BrowserScene fetches the server list from the master and lets the player
// pick one. The HTTP fetch runs off the update goroutine; results land under
// the mutex.
type BrowserScene struct {
	sceneChanger SceneChanger
	netClient    *network.Client
	masterURL    string
	version      string
	playerName   string

	mu       sync.Mutex
	servers  []serverListing
	status   string
	fetching bool

	selected int
}

func NewBrowserScene(sc SceneChanger, client *network.Client, masterURL, version, playerName string) *BrowserScene {
	bs := &BrowserScene{
		sceneChanger: sc,
		netClient:    client,
		masterURL:    masterURL,
		version:      version,
		playerName:   playerName,
		status:       "fetching server list...",
	}
	bs.refresh()
	return bs
}

func (bs *BrowserScene) refresh() {
	bs.mu.Lock()
	if bs.fetching {
		bs.mu.Unlock()
		return
	}
	bs.fetching = true
	bs.mu.Unlock()

	go func() {
		client := &http.Client{Timeout: 5 * time.Second}
		resp, err := client.Get(bs.masterURL + "/servers")

		bs.mu.Lock()
		defer bs.mu.Unlock()
		bs.fetching = false

		if err != nil {
			bs.status = "master unreachable"
			log.Printf("[browser] fetch failed: %v", err)
			return
		}
		defer resp.Body.Close()

		var servers []serverListing
		if err := json.NewDecoder(resp.Body).Decode(&servers); err != nil {
			bs.status = "bad response from master"
			log.Printf("[browser] decode failed: %v", err)
			return
		}

		bs.servers = servers
		if len(servers) == 0 {
			bs.status = "no servers online, R to refresh"
		} else {
			bs.status = fmt.Sprintf("%d server(s), up/down + enter to join, R to refresh", len(servers))
		}
	}()
}

func (bs *BrowserScene) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		bs.refresh()
	}

	bs.mu.Lock()
	count := len(bs.servers)
	bs.mu.Unlock()
	if count == 0 {
		return
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		bs.selected = (bs.selected + 1) % count
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		bs.selected = (bs.selected + count - 1) % count
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		bs.mu.Lock()
		pick := bs.servers[bs.selected]
		bs.mu.Unlock()

		log.Printf("[browser] joining %q at %s", pick.Name, pick.Address)
		bs.netClient.Connect(pick.Address, bs.version, bs.playerName)
		bs.sceneChanger.ChangeScene(NewConnectingScene(bs.sceneChanger, bs.netClient))
	}
}

func (bs *BrowserScene) Draw(screen *ebiten.Image) {
	screen.Fill(cfg.DarkFloor)

	ebitenutil.DebugPrintAt(screen, "IRONCLAD - SERVER BROWSER", 40, 30)

	bs.mu.Lock()
	defer bs.mu.Unlock()

	ebitenutil.DebugPrintAt(screen, bs.status, 40, 50)

	for i, s := range bs.servers {
		marker := "  "
		if i == bs.selected {
			marker = "> "
		}
		line := fmt.Sprintf("%s%-20s %-16s %s  %d/%d  %dHz  %s",
			marker, s.Name, s.Address, s.Arena, s.Players, s.MaxPlayers, s.TickRate, s.Region)
		ebitenutil.DebugPrintAt(screen, line, 40, 80+i*16)
	}
}

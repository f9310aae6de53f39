package network

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bastionworks/ironclad-mp/shared/messages"
	"github.com/coder/websocket"
	"github.com/leap-fish/necs/esync"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
)

type ClientState int

const (
	StateDisconnected ClientState = iota
	StateConnecting
	StateConnected
	StateJoinedGame
	StateError
)

// rttSmoothing is the EWMA weight for new RTT samples.
const rttSmoothing = 0.2

const pingInterval = time.Second

// Client manages a WebSocket connection to the game server.
// All shared fields are protected by mu (router callbacks run on necs goroutines).
type Client struct {
	mu sync.RWMutex

	state      ClientState
	lastError  error
	networkID  esync.NetworkId
	serverName string
	tickRate   int
	arena      string
	conn       *websocket.Conn

	rtt      time.Duration
	lastPing time.Time

	snapshotCh chan esync.WorldSnapshot // size-1 buffered; latest wins

	reconcileCh chan messages.Reconciliation
	spawnCh     chan messages.ProjectileSpawn
	updateCh    chan messages.ProjectileUpdate
	hitCh       chan messages.ProjectileHit
	leftCh      chan messages.EntityLeft
}

func NewClient() *Client {
	return &Client{
		state:       StateDisconnected,
		snapshotCh:  make(chan esync.WorldSnapshot, 1),
		reconcileCh: make(chan messages.Reconciliation, 4),
		spawnCh:     make(chan messages.ProjectileSpawn, 16),
		updateCh:    make(chan messages.ProjectileUpdate, 64),
		hitCh:       make(chan messages.ProjectileHit, 16),
		leftCh:      make(chan messages.EntityLeft, 4),
	}
}

// Connect dials the server in a background goroutine and initiates the join handshake.
func (c *Client) Connect(address, version, playerName string) {
	c.mu.Lock()
	c.state = StateConnecting
	c.lastError = nil
	c.mu.Unlock()

	router.OnConnect(func(_ *router.NetworkClient) {
		log.Println("[client] connected to server")
		c.mu.Lock()
		c.state = StateConnected
		c.mu.Unlock()

		payload, err := router.Serialize(messages.JoinRequest{
			Version:    version,
			PlayerName: playerName,
		})
		if err != nil {
			c.setError(fmt.Errorf("failed to serialize join request: %w", err))
			return
		}

		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()

		if conn != nil {
			if err := conn.Write(context.Background(), websocket.MessageBinary, payload); err != nil {
				c.setError(fmt.Errorf("failed to send join request: %w", err))
			}
		}
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinAccepted) {
		log.Printf("[client] join accepted: networkID=%d server=%s tickRate=%d arena=%s",
			msg.NetworkID, msg.ServerName, msg.TickRate, msg.Arena)
		c.mu.Lock()
		c.networkID = esync.NetworkId(msg.NetworkID)
		c.serverName = msg.ServerName
		c.tickRate = msg.TickRate
		c.arena = msg.Arena
		c.state = StateJoinedGame
		c.mu.Unlock()
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinRejected) {
		log.Printf("[client] join rejected: %s", msg.Reason)
		c.setError(fmt.Errorf("join rejected: %s", msg.Reason))
	})

	router.On(func(_ *router.NetworkClient, snapshot esync.WorldSnapshot) {
		select { // drain stale, push latest
		case <-c.snapshotCh:
		default:
		}
		c.snapshotCh <- snapshot
	})

	router.On(func(_ *router.NetworkClient, msg messages.Reconciliation) {
		select { // latest correction supersedes any queued one
		case <-c.reconcileCh:
		default:
		}
		c.reconcileCh <- msg
	})

	router.On(func(_ *router.NetworkClient, evt messages.ProjectileSpawn) {
		select {
		case c.spawnCh <- evt:
		default:
		}
	})

	router.On(func(_ *router.NetworkClient, evt messages.ProjectileUpdate) {
		select {
		case c.updateCh <- evt:
		default:
		}
	})

	router.On(func(_ *router.NetworkClient, evt messages.ProjectileHit) {
		select {
		case c.hitCh <- evt:
		default:
		}
	})

	router.On(func(_ *router.NetworkClient, evt messages.EntityLeft) {
		select {
		case c.leftCh <- evt:
		default:
		}
	})

	router.On(func(_ *router.NetworkClient, msg messages.Pong) {
		sample := time.Duration(time.Now().UnixMilli()-msg.Sent) * time.Millisecond
		if sample < 0 {
			return
		}
		c.mu.Lock()
		if c.rtt == 0 {
			c.rtt = sample
		} else {
			c.rtt = time.Duration(float64(c.rtt)*(1-rttSmoothing) + float64(sample)*rttSmoothing)
		}
		c.mu.Unlock()
	})

	router.OnDisconnect(func(_ *router.NetworkClient, err error) {
		log.Printf("[client] disconnected: %v", err)
		c.mu.Lock()
		if c.state != StateError {
			c.state = StateDisconnected
		}
		c.conn = nil
		c.mu.Unlock()
	})

	router.OnError(func(_ *router.NetworkClient, err error) {
		log.Printf("[client] error: %v", err)
	})

	go func() {
		transport := transports.NewWsClientTransport("ws://" + address)
		err := transport.Start(func(conn *websocket.Conn) {
			c.mu.Lock()
			c.conn = conn
			c.mu.Unlock()
		})
		if err != nil {
			c.setError(fmt.Errorf("connection failed: %w", err))
		}
	}()
}

func (c *Client) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.state = StateDisconnected
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		_ = conn.CloseNow()
	}

	router.ResetRouter()
}

func (c *Client) State() ClientState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

func (c *Client) NetworkID() esync.NetworkId {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.networkID
}

func (c *Client) Arena() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.arena
}

func (c *Client) TickRate() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tickRate
}

// RTT returns the smoothed round-trip time estimate.
func (c *Client) RTT() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rtt
}

// MaybePing sends a Ping when the previous one is old enough. Called from
// the tick loop; cheap when no ping is due.
func (c *Client) MaybePing() {
	c.mu.Lock()
	if time.Since(c.lastPing) < pingInterval {
		c.mu.Unlock()
		return
	}
	c.lastPing = time.Now()
	c.mu.Unlock()

	if err := c.SendMessage(messages.Ping{Sent: time.Now().UnixMilli()}); err != nil {
		log.Printf("[client] ping failed: %v", err)
	}
}

// LatestSnapshot returns the most recent WorldSnapshot, or nil. Non-blocking.
func (c *Client) LatestSnapshot() *esync.WorldSnapshot {
	select {
	case snap := <-c.snapshotCh:
		return &snap
	default:
		return nil
	}
}

func (c *Client) SendMessage(msg any) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("not connected")
	}

	payload, err := router.Serialize(msg)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}

	return conn.Write(context.Background(), websocket.MessageBinary, payload)
}

func (c *Client) setError(err error) {
	c.mu.Lock()
	c.state = StateError
	c.lastError = err
	c.mu.Unlock()
}

// DrainReconciliations returns all pending authoritative corrections, non-blocking.
func (c *Client) DrainReconciliations() []messages.Reconciliation {
	return drainChan(c.reconcileCh)
}

// DrainProjectileSpawns returns all pending spawn events, non-blocking.
func (c *Client) DrainProjectileSpawns() []messages.ProjectileSpawn {
	return drainChan(c.spawnCh)
}

// DrainProjectileUpdates returns all pending kinematic updates, non-blocking.
func (c *Client) DrainProjectileUpdates() []messages.ProjectileUpdate {
	return drainChan(c.updateCh)
}

// DrainProjectileHits returns all pending hit events, non-blocking.
func (c *Client) DrainProjectileHits() []messages.ProjectileHit {
	return drainChan(c.hitCh)
}

// DrainEntityLeft returns all pending departure events, non-blocking.
func (c *Client) DrainEntityLeft() []messages.EntityLeft {
	return drainChan(c.leftCh)
}

func drainChan[T any](ch chan T) []T {
	var out []T
	for {
		select {
		case v := <-ch:
			out = append(out, v)
		default:
			return out
		}
	}
}

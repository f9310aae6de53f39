package core

import (
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/bastionworks/ironclad-mp/config"
	"github.com/bastionworks/ironclad-mp/network"
	"github.com/bastionworks/ironclad-mp/shared/gamemath"
	"github.com/bastionworks/ironclad-mp/shared/messages"
	"github.com/bastionworks/ironclad-mp/shared/netcomponents"
	"github.com/leap-fish/necs/esync"
	"github.com/leap-fish/necs/esync/srvsync"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
	"github.com/solarlune/resolv"
	"github.com/yohamta/donburi"
)

const respawnDelay = 4 * time.Second

// Server manages the authoritative match state and client connections.
type Server struct {
	world     donburi.World
	loop      *GameLoop
	transport *transports.WsServerTransport

	name    string
	version string // required client version, empty accepts any

	arena *ServerArena

	sessions map[*router.NetworkClient]*TankSession
	mu       sync.RWMutex

	shells      map[uint]*ServerShell
	nextShellID uint
}

// NewServer creates a game server hosting the named arena.
func NewServer(tickRate int, name, version, arenaName string) (*Server, error) {
	arena, err := NewServerArena(arenaName)
	if err != nil {
		return nil, fmt.Errorf("server arena: %w", err)
	}

	world := donburi.NewWorld()
	s := &Server{
		world:    world,
		name:     name,
		version:  version,
		arena:    arena,
		sessions: make(map[*router.NetworkClient]*TankSession),
		shells:   make(map[uint]*ServerShell),
	}
	s.loop = NewGameLoop(s, tickRate)

	srvsync.UseEsync(world)
	s.setupRouterCallbacks()

	return s, nil
}

// Start begins the server on the given port. Blocks.
func (s *Server) Start(port uint) error {
	go s.loop.Run()

	s.transport = transports.NewWsServerTransport(port, "", nil)
	return s.transport.Start()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() {
	s.loop.Stop()
}

func (s *Server) setupRouterCallbacks() {
	router.OnConnect(func(client *router.NetworkClient) {
		log.Printf("[server] client connected: %s", client.Id())
	})

	router.OnDisconnect(func(client *router.NetworkClient, err error) {
		s.onDisconnect(client, err)
	})

	router.On(func(client *router.NetworkClient, msg messages.JoinRequest) {
		s.onJoinRequest(client, msg)
	})

	router.On(func(client *router.NetworkClient, input messages.DriveInput) {
		s.onDriveInput(client, input)
	})

	router.On(func(client *router.NetworkClient, msg messages.Ping) {
		if err := client.SendMessage(messages.Pong{Sent: msg.Sent}); err != nil {
			log.Printf("[server] pong to %s failed: %v", client.Id(), err)
		}
	})

	router.OnError(func(client *router.NetworkClient, err error) {
		log.Printf("[server] client error: %v", err)
	})
}

func (s *Server) onJoinRequest(client *router.NetworkClient, msg messages.JoinRequest) {
	if s.version != "" && msg.Version != s.version {
		reject := messages.JoinRejected{
			Reason: fmt.Sprintf("version mismatch: server requires %s", s.version),
		}
		if err := client.SendMessage(reject); err != nil {
			log.Printf("[server] reject send failed: %v", err)
		}
		return
	}

	if s.PlayerCount() >= s.arena.Capacity() {
		reject := messages.JoinRejected{
			Reason: fmt.Sprintf("server full: %d/%d", s.PlayerCount(), s.arena.Capacity()),
		}
		if err := client.SendMessage(reject); err != nil {
			log.Printf("[server] reject send failed: %v", err)
		}
		return
	}

	entity := s.world.Create(
		netcomponents.NetPose,
		netcomponents.NetVelocity,
		netcomponents.NetTankState,
	)
	entry := s.world.Entry(entity)

	spawn := s.arena.NextSpawn()
	netcomponents.NetPose.Set(entry, &netcomponents.NetPoseData{
		X: spawn.X,
		Z: spawn.Z,
	})
	netcomponents.NetVelocity.Set(entry, &netcomponents.NetVelocityData{})
	netcomponents.NetTankState.Set(entry, &netcomponents.NetTankStateData{
		Health:    config.Tank.Health,
		MaxHealth: config.Tank.Health,
		Status:    messages.StatusAlive,
	})

	if err := srvsync.NetworkSync(s.world, &entity,
		srvsync.WithInterp(netcomponents.NetPose, netcomponents.NetVelocity),
		netcomponents.NetTankState,
	); err != nil {
		log.Printf("[server] network sync setup failed: %v", err)
		s.world.Remove(entity)
		return
	}

	body := network.NewTankBody(s.arena.Space, spawn.X, spawn.Z)

	session := &TankSession{
		Entity: entity,
		Body:   body,
		Name:   msg.PlayerName,
		Health: config.Tank.Health,
		Status: messages.StatusAlive,
	}

	s.mu.Lock()
	s.sessions[client] = session
	s.mu.Unlock()

	id := s.networkID(session)
	accepted := messages.JoinAccepted{
		NetworkID:  id,
		ServerName: s.name,
		TickRate:   s.loop.tickRate,
		Arena:      s.arena.Arena.Name,
	}
	if err := client.SendMessage(accepted); err != nil {
		log.Printf("[server] accept send failed: %v", err)
	}

	log.Printf("[server] %q joined as tank %d", msg.PlayerName, id)
}

func (s *Server) onDisconnect(client *router.NetworkClient, err error) {
	if err != nil {
		log.Printf("[server] client %s disconnected: %v", client.Id(), err)
	} else {
		log.Printf("[server] client %s disconnected", client.Id())
	}

	s.mu.Lock()
	session, exists := s.sessions[client]
	if exists {
		delete(s.sessions, client)
	}
	s.mu.Unlock()

	if !exists {
		return
	}

	id := s.networkID(session)
	s.arena.Space.Remove(session.Body.Object)
	if s.world.Valid(session.Entity) {
		s.world.Remove(session.Entity)
	}

	s.mu.RLock()
	s.broadcast(messages.EntityLeft{ID: id})
	s.mu.RUnlock()
}

// onDriveInput stores the latest control state; the tick loop consumes it.
func (s *Server) onDriveInput(client *router.NetworkClient, input messages.DriveInput) {
	s.mu.RLock()
	session, exists := s.sessions[client]
	s.mu.RUnlock()

	if !exists || input.Sequence < session.LastInputSeq {
		return
	}
	session.Input = input
	session.LastInputSeq = input.Sequence
}

// ProcessCommands runs one authoritative tick: drive physics, firing,
// shells, respawns, and per-client reconciliation.
func (s *Server) ProcessCommands() {
	dt := 1.0 / float64(s.loop.tickRate)
	stepsPerTick := 60 / s.loop.tickRate
	if stepsPerTick < 1 {
		stepsPerTick = 1
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for client, session := range s.sessions {
		if !s.world.Valid(session.Entity) {
			continue
		}

		if session.alive() {
			// Sub-stepping keeps the 60 Hz drive constants correct at the
			// server's lower tick rate, and matches client prediction.
			for step := 0; step < stepsPerTick; step++ {
				session.Body.Step(session.Input)
			}
			if session.Input.Fire {
				s.spawnShell(client, session)
			}
		} else if time.Now().After(session.RespawnAt) {
			s.respawn(session)
		}

		s.writeComponents(session)
		s.sendReconciliation(client, session)
	}

	s.updateShells(dt, s.loop.TickCount())
}

// writeComponents publishes a session's physics state into its synced
// entity.
func (s *Server) writeComponents(session *TankSession) {
	entry := s.world.Entry(session.Entity)
	pos := session.Body.Position()

	pose := netcomponents.NetPose.Get(entry)
	pose.X = pos.X
	pose.Y = pos.Y
	pose.Z = pos.Z
	pose.Yaw = session.Body.Yaw
	pose.TurretYaw = session.Body.TurretYaw
	pose.AimPitch = session.Body.AimPitch

	vel := netcomponents.NetVelocity.Get(entry)
	vel.VelX = math.Cos(session.Body.Yaw) * session.Body.Speed
	vel.VelZ = math.Sin(session.Body.Yaw) * session.Body.Speed

	state := netcomponents.NetTankState.Get(entry)
	state.Health = session.Health
	state.Status = session.Status
	state.LastSequence = session.LastInputSeq
	if state.MaxHealth == 0 {
		state.MaxHealth = config.Tank.Health
	}
}

// sendReconciliation tells one client exactly where the server put its tank.
func (s *Server) sendReconciliation(client *router.NetworkClient, session *TankSession) {
	pos := session.Body.Position()
	msg := messages.Reconciliation{
		X: pos.X, Y: pos.Y, Z: pos.Z,
		Yaw:          session.Body.Yaw,
		TurretYaw:    session.Body.TurretYaw,
		AimPitch:     session.Body.AimPitch,
		VelX:         math.Cos(session.Body.Yaw) * session.Body.Speed,
		VelZ:         math.Sin(session.Body.Yaw) * session.Body.Speed,
		LastSequence: session.LastInputSeq,
	}
	if err := client.SendMessage(msg); err != nil {
		log.Printf("[server] reconciliation send failed: %v", err)
	}
}

func (s *Server) applyDamage(session *TankSession, damage int) {
	session.Health -= damage
	if session.Health > 0 {
		return
	}
	session.Health = 0
	session.Status = messages.StatusDead
	session.RespawnAt = time.Now().Add(respawnDelay)
	session.Body.ZeroVelocity()
}

func (s *Server) respawn(session *TankSession) {
	spawn := s.arena.NextSpawn()
	session.Body.SetTransform(gamemath.Vec3{X: spawn.X, Z: spawn.Z}, session.Body.Yaw)
	session.Body.Refresh()
	session.Body.ZeroVelocity()
	session.Health = config.Tank.Health
	session.Status = messages.StatusAlive
}

// broadcast sends one message to every connected session. Callers hold at
// least a read lock.
func (s *Server) broadcast(msg any) {
	for client := range s.sessions {
		if err := client.SendMessage(msg); err != nil {
			log.Printf("[server] broadcast to %s failed: %v", client.Id(), err)
		}
	}
}

// networkID returns a session's esync id.
func (s *Server) networkID(session *TankSession) uint {
	entry := s.world.Entry(session.Entity)
	if id := esync.GetNetworkId(entry); id != nil {
		return uint(*id)
	}
	return 0
}

// sessionByObject finds the session owning a resolv hull object.
func (s *Server) sessionByObject(obj *resolv.Object) *TankSession {
	for _, session := range s.sessions {
		if session.Body.Object == obj {
			return session
		}
	}
	return nil
}

// World returns the ECS world.
func (s *Server) World() donburi.World {
	return s.world
}

// PlayerCount returns the number of connected players.
func (s *Server) PlayerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

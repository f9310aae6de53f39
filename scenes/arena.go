package scenes

import (
	"log"
	"sync"
	"time"

	"github.com/bastionworks/ironclad-mp/archetypes"
	"github.com/bastionworks/ironclad-mp/assets"
	"github.com/bastionworks/ironclad-mp/components"
	cfg "github.com/bastionworks/ironclad-mp/config"
	"github.com/bastionworks/ironclad-mp/netsync"
	"github.com/bastionworks/ironclad-mp/network"
	"github.com/bastionworks/ironclad-mp/shared/gamemath"
	"github.com/bastionworks/ironclad-mp/shared/messages"
	"github.com/bastionworks/ironclad-mp/shared/netcomponents"
	"github.com/bastionworks/ironclad-mp/systems"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/leap-fish/necs/esync"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// ArenaScene runs a networked match. All entity mutation happens on the
// Ebiten update goroutine; the network callbacks only fill channels.
type ArenaScene struct {
	ecsWorld     *ecs.ECS
	sceneChanger SceneChanger
	netClient    *network.Client
	registry     *netsync.Registry
	prediction   *systems.NetPrediction
	once         sync.Once
}

func NewArenaScene(sc SceneChanger, client *network.Client) *ArenaScene {
	prediction := systems.NewNetPrediction()
	registry := netsync.NewRegistry(donburi.NewWorld(), netsync.Options{
		LocalID: uint(client.NetworkID()),
		Interp: netsync.InterpTuning{
			StaleAfter:         cfg.Sync.StaleAfter,
			ExtrapolationBlend: cfg.Sync.ExtrapolationBlend,
			HistoryWindow:      cfg.Sync.HistoryWindow,
			LowRTT:             cfg.Sync.LowRTT,
			MidRTT:             cfg.Sync.MidRTT,
			RateLowRTT:         cfg.Sync.RateLowRTT,
			RateMidRTT:         cfg.Sync.RateMidRTT,
			RateHighRTT:        cfg.Sync.RateHighRTT,
		},
		Reconcile: netsync.ReconcileTuning{
			IgnoreBand:      cfg.Reconcile.IgnoreBand,
			HardThreshold:   cfg.Reconcile.HardThreshold,
			SoftBlend:       cfg.Reconcile.SoftBlend,
			TurretTolerance: cfg.Reconcile.TurretTolerance,
		},
		Projectile: netsync.ProjectileTuning{
			MaxLifetime: cfg.Projectile.MaxLifetime,
			RecentSync:  cfg.Projectile.RecentSync,
			LaunchDelay: cfg.Projectile.LaunchDelay,
		},
		RejoinWindow: cfg.Reconcile.RejoinWindow,
		PredictedAt:  prediction.Buffer.PredictedAt,
		LocalPose: func() (netsync.Pose, bool) {
			if !prediction.Initialized {
				return netsync.Pose{}, false
			}
			return prediction.Pose, true
		},
	})

	return &ArenaScene{
		sceneChanger: sc,
		netClient:    client,
		registry:     registry,
		prediction:   prediction,
	}
}

func (as *ArenaScene) Update() {
	as.once.Do(as.configure)

	state := as.netClient.State()
	if state == network.StateDisconnected || state == network.StateError {
		log.Println("[arena] disconnected")
		as.netClient.Disconnect()
		as.sceneChanger.ChangeScene(NewConnectingScene(as.sceneChanger, as.netClient))
		return
	}

	now := time.Now()
	as.drainNetwork(now)
	as.netClient.MaybePing()

	as.ecsWorld.Update()
}

func (as *ArenaScene) Draw(screen *ebiten.Image) {
	if as.ecsWorld == nil {
		return
	}
	as.ecsWorld.Draw(screen)
}

func (as *ArenaScene) configure() {
	as.ecsWorld = ecs.NewECS(as.registry.World())

	arena, err := assets.LoadArena(as.netClient.Arena())
	if err != nil {
		log.Printf("[arena] load %q failed: %v", as.netClient.Arena(), err)
		names := assets.ListArenaNames()
		arena, err = assets.LoadArena(names[0])
		if err != nil {
			log.Fatalf("[arena] no loadable arena: %v", err)
		}
	}

	arenaEntry := archetypes.Arena.Spawn(as.ecsWorld)
	components.Arena.SetValue(arenaEntry, components.ArenaData{Arena: arena})

	cam := archetypes.Camera.Spawn(as.ecsWorld)
	components.Camera.Get(cam).Zoom = 1.0

	spawn := arena.Spawns[0]
	as.prediction.InitCollision(arena, spawn.X, spawn.Z)

	sendFn := func(msg any) error {
		if as.netClient.State() != network.StateJoinedGame {
			return nil
		}
		return as.netClient.SendMessage(msg)
	}

	as.ecsWorld.AddSystem(systems.NewNetworkInputSystem(sendFn, as.prediction, as.registry))
	as.ecsWorld.AddSystem(systems.NewNetInterpSystem(as.registry, as.netClient.RTT))
	as.ecsWorld.AddSystem(systems.NewNetCameraSystem(as.prediction))

	renderer := &systems.NetRenderer{
		Registry:   as.registry,
		Prediction: as.prediction,
		RTT:        as.netClient.RTT,
	}
	as.ecsWorld.AddRenderer(cfg.Default, renderer.DrawArena)
	as.ecsWorld.AddRenderer(cfg.Default, renderer.DrawTanks)
	as.ecsWorld.AddRenderer(cfg.Default, renderer.DrawProjectiles)
	as.ecsWorld.AddRenderer(cfg.Default, renderer.DrawDebug)
	as.ecsWorld.AddRenderer(cfg.Default, renderer.DrawNetworkHUD)

	drained := as.registry.SetReady(nil)
	if drained > 0 {
		log.Printf("[arena] applied %d deferred messages", drained)
	}
}

// drainNetwork moves everything the network goroutines queued into the
// registry, on this goroutine.
func (as *ArenaScene) drainNetwork(now time.Time) {
	for _, m := range as.netClient.DrainReconciliations() {
		as.registry.Dispatch(m, now)
	}
	for _, m := range as.netClient.DrainProjectileSpawns() {
		as.registry.Dispatch(m, now)
	}
	for _, m := range as.netClient.DrainProjectileUpdates() {
		as.registry.Dispatch(m, now)
	}
	for _, m := range as.netClient.DrainProjectileHits() {
		as.registry.Dispatch(m, now)
	}
	for _, m := range as.netClient.DrainEntityLeft() {
		as.registry.Dispatch(m, now)
	}

	if snap := as.netClient.LatestSnapshot(); snap != nil {
		as.applySnapshot(*snap, now)
	}
}

// applySnapshot converts an esync world snapshot into a full roster and
// hands it to the registry. The local tank's first authoritative position
// seeds the prediction body.
func (as *ArenaScene) applySnapshot(snapshot esync.WorldSnapshot, now time.Time) {
	roster := messages.Roster{Tanks: make([]messages.TankSnapshot, 0, len(snapshot))}

	for _, ent := range snapshot {
		var pose *netcomponents.NetPoseData
		var state *netcomponents.NetTankStateData

		for _, componentBytes := range ent.State {
			instance, err := esync.Mapper.Deserialize(componentBytes)
			if err != nil {
				continue
			}
			switch v := instance.(type) {
			case netcomponents.NetPoseData:
				cp := v
				pose = &cp
			case netcomponents.NetTankStateData:
				cp := v
				state = &cp
			}
		}
		if pose == nil || state == nil {
			continue
		}

		roster.Tanks = append(roster.Tanks, messages.TankSnapshot{
			ID:        uint(ent.Id),
			X:         pose.X,
			Y:         pose.Y,
			Z:         pose.Z,
			Yaw:       pose.Yaw,
			TurretYaw: pose.TurretYaw,
			AimPitch:  pose.AimPitch,
			Health:    state.Health,
			MaxHealth: state.MaxHealth,
			Status:    state.Status,
			Team:      state.Team,
		})

		if ent.Id == as.netClient.NetworkID() && !as.prediction.Initialized {
			as.prediction.AcceptSpawn(gamemath.Vec3{X: pose.X, Y: pose.Y, Z: pose.Z}, pose.Yaw)
		}
	}

	as.registry.Dispatch(roster, now)
}

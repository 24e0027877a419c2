package spawn

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Versifine/spawnpoint/internal/event"
	"github.com/Versifine/spawnpoint/internal/logger"
	"github.com/Versifine/spawnpoint/internal/message"
	"github.com/Versifine/spawnpoint/internal/record"
)

// Deps are the host collaborators an Engine is built from.
type Deps struct {
	Record    record.Store
	Worlds    WorldResolver
	Server    Server
	Effects   EffectResolver
	Messages  Messenger
	Config    ConfigSource
	Scheduler TaskScheduler
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Engine ties the spawn store, void detection and teleports to the
// server's join, move and quit events, and serves the spawn commands.
type Engine struct {
	store      *Store
	void       *VoidDetector
	teleporter *Teleporter
	teleports  *TeleportLog

	worlds    WorldResolver
	server    Server
	messages  Messenger
	config    ConfigSource
	scheduler TaskScheduler
	log       *slog.Logger
}

func NewEngine(d Deps) *Engine {
	teleports := NewTeleportLog(d.Clock)
	store := NewStore(d.Record, d.Worlds)
	return &Engine{
		store:      store,
		void:       NewVoidDetector(d.Worlds, store, teleports),
		teleporter: NewTeleporter(store, d.Server, d.Effects, d.Messages, d.Config, teleports),
		teleports:  teleports,
		worlds:     d.Worlds,
		server:     d.Server,
		messages:   d.Messages,
		config:     d.Config,
		scheduler:  d.Scheduler,
		log:        logger.Component("spawn"),
	}
}

func (e *Engine) Store() *Store { return e.store }

func (e *Engine) Teleports() *TeleportLog { return e.teleports }

// Register subscribes the engine to bus. Handlers run on the publishing
// goroutine, which must be the scheduler's.
func (e *Engine) Register(bus *event.Bus) {
	bus.Subscribe(event.EventPlayerJoin, e.onJoin)
	bus.Subscribe(event.EventPlayerMove, e.onMove)
	bus.Subscribe(event.EventPlayerQuit, e.onQuit)
	bus.Subscribe(event.EventWorldLoad, e.onWorldLoad)
}

func (e *Engine) onJoin(raw any) {
	evt, ok := raw.(*event.PlayerJoinEvent)
	if !ok {
		return
	}
	p, ok := e.server.Player(evt.PlayerID)
	if !ok {
		return
	}
	if !e.joinTeleportDue(p) {
		return
	}

	// the session is not fully set up until the next tick. A rejoin before
	// then is a new session with its own task.
	e.scheduler.RunTask(func() {
		if !p.Online() {
			return
		}
		if err := e.teleporter.TeleportPlayer(p); err != nil {
			e.log.Warn("Join teleport failed", "player", p.Name(), "error", err)
		}
	})
}

func (e *Engine) joinTeleportDue(p Player) bool {
	cfg := e.config.Snapshot()
	allJoins := cfg.TeleportOnJoin.Enabled
	firstJoin := cfg.TeleportOnFirstJoin.Enabled && !p.HasPlayedBefore()
	if !allJoins && !firstJoin {
		return false
	}
	if p.HasPermission(PermBypassJoinTeleport) {
		return false
	}
	if !worldEligible(p, p.Location().World, cfg.Filter) {
		return false
	}
	return e.store.Exists()
}

func (e *Engine) onMove(raw any) {
	evt, ok := raw.(*event.PlayerMoveEvent)
	if !ok {
		return
	}
	p, ok := e.server.Player(evt.PlayerID)
	if !ok {
		return
	}

	verdict := e.void.Evaluate(p, evt.From, evt.To, e.config.Snapshot())
	if verdict != VerdictRescue {
		return
	}
	e.log.Info("Rescuing player from the void", "player", p.Name(), "y", evt.To.Y)
	if err := e.teleporter.TeleportPlayer(p); err != nil {
		e.log.Warn("Void rescue failed", "player", p.Name(), "error", err)
	}
}

func (e *Engine) onQuit(raw any) {
	evt, ok := raw.(*event.PlayerQuitEvent)
	if !ok {
		return
	}
	e.teleports.Forget(evt.PlayerID)
}

func (e *Engine) onWorldLoad(raw any) {
	evt, ok := raw.(*event.WorldEvent)
	if !ok {
		return
	}
	if p, ok := e.store.Get(); ok && p.World == evt.Name {
		e.log.Info("Spawn world loaded", "world", evt.Name)
	}
}

// Spawn is the explicit teleport request of p.
func (e *Engine) Spawn(p Player) error {
	cfg := e.config.Snapshot()
	if !worldEligible(p, p.Location().World, cfg.Filter) {
		e.messages.Send(p, message.WorldDisabled)
		return nil
	}
	if !gamemodeEligible(p, cfg.Filter) {
		e.messages.Send(p, message.GamemodeRestricted)
		return nil
	}
	return e.teleporter.TeleportPlayer(p)
}

// SetSpawn stores p's current location as the spawn point.
func (e *Engine) SetSpawn(p Player) error {
	if err := e.store.Set(PointFromLocation(p.Location()), true); err != nil {
		e.log.Error("Failed to save spawn point", "player", p.Name(), "error", err)
		e.messages.Send(p, message.SpawnSetFailed)
		return fmt.Errorf("set spawn: %w", err)
	}
	e.messages.Send(p, message.SpawnSet)
	return nil
}

// Reload runs sources (config, message files), re-reads the spawn record
// and tells r. Nothing is sent when a step fails.
func (e *Engine) Reload(r message.Recipient, sources func() error) error {
	if sources != nil {
		if err := sources(); err != nil {
			return fmt.Errorf("reload: %w", err)
		}
	}
	if err := e.store.Refresh(); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	e.log.Info("Reloaded")
	e.messages.Send(r, message.Reloaded)
	return nil
}

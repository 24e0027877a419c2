// Package host is a small in-memory game server: worlds, player sessions
// and the events they raise. It implements the capabilities the spawn
// engine needs and drives it from the debug console and tests.
//
// Like the engine, a Server is confined to the scheduler goroutine.
package host

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/Versifine/spawnpoint/internal/event"
	"github.com/Versifine/spawnpoint/internal/logger"
	"github.com/Versifine/spawnpoint/internal/physics"
	"github.com/Versifine/spawnpoint/internal/spawn"
	"github.com/Versifine/spawnpoint/internal/world"
)

var (
	ErrUnknownPlayer = errors.New("unknown player")
	ErrUnknownWorld  = errors.New("unknown world")
	ErrAlreadyOnline = errors.New("player already online")
)

// VoidKillDepth is how far below the world floor a falling player dies.
const VoidKillDepth = 64

// MaxFallTicks bounds one Fall simulation.
const MaxFallTicks = 20 * 60

type offline struct {
	loc  world.Location
	mode string
}

type Server struct {
	worlds   *world.Registry
	unloaded map[string]*world.World
	bus      *event.Bus
	out      io.Writer
	log      *slog.Logger

	spawn   world.Location
	players map[uuid.UUID]*Player
	known   map[uuid.UUID]offline
}

// NewServer creates a server whose new players appear at defaultSpawn.
// Chat output goes to out.
func NewServer(worlds *world.Registry, bus *event.Bus, out io.Writer, defaultSpawn world.Location) *Server {
	if out == nil {
		out = io.Discard
	}
	return &Server{
		worlds:   worlds,
		unloaded: make(map[string]*world.World),
		bus:      bus,
		out:      out,
		log:      logger.Component("host"),
		spawn:    defaultSpawn,
		players:  make(map[uuid.UUID]*Player),
		known:    make(map[uuid.UUID]offline),
	}
}

func (s *Server) Worlds() *world.Registry { return s.worlds }

func (s *Server) Player(id uuid.UUID) (spawn.Player, bool) {
	p, ok := s.players[id]
	if !ok {
		return nil, false
	}
	return p, true
}

func (s *Server) PlayerByName(name string) (*Player, bool) {
	p, ok := s.players[OfflineUUID(name)]
	return p, ok
}

// Online returns the online players sorted by name.
func (s *Server) Online() []*Player {
	out := make([]*Player, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// NearbyPlayers returns online players in p's world inside a box of
// radius blocks around p.
func (s *Server) NearbyPlayers(p spawn.Player, radius float64) []spawn.Player {
	center := p.Location()
	var out []spawn.Player
	for _, other := range s.Online() {
		if other.id == p.ID() || other.loc.World != center.World {
			continue
		}
		if math.Abs(other.loc.X-center.X) <= radius &&
			math.Abs(other.loc.Y-center.Y) <= radius &&
			math.Abs(other.loc.Z-center.Z) <= radius {
			out = append(out, other)
		}
	}
	return out
}

// Join starts a session. Returning players come back where they left.
func (s *Server) Join(name string) (*Player, error) {
	id := OfflineUUID(name)
	if _, ok := s.players[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyOnline, name)
	}

	p := &Player{
		server: s,
		id:     id,
		name:   name,
		loc:    s.spawn,
		mode:   GameModeSurvival,
		perms:  make(map[string]bool),
		hidden: make(map[uuid.UUID]bool),
		online: true,
	}
	if last, ok := s.known[id]; ok {
		p.playedBefore = true
		p.mode = last.mode
		if _, loaded := s.worlds.Lookup(last.loc.World); loaded {
			p.loc = last.loc
		}
	}
	s.players[id] = p
	s.log.Info("Player joined", "player", name, "uuid", id.String(), "location", p.loc.String())

	s.bus.Publish(event.EventPlayerJoin, event.NewPlayerJoinEvent(id, name, !p.playedBefore))
	return p, nil
}

func (s *Server) Quit(name string) error {
	p, ok := s.PlayerByName(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, name)
	}
	p.online = false
	delete(s.players, p.id)
	s.known[p.id] = offline{loc: p.loc, mode: p.mode}
	s.log.Info("Player left", "player", name)

	s.bus.Publish(event.EventPlayerQuit, event.NewPlayerQuitEvent(p.id, name))
	return nil
}

// Move puts a player at to and raises a move event.
func (s *Server) Move(name string, to world.Location) error {
	p, ok := s.PlayerByName(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, name)
	}
	if _, ok := s.worlds.Lookup(to.World); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWorld, to.World)
	}
	s.move(p, to)
	return nil
}

func (s *Server) move(p *Player, to world.Location) {
	from := p.loc
	p.loc = to
	s.bus.Publish(event.EventPlayerMove, event.NewPlayerMoveEvent(p.id, from, to))
}

// FallResult describes how a Fall ended.
type FallResult struct {
	Ticks   int
	Landed  bool
	Damage  int
	Rescued bool
	Died    bool
	Final   world.Location
}

// Fall lets a player drop from where they stand, one move event per tick,
// until they land, get teleported away or fall out of the world.
func (s *Server) Fall(name string) (FallResult, error) {
	p, ok := s.PlayerByName(name)
	if !ok {
		return FallResult{}, fmt.Errorf("%w: %s", ErrUnknownPlayer, name)
	}
	w, ok := s.worlds.Lookup(p.loc.World)
	if !ok {
		return FallResult{}, fmt.Errorf("%w: %s", ErrUnknownWorld, p.loc.World)
	}

	state := &physics.FallState{Position: physics.Vec3{X: p.loc.X, Y: p.loc.Y, Z: p.loc.Z}}
	teleports := p.teleports
	var res FallResult
	for res.Ticks = 1; res.Ticks <= MaxFallTicks; res.Ticks++ {
		state.FallDistance = float64(p.fallDistance)
		landed := physics.FallTick(state, w)
		p.fallDistance = float32(state.FallDistance)

		to := p.loc
		to.Y = state.Position.Y
		if to.Y != p.loc.Y {
			s.move(p, to)
		}

		switch {
		case p.teleports != teleports || !p.online:
			res.Rescued = p.online
		case state.OnGround:
			res.Landed = true
			res.Damage = physics.FallDamage(landed)
		case state.Position.Y < float64(w.MinHeight()-VoidKillDepth):
			res.Died = true
			p.fallDistance = 0
		default:
			continue
		}
		break
	}
	res.Final = p.loc
	s.log.Info("Fall finished", "player", name, "ticks", res.Ticks, "landed", res.Landed,
		"damage", res.Damage, "rescued", res.Rescued, "died", res.Died)
	return res, nil
}

func (s *Server) SetGameMode(name, mode string) error {
	p, ok := s.PlayerByName(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, name)
	}
	m, ok := normalizeGameMode(mode)
	if !ok {
		return fmt.Errorf("unknown game mode %q", mode)
	}
	p.mode = m
	return nil
}

func (s *Server) SetPermission(name, node string, value bool) error {
	p, ok := s.PlayerByName(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, name)
	}
	if value {
		p.perms[node] = true
	} else {
		delete(p.perms, node)
	}
	return nil
}

// SetHidden hides target from viewer, or shows it again.
func (s *Server) SetHidden(viewer, target string, hidden bool) error {
	v, ok := s.PlayerByName(viewer)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, viewer)
	}
	t, ok := s.PlayerByName(target)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, target)
	}
	if hidden {
		v.hidden[t.id] = true
	} else {
		delete(v.hidden, t.id)
	}
	return nil
}

// LoadWorld loads w, or a previously unloaded world when w is nil.
func (s *Server) LoadWorld(name string, w *world.World) error {
	if w == nil {
		var ok bool
		if w, ok = s.unloaded[name]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownWorld, name)
		}
	}
	delete(s.unloaded, w.Name())
	s.worlds.Load(w)
	s.log.Info("World loaded", "world", w.Name(), "dimension", w.Dimension())
	s.bus.Publish(event.EventWorldLoad, &event.WorldEvent{Name: w.Name()})
	return nil
}

// UnloadWorld keeps the world around so LoadWorld can bring it back.
// Worlds with players in them stay loaded.
func (s *Server) UnloadWorld(name string) error {
	for _, p := range s.players {
		if p.loc.World == name {
			return fmt.Errorf("world %s still has players", name)
		}
	}
	w, ok := s.worlds.Unload(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWorld, name)
	}
	s.unloaded[name] = w
	s.log.Info("World unloaded", "world", name)
	s.bus.Publish(event.EventWorldUnload, &event.WorldEvent{Name: name})
	return nil
}

var (
	_ spawn.Player = (*Player)(nil)
	_ spawn.Server = (*Server)(nil)
)

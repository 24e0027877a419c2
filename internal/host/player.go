package host

import (
	"crypto/md5"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Versifine/spawnpoint/internal/effect"
	"github.com/Versifine/spawnpoint/internal/world"
)

const (
	GameModeSurvival  = "SURVIVAL"
	GameModeCreative  = "CREATIVE"
	GameModeAdventure = "ADVENTURE"
	GameModeSpectator = "SPECTATOR"
)

// OfflineUUID derives the id an offline-mode server gives a player name.
func OfflineUUID(name string) uuid.UUID {
	hash := md5.Sum([]byte("OfflinePlayer:" + name))
	// Set version to 3: byte 6 → 0011xxxx
	hash[6] = (hash[6] & 0x0F) | 0x30
	// Set variant to RFC 4122: byte 8 → 10xxxxxx
	hash[8] = (hash[8] & 0x3F) | 0x80
	return uuid.UUID(hash)
}

// Player is a session on the in-memory server.
type Player struct {
	server *Server

	id           uuid.UUID
	name         string
	loc          world.Location
	mode         string
	perms        map[string]bool
	hidden       map[uuid.UUID]bool
	playedBefore bool
	online       bool
	fallDistance float32

	teleports int
	particles int
	sounds    int
}

func (p *Player) ID() uuid.UUID            { return p.id }
func (p *Player) Name() string             { return p.name }
func (p *Player) Location() world.Location { return p.loc }
func (p *Player) GameMode() string         { return p.mode }
func (p *Player) HasPlayedBefore() bool    { return p.playedBefore }
func (p *Player) Online() bool             { return p.online }
func (p *Player) FallDistance() float32    { return p.fallDistance }

// Teleports counts completed teleports of this session.
func (p *Player) Teleports() int { return p.teleports }

// ParticlesSeen counts particles and legacy effects shown to this player.
func (p *Player) ParticlesSeen() int { return p.particles }

func (p *Player) SoundsHeard() int { return p.sounds }

func (p *Player) HasPermission(node string) bool {
	if p.perms["*"] {
		return true
	}
	return p.perms[node]
}

func (p *Player) SetFallDistance(distance float32) {
	p.fallDistance = distance
}

func (p *Player) SendMessage(text string) {
	fmt.Fprintf(p.server.out, "[%s] %s\n", p.name, text)
}

func (p *Player) Teleport(to world.Location) error {
	if _, ok := p.server.worlds.Lookup(to.World); !ok {
		return fmt.Errorf("world %q is not loaded", to.World)
	}
	from := p.loc
	p.loc = to
	p.teleports++
	p.server.log.Info("Player teleported", "player", p.name, "from", from.String(), "to", to.String())
	return nil
}

func (p *Player) CanSee(other uuid.UUID) bool {
	return !p.hidden[other]
}

func (p *Player) SpawnParticle(pt effect.Particle, at world.Location, count int) {
	p.particles += count
	p.server.log.Debug("Particles", "viewer", p.name, "particle", pt.Name, "count", count, "at", at.String())
}

func (p *Player) PlayEffect(pt effect.Particle, at world.Location) {
	p.particles++
}

func (p *Player) PlaySound(s effect.Sound, at world.Location, volume, pitch float32) {
	p.sounds++
	p.server.log.Debug("Sound", "listener", p.name, "sound", s.Name, "volume", volume, "pitch", pitch)
}

func normalizeGameMode(mode string) (string, bool) {
	switch m := strings.ToUpper(mode); m {
	case GameModeSurvival, GameModeCreative, GameModeAdventure, GameModeSpectator:
		return m, true
	default:
		return "", false
	}
}

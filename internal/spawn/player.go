// Package spawn owns the spawn point and decides when players are sent to
// it: on request, on join and when they fall into the void.
//
// Nothing in this package locks. Every method must be called from the
// server's main goroutine (the event.Scheduler tick and the event.Bus
// handlers it drives); work from other goroutines is posted through the
// scheduler first.
package spawn

import (
	"github.com/google/uuid"

	"github.com/Versifine/spawnpoint/internal/config"
	"github.com/Versifine/spawnpoint/internal/effect"
	"github.com/Versifine/spawnpoint/internal/message"
	"github.com/Versifine/spawnpoint/internal/world"
)

// Permission nodes checked against the acting player.
const (
	PermBypassGamemode     = "spawn.bypass.gamemode-restriction"
	PermBypassJoinTeleport = "spawn.bypass.join-teleport"
	PermBypassWorldList    = "spawn.bypass.world-list"
	PermBypassVoidTeleport = "spawn.bypass.void-teleport"
)

// NearbyRadius is how far away other players still see teleport particles.
const NearbyRadius = 16.0

// Player is what the engine needs from an online player.
type Player interface {
	message.Recipient

	ID() uuid.UUID
	Location() world.Location
	GameMode() string
	HasPermission(node string) bool
	HasPlayedBefore() bool
	Online() bool

	SetFallDistance(distance float32)
	// Teleport moves the player. It fails when the destination world is gone.
	Teleport(to world.Location) error

	// CanSee reports whether this player can currently see the other one.
	CanSee(other uuid.UUID) bool
	SpawnParticle(p effect.Particle, at world.Location, count int)
	// PlayEffect plays one legacy particle effect.
	PlayEffect(p effect.Particle, at world.Location)
	PlaySound(s effect.Sound, at world.Location, volume, pitch float32)
}

type Server interface {
	Player(id uuid.UUID) (Player, bool)
	// NearbyPlayers returns the other players within radius of p, p excluded.
	NearbyPlayers(p Player, radius float64) []Player
}

type WorldResolver interface {
	Lookup(name string) (*world.World, bool)
}

// EffectResolver maps configured names to the effects the running server
// version supports. Unknown names resolve to false.
type EffectResolver interface {
	ResolveParticle(name string) (effect.Particle, bool)
	ResolveSound(name string) (effect.Sound, bool)
}

type Messenger interface {
	Send(r message.Recipient, key string)
}

// ConfigSource hands out the configuration in force for the current event.
type ConfigSource interface {
	Snapshot() config.Plugin
}

// TaskScheduler defers a task to the next server tick.
type TaskScheduler interface {
	RunTask(task func())
}

package spawn

import (
	"fmt"
	"log/slog"

	"github.com/Versifine/spawnpoint/internal/config"
	"github.com/Versifine/spawnpoint/internal/effect"
	"github.com/Versifine/spawnpoint/internal/logger"
	"github.com/Versifine/spawnpoint/internal/message"
	"github.com/Versifine/spawnpoint/internal/world"
)

// MaxLegacyParticles caps the one-by-one effect loop on legacy servers.
const MaxLegacyParticles = 2000

// Teleporter sends players to the spawn point and plays the feedback.
type Teleporter struct {
	store     *Store
	server    Server
	effects   EffectResolver
	messages  Messenger
	config    ConfigSource
	teleports *TeleportLog
	log       *slog.Logger
}

func NewTeleporter(store *Store, server Server, effects EffectResolver, messages Messenger, cfg ConfigSource, teleports *TeleportLog) *Teleporter {
	return &Teleporter{
		store:     store,
		server:    server,
		effects:   effects,
		messages:  messages,
		config:    cfg,
		teleports: teleports,
		log:       logger.Component("spawn.teleport"),
	}
}

// TeleportPlayer moves p to the spawn point. Without a spawn point the
// player only gets the no-spawn message. Only a failed relocation is
// returned; particle and sound problems are logged.
func (t *Teleporter) TeleportPlayer(p Player) error {
	point, ok := t.store.Get()
	if !ok {
		t.messages.Send(p, message.NoSpawn)
		return nil
	}
	cfg := t.config.Snapshot()

	if cfg.FallDamage.Enabled {
		p.SetFallDistance(0)
	}

	dest := point.Location()
	if cfg.UsePlayerHeadRotation.Enabled {
		look := p.Location()
		dest = dest.WithRotation(look.Yaw, look.Pitch)
	}
	if err := p.Teleport(dest); err != nil {
		t.log.Warn("Teleport to spawn failed", "player", p.Name(), "error", err)
		return fmt.Errorf("teleport %s to spawn: %w", p.Name(), err)
	}
	t.teleports.Record(p.ID())
	t.log.Debug("Teleported to spawn", "player", p.Name(), "location", dest.String())

	t.spawnParticles(p, dest, cfg.Particles)
	t.playSound(p, cfg.Sounds)

	t.messages.Send(p, message.Teleport)
	return nil
}

// spawnParticles shows the particle at the spawn point to p and to every
// nearby player that can see p.
func (t *Teleporter) spawnParticles(p Player, at world.Location, cfg config.ParticleConfig) {
	if !cfg.Enabled {
		return
	}
	particle, ok := t.effects.ResolveParticle(cfg.Particle)
	if !ok {
		t.log.Warn("Particle does not exist in this server version", "particle", cfg.Particle)
		return
	}

	viewers := []Player{p}
	for _, other := range t.server.NearbyPlayers(p, NearbyRadius) {
		if other.ID() != p.ID() && other.CanSee(p.ID()) {
			viewers = append(viewers, other)
		}
	}

	if particle.Legacy {
		n := min(cfg.Amount, MaxLegacyParticles)
		for _, v := range viewers {
			for i := 0; i < n; i++ {
				v.PlayEffect(particle, at)
			}
		}
		return
	}
	for _, v := range viewers {
		v.SpawnParticle(particle, at, cfg.Amount)
	}
}

func (t *Teleporter) playSound(p Player, cfg config.SoundConfig) {
	if !cfg.Enabled {
		return
	}
	name := cfg.Sound
	if name == "" {
		name = config.DefaultSound
	}
	sound, ok := t.effects.ResolveSound(name)
	if !ok {
		t.log.Warn("Sound does not exist in this server version", "sound", name)
		return
	}
	p.PlaySound(sound, p.Location(), float32(cfg.Volume), float32(cfg.Pitch))
}

var _ EffectResolver = (*effect.Registry)(nil)

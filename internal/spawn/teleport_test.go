package spawn

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Versifine/spawnpoint/internal/config"
	"github.com/Versifine/spawnpoint/internal/effect"
	"github.com/Versifine/spawnpoint/internal/message"
	"github.com/Versifine/spawnpoint/internal/world"
)

type teleportFixture struct {
	worlds     *world.Registry
	rec        *memRecord
	server     *fakeServer
	messages   *recordingMessenger
	holder     *config.Holder
	clock      *fakeClock
	teleports  *TeleportLog
	teleporter *Teleporter
	player     *fakePlayer
}

func newTeleportFixture(t *testing.T, rec *memRecord, effects EffectResolver) *teleportFixture {
	t.Helper()
	worlds := newWorlds(t)
	player := newFakePlayer("Steve", world.Location{World: "world", X: 50, Y: 64, Z: 50, Yaw: -30, Pitch: 15})
	server := newFakeServer(player)
	messages := newRecordingMessenger()

	p := config.DefaultPlugin()
	p.Particles.Enabled = true
	p.Sounds.Enabled = true
	holder := config.Static(p)

	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	teleports := NewTeleportLog(clock.Now)
	store := NewStore(rec, worlds)

	return &teleportFixture{
		worlds:     worlds,
		rec:        rec,
		server:     server,
		messages:   messages,
		holder:     holder,
		clock:      clock,
		teleports:  teleports,
		teleporter: NewTeleporter(store, server, effects, messages, holder, teleports),
		player:     player,
	}
}

func (f *teleportFixture) update(fn func(p *config.Plugin)) {
	p := f.holder.Snapshot()
	fn(&p)
	f.holder.Store(p)
}

func (f *teleportFixture) addPlayer(name string, loc world.Location) *fakePlayer {
	p := newFakePlayer(name, loc)
	f.server.players[p.id] = p
	return p
}

var spawnLocation = world.Location{World: "world", X: 0.5, Y: 100, Z: 0.5, Yaw: 90, Pitch: 0}

func TestTeleportWithoutSpawnOnlySendsNoSpawn(t *testing.T) {
	f := newTeleportFixture(t, newMemRecord(nil), effect.Modern())
	before := f.player.loc

	require.NoError(t, f.teleporter.TeleportPlayer(f.player))

	require.Equal(t, []string{message.NoSpawn}, f.messages.sent["Steve"])
	require.Empty(t, f.player.teleports)
	require.Equal(t, before, f.player.loc)
	require.Empty(t, f.player.particles)
	require.Zero(t, f.player.effects)
	require.Empty(t, f.player.sounds)
	require.Equal(t, float32(42), f.player.fallDistance, "fall distance must be left alone")
	require.Zero(t, f.teleports.Len())
}

func TestTeleportMovesPlayerAndPlaysFeedback(t *testing.T) {
	f := newTeleportFixture(t, newMemRecord(spawnRecord("world")), effect.Modern())

	require.NoError(t, f.teleporter.TeleportPlayer(f.player))

	require.Equal(t, []world.Location{spawnLocation}, f.player.teleports)
	require.Equal(t, float32(0), f.player.fallDistance)
	require.True(t, f.teleports.Recent(f.player.ID(), RescueGrace))

	require.Len(t, f.player.particles, 1)
	require.Equal(t, particleCall{effect.Particle{Name: config.DefaultParticle}, spawnLocation, 50}, f.player.particles[0])

	require.Len(t, f.player.sounds, 1)
	require.Equal(t, soundCall{effect.Sound{Name: config.DefaultSound}, spawnLocation, 1, 1}, f.player.sounds[0])

	require.Equal(t, []string{message.Teleport}, f.messages.sent["Steve"])
}

func TestTeleportFallDamageToggle(t *testing.T) {
	f := newTeleportFixture(t, newMemRecord(spawnRecord("world")), effect.Modern())
	f.update(func(p *config.Plugin) { p.FallDamage.Enabled = false })

	require.NoError(t, f.teleporter.TeleportPlayer(f.player))
	require.Equal(t, float32(42), f.player.fallDistance)
}

func TestTeleportKeepsHeadRotation(t *testing.T) {
	f := newTeleportFixture(t, newMemRecord(spawnRecord("world")), effect.Modern())
	f.update(func(p *config.Plugin) { p.UsePlayerHeadRotation.Enabled = true })

	require.NoError(t, f.teleporter.TeleportPlayer(f.player))

	want := spawnLocation.WithRotation(-30, 15)
	require.Equal(t, []world.Location{want}, f.player.teleports)
}

func TestTeleportParticlesReachVisibleNearbyPlayers(t *testing.T) {
	f := newTeleportFixture(t, newMemRecord(spawnRecord("world")), effect.Modern())
	near := f.addPlayer("Near", world.Location{World: "world", X: 8, Y: 100, Z: 0.5})
	hiding := f.addPlayer("Hiding", world.Location{World: "world", X: 0.5, Y: 95, Z: 0.5})
	hiding.hidden[f.player.ID()] = true
	far := f.addPlayer("Far", world.Location{World: "world", X: 40, Y: 100, Z: 0.5})
	elsewhere := f.addPlayer("Elsewhere", world.Location{World: deepWorld, X: 0.5, Y: 100, Z: 0.5})

	require.NoError(t, f.teleporter.TeleportPlayer(f.player))

	require.Len(t, f.player.particles, 1)
	require.Len(t, near.particles, 1)
	require.Equal(t, spawnLocation, near.particles[0].at)
	require.Empty(t, hiding.particles)
	require.Empty(t, far.particles)
	require.Empty(t, elsewhere.particles)
	require.Empty(t, near.sounds, "only the teleported player hears the sound")
}

func TestTeleportLegacyParticlesAreCapped(t *testing.T) {
	f := newTeleportFixture(t, newMemRecord(spawnRecord("world")), effect.Legacy())
	near := f.addPlayer("Near", world.Location{World: "world", X: 2, Y: 100, Z: 0.5})
	f.update(func(p *config.Plugin) {
		p.Particles.Particle = "ENDER_SIGNAL"
		p.Particles.Amount = 5000
		p.Sounds.Sound = "orb_pickup"
	})

	require.NoError(t, f.teleporter.TeleportPlayer(f.player))

	require.Equal(t, MaxLegacyParticles, f.player.effects)
	require.Equal(t, MaxLegacyParticles, near.effects)
	require.Empty(t, f.player.particles)
	require.Equal(t, "ORB_PICKUP", f.player.sounds[0].sound.Name)
}

func TestTeleportUnknownEffectsDoNotBlockTeleport(t *testing.T) {
	f := newTeleportFixture(t, newMemRecord(spawnRecord("world")), effect.Legacy())
	f.update(func(p *config.Plugin) {
		p.Particles.Particle = "TOTEM_OF_UNDYING"
		p.Sounds.Sound = "entity_warden_sonic_boom"
	})

	require.NoError(t, f.teleporter.TeleportPlayer(f.player))

	require.Len(t, f.player.teleports, 1)
	require.Zero(t, f.player.effects)
	require.Empty(t, f.player.sounds)
	require.Equal(t, []string{message.Teleport}, f.messages.sent["Steve"])
}

func TestTeleportCosmeticsDisabled(t *testing.T) {
	f := newTeleportFixture(t, newMemRecord(spawnRecord("world")), effect.Modern())
	f.update(func(p *config.Plugin) {
		p.Particles.Enabled = false
		p.Sounds.Enabled = false
	})

	require.NoError(t, f.teleporter.TeleportPlayer(f.player))
	require.Len(t, f.player.teleports, 1)
	require.Empty(t, f.player.particles)
	require.Empty(t, f.player.sounds)
}

func TestTeleportRelocationFailure(t *testing.T) {
	f := newTeleportFixture(t, newMemRecord(spawnRecord("world")), effect.Modern())
	boom := errors.New("world unloading")
	f.player.teleportErr = boom

	err := f.teleporter.TeleportPlayer(f.player)
	require.ErrorIs(t, err, boom)
	require.Zero(t, f.teleports.Len())
	require.Empty(t, f.player.particles)
	require.Empty(t, f.messages.sent["Steve"])
}

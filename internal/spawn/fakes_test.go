package spawn

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Versifine/spawnpoint/internal/config"
	"github.com/Versifine/spawnpoint/internal/effect"
	"github.com/Versifine/spawnpoint/internal/message"
	"github.com/Versifine/spawnpoint/internal/world"
)

type particleCall struct {
	particle effect.Particle
	at       world.Location
	count    int
}

type soundCall struct {
	sound         effect.Sound
	at            world.Location
	volume, pitch float32
}

type fakePlayer struct {
	id           uuid.UUID
	name         string
	loc          world.Location
	mode         string
	perms        map[string]bool
	playedBefore bool
	online       bool
	hidden       map[uuid.UUID]bool

	fallDistance float32
	teleportErr  error
	teleports    []world.Location
	particles    []particleCall
	effects      int
	sounds       []soundCall
	texts        []string
}

func newFakePlayer(name string, loc world.Location) *fakePlayer {
	return &fakePlayer{
		id:           uuid.New(),
		name:         name,
		loc:          loc,
		mode:         "SURVIVAL",
		perms:        map[string]bool{},
		online:       true,
		hidden:       map[uuid.UUID]bool{},
		fallDistance: 42,
	}
}

func (p *fakePlayer) Name() string { return p.name }
func (p *fakePlayer) SendMessage(text string) { p.texts = append(p.texts, text) }
func (p *fakePlayer) ID() uuid.UUID { return p.id }
func (p *fakePlayer) Location() world.Location { return p.loc }
func (p *fakePlayer) GameMode() string { return p.mode }
func (p *fakePlayer) HasPermission(node string) bool { return p.perms[node] }
func (p *fakePlayer) HasPlayedBefore() bool { return p.playedBefore }
func (p *fakePlayer) Online() bool { return p.online }
func (p *fakePlayer) SetFallDistance(d float32) { p.fallDistance = d }
func (p *fakePlayer) CanSee(other uuid.UUID) bool { return !p.hidden[other] }

func (p *fakePlayer) Teleport(to world.Location) error {
	if p.teleportErr != nil {
		return p.teleportErr
	}
	p.loc = to
	p.teleports = append(p.teleports, to)
	return nil
}

func (p *fakePlayer) SpawnParticle(pt effect.Particle, at world.Location, count int) {
	p.particles = append(p.particles, particleCall{pt, at, count})
}

func (p *fakePlayer) PlayEffect(effect.Particle, world.Location) { p.effects++ }

func (p *fakePlayer) PlaySound(s effect.Sound, at world.Location, volume, pitch float32) {
	p.sounds = append(p.sounds, soundCall{s, at, volume, pitch})
}

type fakeServer struct {
	players map[uuid.UUID]*fakePlayer
}

func newFakeServer(players ...*fakePlayer) *fakeServer {
	s := &fakeServer{players: map[uuid.UUID]*fakePlayer{}}
	for _, p := range players {
		s.players[p.id] = p
	}
	return s
}

func (s *fakeServer) Player(id uuid.UUID) (Player, bool) {
	p, ok := s.players[id]
	if !ok {
		return nil, false
	}
	return p, true
}

func (s *fakeServer) NearbyPlayers(center Player, radius float64) []Player {
	at := center.Location()
	var out []Player
	for _, p := range s.players {
		if p.id == center.ID() || p.loc.World != at.World {
			continue
		}
		if p.loc.DistanceSquared(at) <= radius*radius {
			out = append(out, p)
		}
	}
	return out
}

// recordingMessenger keeps the keys sent to each recipient.
type recordingMessenger struct {
	sent map[string][]string
}

func newRecordingMessenger() *recordingMessenger {
	return &recordingMessenger{sent: map[string][]string{}}
}

func (m *recordingMessenger) Send(r message.Recipient, key string) {
	m.sent[r.Name()] = append(m.sent[r.Name()], key)
}

// memRecord is an in-memory record.Store.
type memRecord struct {
	values    map[string]string
	saved     map[string]string
	saveErr   error
	reloadErr error
	saves     int
	reloads   int
}

func newMemRecord(values map[string]string) *memRecord {
	r := &memRecord{values: map[string]string{}, saved: map[string]string{}}
	for k, v := range values {
		r.values[k] = v
		r.saved[k] = v
	}
	return r
}

func (r *memRecord) Contains(key string) bool {
	_, ok := r.values[key]
	return ok
}

func (r *memRecord) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

func (r *memRecord) Set(key, value string) { r.values[key] = value }

func (r *memRecord) Save() error {
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	for k, v := range r.values {
		r.saved[k] = v
	}
	return nil
}

func (r *memRecord) Reload() error {
	r.reloads++
	if r.reloadErr != nil {
		return r.reloadErr
	}
	r.values = map[string]string{}
	for k, v := range r.saved {
		r.values[k] = v
	}
	return nil
}

func (r *memRecord) Close() error { return nil }

var errDisk = errors.New("disk full")

func spawnRecord(worldName string) map[string]string {
	return map[string]string{
		KeyWorld: worldName,
		KeyX:     "0.5",
		KeyY:     "100",
		KeyZ:     "0.5",
		KeyYaw:   "90",
		KeyPitch: "0",
	}
}

// fakeClock is a settable clock for the teleport grace window.
type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

const deepWorld = "deep"

// newWorlds returns a registry with an overworld "world" and a custom
// dimension "deep" that reaches down to y=-128. Chunk 0,0 of both is air.
func newWorlds(t *testing.T) *world.Registry {
	t.Helper()
	r := world.NewRegistry()

	overworld, err := world.NewBlockStore()
	require.NoError(t, err)
	r.Load(world.NewWorld("world", world.DimensionOverworld, overworld))
	overworld.FillChunk(0, 0, 0)

	deep, err := world.NewBlockStore()
	require.NoError(t, err)
	r.Load(world.NewWorldWithBounds(deepWorld, "plugin:deep", world.DimensionBounds{MinY: -128, Height: 384}, deep))
	deep.FillChunk(0, 0, 0)
	return r
}

func setBlock(t *testing.T, worlds *world.Registry, name string, x, y, z int, block string) {
	t.Helper()
	w, ok := worlds.Lookup(name)
	require.True(t, ok, name)
	id, ok := w.Blocks().StateIDByName(block)
	require.True(t, ok, block)
	require.True(t, w.Blocks().SetBlockState(x, y, z, id))
}

// testPlugin is the default config with void rescue on.
func testPlugin() config.Plugin {
	p := config.DefaultPlugin()
	p.TeleportOutOfVoid.Enabled = true
	return p
}

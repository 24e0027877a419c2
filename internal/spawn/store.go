package spawn

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Versifine/spawnpoint/internal/logger"
	"github.com/Versifine/spawnpoint/internal/record"
	"github.com/Versifine/spawnpoint/internal/world"
)

const (
	KeyWorld = "spawn.world"
	KeyX     = "spawn.x"
	KeyY     = "spawn.y"
	KeyZ     = "spawn.z"
	KeyYaw   = "spawn.yaw"
	KeyPitch = "spawn.pitch"
)

// RecordKeys are the keys a spawn record must contain, all of them.
var RecordKeys = []string{KeyWorld, KeyX, KeyY, KeyZ, KeyYaw, KeyPitch}

var (
	// ErrNoWorld means the spawn names a world that is not loaded, or none.
	ErrNoWorld = errors.New("spawn world not loaded")
	// ErrIncompleteRecord means at least one spawn key is missing.
	ErrIncompleteRecord = errors.New("incomplete spawn record")
)

type SpawnPoint struct {
	World string
	X     float64
	Y     float64
	Z     float64
	Yaw   float32
	Pitch float32
}

func PointFromLocation(loc world.Location) SpawnPoint {
	return SpawnPoint{World: loc.World, X: loc.X, Y: loc.Y, Z: loc.Z, Yaw: loc.Yaw, Pitch: loc.Pitch}
}

func (p SpawnPoint) Location() world.Location {
	return world.Location{World: p.World, X: p.X, Y: p.Y, Z: p.Z, Yaw: p.Yaw, Pitch: p.Pitch}
}

// Store caches the spawn point and keeps it in sync with its record.
// The cached value is re-validated on every Get, since the spawn world may
// be unloaded and loaded again while the server runs.
type Store struct {
	record record.Store
	worlds WorldResolver
	log    *slog.Logger

	cached SpawnPoint
	valid  bool
}

// NewStore loads the spawn point right away; an unusable record is only
// logged.
func NewStore(rec record.Store, worlds WorldResolver) *Store {
	s := &Store{
		record: rec,
		worlds: worlds,
		log:    logger.Component("spawn.store"),
	}
	s.cached, s.valid = s.Load()
	return s
}

// Load reads the record. It reports false when a key is missing or the
// spawn world is not loaded; the record itself is left alone.
func (s *Store) Load() (SpawnPoint, bool) {
	p, err := s.read()
	switch {
	case err == nil:
		return p, true
	case errors.Is(err, ErrNoWorld):
		s.log.Warn("Spawn world is not loaded, teleports will be skipped", "world", p.World)
	default:
		s.log.Debug("No usable spawn record", "error", err)
	}
	return SpawnPoint{}, false
}

func (s *Store) read() (SpawnPoint, error) {
	for _, key := range RecordKeys {
		if !s.record.Contains(key) {
			return SpawnPoint{}, fmt.Errorf("%w: %s missing", ErrIncompleteRecord, key)
		}
	}

	name, _ := s.record.Get(KeyWorld)
	p := SpawnPoint{
		World: name,
		X:     s.float(KeyX),
		Y:     s.float(KeyY),
		Z:     s.float(KeyZ),
		Yaw:   float32(s.float(KeyYaw)),
		Pitch: float32(s.float(KeyPitch)),
	}
	if !s.worldLoaded(name) {
		return p, fmt.Errorf("%w: %q", ErrNoWorld, name)
	}
	return p, nil
}

// float reads a numeric key. Values that are present but not numbers read
// as zero.
func (s *Store) float(key string) float64 {
	raw, _ := s.record.Get(key)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		s.log.Warn("Spawn record value is not a number, using 0", "key", key, "value", raw)
		return 0
	}
	return v
}

func (s *Store) worldLoaded(name string) bool {
	if name == "" {
		return false
	}
	_, ok := s.worlds.Lookup(name)
	return ok
}

// Get returns the cached spawn, reloading it first when it is missing or
// its world went away.
func (s *Store) Get() (SpawnPoint, bool) {
	if !s.valid || !s.worldLoaded(s.cached.World) {
		s.cached, s.valid = s.Load()
	}
	return s.cached, s.valid
}

// Exists reports whether a usable spawn point is available right now.
func (s *Store) Exists() bool {
	_, ok := s.Get()
	return ok
}

// Set replaces the cached spawn. With persist it also writes the record and
// re-reads it; a write failure is returned and the cache keeps the new
// point.
func (s *Store) Set(p SpawnPoint, persist bool) error {
	if p.World == "" {
		return ErrNoWorld
	}
	s.cached, s.valid = p, true
	if !persist {
		return nil
	}

	s.record.Set(KeyWorld, p.World)
	s.record.Set(KeyX, formatFloat(p.X, 64))
	s.record.Set(KeyY, formatFloat(p.Y, 64))
	s.record.Set(KeyZ, formatFloat(p.Z, 64))
	s.record.Set(KeyYaw, formatFloat(float64(p.Yaw), 32))
	s.record.Set(KeyPitch, formatFloat(float64(p.Pitch), 32))

	if err := s.record.Save(); err != nil {
		return fmt.Errorf("save spawn record: %w", err)
	}
	if err := s.record.Reload(); err != nil {
		return fmt.Errorf("reload spawn record: %w", err)
	}
	s.log.Info("Spawn point saved", "location", p.Location().String())
	return nil
}

// Refresh re-reads the record from its backing medium and drops the cache.
func (s *Store) Refresh() error {
	if err := s.record.Reload(); err != nil {
		return fmt.Errorf("reload spawn record: %w", err)
	}
	s.cached, s.valid = s.Load()
	return nil
}

func formatFloat(v float64, bits int) string {
	return strconv.FormatFloat(v, 'f', -1, bits)
}

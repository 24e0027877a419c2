package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid config")

const (
	ListTypeDisabled  = "disabled"
	ListTypeWhitelist = "whitelist"
	ListTypeBlacklist = "blacklist"

	DefaultCheckHeight = -64
	DefaultSound       = "ENTITY_EXPERIENCE_ORB_PICKUP"
	DefaultParticle    = "PORTAL"

	DefaultServerVersion = "1.21"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Storage  StorageConfig  `yaml:"storage"`
	Messages MessagesConfig `yaml:"messages"`
	Plugin   `yaml:",inline"`
}

// ServerConfig describes the host server. Version selects the particle and
// sound tables; 1.8 servers get the legacy effect table. BlocksJSON points
// at a blocks.json report replacing the built-in block table.
type ServerConfig struct {
	Version    string `yaml:"version"`
	BlocksJSON string `yaml:"blocks-json"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"` // "yaml" or "sqlite"
	Path   string `yaml:"path"`
}

type MessagesConfig struct {
	Path string `yaml:"path"`
}

// Plugin is the part of the configuration the spawn engine reads on every
// event. It is a plain value so a snapshot can be handed out freely.
type Plugin struct {
	Filter                FilterConfig   `yaml:"plugin"`
	FallDamage            Toggle         `yaml:"fall-damage"`
	UsePlayerHeadRotation Toggle         `yaml:"use-player-head-rotation"`
	Particles             ParticleConfig `yaml:"particles"`
	Sounds                SoundConfig    `yaml:"sounds"`
	TeleportOnJoin        Toggle         `yaml:"teleport-on-join"`
	TeleportOnFirstJoin   Toggle         `yaml:"teleport-on-first-join"`
	TeleportOutOfVoid     VoidConfig     `yaml:"teleport-out-of-void"`
}

type FilterConfig struct {
	ListType           string   `yaml:"list-type"`
	WorldList          []string `yaml:"world-list"`
	GamemodeRestricted bool     `yaml:"gamemode-restricted"`
	GamemodeList       []string `yaml:"gamemode-list"`
}

type Toggle struct {
	Enabled bool `yaml:"enabled"`
}

type ParticleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Particle string `yaml:"particle"`
	Amount   int    `yaml:"amount"`
}

type SoundConfig struct {
	Enabled bool    `yaml:"enabled"`
	Sound   string  `yaml:"sound"`
	Volume  float64 `yaml:"volume"`
	Pitch   float64 `yaml:"pitch"`
}

type VoidConfig struct {
	Enabled     bool `yaml:"enabled"`
	CheckHeight int  `yaml:"check-height"`
}

// Default returns the configuration used for keys missing from the file.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Version: DefaultServerVersion},
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Storage: StorageConfig{Driver: "yaml", Path: "location.yml"},
		Plugin:  DefaultPlugin(),
	}
}

func DefaultPlugin() Plugin {
	return Plugin{
		Filter:     FilterConfig{ListType: ListTypeDisabled},
		FallDamage: Toggle{Enabled: true},
		Particles: ParticleConfig{
			Particle: DefaultParticle,
			Amount:   50,
		},
		Sounds: SoundConfig{
			Sound:  DefaultSound,
			Volume: 1.0,
			Pitch:  1.0,
		},
		TeleportOutOfVoid: VoidConfig{CheckHeight: DefaultCheckHeight},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults, so absent keys keep their default
// values while explicit zeroes are honoured.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Storage.Driver) {
	case "yaml", "sqlite":
	default:
		return fmt.Errorf("%w: storage.driver %q (want yaml or sqlite)", ErrInvalid, c.Storage.Driver)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("%w: storage.path is empty", ErrInvalid)
	}
	return c.Plugin.Validate()
}

// Validate rejects values the engine cannot act on. Unknown list types are
// accepted on purpose: they disable the world filter.
func (p Plugin) Validate() error {
	if p.Particles.Amount < 0 {
		return fmt.Errorf("%w: particles.amount must be >= 0, got %d", ErrInvalid, p.Particles.Amount)
	}
	if p.Sounds.Volume < 0 {
		return fmt.Errorf("%w: sounds.volume must be >= 0, got %v", ErrInvalid, p.Sounds.Volume)
	}
	if p.Sounds.Pitch < 0 {
		return fmt.Errorf("%w: sounds.pitch must be >= 0, got %v", ErrInvalid, p.Sounds.Pitch)
	}
	return nil
}

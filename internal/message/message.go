// Package message resolves message keys to text and delivers it to players.
package message

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	NoSpawn            = "no-spawn"
	Teleport           = "teleport"
	SpawnSet           = "spawn-set"
	SpawnSetFailed     = "spawn-set-failed"
	WorldDisabled      = "world-disabled"
	GamemodeRestricted = "gamemode-restricted"
	Reloaded           = "reload"
)

// Recipient is anything that can receive chat text.
type Recipient interface {
	Name() string
	SendMessage(text string)
}

type file struct {
	Prefix   string            `yaml:"prefix"`
	Messages map[string]string `yaml:"messages"`
}

// Catalog maps keys to templates. Templates may use %prefix% and %player%.
// An empty template silences a key.
type Catalog struct {
	mu        sync.RWMutex
	path      string
	prefix    string
	templates map[string]string
}

func Default() *Catalog {
	return &Catalog{
		prefix: "[Spawn] ",
		templates: map[string]string{
			NoSpawn:            "%prefix%There is no spawn point set.",
			Teleport:           "%prefix%Teleported to spawn.",
			SpawnSet:           "%prefix%Spawn point set.",
			SpawnSetFailed:     "%prefix%Could not save the spawn point.",
			WorldDisabled:      "%prefix%Spawn is disabled in this world.",
			GamemodeRestricted: "%prefix%You cannot use spawn in your current gamemode.",
			Reloaded:           "%prefix%Configuration reloaded.",
		},
	}
}

// Load reads a messages file over the defaults.
func Load(path string) (*Catalog, error) {
	c := Default()
	c.path = path
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) Reload() error {
	if c.path == "" {
		return nil
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("read messages: %w", err)
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse messages: %w", err)
	}

	base := Default()
	if f.Prefix != "" {
		base.prefix = f.Prefix
	}
	for k, v := range f.Messages {
		base.templates[k] = v
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.prefix = base.prefix
	c.templates = base.templates
	return nil
}

// Format renders key for r. The second result is false for unknown or
// silenced keys.
func (c *Catalog) Format(key string, r Recipient) (string, bool) {
	c.mu.RLock()
	tmpl, ok := c.templates[key]
	prefix := c.prefix
	c.mu.RUnlock()
	if !ok || tmpl == "" {
		return "", false
	}

	replacer := strings.NewReplacer("%prefix%", prefix, "%player%", r.Name())
	return replacer.Replace(tmpl), true
}

func (c *Catalog) Send(r Recipient, key string) {
	text, ok := c.Format(key, r)
	if !ok {
		c.mu.RLock()
		_, known := c.templates[key]
		c.mu.RUnlock()
		if !known {
			slog.Warn("Unknown message key", "key", key)
		}
		return
	}
	r.SendMessage(text)
}

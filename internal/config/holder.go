package config

import (
	"fmt"
	"sync/atomic"
)

// Holder hands out the current Plugin snapshot and swaps it on reload.
// Readers never observe a half-applied reload.
type Holder struct {
	path    string
	current atomic.Pointer[Config]
}

// NewHolder loads path and keeps it as the reload source.
func NewHolder(path string) (*Holder, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	h := &Holder{path: path}
	h.current.Store(cfg)
	return h, nil
}

// Static wraps a fixed snapshot. Reload on a static holder is a no-op.
func Static(p Plugin) *Holder {
	cfg := Default()
	cfg.Plugin = p
	h := &Holder{}
	h.current.Store(cfg)
	return h
}

func (h *Holder) Config() *Config {
	return h.current.Load()
}

func (h *Holder) Snapshot() Plugin {
	return h.current.Load().Plugin
}

// Store replaces the plugin section, keeping the rest of the config.
func (h *Holder) Store(p Plugin) {
	next := *h.current.Load()
	next.Plugin = p
	h.current.Store(&next)
}

// Reload re-reads the file. On failure the previous snapshot stays active.
func (h *Holder) Reload() error {
	if h.path == "" {
		return nil
	}
	cfg, err := Load(h.path)
	if err != nil {
		return fmt.Errorf("reload %s: %w", h.path, err)
	}
	h.current.Store(cfg)
	return nil
}

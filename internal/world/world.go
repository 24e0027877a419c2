package world

import (
	"sort"
	"sync"
)

// World is a loaded world: a name, its dimension bounds and its blocks.
type World struct {
	name      string
	dimension string
	bounds    DimensionBounds
	hasBounds bool
	blocks    *BlockStore
}

// NewWorld uses the vanilla bounds of dimension. Unknown dimensions keep
// the block store's range and report LegacyMinY as their floor.
func NewWorld(name, dimension string, blocks *BlockStore) *World {
	if bounds, ok := VanillaDimensionBounds(dimension); ok {
		return NewWorldWithBounds(name, dimension, bounds, blocks)
	}
	return &World{name: name, dimension: dimension, blocks: blocks}
}

// NewWorldWithBounds is for custom dimensions. The block store is resized
// to bounds.
func NewWorldWithBounds(name, dimension string, bounds DimensionBounds, blocks *BlockStore) *World {
	if blocks != nil {
		blocks.SetBounds(bounds)
	}
	return &World{
		name:      name,
		dimension: dimension,
		bounds:    bounds,
		hasBounds: true,
		blocks:    blocks,
	}
}

func (w *World) Name() string      { return w.name }
func (w *World) Dimension() string { return w.dimension }

func (w *World) Blocks() *BlockStore { return w.blocks }

// MinHeight is the lowest buildable Y. Custom dimensions fall back to
// LegacyMinY.
func (w *World) MinHeight() int {
	if !w.hasBounds {
		return LegacyMinY
	}
	return w.bounds.MinY
}

func (w *World) MaterialAt(x, y, z int) Material {
	if w.blocks == nil {
		return MaterialAir
	}
	return w.blocks.MaterialAt(x, y, z)
}

func (w *World) IsSolid(x, y, z int) bool {
	return w.MaterialAt(x, y, z) == MaterialSolid
}

func (w *World) IsLiquid(x, y, z int) bool {
	m := w.MaterialAt(x, y, z)
	return m == MaterialWater || m == MaterialLava
}

// Registry tracks which worlds are currently loaded, by name.
type Registry struct {
	mu     sync.RWMutex
	worlds map[string]*World
}

func NewRegistry() *Registry {
	return &Registry{worlds: make(map[string]*World)}
}

func (r *Registry) Load(w *World) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.worlds[w.Name()] = w
}

// Unload removes a world and returns it so it can be loaded again later.
func (r *Registry) Unload(name string) (*World, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.worlds[name]
	delete(r.worlds, name)
	return w, ok
}

func (r *Registry) Lookup(name string) (*World, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.worlds[name]
	return w, ok
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.worlds))
	for name := range r.worlds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

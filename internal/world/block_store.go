package world

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

const (
	ChunkMinY          = -64
	ChunkMaxY          = 319
	ChunkSectionCount  = 24
	ChunkSectionHeight = 16
	BlocksPerSection   = 16 * 16 * 16
)

// Material is the coarse classification the spawn logic cares about.
type Material uint8

const (
	MaterialAir Material = iota
	MaterialSolid
	MaterialWater
	MaterialLava
	MaterialOther
)

func (m Material) String() string {
	switch m {
	case MaterialAir:
		return "air"
	case MaterialSolid:
		return "solid"
	case MaterialWater:
		return "water"
	case MaterialLava:
		return "lava"
	default:
		return "other"
	}
}

// Safe reports whether a falling player landing on this material survives.
func (m Material) Safe() bool {
	return m == MaterialSolid || m == MaterialWater || m == MaterialLava
}

//go:embed blocks.json
var defaultBlocksJSON []byte

type ChunkPos struct {
	X int32
	Z int32
}

type ChunkSection struct {
	BlockStates []int32
}

type Chunk struct {
	Sections []ChunkSection
}

type BlockStore struct {
	mu                 sync.RWMutex
	chunks             map[ChunkPos]*Chunk
	materialByStateID  []Material
	blockNameByStateID []string

	minY     int
	sections int
}

type blockDefinition struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	MinStateID  int32  `json:"minStateId"`
	MaxStateID  int32  `json:"maxStateId"`
	BoundingBox string `json:"boundingBox"`
}

// NewBlockStore returns an empty store using the bundled block palette.
func NewBlockStore() (*BlockStore, error) {
	materials, names, err := ParseStateMetadata(defaultBlocksJSON)
	if err != nil {
		return nil, err
	}
	return NewBlockStoreFromMaterials(materials, names), nil
}

func NewBlockStoreFromBlocksJSON(blocksJSONPath string) (*BlockStore, error) {
	materials, names, err := LoadStateMetadataFromBlocksJSON(blocksJSONPath)
	if err != nil {
		return nil, err
	}
	return NewBlockStoreFromMaterials(materials, names), nil
}

func NewBlockStoreFromMaterials(materials []Material, names []string) *BlockStore {
	return &BlockStore{
		chunks:             make(map[ChunkPos]*Chunk),
		materialByStateID:  append([]Material(nil), materials...),
		blockNameByStateID: append([]string(nil), names...),
		minY:               ChunkMinY,
		sections:           ChunkSectionCount,
	}
}

// SetBounds changes the vertical range chunks cover. Height is rounded up
// to whole sections. Loaded chunks are dropped.
func (bs *BlockStore) SetBounds(b DimensionBounds) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.minY = b.MinY
	bs.sections = (b.Height + ChunkSectionHeight - 1) / ChunkSectionHeight
	bs.chunks = make(map[ChunkPos]*Chunk)
}

func (bs *BlockStore) Bounds() DimensionBounds {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return DimensionBounds{MinY: bs.minY, Height: bs.sections * ChunkSectionHeight}
}

// SectionCount is the number of sections StoreChunk expects.
func (bs *BlockStore) SectionCount() int {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.sections
}

func LoadStateMetadataFromBlocksJSON(blocksJSONPath string) ([]Material, []string, error) {
	if blocksJSONPath == "" {
		return nil, nil, fmt.Errorf("blocks.json path is empty")
	}
	data, err := os.ReadFile(blocksJSONPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read blocks.json: %w", err)
	}
	return ParseStateMetadata(data)
}

// ParseStateMetadata builds per-state material and display-name tables from a
// blocks.json document.
func ParseStateMetadata(data []byte) ([]Material, []string, error) {
	var blocks []blockDefinition
	if err := json.Unmarshal(data, &blocks); err != nil {
		return nil, nil, fmt.Errorf("parse blocks.json: %w", err)
	}
	if len(blocks) == 0 {
		return nil, nil, fmt.Errorf("blocks.json has no block definitions")
	}

	maxStateID := int32(-1)
	for _, block := range blocks {
		if block.MinStateID < 0 || block.MaxStateID < block.MinStateID {
			return nil, nil, fmt.Errorf(
				"invalid state id range in blocks.json: min=%d max=%d",
				block.MinStateID,
				block.MaxStateID,
			)
		}
		if block.MaxStateID > maxStateID {
			maxStateID = block.MaxStateID
		}
	}

	materials := make([]Material, int(maxStateID)+1)
	names := make([]string, int(maxStateID)+1)
	for _, block := range blocks {
		material := classify(block)
		blockName := block.DisplayName
		if blockName == "" {
			blockName = block.Name
		}
		for id := int(block.MinStateID); id <= int(block.MaxStateID); id++ {
			materials[id] = material
			if names[id] == "" {
				names[id] = blockName
			}
		}
	}
	return materials, names, nil
}

func classify(block blockDefinition) Material {
	name := strings.TrimPrefix(strings.ToLower(block.Name), "minecraft:")
	switch {
	case name == "water":
		return MaterialWater
	case name == "lava":
		return MaterialLava
	case block.BoundingBox == "block":
		return MaterialSolid
	case name == "air" || name == "cave_air" || name == "void_air":
		return MaterialAir
	default:
		return MaterialOther
	}
}

func (bs *BlockStore) StoreChunk(chunkX, chunkZ int32, sections []ChunkSection) error {
	want := bs.SectionCount()
	if len(sections) != want {
		return fmt.Errorf("invalid section count: got %d, want %d", len(sections), want)
	}

	chunk := &Chunk{Sections: make([]ChunkSection, want)}
	for i := range sections {
		if len(sections[i].BlockStates) != BlocksPerSection {
			return fmt.Errorf(
				"invalid section %d block state count: got %d, want %d",
				i,
				len(sections[i].BlockStates),
				BlocksPerSection,
			)
		}
		chunk.Sections[i] = ChunkSection{BlockStates: append([]int32(nil), sections[i].BlockStates...)}
	}

	bs.mu.Lock()
	defer bs.mu.Unlock()
	if bs.chunks == nil {
		bs.chunks = make(map[ChunkPos]*Chunk)
	}
	bs.chunks[ChunkPos{X: chunkX, Z: chunkZ}] = chunk
	return nil
}

// FillChunk loads a chunk whose every block has the given state.
func (bs *BlockStore) FillChunk(chunkX, chunkZ int32, stateID int32) {
	sections := make([]ChunkSection, bs.SectionCount())
	for i := range sections {
		states := make([]int32, BlocksPerSection)
		if stateID != 0 {
			for j := range states {
				states[j] = stateID
			}
		}
		sections[i] = ChunkSection{BlockStates: states}
	}
	// sections are well formed by construction
	_ = bs.StoreChunk(chunkX, chunkZ, sections)
}

func (bs *BlockStore) UnloadChunk(chunkX, chunkZ int32) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	delete(bs.chunks, ChunkPos{X: chunkX, Z: chunkZ})
}

func (bs *BlockStore) IsLoaded(chunkX, chunkZ int32) bool {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	_, ok := bs.chunks[ChunkPos{X: chunkX, Z: chunkZ}]
	return ok
}

func (bs *BlockStore) LoadedChunkCount() int {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return len(bs.chunks)
}

func (bs *BlockStore) SetBlockState(x, y, z int, stateID int32) bool {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	chunkPos, section, index, ok := bs.locate(x, y, z)
	if !ok {
		return false
	}
	chunk, ok := bs.chunks[chunkPos]
	if !ok {
		return false
	}
	chunk.Sections[section].BlockStates[index] = stateID
	return true
}

func (bs *BlockStore) GetBlockState(x, y, z int) (int32, bool) {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	chunkPos, section, index, ok := bs.locate(x, y, z)
	if !ok {
		return 0, false
	}
	chunk, ok := bs.chunks[chunkPos]
	if !ok {
		return 0, false
	}
	return chunk.Sections[section].BlockStates[index], true
}

// MaterialAt classifies the block at the given position. Unloaded or
// out-of-range positions read as air.
func (bs *BlockStore) MaterialAt(x, y, z int) Material {
	stateID, ok := bs.GetBlockState(x, y, z)
	if !ok || stateID < 0 || int(stateID) >= len(bs.materialByStateID) {
		return MaterialAir
	}
	return bs.materialByStateID[stateID]
}

func (bs *BlockStore) IsSolid(x, y, z int) bool {
	return bs.MaterialAt(x, y, z) == MaterialSolid
}

func (bs *BlockStore) GetBlockNameByStateID(stateID int32) (string, bool) {
	if stateID < 0 || int(stateID) >= len(bs.blockNameByStateID) {
		return "", false
	}
	name := bs.blockNameByStateID[stateID]
	return name, name != ""
}

// StateIDByName returns the first state id registered for a block name.
// Both "grass_block" and "Grass Block" match.
func (bs *BlockStore) StateIDByName(name string) (int32, bool) {
	want := strings.ReplaceAll(strings.TrimPrefix(name, "minecraft:"), "_", " ")
	for id, n := range bs.blockNameByStateID {
		if strings.EqualFold(n, want) {
			return int32(id), true
		}
	}
	return 0, false
}

// locate must be called with bs.mu held.
func (bs *BlockStore) locate(x, y, z int) (ChunkPos, int, int, bool) {
	if y < bs.minY || y >= bs.minY+bs.sections*ChunkSectionHeight {
		return ChunkPos{}, 0, 0, false
	}
	localX := floorMod16(x)
	localZ := floorMod16(z)
	section := (y - bs.minY) / ChunkSectionHeight
	localY := (y - bs.minY) % ChunkSectionHeight
	pos := ChunkPos{X: int32(floorDiv16(x)), Z: int32(floorDiv16(z))}
	return pos, section, localY*16*16 + localZ*16 + localX, true
}

func floorDiv16(v int) int {
	q := v / 16
	if v < 0 && v%16 != 0 {
		q--
	}
	return q
}

func floorMod16(v int) int {
	m := v % 16
	if m < 0 {
		m += 16
	}
	return m
}

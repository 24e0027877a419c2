package world

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadStateMetadataFromBlocksJSON(t *testing.T) {
	tmpDir := t.TempDir()
	blocksJSONPath := filepath.Join(tmpDir, "blocks.json")

	content := `[
  {"name":"air","displayName":"Air","minStateId":0,"maxStateId":0,"boundingBox":"empty"},
  {"name":"stone","displayName":"Stone","minStateId":1,"maxStateId":3,"boundingBox":"block"},
  {"name":"water","displayName":"Water","minStateId":4,"maxStateId":5,"boundingBox":"empty"},
  {"name":"minecraft:lava","displayName":"Lava","minStateId":6,"maxStateId":6,"boundingBox":"empty"},
  {"name":"short_grass","displayName":"Short Grass","minStateId":7,"maxStateId":7,"boundingBox":"empty"}
]`
	if err := os.WriteFile(blocksJSONPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp blocks.json failed: %v", err)
	}

	materials, names, err := LoadStateMetadataFromBlocksJSON(blocksJSONPath)
	if err != nil {
		t.Fatalf("LoadStateMetadataFromBlocksJSON failed: %v", err)
	}
	if len(materials) != 8 || len(names) != 8 {
		t.Fatalf("len(materials)=%d len(names)=%d, want 8", len(materials), len(names))
	}

	want := []Material{
		MaterialAir,
		MaterialSolid, MaterialSolid, MaterialSolid,
		MaterialWater, MaterialWater,
		MaterialLava,
		MaterialOther,
	}
	for id, m := range want {
		if materials[id] != m {
			t.Errorf("materials[%d] = %v, want %v", id, materials[id], m)
		}
	}
	if names[5] != "Water" {
		t.Fatalf("names[5] = %q, want %q", names[5], "Water")
	}
}

func TestLoadStateMetadataFromBlocksJSONErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty list", `[]`},
		{"bad range", `[{"name":"stone","minStateId":3,"maxStateId":1,"boundingBox":"block"}]`},
		{"not json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := ParseStateMetadata([]byte(tt.content)); err == nil {
				t.Fatalf("ParseStateMetadata(%s) expected error", tt.content)
			}
		})
	}

	if _, _, err := LoadStateMetadataFromBlocksJSON(""); err == nil {
		t.Fatalf("empty path should fail")
	}
}

func TestBundledPalette(t *testing.T) {
	bs, err := NewBlockStore()
	if err != nil {
		t.Fatalf("NewBlockStore failed: %v", err)
	}

	for _, tt := range []struct {
		name string
		want Material
	}{
		{"stone", MaterialSolid},
		{"grass_block", MaterialSolid},
		{"Water", MaterialWater},
		{"minecraft:lava", MaterialLava},
		{"short_grass", MaterialOther},
		{"air", MaterialAir},
	} {
		id, ok := bs.StateIDByName(tt.name)
		if !ok {
			t.Fatalf("StateIDByName(%q) not found", tt.name)
		}
		if got := bs.materialByStateID[id]; got != tt.want {
			t.Errorf("material of %q = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestBlockStoreStoreGetAndUnloadChunk(t *testing.T) {
	bs := NewBlockStoreFromMaterials([]Material{MaterialAir, MaterialSolid}, nil)

	sections := makeFilledSections(0)
	// Global (2,70,3) belongs to chunk (0,0), section index 8, localY 6.
	sectionIndex := (70 - ChunkMinY) / ChunkSectionHeight
	localY := (70 - ChunkMinY) % ChunkSectionHeight
	sections[sectionIndex].BlockStates[localY*16*16+3*16+2] = 1

	if err := bs.StoreChunk(0, 0, sections); err != nil {
		t.Fatalf("StoreChunk failed: %v", err)
	}
	if !bs.IsLoaded(0, 0) || bs.LoadedChunkCount() != 1 {
		t.Fatalf("chunk (0,0) should be the only loaded chunk")
	}
	if !bs.IsSolid(2, 70, 3) {
		t.Fatalf("IsSolid should be true for state 1")
	}
	if got := bs.MaterialAt(2, 71, 3); got != MaterialAir {
		t.Fatalf("MaterialAt(2,71,3) = %v, want air", got)
	}

	bs.UnloadChunk(0, 0)
	if bs.IsLoaded(0, 0) {
		t.Fatalf("chunk (0,0) should be unloaded")
	}
	if _, ok := bs.GetBlockState(2, 70, 3); ok {
		t.Fatalf("GetBlockState should return false after unload")
	}
	if got := bs.MaterialAt(2, 70, 3); got != MaterialAir {
		t.Fatalf("unloaded block should read as air, got %v", got)
	}
}

func TestBlockStoreNegativeCoordinates(t *testing.T) {
	bs := NewBlockStoreFromMaterials([]Material{MaterialAir, MaterialSolid}, nil)
	bs.FillChunk(-1, -1, 0)

	if !bs.SetBlockState(-1, -64, -1, 1) {
		t.Fatalf("SetBlockState(-1,-64,-1) should succeed")
	}
	state, ok := bs.GetBlockState(-1, -64, -1)
	if !ok || state != 1 {
		t.Fatalf("GetBlockState(-1,-64,-1) = (%d,%v), want (1,true)", state, ok)
	}
	if bs.IsSolid(-1, ChunkMinY-1, -1) {
		t.Fatalf("IsSolid should be false when Y is below minimum")
	}
	if bs.IsSolid(-1, ChunkMaxY+1, -1) {
		t.Fatalf("IsSolid should be false when Y is above maximum")
	}
	if bs.SetBlockState(40, 64, 40, 1) {
		t.Fatalf("SetBlockState should return false for unloaded chunk")
	}
}

func TestBlockStoreStoreChunkValidation(t *testing.T) {
	bs := NewBlockStoreFromMaterials([]Material{MaterialAir}, nil)

	if err := bs.StoreChunk(0, 0, make([]ChunkSection, ChunkSectionCount-1)); err == nil {
		t.Fatalf("expected error when section count is invalid")
	}

	sections := makeFilledSections(0)
	sections[3].BlockStates = make([]int32, BlocksPerSection-1)
	if err := bs.StoreChunk(0, 0, sections); err == nil {
		t.Fatalf("expected error when section block-state count is invalid")
	}
}

func TestMaterialSafe(t *testing.T) {
	tests := []struct {
		material Material
		want     bool
	}{
		{MaterialAir, false},
		{MaterialSolid, true},
		{MaterialWater, true},
		{MaterialLava, true},
		{MaterialOther, false},
	}
	for _, tt := range tests {
		if got := tt.material.Safe(); got != tt.want {
			t.Errorf("%v.Safe() = %v, want %v", tt.material, got, tt.want)
		}
	}
}

func makeFilledSections(fill int32) []ChunkSection {
	sections := make([]ChunkSection, ChunkSectionCount)
	for i := range sections {
		states := make([]int32, BlocksPerSection)
		for j := range states {
			states[j] = fill
		}
		sections[i] = ChunkSection{BlockStates: states}
	}
	return sections
}

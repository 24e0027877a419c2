package host

import (
	"fmt"

	"github.com/Versifine/spawnpoint/internal/world"
)

// Layer is a run of identical blocks in a flat world, bottom up.
type Layer struct {
	Block  string
	Height int
}

// DefaultFlatLayers is the classic superflat preset.
var DefaultFlatLayers = []Layer{
	{Block: "bedrock", Height: 1},
	{Block: "dirt", Height: 2},
	{Block: "grass_block", Height: 1},
}

// FlatWorld builds a world whose chunks within radius of chunk 0,0 are
// filled with layers starting at the world floor. Everything beyond is
// unloaded and reads as air.
func FlatWorld(name, dimension string, radius int, layers []Layer) (*world.World, error) {
	blocks, err := world.NewBlockStore()
	if err != nil {
		return nil, err
	}
	return FlatWorldWithBlocks(name, dimension, radius, layers, blocks)
}

// FlatWorldWithBlocks is FlatWorld over a caller-supplied block table, such
// as one loaded from a server's blocks.json report.
func FlatWorldWithBlocks(name, dimension string, radius int, layers []Layer, blocks *world.BlockStore) (*world.World, error) {
	w := world.NewWorld(name, dimension, blocks)

	type run struct {
		id     int32
		height int
	}
	runs := make([]run, 0, len(layers))
	for _, l := range layers {
		id, ok := blocks.StateIDByName(l.Block)
		if !ok {
			return nil, fmt.Errorf("unknown block %q", l.Block)
		}
		runs = append(runs, run{id: id, height: l.Height})
	}

	for cx := -radius; cx <= radius; cx++ {
		for cz := -radius; cz <= radius; cz++ {
			blocks.FillChunk(int32(cx), int32(cz), 0)
			y := w.MinHeight()
			for _, r := range runs {
				for i := 0; i < r.height; i++ {
					fillLayer(blocks, cx, cz, y, r.id)
					y++
				}
			}
		}
	}
	return w, nil
}

// SurfaceY is the first air block above the layers of a flat world.
func SurfaceY(w *world.World, layers []Layer) int {
	y := w.MinHeight()
	for _, l := range layers {
		y += l.Height
	}
	return y
}

// Platform places a square of block centred on x, z at height y.
func Platform(w *world.World, x, y, z, half int, block string) error {
	id, ok := w.Blocks().StateIDByName(block)
	if !ok {
		return fmt.Errorf("unknown block %q", block)
	}
	for dx := -half; dx <= half; dx++ {
		for dz := -half; dz <= half; dz++ {
			bx, bz := x+dx, z+dz
			cx, cz := int32(floorDiv(bx, 16)), int32(floorDiv(bz, 16))
			if !w.Blocks().IsLoaded(cx, cz) {
				w.Blocks().FillChunk(cx, cz, 0)
			}
			w.Blocks().SetBlockState(bx, y, bz, id)
		}
	}
	return nil
}

func fillLayer(blocks *world.BlockStore, cx, cz, y int, id int32) {
	for lx := 0; lx < 16; lx++ {
		for lz := 0; lz < 16; lz++ {
			blocks.SetBlockState(cx*16+lx, y, cz*16+lz, id)
		}
	}
}

func floorDiv(v, d int) int {
	q := v / d
	if v%d != 0 && (v < 0) != (d < 0) {
		q--
	}
	return q
}

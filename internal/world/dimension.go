package world

const (
	DimensionOverworld = "minecraft:overworld"
	DimensionNether    = "minecraft:the_nether"
	DimensionEnd       = "minecraft:the_end"
)

// LegacyMinY is the floor of worlds whose dimension reports no bounds.
const LegacyMinY = 0

type DimensionBounds struct {
	MinY   int
	Height int
}

func (b DimensionBounds) MaxY() int {
	return b.MinY + b.Height - 1
}

func VanillaDimensionBounds(name string) (DimensionBounds, bool) {
	switch name {
	case DimensionOverworld:
		return DimensionBounds{MinY: -64, Height: 384}, true
	case DimensionNether, DimensionEnd:
		return DimensionBounds{MinY: 0, Height: 256}, true
	default:
		return DimensionBounds{}, false
	}
}

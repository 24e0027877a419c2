package physics

import "math"

type BlockStore interface {
	IsSolid(x, y, z int) bool
}

// LiquidStore is implemented by block stores that know about water and
// lava. Bodies in a liquid sink slowly and stop accumulating fall distance.
type LiquidStore interface {
	IsLiquid(x, y, z int) bool
}

type Vec3 struct {
	X float64
	Y float64
	Z float64
}

type AABB struct {
	MinX float64
	MinY float64
	MinZ float64
	MaxX float64
	MaxY float64
	MaxZ float64
}

func PlayerAABB(x, y, z float64) AABB {
	return AABB{
		MinX: x - PlayerHalfWidth,
		MinY: y,
		MinZ: z - PlayerHalfDepth,
		MaxX: x + PlayerHalfWidth,
		MaxY: y + PlayerHeight,
		MaxZ: z + PlayerHalfDepth,
	}
}

func CollidesWithBlock(aabb AABB, blockStore BlockStore) bool {
	if blockStore == nil {
		return false
	}

	minX := floorForMin(aabb.MinX)
	maxX := floorForMax(aabb.MaxX)
	minY := floorForMin(aabb.MinY)
	maxY := floorForMax(aabb.MaxY)
	minZ := floorForMin(aabb.MinZ)
	maxZ := floorForMax(aabb.MaxZ)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			for z := minZ; z <= maxZ; z++ {
				if !blockStore.IsSolid(x, y, z) {
					continue
				}
				block := AABB{
					MinX: float64(x),
					MinY: float64(y),
					MinZ: float64(z),
					MaxX: float64(x + 1),
					MaxY: float64(y + 1),
					MaxZ: float64(z + 1),
				}
				if intersects(aabb, block) {
					return true
				}
			}
		}
	}

	return false
}

func resolveAxisY(pos Vec3, delta float64, blockStore BlockStore) (float64, float64) {
	if blockStore == nil || nearlyZero(delta) {
		return pos.Y + delta, delta
	}

	aabb := PlayerAABB(pos.X, pos.Y, pos.Z)
	allowed := delta

	if delta > 0 {
		minX := floorForMin(aabb.MinX)
		maxX := floorForMax(aabb.MaxX)
		minZ := floorForMin(aabb.MinZ)
		maxZ := floorForMax(aabb.MaxZ)

		startY := int(math.Floor(aabb.MaxY))
		endY := int(math.Floor(aabb.MaxY + delta))
		for y := startY; y <= endY; y++ {
			for x := minX; x <= maxX; x++ {
				for z := minZ; z <= maxZ; z++ {
					if !blockStore.IsSolid(x, y, z) {
						continue
					}
					candidate := float64(y) - aabb.MaxY
					if candidate < allowed {
						allowed = candidate
					}
				}
			}
		}
	} else {
		minX := floorForMin(aabb.MinX)
		maxX := floorForMax(aabb.MaxX)
		minZ := floorForMin(aabb.MinZ)
		maxZ := floorForMax(aabb.MaxZ)

		startY := int(math.Floor(aabb.MinY + delta))
		endY := int(math.Floor(aabb.MinY - CollisionAxisTolerance))
		for y := endY; y >= startY; y-- {
			for x := minX; x <= maxX; x++ {
				for z := minZ; z <= maxZ; z++ {
					if !blockStore.IsSolid(x, y, z) {
						continue
					}
					candidate := float64(y+1) - aabb.MinY
					if candidate > allowed {
						allowed = candidate
					}
				}
			}
		}
	}

	newY := pos.Y + allowed
	if !nearlyEqual(allowed, delta) {
		return newY, 0
	}
	return newY, delta
}

func floorForMin(v float64) int {
	return int(math.Floor(v + CollisionAxisTolerance))
}

func floorForMax(v float64) int {
	return int(math.Floor(v - CollisionAxisTolerance))
}

func intersects(a, b AABB) bool {
	return a.MinX < b.MaxX &&
		a.MaxX > b.MinX &&
		a.MinY < b.MaxY &&
		a.MaxY > b.MinY &&
		a.MinZ < b.MaxZ &&
		a.MaxZ > b.MinZ
}

func nearlyZero(v float64) bool {
	return math.Abs(v) <= CollisionAxisTolerance
}

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= CollisionAxisTolerance
}

package world

import (
	"fmt"
	"math"
)

// Location is a position inside a named world plus a look direction.
type Location struct {
	World string
	X     float64
	Y     float64
	Z     float64
	Yaw   float32
	Pitch float32
}

func (l Location) BlockX() int { return int(math.Floor(l.X)) }
func (l Location) BlockY() int { return int(math.Floor(l.Y)) }
func (l Location) BlockZ() int { return int(math.Floor(l.Z)) }

// DistanceSquared ignores the world; callers compare worlds themselves.
func (l Location) DistanceSquared(o Location) float64 {
	dx := l.X - o.X
	dy := l.Y - o.Y
	dz := l.Z - o.Z
	return dx*dx + dy*dy + dz*dz
}

// WithRotation returns a copy looking in the given direction.
func (l Location) WithRotation(yaw, pitch float32) Location {
	l.Yaw = yaw
	l.Pitch = pitch
	return l
}

func (l Location) String() string {
	return fmt.Sprintf("%s(%.2f, %.2f, %.2f, yaw=%.1f, pitch=%.1f)", l.World, l.X, l.Y, l.Z, l.Yaw, l.Pitch)
}

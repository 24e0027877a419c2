package physics

import "math"

// FallState is the vertical motion of a body that is not steering: gravity,
// drag and landing.
type FallState struct {
	Position     Vec3
	VelocityY    float64
	OnGround     bool
	FallDistance float64
}

// FallTick advances state by one tick. It returns the fall distance the body
// landed with on this tick, or 0 when it did not land.
func FallTick(state *FallState, blockStore BlockStore) float64 {
	if state == nil {
		return 0
	}
	wasOnGround := state.OnGround

	before := state.Position.Y
	state.Position.Y, state.VelocityY = resolveAxisY(state.Position, state.VelocityY, blockStore)
	if drop := before - state.Position.Y; drop > 0 {
		state.FallDistance += drop
	}
	state.OnGround = isStandingOnSolidBlock(state.Position, blockStore)

	inLiquid := isInLiquid(state.Position, blockStore)
	if inLiquid {
		state.FallDistance = 0
	}

	var landed float64
	if state.OnGround && !wasOnGround {
		landed = state.FallDistance
	}
	if state.OnGround {
		state.FallDistance = 0
	}

	drag := VerticalDrag
	if inLiquid {
		drag = LiquidDrag
	}
	state.VelocityY = (state.VelocityY - GravityAcceleration) * drag
	if state.OnGround && state.VelocityY < 0 {
		state.VelocityY = 0
	}
	if math.Abs(state.VelocityY) < MinimumResidualVerticalSpeed {
		state.VelocityY = 0
	}
	return landed
}

// FallDamage is the damage a landing after distance blocks deals.
func FallDamage(distance float64) int {
	if distance <= SafeFallDistance {
		return 0
	}
	return int(math.Ceil(distance - SafeFallDistance))
}

func isStandingOnSolidBlock(pos Vec3, blockStore BlockStore) bool {
	if blockStore == nil {
		return false
	}
	probe := PlayerAABB(pos.X, pos.Y, pos.Z)
	probe.MinY -= GroundProbeDistance
	probe.MaxY -= GroundProbeDistance
	return CollidesWithBlock(probe, blockStore)
}

func isInLiquid(pos Vec3, blockStore BlockStore) bool {
	liquids, ok := blockStore.(LiquidStore)
	if !ok {
		return false
	}
	return liquids.IsLiquid(int(math.Floor(pos.X)), int(math.Floor(pos.Y)), int(math.Floor(pos.Z)))
}

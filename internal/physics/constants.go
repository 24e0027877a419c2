package physics

const (
	GravityAcceleration = 0.08
	VerticalDrag        = 0.98
	LiquidDrag          = 0.8

	GroundProbeDistance          = 0.001
	MinimumResidualVerticalSpeed = 1e-4
	CollisionAxisTolerance       = 1e-9

	// SafeFallDistance is how far a body may fall before landing hurts.
	SafeFallDistance = 3.0

	PlayerWidth     = 0.6
	PlayerDepth     = 0.6
	PlayerHeight    = 1.8
	PlayerHalfWidth = PlayerWidth / 2.0
	PlayerHalfDepth = PlayerDepth / 2.0
)

package spawn

import (
	"time"

	"github.com/Versifine/spawnpoint/internal/config"
	"github.com/Versifine/spawnpoint/internal/world"
)

const (
	// RescueGrace is how long after an engine teleport void checks stay off
	// for that player, so the rescue and the fall that settles after it
	// cannot trigger another rescue.
	RescueGrace = 5000 * time.Millisecond
	// SafetyScanDepth is how many blocks below the player are checked for
	// something to land on.
	SafetyScanDepth = 5

	noopDistanceSquared = 1e-4
)

// Verdict is the outcome of one void check.
type Verdict int

const (
	VerdictIgnored        Verdict = iota // destination world unknown
	VerdictRecentTeleport                // inside the grace window
	VerdictBypass                        // player holds the void bypass
	VerdictNoop                          // no real vertical movement
	VerdictWorldExcluded                 // world filtered out
	VerdictDisabled                      // void rescue switched off
	VerdictNotFalling                    // not descending into the void
	VerdictNoSpawn                       // would rescue, but no spawn point
	VerdictRescue
)

func (v Verdict) String() string {
	switch v {
	case VerdictIgnored:
		return "ignored"
	case VerdictRecentTeleport:
		return "recent-teleport"
	case VerdictBypass:
		return "bypass"
	case VerdictNoop:
		return "noop"
	case VerdictWorldExcluded:
		return "world-excluded"
	case VerdictDisabled:
		return "disabled"
	case VerdictNotFalling:
		return "not-falling"
	case VerdictNoSpawn:
		return "no-spawn"
	case VerdictRescue:
		return "rescue"
	default:
		return "unknown"
	}
}

// VoidDetector decides, per move, whether a player is falling out of the
// world and has to be brought back.
type VoidDetector struct {
	worlds    WorldResolver
	store     *Store
	teleports *TeleportLog
	grace     time.Duration
}

func NewVoidDetector(worlds WorldResolver, store *Store, teleports *TeleportLog) *VoidDetector {
	return &VoidDetector{
		worlds:    worlds,
		store:     store,
		teleports: teleports,
		grace:     RescueGrace,
	}
}

// Evaluate checks a move from -> to. Only VerdictRescue asks for a teleport.
func (d *VoidDetector) Evaluate(p Player, from, to world.Location, cfg config.Plugin) Verdict {
	w, ok := d.worlds.Lookup(to.World)
	if !ok {
		return VerdictIgnored
	}
	if d.teleports.Recent(p.ID(), d.grace) {
		return VerdictRecentTeleport
	}
	if p.HasPermission(PermBypassVoidTeleport) {
		return VerdictBypass
	}
	if (from.World == to.World && from.DistanceSquared(to) < noopDistanceSquared) || from.Y == to.Y {
		return VerdictNoop
	}
	if !worldEligible(p, to.World, cfg.Filter) {
		return VerdictWorldExcluded
	}
	if !cfg.TeleportOutOfVoid.Enabled {
		return VerdictDisabled
	}
	if !IsDescendingIntoVoid(w, from, to, cfg.TeleportOutOfVoid.CheckHeight) {
		return VerdictNotFalling
	}
	if !d.store.Exists() {
		return VerdictNoSpawn
	}
	return VerdictRescue
}

// IsDescendingIntoVoid reports whether the move goes down, ends at or below
// checkHeight and has nothing to land on underneath.
func IsDescendingIntoVoid(w *world.World, from, to world.Location, checkHeight int) bool {
	if w == nil {
		return false
	}
	if to.Y >= from.Y {
		return false
	}
	if to.Y > float64(checkHeight) {
		return false
	}
	return !HasSafetyBelow(w, to)
}

// HasSafetyBelow scans from the block at loc down through SafetyScanDepth
// blocks, never below the world's minimum height, for a solid block, water
// or lava.
func HasSafetyBelow(w *world.World, loc world.Location) bool {
	if w == nil {
		return false
	}
	startY := loc.BlockY()
	lowestY := max(w.MinHeight(), startY-SafetyScanDepth)
	x, z := loc.BlockX(), loc.BlockZ()

	for y := startY; y >= lowestY; y-- {
		if w.MaterialAt(x, y, z).Safe() {
			return true
		}
	}
	return false
}

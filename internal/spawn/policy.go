package spawn

import (
	"slices"
	"strings"

	"github.com/Versifine/spawnpoint/internal/config"
)

// WorldAllowed applies the world filter. The mode keyword is matched
// case-insensitively, world names exactly. Any mode other than whitelist or
// blacklist allows every world.
func WorldAllowed(worldName, mode string, list []string) bool {
	switch strings.ToLower(mode) {
	case config.ListTypeWhitelist:
		return slices.Contains(list, worldName)
	case config.ListTypeBlacklist:
		return !slices.Contains(list, worldName)
	default:
		return true
	}
}

// GamemodeAllowed reports whether a player in mode may use spawn.
func GamemodeAllowed(mode string, restricted bool, allowed []string, bypass bool) bool {
	if bypass || !restricted {
		return true
	}
	for _, m := range allowed {
		if strings.EqualFold(m, mode) {
			return true
		}
	}
	return false
}

func worldEligible(p Player, worldName string, f config.FilterConfig) bool {
	return p.HasPermission(PermBypassWorldList) || WorldAllowed(worldName, f.ListType, f.WorldList)
}

func gamemodeEligible(p Player, f config.FilterConfig) bool {
	return GamemodeAllowed(p.GameMode(), f.GamemodeRestricted, f.GamemodeList, p.HasPermission(PermBypassGamemode))
}

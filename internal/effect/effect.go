// Package effect resolves configured particle and sound names against the
// set the running server version knows about.
package effect

import (
	"fmt"
	"strconv"
	"strings"
)

// Particle is a resolved particle type. Legacy particles come from the old
// effect table, which can only be played one at a time.
type Particle struct {
	Name   string
	Legacy bool
}

type Sound struct {
	Name string
}

// Registry is the lookup table for one server version.
type Registry struct {
	version   string
	legacy    bool
	particles map[string]struct{}
	sounds    map[string]struct{}
}

func NewRegistry(version string, legacy bool, particles, sounds []string) *Registry {
	r := &Registry{
		version:   version,
		legacy:    legacy,
		particles: make(map[string]struct{}, len(particles)),
		sounds:    make(map[string]struct{}, len(sounds)),
	}
	for _, p := range particles {
		r.particles[p] = struct{}{}
	}
	for _, s := range sounds {
		r.sounds[strings.ToUpper(s)] = struct{}{}
	}
	return r
}

func (r *Registry) Version() string { return r.version }

// ResolveParticle matches the enum name exactly, like the server does.
func (r *Registry) ResolveParticle(name string) (Particle, bool) {
	if _, ok := r.particles[name]; !ok {
		return Particle{}, false
	}
	return Particle{Name: name, Legacy: r.legacy}, true
}

// ResolveSound is case-insensitive; configs often use lower case.
func (r *Registry) ResolveSound(name string) (Sound, bool) {
	upper := strings.ToUpper(name)
	if _, ok := r.sounds[upper]; !ok {
		return Sound{}, false
	}
	return Sound{Name: upper}, true
}

// Modern is the table for 1.9+ servers.
func Modern() *Registry {
	return NewRegistry("1.21", false,
		[]string{
			"PORTAL", "CLOUD", "FLAME", "END_ROD", "HEART", "HAPPY_VILLAGER",
			"REVERSE_PORTAL", "TOTEM_OF_UNDYING", "ENCHANT", "WITCH", "SMOKE",
		},
		[]string{
			"ENTITY_EXPERIENCE_ORB_PICKUP", "ENTITY_ENDERMAN_TELEPORT",
			"BLOCK_NOTE_BLOCK_PLING", "ENTITY_PLAYER_LEVELUP", "BLOCK_PORTAL_TRAVEL",
		},
	)
}

// Legacy is the 1.8 table, where particles are played as effects.
func Legacy() *Registry {
	return NewRegistry("1.8", true,
		[]string{"ENDER_SIGNAL", "MOBSPAWNER_FLAMES", "SMOKE", "PORTAL", "HEART", "CLOUD"},
		[]string{"ORB_PICKUP", "ENDERMAN_TELEPORT", "NOTE_PLING", "LEVEL_UP"},
	)
}

// ForVersion picks the table for a server version such as "1.8.8" or
// "1.21.4". Empty means the modern table.
func ForVersion(version string) (*Registry, error) {
	if version == "" {
		return Modern(), nil
	}
	parts := strings.SplitN(version, ".", 3)
	if len(parts) < 2 || parts[0] != "1" {
		return nil, fmt.Errorf("unsupported server version %q", version)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil || minor < 8 {
		return nil, fmt.Errorf("unsupported server version %q", version)
	}
	if minor == 8 {
		return Legacy(), nil
	}
	return Modern(), nil
}

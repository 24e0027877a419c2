package effect

import "testing"

func TestResolveParticle(t *testing.T) {
	tests := []struct {
		name     string
		registry *Registry
		particle string
		wantOK   bool
		legacy   bool
	}{
		{"modern known", Modern(), "PORTAL", true, false},
		{"modern case sensitive", Modern(), "portal", false, false},
		{"modern unknown", Modern(), "ENDER_SIGNAL", false, false},
		{"legacy known", Legacy(), "ENDER_SIGNAL", true, true},
		{"legacy missing modern name", Legacy(), "TOTEM_OF_UNDYING", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := tt.registry.ResolveParticle(tt.particle)
			if ok != tt.wantOK {
				t.Fatalf("ResolveParticle(%q) ok = %v, want %v", tt.particle, ok, tt.wantOK)
			}
			if ok && (p.Name != tt.particle || p.Legacy != tt.legacy) {
				t.Fatalf("ResolveParticle(%q) = %+v", tt.particle, p)
			}
		})
	}
}

func TestResolveSoundUppercases(t *testing.T) {
	s, ok := Modern().ResolveSound("entity_experience_orb_pickup")
	if !ok || s.Name != "ENTITY_EXPERIENCE_ORB_PICKUP" {
		t.Fatalf("ResolveSound = (%+v, %v)", s, ok)
	}
	if _, ok := Legacy().ResolveSound("ENTITY_EXPERIENCE_ORB_PICKUP"); ok {
		t.Fatalf("legacy registry must not know modern sound names")
	}
}

func TestForVersion(t *testing.T) {
	tests := []struct {
		version string
		want    string
		wantErr bool
	}{
		{version: "", want: "1.21"},
		{version: "1.8.8", want: "1.8"},
		{version: "1.8", want: "1.8"},
		{version: "1.9", want: "1.21"},
		{version: "1.21.4", want: "1.21"},
		{version: "1.7.10", wantErr: true},
		{version: "2.0", wantErr: true},
		{version: "latest", wantErr: true},
	}
	for _, tt := range tests {
		r, err := ForVersion(tt.version)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ForVersion(%q) error = %v, wantErr %v", tt.version, err, tt.wantErr)
		}
		if err == nil && r.Version() != tt.want {
			t.Fatalf("ForVersion(%q) = %s, want %s", tt.version, r.Version(), tt.want)
		}
	}
}

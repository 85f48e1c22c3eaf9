package geocode

import "testing"

func TestResolver_Country(t *testing.T) {
	r, err := NewResolver()
	if err != nil {
		t.Fatalf("NewResolver returned error: %v", err)
	}

	tests := []struct {
		name     string
		lat, lon float64
		want     string
	}{
		{"vienna", 48.21, 16.37, "Austria"},
		{"berlin", 52.52, 13.40, "Germany"},
		{"paris", 48.86, 2.35, "France"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Country(tt.lat, tt.lon)
			if err != nil {
				t.Fatalf("Country(%v, %v) returned error: %v", tt.lat, tt.lon, err)
			}

			if got != tt.want {
				t.Errorf("Country(%v, %v) = %q, want %q", tt.lat, tt.lon, got, tt.want)
			}
		})
	}
}

func TestResolver_OpenOcean(t *testing.T) {
	r, err := NewResolver()
	if err != nil {
		t.Fatalf("NewResolver returned error: %v", err)
	}

	// Mid-Atlantic: no country contains this point.
	if _, err := r.Country(30.0, -40.0); err == nil {
		t.Error("Country over open ocean should fail")
	}
}

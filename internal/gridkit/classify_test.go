package gridkit

import "testing"

func TestClassifyVertex(t *testing.T) {
	tests := []struct {
		rawType string
		want    string
	}{
		{"substation", LabelSubstation},
		{"Substation; station", LabelSubstation},
		{"plant", LabelPlant},
		{"generator", LabelPlant},
		{"wind generator", LabelPlant},
		{"joint", LabelJoint},
		{"merge", LabelMerge},
		{"station", LabelUnknown},
		{"", LabelUnknown},
	}

	for _, tt := range tests {
		if got := ClassifyVertex(tt.rawType); got != tt.want {
			t.Errorf("ClassifyVertex(%q) = %q, want %q", tt.rawType, got, tt.want)
		}
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain name kept", "Wien Südost", "Wien Südost"},
		{"invalid utf8 stripped", "abc\xff\xfedef", "abcdef"},
		{"empty becomes placeholder", "", NamePlaceholder},
		{"whitespace becomes placeholder", "  \t ", NamePlaceholder},
		{"only invalid bytes becomes placeholder", "\xff\xfe", NamePlaceholder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeName(tt.raw); got != tt.want {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

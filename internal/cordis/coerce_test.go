package cordis

import "testing"

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"1.234,56", 1234.56},
		{"1234.56", 1234.56},
		{"2.500.000,00", 2500000},
		{"1000", 1000},
		{"0,5", 0.5},
		{"EUR 1.000,00", 1000},
		{"-250,75", -250.75},
		{"", 0},
		{"n/a", 0},
		{"...,,,", 0},
	}

	for _, tt := range tests {
		if got := ParseAmount(tt.raw); got != tt.want {
			t.Errorf("ParseAmount(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1234.56, "1234.56"},
		{2500000, "2500000"},
		{0, "0"},
	}

	for _, tt := range tests {
		if got := FormatAmount(tt.in); got != tt.want {
			t.Errorf("FormatAmount(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"2020-01-15", "2020-01-15", true},
		{" 2020-01-15 ", "2020-01-15", true},
		{"2020-13-01", "", false},
		{"2020-02-30", "", false},
		{"15/01/2020", "", false},
		{"2020-1-5", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseDate(tt.raw)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseDate(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

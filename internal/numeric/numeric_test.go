package numeric

import (
	"encoding/json"
	"math"
	"testing"
)

// TestParseNonNegative verifies coercion of the loosely typed values that show
// up in exported documents. Anything unusable falls back to the default.
func TestParseNonNegative(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		def  float64
		want float64
	}{
		{"float", 12.5, 0, 12.5},
		{"int", 20, 0, 20},
		{"int64 from firestore", int64(60), 0, 60},
		{"json number", json.Number("42.5"), 0, 42.5},
		{"numeric string", "10", 0, 10},
		{"padded string", "  7.5 ", 0, 7.5},
		{"empty string is zero", "", 9, 0},
		{"garbage string", "10kg", 0, 0},
		{"garbage string custom default", "abc", 3, 3},
		{"nil", nil, 0, 0},
		{"bool", true, 0, 0},
		{"negative", -5.0, 0, 0},
		{"negative string", "-2", 1, 1},
		{"nan", math.NaN(), 0, 0},
		{"inf", math.Inf(1), 0, 0},
		{"map", map[string]any{}, 0, 0},
		{"zero", 0.0, 9, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseNonNegative(tt.raw, tt.def); got != tt.want {
				t.Errorf("ParseNonNegative(%v, %v) = %v, want %v", tt.raw, tt.def, got, tt.want)
			}
		})
	}
}

// TestNonNegative verifies the float guard used inside the calculator.
func TestNonNegative(t *testing.T) {
	if got := NonNegative(4); got != 4 {
		t.Errorf("NonNegative(4) = %v, want 4", got)
	}
	if got := NonNegative(-1); got != 0 {
		t.Errorf("NonNegative(-1) = %v, want 0", got)
	}
	if got := NonNegative(math.NaN()); got != 0 {
		t.Errorf("NonNegative(NaN) = %v, want 0", got)
	}
}

// TestFirstInteger verifies that the first digit run wins, including for
// rep ranges where the low end is used.
func TestFirstInteger(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"10", 10, true},
		{"8-12", 8, true},
		{"até 15 reps", 15, true},
		{"x12", 12, true},
		{"10.5", 10, true},
		{"", 0, false},
		{"falha", 0, false},
		{"0", 0, true},
		{"99999999999999999999999", 0, false},
	}
	for _, tt := range tests {
		got, ok := FirstInteger(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("FirstInteger(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

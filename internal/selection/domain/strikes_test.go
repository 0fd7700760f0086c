package domain

import (
	"errors"
	"testing"
)

func TestGenerateStrikeRange(t *testing.T) {
	strikes, err := GenerateStrikeRange(26178.70, 50, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{26050, 26100, 26150, 26200, 26250, 26300, 26350}
	if len(strikes) != len(want) {
		t.Fatalf("expected %d strikes, got %d", len(want), len(strikes))
	}
	for i, s := range strikes {
		if s != want[i] {
			t.Errorf("strike[%d]: expected %v, got %v", i, want[i], s)
		}
	}
}

func TestATMStrikeRounding(t *testing.T) {
	tests := []struct {
		spot     float64
		interval float64
		want     float64
	}{
		{26178.70, 50, 26200}, // rounds up past the midpoint
		{26170.00, 50, 26150}, // rounds down
		{26175.00, 50, 26200}, // exact tie goes away from zero
		{100.0, 100, 100},
		{49.0, 100, 0},
	}
	for _, tt := range tests {
		if got := ATMStrike(tt.spot, tt.interval); got != tt.want {
			t.Errorf("ATMStrike(%v, %v): expected %v, got %v", tt.spot, tt.interval, tt.want, got)
		}
	}
}

func TestGenerateStrikeRangeZeroHalfWidth(t *testing.T) {
	strikes, err := GenerateStrikeRange(100, 5, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(strikes) != 1 || strikes[0] != 100 {
		t.Fatalf("expected single ATM strike 100, got %v", strikes)
	}
}

func TestGenerateStrikeRangeInvalidInput(t *testing.T) {
	cases := []struct {
		name     string
		spot     float64
		interval float64
		width    int
	}{
		{"zero spot", 0, 50, 3},
		{"negative spot", -1, 50, 3},
		{"zero interval", 100, 0, 3},
		{"negative interval", 100, -50, 3},
		{"negative half width", 100, 50, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := GenerateStrikeRange(tc.spot, tc.interval, tc.width); !errors.Is(err, ErrInvalidConfiguration) {
				t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
			}
		})
	}
}

package checkers

import (
	"math/rand"
	"testing"
)

func TestPresetLookup(t *testing.T) {
	for _, name := range []string{"easy", "medium", "hard", " Hard "} {
		if _, err := GetPreset(name); err != nil {
			t.Fatalf("GetPreset(%q): %v", name, err)
		}
	}
	if _, err := GetPreset("grandmaster"); err == nil {
		t.Fatalf("expected error for unknown preset")
	}
	names := PresetNames()
	if len(names) != 3 || names[0] != "easy" || names[1] != "hard" || names[2] != "medium" {
		t.Fatalf("preset names = %v", names)
	}
}

func TestEasyPolicyCoversAllDestinations(t *testing.T) {
	var b Board
	place(&b, 44, South, false) // two simple destinations, 35 and 37

	policy := NewPolicy(DefaultPresets["easy"], rand.NewSource(1))
	seen := map[int]bool{}
	for i := 0; i < 64; i++ {
		from, to, ok := policy.ChooseMove(&b, South)
		if !ok || from != 44 {
			t.Fatalf("choose = (%d, %d, %v)", from, to, ok)
		}
		if !contains(b.Destinations(44), to) {
			t.Fatalf("illegal destination %d", to)
		}
		seen[to] = true
	}
	if !seen[35] || !seen[37] {
		t.Fatalf("easy tier never varied the landing: %v", seen)
	}
}

func TestCapturePreferringPolicyIsDeterministicOnLandings(t *testing.T) {
	var b Board
	place(&b, 52, South, false) // capturer
	place(&b, 43, North, false)
	place(&b, 48, South, false) // simple mover that must be ignored

	policy := NewPolicy(DefaultPresets["medium"], rand.NewSource(9))
	for i := 0; i < 20; i++ {
		from, to, ok := policy.ChooseMove(&b, South)
		if !ok {
			t.Fatalf("no move chosen")
		}
		if from != 52 || to != 34 {
			t.Fatalf("choose = %d -> %d, want the capture 52 -> 34", from, to)
		}
	}
}

func TestCapturePreferringPolicyFallsBackToFirstDestination(t *testing.T) {
	var b Board
	place(&b, 44, South, false)

	policy := NewPolicy(DefaultPresets["hard"], rand.NewSource(3))
	for i := 0; i < 20; i++ {
		from, to, ok := policy.ChooseMove(&b, South)
		if !ok {
			t.Fatalf("no move chosen")
		}
		if want := b.Destinations(from)[0]; to != want {
			t.Fatalf("landing = %d, want first enumerated %d", to, want)
		}
	}
}

func TestChooseMoveWithNoMovers(t *testing.T) {
	var b Board
	place(&b, 7, North, false)
	place(&b, 14, South, false)
	place(&b, 21, South, false)

	policy := NewPolicy(DefaultPresets["medium"], rand.NewSource(1))
	if _, _, ok := policy.ChooseMove(&b, North); ok {
		t.Fatalf("expected no move for a blocked side")
	}
}

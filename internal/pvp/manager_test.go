package pvp

import "testing"

func TestParseSideChoice(t *testing.T) {
	cases := map[string]SideChoice{
		"red": SideRed, "R": SideRed,
		"black": SideBlack, "b": SideBlack,
		"": SideRandom, "whatever": SideRandom,
	}
	for in, want := range cases {
		if got := ParseSideChoice(in); got != want {
			t.Fatalf("ParseSideChoice(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestCreateChallengeValidation(t *testing.T) {
	m := NewManager()

	if _, err := m.CreateChallenge("", "u1", "u2", SideRandom); err != ErrInvalidArgs {
		t.Fatalf("expected ErrInvalidArgs, got %v", err)
	}
	if _, err := m.CreateChallenge("roomA", "u1", "u1", SideRandom); err != ErrSelfChallenge {
		t.Fatalf("expected ErrSelfChallenge, got %v", err)
	}

	ch, err := m.CreateChallenge("roomA", "u1", "u2", SideRed)
	if err != nil {
		t.Fatalf("CreateChallenge: %v", err)
	}
	if ch.Status != StatusAccepted || ch.ResolveRoom != "roomA" || ch.Side != SideRed {
		t.Fatalf("unexpected challenge: %+v", ch)
	}
}

func TestAcceptWithoutPending(t *testing.T) {
	m := NewManager()
	if _, err := m.Accept("u2", "roomA"); err != ErrNoPendingForUser {
		t.Fatalf("expected ErrNoPendingForUser, got %v", err)
	}
	if _, err := m.Decline("u2", "roomA"); err != ErrNoPendingForUser {
		t.Fatalf("expected ErrNoPendingForUser, got %v", err)
	}
}

package msgcat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmbeddedCatalogRenders(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := c.Render("checkers.event.capture", map[string]any{
		"By": "Fern", "PlayerScore": 3, "BotScore": 1,
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "Fern") || !strings.Contains(out, "3:1") {
		t.Fatalf("unexpected render: %q", out)
	}
}

func TestRenderMissingKeyFails(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Render("checkers.event.capture", map[string]any{"By": "Fern"}); err == nil {
		t.Fatalf("expected error for missing template data")
	}
	if _, err := c.Render("no.such.key", nil); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestOverrideDirReplacesDefaults(t *testing.T) {
	dir := t.TempDir()
	override := "checkers:\n  event:\n    turn_passed: \"Waiting on the bot.\"\n"
	if err := os.WriteFile(filepath.Join(dir, "10-local.yaml"), []byte(override), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}

	c, err := New(dir)
	if err != nil {
		t.Fatalf("New with overrides: %v", err)
	}
	out, err := c.Render("checkers.event.turn_passed", nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out != "Waiting on the bot." {
		t.Fatalf("override not applied: %q", out)
	}
	// untouched keys still resolve
	if _, err := c.Render("pvp.start", map[string]any{"Red": "a", "Black": "b"}); err != nil {
		t.Fatalf("default key lost after override: %v", err)
	}
}

func TestDuplicateOverrideKeysRejected(t *testing.T) {
	dir := t.TempDir()
	frag := "checkers:\n  event:\n    turn_passed: \"x\"\n"
	for _, name := range []string{"a.yaml", "b.yaml"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(frag), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if _, err := New(dir); err == nil {
		t.Fatalf("expected duplicate key error")
	}
}

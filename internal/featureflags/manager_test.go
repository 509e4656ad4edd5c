package featureflags

import (
	"testing"

	"hotorflop/internal/audience"
)

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0")

	if !m.Enabled("a", 1) || !m.Enabled("c", 1) || !m.Enabled("e", 1) {
		t.Fatal("expected enabled boolean values to evaluate true")
	}
	if m.Enabled("b", 1) || m.Enabled("d", 1) || m.Enabled("f", 1) {
		t.Fatal("expected disabled boolean values to evaluate false")
	}
	if m.Enabled("missing", 1) {
		t.Fatal("unknown flags must be off")
	}
}

func TestEnabled_PercentageValues(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%,junk=abc%")

	if !m.Enabled("always", 1) {
		t.Fatal("100% rollout should always be enabled")
	}
	if m.Enabled("never", 1) || m.Enabled("junk", 1) {
		t.Fatal("0% and malformed rollouts should be disabled")
	}

	first := m.Enabled("canary", 42)
	for i := 0; i < 5; i++ {
		if got := m.Enabled("canary", 42); got != first {
			t.Fatal("rollout evaluation must be deterministic per user")
		}
	}

	if m.Enabled("canary", 0) {
		t.Fatal("percentage rollout requires non-zero userID")
	}

	enabled := 0
	for uid := uint(1); uid <= 1000; uid++ {
		if m.Enabled("canary", uid) {
			enabled++
		}
	}
	if enabled < 150 || enabled > 350 {
		t.Fatalf("25%% rollout enabled %d of 1000 users", enabled)
	}
}

func TestParseAndSnapshot(t *testing.T) {
	m := NewManager(" bad ,x=on, y = 20% ,z=off ")

	raw := m.Raw()
	if len(raw) != 3 {
		t.Fatalf("expected 3 parsed flags, got %d", len(raw))
	}
	if raw["x"] != "on" || raw["y"] != "20%" || raw["z"] != "off" {
		t.Fatalf("unexpected raw flags: %#v", raw)
	}

	snap := m.Snapshot(123)
	if len(snap) != 3 || !snap["x"] || snap["z"] {
		t.Fatalf("unexpected snapshot: %#v", snap)
	}
}

func TestPolicy(t *testing.T) {
	on := NewManager(CloseFriendOverride + "=on")
	if on.Policy(1) != audience.DefaultPolicy {
		t.Fatal("override flag on should yield the default policy")
	}

	off := NewManager(CloseFriendOverride + "=off")
	if off.Policy(1).CloseFriendOverride {
		t.Fatal("override flag off should disable the override")
	}

	if NewManager("random_feed=on").Policy(1) != audience.DefaultPolicy {
		t.Fatal("an unconfigured override flag should keep the default policy")
	}

	var nilManager *Manager
	if nilManager.Policy(1) != audience.DefaultPolicy || len(nilManager.Raw()) != 0 {
		t.Fatal("nil manager should fall back to defaults")
	}
}

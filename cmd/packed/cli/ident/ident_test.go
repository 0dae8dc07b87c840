package ident

import (
	"strings"
	"testing"
	"time"
)

func TestSymbol_Deterministic(t *testing.T) {
	t.Parallel()

	mtime := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	first := Symbol("assets/logo.png", mtime)
	for i := 0; i < 10; i++ {
		if got := Symbol("assets/logo.png", mtime); got != first {
			t.Fatalf("Symbol not stable: %q vs %q", got, first)
		}
	}
}

func TestSymbol_Format(t *testing.T) {
	t.Parallel()

	sym := Symbol("a.txt", time.Now())
	if !strings.HasPrefix(sym, Prefix) {
		t.Errorf("symbol %q should start with %q", sym, Prefix)
	}
	digest := strings.TrimPrefix(sym, Prefix)
	if len(digest) != 16 {
		t.Errorf("digest %q should be 16 hex digits", digest)
	}
	for _, r := range digest {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
			t.Errorf("digest %q contains non-hex rune %q", digest, r)
		}
	}
}

func TestSymbol_DistinctPaths(t *testing.T) {
	t.Parallel()

	mtime := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	paths := []string{
		"assets/a.png", "assets/b.png", "assets/a.pnh",
		"asset/sa.png", "a.png", "b/a.png",
	}
	seen := make(map[string]string)
	for _, p := range paths {
		sym := Symbol(p, mtime)
		if prev, ok := seen[sym]; ok {
			t.Errorf("paths %q and %q collide on %q", p, prev, sym)
		}
		seen[sym] = p
	}
}

func TestSymbol_DistinctTimes(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	if Symbol("a.txt", base) == Symbol("a.txt", base.Add(time.Second)) {
		t.Error("different mtimes should derive different symbols")
	}
}

func TestSymbol_TimezoneInvariant(t *testing.T) {
	t.Parallel()

	// The same instant expressed in different zones must derive the same
	// symbol, or pack and gen could disagree across machines.
	mtime := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	if Symbol("assets/logo.png", mtime) != Symbol("assets/logo.png", mtime.In(time.FixedZone("X", 3600))) {
		t.Error("time zone must not affect the derived symbol")
	}
}

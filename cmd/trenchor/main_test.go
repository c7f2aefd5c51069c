package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zappabad/trenchor/internal/config"
	"github.com/zappabad/trenchor/internal/game"
	"github.com/zappabad/trenchor/internal/logging"
)

func TestRunPrintsEveryRound(t *testing.T) {
	fc := config.Default()
	var out bytes.Buffer

	opts := options{rounds: 3, ai: 2, seed: 7}
	if err := run(&out, fc, opts, logging.Discard()); err != nil {
		t.Fatalf("run: %v", err)
	}

	s := out.String()
	for _, want := range []string{"2 traders", "=== Round 1/3 ===", "=== Round 3/3 ===", "=== Final results ===", "AI_Conservative_1"} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q:\n%s", want, s)
		}
	}
	if strings.Contains(s, "Round 4/3") {
		t.Errorf("played past the last round:\n%s", s)
	}
}

func TestRunJSONAndArchive(t *testing.T) {
	fc := config.Default()
	fc.Archive.Path = filepath.Join(t.TempDir(), "results.db")

	opts := options{rounds: 2, ai: 1, seed: 3, history: 5, jsonOut: true}
	var out bytes.Buffer
	if err := run(&out, fc, opts, logging.Discard()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	out.Reset()
	if err := run(&out, fc, opts, logging.Discard()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	s := out.String()
	start := strings.Index(s, "{")
	end := strings.Index(s, "=== Recent games ===")
	if start < 0 || end < start {
		t.Fatalf("unexpected output:\n%s", s)
	}

	var res game.Results
	if err := json.Unmarshal([]byte(s[start:end]), &res); err != nil {
		t.Fatalf("decode results: %v", err)
	}
	if res.Rounds != 2 || len(res.Standings) != 1 {
		t.Errorf("results = %+v", res)
	}

	if n := strings.Count(s[end:], "winner AI_Conservative_1"); n != 2 {
		t.Errorf("recent games lists %d entries, want 2:\n%s", n, s[end:])
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package repair

import (
	"testing"

	"github.com/pdiddy/dataset-engine/internal/diag"
	"github.com/pdiddy/dataset-engine/internal/dict"
	"github.com/pdiddy/dataset-engine/pkg/types"
)

func defaultCfg() types.RepairConfig {
	return types.RepairConfig{MinJoinFrequency: 100}
}

func TestRepair_SplitWordJoin(t *testing.T) {
	d := dict.NewMap(map[string]int64{"computer": 500, "is": 9000, "great": 8000})

	got := Repair("com puter is great.", d, defaultCfg(), diag.Discard)
	if got.Text != "computer is great." {
		t.Errorf("Text = %q, want %q", got.Text, "computer is great.")
	}
	if got.Joins != 1 {
		t.Errorf("Joins = %d, want 1", got.Joins)
	}
}

func TestRepair_JoinRequiresEvidence(t *testing.T) {
	tests := []struct {
		name string
		dict map[string]int64
		in   string
	}{
		{
			name: "left half is a dictionary word",
			dict: map[string]int64{"com": 200, "computer": 500},
			in:   "com puter runs",
		},
		{
			name: "joined form absent",
			dict: map[string]int64{"is": 9000},
			in:   "com puter runs",
		},
		{
			name: "joined frequency too low",
			dict: map[string]int64{"computer": 100},
			in:   "com puter runs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Repair(tt.in, dict.NewMap(tt.dict), defaultCfg(), diag.Discard)
			if got.Joins != 0 {
				t.Errorf("Joins = %d, want 0 (text %q)", got.Joins, got.Text)
			}
			if got.Text != tt.in {
				t.Errorf("Text = %q, want unchanged %q", got.Text, tt.in)
			}
		})
	}
}

func TestRepair_JoinStopsAtSentenceBoundary(t *testing.T) {
	// "mat." carries sentence-final punctuation: never merged with the next
	// sentence's opening token, even with dictionary support.
	d := dict.NewMap(map[string]int64{"matthe": 5000})
	in := "sat on the mat. the end came"
	got := Repair(in, d, defaultCfg(), diag.Discard)
	if got.Joins != 0 {
		t.Errorf("Joins = %d, want 0 (text %q)", got.Joins, got.Text)
	}
}

func TestRepair_JoinedTokenNotReconsidered(t *testing.T) {
	// After "ab"+"cd" merge, the result must not immediately merge with "ef".
	d := dict.NewMap(map[string]int64{"abcd": 500, "abcdef": 900})
	got := Repair("ab cd ef", d, defaultCfg(), diag.Discard)
	if got.Text != "abcd ef" {
		t.Errorf("Text = %q, want %q", got.Text, "abcd ef")
	}
	if got.Joins != 1 {
		t.Errorf("Joins = %d, want 1", got.Joins)
	}
}

func TestRepair_DropCap(t *testing.T) {
	got := Repair("T he cat sat on the mat.", nil, defaultCfg(), diag.Discard)
	if got.Text != "The cat sat on the mat." {
		t.Errorf("Text = %q, want %q", got.Text, "The cat sat on the mat.")
	}
	if got.DropCaps != 1 {
		t.Errorf("DropCaps = %d, want 1", got.DropCaps)
	}
}

func TestRepair_DropCapMidStream(t *testing.T) {
	got := Repair("First sentence ends. T he second one follows.", nil, defaultCfg(), diag.Discard)
	want := "First sentence ends. The second one follows."
	if got.Text != want {
		t.Errorf("Text = %q, want %q", got.Text, want)
	}
}

func TestRepair_DropCapNeedsPattern(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "lowercase single letter", in: "a cat sat on the mat."},
		{name: "single-token sentence", in: "T"},
		{name: "multi-letter first token", in: "Th e cat sat."},
		{name: "mid-sentence single capital", in: "the letter T he wrote"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Repair(tt.in, nil, defaultCfg(), diag.Discard)
			if got.DropCaps != 0 {
				t.Errorf("DropCaps = %d, want 0 (text %q)", got.DropCaps, got.Text)
			}
		})
	}
}

func TestRepair_NilDictionaryDegrades(t *testing.T) {
	var sink diag.Capture
	got := Repair("T he com puter works.", nil, defaultCfg(), &sink)
	// Drop-cap still fires; join cannot.
	if got.Text != "The com puter works." {
		t.Errorf("Text = %q, want %q", got.Text, "The com puter works.")
	}
	if got.DictionaryUsed {
		t.Error("DictionaryUsed = true, want false")
	}
	if !sink.Has("dictionary unavailable") {
		t.Errorf("expected degradation warning, got %v", sink.Lines)
	}
}

func TestRepair_TokenSplitOptIn(t *testing.T) {
	d := dict.NewMap(map[string]int64{"as": 9000, "he": 9000})
	cfg := defaultCfg()

	// Off by default.
	got := Repair("ashe spoke", d, cfg, diag.Discard)
	if got.Splits != 0 {
		t.Errorf("Splits = %d without opt-in, want 0", got.Splits)
	}

	cfg.EnableTokenSplit = true
	got = Repair("ashe spoke", d, cfg, diag.Discard)
	if got.Text != "as he spoke" {
		t.Errorf("Text = %q, want %q", got.Text, "as he spoke")
	}
	if got.Splits != 1 {
		t.Errorf("Splits = %d, want 1", got.Splits)
	}
}

func TestRepair_RuleOrderJoinBeforeDropCap(t *testing.T) {
	// The join pass sees "T he" too, but "t"/"he" fail the both-absent
	// condition here; the later drop-cap pass then repairs it. The join
	// result "computer" must already be in place by then.
	d := dict.NewMap(map[string]int64{"computer": 500, "he": 9000})
	got := Repair("T he com puter hums.", d, defaultCfg(), diag.Discard)
	if got.Text != "The computer hums." {
		t.Errorf("Text = %q, want %q", got.Text, "The computer hums.")
	}
	if got.Joins != 1 || got.DropCaps != 1 {
		t.Errorf("Joins = %d, DropCaps = %d, want 1 and 1", got.Joins, got.DropCaps)
	}
}

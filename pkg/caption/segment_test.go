package caption

import (
	"strings"
	"testing"
	"time"
)

func TestBuildUnitsSplitsLongChunks(t *testing.T) {
	chunks := []ChunkTranscript{
		{
			Start: 0,
			End:   3 * time.Second,
			Text:  "one two three four five six seven eight nine ten eleven twelve thirteen fourteen fifteen",
		},
		{
			Start: 3 * time.Second,
			End:   6 * time.Second,
			Text:  "sixteen seventeen eighteen nineteen",
		},
	}

	units := BuildUnits(chunks)

	if len(units) != 3 {
		t.Fatalf("expected 3 units, got %d", len(units))
	}

	// First chunk has 15 words, so it splits into two groups sharing the
	// 3s window equally.
	if units[0].Start != 0 || units[0].End != 1500*time.Millisecond {
		t.Errorf("unit 0 window = [%v, %v), want [0s, 1.5s)", units[0].Start, units[0].End)
	}
	if got := len(strings.Fields(units[0].Text)); got != MaxWordsPerUnit {
		t.Errorf("unit 0 has %d words, want %d", got, MaxWordsPerUnit)
	}

	if units[1].Start != 1500*time.Millisecond || units[1].End != 3*time.Second {
		t.Errorf("unit 1 window = [%v, %v), want [1.5s, 3s)", units[1].Start, units[1].End)
	}
	if got := len(strings.Fields(units[1].Text)); got != 5 {
		t.Errorf("unit 1 has %d words, want 5", got)
	}

	if units[2].Start != 3*time.Second || units[2].End != 6*time.Second {
		t.Errorf("unit 2 window = [%v, %v), want [3s, 6s)", units[2].Start, units[2].End)
	}
	if units[2].Text != "sixteen seventeen eighteen nineteen" {
		t.Errorf("unit 2 text = %q", units[2].Text)
	}

	for i, u := range units {
		if u.Index != i+1 {
			t.Errorf("unit %d has index %d, want %d", i, u.Index, i+1)
		}
	}
}

func TestBuildUnitsSkipsEmptyChunks(t *testing.T) {
	chunks := []ChunkTranscript{
		{Start: 0, End: 3 * time.Second, Text: "hello there"},
		{Start: 3 * time.Second, End: 6 * time.Second, Text: ""},
		{Start: 6 * time.Second, End: 9 * time.Second, Text: "   "},
		{Start: 9 * time.Second, End: 12 * time.Second, Text: "welcome back"},
	}

	units := BuildUnits(chunks)

	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(units))
	}

	// Indices stay contiguous even when chunks in between contribute
	// nothing.
	if units[0].Index != 1 || units[1].Index != 2 {
		t.Errorf("indices = %d, %d; want 1, 2", units[0].Index, units[1].Index)
	}
	if units[1].Start != 9*time.Second || units[1].End != 12*time.Second {
		t.Errorf("unit 1 window = [%v, %v), want [9s, 12s)", units[1].Start, units[1].End)
	}
}

func TestBuildUnitsEmptyInput(t *testing.T) {
	if units := BuildUnits(nil); len(units) != 0 {
		t.Errorf("expected no units, got %d", len(units))
	}
	if units := BuildUnits([]ChunkTranscript{}); len(units) != 0 {
		t.Errorf("expected no units, got %d", len(units))
	}
}

func TestBuildUnitsLastGroupAbsorbsRemainder(t *testing.T) {
	// 21 words over a 3s chunk: three groups, division remainder lands on
	// the last cue so the windows cover the chunk exactly.
	words := make([]string, 21)
	for i := range words {
		words[i] = "w"
	}
	chunks := []ChunkTranscript{
		{Start: 0, End: 3 * time.Second, Text: strings.Join(words, " ")},
	}

	units := BuildUnits(chunks)
	if len(units) != 3 {
		t.Fatalf("expected 3 units, got %d", len(units))
	}
	if units[2].End != 3*time.Second {
		t.Errorf("last unit ends at %v, want 3s", units[2].End)
	}
	for i := 1; i < len(units); i++ {
		if units[i].Start != units[i-1].End {
			t.Errorf("unit %d starts at %v, previous ends at %v", i, units[i].Start, units[i-1].End)
		}
	}
}

package indexer

import (
	"strings"
	"testing"
)

func TestCollectWordStats(t *testing.T) {
	content := "Revenue grew fast. Revenue doubled again. The margin is up."
	stats := collectWordStats(content, 0)

	if len(stats) == 0 {
		t.Fatal("no stats")
	}
	if stats[0].Word != "revenue" || stats[0].Frequency != 2 {
		t.Errorf("top word = %s (%d), want revenue (2)", stats[0].Word, stats[0].Frequency)
	}
	if stats[0].Context != "Revenue grew fast." {
		t.Errorf("context = %q, want the first containing sentence", stats[0].Context)
	}
	for _, st := range stats {
		if len(st.Word) <= 2 {
			t.Errorf("short token %q should be skipped", st.Word)
		}
	}
	// Short tokens still advance the position counter.
	if len(stats[0].Positions) != 2 || stats[0].Positions[0] != 1 {
		t.Errorf("positions = %v", stats[0].Positions)
	}
}

func TestCollectWordStats_limitAndTies(t *testing.T) {
	content := "alpha beta alpha beta gamma."
	stats := collectWordStats(content, 2)
	if len(stats) != 2 {
		t.Fatalf("stats = %d, want 2", len(stats))
	}
	// Equal frequency breaks ties alphabetically.
	if stats[0].Word != "alpha" || stats[1].Word != "beta" {
		t.Errorf("order = %s, %s", stats[0].Word, stats[1].Word)
	}
}

func TestCollectWordStats_positionCap(t *testing.T) {
	content := strings.TrimSpace(strings.Repeat("echo ", 15)) + "."
	stats := collectWordStats(content, 0)
	if len(stats) != 1 {
		t.Fatalf("stats = %d", len(stats))
	}
	if stats[0].Frequency != 15 {
		t.Errorf("frequency = %d", stats[0].Frequency)
	}
	if len(stats[0].Positions) != maxWordPositions {
		t.Errorf("positions = %d, want cap of %d", len(stats[0].Positions), maxWordPositions)
	}
}

func TestLabeledWordContent(t *testing.T) {
	st := &wordStat{
		Word:      "revenue",
		Frequency: 3,
		Positions: []int{1, 8, 14},
		Context:   "Revenue grew fast.",
	}
	got := labeledWordContent(st)
	want := "Word: revenue\nFrequency: 3\nPositions: 1, 8, 14\nContext: Revenue grew fast."
	if got != want {
		t.Errorf("labeledWordContent =\n%q\nwant\n%q", got, want)
	}
}

func TestLabeledSentenceContent(t *testing.T) {
	sentences := []string{"First one.", "Second one.", "Third one."}

	middle := labeledSentenceContent(sentences, 1, "notes.txt")
	want := "Sentence 2: Second one.\nPrevious: First one.\nNext: Third one.\nFile: notes.txt"
	if middle != want {
		t.Errorf("middle =\n%q\nwant\n%q", middle, want)
	}

	first := labeledSentenceContent(sentences, 0, "notes.txt")
	if strings.Contains(first, "Previous:") {
		t.Errorf("first sentence has no previous neighbor: %q", first)
	}
	last := labeledSentenceContent(sentences, 2, "notes.txt")
	if strings.Contains(last, "Next:") {
		t.Errorf("last sentence has no next neighbor: %q", last)
	}
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("One done. Two more! Is it three? tail without terminator")
	want := []string{"One done.", "Two more!", "Is it three?", "tail without terminator"}
	if len(got) != len(want) {
		t.Fatalf("sentences = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sentence %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitSentences_dropsShortFragments(t *testing.T) {
	got := splitSentences("Ok. A real sentence follows here.")
	if len(got) != 1 {
		t.Fatalf("sentences = %v", got)
	}
	if got[0] != "A real sentence follows here." {
		t.Errorf("sentence = %q", got[0])
	}
}

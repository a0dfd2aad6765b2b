package snippet

import (
	"strings"
	"testing"
)

func TestExtractSentence_stripsSentenceLabel(t *testing.T) {
	got := ExtractSentence("Sentence 3: The budget was approved.", "budget")
	if got != "The budget was approved." {
		t.Errorf("got %q", got)
	}
}

func TestExtractSentence_completeSentencePassesThrough(t *testing.T) {
	in := "The budget was approved."
	if got := ExtractSentence(in, "budget"); got != in {
		t.Errorf("got %q, want unchanged", got)
	}
}

func TestExtractSentence_empty(t *testing.T) {
	if got := ExtractSentence("   ", "q"); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestExtractSentence_trimsToFirstSentenceKeepingTags(t *testing.T) {
	in := "The <em>budget</em> was approved. More text here"
	got := ExtractSentence(in, "budget")
	if got != "The <em>budget</em> was approved." {
		t.Errorf("got %q", got)
	}
}

func TestExtractSentence_terminatesFragment(t *testing.T) {
	got := ExtractSentence("approved the plan", "plan")
	if got != "approved the plan." {
		t.Errorf("got %q", got)
	}
}

func TestExtractSentence_idempotent(t *testing.T) {
	inputs := []string{
		"Sentence 12: Totals were recalculated after the audit. Next steps follow",
		"The <em>budget</em> was approved. More text here",
		"approved the plan",
		"Revenue grew in the second quarter.",
	}
	for _, in := range inputs {
		once := ExtractSentence(in, "budget")
		twice := ExtractSentence(once, "budget")
		if once != twice {
			t.Errorf("not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestExtractSentence_structured(t *testing.T) {
	fragment := strings.Join([]string{
		"[SHEET Expenses]",
		"ID Date Category Amount",
		"[ROW 1]",
		"1 2024-01-05 Travel 250",
		"[ROW 2]",
		"2 2024-02-10 Software 99",
		"[END ROW]",
	}, "\n")
	got := ExtractSentence(fragment, "Software")
	want := "Headers: ID Date Category Amount | Data: 2 2024-02-10 <em>Software</em> 99."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtractSentence_structuredNoQueryMatchShowsFirstRows(t *testing.T) {
	fragment := strings.Join([]string{
		"ID Date Category Amount",
		"[ROW 1]",
		"1 2024-01-05 Travel 250",
		"[ROW 2]",
		"2 2024-02-10 Software 99",
		"[ROW 3]",
		"3 2024-03-15 Hardware 4000",
	}, "\n")
	got := ExtractSentence(fragment, "zzz")
	if !strings.Contains(got, "Travel") || !strings.Contains(got, "Software") {
		t.Errorf("first two data rows expected: %q", got)
	}
	if strings.Contains(got, "Hardware") {
		t.Errorf("third row should be elided: %q", got)
	}
	if !strings.Contains(got, "showing 2 of 3") {
		t.Errorf("row count note expected: %q", got)
	}
}

func TestExtractSentence_structuredFallbackTruncates(t *testing.T) {
	// Marker present but no parseable data rows.
	fragment := "Document GUID: abc\n[SHEET Empty]\nshort row\n" + strings.Repeat("x", 300)
	got := ExtractSentence(fragment, "q")
	if len(got) > 220 {
		t.Errorf("fallback should truncate, got %d chars", len(got))
	}
}

func TestFormatRow(t *testing.T) {
	tests := []struct {
		name string
		row  string
		want string
	}{
		{"short row unchanged", "a b c", "a b c"},
		{"seven tokens", "a b c d e f g", "a b c d e f ..."},
		{"nine tokens", "a b c d e f g h i", "a b c d ... h i"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatRow(tt.row); got != tt.want {
				t.Errorf("formatRow(%q) = %q, want %q", tt.row, got, tt.want)
			}
		})
	}
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("First part. Second part! third continues? Last one")
	// "third" is lowercase, so "Second part!" does not end a segment there.
	if len(got) != 3 {
		t.Fatalf("got %d segments: %v", len(got), got)
	}
	if got[0] != "First part." {
		t.Errorf("first segment %q", got[0])
	}
	if got[1] != "Second part! third continues?" {
		t.Errorf("second segment %q", got[1])
	}
	if got[2] != "Last one" {
		t.Errorf("third segment %q", got[2])
	}
}

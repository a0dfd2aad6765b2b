package answer

import "testing"

func TestQuality(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		query  string
		want   float64
	}{
		{
			"strong structured answer clamps to one",
			"Deadline: March 15, per section 4 of the vendor contract agreement terms.",
			"payment deadline",
			1.0,
		},
		{
			"terse non-answer",
			"No.",
			"deadline",
			0.0,
		},
		{
			"hedged answer",
			"The information is not available.",
			"zzz",
			0.0,
		},
		{
			"short content hedge penalized",
			"Based on the content, yes.",
			"zzz",
			0.0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Quality(tt.answer, tt.query); got != tt.want {
				t.Errorf("Quality(%q) = %f, want %f", tt.answer, got, tt.want)
			}
		})
	}
}

func TestQuality_range(t *testing.T) {
	answers := []string{
		"",
		"short",
		"A medium length answer that covers the question with some detail: dates, names, amounts.",
	}
	for _, a := range answers {
		got := Quality(a, "question")
		if got < 0 || got > 1 {
			t.Errorf("Quality(%q) = %f out of [0,1]", a, got)
		}
	}
}

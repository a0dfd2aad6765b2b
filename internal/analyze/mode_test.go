package analyze

import (
	"testing"

	"github.com/sableworks/findex/internal/models"
)

func TestDetectOptimalMode(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  models.SearchMode
	}{
		{"single token", "revenue", models.ModeWordLevel},
		{"frequency question", "how many times does revenue appear", models.ModeWordLevel},
		{"quoted phrase", `"exact phrase" search`, models.ModeSentenceLevel},
		{"context keyword", "explain the budget", models.ModeSentenceLevel},
		{"mid-length query", "alpha beta gamma", models.ModeSentenceLevel},
		{"long query", "alpha beta gamma delta epsilon zeta eta theta iota", models.ModeSemantic},
		{"similarity pair", "like budgets", models.ModeSemantic},
		{"short plain pair", "alpha beta", models.ModeComprehensive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectOptimalMode(tt.query); got != tt.want {
				t.Errorf("DetectOptimalMode(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestWordLevelBeneficial(t *testing.T) {
	if !WordLevelBeneficial("revenue") {
		t.Error("single token should benefit from word level")
	}
	if !WordLevelBeneficial("count of revenue mentions") {
		t.Error("frequency question should benefit from word level")
	}
	if WordLevelBeneficial("quarterly revenue report") {
		t.Error("plain multi-word query should not")
	}
}

func TestSentenceLevelBeneficial(t *testing.T) {
	if !SentenceLevelBeneficial(`"board approved"`) {
		t.Error("quoted phrase should benefit from sentence level")
	}
	if !SentenceLevelBeneficial("why was the launch delayed") {
		t.Error("wh question should benefit from sentence level")
	}
	if SentenceLevelBeneficial("revenue") {
		t.Error("single plain token should not")
	}
}

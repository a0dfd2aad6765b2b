package analyze

import "testing"

func TestClassifyCoarse(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantClass SearchClass
	}{
		{"guid plus exact keyword", "550e8400-e29b-41d4-a716-446655440000 exact", ClassExactSearch},
		{"wh question", "what is the project about", ClassNatural},
		{"entity prose", "notes about Berlin office", ClassHybrid},
		{"all zero defaults to hybrid", "alpha beta", ClassHybrid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class, conf := ClassifyCoarse(tt.query)
			if class != tt.wantClass {
				t.Errorf("ClassifyCoarse(%q) = %v, want %v", tt.query, class, tt.wantClass)
			}
			if conf < 0 || conf > 1 {
				t.Errorf("confidence %f out of range", conf)
			}
		})
	}
}

func TestClassifyCoarse_confidenceNormalized(t *testing.T) {
	class, conf := ClassifyCoarse("550e8400-e29b-41d4-a716-446655440000 exact")
	if class != ClassExactSearch {
		t.Fatalf("class = %v", class)
	}
	// GUID (3) + "exact" (2) over the exact normalizer of 5.
	if conf != 1.0 {
		t.Errorf("confidence = %f, want 1.0", conf)
	}
}

func TestClassifyCoarse_zeroScoreConfidence(t *testing.T) {
	_, conf := ClassifyCoarse("alpha beta")
	if conf != 0 {
		t.Errorf("confidence = %f, want 0 for a signal-free query", conf)
	}
}

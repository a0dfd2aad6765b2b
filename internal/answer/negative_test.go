package answer

import "testing"

func TestIsNegative(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   bool
	}{
		{"empty", "", true},
		{"whitespace", "   ", true},
		{"hedge phrase", "The information is not available in the document.", true},
		{"cannot find", "I cannot find any mention of the deadline here.", true},
		{"no mention", "There is no mention of that person in this file.", true},
		{"formal negation", "The vendor contract does not appear in this report.", true},
		{"subject negation", "The name you asked about does not appear anywhere.", true},
		{"short with not", "Not here.", true},
		{"hedged opener", "Based on the content, maybe.", true},
		{"real answer", "The payment deadline is March 15, as stated in section 4 of the contract.", false},
		{"answer containing the word no", "Invoice number 42 was approved; note that no late fees applied because payment arrived early and the account was in good standing.", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNegative(tt.answer); got != tt.want {
				t.Errorf("IsNegative(%q) = %v, want %v", tt.answer, got, tt.want)
			}
		})
	}
}

func TestIsNegative_caseInsensitive(t *testing.T) {
	if !IsNegative("UNABLE TO DETERMINE the answer from this document.") {
		t.Error("uppercase hedge should still be negative")
	}
}

// Package snippet turns raw matched fragments into presentable,
// sentence-bounded, highlighted excerpts. Prose fragments are trimmed to a
// complete sentence with any emphasis tags preserved; tabular fragments
// (spreadsheet extraction output) are rendered as header/data excerpts.
package snippet

import (
	"regexp"
	"strings"
)

// sentenceLabel matches a leading "Sentence N:" label on indexed sentence
// sub-document content.
var sentenceLabel = regexp.MustCompile(`^\s*Sentence\s+\d+:\s*`)

// structuralMarkers identify fragments produced by structured (spreadsheet)
// extraction rather than prose.
var structuralMarkers = []string{"[ROW", "[SHEET", "Document GUID:", "Generated:", "[END ROW"}

// htmlTag matches any HTML tag (used both to strip emphasis markup and to
// walk tag runs when mapping plain offsets back onto the tagged original).
var htmlTag = regexp.MustCompile(`<[^>]+>`)

// ExtractSentence returns a human-presentable excerpt of fragment for the
// originating query. It never fails outward: any internal problem returns the
// fragment unmodified.
func ExtractSentence(fragment, query string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = fragment
		}
	}()

	fragment = sentenceLabel.ReplaceAllString(fragment, "")
	if strings.TrimSpace(fragment) == "" {
		return ""
	}

	for _, marker := range structuralMarkers {
		if strings.Contains(fragment, marker) {
			return extractStructured(fragment, query)
		}
	}

	// Already a complete sentence.
	if strings.HasSuffix(fragment, ".") && len(fragment) > 10 {
		return fragment
	}

	plain := htmlTag.ReplaceAllString(fragment, "")
	segments := splitSentences(plain)
	if len(segments) == 0 {
		return ensureTerminated(fragment)
	}

	chosen := segments[0]
	if !hasTerminalPunctuation(chosen) {
		for _, seg := range segments[1:] {
			if hasTerminalPunctuation(seg) {
				chosen = seg
				break
			}
		}
	}

	start := strings.Index(plain, chosen)
	if start < 0 {
		return ensureTerminated(fragment)
	}
	mapped := mapPlainSpan(fragment, start, start+len(chosen))
	if mapped == "" {
		return ensureTerminated(fragment)
	}
	return ensureTerminated(mapped)
}

// splitSentences splits plain text on sentence boundaries: after '.', '!', or
// '?' followed by whitespace and an uppercase letter. (Implemented by hand
// because RE2 has no lookbehind.)
func splitSentences(text string) []string {
	var segments []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes)-1; i++ {
		if runes[i] != '.' && runes[i] != '!' && runes[i] != '?' {
			continue
		}
		j := i + 1
		sawSpace := false
		for j < len(runes) && (runes[j] == ' ' || runes[j] == '\t' || runes[j] == '\n') {
			sawSpace = true
			j++
		}
		if sawSpace && j < len(runes) && runes[j] >= 'A' && runes[j] <= 'Z' {
			segments = append(segments, strings.TrimSpace(string(runes[start:i+1])))
			start = j
			i = j - 1
		}
	}
	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		segments = append(segments, tail)
	}
	return segments
}

func hasTerminalPunctuation(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?")
}

func ensureTerminated(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || hasTerminalPunctuation(s) {
		return s
	}
	return s + "."
}

// mapPlainSpan maps [start,end) offsets in the tag-stripped text back onto
// the original tagged string. Tags are copied verbatim inside the span and
// only non-tag characters count toward the offsets.
func mapPlainSpan(original string, start, end int) string {
	var out strings.Builder
	plainPos := 0
	i := 0
	for i < len(original) && plainPos < end {
		if original[i] == '<' {
			if loc := htmlTag.FindStringIndex(original[i:]); loc != nil && loc[0] == 0 {
				if plainPos > start {
					out.WriteString(original[i : i+loc[1]])
				}
				i += loc[1]
				continue
			}
		}
		if plainPos >= start {
			out.WriteByte(original[i])
		}
		plainPos++
		i++
	}
	return strings.TrimSpace(out.String())
}

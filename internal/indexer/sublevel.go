package indexer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// wordStat is the aggregate for one distinct word in a document.
type wordStat struct {
	Word      string
	Frequency int
	Positions []int
	Context   string
}

// maxWordPositions caps the recorded positions per word.
const maxWordPositions = 10

// collectWordStats tokenizes content and aggregates frequency, positions, and
// a context sentence per distinct word. Tokens shorter than 3 characters are
// skipped. Output is capped to the limit most frequent words.
func collectWordStats(content string, limit int) []*wordStat {
	sentences := splitSentences(content)
	stats := make(map[string]*wordStat)

	pos := 0
	for _, sentence := range sentences {
		for _, tok := range strings.FieldsFunc(sentence, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		}) {
			pos++
			word := strings.ToLower(tok)
			if len(word) <= 2 {
				continue
			}
			st, ok := stats[word]
			if !ok {
				st = &wordStat{Word: word, Context: strings.TrimSpace(sentence)}
				stats[word] = st
			}
			st.Frequency++
			if len(st.Positions) < maxWordPositions {
				st.Positions = append(st.Positions, pos)
			}
		}
	}

	out := make([]*wordStat, 0, len(stats))
	for _, st := range stats {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Word < out[j].Word
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// labeledWordContent renders a word stat as the labeled lines the word-level
// search strategy parses back out.
func labeledWordContent(st *wordStat) string {
	positions := make([]string, len(st.Positions))
	for i, p := range st.Positions {
		positions[i] = strconv.Itoa(p)
	}
	return fmt.Sprintf("Word: %s\nFrequency: %d\nPositions: %s\nContext: %s",
		st.Word, st.Frequency, strings.Join(positions, ", "), st.Context)
}

// labeledSentenceContent renders one sentence with its neighbors as the
// labeled lines the sentence-level strategy parses back out. index is
// 1-based.
func labeledSentenceContent(sentences []string, i int, fileName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sentence %d: %s", i+1, strings.TrimSpace(sentences[i]))
	if i > 0 {
		fmt.Fprintf(&b, "\nPrevious: %s", strings.TrimSpace(sentences[i-1]))
	}
	if i < len(sentences)-1 {
		fmt.Fprintf(&b, "\nNext: %s", strings.TrimSpace(sentences[i+1]))
	}
	fmt.Fprintf(&b, "\nFile: %s", fileName)
	return b.String()
}

// splitSentences splits text after '.', '!', or '?'. Fragments shorter than
// four characters are dropped.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(current.String()); len(s) > 3 {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); len(s) > 3 {
		sentences = append(sentences, s)
	}
	return sentences
}

package snippet

import (
	"fmt"
	"regexp"
	"strings"
)

// headerWords are column names common enough that a line containing two or
// more of them is treated as a spreadsheet header row.
var headerWords = []string{
	"ID", "Date", "Category", "Description", "Value", "Status", "Name",
	"Type", "Amount", "Code", "Title", "Email", "Phone", "Address",
}

var bracketLine = regexp.MustCompile(`^\s*\[(?:END\s+)?(?:ROW|SHEET)[^\]]*\]\s*$`)

// extractStructured renders tabular extraction output (sheet/row markers) as
// a "Headers: ... | Data: ..." excerpt with query terms highlighted.
func extractStructured(fragment, query string) string {
	var header string
	var dataRows []string
	for _, line := range strings.Split(fragment, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || bracketLine.MatchString(trimmed) {
			continue
		}
		if strings.HasPrefix(trimmed, "Document GUID:") || strings.HasPrefix(trimmed, "Generated:") {
			continue
		}
		if header == "" && isHeaderRow(trimmed) {
			header = trimmed
			continue
		}
		if len(strings.Fields(trimmed)) >= 3 {
			dataRows = append(dataRows, trimmed)
		}
	}

	if len(dataRows) == 0 {
		return truncateFallback(fragment)
	}

	terms := queryTerms(query)
	matched := dataRows
	if len(terms) > 0 {
		var hits []string
		for _, row := range dataRows {
			if rowContainsAny(row, terms) {
				hits = append(hits, row)
			}
		}
		if len(hits) > 0 {
			matched = hits
		}
	}

	shown := matched
	if len(shown) > 2 {
		shown = shown[:2]
	}

	var parts []string
	if header != "" {
		parts = append(parts, "Headers: "+highlight(formatRow(header), terms))
	}
	formatted := make([]string, len(shown))
	for i, row := range shown {
		formatted[i] = highlight(formatRow(row), terms)
	}
	parts = append(parts, "Data: "+strings.Join(formatted, " • "))

	out := strings.Join(parts, " | ")
	if len(shown) < len(matched) {
		out += fmt.Sprintf(" (showing %d of %d matching rows)", len(shown), len(matched))
	}
	return ensureTerminated(out)
}

// isHeaderRow reports whether the line names at least two common columns.
func isHeaderRow(line string) bool {
	lower := strings.ToLower(line)
	count := 0
	for _, w := range headerWords {
		if strings.Contains(lower, strings.ToLower(w)) {
			count++
			if count >= 2 {
				return true
			}
		}
	}
	return false
}

// formatRow elides middle tokens of overly long rows.
func formatRow(row string) string {
	tokens := strings.Fields(row)
	switch {
	case len(tokens) > 8:
		return strings.Join(tokens[:4], " ") + " ... " + strings.Join(tokens[len(tokens)-2:], " ")
	case len(tokens) > 6:
		return strings.Join(tokens[:6], " ") + " ..."
	default:
		return strings.Join(tokens, " ")
	}
}

func queryTerms(query string) []string {
	var terms []string
	for _, t := range strings.Fields(query) {
		t = strings.Trim(t, `"'.,!?`)
		if len(t) > 1 {
			terms = append(terms, t)
		}
	}
	return terms
}

func rowContainsAny(row string, terms []string) bool {
	lower := strings.ToLower(row)
	for _, t := range terms {
		if strings.Contains(lower, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

// highlight wraps case-insensitive occurrences of each term in <em> tags.
func highlight(text string, terms []string) string {
	for _, t := range terms {
		re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(t))
		if err != nil {
			continue
		}
		text = re.ReplaceAllStringFunc(text, func(m string) string {
			return "<em>" + m + "</em>"
		})
	}
	return text
}

func truncateFallback(fragment string) string {
	flat := strings.Join(strings.Fields(fragment), " ")
	if len(flat) > 200 {
		flat = flat[:200] + "..."
	}
	return ensureTerminated(flat)
}

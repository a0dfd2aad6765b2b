package search

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sableworks/findex/internal/models"
	"github.com/sableworks/findex/internal/snippet"
)

// maxConsolidatedSnippets caps the merged snippet list per grouped result.
const maxConsolidatedSnippets = 5

// Consolidate groups per-strategy results by file path, merges snippets,
// annotates which levels matched, then sorts, filters, and caps per the
// query. The output contains at most one entry per distinct path, scored with
// the maximum score across the group.
func Consolidate(results []*models.SearchResult, query *models.Query) []*models.ConsolidatedResult {
	groups := make(map[string][]*models.SearchResult)
	var order []string
	for _, r := range results {
		if r == nil || r.FilePath == "" {
			continue
		}
		if _, ok := groups[r.FilePath]; !ok {
			order = append(order, r.FilePath)
		}
		groups[r.FilePath] = append(groups[r.FilePath], r)
	}

	consolidated := make([]*models.ConsolidatedResult, 0, len(order))
	for _, path := range order {
		consolidated = append(consolidated, consolidateGroup(groups[path], query.Text))
	}

	sortConsolidated(consolidated, query.SortBy)
	consolidated = filterConsolidated(consolidated, query)

	limit := query.Limit()
	if len(consolidated) > limit {
		consolidated = consolidated[:limit]
	}
	return consolidated
}

// consolidateGroup merges one path's members: display fields come from the
// highest-scoring member, the final score is the group max, snippets are the
// deduplicated sentence-extracted union.
func consolidateGroup(members []*models.SearchResult, queryText string) *models.ConsolidatedResult {
	primary := members[0]
	maxScore := primary.Score
	for _, m := range members[1:] {
		if m.Score > maxScore {
			maxScore = m.Score
		}
		if m.Score > primary.Score {
			primary = m
		}
	}

	out := &models.ConsolidatedResult{
		FileName:      primary.FileName,
		FilePath:      primary.FilePath,
		Content:       primary.Content,
		Score:         maxScore,
		ModifiedDate:  primary.ModifiedDate,
		MatchType:     primary.MatchType,
		EntityMatches: primary.EntityMatches,
		Metadata:      map[string]string{},
	}
	for k, v := range primary.Metadata {
		out.Metadata[k] = v
	}

	// Snippet union, sentence-extracted and capped.
	seen := make(map[string]bool)
	for _, m := range members {
		for _, s := range m.Snippets {
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			extracted := snippet.ExtractSentence(s, queryText)
			if extracted == "" {
				continue
			}
			out.Snippets = append(out.Snippets, extracted)
			if len(out.Snippets) >= maxConsolidatedSnippets {
				break
			}
		}
		if len(out.Snippets) >= maxConsolidatedSnippets {
			break
		}
	}

	// Level annotations: which of document/word/sentence contributed.
	var levels []string
	addLevel := func(l string) {
		for _, existing := range levels {
			if existing == l {
				return
			}
		}
		levels = append(levels, l)
	}
	for _, m := range members {
		switch m.DocType() {
		case "word":
			addLevel("Word-level")
		case "sentence":
			addLevel("Sentence-level")
		default:
			addLevel("Document-level")
		}
	}
	out.Metadata[models.MetaSearchLevels] = strings.Join(levels, ", ")
	out.Metadata[models.MetaTotalMatches] = strconv.Itoa(len(members))
	return out
}

func sortConsolidated(results []*models.ConsolidatedResult, key models.SortKey) {
	switch key {
	case models.SortByDate:
		sort.SliceStable(results, func(i, j int) bool {
			return parseDate(results[i].ModifiedDate).After(parseDate(results[j].ModifiedDate))
		})
	case models.SortByFileName:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].FileName < results[j].FileName
		})
	case models.SortByFileSize:
		sort.SliceStable(results, func(i, j int) bool {
			return fileSize(results[i].FilePath) > fileSize(results[j].FilePath)
		})
	case models.SortByWordFrequency:
		sort.SliceStable(results, func(i, j int) bool {
			return metaInt(results[i], models.MetaFrequency) > metaInt(results[j], models.MetaFrequency)
		})
	case models.SortBySentenceIndex:
		sort.SliceStable(results, func(i, j int) bool {
			return metaInt(results[i], models.MetaSentenceIndex) < metaInt(results[j], models.MetaSentenceIndex)
		})
	default: // relevance
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Score > results[j].Score
		})
	}
}

func filterConsolidated(results []*models.ConsolidatedResult, query *models.Query) []*models.ConsolidatedResult {
	out := results[:0]
	for _, r := range results {
		if query.FileTypeFilter != "" &&
			!strings.EqualFold(filepath.Ext(r.FilePath), normalizeExt(query.FileTypeFilter)) {
			continue
		}
		if query.DateFrom != "" {
			from := parseDate(query.DateFrom)
			d := parseDate(r.ModifiedDate)
			if r.ModifiedDate == "" || d.IsZero() || d.Before(from) {
				continue
			}
		}
		if query.DateTo != "" {
			to := parseDate(query.DateTo)
			d := parseDate(r.ModifiedDate)
			if r.ModifiedDate == "" || d.IsZero() || d.After(to.Add(24*time.Hour-time.Nanosecond)) {
				continue
			}
		}
		if query.MinWordCount > 0 && len(strings.Fields(r.Content)) < query.MinWordCount {
			continue
		}
		out = append(out, r)
	}
	return out
}

// parseDate parses ISO-ish date strings. Unparsable values return the zero
// time so they sort earliest.
func parseDate(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

func metaInt(r *models.ConsolidatedResult, key string) int {
	if r.Metadata == nil {
		return 0
	}
	n, _ := strconv.Atoi(r.Metadata[key])
	return n
}

func normalizeExt(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

package search

import (
	"fmt"
	"testing"

	"github.com/sableworks/findex/internal/models"
)

func result(path string, score float64, docType string) *models.SearchResult {
	r := &models.SearchResult{
		FilePath: path,
		FileName: path,
		Score:    score,
	}
	if docType != "" {
		r.Metadata = map[string]string{models.MetaDocType: docType}
	}
	return r
}

func TestConsolidate_uniquePaths(t *testing.T) {
	in := []*models.SearchResult{
		result("/docs/a.txt", 0.4, ""),
		result("/docs/a.txt", 0.9, "word"),
		result("/docs/b.txt", 0.5, ""),
	}
	out := Consolidate(in, &models.Query{Text: "q"})
	if len(out) != 2 {
		t.Fatalf("got %d results, want 2", len(out))
	}
	seen := map[string]bool{}
	for _, r := range out {
		if seen[r.FilePath] {
			t.Errorf("duplicate path %s", r.FilePath)
		}
		seen[r.FilePath] = true
	}
}

func TestConsolidate_groupScoreIsMax(t *testing.T) {
	in := []*models.SearchResult{
		result("/docs/a.txt", 0.4, ""),
		result("/docs/a.txt", 0.9, "word"),
		result("/docs/a.txt", 0.6, "sentence"),
	}
	out := Consolidate(in, &models.Query{Text: "q"})
	if len(out) != 1 {
		t.Fatalf("got %d results", len(out))
	}
	if out[0].Score != 0.9 {
		t.Errorf("score = %f, want group max 0.9", out[0].Score)
	}
	if out[0].Metadata[models.MetaTotalMatches] != "3" {
		t.Errorf("TotalMatches = %s, want 3", out[0].Metadata[models.MetaTotalMatches])
	}
}

func TestConsolidate_levelAnnotations(t *testing.T) {
	in := []*models.SearchResult{
		result("/docs/a.txt", 0.4, ""),
		result("/docs/a.txt", 0.3, "word"),
		result("/docs/a.txt", 0.2, "sentence"),
		result("/docs/a.txt", 0.1, "word"),
	}
	out := Consolidate(in, &models.Query{Text: "q"})
	want := "Document-level, Word-level, Sentence-level"
	if got := out[0].Metadata[models.MetaSearchLevels]; got != want {
		t.Errorf("SearchLevels = %q, want %q", got, want)
	}
}

func TestConsolidate_snippetsCappedAndDeduped(t *testing.T) {
	a := result("/docs/a.txt", 0.5, "")
	for i := 0; i < 10; i++ {
		a.Snippets = append(a.Snippets, fmt.Sprintf("Snippet number %d has enough length.", i))
	}
	b := result("/docs/a.txt", 0.4, "")
	b.Snippets = []string{"Snippet number 0 has enough length."}
	out := Consolidate([]*models.SearchResult{a, b}, &models.Query{Text: "q"})
	if len(out[0].Snippets) != 5 {
		t.Errorf("snippets = %d, want cap of 5", len(out[0].Snippets))
	}
}

func TestConsolidate_sortByFileName(t *testing.T) {
	in := []*models.SearchResult{
		result("b.txt", 0.9, ""),
		result("a.txt", 0.1, ""),
	}
	out := Consolidate(in, &models.Query{Text: "q", SortBy: models.SortByFileName})
	if out[0].FileName != "a.txt" {
		t.Errorf("first = %s, want a.txt", out[0].FileName)
	}
}

func TestConsolidate_sortByDate(t *testing.T) {
	older := result("old.txt", 0.9, "")
	older.ModifiedDate = "2023-01-01"
	newer := result("new.txt", 0.1, "")
	newer.ModifiedDate = "2024-06-01"
	unparsable := result("odd.txt", 0.5, "")
	unparsable.ModifiedDate = "not a date"
	out := Consolidate([]*models.SearchResult{older, unparsable, newer}, &models.Query{Text: "q", SortBy: models.SortByDate})
	if out[0].FileName != "new.txt" {
		t.Errorf("first = %s, want new.txt", out[0].FileName)
	}
	if out[2].FileName != "odd.txt" {
		t.Errorf("unparsable date should sort last, got order %s, %s, %s",
			out[0].FileName, out[1].FileName, out[2].FileName)
	}
}

func TestConsolidate_sortByWordFrequency(t *testing.T) {
	low := result("low.txt", 0.9, "word")
	low.Metadata[models.MetaFrequency] = "2"
	high := result("high.txt", 0.1, "word")
	high.Metadata[models.MetaFrequency] = "9"
	out := Consolidate([]*models.SearchResult{low, high}, &models.Query{Text: "q", SortBy: models.SortByWordFrequency})
	if out[0].FileName != "high.txt" {
		t.Errorf("first = %s, want high.txt", out[0].FileName)
	}
}

func TestConsolidate_fileTypeFilter(t *testing.T) {
	in := []*models.SearchResult{
		result("/docs/a.pdf", 0.9, ""),
		result("/docs/b.txt", 0.8, ""),
	}
	out := Consolidate(in, &models.Query{Text: "q", FileTypeFilter: "pdf"})
	if len(out) != 1 || out[0].FilePath != "/docs/a.pdf" {
		t.Errorf("filter failed: %+v", out)
	}
}

func TestConsolidate_dateRangeInclusive(t *testing.T) {
	onFrom := result("from.txt", 0.9, "")
	onFrom.ModifiedDate = "2024-01-01"
	onTo := result("to.txt", 0.8, "")
	onTo.ModifiedDate = "2024-12-31"
	outside := result("outside.txt", 0.7, "")
	outside.ModifiedDate = "2025-01-01"
	undated := result("undated.txt", 0.6, "")
	out := Consolidate(
		[]*models.SearchResult{onFrom, onTo, outside, undated},
		&models.Query{Text: "q", DateFrom: "2024-01-01", DateTo: "2024-12-31"},
	)
	if len(out) != 2 {
		t.Fatalf("got %d results: %+v", len(out), out)
	}
	if out[0].FileName != "from.txt" || out[1].FileName != "to.txt" {
		t.Errorf("boundary dates should be kept: %s, %s", out[0].FileName, out[1].FileName)
	}
}

func TestConsolidate_minWordCount(t *testing.T) {
	long := result("long.txt", 0.9, "")
	long.Content = "one two three four five"
	short := result("short.txt", 0.8, "")
	short.Content = "one two"
	out := Consolidate([]*models.SearchResult{long, short}, &models.Query{Text: "q", MinWordCount: 3})
	if len(out) != 1 || out[0].FileName != "long.txt" {
		t.Errorf("min word count filter failed: %+v", out)
	}
}

func TestConsolidate_capsResults(t *testing.T) {
	var in []*models.SearchResult
	for i := 0; i < 60; i++ {
		in = append(in, result(fmt.Sprintf("/docs/f%02d.txt", i), float64(i)/100, ""))
	}
	out := Consolidate(in, &models.Query{Text: "q"})
	if len(out) != models.DefaultMaxResults {
		t.Errorf("got %d, want default cap %d", len(out), models.DefaultMaxResults)
	}
	out = Consolidate(in, &models.Query{Text: "q", MaxResults: 3})
	if len(out) != 3 {
		t.Errorf("got %d, want 3", len(out))
	}
}

func TestConsolidate_primaryIsBestMember(t *testing.T) {
	weak := result("/docs/a.txt", 0.2, "")
	weak.Content = "weak content"
	strong := result("/docs/a.txt", 0.8, "sentence")
	strong.Content = "strong content"
	strong.MatchType = models.MatchExact
	out := Consolidate([]*models.SearchResult{weak, strong}, &models.Query{Text: "q"})
	if out[0].Content != "strong content" {
		t.Errorf("content = %q, want best member's", out[0].Content)
	}
	if out[0].MatchType != models.MatchExact {
		t.Errorf("match type = %s, want best member's", out[0].MatchType)
	}
}

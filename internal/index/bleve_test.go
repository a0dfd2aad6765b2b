package index

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sableworks/findex/internal/models"
)

func newTestProvider(t *testing.T) *BleveProvider {
	t.Helper()
	p, err := NewBleveProvider(filepath.Join(t.TempDir(), "bleve"))
	if err != nil {
		t.Fatalf("NewBleveProvider: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func indexEntries(t *testing.T, p *BleveProvider, entries ...*Entry) {
	t.Helper()
	ctx := context.Background()
	for _, e := range entries {
		if err := p.Index(ctx, e); err != nil {
			t.Fatalf("Index %s: %v", e.ID, err)
		}
	}
}

func TestBleveProvider_SearchFindsContent(t *testing.T) {
	p := newTestProvider(t)
	indexEntries(t, p, &Entry{
		ID:      "doc:a",
		Path:    "/docs/report.txt",
		Name:    "report.txt",
		Content: "The quarterly budget was approved by the board.",
		DocType: "document",
	})

	results, err := p.Search(context.Background(), "budget")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected at least one result for \"budget\"")
	}
	r := results[0]
	if r.FilePath != "/docs/report.txt" || r.FileName != "report.txt" {
		t.Errorf("result = %s (%s)", r.FilePath, r.FileName)
	}
	// Top hit normalizes to 1.0.
	if r.Score != 1.0 {
		t.Errorf("score = %f, want 1.0 for the top hit", r.Score)
	}
	if r.MatchType != models.MatchKeyword {
		t.Errorf("match type = %s", r.MatchType)
	}
	// Standard analyzer, no stemming: case folds but word forms do not.
	caseResults, err := p.Search(context.Background(), "BUDGET")
	if err != nil {
		t.Fatalf("Search uppercase: %v", err)
	}
	if len(caseResults) == 0 {
		t.Error("uppercase query should still match")
	}
}

func TestBleveProvider_DocTypeFiltering(t *testing.T) {
	p := newTestProvider(t)
	indexEntries(t, p,
		&Entry{
			ID:      "doc:a",
			Path:    "/docs/a.txt",
			Name:    "a.txt",
			Content: "revenue grew in the second quarter",
			DocType: "document",
		},
		&Entry{
			ID:        "word:a:revenue",
			Path:      "/docs/a.txt",
			Name:      "a.txt",
			Content:   "Word: revenue (appears 4 times)",
			DocType:   "word",
			Frequency: 4,
		},
		&Entry{
			ID:            "sent:a:2",
			Path:          "/docs/a.txt",
			Name:          "a.txt",
			Content:       "Sentence 2: revenue grew in the second quarter.",
			DocType:       "sentence",
			SentenceIndex: 2,
		},
	)

	results, err := p.Search(context.Background(), `+doc_type:word +content:revenue`)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want only the word entry", len(results))
	}
	if results[0].Metadata[models.MetaDocType] != "word" {
		t.Errorf("doc_type = %q", results[0].Metadata[models.MetaDocType])
	}
	if results[0].Metadata[models.MetaFrequency] != "4" {
		t.Errorf("frequency = %q", results[0].Metadata[models.MetaFrequency])
	}

	sentences, err := p.Search(context.Background(), `+doc_type:sentence +content:"revenue grew"`)
	if err != nil {
		t.Fatalf("Search sentences: %v", err)
	}
	if len(sentences) != 1 {
		t.Fatalf("sentence results = %d", len(sentences))
	}
	if sentences[0].Metadata[models.MetaSentenceIndex] != "2" {
		t.Errorf("sentence_index = %q", sentences[0].Metadata[models.MetaSentenceIndex])
	}
}

func TestBleveProvider_DefaultDocType(t *testing.T) {
	p := newTestProvider(t)
	indexEntries(t, p, &Entry{
		ID:      "doc:plain",
		Path:    "/docs/plain.txt",
		Name:    "plain.txt",
		Content: "untagged entry body",
	})

	results, err := p.Search(context.Background(), "+doc_type:document +content:untagged")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("entries without a doc_type index as documents, got %d results", len(results))
	}
}

func TestBleveProvider_SearchInPaths(t *testing.T) {
	p := newTestProvider(t)
	indexEntries(t, p,
		&Entry{ID: "doc:a", Path: "/docs/a.txt", Name: "a.txt", Content: "shared keyword alpha", DocType: "document"},
		&Entry{ID: "doc:b", Path: "/docs/b.txt", Name: "b.txt", Content: "shared keyword beta", DocType: "document"},
	)

	results, err := p.SearchInPaths(context.Background(), "keyword", []string{"/docs/b.txt"})
	if err != nil {
		t.Fatalf("SearchInPaths: %v", err)
	}
	if len(results) != 1 || results[0].FilePath != "/docs/b.txt" {
		t.Errorf("results = %+v", results)
	}

	// Empty path list means unscoped search.
	all, err := p.SearchInPaths(context.Background(), "keyword", nil)
	if err != nil {
		t.Fatalf("SearchInPaths unscoped: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("unscoped results = %d, want 2", len(all))
	}
}

func TestBleveProvider_DeleteByPath(t *testing.T) {
	p := newTestProvider(t)
	indexEntries(t, p,
		&Entry{ID: "doc:a", Path: "/docs/a.txt", Name: "a.txt", Content: "target body text", DocType: "document"},
		&Entry{ID: "word:a:target", Path: "/docs/a.txt", Name: "a.txt", Content: "Word: target (appears 1 times)", DocType: "word", Frequency: 1},
		&Entry{ID: "doc:b", Path: "/docs/b.txt", Name: "b.txt", Content: "target appears here too", DocType: "document"},
	)

	if err := p.DeleteByPath(context.Background(), "/docs/a.txt"); err != nil {
		t.Fatalf("DeleteByPath: %v", err)
	}

	results, err := p.Search(context.Background(), "target")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, r := range results {
		if r.FilePath == "/docs/a.txt" {
			t.Errorf("entry for deleted path survived: %+v", r)
		}
	}
	count, err := p.DocCount()
	if err != nil {
		t.Fatalf("DocCount: %v", err)
	}
	if count != 1 {
		t.Errorf("doc count = %d, want 1", count)
	}
}

func TestBleveProvider_UnparsableQueryFallsBack(t *testing.T) {
	p := newTestProvider(t)
	indexEntries(t, p, &Entry{
		ID:      "doc:a",
		Path:    "/docs/a.txt",
		Name:    "a.txt",
		Content: "fallback still finds this line",
		DocType: "document",
	})

	// Unbalanced quote fails query-string parsing; the match-query fallback
	// should still search the raw text.
	results, err := p.Search(context.Background(), `fallback "unbalanced`)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 {
		t.Error("match-query fallback should return the indexed entry")
	}
}

func TestBleveProvider_ReopenKeepsEntries(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "bleve")

	p1, err := NewBleveProvider(dir)
	if err != nil {
		t.Fatalf("NewBleveProvider: %v", err)
	}
	indexEntries(t, p1, &Entry{
		ID:       "doc:a",
		Path:     "/docs/a.txt",
		Name:     "a.txt",
		Content:  "persistent entry",
		DocType:  "document",
		Modified: time.Now(),
	})
	if err := p1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	p2, err := NewBleveProvider(dir)
	if err != nil {
		t.Fatalf("NewBleveProvider reopen: %v", err)
	}
	defer func() { _ = p2.Close() }()

	results, err := p2.Search(context.Background(), "persistent")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("reopened index should keep entries, got %d results", len(results))
	}
}

func TestBleveProvider_SemanticSearchWithoutBackend(t *testing.T) {
	p := newTestProvider(t)
	results, err := p.SemanticSearch(context.Background(), "anything", nil, 10)
	if err != nil {
		t.Fatalf("SemanticSearch: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("no embedding backend configured, got %d results", len(results))
	}
}

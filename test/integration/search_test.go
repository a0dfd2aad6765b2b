// Package integration exercises the full pipeline against real storage and
// indices (sqlite, bleve, in-memory vectors).
package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sableworks/findex/internal/config"
	"github.com/sableworks/findex/internal/embedding"
	"github.com/sableworks/findex/internal/extract"
	"github.com/sableworks/findex/internal/fileid"
	"github.com/sableworks/findex/internal/index"
	"github.com/sableworks/findex/internal/indexer"
	"github.com/sableworks/findex/internal/models"
	"github.com/sableworks/findex/internal/search"
	"github.com/sableworks/findex/internal/storage"
	"github.com/sableworks/findex/internal/vector"
)

type stack struct {
	service *search.Service
	indexer *indexer.Indexer
}

func newStack(t *testing.T) *stack {
	t.Helper()
	dir := t.TempDir()

	store, err := storage.NewSQLiteStorage(filepath.Join(dir, "db.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })

	embedder := embedding.NewMockEmbedder(4)
	t.Cleanup(func() { _ = embedder.Close() })

	vecIdx, err := vector.NewMemoryIndex(4)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = vecIdx.Close() })

	provider, err := index.NewBleveProvider(filepath.Join(dir, "bleve"),
		index.WithSemantic(embedder, vecIdx, store))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = provider.Close() })

	extractor := extract.NewExtractor()
	cached := extract.NewCachedExtractor(extractor, 0, 30*time.Minute)

	cfg := &config.SearchConfig{ChunkSize: 20, ChunkOverlap: 4, TopKCandidates: 20}
	return &stack{
		service: search.NewService(provider, cached, nil),
		indexer: indexer.NewIndexer(store, embedder, vecIdx, provider, cfg, extractor),
	}
}

func TestIntegration_IndexFileAndSearch(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "contract.txt")
	content := "The vendor contract deadline is March 15. Payment terms are net 30. " +
		"Renewal requires written notice sixty days before the deadline."
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := s.indexer.IndexFile(ctx, path, nil); err != nil {
		t.Fatalf("IndexFile: %v", err)
	}

	resp, err := s.service.Search(ctx, &models.Query{Text: "contract deadline"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Status != search.StatusOK {
		t.Errorf("status: got %q", resp.Status)
	}
	if len(resp.Results) < 1 {
		t.Fatalf("expected at least 1 result, got %d", len(resp.Results))
	}
	top := resp.Results[0]
	if top.FileName != "contract.txt" {
		t.Errorf("top file: got %q", top.FileName)
	}
	if top.Score <= 0 || top.Score > 1 {
		t.Errorf("score out of range: %v", top.Score)
	}
	if resp.Metrics == nil || resp.Metrics.TotalTime <= 0 {
		t.Error("expected populated timing metrics")
	}
}

func TestIntegration_WordLevelMode(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	err := s.indexer.IndexDocument(ctx, &models.DocumentInput{
		ID:      "doc1",
		Title:   "report.txt",
		Content: "Revenue grew steadily. Revenue doubled in the second quarter. Costs held flat.",
		Metadata: map[string]interface{}{
			"source_path": "/docs/report.txt",
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	resp, err := s.service.Search(ctx, &models.Query{
		Text:                "revenue",
		Mode:                models.ModeWordLevel,
		IncludeWordAnalysis: true,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) < 1 {
		t.Fatalf("expected word-level results, got %d", len(resp.Results))
	}
	if got := resp.Results[0].Metadata[models.MetaSearchLevels]; got == "" {
		t.Error("expected search_levels metadata on consolidated result")
	}
}

func TestIntegration_DeleteRemovesFromSearch(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "old.txt")
	if err := os.WriteFile(path, []byte("Obsolete zanzibar migration notes."), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.indexer.IndexFile(ctx, path, nil); err != nil {
		t.Fatal(err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.indexer.DeleteDocument(ctx, fileid.FileDocID(abs)); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}

	resp, err := s.service.Search(ctx, &models.Query{Text: "zanzibar"})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range resp.Results {
		if r.FileName == "old.txt" {
			t.Errorf("deleted document still returned: %+v", r)
		}
	}
}

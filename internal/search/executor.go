// Package search runs multi-strategy document search: level-aware index
// queries executed concurrently, hybrid score fusion, and consolidation of
// per-strategy results into the final ranked response.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sableworks/findex/internal/analyze"
	"github.com/sableworks/findex/internal/index"
	"github.com/sableworks/findex/internal/models"
)

// Executor fans out the selected strategies against the index provider and
// joins them before anything downstream reads their results.
type Executor struct {
	provider index.Provider
	logger   *zap.Logger
}

// NewExecutor creates an executor over the given index provider.
func NewExecutor(provider index.Provider, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{provider: provider, logger: logger}
}

// ExecuteResult carries per-strategy result sets plus the timing each
// strategy measured for itself. Timings are merged by the caller after the
// join; strategies never share a mutable accumulator.
type ExecuteResult struct {
	Document []*models.SearchResult
	Word     []*models.SearchResult
	Sentence []*models.SearchResult
	Semantic []*models.SearchResult
	Timings  []models.StrategyTiming
}

// Execute runs the strategies the mode selects, concurrently, and waits for
// all of them. paths scopes the search to specific files when non-empty.
// A failing strategy contributes nothing (logged); Execute errors only when
// every selected strategy failed.
func (e *Executor) Execute(ctx context.Context, query *models.Query, paths []string) (*ExecuteResult, error) {
	runDoc, runWord, runSentence, runSemantic := strategiesFor(query.Mode, query.Text)

	res := &ExecuteResult{}
	var docTiming, wordTiming, sentenceTiming, semanticTiming *models.StrategyTiming
	var docErr, wordErr, sentenceErr, semanticErr error

	g, gctx := errgroup.WithContext(ctx)
	if runDoc {
		g.Go(func() error {
			res.Document, docTiming, docErr = e.searchDocuments(gctx, query, paths)
			return nil
		})
	}
	if runWord {
		g.Go(func() error {
			res.Word, wordTiming, wordErr = e.searchWords(gctx, query, paths)
			return nil
		})
	}
	if runSentence {
		g.Go(func() error {
			res.Sentence, sentenceTiming, sentenceErr = e.searchSentences(gctx, query, paths)
			return nil
		})
	}
	if runSemantic {
		g.Go(func() error {
			res.Semantic, semanticTiming, semanticErr = e.searchSemantic(gctx, query, paths)
			return nil
		})
	}
	_ = g.Wait()

	var firstErr error
	failed, selected := 0, 0
	for _, se := range []struct {
		on  bool
		err error
		t   *models.StrategyTiming
	}{
		{runDoc, docErr, docTiming},
		{runWord, wordErr, wordTiming},
		{runSentence, sentenceErr, sentenceTiming},
		{runSemantic, semanticErr, semanticTiming},
	} {
		if !se.on {
			continue
		}
		selected++
		if se.err != nil {
			failed++
			if firstErr == nil {
				firstErr = se.err
			}
			e.logger.Warn("search strategy failed", zap.Error(se.err))
			continue
		}
		if se.t != nil {
			res.Timings = append(res.Timings, *se.t)
		}
	}
	if selected > 0 && failed == selected {
		return nil, fmt.Errorf("all strategies failed: %w", firstErr)
	}
	return res, nil
}

// strategiesFor maps a mode to the strategies to run. Comprehensive runs all
// three level strategies; Hybrid runs document plus whichever level passes
// its benefit predicate.
func strategiesFor(mode models.SearchMode, query string) (doc, word, sentence, semantic bool) {
	switch mode {
	case models.ModeDocumentLevel:
		return true, false, false, false
	case models.ModeWordLevel:
		return false, true, false, false
	case models.ModeSentenceLevel:
		return false, false, true, false
	case models.ModeSemantic:
		return false, false, false, true
	case models.ModeHybrid:
		return true, analyze.WordLevelBeneficial(query), analyze.SentenceLevelBeneficial(query), false
	default: // Comprehensive
		return true, true, true, false
	}
}

// searchDocuments queries the provider with the raw query text and keeps only
// document-level entries.
func (e *Executor) searchDocuments(ctx context.Context, query *models.Query, paths []string) ([]*models.SearchResult, *models.StrategyTiming, error) {
	start := time.Now()
	hits, err := e.searchScoped(ctx, query.Text, paths)
	if err != nil {
		return nil, nil, fmt.Errorf("document search: %w", err)
	}
	out := hits[:0]
	for _, h := range hits {
		if h.DocType() == "document" {
			out = append(out, h)
		}
	}
	return out, &models.StrategyTiming{Strategy: "document", Elapsed: time.Since(start), Matches: len(out)}, nil
}

// searchWords issues one doc_type:word query per important query word and
// merges the hits.
func (e *Executor) searchWords(ctx context.Context, query *models.Query, paths []string) ([]*models.SearchResult, *models.StrategyTiming, error) {
	start := time.Now()
	words := analyze.ExtractImportantWords(query.Text)
	if len(words) == 0 {
		words = strings.Fields(query.Text)
	}
	seen := make(map[string]bool)
	var out []*models.SearchResult
	var firstErr error
	for _, w := range words {
		q := fmt.Sprintf("+%s:word +content:%s", models.MetaDocType, strings.ToLower(w))
		hits, err := e.searchScoped(ctx, q, paths)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		for _, h := range hits {
			if h.DocType() != "word" {
				continue
			}
			key := h.FilePath + "\x00" + h.Content
			if seen[key] {
				continue
			}
			seen[key] = true
			if query.IncludeWordAnalysis {
				attachWordAnalysis(h)
			}
			out = append(out, h)
		}
	}
	if out == nil && firstErr != nil {
		return nil, nil, fmt.Errorf("word search: %w", firstErr)
	}
	return out, &models.StrategyTiming{Strategy: "word", Elapsed: time.Since(start), Matches: len(out)}, nil
}

// searchSentences issues a doc_type:sentence phrase query for the full query
// text.
func (e *Executor) searchSentences(ctx context.Context, query *models.Query, paths []string) ([]*models.SearchResult, *models.StrategyTiming, error) {
	start := time.Now()
	phrase := strings.ReplaceAll(query.Text, `"`, " ")
	q := fmt.Sprintf(`+%s:sentence +content:"%s"`, models.MetaDocType, strings.TrimSpace(phrase))
	hits, err := e.searchScoped(ctx, q, paths)
	if err != nil {
		return nil, nil, fmt.Errorf("sentence search: %w", err)
	}
	out := hits[:0]
	for _, h := range hits {
		if h.DocType() != "sentence" {
			continue
		}
		if query.IncludeSentenceContext {
			attachSentenceContext(h)
		}
		out = append(out, h)
	}
	return out, &models.StrategyTiming{Strategy: "sentence", Elapsed: time.Since(start), Matches: len(out)}, nil
}

// searchSemantic delegates to the provider's embedding search.
func (e *Executor) searchSemantic(ctx context.Context, query *models.Query, paths []string) ([]*models.SearchResult, *models.StrategyTiming, error) {
	start := time.Now()
	hits, err := e.provider.SemanticSearch(ctx, query.Text, paths, query.Limit())
	if err != nil {
		return nil, nil, fmt.Errorf("semantic search: %w", err)
	}
	return hits, &models.StrategyTiming{Strategy: "semantic", Elapsed: time.Since(start), Matches: len(hits)}, nil
}

func (e *Executor) searchScoped(ctx context.Context, query string, paths []string) ([]*models.SearchResult, error) {
	if len(paths) > 0 {
		return e.provider.SearchInPaths(ctx, query, paths)
	}
	return e.provider.Search(ctx, query)
}

// attachWordAnalysis parses the labeled lines of a word sub-document's stored
// content (Word:, Frequency:, Positions:, Context:) into one metadata value.
func attachWordAnalysis(r *models.SearchResult) {
	summary := collectLabeledLines(r.Content, []string{"Word:", "Frequency:", "Positions:", "Context:"})
	if summary == "" {
		return
	}
	if r.Metadata == nil {
		r.Metadata = map[string]string{}
	}
	r.Metadata[models.MetaWordAnalysis] = summary
}

// attachSentenceContext parses the labeled lines of a sentence sub-document
// (Sentence text plus Previous:, Next:, File:) into one metadata value.
func attachSentenceContext(r *models.SearchResult) {
	summary := collectLabeledLines(r.Content, []string{"Sentence", "Previous:", "Next:", "File:"})
	if summary == "" {
		return
	}
	if r.Metadata == nil {
		r.Metadata = map[string]string{}
	}
	r.Metadata[models.MetaSentenceContext] = summary
}

func collectLabeledLines(content string, labels []string) string {
	var kept []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		for _, label := range labels {
			if strings.HasPrefix(trimmed, label) {
				kept = append(kept, trimmed)
				break
			}
		}
	}
	return strings.Join(kept, "; ")
}

package search

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sableworks/findex/internal/analyze"
	"github.com/sableworks/findex/internal/index"
	"github.com/sableworks/findex/internal/models"
)

// StatusOK is the response status for a normally executed search.
const StatusOK = "ok"

// StatusEmptyQuery is the informational status for empty/whitespace queries.
// It is not an error: the search short-circuits with an empty result set
// before touching any collaborator.
const StatusEmptyQuery = "empty query"

// Service is the orchestrator: it analyzes the query, picks and runs
// strategies, fuses scores, and consolidates the final response.
type Service struct {
	analyzer  *analyze.Analyzer
	executor  *Executor
	prefilter *Prefilter
	scan      *IdentifierScan
	provider  index.Provider
	logger    *zap.Logger
}

// NewService wires the search pipeline. extractor may be nil, which disables
// the deep-scan paths (SearchInFiles and identifier scanning).
func NewService(provider index.Provider, extractor TextExtractor, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		analyzer: analyze.NewAnalyzer(),
		executor: NewExecutor(provider, logger),
		provider: provider,
		logger:   logger,
	}
	if extractor != nil {
		s.prefilter = NewPrefilter(extractor, logger)
		s.scan = NewIdentifierScan(extractor, logger)
	}
	return s
}

// Search runs the full pipeline over the indexed corpus.
func (s *Service) Search(ctx context.Context, query *models.Query) (*models.SearchResponse, error) {
	start := time.Now()
	if strings.TrimSpace(query.Text) == "" {
		return &models.SearchResponse{
			Results: []*models.ConsolidatedResult{},
			Query:   query.Text,
			Status:  StatusEmptyQuery,
		}, nil
	}

	analysis := s.analyzer.Analyze(query.Text)
	effective := *query
	if query.AutoMode {
		effective.Mode = analyze.DetectOptimalMode(query.Text)
		s.logger.Debug("detected search mode",
			zap.String("query", query.Text),
			zap.String("mode", effective.Mode.String()))
	}

	exec, err := s.executor.Execute(ctx, &effective, nil)
	if err != nil {
		return nil, err
	}

	metrics := &models.SearchPerformanceMetrics{}
	for _, t := range exec.Timings {
		metrics.Merge(t)
	}

	// Semantic runs alongside the document strategy unless the mode already
	// covers it, so fusion always has both signals to work with.
	semantic := exec.Semantic
	if semantic == nil && effective.Mode != models.ModeSemantic {
		semStart := time.Now()
		semantic, err = s.provider.SemanticSearch(ctx, query.Text, nil, effective.Limit())
		if err != nil {
			s.logger.Warn("semantic search failed, continuing lexical-only", zap.Error(err))
			semantic = nil
		}
		metrics.Merge(models.StrategyTiming{
			Strategy: "semantic",
			Elapsed:  time.Since(semStart),
			Matches:  len(semantic),
		})
	}

	prioritizeExact := analysis.HasExactIdentifier || analysis.SearchClass == analyze.ClassExactSearch
	fused := FuseResults(exec.Document, semantic, prioritizeExact)

	// Exact-identifier scan over the current candidates: re-reads the actual
	// files so a verbatim identifier hit always surfaces at 1.0.
	if analysis.HasExactIdentifier && s.scan != nil {
		candidates := candidatePaths(fused)
		if hits := s.scan.Scan(candidates, analysis); len(hits) > 0 {
			fused = FuseResults(hits, fused, true)
		}
	}

	all := make([]*models.SearchResult, 0, len(fused)+len(exec.Word)+len(exec.Sentence))
	all = append(all, fused...)
	all = append(all, exec.Word...)
	all = append(all, exec.Sentence...)

	consolidated := Consolidate(all, &effective)
	metrics.TotalTime = time.Since(start)

	return &models.SearchResponse{
		Results: consolidated,
		Total:   len(consolidated),
		Query:   query.Text,
		Status:  StatusOK,
		Metrics: metrics,
	}, nil
}

// SearchInFiles runs the deep-search path over an explicit candidate file
// set: content prefiltering fused with path-scoped semantic search, with
// filename and recency boosts. Falls back to plain hybrid search when
// prefiltering yields nothing.
func (s *Service) SearchInFiles(ctx context.Context, query *models.Query, paths []string) (*models.SearchResponse, error) {
	start := time.Now()
	if strings.TrimSpace(query.Text) == "" {
		return &models.SearchResponse{
			Results: []*models.ConsolidatedResult{},
			Query:   query.Text,
			Status:  StatusEmptyQuery,
		}, nil
	}

	analysis := s.analyzer.Analyze(query.Text)
	metrics := &models.SearchPerformanceMetrics{}

	var keyword []*models.SearchResult
	if s.prefilter != nil {
		docStart := time.Now()
		keyword = s.prefilter.Filter(paths, analysis)
		metrics.Merge(models.StrategyTiming{
			Strategy: "document",
			Elapsed:  time.Since(docStart),
			Matches:  len(keyword),
		})
	}

	semStart := time.Now()
	semantic, err := s.provider.SemanticSearch(ctx, query.Text, paths, query.Limit())
	if err != nil {
		s.logger.Warn("semantic search failed, continuing lexical-only", zap.Error(err))
		semantic = nil
	}
	metrics.Merge(models.StrategyTiming{
		Strategy: "semantic",
		Elapsed:  time.Since(semStart),
		Matches:  len(semantic),
	})

	var fused []*models.SearchResult
	if len(keyword) == 0 && len(semantic) == 0 {
		// Prefiltering found nothing usable in the file set; fall back to the
		// index-backed hybrid path scoped to the same files.
		exec, execErr := s.executor.Execute(ctx, query, paths)
		if execErr != nil {
			return nil, execErr
		}
		for _, t := range exec.Timings {
			metrics.Merge(t)
		}
		fused = FuseResults(exec.Document, exec.Semantic, false)
		fused = append(fused, exec.Word...)
		fused = append(fused, exec.Sentence...)
	} else {
		fused = FuseContentResults(keyword, semantic, analysis.ImportantWords)
	}

	consolidated := Consolidate(fused, query)
	metrics.TotalTime = time.Since(start)

	return &models.SearchResponse{
		Results: consolidated,
		Total:   len(consolidated),
		Query:   query.Text,
		Status:  StatusOK,
		Metrics: metrics,
	}, nil
}

// Analyze exposes the query analyzer for callers that need the signals
// (answer generation ranks candidates with them).
func (s *Service) Analyze(query string) *analyze.QueryAnalysis {
	return s.analyzer.Analyze(query)
}

func candidatePaths(results []*models.SearchResult) []string {
	seen := make(map[string]bool)
	var paths []string
	for _, r := range results {
		if r.FilePath == "" || seen[r.FilePath] {
			continue
		}
		seen[r.FilePath] = true
		paths = append(paths, r.FilePath)
	}
	return paths
}

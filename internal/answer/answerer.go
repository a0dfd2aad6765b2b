package answer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sableworks/findex/internal/models"
	"github.com/sableworks/findex/internal/search"
)

// maxAnswerCandidates is how many ranked search results are considered.
const maxAnswerCandidates = 10

// Answerer runs a search for the question, ranks candidates, and hands them
// to the budget controller.
type Answerer struct {
	service    *search.Service
	controller *Controller
	generate   GenerateFunc
	logger     *zap.Logger
}

// NewAnswerer wires question answering over a search service and a generate
// function.
func NewAnswerer(service *search.Service, generate GenerateFunc, logger *zap.Logger) *Answerer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Answerer{
		service:    service,
		controller: NewController(logger),
		generate:   generate,
		logger:     logger,
	}
}

// Answer finds the documents most likely to answer query and generates a
// single best answer with search metadata attached. An empty query or an
// empty corpus yields an empty answer, never an error.
func (a *Answerer) Answer(ctx context.Context, query string) (*models.AnswerResult, error) {
	start := time.Now()

	resp, err := a.service.Search(ctx, &models.Query{
		Text:       query,
		AutoMode:   true,
		MaxResults: maxAnswerCandidates,
	})
	if err != nil {
		return nil, err
	}

	result := &models.AnswerResult{
		ResultCount: resp.Total,
		Metrics:     resp.Metrics,
	}
	if len(resp.Results) == 0 {
		result.Answer = ""
		return result, nil
	}

	candidates := make([]Candidate, 0, len(resp.Results))
	seenTypes := make(map[string]bool)
	var scoreSum float64
	for _, r := range resp.Results {
		candidates = append(candidates, Candidate{
			Path:    r.FilePath,
			Score:   r.Score,
			Content: r.Content,
		})
		scoreSum += r.Score
		if r.Score > result.TopScore {
			result.TopScore = r.Score
		}
		if r.MatchType != "" && !seenTypes[r.MatchType] {
			seenTypes[r.MatchType] = true
			result.SearchTypes = append(result.SearchTypes, r.MatchType)
		}
		result.RelevantFiles = append(result.RelevantFiles, &models.RelevantFile{
			FileName:  r.FileName,
			Score:     r.Score,
			MatchType: r.MatchType,
		})
	}
	result.AverageScore = scoreSum / float64(len(resp.Results))

	answer, calls := a.controller.AnswerWithBudget(ctx, query, candidates, a.generate)
	result.Answer = answer
	result.GenerateCalls = calls
	if result.Metrics != nil {
		result.Metrics.TotalTime = time.Since(start)
	}
	return result, nil
}

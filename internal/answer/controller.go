package answer

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/sableworks/findex/internal/analyze"
	"github.com/sableworks/findex/pkg/utils"
)

// maxGenerateCalls bounds model invocations per question.
const maxGenerateCalls = 5

// fallbackExcerptLen caps the content excerpt returned when no candidate
// produced an acceptable answer.
const fallbackExcerptLen = 500

// Candidate is one ranked document the controller may ask the model about.
type Candidate struct {
	Path    string
	Score   float64
	Content string
}

// GenerateFunc asks the model to answer the query from one file's content.
type GenerateFunc func(ctx context.Context, query, path, content string) (string, error)

// Controller walks ranked candidates and spends generate calls until an
// answer is good enough.
type Controller struct {
	logger *zap.Logger
}

// NewController creates a controller.
func NewController(logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{logger: logger}
}

// AnswerWithBudget processes candidates in ranked order, calling generate at
// most min(5, len(candidates)) times. It terminates immediately on a
// high-quality or high-relevance answer; a first merely-acceptable answer may
// hold for exactly one comparison candidate. Only the first acceptable answer
// gets that deferred comparison; a later acceptable answer is judged on the
// spot.
// Returns the answer (prefixed with its source file name) and the number of
// generate calls spent.
func (c *Controller) AnswerWithBudget(ctx context.Context, query string, candidates []Candidate, generate GenerateFunc) (string, int) {
	if len(candidates) == 0 {
		return "", 0
	}
	budget := maxGenerateCalls
	if len(candidates) < budget {
		budget = len(candidates)
	}
	hasIdentifier := len(analyze.ExtractIdentifiers(query)) > 0

	var (
		calls           int
		pendingAnswer   string
		pendingPath     string
		pendingQuality  float64
		comparing       bool
		lowRelevanceRun int
	)

	for i := 0; i < budget; i++ {
		cand := candidates[i]
		raw, err := generate(ctx, query, cand.Path, cand.Content)
		calls++
		if err != nil {
			c.logger.Warn("answer generation failed, trying next candidate",
				zap.String("path", cand.Path), zap.Error(err))
			raw = ""
		}

		acceptable := raw != "" && !IsNegative(raw)
		if acceptable {
			quality := Quality(raw, query)
			switch {
			case quality >= 0.7 || cand.Score >= 0.8:
				return prefixed(cand.Path, raw), calls
			case hasIdentifier && cand.Score >= 0.9:
				return prefixed(cand.Path, raw), calls
			case pendingAnswer == "" && !comparing:
				if cand.Score >= 0.6 && i < budget-1 {
					pendingAnswer = raw
					pendingPath = cand.Path
					pendingQuality = quality
					comparing = true
					continue
				}
				return prefixed(cand.Path, raw), calls
			default:
				// Comparison candidate: keep whichever answer scores better.
				if quality > pendingQuality {
					return prefixed(cand.Path, raw), calls
				}
				return prefixed(pendingPath, pendingAnswer), calls
			}
		} else if comparing {
			// The one comparison try produced nothing better.
			return prefixed(pendingPath, pendingAnswer), calls
		}

		if cand.Score < 0.3 {
			lowRelevanceRun++
			if lowRelevanceRun >= 2 {
				break
			}
		} else {
			lowRelevanceRun = 0
		}
	}

	if pendingAnswer != "" {
		return prefixed(pendingPath, pendingAnswer), calls
	}

	// No acceptable answer: fall back to an excerpt of the top candidate.
	top := candidates[0]
	return prefixed(top.Path, utils.Truncate(top.Content, fallbackExcerptLen)), calls
}

func prefixed(path, answer string) string {
	return fmt.Sprintf("%s: %s", filepath.Base(path), answer)
}

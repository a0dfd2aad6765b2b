package search

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sableworks/findex/internal/models"
	"github.com/sableworks/findex/pkg/utils"
)

// hybridResult accumulates keyword and semantic signals for one file during
// fusion. It exists only inside this file; callers get models.SearchResult.
type hybridResult struct {
	filePath      string
	fileName      string
	content       string
	modifiedDate  string
	keywordScore  float64
	semanticScore float64
	matchType     string
	snippets      []string
	metadata      map[string]string
	entityMatches []string
}

// FuseResults merges keyword and semantic result sets keyed by file path into
// combined-score results, sorted descending. It is purely a merge: no storage
// or network access.
//
// Combined-score rules, first applicable wins:
//  1. exact match type or keyword score >=1.0 -> 1.0
//  2. prioritizeExact and keyword score >=0.8 -> 0.85 + keyword*0.15
//  3. both signals -> keyword*0.4 + semantic*0.6
//  4. keyword only -> keyword*0.7
//  5. semantic only -> semantic*0.9
func FuseResults(keywordResults, semanticResults []*models.SearchResult, prioritizeExact bool) []*models.SearchResult {
	merged := mergeByPath(keywordResults, semanticResults)
	out := make([]*models.SearchResult, 0, len(merged))
	for _, h := range merged {
		var combined float64
		switch {
		case h.matchType == models.MatchExact || h.keywordScore >= 1.0:
			combined = 1.0
		case prioritizeExact && h.keywordScore >= 0.8:
			combined = 0.85 + h.keywordScore*0.15
		case h.keywordScore > 0 && h.semanticScore > 0:
			combined = h.keywordScore*0.4 + h.semanticScore*0.6
		case h.keywordScore > 0:
			combined = h.keywordScore * 0.7
		default:
			combined = h.semanticScore * 0.9
		}
		out = append(out, h.toResult(utils.Clamp01(combined)))
	}
	sortFused(out)
	return out
}

// FuseContentResults is the content-search variant: the same base combination
// without the prioritize-exact rule, then file-level boosts (filename words
// and recency) added on top. importantWords drives the filename boost.
func FuseContentResults(keywordResults, semanticResults []*models.SearchResult, importantWords []string) []*models.SearchResult {
	merged := mergeByPath(keywordResults, semanticResults)
	out := make([]*models.SearchResult, 0, len(merged))
	for _, h := range merged {
		var combined float64
		switch {
		case h.matchType == models.MatchExact:
			combined = 1.0
		case h.keywordScore > 0 && h.semanticScore > 0:
			combined = h.keywordScore*0.4 + h.semanticScore*0.6
		case h.keywordScore > 0:
			combined = h.keywordScore * 0.7
		default:
			combined = h.semanticScore * 0.9
		}
		combined += BoostFor(h.filePath, importantWords)
		out = append(out, h.toResult(utils.Clamp01(combined)))
	}
	sortFused(out)
	return out
}

// BoostFor computes the additive file-level boost: +0.05 per important word
// appearing in the file name, +0.03 for files modified within 7 days, +0.01
// within 30 days. Unreadable file metadata contributes no recency boost.
func BoostFor(filePath string, importantWords []string) float64 {
	boost := 0.0
	name := strings.ToLower(filepath.Base(filePath))
	for _, w := range importantWords {
		if strings.Contains(name, strings.ToLower(w)) {
			boost += 0.05
		}
	}
	if info, err := os.Stat(filePath); err == nil {
		age := time.Since(info.ModTime())
		switch {
		case age < 7*24*time.Hour:
			boost += 0.03
		case age < 30*24*time.Hour:
			boost += 0.01
		}
	}
	return boost
}

// mergeByPath builds the path-keyed fusion map: keyword results first, then
// semantic results layered in without discarding keyword data.
func mergeByPath(keywordResults, semanticResults []*models.SearchResult) []*hybridResult {
	byPath := make(map[string]*hybridResult)
	var order []string

	for _, r := range keywordResults {
		if r.FilePath == "" {
			continue
		}
		h, ok := byPath[r.FilePath]
		if !ok {
			h = &hybridResult{
				filePath:      r.FilePath,
				fileName:      r.FileName,
				content:       r.Content,
				modifiedDate:  r.ModifiedDate,
				matchType:     r.MatchType,
				metadata:      r.Metadata,
				entityMatches: r.EntityMatches,
			}
			byPath[r.FilePath] = h
			order = append(order, r.FilePath)
		}
		if r.Score > h.keywordScore {
			h.keywordScore = r.Score
		}
		if r.MatchType == models.MatchExact {
			h.matchType = models.MatchExact
		}
		h.snippets = appendDistinct(h.snippets, r.Snippets)
	}

	for _, r := range semanticResults {
		if r.FilePath == "" {
			continue
		}
		if h, ok := byPath[r.FilePath]; ok {
			if r.Score > h.semanticScore {
				h.semanticScore = r.Score
			}
			h.snippets = appendDistinct(h.snippets, r.Snippets)
			continue
		}
		h := &hybridResult{
			filePath:      r.FilePath,
			fileName:      r.FileName,
			content:       r.Content,
			modifiedDate:  r.ModifiedDate,
			semanticScore: r.Score,
			matchType:     models.MatchSemantic,
			metadata:      r.Metadata,
			entityMatches: r.EntityMatches,
		}
		h.snippets = appendDistinct(nil, r.Snippets)
		byPath[r.FilePath] = h
		order = append(order, r.FilePath)
	}

	out := make([]*hybridResult, 0, len(order))
	for _, path := range order {
		out = append(out, byPath[path])
	}
	return out
}

func (h *hybridResult) toResult(score float64) *models.SearchResult {
	matchType := h.matchType
	if h.keywordScore > 0 && h.semanticScore > 0 &&
		matchType != models.MatchExact && matchType != models.MatchExactIdentifier {
		matchType = models.MatchHybrid
	}
	return &models.SearchResult{
		FileName:           h.fileName,
		FilePath:           h.filePath,
		Content:            h.content,
		Score:              score,
		Snippets:           h.snippets,
		ModifiedDate:       h.modifiedDate,
		Metadata:           h.metadata,
		MatchType:          matchType,
		EntityMatches:      h.entityMatches,
		SemanticSimilarity: h.semanticScore,
	}
}

func appendDistinct(dst []string, src []string) []string {
	for _, s := range src {
		if s == "" {
			continue
		}
		found := false
		for _, existing := range dst {
			if existing == s {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, s)
		}
	}
	return dst
}

func sortFused(results []*models.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
}

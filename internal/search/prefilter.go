package search

import (
	"errors"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/sableworks/findex/internal/analyze"
	"github.com/sableworks/findex/internal/models"
)

// TextExtractor is the content extraction boundary the scan paths depend on.
type TextExtractor interface {
	Extract(path string) (string, error)
}

// maxSmartChunks caps extracted chunks per pre-filtered file.
const maxSmartChunks = 5

// Prefilter scores candidate files by extracting their content and checking
// query signals directly, without going through the index. Used by the
// deep-search path over an explicit file set.
type Prefilter struct {
	extractor TextExtractor
	logger    *zap.Logger
}

// NewPrefilter creates a prefilter over the given extractor.
func NewPrefilter(extractor TextExtractor, logger *zap.Logger) *Prefilter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Prefilter{extractor: extractor, logger: logger}
}

// Filter scores each candidate file against the analysis signals and keeps
// files scoring above 0.1. Per-file extraction failures are logged and the
// file is skipped.
func (p *Prefilter) Filter(paths []string, analysis *analyze.QueryAnalysis) []*models.SearchResult {
	var out []*models.SearchResult
	for _, path := range paths {
		content, err := p.extractor.Extract(path)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrUnsupportedFormat) {
				p.logger.Debug("prefilter skipping file", zap.String("path", path), zap.Error(err))
			} else {
				p.logger.Warn("prefilter extraction failed", zap.String("path", path), zap.Error(err))
			}
			continue
		}
		score, matchType, matchedTerms := scoreContent(content, analysis)
		if score <= 0.1 {
			continue
		}
		out = append(out, &models.SearchResult{
			FileName:  filepath.Base(path),
			FilePath:  path,
			Content:   content,
			Score:     score,
			MatchType: matchType,
			Snippets:  smartChunks(content, matchedTerms, maxSmartChunks),
			Metadata:  map[string]string{models.MetaDocType: "document"},
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// scoreContent applies the tiered scoring rules: exact identifier substring
// wins outright, then important-word coverage, then fuzzy variants when
// coverage is weak.
func scoreContent(content string, analysis *analyze.QueryAnalysis) (score float64, matchType string, matchedTerms []string) {
	lower := strings.ToLower(content)

	for _, id := range analysis.Identifiers {
		if strings.Contains(lower, strings.ToLower(id)) {
			return 1.0, models.MatchExact, []string{id}
		}
	}

	if len(analysis.ImportantWords) > 0 {
		matches := 0
		for _, w := range analysis.ImportantWords {
			if strings.Contains(lower, strings.ToLower(w)) {
				matches++
				matchedTerms = append(matchedTerms, w)
			}
		}
		score = float64(matches) / float64(len(analysis.ImportantWords))
		if matches >= 2 {
			score *= 1.2
			if score > 1.0 {
				score = 1.0
			}
		}
		matchType = models.MatchKeyword
	}

	if score < 0.5 && len(analysis.FuzzyVariants) > 0 {
		matches := 0
		var fuzzyTerms []string
		for _, v := range analysis.FuzzyVariants {
			if strings.Contains(lower, strings.ToLower(v)) {
				matches++
				fuzzyTerms = append(fuzzyTerms, v)
			}
		}
		fuzzyScore := float64(matches) / float64(len(analysis.FuzzyVariants)) * 0.7
		if fuzzyScore > score {
			score = fuzzyScore
			matchType = models.MatchFuzzy
			matchedTerms = fuzzyTerms
		}
	}
	return score, matchType, matchedTerms
}

// smartChunks returns up to limit sentences: first sentences containing a
// matched term, then the highest keyword-density sentences as filler.
func smartChunks(content string, matchedTerms []string, limit int) []string {
	sentences := splitIntoSentences(content)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	used := make(map[int]bool)
	for i, s := range sentences {
		if len(chunks) >= limit {
			return chunks
		}
		lower := strings.ToLower(s)
		for _, term := range matchedTerms {
			if strings.Contains(lower, strings.ToLower(term)) {
				chunks = append(chunks, s)
				used[i] = true
				break
			}
		}
	}

	if len(chunks) < limit && len(matchedTerms) > 0 {
		type ranked struct {
			index   int
			density float64
		}
		var filler []ranked
		for i, s := range sentences {
			if used[i] {
				continue
			}
			words := strings.Fields(s)
			if len(words) == 0 {
				continue
			}
			hits := 0
			for _, w := range words {
				for _, term := range matchedTerms {
					if strings.EqualFold(w, term) {
						hits++
						break
					}
				}
			}
			if hits > 0 {
				filler = append(filler, ranked{index: i, density: float64(hits) / float64(len(words))})
			}
		}
		sort.SliceStable(filler, func(i, j int) bool { return filler[i].density > filler[j].density })
		for _, f := range filler {
			if len(chunks) >= limit {
				break
			}
			chunks = append(chunks, sentences[f.index])
		}
	}
	return chunks
}

func splitIntoSentences(content string) []string {
	var sentences []string
	var current strings.Builder
	for _, r := range content {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(current.String()); len(s) > 3 {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); len(s) > 3 {
		sentences = append(sentences, s)
	}
	return sentences
}

// identifierContextWindows caps the context windows attached to one file.
const identifierContextWindows = 3

// IdentifierScan scans candidate files for exact identifier occurrences,
// parallelized over a bounded worker pool. Result accumulation is the one
// place with shared mutable state under concurrent writers; a single mutex
// guards the append.
type IdentifierScan struct {
	extractor TextExtractor
	logger    *zap.Logger
	poolSize  int
}

// NewIdentifierScan creates a scanner sized to the available processing
// units.
func NewIdentifierScan(extractor TextExtractor, logger *zap.Logger) *IdentifierScan {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentifierScan{extractor: extractor, logger: logger, poolSize: runtime.NumCPU()}
}

// Scan checks each candidate file for the analysis identifiers. A file whose
// content contains any identifier scores 1.0 with context windows around the
// occurrences; otherwise a partial hit on the name-only portion of the query
// scores 0.7.
func (s *IdentifierScan) Scan(paths []string, analysis *analyze.QueryAnalysis) []*models.SearchResult {
	if len(paths) == 0 {
		return nil
	}

	var (
		mu      sync.Mutex
		results []*models.SearchResult
		wg      sync.WaitGroup
	)
	pool, err := ants.NewPool(s.poolSize)
	if err != nil {
		s.logger.Warn("worker pool creation failed, scanning serially", zap.Error(err))
		for _, path := range paths {
			if r := s.scanFile(path, analysis); r != nil {
				results = append(results, r)
			}
		}
		sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
		return results
	}
	defer pool.Release()

	for _, path := range paths {
		path := path
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			r := s.scanFile(path, analysis)
			if r == nil {
				return
			}
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			s.logger.Warn("scan task submit failed", zap.String("path", path), zap.Error(submitErr))
		}
	}
	wg.Wait()

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return results
}

func (s *IdentifierScan) scanFile(path string, analysis *analyze.QueryAnalysis) *models.SearchResult {
	content, err := s.extractor.Extract(path)
	if err != nil {
		s.logger.Debug("identifier scan skipping file", zap.String("path", path), zap.Error(err))
		return nil
	}
	lower := strings.ToLower(content)

	for _, id := range analysis.Identifiers {
		idLower := strings.ToLower(id)
		if !strings.Contains(lower, idLower) {
			continue
		}
		return &models.SearchResult{
			FileName:  filepath.Base(path),
			FilePath:  path,
			Content:   content,
			Score:     1.0,
			MatchType: models.MatchExactIdentifier,
			Snippets:  contextWindows(content, id, identifierContextWindows),
			Metadata:  map[string]string{models.MetaDocType: "document"},
		}
	}

	// Fall back to the name-only portion of the query with identifiers
	// stripped out.
	namePart := analysis.Original
	for _, id := range analysis.Identifiers {
		namePart = strings.ReplaceAll(namePart, id, " ")
	}
	namePart = strings.TrimSpace(namePart)
	if namePart != "" && strings.Contains(lower, strings.ToLower(namePart)) {
		return &models.SearchResult{
			FileName:  filepath.Base(path),
			FilePath:  path,
			Content:   content,
			Score:     0.7,
			MatchType: models.MatchPartialName,
			Metadata:  map[string]string{models.MetaDocType: "document"},
		}
	}
	return nil
}

// contextWindows returns up to limit windows of +-100 bytes around
// case-insensitive occurrences of needle in content. Matching folds ASCII
// case only, which keeps byte lengths intact so every offset indexes the
// original string directly.
func contextWindows(content, needle string, limit int) []string {
	folded := asciiFold(content)
	needle = asciiFold(needle)
	var windows []string
	offset := 0
	for len(windows) < limit {
		i := strings.Index(folded[offset:], needle)
		if i < 0 {
			break
		}
		pos := offset + i
		start := runeStart(content, pos-100)
		end := runeStart(content, pos+len(needle)+100)
		windows = append(windows, strings.TrimSpace(content[start:end]))
		offset = pos + len(needle)
	}
	return windows
}

// asciiFold lowercases A-Z without touching any other byte.
func asciiFold(s string) string {
	return strings.Map(func(r rune) rune {
		if 'A' <= r && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}

// runeStart clamps i to [0, len(s)] and backs up to the nearest rune start.
func runeStart(s string, i int) int {
	if i <= 0 {
		return 0
	}
	if i >= len(s) {
		return len(s)
	}
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

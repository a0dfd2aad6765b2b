package index

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
	"go.uber.org/zap"

	"github.com/sableworks/findex/internal/embedding"
	"github.com/sableworks/findex/internal/models"
	"github.com/sableworks/findex/internal/storage"
	"github.com/sableworks/findex/internal/vector"
)

// BleveProvider implements Provider with a Bleve full-text index for lexical
// search and an optional vector index + embedder for semantic search.
type BleveProvider struct {
	index    bleve.Index
	vectors  vector.VectorIndex
	embedder embedding.Embedder
	store    storage.Storage
	logger   *zap.Logger
}

// ProviderOption configures a BleveProvider.
type ProviderOption func(*BleveProvider)

// WithSemantic attaches the embedding backend used by SemanticSearch. Without
// it SemanticSearch returns empty results.
func WithSemantic(embedder embedding.Embedder, vectors vector.VectorIndex, store storage.Storage) ProviderOption {
	return func(p *BleveProvider) {
		p.embedder = embedder
		p.vectors = vectors
		p.store = store
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) ProviderOption {
	return func(p *BleveProvider) { p.logger = l }
}

// NewBleveProvider creates or opens a Bleve index at path. An existing index
// directory is reused so incremental sync works; remove the directory to
// force a full re-index after mapping changes.
func NewBleveProvider(path string, opts ...ProviderOption) (*BleveProvider, error) {
	im := bleve.NewIndexMapping()

	entryMapping := bleve.NewDocumentMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so exact word
	// queries match the exact word.
	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = standard.Name
	entryMapping.AddFieldMappingsAt("content", textField)
	entryMapping.AddFieldMappingsAt("name", textField)

	keywordField := bleve.NewTextFieldMapping()
	keywordField.Analyzer = keyword.Name
	entryMapping.AddFieldMappingsAt("path", keywordField)
	entryMapping.AddFieldMappingsAt("doc_type", keywordField)

	numericField := bleve.NewNumericFieldMapping()
	entryMapping.AddFieldMappingsAt("frequency", numericField)
	entryMapping.AddFieldMappingsAt("sentence_index", numericField)

	dateField := bleve.NewDateTimeFieldMapping()
	entryMapping.AddFieldMappingsAt("modified", dateField)

	im.DefaultMapping = entryMapping

	p := &BleveProvider{}
	for _, opt := range opts {
		opt(p)
	}

	if _, err := os.Stat(path); err == nil {
		idx, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("open index: %w", openErr)
		}
		p.index = idx
		return p, nil
	}
	idx, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	p.index = idx
	return p, nil
}

// Index adds or replaces an entry.
func (p *BleveProvider) Index(ctx context.Context, entry *Entry) error {
	if entry.DocType == "" {
		entry.DocType = "document"
	}
	return p.index.Index(entry.ID, entry)
}

// Delete removes an entry by ID.
func (p *BleveProvider) Delete(ctx context.Context, id string) error {
	return p.index.Delete(id)
}

// DeleteByPath removes every entry (document and sub-documents) indexed for
// the given source path.
func (p *BleveProvider) DeleteByPath(ctx context.Context, path string) error {
	tq := bleve.NewTermQuery(path)
	tq.SetField("path")
	req := bleve.NewSearchRequest(tq)
	req.Size = 10000
	res, err := p.index.Search(req)
	if err != nil {
		return fmt.Errorf("find entries for %s: %w", path, err)
	}
	for _, hit := range res.Hits {
		if err := p.index.Delete(hit.ID); err != nil {
			return fmt.Errorf("delete entry %s: %w", hit.ID, err)
		}
	}
	return nil
}

// Search runs a full-text query over the whole index. The query may use
// field syntax (e.g. doc_type:word) via Bleve's query-string language; plain
// text that fails to parse falls back to a match query.
func (p *BleveProvider) Search(ctx context.Context, query string) ([]*models.SearchResult, error) {
	return p.search(ctx, p.buildQuery(query))
}

// SearchInPaths runs the query restricted to the given source paths.
func (p *BleveProvider) SearchInPaths(ctx context.Context, query string, paths []string) ([]*models.SearchResult, error) {
	if len(paths) == 0 {
		return p.Search(ctx, query)
	}
	pathQueries := make([]blevequery.Query, 0, len(paths))
	for _, path := range paths {
		tq := bleve.NewTermQuery(path)
		tq.SetField("path")
		pathQueries = append(pathQueries, tq)
	}
	scoped := bleve.NewConjunctionQuery(
		p.buildQuery(query),
		bleve.NewDisjunctionQuery(pathQueries...),
	)
	return p.search(ctx, scoped)
}

// SemanticSearch embeds the query and searches the vector index, aggregating
// chunk similarity to document level. Returns empty results when no embedding
// backend is configured.
func (p *BleveProvider) SemanticSearch(ctx context.Context, query string, paths []string, maxResults int) ([]*models.SearchResult, error) {
	if p.embedder == nil || p.vectors == nil || p.store == nil {
		return nil, nil
	}
	if maxResults <= 0 {
		maxResults = models.DefaultMaxResults
	}

	queryVec, err := p.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", models.ErrUpstream, err)
	}
	// Over-fetch at chunk granularity; multiple chunks collapse to one doc.
	hits, err := p.vectors.Search(ctx, queryVec, maxResults*4)
	if err != nil {
		return nil, fmt.Errorf("%w: vector search: %v", models.ErrUpstream, err)
	}

	allowed := pathSet(paths)
	type docHit struct {
		doc   *models.Document
		score float64
	}
	byDoc := make(map[string]*docHit)
	for _, hit := range hits {
		chunk, err := p.store.GetChunk(ctx, hit.ID)
		if err != nil {
			continue
		}
		if existing, ok := byDoc[chunk.DocumentID]; ok {
			if hit.Score > existing.score {
				existing.score = hit.Score
			}
			continue
		}
		doc, err := p.store.GetDocument(ctx, chunk.DocumentID)
		if err != nil {
			continue
		}
		path, _ := doc.Metadata["source_path"].(string)
		if allowed != nil {
			if _, ok := allowed[path]; !ok {
				continue
			}
		}
		byDoc[chunk.DocumentID] = &docHit{doc: doc, score: hit.Score}
	}

	results := make([]*models.SearchResult, 0, len(byDoc))
	for _, dh := range byDoc {
		path, _ := dh.doc.Metadata["source_path"].(string)
		results = append(results, &models.SearchResult{
			FileName:           dh.doc.Title,
			FilePath:           path,
			Content:            dh.doc.Content,
			Score:              dh.score,
			SemanticSimilarity: dh.score,
			MatchType:          models.MatchSemantic,
			Metadata:           map[string]string{models.MetaDocType: "document"},
		})
	}
	sortByScore(results)
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// DocCount returns the number of indexed entries (including sub-documents).
func (p *BleveProvider) DocCount() (uint64, error) {
	return p.index.DocCount()
}

// Close closes the underlying index.
func (p *BleveProvider) Close() error {
	return p.index.Close()
}

// buildQuery parses query with Bleve's query-string syntax, falling back to a
// plain match query when parsing fails (unbalanced quotes and the like).
func (p *BleveProvider) buildQuery(query string) blevequery.Query {
	qs := bleve.NewQueryStringQuery(query)
	if _, err := qs.Parse(); err != nil {
		if p.logger != nil {
			p.logger.Debug("query string parse failed, using match query",
				zap.String("query", query), zap.Error(err))
		}
		return bleve.NewMatchQuery(query)
	}
	return qs
}

func (p *BleveProvider) search(ctx context.Context, q blevequery.Query) ([]*models.SearchResult, error) {
	req := bleve.NewSearchRequest(q)
	req.Size = 200
	req.Fields = []string{"*"}
	req.Highlight = bleve.NewHighlightWithStyle("html")
	res, err := p.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("index search: %w", err)
	}

	// Normalize scores to [0,1] by the max so downstream fusion can treat
	// lexical and semantic scores uniformly.
	var maxScore float64
	for _, hit := range res.Hits {
		if hit.Score > maxScore {
			maxScore = hit.Score
		}
	}

	out := make([]*models.SearchResult, 0, len(res.Hits))
	for _, hit := range res.Hits {
		r := &models.SearchResult{
			FileName:  fieldString(hit.Fields, "name"),
			FilePath:  fieldString(hit.Fields, "path"),
			Content:   fieldString(hit.Fields, "content"),
			MatchType: models.MatchKeyword,
			Metadata:  map[string]string{},
		}
		if maxScore > 0 {
			r.Score = hit.Score / maxScore
		}
		if docType := fieldString(hit.Fields, "doc_type"); docType != "" {
			r.Metadata[models.MetaDocType] = docType
		}
		if freq := fieldInt(hit.Fields, "frequency"); freq > 0 {
			r.Metadata[models.MetaFrequency] = strconv.Itoa(freq)
		}
		if si := fieldInt(hit.Fields, "sentence_index"); si > 0 {
			r.Metadata[models.MetaSentenceIndex] = strconv.Itoa(si)
		}
		if mod := fieldString(hit.Fields, "modified"); mod != "" {
			r.ModifiedDate = mod
		}
		for _, fragments := range hit.Fragments {
			r.Snippets = append(r.Snippets, fragments...)
		}
		out = append(out, r)
	}
	return out, nil
}

func fieldString(fields map[string]interface{}, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

func fieldInt(fields map[string]interface{}, key string) int {
	switch v := fields[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}

func pathSet(paths []string) map[string]struct{} {
	if len(paths) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return set
}

func sortByScore(results []*models.SearchResult) {
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
}

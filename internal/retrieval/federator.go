// Package retrieval implements the federated retrieval contract: fan out a
// query across an internal semantic leg, an internal lexical leg, and an
// in-memory ranking of caller-supplied external documents, then fuse the
// three ranked lists with reciprocal-rank fusion and an optional
// personalisation shift.
package retrieval

import (
	"context"
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"legalforge/internal/cache"
	"legalforge/internal/config"
	"legalforge/internal/domain"
	"legalforge/internal/embedding"
	"legalforge/internal/logging"
)

// LegHit is one result from a single retrieval leg, before fusion.
type LegHit struct {
	SourceID string
	Excerpt  string
	Score    float64
}

// SemanticIndex performs embedding-similarity search over a tenant's
// internal corpus. Implementations own their own storage; the federator
// only needs ranked hits back.
type SemanticIndex interface {
	Search(ctx context.Context, tenantID string, queryEmbedding []float32, k int) ([]LegHit, error)
}

// LexicalIndex performs keyword/BM25-style search over the same corpus the
// semantic index covers. The bundled reference implementation is bleve-backed
// (internal/lexical); any implementation satisfying this interface works.
type LexicalIndex interface {
	Search(ctx context.Context, tenantID string, query string, k int) ([]LegHit, error)
}

// Request is one federator call.
type Request struct {
	Query             string
	TenantID          string
	K                 int
	ExternalDocuments []domain.ExternalDocument
	Personalise       bool
	ThemeTag          string // theme used to key the centroid; the supervisor passes the run's document type
}

// Federator fans a query out across the semantic, lexical, and external-doc
// legs and fuses the results per the reciprocal-rank-fusion contract.
type Federator struct {
	Semantic  SemanticIndex
	Lexical   LexicalIndex
	Embedder  embedding.EmbeddingEngine
	Centroids *cache.Centroids
	Config    config.RetrievalConfig
}

// New builds a Federator. semantic or lexical may be nil (that leg is then
// skipped, not fatal, so long as at least one leg and/or external docs
// produce results).
func New(semantic SemanticIndex, lexical LexicalIndex, embedder embedding.EmbeddingEngine, centroids *cache.Centroids, cfg config.RetrievalConfig) *Federator {
	return &Federator{Semantic: semantic, Lexical: lexical, Embedder: embedder, Centroids: centroids, Config: cfg}
}

// Query executes the federator contract and returns the immutable record
// (for the run trace), whose Hits are the fused hits in rank order.
func (f *Federator) Query(ctx context.Context, req Request) (*domain.RetrievalRecord, error) {
	k := req.K
	record := &domain.RetrievalRecord{
		Query:    req.Query,
		ThemeTag: req.ThemeTag,
		Fusion:   domain.FusionParams{KRRF: f.krrf(), PersonalisationAlpha: f.Config.PersonalizationAlpha},
	}

	if k == 0 {
		logging.Get(logging.CategoryRetrieval).Debug("retrieval k=0, skipping all legs")
		record.Hits = []domain.RetrievalHit{}
		return record, nil
	}

	ceiling := f.Config.KCeiling
	if ceiling <= 0 {
		ceiling = 100
	}
	if k > ceiling {
		record.Annotations = append(record.Annotations, "k clamped to ceiling "+strconv.Itoa(ceiling))
		k = ceiling
	}

	legDeadline := f.legDeadline()

	queryEmbedding, embedErr := f.embedQuery(ctx, req.Query)
	if embedErr != nil {
		record.Annotations = append(record.Annotations, "semantic leg unavailable: query embedding failed")
		logging.Get(logging.CategoryRetrieval).Warn("query embedding failed: %v", embedErr)
	}

	semanticHits, semanticErr := f.runSemanticLeg(ctx, req.TenantID, queryEmbedding, k, legDeadline)
	lexicalHits, lexicalErr := f.runLexicalLeg(ctx, req.TenantID, req.Query, k, legDeadline)
	externalHits, externalErr := f.runExternalLeg(req.Query, queryEmbedding, req.ExternalDocuments, k)

	legsOK := 0
	for _, err := range []error{semanticErr, lexicalErr, externalErr} {
		if err == nil {
			legsOK++
		}
	}
	if legsOK == 0 && len(req.ExternalDocuments) == 0 {
		record.Annotations = append(record.Annotations, "retrieval-error: all legs failed")
		record.Hits = []domain.RetrievalHit{}
		return record, nil
	}

	fused := fuse(f.krrf(), map[string][]LegHit{
		"semantic": semanticHits,
		"lexical":  lexicalHits,
		"external": externalHits,
	}, map[string]domain.Origin{
		"semantic": domain.OriginInternal,
		"lexical":  domain.OriginInternal,
		"external": domain.OriginExternal,
	})

	if req.Personalise && f.Config.PersonalizationAlpha > 0 && f.Centroids != nil && queryEmbedding != nil {
		if shifted, ok := f.personalise(req.TenantID, req.ThemeTag, queryEmbedding); ok {
			reShifted, err := f.runSemanticLeg(ctx, req.TenantID, shifted, k, legDeadline)
			if err == nil {
				fused = fuse(f.krrf(), map[string][]LegHit{
					"semantic": reShifted,
					"lexical":  lexicalHits,
					"external": externalHits,
				}, map[string]domain.Origin{
					"semantic": domain.OriginInternal,
					"lexical":  domain.OriginInternal,
					"external": domain.OriginExternal,
				})
				for i := range fused {
					fused[i].PersonalisationShifted = true
				}
			}
		} else {
			record.Annotations = append(record.Annotations, "personalisation skipped: no fresh centroid for tenant")
		}
	}

	sort.Slice(fused, func(i, j int) bool {
		if fused[i].FusedScore != fused[j].FusedScore {
			return fused[i].FusedScore > fused[j].FusedScore
		}
		if fused[i].minRank != fused[j].minRank {
			return fused[i].minRank < fused[j].minRank
		}
		return fused[i].SourceID < fused[j].SourceID
	})

	if len(fused) > k {
		fused = fused[:k]
	}
	for i := range fused {
		fused[i].Rank = i + 1
	}

	hits := make([]domain.RetrievalHit, len(fused))
	for i, h := range fused {
		hits[i] = h.RetrievalHit
	}
	record.Hits = hits
	return record, nil
}

// fusedHit carries the minimum single-leg rank alongside the public
// domain.RetrievalHit, used only for the tie-break rule during sort.
type fusedHit struct {
	domain.RetrievalHit
	minRank int
}

// fuse combines per-leg ranked lists into fused scores via reciprocal-rank
// fusion: score(doc) = Σ 1/(k_rrf + rank_leg(doc)) over legs containing doc.
// Hits sharing a source id across legs collapse into one, origin becomes
// "both" when internal and external legs both produced it.
func fuse(krrf int, legs map[string][]LegHit, legOrigin map[string]domain.Origin) []fusedHit {
	type acc struct {
		excerpt       string
		fused         float64
		semanticScore float64
		lexicalScore  float64
		origins       map[domain.Origin]bool
		minRank       int
	}
	accum := make(map[string]*acc)

	for legName, hits := range legs {
		ranked := make([]LegHit, len(hits))
		copy(ranked, hits)
		sort.Slice(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })

		for i, h := range ranked {
			rank := i + 1
			a, ok := accum[h.SourceID]
			if !ok {
				a = &acc{excerpt: h.Excerpt, origins: make(map[domain.Origin]bool), minRank: rank}
				accum[h.SourceID] = a
			}
			if h.Excerpt != "" {
				a.excerpt = h.Excerpt
			}
			a.fused += 1.0 / float64(krrf+rank)
			if rank < a.minRank {
				a.minRank = rank
			}
			a.origins[legOrigin[legName]] = true
			switch legName {
			case "semantic":
				a.semanticScore = h.Score
			case "lexical":
				a.lexicalScore = h.Score
			}
		}
	}

	out := make([]fusedHit, 0, len(accum))
	for sourceID, a := range accum {
		origin := domain.OriginInternal
		if a.origins[domain.OriginInternal] && a.origins[domain.OriginExternal] {
			origin = domain.OriginBoth
		} else if a.origins[domain.OriginExternal] {
			origin = domain.OriginExternal
		}
		out = append(out, fusedHit{
			RetrievalHit: domain.RetrievalHit{
				SourceID:      sourceID,
				Excerpt:       a.excerpt,
				Origin:        origin,
				SemanticScore: a.semanticScore,
				LexicalScore:  a.lexicalScore,
				FusedScore:    a.fused,
			},
			minRank: a.minRank,
		})
	}
	return out
}

func (f *Federator) krrf() int {
	if f.Config.KRRF > 0 {
		return f.Config.KRRF
	}
	return 60
}

func (f *Federator) legDeadline() time.Duration {
	if f.Config.LegDeadline == "" {
		return 5 * time.Second
	}
	d, err := time.ParseDuration(f.Config.LegDeadline)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

func (f *Federator) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if f.Embedder == nil {
		return nil, errors.New("no embedding engine configured")
	}
	return f.Embedder.Embed(ctx, query)
}

func (f *Federator) runSemanticLeg(ctx context.Context, tenantID string, queryEmbedding []float32, k int, deadline time.Duration) ([]LegHit, error) {
	if f.Semantic == nil || queryEmbedding == nil {
		return nil, errors.New("semantic leg unavailable")
	}
	legCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()
	hits, err := f.Semantic.Search(legCtx, tenantID, queryEmbedding, k)
	if err != nil {
		logging.Get(logging.CategoryRetrieval).Warn("semantic leg failed: %v", err)
	}
	return hits, err
}

func (f *Federator) runLexicalLeg(ctx context.Context, tenantID string, query string, k int, deadline time.Duration) ([]LegHit, error) {
	if f.Lexical == nil {
		return nil, errors.New("lexical leg unavailable")
	}
	legCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()
	hits, err := f.Lexical.Search(legCtx, tenantID, query, k)
	if err != nil {
		logging.Get(logging.CategoryRetrieval).Warn("lexical leg failed: %v", err)
	}
	return hits, err
}

// runExternalLeg ranks caller-supplied documents in-memory using the same
// embedding + lexical scorers the internal legs rely on: cosine similarity
// against the query embedding, and a term-overlap lexical score.
func (f *Federator) runExternalLeg(query string, queryEmbedding []float32, docs []domain.ExternalDocument, k int) ([]LegHit, error) {
	if len(docs) == 0 {
		return nil, errors.New("no external documents supplied")
	}

	queryTerms := tokenize(query)
	var wg sync.WaitGroup
	hits := make([]LegHit, len(docs))

	for i, doc := range docs {
		wg.Add(1)
		go func(i int, doc domain.ExternalDocument) {
			defer wg.Done()
			lexScore := termOverlapScore(queryTerms, tokenize(doc.Text))
			semScore := 0.0
			if f.Embedder != nil && queryEmbedding != nil {
				if docEmbedding, err := f.Embedder.Embed(context.Background(), doc.Text); err == nil {
					semScore = cosineSimilarity(queryEmbedding, docEmbedding)
				}
			}
			hits[i] = LegHit{SourceID: doc.SourceID, Excerpt: excerpt(doc.Text, 240), Score: semScore + lexScore}
		}(i, doc)
	}
	wg.Wait()

	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// personalise reads the tenant's (or tenant:theme) centroid from the cache,
// without updating it, and returns a normalised shifted embedding, or
// ok=false if no fresh centroid exists.
func (f *Federator) personalise(tenantID, themeTag string, queryEmbedding []float32) ([]float32, bool) {
	key := tenantID
	if themeTag != "" {
		key = tenantID + ":" + themeTag
	}
	centroid := f.Centroids.Get(key)
	if centroid == nil {
		return nil, false
	}

	alpha := f.Config.PersonalizationAlpha
	shifted := make([]float32, len(queryEmbedding))
	for i := range queryEmbedding {
		var c float32
		if i < len(centroid) {
			c = centroid[i]
		}
		shifted[i] = float32(1-alpha)*queryEmbedding[i] + float32(alpha)*c
	}
	return normalise(shifted), true
}

func normalise(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	norm := math.Sqrt(sumSq)
	if norm == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func tokenize(text string) map[string]int {
	terms := make(map[string]int)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,;:!?\"'()[]{}")
		if word == "" {
			continue
		}
		terms[word]++
	}
	return terms
}

// termOverlapScore is a Jaccard overlap over term sets, a lightweight
// stand-in for a real lexical index when ranking small external-document
// sets that are never indexed.
func termOverlapScore(query, doc map[string]int) float64 {
	if len(query) == 0 || len(doc) == 0 {
		return 0
	}
	intersection := 0
	for term := range query {
		if _, ok := doc[term]; ok {
			intersection++
		}
	}
	union := len(query) + len(doc) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func excerpt(text string, maxLen int) string {
	text = strings.TrimSpace(text)
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen]
}


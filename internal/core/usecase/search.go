package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/grainlab/corpus-assistant/internal/core/domain"
	"github.com/grainlab/corpus-assistant/internal/core/ports"
)

const (
	defaultTopK = 10

	// outOfDomainThreshold is a hard cutoff, not a tunable: above it the
	// query is treated as off-topic and retrieval is skipped entirely.
	outOfDomainThreshold = 0.8

	// temporalWidenFactor requests extra candidates for temporal queries so
	// date sorting is not starved by lexical-only truncation.
	temporalWidenFactor = 5

	fusionRRFK = 60
)

// SearchUseCase runs the full retrieval pipeline: follow-up resolution,
// intent classification, lexical ranking, optional external vector fusion,
// and temporal re-ranking. The corpus lives in an immutable snapshot behind
// an atomic pointer, so concurrent searches never observe a partial reload.
type SearchUseCase struct {
	source     ports.CorpusSource
	thesaurus  *Thesaurus
	classifier ports.IntentClassifier
	resolver   *FollowupResolver
	vector     ports.VectorSearcher
	logger     *slog.Logger

	topK        int
	widenFactor int

	corpus atomic.Pointer[corpusIndex]
}

// NewSearchUseCase wires the pipeline. vector may be nil, which disables
// external recall fusion.
func NewSearchUseCase(
	source ports.CorpusSource,
	thesaurus *Thesaurus,
	classifier ports.IntentClassifier,
	resolver *FollowupResolver,
	vector ports.VectorSearcher,
	logger *slog.Logger,
	topK int,
	widenFactor int,
) *SearchUseCase {
	if thesaurus == nil {
		thesaurus = NewThesaurus(DefaultSynonyms())
	}
	if resolver == nil {
		resolver = NewFollowupResolver(nil, logger)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if topK <= 0 {
		topK = defaultTopK
	}
	if widenFactor <= 1 {
		widenFactor = temporalWidenFactor
	}
	return &SearchUseCase{
		source:      source,
		thesaurus:   thesaurus,
		classifier:  classifier,
		resolver:    resolver,
		vector:      vector,
		logger:      logger,
		topK:        topK,
		widenFactor: widenFactor,
	}
}

// Load performs the initial corpus load. Must run before serving searches.
func (uc *SearchUseCase) Load(ctx context.Context) (int, error) {
	return uc.Reload(ctx)
}

// Reload swaps in a freshly loaded snapshot. The previous snapshot stays
// valid for searches already in flight. A source yielding zero documents
// keeps the current snapshot in place.
func (uc *SearchUseCase) Reload(ctx context.Context) (int, error) {
	docs, err := uc.source.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load corpus: %w", err)
	}
	if len(docs) == 0 {
		return 0, domain.WrapError(domain.ErrCorpusEmpty, "reload corpus", fmt.Errorf("source returned no documents"))
	}

	uc.corpus.Store(buildCorpusIndex(docs))
	uc.logger.Info("corpus_loaded", "documents", len(docs))
	return len(docs), nil
}

// Search is the single public retrieval entry point. "No information" cases
// (empty corpus, empty filtered query, out-of-domain query) produce an empty
// passage list, never an error.
func (uc *SearchUseCase) Search(ctx context.Context, query string, history []domain.Turn, topK int) (*domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if topK <= 0 {
		topK = uc.topK
	}

	result := &domain.SearchResult{
		Query:       query,
		SearchQuery: query,
		Weights:     domain.NeutralWeights(),
	}

	index := uc.corpus.Load()
	if index.size() == 0 {
		uc.logger.Warn("search_empty_corpus")
		return result, nil
	}

	searchQuery := uc.resolver.Resolve(ctx, query, history)
	result.SearchQuery = searchQuery

	weights, err := uc.classifier.Classify(ctx, searchQuery)
	if err != nil {
		uc.logger.Warn("classifier_fallback", "error", err)
		weights = domain.NeutralWeights()
	}
	result.Weights = weights

	if weights.Other > outOfDomainThreshold {
		result.OutOfDomain = true
		return result, nil
	}

	q := prepareQuery(uc.thesaurus, searchQuery)
	if len(q.terms) == 0 {
		return result, nil
	}

	result.Temporal = isTemporalQuery(searchQuery)
	candidateLimit := topK
	if result.Temporal {
		candidateLimit = topK * uc.widenFactor
	}

	ranked := rankPassages(index, q, weights, candidateLimit)

	if uc.vector != nil {
		external, err := uc.vector.Search(ctx, searchQuery, candidateLimit)
		if err != nil {
			uc.logger.Warn("vector_recall_skipped", "error", err)
		} else if len(external) > 0 {
			ranked = trimPassages(fusePassagesRRF(ranked, external, fusionRRFK), candidateLimit)
		}
	}

	if result.Temporal {
		sortByPublicationDate(ranked)
	}

	result.Passages = trimPassages(ranked, topK)
	return result, nil
}

package usecase

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"testing"

	"github.com/grainlab/corpus-assistant/internal/core/domain"
	"github.com/grainlab/corpus-assistant/internal/core/ports"
)

type fakeSource struct {
	docs []domain.Document
	err  error
}

func (f *fakeSource) Load(_ context.Context) ([]domain.Document, error) {
	return f.docs, f.err
}

type fakeClassifier struct {
	weights domain.CategoryWeights
	err     error
}

func (f *fakeClassifier) Classify(_ context.Context, _ string) (domain.CategoryWeights, error) {
	if f.err != nil {
		return domain.CategoryWeights{}, f.err
	}
	return f.weights, nil
}

type fakeVector struct {
	passages []domain.ScoredPassage
	err      error
	calls    int
}

func (f *fakeVector) Search(_ context.Context, _ string, _ int) ([]domain.ScoredPassage, error) {
	f.calls++
	return f.passages, f.err
}

var sampleDocs = []domain.Document{
	{
		Title:       "Ethanol production hits record",
		Body:        "Ethanol production reached a new high this quarter.",
		Category:    domain.CategoryNews,
		PublishedAt: "Thu, 24 Jul 2025 09:25:24 -0500",
	},
	{
		Title:       "Ethanol policy position",
		Body:        "Our position on ethanol blending and renewable fuel standards.",
		Category:    domain.CategoryPolicy,
		PublishedAt: "Tue, 14 Mar 2023 08:00:00 -0500",
	},
	{
		Title:       "Corn export outlook",
		Body:        "Export volumes and tariff impacts on corn trade.",
		Category:    domain.CategoryNews,
		PublishedAt: "Wed, 10 Apr 2024 12:00:00 -0500",
	},
}

func newLoadedSearchUC(t *testing.T, docs []domain.Document, classifier *fakeClassifier, vector *fakeVector) *SearchUseCase {
	t.Helper()
	var vectorPort ports.VectorSearcher
	if vector != nil {
		vectorPort = vector
	}
	uc := NewSearchUseCase(
		&fakeSource{docs: docs},
		NewThesaurus(DefaultSynonyms()),
		classifier,
		nil,
		vectorPort,
		slog.Default(),
		0,
		0,
	)
	if len(docs) > 0 {
		if _, err := uc.Load(context.Background()); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
	}
	return uc
}

func TestSearchEmptyCorpusReturnsEmptyResult(t *testing.T) {
	uc := newLoadedSearchUC(t, nil, &fakeClassifier{weights: domain.NeutralWeights()}, nil)

	result, err := uc.Search(context.Background(), "ethanol", nil, 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(result.Passages) != 0 {
		t.Fatalf("expected no passages, got %d", len(result.Passages))
	}
}

func TestSearchOutOfDomainShortCircuits(t *testing.T) {
	classifier := &fakeClassifier{weights: domain.CategoryWeights{Other: 0.9}}
	uc := newLoadedSearchUC(t, sampleDocs, classifier, nil)

	result, err := uc.Search(context.Background(), "best pizza recipe", nil, 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if !result.OutOfDomain {
		t.Fatalf("expected out-of-domain flag")
	}
	if len(result.Passages) != 0 {
		t.Fatalf("expected no passages for out-of-domain query, got %d", len(result.Passages))
	}
}

func TestSearchOutOfDomainThresholdIsStrict(t *testing.T) {
	classifier := &fakeClassifier{weights: domain.CategoryWeights{News: 0.5, Policy: 0.5, General: 0.5, Other: 0.8}}
	uc := newLoadedSearchUC(t, sampleDocs, classifier, nil)

	result, err := uc.Search(context.Background(), "ethanol production", nil, 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if result.OutOfDomain {
		t.Fatalf("other exactly at 0.8 must not be rejected")
	}
	if len(result.Passages) == 0 {
		t.Fatalf("expected passages")
	}
}

func TestSearchClassifierErrorFallsBackToNeutral(t *testing.T) {
	classifier := &fakeClassifier{err: errors.New("llm down")}
	uc := newLoadedSearchUC(t, sampleDocs, classifier, nil)

	result, err := uc.Search(context.Background(), "ethanol production", nil, 0)
	if err != nil {
		t.Fatalf("classifier failure must not fail the search: %v", err)
	}
	if result.Weights != domain.NeutralWeights() {
		t.Fatalf("expected neutral weights, got %+v", result.Weights)
	}
	if len(result.Passages) == 0 {
		t.Fatalf("expected passages under neutral weights")
	}
}

func TestSearchStopWordOnlyQueryReturnsEmpty(t *testing.T) {
	uc := newLoadedSearchUC(t, sampleDocs, &fakeClassifier{weights: domain.NeutralWeights()}, nil)

	result, err := uc.Search(context.Background(), "what is it about and on", nil, 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(result.Passages) != 0 {
		t.Fatalf("expected no passages for stop-word-only query, got %d", len(result.Passages))
	}
}

func TestSearchTemporalQuerySortsByDate(t *testing.T) {
	uc := newLoadedSearchUC(t, sampleDocs, &fakeClassifier{weights: domain.NeutralWeights()}, nil)

	result, err := uc.Search(context.Background(), "latest ethanol", nil, 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if !result.Temporal {
		t.Fatalf("expected temporal flag")
	}
	if len(result.Passages) < 2 {
		t.Fatalf("expected both ethanol documents, got %d", len(result.Passages))
	}
	if result.Passages[0].Document.Title != "Ethanol production hits record" {
		t.Fatalf("newest document should lead, got %s", result.Passages[0].Document.Title)
	}
}

func TestSearchIsIdempotent(t *testing.T) {
	uc := newLoadedSearchUC(t, sampleDocs, &fakeClassifier{weights: domain.NeutralWeights()}, nil)

	first, err := uc.Search(context.Background(), "ethanol blending", nil, 0)
	if err != nil {
		t.Fatalf("first Search() error = %v", err)
	}
	second, err := uc.Search(context.Background(), "ethanol blending", nil, 0)
	if err != nil {
		t.Fatalf("second Search() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same query produced different results:\n%+v\n%+v", first, second)
	}
}

func TestSearchVectorErrorDegradesToLexicalOnly(t *testing.T) {
	vector := &fakeVector{err: errors.New("qdrant unreachable")}
	uc := newLoadedSearchUC(t, sampleDocs, &fakeClassifier{weights: domain.NeutralWeights()}, vector)

	result, err := uc.Search(context.Background(), "ethanol production", nil, 0)
	if err != nil {
		t.Fatalf("vector failure must not fail the search: %v", err)
	}
	if vector.calls != 1 {
		t.Fatalf("vector calls = %d", vector.calls)
	}
	if len(result.Passages) == 0 {
		t.Fatalf("expected lexical passages despite vector failure")
	}
}

func TestSearchFusesExternalHits(t *testing.T) {
	vector := &fakeVector{passages: []domain.ScoredPassage{
		{Document: &domain.Document{Title: "Corn export outlook", Category: domain.CategoryNews}, Score: 0.9},
	}}
	uc := newLoadedSearchUC(t, sampleDocs, &fakeClassifier{weights: domain.NeutralWeights()}, vector)

	result, err := uc.Search(context.Background(), "corn export", nil, 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(result.Passages) == 0 {
		t.Fatalf("expected fused passages")
	}
	if result.Passages[0].Document.Title != "Corn export outlook" {
		t.Fatalf("expected the doubly retrieved document first, got %s", result.Passages[0].Document.Title)
	}
}

func TestReloadKeepsSnapshotWhenSourceEmpties(t *testing.T) {
	source := &fakeSource{docs: sampleDocs}
	uc := NewSearchUseCase(source, nil, &fakeClassifier{weights: domain.NeutralWeights()}, nil, nil, slog.Default(), 0, 0)
	if _, err := uc.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	source.docs = nil
	if _, err := uc.Reload(context.Background()); !domain.IsKind(err, domain.ErrCorpusEmpty) {
		t.Fatalf("expected corpus-empty error, got %v", err)
	}

	result, err := uc.Search(context.Background(), "ethanol production", nil, 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(result.Passages) == 0 {
		t.Fatalf("previous snapshot should survive a failed reload")
	}
}

func TestSearchUsesResolvedQuery(t *testing.T) {
	uc := newLoadedSearchUC(t, sampleDocs, &fakeClassifier{weights: domain.NeutralWeights()}, nil)
	history := []domain.Turn{
		{Role: "user", Text: "how is ethanol production developing"},
		{Role: "assistant", Text: "Production is up."},
	}

	result, err := uc.Search(context.Background(), "more", history, 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if result.SearchQuery != "how is ethanol production developing more" {
		t.Fatalf("search query = %q", result.SearchQuery)
	}
	if len(result.Passages) == 0 {
		t.Fatalf("resolved query should retrieve ethanol documents")
	}
}

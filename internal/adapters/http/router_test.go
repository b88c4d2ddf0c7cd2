package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/grainlab/corpus-assistant/internal/core/domain"
	"github.com/grainlab/corpus-assistant/internal/observability/metrics"
)

type fakeSearcher struct {
	result *domain.SearchResult
	err    error

	gotQuery string
	gotTopK  int
}

func (f *fakeSearcher) Search(_ context.Context, query string, _ []domain.Turn, topK int) (*domain.SearchResult, error) {
	f.gotQuery = query
	f.gotTopK = topK
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeAnswerer struct {
	answer *domain.Answer
	err    error
}

func (f *fakeAnswerer) Answer(_ context.Context, _ string, _ []domain.Turn, _ int) (*domain.Answer, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.answer, nil
}

type fakeReloader struct {
	count int
	err   error
	calls int
}

func (f *fakeReloader) Reload(_ context.Context) (int, error) {
	f.calls++
	return f.count, f.err
}

type fakeBus struct {
	published int
	err       error
}

func (f *fakeBus) PublishReload(_ context.Context) error {
	f.published++
	return f.err
}

func (f *fakeBus) SubscribeReload(_ context.Context, _ func(context.Context) error) error {
	return nil
}

func newTestRouter(searcher *fakeSearcher, answerer *fakeAnswerer, reloader *fakeReloader, opts ...RouterOption) http.Handler {
	return NewRouter(searcher, answerer, reloader, metrics.NewHTTPServerMetrics("test"), "test", opts...).Handler()
}

func TestSearchEndpointReturnsResult(t *testing.T) {
	searcher := &fakeSearcher{
		result: &domain.SearchResult{
			Query:       "ethanol news",
			SearchQuery: "ethanol news",
			Passages: []domain.ScoredPassage{
				{Document: &domain.Document{Title: "Ethanol update"}, Score: 12.5},
			},
		},
	}
	handler := newTestRouter(searcher, &fakeAnswerer{}, &fakeReloader{})

	body := bytes.NewBufferString(`{"query":"ethanol news","top_k":3}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/search", body)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if searcher.gotQuery != "ethanol news" || searcher.gotTopK != 3 {
		t.Fatalf("searcher got query=%q topK=%d", searcher.gotQuery, searcher.gotTopK)
	}

	var decoded domain.SearchResult
	if err := json.Unmarshal(res.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(decoded.Passages) != 1 || decoded.Passages[0].Document.Title != "Ethanol update" {
		t.Fatalf("unexpected passages: %+v", decoded.Passages)
	}
}

func TestSearchEndpointRejectsBlankQuery(t *testing.T) {
	handler := newTestRouter(&fakeSearcher{}, &fakeAnswerer{}, &fakeReloader{})

	req := httptest.NewRequest(http.MethodPost, "/v1/search", bytes.NewBufferString(`{"query":"   "}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestSearchEndpointMapsInvalidInput(t *testing.T) {
	searcher := &fakeSearcher{err: domain.WrapError(domain.ErrInvalidInput, "search", errors.New("blank query"))}
	handler := newTestRouter(searcher, &fakeAnswerer{}, &fakeReloader{})

	req := httptest.NewRequest(http.MethodPost, "/v1/search", bytes.NewBufferString(`{"query":"q"}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid input, got %d", res.Code)
	}
}

func TestAnswerEndpointMapsTemporaryTo503(t *testing.T) {
	answerer := &fakeAnswerer{err: domain.WrapError(domain.ErrTemporary, "answer", errors.New("upstream timeout"))}
	handler := newTestRouter(&fakeSearcher{}, answerer, &fakeReloader{})

	req := httptest.NewRequest(http.MethodPost, "/v1/answer", bytes.NewBufferString(`{"question":"what is e15"}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", res.Code)
	}
}

func TestAnswerEndpointReturnsAnswerWithSources(t *testing.T) {
	answerer := &fakeAnswerer{
		answer: &domain.Answer{
			Text: "E15 is a 15% ethanol blend.",
			Sources: []domain.ScoredPassage{
				{Document: &domain.Document{Title: "E15 explained", URL: "https://example.org/e15"}},
			},
		},
	}
	handler := newTestRouter(&fakeSearcher{}, answerer, &fakeReloader{})

	req := httptest.NewRequest(http.MethodPost, "/v1/answer", bytes.NewBufferString(`{"question":"what is e15"}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var decoded domain.Answer
	if err := json.Unmarshal(res.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(decoded.Sources) != 1 || decoded.Sources[0].Document.URL != "https://example.org/e15" {
		t.Fatalf("unexpected sources: %+v", decoded.Sources)
	}
}

func TestReloadEndpointPublishesToBus(t *testing.T) {
	reloader := &fakeReloader{count: 42}
	bus := &fakeBus{}
	handler := newTestRouter(&fakeSearcher{}, &fakeAnswerer{}, reloader, WithReloadBus(bus))

	req := httptest.NewRequest(http.MethodPost, "/v1/corpus/reload", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if reloader.calls != 1 {
		t.Fatalf("expected one local reload, got %d", reloader.calls)
	}
	if bus.published != 1 {
		t.Fatalf("expected one publish, got %d", bus.published)
	}

	var decoded map[string]any
	if err := json.Unmarshal(res.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got := decoded["documents"]; got != float64(42) {
		t.Fatalf("documents = %v", got)
	}
}

func TestReloadEndpointMapsEmptyCorpusToConflict(t *testing.T) {
	reloader := &fakeReloader{err: domain.WrapError(domain.ErrCorpusEmpty, "reload", errors.New("no documents"))}
	handler := newTestRouter(&fakeSearcher{}, &fakeAnswerer{}, reloader)

	req := httptest.NewRequest(http.MethodPost, "/v1/corpus/reload", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", res.Code)
	}
}

func TestHealthz(t *testing.T) {
	handler := newTestRouter(&fakeSearcher{}, &fakeAnswerer{}, &fakeReloader{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
}

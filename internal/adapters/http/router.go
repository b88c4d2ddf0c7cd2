package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/grainlab/corpus-assistant/internal/core/domain"
	"github.com/grainlab/corpus-assistant/internal/core/ports"
	"github.com/grainlab/corpus-assistant/internal/observability/metrics"
)

type Router struct {
	searcher ports.PassageSearcher
	answerer ports.AnswerService
	reloader ports.CorpusReloader
	bus      ports.ReloadBus
	metrics  *metrics.HTTPServerMetrics
	service  string

	rateLimitRPS   float64
	rateLimitBurst int
	maxInFlight    int
}

type RouterOption func(*Router)

// WithReloadBus makes POST /v1/corpus/reload fan the reload out to the
// other instances after the local swap succeeds.
func WithReloadBus(bus ports.ReloadBus) RouterOption {
	return func(rt *Router) { rt.bus = bus }
}

func WithTrafficControl(rps float64, burst, maxInFlight int) RouterOption {
	return func(rt *Router) {
		rt.rateLimitRPS = rps
		rt.rateLimitBurst = burst
		rt.maxInFlight = maxInFlight
	}
}

func NewRouter(
	searcher ports.PassageSearcher,
	answerer ports.AnswerService,
	reloader ports.CorpusReloader,
	m *metrics.HTTPServerMetrics,
	service string,
	opts ...RouterOption,
) *Router {
	rt := &Router{
		searcher: searcher,
		answerer: answerer,
		reloader: reloader,
		metrics:  m,
		service:  service,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/search", rt.search)
	mux.HandleFunc("/v1/answer", rt.answer)
	mux.HandleFunc("/v1/corpus/reload", rt.reloadCorpus)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.maxInFlight > 0 {
		handler = backpressureMiddleware(handler, rt.maxInFlight, 100*time.Millisecond)
	}
	if rt.rateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	}
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type searchRequest struct {
	Query   string        `json:"query"`
	History []domain.Turn `json:"history"`
	TopK    int           `json:"top_k"`
}

func (rt *Router) search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	start := time.Now()
	result, err := rt.searcher.Search(r.Context(), req.Query, req.History, req.TopK)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordSearch(rt.service, "search", len(result.Passages), result.OutOfDomain, result.Temporal, time.Since(start))
	}

	writeJSON(w, http.StatusOK, result)
}

type answerRequest struct {
	Question string        `json:"question"`
	History  []domain.Turn `json:"history"`
	TopK     int           `json:"top_k"`
}

func (rt *Router) answer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}

	start := time.Now()
	answer, err := rt.answerer.Answer(r.Context(), req.Question, req.History, req.TopK)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordSearch(rt.service, "answer", len(answer.Sources), false, false, time.Since(start))
	}

	writeJSON(w, http.StatusOK, answer)
}

func (rt *Router) reloadCorpus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	count, err := rt.reloader.Reload(r.Context())
	if rt.metrics != nil {
		rt.metrics.RecordCorpusReload(rt.service, count, err)
	}
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	if rt.bus != nil {
		if err := rt.bus.PublishReload(r.Context()); err != nil {
			// The local reload succeeded; report the partial failure.
			writeJSON(w, http.StatusOK, map[string]any{
				"documents":     count,
				"publish_error": err.Error(),
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"documents": count})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

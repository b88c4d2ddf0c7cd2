package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/grainlab/corpus-assistant/internal/core/domain"
	"github.com/grainlab/corpus-assistant/internal/core/ports"
)

// continuationPhrases mark utterances that only make sense as follow-ups.
var continuationPhrases = []string{
	"more", "else", "again", "continue", "go on", "and?", "what about", "how about",
}

const shortQueryMaxWords = 3

// FollowupResolver rewrites a context-dependent query into a self-contained
// search query by prepending the inferred original topic. It is stateless
// per call and reads only the supplied history.
type FollowupResolver struct {
	analyzer ports.FollowupAnalyzer
	logger   *slog.Logger
}

func NewFollowupResolver(analyzer ports.FollowupAnalyzer, logger *slog.Logger) *FollowupResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &FollowupResolver{analyzer: analyzer, logger: logger}
}

// Resolve never fails: any error in the analyzer path is recovered locally
// by the heuristic fallback, and the worst case returns the query unchanged.
func (r *FollowupResolver) Resolve(ctx context.Context, query string, history []domain.Turn) string {
	if len(history) < 2 {
		return query
	}

	if r.analyzer != nil {
		judgment, err := r.analyzer.Analyze(ctx, query, history)
		if err == nil {
			topic := strings.TrimSpace(judgment.OriginalTopic)
			if judgment.IsFollowup && topic != "" {
				return topic + " " + query
			}
			return query
		}
		r.logger.Warn("followup_analyzer_fallback", "error", err)
	}

	return r.resolveHeuristic(query, history)
}

func (r *FollowupResolver) resolveHeuristic(query string, history []domain.Turn) string {
	if !isLikelyFollowup(query) {
		return query
	}

	// Most recent user turn that is itself a substantial question.
	for i := len(history) - 1; i >= 0; i-- {
		turn := history[i]
		if !strings.EqualFold(strings.TrimSpace(turn.Role), "user") {
			continue
		}
		text := strings.TrimSpace(turn.Text)
		if text == "" || isLikelyFollowup(text) {
			continue
		}
		return text + " " + query
	}
	return query
}

func isLikelyFollowup(query string) bool {
	if len(strings.Fields(query)) <= shortQueryMaxWords {
		return true
	}
	lowered := strings.ToLower(query)
	for _, phrase := range continuationPhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}

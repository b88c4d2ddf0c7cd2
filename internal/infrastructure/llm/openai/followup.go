package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/grainlab/corpus-assistant/internal/core/domain"
	"github.com/grainlab/corpus-assistant/internal/core/ports"
)

const (
	followupMaxTokens   = 150
	followupTemperature = 0.1
)

// FollowupAnalyzer asks the completion model whether the current query
// continues an earlier topic. Errors are recovered by the caller's
// heuristic fallback, never surfaced to the user.
type FollowupAnalyzer struct {
	completer ports.TextCompleter
}

func NewFollowupAnalyzer(completer ports.TextCompleter) *FollowupAnalyzer {
	return &FollowupAnalyzer{completer: completer}
}

func (a *FollowupAnalyzer) Analyze(ctx context.Context, query string, history []domain.Turn) (domain.FollowupJudgment, error) {
	raw, err := a.completer.Complete(ctx, followupSystemPrompt, buildFollowupPrompt(query, history), followupMaxTokens, followupTemperature)
	if err != nil {
		return domain.FollowupJudgment{}, domain.WrapError(domain.ErrClassifier, "analyze followup", err)
	}

	var reply struct {
		IsFollowup    bool    `json:"is_followup"`
		OriginalTopic *string `json:"original_topic"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &reply); err != nil {
		return domain.FollowupJudgment{}, domain.WrapError(domain.ErrClassifier, "analyze followup", fmt.Errorf("parse followup json: %w", err))
	}

	judgment := domain.FollowupJudgment{IsFollowup: reply.IsFollowup}
	if reply.OriginalTopic != nil {
		topic := strings.TrimSpace(*reply.OriginalTopic)
		if !strings.EqualFold(topic, "null") {
			judgment.OriginalTopic = topic
		}
	}
	return judgment, nil
}

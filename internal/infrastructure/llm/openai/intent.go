package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/grainlab/corpus-assistant/internal/core/domain"
	"github.com/grainlab/corpus-assistant/internal/core/ports"
)

const (
	intentMaxTokens   = 150
	intentTemperature = 0.1
)

// IntentClassifier delegates category weighting to the completion model.
// Callers are expected to fall back to neutral weights on any error.
type IntentClassifier struct {
	completer ports.TextCompleter
}

func NewIntentClassifier(completer ports.TextCompleter) *IntentClassifier {
	return &IntentClassifier{completer: completer}
}

func (c *IntentClassifier) Classify(ctx context.Context, query string) (domain.CategoryWeights, error) {
	raw, err := c.completer.Complete(ctx, intentSystemPrompt, buildIntentPrompt(query), intentMaxTokens, intentTemperature)
	if err != nil {
		return domain.CategoryWeights{}, domain.WrapError(domain.ErrClassifier, "classify intent", err)
	}

	weights, err := parseCategoryWeights(raw)
	if err != nil {
		return domain.CategoryWeights{}, domain.WrapError(domain.ErrClassifier, "classify intent", err)
	}
	return weights, nil
}

func parseCategoryWeights(raw string) (domain.CategoryWeights, error) {
	var reply struct {
		Policy  *float64 `json:"policy"`
		News    *float64 `json:"news"`
		General *float64 `json:"general"`
		Other   *float64 `json:"other"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &reply); err != nil {
		return domain.CategoryWeights{}, fmt.Errorf("parse weights json: %w", err)
	}
	if reply.Policy == nil || reply.News == nil || reply.General == nil || reply.Other == nil {
		return domain.CategoryWeights{}, fmt.Errorf("weights json is missing required keys")
	}
	return domain.CategoryWeights{
		Policy:  clampUnit(*reply.Policy),
		News:    clampUnit(*reply.News),
		General: clampUnit(*reply.General),
		Other:   clampUnit(*reply.Other),
	}, nil
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

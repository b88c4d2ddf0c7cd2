// Package keyword implements the deterministic, heuristic category
// classifier. It is the default strategy and the one tests rely on for
// reproducible pipeline output.
package keyword

import (
	"context"
	"strings"

	"github.com/grainlab/corpus-assistant/internal/core/domain"
)

var newsKeywords = []string{
	"news", "recent", "latest", "current", "today", "yesterday", "article", "update", "announce",
}

var policyKeywords = []string{
	"policy", "position", "stance", "regulation", "legislation", "support", "oppose", "priorities",
}

// Classifier assigns coarse, discrete category weights from keyword
// membership. It never returns an error.
type Classifier struct{}

func New() *Classifier {
	return &Classifier{}
}

func (c *Classifier) Classify(_ context.Context, query string) (domain.CategoryWeights, error) {
	lowered := strings.ToLower(query)

	news := containsAny(lowered, newsKeywords)
	policy := containsAny(lowered, policyKeywords)

	switch {
	case news && policy:
		return domain.CategoryWeights{Policy: 0.8, News: 0.8, General: 0.4, Other: 0.0}, nil
	case news:
		return domain.CategoryWeights{Policy: 0.2, News: 0.9, General: 0.4, Other: 0.0}, nil
	case policy:
		return domain.CategoryWeights{Policy: 0.9, News: 0.2, General: 0.4, Other: 0.0}, nil
	default:
		return domain.CategoryWeights{Policy: 0.6, News: 0.3, General: 0.7, Other: 0.0}, nil
	}
}

func containsAny(query string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(query, keyword) {
			return true
		}
	}
	return false
}

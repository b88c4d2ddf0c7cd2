package openai

import (
	"context"

	"github.com/grainlab/corpus-assistant/internal/core/domain"
	"github.com/grainlab/corpus-assistant/internal/core/ports"
)

const (
	answerMaxTokens   = 1000
	answerTemperature = 0.3
)

// Generator phrases the final user-facing answer from retrieved passages.
type Generator struct {
	completer ports.TextCompleter
}

func NewGenerator(completer ports.TextCompleter) *Generator {
	return &Generator{completer: completer}
}

func (g *Generator) GenerateAnswer(ctx context.Context, question string, history []domain.Turn, passages []domain.ScoredPassage) (string, error) {
	return g.completer.Complete(ctx, answerSystemPrompt, buildAnswerPrompt(question, history, passages), answerMaxTokens, answerTemperature)
}

package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/grainlab/corpus-assistant/internal/core/domain"
	"github.com/grainlab/corpus-assistant/internal/core/ports"
)

const noInformationMessage = "I don't have specific information about that topic. " +
	"Please try asking about corn farming, ethanol, trade policy, or other association topics."

// AnswerUseCase retrieves grounding passages and delegates answer phrasing
// to the generator port.
type AnswerUseCase struct {
	searcher  ports.PassageSearcher
	generator ports.AnswerGenerator
}

func NewAnswerUseCase(searcher ports.PassageSearcher, generator ports.AnswerGenerator) *AnswerUseCase {
	return &AnswerUseCase{searcher: searcher, generator: generator}
}

func (uc *AnswerUseCase) Answer(ctx context.Context, question string, history []domain.Turn, topK int) (*domain.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer", fmt.Errorf("question is required"))
	}

	result, err := uc.searcher.Search(ctx, question, history, topK)
	if err != nil {
		return nil, fmt.Errorf("search passages: %w", err)
	}
	if len(result.Passages) == 0 {
		return &domain.Answer{Text: noInformationMessage}, nil
	}

	text, err := uc.generator.GenerateAnswer(ctx, question, history, result.Passages)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	return &domain.Answer{
		Text:    strings.TrimSpace(text),
		Sources: result.Passages,
	}, nil
}

package ports

import (
	"context"

	"github.com/grainlab/corpus-assistant/internal/core/domain"
)

// PassageSearcher is the single inbound entry point of the retrieval core.
type PassageSearcher interface {
	Search(ctx context.Context, query string, history []domain.Turn, topK int) (*domain.SearchResult, error)
}

// AnswerService turns a question plus retrieved passages into a cited answer.
type AnswerService interface {
	Answer(ctx context.Context, question string, history []domain.Turn, topK int) (*domain.Answer, error)
}

// CorpusReloader swaps in a freshly loaded corpus snapshot.
type CorpusReloader interface {
	Reload(ctx context.Context) (int, error)
}

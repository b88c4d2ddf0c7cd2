package ports

import (
	"context"

	"github.com/grainlab/corpus-assistant/internal/core/domain"
)

// CorpusSource loads the full document set. Source format (JSON files,
// database rows) is a collaborator concern; the core only sees documents.
type CorpusSource interface {
	Load(ctx context.Context) ([]domain.Document, error)
}

// TextCompleter is the raw text-generation capability consumed by the
// delegated classifier, the follow-up analyzer, and the answer generator.
type TextCompleter interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error)
}

// IntentClassifier estimates per-category relevance weights for a query.
type IntentClassifier interface {
	Classify(ctx context.Context, query string) (domain.CategoryWeights, error)
}

// FollowupAnalyzer judges whether a query continues an earlier topic.
type FollowupAnalyzer interface {
	Analyze(ctx context.Context, query string, history []domain.Turn) (domain.FollowupJudgment, error)
}

// AnswerGenerator phrases the final answer from retrieved passages.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question string, history []domain.Turn, passages []domain.ScoredPassage) (string, error)
}

// VectorSearcher is the narrow interface to an external vector index. The
// core consumes its hits but never builds or maintains the index.
type VectorSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]domain.ScoredPassage, error)
}

// ReloadBus distributes corpus reload events across running instances.
type ReloadBus interface {
	PublishReload(ctx context.Context) error
	SubscribeReload(ctx context.Context, handler func(context.Context) error) error
}

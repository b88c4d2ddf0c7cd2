package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/grainlab/corpus-assistant/internal/config"
	"github.com/grainlab/corpus-assistant/internal/core/domain"
	"github.com/grainlab/corpus-assistant/internal/core/ports"
	"github.com/grainlab/corpus-assistant/internal/core/usecase"
	"github.com/grainlab/corpus-assistant/internal/infrastructure/classifier/keyword"
	"github.com/grainlab/corpus-assistant/internal/infrastructure/corpus/jsonfile"
	"github.com/grainlab/corpus-assistant/internal/infrastructure/corpus/postgres"
	"github.com/grainlab/corpus-assistant/internal/infrastructure/llm/openai"
	"github.com/grainlab/corpus-assistant/internal/infrastructure/queue/nats"
	"github.com/grainlab/corpus-assistant/internal/infrastructure/resilience"
	"github.com/grainlab/corpus-assistant/internal/infrastructure/vector/qdrant"
)

type App struct {
	Config config.Config

	SearchUC *usecase.SearchUseCase
	AnswerUC *usecase.AnswerUseCase
	Bus      ports.ReloadBus

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	source, closeSource, err := newCorpusSource(cfg)
	if err != nil {
		return nil, err
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	llmClient := openai.NewWithOptions(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, openai.Options{
		Timeout:            time.Duration(cfg.OpenAITimeout) * time.Second,
		RequestsPerSecond:  cfg.OpenAIRPS,
		ResilienceExecutor: executor,
	})

	var classifier ports.IntentClassifier
	var analyzer ports.FollowupAnalyzer
	switch cfg.ClassifierMode {
	case "llm":
		classifier = openai.NewIntentClassifier(llmClient)
		analyzer = openai.NewFollowupAnalyzer(llmClient)
	default:
		classifier = keyword.New()
	}

	var vector ports.VectorSearcher
	if cfg.RetrievalMode == "hybrid" {
		vectorClient := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)
		vector = vectorClient
		// Keep the external sparse mirror in sync with every corpus load.
		source = &indexingSource{inner: source, indexer: vectorClient, logger: logger}
	}

	thesaurus, err := newThesaurus(cfg)
	if err != nil {
		if closeSource != nil {
			closeSource()
		}
		return nil, err
	}

	resolver := usecase.NewFollowupResolver(analyzer, logger)
	searchUC := usecase.NewSearchUseCase(
		source,
		thesaurus,
		classifier,
		resolver,
		vector,
		logger,
		cfg.SearchTopK,
		cfg.TemporalWidenFactor,
	)
	answerUC := usecase.NewAnswerUseCase(searchUC, openai.NewGenerator(llmClient))

	if _, err := searchUC.Load(ctx); err != nil {
		if closeSource != nil {
			closeSource()
		}
		return nil, fmt.Errorf("initial corpus load: %w", err)
	}

	bus, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		if closeSource != nil {
			closeSource()
		}
		return nil, fmt.Errorf("init reload bus: %w", err)
	}

	return &App{
		Config:   cfg,
		SearchUC: searchUC,
		AnswerUC: answerUC,
		Bus:      bus,

		closeFn: func() {
			bus.Close()
			if closeSource != nil {
				closeSource()
			}
		},
	}, nil
}

// indexingSource mirrors every successful corpus load into the external
// recall index. Indexing failures are logged, not fatal: hybrid search
// degrades to lexical-only until the next reload.
type indexingSource struct {
	inner   ports.CorpusSource
	indexer *qdrant.Client
	logger  *slog.Logger
}

func (s *indexingSource) Load(ctx context.Context) ([]domain.Document, error) {
	docs, err := s.inner.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.indexer.IndexDocuments(ctx, docs); err != nil {
		s.logger.Warn("vector_index_sync_failed", "error", err)
	}
	return docs, nil
}

func newCorpusSource(cfg config.Config) (ports.CorpusSource, func(), error) {
	switch cfg.CorpusSource {
	case "postgres":
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		return postgres.NewSource(db), func() { _ = db.Close() }, nil
	default:
		return jsonfile.New(cfg.CorpusPath), nil, nil
	}
}

func newThesaurus(cfg config.Config) (*usecase.Thesaurus, error) {
	table, err := config.LoadSynonyms(cfg.SynonymsPath)
	if err != nil {
		return nil, fmt.Errorf("load synonyms: %w", err)
	}
	if table == nil {
		table = usecase.DefaultSynonyms()
	}
	return usecase.NewThesaurus(table), nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/clinvault/document-assistant/internal/config"
	"github.com/clinvault/document-assistant/internal/core/ports"
	"github.com/clinvault/document-assistant/internal/core/usecase"
	"github.com/clinvault/document-assistant/internal/infrastructure/extractor"
	"github.com/clinvault/document-assistant/internal/infrastructure/llm/openai"
	"github.com/clinvault/document-assistant/internal/infrastructure/queue/nats"
	"github.com/clinvault/document-assistant/internal/infrastructure/repository/postgres"
	"github.com/clinvault/document-assistant/internal/infrastructure/resilience"
	"github.com/clinvault/document-assistant/internal/infrastructure/storage/localfs"
	"github.com/clinvault/document-assistant/internal/infrastructure/storage/s3"
)

type App struct {
	Config config.Config

	Queue     ports.MessageQueue
	Repo      ports.DocumentRepository
	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor
	QueryUC   ports.QueryService
	ManagerUC ports.DocumentManager

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	embeddings := postgres.NewEmbeddingRepository(db)

	storage, err := newObjectStorage(cfg)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	llmClient := openai.NewWithOptions(
		cfg.OpenAIBaseURL,
		cfg.OpenAIAPIKey,
		cfg.OpenAIEmbedModel,
		cfg.OpenAIChatModel,
		openai.Options{
			RequestTimeout:     time.Duration(cfg.OpenAITimeoutSeconds) * time.Second,
			ResilienceExecutor: executor,
		},
	)
	embedder := openai.NewEmbedder(llmClient)
	synthesizer := openai.NewSynthesizer(llmClient)

	pipeline := usecase.NewEmbeddingPipeline(repo, extractor.New(), embedder, embeddings)

	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, pipeline)
	processUC := usecase.NewProcessDocumentUseCase(repo, storage, pipeline)
	queryUC := usecase.NewQueryUseCase(embedder, embeddings, synthesizer)
	managerUC := usecase.NewDocumentManagerUseCase(repo, storage, embeddings)

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,

		IngestUC:  ingestUC,
		ProcessUC: processUC,
		QueryUC:   queryUC,
		ManagerUC: managerUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func newObjectStorage(cfg config.Config) (ports.ObjectStorage, error) {
	switch cfg.StorageDriver {
	case "s3":
		return s3.New(s3.Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			PublicURL: cfg.S3PublicURL,
		})
	case "", "local":
		return localfs.New(cfg.StoragePath, cfg.StoragePublicURL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

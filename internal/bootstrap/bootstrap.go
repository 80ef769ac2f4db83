package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/nparshin/product-discovery/internal/config"
	"github.com/nparshin/product-discovery/internal/core/ports"
	"github.com/nparshin/product-discovery/internal/core/usecase"
	"github.com/nparshin/product-discovery/internal/infrastructure/graph/neo4jdb"
	"github.com/nparshin/product-discovery/internal/infrastructure/llm/ollama"
	"github.com/nparshin/product-discovery/internal/infrastructure/queue/nats"
	"github.com/nparshin/product-discovery/internal/infrastructure/repository/postgres"
	"github.com/nparshin/product-discovery/internal/infrastructure/resilience"
	"github.com/nparshin/product-discovery/internal/infrastructure/vector/qdrant"
)

type App struct {
	Config config.Config

	Queue     ports.MessageQueue
	Repo      ports.ProductRepository
	SearchUC  ports.ProductSearcher
	CatalogUC ports.ProductCatalog
	IndexUC   ports.ProductIndexer

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewProductRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ollamaClient := ollama.NewWithExecutor(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, executor)
	embedder := ollama.NewEmbedder(ollamaClient)
	generator := ollama.NewGenerator(ollamaClient)

	vectorDB := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)

	var graph ports.GraphStore
	var closeGraph func(context.Context) error
	if cfg.Neo4jEnabled {
		store, err := neo4jdb.New(cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
		if err != nil {
			return nil, fmt.Errorf("init knowledge graph: %w", err)
		}
		graph = store
		closeGraph = store.Close
	} else {
		disabled := neo4jdb.NewDisabled()
		graph = disabled
		closeGraph = disabled.Close
	}

	synonyms, err := config.LoadSynonymTable(cfg.SynonymsPath)
	if err != nil {
		return nil, fmt.Errorf("load synonym table: %w", err)
	}

	searchUC := usecase.NewSearchUseCase(synonyms, embedder, vectorDB, graph, generator, usecase.SearchParams{
		VectorLimit: cfg.SearchVectorLimit,
		TopN:        cfg.SearchTopN,
		ChunkCap:    cfg.SearchChunkCap,
	})
	catalogUC := usecase.NewCatalogUseCase(repo, queue)
	indexUC := usecase.NewIndexUseCase(repo, embedder, vectorDB, graph)

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,

		SearchUC:  searchUC,
		CatalogUC: catalogUC,
		IndexUC:   indexUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()

			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = closeGraph(closeCtx)
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

package bootstrap

import (
	"context"
	"log"
	"time"

	"agent-chatbot-be/internal/config"
	"agent-chatbot-be/internal/controller"
	"agent-chatbot-be/internal/pkg/logger"
	"agent-chatbot-be/internal/repository/contract"
	"agent-chatbot-be/internal/repository/implementation"
	"agent-chatbot-be/internal/repository/memory"
	"agent-chatbot-be/internal/service"
	"agent-chatbot-be/pkg/embedding"
	"agent-chatbot-be/pkg/embedding/jina"
	"agent-chatbot-be/pkg/indexer"
	"agent-chatbot-be/pkg/rerank"
	"agent-chatbot-be/pkg/retrieval"
	"agent-chatbot-be/pkg/vectorindex"

	pktNats "agent-chatbot-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	KnowledgeController controller.IKnowledgeController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Shared infrastructure (Exposed for CLI tools)
	Indexer      *indexer.Indexer
	Categories   contract.CategoryRepository
	Logger       logger.ILogger
	EventsPubSub *gochannel.GoChannel
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	contentRepo := implementation.NewContentRepository(db)
	categoryRepo := implementation.NewCategoryRepository(db)
	sessionRepo := memory.NewSessionRepository()

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Model Registry
	// Providers are loaded once and shared read-only across requests. A
	// failed probe is fatal: the engine must refuse to start rather than
	// degrade into empty search results.
	probeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "jina" {
		embeddingProvider = jina.NewJinaProvider(cfg.Ai.JinaAPIKey)
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	} else {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	}
	if err := embeddingProvider.Probe(probeCtx); err != nil {
		log.Fatalf("[FATAL] Embedding provider unavailable: %v", err)
	}

	var reranker rerank.Reranker
	if cfg.Ai.RerankerEnabled {
		jinaReranker := rerank.NewJinaReranker(cfg.Ai.JinaAPIKey, cfg.Ai.RerankerModel)
		if err := jinaReranker.Probe(probeCtx); err != nil {
			log.Fatalf("[FATAL] Reranker unavailable: %v", err)
		}
		reranker = jinaReranker
		log.Printf("[INFO] Using Reranker: JINA (%s)", cfg.Ai.RerankerModel)
	}

	// 4. Vector Index Backend
	var index vectorindex.Index
	if cfg.Vector.Backend == "qdrant" {
		qdrantIndex, err := vectorindex.NewQdrantIndex(cfg.Vector.QdrantHost, cfg.Vector.QdrantPort, cfg.Vector.Dimension)
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize Qdrant index: %v", err)
		}
		index = qdrantIndex
		log.Printf("[INFO] Using Vector Backend: QDRANT (%s:%d)", cfg.Vector.QdrantHost, cfg.Vector.QdrantPort)
	} else {
		index = vectorindex.NewPgvectorIndex(db)
		log.Printf("[INFO] Using Vector Backend: PGVECTOR")
	}

	// 5. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// 6. Retrieval Pipeline
	embeddingCache := embedding.NewCache(embeddingProvider, cfg.Retrieval.EmbeddingCacheSize)
	resultCache := retrieval.NewRedisResultCache(
		rdb,
		time.Duration(cfg.Retrieval.ResultCacheTTLSecs)*time.Second,
		sysLogger,
	)

	engine := retrieval.NewEngine(
		embeddingCache,
		index,
		reranker,
		resultCache,
		contentRepo,
		sysLogger,
	)

	knowledgeIndexer := indexer.NewIndexer(
		index,
		embeddingProvider,
		contentRepo,
		categoryRepo,
		resultCache,
		sysLogger,
	)

	// 7. Services
	publisherService := service.NewPublisherService(cfg.Ai.IngestTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Ai.IngestTopic,
		contentRepo,
		knowledgeIndexer,
	)

	knowledgeService := service.NewKnowledgeService(
		engine,
		knowledgeIndexer,
		contentRepo,
		categoryRepo,
		sessionRepo,
		publisherService,
		natsPub,
		cfg.Retrieval,
		sysLogger,
	)

	// 8. Controllers
	return &Container{
		KnowledgeController: controller.NewKnowledgeController(knowledgeService),

		ConsumerService: consumerService,

		Indexer:      knowledgeIndexer,
		Categories:   categoryRepo,
		Logger:       sysLogger,
		EventsPubSub: pubSub,
	}
}

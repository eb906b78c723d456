package bootstrap

import (
	"context"
	"log"
	"os"
	"time"

	"book-discovery-be/internal/config"
	"book-discovery-be/internal/controller"
	"book-discovery-be/internal/handler"
	"book-discovery-be/internal/pkg/logger"
	"book-discovery-be/internal/repository/cache"
	"book-discovery-be/internal/repository/contract"
	"book-discovery-be/internal/repository/implementation"
	"book-discovery-be/internal/repository/memory"
	"book-discovery-be/internal/repository/unitofwork"
	"book-discovery-be/internal/service"
	"book-discovery-be/internal/websocket"
	"book-discovery-be/pkg/ai/expander"
	"book-discovery-be/pkg/bus"
	"book-discovery-be/pkg/discovery"
	"book-discovery-be/pkg/embedding"
	"book-discovery-be/pkg/embedding/openai"
	"book-discovery-be/pkg/llm"
	"book-discovery-be/pkg/llm/factory"
	"book-discovery-be/pkg/session"
	"book-discovery-be/pkg/survey"
	"book-discovery-be/pkg/vectorindex"
	"book-discovery-be/pkg/vectorindex/pgvector"
	"book-discovery-be/pkg/vectorindex/pinecone"
	"book-discovery-be/pkg/vectorindex/qdrant"

	pktNats "book-discovery-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	SurveyController    controller.ISurveyController
	DiscoveryController controller.IDiscoveryController

	// Background Services (Exposed for main.go to run)
	ConsumerService     service.IConsumerService
	SessionEventService *service.SessionEventService

	// WebSockets
	SessionStreamHandler *handler.SessionStreamHandler
	WebSocketHub         *websocket.Hub

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())

	var diagnostics logger.ILogger = logger.NewNopLogger()
	if cfg.App.DiagnosticsEnabled {
		diagnostics = logger.NewIsolatedLogger(cfg.App.DiagnosticsLogPath)
		log.Printf("[INFO] Prompt diagnostics enabled (%s)", cfg.App.DiagnosticsLogPath)
	}

	c := &Container{}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		c.closers = append(c.closers, natsPub.Close)
	}
	eventPublisher := bus.NewNatsPublisher(natsPub, sysLogger)

	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	} else {
		c.closers = append(c.closers, natsSub.Close)
	}

	// Redis (shared session store and cross-instance WebSocket fan-out)
	rdb := newRedisClient(cfg)
	if rdb != nil {
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	// 3. AI Providers
	embeddingProvider := newEmbeddingProvider(cfg)

	llmProvider, err := newLLMProvider(cfg)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	index, err := newVectorIndex(cfg, db)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize vector index: %v", err)
	}

	// 4. Session Storage
	sessions := session.NewManager(newSessionRepository(cfg, rdb))

	catalog, err := loadCatalog(cfg.Survey.CatalogPath)
	if err != nil {
		log.Fatalf("[FATAL] Failed to load survey catalog: %v", err)
	}

	// 5. Services
	publisherService := service.NewPublisherService(pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.PersistenceTopic,
		cfg.App.IndexTopic,
		uowFactory,
		embeddingProvider,
		sysLogger,
	)

	surveyService := service.NewSurveyService(
		sessions,
		catalog,
		expander.NewExpander(llmProvider, cfg.Survey.ExpansionTimeout, diagnostics),
		publisherService,
		eventPublisher,
		cfg.App.PersistenceTopic,
		sysLogger,
	)

	discoveryService := service.NewDiscoveryService(
		sessions,
		discovery.NewDescriber(llmProvider, sysLogger, diagnostics),
		discovery.NewRetriever(embeddingProvider, index, cfg.Retrieval.TopK, cfg.Retrieval.MaxTopK),
		discovery.NewReconciler(llmProvider, discovery.TitleSubstringMatcher{}, diagnostics),
		publisherService,
		eventPublisher,
		cfg.App.IndexTopic,
		sysLogger,
	)

	// 6. Session event stream
	wsLogger := logger.NewIsolatedLogger("logs/session_stream.log")
	c.WebSocketHub = websocket.NewHub(rdb, wsLogger)
	c.SessionStreamHandler = handler.NewSessionStreamHandler(sessions, c.WebSocketHub, wsLogger)
	if natsSub != nil {
		c.SessionEventService = service.NewSessionEventService(natsSub, c.WebSocketHub, wsLogger)
	}

	// 7. Controllers
	c.SurveyController = controller.NewSurveyController(surveyService)
	c.DiscoveryController = controller.NewDiscoveryController(discoveryService)
	c.ConsumerService = consumerService

	return c
}

// Close releases broker and cache connections in reverse order of creation
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func newEmbeddingProvider(cfg *config.Config) embedding.EmbeddingProvider {
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
		return embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	case "jina":
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
		return openai.NewJinaProvider(cfg.Keys.Jina)
	case "gemini":
		// EMBEDDING_MODEL defaults to an OpenAI model name, so Gemini keeps its own default
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
		return embedding.NewGeminiProvider(cfg.Keys.GoogleGemini, "")
	default:
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Ai.EmbeddingModel)
		return openai.NewOpenAIProvider(cfg.Keys.OpenAI, cfg.Ai.EmbeddingBaseURL, cfg.Ai.EmbeddingModel)
	}
}

func newLLMProvider(cfg *config.Config) (llm.LLMProvider, error) {
	apiKey := cfg.Keys.Anthropic
	baseURL := cfg.Ai.LLMBaseURL
	switch cfg.Ai.LLMProvider {
	case "huggingface":
		apiKey = cfg.Keys.HuggingFace
	case "ollama":
		if baseURL == "" {
			baseURL = cfg.Ai.OllamaBaseURL
		}
	}
	return factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, baseURL, apiKey)
}

func newVectorIndex(cfg *config.Config, db *gorm.DB) (vectorindex.Index, error) {
	switch cfg.Retrieval.IndexKind {
	case "qdrant":
		log.Printf("[INFO] Using Vector Index: QDRANT (%s)", cfg.Retrieval.Collection)
		return qdrant.NewIndex(qdrant.Config{
			URL:        cfg.Retrieval.IndexURL,
			APIKey:     cfg.Keys.Qdrant,
			Collection: cfg.Retrieval.Collection,
		}), nil
	case "pinecone":
		log.Printf("[INFO] Using Vector Index: PINECONE")
		return pinecone.NewIndex(cfg.Retrieval.IndexURL, cfg.Keys.Pinecone, cfg.Retrieval.Collection)
	default:
		log.Printf("[INFO] Using Vector Index: PGVECTOR")
		return pgvector.NewIndex(implementation.NewBookEmbeddingRepository(db)), nil
	}
}

func newRedisClient(cfg *config.Config) *redis.Client {
	if cfg.App.RedisURL == "" {
		if cfg.App.SessionStore == "redis" {
			log.Printf("[WARN] SESSION_STORE=redis but REDIS_URL is empty, falling back to memory")
		}
		return nil
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}
	return rdb
}

func newSessionRepository(cfg *config.Config, rdb *redis.Client) contract.SessionRepository {
	if cfg.App.SessionStore != "redis" || rdb == nil {
		return memory.NewSessionRepository(cfg.Survey.SessionTTL)
	}
	log.Printf("[INFO] Using Session Store: REDIS")
	return cache.NewSessionRepository(rdb, cfg.Survey.SessionTTL)
}

func loadCatalog(path string) ([]survey.Question, error) {
	if path == "" {
		return survey.DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return survey.ParseCatalog(data)
}

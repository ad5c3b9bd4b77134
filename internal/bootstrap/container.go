package bootstrap

import (
	"context"
	"log"

	"docpilot-be/internal/config"
	"docpilot-be/internal/controller"
	"docpilot-be/internal/pkg/logger"
	"docpilot-be/internal/pkg/metrics"
	"docpilot-be/internal/pkg/serverutils"
	"docpilot-be/internal/repository/implementation"
	"docpilot-be/internal/repository/unitofwork"
	"docpilot-be/internal/service"
	"docpilot-be/internal/websocket"
	"docpilot-be/pkg/analytics"
	"docpilot-be/pkg/embedding"
	"docpilot-be/pkg/llm/factory"
	pkgNats "docpilot-be/pkg/nats"
	"docpilot-be/pkg/retrieval"
	"docpilot-be/pkg/vectorstore"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	DocumentController     controller.IDocumentController
	ProjectController      controller.IProjectController
	ChatController         controller.IChatController
	ConversationController controller.IConversationController
	AnalyticsController    controller.IAnalyticsController

	// Background services (main.go starts these)
	ConsumerService service.IConsumerService

	// Live dashboard
	Hub *websocket.Hub

	// Shared infrastructure kept for shutdown
	Logger    logger.ILogger
	NatsPub   *pkgNats.Publisher
	Redis     *redis.Client
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	collector := metrics.NewCollector(prometheus.DefaultRegisterer)

	// 2. Event bus (in-process embed queue)
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. External capabilities
	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	hubLogger := logger.NewIsolatedLogger(cfg.App.HubLogFilePath)
	hub := websocket.NewHub(rdb, hubLogger)
	go hub.Run()

	// 5. Core pipeline
	chunkRepo := implementation.NewDocumentChunkRepository(db)
	vectorStore := vectorstore.NewAdapter(chunkRepo, embeddingProvider, sysLogger)
	retriever := retrieval.NewEngine(vectorStore, sysLogger)

	snapshotRepo := implementation.NewAnalyticsSnapshotRepository(db)
	aggregator := analytics.NewAggregator(snapshotRepo, sysLogger, hub)

	publisherService := service.NewPublisherService(cfg.Keys.EmbedTopicName, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.EmbedTopicName,
		uowFactory,
		vectorStore,
		aggregator,
		collector,
		sysLogger,
	)

	// 6. Domain services
	documentService := service.NewDocumentService(
		uowFactory,
		publisherService,
		vectorStore,
		aggregator,
		natsPub,
		collector,
		sysLogger,
	)
	projectService := service.NewProjectService(uowFactory, vectorStore, sysLogger)
	chatService := service.NewChatService(
		uowFactory,
		retriever,
		llmProvider,
		aggregator,
		natsPub,
		collector,
		sysLogger,
		cfg.Chat.RetrievalTopK,
	)
	conversationService := service.NewConversationService(uowFactory)
	analyticsService := service.NewAnalyticsService(aggregator, collector)

	chatLimiter := serverutils.ChatRateLimiter(rdb, cfg.Chat.RateLimit, cfg.Chat.RateLimitWindow)

	return &Container{
		DocumentController:     controller.NewDocumentController(documentService),
		ProjectController:      controller.NewProjectController(projectService),
		ChatController:         controller.NewChatController(chatService, chatLimiter),
		ConversationController: controller.NewConversationController(conversationService),
		AnalyticsController:    controller.NewAnalyticsController(analyticsService),

		ConsumerService: consumerService,

		Hub: hub,

		Logger:  sysLogger,
		NatsPub: natsPub,
		Redis:   rdb,
	}
}

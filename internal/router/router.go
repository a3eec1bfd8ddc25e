package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskboard-api/internal/auth"
	"taskboard-api/internal/handler"
	"taskboard-api/internal/metrics"
	"taskboard-api/internal/middleware"
	"taskboard-api/internal/realtime"
	"taskboard-api/internal/repository"
	"taskboard-api/internal/service"
)

// Config holds the dependencies of the HTTP surface
type Config struct {
	DB        *gorm.DB
	Logger    *zap.Logger
	JWTSecret string
	JWTIssuer string
	TokenTTL  time.Duration
	BasePath  string
	Metrics   *metrics.Metrics

	// Redis is only used by the readiness probe; nil skips the check
	Redis *redis.Client
	// Hub and Publisher default to a fresh hub with an in-process broker
	Hub       *realtime.Hub
	Publisher realtime.Publisher

	AllowedOrigins        []string
	SendBufferSize        int
	AuthRequestsPerMinute int
	AuthBurst             int
}

// Setup wires repositories, services and handlers and returns the engine
func Setup(cfg Config) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	r.Use(middleware.ConnectionID())

	hub := cfg.Hub
	if hub == nil {
		hub = realtime.NewHub()
	}
	observer := realtimeObserver(cfg.Metrics)
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = realtime.NewLocalBroker(hub, observer)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(cfg.DB)
	boardRepo := repository.NewBoardRepository(cfg.DB)
	cardRepo := repository.NewCardRepository(cfg.DB)
	taskRepo := repository.NewTaskRepository(cfg.DB)
	invitationRepo := repository.NewInvitationRepository(cfg.DB)

	// Initialize services
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	accessService := service.NewAccessService(boardRepo, logger)
	authService := service.NewAuthService(userRepo, tokens, logger)
	boardService := service.NewBoardService(boardRepo, userRepo, accessService, publisher, cfg.Metrics, logger)
	cardService := service.NewCardService(cardRepo, accessService, publisher, cfg.Metrics, logger)
	taskService := service.NewTaskService(taskRepo, cardRepo, accessService, publisher, cfg.Metrics, logger)
	invitationService := service.NewInvitationService(invitationRepo, boardRepo, userRepo, publisher, cfg.Metrics, logger)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handler.NewAuthHandler(authService, logger)
	boardHandler := handler.NewBoardHandler(boardService, logger)
	cardHandler := handler.NewCardHandler(cardService, logger)
	taskHandler := handler.NewTaskHandler(taskService, logger)
	invitationHandler := handler.NewInvitationHandler(invitationService, logger)
	wsServer := realtime.NewServer(hub, publisher, tokens, accessService, logger, observer, realtime.ServerOptions{
		SendBufferSize: cfg.SendBufferSize,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	// Health and metrics endpoints (no auth)
	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)
	metricsHandler := gin.WrapH(promhttp.Handler())
	r.GET("/metrics", metricsHandler)

	api := r.Group(cfg.BasePath)
	if cfg.BasePath != "" && cfg.BasePath != "/" {
		api.GET("/metrics", metricsHandler)
		api.GET("/health", healthHandler.Health)
	}
	api.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// The websocket authenticates with ?token= since browsers cannot set headers on upgrade
	api.GET("/ws", wsServer.HandleWebSocket)

	authRoutes := api.Group("/auth")
	authRoutes.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.AuthRequestsPerMinute, cfg.AuthBurst)))
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	protected := api.Group("")
	protected.Use(middleware.AuthWithValidator(tokens))
	{
		protected.GET("/users", authHandler.ListUsers)
		protected.GET("/users/me", authHandler.Me)

		boards := protected.Group("/boards")
		{
			boards.POST("", boardHandler.CreateBoard)
			boards.GET("", boardHandler.ListBoards)
			boards.GET("/:boardId", boardHandler.GetBoard)
			boards.PUT("/:boardId", boardHandler.UpdateBoard)
			boards.DELETE("/:boardId", boardHandler.DeleteBoard)
			boards.GET("/:boardId/members", boardHandler.ListMembers)

			boards.POST("/:boardId/cards", cardHandler.CreateCard)
			boards.GET("/:boardId/cards", cardHandler.ListCards)
			boards.POST("/:boardId/cards/reorder", cardHandler.ReorderCards)
			boards.GET("/:boardId/cards/:cardId", cardHandler.GetCard)
			boards.PUT("/:boardId/cards/:cardId", cardHandler.UpdateCard)
			boards.DELETE("/:boardId/cards/:cardId", cardHandler.DeleteCard)

			boards.POST("/:boardId/cards/:cardId/tasks", taskHandler.CreateTask)
			boards.GET("/:boardId/cards/:cardId/tasks", taskHandler.ListTasks)
			boards.POST("/:boardId/cards/:cardId/tasks/reorder", taskHandler.ReorderTasks)
			boards.GET("/:boardId/cards/:cardId/tasks/:taskId", taskHandler.GetTask)
			boards.PUT("/:boardId/cards/:cardId/tasks/:taskId", taskHandler.UpdateTask)
			boards.DELETE("/:boardId/cards/:cardId/tasks/:taskId", taskHandler.DeleteTask)
			boards.POST("/:boardId/cards/:cardId/tasks/:taskId/assign", taskHandler.AssignTask)
			boards.DELETE("/:boardId/cards/:cardId/tasks/:taskId/assign/:memberId", taskHandler.UnassignTask)
			boards.POST("/:boardId/tasks/move", taskHandler.MoveTask)
		}

		// :id is the board id on create and the invitation id on respond
		invitations := protected.Group("/invitations")
		{
			invitations.GET("", invitationHandler.ListMyInvitations)
			invitations.POST("/:id", invitationHandler.CreateInvitation)
			invitations.POST("/:id/respond", invitationHandler.RespondInvitation)
		}
	}

	return r
}

func realtimeObserver(m *metrics.Metrics) realtime.Observer {
	if m == nil {
		return nil
	}
	return m
}

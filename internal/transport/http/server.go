package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "newsrag/internal/app"
	"newsrag/internal/bootstrap"
	"newsrag/internal/cache"
	"newsrag/internal/platform/rabbitmq"
	"newsrag/internal/repository"
	"newsrag/internal/transport/http/handler"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	historyLog := cache.NewHistoryLog(
		app.Redis,
		time.Duration(app.Config.Redis.HistoryTTLSeconds)*time.Second,
	)
	messageRepo := repository.NewMessageRepository(app.MySQL)
	publisher := rabbitmq.NewMessagePublisher(app.MQConn, app.Config.RabbitMQ.MessagePersistQueue)

	// a nil *ai.ChatClient must stay a nil interface so the service falls
	// back to the canned stream
	var chatModel appsvc.ChatModel
	if app.ChatModel != nil {
		chatModel = app.ChatModel
	}

	chatService := appsvc.NewChatService(
		app.Embedder,
		app.VectorStore,
		chatModel,
		historyLog,
		publisher,
		messageRepo,
		app.Config.Chat.TopK,
		app.Config.Chat.MaxSources,
	)
	chatHandler := handler.NewChatHandler(chatService)

	v1 := router.Group("/api/v1")
	chatGroup := v1.Group("/chat")
	chatGroup.POST("/:sessionID/stream", chatHandler.StreamMessage)
	chatGroup.POST("/:sessionID", chatHandler.SendMessage)
	chatGroup.GET("/:sessionID/history", chatHandler.GetHistory)
	chatGroup.DELETE("/:sessionID", chatHandler.ClearSession)

	return router
}

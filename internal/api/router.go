package api

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/companion_go_server/config"
	"github.com/qs3c/companion_go_server/internal/api/handler"
	"github.com/qs3c/companion_go_server/internal/api/middleware"
)

type Router struct {
	botHandler       *handler.BotHandler
	webhookHandler   *handler.WebhookHandler
	quotaHandler     *handler.QuotaHandler
	websocketHandler *handler.WebSocketHandler
	cfg              *config.Config
}

func NewRouter(
	botHandler *handler.BotHandler,
	webhookHandler *handler.WebhookHandler,
	quotaHandler *handler.QuotaHandler,
	websocketHandler *handler.WebSocketHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		botHandler:       botHandler,
		webhookHandler:   webhookHandler,
		quotaHandler:     quotaHandler,
		websocketHandler: websocketHandler,
		cfg:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	engine.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "online", "service": "Companion Bot"})
	})

	api := engine.Group("/api/v1")
	{
		// WebSocket（令牌在 query 里自行校验）
		api.GET("/ws", r.websocketHandler.Handle)

		// 支付回调，签名校验代替认证
		api.POST("/payment/webhook", r.webhookHandler.HandleStripe)

		// 网关接口，需要网关令牌
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			authenticated.POST("/bot/update", r.botHandler.HandleUpdate)
			authenticated.GET("/users/:id/quota", r.quotaHandler.GetQuota)
		}
	}

	return engine
}

package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/qs3c/companion_go_server/config"
	"github.com/qs3c/companion_go_server/internal/api"
	"github.com/qs3c/companion_go_server/internal/api/handler"
	"github.com/qs3c/companion_go_server/internal/database"
	"github.com/qs3c/companion_go_server/internal/pkg/cron"
	"github.com/qs3c/companion_go_server/internal/pkg/llm"
	"github.com/qs3c/companion_go_server/internal/pkg/payment"
	"github.com/qs3c/companion_go_server/internal/pkg/pubsub"
	"github.com/qs3c/companion_go_server/internal/pkg/queue"
	"github.com/qs3c/companion_go_server/internal/pkg/ws"
	"github.com/qs3c/companion_go_server/internal/repository"
	"github.com/qs3c/companion_go_server/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 初始化 Queue 和出站投递
	imageQueue := queue.NewQueue(rdb, cfg.Queue.ImageQueue)
	publisher := pubsub.NewPublisher(rdb)
	transport := pubsub.NewRedisTransport(publisher)

	// 初始化 WebSocket Hub，订阅出站频道并转发给网关连接
	wsHub := ws.NewHub()
	subscriber := pubsub.NewSubscriber(rdb)
	go func() {
		for {
			err := subscriber.Subscribe(context.Background(), func(msg *pubsub.OutboundMessage) {
				wsHub.SendToChat(msg.ChatID, &ws.Message{Type: msg.Kind, Data: msg})
			})
			if err != nil {
				log.Printf("Outbound subscriber stopped: %v, retrying", err)
				time.Sleep(time.Second)
			}
		}
	}()
	log.Println("WebSocket hub started")

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	characterRepo := repository.NewCharacterRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	checkpointRepo := repository.NewCheckpointRepository(db)
	imageJobRepo := repository.NewImageJobRepository(db)

	// 初始化 Service
	userService := service.NewUserService(userRepo)
	quotaService := service.NewQuotaService()
	sessionService := service.NewSessionService(sessionRepo, characterRepo, quotaService)
	checkpointService := service.NewCheckpointService(checkpointRepo, sessionService)
	generator := llm.NewClient(&cfg.LLM)
	chatService := service.NewChatService(
		userService,
		sessionService,
		quotaService,
		imageJobRepo,
		imageQueue,
		generator,
		transport,
	)

	// 初始化 Handler
	botHandler := handler.NewBotHandler(
		userService,
		sessionService,
		checkpointService,
		chatService,
		transport,
		cfg.Payment.PaymentLink,
	)
	verifier := payment.NewVerifier(cfg.Payment.WebhookSecret, time.Duration(cfg.Payment.ToleranceSeconds)*time.Second)
	webhookHandler := handler.NewWebhookHandler(verifier, userService)
	quotaHandler := handler.NewQuotaHandler(userService)
	websocketHandler := handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret)

	// 启动定时任务
	cronService := cron.NewService(userService)
	cronService.Start()
	defer cronService.Stop()

	// 初始化 Router
	router := api.NewRouter(
		botHandler,
		webhookHandler,
		quotaHandler,
		websocketHandler,
		cfg,
	)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

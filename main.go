package main

import (
	"context"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"shortkat/internal/chat"
	"shortkat/internal/config"
	"shortkat/internal/handlers"
	"shortkat/internal/identity"
	"shortkat/internal/kvstore"
	"shortkat/internal/middleware"
	"shortkat/internal/observability"
	"shortkat/internal/rabbitmq"
	"shortkat/internal/repositories"
	"shortkat/internal/storage"
	"shortkat/internal/telemetry"
	"shortkat/internal/ws"
)

const serviceName = "shortkat"

func main() {
	cfg := config.Load()
	ctx := context.Background()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.OTLPEndpoint, serviceName, cfg.Environment)
	if err != nil {
		log.Printf("tracing disabled: %v", err)
	}
	if shutdownTracer != nil {
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				log.Printf("tracer shutdown: %v", err)
			}
		}()
	}

	store, err := connectStore(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to connect to store (%s): %v", cfg.StoreBackend, err)
	}

	locks := kvstore.NewKeyedMutex()
	userRepo := repositories.NewUserRepo(store, locks)
	videoRepo := repositories.NewVideoRepo(store, locks)

	jwtProvider := identity.NewJWTProvider(cfg.JWTSecret, cfg.TokenTTL)
	identitySvc := identity.NewService(store, userRepo, jwtProvider, locks)
	chatSvc := chat.NewService(store, userRepo, locks)
	objects := storage.NewDiskStore(cfg.MediaDir, cfg.MediaURL)

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AuditExchange)
	defer publisher.Close()
	emitter := telemetry.NewAuditEmitter(publisher, "audit."+serviceName, serviceName, cfg.Environment)

	if cfg.AMQPURL != "" {
		eventPublisher, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.AuditExchange)
		if err != nil {
			log.Printf("event publisher disabled: %v", err)
		} else {
			observability.SetPublisher(eventPublisher)
			defer eventPublisher.Close()
		}
	}

	hub := ws.NewHub()
	chatWS := ws.NewChatWebSocketHandler(hub, jwtProvider)

	authHandler := handlers.NewAuthHandler(identitySvc, emitter)
	chatHandler := handlers.NewChatHandler(chatSvc, hub, emitter)
	videoHandler := handlers.NewVideoHandler(videoRepo, userRepo, objects, emitter)
	userHandler := handlers.NewUserHandler(userRepo, videoRepo)
	adminHandler := handlers.NewAdminHandler(userRepo, emitter)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// middlewares
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Authorization", "Content-Type", "X-Request-Id", "X-Device-Id"},
	}))

	authMiddleware := middleware.AuthMiddleware(jwtProvider)

	router.POST("/signup", authHandler.Signup)
	router.POST("/signin", authHandler.Signin)

	router.POST("/videos", authMiddleware, videoHandler.Upload)
	router.POST("/videos/import", authMiddleware, videoHandler.Import)
	router.GET("/videos", videoHandler.Feed)
	router.GET("/videos/:id", videoHandler.GetVideo)
	router.POST("/like", authMiddleware, videoHandler.Like)
	router.POST("/comment", authMiddleware, videoHandler.Comment)
	router.GET("/comments/:videoId", videoHandler.ListComments)
	router.POST("/view", videoHandler.RecordView)

	router.GET("/users/:id", userHandler.GetProfile)
	router.POST("/profile", authMiddleware, userHandler.UpdateProfile)
	router.POST("/subscribe", authMiddleware, userHandler.Subscribe)

	router.POST("/message", authMiddleware, chatHandler.SendMessage)
	router.GET("/messages/:userId", authMiddleware, chatHandler.ListMessages)
	router.GET("/chats", authMiddleware, chatHandler.ListChats)

	router.GET("/analytics/:userId", authMiddleware, videoHandler.Analytics)

	router.POST("/admin/verify", authMiddleware, adminHandler.SetVerified)
	router.POST("/admin/grant", authMiddleware, adminHandler.SetAdmin)
	router.GET("/admin/users", authMiddleware, adminHandler.ListUsers)

	router.GET("/ws/chats/:userId", chatWS.Handle)

	router.Static(cfg.MediaURL, cfg.MediaDir)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	handlers.RegisterDebugRoutes(router, emitter, cfg.DebugRoutes)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func connectStore(ctx context.Context, cfg config.Config) (kvstore.Store, error) {
	switch cfg.StoreBackend {
	case "redis":
		store, err := kvstore.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "memory":
		return kvstore.NewMemoryStore(), nil
	default:
		store, err := kvstore.ConnectPostgres(cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"friends-server/config"
	"friends-server/internal/handler"
	"friends-server/internal/model"
	"friends-server/internal/repository"
	"friends-server/internal/service"
	dbPkg "friends-server/pkg/db"
	"friends-server/pkg/jwt"
	"friends-server/pkg/logger"
	redisPkg "friends-server/pkg/redis"
	"friends-server/pkg/response"
	"friends-server/pkg/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	cfg := config.LoadConfig()

	// 2. 初始化日志系统
	log := logger.InitLogger(cfg.Log)
	defer log.Sync()

	log.Info("=== friends-server 启动 ===")
	log.Info("服务器配置信息",
		zap.String("port", cfg.Server.Port),
		zap.String("database_host", cfg.Database.Host),
		zap.Int("database_port", cfg.Database.Port),
		zap.String("database_name", cfg.Database.Database),
		zap.Duration("jwt_expire_time", cfg.JWT.ExpireTime),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 初始化数据库连接
	db, err := dbPkg.InitDB(cfg.Database)
	if err != nil {
		log.Fatal("数据库连接失败", zap.Error(err))
	}
	defer func() {
		if err := dbPkg.CloseDB(); err != nil {
			log.Error("关闭数据库连接失败", zap.Error(err))
		}
	}()
	log.Info("数据库连接成功")

	// 3.1 自动迁移表结构
	if err := dbPkg.AutoMigrate(&model.Profile{}, &model.Relationship{}, &model.Message{}); err != nil {
		log.Fatal("自动迁移失败", zap.Error(err))
	}
	log.Info("自动迁移完成")

	// 3.2 初始化Redis（在线状态 + 会话事件总线）
	if err := redisPkg.InitRedis(cfg.Redis); err != nil {
		log.Fatal("Redis连接失败", zap.Error(err))
	}
	defer func() {
		if err := redisPkg.Close(); err != nil {
			log.Error("关闭Redis连接失败", zap.Error(err))
		}
	}()
	log.Info("Redis连接成功")

	// 3.3 初始化业务服务
	jwtSvc := jwt.NewJWTService(cfg.JWT)
	profileRepo := repository.NewProfileRepository(db)
	relationshipRepo := repository.NewRelationshipRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	userSvc := service.NewUserService(profileRepo, jwtSvc)
	searchSvc := service.NewSearchService(profileRepo)
	relationshipSvc := service.NewRelationshipService(relationshipRepo, profileRepo, redisPkg.NewPresenceStore())
	chatSvc := service.NewChatService(messageRepo, redisPkg.NewChatEventBus())

	userHandler := handler.NewUserHandler(userSvc, searchSvc)
	friendHandler := handler.NewFriendHandler(relationshipSvc)
	chatHandler := handler.NewChatHandler(chatSvc)
	wsChatHandler := websocket.NewChatHandler(chatSvc, jwtSvc, cfg.WebSocket)

	// 4. 设置Gin模式
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 5. 创建Gin路由
	router := gin.New()
	router.Use(logger.LoggerMiddleware())
	router.Use(logger.ErrorLoggerMiddleware())

	// 6. 健康检查
	router.GET("/health", func(c *gin.Context) {
		status := "ok"
		if err := dbPkg.HealthCheck(); err != nil {
			status = "db-down"
		} else if err := redisPkg.HealthCheck(); err != nil {
			status = "redis-down"
		}
		response.Success(c, gin.H{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// 6.1 绑定业务路由
	v1 := router.Group("/api/v1")
	{
		users := v1.Group("/users")
		{
			// 公开接口（无需认证）
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)

			// 需要认证的接口
			authUsers := users.Group("")
			authUsers.Use(jwtSvc.AuthMiddleware())
			{
				authUsers.GET("/profile", userHandler.GetProfile)
				authUsers.GET("/search", userHandler.SearchUsers)
				authUsers.GET("/:uid/status", userHandler.GetUserStatus)
			}
		}

		// 好友关系路由（需要认证）
		friends := v1.Group("/friends")
		friends.Use(jwtSvc.AuthMiddleware())
		{
			friends.GET("", friendHandler.List)
			friends.POST("/requests", friendHandler.SendRequest)
			friends.GET("/requests/incoming", friendHandler.Incoming)
			friends.GET("/requests/sent", friendHandler.Sent)
			friends.POST("/requests/:uid/accept", friendHandler.Accept)
			friends.POST("/requests/:uid/reject", friendHandler.Reject)
		}

		// 聊天路由（需要认证）
		chats := v1.Group("/chats")
		chats.Use(jwtSvc.AuthMiddleware())
		{
			chats.POST("/:other_uid/messages", chatHandler.SendMessage)
			chats.GET("/:other_uid/messages", chatHandler.GetMessages)
		}
	}

	// WebSocket路由：会话实时订阅
	router.GET("/ws/chats/:other_uid", wsChatHandler.Subscribe)

	// 7. 创建HTTP服务器
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 8. 启动HTTP服务器
	go func() {
		log.Info("HTTP服务器启动", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP服务器启动失败", zap.Error(err))
		}
	}()

	// 9. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP服务器关闭失败", zap.Error(err))
	}

	log.Info("服务器已安全关闭")
}

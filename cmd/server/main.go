// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"support-bot-go/internal/chatbot"
	"support-bot-go/internal/config"
	"support-bot-go/internal/handler"
	"support-bot-go/internal/middleware"
	"support-bot-go/internal/model"
	"support-bot-go/internal/repository"
	"support-bot-go/internal/service"
	"support-bot-go/pkg/database"
	"support-bot-go/pkg/kafka"
	"support-bot-go/pkg/llm"
	"support-bot-go/pkg/log"
	"support-bot-go/pkg/token"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库和 Redis
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	database.Migrate(&model.User{}, &model.ChatTurn{}, &model.MemorySummary{})

	// 4. 初始化 Repository
	userRepository := repository.NewUserRepository(database.DB)
	chatTurnRepo := repository.NewChatTurnRepository(database.DB)
	memoryRepo := repository.NewMemoryRepository(database.DB, database.RDB)

	// 5. 初始化 Service (依赖注入)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours, cfg.JWT.RefreshTokenExpireDays)
	llmClient := llm.NewClient(cfg.LLM)
	producer := kafka.NewProducer(cfg.Kafka)
	defer producer.Close()

	thresholds := chatbot.Thresholds{
		Clarify:  cfg.Chatbot.ClarifyThreshold,
		Fallback: cfg.Chatbot.FallbackThreshold,
	}

	userService := service.NewUserService(userRepository, jwtManager, cfg.Admin.SecretKey)
	memoryService := service.NewMemoryService(chatTurnRepo, memoryRepo, cfg.Chatbot.MemoryWindow, cfg.Chatbot.SummaryLines)
	chatService := service.NewChatService(chatTurnRepo, memoryService, llmClient, producer, thresholds)
	adminService := service.NewAdminService(userRepository, chatTurnRepo)

	// 6. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	// 添加我们自定义的日志中间件和 Gin 的 Recovery 中间件
	r.Use(middleware.RequestLogger(), gin.Recovery())

	userHandler := handler.NewUserHandler(userService)
	authHandler := handler.NewAuthHandler(userService)
	chatHandler := handler.NewChatHandler(chatService, userService, jwtManager)
	adminHandler := handler.NewAdminHandler(adminService)

	// 7. 注册路由
	apiV1 := r.Group("/api/v1")
	{
		// Auth 路由组
		auth := apiV1.Group("/auth")
		{
			auth.POST("/refreshToken", authHandler.RefreshToken)
		}

		users := apiV1.Group("/users")
		{
			// 无需认证的路由 (公开访问)
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)

			// 需要认证的路由 (仅限登录用户访问)
			authed := users.Group("/")
			authed.Use(middleware.AuthMiddleware(jwtManager, userService, database.RDB))
			{
				authed.GET("/me", userHandler.GetProfile)
				authed.POST("/logout", userHandler.Logout)
			}
		}

		// Chat 路由组，需要认证；发送消息接口额外限流
		chat := apiV1.Group("/chat")
		chat.Use(middleware.AuthMiddleware(jwtManager, userService, database.RDB))
		{
			chat.POST("", middleware.RateLimitMiddleware(database.RDB, cfg.RateLimit), chatHandler.Chat)
			chat.GET("/history", chatHandler.History)
		}

		admin := apiV1.Group("/admin")
		// 管理员路由组，需要同时通过认证和管理员授权两个中间件
		admin.Use(middleware.AuthMiddleware(jwtManager, userService, database.RDB), middleware.AdminAuthMiddleware())
		{
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/chat-stats", adminHandler.ChatStats)
			admin.GET("/chats-per-user", adminHandler.ChatsPerUser)
			admin.GET("/top-intents", adminHandler.TopIntents)
			admin.GET("/ai-usage", adminHandler.AIUsage)
			admin.GET("/daily-chats", adminHandler.DailyChats)
		}
	}

	// Chat 路由 (WebSocket)，token 放在路径参数中
	r.GET("/chat/ws/:token", chatHandler.HandleWebSocket)

	// 8. 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 关闭 HTTP 服务器
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	log.Info("服务已优雅关闭")
}

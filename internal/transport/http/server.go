package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "gopherblog/internal/app"
	"gopherblog/internal/bootstrap"
	"gopherblog/internal/cache"
	"gopherblog/internal/platform/rabbitmq"
	"gopherblog/internal/repository"
	"gopherblog/internal/transport/http/handler"
	"gopherblog/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	postRepo := repository.NewPostRepository(app.MySQL)
	auditRepo := repository.NewAuditEventRepository(app.MySQL)
	auditor := rabbitmq.NewAuditPublisher(app.MQConn, app.Config.RabbitMQ.AuditEventQueue)
	feedCache := cache.NewFeedCache(
		app.Redis,
		time.Duration(app.Config.Redis.FeedTTLSeconds)*time.Second,
		time.Duration(app.Config.Redis.FeedDirtyTTLSeconds)*time.Second,
	)

	authService := appsvc.NewAuthService(
		userRepo,
		auditor,
		app.Config.Auth.AdminToken,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)
	postService := appsvc.NewPostService(postRepo, userRepo, feedCache, auditor)
	adminService := appsvc.NewAdminService(userRepo, auditRepo, feedCache, auditor)

	authHandler := handler.NewAuthHandler(authService)
	postHandler := handler.NewPostHandler(postService)
	adminHandler := handler.NewAdminHandler(adminService)

	v1 := router.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(app.Config.Auth.JWTSecret), authHandler.Me)

	// The feed is public; mutations require an authenticated identity.
	v1.GET("/posts", postHandler.ListPosts)
	postGroup := v1.Group("/posts")
	postGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	postGroup.POST("", postHandler.CreatePost)
	postGroup.PUT("/:id", postHandler.EditPost)
	postGroup.DELETE("/:id", postHandler.DeletePost)

	adminGroup := v1.Group("/admin")
	adminGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	adminGroup.GET("/users", adminHandler.ListUsers)
	adminGroup.DELETE("/users/:id", adminHandler.DeleteUser)
	adminGroup.GET("/audit", adminHandler.ListAuditEvents)

	return router
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/assessment-api/internal/ai"
	"github.com/yourusername/assessment-api/internal/config"
	"github.com/yourusername/assessment-api/internal/handler"
	"github.com/yourusername/assessment-api/internal/middleware"
	pgRepo "github.com/yourusername/assessment-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/assessment-api/internal/repository/redis"
	"github.com/yourusername/assessment-api/internal/service"
	"github.com/yourusername/assessment-api/pkg/auth"
	"github.com/yourusername/assessment-api/pkg/database"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Loading configuration from %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Repositories.
	userRepo := pgRepo.NewUserRepo(db)
	assessmentRepo := pgRepo.NewAssessmentRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	sessionRepo := pgRepo.NewSessionRepo(db)
	responseRepo := pgRepo.NewResponseRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// AI provider.
	aiProvider := ai.NewOpenAIProvider(cfg.AI)

	// Email.
	var emailService service.EmailService = &service.NoopEmailService{}
	if cfg.Email.Enabled {
		resendService, err := service.NewResendEmailService(cfg.Email.ResendAPIKey, cfg.Email.From)
		if err != nil {
			log.Printf("Failed to initialize email service: %v", err)
			os.Exit(1)
		}
		emailService = resendService
	}

	// JWT.
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// Services.
	authService := service.NewAuthService(userRepo, jwtService)
	assessmentService := service.NewAssessmentService(assessmentRepo, questionRepo, aiProvider)
	sessionService := service.NewSessionService(sessionRepo, assessmentRepo, cacheRepo)
	gradingService := service.NewGradingService(sessionRepo, questionRepo, responseRepo, cacheRepo, aiProvider)
	scoreService := service.NewScoreService(sessionRepo, responseRepo, questionRepo, assessmentRepo, userRepo, db, aiProvider, emailService)
	statsService := service.NewStatsService(sessionRepo, userRepo, cacheRepo)

	// Handlers.
	authHandler := handler.NewAuthHandler(authService)
	assessmentHandler := handler.NewAssessmentHandler(assessmentService, statsService)
	sessionHandler := handler.NewSessionHandler(sessionService, gradingService, scoreService)
	statsHandler := handler.NewStatsHandler(statsService)

	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	isProduction := gin.Mode() == gin.ReleaseMode

	router := gin.Default()

	// Trusted proxies: none in production to prevent IP spoofing via
	// forwarded headers, localhost in development.
	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	router.Use(middleware.RequestID())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)

			authedAuth := authGroup.Group("/")
			authedAuth.Use(authMiddleware.RequireAuth())
			{
				authedAuth.GET("/user", authHandler.Me)
			}
		}

		assessments := api.Group("/assessments")
		{
			assessments.GET("", assessmentHandler.ListActive)

			assessmentWithID := assessments.Group("/:id")
			assessmentWithID.Use(middleware.ExtractUintParam("id", "assessmentID"))
			{
				assessmentWithID.GET("", assessmentHandler.Get)
				assessmentWithID.GET("/questions", assessmentHandler.GetQuestions)

				adminAssessment := assessmentWithID.Group("")
				adminAssessment.Use(authMiddleware.RequireAuth(), authMiddleware.AdminOnly())
				{
					adminAssessment.POST("/generate-questions", assessmentHandler.GenerateQuestions)
					adminAssessment.GET("/export", assessmentHandler.ExportResults)
				}
			}

			adminAssessments := assessments.Group("")
			adminAssessments.Use(authMiddleware.RequireAuth(), authMiddleware.AdminOnly())
			{
				adminAssessments.POST("", assessmentHandler.Create)
			}
		}

		sessions := api.Group("/sessions")
		sessions.Use(authMiddleware.RequireAuth())
		{
			sessions.POST("", sessionHandler.Start)

			sessionWithID := sessions.Group("/:id")
			sessionWithID.Use(middleware.ExtractUintParam("id", "sessionID"))
			{
				sessionWithID.GET("", sessionHandler.Get)
				sessionWithID.PATCH("", sessionHandler.Update)
				sessionWithID.POST("/complete", sessionHandler.Complete)
			}
		}

		authed := api.Group("")
		authed.Use(authMiddleware.RequireAuth())
		{
			authed.POST("/responses", sessionHandler.SubmitResponse)
			authed.POST("/transcribe", sessionHandler.Transcribe)
			authed.GET("/user/stats", statsHandler.UserStats)
			authed.GET("/user/sessions", sessionHandler.ListMine)
		}

		admin := api.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.AdminOnly())
		{
			admin.GET("/stats", statsHandler.AdminStats)
			admin.GET("/assessments", assessmentHandler.List)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	log.Println("Server exited properly")
}

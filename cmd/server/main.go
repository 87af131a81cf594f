package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Archdiner/music-practice-tracker/internal/ai"
	"github.com/Archdiner/music-practice-tracker/internal/config"
	"github.com/Archdiner/music-practice-tracker/internal/domain/services"
	"github.com/Archdiner/music-practice-tracker/internal/infrastructure/cache"
	"github.com/Archdiner/music-practice-tracker/internal/infrastructure/database"
	"github.com/Archdiner/music-practice-tracker/internal/interfaces/http/handlers"
	"github.com/Archdiner/music-practice-tracker/internal/interfaces/http/middleware"
	"github.com/Archdiner/music-practice-tracker/internal/usage"
)

func main() {
	cfg := config.Load()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgresConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations("migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Printf("Redis unavailable, rate limiting falls back to in-memory: %v", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	userRepo := database.NewUserRepository(db)
	practiceRepo := database.NewPracticeLogRepository(db)
	goalRepo := database.NewGoalRepository(db)
	practiceGoalRepo := database.NewPracticeGoalRepository(db)
	usageRepo := database.NewUsageRepository(db)
	insightRepo := database.NewInsightRepository(db)

	global, perUser, perEndpoint := buildLimiters(cfg, redisClient)
	governor := usage.NewGovernor(usageRepo, cfg.Limits, global, perUser, perEndpoint)

	var entryParser services.AIEntryParser
	var insightGen services.AIInsightGenerator
	var tipGen services.AITipGenerator
	if cfg.AI.OpenAIKey != "" {
		client, err := ai.NewOpenAIClient(cfg.AI.OpenAIKey, cfg.AI.Model)
		if err != nil {
			log.Fatalf("Failed to configure AI client: %v", err)
		}
		entryParser = ai.NewEntryParser(client, governor)
		gen := ai.NewInsightGenerator(client, governor)
		insightGen = gen
		tipGen = gen
		log.Printf("AI parsing enabled with model %s", cfg.AI.Model)
	} else {
		log.Println("OPENAI_API_KEY not set, heuristic parsing only")
	}

	jwtService := services.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.Expiration)*time.Second)
	authService := services.NewAuthService(userRepo, jwtService)
	parseService := services.NewParseService(entryParser, governor, goalRepo)
	practiceService := services.NewPracticeService(practiceRepo, userRepo, parseService)
	goalService := services.NewGoalService(goalRepo)
	practiceGoalService := services.NewPracticeGoalService(practiceGoalRepo)
	insightService := services.NewInsightService(insightGen, governor, insightRepo, practiceRepo, goalRepo, userRepo)
	tipService := services.NewTipService(tipGen, governor, goalRepo, practiceRepo)

	authHandler := handlers.NewAuthHandler(authService)
	practiceHandler := handlers.NewPracticeHandler(practiceService, parseService)
	goalHandler := handlers.NewGoalHandler(goalService)
	practiceGoalHandler := handlers.NewPracticeGoalHandler(practiceGoalService)
	insightHandler := handlers.NewInsightHandler(insightService, tipService)
	usageHandler := handlers.NewUsageHandler(governor, parseService.AIAvailable())

	router := gin.Default()
	router.Use(middleware.CORS())
	router.Use(middleware.RequestLogger())

	router.GET("/health", func(c *gin.Context) {
		status := gin.H{
			"status":  "healthy",
			"service": "music-practice-tracker",
			"time":    time.Now(),
		}
		if err := db.Health(); err != nil {
			status["status"] = "degraded"
			status["database"] = err.Error()
		}
		if redisClient != nil {
			if err := redisClient.Health(); err != nil {
				status["status"] = "degraded"
				status["redis"] = err.Error()
			}
		}
		c.JSON(http.StatusOK, status)
	})

	router.POST("/api/auth/register", authHandler.Register)
	router.POST("/api/auth/login", authHandler.Login)

	apiGroup := router.Group("/api")
	apiGroup.Use(middleware.JWTAuthMiddleware(authService))

	apiGroup.POST("/log", practiceHandler.Log)
	apiGroup.GET("/entries", practiceHandler.List)
	apiGroup.GET("/entries/:id", practiceHandler.Get)
	apiGroup.PUT("/entries/:id", practiceHandler.Update)
	apiGroup.DELETE("/entries/:id", practiceHandler.DeleteActivity)
	apiGroup.GET("/stats", practiceHandler.Stats)
	apiGroup.GET("/heatmap", practiceHandler.Heatmap)

	apiGroup.GET("/goals", goalHandler.Get)
	apiGroup.POST("/goals", goalHandler.Create)
	apiGroup.PUT("/goals", goalHandler.Update)

	apiGroup.GET("/practice-goals", practiceGoalHandler.List)
	apiGroup.POST("/practice-goals", practiceGoalHandler.Create)
	apiGroup.PUT("/practice-goals/:id", practiceGoalHandler.Update)
	apiGroup.DELETE("/practice-goals/:id", practiceGoalHandler.Delete)

	apiGroup.GET("/insights", insightHandler.Get)
	apiGroup.POST("/insights", insightHandler.Generate)
	apiGroup.GET("/insights/auto-generate", insightHandler.AutoGenerateStatus)
	apiGroup.POST("/insights/auto-generate", insightHandler.AutoGenerate)
	apiGroup.GET("/tip", insightHandler.Tip)

	apiGroup.GET("/usage", usageHandler.Get)

	apiGroup.GET("/profile", authHandler.Profile)
	apiGroup.PUT("/profile", authHandler.UpdateProfile)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Listening on :%s", cfg.Server.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("✅ Server stopped")
}

// buildLimiters returns the global, per-user and per-AI-endpoint request
// buckets, redis-backed when redis is reachable.
func buildLimiters(cfg *config.Config, redisClient *cache.RedisClient) (usage.Limiter, usage.Limiter, usage.Limiter) {
	window := time.Minute
	if redisClient == nil {
		return usage.NewMemoryLimiter(cfg.Limits.GlobalPerMinute, window),
			usage.NewMemoryLimiter(cfg.Limits.UserPerMinute, window),
			usage.NewMemoryLimiter(cfg.Limits.AIEndpointPerMinute, window)
	}
	return usage.NewRedisLimiter(redisClient.Client, "rl:global", cfg.Limits.GlobalPerMinute, window),
		usage.NewRedisLimiter(redisClient.Client, "rl:user", cfg.Limits.UserPerMinute, window),
		usage.NewRedisLimiter(redisClient.Client, "rl:ai", cfg.Limits.AIEndpointPerMinute, window)
}

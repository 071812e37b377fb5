package server

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dinerozz/behavior-monitor/config"
	"github.com/dinerozz/behavior-monitor/docs"
	adminHandler "github.com/dinerozz/behavior-monitor/internal/handler/admin"
	reportHandler "github.com/dinerozz/behavior-monitor/internal/handler/report"
	"github.com/dinerozz/behavior-monitor/internal/repository"
	redisService "github.com/dinerozz/behavior-monitor/internal/service/redis"
	"github.com/dinerozz/behavior-monitor/internal/service/report"
	"github.com/dinerozz/behavior-monitor/middleware"
	"github.com/dinerozz/behavior-monitor/pkg/store"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterHandler struct {
	reportHandler *reportHandler.ReportHandler
	adminHandler  *adminHandler.AdminHandler
	metrics       http.Handler
	stats         redisService.ServiceInterface
}

func RunServer(config *config.Config, logger *slog.Logger) {
	env := config.Env
	switch env {
	case "prod", "production":
		gin.SetMode(gin.ReleaseMode)
		log.Println("🚀 Starting server in PRODUCTION mode")
	case "dev", "development":
		gin.SetMode(gin.DebugMode)
		log.Println("🔧 Starting server in DEVELOPMENT mode")
	default:
		gin.SetMode(gin.DebugMode)
		log.Println("🔧 Starting server in DEVELOPMENT mode (default)")
	}

	db, err := repository.NewRepository(config.DB)
	if err != nil {
		log.Fatal("❌ Failed to connect to database:", err)
	}
	defer db.Close()

	var stats redisService.ServiceInterface
	client, err := store.ConnectRedis(context.Background(), config.Redis.URL, 5*time.Second)
	if err != nil {
		log.Printf("⚠️ Redis unavailable, daily stats disabled: %v", err)
	} else {
		redisSrv := redisService.NewRedisService(client)
		defer redisSrv.Close()
		stats = redisSrv
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	behaviorRepo := repository.NewBehaviorEventRepository(db)
	reportSrv := report.NewReportService(behaviorRepo, stats, report.NewMetrics(registry), logger)

	routerHandler := &RouterHandler{
		reportHandler: reportHandler.NewReportHandler(reportSrv, config.Server.ReportMaxBytes, logger),
		adminHandler:  adminHandler.NewAdminHandler(reportSrv, config.Auth),
		metrics:       promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		stats:         stats,
	}

	r := setupRouter(routerHandler, config)

	srv := &http.Server{
		Addr:    ":" + config.Server.Port,
		Handler: r,
	}

	go func() {
		log.Printf("✅ Server starting on port %s", config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	gracefulShutdown(srv)
}

func gracefulShutdown(srv *http.Server) {
	quit := make(chan os.Signal, 1)

	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Println("🔄 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
		return
	}

	select {
	case <-ctx.Done():
		log.Println("⚠️ Server shutdown timeout exceeded")
	default:
		log.Println("✅ Server gracefully stopped")
	}
}

func swaggerHost(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return "127.0.0.1:8080"
	}
	return u.Host
}

func setupRouter(routerHandler *RouterHandler, config *config.Config) *gin.Engine {
	r := gin.Default()
	r.SetTrustedProxies([]string{"127.0.0.1", "::1"})
	r.HandleMethodNotAllowed = true

	r.Use(middleware.CORS(config.Server.CORSOrigins))

	r.GET("/health", func(c *gin.Context) {
		status := gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"service":   "behavior-monitor",
			"stats":     "disabled",
		}
		if routerHandler.stats != nil {
			status["stats"] = "ok"
			if err := routerHandler.stats.Health(c.Request.Context()); err != nil {
				status["stats"] = "unavailable"
			}
		}
		c.JSON(http.StatusOK, status)
	})

	r.GET("/metrics", gin.WrapH(routerHandler.metrics))

	docs.SwaggerInfo.Host = swaggerHost(config.Server.BaseURL)
	docs.SwaggerInfo.Schemes = []string{"http", "https"}
	docs.SwaggerInfo.BasePath = "/api/v1"

	if config.Env == "prod" || config.Env == "production" {
		r.Use(middleware.SwaggerHostMiddleware(docs.SwaggerInfo.Host))
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.POST("/report", routerHandler.reportHandler.Report)

	publicRoutes := r.Group("/api/v1")
	{
		publicRoutes.POST("/behaviors/report", routerHandler.reportHandler.Report)
		publicRoutes.POST("/admin/auth", routerHandler.adminHandler.Auth)
	}

	if config.Auth.JWTSecret == "" {
		log.Println("⚠️ JWT_SECRET is not set, admin API is disabled")
	}

	privateRoutes := r.Group("/api/v1/admin")
	privateRoutes.Use(middleware.AuthenticationMiddleware([]byte(config.Auth.JWTSecret)))
	{
		privateRoutes.GET("/behaviors", routerHandler.adminHandler.GetBehaviors)
		privateRoutes.GET("/behaviors/:id", routerHandler.adminHandler.GetBehaviorByID)
		privateRoutes.GET("/stats/daily", routerHandler.adminHandler.GetDailyStats)
	}

	return r
}

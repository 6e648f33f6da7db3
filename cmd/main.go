package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fitness-league/internal/config"
	"fitness-league/internal/database"
	"fitness-league/internal/handler"
	"fitness-league/internal/middleware"
	"fitness-league/internal/repository"
	"fitness-league/internal/scheduler"
	"fitness-league/internal/service"
	"fitness-league/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("Failed to read .env: %v\n", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output); err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}
	defer database.Close(db)

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Fatal("Failed to migrate database:", err)
		}
	}

	weekRepo := repository.NewWeekRepository(db)
	rosterRepo := repository.NewRosterRepository(db)
	resultsRepo := repository.NewResultsRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)

	finalizer := service.NewWeekFinalizer(weekRepo, rosterRepo, resultsRepo, cfg.Scoring,
		service.NewFinalizeMetrics(prometheus.DefaultRegisterer))
	standingsSvc := service.NewStandingsService(ledgerRepo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var triggerHandler *handler.TriggerHandler
	if cfg.Scheduler.Enabled {
		finalizeScheduler := scheduler.NewFinalizeScheduler(finalizer, cfg.Scheduler)
		if err := finalizeScheduler.Start(); err != nil {
			logger.Fatal("Failed to start scheduler:", err)
		}
		defer finalizeScheduler.Stop()
		triggerHandler = handler.NewTriggerHandler(finalizeScheduler)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit)
	go limiter.CleanupVisitors(ctx)

	router := mux.NewRouter()
	router.Use(middleware.NewMonitor(prometheus.DefaultRegisterer).Middleware)
	router.Use(limiter.Middleware)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	handler.RegisterRoutes(router,
		handler.NewWeekHandler(finalizer, resultsRepo, weekRepo),
		handler.NewStandingsHandler(standingsSvc),
		triggerHandler,
	)

	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.Server.CORSOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      cors(router),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("Server starting on port ", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error:", err)
	}

	logger.Info("Server stopped")
}

package main

import (
	"alcyxob/workout-scheduler/internal/api"
	"alcyxob/workout-scheduler/internal/catalog"
	"alcyxob/workout-scheduler/internal/config"
	"alcyxob/workout-scheduler/internal/logging"
	"alcyxob/workout-scheduler/internal/refresher"
	"alcyxob/workout-scheduler/internal/repository/mongo"
	"alcyxob/workout-scheduler/internal/service"
	"alcyxob/workout-scheduler/internal/storage"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// @title Workout Scheduler API
// @version 1.0
// @description Schedules workout templates once or on recurring patterns and serves calendar views.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.Log.File,
		LogToStdout:   cfg.Log.Stdout,
		LogLevel:      cfg.Log.Level,
		LogFormatJSON: cfg.Log.JSON,
	})
	log.Println("Starting Workout Scheduler...")
	if cfg.JWT.Secret == "" {
		log.Warn("jwt.secret is empty, every authenticated request will be rejected")
	}

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Errorf("Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	// The unique occurrence index guards generation, so this is not backgrounded.
	indexCtx, indexCancel := context.WithTimeout(context.Background(), time.Minute)
	err = mongo.EnsureIndexes(indexCtx, appDB)
	indexCancel()
	if err != nil {
		log.Fatalf("FATAL: Could not ensure indexes: %v", err)
	}

	// --- Initialize Repositories ---
	workoutRepo := mongo.NewMongoAssignedWorkoutRepository(appDB)
	ruleRepo := mongo.NewMongoRecurrenceRuleRepository(appDB)

	templates := catalog.NewCachedCatalog(
		catalog.NewMongoCatalog(appDB, cfg.Catalog.Collection),
		cfg.Catalog.CacheSizeBytes,
		cfg.Catalog.CacheTTL,
	)

	// --- Initialize Services ---
	generator := service.NewGenerator(workoutRepo, time.Now, cfg.Scheduler.DefaultCap, cfg.Scheduler.HorizonDays)
	scheduleService := service.NewScheduleService(workoutRepo, ruleRepo, templates, generator, service.ScheduleOptions{
		UpcomingLimit: cfg.Scheduler.UpcomingLimit,
		UpcomingMax:   cfg.Scheduler.UpcomingMax,
	})
	calendarService := service.NewCalendarService(workoutRepo, templates)
	recurrenceService := service.NewRecurrenceService(ruleRepo, generator)

	var exportService service.ExportService
	if cfg.S3.Enabled() {
		fileStorage, err := storage.NewS3Storage(context.Background(), cfg.S3)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
		}
		exportService = service.NewExportService(calendarService, mongo.NewMongoCalendarExportRepository(appDB), fileStorage, service.ExportOptions{
			Prefix:          cfg.S3.ExportPrefix,
			ReminderMinutes: 30,
		})
	} else {
		log.Info("s3.bucket_name not set, calendar export disabled")
	}

	// --- Background refresher ---
	if cfg.Scheduler.RefreshCron != "" {
		ruleRefresher, err := refresher.New(ruleRepo, generator, refresher.Options{
			Schedule:    cfg.Scheduler.RefreshCron,
			Concurrency: cfg.Scheduler.RefreshConcurrency,
		})
		if err != nil {
			log.Fatalf("FATAL: %v", err)
		}
		ruleRefresher.Start()
		defer ruleRefresher.Stop()
	}

	// --- Initialize Gin Engine ---
	if logging.GetLevel(cfg.Log.Level) < log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger())

	api.SetupRoutes(router, cfg.JWT.Secret, scheduleService, calendarService, recurrenceService, exportService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	hits, misses := templates.Stats()
	log.WithFields(log.Fields{"hits": hits, "misses": misses}).Info("template cache")
	log.Println("Server exiting.")
}

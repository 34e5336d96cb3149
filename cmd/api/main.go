package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/BruksfildServices01/petcare-scheduler/internal/audit"
	"github.com/BruksfildServices01/petcare-scheduler/internal/civildate"
	"github.com/BruksfildServices01/petcare-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/petcare-scheduler/internal/db"
	"github.com/BruksfildServices01/petcare-scheduler/internal/events"
	"github.com/BruksfildServices01/petcare-scheduler/internal/handlers"
	"github.com/BruksfildServices01/petcare-scheduler/internal/infra/pubsub"
	infraRepo "github.com/BruksfildServices01/petcare-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/petcare-scheduler/internal/infra/storage"
	"github.com/BruksfildServices01/petcare-scheduler/internal/routes"
	"github.com/BruksfildServices01/petcare-scheduler/internal/timezone"
	"github.com/BruksfildServices01/petcare-scheduler/internal/usecase/calendar"
	ucPayment "github.com/BruksfildServices01/petcare-scheduler/internal/usecase/payment"
)

func main() {

	cfg := config.Load()
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc := timezone.Location(cfg.Timezone)
	now := timezone.Clock(loc)

	// ======================================================
	// BACKEND + EVENTS
	// ======================================================
	backend := infraRepo.NewAppointmentHTTPRepository(infraRepo.HTTPOptions{
		BaseURL:  cfg.BackendURL,
		Timeout:  cfg.BackendTimeout,
		Attempts: cfg.BackendRetries,
		RPS:      cfg.BackendRPS,
	})

	bus := events.NewBus(0)

	var bridge *pubsub.RedisBridge
	if cfg.RedisURL != "" {
		client, err := pubsub.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		bridge = pubsub.NewRedisBridge(client, bus)
		if err := bridge.Start(ctx); err != nil {
			log.Printf("[events] redis bridge disabled: %v", err)
			bridge = nil
		}
	}

	// ======================================================
	// CHANGE JOURNAL
	// ======================================================
	db, err := dbpkg.NewDB(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	var (
		changes    handlers.ChangeLister
		dispatcher *audit.Dispatcher
	)
	if db != nil {
		changeRepo := infraRepo.NewChangeLogGormRepository(db)
		changes = changeRepo

		dispatcher = audit.NewDispatcher(audit.New(changeRepo))
		dispatcher.Attach(bus)
	}

	// ======================================================
	// SLIP ARCHIVE
	// ======================================================
	var archive ucPayment.Archive
	if cfg.SlipBucket != "" {
		archive = storage.NewSlipArchive(storage.NewS3Client(storage.S3Options{
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		}), cfg.SlipBucket)
	}

	// ======================================================
	// CALENDAR
	// ======================================================
	days := calendar.NewFetchDay(backend, loc)

	views := calendar.NewViews(ctx, calendar.ViewsOptions{
		Days: days,
		Scheduler: calendar.SchedulerOptions{
			BatchSize: cfg.CalendarBatchSize,
			WeekStart: civildate.ParseWeekday(cfg.CalendarWeekStart),
			Policy:    calendar.ParseErrorPolicy(cfg.CalendarErrorPolicy),
			Now:       now,
		},
		Bus:         bus,
		InitialLoad: true,
	})
	go views.Run(ctx, time.Minute)

	// ======================================================
	// HTTP
	// ======================================================
	r := gin.Default()

	routes.RegisterRoutes(r, routes.Deps{
		Config:   cfg,
		Backend:  backend,
		Bus:      bus,
		Views:    views,
		Days:     days,
		Location: loc,
		Now:      now,
		Changes:  changes,
		Archive:  archive,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server running on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}

	views.Shutdown()
	if bridge != nil {
		if err := bridge.Close(); err != nil {
			log.Printf("[events] redis bridge close: %v", err)
		}
	}
	bus.Close()
	if dispatcher != nil {
		dispatcher.Close()
	}
}

// setupLogging tees the standard logger and gin's writers into a rotated
// file when LOG_FILE is set.
func setupLogging(cfg *config.Config) {
	if cfg.LogFile == "" {
		return
	}

	rotated := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    50, // MB
		MaxBackups: 5,
		MaxAge:     28,
		Compress:   true,
	}

	out := io.MultiWriter(os.Stderr, rotated)
	log.SetOutput(out)
	gin.DefaultWriter = io.MultiWriter(os.Stdout, rotated)
	gin.DefaultErrorWriter = out
}

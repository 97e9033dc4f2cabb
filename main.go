package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"booktable-api/cache"
	"booktable-api/config"
	"booktable-api/events"
	"booktable-api/handlers"
	"booktable-api/jobs"
	"booktable-api/logging"
	"booktable-api/middleware"
	"booktable-api/notify"
	"booktable-api/realtime"
	"booktable-api/routes"
	"booktable-api/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
)

func main() {
	cfg := config.Load()
	logger := logging.New(os.Stdout, logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	gin.SetMode(cfg.GinMode)

	db, err := config.OpenDB(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if err := config.Migrate(db); err != nil {
		return err
	}
	if err := config.SeedAdmin(db, cfg, logger); err != nil {
		return err
	}

	hub := realtime.NewHub(logger, cfg.CORSOrigins)
	publishers := events.Fanout{hub, events.LogPublisher{Log: logger}}
	if cfg.KafkaBroker != "" {
		kp := events.NewKafkaPublisher(events.NewKafkaWriter(cfg.KafkaBroker, cfg.KafkaTopic, logger))
		defer kp.Close()
		publishers = append(publishers, kp)
		logger.Info("publishing events to kafka", slog.String("broker", cfg.KafkaBroker), slog.String("topic", cfg.KafkaTopic))
	}

	senders := []notify.Sender{notify.LogSender{Log: logger}}
	if cfg.EmailAPIKey != "" && cfg.EmailFrom != "" {
		senders = append(senders, notify.NewEmailSender(cfg.EmailAPIURL, cfg.EmailAPIKey, cfg.EmailFrom))
	}
	if cfg.SMSAccountSID != "" && cfg.SMSAuthToken != "" {
		senders = append(senders, notify.NewSMSSender(cfg.SMSAPIURL, cfg.SMSAccountSID, cfg.SMSAuthToken, cfg.SMSFrom))
	}
	dispatcher := notify.NewDispatcher(logger, 15*time.Second, senders...)
	defer dispatcher.Wait()

	jwt := middleware.NewJWT(cfg.JWTSecret, cfg.JWTTTL)
	deps := &services.Deps{
		DB:       db,
		Log:      logger,
		Events:   publishers,
		Notifier: dispatcher,
		Tokens:   jwt,
	}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		deps.Cache = cache.NewSearchCache(client, cfg.SearchCacheTTL)
		logger.Info("search cache enabled", slog.String("redis", cfg.RedisAddr))
	}
	svc := services.New(deps)

	scheduler := jobs.NewScheduler(logger)
	if err := scheduler.AddReminders(cfg.ReminderCron, &jobs.ReminderJob{DB: db, Notifier: dispatcher, Log: logger}); err != nil {
		return err
	}
	scheduler.Start()

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "BookTable Reservation API",
			"version": "1.0.0",
		})
	})
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to the BookTable Reservation API",
			"docs":    "/api/approval-states",
			"health":  "/health",
			"roles":   []string{"Customer", "RestaurantManager", "Admin"},
		})
	})

	routes.SetupRoutes(r, handlers.New(svc, logger), routes.Deps{
		JWT:     jwt,
		Limiter: middleware.NewRateLimiter(cfg.RateLimitRPS, int(cfg.RateLimitRPS*2)+1),
		Hub:     hub,
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           corsHandler.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", slog.String("addr", "http://localhost:"+cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	scheduler.Stop(shutdownCtx)
	return srv.Shutdown(shutdownCtx)
}

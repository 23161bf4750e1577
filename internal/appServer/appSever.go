package appServer

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gateon/ticketing/config"
	repository "github.com/gateon/ticketing/internal/database/postgres"
	"github.com/gateon/ticketing/internal/service"
	"github.com/gateon/ticketing/internal/transport"
	"github.com/gateon/ticketing/internal/worker"

	"github.com/gateon/ticketing/pkg/lock"
	"github.com/gateon/ticketing/pkg/postgres"
	"github.com/gateon/ticketing/pkg/queue"
	"github.com/gateon/ticketing/pkg/redis"
	"github.com/gateon/ticketing/pkg/scheduler"
	"github.com/gateon/ticketing/pkg/telegram"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.Idle_timeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
	logger := logrus.StandardLogger()

	// Initialize database
	db, err := postgres.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run database migrations
	if err := postgres.RunMigrations(db); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	promoRepo := repository.NewPromoRepository(db)
	eventRepo := repository.NewEventRepository(db)
	bookingRepo := repository.NewBookingRepository(db)

	// Initialize Telegram bot
	var telegramBot *telegram.Bot
	if cfg.Telegram.Enabled && cfg.Telegram.BotToken != "" {
		telegramBot = telegram.NewBot(cfg.Telegram.BotToken)
		logrus.Info("Telegram bot initialized")
	} else {
		logrus.Warn("Telegram bot not configured, notifications disabled")
	}

	// Initialize Redis: stats cache plus task queue
	var statsCache service.StatsCache
	var redisQueue queue.Queue
	var taskPublisher service.TaskPublisher

	if cfg.Redis.URL != "" {
		redisClient := redis.NewRedisClient(&cfg.Redis)
		defer redisClient.Close()
		statsCache = redis.NewStatsCache(redisClient, cfg.Worker.StatsCacheTTL)

		redisConfig := queue.DefaultRedisQueueConfig()
		redisConfig.Addr = cfg.Redis.URL
		redisConfig.Password = cfg.Redis.Password
		redisConfig.DB = cfg.Redis.DB

		redisQueue, err = queue.NewRedisQueue(redisConfig, nil, nil)
		if err != nil {
			logrus.Errorf("Failed to initialize Redis queue: %v. Continuing without queue...", err)
			redisQueue = nil
		} else {
			logrus.Info("Redis queue initialized")
			taskPublisher = service.NewQueueAdapter(redisQueue)
		}
	}

	// Initialize services
	locks := lock.NewKeyedMutex()
	promoService := service.NewPromoService(promoRepo, logger)
	eventService := service.NewEventService(eventRepo, bookingRepo, statsCache, logger)
	pricingService := service.NewPricingService(eventService, promoService)
	bookingService := service.NewBookingService(
		bookingRepo, eventRepo, pricingService, taskPublisher, locks, cfg.Booking.MaxPerAttendee, logger)
	checkinService := service.NewCheckinService(bookingRepo, taskPublisher, locks, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start queue consumer and stats scheduler if queue is available,
	// otherwise fall back to the in-process stats worker
	if redisQueue != nil {
		// nil *telegram.Bot must not end up inside the interface value
		var notifier queue.TelegramBot
		if telegramBot != nil {
			notifier = telegramBot
		}
		taskHandler := queue.NewTaskHandler(bookingService, eventService, notifier, cfg.Telegram.ChatID)

		go func() {
			if err := redisQueue.Subscribe(ctx, taskHandler.HandleTask); err != nil {
				logrus.Errorf("Queue subscriber error: %v", err)
			}
		}()
		logrus.Info("Queue subscriber started")

		statsScheduler := scheduler.NewScheduler(eventService, taskPublisher, cfg.Worker.StatsInterval)
		go statsScheduler.Start(ctx)
		logrus.Info("Stats scheduler started")
	} else {
		statsWorker := worker.NewStatsRefreshWorker(eventService, cfg.Worker.StatsInterval)
		go statsWorker.Start(ctx)
		logrus.Info("Stats refresh worker started")
	}

	// Initialize handlers
	promoHandler := transport.NewPromoHandler(promoService)
	eventHandler := transport.NewEventHandler(eventService)
	bookingHandler := transport.NewBookingHandler(bookingService, pricingService)
	checkinHandler := transport.NewCheckinHandler(checkinService)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(promoHandler, eventHandler, bookingHandler, checkinHandler)); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	if err := srv.Shutdown(context.Background()); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}

	if redisQueue != nil {
		if err := redisQueue.Close(); err != nil {
			logrus.Errorf("error occured on queue shutting down: %s", err.Error())
		}
	}
}

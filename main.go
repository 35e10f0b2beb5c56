package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"restaurant-booking/cmd"
	"restaurant-booking/internal/data/cache"
	"restaurant-booking/internal/data/repository"
	"restaurant-booking/internal/notify"
	"restaurant-booking/internal/usecase"
	"restaurant-booking/internal/wire"
	"restaurant-booking/internal/worker"
	"restaurant-booking/pkg/database"
	"restaurant-booking/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage: PostgreSQL when configured, process memory otherwise
	var repos *repository.Repository
	if config.Database.Host != "" {
		db, err := database.InitDB(config.Database)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if err := database.Migrate(ctx, db); err != nil {
			logger.Fatal("Failed to migrate database", zap.Error(err))
		}
		logger.Info("Database connected successfully")

		repos = repository.NewRepository(db, logger)
	} else {
		logger.Warn("DB_HOST not set, bookings are kept in memory")
		repos = repository.NewMemoryRepository(logger)
	}

	if err := repository.Seed(ctx, repos.Restaurant, logger); err != nil {
		logger.Fatal("Failed to seed restaurants", zap.Error(err))
	}

	deps := usecase.Deps{Publisher: notify.NopPublisher{}}

	// Redis shares slot locks and drafts across instances
	if config.Redis.Addr != "" {
		rdb, err := cache.NewRedisClient(config.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer rdb.Close()

		deps.Locker = cache.NewRedisLocker(rdb, config.Booking.LockTTL, logger)
		deps.Drafts = cache.NewRedisDraftStore(rdb, config.Booking.DraftTTL)
		logger.Info("Redis connected", zap.String("addr", config.Redis.Addr))
	}

	deps.Notifier = newNotifier(ctx, config, logger)

	if len(config.Kafka.Brokers) > 0 {
		publisher := notify.NewKafkaPublisher(config.Kafka.Brokers, config.Kafka.Topic, config.App.Name, 256, logger)
		publisher.Start()
		defer publisher.Close()
		deps.Publisher = publisher
	}

	// Wire all dependencies
	app := wire.Wiring(repos, deps, config, logger)

	completion := worker.NewCompletionWorker(repos, app.Service.Ledger, deps.Publisher, config.App.Location(), logger)
	if err := completion.Start(config.Booking.CompletionEvery); err != nil {
		logger.Fatal("Failed to start completion worker", zap.Error(err))
	}
	defer completion.Stop()

	// Start server
	if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server stopped", zap.Error(err))
	}
}

// newNotifier picks the confirmation channel. With amqp the request path only
// enqueues, and a consumer in this process delivers through SMTP or the log.
func newNotifier(ctx context.Context, config *utils.Config, logger *zap.Logger) notify.Notifier {
	var delivery notify.Notifier = notify.NewLogNotifier(logger)
	if config.Email.Host != "" {
		delivery = notify.Multi{delivery, notify.NewMailNotifier(config.Email, logger)}
	}

	switch config.Booking.NotifyDriver {
	case "smtp":
		return delivery
	case "amqp":
		if config.AMQP.URL == "" {
			logger.Warn("NOTIFY_DRIVER=amqp without AMQP_URL, falling back to log")
			return notify.NewLogNotifier(logger)
		}
		go notify.StartMailConsumer(ctx, config.AMQP.URL, config.AMQP.Queue, delivery, logger)
		queued := notify.NewAMQPNotifier(config.AMQP.URL, config.AMQP.Queue, logger)
		go func() {
			<-ctx.Done()
			if err := queued.Close(); err != nil {
				logger.Warn("Failed to close broker connection", zap.Error(err))
			}
		}()
		return queued
	default:
		return notify.NewLogNotifier(logger)
	}
}

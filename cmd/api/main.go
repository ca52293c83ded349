package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	config "github.com/anjiri1684/therapy_booking/configs"
	"github.com/anjiri1684/therapy_booking/database"
	"github.com/anjiri1684/therapy_booking/jobs"
	"github.com/anjiri1684/therapy_booking/notifications"
	"github.com/anjiri1684/therapy_booking/routes"
	"github.com/anjiri1684/therapy_booking/services"
	"github.com/anjiri1684/therapy_booking/utils"
	"github.com/anjiri1684/therapy_booking/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zl, err := utils.NewLogger(settings.IsProduction(), settings.LogLevel)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.ConnectDB(settings.DatabaseURL, zl)
	if err != nil {
		zl.Fatal("database connection failed", zap.Error(err))
	}
	if err := database.Migrate(db, zl); err != nil {
		zl.Fatal("database migration failed", zap.Error(err))
	}
	tx := database.NewGormTxManager(db, settings.LockTimeout)

	hub := websocket.NewHub(zl)
	go hub.Run(ctx)

	notifier := notifications.Fanout{hub}
	var lease jobs.Lease
	if settings.RedisAddr != "" {
		redisOpt := asynq.RedisClientOpt{
			Addr:     settings.RedisAddr,
			Password: settings.RedisPassword,
			DB:       settings.RedisDB,
		}
		queue := asynq.NewClient(redisOpt)
		defer queue.Close()
		notifier = append(notifier, notifications.NewQueueNotifier(queue, zl))

		sender := notifications.NewBrevoService(settings.BrevoAPIKey, settings.EmailSender, settings.EmailSenderName, zl)
		var emailSender notifications.Sender
		if sender != nil {
			emailSender = sender
		}
		worker, mux := notifications.NewWorker(redisOpt,
			notifications.NewSlotEventHandler(services.NewUserDirectory(tx, settings.StorageTimeout), emailSender, zl))
		if err := worker.Start(mux); err != nil {
			zl.Fatal("notification worker failed to start", zap.Error(err))
		}
		defer worker.Shutdown()

		rdb := redis.NewClient(&redis.Options{
			Addr:     settings.RedisAddr,
			Password: settings.RedisPassword,
			DB:       settings.RedisDB,
		})
		defer rdb.Close()
		lease = jobs.NewRedisLease(rdb, "therapy_booking:sweep", settings.SweepLeaseTTL)
	} else {
		zl.Warn("REDIS_ADDR not set, notifications go to the live stream only")
	}

	prices := services.NewPriceResolver(tx, settings.StorageTimeout, zl)
	generator := services.NewScheduleGenerator(tx, settings.StorageTimeout, zl)
	coordinator := services.NewBookingCoordinator(tx, notifier, zl, services.BookingPolicy{
		CancellationCutoff: settings.CancellationCutoff,
		StorageTimeout:     settings.StorageTimeout,
	})

	sweepOpts := []jobs.SweeperOption{
		jobs.WithBatchSize(settings.SweepBatchSize),
		jobs.WithStorageTimeout(settings.StorageTimeout),
	}
	if lease != nil {
		sweepOpts = append(sweepOpts, jobs.WithLease(lease))
	}
	sweeper := jobs.NewExpirySweeper(tx, notifier, zl, sweepOpts...)
	reminder := jobs.NewSessionReminder(tx, notifier, zl, settings.StorageTimeout)

	c, err := jobs.Schedule(sweeper, settings.SweepSchedule, reminder, settings.ReminderSchedule, zl)
	if err != nil {
		zl.Fatal("job scheduling failed", zap.Error(err))
	}
	c.Start()
	defer c.Stop()

	app := fiber.New(fiber.Config{
		AppName:       "Therapy Booking",
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			zl.Error("unhandled request error",
				zap.Error(err),
				zap.String("path", c.Path()),
				zap.String("method", c.Method()),
			)
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "UTC",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	deps := routes.Deps{
		Coordinator:  coordinator,
		Generator:    generator,
		Prices:       prices,
		Hub:          hub,
		JWTSecret:    settings.JWTSecret,
		TimeCapHours: settings.TimeCapHours,
		Logger:       zl,
	}
	routes.TherapistRoutes(app, deps)
	routes.BookingRoutes(app, deps)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			zl.Error("http shutdown error", zap.Error(err))
		}
	}()

	zl.Info("server listening", zap.String("port", settings.AppPort))
	if err := app.Listen(":" + settings.AppPort); err != nil {
		zl.Error("server stopped", zap.Error(err))
	}
}

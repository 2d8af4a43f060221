package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"partnerhub/config"
	"partnerhub/internal/db"
	"partnerhub/internal/notifier"
	redisclient "partnerhub/internal/redis"
	"partnerhub/internal/repository"
	"partnerhub/internal/service"
	"partnerhub/pkg/logger"
)

func main() {
	cfg := config.Load()

	logg := logger.NewLogger()
	defer logg.Sync()

	logg.Info("Starting reminder scheduler...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("interval_minutes", cfg.Cron.IntervalMinutes),
	)

	dbConn, err := db.NewConnection(cfg.DB, logg)
	if err != nil {
		logg.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	rdb := redisclient.NewClient(cfg.Redis)
	defer rdb.Close()

	var n notifier.Notifier
	switch cfg.Notifier.Mode {
	case "smtp":
		n = notifier.NewSMTPNotifier(cfg.SMTP)
	default:
		amqpNotifier, err := notifier.NewAMQPNotifier(cfg.MQ.URL)
		if err != nil {
			log.Fatalf("failed to init notifier: %v", err)
		}
		defer amqpNotifier.Close()
		n = amqpNotifier
	}

	churchRepo := repository.NewChurchRepository(dbConn)
	callRepo := repository.NewCallRepository(dbConn)
	followUpRepo := repository.NewFollowUpRepository(dbConn)
	runLock := redisclient.NewRunLock(rdb, 2*time.Minute)

	reminderService := service.NewReminderService(churchRepo, callRepo, followUpRepo, runLock, n, logg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Cron.IntervalMinutes) * time.Minute)
		defer ticker.Stop()

		// first run right away, then on every tick
		reminderService.Run(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				reminderService.Run(ctx)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logg.Info("Shutting down reminder scheduler")
	cancel()
}

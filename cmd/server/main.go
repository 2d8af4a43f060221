package main

import (
	"log"
	"time"

	"go.uber.org/zap"

	"partnerhub/config"
	"partnerhub/internal/api"
	"partnerhub/internal/db"
	"partnerhub/internal/notifier"
	redisclient "partnerhub/internal/redis"
	"partnerhub/internal/repository"
	"partnerhub/internal/service"
	"partnerhub/pkg/logger"
)

func main() {
	// Load config
	cfg := config.Load()

	logg := logger.NewLogger()
	defer logg.Sync()

	if cfg.Cron.Secret == "" {
		logg.Warn("CRON_SECRET is not set; the cron trigger endpoint accepts any caller")
	}

	// Init DB
	dbConn, err := db.NewConnection(cfg.DB, logg)
	if err != nil {
		logg.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// Init Redis
	rdb := redisclient.NewClient(cfg.Redis)
	defer rdb.Close()

	// Init Notifier
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

	// Init Repositories
	churchRepo := repository.NewChurchRepository(dbConn)
	milestoneRepo := repository.NewMilestoneRepository(dbConn)
	progressRepo := repository.NewProgressRepository(dbConn)
	attachmentRepo := repository.NewAttachmentRepository(dbConn)
	callRepo := repository.NewCallRepository(dbConn)
	leaderRepo := repository.NewLeaderRepository(dbConn)
	groupRepo := repository.NewGroupRepository(dbConn)
	invitationRepo := repository.NewInvitationRepository(dbConn)
	followUpRepo := repository.NewFollowUpRepository(dbConn)
	auditRepo := repository.NewAuditRepository(dbConn)
	phaseRepo := repository.NewPhaseRepository(dbConn)

	// Init Services
	auditService := service.NewAuditService(auditRepo, logg)
	statusService := service.NewStatusService(churchRepo, auditService, n, logg)
	orderingService := service.NewOrderingService(milestoneRepo, progressRepo, attachmentRepo, callRepo, groupRepo, auditService, logg)
	progressService := service.NewProgressService(progressRepo, milestoneRepo, groupRepo, auditService, logg)
	identityService := service.NewIdentityService(leaderRepo, logg)
	invitationService := service.NewInvitationService(groupRepo, invitationRepo, leaderRepo, identityService, n, logg)

	runLock := redisclient.NewRunLock(rdb, 2*time.Minute)
	reminderService := service.NewReminderService(churchRepo, callRepo, followUpRepo, runLock, n, logg)

	// Init Handlers
	churchHandler := api.NewChurchHandler(statusService, auditService)
	milestoneHandler := api.NewMilestoneHandler(orderingService, progressService, phaseRepo)
	invitationHandler := api.NewInvitationHandler(invitationService, identityService)
	cronHandler := api.NewCronHandler(reminderService)

	// Router
	router := api.NewRouter(churchHandler, milestoneHandler, invitationHandler, cronHandler, cfg.JWT.Secret, cfg.Cron.Secret)

	// Start API server
	if err := router.Run(cfg.Server.Port); err != nil {
		logg.Fatal("server start failed", zap.Error(err))
	}
}

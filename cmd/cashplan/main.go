package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cashplan/internal/api"
	"cashplan/internal/config"
	"cashplan/internal/logger"
	"cashplan/internal/notify"
	"cashplan/internal/repository"
	"cashplan/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db")
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	recurringRepo := repository.NewRecurringRepository(db)

	ledgerSvc := service.NewLedgerService(db, txRepo, accountRepo)
	recurringSvc := service.NewRecurringService(db, recurringRepo, txRepo, ledgerSvc, log)
	reportSvc := service.NewReportService(recurringRepo, txRepo)

	var notifier *notify.Notifier
	if cfg.TelegramToken != "" {
		notifier, err = notify.New(cfg.TelegramToken, userRepo, reportSvc, log)
		if err != nil {
			log.Fatal().Err(err).Msg("notifier")
		}
	}

	scheduler := service.NewSchedulerService(time.UTC)

	// Daily sweep: execute everything due.
	if _, err := scheduler.ScheduleDaily(cfg.SweepTime, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		recurringSvc.ExecutePending(jobCtx)
	}); err != nil {
		log.Fatal().Err(err).Msg("schedule sweep")
	}

	// Morning scan and periodic summaries are read-only; they run only when a
	// delivery channel is configured.
	if notifier != nil {
		if _, err := scheduler.ScheduleDaily(cfg.NotifyTime, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if err := notifier.SendDueToday(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("notify scan")
			}
		}); err != nil {
			log.Fatal().Err(err).Msg("schedule notify scan")
		}
		if _, err := scheduler.ScheduleWeekly(time.Monday, "08:05", func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if err := notifier.SendWeeklySummaries(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("weekly summaries")
			}
		}); err != nil {
			log.Fatal().Err(err).Msg("schedule weekly summaries")
		}
		if _, err := scheduler.ScheduleMonthly(1, "08:10", func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if err := notifier.SendMonthlySummaries(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("monthly summaries")
			}
		}); err != nil {
			log.Fatal().Err(err).Msg("schedule monthly summaries")
		}
	}

	scheduler.Start()
	defer scheduler.Stop()

	server := api.NewServer(userRepo, accountRepo, categoryRepo, ledgerSvc, recurringSvc, log)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("cashplan started")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server")
	}
	log.Info().Msg("shutdown complete")
}

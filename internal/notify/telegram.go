package notify

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"cashplan/internal/repository"
	"cashplan/internal/service"
)

// Notifier delivers report texts to users over Telegram. Users without a chat
// id are skipped; one failed delivery never stops the rest.
type Notifier struct {
	api      *tgbotapi.BotAPI
	userRepo *repository.UserRepository
	reports  *service.ReportService
	log      zerolog.Logger
}

func New(token string, userRepo *repository.UserRepository, reports *service.ReportService, log zerolog.Logger) (*Notifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	log.Info().Str("account", api.Self.UserName).Msg("telegram notifier authorized")
	return &Notifier{api: api, userRepo: userRepo, reports: reports, log: log}, nil
}

// SendDueToday delivers the morning notice: executions scheduled today and
// those inside their advance-notice window.
func (n *Notifier) SendDueToday(ctx context.Context) error {
	byUser, err := n.reports.DueToday(ctx)
	if err != nil {
		return err
	}
	for userID, recs := range byUser {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		n.sendToUser(ctx, userID, n.reports.DueTodayText(recs))
	}
	return nil
}

// SendWeeklySummaries delivers the seven-day ledger summary to every user.
func (n *Notifier) SendWeeklySummaries(ctx context.Context) error {
	from, to := n.reports.WeeklyWindow()
	return n.sendSummaries(ctx, from, to)
}

// SendMonthlySummaries delivers the previous calendar month's summary.
func (n *Notifier) SendMonthlySummaries(ctx context.Context) error {
	from, to := n.reports.MonthlyWindow()
	return n.sendSummaries(ctx, from, to)
}

func (n *Notifier) sendSummaries(ctx context.Context, from, to time.Time) error {
	users, err := n.userRepo.ListAll(ctx)
	if err != nil {
		return err
	}
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if user.TelegramChatID == nil {
			continue
		}
		text, err := n.reports.LedgerSummary(ctx, user.ID, from, to)
		if err != nil {
			n.log.Warn().Err(err).Uint("user_id", user.ID).Msg("build ledger summary")
			continue
		}
		if _, err := n.api.Send(tgbotapi.NewMessage(*user.TelegramChatID, text)); err != nil {
			n.log.Warn().Err(err).Uint("user_id", user.ID).Msg("send ledger summary")
		}
	}
	return nil
}

func (n *Notifier) sendToUser(ctx context.Context, userID uint, text string) {
	user, err := n.userRepo.FindByID(ctx, userID)
	if err != nil {
		n.log.Warn().Err(err).Uint("user_id", userID).Msg("load user for notification")
		return
	}
	if user.TelegramChatID == nil {
		return
	}
	if _, err := n.api.Send(tgbotapi.NewMessage(*user.TelegramChatID, text)); err != nil {
		n.log.Warn().Err(err).Uint("user_id", userID).Msg("send notification")
	}
}

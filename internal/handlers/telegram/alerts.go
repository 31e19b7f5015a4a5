package telegram

import (
	"sync"

	"github.com/iwtcode/robotDataAgent"
	"github.com/iwtcode/robotDataAgent/internal/domain/models"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Sender is the part of *tele.Bot used for alerts.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Alerter notifies a chat when poll ticks switch between healthy and failing.
// Repeated failures or successes do not produce messages.
type Alerter struct {
	sender Sender
	chat   tele.Recipient
	logger *zap.Logger

	mu      sync.Mutex
	failing bool
}

// NewAlerter returns nil when the bot is disabled or no chat is configured.
func NewAlerter(cfg *robotDataAgent.Config, bot *Bot, logger *zap.Logger) *Alerter {
	if bot == nil || cfg.TgChatID == 0 {
		return nil
	}
	return newAlerter(bot.Bot, cfg.TgChatID, logger)
}

func newAlerter(sender Sender, chatID int64, logger *zap.Logger) *Alerter {
	return &Alerter{
		sender: sender,
		chat:   tele.ChatID(chatID),
		logger: logger.Named("alerts"),
	}
}

func (a *Alerter) OnTick(report models.TickReport) {
	a.mu.Lock()
	wasFailing := a.failing
	a.failing = !report.Healthy()
	a.mu.Unlock()

	if wasFailing == !report.Healthy() {
		return
	}

	if _, err := a.sender.Send(a.chat, formatTransition(report, wasFailing)); err != nil {
		a.logger.Warn("failed to send alert", zap.String("tick_id", report.ID), zap.Error(err))
	}
}

func (a *Alerter) OnSkip(string) {}

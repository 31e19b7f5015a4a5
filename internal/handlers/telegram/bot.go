package telegram

import (
	"fmt"
	"time"

	"github.com/iwtcode/robotDataAgent"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
	"gopkg.in/telebot.v3/middleware"
)

type Bot struct {
	Bot    *tele.Bot
	Router *Router
	logger *zap.Logger
}

// NewBot returns nil when no token is configured.
func NewBot(cfg *robotDataAgent.Config, router *Router, logger *zap.Logger) (*Bot, error) {
	if cfg.TgToken == "" {
		return nil, nil
	}
	logger = logger.Named("telegram")

	pref := tele.Settings{
		Token:     cfg.TgToken,
		Poller:    &tele.LongPoller{Timeout: 10 * time.Second},
		ParseMode: tele.ModeHTML,
		OnError: func(err error, c tele.Context) {
			logger.Error("handler error", zap.Error(err))
		},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	b.Use(middleware.Recover())
	b.Use(LogMiddleware(logger))

	// Регистрируем хендлеры
	router.Register(b)

	// Устанавливаем команды для меню
	err = b.SetCommands([]tele.Command{
		{Text: "start", Description: "Главное меню"},
		{Text: "status", Description: "Состояние агента"},
		{Text: "last", Description: "Последняя сохранённая запись"},
		{Text: "kafka", Description: "Последнее сообщение в Kafka (/kafka станция)"},
	})
	if err != nil {
		logger.Warn("Не удалось обновить список команд", zap.Error(err))
	}

	return &Bot{
		Bot:    b,
		Router: router,
		logger: logger,
	}, nil
}

// Start blocks until Stop is called.
func (b *Bot) Start() {
	b.logger.Info("🤖 Бот запущен...")
	b.Bot.Start()
}

func (b *Bot) Stop() {
	b.Bot.Stop()
}

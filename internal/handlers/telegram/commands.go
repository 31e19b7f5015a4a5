package telegram

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"

	"github.com/iwtcode/robotDataAgent"
	"github.com/iwtcode/robotDataAgent/internal/interfaces"
	tele "gopkg.in/telebot.v3"
)

const queryTimeout = 10 * time.Second

type CommandHandler struct {
	menu         *Menu
	statusUC     interfaces.StatusUsecase
	kafkaEnabled bool
}

func NewCommandHandler(
	cfg *robotDataAgent.Config,
	menu *Menu,
	statusUC interfaces.StatusUsecase,
) *CommandHandler {
	return &CommandHandler{
		menu:         menu,
		statusUC:     statusUC,
		kafkaEnabled: cfg.KafkaEnabled(),
	}
}

func (h *CommandHandler) OnStart(c tele.Context) error {
	text := "👋 <b>Robot Data Agent</b>\n\nГлавное меню."
	if c.Callback() != nil {
		return c.Edit(text, h.menu.BuildMainMenu(h.kafkaEnabled))
	}
	return c.Send(text, h.menu.ReplyMain, h.menu.BuildMainMenu(h.kafkaEnabled))
}

func (h *CommandHandler) OnStatus(c tele.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	stored, err := h.statusUC.StoredRows(ctx)
	text := formatStatus(h.statusUC.Snapshot(), stored, err, time.Now())
	return respond(c, text, h.menu.BuildRefresh(cbRefreshStats))
}

func (h *CommandHandler) OnLast(c tele.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	row, err := h.statusUC.LastRow(ctx)
	if err != nil {
		safeErr := html.EscapeString(err.Error())
		return respond(c, "❌ Ошибка чтения robot_data:\n"+safeErr, h.menu.BuildRefresh(cbRefreshLast))
	}
	return respond(c, formatRow(row), h.menu.BuildRefresh(cbRefreshLast))
}

// OnKafka обрабатывает /kafka [станция]
func (h *CommandHandler) OnKafka(c tele.Context) error {
	var workstation string
	if msg := c.Message(); msg != nil && c.Callback() == nil {
		workstation = strings.TrimSpace(msg.Payload)
	}
	return h.ShowKafka(c, workstation)
}

// ShowKafka показывает последнее сообщение, отправленное агентом в Kafka,
// при заданной станции — последнее сообщение с её ключом
func (h *CommandHandler) ShowKafka(c tele.Context, workstation string) error {
	if !h.kafkaEnabled {
		return respond(c, "📨 Публикация в Kafka отключена.", nil)
	}
	_ = c.Notify(tele.Typing)

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	refresh := h.menu.BuildRefresh(cbRefreshKafka, workstation)
	msg, err := h.statusUC.LastPublished(ctx, workstation)
	if err != nil {
		safeErr := html.EscapeString(err.Error())
		return respond(c, "❌ Error:\n"+safeErr, refresh)
	}
	return respond(c, formatKafkaMessage(msg, workstation), refresh)
}

func (h *CommandHandler) OnText(c tele.Context) error {
	input := strings.TrimSpace(c.Text())

	// Menu Commands (Reply Keyboard)
	switch input {
	case h.menu.BtnStatus.Text:
		return h.OnStatus(c)
	case h.menu.BtnLast.Text:
		return h.OnLast(c)
	case h.menu.BtnKafka.Text:
		return h.OnKafka(c)
	default:
		return h.OnStart(c)
	}
}

// respond редактирует сообщение при нажатии инлайн кнопки, иначе отправляет новое
func respond(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	opts := []interface{}{}
	if markup != nil {
		opts = append(opts, markup)
	}
	if c.Callback() != nil {
		err := c.Edit(text, opts...)
		if errors.Is(err, tele.ErrSameMessageContent) {
			return nil
		}
		return err
	}
	return c.Send(text, opts...)
}

package telegram

import (
	"strings"

	tele "gopkg.in/telebot.v3"
)

type CallbackHandler struct {
	cmdHandler *CommandHandler
}

func NewCallbackHandler(cmd *CommandHandler) *CallbackHandler {
	return &CallbackHandler{cmdHandler: cmd}
}

func (h *CallbackHandler) OnCallback(c tele.Context) error {
	defer c.Respond()
	data := strings.TrimSpace(c.Callback().Data)
	action, payload, _ := strings.Cut(data, "|")

	switch action {
	case cbHome:
		return h.cmdHandler.OnStart(c)
	case cbStatus, cbRefreshStats:
		return h.cmdHandler.OnStatus(c)
	case cbLast, cbRefreshLast:
		return h.cmdHandler.OnLast(c)
	case cbKafka, cbRefreshKafka:
		return h.cmdHandler.ShowKafka(c, payload)
	}
	return nil
}

package telegram

import (
	tele "gopkg.in/telebot.v3"
)

type Router struct {
	menu      *Menu
	commands  *CommandHandler
	callbacks *CallbackHandler
}

func NewRouter(menu *Menu, cmd *CommandHandler, cb *CallbackHandler) *Router {
	return &Router{
		menu:      menu,
		commands:  cmd,
		callbacks: cb,
	}
}

func (r *Router) Register(b *tele.Bot) {
	// Commands
	b.Handle("/start", r.commands.OnStart)
	b.Handle("/status", r.commands.OnStatus)
	b.Handle("/last", r.commands.OnLast)
	b.Handle("/kafka", r.commands.OnKafka)

	// Reply Keyboard
	b.Handle(&r.menu.BtnStatus, r.commands.OnStatus)
	b.Handle(&r.menu.BtnLast, r.commands.OnLast)
	b.Handle(&r.menu.BtnKafka, r.commands.OnKafka)
	b.Handle(&r.menu.BtnHome, r.commands.OnStart)

	// Callbacks & Text
	b.Handle(tele.OnCallback, r.callbacks.OnCallback)
	b.Handle(tele.OnText, r.commands.OnText)
}

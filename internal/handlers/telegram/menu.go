package telegram

import (
	tele "gopkg.in/telebot.v3"
)

const (
	cbHome         = "home"
	cbStatus       = "status"
	cbLast         = "last"
	cbKafka        = "kafka"
	cbRefreshStats = "refresh_status"
	cbRefreshLast  = "refresh_last"
	cbRefreshKafka = "refresh_kafka"
)

type Menu struct {
	// Reply Main (Нижняя клавиатура)
	ReplyMain *tele.ReplyMarkup
	BtnStatus tele.Btn
	BtnLast   tele.Btn
	BtnKafka  tele.Btn
	BtnHome   tele.Btn

	// Inline
	BtnHomeInline tele.Btn
}

func NewMenu() *Menu {
	replyMain := &tele.ReplyMarkup{ResizeKeyboard: true}
	inline := &tele.ReplyMarkup{}

	// Reply Buttons (Названия синхронизированы с Inline)
	btnStatus := replyMain.Text("📊 Состояние")
	btnLast := replyMain.Text("🤖 Последняя запись")
	btnKafka := replyMain.Text("📨 Kafka")
	btnHome := replyMain.Text("🏠 В начало")

	replyMain.Reply(
		replyMain.Row(btnStatus, btnLast),
		replyMain.Row(btnKafka, btnHome),
	)

	return &Menu{
		ReplyMain:     replyMain,
		BtnStatus:     btnStatus,
		BtnLast:       btnLast,
		BtnKafka:      btnKafka,
		BtnHome:       btnHome,
		BtnHomeInline: inline.Data("🏠 В начало", cbHome),
	}
}

// BuildMainMenu создает инлайн меню для команды /start
func (m *Menu) BuildMainMenu(kafkaEnabled bool) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}

	rows := []tele.Row{
		markup.Row(markup.Data("📊 Состояние", cbStatus)),
		markup.Row(markup.Data("🤖 Последняя запись", cbLast)),
	}
	if kafkaEnabled {
		rows = append(rows, markup.Row(markup.Data("📨 Kafka", cbKafka)))
	}

	markup.Inline(rows...)
	return markup
}

// BuildRefresh возвращает кнопку обновления для экрана с данными.
// payload передаётся обратно в callback (например, станция для /kafka).
func (m *Menu) BuildRefresh(unique string, payload ...string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	var data []string
	for _, p := range payload {
		if p != "" {
			data = append(data, p)
		}
	}
	markup.Inline(
		markup.Row(markup.Data("🔄 Обновить", unique, data...)),
		markup.Row(m.BtnHomeInline),
	)
	return markup
}

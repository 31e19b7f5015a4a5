package telegram

import (
	"encoding/json"
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/iwtcode/robotDataAgent/internal/domain/entities"
	"github.com/iwtcode/robotDataAgent/internal/domain/models"
)

const maxMessageBody = 3800

func formatStatus(snap models.StatusSnapshot, stored int64, storedErr error, now time.Time) string {
	var sb strings.Builder

	sb.WriteString("📊 <b>Состояние агента</b>\n\n")
	fmt.Fprintf(&sb, "Работает: <code>%s</code>\n", now.Sub(snap.StartedAt).Truncate(time.Second))
	if snap.SchemaReady {
		sb.WriteString("Таблица robot_data: ✅\n")
	} else {
		sb.WriteString("Таблица robot_data: ⚠️ не подтверждена\n")
	}

	sb.WriteString("\n<b>Последний опрос</b>\n")
	if last := snap.Last; last != nil {
		fmt.Fprintf(&sb, "%s <code>%s</code> в %s (%s)\n",
			resultIcon(*last), last.Result(), last.StartedAt.Format("15:04:05"), last.Duration.Truncate(time.Millisecond))
		fmt.Fprintf(&sb, "Получено: %d, записано: %d, ошибок: %d\n", last.Received, last.Inserted, last.Failed)
		if last.FetchErr != nil {
			fmt.Fprintf(&sb, "Ошибка: <code>%s</code>\n", html.EscapeString(last.FetchErr.Error()))
		}
	} else {
		sb.WriteString("ещё не было\n")
	}

	sb.WriteString("\n<b>Всего</b>\n")
	fmt.Fprintf(&sb, "Опросов: %d (пропущено: %d, неудачных: %d)\n", snap.Ticks, snap.SkippedTicks, snap.FailedFetches)
	fmt.Fprintf(&sb, "Записей получено: %d, сохранено: %d, ошибок: %d\n", snap.Received, snap.Inserted, snap.Failed)
	if snap.Published > 0 {
		fmt.Fprintf(&sb, "Отправлено в Kafka: %d\n", snap.Published)
	}
	if storedErr != nil {
		fmt.Fprintf(&sb, "Строк в таблице: ❌ <code>%s</code>", html.EscapeString(storedErr.Error()))
	} else {
		fmt.Fprintf(&sb, "Строк в таблице: %d", stored)
	}
	return sb.String()
}

func formatRow(row *entities.RobotData) string {
	if row == nil {
		return "🤖 Таблица robot_data пока пуста."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🤖 <b>Запись #%d</b>\n\n", row.ID)
	if row.Timestamp != nil {
		fmt.Fprintf(&sb, "Время: <code>%s</code>\n", row.Timestamp.UTC().Format(time.RFC3339))
	} else {
		sb.WriteString("Время: <code>NULL</code>\n")
	}
	fmt.Fprintf(&sb, "Площадка: %s / %s / %s / %s\n",
		text(row.Organization), text(row.Division), text(row.Plant), text(row.Line))
	fmt.Fprintf(&sb, "Станция: <b>%s</b> (%s, %s)\n", text(row.Workstation), text(row.Type), text(row.Tag))
	fmt.Fprintf(&sb, "Позиция: X=%s Y=%s Z=%s\n", number(row.PositionX), number(row.PositionY), number(row.PositionZ))
	fmt.Fprintf(&sb, "Флаги: init=%s run=%s ws=%s pause=%s\n",
		flag(row.Initialized), flag(row.Running), flag(row.WSViolation), flag(row.Paused))
	fmt.Fprintf(&sb, "Скорость: %s%%, деталей: %s\n", integer(row.SpeedPercentage), integer(row.FinishedPartNum))
	fmt.Fprintf(&sb, "Моменты: %s / %s / %s / %s",
		number(row.M1Torque), number(row.M2Torque), number(row.M3Torque), number(row.M4Torque))
	return sb.String()
}

func formatKafkaMessage(msg *models.PublishedMessage, workstation string) string {
	if msg == nil {
		if workstation != "" {
			return fmt.Sprintf("📨 Нет сообщений станции <code>%s</code> среди последних %d.",
				html.EscapeString(workstation), models.WorkstationScanDepth)
		}
		return "📨 Топик пока пуст."
	}

	pretty := prettyPrintJSON(msg.Value)
	if len(pretty) > maxMessageBody {
		pretty = pretty[:maxMessageBody] + "\n...[truncated]"
	}
	header := fmt.Sprintf("📨 <b>Kafka</b> key=<code>%s</code> offset=%d", html.EscapeString(msg.Key), msg.Offset)
	if !msg.Time.IsZero() {
		header += " " + msg.Time.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("%s\n<pre>%s</pre>", header, html.EscapeString(pretty))
}

// formatTransition renders the alert sent when ticks switch between healthy
// and failing.
func formatTransition(report models.TickReport, recovered bool) string {
	if recovered {
		return fmt.Sprintf("✅ <b>Опрос восстановлен</b>\nПолучено: %d, записано: %d", report.Received, report.Inserted)
	}

	if report.FetchStatus == models.FetchFailed {
		msg := "unknown error"
		if report.FetchErr != nil {
			msg = report.FetchErr.Error()
		}
		return fmt.Sprintf("🚨 <b>Ошибка получения данных</b>\n<code>%s</code>", html.EscapeString(msg))
	}
	return fmt.Sprintf("🚨 <b>Ошибка записи в БД</b>\nЗаписано: %d из %d", report.Inserted, report.Received)
}

func resultIcon(r models.TickReport) string {
	switch {
	case !r.Healthy():
		return "❌"
	case r.FetchStatus == models.FetchEmpty:
		return "⚪️"
	default:
		return "✅"
	}
}

func text(s *string) string {
	if s == nil {
		return "—"
	}
	return html.EscapeString(*s)
}

func number(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func integer(n *int64) string {
	if n == nil {
		return "—"
	}
	return strconv.FormatInt(*n, 10)
}

func flag(b bool) string {
	if b {
		return "✅"
	}
	return "▫️"
}

func prettyPrintJSON(input string) string {
	var temp interface{}
	if err := json.Unmarshal([]byte(input), &temp); err != nil {
		return input
	}
	pretty, _ := json.MarshalIndent(temp, "", "  ")
	return string(pretty)
}

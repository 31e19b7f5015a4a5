package telegram

import (
	"strings"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

func LogMiddleware(logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			var (
				userID   int64
				username string
			)
			if user := c.Sender(); user != nil {
				userID = user.ID
				username = user.FirstName
				if user.Username != "" {
					username += " (@" + user.Username + ")"
				}
			}

			// Определяем контент сообщения
			content := strings.TrimSpace(c.Text())
			prefix := "TEXT"

			if cb := c.Callback(); cb != nil {
				prefix = "BTN"
				// Data содержит payload, у статических кнопок бывает пустой
				content = strings.TrimSpace(cb.Data)
				if content == "" {
					content = strings.TrimSpace(cb.Unique)
				}
			}

			fields := []zap.Field{
				zap.Int64("user_id", userID),
				zap.String("user", username),
				zap.String("type", prefix),
				zap.String("content", content),
				zap.Duration("duration", duration),
			}
			if err != nil {
				logger.Warn("update handled with error", append(fields, zap.Error(err))...)
			} else {
				logger.Info("update handled", fields...)
			}

			return err
		}
	}
}

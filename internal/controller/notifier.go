package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/signbridge/internal/controller/formatting"
	"github.com/Freeeeeet/signbridge/internal/controller/handlers"
	"github.com/Freeeeeet/signbridge/internal/model"
	"github.com/Freeeeeet/signbridge/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// MessageSender часть API бота, нужная для уведомлений
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

type userLookup interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// TelegramNotifier доставляет события участникам, у которых привязан Telegram
type TelegramNotifier struct {
	sender MessageSender
	users  userLookup
	loc    *time.Location
	logger *zap.Logger
}

func NewTelegramNotifier(sender MessageSender, users userLookup, loc *time.Location, logger *zap.Logger) *TelegramNotifier {
	if loc == nil {
		loc = time.UTC
	}
	return &TelegramNotifier{sender: sender, users: users, loc: loc, logger: logger}
}

type delivery struct {
	userID int64
	text   string
	markup models.ReplyMarkup
}

// Notify отправляет сообщения получателям события.
// Пользователи без Telegram пропускаются.
func (n *TelegramNotifier) Notify(ctx context.Context, event service.Event) error {
	for _, d := range n.deliveries(event) {
		if d.userID == 0 || d.userID == event.ActorID {
			continue
		}

		user, err := n.users.GetByID(ctx, d.userID)
		if err != nil {
			return fmt.Errorf("get recipient %d: %w", d.userID, err)
		}
		if user == nil || user.TelegramID == nil {
			continue
		}

		params := &bot.SendMessageParams{ChatID: *user.TelegramID, Text: d.text}
		if d.markup != nil {
			params.ReplyMarkup = d.markup
		}
		if _, err := n.sender.SendMessage(ctx, params); err != nil {
			return fmt.Errorf("send %s to user %d: %w", event.Type, d.userID, err)
		}

		n.logger.Debug("Notification sent",
			zap.String("type", string(event.Type)),
			zap.Int64("user_id", d.userID))
	}
	return nil
}

func (n *TelegramNotifier) deliveries(e service.Event) []delivery {
	when := formatting.FormatAppointmentTime(e.Start.In(n.loc), e.End.In(n.loc))

	switch e.Type {
	case service.EventRequestCreated:
		return []delivery{{
			userID: e.InterpreterID,
			text:   "📨 Новый запрос на встречу\n\n🕐 " + when + "\n\nОтветьте кнопками ниже или через /requests",
			markup: handlers.RequestKeyboard(e.RequestID),
		}}
	case service.EventRequestAccepted:
		return []delivery{{userID: e.DeafUserID, text: "✅ Переводчик подтвердил встречу\n\n🕐 " + when}}
	case service.EventRequestRejected:
		return []delivery{{userID: e.DeafUserID, text: "🚫 Переводчик не сможет прийти\n\n🕐 " + when + "\n\nПопробуйте найти другого переводчика."}}
	case service.EventRequestExpired:
		return []delivery{
			{userID: e.DeafUserID, text: "⌛ Переводчик не ответил на запрос\n\n🕐 " + when},
			{userID: e.InterpreterID, text: "⌛ Запрос #" + fmt.Sprint(e.RequestID) + " истёк без ответа"},
		}
	case service.EventAppointmentCancelled:
		text := "❌ Встреча отменена\n\n🕐 " + when
		return []delivery{
			{userID: e.DeafUserID, text: text},
			{userID: e.InterpreterID, text: text},
		}
	case service.EventAppointmentCompleted:
		return []delivery{{userID: e.DeafUserID, text: "⭐ Встреча завершена. Оцените работу переводчика в приложении."}}
	default:
		return nil
	}
}

package handlers

import (
	"context"

	"github.com/Freeeeeet/signbridge/internal/controller/keyboard"
	"github.com/Freeeeeet/signbridge/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleCallbackQuery распределяет нажатия inline кнопок
func (h *Handlers) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	callback := update.CallbackQuery
	if callback == nil {
		return
	}

	prefix, value, err := keyboard.Parse(callback.Data)
	if err != nil {
		h.logger.Warn("Bad callback data", zap.String("data", callback.Data), zap.Error(err))
		h.answerCallback(ctx, b, callback.ID, "❌ Неверный формат данных", true)
		return
	}

	h.logger.Info("Routing callback",
		zap.String("data", callback.Data),
		zap.Int64("telegram_id", callback.From.ID))

	switch prefix {
	case keyboard.Noop:
		h.answerCallback(ctx, b, callback.ID, "", false)
		return
	case keyboard.CancelDialog:
		h.stateManager.ClearState(callback.From.ID)
		h.answerCallback(ctx, b, callback.ID, "Отменено", false)
		return
	case keyboard.ConfirmInterpreter:
		h.handleBecomeInterpreterConfirm(ctx, b, callback)
		return
	}

	chatID := int64(0)
	if msg := callback.Message.Message; msg != nil {
		chatID = msg.Chat.ID
	}
	user, ok := h.loadUser(ctx, b, callback.From.ID, chatID)
	if !ok {
		h.answerCallback(ctx, b, callback.ID, "", false)
		return
	}
	if !user.IsInterpreter() {
		h.answerCallback(ctx, b, callback.ID, "❌ Доступно только переводчикам", true)
		return
	}

	switch prefix {
	case keyboard.AcceptRequest:
		h.handleRespond(ctx, b, callback, user, value, true)
	case keyboard.RejectRequest:
		h.handleRespond(ctx, b, callback, user, value, false)
	case keyboard.DeleteDay:
		h.handleDeleteDay(ctx, b, callback, user, value)
	case keyboard.ShowWeek:
		h.handleShowWeek(ctx, b, callback, user, clampOffset(value))
	default:
		h.logger.Warn("Unknown callback", zap.String("data", callback.Data))
		h.answerCallback(ctx, b, callback.ID, "", false)
	}
}

func (h *Handlers) handleBecomeInterpreterConfirm(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	user, err := h.userService.BecomeInterpreter(ctx, callback.From.ID)
	if err != nil {
		h.logger.Error("Failed to become interpreter", zap.Int64("telegram_id", callback.From.ID), zap.Error(err))
		h.answerCallback(ctx, b, callback.ID, service.UserMessage(err), true)
		return
	}

	h.answerCallback(ctx, b, callback.ID, "✅ Готово", false)
	if msg := callback.Message.Message; msg != nil {
		h.sendMessage(ctx, b, msg.Chat.ID, "🎉 "+user.DisplayName()+", теперь вы переводчик!\n\n"+
			"Дальше:\n/setavailability - Рабочие дни и часы\n/setlocation - Регион работы")
	}
}

package handlers

import (
	"context"

	"github.com/Freeeeeet/signbridge/internal/model"
	"github.com/Freeeeeet/signbridge/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// loadUser находит пользователя по telegram ID и сообщает об ошибке в чат
func (h *Handlers) loadUser(ctx context.Context, b *bot.Bot, telegramID, chatID int64) (*model.User, bool) {
	user, err := h.userService.GetByTelegramID(ctx, telegramID)
	if err != nil {
		h.logger.Error("Failed to get user", zap.Int64("telegram_id", telegramID), zap.Error(err))
		h.sendMessage(ctx, b, chatID, "❌ "+service.UserMessage(err))
		return nil, false
	}

	if user == nil {
		h.sendMessage(ctx, b, chatID, "❌ Пользователь не найден. Используйте /start для регистрации.")
		return nil, false
	}

	return user, true
}

// requireInterpreter проверяет что автор сообщения переводчик
func (h *Handlers) requireInterpreter(ctx context.Context, b *bot.Bot, update *models.Update) (*model.User, bool) {
	if update.Message == nil || update.Message.From == nil {
		return nil, false
	}

	user, ok := h.loadUser(ctx, b, update.Message.From.ID, update.Message.Chat.ID)
	if !ok {
		return nil, false
	}

	if !user.IsInterpreter() {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "❌ Эта команда доступна только переводчикам.\n\nСтать переводчиком: /becomeinterpreter")
		return nil, false
	}

	return user, true
}

// sendMessage отправляет сообщение и логирует если не удалось
func (h *Handlers) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string, markup ...models.ReplyMarkup) {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if len(markup) > 0 {
		params.ReplyMarkup = markup[0]
	}

	if _, err := b.SendMessage(ctx, params); err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

// answerCallback отвечает на callback query
func (h *Handlers) answerCallback(ctx context.Context, b *bot.Bot, callbackID, text string, alert bool) {
	_, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       alert,
	})
	if err != nil {
		h.logger.Warn("Failed to answer callback", zap.Error(err))
	}
}

package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/signbridge/internal/controller/keyboard"
	"github.com/Freeeeeet/signbridge/internal/controller/state"
	"github.com/Freeeeeet/signbridge/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const helpText = "📚 Справка по командам:\n\n" +
	"/start - Начать работу с ботом\n" +
	"/becomeinterpreter - Зарегистрироваться как переводчик\n" +
	"/help - Показать эту справку\n\n" +
	"Для переводчиков:\n" +
	"/availability - Рабочее время на неделю\n" +
	"/setavailability - Задать рабочие дни и часы\n" +
	"/setlocation - Указать штат или регион\n" +
	"/requests - Запросы, ожидающие ответа\n" +
	"/cancel - Отменить текущий ввод"

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	from := update.Message.From
	user, err := h.userService.RegisterUser(ctx, from.ID, from.Username, from.FirstName, from.LastName)
	if err != nil {
		h.logger.Error("Failed to register user", zap.Int64("telegram_id", from.ID), zap.Error(err))
		h.sendMessage(ctx, b, update.Message.Chat.ID, "❌ Произошла ошибка при регистрации. Попробуйте позже.")
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, fmt.Sprintf(
		"👋 Привет, %s!\n\n"+
			"Через этого бота сурдопереводчики ведут своё расписание "+
			"и отвечают на запросы о встречах.\n\n%s",
		user.DisplayName(), helpText,
	))
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText)
}

// HandleBecomeInterpreter обрабатывает команду /becomeinterpreter
func (h *Handlers) HandleBecomeInterpreter(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	user, ok := h.loadUser(ctx, b, update.Message.From.ID, update.Message.Chat.ID)
	if !ok {
		return
	}

	if user.IsInterpreter() {
		h.sendMessage(ctx, b, update.Message.Chat.ID,
			"✅ Вы уже переводчик!\n\nИспользуйте:\n/setavailability - Рабочее время\n/requests - Запросы")
		return
	}

	kb := keyboard.NewBuilder().
		Row(keyboard.Button("✅ Да, я переводчик", keyboard.ConfirmInterpreter)).
		Row(keyboard.Button("❌ Отмена", keyboard.CancelDialog)).
		Build()

	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"🤟 Стать переводчиком\n\n"+
			"Как переводчик вы сможете:\n"+
			"• Указать рабочие дни и часы\n"+
			"• Получать запросы на встречи\n"+
			"• Принимать или отклонять их прямо в боте\n\n"+
			"Продолжить?",
		kb,
	)
}

// HandleCancel обрабатывает команду /cancel - отмена текущего диалога
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	telegramID := update.Message.From.ID
	if h.stateManager.GetState(telegramID) == state.StateNone {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "❌ Нет активных операций для отмены.")
		return
	}

	h.stateManager.ClearState(telegramID)
	h.sendMessage(ctx, b, update.Message.Chat.ID, "✅ Операция отменена.\n\nИспользуйте /help для просмотра доступных команд.")
}

// HandleTextMessage обрабатывает текстовые сообщения в зависимости от состояния пользователя
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
		return
	}

	// Команды обрабатываются другими handlers
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	telegramID := update.Message.From.ID
	switch current := h.stateManager.GetState(telegramID); current {
	case state.StateNone:
		return
	case state.StateSetAvailability:
		h.handleAvailabilityInput(ctx, b, update)
	case state.StateSetLocation:
		h.handleLocationInput(ctx, b, update)
	default:
		h.logger.Warn("Unknown state", zap.String("state", string(current)))
		h.stateManager.ClearState(telegramID)
	}
}

// HandleSetLocation обрабатывает команду /setlocation
func (h *Handlers) HandleSetLocation(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireInterpreter(ctx, b, update)
	if !ok {
		return
	}

	telegramID := update.Message.From.ID
	h.stateManager.SetState(telegramID, state.StateSetLocation)
	h.stateManager.SetData(telegramID, "user_id", user.ID)

	current := user.Location
	if current == "" {
		current = "не указан"
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, fmt.Sprintf(
		"📍 Текущий регион: %s\n\nВведите штат или регион, в котором вы работаете (например, NSW).\n\nДля отмены используйте /cancel",
		current,
	))
}

func (h *Handlers) handleLocationInput(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	location := strings.TrimSpace(update.Message.Text)
	if location == "" || len([]rune(location)) > 64 {
		h.sendMessage(ctx, b, chatID, "❌ Регион должен быть от 1 до 64 символов. Попробуйте ещё раз:")
		return
	}

	user, ok := h.loadUser(ctx, b, telegramID, chatID)
	if !ok {
		h.stateManager.ClearState(telegramID)
		return
	}

	if _, err := h.userService.UpdateProfile(ctx, user.ID, user.Gender, user.DateOfBirth, location); err != nil {
		h.logger.Error("Failed to update location", zap.Int64("user_id", user.ID), zap.Error(err))
		h.sendMessage(ctx, b, chatID, "❌ "+service.UserMessage(err))
		return
	}

	h.stateManager.ClearState(telegramID)
	h.sendMessage(ctx, b, chatID, "✅ Регион сохранён: "+location)
}

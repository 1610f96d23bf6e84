package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Freeeeeet/signbridge/internal/controller/formatting"
	"github.com/Freeeeeet/signbridge/internal/controller/keyboard"
	"github.com/Freeeeeet/signbridge/internal/controller/state"
	"github.com/Freeeeeet/signbridge/internal/controller/weekimage"
	"github.com/Freeeeeet/signbridge/internal/model"
	"github.com/Freeeeeet/signbridge/internal/service"
	"github.com/Freeeeeet/signbridge/internal/timerange"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const availabilityPrompt = "🗓 Рабочее время\n\n" +
	"Введите дни недели и интервал в формате:\n" +
	"1,3,5 09:00-17:00\n\n" +
	"1 - понедельник, 7 - воскресенье. Можно диапазон: 1-5 09:00-17:00\n" +
	"До полуночи: 5 18:00-24:00\n" +
	"Уже заданные дни будут перезаписаны.\n\n" +
	"Для отмены используйте /cancel"

// AvailabilityInput разобранный ввод рабочего времени
type AvailabilityInput struct {
	Days  []int
	Start timerange.Clock
	End   timerange.Clock
}

// ParseAvailabilityInput разбирает строку вида "1,3,5 09:00-17:00" или "1-5 9:00-17:30"
func ParseAvailabilityInput(text string) (AvailabilityInput, error) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return AvailabilityInput{}, errors.New("ожидается два поля: дни и интервал")
	}

	days, err := parseDays(fields[0])
	if err != nil {
		return AvailabilityInput{}, err
	}

	rawStart, rawEnd, ok := strings.Cut(fields[1], "-")
	if !ok {
		return AvailabilityInput{}, errors.New("интервал должен быть в формате ЧЧ:ММ-ЧЧ:ММ")
	}
	start, err := timerange.ParseClock(rawStart)
	if err != nil {
		return AvailabilityInput{}, fmt.Errorf("начало: %w", err)
	}
	end, err := timerange.ParseClock(rawEnd)
	if err != nil {
		return AvailabilityInput{}, fmt.Errorf("конец: %w", err)
	}
	if end <= start {
		return AvailabilityInput{}, errors.New("конец должен быть позже начала")
	}

	return AvailabilityInput{Days: days, Start: start, End: end}, nil
}

func parseDays(raw string) ([]int, error) {
	seen := make(map[int]bool)
	for _, part := range strings.Split(raw, ",") {
		if part == "" {
			continue
		}
		from, to := part, part
		if a, b, ok := strings.Cut(part, "-"); ok {
			from, to = a, b
		}
		lo, err := strconv.Atoi(from)
		if err != nil {
			return nil, fmt.Errorf("неверный день %q", part)
		}
		hi, err := strconv.Atoi(to)
		if err != nil {
			return nil, fmt.Errorf("неверный день %q", part)
		}
		if !timerange.ValidDay(lo) || !timerange.ValidDay(hi) || lo > hi {
			return nil, fmt.Errorf("день %q вне диапазона 1-7", part)
		}
		for d := lo; d <= hi; d++ {
			seen[d] = true
		}
	}
	if len(seen) == 0 {
		return nil, errors.New("не указаны дни")
	}

	days := make([]int, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Ints(days)
	return days, nil
}

// HandleSetAvailability обрабатывает команду /setavailability
func (h *Handlers) HandleSetAvailability(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireInterpreter(ctx, b, update)
	if !ok {
		return
	}

	telegramID := update.Message.From.ID
	h.stateManager.SetState(telegramID, state.StateSetAvailability)
	h.stateManager.SetData(telegramID, "user_id", user.ID)

	h.logger.Info("Starting availability dialog",
		zap.Int64("telegram_id", telegramID),
		zap.Int64("interpreter_id", user.ID))

	h.sendMessage(ctx, b, update.Message.Chat.ID, availabilityPrompt)
}

func (h *Handlers) handleAvailabilityInput(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	input, err := ParseAvailabilityInput(update.Message.Text)
	if err != nil {
		h.sendMessage(ctx, b, chatID, "❌ "+err.Error()+"\n\nПопробуйте ещё раз, например: 1,3,5 09:00-17:00")
		return
	}

	raw, ok := h.stateManager.GetData(telegramID, "user_id")
	userID, _ := raw.(int64)
	if !ok || userID == 0 {
		h.stateManager.ClearState(telegramID)
		h.sendMessage(ctx, b, chatID, "❌ Данные диалога потеряны. Начните заново: /setavailability")
		return
	}

	slots, err := h.availabilityService.ApplyAvailability(ctx, userID, input.Days, input.Start, input.End)
	if err != nil {
		h.logger.Error("Failed to apply availability", zap.Int64("interpreter_id", userID), zap.Error(err))
		h.sendMessage(ctx, b, chatID, "❌ "+service.UserMessage(err))
		if !errors.Is(err, service.ErrValidation) {
			h.stateManager.ClearState(telegramID)
		}
		return
	}

	h.stateManager.ClearState(telegramID)
	h.sendMessage(ctx, b, chatID, "✅ Сохранено:\n\n"+formatting.FormatSlots(slots)+"\nПосмотреть неделю: /availability")
}

// HandleAvailability обрабатывает команду /availability
func (h *Handlers) HandleAvailability(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireInterpreter(ctx, b, update)
	if !ok {
		return
	}
	h.sendWeek(ctx, b, update.Message.Chat.ID, user, 0)
}

// sendWeek отправляет картинку недели со сдвигом offset недель от текущей
func (h *Handlers) sendWeek(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, offset int64) {
	slots, err := h.availabilityService.GetAvailability(ctx, user.ID)
	if err != nil {
		h.logger.Error("Failed to get availability", zap.Int64("interpreter_id", user.ID), zap.Error(err))
		h.sendMessage(ctx, b, chatID, "❌ "+service.UserMessage(err))
		return
	}

	now := h.now().In(h.loc)
	weekStart := timerange.WeekStart(now).AddDate(0, 0, int(7*offset))

	events, err := h.availabilityService.WeekEvents(ctx, user.ID, weekStart)
	if err != nil {
		h.sendMessage(ctx, b, chatID, "❌ "+service.UserMessage(err))
		return
	}
	appts, err := h.appointmentService.ListForInterpreter(ctx, user.ID, weekStart, weekStart.AddDate(0, 0, 7))
	if err != nil {
		h.sendMessage(ctx, b, chatID, "❌ "+service.UserMessage(err))
		return
	}

	image, err := weekimage.Render(weekStart, weekimage.Blocks(events, appts), now)
	if err != nil {
		h.logger.Error("Failed to render week", zap.Error(err))
		h.sendMessage(ctx, b, chatID, "🗓 Ваше рабочее время:\n\n"+formatting.FormatSlots(slots))
		return
	}

	caption := fmt.Sprintf("🗓 Неделя с %s\n\n%s", formatting.FormatDate(weekStart), formatting.FormatSlots(slots))
	_, err = b.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:      chatID,
		Photo:       &models.InputFileUpload{Filename: "week.png", Data: bytes.NewReader(image)},
		Caption:     caption,
		ReplyMarkup: WeekKeyboard(slots, offset),
	})
	if err != nil {
		h.logger.Error("Failed to send week image", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// WeekKeyboard кнопки удаления дней и навигации по неделям
func WeekKeyboard(slots []*model.AvailabilitySlot, offset int64) *models.InlineKeyboardMarkup {
	kb := keyboard.NewBuilder()

	buttons := make([]models.InlineKeyboardButton, 0, len(slots))
	for _, s := range slots {
		buttons = append(buttons, keyboard.Button(
			"🗑 "+formatting.WeekdayShortName(s.DayID),
			keyboard.Data(keyboard.DeleteDay, int64(s.DayID)),
		))
	}
	kb.Grid(4, buttons...)

	kb.Row(
		keyboard.Button("◀️ Пред.", keyboard.Data(keyboard.ShowWeek, offset-1)),
		keyboard.Button("Сегодня", keyboard.Data(keyboard.ShowWeek, 0)),
		keyboard.Button("След. ▶️", keyboard.Data(keyboard.ShowWeek, offset+1)),
	)
	return kb.Build()
}

func (h *Handlers) handleDeleteDay(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, user *model.User, day int64) {
	err := h.availabilityService.DeleteAvailability(ctx, user.ID, int(day))
	if err != nil && !errors.Is(err, service.ErrNotFound) {
		h.answerCallback(ctx, b, callback.ID, service.UserMessage(err), true)
		return
	}

	h.answerCallback(ctx, b, callback.ID, formatting.WeekdayName(int(day))+": удалено", false)
	if msg := callback.Message.Message; msg != nil {
		h.sendWeek(ctx, b, msg.Chat.ID, user, 0)
	}
}

func (h *Handlers) handleShowWeek(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, user *model.User, offset int64) {
	h.answerCallback(ctx, b, callback.ID, "", false)
	if msg := callback.Message.Message; msg != nil {
		h.sendWeek(ctx, b, msg.Chat.ID, user, offset)
	}
}

// weekOffsetLimit ограничивает навигацию по неделям
const weekOffsetLimit = 52

func clampOffset(offset int64) int64 {
	return max(-weekOffsetLimit, min(offset, weekOffsetLimit))
}

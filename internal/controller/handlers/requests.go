package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/signbridge/internal/controller/formatting"
	"github.com/Freeeeeet/signbridge/internal/controller/keyboard"
	"github.com/Freeeeeet/signbridge/internal/model"
	"github.com/Freeeeeet/signbridge/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// maxRequestsShown сколько запросов показывать за раз
const maxRequestsShown = 10

// HandleRequests обрабатывает команду /requests
func (h *Handlers) HandleRequests(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireInterpreter(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	reqs, err := h.appointmentService.PendingRequests(ctx, user.ID)
	if err != nil {
		h.logger.Error("Failed to list pending requests", zap.Int64("interpreter_id", user.ID), zap.Error(err))
		h.sendMessage(ctx, b, chatID, "❌ "+service.UserMessage(err))
		return
	}

	if len(reqs) == 0 {
		h.sendMessage(ctx, b, chatID, "📭 Новых запросов нет.")
		return
	}

	if len(reqs) > maxRequestsShown {
		h.sendMessage(ctx, b, chatID, fmt.Sprintf("📬 Запросов: %d, показаны ближайшие %d.", len(reqs), maxRequestsShown))
		reqs = reqs[:maxRequestsShown]
	}

	for _, req := range reqs {
		h.sendMessage(ctx, b, chatID, FormatRequest(req, h.loc), RequestKeyboard(req.ID))
	}
}

// FormatRequest текст карточки запроса
func FormatRequest(req *model.Request, loc *time.Location) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📨 Запрос #%d\n\n", req.ID)

	if a := req.Appointment; a != nil {
		sb.WriteString("🕐 " + formatting.FormatAppointmentTime(a.StartTime.In(loc), a.EndTime.In(loc)) + "\n")
		if a.HospitalName != nil && *a.HospitalName != "" {
			sb.WriteString("🏥 " + *a.HospitalName + "\n")
		}
	}
	if req.Note != nil && *req.Note != "" {
		sb.WriteString("💬 " + *req.Note + "\n")
	}
	sb.WriteString("\nВремя указано в поясе " + loc.String())
	return sb.String()
}

// RequestKeyboard кнопки ответа на запрос
func RequestKeyboard(requestID int64) *models.InlineKeyboardMarkup {
	return keyboard.NewBuilder().Row(
		keyboard.Button("✅ Принять", keyboard.Data(keyboard.AcceptRequest, requestID)),
		keyboard.Button("❌ Отклонить", keyboard.Data(keyboard.RejectRequest, requestID)),
	).Build()
}

// RespondResult текст после ответа на запрос
func RespondResult(appt *model.Appointment, accepted bool, loc *time.Location) string {
	if !accepted {
		return "🚫 Запрос отклонён."
	}
	text := "✅ Запрос принят!\n\n🕐 " + formatting.FormatAppointmentTime(appt.StartTime.In(loc), appt.EndTime.In(loc))
	if appt.MeetingURL != nil {
		text += "\n🎥 " + *appt.MeetingURL
	}
	return text
}

func (h *Handlers) handleRespond(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, user *model.User, requestID int64, accept bool) {
	appt, err := h.appointmentService.Respond(ctx, requestID, user.ID, accept)
	if err != nil {
		h.logger.Warn("Failed to respond to request",
			zap.Int64("request_id", requestID),
			zap.Int64("interpreter_id", user.ID),
			zap.Error(err))
		h.answerCallback(ctx, b, callback.ID, service.UserMessage(err), true)
		return
	}

	h.answerCallback(ctx, b, callback.ID, "Готово", false)

	msg := callback.Message.Message
	if msg == nil {
		return
	}
	_, err = b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Text:      msg.Text + "\n\n" + RespondResult(appt, accept, h.loc),
	})
	if err != nil {
		h.logger.Warn("Failed to edit request message", zap.Error(err))
	}
}

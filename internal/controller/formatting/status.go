package formatting

import (
	"strings"

	"github.com/Freeeeeet/signbridge/internal/model"
)

// StatusDisplay emoji и текст статуса встречи
type StatusDisplay struct {
	Emoji string
	Text  string
}

// AppointmentStatus возвращает отображение статуса встречи
func AppointmentStatus(status model.AppointmentStatus) StatusDisplay {
	displays := map[model.AppointmentStatus]StatusDisplay{
		model.AppointmentStatusPending:   {"⏳", "Ожидает ответа"},
		model.AppointmentStatusApproved:  {"✅", "Подтверждена"},
		model.AppointmentStatusCompleted: {"✔️", "Завершена"},
		model.AppointmentStatusCancelled: {"❌", "Отменена"},
		model.AppointmentStatusRejected:  {"🚫", "Отклонена"},
	}

	if display, ok := displays[status]; ok {
		return display
	}

	return StatusDisplay{"❓", "Неизвестно"}
}

// FormatSlots список еженедельных слотов, по строке на день
func FormatSlots(slots []*model.AvailabilitySlot) string {
	if len(slots) == 0 {
		return "Расписание не заполнено"
	}
	var sb strings.Builder
	for _, s := range slots {
		sb.WriteString("• " + WeekdayName(s.DayID) + ": " + FormatClockRange(s.StartTime, s.EndTime) + "\n")
	}
	return sb.String()
}

// Package projection разворачивает еженедельное расписание переводчика
// в конкретные события календаря. Функции чистые: одинаковый вход даёт одинаковый результат.
package projection

import (
	"sort"
	"time"

	"github.com/Freeeeeet/signbridge/internal/model"
	"github.com/Freeeeeet/signbridge/internal/timerange"
)

// DefaultTitle заголовок событий по умолчанию
const DefaultTitle = "Available"

// Week возвращает по одному событию на каждый слот в неделе, содержащей date.
// Дата события = понедельник недели + (DayID - 1) дней.
func Week(slots []*model.AvailabilitySlot, date time.Time, title string) []model.CalendarEvent {
	weekStart := timerange.WeekStart(date)

	events := make([]model.CalendarEvent, 0, len(slots))
	for _, slot := range byDay(slots) {
		eventDate := weekStart.AddDate(0, 0, slot.DayID-1)
		events = append(events, eventFor(slot, eventDate, title))
	}

	sortEvents(events)
	return events
}

// Range возвращает события для всех дат в [from, to), у дня недели которых есть слот.
// Используется для месячного вида календаря.
func Range(slots []*model.AvailabilitySlot, from, to time.Time, title string) []model.CalendarEvent {
	days := byDay(slots)

	var events []model.CalendarEvent
	for date := timerange.DayStart(from); date.Before(to); date = date.AddDate(0, 0, 1) {
		slot, ok := days[timerange.DayKey(date)]
		if !ok {
			continue
		}
		events = append(events, eventFor(slot, date, title))
	}

	return events
}

// IsOpenOn обратный поиск: есть ли у переводчика слот в день недели даты date
func IsOpenOn(slots []*model.AvailabilitySlot, date time.Time) (*model.AvailabilitySlot, bool) {
	slot, ok := byDay(slots)[timerange.DayKey(date)]
	return slot, ok
}

// byDay индексирует слоты по дню недели. Невалидные слоты пропускаются;
// при дублях по дню побеждает последний.
func byDay(slots []*model.AvailabilitySlot) map[int]*model.AvailabilitySlot {
	days := make(map[int]*model.AvailabilitySlot, len(slots))
	for _, slot := range slots {
		if slot == nil || slot.Validate() != nil {
			continue
		}
		days[slot.DayID] = slot
	}
	return days
}

func eventFor(slot *model.AvailabilitySlot, date time.Time, title string) model.CalendarEvent {
	if title == "" {
		title = DefaultTitle
	}
	return model.CalendarEvent{
		Title: title,
		DayID: slot.DayID,
		Start: slot.StartTime.On(date),
		End:   slot.EndTime.On(date),
	}
}

func sortEvents(events []model.CalendarEvent) {
	sort.Slice(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
}

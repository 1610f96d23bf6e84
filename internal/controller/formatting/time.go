package formatting

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/signbridge/internal/timerange"
)

// FormatDateTime форматирует дату и время
func FormatDateTime(t time.Time) string {
	return t.Format("02.01.2006 15:04")
}

// FormatDate форматирует только дату
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// FormatTimeRange форматирует диапазон времени
func FormatTimeRange(start, end time.Time) string {
	return fmt.Sprintf("%s-%s", start.Format("15:04"), end.Format("15:04"))
}

// FormatClockRange форматирует интервал времени суток
func FormatClockRange(start, end timerange.Clock) string {
	return start.String() + "-" + end.String()
}

// FormatAppointmentTime дата и интервал встречи в одну строку
func FormatAppointmentTime(start, end time.Time) string {
	return fmt.Sprintf("%s, %s %s",
		WeekdayName(timerange.DayKey(start)),
		FormatDate(start),
		FormatTimeRange(start, end),
	)
}

var weekdayNames = [...]string{"", "Понедельник", "Вторник", "Среда", "Четверг", "Пятница", "Суббота", "Воскресенье"}

var weekdayShortNames = [...]string{"", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"}

// WeekdayName название дня по номеру (1 = понедельник, 7 = воскресенье)
func WeekdayName(dayID int) string {
	if !timerange.ValidDay(dayID) {
		return "Неизвестно"
	}
	return weekdayNames[dayID]
}

// WeekdayShortName краткое название дня по номеру
func WeekdayShortName(dayID int) string {
	if !timerange.ValidDay(dayID) {
		return "?"
	}
	return weekdayShortNames[dayID]
}

// MonthName возвращает название месяца на русском
func MonthName(month time.Month) string {
	names := map[time.Month]string{
		time.January:   "Январь",
		time.February:  "Февраль",
		time.March:     "Март",
		time.April:     "Апрель",
		time.May:       "Май",
		time.June:      "Июнь",
		time.July:      "Июль",
		time.August:    "Август",
		time.September: "Сентябрь",
		time.October:   "Октябрь",
		time.November:  "Ноябрь",
		time.December:  "Декабрь",
	}
	return names[month]
}

// Package timerange содержит чистые функции для работы с интервалами времени:
// номер дня недели, пересечение интервалов, длительность и время суток.
package timerange

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MinutesPerDay количество минут в сутках
const MinutesPerDay = 24 * 60

// Дни недели в нумерации ISO (1 = Monday, 7 = Sunday)
const (
	Monday    = 1
	Tuesday   = 2
	Wednesday = 3
	Thursday  = 4
	Friday    = 5
	Saturday  = 6
	Sunday    = 7
)

// DayKey возвращает номер дня недели по ISO: понедельник = 1, воскресенье = 7.
// Никогда не возвращает 0, поэтому воскресенье не путается с "нет расписания".
func DayKey(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return Sunday
	}
	return wd
}

// ValidDay проверяет что номер дня в диапазоне 1..7
func ValidDay(day int) bool {
	return day >= Monday && day <= Sunday
}

// RangesOverlap проверяет пересечение полуоткрытых интервалов [aStart, aEnd) и [bStart, bEnd).
// Интервалы нулевой длины ни с чем не пересекаются.
func RangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	if !aStart.Before(aEnd) || !bStart.Before(bEnd) {
		return false
	}
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// DurationMinutes возвращает длительность в минутах.
// ok = false если end <= start.
func DurationMinutes(start, end time.Time) (minutes int, ok bool) {
	if !end.After(start) {
		return 0, false
	}
	return int(end.Sub(start) / time.Minute), true
}

// DayStart возвращает начало дня в локации t
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WeekStart возвращает понедельник 00:00 недели, в которую попадает t
func WeekStart(t time.Time) time.Time {
	day := DayStart(t)
	return day.AddDate(0, 0, -(DayKey(day) - 1))
}

// SameDay проверяет что две даты приходятся на один календарный день
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// Clock время суток в минутах от полуночи (0..1439).
// EndOfDay (24:00) допустим только как конец интервала.
type Clock int

// EndOfDay полночь в конце суток
const EndOfDay Clock = MinutesPerDay

// NewClock создаёт Clock из часов и минут
func NewClock(hour, minute int) (Clock, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid time of day %02d:%02d", hour, minute)
	}
	return Clock(hour*60 + minute), nil
}

// MustClock как NewClock, но паникует на неверных значениях. Только для констант и тестов.
func MustClock(hour, minute int) Clock {
	c, err := NewClock(hour, minute)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseClock разбирает строку вида "HH:MM"
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if hour == 24 && minute == 0 {
		return EndOfDay, nil
	}

	return NewClock(hour, minute)
}

// ClockOf возвращает время суток для t в его локации. Секунды отбрасываются.
func ClockOf(t time.Time) Clock {
	return Clock(t.Hour()*60 + t.Minute())
}

// Valid проверяет что значение в пределах суток
func (c Clock) Valid() bool {
	return c >= 0 && c < MinutesPerDay
}

// ValidEnd как Valid, но допускает EndOfDay
func (c Clock) ValidEnd() bool {
	return c > 0 && c <= EndOfDay
}

// Hour часы
func (c Clock) Hour() int { return int(c) / 60 }

// Minute минуты
func (c Clock) Minute() int { return int(c) % 60 }

// On возвращает момент времени c в день date (в локации date).
// EndOfDay даёт полночь следующего дня.
func (c Clock) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour(), c.Minute(), 0, 0, date.Location())
}

// String форматирует как "HH:MM"
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// MarshalText реализует encoding.TextMarshaler, чтобы в JSON время было строкой "HH:MM"
func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText реализует encoding.TextUnmarshaler
func (c *Clock) UnmarshalText(text []byte) error {
	parsed, err := ParseClock(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

package model

import (
	"errors"
	"time"

	"github.com/Freeeeeet/signbridge/internal/timerange"
)

// AvailabilitySlot еженедельный свободный интервал переводчика.
// На каждую пару (переводчик, день недели) не больше одного слота.
type AvailabilitySlot struct {
	ID            int64           `json:"id"`
	InterpreterID int64           `json:"interpreter_id"`
	DayID         int             `json:"day_id"` // 1 = Monday, 7 = Sunday
	StartTime     timerange.Clock `json:"start_time"`
	EndTime       timerange.Clock `json:"end_time"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Validate проверяет инварианты слота
func (s *AvailabilitySlot) Validate() error {
	if !timerange.ValidDay(s.DayID) {
		return errors.New("day must be between 1 (Monday) and 7 (Sunday)")
	}
	if !s.StartTime.Valid() || !s.EndTime.ValidEnd() {
		return errors.New("time of day out of range")
	}
	if s.EndTime <= s.StartTime {
		return errors.New("end time must be after start time")
	}
	return nil
}

// CalendarEvent проекция слота на конкретную дату. В базе не хранится.
type CalendarEvent struct {
	Title string    `json:"title"`
	DayID int       `json:"day_id"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

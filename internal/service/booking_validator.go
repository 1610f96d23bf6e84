package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/signbridge/internal/model"
	"github.com/Freeeeeet/signbridge/internal/timerange"
	"go.uber.org/zap"
)

// Reason причина, по которой время нельзя забронировать
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonOutsideAvailability Reason = "outside_availability"
	ReasonDoubleBooked        Reason = "double_booked"
)

// Verdict результат проверки бронирования
type Verdict struct {
	Bookable bool   `json:"bookable"`
	Reason   Reason `json:"reason,omitempty"`
}

// Err возвращает ошибку, соответствующую причине отказа
func (v Verdict) Err() error {
	switch v.Reason {
	case ReasonOutsideAvailability:
		return ErrOutsideAvailability
	case ReasonDoubleBooked:
		return ErrDoubleBooked
	}
	return nil
}

// BookingValidator проверяет, что переводчик работает в это время и свободен.
// Расписание и встречи всегда читаются заново.
type BookingValidator struct {
	availability AvailabilityStore
	appointments AppointmentStore
	loc          *time.Location
	logger       *zap.Logger
}

func NewBookingValidator(availability AvailabilityStore, appointments AppointmentStore, loc *time.Location, logger *zap.Logger) *BookingValidator {
	if loc == nil {
		loc = time.UTC
	}
	return &BookingValidator{
		availability: availability,
		appointments: appointments,
		loc:          loc,
		logger:       logger,
	}
}

// Location часовой пояс, в котором действует расписание
func (v *BookingValidator) Location() *time.Location {
	return v.loc
}

// IsBookable проверяет можно ли забронировать переводчика на [start, end).
// Ошибка возвращается только для некорректного ввода и сбоев хранилища.
func (v *BookingValidator) IsBookable(ctx context.Context, interpreterID int64, start, end time.Time) (Verdict, error) {
	if start.IsZero() {
		return Verdict{}, invalid("start", "is required")
	}
	if end.IsZero() {
		return Verdict{}, invalid("end", "is required")
	}
	if _, ok := timerange.DurationMinutes(start, end); !ok {
		return Verdict{}, invalid("end", "must be after start")
	}

	start, end = start.In(v.loc), end.In(v.loc)

	slot, err := v.availability.GetDay(ctx, interpreterID, timerange.DayKey(start))
	if err != nil {
		return Verdict{}, storeErr("get availability day", err)
	}
	if !CheckWindow(slot, start, end) {
		return Verdict{Reason: ReasonOutsideAvailability}, nil
	}

	dayStart := timerange.DayStart(start)
	appts, err := v.appointments.ListOccupying(ctx, interpreterID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return Verdict{}, storeErr("list occupying appointments", err)
	}

	for _, a := range appts {
		if timerange.RangesOverlap(start, end, a.StartTime, a.EndTime) {
			v.logger.Debug("Interpreter double booked",
				zap.Int64("interpreter_id", interpreterID),
				zap.Int64("appointment_id", a.ID),
				zap.Time("start", start),
			)
			return Verdict{Reason: ReasonDoubleBooked}, nil
		}
	}

	return Verdict{Bookable: true}, nil
}

// CheckWindow проверяет что [start, end) целиком лежит в слоте одного дня.
// Сравниваются полные моменты времени, секунды не отбрасываются.
// start и end должны быть в часовом поясе расписания.
func CheckWindow(slot *model.AvailabilitySlot, start, end time.Time) bool {
	if slot == nil || slot.DayID != timerange.DayKey(start) {
		return false
	}
	day := timerange.DayStart(start)
	if end.After(day.AddDate(0, 0, 1)) {
		return false
	}
	return !start.Before(slot.StartTime.On(day)) && !end.After(slot.EndTime.On(day))
}

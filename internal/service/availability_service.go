package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Freeeeeet/signbridge/internal/model"
	"github.com/Freeeeeet/signbridge/internal/projection"
	"github.com/Freeeeeet/signbridge/internal/timerange"
	"go.uber.org/zap"
)

type AvailabilityService struct {
	repo   AvailabilityStore
	users  UserStore
	logger *zap.Logger
}

func NewAvailabilityService(repo AvailabilityStore, users UserStore, logger *zap.Logger) *AvailabilityService {
	return &AvailabilityService{
		repo:   repo,
		users:  users,
		logger: logger,
	}
}

// GetAvailability возвращает недельное расписание переводчика, не больше слота на день
func (s *AvailabilityService) GetAvailability(ctx context.Context, interpreterID int64) ([]*model.AvailabilitySlot, error) {
	slots, err := s.repo.GetByInterpreterID(ctx, interpreterID)
	if err != nil {
		return nil, storeErr("get availability", err)
	}
	return slots, nil
}

// ApplyAvailability задаёт одинаковый интервал на выбранные дни недели.
// Все дни записываются одной операцией, при ошибке валидации ничего не пишется.
func (s *AvailabilityService) ApplyAvailability(ctx context.Context, interpreterID int64, dayIDs []int, start, end timerange.Clock) ([]*model.AvailabilitySlot, error) {
	days, err := normalizeDays(dayIDs)
	if err != nil {
		return nil, err
	}
	if !start.Valid() {
		return nil, invalid("start", "time of day out of range")
	}
	if !end.ValidEnd() {
		return nil, invalid("end", "time of day out of range")
	}
	if end <= start {
		return nil, invalid("end", "must be after start")
	}

	if err := s.requireInterpreter(ctx, interpreterID); err != nil {
		return nil, err
	}

	slots, err := s.repo.UpsertDays(ctx, interpreterID, days, start, end)
	if err != nil {
		return nil, storeErr("apply availability", err)
	}

	s.logger.Info("Availability applied",
		zap.Int64("interpreter_id", interpreterID),
		zap.Ints("days", days),
		zap.String("start", start.String()),
		zap.String("end", end.String()),
	)

	return slots, nil
}

// DeleteAvailability удаляет слот одного дня недели
func (s *AvailabilityService) DeleteAvailability(ctx context.Context, interpreterID int64, dayID int) error {
	if !timerange.ValidDay(dayID) {
		return invalid("day", "must be between 1 and 7")
	}

	deleted, err := s.repo.DeleteDay(ctx, interpreterID, dayID)
	if err != nil {
		return storeErr("delete availability", err)
	}
	if !deleted {
		return fmt.Errorf("availability for day %d: %w", dayID, ErrNotFound)
	}

	s.logger.Info("Availability deleted",
		zap.Int64("interpreter_id", interpreterID),
		zap.Int("day", dayID),
	)

	return nil
}

// WeekEvents проецирует расписание на неделю, содержащую date
func (s *AvailabilityService) WeekEvents(ctx context.Context, interpreterID int64, date time.Time) ([]model.CalendarEvent, error) {
	slots, err := s.GetAvailability(ctx, interpreterID)
	if err != nil {
		return nil, err
	}
	return projection.Week(slots, date, projection.DefaultTitle), nil
}

// maxRangeDays наибольшая длина произвольного периода календаря
const maxRangeDays = 62

// RangeEvents проецирует расписание на все даты в [from, to)
func (s *AvailabilityService) RangeEvents(ctx context.Context, interpreterID int64, from, to time.Time) ([]model.CalendarEvent, error) {
	if !to.After(from) {
		return nil, invalid("to", "must be after from")
	}
	if to.Sub(from) > maxRangeDays*24*time.Hour {
		return nil, invalid("to", "period must not exceed %d days", maxRangeDays)
	}

	slots, err := s.GetAvailability(ctx, interpreterID)
	if err != nil {
		return nil, err
	}
	return projection.Range(slots, from, to, projection.DefaultTitle), nil
}

// IsWeekdayOpen проверяет работает ли переводчик в день недели даты date
func (s *AvailabilityService) IsWeekdayOpen(ctx context.Context, interpreterID int64, date time.Time) (*model.AvailabilitySlot, bool, error) {
	slots, err := s.GetAvailability(ctx, interpreterID)
	if err != nil {
		return nil, false, err
	}
	slot, ok := projection.IsOpenOn(slots, date)
	return slot, ok, nil
}

func (s *AvailabilityService) requireInterpreter(ctx context.Context, id int64) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return storeErr("get user", err)
	}
	if user == nil {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if !user.IsInterpreter() {
		return fmt.Errorf("user %d is not an interpreter: %w", id, ErrForbidden)
	}
	return nil
}

// normalizeDays проверяет дни недели и убирает повторы
func normalizeDays(dayIDs []int) ([]int, error) {
	if len(dayIDs) == 0 {
		return nil, invalid("days", "select at least one day")
	}

	seen := make(map[int]bool, len(dayIDs))
	days := make([]int, 0, len(dayIDs))
	for _, d := range dayIDs {
		if !timerange.ValidDay(d) {
			return nil, invalid("days", "day %d must be between 1 and 7", d)
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		days = append(days, d)
	}
	sort.Ints(days)
	return days, nil
}

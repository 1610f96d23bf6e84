package handlers

import (
	"context"
	"time"

	"github.com/Freeeeeet/signbridge/internal/controller/state"
	"github.com/Freeeeeet/signbridge/internal/model"
	"github.com/Freeeeeet/signbridge/internal/timerange"
	"go.uber.org/zap"
)

type UserService interface {
	RegisterUser(ctx context.Context, telegramID int64, username, firstName, lastName string) (*model.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	BecomeInterpreter(ctx context.Context, telegramID int64) (*model.User, error)
	UpdateProfile(ctx context.Context, userID int64, gender *string, dateOfBirth *time.Time, location string) (*model.User, error)
}

type AvailabilityService interface {
	GetAvailability(ctx context.Context, interpreterID int64) ([]*model.AvailabilitySlot, error)
	ApplyAvailability(ctx context.Context, interpreterID int64, dayIDs []int, start, end timerange.Clock) ([]*model.AvailabilitySlot, error)
	DeleteAvailability(ctx context.Context, interpreterID int64, dayID int) error
	WeekEvents(ctx context.Context, interpreterID int64, date time.Time) ([]model.CalendarEvent, error)
}

type AppointmentService interface {
	PendingRequests(ctx context.Context, interpreterID int64) ([]*model.Request, error)
	Respond(ctx context.Context, requestID, interpreterID int64, accept bool) (*model.Appointment, error)
	ListForInterpreter(ctx context.Context, interpreterID int64, from, to time.Time) ([]*model.Appointment, error)
}

// Handlers содержит все зависимости для обработки команд и callback'ов
type Handlers struct {
	userService         UserService
	availabilityService AvailabilityService
	appointmentService  AppointmentService
	stateManager        *state.Manager
	loc                 *time.Location
	logger              *zap.Logger
	now                 func() time.Time
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(
	userService UserService,
	availabilityService AvailabilityService,
	appointmentService AppointmentService,
	stateManager *state.Manager,
	loc *time.Location,
	logger *zap.Logger,
) *Handlers {
	if loc == nil {
		loc = time.UTC
	}
	return &Handlers{
		userService:         userService,
		availabilityService: availabilityService,
		appointmentService:  appointmentService,
		stateManager:        stateManager,
		loc:                 loc,
		logger:              logger,
		now:                 time.Now,
	}
}

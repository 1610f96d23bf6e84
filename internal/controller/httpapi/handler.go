package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Freeeeeet/signbridge/internal/model"
	"github.com/Freeeeeet/signbridge/internal/service"
	"github.com/Freeeeeet/signbridge/internal/timerange"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Users interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

type Availability interface {
	GetAvailability(ctx context.Context, interpreterID int64) ([]*model.AvailabilitySlot, error)
	ApplyAvailability(ctx context.Context, interpreterID int64, dayIDs []int, start, end timerange.Clock) ([]*model.AvailabilitySlot, error)
	DeleteAvailability(ctx context.Context, interpreterID int64, dayID int) error
	WeekEvents(ctx context.Context, interpreterID int64, date time.Time) ([]model.CalendarEvent, error)
	RangeEvents(ctx context.Context, interpreterID int64, from, to time.Time) ([]model.CalendarEvent, error)
	IsWeekdayOpen(ctx context.Context, interpreterID int64, date time.Time) (*model.AvailabilitySlot, bool, error)
}

type Interpreters interface {
	GetProfile(ctx context.Context, interpreterID int64) (*model.InterpreterProfile, error)
	SetQualifications(ctx context.Context, interpreterID int64, specialisations, languages []int64) error
	ListSpecialisations(ctx context.Context) ([]model.Specialisation, error)
	ListLanguages(ctx context.Context) ([]model.Language, error)
}

type Matching interface {
	Search(ctx context.Context, criteria model.SearchCriteria) ([]*model.InterpreterProfile, error)
}

type Appointments interface {
	Book(ctx context.Context, in service.BookInput) (*model.Appointment, *model.Request, error)
	CreateAppointment(ctx context.Context, in service.AppointmentInput) (*model.Appointment, error)
	CreateRequest(ctx context.Context, userID, appointmentID, interpreterID int64, note *string) (*model.Request, error)
	Respond(ctx context.Context, requestID, interpreterID int64, accept bool) (*model.Appointment, error)
	Cancel(ctx context.Context, appointmentID, userID int64) (*model.Appointment, error)
	Get(ctx context.Context, appointmentID, userID int64) (*model.Appointment, error)
	ListForDeafUser(ctx context.Context, deafUserID int64) ([]*model.Appointment, error)
	ListForInterpreter(ctx context.Context, interpreterID int64, from, to time.Time) ([]*model.Appointment, error)
	PendingRequests(ctx context.Context, interpreterID int64) ([]*model.Request, error)
	ListReviewable(ctx context.Context, deafUserID int64) ([]*model.Appointment, error)
	Rate(ctx context.Context, appointmentID, raterID int64, score int, comment string) (*model.Rating, error)
}

// Handler HTTP API клиентского приложения
type Handler struct {
	users        Users
	availability Availability
	interpreters Interpreters
	matching     Matching
	appointments Appointments
	loc          *time.Location
	logger       *zap.Logger
}

func NewHandler(
	users Users,
	availability Availability,
	interpreters Interpreters,
	matching Matching,
	appointments Appointments,
	loc *time.Location,
	logger *zap.Logger,
) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		users:        users,
		availability: availability,
		interpreters: interpreters,
		matching:     matching,
		appointments: appointments,
		loc:          loc,
		logger:       logger,
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusFor сопоставляет ошибку сервиса с HTTP-статусом
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, "validation_failed"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrOutsideAvailability):
		return http.StatusConflict, "outside_availability"
	case errors.Is(err, service.ErrDoubleBooked):
		return http.StatusConflict, "double_booked"
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, service.ErrReviewWindowClosed):
		return http.StatusConflict, "review_window_closed"
	case errors.Is(err, service.ErrAlreadyRated):
		return http.StatusConflict, "already_rated"
	case errors.Is(err, service.ErrStore):
		return http.StatusServiceUnavailable, "store_unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: code, Message: service.UserMessage(err)})
}

// badRequest ответ на тело или параметры, которые не удалось разобрать
func (h *Handler) badRequest(c *gin.Context, field string, err error) {
	h.fail(c, &service.ValidationError{Field: field, Message: err.Error()})
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/Freeeeeet/signbridge/internal/model"
	"github.com/Freeeeeet/signbridge/internal/timerange"
)

// Хранилища, которые нужны сервисам. Реализованы в пакете repository.

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
}

type AvailabilityStore interface {
	GetByInterpreterID(ctx context.Context, interpreterID int64) ([]*model.AvailabilitySlot, error)
	GetDay(ctx context.Context, interpreterID int64, dayID int) (*model.AvailabilitySlot, error)
	UpsertDays(ctx context.Context, interpreterID int64, dayIDs []int, start, end timerange.Clock) ([]*model.AvailabilitySlot, error)
	DeleteDay(ctx context.Context, interpreterID int64, dayID int) (bool, error)
}

type AppointmentStore interface {
	Create(ctx context.Context, appt *model.Appointment) error
	CreateWithRequest(ctx context.Context, appt *model.Appointment, req *model.Request) error
	AddRequest(ctx context.Context, appt *model.Appointment, req *model.Request) error
	GetByID(ctx context.Context, id int64) (*model.Appointment, error)
	ListOccupying(ctx context.Context, interpreterID int64, from, to time.Time) ([]*model.Appointment, error)
	ListByDeafUser(ctx context.Context, deafUserID int64) ([]*model.Appointment, error)
	ListByInterpreter(ctx context.Context, interpreterID int64, from, to time.Time) ([]*model.Appointment, error)
	ListReviewable(ctx context.Context, deafUserID int64, since, now time.Time) ([]*model.Appointment, error)
	AcceptRequest(ctx context.Context, requestID int64, now time.Time) (*model.Appointment, error)
	RejectRequest(ctx context.Context, requestID int64) (*model.Appointment, error)
	Cancel(ctx context.Context, id int64) (*model.Appointment, error)
	SetMeeting(ctx context.Context, id int64, meetingURL, chatRoomID *string) error
	CompleteEnded(ctx context.Context, now time.Time) ([]*model.Appointment, error)
	RejectWithoutLiveRequests(ctx context.Context, ids []int64) ([]*model.Appointment, error)
}

type RequestStore interface {
	GetByID(ctx context.Context, id int64) (*model.Request, error)
	ListByAppointment(ctx context.Context, appointmentID int64) ([]*model.Request, error)
	ListPendingByInterpreter(ctx context.Context, interpreterID int64) ([]*model.Request, error)
	ExpireStale(ctx context.Context, cutoff, now time.Time) ([]*model.Request, error)
}

type InterpreterStore interface {
	FindCandidates(ctx context.Context, criteria model.SearchCriteria) ([]*model.InterpreterProfile, error)
	GetProfile(ctx context.Context, interpreterID int64) (*model.InterpreterProfile, error)
	SetQualifications(ctx context.Context, interpreterID int64, specialisations, languages []int64) error
	ListSpecialisations(ctx context.Context) ([]model.Specialisation, error)
	ListLanguages(ctx context.Context) ([]model.Language, error)
}

type RatingStore interface {
	Create(ctx context.Context, rating *model.Rating) error
	HasRated(ctx context.Context, appointmentID, raterID int64) (bool, error)
}

// MeetingRequest параметры видеовстречи
type MeetingRequest struct {
	Title     string
	Start     time.Time
	End       time.Time
	Attendees []string
}

// MeetingProvider создаёт видеовстречу и возвращает ссылку на неё
type MeetingProvider interface {
	CreateMeeting(ctx context.Context, req MeetingRequest) (string, error)
}

// RoomProvisioner создаёт чат для двух участников
type RoomProvisioner interface {
	ProvisionRoom(ctx context.Context, a, b int64) (string, error)
}

type EventType string

const (
	EventRequestCreated       EventType = "request.created"
	EventRequestAccepted      EventType = "request.accepted"
	EventRequestRejected      EventType = "request.rejected"
	EventRequestExpired       EventType = "request.expired"
	EventAppointmentCancelled EventType = "appointment.cancelled"
	EventAppointmentCompleted EventType = "appointment.completed"
)

// Event событие жизненного цикла встречи
type Event struct {
	Type          EventType `json:"type"`
	AppointmentID int64     `json:"appointment_id"`
	RequestID     int64     `json:"request_id,omitempty"`
	DeafUserID    int64     `json:"deaf_user_id"`
	InterpreterID int64     `json:"interpreter_id,omitempty"`
	ActorID       int64     `json:"actor_id,omitempty"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Notifier доставляет события участникам
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// MultiNotifier рассылает событие во все notifier'ы и собирает ошибки
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, event Event) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, Event) error { return nil }

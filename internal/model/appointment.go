package model

import "time"

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"   // Ожидает ответа переводчика
	AppointmentStatusApproved  AppointmentStatus = "approved"  // Переводчик принял запрос
	AppointmentStatusRejected  AppointmentStatus = "rejected"  // Отклонено или запрос истёк
	AppointmentStatusCompleted AppointmentStatus = "completed" // Время встречи прошло
	AppointmentStatusCancelled AppointmentStatus = "cancelled" // Отменено одной из сторон
)

type Appointment struct {
	ID            int64             `json:"id"`
	DeafUserID    int64             `json:"deaf_user_id"`
	InterpreterID *int64            `json:"interpreter_id"` // nil пока запрос не принят
	StartTime     time.Time         `json:"start_time"`
	EndTime       time.Time         `json:"end_time"`
	HospitalName  *string           `json:"hospital_name,omitempty"`
	Status        AppointmentStatus `json:"status"`
	MeetingURL    *string           `json:"meeting_url,omitempty"`
	ChatRoomID    *string           `json:"chat_room_id,omitempty"`
	Note          *string           `json:"note,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// IsActive проверяет что встреча занимает время переводчика (pending или approved)
func (a *Appointment) IsActive() bool {
	return a.Status == AppointmentStatusPending || a.Status == AppointmentStatusApproved
}

// HasEnded проверяет что время встречи прошло
func (a *Appointment) HasEnded(now time.Time) bool {
	return !a.EndTime.After(now)
}

// Request запрос конкретному переводчику по встрече
type Request struct {
	ID            int64      `json:"id"`
	AppointmentID int64      `json:"appointment_id"`
	InterpreterID int64      `json:"interpreter_id"`
	IsAccepted    *bool      `json:"is_accepted"` // nil = ожидает ответа
	IsExpired     bool       `json:"is_expired"`
	Note          *string    `json:"note,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	RespondedAt   *time.Time `json:"responded_at,omitempty"`

	// Дополнительные поля для удобства (не из БД)
	Appointment *Appointment `json:"appointment,omitempty"`
}

// IsPending проверяет что на запрос ещё не ответили и он не истёк
func (r *Request) IsPending() bool {
	return r.IsAccepted == nil && !r.IsExpired
}


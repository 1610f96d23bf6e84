package model

import "time"

// Rating оценка переводчика после встречи
type Rating struct {
	ID            int64     `json:"id"`
	AppointmentID int64     `json:"appointment_id"`
	RaterID       int64     `json:"rater_id"`
	InterpreterID int64     `json:"interpreter_id"`
	Score         int       `json:"score"` // 1..5
	Comment       string    `json:"comment"`
	CreatedAt     time.Time `json:"created_at"`
}

const (
	MinRatingScore = 1
	MaxRatingScore = 5
)

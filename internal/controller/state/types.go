package state

import "time"

// UserState текущий шаг диалога пользователя
type UserState string

const (
	StateNone UserState = "" // Нет активного диалога

	// Ввод еженедельного расписания: "1,3,5 09:00-17:00"
	StateSetAvailability UserState = "set_availability"

	// Ввод места работы (штат/регион)
	StateSetLocation UserState = "set_location"
)

// session состояние и временные данные диалога
type session struct {
	State     UserState
	Data      map[string]any
	UpdatedAt time.Time
}

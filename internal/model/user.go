package model

import "time"

// UserRole роль пользователя в системе
type UserRole string

const (
	UserRoleDeaf        UserRole = "deaf"        // Глухой пользователь, создаёт записи
	UserRoleInterpreter UserRole = "interpreter" // Сурдопереводчик
)

// User базовый профиль пользователя
type User struct {
	ID          int64      `json:"id"`
	TelegramID  *int64     `json:"telegram_id,omitempty"` // nil если Telegram не привязан
	Username    string     `json:"username"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email"`
	Role        UserRole   `json:"role"`
	Gender      *string    `json:"gender,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Location    string     `json:"location"` // штат / регион
	CreatedAt   time.Time  `json:"created_at"`
}

// IsInterpreter проверяет что пользователь - переводчик
func (u *User) IsInterpreter() bool {
	return u.Role == UserRoleInterpreter
}

// DisplayName возвращает имя для отображения
func (u *User) DisplayName() string {
	if u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}

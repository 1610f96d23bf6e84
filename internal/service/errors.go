package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrOutsideAvailability = errors.New("outside interpreter availability")
	ErrDoubleBooked        = errors.New("interpreter already booked")
	ErrStore               = errors.New("store unavailable")
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrConflict            = errors.New("conflict")
	ErrReviewWindowClosed  = errors.New("review window closed")
	ErrAlreadyRated        = errors.New("already rated")
)

// ValidationError ошибка входных данных с указанием поля
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// StoreError сбой хранилища при выполнении операции Op
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return e.Op + ": " + e.Err.Error() }

// Is позволяет сравнивать и с ErrStore, и с исходной ошибкой
func (e *StoreError) Is(target error) bool { return target == ErrStore }

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

// UserMessage возвращает текст ошибки для показа пользователю
func UserMessage(err error) string {
	var ve *ValidationError

	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return "Проверьте введённые данные: " + ve.Error()
	case errors.Is(err, ErrOutsideAvailability):
		return "Переводчик не работает в это время"
	case errors.Is(err, ErrDoubleBooked):
		return "Переводчик уже занят в это время"
	case errors.Is(err, ErrNotFound):
		return "Не найдено"
	case errors.Is(err, ErrForbidden):
		return "Нет доступа"
	case errors.Is(err, ErrInvalidTransition):
		return "Запрос уже обработан"
	case errors.Is(err, ErrConflict):
		return "Такой запрос уже существует"
	case errors.Is(err, ErrReviewWindowClosed):
		return "Срок для отзыва истёк"
	case errors.Is(err, ErrAlreadyRated):
		return "Вы уже оценили эту встречу"
	default:
		return "Что-то пошло не так, попробуйте ещё раз"
	}
}

package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/signbridge/internal/model"
	"go.uber.org/zap"
)

type InterpreterService struct {
	interpreters InterpreterStore
	users        UserStore
	logger       *zap.Logger
}

func NewInterpreterService(interpreters InterpreterStore, users UserStore, logger *zap.Logger) *InterpreterService {
	return &InterpreterService{
		interpreters: interpreters,
		users:        users,
		logger:       logger,
	}
}

// GetProfile профиль переводчика с квалификацией и рейтингом
func (s *InterpreterService) GetProfile(ctx context.Context, interpreterID int64) (*model.InterpreterProfile, error) {
	p, err := s.interpreters.GetProfile(ctx, interpreterID)
	if err != nil {
		return nil, storeErr("get interpreter profile", err)
	}
	if p == nil {
		return nil, fmt.Errorf("interpreter %d: %w", interpreterID, ErrNotFound)
	}
	return p, nil
}

// SetQualifications заменяет специализации и языки переводчика
func (s *InterpreterService) SetQualifications(ctx context.Context, interpreterID int64, specialisations, languages []int64) error {
	if len(specialisations) == 0 {
		return invalid("specialisations", "select at least one")
	}
	if len(languages) == 0 {
		return invalid("languages", "select at least one")
	}

	user, err := s.users.GetByID(ctx, interpreterID)
	if err != nil {
		return storeErr("get user", err)
	}
	if user == nil {
		return fmt.Errorf("user %d: %w", interpreterID, ErrNotFound)
	}
	if !user.IsInterpreter() {
		return fmt.Errorf("user %d is not an interpreter: %w", interpreterID, ErrForbidden)
	}

	if err := s.interpreters.SetQualifications(ctx, interpreterID, specialisations, languages); err != nil {
		return storeErr("set qualifications", err)
	}

	s.logger.Info("Qualifications updated",
		zap.Int64("interpreter_id", interpreterID),
		zap.Int64s("specialisations", specialisations),
		zap.Int64s("languages", languages),
	)

	return nil
}

// ListSpecialisations справочник специализаций
func (s *InterpreterService) ListSpecialisations(ctx context.Context) ([]model.Specialisation, error) {
	items, err := s.interpreters.ListSpecialisations(ctx)
	if err != nil {
		return nil, storeErr("list specialisations", err)
	}
	return items, nil
}

// ListLanguages справочник языков
func (s *InterpreterService) ListLanguages(ctx context.Context) ([]model.Language, error) {
	items, err := s.interpreters.ListLanguages(ctx)
	if err != nil {
		return nil, storeErr("list languages", err)
	}
	return items, nil
}

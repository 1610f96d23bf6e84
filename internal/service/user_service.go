package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/signbridge/internal/model"
	"github.com/Freeeeeet/signbridge/internal/repository/base"
	"go.uber.org/zap"
)

type UserService struct {
	userRepo UserStore
	logger   *zap.Logger
}

func NewUserService(userRepo UserStore, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// RegisterUser регистрирует или обновляет пользователя, пришедшего из Telegram
func (s *UserService) RegisterUser(ctx context.Context, telegramID int64, username, firstName, lastName string) (*model.User, error) {
	// Проверяем существует ли пользователь
	existingUser, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, storeErr("check existing user", err)
	}

	// Если пользователь уже существует, обновляем данные
	if existingUser != nil {
		existingUser.Username = username
		existingUser.FirstName = firstName
		existingUser.LastName = lastName

		if err := s.userRepo.Update(ctx, existingUser); err != nil {
			return nil, storeErr("update user", err)
		}

		s.logger.Info("User updated",
			zap.Int64("telegram_id", telegramID),
			zap.String("username", username),
		)

		return existingUser, nil
	}

	// Создаём нового пользователя
	user := &model.User{
		TelegramID: &telegramID,
		Username:   username,
		FirstName:  firstName,
		LastName:   lastName,
		Role:       model.UserRoleDeaf, // По умолчанию глухой пользователь
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, base.ErrDuplicate) {
			return nil, fmt.Errorf("register user: %w", ErrConflict)
		}
		return nil, storeErr("create user", err)
	}

	s.logger.Info("New user registered",
		zap.Int64("user_id", user.ID),
		zap.Int64("telegram_id", telegramID),
		zap.String("username", username),
	)

	return user, nil
}

// GetByTelegramID получает пользователя по Telegram ID
func (s *UserService) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	user, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, storeErr("get user", err)
	}
	return user, nil
}

// GetByID получает пользователя по ID
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get user", err)
	}
	return user, nil
}

// BecomeInterpreter делает пользователя переводчиком
func (s *UserService) BecomeInterpreter(ctx context.Context, telegramID int64) (*model.User, error) {
	user, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, storeErr("get user", err)
	}

	if user == nil {
		return nil, fmt.Errorf("user with telegram id %d: %w", telegramID, ErrNotFound)
	}

	if user.IsInterpreter() {
		return user, nil
	}

	user.Role = model.UserRoleInterpreter
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, storeErr("update user", err)
	}

	s.logger.Info("User became interpreter",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username),
	)

	return user, nil
}

// UpdateProfile обновляет данные профиля, по которым идёт подбор
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, gender *string, dateOfBirth *time.Time, location string) (*model.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}

	user.Gender = gender
	user.Location = location
	if dateOfBirth != nil {
		user.DateOfBirth = dateOfBirth
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, storeErr("update user", err)
	}

	s.logger.Info("User profile updated", zap.Int64("user_id", userID))
	return user, nil
}

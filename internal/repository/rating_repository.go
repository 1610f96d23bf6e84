package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/signbridge/internal/model"
	"github.com/Freeeeeet/signbridge/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RatingRepository struct {
	pool *pgxpool.Pool
}

func NewRatingRepository(pool *pgxpool.Pool) *RatingRepository {
	return &RatingRepository{pool: pool}
}

// Create сохраняет оценку. Повторная оценка той же встречи тем же пользователем даёт ErrDuplicate.
func (r *RatingRepository) Create(ctx context.Context, rating *model.Rating) error {
	query := `
		INSERT INTO ratings (appointment_id, rater_id, interpreter_id, score, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		rating.AppointmentID,
		rating.RaterID,
		rating.InterpreterID,
		rating.Score,
		rating.Comment,
	).Scan(&rating.ID, &rating.CreatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("create rating: %w", base.ErrDuplicate)
		}
		return fmt.Errorf("create rating: %w", err)
	}

	return nil
}

// HasRated проверяет оценил ли пользователь встречу
func (r *RatingRepository) HasRated(ctx context.Context, appointmentID, raterID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM ratings WHERE appointment_id = $1 AND rater_id = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, appointmentID, raterID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check rating: %w", err)
	}
	return exists, nil
}

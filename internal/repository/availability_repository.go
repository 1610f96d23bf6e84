package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/signbridge/internal/model"
	"github.com/Freeeeeet/signbridge/internal/repository/base"
	"github.com/Freeeeeet/signbridge/internal/timerange"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// AvailabilityRepository управляет еженедельным расписанием переводчиков в базе данных
type AvailabilityRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewAvailabilityRepository создаёт новый репозиторий
func NewAvailabilityRepository(pool *pgxpool.Pool, logger *zap.Logger) *AvailabilityRepository {
	return &AvailabilityRepository{
		pool:   pool,
		logger: logger,
	}
}

// GetByInterpreterID получает все слоты переводчика, не больше одного на день недели
func (r *AvailabilityRepository) GetByInterpreterID(ctx context.Context, interpreterID int64) ([]*model.AvailabilitySlot, error) {
	query := `
		SELECT id, interpreter_id, day_id, start_minute, end_minute, created_at, updated_at
		FROM availability_slots
		WHERE interpreter_id = $1
		ORDER BY day_id
	`

	rows, err := r.pool.Query(ctx, query, interpreterID)
	if err != nil {
		return nil, fmt.Errorf("get availability by interpreter: %w", err)
	}
	defer rows.Close()

	var slots []*model.AvailabilitySlot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan availability slot: %w", err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate availability slots: %w", err)
	}

	return slots, nil
}

// GetDay получает слот переводчика на конкретный день недели
func (r *AvailabilityRepository) GetDay(ctx context.Context, interpreterID int64, dayID int) (*model.AvailabilitySlot, error) {
	query := `
		SELECT id, interpreter_id, day_id, start_minute, end_minute, created_at, updated_at
		FROM availability_slots
		WHERE interpreter_id = $1 AND day_id = $2
	`

	slot, err := scanSlot(r.pool.QueryRow(ctx, query, interpreterID, dayID))
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get availability day: %w", err)
	}

	return slot, nil
}

// UpsertDays записывает одинаковый интервал на все переданные дни одним запросом.
// Либо обновляются все дни, либо ни один.
func (r *AvailabilityRepository) UpsertDays(ctx context.Context, interpreterID int64, dayIDs []int, start, end timerange.Clock) ([]*model.AvailabilitySlot, error) {
	query := `
		INSERT INTO availability_slots (interpreter_id, day_id, start_minute, end_minute)
		SELECT $1, day_id, $3, $4
		FROM unnest($2::smallint[]) AS day_id
		ON CONFLICT (interpreter_id, day_id)
		DO UPDATE SET start_minute = EXCLUDED.start_minute, end_minute = EXCLUDED.end_minute
		RETURNING id, interpreter_id, day_id, start_minute, end_minute, created_at, updated_at
	`

	days := make([]int16, len(dayIDs))
	for i, d := range dayIDs {
		days[i] = int16(d)
	}

	rows, err := r.pool.Query(ctx, query, interpreterID, days, int(start), int(end))
	if err != nil {
		return nil, fmt.Errorf("upsert availability: %w", err)
	}
	defer rows.Close()

	var slots []*model.AvailabilitySlot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan availability slot: %w", err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("upsert availability: %w", err)
	}

	r.logger.Debug("Availability upserted",
		zap.Int64("interpreter_id", interpreterID),
		zap.Ints("days", dayIDs),
		zap.String("start", start.String()),
		zap.String("end", end.String()),
	)

	return slots, nil
}

// DeleteDay удаляет слот на один день недели. Возвращает false если слота не было.
func (r *AvailabilityRepository) DeleteDay(ctx context.Context, interpreterID int64, dayID int) (bool, error) {
	query := `DELETE FROM availability_slots WHERE interpreter_id = $1 AND day_id = $2`

	n, err := base.ExecAffected(ctx, r.pool, query, interpreterID, dayID)
	if err != nil {
		return false, fmt.Errorf("delete availability day: %w", err)
	}

	return n > 0, nil
}

func scanSlot(row pgx.Row) (*model.AvailabilitySlot, error) {
	var (
		slot       model.AvailabilitySlot
		day        int16
		start, end int16
	)
	err := row.Scan(
		&slot.ID,
		&slot.InterpreterID,
		&day,
		&start,
		&end,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	slot.DayID = int(day)
	slot.StartTime = timerange.Clock(start)
	slot.EndTime = timerange.Clock(end)
	return &slot, nil
}

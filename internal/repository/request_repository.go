package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/signbridge/internal/model"
	"github.com/Freeeeeet/signbridge/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const requestColumns = `id, appointment_id, interpreter_id, is_accepted, is_expired, note, created_at, responded_at`

type RequestRepository struct {
	pool *pgxpool.Pool
}

func NewRequestRepository(pool *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{pool: pool}
}

// GetByID получает запрос по ID
func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*model.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = $1`

	req, err := scanRequest(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get request by id: %w", err)
	}

	return req, nil
}

// ListByAppointment получает все запросы по встрече
func (r *RequestRepository) ListByAppointment(ctx context.Context, appointmentID int64) ([]*model.Request, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM requests
		WHERE appointment_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("list requests by appointment: %w", err)
	}
	defer rows.Close()

	var reqs []*model.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		reqs = append(reqs, req)
	}

	return reqs, rows.Err()
}

// ListPendingByInterpreter получает запросы, ожидающие ответа переводчика, вместе со встречей
func (r *RequestRepository) ListPendingByInterpreter(ctx context.Context, interpreterID int64) ([]*model.Request, error) {
	query := `
		SELECT ` + prefixedWith("r", requestColumns) + `, ` + prefixed(appointmentColumns) + `
		FROM requests r
		JOIN appointments a ON a.id = r.appointment_id
		WHERE r.interpreter_id = $1
		  AND r.is_accepted IS NULL
		  AND NOT r.is_expired
		  AND a.status = 'pending'
		ORDER BY a.start_time
	`

	rows, err := r.pool.Query(ctx, query, interpreterID)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	defer rows.Close()

	var reqs []*model.Request
	for rows.Next() {
		var (
			req  model.Request
			appt model.Appointment
		)
		err := rows.Scan(
			&req.ID,
			&req.AppointmentID,
			&req.InterpreterID,
			&req.IsAccepted,
			&req.IsExpired,
			&req.Note,
			&req.CreatedAt,
			&req.RespondedAt,
			&appt.ID,
			&appt.DeafUserID,
			&appt.InterpreterID,
			&appt.StartTime,
			&appt.EndTime,
			&appt.HospitalName,
			&appt.Status,
			&appt.MeetingURL,
			&appt.ChatRoomID,
			&appt.Note,
			&appt.CreatedAt,
			&appt.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan pending request: %w", err)
		}
		req.Appointment = &appt
		reqs = append(reqs, &req)
	}

	return reqs, rows.Err()
}

// ExpireStale помечает истёкшими живые запросы, созданные раньше cutoff
// или по встречам, которые уже начались к now
func (r *RequestRepository) ExpireStale(ctx context.Context, cutoff, now time.Time) ([]*model.Request, error) {
	query := `
		UPDATE requests r
		SET is_expired = true
		FROM appointments a
		WHERE a.id = r.appointment_id
		  AND r.is_accepted IS NULL
		  AND NOT r.is_expired
		  AND (r.created_at < $1 OR a.start_time <= $2)
		RETURNING ` + prefixedWith("r", requestColumns)

	rows, err := r.pool.Query(ctx, query, cutoff, now)
	if err != nil {
		return nil, fmt.Errorf("expire stale requests: %w", err)
	}
	defer rows.Close()

	var reqs []*model.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		reqs = append(reqs, req)
	}

	return reqs, rows.Err()
}

func insertRequest(ctx context.Context, q base.Querier, req *model.Request) error {
	query := `
		INSERT INTO requests (appointment_id, interpreter_id, note)
		VALUES ($1, $2, $3)
		RETURNING id, is_accepted, is_expired, created_at
	`

	err := q.QueryRow(ctx, query, req.AppointmentID, req.InterpreterID, req.Note).
		Scan(&req.ID, &req.IsAccepted, &req.IsExpired, &req.CreatedAt)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("create request: %w", base.ErrDuplicate)
		}
		return fmt.Errorf("create request: %w", err)
	}

	return nil
}

// answerRequest фиксирует ответ на живой запрос. nil если запрос уже не ждёт ответа.
func answerRequest(ctx context.Context, q base.Querier, requestID int64, accept bool) (*model.Request, error) {
	query := `
		UPDATE requests
		SET is_accepted = $2, responded_at = now()
		WHERE id = $1 AND is_accepted IS NULL AND NOT is_expired
		RETURNING ` + requestColumns

	req, err := scanRequest(q.QueryRow(ctx, query, requestID, accept))
	if base.IsNotFound(err) {
		return nil, errRollback
	}
	if err != nil {
		return nil, fmt.Errorf("answer request: %w", err)
	}
	return req, nil
}

func scanRequest(row pgx.Row) (*model.Request, error) {
	var req model.Request
	err := row.Scan(
		&req.ID,
		&req.AppointmentID,
		&req.InterpreterID,
		&req.IsAccepted,
		&req.IsExpired,
		&req.Note,
		&req.CreatedAt,
		&req.RespondedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// prefixed добавляет алиас "a." к списку колонок встречи
func prefixed(columns string) string {
	return prefixedWith("a", columns)
}

func prefixedWith(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = alias + "." + p
	}
	return strings.Join(parts, ", ")
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/signbridge/internal/model"
	"github.com/Freeeeeet/signbridge/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrOverlap у переводчика уже есть активная встреча на это время
var ErrOverlap = errors.New("appointment overlaps an existing one")

const appointmentColumns = `id, deaf_user_id, interpreter_id, start_time, end_time, hospital_name, status, meeting_url, chat_room_id, note, created_at, updated_at`

// occupyingCondition встречи, которые занимают время переводчика $1:
// подтверждённые с этим переводчиком и ожидающие с живым запросом к нему
const occupyingCondition = `
	(a.status = 'approved' AND a.interpreter_id = $1)
	OR (a.status = 'pending' AND EXISTS (
		SELECT 1 FROM requests r
		WHERE r.appointment_id = a.id
		  AND r.interpreter_id = $1
		  AND r.is_accepted IS NULL
		  AND NOT r.is_expired
	))
`

type AppointmentRepository struct {
	pool *pgxpool.Pool
	db   *base.Repository
}

func NewAppointmentRepository(pool *pgxpool.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool, db: base.NewRepository(pool)}
}

// Create создаёт встречу без запроса переводчику
func (r *AppointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	return insertAppointment(ctx, r.pool, appt)
}

// CreateWithRequest атомарно создаёт встречу и первый запрос переводчику.
// Вставка выполняется только если у переводчика нет пересекающихся активных встреч,
// иначе возвращается ErrOverlap.
func (r *AppointmentRepository) CreateWithRequest(ctx context.Context, appt *model.Appointment, req *model.Request) error {
	return r.db.InTx(ctx, func(tx pgx.Tx) error {
		if err := lockInterpreter(ctx, tx, req.InterpreterID); err != nil {
			return err
		}

		busy, err := hasOverlap(ctx, tx, req.InterpreterID, appt.StartTime, appt.EndTime, 0)
		if err != nil {
			return err
		}
		if busy {
			return ErrOverlap
		}

		if err := insertAppointment(ctx, tx, appt); err != nil {
			return err
		}

		req.AppointmentID = appt.ID
		return insertRequest(ctx, tx, req)
	})
}

// AddRequest добавляет запрос переводчику к существующей встрече при тех же условиях,
// что и CreateWithRequest
func (r *AppointmentRepository) AddRequest(ctx context.Context, appt *model.Appointment, req *model.Request) error {
	return r.db.InTx(ctx, func(tx pgx.Tx) error {
		if err := lockInterpreter(ctx, tx, req.InterpreterID); err != nil {
			return err
		}

		busy, err := hasOverlap(ctx, tx, req.InterpreterID, appt.StartTime, appt.EndTime, appt.ID)
		if err != nil {
			return err
		}
		if busy {
			return ErrOverlap
		}

		req.AppointmentID = appt.ID
		return insertRequest(ctx, tx, req)
	})
}

// GetByID получает встречу по ID
func (r *AppointmentRepository) GetByID(ctx context.Context, id int64) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	appt, err := scanAppointment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get appointment by id: %w", err)
	}

	return appt, nil
}

// ListOccupying возвращает активные встречи переводчика, пересекающиеся с [from, to)
func (r *AppointmentRepository) ListOccupying(ctx context.Context, interpreterID int64, from, to time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT ` + prefixed(appointmentColumns) + `
		FROM appointments a
		WHERE a.start_time < $3 AND a.end_time > $2
		  AND (` + occupyingCondition + `)
		ORDER BY a.start_time
	`

	appts, err := queryAppointments(ctx, r.pool, query, interpreterID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list occupying appointments: %w", err)
	}
	return appts, nil
}

// ListByDeafUser получает все встречи пользователя
func (r *AppointmentRepository) ListByDeafUser(ctx context.Context, deafUserID int64) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE deaf_user_id = $1
		ORDER BY start_time DESC
	`

	appts, err := queryAppointments(ctx, r.pool, query, deafUserID)
	if err != nil {
		return nil, fmt.Errorf("list appointments by deaf user: %w", err)
	}
	return appts, nil
}

// ListByInterpreter получает встречи, закреплённые за переводчиком, в диапазоне времени
func (r *AppointmentRepository) ListByInterpreter(ctx context.Context, interpreterID int64, from, to time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE interpreter_id = $1 AND start_time < $3 AND end_time > $2
		ORDER BY start_time
	`

	appts, err := queryAppointments(ctx, r.pool, query, interpreterID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list appointments by interpreter: %w", err)
	}
	return appts, nil
}

// ListReviewable встречи пользователя, закончившиеся в [since, now], ещё не оценённые им
func (r *AppointmentRepository) ListReviewable(ctx context.Context, deafUserID int64, since, now time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT ` + prefixed(appointmentColumns) + `
		FROM appointments a
		WHERE a.deaf_user_id = $1
		  AND a.interpreter_id IS NOT NULL
		  AND a.status IN ('approved', 'completed')
		  AND a.end_time >= $2 AND a.end_time <= $3
		  AND NOT EXISTS (
			SELECT 1 FROM ratings rt WHERE rt.appointment_id = a.id AND rt.rater_id = $1
		  )
		ORDER BY a.end_time DESC
	`

	appts, err := queryAppointments(ctx, r.pool, query, deafUserID, since, now)
	if err != nil {
		return nil, fmt.Errorf("list reviewable appointments: %w", err)
	}
	return appts, nil
}

// AcceptRequest принимает запрос: запрос помечается принятым, встреча подтверждается
// и закрепляется за переводчиком, остальные живые запросы по встрече истекают.
// Возвращает nil, если запрос уже не ожидает ответа, встреча уже не pending
// или уже началась к моменту now.
func (r *AppointmentRepository) AcceptRequest(ctx context.Context, requestID int64, now time.Time) (*model.Appointment, error) {
	var appt *model.Appointment

	err := r.db.InTx(ctx, func(tx pgx.Tx) error {
		req, err := answerRequest(ctx, tx, requestID, true)
		if err != nil || req == nil {
			return err
		}

		query := `
			UPDATE appointments
			SET status = 'approved', interpreter_id = $2
			WHERE id = $1 AND status = 'pending' AND start_time > $3
			RETURNING ` + appointmentColumns

		appt, err = scanAppointment(tx.QueryRow(ctx, query, req.AppointmentID, req.InterpreterID, now))
		if base.IsNotFound(err) {
			appt = nil
			return errRollback
		}
		if err != nil {
			return fmt.Errorf("approve appointment: %w", err)
		}

		return expireSiblings(ctx, tx, req)
	})
	if errors.Is(err, errRollback) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("accept request: %w", err)
	}

	return appt, nil
}

// RejectRequest отклоняет запрос и встречу, остальные живые запросы по встрече истекают.
// Возвращает nil, если переход невозможен.
func (r *AppointmentRepository) RejectRequest(ctx context.Context, requestID int64) (*model.Appointment, error) {
	var appt *model.Appointment

	err := r.db.InTx(ctx, func(tx pgx.Tx) error {
		req, err := answerRequest(ctx, tx, requestID, false)
		if err != nil || req == nil {
			return err
		}

		query := `
			UPDATE appointments
			SET status = 'rejected'
			WHERE id = $1 AND status = 'pending'
			RETURNING ` + appointmentColumns

		appt, err = scanAppointment(tx.QueryRow(ctx, query, req.AppointmentID))
		if base.IsNotFound(err) {
			appt = nil
			return errRollback
		}
		if err != nil {
			return fmt.Errorf("reject appointment: %w", err)
		}

		return expireSiblings(ctx, tx, req)
	})
	if errors.Is(err, errRollback) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reject request: %w", err)
	}

	return appt, nil
}

// Cancel отменяет активную встречу и гасит её живые запросы.
// Возвращает nil если встреча уже не активна.
func (r *AppointmentRepository) Cancel(ctx context.Context, id int64) (*model.Appointment, error) {
	var appt *model.Appointment

	err := r.db.InTx(ctx, func(tx pgx.Tx) error {
		query := `
			UPDATE appointments
			SET status = 'cancelled'
			WHERE id = $1 AND status IN ('pending', 'approved')
			RETURNING ` + appointmentColumns

		var err error
		appt, err = scanAppointment(tx.QueryRow(ctx, query, id))
		if base.IsNotFound(err) {
			appt = nil
			return nil
		}
		if err != nil {
			return fmt.Errorf("cancel appointment: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE requests SET is_expired = true
			WHERE appointment_id = $1 AND is_accepted IS NULL AND NOT is_expired
		`, id)
		if err != nil {
			return fmt.Errorf("expire requests: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return appt, nil
}

// SetMeeting сохраняет ссылку на видеовстречу и идентификатор чата
func (r *AppointmentRepository) SetMeeting(ctx context.Context, id int64, meetingURL, chatRoomID *string) error {
	query := `UPDATE appointments SET meeting_url = $2, chat_room_id = $3 WHERE id = $1`

	n, err := base.ExecAffected(ctx, r.pool, query, id, meetingURL, chatRoomID)
	if err != nil {
		return fmt.Errorf("set appointment meeting: %w", err)
	}

	if n == 0 {
		return fmt.Errorf("appointment not found")
	}

	return nil
}

// CompleteEnded переводит подтверждённые встречи, закончившиеся к now, в completed
func (r *AppointmentRepository) CompleteEnded(ctx context.Context, now time.Time) ([]*model.Appointment, error) {
	query := `
		UPDATE appointments
		SET status = 'completed'
		WHERE status = 'approved' AND end_time <= $1
		RETURNING ` + appointmentColumns

	appts, err := queryAppointments(ctx, r.pool, query, now)
	if err != nil {
		return nil, fmt.Errorf("complete ended appointments: %w", err)
	}
	return appts, nil
}

// RejectWithoutLiveRequests отклоняет ожидающие встречи из списка, у которых
// не осталось ни одного живого запроса
func (r *AppointmentRepository) RejectWithoutLiveRequests(ctx context.Context, ids []int64) ([]*model.Appointment, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		UPDATE appointments a
		SET status = 'rejected'
		WHERE a.id = ANY($1) AND a.status = 'pending'
		  AND NOT EXISTS (
			SELECT 1 FROM requests r
			WHERE r.appointment_id = a.id AND r.is_accepted IS NULL AND NOT r.is_expired
		  )
		RETURNING ` + prefixed(appointmentColumns)

	appts, err := queryAppointments(ctx, r.pool, query, ids)
	if err != nil {
		return nil, fmt.Errorf("reject appointments without requests: %w", err)
	}
	return appts, nil
}

// errRollback откатывает транзакцию без ошибки для вызывающего
var errRollback = errors.New("rollback")

// lockInterpreter сериализует бронирования одного переводчика до конца транзакции
// expireSiblings гасит остальные живые запросы по той же встрече
func expireSiblings(ctx context.Context, q base.Querier, req *model.Request) error {
	_, err := q.Exec(ctx, `
		UPDATE requests SET is_expired = true
		WHERE appointment_id = $1 AND id <> $2 AND is_accepted IS NULL AND NOT is_expired
	`, req.AppointmentID, req.ID)
	if err != nil {
		return fmt.Errorf("expire sibling requests: %w", err)
	}
	return nil
}

func lockInterpreter(ctx context.Context, q base.Querier, interpreterID int64) error {
	if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, interpreterID); err != nil {
		return fmt.Errorf("lock interpreter: %w", err)
	}
	return nil
}

func hasOverlap(ctx context.Context, q base.Querier, interpreterID int64, start, end time.Time, excludeID int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM appointments a
			WHERE a.id <> $4
			  AND a.start_time < $3 AND a.end_time > $2
			  AND (` + occupyingCondition + `)
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, interpreterID, start, end, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check overlap: %w", err)
	}
	return exists, nil
}

func insertAppointment(ctx context.Context, q base.Querier, appt *model.Appointment) error {
	query := `
		INSERT INTO appointments (deaf_user_id, interpreter_id, start_time, end_time, hospital_name, status, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(
		ctx, query,
		appt.DeafUserID,
		appt.InterpreterID,
		appt.StartTime,
		appt.EndTime,
		appt.HospitalName,
		appt.Status,
		appt.Note,
	).Scan(&appt.ID, &appt.CreatedAt, &appt.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}

	return nil
}

func queryAppointments(ctx context.Context, q base.Querier, query string, args ...any) ([]*model.Appointment, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []*model.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appts = append(appts, appt)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return appts, nil
}

func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	var appt model.Appointment
	err := row.Scan(
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
		return nil, err
	}
	return &appt, nil
}

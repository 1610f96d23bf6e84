package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/signbridge/internal/model"
	"github.com/Freeeeeet/signbridge/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// profileSelect профиль переводчика с наборами квалификаций и агрегированным рейтингом
var profileSelect = `
	SELECT ` + prefixedWith("u", userColumns) + `,
		ARRAY(SELECT s.specialisation_id FROM interpreter_specialisations s WHERE s.interpreter_id = u.id ORDER BY 1),
		ARRAY(SELECT l.language_id FROM interpreter_languages l WHERE l.interpreter_id = u.id ORDER BY 1),
		rt.avg_score,
		rt.cnt
	FROM users u
	LEFT JOIN LATERAL (
		SELECT AVG(score)::float8 AS avg_score, COUNT(*) AS cnt
		FROM ratings WHERE interpreter_id = u.id
	) rt ON true
`

type InterpreterRepository struct {
	pool *pgxpool.Pool
	db   *base.Repository
}

func NewInterpreterRepository(pool *pgxpool.Pool) *InterpreterRepository {
	return &InterpreterRepository{pool: pool, db: base.NewRepository(pool)}
}

// FindCandidates предварительно отбирает переводчиков по квалификации и городу.
// Остальные фильтры применяет движок подбора.
func (r *InterpreterRepository) FindCandidates(ctx context.Context, criteria model.SearchCriteria) ([]*model.InterpreterProfile, error) {
	query := profileSelect + `
		WHERE u.role = 'interpreter'
		  AND EXISTS (
			SELECT 1 FROM interpreter_specialisations s
			WHERE s.interpreter_id = u.id AND s.specialisation_id = $1
		  )
		  AND EXISTS (
			SELECT 1 FROM interpreter_languages l
			WHERE l.interpreter_id = u.id AND l.language_id = $2
		  )
		  AND u.location = $3
		ORDER BY u.id
	`

	rows, err := r.pool.Query(ctx, query, criteria.SpecialisationID, criteria.LanguageID, criteria.Location)
	if err != nil {
		return nil, fmt.Errorf("find interpreter candidates: %w", err)
	}
	defer rows.Close()

	var profiles []*model.InterpreterProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan interpreter profile: %w", err)
		}
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find interpreter candidates: %w", err)
	}

	return profiles, nil
}

// GetProfile получает профиль переводчика по ID пользователя
func (r *InterpreterRepository) GetProfile(ctx context.Context, interpreterID int64) (*model.InterpreterProfile, error) {
	query := profileSelect + ` WHERE u.id = $1 AND u.role = 'interpreter'`

	p, err := scanProfile(r.pool.QueryRow(ctx, query, interpreterID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get interpreter profile: %w", err)
	}

	return p, nil
}

// SetQualifications заменяет наборы специализаций и языков переводчика
func (r *InterpreterRepository) SetQualifications(ctx context.Context, interpreterID int64, specialisations, languages []int64) error {
	return r.db.InTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM interpreter_specialisations WHERE interpreter_id = $1`, interpreterID); err != nil {
			return fmt.Errorf("clear specialisations: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM interpreter_languages WHERE interpreter_id = $1`, interpreterID); err != nil {
			return fmt.Errorf("clear languages: %w", err)
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO interpreter_specialisations (interpreter_id, specialisation_id)
			SELECT $1, unnest($2::bigint[])
			ON CONFLICT DO NOTHING
		`, interpreterID, specialisations)
		if err != nil {
			if base.IsForeignKeyViolation(err) {
				return fmt.Errorf("set specialisations: unknown specialisation: %w", err)
			}
			return fmt.Errorf("set specialisations: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO interpreter_languages (interpreter_id, language_id)
			SELECT $1, unnest($2::bigint[])
			ON CONFLICT DO NOTHING
		`, interpreterID, languages)
		if err != nil {
			if base.IsForeignKeyViolation(err) {
				return fmt.Errorf("set languages: unknown language: %w", err)
			}
			return fmt.Errorf("set languages: %w", err)
		}

		return nil
	})
}

// ListSpecialisations возвращает справочник специализаций
func (r *InterpreterRepository) ListSpecialisations(ctx context.Context) ([]model.Specialisation, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM specialisations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list specialisations: %w", err)
	}
	defer rows.Close()

	var items []model.Specialisation
	for rows.Next() {
		var s model.Specialisation
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("scan specialisation: %w", err)
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// ListLanguages возвращает справочник языков
func (r *InterpreterRepository) ListLanguages(ctx context.Context) ([]model.Language, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM languages ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list languages: %w", err)
	}
	defer rows.Close()

	var items []model.Language
	for rows.Next() {
		var l model.Language
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, fmt.Errorf("scan language: %w", err)
		}
		items = append(items, l)
	}
	return items, rows.Err()
}

func scanProfile(row pgx.Row) (*model.InterpreterProfile, error) {
	var (
		p     model.InterpreterProfile
		count int64
	)
	err := row.Scan(
		&p.ID,
		&p.TelegramID,
		&p.Username,
		&p.FirstName,
		&p.LastName,
		&p.Email,
		&p.Role,
		&p.Gender,
		&p.DateOfBirth,
		&p.Location,
		&p.CreatedAt,
		&p.Specialisations,
		&p.Languages,
		&p.Rating,
		&count,
	)
	if err != nil {
		return nil, err
	}
	p.RatingCount = int(count)
	return &p, nil
}

package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/languagebridge/admin-api/internal/domain"
	"github.com/languagebridge/admin-api/internal/domain/entity"
	"github.com/languagebridge/admin-api/internal/domain/repository"
)

type StudentStore struct {
	pool *pgxpool.Pool
}

func NewStudentStore(pool *pgxpool.Pool) *StudentStore {
	return &StudentStore{pool: pool}
}

// selectStudent joins users and addresses so reads return the populated
// aggregate in one round trip. The user password is deliberately not
// selected.
const selectStudent = `
	SELECT s.id, s.user_id, s.address_id, s.ward_id, s.birth_date,
	       s.language, s.level, s.church_membership, s.created_at, s.updated_at,
	       u.first_name, u.last_name, u.email, u.type, u.phone, u.avatar_url,
	       u.created_at, u.updated_at,
	       a.street, a.neighborhood, a.city, a.state, a.country, a.postal_code,
	       a.created_at, a.updated_at
	FROM students s
	JOIN users u ON u.id = s.user_id
	JOIN addresses a ON a.id = s.address_id
`

func scanStudent(row pgx.Row) (*entity.Student, error) {
	st := &entity.Student{User: &entity.User{}, Address: &entity.Address{}}
	var wardID, phone, neighborhood *string

	if err := row.Scan(
		&st.ID, &st.UserID, &st.AddressID, &wardID, &st.BirthDate,
		&st.Language, &st.Level, &st.ChurchMembership, &st.CreatedAt, &st.UpdatedAt,
		&st.User.FirstName, &st.User.LastName, &st.User.Email, &st.User.Type,
		&phone, &st.User.AvatarURL, &st.User.CreatedAt, &st.User.UpdatedAt,
		&st.Address.Street, &neighborhood, &st.Address.City, &st.Address.State,
		&st.Address.Country, &st.Address.PostalCode, &st.Address.CreatedAt, &st.Address.UpdatedAt,
	); err != nil {
		return nil, mapPgError(err)
	}
	if wardID != nil {
		st.WardID = *wardID
	}
	if phone != nil {
		st.User.Phone = *phone
	}
	if neighborhood != nil {
		st.Address.Neighborhood = *neighborhood
	}
	st.User.ID = st.UserID
	st.Address.ID = st.AddressID
	return st, nil
}

func (s *StudentStore) Create(ctx context.Context, st *entity.Student) error {
	row := db(ctx, s.pool).QueryRow(ctx, `
		INSERT INTO students (user_id, address_id, ward_id, birth_date, language, level, church_membership)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, st.UserID, st.AddressID, nullable(st.WardID), st.BirthDate, st.Language, st.Level, st.ChurchMembership)

	if err := row.Scan(&st.ID, &st.CreatedAt, &st.UpdatedAt); err != nil {
		return mapPgError(err)
	}
	return nil
}

func (s *StudentStore) GetByID(ctx context.Context, id string) (*entity.Student, error) {
	return scanStudent(db(ctx, s.pool).QueryRow(ctx, selectStudent+`WHERE s.id = $1`, id))
}

func (s *StudentStore) GetByUserID(ctx context.Context, userID string) (*entity.Student, error) {
	return scanStudent(db(ctx, s.pool).QueryRow(ctx, selectStudent+`WHERE s.user_id = $1`, userID))
}

func (s *StudentStore) List(ctx context.Context) ([]*entity.Student, error) {
	return s.list(ctx, selectStudent+`ORDER BY s.created_at`)
}

func (s *StudentStore) ListByWard(ctx context.Context, wardID string) ([]*entity.Student, error) {
	return s.list(ctx, selectStudent+`WHERE s.ward_id = $1 ORDER BY s.created_at`, wardID)
}

func (s *StudentStore) list(ctx context.Context, sql string, args ...any) ([]*entity.Student, error) {
	rows, err := db(ctx, s.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	out := []*entity.Student{}
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, mapPgError(rows.Err())
}

func (s *StudentStore) Update(ctx context.Context, st *entity.Student) error {
	st.UpdatedAt = time.Now()

	res, err := db(ctx, s.pool).Exec(ctx, `
		UPDATE students
		SET ward_id = $1, birth_date = $2, language = $3, level = $4,
		    church_membership = $5, address_id = $6, updated_at = $7
		WHERE id = $8
	`, nullable(st.WardID), st.BirthDate, st.Language, st.Level, st.ChurchMembership, st.AddressID, st.UpdatedAt, st.ID)
	if err != nil {
		return mapPgError(err)
	}
	if res.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *StudentStore) Delete(ctx context.Context, id string) error {
	res, err := db(ctx, s.pool).Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if res.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ repository.StudentStore = (*StudentStore)(nil)

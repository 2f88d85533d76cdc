package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/languagebridge/admin-api/internal/domain"
	"github.com/languagebridge/admin-api/internal/domain/entity"
	"github.com/languagebridge/admin-api/internal/domain/repository"
)

type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

func (s *UserStore) Create(ctx context.Context, u *entity.User) error {
	row := db(ctx, s.pool).QueryRow(ctx, `
		INSERT INTO users (first_name, last_name, email, password, type, phone, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, u.FirstName, u.LastName, u.Email, u.Password, u.Type, nullable(u.Phone), u.AvatarURL)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return mapPgError(err)
	}
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return s.get(ctx, `WHERE id = $1`, id)
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return s.get(ctx, `WHERE email = $1`, email)
}

func (s *UserStore) get(ctx context.Context, where string, arg any) (*entity.User, error) {
	u := &entity.User{}
	var phone *string

	row := db(ctx, s.pool).QueryRow(ctx, `
		SELECT id, first_name, last_name, email, password, type, phone, avatar_url, created_at, updated_at
		FROM users `+where, arg)

	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Password,
		&u.Type, &phone, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, mapPgError(err)
	}
	if phone != nil {
		u.Phone = *phone
	}
	return u, nil
}

func (s *UserStore) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()

	res, err := db(ctx, s.pool).Exec(ctx, `
		UPDATE users
		SET first_name = $1, last_name = $2, email = $3, password = $4,
		    phone = $5, avatar_url = $6, updated_at = $7
		WHERE id = $8
	`, u.FirstName, u.LastName, u.Email, u.Password, nullable(u.Phone), u.AvatarURL, u.UpdatedAt, u.ID)
	if err != nil {
		return mapPgError(err)
	}
	if res.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	res, err := db(ctx, s.pool).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if res.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// nullable maps "" to SQL NULL for optional text columns.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var _ repository.UserStore = (*UserStore)(nil)

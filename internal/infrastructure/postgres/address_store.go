package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/languagebridge/admin-api/internal/domain"
	"github.com/languagebridge/admin-api/internal/domain/entity"
	"github.com/languagebridge/admin-api/internal/domain/repository"
)

type AddressStore struct {
	pool *pgxpool.Pool
}

func NewAddressStore(pool *pgxpool.Pool) *AddressStore {
	return &AddressStore{pool: pool}
}

func (s *AddressStore) Create(ctx context.Context, a *entity.Address) error {
	row := db(ctx, s.pool).QueryRow(ctx, `
		INSERT INTO addresses (street, neighborhood, city, state, country, postal_code)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, a.Street, nullable(a.Neighborhood), a.City, a.State, a.Country, a.PostalCode)

	if err := row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return mapPgError(err)
	}
	return nil
}

func (s *AddressStore) GetByID(ctx context.Context, id string) (*entity.Address, error) {
	a := &entity.Address{}
	var neighborhood *string

	row := db(ctx, s.pool).QueryRow(ctx, `
		SELECT id, street, neighborhood, city, state, country, postal_code, created_at, updated_at
		FROM addresses
		WHERE id = $1
	`, id)

	if err := row.Scan(&a.ID, &a.Street, &neighborhood, &a.City, &a.State,
		&a.Country, &a.PostalCode, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, mapPgError(err)
	}
	if neighborhood != nil {
		a.Neighborhood = *neighborhood
	}
	return a, nil
}

func (s *AddressStore) Update(ctx context.Context, a *entity.Address) error {
	a.UpdatedAt = time.Now()

	res, err := db(ctx, s.pool).Exec(ctx, `
		UPDATE addresses
		SET street = $1, neighborhood = $2, city = $3, state = $4,
		    country = $5, postal_code = $6, updated_at = $7
		WHERE id = $8
	`, a.Street, nullable(a.Neighborhood), a.City, a.State, a.Country, a.PostalCode, a.UpdatedAt, a.ID)
	if err != nil {
		return mapPgError(err)
	}
	if res.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *AddressStore) Delete(ctx context.Context, id string) error {
	res, err := db(ctx, s.pool).Exec(ctx, `DELETE FROM addresses WHERE id = $1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if res.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ repository.AddressStore = (*AddressStore)(nil)

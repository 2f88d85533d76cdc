package repository

import (
	"context"
	"io"

	"github.com/languagebridge/admin-api/internal/domain/entity"
)

// Store interfaces for the student aggregate. Implementations participate
// in a surrounding transaction when the context carries one (see TxRunner);
// otherwise they run against the pool directly.

type UserStore interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, id string) error
}

type AddressStore interface {
	Create(ctx context.Context, a *entity.Address) error
	GetByID(ctx context.Context, id string) (*entity.Address, error)
	Update(ctx context.Context, a *entity.Address) error
	Delete(ctx context.Context, id string) error
}

type StudentStore interface {
	Create(ctx context.Context, s *entity.Student) error
	// GetByID returns the student with User (password excluded from JSON)
	// and Address populated.
	GetByID(ctx context.Context, id string) (*entity.Student, error)
	List(ctx context.Context) ([]*entity.Student, error)
	ListByWard(ctx context.Context, wardID string) ([]*entity.Student, error)
	GetByUserID(ctx context.Context, userID string) (*entity.Student, error)
	Update(ctx context.Context, s *entity.Student) error
	Delete(ctx context.Context, id string) error
}

type TokenMetadataStore interface {
	Upsert(ctx context.Context, t *entity.TokenMetadata) error
	GetByUserID(ctx context.Context, userID string) (*entity.TokenMetadata, error)
	DeleteByUserID(ctx context.Context, userID string) error
}

// TxRunner opens a database transaction, runs fn with the transaction
// carried in the returned context, and commits on nil / rolls back on
// error. Store calls made with that context join the transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// AssetFile is a binary object handed to the asset store.
type AssetFile struct {
	Content     io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// AssetStore is the external binary object store. It is never part of the
// database transaction: uploads happen before commit, deletes of
// unreferenced objects after. Delete is idempotent; removing a missing or
// foreign URL is not an error.
type AssetStore interface {
	Upload(ctx context.Context, ownerID string, f AssetFile) (string, error)
	Delete(ctx context.Context, url string) error
}

package application

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/languagebridge/admin-api/internal/domain/entity"
	"github.com/languagebridge/admin-api/internal/domain/repository"
)

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Create(ctx context.Context, u *entity.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUserStore) GetByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*entity.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*entity.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) Update(ctx context.Context, u *entity.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUserStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockAddressStore struct{ mock.Mock }

func (m *mockAddressStore) Create(ctx context.Context, a *entity.Address) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockAddressStore) GetByID(ctx context.Context, id string) (*entity.Address, error) {
	args := m.Called(ctx, id)
	if a := args.Get(0); a != nil {
		return a.(*entity.Address), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAddressStore) Update(ctx context.Context, a *entity.Address) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockAddressStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockStudentStore struct{ mock.Mock }

func (m *mockStudentStore) Create(ctx context.Context, s *entity.Student) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockStudentStore) GetByID(ctx context.Context, id string) (*entity.Student, error) {
	args := m.Called(ctx, id)
	if s := args.Get(0); s != nil {
		return s.(*entity.Student), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStudentStore) List(ctx context.Context) ([]*entity.Student, error) {
	args := m.Called(ctx)
	if s := args.Get(0); s != nil {
		return s.([]*entity.Student), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStudentStore) ListByWard(ctx context.Context, wardID string) ([]*entity.Student, error) {
	args := m.Called(ctx, wardID)
	if s := args.Get(0); s != nil {
		return s.([]*entity.Student), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStudentStore) GetByUserID(ctx context.Context, userID string) (*entity.Student, error) {
	args := m.Called(ctx, userID)
	if s := args.Get(0); s != nil {
		return s.(*entity.Student), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStudentStore) Update(ctx context.Context, s *entity.Student) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockStudentStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockTokenStore struct{ mock.Mock }

func (m *mockTokenStore) Upsert(ctx context.Context, t *entity.TokenMetadata) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockTokenStore) GetByUserID(ctx context.Context, userID string) (*entity.TokenMetadata, error) {
	args := m.Called(ctx, userID)
	if t := args.Get(0); t != nil {
		return t.(*entity.TokenMetadata), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTokenStore) DeleteByUserID(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockAssetStore struct{ mock.Mock }

func (m *mockAssetStore) Upload(ctx context.Context, ownerID string, f repository.AssetFile) (string, error) {
	args := m.Called(ctx, ownerID, f)
	return args.String(0), args.Error(1)
}

func (m *mockAssetStore) Delete(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishJSON(ctx context.Context, body any) error {
	return m.Called(ctx, body).Error(0)
}

// stubTx runs the callback directly; commit and rollback are implicit in
// whether fn returned an error.
type stubTx struct{}

func (stubTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

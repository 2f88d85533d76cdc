package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/languagebridge/admin-api/internal/domain"
	"github.com/languagebridge/admin-api/internal/domain/entity"
)

func TestDeleteCascadesWholeAggregate(t *testing.T) {
	svc, m := newTestService(t)
	avatarURL := "https://storage.googleapis.com/bucket/avatars/old.png"
	tokenID := "4d3c2b1a-0f9e-4d8c-7b6a-5e4f3d2c1b0a"

	st := &entity.Student{
		ID:        testStudentID,
		UserID:    testUserID,
		AddressID: testAddressID,
		User:      &entity.User{ID: testUserID, AvatarURL: avatarURL},
	}
	m.students.On("GetByID", mock.Anything, testStudentID).Return(st, nil)
	m.tokens.On("GetByUserID", mock.Anything, testUserID).
		Return(&entity.TokenMetadata{ID: tokenID, UserID: testUserID}, nil)
	m.students.On("Delete", mock.Anything, testStudentID).Return(nil)
	m.tokens.On("DeleteByUserID", mock.Anything, testUserID).Return(nil)
	m.users.On("Delete", mock.Anything, testUserID).Return(nil)
	m.addresses.On("Delete", mock.Anything, testAddressID).Return(nil)
	m.assets.On("Delete", mock.Anything, avatarURL).Return(nil)

	res, err := svc.Delete(context.Background(), testStudentID)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, testStudentID, res.StudentID)
	require.NotNil(t, res.UserID)
	assert.Equal(t, testUserID, *res.UserID)
	require.NotNil(t, res.AddressID)
	assert.Equal(t, testAddressID, *res.AddressID)
	require.NotNil(t, res.TokenMetadataID)
	assert.Equal(t, tokenID, *res.TokenMetadataID)

	m.assets.AssertCalled(t, "Delete", mock.Anything, avatarURL)
}

func TestDeleteWithoutTokenMetadata(t *testing.T) {
	svc, m := newTestService(t)

	st := &entity.Student{
		ID:        testStudentID,
		UserID:    testUserID,
		AddressID: testAddressID,
		User:      &entity.User{ID: testUserID, AvatarURL: defaultAvatar},
	}
	m.students.On("GetByID", mock.Anything, testStudentID).Return(st, nil)
	m.tokens.On("GetByUserID", mock.Anything, testUserID).Return(nil, domain.ErrNotFound)
	m.students.On("Delete", mock.Anything, testStudentID).Return(nil)
	m.users.On("Delete", mock.Anything, testUserID).Return(nil)
	m.addresses.On("Delete", mock.Anything, testAddressID).Return(nil)

	res, err := svc.Delete(context.Background(), testStudentID)
	require.NoError(t, err)
	assert.Nil(t, res.TokenMetadataID)

	m.tokens.AssertNotCalled(t, "DeleteByUserID", mock.Anything, mock.Anything)
	// default avatar object must survive the cascade
	m.assets.AssertNotCalled(t, "Delete", mock.Anything, defaultAvatar)
}

func TestDeleteNotFoundIsTerminal(t *testing.T) {
	svc, m := newTestService(t)

	m.students.On("GetByID", mock.Anything, testStudentID).Return(nil, domain.ErrNotFound)

	res, err := svc.Delete(context.Background(), testStudentID)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// not retried
	m.students.AssertNumberOfCalls(t, "GetByID", 1)
}

func TestDeleteRetriesTransientFailures(t *testing.T) {
	svc, m := newTestService(t)

	st := &entity.Student{
		ID:        testStudentID,
		UserID:    testUserID,
		AddressID: testAddressID,
	}
	m.students.On("GetByID", mock.Anything, testStudentID).Return(st, nil)
	m.tokens.On("GetByUserID", mock.Anything, testUserID).Return(nil, domain.ErrNotFound)
	m.students.On("Delete", mock.Anything, testStudentID).Return(domain.ErrTransientWrite)

	res, err := svc.Delete(context.Background(), testStudentID)
	assert.Nil(t, res)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransientWrite)
	assert.Contains(t, err.Error(), "after 3 attempts")

	m.students.AssertNumberOfCalls(t, "Delete", 3)
}

func TestDeleteRecoversOnRetry(t *testing.T) {
	svc, m := newTestService(t)

	st := &entity.Student{
		ID:        testStudentID,
		UserID:    testUserID,
		AddressID: testAddressID,
	}
	m.students.On("GetByID", mock.Anything, testStudentID).Return(st, nil)
	m.tokens.On("GetByUserID", mock.Anything, testUserID).Return(nil, domain.ErrNotFound)
	m.students.On("Delete", mock.Anything, testStudentID).Return(domain.ErrTransientWrite).Once()
	m.students.On("Delete", mock.Anything, testStudentID).Return(nil)
	m.users.On("Delete", mock.Anything, testUserID).Return(nil)
	m.addresses.On("Delete", mock.Anything, testAddressID).Return(nil)

	res, err := svc.Delete(context.Background(), testStudentID)
	require.NoError(t, err)
	require.NotNil(t, res)
	m.students.AssertNumberOfCalls(t, "Delete", 2)
}

func TestDeleteRejectsInvalidID(t *testing.T) {
	svc, m := newTestService(t)

	res, err := svc.Delete(context.Background(), "42")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrInvalidID)
	m.students.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

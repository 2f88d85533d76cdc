package application

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/languagebridge/admin-api/internal/domain"
	"github.com/languagebridge/admin-api/internal/domain/entity"
	"github.com/languagebridge/admin-api/internal/domain/repository"
	"github.com/languagebridge/admin-api/pkg/validation"
)

const (
	testStudentID = "6f1f0a9c-8a2e-4a3d-9a64-0b8f6a2d4c11"
	testUserID    = "1b5e2c7d-3f4a-4b6c-8d9e-0a1b2c3d4e5f"
	testAddressID = "9c8b7a6d-5e4f-4a3b-2c1d-0e9f8a7b6c5d"
	defaultAvatar = "https://storage.googleapis.com/languagebridge-public/avatars/default.png"
)

type serviceMocks struct {
	users     *mockUserStore
	addresses *mockAddressStore
	students  *mockStudentStore
	tokens    *mockTokenStore
	assets    *mockAssetStore
	pub       *mockPublisher
}

func newTestService(t *testing.T) (*StudentService, *serviceMocks) {
	t.Helper()
	m := &serviceMocks{
		users:     &mockUserStore{},
		addresses: &mockAddressStore{},
		students:  &mockStudentStore{},
		tokens:    &mockTokenStore{},
		assets:    &mockAssetStore{},
		pub:       &mockPublisher{},
	}
	svc := NewStudentService(m.users, m.addresses, m.students, m.tokens,
		m.assets, stubTx{}, m.pub, nil, defaultAvatar, true)
	return svc, m
}

func validCreateInput() CreateStudentInput {
	return CreateStudentInput{
		User: CreateUserInput{
			FirstName: "Maria",
			LastName:  "Silva",
			Email:     "maria.silva@example.com",
			Password:  "correcthorse",
		},
		Address: CreateAddressInput{
			Street:     "Av. Paulista 1000",
			City:       "Sao Paulo",
			State:      "SP",
			Country:    "Brazil",
			PostalCode: "01310100",
		},
		BirthDate:        "2008-04-01",
		Language:         entity.LanguageSpanish,
		Level:            entity.LevelEC1,
		ChurchMembership: entity.MembershipMember,
	}
}

func TestCreateAssignsDefaultAvatar(t *testing.T) {
	svc, m := newTestService(t)
	ctx := context.Background()
	in := validCreateInput()

	m.users.On("GetByEmail", mock.Anything, in.User.Email).Return(nil, domain.ErrNotFound)

	var createdUser *entity.User
	m.users.On("Create", mock.Anything, mock.AnythingOfType("*entity.User")).
		Run(func(args mock.Arguments) {
			createdUser = args.Get(1).(*entity.User)
			createdUser.ID = testUserID
		}).Return(nil)
	m.addresses.On("Create", mock.Anything, mock.AnythingOfType("*entity.Address")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entity.Address).ID = testAddressID
		}).Return(nil)
	m.students.On("Create", mock.Anything, mock.AnythingOfType("*entity.Student")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entity.Student).ID = testStudentID
		}).Return(nil)

	populated := &entity.Student{
		ID:     testStudentID,
		UserID: testUserID,
		User:   &entity.User{ID: testUserID, Email: in.User.Email, FirstName: in.User.FirstName},
	}
	m.students.On("GetByID", mock.Anything, testStudentID).Return(populated, nil)
	m.pub.On("PublishJSON", mock.Anything, mock.Anything).Return(nil)

	out, err := svc.Create(ctx, in, nil)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, testStudentID, out.ID)

	require.NotNil(t, createdUser)
	assert.Equal(t, defaultAvatar, createdUser.AvatarURL)
	assert.Equal(t, entity.RoleStudent, createdUser.Type)
	assert.NotEqual(t, in.User.Password, createdUser.Password, "password must be hashed")

	m.assets.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
	m.pub.AssertCalled(t, "PublishJSON", mock.Anything, mock.Anything)
}

func TestCreateDuplicateEmailShortCircuits(t *testing.T) {
	svc, m := newTestService(t)
	in := validCreateInput()

	m.users.On("GetByEmail", mock.Anything, in.User.Email).
		Return(&entity.User{ID: testUserID, Email: in.User.Email}, nil)

	out, err := svc.Create(context.Background(), in, nil)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	m.assets.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
	m.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateInvalidPayloadAggregatesFields(t *testing.T) {
	svc, _ := newTestService(t)
	in := validCreateInput()
	in.User.Email = "not-an-email"
	in.User.Password = "short"
	in.Language = "Klingon"
	in.Address.PostalCode = "abc"

	out, err := svc.Create(context.Background(), in, nil)
	assert.Nil(t, out)

	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Details, "user.email")
	assert.Contains(t, verr.Details, "user.password")
	assert.Contains(t, verr.Details, "language")
	assert.Contains(t, verr.Details, "address.postal_code")
}

func TestCreateCompensatesUploadedAvatarOnTxFailure(t *testing.T) {
	svc, m := newTestService(t)
	in := validCreateInput()
	uploadedURL := "https://storage.googleapis.com/bucket/avatars/new.png"

	m.users.On("GetByEmail", mock.Anything, in.User.Email).Return(nil, domain.ErrNotFound)
	m.assets.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(uploadedURL, nil)
	m.users.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed"))
	m.assets.On("Delete", mock.Anything, uploadedURL).Return(nil)

	avatar := &repository.AssetFile{Content: strings.NewReader("img"), Filename: "a.png", ContentType: "image/png", Size: 3}
	out, err := svc.Create(context.Background(), in, avatar)
	assert.Nil(t, out)
	require.Error(t, err)

	m.assets.AssertCalled(t, "Delete", mock.Anything, uploadedURL)
}

func TestUpdateCompensatesUploadedAvatarOnTxFailure(t *testing.T) {
	svc, m := newTestService(t)
	oldURL := "https://storage.googleapis.com/bucket/avatars/old.png"
	newURL := "https://storage.googleapis.com/bucket/avatars/new.png"

	st := &entity.Student{ID: testStudentID, UserID: testUserID, AddressID: testAddressID}
	m.students.On("GetByID", mock.Anything, testStudentID).Return(st, nil)
	m.users.On("GetByID", mock.Anything, testUserID).
		Return(&entity.User{ID: testUserID, AvatarURL: oldURL}, nil)
	m.assets.On("Upload", mock.Anything, testUserID, mock.Anything).Return(newURL, nil)
	m.users.On("Update", mock.Anything, mock.Anything).Return(nil)
	m.students.On("Update", mock.Anything, mock.Anything).Return(errors.New("update failed"))
	m.assets.On("Delete", mock.Anything, newURL).Return(nil)

	avatar := &repository.AssetFile{Content: strings.NewReader("img"), Filename: "a.png", ContentType: "image/png", Size: 3}
	out, err := svc.Update(context.Background(), testStudentID, UpdateStudentInput{}, avatar)
	assert.Nil(t, out)
	require.Error(t, err)

	// only the orphaned upload is removed; the still-referenced old avatar survives
	m.assets.AssertNumberOfCalls(t, "Delete", 1)
	m.assets.AssertCalled(t, "Delete", mock.Anything, newURL)
	m.assets.AssertNotCalled(t, "Delete", mock.Anything, oldURL)
}

func TestUploadAvatarCompensatesOnTxFailure(t *testing.T) {
	svc, m := newTestService(t)
	oldURL := "https://storage.googleapis.com/bucket/avatars/old.png"
	newURL := "https://storage.googleapis.com/bucket/avatars/new.webp"

	st := &entity.Student{ID: testStudentID, UserID: testUserID, AddressID: testAddressID}
	m.students.On("GetByID", mock.Anything, testStudentID).Return(st, nil)
	m.users.On("GetByID", mock.Anything, testUserID).
		Return(&entity.User{ID: testUserID, AvatarURL: oldURL}, nil)
	m.assets.On("Upload", mock.Anything, testUserID, mock.Anything).Return(newURL, nil)
	m.users.On("Update", mock.Anything, mock.Anything).Return(errors.New("update failed"))
	m.assets.On("Delete", mock.Anything, newURL).Return(nil)

	f := repository.AssetFile{Content: strings.NewReader("img"), Filename: "a.webp", ContentType: "image/webp", Size: 3}
	out, err := svc.UploadAvatar(context.Background(), testStudentID, f)
	assert.Nil(t, out)
	require.Error(t, err)

	m.assets.AssertNumberOfCalls(t, "Delete", 1)
	m.assets.AssertCalled(t, "Delete", mock.Anything, newURL)
	m.assets.AssertNotCalled(t, "Delete", mock.Anything, oldURL)
}

func TestUpdateRejectsInvalidID(t *testing.T) {
	svc, _ := newTestService(t)
	out, err := svc.Update(context.Background(), "not-a-uuid", UpdateStudentInput{}, nil)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestUpdateForbidsRoleChange(t *testing.T) {
	svc, m := newTestService(t)

	st := &entity.Student{ID: testStudentID, UserID: testUserID, AddressID: testAddressID}
	m.students.On("GetByID", mock.Anything, testStudentID).Return(st, nil)
	m.users.On("GetByID", mock.Anything, testUserID).
		Return(&entity.User{ID: testUserID, AvatarURL: defaultAvatar}, nil)

	newType := int(entity.RoleAdmin)
	in := UpdateStudentInput{User: &UpdateUserInput{Type: &newType}}

	out, err := svc.Update(context.Background(), testStudentID, in, nil)
	assert.Nil(t, out)

	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "cannot be changed after creation", verr.Details["user.type"])
	m.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateRequiresAtLeastOneField(t *testing.T) {
	svc, m := newTestService(t)

	st := &entity.Student{ID: testStudentID, UserID: testUserID, AddressID: testAddressID}
	m.students.On("GetByID", mock.Anything, testStudentID).Return(st, nil)
	m.users.On("GetByID", mock.Anything, testUserID).
		Return(&entity.User{ID: testUserID, AvatarURL: defaultAvatar}, nil)

	out, err := svc.Update(context.Background(), testStudentID, UpdateStudentInput{}, nil)
	assert.Nil(t, out)

	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Details, "payload")
}

func TestUpdateReplacesAvatarAndCleansUpOld(t *testing.T) {
	svc, m := newTestService(t)
	oldURL := "https://storage.googleapis.com/bucket/avatars/old.png"
	newURL := "https://storage.googleapis.com/bucket/avatars/new.png"

	st := &entity.Student{ID: testStudentID, UserID: testUserID, AddressID: testAddressID}
	u := &entity.User{ID: testUserID, AvatarURL: oldURL}
	m.students.On("GetByID", mock.Anything, testStudentID).Return(st, nil)
	m.users.On("GetByID", mock.Anything, testUserID).Return(u, nil)
	m.assets.On("Upload", mock.Anything, testUserID, mock.Anything).Return(newURL, nil)
	m.users.On("Update", mock.Anything, mock.MatchedBy(func(u *entity.User) bool {
		return u.AvatarURL == newURL
	})).Return(nil)
	m.students.On("Update", mock.Anything, mock.Anything).Return(nil)
	m.assets.On("Delete", mock.Anything, oldURL).Return(nil)

	avatar := &repository.AssetFile{Content: strings.NewReader("img"), Filename: "a.jpg", ContentType: "image/jpeg", Size: 3}
	out, err := svc.Update(context.Background(), testStudentID, UpdateStudentInput{}, avatar)
	require.NoError(t, err)
	require.NotNil(t, out)

	m.assets.AssertCalled(t, "Delete", mock.Anything, oldURL)
}

func TestUpdateNeverDeletesDefaultAvatar(t *testing.T) {
	svc, m := newTestService(t)
	newURL := "https://storage.googleapis.com/bucket/avatars/new.png"

	st := &entity.Student{ID: testStudentID, UserID: testUserID, AddressID: testAddressID}
	u := &entity.User{ID: testUserID, AvatarURL: defaultAvatar}
	m.students.On("GetByID", mock.Anything, testStudentID).Return(st, nil)
	m.users.On("GetByID", mock.Anything, testUserID).Return(u, nil)
	m.assets.On("Upload", mock.Anything, testUserID, mock.Anything).Return(newURL, nil)
	m.users.On("Update", mock.Anything, mock.Anything).Return(nil)
	m.students.On("Update", mock.Anything, mock.Anything).Return(nil)

	avatar := &repository.AssetFile{Content: strings.NewReader("img"), Filename: "a.png", ContentType: "image/png", Size: 3}
	_, err := svc.Update(context.Background(), testStudentID, UpdateStudentInput{}, avatar)
	require.NoError(t, err)

	m.assets.AssertNotCalled(t, "Delete", mock.Anything, defaultAvatar)
}

func TestUpdateRejectsUnsupportedAvatarType(t *testing.T) {
	svc, m := newTestService(t)

	st := &entity.Student{ID: testStudentID, UserID: testUserID, AddressID: testAddressID}
	m.students.On("GetByID", mock.Anything, testStudentID).Return(st, nil)
	m.users.On("GetByID", mock.Anything, testUserID).
		Return(&entity.User{ID: testUserID, AvatarURL: defaultAvatar}, nil)

	// webp is only accepted on the standalone upload endpoint
	avatar := &repository.AssetFile{Content: strings.NewReader("img"), Filename: "a.webp", ContentType: "image/webp", Size: 3}
	out, err := svc.Update(context.Background(), testStudentID, UpdateStudentInput{}, avatar)
	assert.Nil(t, out)

	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Details, "avatar")
	m.assets.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadAvatarAcceptsWebp(t *testing.T) {
	svc, m := newTestService(t)
	newURL := "https://storage.googleapis.com/bucket/avatars/new.webp"

	st := &entity.Student{ID: testStudentID, UserID: testUserID, AddressID: testAddressID}
	u := &entity.User{ID: testUserID, AvatarURL: defaultAvatar}
	m.students.On("GetByID", mock.Anything, testStudentID).Return(st, nil)
	m.users.On("GetByID", mock.Anything, testUserID).Return(u, nil)
	m.assets.On("Upload", mock.Anything, testUserID, mock.Anything).Return(newURL, nil)
	m.users.On("Update", mock.Anything, mock.Anything).Return(nil)

	f := repository.AssetFile{Content: strings.NewReader("img"), Filename: "a.webp", ContentType: "image/webp", Size: 3}
	out, err := svc.UploadAvatar(context.Background(), testStudentID, f)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, newURL, u.AvatarURL)
}

func TestUploadAvatarRejectsOversizedFile(t *testing.T) {
	svc, m := newTestService(t)

	st := &entity.Student{ID: testStudentID, UserID: testUserID, AddressID: testAddressID}
	m.students.On("GetByID", mock.Anything, testStudentID).Return(st, nil)
	m.users.On("GetByID", mock.Anything, testUserID).
		Return(&entity.User{ID: testUserID, AvatarURL: defaultAvatar}, nil)

	f := repository.AssetFile{Content: strings.NewReader("img"), Filename: "big.png", ContentType: "image/png", Size: maxAvatarBytes + 1}
	out, err := svc.UploadAvatar(context.Background(), testStudentID, f)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, ErrFileTooLarge)
	m.assets.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
}

func TestGettersRejectInvalidIDs(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
	_, err = svc.GetByUserID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
	_, err = svc.ListByWard(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

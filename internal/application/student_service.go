package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/languagebridge/admin-api/internal/domain"
	"github.com/languagebridge/admin-api/internal/domain/entity"
	"github.com/languagebridge/admin-api/internal/domain/repository"
	"github.com/languagebridge/admin-api/pkg/helpers"
	"github.com/languagebridge/admin-api/pkg/mailer"
	"github.com/languagebridge/admin-api/pkg/validation"
)

var (
	// ErrFileTooLarge maps to 413.
	ErrFileTooLarge = errors.New("file exceeds maximum size")
)

const (
	maxAvatarBytes  = 2 << 20 // 2 MiB
	birthDateLayout = "2006-01-02"
)

// MIME types accepted for avatar replacement. The standalone upload
// endpoint additionally accepts WEBP.
var (
	updateAvatarTypes = map[string]bool{"image/jpeg": true, "image/png": true}
	uploadAvatarTypes = map[string]bool{"image/jpeg": true, "image/png": true, "image/webp": true}
)

// EmailPublisher enqueues email jobs; satisfied by helpers.RabbitPublisher.
type EmailPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// StudentService coordinates the Student aggregate: it keeps User, Address
// and Student rows consistent inside one database transaction, and orders
// asset-store calls around that transaction so a failed commit can still
// compensate for uploads and a successful commit can garbage-collect
// replaced avatars.
type StudentService struct {
	Users     repository.UserStore
	Addresses repository.AddressStore
	Students  repository.StudentStore
	Tokens    repository.TokenMetadataStore
	Assets    repository.AssetStore
	Tx        repository.TxRunner
	Pub       EmailPublisher
	Logger    *logrus.Logger

	// DefaultAvatarURL is assigned when no avatar is supplied and is never
	// deleted from the asset store.
	DefaultAvatarURL string
	MailEnabled      bool
}

func NewStudentService(users repository.UserStore, addresses repository.AddressStore,
	students repository.StudentStore, tokens repository.TokenMetadataStore,
	assets repository.AssetStore, tx repository.TxRunner, pub EmailPublisher,
	logger *logrus.Logger, defaultAvatarURL string, mailEnabled bool) *StudentService {
	return &StudentService{
		Users:            users,
		Addresses:        addresses,
		Students:         students,
		Tokens:           tokens,
		Assets:           assets,
		Tx:               tx,
		Pub:              pub,
		Logger:           logger,
		DefaultAvatarURL: defaultAvatarURL,
		MailEnabled:      mailEnabled,
	}
}

// Create builds the whole aggregate. Ordering: email fast-path check,
// avatar upload, then one transaction creating User, Address and Student.
// The unique index on users.email remains the authoritative guard; the
// pre-check only produces a friendlier conflict before any side effect.
func (s *StudentService) Create(ctx context.Context, in CreateStudentInput, avatar *repository.AssetFile) (*entity.Student, error) {
	if err := ValidateCreate(in); err != nil {
		return nil, err
	}

	if _, err := s.Users.GetByEmail(ctx, in.User.Email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	avatarURL := in.User.AvatarURL
	uploaded := ""
	if avatar != nil {
		url, err := s.Assets.Upload(ctx, uuid.NewString(), *avatar)
		if err != nil {
			return nil, err
		}
		uploaded = url
		avatarURL = url
	}
	if avatarURL == "" {
		avatarURL = s.DefaultAvatarURL
	}

	hash, err := helpers.HashPassword(in.User.Password)
	if err != nil {
		return nil, err
	}
	birth, err := time.Parse(birthDateLayout, in.BirthDate)
	if err != nil {
		return nil, validation.NewError(map[string]string{"birth_date": "must match datetime format: " + birthDateLayout})
	}

	st := &entity.Student{
		WardID:           in.WardID,
		BirthDate:        birth,
		Language:         in.Language,
		Level:            in.Level,
		ChurchMembership: in.ChurchMembership,
	}
	err = s.Tx.RunInTx(ctx, func(ctx context.Context) error {
		u := &entity.User{
			FirstName: in.User.FirstName,
			LastName:  in.User.LastName,
			Email:     in.User.Email,
			Password:  hash,
			Type:      entity.RoleStudent,
			Phone:     in.User.Phone,
			AvatarURL: avatarURL,
		}
		if err := s.Users.Create(ctx, u); err != nil {
			return err
		}
		a := &entity.Address{
			Street:       in.Address.Street,
			Neighborhood: in.Address.Neighborhood,
			City:         in.Address.City,
			State:        in.Address.State,
			Country:      in.Address.Country,
			PostalCode:   in.Address.PostalCode,
		}
		if err := s.Addresses.Create(ctx, a); err != nil {
			return err
		}
		st.UserID = u.ID
		st.AddressID = a.ID
		return s.Students.Create(ctx, st)
	})
	if err != nil {
		// Compensate for the non-transactional upload.
		if uploaded != "" {
			s.cleanupAsset(ctx, uploaded)
		}
		return nil, err
	}

	out, err := s.Students.GetByID(ctx, st.ID)
	if err != nil {
		return nil, err
	}
	s.publishWelcome(ctx, out)
	return out, nil
}

// Update mutates the aggregate in place. A replacement avatar is uploaded
// before the row writes (inside the tx scope) and staged into the user
// sub-payload; the previous avatar is deleted only after a successful
// commit, and never when it is the default.
func (s *StudentService) Update(ctx context.Context, id string, in UpdateStudentInput, avatar *repository.AssetFile) (*entity.Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrInvalidID
	}

	var uploaded, old string
	err := s.Tx.RunInTx(ctx, func(ctx context.Context) error {
		st, err := s.Students.GetByID(ctx, id)
		if err != nil {
			return err
		}
		u, err := s.Users.GetByID(ctx, st.UserID)
		if err != nil {
			return err
		}

		if avatar != nil {
			if err := checkAvatarFile(avatar, updateAvatarTypes); err != nil {
				return err
			}
			old = u.AvatarURL
			url, err := s.Assets.Upload(ctx, u.ID, *avatar)
			if err != nil {
				return err
			}
			uploaded = url
			if in.User == nil {
				in.User = &UpdateUserInput{}
			}
			in.User.AvatarURL = &url
		}

		// Re-validate the merged payload.
		if err := ValidateUpdate(in); err != nil {
			return err
		}

		if in.User != nil {
			if err := s.applyUserUpdate(ctx, u, in.User); err != nil {
				return err
			}
		}
		if in.Address != nil {
			if err := s.applyAddressUpdate(ctx, st, in.Address); err != nil {
				return err
			}
		}
		if in.WardID != nil {
			st.WardID = *in.WardID
		}
		if in.BirthDate != nil {
			birth, err := time.Parse(birthDateLayout, *in.BirthDate)
			if err != nil {
				return validation.NewError(map[string]string{"birth_date": "must match datetime format: " + birthDateLayout})
			}
			st.BirthDate = birth
		}
		if in.Language != nil {
			st.Language = *in.Language
		}
		if in.Level != nil {
			st.Level = *in.Level
		}
		if in.ChurchMembership != nil {
			st.ChurchMembership = *in.ChurchMembership
		}
		return s.Students.Update(ctx, st)
	})
	if err != nil {
		if uploaded != "" {
			s.cleanupAsset(ctx, uploaded)
		}
		return nil, err
	}

	// The primary record set is already consistent; old-asset cleanup is
	// best-effort garbage collection.
	if old != "" && old != uploaded {
		s.cleanupAsset(ctx, old)
	}
	return s.Students.GetByID(ctx, id)
}

func (s *StudentService) applyUserUpdate(ctx context.Context, u *entity.User, in *UpdateUserInput) error {
	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		u.LastName = *in.LastName
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.Password != nil {
		hash, err := helpers.HashPassword(*in.Password)
		if err != nil {
			return err
		}
		u.Password = hash
	}
	if in.Phone != nil {
		u.Phone = *in.Phone
	}
	if in.AvatarURL != nil {
		u.AvatarURL = *in.AvatarURL
	}
	return s.Users.Update(ctx, u)
}

func (s *StudentService) applyAddressUpdate(ctx context.Context, st *entity.Student, in *UpdateAddressInput) error {
	addr, err := s.Addresses.GetByID(ctx, st.AddressID)
	if errors.Is(err, domain.ErrNotFound) {
		addr = &entity.Address{}
	} else if err != nil {
		return err
	}

	if in.Street != nil {
		addr.Street = *in.Street
	}
	if in.Neighborhood != nil {
		addr.Neighborhood = *in.Neighborhood
	}
	if in.City != nil {
		addr.City = *in.City
	}
	if in.State != nil {
		addr.State = *in.State
	}
	if in.Country != nil {
		addr.Country = *in.Country
	}
	if in.PostalCode != nil {
		addr.PostalCode = *in.PostalCode
	}

	if addr.ID == "" {
		if err := s.Addresses.Create(ctx, addr); err != nil {
			return err
		}
		st.AddressID = addr.ID
		return nil
	}
	return s.Addresses.Update(ctx, addr)
}

// UploadAvatar is the standalone avatar replacement: same ordering and
// compensation rules as Update, without the rest of the payload.
func (s *StudentService) UploadAvatar(ctx context.Context, studentID string, f repository.AssetFile) (*entity.Student, error) {
	if _, err := uuid.Parse(studentID); err != nil {
		return nil, domain.ErrInvalidID
	}

	var uploaded, old string
	err := s.Tx.RunInTx(ctx, func(ctx context.Context) error {
		st, err := s.Students.GetByID(ctx, studentID)
		if err != nil {
			return err
		}
		u, err := s.Users.GetByID(ctx, st.UserID)
		if err != nil {
			return err
		}
		if err := checkAvatarFile(&f, uploadAvatarTypes); err != nil {
			return err
		}
		old = u.AvatarURL
		url, err := s.Assets.Upload(ctx, u.ID, f)
		if err != nil {
			return err
		}
		uploaded = url
		u.AvatarURL = url
		return s.Users.Update(ctx, u)
	})
	if err != nil {
		if uploaded != "" {
			s.cleanupAsset(ctx, uploaded)
		}
		return nil, err
	}

	if old != "" && old != uploaded {
		s.cleanupAsset(ctx, old)
	}
	return s.Students.GetByID(ctx, studentID)
}

func (s *StudentService) GetByID(ctx context.Context, id string) (*entity.Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrInvalidID
	}
	return s.Students.GetByID(ctx, id)
}

func (s *StudentService) GetByUserID(ctx context.Context, userID string) (*entity.Student, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, domain.ErrInvalidID
	}
	return s.Students.GetByUserID(ctx, userID)
}

func (s *StudentService) List(ctx context.Context) ([]*entity.Student, error) {
	return s.Students.List(ctx)
}

func (s *StudentService) ListByWard(ctx context.Context, wardID string) ([]*entity.Student, error) {
	if _, err := uuid.Parse(wardID); err != nil {
		return nil, domain.ErrInvalidID
	}
	return s.Students.ListByWard(ctx, wardID)
}

func checkAvatarFile(f *repository.AssetFile, allowed map[string]bool) error {
	if !allowed[f.ContentType] {
		return validation.NewError(map[string]string{"avatar": "unsupported content type " + f.ContentType})
	}
	if f.Size > maxAvatarBytes {
		return ErrFileTooLarge
	}
	return nil
}

// cleanupAsset deletes an asset-store object, best-effort. The default
// avatar is never deleted.
func (s *StudentService) cleanupAsset(ctx context.Context, url string) {
	if url == "" || url == s.DefaultAvatarURL {
		return
	}
	if err := s.Assets.Delete(ctx, url); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("url", url).Warn("avatar cleanup failed")
	}
}

func (s *StudentService) publishWelcome(ctx context.Context, st *entity.Student) {
	if s.Pub == nil || !s.MailEnabled || st.User == nil {
		return
	}
	job := mailer.EmailJob{
		To:       st.User.Email,
		Template: "welcome",
		Data: map[string]any{
			"Name":     st.User.FirstName,
			"Language": st.Language,
			"Level":    st.Level,
		},
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("student_id", st.ID).Warn("welcome email publish failed")
	}
}

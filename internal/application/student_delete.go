package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/languagebridge/admin-api/internal/domain"
)

const (
	deleteAttempts   = 3
	deleteRetryDelay = 200 * time.Millisecond
)

// DeletedIDs enumerates what the cascade removed. TokenMetadataID is nil
// when the user had no session record.
type DeletedIDs struct {
	StudentID       string  `json:"student_id"`
	UserID          *string `json:"user_id"`
	AddressID       *string `json:"address_id"`
	TokenMetadataID *string `json:"token_metadata_id"`
}

// Delete removes a Student and cascades to its User, Address and any
// TokenMetadata inside one transaction. Transactional failures are retried
// up to deleteAttempts with a fixed delay to absorb write conflicts from
// concurrent operations on the same rows; a NotFound is terminal.
func (s *StudentService) Delete(ctx context.Context, id string) (*DeletedIDs, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrInvalidID
	}

	var lastErr error
	for attempt := 1; attempt <= deleteAttempts; attempt++ {
		res, err := s.deleteOnce(ctx, id)
		if err == nil {
			return res, nil
		}
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		lastErr = err
		if s.Logger != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{
				"student_id": id,
				"attempt":    attempt,
			}).Warn("student delete attempt failed")
		}
		if attempt < deleteAttempts {
			time.Sleep(deleteRetryDelay)
		}
	}
	return nil, fmt.Errorf("student delete failed after %d attempts: %w", deleteAttempts, lastErr)
}

// deleteOnce is a single cascade attempt. Deletions run in a fixed order
// (student, token metadata, user, address) so the cascade is deterministic
// and visible, rather than hidden in store-level hooks.
func (s *StudentService) deleteOnce(ctx context.Context, id string) (*DeletedIDs, error) {
	res := &DeletedIDs{StudentID: id}
	avatarURL := ""

	err := s.Tx.RunInTx(ctx, func(ctx context.Context) error {
		st, err := s.Students.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if st.User != nil {
			avatarURL = st.User.AvatarURL
		}

		tm, err := s.Tokens.GetByUserID(ctx, st.UserID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		if err := s.Students.Delete(ctx, st.ID); err != nil {
			return err
		}
		if tm != nil {
			if err := s.Tokens.DeleteByUserID(ctx, st.UserID); err != nil {
				return err
			}
			res.TokenMetadataID = &tm.ID
		}
		if err := s.Users.Delete(ctx, st.UserID); err != nil {
			return err
		}
		res.UserID = &st.UserID
		if err := s.Addresses.Delete(ctx, st.AddressID); err != nil {
			return err
		}
		res.AddressID = &st.AddressID
		return nil
	})
	if err != nil {
		return nil, err
	}

	// After commit only: the avatar object is no longer referenced.
	// cleanupAsset skips the default avatar and logs failures.
	if avatarURL != "" {
		s.cleanupAsset(ctx, avatarURL)
	}
	return res, nil
}

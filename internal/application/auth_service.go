package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/languagebridge/admin-api/internal/domain"
	"github.com/languagebridge/admin-api/internal/domain/entity"
	"github.com/languagebridge/admin-api/internal/domain/repository"
	"github.com/languagebridge/admin-api/pkg/helpers"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthService struct {
	Users  repository.UserStore
	Tokens repository.TokenMetadataStore
	JWT    *helpers.JWTManager
	Redis  *redis.Client
	Logger *logrus.Logger
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

func NewAuthService(users repository.UserStore, tokens repository.TokenMetadataStore,
	jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger) *AuthService {
	return &AuthService{Users: users, Tokens: tokens, JWT: jwt, Redis: rdb, Logger: logger}
}

func sessionKey(userID string) string {
	return "user:session:" + userID
}

// Login validates email/password, issues a token pair, records the session
// in redis and upserts the user's token_metadata row (the record the
// student delete cascade removes).
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, TokenPair, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	pair, err := s.issueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

func (s *AuthService) issueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		}
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate refresh token failed")
		}
		return TokenPair{}, err
	}

	if err := s.Tokens.Upsert(ctx, &entity.TokenMetadata{
		UserID:           u.ID,
		SessionID:        sid,
		RefreshExpiresAt: rexp,
	}); err != nil {
		return TokenPair{}, err
	}

	if s.Redis != nil {
		key := sessionKey(u.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"user_id":    u.ID,
			"email":      u.Email,
			"name":       u.FirstName + " " + u.LastName,
			"type":       int(u.Type),
			"avatar_url": u.AvatarURL,
			"sid":        sid,
			"created_at": time.Now().UTC().Format(time.RFC3339Nano),
		})
		pipe.Expire(ctx, key, 24*time.Hour)
		if _, rErr := pipe.Exec(ctx); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Refresh rotates the session when the refresh token matches the stored
// token metadata.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	tm, err := s.Tokens.GetByUserID(ctx, u.ID)
	if err != nil || tm.SessionID != claims.SessionID {
		return TokenPair{}, ErrInvalidCredentials
	}
	return s.issueTokens(ctx, u)
}

// Logout drops the token metadata row and the redis session.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.Tokens.DeleteByUserID(ctx, userID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if s.Redis != nil {
		if err := s.Redis.Del(ctx, sessionKey(userID)).Err(); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Warn("redis session delete failed")
		}
	}
	return nil
}

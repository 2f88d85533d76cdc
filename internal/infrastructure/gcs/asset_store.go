package gcs

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/languagebridge/admin-api/internal/domain"
	"github.com/languagebridge/admin-api/internal/domain/repository"
	"github.com/languagebridge/admin-api/pkg/helpers"
)

// AssetStore stores avatar objects in a GCS bucket under
// avatars/<ownerID>/<uuid><ext>.
type AssetStore struct {
	client *storage.Client
	bucket string
	logger *logrus.Logger
}

func NewAssetStore(client *storage.Client, bucket string, logger *logrus.Logger) *AssetStore {
	return &AssetStore{client: client, bucket: bucket, logger: logger}
}

func (s *AssetStore) Upload(ctx context.Context, ownerID string, f repository.AssetFile) (string, error) {
	if s.client == nil || s.bucket == "" {
		return "", fmt.Errorf("%w: gcs not configured", domain.ErrStorage)
	}
	ext := strings.ToLower(filepath.Ext(f.Filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", ownerID, uuid.NewString()+ext))

	url, err := helpers.UploadObject(ctx, s.client, s.bucket, objectPath, f.ContentType, f.Content)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return url, nil
}

// Delete removes the object behind url. URLs outside this bucket and
// already-absent objects count as deleted.
func (s *AssetStore) Delete(ctx context.Context, url string) error {
	if s.client == nil || s.bucket == "" {
		return nil
	}
	prefix := helpers.PublicURL(s.bucket, "")
	if !strings.HasPrefix(url, prefix) {
		if s.logger != nil {
			s.logger.WithField("url", url).Debug("skipping delete of foreign asset url")
		}
		return nil
	}
	objectPath := strings.TrimPrefix(url, prefix)

	err := s.client.Bucket(s.bucket).Object(objectPath).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return nil
}

var _ repository.AssetStore = (*AssetStore)(nil)

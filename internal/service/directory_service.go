package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/taskrelay/taskrelay-api/internal/models"
	"github.com/taskrelay/taskrelay-api/internal/repository"
	appErrors "github.com/taskrelay/taskrelay-api/pkg/errors"
)

const adminDirectoryCacheKey = "directory:admins"

// adminLister is the repository surface for the admin directory.
type adminLister interface {
	ListAdminSummaries(ctx context.Context) ([]models.AdminSummary, error)
}

// DirectoryService serves the admin directory listing, backed by a Redis
// cache. Cache failures degrade to the database.
type DirectoryService struct {
	admins adminLister
	cache  *repository.CacheRepository
	ttl    time.Duration
	logger *zap.Logger
}

// NewDirectoryService constructs a DirectoryService. A nil cache disables
// caching without changing behaviour.
func NewDirectoryService(admins adminLister, cache *repository.CacheRepository, ttl time.Duration, logger *zap.Logger) *DirectoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryService{admins: admins, cache: cache, ttl: ttl, logger: logger}
}

// ListAdmins returns the public directory of admins.
func (s *DirectoryService) ListAdmins(ctx context.Context) ([]models.AdminSummary, error) {
	var cached []models.AdminSummary
	if err := s.cache.Get(ctx, adminDirectoryCacheKey, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("admin directory cache read failed", zap.Error(err))
	}

	admins, err := s.admins.ListAdminSummaries(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch admins")
	}

	if err := s.cache.Set(ctx, adminDirectoryCacheKey, admins, s.ttl); err != nil {
		s.logger.Warn("admin directory cache write failed", zap.Error(err))
	}

	return admins, nil
}

// InvalidateAdminDirectory drops the cached listing, called after a new
// admin registers.
func (s *DirectoryService) InvalidateAdminDirectory(ctx context.Context) {
	if err := s.cache.Delete(ctx, adminDirectoryCacheKey); err != nil {
		s.logger.Warn("admin directory cache invalidation failed", zap.Error(err))
	}
}

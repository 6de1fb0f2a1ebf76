package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/course-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
)

// catalogCachePattern matches every cached department listing.
const catalogCachePattern = "classes:*"

type catalogReader interface {
	ListAvailable(ctx context.Context, department string) ([]models.AvailableClass, error)
}

// CatalogService lists the sections a department offers.
type CatalogService struct {
	repo   catalogReader
	cache  *CacheService
	logger *zap.Logger
}

// NewCatalogService constructs CatalogService. A nil cache disables caching.
func NewCatalogService(repo catalogReader, cache *CacheService, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{repo: repo, cache: cache, logger: logger}
}

// ListAvailable returns the department's classes. An empty listing is reported as NotFound.
func (s *CatalogService) ListAvailable(ctx context.Context, department string) ([]models.AvailableClass, error) {
	department = strings.TrimSpace(department)
	if department == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "department is required")
	}

	key := catalogCacheKey(department)
	var classes []models.AvailableClass
	if hit, err := s.cache.Get(ctx, key, &classes); err == nil && hit && len(classes) > 0 {
		return classes, nil
	}

	classes, err := s.repo.ListAvailable(ctx, department)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list available classes")
	}
	if len(classes) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no classes found for department %s", department))
	}
	_ = s.cache.Set(ctx, key, classes, 0)
	return classes, nil
}

// Invalidate drops every cached listing so seat counts are re-read.
func (s *CatalogService) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, catalogCachePattern); err != nil {
		s.logger.Warn("catalog cache invalidation failed", zap.Error(err))
	}
}

// catalogCacheKey keys on the department exactly as the query filters it.
func catalogCacheKey(department string) string {
	return "classes:" + department
}

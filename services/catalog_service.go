package services

import (
	"context"
	"fmt"
	"time"

	"github.com/kendall-kelly/otica-api/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ActiveLensTypesCacheKey is the cache key of the active catalog listing
const ActiveLensTypesCacheKey = "catalog:lens-types:active"

// CatalogService lists lens types
type CatalogService struct {
	db    *gorm.DB
	cache CacheInterface
	ttl   time.Duration
}

// NewCatalogService creates a catalog service. cache may be nil.
func NewCatalogService(db *gorm.DB, cache CacheInterface, ttl time.Duration) *CatalogService {
	return &CatalogService{db: db, cache: cache, ttl: ttl}
}

// ListActive returns active lens types ordered by name
func (s *CatalogService) ListActive(ctx context.Context) ([]models.LensType, error) {
	if s.cache != nil {
		var cached []models.LensType
		if s.cache.Get(ctx, ActiveLensTypesCacheKey, &cached) {
			return cached, nil
		}
	}

	lensTypes := []models.LensType{}
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("name ASC").Find(&lensTypes).Error; err != nil {
		return nil, fmt.Errorf("failed to list lens types: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, ActiveLensTypesCacheKey, lensTypes, s.ttl); err != nil {
			log.Warn().Err(err).Msg("Failed to cache lens types")
		}
	}
	return lensTypes, nil
}

// Invalidate drops the cached listing after catalog changes
func (s *CatalogService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Del(ctx, ActiveLensTypesCacheKey)
}

// FindActiveByIDs resolves ids to active lens types. Duplicate ids are collapsed and
// the ids with no active lens type are returned as missing, in request order.
func FindActiveByIDs(db *gorm.DB, ids []string) (found []models.LensType, missing []string, err error) {
	unique := uniqueStrings(ids)
	if len(unique) == 0 {
		return nil, nil, nil
	}

	var rows []models.LensType
	if err := db.Where("id IN ? AND is_active = ?", unique, true).Find(&rows).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load lens types: %w", err)
	}

	byID := make(map[string]models.LensType, len(rows))
	for _, lt := range rows {
		byID[lt.ID] = lt
	}
	for _, id := range unique {
		if lt, ok := byID[id]; ok {
			found = append(found, lt)
		} else {
			missing = append(missing, id)
		}
	}
	return found, missing, nil
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok || v == "" {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

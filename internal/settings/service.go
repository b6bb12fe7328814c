package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rakapradana/kasirpoint-backend/pkg/db/models"
	"github.com/rakapradana/kasirpoint-backend/pkg/logger"
	"github.com/rakapradana/kasirpoint-backend/pkg/redis"
)

const (
	pointRulesCacheName = "point-rules"
	pointRulesCacheTTL  = 5 * time.Minute
)

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CacheKey(name string) string
}

// Service serves point rules through a short-lived cache. The rules change
// rarely but are read on every sale.
type Service interface {
	Get(ctx context.Context) (*models.PointRuleSetting, error)
	Update(ctx context.Context, rules *models.PointRuleSetting) error
}

type service struct {
	repo  Repository
	cache cacheStore
	logg  *logger.Logger
}

// NewService builds the settings service. The cache is optional; without it
// every read hits the database.
func NewService(repo Repository, cache cacheStore, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	return &service{repo: repo, cache: cache, logg: logg}, nil
}

func (s *service) Get(ctx context.Context) (*models.PointRuleSetting, error) {
	if s.cache != nil {
		key := s.cache.CacheKey(pointRulesCacheName)
		if raw, err := s.cache.Get(ctx, key); err == nil {
			var rules models.PointRuleSetting
			if jsonErr := json.Unmarshal([]byte(raw), &rules); jsonErr == nil {
				return &rules, nil
			}
		} else if !redis.IsNil(err) && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "point rules cache read failed")
		}
	}

	rules, err := s.repo.GetPointRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading point rules: %w", err)
	}

	if s.cache != nil {
		if raw, err := json.Marshal(rules); err == nil {
			if err := s.cache.Set(ctx, s.cache.CacheKey(pointRulesCacheName), string(raw), pointRulesCacheTTL); err != nil && s.logg != nil {
				s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "point rules cache write failed")
			}
		}
	}

	return rules, nil
}

func (s *service) Update(ctx context.Context, rules *models.PointRuleSetting) error {
	if rules == nil {
		return fmt.Errorf("rules required")
	}
	if rules.BaseAmountCents <= 0 {
		return fmt.Errorf("base amount must be positive")
	}
	if !rules.Multiplier.IsPositive() {
		return fmt.Errorf("multiplier must be positive")
	}

	if err := s.repo.SavePointRules(ctx, rules); err != nil {
		return fmt.Errorf("saving point rules: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, s.cache.CacheKey(pointRulesCacheName)); err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "point rules cache invalidation failed")
		}
	}
	return nil
}

package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/keystone-billing/keystone/internal/billing/shared"
)

const cacheTTL = 5 * time.Minute

// Service resolves settings through a read-through Redis cache. A cache
// or store miss falls back to the configured default, so the billing
// services always receive a usable value.
type Service struct {
	repo     Repository
	redis    *redis.Client
	defaults Defaults
	logger   *slog.Logger
}

// NewService builds a Service instance. redis may be nil, which disables
// caching and reads straight through to the store.
func NewService(repo Repository, rdb *redis.Client, defaults Defaults, logger *slog.Logger) *Service {
	return &Service{repo: repo, redis: rdb, defaults: defaults, logger: logger}
}

func cacheKey(key string) string {
	return "settings:" + key
}

// Get resolves one key, consulting the cache first.
func (s *Service) Get(ctx context.Context, key string) (string, error) {
	if s.redis != nil {
		if value, err := s.redis.Get(ctx, cacheKey(key)).Result(); err == nil {
			return value, nil
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("settings cache read", slog.Any("error", err), slog.String("key", key))
		}
	}

	value, err := s.repo.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if s.redis != nil {
		if err := s.redis.Set(ctx, cacheKey(key), value, cacheTTL).Err(); err != nil {
			s.logger.Warn("settings cache write", slog.Any("error", err), slog.String("key", key))
		}
	}
	return value, nil
}

// Set writes one key and invalidates its cache entry.
func (s *Service) Set(ctx context.Context, key, value string) error {
	if err := s.repo.Set(ctx, key, value); err != nil {
		return fmt.Errorf("store setting %s: %w", key, err)
	}
	if s.redis != nil {
		if err := s.redis.Del(ctx, cacheKey(key)).Err(); err != nil {
			s.logger.Warn("settings cache invalidate", slog.Any("error", err), slog.String("key", key))
		}
	}
	return nil
}

// All returns every stored setting, uncached.
func (s *Service) All(ctx context.Context) (map[string]string, error) {
	return s.repo.All(ctx)
}

func (s *Service) stringOr(ctx context.Context, key, fallback string) (string, error) {
	value, err := s.Get(ctx, key)
	if errors.Is(err, shared.ErrNotFound) {
		return fallback, nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *Service) int64Or(ctx context.Context, key string, fallback int64) (int64, error) {
	value, err := s.Get(ctx, key)
	if errors.Is(err, shared.ErrNotFound) {
		return fallback, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("setting %s is not an integer: %w", key, err)
	}
	return n, nil
}

// EstimateNumbering returns the estimate number prefix and floor.
func (s *Service) EstimateNumbering(ctx context.Context) (string, int64, error) {
	prefix, err := s.stringOr(ctx, KeyEstimatePrefix, s.defaults.EstimatePrefix)
	if err != nil {
		return "", 0, err
	}
	floor, err := s.int64Or(ctx, KeyEstimateFloor, s.defaults.EstimateFloor)
	if err != nil {
		return "", 0, err
	}
	return prefix, floor, nil
}

// InvoiceNumbering returns the invoice number prefix and floor.
func (s *Service) InvoiceNumbering(ctx context.Context) (string, int64, error) {
	prefix, err := s.stringOr(ctx, KeyInvoicePrefix, s.defaults.InvoicePrefix)
	if err != nil {
		return "", 0, err
	}
	floor, err := s.int64Or(ctx, KeyInvoiceFloor, s.defaults.InvoiceFloor)
	if err != nil {
		return "", 0, err
	}
	return prefix, floor, nil
}

// DefaultTaxRate returns the configured tax rate in [0,1].
func (s *Service) DefaultTaxRate(ctx context.Context) (decimal.Decimal, error) {
	value, err := s.Get(ctx, KeyDefaultTaxRate)
	if errors.Is(err, shared.ErrNotFound) {
		return s.defaults.TaxRate, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	rate, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("setting %s is not a decimal: %w", KeyDefaultTaxRate, err)
	}
	return rate, nil
}

// CompanyLetterhead returns the identity block printed on documents.
func (s *Service) CompanyLetterhead(ctx context.Context) (Letterhead, error) {
	name, err := s.stringOr(ctx, KeyCompanyName, s.defaults.CompanyName)
	if err != nil {
		return Letterhead{}, err
	}
	address, err := s.stringOr(ctx, KeyCompanyAddress, "")
	if err != nil {
		return Letterhead{}, err
	}
	phone, err := s.stringOr(ctx, KeyCompanyPhone, "")
	if err != nil {
		return Letterhead{}, err
	}
	return Letterhead{Name: name, Address: address, Phone: phone}, nil
}

package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aquagest/backend/internal/domain/report"
	"github.com/aquagest/backend/internal/domain/shared"
)

// Cache is a small read-through cache for report payloads. Implementations
/// are best-effort: a miss or a backend failure just means recomputing.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// NoOpCache never hits. Used in tests and when no cache backend is configured.
type NoOpCache struct{}

// Get always misses
func (NoOpCache) Get(_ context.Context, _ string) ([]byte, bool) { return nil, false }

// Set discards the value
func (NoOpCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) {}

// PeriodRequest bounds a report to [From, To)
type PeriodRequest struct {
	From time.Time `form:"from" binding:"required"`
	To   time.Time `form:"to" binding:"required"`
}

// Service computes reporting projections, caching results briefly since the
// underlying queries scan sales and orders.
type Service struct {
	reportRepo report.Repository
	cache      Cache
	cacheTTL   time.Duration
}

// NewService creates a new report Service
func NewService(reportRepo report.Repository, cache Cache, cacheTTL time.Duration) *Service {
	if cache == nil {
		cache = NoOpCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &Service{reportRepo: reportRepo, cache: cache, cacheTTL: cacheTTL}
}

// Revenue computes collected revenue within the period
func (s *Service) Revenue(ctx context.Context, req PeriodRequest) (*report.RevenueSummary, error) {
	if !req.To.After(req.From) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period end must be after period start")
	}

	key := fmt.Sprintf("report:revenue:%d:%d", req.From.Unix(), req.To.Unix())
	if cached, ok := s.cache.Get(ctx, key); ok {
		var summary report.RevenueSummary
		if err := json.Unmarshal(cached, &summary); err == nil {
			return &summary, nil
		}
	}

	summary, err := s.reportRepo.RevenueSummary(ctx, req.From, req.To)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(summary); err == nil {
		s.cache.Set(ctx, key, payload, s.cacheTTL)
	}
	return summary, nil
}

// DailyTotals computes per-day collected revenue within the period
func (s *Service) DailyTotals(ctx context.Context, req PeriodRequest) ([]report.DailyTotal, error) {
	if !req.To.After(req.From) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period end must be after period start")
	}

	key := fmt.Sprintf("report:daily:%d:%d", req.From.Unix(), req.To.Unix())
	if cached, ok := s.cache.Get(ctx, key); ok {
		var totals []report.DailyTotal
		if err := json.Unmarshal(cached, &totals); err == nil {
			return totals, nil
		}
	}

	totals, err := s.reportRepo.DailyTotals(ctx, req.From, req.To)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(totals); err == nil {
		s.cache.Set(ctx, key, payload, s.cacheTTL)
	}
	return totals, nil
}

// OutstandingBalances lists clients carrying open order balances.
// Not cached: collectors act on it and expect fresh numbers.
func (s *Service) OutstandingBalances(ctx context.Context) ([]report.ClientBalance, error) {
	return s.reportRepo.OutstandingBalances(ctx, time.Now())
}

// StockValuations values current on-hand stock per active product
func (s *Service) StockValuations(ctx context.Context) ([]report.StockValuation, error) {
	key := "report:stock-valuation"
	if cached, ok := s.cache.Get(ctx, key); ok {
		var valuations []report.StockValuation
		if err := json.Unmarshal(cached, &valuations); err == nil {
			return valuations, nil
		}
	}

	valuations, err := s.reportRepo.StockValuations(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(valuations); err == nil {
		s.cache.Set(ctx, key, payload, s.cacheTTL)
	}
	return valuations, nil
}

package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/infrastructure/metrics"
)

// BalanceUseCase derives balance summaries from share rows.
type BalanceUseCase struct {
	shareRepo ShareRepository
	users     UserDirectory

	cache   BalanceCache
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewBalanceUseCase creates a new BalanceUseCase. users may be nil, in which case
// every counterparty is shown as unknown.
func NewBalanceUseCase(shareRepo ShareRepository, users UserDirectory, opts Options) *BalanceUseCase {
	return &BalanceUseCase{
		shareRepo: shareRepo,
		users:     users,
		cache:     opts.Cache,
		metrics:   opts.Metrics,
		logger:    opts.logger(),
	}
}

// GetBalances returns what userID owes and is owed, per counterparty.
func (uc *BalanceUseCase) GetBalances(ctx context.Context, userID string) (*domain.BalanceSummary, error) {
	start := time.Now()

	var generation int64
	cacheable := uc.cache != nil
	if cacheable {
		cached, gen, found, err := uc.cache.Get(ctx, userID)
		switch {
		case err != nil:
			cacheable = false
			uc.logger.Warn().Err(err).Str("user_id", userID).Msg("balance cache read failed")
		case found:
			uc.observe("hit", start)
			return cached, nil
		default:
			generation = gen
		}
	}

	shares, err := uc.shareRepo.ListOutstandingForUser(ctx, userID)
	if err != nil {
		return nil, domain.NewPersistenceError("list outstanding shares", err)
	}

	names := uc.displayNames(ctx, domain.CounterpartyIDs(userID, shares))
	summary := domain.AggregateBalances(userID, shares, names)

	result := "disabled"
	if cacheable {
		result = "miss"
		if err := uc.cache.Set(ctx, summary, generation); err != nil {
			uc.logger.Warn().Err(err).Str("user_id", userID).Msg("balance cache write failed")
		}
	}

	uc.observe(result, start)

	return summary, nil
}

func (uc *BalanceUseCase) displayNames(ctx context.Context, ids []string) map[string]string {
	if uc.users == nil || len(ids) == 0 {
		return nil
	}

	names, err := uc.users.GetDisplayNames(ctx, ids)
	if err != nil {
		uc.logger.Warn().Err(err).Int("count", len(ids)).Msg("failed to resolve display names")
		return nil
	}

	return names
}

func (uc *BalanceUseCase) observe(cacheResult string, start time.Time) {
	if uc.metrics == nil {
		return
	}

	uc.metrics.BalanceQueries.WithLabelValues(cacheResult).Inc()
	uc.metrics.BalanceDuration.Observe(time.Since(start).Seconds())
}

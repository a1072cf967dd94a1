package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-custody/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const claimBalanceCacheKeyPrefix = "go-custody::claim_balance::v1"

// BalanceSource is a per-ledger balance reader, usually a StateReader.
type BalanceSource interface {
	Ledger() core.Address
	BalanceOf(ctx context.Context, account core.Address) (core.Amount, error)
}

// CachedBalanceReader fronts a BalanceSource with a read-through cache that
// the projector invalidates after every committed batch.
type CachedBalanceReader struct {
	base  BalanceSource
	cache repositorycache.CacheService
}

func NewCachedBalanceReader(base BalanceSource, cacheService repositorycache.CacheService) (*CachedBalanceReader, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base balance source is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: balance cache service is required")
	}
	return &CachedBalanceReader{base: base, cache: cacheService}, nil
}

// ClaimBalanceCacheKey returns go-custody::claim_balance::v1::<ledger>::<account>
// with both addresses in checksum form and path escaped.
func ClaimBalanceCacheKey(ledger core.Address, account core.Address) string {
	segments := []string{url.PathEscape(ledger.Hex()), url.PathEscape(account.Hex())}
	return strings.Join(append([]string{claimBalanceCacheKeyPrefix}, segments...), "::")
}

func (r *CachedBalanceReader) Ledger() core.Address {
	if r == nil || r.base == nil {
		return core.ZeroAddress
	}
	return r.base.Ledger()
}

func (r *CachedBalanceReader) BalanceOf(ctx context.Context, account core.Address) (core.Amount, error) {
	if r == nil || r.base == nil || r.cache == nil {
		return core.Amount{}, fmt.Errorf("sqlstore: cached balance reader is not configured")
	}
	key := ClaimBalanceCacheKey(r.base.Ledger(), account)
	cached, err := repositorycache.GetOrFetch(ctx, r.cache, key, func(ctx context.Context) (string, error) {
		balance, fetchErr := r.base.BalanceOf(ctx, account)
		if fetchErr != nil {
			return "", fetchErr
		}
		return core.FormatAmount(balance), nil
	})
	if err != nil {
		return core.Amount{}, err
	}
	return core.ParseAmount(cached)
}

func (r *CachedBalanceReader) InvalidateBalance(ctx context.Context, ledger core.Address, account core.Address) error {
	if r == nil || r.cache == nil {
		return fmt.Errorf("sqlstore: cached balance reader is not configured")
	}
	return r.cache.Delete(ctx, ClaimBalanceCacheKey(ledger, account))
}

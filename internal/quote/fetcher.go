package quote

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Config controls the batch Fetcher.
type Config struct {
	// MaxConcurrency bounds in-flight provider lookups. Defaults to 10.
	MaxConcurrency int
	// CacheMaxSets caps how many symbol sequences are memoized. Defaults to 100.
	CacheMaxSets int
	// DelayMin/DelayMax bound the random throttle sleep after a fresh batch.
	DelayMin time.Duration
	DelayMax time.Duration
}

// Fetcher resolves batches of symbols to price strings. Results are memoized
// per exact ordered symbol sequence: two scrapes with the same symbols in a
// different order are distinct cache entries. A cached mapping is immutable
// until evicted.
type Fetcher struct {
	cfg    Config
	source Source
	log    *zap.Logger
	cache  *lru.Cache[string, map[string]string]
}

// keySep joins symbol sequences into cache keys. It cannot occur in a
// ticker, so distinct sequences never collide.
const keySep = "\x1f"

func NewFetcher(cfg Config, src Source, log *zap.Logger) (*Fetcher, error) {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 10
	}
	if cfg.CacheMaxSets <= 0 {
		cfg.CacheMaxSets = 100
	}
	if log == nil {
		log = zap.NewNop()
	}
	cache, err := lru.New[string, map[string]string](cfg.CacheMaxSets)
	if err != nil {
		return nil, err
	}
	return &Fetcher{cfg: cfg, source: src, log: log, cache: cache}, nil
}

// Prices maps every valid symbol in symbols to a price string. Invalid
// symbols are skipped and simply stay absent from the result. Per-symbol
// provider failures degrade that symbol to NA; they never fail the batch.
// The only returned error is context cancellation.
func (f *Fetcher) Prices(ctx context.Context, symbols []string) (map[string]string, error) {
	key := strings.Join(symbols, keySep)
	if cached, ok := f.cache.Get(key); ok {
		f.log.Debug("price cache hit", zap.Int("symbols", len(symbols)))
		return cached, nil
	}

	// Dedupe valid symbols preserving first-seen order; the cache key above
	// still uses the full raw sequence.
	seen := make(map[string]struct{}, len(symbols))
	valid := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if !IsValidSymbol(s) {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		valid = append(valid, s)
	}

	results := make(map[string]string, len(valid))
	if len(valid) == 0 {
		f.cache.Add(key, results)
		return results, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.cfg.MaxConcurrency)
	for _, sym := range valid {
		sym := sym
		g.Go(func() error {
			price := f.lookup(gctx, sym)
			mu.Lock()
			results[sym] = price
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // lookups never return errors

	if err := f.throttle(ctx); err != nil {
		return nil, err
	}
	f.cache.Add(key, results)
	f.log.Info("fetched prices", zap.Int("requested", len(symbols)), zap.Int("looked_up", len(valid)))
	return results, nil
}

// lookup resolves one symbol: live price first, then the most recent daily
// close, then NA. Failures are contained here.
func (f *Fetcher) lookup(ctx context.Context, symbol string) string {
	price, err := f.source.Live(ctx, symbol)
	if err == nil && price > 0 {
		return FormatPrice(price)
	}
	if err != nil {
		f.log.Debug("live price unavailable", zap.String("symbol", symbol), zap.Error(err))
	}
	price, err = f.source.LastClose(ctx, symbol)
	if err != nil {
		f.log.Debug("close price unavailable", zap.String("symbol", symbol), zap.Error(err))
		return NA
	}
	return FormatPrice(price)
}

// throttle sleeps a random duration in [DelayMin, DelayMax) after a fresh
// batch to keep the upstream request rate down. Cache hits skip it.
func (f *Fetcher) throttle(ctx context.Context) error {
	d := f.cfg.DelayMin
	if f.cfg.DelayMax > f.cfg.DelayMin {
		d += time.Duration(rand.Float64() * float64(f.cfg.DelayMax-f.cfg.DelayMin))
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

package rates

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Refresher keeps the latest fetched rates in memory and re-fetches them on a
// cron schedule. Handlers read the cache so pricing never waits on a slow
// upstream page.
type Refresher struct {
	fetcher *Fetcher
	cron    *cron.Cron
	spec    string
	log     zerolog.Logger

	mu           sync.RWMutex
	cottonIndex  Result
	exchangeRate Result
	cottonPrimed bool
	usdPrimed    bool
}

// NewRefresher builds a refresher for the given fetcher and cron spec.
func NewRefresher(fetcher *Fetcher, spec string, log zerolog.Logger) *Refresher {
	return &Refresher{
		fetcher: fetcher,
		cron:    cron.New(),
		spec:    spec,
		log:     log,
	}
}

// Start primes the cache with an initial fetch and schedules periodic
// refreshes. The initial fetch runs in the background so startup is not
// blocked by upstream pages.
func (r *Refresher) Start() error {
	if _, err := r.cron.AddFunc(r.spec, r.refresh); err != nil {
		return err
	}
	r.cron.Start()
	go r.refresh()
	return nil
}

// Stop stops the cron scheduler and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

func (r *Refresher) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cotton := r.fetcher.FetchCottonIndex(ctx)
	usd := r.fetcher.FetchExchangeRate(ctx)

	r.mu.Lock()
	r.cottonIndex = cotton
	r.exchangeRate = usd
	r.cottonPrimed = true
	r.usdPrimed = true
	r.mu.Unlock()

	r.log.Info().
		Float64("cotton_index", cotton.Value).
		Str("cotton_index_source", cotton.Source).
		Float64("exchange_rate", usd.Value).
		Str("exchange_rate_source", usd.Source).
		Msg("rates refreshed")
}

// CottonIndex returns the cached A Index quotation, fetching live when the
// cache is empty or force is set.
func (r *Refresher) CottonIndex(ctx context.Context, force bool) Result {
	r.mu.RLock()
	cached, primed := r.cottonIndex, r.cottonPrimed
	r.mu.RUnlock()
	if primed && !force {
		return cached
	}

	res := r.fetcher.FetchCottonIndex(ctx)
	r.mu.Lock()
	r.cottonIndex = res
	r.cottonPrimed = true
	r.mu.Unlock()
	return res
}

// ExchangeRate returns the cached TJS/USD rate, fetching live when the cache
// is empty or force is set.
func (r *Refresher) ExchangeRate(ctx context.Context, force bool) Result {
	r.mu.RLock()
	cached, primed := r.exchangeRate, r.usdPrimed
	r.mu.RUnlock()
	if primed && !force {
		return cached
	}

	res := r.fetcher.FetchExchangeRate(ctx)
	r.mu.Lock()
	r.exchangeRate = res
	r.usdPrimed = true
	r.mu.Unlock()
	return res
}

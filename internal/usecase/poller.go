package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/internal/domain"
	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/pkg/feed"
	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/pkg/logger"
)

// Poller keeps the local mirror warm in the background. Each tick runs
// the polling refresh (active orders only) and surfaces the current
// unread order ids on a feed, so a notification layer can react to new
// arrivals without ever being coupled to the UI refresh paths.
type Poller struct {
	engine   *Engine
	store    domain.OrderStore
	interval time.Duration
	unread   *feed.Feed[[]int64]
}

func NewPoller(engine *Engine, store domain.OrderStore, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Poller{
		engine:   engine,
		store:    store,
		interval: interval,
		unread:   feed.New[[]int64](),
	}
}

// UnreadFeed publishes the sorted ids of unread orders after every
// tick on which the set changed.
func (p *Poller) UnreadFeed() *feed.Feed[[]int64] {
	return p.unread
}

// Run blocks until ctx is cancelled. The first tick happens
// immediately so a fresh process does not wait a full interval for
// its mirror.
func (p *Poller) Run(ctx context.Context) {
	logger.Info().Dur("interval", p.interval).Msg("order poller started")
	defer logger.Info().Msg("order poller stopped")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	tickCtx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()

	if _, err := p.engine.RefreshForPolling(tickCtx); err != nil {
		// Transient failures are expected (network blips, remote
		// restarts); the next tick retries.
		logger.Warn().Err(err).Msg("poll tick failed")
		return
	}

	ids, err := p.store.GetUnreadIDs(tickCtx)
	if err != nil {
		logger.Warn().Err(err).Msg("unread id lookup failed")
		return
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if !equalIDs(p.unread.Get(), ids) {
		p.unread.Set(ids)
	}
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

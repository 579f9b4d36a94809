package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/internal/domain"
	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/pkg/feed"
	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/pkg/logger"
	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/pkg/utils"
)

// Engine keeps the local order mirror consistent with the remote API.
// It owns an authoritative in-process cache backed by the persistent
// store, and publishes every visible change on feeds.
//
// All mutating operations run under one mutex, so at most one refresh
// is in flight and upsert, deletion, cache update and feed publication
// are strictly ordered. Reads are served from an RWMutex-guarded
// snapshot.
type Engine struct {
	store    domain.OrderStore
	api      domain.OrderAPI
	settings domain.Settings
	pageSize int

	syncMu  sync.Mutex    // serializes every mutating operation end to end
	limiter *rate.Limiter // coalesces rapid duplicate refreshes

	mu     sync.RWMutex
	orders map[int64]domain.Order
	cached bool // at least one successful refresh happened

	feedMu   sync.Mutex
	primary  *feed.Feed[[]domain.Order]
	byStatus map[string]*feed.Feed[[]domain.Order]
	byID     map[int64]*feed.Feed[*domain.Order]
}

func NewEngine(store domain.OrderStore, api domain.OrderAPI, settings domain.Settings, pageSize int, refreshMinInterval time.Duration) *Engine {
	if pageSize <= 0 {
		pageSize = 100
	}
	if refreshMinInterval <= 0 {
		refreshMinInterval = time.Second
	}
	return &Engine{
		store:    store,
		api:      api,
		settings: settings,
		pageSize: pageSize,
		limiter:  rate.NewLimiter(rate.Every(refreshMinInterval), 1),
		orders:   make(map[int64]domain.Order),
		primary:  feed.New[[]domain.Order](),
		byStatus: make(map[string]*feed.Feed[[]domain.Order]),
		byID:     make(map[int64]*feed.Feed[*domain.Order]),
	}
}

// --- Refresh ---

// Refresh pulls the full remote collection, reconciles the local
// mirror and returns the fresh list.
func (e *Engine) Refresh(ctx context.Context) ([]domain.Order, error) {
	return e.refresh(ctx, "")
}

// RefreshByStatus pulls remote orders of one status, accepting either
// the canonical vocabulary or the display vocabulary. "any" and ""
// mean everything.
func (e *Engine) RefreshByStatus(ctx context.Context, status string) ([]domain.Order, error) {
	return e.refresh(ctx, status)
}

func (e *Engine) refresh(ctx context.Context, requested string) ([]domain.Order, error) {
	canonical := domain.ToCanonicalStatus(requested)
	scoped := canonical != "" && canonical != domain.OrderStatusAny

	// Rapid duplicate refreshes (spammed UI buttons, stacked view
	// loads) collapse onto the warm cache instead of the network.
	if !e.limiter.Allow() {
		if snap, ok := e.cachedView(canonical); ok {
			logger.Debug().Str("status", canonical).Msg("refresh coalesced onto cached view")
			return snap, nil
		}
	}

	e.syncMu.Lock()
	defer e.syncMu.Unlock()

	remoteStatus := ""
	if scoped {
		remoteStatus = canonical
	}
	fetched, err := e.api.ListOrders(ctx, 1, e.pageSize, remoteStatus)
	if err != nil {
		logger.Error().Err(err).Str("status", canonical).Msg("order refresh failed")
		return nil, err
	}

	fetched, err = e.mergeFlags(ctx, fetched)
	if err != nil {
		return nil, err
	}

	if err := e.store.UpsertAll(ctx, fetched); err != nil {
		return nil, err
	}
	removed, err := e.reconcileDeletions(ctx, fetched, canonical, scoped)
	if err != nil {
		return nil, err
	}

	e.applyToCache(fetched, removed, !scoped)
	e.publishAll(fetched, removed)

	logger.Info().
		Str("status", canonical).
		Int("fetched", len(fetched)).
		Int("removed", len(removed)).
		Msg("order refresh complete")

	view, _ := e.cachedView(canonical)
	return view, nil
}

// RefreshForPolling is the background variant of RefreshByStatus with
// a fixed "processing" scope. It reconciles the store and in-process
// cache but deliberately leaves all feeds alone so a poll tick never
// disturbs what the UI is showing.
func (e *Engine) RefreshForPolling(ctx context.Context) ([]domain.Order, error) {
	e.syncMu.Lock()
	defer e.syncMu.Unlock()

	fetched, err := e.api.ListOrders(ctx, 1, e.pageSize, domain.OrderStatusProcessing)
	if err != nil {
		logger.Warn().Err(err).Msg("polling refresh failed")
		return nil, err
	}
	fetched, err = e.mergeFlags(ctx, fetched)
	if err != nil {
		return nil, err
	}
	if err := e.store.UpsertAll(ctx, fetched); err != nil {
		return nil, err
	}
	removed, err := e.reconcileDeletions(ctx, fetched, domain.OrderStatusProcessing, true)
	if err != nil {
		return nil, err
	}
	e.applyToCache(fetched, removed, false)
	return fetched, nil
}

// mergeFlags carries the client-only flags onto freshly mapped orders:
// the in-process cache wins, then the persisted row, then false.
func (e *Engine) mergeFlags(ctx context.Context, fetched []domain.Order) ([]domain.Order, error) {
	var misses []int64
	e.mu.RLock()
	for i := range fetched {
		if prev, ok := e.orders[fetched[i].ID]; ok {
			fetched[i].IsPrinted = prev.IsPrinted
			fetched[i].IsRead = prev.IsRead
		} else {
			misses = append(misses, fetched[i].ID)
		}
	}
	e.mu.RUnlock()

	if len(misses) == 0 {
		return fetched, nil
	}
	rows, err := e.store.GetByIDs(ctx, misses)
	if err != nil {
		return nil, err
	}
	persisted := make(map[int64]domain.Order, len(rows))
	for _, r := range rows {
		persisted[r.ID] = r
	}
	for i := range fetched {
		if r, ok := persisted[fetched[i].ID]; ok {
			fetched[i].IsPrinted = r.IsPrinted
			fetched[i].IsRead = r.IsRead
		}
	}
	return fetched, nil
}

// reconcileDeletions removes local rows the remote no longer has. A
// full refresh sweeps everything; a scoped one may only remove rows
// whose status matches the requested scope.
func (e *Engine) reconcileDeletions(ctx context.Context, fetched []domain.Order, canonical string, scoped bool) ([]int64, error) {
	keep := make(map[int64]struct{}, len(fetched))
	for _, o := range fetched {
		keep[o.ID] = struct{}{}
	}

	var removed []int64
	if scoped {
		local, err := e.store.GetAll(ctx)
		if err != nil {
			return nil, err
		}
		for _, o := range local {
			if _, ok := keep[o.ID]; ok {
				continue
			}
			if domain.StatusMatches(o.Status, canonical) {
				removed = append(removed, o.ID)
			}
		}
	} else {
		ids, err := e.store.GetAllIDs(ctx)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if _, ok := keep[id]; !ok {
				removed = append(removed, id)
			}
		}
	}

	for _, id := range removed {
		if err := e.store.DeleteByID(ctx, id); err != nil {
			return nil, err
		}
	}
	return removed, nil
}

func (e *Engine) applyToCache(fetched []domain.Order, removed []int64, replace bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if replace {
		e.orders = make(map[int64]domain.Order, len(fetched))
	}
	for _, o := range fetched {
		e.orders[o.ID] = o
	}
	for _, id := range removed {
		delete(e.orders, id)
	}
	e.cached = true
}

// --- Single order ---

// GetByID resolves one order: in-process cache, then the store, then
// the remote API. A miss everywhere is (nil, nil), not an error.
func (e *Engine) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	e.mu.RLock()
	if o, ok := e.orders[id]; ok {
		e.mu.RUnlock()
		e.publishOne(&o)
		return &o, nil
	}
	e.mu.RUnlock()

	row, err := e.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row != nil {
		e.adopt(*row)
		e.publishOne(row)
		return row, nil
	}

	remote, err := e.api.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if remote == nil {
		return nil, nil
	}

	e.syncMu.Lock()
	defer e.syncMu.Unlock()
	merged, err := e.mergeFlags(ctx, []domain.Order{*remote})
	if err != nil {
		return nil, err
	}
	if err := e.store.UpsertAll(ctx, merged); err != nil {
		return nil, err
	}
	e.adopt(merged[0])
	e.publishOne(&merged[0])
	return &merged[0], nil
}

// GetByIDFeed returns the observable cell for one order, creating it
// on first use. Creation kicks off one async load so subscribers get a
// value without calling GetByID themselves.
func (e *Engine) GetByIDFeed(id int64) *feed.Feed[*domain.Order] {
	e.feedMu.Lock()
	f, ok := e.byID[id]
	if !ok {
		f = feed.New[*domain.Order]()
		e.byID[id] = f
	}
	e.feedMu.Unlock()

	if !ok {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if _, err := e.GetByID(ctx, id); err != nil {
				logger.Warn().Err(err).Int64("order_id", id).Msg("async order load failed")
			}
		}()
	}
	return f
}

// adopt inserts one order into the in-process cache without touching
// the cached flag: one known order does not make the collection warm.
func (e *Engine) adopt(o domain.Order) {
	e.mu.Lock()
	e.orders[o.ID] = o
	e.mu.Unlock()
}

// --- Mutations ---

// UpdateStatus pushes a status change to the remote system and applies
// the returned order locally, keeping the client-only flags. The new
// status may be given in either vocabulary; anything unmappable is
// rejected before any network traffic.
func (e *Engine) UpdateStatus(ctx context.Context, id int64, newStatus string) (*domain.Order, error) {
	canonical := domain.ToCanonicalStatus(newStatus)
	if !domain.IsCanonicalStatus(canonical) {
		return nil, domain.NewAPIRejection(0, "invalid_status", "unknown order status "+newStatus)
	}

	e.syncMu.Lock()
	defer e.syncMu.Unlock()

	updated, err := e.api.UpdateOrder(ctx, id, map[string]any{"status": canonical})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, nil
	}

	merged, err := e.mergeFlags(ctx, []domain.Order{*updated})
	if err != nil {
		return nil, err
	}
	if err := e.store.UpsertAll(ctx, merged); err != nil {
		return nil, err
	}
	e.adopt(merged[0])
	e.publishAll(merged, nil)

	logger.Info().Int64("order_id", id).Str("status", canonical).Msg("order status updated")
	return &merged[0], nil
}

// MarkPrinted records that the order has been printed. Local-only:
// the remote system never learns about it. Unknown ids are a no-op.
func (e *Engine) MarkPrinted(ctx context.Context, id int64) error {
	return e.setPrinted(ctx, id, true)
}

// MarkUnprinted clears the printed flag, e.g. before a forced reprint.
func (e *Engine) MarkUnprinted(ctx context.Context, id int64) error {
	return e.setPrinted(ctx, id, false)
}

func (e *Engine) setPrinted(ctx context.Context, id int64, printed bool) error {
	e.syncMu.Lock()
	defer e.syncMu.Unlock()

	if err := e.store.SetPrinted(ctx, id, printed); err != nil {
		return err
	}
	e.mutateCached(id, func(o *domain.Order) { o.IsPrinted = printed })
	return nil
}

// MarkNotificationShown records that the new-order notification for
// this order has been surfaced. Local-only and idempotent.
func (e *Engine) MarkNotificationShown(ctx context.Context, id int64) error {
	e.syncMu.Lock()
	defer e.syncMu.Unlock()

	if err := e.store.MarkRead(ctx, id); err != nil {
		return err
	}
	e.mutateCached(id, func(o *domain.Order) { o.IsRead = true })
	return nil
}

// MarkManyNotificationsShown marks a batch of orders read, e.g. after
// the notification layer flushed a group of alerts.
func (e *Engine) MarkManyNotificationsShown(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	e.syncMu.Lock()
	defer e.syncMu.Unlock()

	if err := e.store.MarkManyRead(ctx, ids); err != nil {
		return err
	}

	e.mu.Lock()
	var changed []domain.Order
	for _, id := range ids {
		if o, ok := e.orders[id]; ok && !o.IsRead {
			o.IsRead = true
			e.orders[id] = o
			changed = append(changed, o)
		}
	}
	e.mu.Unlock()

	if len(changed) > 0 {
		e.publishAll(changed, nil)
	}
	return nil
}

// MarkAllNotificationsShown marks every order read in one sweep.
func (e *Engine) MarkAllNotificationsShown(ctx context.Context) error {
	e.syncMu.Lock()
	defer e.syncMu.Unlock()

	if err := e.store.MarkAllRead(ctx); err != nil {
		return err
	}

	e.mu.Lock()
	var changed []domain.Order
	for id, o := range e.orders {
		if !o.IsRead {
			o.IsRead = true
			e.orders[id] = o
			changed = append(changed, o)
		}
	}
	e.mu.Unlock()

	if len(changed) > 0 {
		e.publishAll(changed, nil)
	}
	return nil
}

// mutateCached applies fn to the cached copy of id, if present, and
// republishes the affected views. Caller holds syncMu.
func (e *Engine) mutateCached(id int64, fn func(*domain.Order)) {
	e.mu.Lock()
	o, ok := e.orders[id]
	if ok {
		fn(&o)
		e.orders[id] = o
	}
	e.mu.Unlock()
	if ok {
		e.publishAll([]domain.Order{o}, nil)
	}
}

// --- Queries ---

// Search matches the query tokens (whitespace-split, case-insensitive,
// all must hit) against customer name, contact info and order number.
// A cold cache triggers one full refresh first.
func (e *Engine) Search(ctx context.Context, query string) ([]domain.Order, error) {
	e.mu.RLock()
	warm := e.cached
	e.mu.RUnlock()
	if !warm {
		if _, err := e.Refresh(ctx); err != nil {
			return nil, err
		}
	}

	tokens := utils.Tokenize(query)
	if len(tokens) == 0 {
		return e.snapshot(), nil
	}

	var out []domain.Order
	for _, o := range e.snapshot() {
		haystack := strings.ToLower(o.CustomerName + " " + o.ContactInfo + " " + o.Number)
		match := true
		for _, tok := range tokens {
			if !strings.Contains(haystack, tok) {
				match = false
				break
			}
		}
		if match {
			out = append(out, o)
		}
	}
	return out, nil
}

// AllOrdersFeed is the observable view of the whole collection.
func (e *Engine) AllOrdersFeed() *feed.Feed[[]domain.Order] {
	return e.primary
}

// OrdersByStatusFeed returns the observable view for one status. The
// key is the caller's wording; matching is three-way, so the Chinese
// and canonical names of a status see the same orders.
func (e *Engine) OrdersByStatusFeed(status string) *feed.Feed[[]domain.Order] {
	e.feedMu.Lock()
	defer e.feedMu.Unlock()
	f, ok := e.byStatus[status]
	if !ok {
		f = feed.NewWith(filterByStatus(e.snapshot(), status))
		e.byStatus[status] = f
	}
	return f
}

// ClearCache drops the in-process cache. The persisted store and the
// feeds keep their contents; the next refresh rebuilds from scratch.
func (e *Engine) ClearCache() {
	e.mu.Lock()
	e.orders = make(map[int64]domain.Order)
	e.cached = false
	e.mu.Unlock()
}

// TestConnection probes the remote API with a minimal one-order list
// call. It reports config problems without touching the network.
func (e *Engine) TestConnection(ctx context.Context) error {
	cfg, err := e.settings.APIConfig(ctx)
	if err != nil {
		return err
	}
	if !cfg.IsValid() {
		return domain.ErrConfigInvalid
	}
	_, err = e.api.ListOrders(ctx, 1, 1, "")
	return err
}

// --- Views ---

func (e *Engine) snapshot() []domain.Order {
	e.mu.RLock()
	out := make([]domain.Order, 0, len(e.orders))
	for _, o := range e.orders {
		out = append(out, o)
	}
	e.mu.RUnlock()
	sortOrders(out)
	return out
}

// cachedView returns the requested slice of the warm cache, or false
// when no refresh has succeeded yet.
func (e *Engine) cachedView(status string) ([]domain.Order, bool) {
	e.mu.RLock()
	warm := e.cached
	e.mu.RUnlock()
	if !warm {
		return nil, false
	}
	return filterByStatus(e.snapshot(), status), true
}

// publishAll re-derives every live view after a mutation. Caller holds
// syncMu, so publications are ordered consistently with store writes.
func (e *Engine) publishAll(changed []domain.Order, removed []int64) {
	snap := e.snapshot()
	e.primary.Set(snap)

	e.feedMu.Lock()
	for status, f := range e.byStatus {
		f.Set(filterByStatus(snap, status))
	}
	idFeeds := make(map[int64]*feed.Feed[*domain.Order], len(changed)+len(removed))
	for _, o := range changed {
		if f, ok := e.byID[o.ID]; ok {
			idFeeds[o.ID] = f
		}
	}
	for _, id := range removed {
		if f, ok := e.byID[id]; ok {
			idFeeds[id] = f
		}
	}
	e.feedMu.Unlock()

	for _, o := range changed {
		if f, ok := idFeeds[o.ID]; ok {
			v := o
			f.Set(&v)
		}
	}
	for _, id := range removed {
		if f, ok := idFeeds[id]; ok && !containsOrder(changed, id) {
			f.Set(nil)
		}
	}
}

func (e *Engine) publishOne(o *domain.Order) {
	e.feedMu.Lock()
	f, ok := e.byID[o.ID]
	e.feedMu.Unlock()
	if ok {
		v := *o
		f.Set(&v)
	}
}

func filterByStatus(orders []domain.Order, status string) []domain.Order {
	if status == "" || status == domain.OrderStatusAny {
		return orders
	}
	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if domain.StatusMatches(o.Status, status) {
			out = append(out, o)
		}
	}
	return out
}

func sortOrders(orders []domain.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].DateCreated.Equal(orders[j].DateCreated) {
			return orders[i].DateCreated.After(orders[j].DateCreated)
		}
		return orders[i].ID > orders[j].ID
	})
}

func containsOrder(orders []domain.Order, id int64) bool {
	for _, o := range orders {
		if o.ID == id {
			return true
		}
	}
	return false
}

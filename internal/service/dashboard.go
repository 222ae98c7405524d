package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"crypto_dash/internal/domain"
)

// ViewStatus is the load state of the dashboard list.
type ViewStatus int

const (
	StatusIdle ViewStatus = iota
	StatusLoading
	StatusReady
	StatusError
)

func (s ViewStatus) String() string {
	switch s {
	case StatusIdle:
		return "IDLE"
	case StatusLoading:
		return "LOADING"
	case StatusReady:
		return "READY"
	case StatusError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// GlobalMarketSource optionally reports the total market cap of all assets.
type GlobalMarketSource interface {
	FetchGlobalMarketCap(ctx context.Context, currency string) (float64, error)
}

// DashboardState is a consistent snapshot of the dashboard.
type DashboardState struct {
	Status          ViewStatus
	Err             error // set in StatusError
	Filter          domain.FilterState
	Displayed       []domain.AssetSnapshot
	Summary         domain.MarketSummary
	GlobalMarketCap float64 // 0 when unavailable
}

// savedSettings is the persisted part of the filter.
type savedSettings struct {
	SortKey   domain.SortKey   `json:"sort_key"`
	SortOrder domain.SortOrder `json:"sort_order"`
}

// DashboardController owns the asset list and filter, and re-derives the
// displayed list synchronously on every change.
type DashboardController struct {
	mu sync.RWMutex

	source    domain.MarketDataSource
	favorites *FavoritesManager
	store     domain.KeyValueStore
	currency  string

	assets    []domain.AssetSnapshot
	filter    domain.FilterState
	displayed []domain.AssetSnapshot
	status    ViewStatus
	err       error
	globalCap float64

	onUpdate func(DashboardState)
	logger   *slog.Logger
}

// NewDashboardController creates a controller and restores the saved sort settings.
func NewDashboardController(source domain.MarketDataSource, favorites *FavoritesManager, store domain.KeyValueStore, currency string) *DashboardController {
	c := &DashboardController{
		source:    source,
		favorites: favorites,
		store:     store,
		currency:  currency,
		filter:    domain.DefaultFilterState(),
		logger:    slog.Default().With("module", "dashboard"),
	}

	var s savedSettings
	if store.Load(domain.KeySettings, &s) {
		c.filter.SortKey = s.SortKey
		c.filter.SortOrder = s.SortOrder
		c.filter = c.filter.Normalize()
	}
	return c
}

// SetOnUpdate registers the state-change callback.
func (c *DashboardController) SetOnUpdate(fn func(DashboardState)) {
	c.mu.Lock()
	c.onUpdate = fn
	c.mu.Unlock()
}

// Load fetches the asset list, replacing the previous one wholesale.
// On failure the view enters StatusError; calling Load again is the retry.
func (c *DashboardController) Load(ctx context.Context) error {
	c.mu.Lock()
	c.status = StatusLoading
	c.err = nil
	c.mu.Unlock()
	c.notify()

	assets, err := c.source.FetchPopularAssets(ctx, c.currency)
	if err != nil {
		c.logger.Error("Failed to load assets", slog.Any("error", err))
		c.mu.Lock()
		c.status = StatusError
		c.err = err
		c.mu.Unlock()
		c.notify()
		return err
	}

	var globalCap float64
	if gs, ok := c.source.(GlobalMarketSource); ok {
		if v, err := gs.FetchGlobalMarketCap(ctx, c.currency); err != nil {
			c.logger.Warn("Global market data unavailable", slog.Any("error", err))
		} else {
			globalCap = v
		}
	}

	c.mu.Lock()
	c.assets = assets
	c.globalCap = globalCap
	c.status = StatusReady
	c.rederive()
	c.mu.Unlock()

	c.logger.Info("📊 Assets loaded", slog.Int("count", len(assets)))
	c.notify()
	return nil
}

// SetSearchQuery filters by case-insensitive substring of name or symbol.
func (c *DashboardController) SetSearchQuery(q string) {
	c.update(func(f *domain.FilterState) { f.SearchQuery = q }, false)
}

// SetSortKey changes the sort field. Unknown keys are ignored.
func (c *DashboardController) SetSortKey(k domain.SortKey) {
	if !k.Valid() {
		return
	}
	c.update(func(f *domain.FilterState) { f.SortKey = k }, true)
}

// CycleSortKey advances to the next sort key.
func (c *DashboardController) CycleSortKey() {
	c.update(func(f *domain.FilterState) { f.SortKey = f.SortKey.Next() }, true)
}

// SetSortOrder changes the sort direction.
func (c *DashboardController) SetSortOrder(o domain.SortOrder) {
	if o != domain.SortAsc && o != domain.SortDesc {
		return
	}
	c.update(func(f *domain.FilterState) { f.SortOrder = o }, true)
}

// ToggleSortOrder flips the sort direction.
func (c *DashboardController) ToggleSortOrder() {
	c.update(func(f *domain.FilterState) { f.SortOrder = f.SortOrder.Toggle() }, true)
}

// SetFavoritesOnly restricts the list to favorites.
func (c *DashboardController) SetFavoritesOnly(on bool) {
	c.update(func(f *domain.FilterState) { f.FavoritesOnly = on }, false)
}

// ToggleFavoritesOnly flips the favorites-only filter.
func (c *DashboardController) ToggleFavoritesOnly() {
	c.update(func(f *domain.FilterState) { f.FavoritesOnly = !f.FavoritesOnly }, false)
}

// ToggleFavorite toggles asset in the favorite set and re-derives the list.
func (c *DashboardController) ToggleFavorite(asset domain.AssetSnapshot) bool {
	fav := c.favorites.Toggle(asset)
	c.mu.Lock()
	c.rederive()
	c.mu.Unlock()
	c.notify()
	return fav
}

// IsFavorite reports whether id is a favorite.
func (c *DashboardController) IsFavorite(id string) bool {
	return c.favorites.IsFavorite(id)
}

// Displayed returns a copy of the derived list.
func (c *DashboardController) Displayed() []domain.AssetSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneAssets(c.displayed)
}

// Assets returns a copy of the full list in gateway order.
func (c *DashboardController) Assets() []domain.AssetSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneAssets(c.assets)
}

// Filter returns the current filter.
func (c *DashboardController) Filter() domain.FilterState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filter
}

// Summary aggregates the full list for the header cards.
func (c *DashboardController) Summary() domain.MarketSummary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.summaryLocked()
}

// State returns a snapshot of the whole dashboard.
func (c *DashboardController) State() DashboardState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stateLocked()
}

func (c *DashboardController) update(mutate func(*domain.FilterState), persist bool) {
	c.mu.Lock()
	mutate(&c.filter)
	c.rederive()
	settings := savedSettings{SortKey: c.filter.SortKey, SortOrder: c.filter.SortOrder}
	c.mu.Unlock()

	if persist {
		c.store.Save(domain.KeySettings, settings)
	}
	c.notify()
}

// rederive must be called with mu held.
func (c *DashboardController) rederive() {
	c.displayed = DeriveDisplayedList(c.assets, c.filter, c.favorites.IDs())
}

func (c *DashboardController) summaryLocked() domain.MarketSummary {
	s := domain.MarketSummary{
		FavoritesCount: c.favorites.Count(),
		AssetCount:     len(c.assets),
	}
	for _, a := range c.assets {
		s.TotalMarketCap += a.MarketCap
		s.TotalVolume += a.TotalVolume
	}
	return s
}

func (c *DashboardController) stateLocked() DashboardState {
	return DashboardState{
		Status:          c.status,
		Err:             c.err,
		Filter:          c.filter,
		Displayed:       cloneAssets(c.displayed),
		Summary:         c.summaryLocked(),
		GlobalMarketCap: c.globalCap,
	}
}

func cloneAssets(in []domain.AssetSnapshot) []domain.AssetSnapshot {
	out := make([]domain.AssetSnapshot, len(in))
	copy(out, in)
	return out
}

func (c *DashboardController) notify() {
	c.mu.RLock()
	fn := c.onUpdate
	state := c.stateLocked()
	c.mu.RUnlock()
	if fn != nil {
		fn(state)
	}
}

// DeriveDisplayedList applies search, favorites-only and sort to assets
// without modifying it. Ties are broken by ascending ID, so the result is
// deterministic for any input order.
func DeriveDisplayedList(assets []domain.AssetSnapshot, f domain.FilterState, favorites map[string]struct{}) []domain.AssetSnapshot {
	f = f.Normalize()
	query := strings.ToLower(f.SearchQuery)

	out := make([]domain.AssetSnapshot, 0, len(assets))
	for _, a := range assets {
		if query != "" &&
			!strings.Contains(strings.ToLower(a.Name), query) &&
			!strings.Contains(strings.ToLower(a.Symbol), query) {
			continue
		}
		if f.FavoritesOnly {
			if _, ok := favorites[a.ID]; !ok {
				continue
			}
		}
		out = append(out, a)
	}

	desc := f.SortOrder == domain.SortDesc
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		cmp := compareBy(f.SortKey, a, b)
		if cmp == 0 {
			return a.ID < b.ID
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
	return out
}

func compareBy(k domain.SortKey, a, b domain.AssetSnapshot) int {
	if k == domain.SortByName {
		return strings.Compare(a.Name, b.Name)
	}
	av, bv := k.NumericValue(a), k.NumericValue(b)
	switch {
	case av < bv:
		return -1
	case av > bv:
		return 1
	default:
		return 0
	}
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"crypto_dash/internal/domain"
)

// Backoff supplies the chart's timed pauses.
type Backoff interface {
	// TransitionDelay precedes reloading a session that already shows data.
	TransitionDelay() time.Duration
	// RetryDelay precedes a fetch made with retryCount > 0.
	RetryDelay(retryCount int) time.Duration
	// SettleDelay precedes publishing a reloaded series.
	SettleDelay() time.Duration
}

// FixedBackoff uses constant delays.
type FixedBackoff struct {
	Transition time.Duration
	Retry      time.Duration
	Settle     time.Duration
}

// DefaultBackoff returns 200ms transition, 1s retry floor and 100ms settle.
func DefaultBackoff() FixedBackoff {
	return FixedBackoff{
		Transition: 200 * time.Millisecond,
		Retry:      1000 * time.Millisecond,
		Settle:     100 * time.Millisecond,
	}
}

func (b FixedBackoff) TransitionDelay() time.Duration { return b.Transition }
func (b FixedBackoff) SettleDelay() time.Duration     { return b.Settle }

func (b FixedBackoff) RetryDelay(retryCount int) time.Duration {
	if retryCount <= 0 {
		return 0
	}
	return b.Retry
}

// ChartOptions configures a ChartController.
type ChartOptions struct {
	MaxRetries       int
	AutoRetry        bool
	DefaultTimeframe domain.Timeframe
	Backoff          Backoff
}

// DefaultChartOptions returns 3 automatic retries on the 7D window.
func DefaultChartOptions() ChartOptions {
	return ChartOptions{
		MaxRetries:       3,
		AutoRetry:        true,
		DefaultTimeframe: domain.DefaultTimeframe,
		Backoff:          DefaultBackoff(),
	}
}

// ChartController drives one chart session at a time through
// Loading, Transitioning, Ready, Error and NoData.
//
// Select, SetTimeframe and Retry block until the triggered load settles or
// is superseded. Every trigger takes a new request token; work carrying an
// older token is discarded, so the latest user action always wins. The
// Begin* variants split a trigger into its immediate state change and a
// Load to run elsewhere.
type ChartController struct {
	mu        sync.RWMutex
	pubMu     sync.Mutex
	gateway   *HistoryGateway
	opts      ChartOptions
	session   *domain.ChartSession
	hasLoaded bool // a load succeeded for the current asset
	token     uint64
	cancel    context.CancelFunc

	onUpdate func(domain.ChartSession)
	logger   *slog.Logger
}

// NewChartController creates a controller over gateway.
func NewChartController(gateway *HistoryGateway, opts ChartOptions) *ChartController {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if !opts.DefaultTimeframe.Valid() {
		opts.DefaultTimeframe = domain.DefaultTimeframe
	}
	if opts.Backoff == nil {
		opts.Backoff = DefaultBackoff()
	}
	return &ChartController{
		gateway: gateway,
		opts:    opts,
		logger:  slog.Default().With("module", "chart"),
	}
}

// SetOnUpdate registers the state-change callback. It must not call back
// into the controller's trigger methods.
func (c *ChartController) SetOnUpdate(fn func(domain.ChartSession)) {
	c.mu.Lock()
	c.onUpdate = fn
	c.mu.Unlock()
}

// Session returns the current session, or an idle one when nothing is selected.
func (c *ChartController) Session() domain.ChartSession {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

// Load is a chart load entered by a trigger but not yet performed. Begin*
// methods return quickly and never notify, so they may be called from a UI
// event loop; Run does the blocking work.
type Load struct {
	c          *ChartController
	tok        uint64
	ctx        context.Context
	done       context.CancelFunc
	entered    domain.ChartSession
	transition bool
}

// Session is the state the trigger entered, Loading or Transitioning.
func (l *Load) Session() domain.ChartSession { return l.entered }

// Run publishes the entered state and blocks until the load settles.
// A load superseded before or during Run stops without publishing further.
func (l *Load) Run() domain.ChartSession {
	c := l.c
	defer l.done()

	c.publish(l.tok, l.entered)
	if l.transition {
		if err := wait(l.ctx, c.opts.Backoff.TransitionDelay()); err != nil {
			return c.Session()
		}
		if !c.setPhase(l.tok, domain.PhaseLoading) {
			return c.Session()
		}
	}

	c.run(l.ctx, l.tok)
	return c.Session()
}

// BeginSelect opens a new session for asset on the default timeframe.
// The previous session, its retry count and its data are discarded.
func (c *ChartController) BeginSelect(ctx context.Context, asset domain.AssetSnapshot) *Load {
	c.mu.Lock()
	defer c.mu.Unlock()

	l := c.beginLocked(ctx)
	c.session = &domain.ChartSession{
		AssetID:    asset.ID,
		AssetName:  asset.Name,
		Timeframe:  c.opts.DefaultTimeframe,
		Phase:      domain.PhaseLoading,
		MaxRetries: c.opts.MaxRetries,
	}
	c.hasLoaded = false
	l.entered = c.snapshotLocked()

	c.logger.Debug("Chart selected", slog.String("asset", asset.ID))
	return l
}

// BeginTimeframe switches the session to tf. A session that already loaded
// passes through Transitioning first. It returns nil when there is nothing
// to load: no session, an unsupported tf, or tf already Ready.
func (c *ChartController) BeginTimeframe(ctx context.Context, tf domain.Timeframe) *Load {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil || !tf.Valid() {
		return nil
	}
	if c.session.Timeframe == tf && c.session.Phase == domain.PhaseReady {
		return nil
	}

	l := c.beginLocked(ctx)
	c.session.Timeframe = tf
	c.session.RetryCount = 0
	c.session.Err = nil
	l.transition = c.hasLoaded
	if l.transition {
		c.session.Phase = domain.PhaseTransitioning
	} else {
		c.session.Phase = domain.PhaseLoading
	}
	l.entered = c.snapshotLocked()
	return l
}

// BeginRetry resets the retry count and reloads the session.
// It returns nil without a session.
func (c *ChartController) BeginRetry(ctx context.Context) *Load {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return nil
	}
	l := c.beginLocked(ctx)
	c.session.RetryCount = 0
	c.session.Err = nil
	c.session.Phase = domain.PhaseLoading
	l.entered = c.snapshotLocked()

	c.logger.Info("Chart retry requested", slog.String("asset", l.entered.AssetID))
	return l
}

// Select opens a session for asset and blocks until it settles.
func (c *ChartController) Select(ctx context.Context, asset domain.AssetSnapshot) domain.ChartSession {
	return c.BeginSelect(ctx, asset).Run()
}

// SetTimeframe reloads the session for tf and blocks until it settles.
func (c *ChartController) SetTimeframe(ctx context.Context, tf domain.Timeframe) domain.ChartSession {
	if l := c.BeginTimeframe(ctx, tf); l != nil {
		return l.Run()
	}
	return c.Session()
}

// Retry reloads the session from a zero retry count and blocks until it settles.
func (c *ChartController) Retry(ctx context.Context) domain.ChartSession {
	if l := c.BeginRetry(ctx); l != nil {
		return l.Run()
	}
	return c.Session()
}

// Clear discards the session and supersedes any load in flight. It does not
// notify; the returned idle state is the caller's new view.
func (c *ChartController) Clear() domain.ChartSession {
	c.mu.Lock()
	defer c.mu.Unlock()

	l := c.beginLocked(context.Background())
	l.done()
	c.session = nil
	c.hasLoaded = false
	return c.snapshotLocked()
}

// beginLocked supersedes in-flight work and starts a Load under a new token
// whose context is cancelled by the next trigger. mu must be held.
func (c *ChartController) beginLocked(parent context.Context) *Load {
	if c.cancel != nil {
		c.cancel()
	}
	c.token++
	ctx, cancel := context.WithCancel(parent)
	c.cancel = cancel
	return &Load{c: c, tok: c.token, ctx: ctx, done: cancel}
}

// run fetches until the session settles: Ready, NoData, Error with automatic
// retries exhausted or disabled, or superseded.
func (c *ChartController) run(ctx context.Context, tok uint64) {
	for {
		c.mu.RLock()
		if c.staleLocked(tok) {
			c.mu.RUnlock()
			return
		}
		assetID := c.session.AssetID
		tf := c.session.Timeframe
		retryCount := c.session.RetryCount
		c.mu.RUnlock()

		if err := wait(ctx, c.opts.Backoff.RetryDelay(retryCount)); err != nil {
			return
		}

		points, err := c.gateway.FetchHistory(ctx, assetID, tf)
		if ctx.Err() != nil {
			return
		}

		if err == nil {
			c.complete(ctx, tok, points)
			return
		}

		if !c.fail(tok, err) {
			return
		}
	}
}

// complete publishes a successful load.
func (c *ChartController) complete(ctx context.Context, tok uint64, points []domain.PricePoint) {
	c.mu.RLock()
	hadData := c.hasLoaded
	c.mu.RUnlock()

	if hadData {
		if err := wait(ctx, c.opts.Backoff.SettleDelay()); err != nil {
			return
		}
	}

	c.mu.Lock()
	if c.staleLocked(tok) {
		c.mu.Unlock()
		return
	}
	c.session.Points = points
	c.session.Phase = domain.PhaseReady
	c.session.RetryCount = 0
	c.session.Err = nil
	c.hasLoaded = true
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Debug("Chart ready",
		slog.String("asset", snap.AssetID),
		slog.String("timeframe", snap.Timeframe.Label()),
		slog.Int("points", len(points)))
	c.publish(tok, snap)
}

// fail records a failed attempt. It returns true when another attempt should
// follow automatically.
func (c *ChartController) fail(tok uint64, err error) bool {
	c.mu.Lock()
	if c.staleLocked(tok) {
		c.mu.Unlock()
		return false
	}

	if errors.Is(err, domain.ErrAssetNotFound) {
		c.session.Phase = domain.PhaseNoData
		c.session.Points = nil
		c.session.Err = err
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.logger.Warn("No history for asset", slog.String("asset", snap.AssetID))
		c.publish(tok, snap)
		return false
	}

	c.session.RetryCount++
	c.session.Phase = domain.PhaseError
	c.session.Err = err
	errSnap := c.snapshotLocked()

	again := c.opts.AutoRetry && c.session.RetryCount < c.opts.MaxRetries
	var loadingSnap domain.ChartSession
	if again {
		c.session.Phase = domain.PhaseLoading
		loadingSnap = c.snapshotLocked()
	}
	c.mu.Unlock()

	c.logger.Warn("Chart load failed",
		slog.String("asset", errSnap.AssetID),
		slog.Int("retry_count", errSnap.RetryCount),
		slog.Int("attempts_remaining", errSnap.AttemptsRemaining()),
		slog.Any("error", err))
	c.publish(tok, errSnap)
	if again {
		c.publish(tok, loadingSnap)
	}
	return again
}

func (c *ChartController) setPhase(tok uint64, phase domain.ChartPhase) bool {
	c.mu.Lock()
	if c.staleLocked(tok) {
		c.mu.Unlock()
		return false
	}
	c.session.Phase = phase
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(tok, snap)
	return true
}

func (c *ChartController) staleLocked(tok uint64) bool {
	return c.token != tok || c.session == nil
}

func (c *ChartController) snapshotLocked() domain.ChartSession {
	if c.session == nil {
		return domain.ChartSession{Phase: domain.PhaseIdle, MaxRetries: c.opts.MaxRetries, Request: c.token}
	}
	s := *c.session
	s.Request = c.token
	return s
}

// publish delivers snap unless tok has been superseded. Deliveries are
// serialized so a superseded update never lands after a newer one.
func (c *ChartController) publish(tok uint64, snap domain.ChartSession) {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()

	c.mu.RLock()
	fn := c.onUpdate
	stale := c.token != tok
	c.mu.RUnlock()

	if fn != nil && !stale {
		fn(snap)
	}
}

// wait sleeps for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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

package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"crypto_dash/internal/domain"
	"crypto_dash/internal/infra"
	"crypto_dash/internal/infra/coingecko"
	"crypto_dash/internal/infra/storage"
	"crypto_dash/internal/infra/synthetic"
	"crypto_dash/internal/service"

	"github.com/joho/godotenv"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config     *infra.Config
	Metrics    *infra.Metrics
	Storage    *storage.Storage // nil when running on the in-memory store
	Client     *coingecko.Client
	Downloader *infra.IconDownloader // nil when icons are disabled

	Favorites *service.FavoritesManager
	Dashboard *service.DashboardController
	Chart     *service.ChartController

	iconOnce sync.Once
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{Metrics: infra.GlobalMetrics}
}

// Initialize loads configuration and wires every component.
// console receives log records in addition to the log file; pass nil while the TUI owns the terminal.
// ctx bounds the background icon sync.
func (b *Bootstrap) Initialize(ctx context.Context, console io.Writer) error {
	// Secrets may live in .env during development
	_ = godotenv.Load(".env")

	// 1. Load Config
	path := infra.ResolveConfigPath()
	cfg, err := infra.LoadConfig(path)
	missing := errors.Is(err, domain.ErrConfigNotFound)
	if missing {
		cfg = infra.DefaultConfig()
		err = cfg.Validate()
	}
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg, console)
	slog.SetDefault(logger)
	slog.Info("🚀 Bootstrapping Crypto Dash...", slog.String("config", path), slog.String("version", cfg.App.Version))
	if missing {
		slog.Warn("⚠️ Config file not found, using defaults", slog.String("path", path))
	}

	// 3. Initialize Storage (DB)
	var kv *storage.KV
	store, err := storage.NewStorage(cfg.Storage.Path)
	if err != nil {
		slog.Warn("⚠️ Database unavailable, settings will not persist", slog.Any("error", err))
		kv = storage.NewKV(storage.NewMemoryBackend())
	} else {
		b.Storage = store
		kv = storage.NewKV(store)
		slog.Info("✅ Database initialized")
	}

	// 4. Market data gateway
	b.Client = coingecko.NewClient(coingecko.OptionsFromConfig(cfg, b.Metrics))
	slog.Info("✅ CoinGecko client ready",
		slog.String("currency", cfg.API.CoinGecko.Currency),
		slog.Bool("api_key", cfg.API.CoinGecko.APIKey != ""),
	)

	// 5. History gateway
	history := service.NewHistoryGateway(b.historyProvider())
	slog.Info("✅ History provider ready", slog.String("source", cfg.History.Source))

	// 6. Controllers
	b.Favorites = service.NewFavoritesManager(kv)
	b.Dashboard = service.NewDashboardController(b.Client, b.Favorites, kv, cfg.API.CoinGecko.Currency)
	b.Chart = service.NewChartController(history, service.ChartOptions{
		MaxRetries:       cfg.Chart.MaxRetries,
		AutoRetry:        cfg.Chart.AutoRetry,
		DefaultTimeframe: domain.Timeframe(cfg.Chart.DefaultTimeframe),
		Backoff: service.FixedBackoff{
			Transition: cfg.TransitionDelay(),
			Retry:      cfg.RetryDelay(),
			Settle:     cfg.SettleDelay(),
		},
	})

	// 7. Icon Downloader
	if cfg.Icons.Enabled {
		var index infra.IconIndex
		if b.Storage != nil {
			index = b.Storage
		}
		downloader, err := infra.NewIconDownloader(cfg.Icons.Dir, cfg.Icons.Size, index, b.Metrics)
		if err != nil {
			slog.Warn("⚠️ Icon cache disabled", slog.Any("error", err))
		} else {
			b.Downloader = downloader
			slog.Info("✅ Icon downloader ready")
		}
	}

	b.Dashboard.SetOnUpdate(func(s service.DashboardState) {
		slog.Debug("Dashboard updated",
			slog.String("status", s.Status.String()),
			slog.Int("displayed", len(s.Displayed)),
		)
		if s.Status == service.StatusReady {
			b.iconOnce.Do(func() { go b.SyncIcons(ctx) })
		}
	})

	return nil
}

func (b *Bootstrap) historyProvider() domain.HistoryProvider {
	cfg := b.Config
	local := synthetic.NewProvider(cfg.History.Volatility.InexactFloat64())
	remote := coingecko.NewRemoteHistoryProvider(b.Client, cfg.API.CoinGecko.Currency)

	switch cfg.History.Source {
	case infra.HistorySourceRemote:
		return remote
	case infra.HistorySourceFallback:
		return service.NewFallbackHistoryProvider(remote, local, b.Metrics.RecordFallback)
	default:
		return local
	}
}

// SyncIcons caches the icons of the loaded assets in the background.
func (b *Bootstrap) SyncIcons(ctx context.Context) {
	if b.Downloader == nil {
		return
	}
	slog.Info("🔄 Starting icon synchronization...")
	b.Downloader.SyncIcons(ctx, b.Dashboard.Assets())
}

// Close releases the database.
func (b *Bootstrap) Close() {
	if b.Storage == nil {
		return
	}
	if err := b.Storage.Close(); err != nil {
		slog.Error("Failed to close database", slog.Any("error", err))
	}
}

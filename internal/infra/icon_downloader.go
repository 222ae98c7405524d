package infra

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"crypto_dash/internal/domain"
	"crypto_dash/internal/infra/storage"

	"github.com/disintegration/imaging"
)

// IconIndex records where each cached icon lives.
type IconIndex interface {
	UpsertIcon(icon *storage.AssetIcon) error
	GetIcon(assetID string) (*storage.AssetIcon, error)
}

// IconDownloader handles downloading and caching asset icons
type IconDownloader struct {
	basePath string
	size     int
	client   *http.Client
	index    IconIndex // may be nil
	metrics  *Metrics
	logger   *slog.Logger

	mu    sync.RWMutex
	known map[string]bool // HasIcon results by asset id
}

// NewIconDownloader creates a new IconDownloader writing into dir.
// An empty dir resolves to DefaultIconDir.
func NewIconDownloader(dir string, size int, index IconIndex, metrics *Metrics) (*IconDownloader, error) {
	if dir == "" {
		var err error
		dir, err = DefaultIconDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve assets path: %w", err)
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create assets directory: %w", err)
	}
	if size <= 0 {
		size = 24
	}
	if metrics == nil {
		metrics = GlobalMetrics
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = 100
	transport.MaxConnsPerHost = 10
	transport.IdleConnTimeout = 30 * time.Second

	return &IconDownloader{
		basePath: dir,
		size:     size,
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
		index:   index,
		metrics: metrics,
		logger:  slog.Default().With("module", "icons"),
		known:   make(map[string]bool),
	}, nil
}

// DownloadIcon fetches asset.Image unless the icon is already cached.
// Images are resized to size x size pixels for consistent UI display.
// Returns the local file path on success.
func (d *IconDownloader) DownloadIcon(ctx context.Context, asset domain.AssetSnapshot) (string, error) {
	filePath := d.GetIconPath(asset.ID)
	if filePath == "" {
		return "", fmt.Errorf("invalid asset id: %q", asset.ID)
	}

	// Cache hit
	if _, err := os.Stat(filePath); err == nil {
		d.remember(asset.ID, true)
		return filePath, nil
	}

	if asset.Image == "" {
		return "", fmt.Errorf("asset %s has no image url", asset.ID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.Image, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", DefaultUserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return "", domain.NewNetworkError("GET "+asset.Image, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad status: %s", resp.Status)
	}

	srcImg, err := imaging.Decode(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	resized := imaging.Resize(srcImg, d.size, d.size, imaging.Lanczos)
	if err := imaging.Save(resized, filePath); err != nil {
		return "", fmt.Errorf("failed to save resized image: %w", err)
	}
	d.metrics.RecordIconCached()

	if d.index != nil {
		now := time.Now()
		if err := d.index.UpsertIcon(&storage.AssetIcon{
			AssetID:      asset.ID,
			ImageURL:     asset.Image,
			IconPath:     filePath,
			LastSyncedAt: now,
		}); err != nil {
			d.logger.Warn("Failed to index icon", slog.String("asset", asset.ID), slog.Any("error", err))
		}
	}
	d.remember(asset.ID, true)

	return filePath, nil
}

// HasIcon reports whether the icon of assetID is cached. With an index the
// indexed path is checked, otherwise the cache directory. Answers are
// remembered until the next download of that asset.
func (d *IconDownloader) HasIcon(assetID string) bool {
	d.mu.RLock()
	found, ok := d.known[assetID]
	d.mu.RUnlock()
	if ok {
		return found
	}

	path := d.GetIconPath(assetID)
	if d.index != nil {
		icon, err := d.index.GetIcon(assetID)
		if err != nil {
			d.logger.Debug("Icon lookup failed", slog.String("asset", assetID), slog.Any("error", err))
			return false
		}
		path = ""
		if icon != nil {
			path = icon.IconPath
		}
	}

	found = false
	if path != "" {
		_, err := os.Stat(path)
		found = err == nil
	}
	d.remember(assetID, found)
	return found
}

func (d *IconDownloader) remember(assetID string, found bool) {
	d.mu.Lock()
	d.known[assetID] = found
	d.mu.Unlock()
}

// SyncIcons downloads every missing icon. Failures are logged and skipped.
// It returns the number of icons available locally afterwards.
func (d *IconDownloader) SyncIcons(ctx context.Context, assets []domain.AssetSnapshot) int {
	available := 0
	for _, a := range assets {
		if ctx.Err() != nil {
			break
		}
		if _, err := d.DownloadIcon(ctx, a); err != nil {
			d.logger.Debug("Icon download skipped", slog.String("asset", a.ID), slog.Any("error", err))
			continue
		}
		available++
	}
	d.logger.Info("🖼️ Icon sync finished", slog.Int("available", available), slog.Int("total", len(assets)))
	return available
}

// GetIconPath returns the local path for an asset's icon, or "" for an unusable id.
func (d *IconDownloader) GetIconPath(assetID string) string {
	safe := sanitizeID(assetID)
	if safe == "" {
		return ""
	}
	return filepath.Join(d.basePath, safe+".png")
}

// sanitizeID keeps CoinGecko id characters and drops anything that could escape basePath.
func sanitizeID(id string) string {
	res := make([]rune, 0, len(id))
	for _, r := range strings.ToLower(id) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			res = append(res, r)
		}
	}
	return string(res)
}

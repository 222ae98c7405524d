package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AppConfig is one key-value row. Values are JSON documents.
type AppConfig struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AssetIcon records where the resized icon of an asset is cached.
type AssetIcon struct {
	AssetID      string    `gorm:"primaryKey" json:"asset_id"`
	ImageURL     string    `json:"image_url"`
	IconPath     string    `json:"icon_path"`
	LastSyncedAt time.Time `json:"last_synced_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Storage is the SQLite persistence layer
type Storage struct {
	db *gorm.DB
}

// NewStorage opens (or creates) the SQLite database at path.
// An empty path resolves to the OS config directory.
func NewStorage(path string) (*Storage, error) {
	dbPath := path
	if dbPath == "" {
		var err error
		dbPath, err = getDBPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve DB path: %w", err)
		}
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&AppConfig{}, &AssetIcon{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// getDBPath resolves the database file path based on OS
func getDBPath() (string, error) {
	var configDir string
	var err error

	if runtime.GOOS == "windows" {
		configDir = os.Getenv("LOCALAPPDATA")
		if configDir == "" {
			configDir, err = os.UserConfigDir()
		}
	} else {
		configDir, err = os.UserConfigDir()
	}

	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "CryptoDash", "data", "cryptodash.db"), nil
}

// Close releases the underlying connection.
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ======================================================================================
// Key-Value Operations
// ======================================================================================

// SaveValue creates or overwrites the value stored under key.
func (s *Storage) SaveValue(key, value string) error {
	return s.db.Save(&AppConfig{Key: key, Value: value}).Error
}

// LoadValue returns the value stored under key. found is false when the key is absent.
func (s *Storage) LoadValue(key string) (value string, found bool, err error) {
	var row AppConfig
	err = s.db.First(&row, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil // Not found is not an error
	}
	if err != nil {
		return "", false, err
	}
	return row.Value, true, nil
}

// DeleteValue removes key. Deleting a missing key is not an error.
func (s *Storage) DeleteValue(key string) error {
	return s.db.Where("key = ?", key).Delete(&AppConfig{}).Error
}

// LoadConfigMap loads all stored values as a map
func (s *Storage) LoadConfigMap() (map[string]string, error) {
	var rows []AppConfig
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, err
	}

	result := make(map[string]string, len(rows))
	for _, row := range rows {
		result[row.Key] = row.Value
	}
	return result, nil
}

// ======================================================================================
// Icon Operations
// ======================================================================================

// UpsertIcon creates or updates the icon record of an asset
func (s *Storage) UpsertIcon(icon *AssetIcon) error {
	return s.db.Save(icon).Error
}

// GetIcon retrieves the icon record of an asset, nil if absent
func (s *Storage) GetIcon(assetID string) (*AssetIcon, error) {
	var icon AssetIcon
	err := s.db.First(&icon, "asset_id = ?", assetID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &icon, nil
}

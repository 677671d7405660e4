package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"hermes_go/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// trackedEntryRowID pins the tracked entry to a single row; the terminal
// holds at most one live entry at a time.
const trackedEntryRowID = 1

// Storage defines the interface for data persistence
type Storage struct {
	db *gorm.DB
}

// NewStorage creates a new SQLite storage instance at the default location
func NewStorage() (*Storage, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve DB path: %w", err)
	}
	return NewStorageAt(dbPath)
}

// NewStorageAt opens (or creates) the database at an explicit path
func NewStorageAt(dbPath string) (*Storage, error) {
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Pure Go SQLite
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&domain.Setting{}, &domain.TrackedEntryRecord{}); err != nil {
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

	return filepath.Join(configDir, "HermesGo", "data", "hermes.db"), nil
}

// ======================================================================================
// Settings Operations
// ======================================================================================

// SaveSetting persists a single operator setting
func (s *Storage) SaveSetting(key, value string) error {
	setting := domain.Setting{
		Key:   key,
		Value: value,
	}
	return s.db.Save(&setting).Error
}

// GetSetting retrieves a single setting value. Missing keys return "".
func (s *Storage) GetSetting(key string) (string, error) {
	var setting domain.Setting
	err := s.db.First(&setting, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	return setting.Value, err
}

// LoadSettingsMap loads all operator settings as a map
func (s *Storage) LoadSettingsMap() (map[string]string, error) {
	var settings []domain.Setting
	if err := s.db.Find(&settings).Error; err != nil {
		return nil, err
	}

	result := make(map[string]string)
	for _, setting := range settings {
		result[setting.Key] = setting.Value
	}
	return result, nil
}

// ======================================================================================
// Tracked Entry Operations
// ======================================================================================

// SaveTrackedEntry overwrites the single tracked entry row
func (s *Storage) SaveTrackedEntry(entry *domain.ExecutedEntry) error {
	record := domain.TrackedEntryRecord{
		ID:           trackedEntryRowID,
		OrderID:      entry.OrderID,
		Symbol:       entry.Symbol,
		Side:         string(entry.Side),
		Quantity:     entry.Quantity,
		AvgFillPrice: entry.AvgFillPrice,
		UpdatedAt:    time.Now(),
	}
	return s.db.Save(&record).Error
}

// GetTrackedEntry returns the tracked entry, or nil when none is stored
func (s *Storage) GetTrackedEntry() (*domain.ExecutedEntry, error) {
	var record domain.TrackedEntryRecord
	err := s.db.First(&record, "id = ?", trackedEntryRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &domain.ExecutedEntry{
		OrderID:      record.OrderID,
		Symbol:       record.Symbol,
		Side:         domain.Side(record.Side),
		Quantity:     record.Quantity,
		AvgFillPrice: record.AvgFillPrice,
	}, nil
}

// ClearTrackedEntry removes the tracked entry row
func (s *Storage) ClearTrackedEntry() error {
	return s.db.Where("id = ?", trackedEntryRowID).Delete(&domain.TrackedEntryRecord{}).Error
}

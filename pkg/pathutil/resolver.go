// Package pathutil provides centralized path management for the database
// file and Beancount exports.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathResolver manages paths for the SQLite database and exported files.
type PathResolver struct {
	dataDir      string
	databasePath string
	exportDir    string
}

// Config represents the configuration for PathResolver.
type Config struct {
	// DataDir holds local state (e.g., ./data)
	DataDir string
	// DatabasePath is the SQLite database file
	DatabasePath string
	// ExportDir is the root directory for exported Beancount files
	ExportDir string
}

// New creates a new PathResolver with the given configuration.
// If DatabasePath is empty, it defaults to {DataDir}/pocketr.db
// If ExportDir is empty, it defaults to {DataDir}/beancount
func New(config Config) *PathResolver {
	dbPath := config.DatabasePath
	if dbPath == "" {
		dbPath = filepath.Join(config.DataDir, "pocketr.db")
	}

	exportDir := config.ExportDir
	if exportDir == "" {
		exportDir = filepath.Join(config.DataDir, "beancount")
	}

	return &PathResolver{
		dataDir:      config.DataDir,
		databasePath: dbPath,
		exportDir:    exportDir,
	}
}

// GetDataDir returns the data directory.
func (p *PathResolver) GetDataDir() string {
	return p.dataDir
}

// GetDatabasePath returns the database file path.
func (p *PathResolver) GetDatabasePath() string {
	return p.databasePath
}

// GetExportDir returns the export root directory.
func (p *PathResolver) GetExportDir() string {
	return p.exportDir
}

// GetYearDir returns the directory path for a year.
// Example: data/beancount/2026
func (p *PathResolver) GetYearDir(year string) string {
	return filepath.Join(p.exportDir, year)
}

// GetMonthFilePath returns the file path for a month.
// yearMonth should be in YYYY-MM format.
// Example: data/beancount/2026/2026-01.beancount
func (p *PathResolver) GetMonthFilePath(yearMonth string) (string, error) {
	parts := strings.Split(yearMonth, "-")
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return "", fmt.Errorf("invalid year-month format: %s. Expected YYYY-MM", yearMonth)
	}

	yearDir := p.GetYearDir(parts[0])
	filename := fmt.Sprintf("%s.beancount", yearMonth)

	return filepath.Join(yearDir, filename), nil
}

// EnsureDir creates a directory if it doesn't exist.
// It creates all parent directories as needed (like mkdir -p).
func (p *PathResolver) EnsureDir(dirPath string) error {
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dirPath, err)
	}
	return nil
}

// EnsureParentDir ensures the parent directory of a file exists.
func (p *PathResolver) EnsureParentDir(filePath string) error {
	return p.EnsureDir(filepath.Dir(filePath))
}

// FileExists checks if a file exists.
func (p *PathResolver) FileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return err == nil
}

// =============================================================================
// Sales ETL - File Manager Utility
// =============================================================================
//
// This module provides the small file-system helpers shared by ingestion,
// persistence and logging:
//   - Input file discovery
//   - Directory creation for output files
//   - Existence checks for append-only sinks
//   - Dated file naming (DD-MM-YYYY)
//
// =============================================================================

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"cloud.google.com/go/civil"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager discovers input extracts in a directory.
type FileManager struct {
	// InputDir is the directory scanned for extracts. It is not walked
	// recursively.
	InputDir string

	// Extensions are the accepted file extensions, compared case-insensitively.
	// Default: ".csv"
	Extensions []string
}

// NewFileManager creates a FileManager for inputDir accepting extensions.
func NewFileManager(inputDir string, extensions ...string) *FileManager {
	if len(extensions) == 0 {
		extensions = []string{".csv"}
	}
	return &FileManager{
		InputDir:   inputDir,
		Extensions: extensions,
	}
}

// DiscoverInputFiles lists the accepted files directly inside InputDir.
//
// RETURNS:
//   - File paths in lexical order of their names.
//   - An error if the directory cannot be read.
func (fm *FileManager) DiscoverInputFiles() ([]string, error) {
	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if fm.accepts(entry.Name()) {
			files = append(files, filepath.Join(fm.InputDir, entry.Name()))
		}
	}

	return files, nil
}

func (fm *FileManager) accepts(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return slices.ContainsFunc(fm.Extensions, func(e string) bool {
		return strings.ToLower(e) == ext
	})
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDir creates dir and its parents if they don't exist.
func EnsureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// EnsureParentDir creates the directory that will contain path.
func EnsureParentDir(path string) error {
	return EnsureDir(filepath.Dir(path))
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// DayStamp formats a date as DD-MM-YYYY, the stamp used in output and log
// file names.
func DayStamp(date civil.Date) string {
	return fmt.Sprintf("%02d-%02d-%04d", date.Day, int(date.Month), date.Year)
}

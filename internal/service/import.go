package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"cycling-planner/internal/store"
)

// ImportService loads activity exports into the store
type ImportService struct {
	store  *store.DB
	logger *slog.Logger
}

// NewImportService creates a new import service
func NewImportService(db *store.DB, logger *slog.Logger) *ImportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportService{store: db, logger: logger}
}

// ImportResult contains the results of an import
type ImportResult struct {
	File     string
	Imported int
	Skipped  int
	Total    int // activities in the store afterwards
	Duration time.Duration
}

// ImportFile imports a semicolon-separated activity export and records it
// as the last import.
func (s *ImportService) ImportFile(ctx context.Context, path string) (*ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening export: %w", err)
	}
	defer f.Close()

	start := time.Now()
	res, err := s.store.ImportCSV(ctx, f, s.logger)
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", filepath.Base(path), err)
	}

	total, err := s.store.CountActivities(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting activities: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if err := s.store.SetSyncState(ctx, store.StateLastImportFile, abs); err != nil {
		return nil, fmt.Errorf("recording import: %w", err)
	}
	if err := s.store.SetSyncState(ctx, store.StateLastImportCount, strconv.Itoa(res.Imported)); err != nil {
		return nil, fmt.Errorf("recording import: %w", err)
	}

	result := &ImportResult{
		File:     abs,
		Imported: res.Imported,
		Skipped:  res.Skipped,
		Total:    total,
		Duration: time.Since(start),
	}
	s.logger.Info("imported activities", "file", abs, "imported", result.Imported,
		"skipped", result.Skipped, "total", result.Total)
	return result, nil
}

// LastImport returns the file and time of the most recent import, or
// store.ErrStateNotFound when nothing was imported yet.
func (s *ImportService) LastImport(ctx context.Context) (*store.SyncState, error) {
	st, err := s.store.GetSyncState(ctx, store.StateLastImportFile)
	if errors.Is(err, store.ErrStateNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("reading import state: %w", err)
	}
	return st, nil
}

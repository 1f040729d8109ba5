package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
)

const migrationsDir = "migrations"

// RunMigrations applies the SQL files in migrations/ in name order. Files
// are written to be re-runnable (IF NOT EXISTS), so no version table is
// kept.
func (s *Postgres) RunMigrations(ctx context.Context, logger zerolog.Logger) error {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	filenames := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		filenames = append(filenames, entry.Name())
	}
	sort.Strings(filenames)

	for _, name := range filenames {
		content, err := os.ReadFile(filepath.Join(migrationsDir, name))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		logger.Info().Str("file", name).Msg("applying migration")
		if _, err := s.Pool.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}

	logger.Info().Int("count", len(filenames)).Msg("migrations applied")
	return nil
}

package store

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

// MigrateLegacyLayouts performs a one-time migration of a pre-identity
// layout database into the store. The legacy file keyed diagram
// placements by the retired offset-hash scheme; idMapping translates
// those keys to stable identities (see identity.BuildLegacyIDMapping).
// Safe to call multiple times — it's a no-op once the legacy file has
// been renamed, and rows whose legacy id has no mapping are skipped.
func (s *Store) MigrateLegacyLayouts(legacyPath, uri string, idMapping map[string]string) (int, error) {
	if _, err := os.Stat(legacyPath); os.IsNotExist(err) {
		return 0, nil // nothing to migrate
	}

	slog.Info("migrate.start", "legacy_db", legacyPath, "uri", uri)

	// Backup the legacy DB before any modification.
	backupPath := legacyPath + ".backup"
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		if err := copyFile(legacyPath, backupPath); err != nil {
			return 0, fmt.Errorf("backup: %w", err)
		}
		slog.Info("migrate.backup", "path", backupPath)
	}

	legacyDB, err := sql.Open("sqlite3", legacyPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return 0, fmt.Errorf("open legacy: %w", err)
	}
	defer legacyDB.Close()

	rows, err := legacyDB.Query(`SELECT element_id, x, y, width, height FROM layouts WHERE uri=?`, uri)
	if err != nil {
		return 0, fmt.Errorf("list legacy layouts: %w", err)
	}
	defer rows.Close()

	migrated, skipped := 0, 0
	err = s.WithTransaction(func(tx *Store) error {
		for rows.Next() {
			var legacyID string
			var l Layout
			if err := rows.Scan(&legacyID, &l.X, &l.Y, &l.Width, &l.Height); err != nil {
				slog.Warn("migrate.row.skip", "err", err)
				skipped++
				continue
			}
			id, ok := idMapping[legacyID]
			if !ok {
				// The element no longer exists or was never reconciled.
				slog.Warn("migrate.row.unmapped", "legacy_id", legacyID)
				skipped++
				continue
			}
			l.URI = uri
			l.Identity = id
			if err := tx.SetLayout(l); err != nil {
				return err
			}
			migrated++
		}
		return rows.Err()
	})
	if err != nil {
		return migrated, err
	}

	slog.Info("migrate.done", "migrated", migrated, "skipped", skipped)
	return migrated, nil
}

// FinishLegacyMigration renames the legacy DB to mark migration complete.
func FinishLegacyMigration(legacyPath string) error {
	migratedPath := legacyPath + ".migrated"
	if err := os.Rename(legacyPath, migratedPath); err != nil {
		return fmt.Errorf("rename legacy: %w", err)
	}
	// Also clean up WAL/SHM files.
	for _, suffix := range []string{"-wal", "-shm"} {
		_ = os.Remove(legacyPath + suffix)
	}
	slog.Info("migrate.renamed", "from", legacyPath, "to", migratedPath)
	return nil
}

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	if err != nil {
		return err
	}
	return out.Sync()
}

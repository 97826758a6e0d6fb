package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mulberry/canvas/internal/backend"
	"mulberry/canvas/internal/config"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:   "canvas",
	Short: "Canvas diagram boards: edit, inspect and export",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to .canvas.db database")
}

// DiscoverDB finds the database path using priority: env > flag >
// rc file > walk-up > XDG fallback. Board creation may start a fresh
// database, so the fallback path is returned even when no file exists
// there yet.
func DiscoverDB() (string, error) {
	// 1. Environment variable
	if envPath := os.Getenv("CANVAS_DB"); envPath != "" {
		return envPath, nil
	}

	// 2. CLI flag
	if dbPath != "" {
		return dbPath, nil
	}

	// 3. rc file
	if cfg := config.Load(); cfg.DBPath != "" {
		return cfg.DBPath, nil
	}

	// 4. Walk up from CWD looking for an existing database
	dir, err := os.Getwd()
	if err == nil {
		for {
			candidate := filepath.Join(dir, ".canvas.db")
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	// 5. XDG fallback
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("no database location (set CANVAS_DB, use --db, or add db= to ~/.canvasrc)")
	}
	fallback := filepath.Join(home, ".local", "share", "canvas")
	if err := os.MkdirAll(fallback, 0755); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}
	return filepath.Join(fallback, "canvas.db"), nil
}

// OpenBackend discovers and opens the diagram database.
func OpenBackend() (*backend.SQLite, error) {
	path, err := DiscoverDB()
	if err != nil {
		return nil, err
	}
	return backend.OpenSQLite(path)
}

// ResolveBoard finds a board by full id, id prefix (≥6 chars) or exact
// name.
func ResolveBoard(be backend.Backend, reference string) (string, error) {
	boards, err := be.ListBoards()
	if err != nil {
		return "", fmt.Errorf("listing boards: %w", err)
	}

	var prefix, named []string
	for _, b := range boards {
		if b.ID == reference {
			return b.ID, nil
		}
		if len(reference) >= 6 && len(b.ID) >= len(reference) && b.ID[:len(reference)] == reference {
			prefix = append(prefix, b.ID)
		}
		if b.Name == reference {
			named = append(named, b.ID)
		}
	}

	for _, matches := range [][]string{prefix, named} {
		switch len(matches) {
		case 0:
		case 1:
			return matches[0], nil
		default:
			return "", fmt.Errorf("ambiguous board reference %q (%d matches), use a full board id", reference, len(matches))
		}
	}
	return "", fmt.Errorf("board not found: %s", reference)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

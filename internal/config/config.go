// Package config loads editor settings from an rc file. Everything has
// a working default; a missing or partial file is fine.
package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds the user-tunable editor settings.
type Config struct {
	DBPath          string  // diagram database location
	SnapThreshold   float64 // px; 0 disables snapping
	NudgeStep       float64 // arrow-key step, px
	NudgeStepLarge  float64 // shift-arrow step, px
	DuplicateOffset float64 // px offset of duplicated nodes
	ShapeColor      string  // fill of newly created shape nodes
	FontPath        string  // TTF used for labels in PNG export
}

// Defaults match the interactive editor's built-in behavior.
func Defaults() *Config {
	return &Config{
		SnapThreshold:   8,
		NudgeStep:       1,
		NudgeStepLarge:  10,
		DuplicateOffset: 30,
		ShapeColor:      "#3b82f6",
	}
}

// Load reads ~/.canvasrc (key=value lines, # comments) over the
// defaults. The CANVAS_DB environment variable overrides the configured
// database path.
func Load() *Config {
	cfg := Defaults()

	homeDir, err := os.UserHomeDir()
	if err == nil {
		cfg.loadFile(filepath.Join(homeDir, ".canvasrc"), homeDir)
	}

	if db := os.Getenv("CANVAS_DB"); db != "" {
		cfg.DBPath = db
	}
	return cfg
}

func (c *Config) loadFile(path, homeDir string) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch strings.ToLower(key) {
		case "db", "db_path", "database":
			c.DBPath = expandPath(value, homeDir)
		case "snap", "snap_threshold":
			if f, err := strconv.ParseFloat(value, 64); err == nil && f >= 0 {
				c.SnapThreshold = f
			}
		case "nudge", "nudge_step":
			if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
				c.NudgeStep = f
			}
		case "nudge_large", "nudge_step_large":
			if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
				c.NudgeStepLarge = f
			}
		case "duplicate_offset":
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				c.DuplicateOffset = f
			}
		case "shape_color", "color":
			if value != "" {
				c.ShapeColor = value
			}
		case "font", "font_path":
			c.FontPath = expandPath(value, homeDir)
		}
	}
}

func expandPath(value, homeDir string) string {
	if strings.HasPrefix(value, "~") {
		value = filepath.Join(homeDir, strings.TrimPrefix(value, "~"))
	}
	if !filepath.IsAbs(value) {
		if abs, err := filepath.Abs(value); err == nil {
			value = abs
		}
	}
	return value
}

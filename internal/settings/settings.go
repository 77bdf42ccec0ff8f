// Package settings persists the user's local preferences as a JSON
// file next to the session token.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"smartbills/internal/core"
)

// Settings holds local preferences. MonthlyBudget is the ceiling the
// CLI passes to budget checks when none is given explicitly.
type Settings struct {
	Currency       string  `json:"currency"`
	Theme          string  `json:"theme"`
	MonthlyBudget  float64 `json:"monthly_budget"`
	BudgetAlerts   bool    `json:"budget_alerts"`
	EmailReminders bool    `json:"email_reminders"`
}

// Default returns the settings used before the user saves any.
func Default() Settings {
	return Settings{
		Currency:     core.DefaultCurrency,
		Theme:        "light",
		BudgetAlerts: true,
	}
}

// Store reads and writes the settings file.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath places the settings under the user config directory,
// falling back to the working directory when none is available.
func DefaultPath(appName string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "." + appName + "-settings.json"
	}
	return filepath.Join(dir, appName, "settings.json")
}

// Load returns the stored settings, or the defaults when the file does
// not exist yet.
func (s *Store) Load() (Settings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}

	out := Default()
	if err := json.Unmarshal(data, &out); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	return out, nil
}

// Save writes the settings, creating the directory if needed.
func (s *Store) Save(settings Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	return os.WriteFile(s.path, append(data, '\n'), 0o600)
}

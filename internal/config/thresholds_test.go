package config

import (
	"os"
	"path/filepath"
	"testing"

	"familybudget/internal/analysis"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadThresholds(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		th, err := LoadThresholds("")
		if err != nil {
			t.Fatalf("LoadThresholds() error = %v", err)
		}
		if th != analysis.DefaultThresholds() {
			t.Errorf("LoadThresholds(\"\") = %+v, want defaults", th)
		}
	})

	t.Run("partial file overrides only named keys", func(t *testing.T) {
		path := writeFile(t, "th.yaml", "savings_good_pct: 25\nforecast_window: 6\n")
		th, err := LoadThresholds(path)
		if err != nil {
			t.Fatalf("LoadThresholds() error = %v", err)
		}
		want := analysis.DefaultThresholds()
		want.SavingsGoodPct = 25
		want.ForecastWindow = 6
		if th != want {
			t.Errorf("LoadThresholds() = %+v, want %+v", th, want)
		}
	})

	t.Run("empty file returns defaults", func(t *testing.T) {
		th, err := LoadThresholds(writeFile(t, "empty.yaml", ""))
		if err != nil {
			t.Fatalf("LoadThresholds() error = %v", err)
		}
		if th != analysis.DefaultThresholds() {
			t.Errorf("LoadThresholds() = %+v, want defaults", th)
		}
	})

	t.Run("unknown key rejected", func(t *testing.T) {
		if _, err := LoadThresholds(writeFile(t, "typo.yaml", "savings_god_pct: 25\n")); err == nil {
			t.Error("LoadThresholds() expected error for unknown key")
		}
	})

	t.Run("inconsistent values rejected", func(t *testing.T) {
		if _, err := LoadThresholds(writeFile(t, "bad.yaml", "savings_low_pct: 30\nsavings_good_pct: 20\n")); err == nil {
			t.Error("LoadThresholds() expected validation error")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadThresholds(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("LoadThresholds() expected error for missing file")
		}
	})
}

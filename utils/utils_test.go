package utils

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestGetEnvFallsBackOnBlank(t *testing.T) {
	t.Setenv("CROP_TEST_VALUE", "  ")
	if got := GetEnv("CROP_TEST_VALUE", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback for blank value, got %q", got)
	}

	t.Setenv("CROP_TEST_VALUE", "set")
	if got := GetEnv("CROP_TEST_VALUE", "fallback"); got != "set" {
		t.Fatalf("expected set, got %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestCreateFolderIsIdempotent(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "a", "b")
	for i := 0; i < 2; i++ {
		if err := CreateFolder(dir); err != nil {
			t.Fatalf("CreateFolder returned error: %v", err)
		}
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("expected %s to be a directory (err=%v)", dir, err)
	}
}

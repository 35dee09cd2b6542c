package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config fixture: %v", err)
	}
	return path
}

func TestResolvePath_ExplicitWins(t *testing.T) {
	dir := t.TempDir()
	explicit := writeConfig(t, dir, "explicit.yaml", "candidates: {}\n")
	envPath := writeConfig(t, dir, "env.yaml", "candidates: {}\n")
	t.Setenv(EnvConfigPath, envPath)

	if got := ResolvePath(explicit); got != explicit {
		t.Errorf("ResolvePath(explicit) = %q, want %q", got, explicit)
	}
}

func TestResolvePath_EnvBeatsDefault(t *testing.T) {
	dir := t.TempDir()
	envPath := writeConfig(t, dir, "env.yaml", "candidates: {}\n")
	t.Setenv(EnvConfigPath, envPath)

	if got := ResolvePath(""); got != envPath {
		t.Errorf("ResolvePath(\"\") = %q, want env path %q", got, envPath)
	}
}

func TestResolvePath_NothingExists(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	// The first candidate comes back even though it does not exist, so the
	// caller sees a clear file-not-found downstream.
	if got := ResolvePath(missing); got != missing {
		t.Errorf("ResolvePath(missing) = %q, want %q", got, missing)
	}
}

func TestResolvePath_SkipsMissingExplicit(t *testing.T) {
	dir := t.TempDir()
	envPath := writeConfig(t, dir, "env.yaml", "candidates: {}\n")
	t.Setenv(EnvConfigPath, envPath)

	missing := filepath.Join(dir, "gone.yaml")
	if got := ResolvePath(missing); got != envPath {
		t.Errorf("ResolvePath = %q, want env path %q", got, envPath)
	}
}

func TestLoader_MissingFileDegradesToEmpty(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	loader := NewLoader(nil)

	doc := loader.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if doc == nil {
		t.Fatal("expected empty document, got nil")
	}
	if len(doc) != 0 {
		t.Errorf("expected empty document, got %v", doc)
	}
}

func TestLoader_ParseErrorDegradesToEmpty(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	dir := t.TempDir()
	bad := writeConfig(t, dir, "bad.yaml", ":\n\t- not yaml {{{")

	loader := NewLoader(nil)
	doc := loader.Load(bad)
	if len(doc) != 0 {
		t.Errorf("expected empty document after parse failure, got %v", doc)
	}
}

func TestLoader_Memoizes(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	dir := t.TempDir()
	path := writeConfig(t, dir, "cfg.yaml", "fusion:\n  k: 42\n")

	loader := NewLoader(nil)
	first := loader.Load(path)
	if got := FusionSettingsFrom(first).K; got != 42 {
		t.Fatalf("expected k=42, got %d", got)
	}

	// Rewrite the file; the cached document must still be served.
	writeConfig(t, dir, "cfg.yaml", "fusion:\n  k: 99\n")
	second := loader.Load(path)
	if got := FusionSettingsFrom(second).K; got != 42 {
		t.Errorf("expected cached k=42 after rewrite, got %d", got)
	}

	// Clear invalidates, so the rewrite becomes visible.
	loader.Clear()
	third := loader.Load(path)
	if got := FusionSettingsFrom(third).K; got != 99 {
		t.Errorf("expected k=99 after Clear, got %d", got)
	}
}

func TestLoader_SectionHelpersLoadDefaultWhenNil(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "cfg.yaml", "candidates:\n  final_limit: 33\n")
	t.Setenv(EnvConfigPath, path)

	loader := NewLoader(nil)
	if got := loader.CandidateLimits(nil).FinalLimit; got != 33 {
		t.Errorf("expected final_limit=33 from env-resolved path, got %d", got)
	}
	if got := loader.RerankSettings(nil); got != DefaultRerankSettings {
		t.Errorf("expected default rerank settings, got %+v", got)
	}
}

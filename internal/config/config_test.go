package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "flvctl.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Merge.SkipFrames == nil || *cfg.Merge.SkipFrames != 100 {
		t.Fatalf("SkipFrames = %v, want 100", cfg.Merge.SkipFrames)
	}
	if cfg.Merge.ClueToleranceMs != 500 {
		t.Fatalf("ClueToleranceMs = %d, want 500", cfg.Merge.ClueToleranceMs)
	}
	if cfg.Merge.TailTolerancePercent != 95 || cfg.Merge.WarnBelowPercent != 80 {
		t.Fatalf("unexpected merge percentages: %+v", cfg.Merge)
	}
	if cfg.FixSeek.AnchorTags != 2 {
		t.Fatalf("AnchorTags = %d, want 2", cfg.FixSeek.AnchorTags)
	}
	if cfg.Logs.File != "" || cfg.Logs.MaxSizeMB != 0 {
		t.Fatalf("logging should be off by default: %+v", cfg.Logs)
	}
}

func TestLoadOverridesAndResolvesPaths(t *testing.T) {
	path := writeConfig(t, `
merge:
  skipFrames: 250
  clueToleranceMs: 1000
fixSeek:
  anchorTags: 3
logs:
  file: logs/flvctl.log
metrics:
  textfile: /var/lib/node_exporter/flvctl.prom
journal:
  path: journal.jsonl
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *cfg.Merge.SkipFrames != 250 || cfg.Merge.ClueToleranceMs != 1000 {
		t.Fatalf("merge overrides not applied: %+v", cfg.Merge)
	}
	if cfg.Merge.TailTolerancePercent != DefaultTailTolerancePercent {
		t.Fatalf("TailTolerancePercent = %d, want default", cfg.Merge.TailTolerancePercent)
	}
	if cfg.FixSeek.AnchorTags != 3 {
		t.Fatalf("AnchorTags = %d, want 3", cfg.FixSeek.AnchorTags)
	}
	dir := filepath.Dir(path)
	if want := filepath.Join(dir, "logs", "flvctl.log"); cfg.Logs.File != want {
		t.Fatalf("Logs.File = %q, want %q", cfg.Logs.File, want)
	}
	if cfg.Logs.MaxSizeMB != 25 || cfg.Logs.MaxBackups != 5 || cfg.Logs.MaxAgeDays != 7 {
		t.Fatalf("log rotation defaults not applied: %+v", cfg.Logs)
	}
	if cfg.Metrics.Textfile != "/var/lib/node_exporter/flvctl.prom" {
		t.Fatalf("Metrics.Textfile = %q", cfg.Metrics.Textfile)
	}
	if want := filepath.Join(dir, "journal.jsonl"); cfg.Journal.Path != want {
		t.Fatalf("Journal.Path = %q, want %q", cfg.Journal.Path, want)
	}
}

func TestLoadRejectsUnknownField(t *testing.T) {
	path := writeConfig(t, "merge:\n  skipFrame: 10\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for misspelled field")
	}
}

func TestLoadRejectsBadPercent(t *testing.T) {
	path := writeConfig(t, "merge:\n  tailTolerancePercent: 120\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadKeepsZeroSkipFrames(t *testing.T) {
	cfg, err := Load(writeConfig(t, "merge:\n  skipFrames: 0\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Merge.SkipFrames == nil || *cfg.Merge.SkipFrames != 0 {
		t.Fatalf("SkipFrames = %v, want explicit 0", cfg.Merge.SkipFrames)
	}
	if _, err := Load(writeConfig(t, "merge:\n  skipFrames: -1\n")); err == nil {
		t.Fatal("expected error for negative skipFrames")
	}
}

func TestLoadOrDefaultEmptyPath(t *testing.T) {
	cfg, err := LoadOrDefault("  ")
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

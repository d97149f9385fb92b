package config

import (
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/diomeh/dsu/pkg/flagparse"
	"github.com/diomeh/dsu/pkg/plog"
)

func TestMain(m *testing.M) {
	plog.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestConfig_Validate(t *testing.T) {
	t.Run("Valid Default Config", func(t *testing.T) {
		cfg := NewDefault()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected default config to pass validation, but got error: %v", err)
		}
	})

	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"Invalid LogLevel", func(c *Config) { c.LogLevel = "loud" }, "logLevel"},
		{"Layout With Dot", func(c *Config) { c.Backup.TimestampLayout = "2006.01.02" }, "timestampLayout"},
		{"Empty Layout", func(c *Config) { c.Backup.TimestampLayout = "" }, "timestampLayout"},
		{"Zero Workers", func(c *Config) { c.Copy.Workers = 0 }, "copy.workers"},
		{"Zero Buffer", func(c *Config) { c.Copy.BufferSizeKB = 0 }, "copy.bufferSizeKB"},
		{"Negative Retry", func(c *Config) { c.Copy.RetryCount = -1 }, "copy.retryCount"},
		{"Negative Retry Wait", func(c *Config) { c.Copy.RetryWaitSeconds = -1 }, "copy.retryWaitSeconds"},
		{"Negative Depth", func(c *Config) { c.Cln.Depth = -1 }, "cln.depth"},
		{"Invalid Force", func(c *Config) { c.Cln.Force = "maybe" }, "cln.force"},
		{"Negative Limit", func(c *Config) { c.Hog.Limit = -1 }, "hog.limit"},
		{"Invalid Overwrite", func(c *Config) { c.Xtract.Overwrite = "update" }, "xtract.overwrite"},
		{"Invalid Format", func(c *Config) { c.Xtract.Format = "rar" }, "xtract format"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefault()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, but got nil")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %q", tc.wantErr, err.Error())
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("Missing File Returns Defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), ConfigFileName))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !reflect.DeepEqual(cfg, NewDefault()) {
			t.Errorf("expected default config, got %+v", cfg)
		}
	})

	t.Run("Partial File Keeps Defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ConfigFileName)
		content := `{"logLevel": "debug", "hog": {"limit": 3}}`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.LogLevel != "debug" || cfg.Hog.Limit != 3 {
			t.Errorf("file values not applied: %+v", cfg)
		}
		if cfg.Copy.BufferSizeKB != NewDefault().Copy.BufferSizeKB {
			t.Errorf("expected default buffer size to survive, got %d", cfg.Copy.BufferSizeKB)
		}
	})

	t.Run("Malformed File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ConfigFileName)
		if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Error("expected parse error, got nil")
		}
	})

	t.Run("Env Override", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.json")
		if err := os.WriteFile(path, []byte(`{"metrics": true}`), 0644); err != nil {
			t.Fatal(err)
		}
		t.Setenv(ConfigPathEnv, path)
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !cfg.Metrics {
			t.Error("expected config from the env path to be loaded")
		}
	})
}

func TestGenerate_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ConfigFileName)
	cfg := NewDefault()
	cfg.Cln.Depth = 4
	cfg.Xtract.Overwrite = "always"

	if err := Generate(path, cfg); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Cln.Depth != 4 || loaded.Xtract.Overwrite != "always" {
		t.Errorf("generated values not loaded back: %+v", loaded)
	}

	raw, _ := os.ReadFile(path)
	if strings.Contains(string(raw), "Runtime") || strings.Contains(string(raw), "Args") {
		t.Errorf("runtime fields must not be written: %s", raw)
	}
}

func TestMergeConfigWithFlags(t *testing.T) {
	base := NewDefault()

	t.Run("Backup Flags", func(t *testing.T) {
		flags := map[string]any{
			"source":           "notes.txt",
			"target":           "archive",
			"dry-run":          true,
			"workers":          8,
			"timestamp-layout": "2006-01-02",
			"verbose":          true,
		}
		merged := MergeConfigWithFlags(flagparse.Backup, base, flags)
		if merged.Args.Source != "notes.txt" || merged.Args.Target != "archive" {
			t.Errorf("positionals not merged: %+v", merged.Args)
		}
		if !merged.Runtime.DryRun || merged.Copy.Workers != 8 || merged.Backup.TimestampLayout != "2006-01-02" {
			t.Errorf("flags not merged: %+v", merged)
		}
		if merged.LogLevel != "debug" {
			t.Errorf("expected -v to select debug, got %q", merged.LogLevel)
		}
	})

	t.Run("Verbose Wins Over Log Level", func(t *testing.T) {
		// Map iteration order is random; repeat to cover both orders.
		for i := 0; i < 20; i++ {
			merged := MergeConfigWithFlags(flagparse.Copy, base, map[string]any{"verbose": true, "log-level": "warn"})
			if merged.LogLevel != "debug" {
				t.Fatalf("expected debug, got %q", merged.LogLevel)
			}
		}
		merged := MergeConfigWithFlags(flagparse.Copy, base, map[string]any{"verbose": false, "log-level": "warn"})
		if merged.LogLevel != "warn" {
			t.Errorf("expected -v=false to keep warn, got %q", merged.LogLevel)
		}
	})

	t.Run("Quiet", func(t *testing.T) {
		merged := MergeConfigWithFlags(flagparse.Hog, base, map[string]any{"quiet": true})
		if !merged.Runtime.Quiet {
			t.Error("expected quiet to be merged")
		}
	})

	t.Run("Hog Workers Do Not Touch Copy", func(t *testing.T) {
		merged := MergeConfigWithFlags(flagparse.Hog, base, map[string]any{"workers": 2, "limit": 5, "dir": "/var"})
		if merged.Hog.Workers != 2 || merged.Copy.Workers != base.Copy.Workers {
			t.Errorf("workers merged into the wrong block: hog=%d copy=%d", merged.Hog.Workers, merged.Copy.Workers)
		}
		if merged.Hog.Limit != 5 || merged.Args.Dir != "/var" {
			t.Errorf("hog flags not merged: %+v", merged)
		}
	})

	t.Run("Cln Flags", func(t *testing.T) {
		flags := map[string]any{"paths": []string{"a", "b"}, "recursive": false, "depth": 0, "force": "y"}
		merged := MergeConfigWithFlags(flagparse.Cln, base, flags)
		if !reflect.DeepEqual(merged.Args.Paths, []string{"a", "b"}) || merged.Cln.Recursive || merged.Cln.Depth != 0 || merged.Cln.Force != "y" {
			t.Errorf("cln flags not merged: %+v", merged)
		}
	})

	t.Run("Base Is Not Modified", func(t *testing.T) {
		MergeConfigWithFlags(flagparse.Xtract, base, map[string]any{"overwrite": "always"})
		if base.Xtract.Overwrite != "never" {
			t.Errorf("base config was mutated: %q", base.Xtract.Overwrite)
		}
	})
}

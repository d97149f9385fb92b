package cmd

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/diomeh/dsu/pkg/config"
	"github.com/diomeh/dsu/pkg/hints"
)

func TestPromptForConfirmation(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		prompt     string
		defaultYes bool
		want       bool
		wantPrompt string
	}{
		{"Explicit Yes", "y\n", "Continue?", false, true, "Continue? [y/N]: "},
		{"Explicit No", "n\n", "Continue?", true, false, "Continue? [Y/n]: "},
		{"Default Yes (Empty)", "\n", "Sure?", true, true, "Sure? [Y/n]: "},
		{"Default No (Empty)", "\n", "Sure?", false, false, "Sure? [y/N]: "},
		{"Default No (EOF)", "", "Sure?", false, false, "Sure? [y/N]: "},
		{"Case Insensitive", "YES\n", "Go?", false, true, "Go? [y/N]: "},
		{"Whitespace Handling", "   y   \n", "Clean?", false, true, "Clean? [y/N]: "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out := isolate(t, tt.input)
			got := PromptForConfirmation(tt.prompt, tt.defaultYes)
			if got != tt.want {
				t.Errorf("PromptForConfirmation() = %v, want %v", got, tt.want)
			}
			if !strings.Contains(out.String(), tt.wantPrompt) {
				t.Errorf("Output = %q, want substring %q", out.String(), tt.wantPrompt)
			}
		})
	}
}

func TestRunInit(t *testing.T) {
	t.Run("Creates File With Flags", func(t *testing.T) {
		configPath, _ := isolate(t, "")
		if err := RunInit(context.Background(), map[string]any{"workers": 8}); err != nil {
			t.Fatalf("RunInit failed: %v", err)
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			t.Fatalf("failed to load generated config: %v", err)
		}
		if cfg.Copy.Workers != 8 {
			t.Errorf("expected workers 8, got %d", cfg.Copy.Workers)
		}
	})

	t.Run("Keeps Existing Settings", func(t *testing.T) {
		configPath, _ := isolate(t, "")
		if err := RunInit(context.Background(), map[string]any{"workers": 8}); err != nil {
			t.Fatal(err)
		}
		if err := RunInit(context.Background(), map[string]any{"retry-count": 5}); err != nil {
			t.Fatal(err)
		}
		cfg, _ := config.Load(configPath)
		if cfg.Copy.Workers != 8 || cfg.Copy.RetryCount != 5 {
			t.Errorf("expected workers 8 and retries 5, got %d and %d", cfg.Copy.Workers, cfg.Copy.RetryCount)
		}
	})

	t.Run("Default With Force Resets", func(t *testing.T) {
		configPath, _ := isolate(t, "")
		if err := RunInit(context.Background(), map[string]any{"workers": 8}); err != nil {
			t.Fatal(err)
		}
		if err := RunInit(context.Background(), map[string]any{"default": true, "force": true}); err != nil {
			t.Fatal(err)
		}
		cfg, _ := config.Load(configPath)
		if cfg.Copy.Workers != config.NewDefault().Copy.Workers {
			t.Errorf("expected default workers, got %d", cfg.Copy.Workers)
		}
	})

	t.Run("Default Declined", func(t *testing.T) {
		configPath, out := isolate(t, "n\n")
		if err := RunInit(context.Background(), map[string]any{"workers": 8}); err != nil {
			t.Fatal(err)
		}
		err := RunInit(context.Background(), map[string]any{"default": true})
		if !errors.Is(err, ErrInitCanceled) || !hints.IsHint(err) {
			t.Fatalf("expected the cancel hint, got %v", err)
		}
		if !strings.Contains(out.String(), "already exists") {
			t.Errorf("expected a warning, got %q", out.String())
		}
		cfg, _ := config.Load(configPath)
		if cfg.Copy.Workers != 8 {
			t.Errorf("declined reset must keep the file, got workers %d", cfg.Copy.Workers)
		}
	})

	t.Run("Dry Run Prints Config", func(t *testing.T) {
		configPath, out := isolate(t, "")
		if err := RunInit(context.Background(), map[string]any{"dry-run": true}); err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(configPath); !os.IsNotExist(err) {
			t.Error("dry run must not write the config file")
		}
		if !strings.Contains(out.String(), `"copy"`) {
			t.Errorf("expected the config JSON on stdout, got %q", out.String())
		}
	})

	t.Run("Invalid Value", func(t *testing.T) {
		isolate(t, "")
		err := RunInit(context.Background(), map[string]any{"overwrite": "sometimes"})
		if err == nil {
			t.Fatal("expected a validation error")
		}
	})
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/diomeh/dsu/pkg/buildinfo"
	"github.com/diomeh/dsu/pkg/config"
	"github.com/diomeh/dsu/pkg/flagparse"
	"github.com/diomeh/dsu/pkg/hints"
	"github.com/diomeh/dsu/pkg/plog"
)

// ErrInitCanceled is reported when the user declines to reset the config file.
var ErrInitCanceled = hints.New(buildinfo.Name + " init operation canceled")

// RunInit handles the logic for the 'init' command.
func RunInit(ctx context.Context, flagMap map[string]any) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	path, err := config.DefaultPath()
	if err != nil {
		return err
	}

	initDefault, _ := flagMap["default"].(bool)
	force, _ := flagMap["force"].(bool)

	var baseConfig config.Config
	if initDefault {
		baseConfig = config.NewDefault()
	} else {
		// Keep the existing settings. A broken file is replaced by defaults.
		baseConfig, err = config.Load(path)
		if err != nil {
			plog.Warn("Could not load existing configuration, starting with defaults.", "reason", err)
			baseConfig = config.NewDefault()
		}
	}

	// Create a config from base merged with user flags.
	runConfig := config.MergeConfigWithFlags(flagparse.Init, baseConfig, flagMap)
	if err := runConfig.Validate(); err != nil {
		return err
	}
	plog.SetLevel(plog.LevelFromString(runConfig.LogLevel))
	plog.SetQuiet(runConfig.Runtime.Quiet)

	if runConfig.Runtime.DryRun {
		jsonData, err := json.MarshalIndent(runConfig, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config to JSON: %w", err)
		}
		fmt.Fprintln(stdout, string(jsonData))
		plog.Notice("[DRY RUN] Configuration not written", "path", path)
		return nil
	}

	if initDefault && !force {
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(stdout, "WARNING: Configuration file already exists at %s.\n", path)
			fmt.Fprintf(stdout, "Using -default will overwrite it with default values. All custom settings will be lost.\n")
			if !PromptForConfirmation("Are you sure you want to continue?", false) {
				return ErrInitCanceled
			}
		}
	}

	if err := config.Generate(path, runConfig); err != nil {
		return fmt.Errorf("failed to generate config file: %w", err)
	}
	return nil
}

// PromptForConfirmation prompts the user for a yes/no response.
func PromptForConfirmation(prompt string, defaultYes bool) bool {
	suffix := "[y/N]"
	if defaultYes {
		suffix = "[Y/n]"
	}
	fmt.Fprintf(stdout, "%s %s: ", prompt, suffix)

	var response string
	_, _ = fmt.Fscanln(stdin, &response)
	response = strings.ToLower(strings.TrimSpace(response))

	if response == "" {
		return defaultYes
	}
	return response == "y" || response == "yes"
}

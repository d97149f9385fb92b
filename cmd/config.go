package cmd

import (
	"fmt"

	"github.com/diomeh/dsu/pkg/config"
	"github.com/diomeh/dsu/pkg/flagparse"
	"github.com/diomeh/dsu/pkg/plog"
)

// loadRunConfig loads the config file, merges the user's flags over it and
// validates the result. It also applies the configured log level.
func loadRunConfig(command flagparse.Command, flagMap map[string]any) (config.Config, error) {
	loadedConfig, err := config.Load("")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Merge the flag values over the loaded config to get the final run config.
	runConfig := config.MergeConfigWithFlags(command, loadedConfig, flagMap)

	// CRITICAL: Validate the config for the run
	if err := runConfig.Validate(); err != nil {
		return config.Config{}, err
	}

	// Set the global log level based on the final configuration.
	plog.SetLevel(plog.LevelFromString(runConfig.LogLevel))
	plog.SetQuiet(runConfig.Runtime.Quiet)

	runConfig.LogSummary(command)
	return runConfig, nil
}

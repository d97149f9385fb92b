package cmd

import (
	"context"
	"time"

	"github.com/diomeh/dsu/pkg/buildinfo"
	"github.com/diomeh/dsu/pkg/engine"
	"github.com/diomeh/dsu/pkg/flagparse"
	"github.com/diomeh/dsu/pkg/pathcompression"
	"github.com/diomeh/dsu/pkg/pathcopy"
	"github.com/diomeh/dsu/pkg/planner"
	"github.com/diomeh/dsu/pkg/plog"
	"github.com/diomeh/dsu/pkg/preflight"
)

// RunBackup handles the logic for the backup command.
func RunBackup(ctx context.Context, flagMap map[string]any) error {
	runConfig, err := loadRunConfig(flagparse.Backup, flagMap)
	if err != nil {
		return err
	}

	// Create the runner and feed it with our leaf workers
	runner := engine.NewRunner(
		preflight.NewValidator(),
		pathcopy.NewPathCopier(runConfig.Copy.BufferSizeKB),
		pathcompression.NewPathExtractor(runConfig.Copy.BufferSizeKB),
	)
	runner.Out = stdout

	// Get the Plan
	backupPlan, err := planner.GenerateBackupPlan(runConfig)
	if err != nil {
		return err
	}

	// Execute the plan
	startTime := time.Now()
	destination, err := runner.ExecuteBackup(ctx, runConfig.Args.Source, runConfig.Args.Target, backupPlan)
	duration := time.Since(startTime).Round(time.Millisecond)
	if err != nil {
		return err // The error is printed by main()
	}
	plog.Info(buildinfo.Name+" backup finished successfully.", "backup", destination, "duration", duration)
	return nil
}

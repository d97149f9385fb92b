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

// RunRestore handles the logic for the restore command.
func RunRestore(ctx context.Context, flagMap map[string]any) error {
	runConfig, err := loadRunConfig(flagparse.Restore, flagMap)
	if err != nil {
		return err
	}

	runner := engine.NewRunner(
		preflight.NewValidator(),
		pathcopy.NewPathCopier(runConfig.Copy.BufferSizeKB),
		pathcompression.NewPathExtractor(runConfig.Copy.BufferSizeKB),
	)
	runner.Out = stdout

	restorePlan, err := planner.GenerateRestorePlan(runConfig)
	if err != nil {
		return err
	}

	startTime := time.Now()
	destination, err := runner.ExecuteRestore(ctx, runConfig.Args.Source, runConfig.Args.Target, restorePlan)
	duration := time.Since(startTime).Round(time.Millisecond)
	if err != nil {
		return err
	}
	plog.Info(buildinfo.Name+" restore finished successfully.", "restored", destination, "duration", duration)
	return nil
}

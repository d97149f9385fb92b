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

// RunXtract handles the logic for the xtract command.
func RunXtract(ctx context.Context, flagMap map[string]any) error {
	runConfig, err := loadRunConfig(flagparse.Xtract, flagMap)
	if err != nil {
		return err
	}

	runner := engine.NewRunner(
		preflight.NewValidator(),
		pathcopy.NewPathCopier(runConfig.Copy.BufferSizeKB),
		pathcompression.NewPathExtractor(runConfig.Copy.BufferSizeKB),
	)
	runner.Out = stdout

	extractPlan, err := planner.GenerateExtractPlan(runConfig)
	if err != nil {
		return err
	}

	startTime := time.Now()
	target, err := runner.ExecuteExtract(ctx, runConfig.Args.Archive, runConfig.Args.Target, extractPlan)
	duration := time.Since(startTime).Round(time.Millisecond)
	if err != nil {
		return err
	}
	plog.Info(buildinfo.Name+" extraction finished successfully.", "target", target, "duration", duration)
	return nil
}

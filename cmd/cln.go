package cmd

import (
	"context"
	"os"
	"time"

	"github.com/diomeh/dsu/pkg/buildinfo"
	"github.com/diomeh/dsu/pkg/flagparse"
	"github.com/diomeh/dsu/pkg/hints"
	"github.com/diomeh/dsu/pkg/pathclean"
	"github.com/diomeh/dsu/pkg/planner"
	"github.com/diomeh/dsu/pkg/plog"
)

// ErrNothingToClean is reported when every name was already clean.
var ErrNothingToClean = hints.New("no file names needed cleaning")

// RunCln handles the logic for the cln command.
func RunCln(ctx context.Context, flagMap map[string]any) error {
	runConfig, err := loadRunConfig(flagparse.Cln, flagMap)
	if err != nil {
		return err
	}

	paths := runConfig.Args.Paths
	if len(paths) == 0 {
		paths = []string{"."}
	}

	cleanPlan, err := planner.GenerateCleanPlan(runConfig)
	if err != nil {
		return err
	}

	cleaner := pathclean.NewPathCleaner(stdin, stdout, pathclean.IsInteractive(os.Stdin))

	startTime := time.Now()
	res, err := cleaner.Clean(ctx, paths, cleanPlan.Clean)
	duration := time.Since(startTime).Round(time.Millisecond)
	if err != nil {
		return err
	}
	if res.Renamed == 0 && res.Skipped == 0 {
		return ErrNothingToClean
	}
	plog.Info(buildinfo.Name+" cln finished successfully.", "renamed", res.Renamed, "skipped", res.Skipped, "duration", duration)
	return nil
}

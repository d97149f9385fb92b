package cmd

import (
	"context"
	"fmt"

	"github.com/diomeh/dsu/pkg/diskusage"
	"github.com/diomeh/dsu/pkg/flagparse"
	"github.com/diomeh/dsu/pkg/planner"
)

// RunHog handles the logic for the hog command. It prints one
// "<size>\t<name>" line per entry, largest first.
func RunHog(ctx context.Context, flagMap map[string]any) error {
	runConfig, err := loadRunConfig(flagparse.Hog, flagMap)
	if err != nil {
		return err
	}

	dir := runConfig.Args.Dir
	if dir == "" {
		dir = "."
	}

	hogPlan, err := planner.GenerateHogPlan(runConfig)
	if err != nil {
		return err
	}

	entries, err := diskusage.NewAnalyzer(hogPlan.Workers).Top(ctx, dir, hogPlan.Limit)
	if err != nil {
		return err
	}
	for _, e := range entries {
		name := e.Name
		if e.IsDir {
			name += "/"
		}
		if _, err := fmt.Fprintf(stdout, "%s\t%s\n", diskusage.FormatSize(e.Size, hogPlan.HumanReadable), name); err != nil {
			return err
		}
	}
	return nil
}

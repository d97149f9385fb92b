package planner

import (
	"time"

	"github.com/diomeh/dsu/pkg/config"
	"github.com/diomeh/dsu/pkg/pathclean"
	"github.com/diomeh/dsu/pkg/pathcompression"
	"github.com/diomeh/dsu/pkg/pathcopy"
	"github.com/diomeh/dsu/pkg/preflight"
)

type BackupPlan struct {
	DryRun  bool
	Metrics bool

	TimestampLayout string

	Preflight *preflight.Plan
	Copy      *pathcopy.Plan
}

type RestorePlan struct {
	DryRun  bool
	Metrics bool

	TimestampLayout string

	Preflight *preflight.Plan
	Copy      *pathcopy.Plan
}

type ExtractPlan struct {
	DryRun  bool
	Metrics bool

	Preflight *preflight.Plan
	Extract   *pathcompression.ExtractPlan
}

type CleanPlan struct {
	DryRun bool

	Clean *pathclean.Plan
}

type HogPlan struct {
	Limit         int
	HumanReadable bool
	Workers       int
}

func generateCopyPlan(cfg config.Config) *pathcopy.Plan {
	return &pathcopy.Plan{
		Workers:    cfg.Copy.Workers,
		RetryCount: cfg.Copy.RetryCount,
		RetryWait:  time.Duration(cfg.Copy.RetryWaitSeconds) * time.Second,
		// Global Flags
		DryRun:  cfg.Runtime.DryRun,
		Metrics: cfg.Metrics,
	}
}

func GenerateBackupPlan(cfg config.Config) (*BackupPlan, error) {
	return &BackupPlan{
		DryRun:          cfg.Runtime.DryRun,
		Metrics:         cfg.Metrics,
		TimestampLayout: cfg.Backup.TimestampLayout,
		Preflight:       &preflight.Plan{DryRun: cfg.Runtime.DryRun},
		Copy:            generateCopyPlan(cfg),
	}, nil
}

func GenerateRestorePlan(cfg config.Config) (*RestorePlan, error) {
	return &RestorePlan{
		DryRun:          cfg.Runtime.DryRun,
		Metrics:         cfg.Metrics,
		TimestampLayout: cfg.Backup.TimestampLayout,
		Preflight:       &preflight.Plan{DryRun: cfg.Runtime.DryRun},
		Copy:            generateCopyPlan(cfg),
	}, nil
}

func GenerateExtractPlan(cfg config.Config) (*ExtractPlan, error) {
	overwrite, err := pathcompression.ParseOverwriteBehavior(cfg.Xtract.Overwrite)
	if err != nil {
		return nil, err
	}

	var format pathcompression.Format
	if cfg.Xtract.Format != "" {
		if format, err = pathcompression.ParseFormat(cfg.Xtract.Format); err != nil {
			return nil, err
		}
	}

	return &ExtractPlan{
		DryRun:    cfg.Runtime.DryRun,
		Metrics:   cfg.Metrics,
		Preflight: &preflight.Plan{DryRun: cfg.Runtime.DryRun},
		Extract: &pathcompression.ExtractPlan{
			Format:        format,
			Overwrite:     overwrite,
			ModTimeWindow: time.Duration(cfg.Xtract.ModTimeWindowSeconds) * time.Second,
			// Global Flags
			DryRun:  cfg.Runtime.DryRun,
			Metrics: cfg.Metrics,
		},
	}, nil
}

func GenerateCleanPlan(cfg config.Config) (*CleanPlan, error) {
	force, err := pathclean.ParseForce(cfg.Cln.Force)
	if err != nil {
		return nil, err
	}
	return &CleanPlan{
		DryRun: cfg.Runtime.DryRun,
		Clean: &pathclean.Plan{
			Recursive: cfg.Cln.Recursive,
			Depth:     cfg.Cln.Depth,
			Force:     force,
			DryRun:    cfg.Runtime.DryRun,
		},
	}, nil
}

func GenerateHogPlan(cfg config.Config) (*HogPlan, error) {
	return &HogPlan{
		Limit:         cfg.Hog.Limit,
		HumanReadable: cfg.Hog.HumanReadable,
		Workers:       cfg.Hog.Workers,
	}, nil
}

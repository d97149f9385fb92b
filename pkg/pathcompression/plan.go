package pathcompression

import "time"

// ExtractPlan holds the options of one extraction.
type ExtractPlan struct {
	// Format forces the archive format; empty means detect.
	Format        Format
	Overwrite     OverwriteBehavior
	ModTimeWindow time.Duration

	// Global Flags
	DryRun  bool
	Metrics bool
}

package pathcopy

import "time"

type Plan struct {
	// Workers bounds the number of concurrent file copies. Values < 1 mean 1.
	Workers    int
	RetryCount int
	RetryWait  time.Duration

	// Global Flags
	DryRun  bool
	Metrics bool
}

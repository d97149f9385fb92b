package pathclean

type Plan struct {
	Recursive bool
	// Depth limits how far below each path entries are cleaned. 0 is unlimited.
	Depth int
	Force Force

	DryRun bool
}

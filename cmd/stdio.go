package cmd

import (
	"io"
	"os"
)

// Standard streams of the commands, swapped in tests.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
)

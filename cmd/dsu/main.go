package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/diomeh/dsu/cmd"
	"github.com/diomeh/dsu/pkg/buildinfo"
	"github.com/diomeh/dsu/pkg/flagparse"
	"github.com/diomeh/dsu/pkg/hints"
	"github.com/diomeh/dsu/pkg/plog"
)

// run encapsulates the main application logic and returns an error if something
// goes wrong, allowing the main function to handle exit codes.
func run(ctx context.Context) error {
	command, flagMap, err := flagparse.Parse(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	plog.Debug("Starting "+buildinfo.Name, "command", command, "version", buildinfo.Version, "pid", os.Getpid())

	switch command {
	case flagparse.None:
		return nil // Usage was printed.
	case flagparse.Backup:
		return cmd.RunBackup(ctx, flagMap)
	case flagparse.Restore:
		return cmd.RunRestore(ctx, flagMap)
	case flagparse.Cln:
		return cmd.RunCln(ctx, flagMap)
	case flagparse.Copy:
		return cmd.RunCopy(ctx, flagMap)
	case flagparse.Hog:
		return cmd.RunHog(ctx, flagMap)
	case flagparse.Paste:
		return cmd.RunPaste(ctx, flagMap)
	case flagparse.Xtract:
		return cmd.RunXtract(ctx, flagMap)
	case flagparse.Init:
		return cmd.RunInit(ctx, flagMap)
	case flagparse.Version:
		return cmd.RunVersion(os.Stdout)
	default:
		return fmt.Errorf("internal error: unknown command %d", command)
	}
}

func main() {
	// Set up a context that is canceled when an interrupt signal is received.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if code := handleErr(os.Stderr, run(ctx)); code != 0 {
		os.Exit(code)
	}
}

// handleErr reports err on w and returns the process exit code. Hints are
// logged and count as success.
func handleErr(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	if hints.IsHint(err) {
		plog.Info(err.Error())
		return 0
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	return 1
}

package cmd

import (
	"context"

	"github.com/diomeh/dsu/pkg/clipboard"
	"github.com/diomeh/dsu/pkg/flagparse"
	"github.com/diomeh/dsu/pkg/hints"
	"github.com/diomeh/dsu/pkg/plog"
)

// ErrClipboardEmpty is reported by paste when there is nothing to paste.
var ErrClipboardEmpty = hints.New("clipboard is empty")

// newClipboard is swapped in tests.
var newClipboard = clipboard.New

// RunCopy handles the logic for the copy command.
func RunCopy(ctx context.Context, flagMap map[string]any) error {
	if _, err := loadRunConfig(flagparse.Copy, flagMap); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	n, err := newClipboard().Copy(stdin)
	if err != nil {
		return err
	}
	plog.Debug("Copied to clipboard", "bytes", n)
	return nil
}

// RunPaste handles the logic for the paste command.
func RunPaste(ctx context.Context, flagMap map[string]any) error {
	if _, err := loadRunConfig(flagparse.Paste, flagMap); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	n, err := newClipboard().Paste(stdout)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrClipboardEmpty
	}
	plog.Debug("Pasted from clipboard", "bytes", n)
	return nil
}

// Package preflight validates the source and target of an operation before any
// copy-like work starts. Validation is read-only except for one step: a target
// that does not exist and looks like a directory is created, unless the run is
// a dry run, in which case the creation is only reported as a planned Action.
package preflight

import (
	"context"
	"fmt"
	"os"

	"github.com/diomeh/dsu/pkg/plog"
	"github.com/diomeh/dsu/pkg/util"
)

// DefaultTarget is the resolved target when none is given.
const DefaultTarget = "."

// IsReadable reports whether path exists and its owner-read bit is set.
// It never fails: a path that cannot be stat'ed is simply not readable.
func IsReadable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return util.HasUserReadPermission(info.Mode().Perm())
}

// Validator resolves and checks source/target pairs.
type Validator struct {
	// mkdirAll is swappable in tests to simulate creation failures.
	mkdirAll func(path string, perm os.FileMode) error
}

// NewValidator creates a Validator backed by the real filesystem.
func NewValidator() *Validator {
	return &Validator{mkdirAll: os.MkdirAll}
}

// Validate is a convenience wrapper around NewValidator().Run.
func Validate(source, target string, dryRun bool) (Result, error) {
	return NewValidator().Run(context.Background(), source, target, &Plan{DryRun: dryRun})
}

// Run checks source and resolves target. An empty target resolves to the
// current directory. Checks run in a fixed order and the first failure is
// returned:
//  1. the source must be readable (also in dry-run mode);
//  2. a missing target without an extension is created with its ancestors
//     (dry run: planned only); a missing target with an extension is kept as
//     a prospective file path;
//  3. outside dry-run mode the resolved target must be readable;
//  4. the resolved target must differ textually from the source.
//
// Different spellings of the same path (relative vs absolute, symlinks) are
// not detected by step 4.
func (v *Validator) Run(ctx context.Context, source, target string, p *Plan) (Result, error) {
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	default:
	}

	plog.Debug("Validating paths", "source", source, "target", target, "dryRun", p.DryRun)

	if !IsReadable(source) {
		return Result{}, fmt.Errorf("%w: %s", ErrSourceUnreadable, source)
	}

	res := Result{Source: source, Target: DefaultTarget}
	if target != "" {
		res.Target = target
		action, err := v.ensureTarget(target, p.DryRun)
		if err != nil {
			return Result{}, err
		}
		if action != nil {
			res.Actions = append(res.Actions, *action)
		}
	}

	if !p.DryRun && !IsReadable(res.Target) {
		return Result{}, fmt.Errorf("%w: %s", ErrTargetUnreadable, res.Target)
	}

	if source == res.Target {
		return Result{}, fmt.Errorf("%w: %s", ErrSameSourceAndTarget, source)
	}

	return res, nil
}

// ensureTarget creates a missing, extension-less target directory. It returns
// the action taken or planned, or nil when the target needs no change.
func (v *Validator) ensureTarget(target string, dryRun bool) (*Action, error) {
	// Any stat failure counts as "does not exist"; a permission problem
	// then surfaces as a creation failure.
	if _, err := os.Stat(target); err == nil {
		return nil, nil
	}
	if util.HasExtension(target) {
		return nil, nil
	}

	if dryRun {
		plog.Debug("[DRY RUN] Target directory does not exist", "path", target)
		return &Action{Kind: ActionCreateDir, Path: target, DryRun: true}, nil
	}

	if err := v.mkdirAll(target, util.UserWritableDirPerms); err != nil {
		return nil, &DirectoryCreationError{Path: target, Err: err}
	}
	plog.Debug("Created target directory", "path", target)
	return &Action{Kind: ActionCreateDir, Path: target}, nil
}

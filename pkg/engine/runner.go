// Package engine runs the copy-like operations of dsu: it validates the
// source and target, reports the filesystem changes made during validation,
// works out the destination and hands the work to a leaf worker.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/diomeh/dsu/pkg/backupname"
	"github.com/diomeh/dsu/pkg/pathcompression"
	"github.com/diomeh/dsu/pkg/pathcopy"
	"github.com/diomeh/dsu/pkg/planner"
	"github.com/diomeh/dsu/pkg/plog"
	"github.com/diomeh/dsu/pkg/preflight"
)

// ErrTargetIsFile is returned when the target is an existing regular file
// where a directory or a new path is required.
var ErrTargetIsFile = errors.New("target is an existing file")

// Validator resolves and checks a source/target pair.
type Validator interface {
	Run(ctx context.Context, source, target string, p *preflight.Plan) (preflight.Result, error)
}

// Copier copies a path to an exact destination.
type Copier interface {
	Copy(ctx context.Context, absSrcPath, absTrgPath string, p *pathcopy.Plan) error
}

// Extractor unpacks an archive into a directory.
type Extractor interface {
	Extract(ctx context.Context, absArchivePath, absTargetDir string, p *pathcompression.ExtractPlan) error
}

// Runner validates paths and dispatches backup, restore and extraction work.
type Runner struct {
	validator Validator
	copier    Copier
	extractor Extractor

	// Out receives the rendered validation actions. Defaults to os.Stdout.
	Out io.Writer

	now func() time.Time
}

// NewRunner creates a runner fed with its leaf workers.
func NewRunner(validator Validator, copier Copier, extractor Extractor) *Runner {
	return &Runner{
		validator: validator,
		copier:    copier,
		extractor: extractor,
		Out:       os.Stdout,
		now:       time.Now,
	}
}

// ExecuteBackup copies source to a timestamped backup and returns the
// backup's path. With a directory target the backup is created inside it;
// with a missing file-like target the target itself becomes the backup.
func (r *Runner) ExecuteBackup(ctx context.Context, source, target string, p *planner.BackupPlan) (string, error) {
	// Check for cancellation at the very beginning.
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	res, err := r.validate(ctx, source, target, p.Preflight)
	if err != nil {
		return "", err
	}

	absSourcePath, err := filepath.Abs(res.Source)
	if err != nil {
		return "", fmt.Errorf("could not determine absolute source path for %s: %w", res.Source, err)
	}
	name := backupname.Format(filepath.Base(absSourcePath), r.now(), p.TimestampLayout)

	destination, err := resolveDestination(res, name)
	if err != nil {
		return "", err
	}

	plog.Info("Starting backup", "source", res.Source, "destination", destination)
	if err := r.copy(ctx, absSourcePath, destination, p.Copy); err != nil {
		return "", fmt.Errorf("backup of %s failed: %w", res.Source, err)
	}
	if p.DryRun {
		plog.Notice("[DRY RUN] Backup planned", "destination", destination)
	}
	return destination, nil
}

// ExecuteRestore copies a backup back under its original name and returns
// the restored path. Existing files at the destination are overwritten.
func (r *Runner) ExecuteRestore(ctx context.Context, source, target string, p *planner.RestorePlan) (string, error) {
	// Check for cancellation at the very beginning.
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	res, err := r.validate(ctx, source, target, p.Preflight)
	if err != nil {
		return "", err
	}

	absSourcePath, err := filepath.Abs(res.Source)
	if err != nil {
		return "", fmt.Errorf("could not determine absolute source path for %s: %w", res.Source, err)
	}
	original, ts, err := backupname.Parse(filepath.Base(absSourcePath), p.TimestampLayout)
	if err != nil {
		return "", err
	}

	destination, err := resolveDestination(res, original)
	if err != nil {
		return "", err
	}

	plog.Info("Starting restore", "source", res.Source, "destination", destination, "backupTime", ts.Format(time.DateTime))
	if err := r.copy(ctx, absSourcePath, destination, p.Copy); err != nil {
		return "", fmt.Errorf("restore of %s failed: %w", res.Source, err)
	}
	if p.DryRun {
		plog.Notice("[DRY RUN] Restore planned", "destination", destination)
	}
	return destination, nil
}

// ExecuteExtract unpacks archive into target and returns the extraction directory.
func (r *Runner) ExecuteExtract(ctx context.Context, archive, target string, p *planner.ExtractPlan) (string, error) {
	// Check for cancellation at the very beginning.
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	res, err := r.validate(ctx, archive, target, p.Preflight)
	if err != nil {
		return "", err
	}

	if info, err := os.Stat(res.Target); err == nil && !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrTargetIsFile, res.Target)
	}

	absArchivePath, err := filepath.Abs(res.Source)
	if err != nil {
		return "", fmt.Errorf("could not determine absolute archive path for %s: %w", res.Source, err)
	}
	absTargetPath, err := filepath.Abs(res.Target)
	if err != nil {
		return "", fmt.Errorf("could not determine absolute target path for %s: %w", res.Target, err)
	}

	if err := r.extractor.Extract(ctx, absArchivePath, absTargetPath, p.Extract); err != nil {
		return "", err
	}
	return res.Target, nil
}

// validate runs the validator and prints the actions it took or planned.
func (r *Runner) validate(ctx context.Context, source, target string, p *preflight.Plan) (preflight.Result, error) {
	res, err := r.validator.Run(ctx, source, target, p)
	if err != nil {
		return preflight.Result{}, fmt.Errorf("preflight failed: %w", err)
	}
	for _, a := range res.Actions {
		fmt.Fprintln(r.Out, a.String())
	}
	return res, nil
}

func (r *Runner) copy(ctx context.Context, absSourcePath, destination string, p *pathcopy.Plan) error {
	absDestination, err := filepath.Abs(destination)
	if err != nil {
		return fmt.Errorf("could not determine absolute destination path for %s: %w", destination, err)
	}
	return r.copier.Copy(ctx, absSourcePath, absDestination, p)
}

// resolveDestination places name inside a directory target, or uses a
// missing file-like target as the destination itself.
func resolveDestination(res preflight.Result, name string) (string, error) {
	if res.CreatedTargetDir() || res.Target == preflight.DefaultTarget {
		return filepath.Join(res.Target, name), nil
	}

	info, err := os.Stat(res.Target)
	switch {
	case err == nil && info.IsDir():
		return filepath.Join(res.Target, name), nil
	case err == nil:
		return "", fmt.Errorf("%w: %s", ErrTargetIsFile, res.Target)
	case os.IsNotExist(err):
		return res.Target, nil
	default:
		return "", fmt.Errorf("cannot stat target %s: %w", res.Target, err)
	}
}

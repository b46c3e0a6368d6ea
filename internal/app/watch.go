package app

import (
	"context"
	"path/filepath"

	"github.com/specialistvlad/modgen/internal/ctxlog"
	"github.com/specialistvlad/modgen/internal/descriptor"
	"github.com/specialistvlad/modgen/internal/runstate"
	"github.com/specialistvlad/modgen/internal/watch"
	"go.uber.org/multierr"
)

// ResultFunc receives the result of every run performed in watch mode.
type ResultFunc func(outcome runstate.Outcome, err error)

// Watch runs once and then again every time a descriptor below the scan
// root changes, until ctx is cancelled. Failed runs are reported to
// onResult and do not stop watching.
func (a *App) Watch(ctx context.Context, onResult ResultFunc) (err error) {
	ctx = a.Context(ctx)
	logger := ctxlog.FromContext(ctx)

	root, err := filepath.Abs(a.config.ScanDir)
	if err != nil {
		return err
	}
	project, err := descriptor.LoadProject(root)
	if err != nil {
		return err
	}

	opts := watch.DefaultOptions()
	opts.Ignore = []string{a.layout(project).Out}
	w, err := watch.New(root, opts)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, w.Close())
	}()

	onResult(a.Run(ctx))
	logger.Info("Watching for descriptor changes.", "root", root)

	return w.Run(ctx, func(ctx context.Context, changed []string) error {
		logger.Info("Descriptors changed, running again.", "files", len(changed))
		onResult(a.Run(ctx))
		return nil
	})
}

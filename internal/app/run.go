package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/specialistvlad/modgen/internal/ctxlog"
	"github.com/specialistvlad/modgen/internal/detector"
	"github.com/specialistvlad/modgen/internal/emitter"
	"github.com/specialistvlad/modgen/internal/metastore"
	"github.com/specialistvlad/modgen/internal/model"
	"github.com/specialistvlad/modgen/internal/processor"
	"github.com/specialistvlad/modgen/internal/runstate"
)

// Report describes a completed run.
type Report struct {
	Outcome runstate.Outcome
	Flags   runstate.Flags
	// Sorted is the emission order.
	Sorted []string
	// Regenerated lists the targets whose description was refreshed.
	Regenerated []string
	MetaWritten bool
}

// Run performs one orchestration pass and reports its outcome.
//
// RegenerationRequired is a normal outcome, not an error. Any returned error
// is fatal and the meta store is left as it was before the run.
func (a *App) Run(ctx context.Context) (runstate.Outcome, error) {
	report, err := a.Execute(ctx)
	if err != nil {
		return runstate.Proceed, err
	}
	return report.Outcome, nil
}

// Execute is Run with the full report.
func (a *App) Execute(ctx context.Context) (*Report, error) {
	logger := a.logger.With("run_id", uuid.NewString())
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("App.Run method started.", "scan_dir", a.config.ScanDir)

	state := runstate.New()

	scan, err := a.loader.Load(ctx, a.config.ScanDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load descriptors: %w", err)
	}
	layout := a.layout(scan.Project)
	logger.Debug("Descriptors loaded.", "targets", scan.Graph.Len(), "out_dir", layout.Out)

	store := metastore.New(layout.Cache)
	rec, err := store.Load(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("failed to load meta store: %w", err)
	}
	if state.MetaMissing() {
		logger.Info("No previous state found, generating from scratch.")
		if err := state.Advance(runstate.PhaseCold); err != nil {
			return nil, err
		}
	}
	if err := state.Advance(runstate.PhaseScanning); err != nil {
		return nil, err
	}

	if a.config.Clean {
		logger.Info("Clean requested, previous builds will be deleted.")
		state.MarkDeleteBuilds()
		state.MarkFullRegenerate()
		state.MarkDirty()
	}

	det := detector.New(rec, state)
	det.ReconcileCompiler(ctx, metastore.CompilerIdentity{
		Name:    a.config.CompilerName,
		Version: a.config.CompilerVersion,
	})
	det.ReconcileProject(ctx, scan.Project.Digest)
	det.ReconcileAll(ctx, scan.Graph)

	em := emitter.New(emitter.Config{
		GenDir:          layout.Gen,
		FetchDir:        layout.Fetch,
		Fetcher:         a.fetcher,
		SkipFetchBuilds: a.config.SkipFetchBuilds,
	})
	if state.DeleteBuilds() {
		if _, err := em.DeleteBuilds(ctx, layout.Build); err != nil {
			return nil, err
		}
	}

	if err := state.Advance(runstate.PhaseProcessing); err != nil {
		return nil, err
	}
	proc := processor.New(scan.Graph, state, em, processor.Options{
		Strict:  a.config.Strict,
		Workers: a.config.Workers,
	})
	sorted, err := proc.ProcessAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("processing failed: %w", err)
	}

	listMissing, err := missing(filepath.Join(layout.Gen, emitter.ModuleListFile))
	if err != nil {
		return nil, err
	}
	if state.IsDirty() || listMissing {
		if err := em.WriteModuleList(ctx, scan.Graph, sorted); err != nil {
			return nil, fmt.Errorf("failed to write module list: %w", err)
		}
	}

	written, err := store.Persist(ctx, rec, state)
	if err != nil {
		return nil, err
	}

	outcome, err := state.Decide()
	if err != nil {
		return nil, err
	}
	report := &Report{
		Outcome:     outcome,
		Flags:       state.Snapshot(),
		Sorted:      sorted,
		Regenerated: regenerated(scan.Graph),
		MetaWritten: written,
	}
	logger.Info("Run finished.",
		"outcome", outcome.String(),
		"targets", len(sorted),
		"regenerated", len(report.Regenerated),
		"dirty", report.Flags.IsDirty,
		"fetch_rebuilt", report.Flags.ExitAndRebuild,
		"meta_written", written,
	)
	return report, nil
}

func missing(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	return false, err
}

func regenerated(g *model.Graph) []string {
	var names []string
	for _, t := range g.Targets() {
		if g.Module(t).Regenerate {
			names = append(names, t.Name)
		}
	}
	return names
}

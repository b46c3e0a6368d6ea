// Package detector compares the current scan against the previous run's
// meta record, marks changed modules for regeneration and raises the run's
// dirty flags.
package detector

import (
	"context"

	"github.com/specialistvlad/modgen/internal/ctxlog"
	"github.com/specialistvlad/modgen/internal/metastore"
	"github.com/specialistvlad/modgen/internal/model"
	"github.com/specialistvlad/modgen/internal/runstate"
)

// Detector updates a meta record in place while reconciling it with the
// current scan. The updated record is what gets persisted at the end of the
// run.
type Detector struct {
	record *metastore.Record
	state  *runstate.State
}

// New creates a detector over rec and state.
func New(rec *metastore.Record, state *runstate.State) *Detector {
	return &Detector{record: rec, state: state}
}

// ReconcileCompiler compares the stored compiler identity with current. Any
// difference invalidates existing builds.
func (d *Detector) ReconcileCompiler(ctx context.Context, current metastore.CompilerIdentity) {
	stored := d.record.Compiler
	if stored == current {
		return
	}
	ctxlog.FromContext(ctx).Warn("Compiler changed, existing builds will be deleted.",
		"stored_name", stored.Name, "stored_version", stored.Version,
		"current_name", current.Name, "current_version", current.Version)
	d.state.MarkDeleteBuilds()
	d.state.MarkDirty()
	d.record.Compiler = current
}

// ReconcileProject compares the digest of the top-level project descriptor.
func (d *Detector) ReconcileProject(ctx context.Context, digest string) {
	if d.record.ProjectDigest == digest {
		return
	}
	ctxlog.FromContext(ctx).Info("Project descriptor changed.")
	d.state.MarkDirty()
	d.record.ProjectDigest = digest
}

// ReconcileModule marks mod for regeneration when target's digest is unknown,
// differs from the stored one, or a full regeneration was requested. The
// stored digest is always updated to the current one.
func (d *Detector) ReconcileModule(ctx context.Context, target *model.Target, mod *model.Module) {
	stored, ok := d.record.Timestamps.Get(target.Name)
	if !ok || stored != target.Digest || d.state.FullRegenerate() {
		ctxlog.FromContext(ctx).Warn("Module has changed, regenerating.", "target", target.Name)
		mod.Regenerate = true
		d.state.MarkDirty()
	}
	d.record.Timestamps.Set(target.Name, target.Digest)
}

// CheckConsistency forces a dirty run when the number of stored and
// discovered targets disagree. This is how deleted modules are noticed.
func (d *Detector) CheckConsistency(ctx context.Context, storedCount, discoveredCount int) {
	if storedCount == discoveredCount {
		return
	}
	ctxlog.FromContext(ctx).Info("Module count changed.", "stored", storedCount, "discovered", discoveredCount)
	d.state.MarkDirty()
}

// ReconcileAll reconciles every target of g, checks the target count against
// the record as it was loaded, and drops entries for targets that no longer
// exist so they are not carried into the next run.
func (d *Detector) ReconcileAll(ctx context.Context, g *model.Graph) {
	storedCount := d.record.Timestamps.Len()
	for _, t := range g.Targets() {
		d.ReconcileModule(ctx, t, g.Module(t))
	}
	d.CheckConsistency(ctx, storedCount, g.Len())

	removed := d.record.Timestamps.Retain(func(name string) bool {
		_, ok := g.Target(name)
		return ok
	})
	if removed > 0 {
		ctxlog.FromContext(ctx).Info("Forgetting removed modules.", "count", removed)
	}
}

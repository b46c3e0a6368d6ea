// Package processor walks the target graph in prerequisite order and hands
// every target to an Emitter exactly once.
//
// For each target the processor first processes the module's references,
// then its dependencies, appends the target to the sorted sequence and only
// then emits it. The sorted sequence therefore lists every prerequisite
// before the target that needs it.
package processor

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/modgen/internal/ctxlog"
	"github.com/specialistvlad/modgen/internal/dag"
	"github.com/specialistvlad/modgen/internal/model"
	"github.com/specialistvlad/modgen/internal/runstate"
)

// Options tunes a Processor.
type Options struct {
	// Strict rejects dependency cycles with a *dag.CycleError. When false,
	// cycles are broken where they are first met and a warning is logged.
	Strict bool
	// Workers is the number of concurrent emissions. Values below two run
	// everything inline during the traversal.
	Workers int
}

// Processor is single-use: create one per run.
type Processor struct {
	graph   *model.Graph
	state   *runstate.State
	emitter Emitter
	opts    Options

	sorted []string
	// onStack maps targets currently being processed to their stack index.
	onStack  map[string]int
	stack    []string
	planOnly bool
}

// New creates a processor over a frozen graph.
func New(g *model.Graph, state *runstate.State, emitter Emitter, opts Options) *Processor {
	return &Processor{
		graph:   g,
		state:   state,
		emitter: emitter,
		opts:    opts,
		onStack: make(map[string]int),
	}
}

// Sorted returns the targets processed so far in emission order.
func (p *Processor) Sorted() []string {
	return p.sorted
}

// ProcessAll processes every target in discovery order and returns the
// sorted target sequence. Prerequisite names are validated, and in strict
// mode cycles rejected, before anything is emitted.
func (p *Processor) ProcessAll(ctx context.Context) ([]string, error) {
	logger := ctxlog.FromContext(ctx)

	prereqs, err := BuildGraph(p.graph, p.opts.Strict)
	if err != nil {
		return nil, err
	}
	if p.opts.Strict {
		if err := prereqs.DetectCycles(); err != nil {
			return nil, err
		}
	}
	logger.Debug("Prerequisite graph validated.", "targets", prereqs.Len(), "strict", p.opts.Strict)

	if p.opts.Workers > 1 {
		return p.processParallel(ctx, prereqs)
	}

	for _, t := range p.graph.Targets() {
		if err := p.process(ctx, t); err != nil {
			return nil, err
		}
	}
	logger.Debug("All targets processed.", "count", len(p.sorted))
	return p.sorted, nil
}

// Process processes the named target and, recursively, its prerequisites.
// Calling it again for an already processed target does nothing.
func (p *Processor) Process(ctx context.Context, name string) error {
	t, ok := p.graph.Target(name)
	if !ok {
		return fmt.Errorf("unknown target %q", name)
	}
	return p.process(ctx, t)
}

func (p *Processor) process(ctx context.Context, t *model.Target) error {
	if t.Processed {
		if pos, ok := p.onStack[t.Name]; ok {
			path := append(append([]string{}, p.stack[pos:]...), t.Name)
			if p.opts.Strict {
				return &dag.CycleError{Path: path}
			}
			ctxlog.FromContext(ctx).Warn("Dependency cycle ignored, emission order may be incomplete.",
				"cycle", strings.Join(path, " -> "))
		}
		return nil
	}
	t.Processed = true
	p.onStack[t.Name] = len(p.stack)
	p.stack = append(p.stack, t.Name)

	fw := p.graph.Framework(t)
	if !fw.Processed {
		fw.Processed = true
		if prep, ok := p.emitter.(FrameworkPreparer); ok {
			if err := prep.PrepareFramework(ctx, fw); err != nil {
				return fmt.Errorf("failed to prepare framework %s: %w", fw.Name, err)
			}
		}
	}

	mod := p.graph.Module(t)
	if err := p.processEdges(ctx, t, mod.References, KindReference); err != nil {
		return err
	}
	if err := p.processEdges(ctx, t, mod.Dependencies, KindDependency); err != nil {
		return err
	}

	p.stack = p.stack[:len(p.stack)-1]
	delete(p.onStack, t.Name)

	p.sorted = append(p.sorted, t.Name)
	if p.planOnly {
		return nil
	}
	return p.emit(ctx, t)
}

func (p *Processor) processEdges(ctx context.Context, t *model.Target, names []string, kind EdgeKind) error {
	for _, name := range names {
		prereq, ok := p.graph.Target(name)
		if !ok {
			return &DanglingError{Target: t.Name, Name: name, Kind: kind}
		}
		if err := p.process(ctx, prereq); err != nil {
			return err
		}
	}
	return nil
}

// emit hands t to the emitter with a context whose logger names the target.
func (p *Processor) emit(ctx context.Context, t *model.Target) error {
	ctx = ctxlog.With(ctx, "target", t.Name)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Emitting target.")

	res, err := p.emitter.Emit(ctx, Request{
		Target:    t,
		Module:    p.graph.Module(t),
		Framework: p.graph.Framework(t),
	})
	if err != nil {
		return fmt.Errorf("failed to emit %s: %w", t.Name, err)
	}
	if res.FetchRebuilt {
		logger.Info("Fetched content was rebuilt.")
		p.state.MarkExitAndRebuild()
	}
	return nil
}

// BuildGraph materializes the prerequisite edges of g. Every reference and
// dependency must name a known target. A module naming itself is a cycle in
// strict mode and is ignored otherwise.
func BuildGraph(g *model.Graph, strict bool) (*dag.Graph, error) {
	d := dag.New()
	for _, t := range g.Targets() {
		d.AddNode(t.Name)
	}
	for _, t := range g.Targets() {
		mod := g.Module(t)
		edges := []struct {
			names []string
			kind  EdgeKind
		}{
			{mod.References, KindReference},
			{mod.Dependencies, KindDependency},
		}
		for _, e := range edges {
			for _, name := range e.names {
				if !d.Has(name) {
					return nil, &DanglingError{Target: t.Name, Name: name, Kind: e.kind}
				}
				if name == t.Name && !strict {
					continue
				}
				if err := d.AddEdge(name, t.Name); err != nil {
					return nil, err
				}
			}
		}
	}
	return d, nil
}

package processor

import (
	"context"

	"github.com/specialistvlad/modgen/internal/ctxlog"
	"github.com/specialistvlad/modgen/internal/dag"
	"golang.org/x/sync/errgroup"
)

// processParallel computes the sorted sequence with the same traversal as the
// inline mode, then emits targets on a bounded pool. A target starts once
// every prerequisite that precedes it in the sorted sequence has been
// emitted. Targets are submitted in sorted order, so the oldest running
// emission never waits on one that has not started yet.
func (p *Processor) processParallel(ctx context.Context, prereqs *dag.Graph) ([]string, error) {
	logger := ctxlog.FromContext(ctx)

	p.planOnly = true
	for _, t := range p.graph.Targets() {
		if err := p.process(ctx, t); err != nil {
			return nil, err
		}
	}
	p.planOnly = false
	logger.Debug("Emission order planned.", "count", len(p.sorted), "workers", p.opts.Workers)

	position := make(map[string]int, len(p.sorted))
	done := make(map[string]chan struct{}, len(p.sorted))
	deps := make([][]string, len(p.sorted))
	for i, name := range p.sorted {
		position[name] = i
		done[name] = make(chan struct{})
		d, err := prereqs.Prerequisites(name)
		if err != nil {
			return nil, err
		}
		deps[i] = d
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i, name := range p.sorted {
		t, _ := p.graph.Target(name)
		g.Go(func() error {
			for _, d := range deps[i] {
				// Only reachable through a tolerated cycle.
				if position[d] >= i {
					continue
				}
				select {
				case <-done[d]:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			if err := p.emit(gctx, t); err != nil {
				return err
			}
			close(done[name])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Debug("All targets processed.", "count", len(p.sorted))
	return p.sorted, nil
}

package processor

import (
	"context"
	"fmt"

	"github.com/specialistvlad/modgen/internal/model"
)

// Request carries everything an emitter needs to generate one target.
type Request struct {
	Target    *model.Target
	Module    *model.Module
	Framework *model.Framework
}

// Result is the only signal the processor consumes from an emitter.
type Result struct {
	// FetchRebuilt reports that a fetch step actually re-ran during this
	// invocation.
	FetchRebuilt bool
}

// Emitter generates the downstream build description for one target.
// Implementations used with more than one worker must be safe for
// concurrent use.
type Emitter interface {
	Emit(ctx context.Context, req Request) (Result, error)
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(ctx context.Context, req Request) (Result, error)

// Emit calls f(ctx, req).
func (f EmitterFunc) Emit(ctx context.Context, req Request) (Result, error) {
	return f(ctx, req)
}

// FrameworkPreparer is implemented by emitters that need a one-time setup
// step per framework before any of its modules are emitted.
type FrameworkPreparer interface {
	PrepareFramework(ctx context.Context, fw *model.Framework) error
}

// EdgeKind distinguishes the two kinds of prerequisite edges.
type EdgeKind string

const (
	KindReference  EdgeKind = "reference"
	KindDependency EdgeKind = "dependency"
)

// DanglingError reports a prerequisite name that does not resolve to a
// known target.
type DanglingError struct {
	Target string
	Name   string
	Kind   EdgeKind
}

func (e *DanglingError) Error() string {
	return fmt.Sprintf("%q is not a valid module, used as %s of %q", e.Name, e.Kind, e.Target)
}

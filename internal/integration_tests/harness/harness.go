// Package harness drives complete orchestrator runs against scan trees on
// disk for the integration tests.
package harness

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/modgen/internal/app"
	"github.com/specialistvlad/modgen/internal/ctxlog"
	"github.com/specialistvlad/modgen/internal/emitter"
	"github.com/specialistvlad/modgen/internal/metastore"
	"github.com/specialistvlad/modgen/internal/runstate"
	"github.com/specialistvlad/modgen/internal/testutil"
	"github.com/stretchr/testify/require"
)

// RecordingFetcher remembers every fetch it was asked to perform.
type RecordingFetcher struct {
	mu    sync.Mutex
	calls []emitter.FetchRequest
}

// Fetch records req.
func (f *RecordingFetcher) Fetch(_ context.Context, req emitter.FetchRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	return nil
}

// Targets returns the target of every recorded fetch in call order.
func (f *RecordingFetcher) Targets() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.Target
	}
	return out
}

// Project is a scan tree in a temporary directory.
type Project struct {
	t       *testing.T
	Root    string
	Out     string
	Fetcher *RecordingFetcher
}

// New writes files below a fresh scan root.
func New(t *testing.T, files map[string]string) *Project {
	t.Helper()
	root := testutil.NewTree(t, files)
	return &Project{t: t, Root: root, Out: filepath.Join(root, "out"), Fetcher: &RecordingFetcher{}}
}

// Result is the outcome of one run.
type Result struct {
	Report *app.Report
	Err    error
	Logs   string
}

// Run performs one orchestrator pass. Each mutator may adjust the default
// configuration: strict mode, one worker, compiler "gcc 12.0".
func (p *Project) Run(mutators ...func(*app.Config)) Result {
	p.t.Helper()
	cfg := &app.Config{
		ScanDir:         p.Root,
		CompilerName:    "gcc",
		CompilerVersion: "12.0",
		Workers:         1,
		Strict:          true,
	}
	for _, m := range mutators {
		m(cfg)
	}
	a, logs := app.SetupAppTest(p.t, cfg, app.WithFetcher(p.Fetcher))
	report, err := a.Execute(context.Background())
	return Result{Report: report, Err: err, Logs: logs.String()}
}

// MustRun is Run that fails the test on a fatal error.
func (p *Project) MustRun(mutators ...func(*app.Config)) *app.Report {
	p.t.Helper()
	res := p.Run(mutators...)
	require.NoError(p.t, res.Err, "run failed, logs:\n%s", res.Logs)
	return res.Report
}

// Write adds or replaces files below the scan root.
func (p *Project) Write(files map[string]string) {
	p.t.Helper()
	testutil.WriteTree(p.t, p.Root, files)
}

// Remove deletes a file or directory below the scan root.
func (p *Project) Remove(rel string) {
	p.t.Helper()
	require.NoError(p.t, os.RemoveAll(filepath.Join(p.Root, filepath.FromSlash(rel))))
}

// OutPath resolves a slash-separated path below the output directory.
func (p *Project) OutPath(rel string) string {
	return filepath.Join(p.Out, filepath.FromSlash(rel))
}

// ReadOut returns the content of a file below the output directory.
func (p *Project) ReadOut(rel string) string {
	p.t.Helper()
	b, err := os.ReadFile(p.OutPath(rel))
	require.NoError(p.t, err)
	return string(b)
}

// Record loads the persisted meta store.
func (p *Project) Record() *metastore.Record {
	p.t.Helper()
	ctx := ctxlog.Discard(context.Background())
	rec, err := metastore.New(p.OutPath("cache")).Load(ctx, runstate.New())
	require.NoError(p.t, err)
	return rec
}

// Compiler returns a mutator selecting the compiler identity.
func Compiler(name, version string) func(*app.Config) {
	return func(c *app.Config) {
		c.CompilerName = name
		c.CompilerVersion = version
	}
}

// Lenient returns a mutator disabling strict cycle checks.
func Lenient() func(*app.Config) {
	return func(c *app.Config) { c.Strict = false }
}

// Workers returns a mutator setting the emission worker count.
func Workers(n int) func(*app.Config) {
	return func(c *app.Config) { c.Workers = n }
}

// Package emitter generates the downstream CMake description of each target
// and tracks the external content its fetch blocks pull in.
//
// Generated files live under a single gen directory that mirrors the target
// names: <gen>/<Framework>/<Module>/CMakeLists.txt. A file is rewritten only
// when the change detector marked its module for regeneration or when the
// file is missing.
package emitter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/specialistvlad/modgen/internal/ctxlog"
	"github.com/specialistvlad/modgen/internal/hclfile"
	"github.com/specialistvlad/modgen/internal/model"
	"github.com/specialistvlad/modgen/internal/processor"
)

const (
	// ListsFile is the name of every generated module description.
	ListsFile = "CMakeLists.txt"
	// PrepareFile and FinalizeFile are optional per-module CMake fragments.
	PrepareFile  = "Prepare.cmake"
	FinalizeFile = "Finalize.cmake"
)

// Config holds the settings of a FileEmitter.
type Config struct {
	// GenDir receives the generated module descriptions.
	GenDir string
	// FetchDir holds one meta file per fetch block.
	FetchDir string
	// Fetcher acquires fetch blocks. LogFetcher is used when nil.
	Fetcher Fetcher
	// SkipFetchBuilds records fetch state without building anything.
	SkipFetchBuilds bool
}

// FileEmitter writes generated files to disk. It is safe for concurrent use
// as long as its Fetcher is.
type FileEmitter struct {
	genDir          string
	fetchDir        string
	fetcher         Fetcher
	skipFetchBuilds bool
}

var _ processor.Emitter = (*FileEmitter)(nil)
var _ processor.FrameworkPreparer = (*FileEmitter)(nil)

// New creates a FileEmitter.
func New(cfg Config) *FileEmitter {
	fetcher := cfg.Fetcher
	if fetcher == nil {
		fetcher = LogFetcher{}
	}
	return &FileEmitter{
		genDir:          cfg.GenDir,
		fetchDir:        cfg.FetchDir,
		fetcher:         fetcher,
		skipFetchBuilds: cfg.SkipFetchBuilds,
	}
}

// ModuleDir returns the generated directory of a target.
func (e *FileEmitter) ModuleDir(target string) string {
	return filepath.Join(e.genDir, filepath.FromSlash(target))
}

// PrepareFramework creates the framework's generated directory.
func (e *FileEmitter) PrepareFramework(ctx context.Context, fw *model.Framework) error {
	dir := filepath.Join(e.genDir, fw.Name)
	ctxlog.FromContext(ctx).Debug("Preparing framework output.", "framework", fw.Name, "dir", dir)
	return os.MkdirAll(dir, 0o755)
}

// Emit writes the target's CMakeLists.txt if needed and brings its fetch
// blocks up to date.
func (e *FileEmitter) Emit(ctx context.Context, req processor.Request) (processor.Result, error) {
	logger := ctxlog.FromContext(ctx)
	path := filepath.Join(e.ModuleDir(req.Target.Name), ListsFile)

	write := req.Module.Regenerate
	if !write {
		if _, err := os.Stat(path); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return processor.Result{}, err
			}
			write = true
		}
	}
	if write {
		content, err := e.render(req)
		if err != nil {
			return processor.Result{}, err
		}
		if err := hclfile.WriteBytes(path, content); err != nil {
			return processor.Result{}, err
		}
		logger.Debug("Module description written.", "path", path, "disabled", req.Module.Disabled)
	} else {
		logger.Debug("Module description is up to date.")
	}

	if req.Module.Disabled || !req.Module.HasFetch() {
		return processor.Result{}, nil
	}
	rebuilt, err := e.syncFetches(ctx, req.Target.Name, req.Module)
	if err != nil {
		return processor.Result{}, err
	}
	return processor.Result{FetchRebuilt: rebuilt}, nil
}

func (e *FileEmitter) render(req processor.Request) ([]byte, error) {
	mod := req.Module
	target := CMakeTarget(req.Target.Name)
	data := cmakeData{
		Name:         req.Target.Name,
		Target:       target,
		Descriptor:   filepath.ToSlash(filepath.Join(mod.Path, "Module.hcl")),
		SourceDir:    filepath.ToSlash(mod.Path),
		Disabled:     mod.Disabled,
		Dependencies: cmakeTargets(mod.Dependencies),
		References:   cmakeTargets(mod.References),
		Fetches:      mod.Fetches,
	}
	data.Declaration, data.Linkage = declaration(mod.Type, target)
	if data.Linkage == "" {
		// Custom targets cannot link, so every prerequisite only orders the build.
		data.References = append(data.References, data.Dependencies...)
		data.Dependencies = nil
	}

	var err error
	if data.Prepare, err = optionalFile(mod.Path, PrepareFile); err != nil {
		return nil, err
	}
	if data.Finalize, err = optionalFile(mod.Path, FinalizeFile); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := cmakeTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render %s for %s: %w", ListsFile, req.Target.Name, err)
	}
	return buf.Bytes(), nil
}

// optionalFile returns the slash-separated path of dir/name when it exists.
func optionalFile(dir, name string) (string, error) {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return filepath.ToSlash(path), nil
}

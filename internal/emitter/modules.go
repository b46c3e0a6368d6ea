package emitter

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/modgen/internal/ctxlog"
	"github.com/specialistvlad/modgen/internal/fsutil"
	"github.com/specialistvlad/modgen/internal/hclfile"
	"github.com/specialistvlad/modgen/internal/model"
)

const (
	// ModuleListFile includes every generated module in emission order.
	ModuleListFile = "modules.cmake"
	// CacheFile is the CMake cache removed when builds are deleted.
	CacheFile = "CMakeCache.txt"
)

// WriteModuleList writes <gen>/modules.cmake adding every target in sorted
// order. Disabled targets are included too so dependents can resolve their
// interface stubs.
func (e *FileEmitter) WriteModuleList(ctx context.Context, g *model.Graph, sorted []string) error {
	var buf bytes.Buffer
	buf.WriteString("# Generated by modgen. Do not edit.\n")
	for _, name := range sorted {
		t, ok := g.Target(name)
		if !ok {
			return fmt.Errorf("unknown target %q in emission order", name)
		}
		if g.Module(t).Disabled {
			fmt.Fprintf(&buf, "# %s is disabled\n", name)
		}
		fmt.Fprintf(&buf, "add_subdirectory(\"${CMAKE_CURRENT_LIST_DIR}/%s\" \"%s\")\n", name, name)
	}

	path := filepath.Join(e.genDir, ModuleListFile)
	if err := hclfile.WriteBytes(path, buf.Bytes()); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Module list written.", "path", path, "count", len(sorted))
	return nil
}

// DeleteBuilds removes every CMake cache below buildDir, every generated
// module directory and the recorded fetch state, so the next generation,
// configure and fetch builds start clean. It returns the number of cache
// files removed.
func (e *FileEmitter) DeleteBuilds(ctx context.Context, buildDir string) (int, error) {
	logger := ctxlog.FromContext(ctx)

	caches, err := fsutil.FindFilesByName(buildDir, CacheFile)
	if err != nil {
		return 0, fmt.Errorf("failed to scan build directory %s: %w", buildDir, err)
	}
	for _, c := range caches {
		if err := os.Remove(c); err != nil {
			return 0, fmt.Errorf("failed to remove %s: %w", c, err)
		}
		logger.Debug("Removed build cache.", "path", c)
	}

	entries, err := os.ReadDir(e.genDir)
	if err != nil && !os.IsNotExist(err) {
		return 0, fmt.Errorf("failed to read generated directory %s: %w", e.genDir, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(e.genDir, entry.Name())
		if err := os.RemoveAll(dir); err != nil {
			return 0, fmt.Errorf("failed to remove %s: %w", dir, err)
		}
	}

	if err := os.RemoveAll(e.fetchDir); err != nil {
		return 0, fmt.Errorf("failed to remove fetch state %s: %w", e.fetchDir, err)
	}

	logger.Info("Previous builds deleted.", "caches", len(caches), "build_dir", buildDir)
	return len(caches), nil
}

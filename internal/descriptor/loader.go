// Package descriptor discovers frameworks and modules below a scan root and
// loads their HCL descriptors into the graph model.
//
// Discovery is deterministic: framework and module directories are visited in
// lexical order. Any descriptor that cannot be read or decoded aborts the
// whole scan with an error naming the offending path.
package descriptor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/specialistvlad/modgen/internal/ctxlog"
	"github.com/specialistvlad/modgen/internal/fsutil"
	"github.com/specialistvlad/modgen/internal/hclfile"
	"github.com/specialistvlad/modgen/internal/model"
)

const (
	ProjectFile   = "Build.hcl"
	FrameworkFile = "Framework.hcl"
	ModuleFile    = "Module.hcl"

	DefaultFrameworksDir = "Frameworks"
	DefaultOutDir        = "out"
)

// DigestedFiles are the optional module files folded into the module digest
// after the descriptor itself.
var DigestedFiles = []string{"Prepare.cmake", "Finalize.cmake"}

// ErrNoFrameworks is returned when the frameworks directory holds no framework.
var ErrNoFrameworks = errors.New("no frameworks found")

// Project is the decoded project descriptor.
type Project struct {
	Name string
	// FrameworksDir and OutDir are absolute.
	FrameworksDir string
	OutDir        string
	// Digest is empty when the scan root has no project descriptor.
	Digest string
}

// Scan is the result of loading a scan root.
type Scan struct {
	Root    string
	Project Project
	Graph   *model.Graph
}

// Loader turns a scan root into a frozen graph.
type Loader interface {
	Load(ctx context.Context, root string) (*Scan, error)
}

// HCLLoader is the Loader for HCL descriptors.
type HCLLoader struct{}

// NewLoader creates a new HCL descriptor loader.
func NewLoader() *HCLLoader {
	return &HCLLoader{}
}

type projectFile struct {
	Name          string `hcl:"name,optional"`
	FrameworksDir string `hcl:"frameworks_dir,optional"`
	OutDir        string `hcl:"out_dir,optional"`
}

type frameworkFile struct {
	Excludes []string `hcl:"excludes,optional"`
}

type moduleFile struct {
	Type         string       `hcl:"type,optional"`
	Dependencies []string     `hcl:"dependencies,optional"`
	References   []string     `hcl:"references,optional"`
	Disabled     bool         `hcl:"disabled,optional"`
	Fetches      []fetchBlock `hcl:"fetch,block"`
}

type fetchBlock struct {
	Name       string   `hcl:"name,label"`
	Repo       string   `hcl:"repo"`
	Commit     string   `hcl:"commit,optional"`
	Args       []string `hcl:"args,optional"`
	ForceBuild bool     `hcl:"force_build,optional"`
}

// Load reads the project descriptor, then every framework and module below
// the frameworks directory, and freezes the result.
func (l *HCLLoader) Load(ctx context.Context, root string) (*Scan, error) {
	logger := ctxlog.FromContext(ctx)
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	logger.Debug("Descriptor loader started.", "root", root)

	project, err := LoadProject(root)
	if err != nil {
		return nil, err
	}

	fwNames, err := fsutil.SubdirsWithFile(project.FrameworksDir, FrameworkFile)
	if err != nil {
		return nil, fmt.Errorf("failed to list frameworks in %s: %w", project.FrameworksDir, err)
	}
	if len(fwNames) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFrameworks, project.FrameworksDir)
	}

	sc := model.NewScanContext()
	for _, fwName := range fwNames {
		if err := loadFramework(ctx, sc, filepath.Join(project.FrameworksDir, fwName), fwName); err != nil {
			return nil, err
		}
	}

	g, err := sc.Freeze()
	if err != nil {
		return nil, err
	}
	logger.Debug("Descriptors loaded.", "frameworks", len(fwNames), "targets", g.Len())
	return &Scan{Root: root, Project: project, Graph: g}, nil
}

// LoadProject reads the optional project descriptor of root and resolves the
// frameworks and output directories against it. root must be absolute.
func LoadProject(root string) (Project, error) {
	p := Project{
		FrameworksDir: filepath.Join(root, DefaultFrameworksDir),
		OutDir:        filepath.Join(root, DefaultOutDir),
	}

	path := filepath.Join(root, ProjectFile)
	src, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return p, nil
		}
		return p, fmt.Errorf("failed to read project descriptor %s: %w", path, err)
	}
	var pf projectFile
	if err := hclfile.DecodeBytes(src, path, &pf); err != nil {
		return p, fmt.Errorf("failed to load project descriptor %s: %w", path, err)
	}

	p.Name = pf.Name
	p.Digest = model.Digest(src)
	if pf.FrameworksDir != "" {
		p.FrameworksDir = resolve(root, pf.FrameworksDir)
	}
	if pf.OutDir != "" {
		p.OutDir = resolve(root, pf.OutDir)
	}
	return p, nil
}

func resolve(root, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}

func loadFramework(ctx context.Context, sc *model.ScanContext, dir, name string) error {
	path := filepath.Join(dir, FrameworkFile)
	var ff frameworkFile
	if err := hclfile.Decode(path, &ff); err != nil {
		return fmt.Errorf("failed to load framework descriptor %s: %w", path, err)
	}
	if _, err := sc.AddFramework(name, dir, ff.Excludes); err != nil {
		return err
	}
	fw := sc.CurrentFramework()

	modNames, err := fsutil.SubdirsWithFile(dir, ModuleFile)
	if err != nil {
		return fmt.Errorf("failed to list modules in %s: %w", dir, err)
	}
	logger := ctxlog.FromContext(ctx).With("framework", name)
	logger.Debug("Framework discovered.", "modules", len(modNames), "excludes", len(ff.Excludes))

	for _, modName := range modNames {
		modDir := filepath.Join(dir, modName)
		if _, _, err := model.SplitTargetName(model.TargetName(name, modName)); err != nil {
			return fmt.Errorf("invalid module directory %s: %w", modDir, err)
		}
		if _, err := sc.AddModule(modName, modDir); err != nil {
			return err
		}
		mod := sc.CurrentModule()
		if fw.IsExcluded(modName) {
			mod.Disabled = true
			mod.Excluded = true
			logger.Debug("Module excluded.", "module", modName)
			continue
		}
		if err := loadModule(mod, modDir); err != nil {
			return err
		}
	}
	return nil
}

func loadModule(mod *model.Module, dir string) error {
	path := filepath.Join(dir, ModuleFile)
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read module descriptor %s: %w", path, err)
	}
	var mf moduleFile
	if err := hclfile.DecodeBytes(src, path, &mf); err != nil {
		return fmt.Errorf("failed to load module descriptor %s: %w", path, err)
	}

	typ, err := model.ParseModuleType(mf.Type)
	if err != nil {
		return fmt.Errorf("invalid module descriptor %s: %w", path, err)
	}
	for _, names := range [][]string{mf.Dependencies, mf.References} {
		for _, n := range names {
			if _, _, err := model.SplitTargetName(n); err != nil {
				return fmt.Errorf("invalid module descriptor %s: %w", path, err)
			}
		}
	}

	mod.Type = typ
	mod.Dependencies = mf.Dependencies
	mod.References = mf.References
	mod.Disabled = mf.Disabled
	for _, f := range mf.Fetches {
		mod.Fetches = append(mod.Fetches, model.Fetch{
			Name:       f.Name,
			Repo:       f.Repo,
			Commit:     f.Commit,
			Args:       f.Args,
			ForceBuild: f.ForceBuild,
		})
	}

	content := append([]byte(nil), src...)
	for _, extra := range DigestedFiles {
		b, err := os.ReadFile(filepath.Join(dir, extra))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to read %s: %w", filepath.Join(dir, extra), err)
		}
		content = append(content, b...)
	}
	mod.Content = content
	return nil
}

package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/specialistvlad/modgen/internal/output"
)

// Tree loads the descriptors and prints the discovered frameworks, modules
// and their prerequisites. No state is read or written.
func (a *App) Tree(ctx context.Context) error {
	ctx = a.Context(ctx)
	scan, err := a.loader.Load(ctx, a.config.ScanDir)
	if err != nil {
		return fmt.Errorf("failed to load descriptors: %w", err)
	}

	label := scan.Project.Name
	if label == "" {
		label = filepath.Base(scan.Root)
	}
	_, err = fmt.Fprint(a.outW, output.NewDependencyTree(label, scan.Graph).Render())
	return err
}

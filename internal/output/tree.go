// Package output renders human-readable views of a scanned graph.
package output

import (
	"github.com/disiqueira/gotree/v3"
	"github.com/specialistvlad/modgen/internal/model"
)

// DependencyTree lists every framework with its modules and, below each
// module, the prerequisites it declares.
type DependencyTree struct {
	tree gotree.Tree
}

// NewDependencyTree builds the tree for g under rootLabel.
func NewDependencyTree(rootLabel string, g *model.Graph) DependencyTree {
	t := DependencyTree{tree: gotree.New(rootLabel)}
	frameworks := g.Frameworks()
	for fi := range frameworks {
		fw := &frameworks[fi]
		fwNode := t.tree.Add(fw.Name)
		for mi := range fw.Modules {
			mod := &fw.Modules[mi]
			if mod.Excluded {
				fwNode.Add(mod.Name + " (excluded)")
				continue
			}
			modNode := fwNode.Add(moduleLabel(mod))
			for _, r := range mod.References {
				modNode.Add("ref " + r)
			}
			for _, d := range mod.Dependencies {
				modNode.Add("dep " + d)
			}
			for _, f := range mod.Fetches {
				modNode.Add("fetch " + f.Name)
			}
		}
	}
	return t
}

func moduleLabel(mod *model.Module) string {
	label := mod.Name + " [" + mod.Type.String() + "]"
	if mod.Disabled {
		label += " (disabled)"
	}
	return label
}

// Render returns the tree as text.
func (t DependencyTree) Render() string {
	return t.tree.Print()
}

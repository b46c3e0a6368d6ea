// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines ScanContext, the append-only builder used by the
// descriptor loader, and Graph, the frozen result.
//
// Why indices instead of "current" pointers?
//
// Frameworks and modules live in growable slices. A pointer taken to the last
// element becomes stale as soon as the slice reallocates. The scan context
// therefore remembers the current framework and module as indices and only
// hands out pointers for immediate use.
package model

import (
	"errors"
	"fmt"
)

// ErrFrozen is returned when the scan context is modified after Freeze.
var ErrFrozen = errors.New("scan context is frozen")

// ScanContext collects frameworks and modules in discovery order.
type ScanContext struct {
	frameworks []Framework
	currentFw  int
	currentMod int
	frozen     bool
}

// NewScanContext creates an empty scan context with no current framework.
func NewScanContext() *ScanContext {
	return &ScanContext{currentFw: -1, currentMod: -1}
}

// AddFramework appends a framework and makes it current.
func (s *ScanContext) AddFramework(name, path string, excludes []string) (int, error) {
	if s.frozen {
		return -1, ErrFrozen
	}
	ex := make(map[string]struct{}, len(excludes))
	for _, e := range excludes {
		ex[e] = struct{}{}
	}
	s.frameworks = append(s.frameworks, Framework{Name: name, Path: path, Excludes: ex})
	s.currentFw = len(s.frameworks) - 1
	s.currentMod = -1
	return s.currentFw, nil
}

// AddModule appends a module to the current framework and makes it current.
func (s *ScanContext) AddModule(name, path string) (int, error) {
	if s.frozen {
		return -1, ErrFrozen
	}
	if s.currentFw < 0 {
		return -1, fmt.Errorf("module %q added before any framework", name)
	}
	fw := &s.frameworks[s.currentFw]
	fw.Modules = append(fw.Modules, Module{Name: name, Path: path})
	s.currentMod = len(fw.Modules) - 1
	return s.currentMod, nil
}

// CurrentFramework returns the framework most recently added. The pointer must
// not be retained across further AddFramework calls.
func (s *ScanContext) CurrentFramework() *Framework {
	if s.currentFw < 0 {
		return nil
	}
	return &s.frameworks[s.currentFw]
}

// CurrentModule returns the module most recently added. The pointer must not
// be retained across further AddModule calls.
func (s *ScanContext) CurrentModule() *Module {
	fw := s.CurrentFramework()
	if fw == nil || s.currentMod < 0 {
		return nil
	}
	return &fw.Modules[s.currentMod]
}

// Freeze ends the append-only phase and derives the target table. Excluded
// modules get no target.
func (s *ScanContext) Freeze() (*Graph, error) {
	if s.frozen {
		return nil, ErrFrozen
	}
	s.frozen = true

	g := &Graph{
		frameworks: s.frameworks,
		byName:     make(map[string]int),
	}
	for fi := range g.frameworks {
		fw := &g.frameworks[fi]
		for mi := range fw.Modules {
			mod := &fw.Modules[mi]
			if mod.Excluded {
				continue
			}
			name := TargetName(fw.Name, mod.Name)
			if _, dup := g.byName[name]; dup {
				return nil, fmt.Errorf("duplicate target %q", name)
			}
			g.byName[name] = len(g.targets)
			g.targets = append(g.targets, &Target{
				Name:           name,
				Digest:         Digest(mod.Content),
				FrameworkIndex: fi,
				ModuleIndex:    mi,
			})
		}
	}
	return g, nil
}

// Graph is the frozen framework, module and target tables of one run.
type Graph struct {
	frameworks []Framework
	targets    []*Target
	byName     map[string]int
}

// Targets returns all targets in discovery order.
func (g *Graph) Targets() []*Target {
	return g.targets
}

// Len returns the number of targets.
func (g *Graph) Len() int {
	return len(g.targets)
}

// Target looks up a target by its canonical name.
func (g *Graph) Target(name string) (*Target, bool) {
	i, ok := g.byName[name]
	if !ok {
		return nil, false
	}
	return g.targets[i], true
}

// Frameworks returns the framework table in discovery order.
func (g *Graph) Frameworks() []Framework {
	return g.frameworks
}

// Framework returns the framework owning t.
func (g *Graph) Framework(t *Target) *Framework {
	return &g.frameworks[t.FrameworkIndex]
}

// Module returns the module t was derived from.
func (g *Graph) Module(t *Target) *Module {
	return &g.frameworks[t.FrameworkIndex].Modules[t.ModuleIndex]
}

// Names returns every target name in discovery order.
func (g *Graph) Names() []string {
	names := make([]string, len(g.targets))
	for i, t := range g.targets {
		names[i] = t.Name
	}
	return names
}

// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Module and Framework structures along with the module
// type tag.
//
// Why keep Content on the module?
//
// The orchestrator never interprets descriptor semantics beyond the fields
// below. The raw bytes are kept only so that a digest can be computed at
// freeze time; two runs over identical bytes must produce identical digests.
package model

import (
	"fmt"
	"strings"
)

// ModuleType is the kind of artifact a module produces.
type ModuleType int

const (
	TypeLibrary ModuleType = iota
	TypeExecutable
	TypePlugin
	TypeData
	TypeExternal
	TypeTest
)

var moduleTypeNames = map[ModuleType]string{
	TypeLibrary:    "library",
	TypeExecutable: "executable",
	TypePlugin:     "plugin",
	TypeData:       "data",
	TypeExternal:   "external",
	TypeTest:       "test",
}

// String returns the descriptor spelling of the type.
func (t ModuleType) String() string {
	if s, ok := moduleTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("ModuleType(%d)", int(t))
}

// ParseModuleType converts a descriptor value into a ModuleType. An empty
// string defaults to a library.
func ParseModuleType(s string) (ModuleType, error) {
	if s == "" {
		return TypeLibrary, nil
	}
	s = strings.ToLower(s)
	for t, name := range moduleTypeNames {
		if name == s {
			return t, nil
		}
	}
	if s == "external-reference" || s == "ref" {
		return TypeExternal, nil
	}
	return 0, fmt.Errorf("unknown module type %q", s)
}

// Fetch describes how an external dependency is acquired. The orchestrator
// only cares whether acquiring it actually re-ran during this invocation.
type Fetch struct {
	Name       string
	Repo       string
	Commit     string
	Args       []string
	ForceBuild bool
}

// Module is a buildable unit inside a framework.
type Module struct {
	Name string
	// Path is the module's directory on disk.
	Path string
	Type ModuleType

	Dependencies []string
	References   []string
	Fetches      []Fetch

	// Disabled modules keep their slot and target but are emitted as stubs.
	Disabled bool
	// Excluded modules were listed in the framework's excludes. They are
	// never read and never become targets.
	Excluded bool
	// Regenerate is set by the change detector when the module's content
	// differs from the previous run.
	Regenerate bool

	// Content is the raw descriptor material that the digest is computed over.
	Content []byte
}

// HasFetch reports whether the module acquires external content.
func (m *Module) HasFetch() bool {
	return len(m.Fetches) > 0
}

// Framework is a named collection of modules discovered under the scan root.
type Framework struct {
	Name     string
	Path     string
	Excludes map[string]struct{}
	Modules  []Module

	// Processed guards the one-time framework setup step.
	Processed bool
}

// IsExcluded reports whether the named module is listed in the excludes set.
func (f *Framework) IsExcluded(module string) bool {
	_, ok := f.Excludes[module]
	return ok
}

// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines Target and the canonical "<framework>/<module>" naming.
package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// Target is the unit the orchestrator schedules.
type Target struct {
	Name string
	// Digest is the lowercase hex SHA-256 of the module's content.
	Digest string

	FrameworkIndex int
	ModuleIndex    int

	// Processed transitions false to true at most once per run.
	Processed bool
}

// segmentRegex is used to validate a single segment of a target name.
var segmentRegex = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+$`)

// TargetName builds the canonical name of a module's target.
func TargetName(framework, module string) string {
	return framework + "/" + module
}

// SplitTargetName separates a target name into its framework and module
// segments, validating both.
func SplitTargetName(name string) (framework, module string, err error) {
	if name == "" {
		return "", "", fmt.Errorf("target name cannot be empty")
	}
	parts := strings.Split(name, "/")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("target name %q must have the form <framework>/<module>", name)
	}
	for _, p := range parts {
		if !segmentRegex.MatchString(p) || p == "." || p == ".." {
			return "", "", fmt.Errorf("invalid target name segment %q in %q", p, name)
		}
	}
	return parts[0], parts[1], nil
}

// Digest returns the hex encoded SHA-256 of content.
func Digest(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model provides the in-memory representation of a scanned source
// tree: frameworks, the modules they own, and the targets the orchestrator
// schedules.
//
// # Core Concepts
//
//   - Framework: A named group of modules discovered under the frameworks
//     directory. It owns its modules exclusively.
//
//   - Module: A buildable unit inside a framework, described by a Module.hcl
//     descriptor. It declares dependencies (strict prerequisites) and
//     references (ordering-only prerequisites).
//
//   - Target: The schedulable identity "<framework>/<module>". A target holds
//     the content digest of its module and refers back to it by index.
//
// # Two-phase construction
//
// Frameworks and modules are appended to a ScanContext while the loader walks
// the tree. Once discovery is complete, Freeze derives the target table and
// returns an immutable Graph. Targets store indices rather than pointers, so no
// handle captured before the freeze can be invalidated by table growth.
package model

// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the run lifecycle that scans descriptors,
// detects changes, emits the build description and persists the meta store,
// decoupled from any specific entrypoint like a CLI.
package app

// Package cli turns the modgen command line into an app.Config and a run
// mode. It owns the usage text and the process exit codes, including the
// code that tells the calling build to restart after a regeneration.
package cli

// Package main hosts the chapterize CLI entrypoint and command graph.
//
// The Cobra-based command tree resolves configuration, applies flag
// overrides, and hands one audiobook to the pipeline. Subcommands cover
// preflight checks, configuration scaffolding, and version reporting. Keep
// this package lean: detection and export semantics live in the internal
// packages, the CLI only shapes their input and renders their output.
package main

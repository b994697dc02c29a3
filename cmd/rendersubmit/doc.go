// Package main hosts the rendersubmit CLI entrypoint and command graph.
//
// The Cobra command tree resolves job settings for an open KeyShot scene,
// writes job bundles, and exposes the sticky settings, submission history,
// adaptor contract, and configuration as inspectable subcommands. Config
// loading and logger setup live in commandContext so subcommands only wire
// internal packages together.
package main

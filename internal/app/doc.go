// Package app wires application dependencies for the CLI.
//
// Config is loaded from a TOML file and overridden by flags. NewWire turns
// it into the concrete stores, node client and identity service; NewEngine
// builds the per-run services and the validation engine, resuming from a
// stored snapshot when one exists for the epoch.
package app

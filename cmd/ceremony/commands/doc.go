// Package commands defines the ceremony CLI and wires dependencies for subcommands.
//
// Commands
//
//   - import-key   Seal a hex secp256k1 key under the passphrase
//   - address      Print the participant address
//   - flip-keys    Print the public halves of the epoch's flip keys
//   - status       Show node sync, identity and ceremony timing
//   - run          Take part in the validation ceremony from a line console
//
// # Implementation
//
// The root command loads the TOML config, applies flag overrides and builds
// the dependency graph (stores, node client, identity service) before any
// subcommand runs. The run command builds the validation engine on top of
// it and feeds console lines to it as events.
package commands

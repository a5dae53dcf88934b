// Package app wires application dependencies for the CLI.
//
// It reads Config from the environment (with an optional env file), builds
// the key store, transport and auth service, and exposes them via the Wire
// struct for commands to use.
package app

// Package commands defines the kexgram CLI and wires dependencies for subcommands.
//
// Commands
//
//   - auth         Negotiate an auth key with a data center
//   - keys         List stored auth keys
//   - dcs          List known data center endpoints
//   - fingerprint  Print fingerprints of server RSA key files
//
// # Implementation
//
// The root command loads configuration from the environment and builds a
// dependency graph (RSA keyring, encrypted key store, dialer, auth service)
// before any subcommand runs, so handlers share one wired app context.
package commands

// Package cli implements the rstat command-line interface.
//
// Each command is a package-level cobra.Command registered on rootCmd from
// an init function. Commands stay thin: they resolve a host, build a
// remote.Remote and hand its updates to a presenter.
//
// # Command Structure
//
//	rstat watch [host]     - Print one line per sample
//	rstat top [host...]    - Live dashboard for one or more hosts
//	rstat script           - Print the remote polling command
//	rstat parse            - Parse captured probe output from stdin
//	rstat hosts [add]      - List or add hosts
//	rstat init             - Create .rstat.yaml
//	rstat version          - Print version information
//
// # Flag Handling
//
// Global flags (--config, --debug, --json, --no-color) live on the root
// command. Connection flags (--user, --port, --key, --interval, --top,
// --probe-failure, --insecure) are shared by watch and top through
// ConnectFlags.
//
// # Host Resolution
//
// A host argument is looked up in this order:
//
//  1. A host name from the config file
//  2. An alias from ~/.ssh/config
//  3. A literal [user@]host[:port]
//
// Without an argument the config's default host is used, then a picker
// when stdin is a terminal.
package cli

// Wifictl is the control utility for the wifid connectivity daemon.
//
// It talks to a running wifid instance over its HTTP API and provides
// status queries, network scanning, station and access point
// configuration, a live event stream, and an interactive network picker.
// Daemons on the local network can be located via mDNS discovery.
//
// Usage:
//
//	wifictl [command] [flags]
//
// Running without arguments launches the interactive network picker.
// See 'wifictl --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/embedfarm/wifid/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "wifictl",
	Short: "WiFi Connectivity Control Utility",
	Long: `Control utility for the wifid connectivity daemon.

Queries status, scans for networks, configures the station and access
point roles, and streams connectivity events from a running daemon.

If no command is specified, the interactive network picker will launch
automatically.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run the network picker when no subcommand provided
		return runNetworks(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wifictl %s (commit: %s)\n", version.Version, version.Commit)
	},
}

// Wifid is the WiFi connectivity daemon for embedded devices.
//
// It owns the device radio: station association, access point hosting,
// network scanning and addressing. Other programs talk to it over a local
// HTTP API; wifictl is the command line client.
//
// Usage:
//
//	wifid serve [flags]
//
// See 'wifid serve --help' for available options.
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
	Use:   "wifid",
	Short: "WiFi Connectivity Daemon",
	Long: `A daemon managing WiFi connectivity on an embedded device.

wifid brings up the station and access point roles described in its
configuration file, supervises the connection lifecycle, and serves a local
HTTP API for status queries, scans and configuration changes.

Note: Use the separate 'wifictl' utility to talk to a running daemon.`,
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wifid %s (commit: %s)\n", version.Version, version.Commit)
	},
}

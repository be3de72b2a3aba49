// Package tui implements the interactive network picker behind
// "wifictl networks".
//
// The picker is a bubbletea program with three screens: a scan screen with
// a spinner while the daemon sweeps for networks, a selection list showing
// SSID, security and signal strength, and a password prompt for protected
// networks. Selecting a network applies a station configuration through the
// wifid API and reports the connection outcome.
package tui

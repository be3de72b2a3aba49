package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/embedfarm/wifid/internal/client"
	"github.com/embedfarm/wifid/internal/config"
	"github.com/embedfarm/wifid/internal/discovery"
	"github.com/embedfarm/wifid/internal/server"
	"github.com/embedfarm/wifid/internal/tui"
)

// Common command flags
var (
	serverURL    string
	outputFormat string
	discTimeout  int
)

// Station configuration flags
var (
	staSSID     string
	staPassword string
	staIP       string
	staNetmask  string
	staGateway  string
	staHostname string
)

// Access point configuration flags
var (
	apSSID     string
	apPassword string
	apChannel  int
	apHidden   bool
	apMaxConns int
	apKeep     bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Daemon base URL (default: "+client.DefaultBaseURL+", or mDNS discovery)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, compact, json)")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(stationCmd)
	rootCmd.AddCommand(apCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(networksCmd)
	rootCmd.AddCommand(discoverCmd)
}

// getClient resolves the daemon to talk to: the --server flag if given,
// then the default local address, then mDNS discovery as a last resort.
func getClient() (*client.Client, error) {
	if serverURL != "" {
		return client.New(serverURL), nil
	}

	c := client.New("")
	if err := c.Ping(); err == nil {
		return c, nil
	}

	fmt.Fprintln(os.Stderr, "No local daemon, discovering via mDNS...")
	devices, err := discovery.ScanForDevices(discovery.DefaultScanTimeout)
	if err != nil {
		return nil, fmt.Errorf("discovery failed: %w", err)
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("no wifid daemon found; use --server to specify one")
	}
	fmt.Fprintf(os.Stderr, "Using %s\n", devices[0])
	return client.New(devices[0].BaseURL()), nil
}

// statusCmd queries daemon connectivity status
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show connectivity status",
	Long: `Display the connectivity status of a wifid daemon.

Reports the radio mode, station connection state and the current
addressing (station IP, access point IP, gateway, DNS).`,
	Example: `  # Detailed status from the local daemon
  wifictl status

  # One-line summary
  wifictl status --format compact

  # JSON output for scripting
  wifictl status --format json`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	c, err := getClient()
	if err != nil {
		return err
	}

	status, err := c.Status()
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	switch outputFormat {
	case "compact":
		fmt.Println(client.FormatStatusSummary(status))
	case "json":
		out, err := client.FormatJSON(status)
		if err != nil {
			return err
		}
		fmt.Println(out)
	default:
		fmt.Println(client.FormatStatusDetailed(status))
	}
	return nil
}

// scanCmd requests a network scan from the daemon
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for WiFi networks",
	Long: `Ask the daemon to scan for visible WiFi networks.

Concurrent scan requests are coalesced by the daemon, so running this
while another client scans returns the same sweep's results.`,
	Example: `  # Scan and print a table
  wifictl scan

  # JSON output for scripting
  wifictl scan --format json`,
	RunE: runScanNetworks,
}

func runScanNetworks(cmd *cobra.Command, args []string) error {
	c, err := getClient()
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, "Scanning...")
	scan, err := c.Scan()
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if outputFormat == "json" {
		out, err := client.FormatJSON(scan)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}

	if len(scan.Networks) == 0 {
		fmt.Println("No networks found.")
		return nil
	}
	fmt.Print(client.FormatScanTable(scan))
	return nil
}

// stationCmd groups station role operations
var stationCmd = &cobra.Command{
	Use:   "station",
	Short: "Configure the station (client) role",
}

var stationSetCmd = &cobra.Command{
	Use:   "set --ssid <name>",
	Short: "Connect the station to a network",
	Long: `Configure the station role and connect to a network.

If --password is omitted for a protected network, the passphrase is read
interactively without echo. Omitting --ip selects DHCP; providing --ip
and --netmask configures a static address.

The daemon persists the settings, so the connection is restored after a
restart.`,
	Example: `  # Connect with an interactive password prompt
  wifictl station set --ssid homelab

  # Connect to an open network
  wifictl station set --ssid cafe --open

  # Static addressing
  wifictl station set --ssid homelab --ip 192.168.1.50 --netmask 255.255.255.0 --gateway 192.168.1.1`,
	RunE: runStationSet,
}

var stationOpen bool

var stationDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable the station role",
	Long:  `Disconnect from the current network and disable the station role.`,
	RunE:  runStationDisable,
}

func init() {
	stationSetCmd.Flags().StringVar(&staSSID, "ssid", "", "Network name (required)")
	stationSetCmd.Flags().StringVar(&staPassword, "password", "", "Network passphrase (prompted when omitted)")
	stationSetCmd.Flags().BoolVar(&stationOpen, "open", false, "Network is open (no passphrase)")
	stationSetCmd.Flags().StringVar(&staIP, "ip", "", "Static IP address (DHCP when omitted)")
	stationSetCmd.Flags().StringVar(&staNetmask, "netmask", "", "Static netmask")
	stationSetCmd.Flags().StringVar(&staGateway, "gateway", "", "Static gateway")
	stationSetCmd.Flags().StringVar(&staHostname, "hostname", "", "DHCP host name override")
	_ = stationSetCmd.MarkFlagRequired("ssid")

	stationCmd.AddCommand(stationSetCmd)
	stationCmd.AddCommand(stationDisableCmd)
}

func runStationSet(cmd *cobra.Command, args []string) error {
	password := staPassword
	if password == "" && !stationOpen {
		p, err := promptPassword(fmt.Sprintf("Passphrase for %q: ", staSSID))
		if err != nil {
			return err
		}
		password = p
	}

	sta := &config.Station{
		Enable:   true,
		SSID:     staSSID,
		Password: password,
		IP:       staIP,
		Netmask:  staNetmask,
		Gateway:  staGateway,
		Hostname: staHostname,
	}
	if err := config.ValidateStation(sta); err != nil {
		return err
	}

	c, err := getClient()
	if err != nil {
		return err
	}

	fmt.Printf("Connecting to %q...\n", staSSID)
	if err := c.SetStation(sta); err != nil {
		return fmt.Errorf("failed to apply station configuration: %s", client.ShortErrorMessage(err))
	}

	fmt.Println("Configuration applied. Run 'wifictl status' or 'wifictl watch' to follow progress.")
	return nil
}

func runStationDisable(cmd *cobra.Command, args []string) error {
	c, err := getClient()
	if err != nil {
		return err
	}
	if err := c.SetStation(&config.Station{Enable: false}); err != nil {
		return fmt.Errorf("failed to disable station: %s", client.ShortErrorMessage(err))
	}
	fmt.Println("Station disabled.")
	return nil
}

// promptPassword reads a passphrase without echo. Falls back to a plain
// line read when stdin is not a terminal.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read passphrase: %w", err)
		}
		return string(b), nil
	}
	var line string
	if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
		return "", fmt.Errorf("failed to read passphrase: %w", err)
	}
	return line, nil
}

// apCmd groups access point role operations
var apCmd = &cobra.Command{
	Use:   "ap",
	Short: "Configure the access point role",
}

var apSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Configure and enable the access point",
	Long: `Configure the access point role.

A trailing run of '?' characters in the SSID expands to hex digits of
the device MAC address, so a fleet can share one configuration while
broadcasting distinct names. An empty password creates an open network.`,
	Example: `  # WPA2 access point on channel 6
  wifictl ap set --ssid "device_??????" --password secret123

  # Open network, hidden SSID
  wifictl ap set --ssid setup-net --hidden

  # Keep the AP up after the station connects
  wifictl ap set --ssid "device_??????" --password secret123 --keep`,
	RunE: runAPSet,
}

var apDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable the access point role",
	RunE:  runAPDisable,
}

func init() {
	apSetCmd.Flags().StringVar(&apSSID, "ssid", config.DefaultAPSSID, "Access point SSID ('?' expands to MAC digits)")
	apSetCmd.Flags().StringVar(&apPassword, "password", "", "WPA2 passphrase (open network when empty)")
	apSetCmd.Flags().IntVar(&apChannel, "channel", config.DefaultAPChannel, "WiFi channel (1-13)")
	apSetCmd.Flags().BoolVar(&apHidden, "hidden", false, "Do not broadcast the SSID")
	apSetCmd.Flags().IntVar(&apMaxConns, "max-connections", config.DefaultAPMaxConns, "Maximum concurrent clients")
	apSetCmd.Flags().BoolVar(&apKeep, "keep", false, "Keep the AP up when the station is enabled")

	apCmd.AddCommand(apSetCmd)
	apCmd.AddCommand(apDisableCmd)
}

func runAPSet(cmd *cobra.Command, args []string) error {
	ap := &config.AccessPoint{
		Enable:         true,
		SSID:           apSSID,
		Password:       apPassword,
		Channel:        apChannel,
		Hidden:         apHidden,
		MaxConnections: apMaxConns,
		KeepEnabled:    apKeep,
	}
	ap.ApplyDefaults()
	if err := config.ValidateAccessPoint(ap); err != nil {
		return err
	}

	c, err := getClient()
	if err != nil {
		return err
	}
	if err := c.SetAccessPoint(ap); err != nil {
		return fmt.Errorf("failed to apply access point configuration: %s", client.ShortErrorMessage(err))
	}
	fmt.Println("Access point configuration applied.")
	return nil
}

func runAPDisable(cmd *cobra.Command, args []string) error {
	c, err := getClient()
	if err != nil {
		return err
	}
	if err := c.SetAccessPoint(&config.AccessPoint{Enable: false}); err != nil {
		return fmt.Errorf("failed to disable access point: %s", client.ShortErrorMessage(err))
	}
	fmt.Println("Access point disabled.")
	return nil
}

// watchCmd streams connectivity events
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream connectivity events",
	Long: `Subscribe to the daemon's event stream and print connectivity
changes as they happen. Press Ctrl+C to stop.`,
	Example: `  wifictl watch`,
	RunE:    runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	c, err := getClient()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintln(os.Stderr, "Watching for events (Ctrl+C to stop)...")
	err = c.Watch(ctx, func(msg server.EventMessage) {
		fmt.Printf("%s  %s\n", msg.Timestamp.Format(time.RFC3339), msg.Event)
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// networksCmd launches the interactive network picker
var networksCmd = &cobra.Command{
	Use:   "networks",
	Short: "Launch the interactive network picker",
	Long: `Launch a TUI that scans for networks, lets you pick one, prompts
for the passphrase and follows the connection until an address is
acquired.

This is the recommended way to get a device online for most users.`,
	Example: `  # Launch the picker against the local daemon
  wifictl networks
  # Or simply (the picker is the default):
  wifictl

  # Launch against a remote daemon
  wifictl networks --server http://192.168.4.1:8590`,
	RunE: runNetworks,
}

func runNetworks(cmd *cobra.Command, args []string) error {
	c, err := getClient()
	if err != nil {
		return err
	}
	if err := tui.Run(c); err != nil {
		return fmt.Errorf("network picker error: %w", err)
	}
	return nil
}

// discoverCmd finds wifid daemons on the network
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover wifid daemons on the network",
	Long: `Discover wifid daemons using mDNS/DNS-SD.

This command listens for mDNS broadcasts and displays all discovered
daemons with their addresses and connectivity state.`,
	Example: `  # Discover for 5 seconds (default)
  wifictl discover

  # Longer scan for slow networks
  wifictl discover --timeout 15`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntVar(&discTimeout, "timeout", 5, "Discovery timeout in seconds")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	fmt.Printf("Discovering wifid daemons (timeout: %ds)...\n\n", discTimeout)

	devices, err := discovery.ScanForDevices(time.Duration(discTimeout) * time.Second)
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	if len(devices) == 0 {
		fmt.Println("No daemons found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the device is powered on")
		fmt.Println("  - If the device is in setup mode, join its access point first")
		fmt.Println("  - Try increasing --timeout for slower networks")
		fmt.Println("  - Use --server to specify the address manually")
		return nil
	}

	fmt.Printf("Found %d daemon(s):\n\n", len(devices))
	for i, device := range devices {
		fmt.Printf("%d. %s\n", i+1, device.ID)
		fmt.Printf("   Address: %s:%d\n", device.IP, device.Port)
		if state := device.GetMetadata("state"); state != "" {
			fmt.Printf("   State:   %s\n", state)
		}
		if v := device.GetMetadata("version"); v != "" {
			fmt.Printf("   Version: %s\n", v)
		}
		fmt.Println()
	}

	fmt.Println("Use 'wifictl status --server http://<address>:<port>' to query a daemon")
	return nil
}

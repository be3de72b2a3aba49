package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/embedfarm/wifid/internal/config"
	"github.com/embedfarm/wifid/internal/discovery"
	"github.com/embedfarm/wifid/internal/logging"
	"github.com/embedfarm/wifid/internal/radio/sim"
	"github.com/embedfarm/wifid/internal/server"
	"github.com/embedfarm/wifid/internal/version"
	"github.com/embedfarm/wifid/internal/wifi"
)

// Serve command flags
var (
	configPath string
	listenAddr string
	logLevel   string
	noMDNS     bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the connectivity daemon",
	Long: `Start wifid: bring up the configured WiFi roles and serve the API.

The configuration file is read from --config, the WIFID_CONFIG environment
variable, or /etc/wifid/config.yaml, in that order. A missing file is not an
error; the daemon starts with defaults (access point enabled) so a freshly
provisioned device is reachable.`,
	Example: `  # Start with the default configuration path
  wifid serve

  # Start with an explicit configuration file and debug logging
  wifid serve --config ./wifid.yaml --log-level debug

  # Bind the API somewhere other than the configured listen address
  wifid serve --listen 0.0.0.0:8590`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&configPath, "config", "", "Path to configuration file (default: $WIFID_CONFIG or /etc/wifid/config.yaml)")
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "API listen address (overrides the configuration file)")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error; overrides the configuration file)")
	serveCmd.Flags().BoolVar(&noMDNS, "no-mdns", false, "Disable mDNS announcement")
}

func runServe(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.Path()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level := logLevel
	if level == "" {
		level = cfg.LogLevel
	}
	if level == "" {
		level = "info"
	}
	if err := logging.Initialize(level); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	logging.Info("Starting wifid",
		zap.String("version", version.Version),
		zap.String("config", path),
		zap.String("driver", cfg.Driver),
	)

	radio, err := buildRadio(cfg)
	if err != nil {
		return err
	}
	defer radio.Close()

	manager, err := wifi.NewManager(&wifi.ManagerConfig{
		Radio:    radio,
		Hostname: cfg.StationHostname(),
		MAC:      cfg.Device.MAC,
	})
	if err != nil {
		return fmt.Errorf("failed to create wifi manager: %w", err)
	}
	defer manager.Close()
	radio.SetHandler(manager.HandleEvent)

	if err := manager.ApplyConfig(cfg.Wifi); err != nil {
		// A failed role bring-up is not fatal: the API stays up so the
		// configuration can be corrected remotely.
		logging.Error("Failed to apply WiFi configuration", zap.Error(err))
	}

	listen := listenAddr
	if listen == "" {
		listen = cfg.API.Listen
	}
	srv, err := server.New(&server.Config{
		Listen:     listen,
		ConfigPath: path,
	}, manager, cfg)
	if err != nil {
		return fmt.Errorf("failed to create API server: %w", err)
	}

	var cancelAnnounce func()
	if !noMDNS {
		cancelAnnounce = announceOverMDNS(cfg, manager, listen)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping...")
	case err := <-errChan:
		if err != nil {
			return err
		}
	}

	if cancelAnnounce != nil {
		cancelAnnounce()
	}
	return srv.Shutdown(context.Background())
}

// buildRadio constructs the configured radio driver. The simulator is the
// only built-in driver; real hardware is driven through out-of-tree
// implementations of wifi.Radio.
func buildRadio(cfg *config.Config) (*sim.Simulator, error) {
	if cfg.Driver != "sim" {
		return nil, fmt.Errorf("unknown radio driver %q", cfg.Driver)
	}

	simCfg := sim.Config{
		// Locally administered address so the simulator has a stable
		// identity without touching real hardware.
		MAC: [6]byte{0x02, 0x4E, 0x6F, 0x00, 0x00, 0x01},
		Networks: []sim.Network{
			{SSID: "simnet", Password: "simnet-pass", Channel: 6, RSSI: -52},
			{SSID: "simnet-guest", Channel: 11, RSSI: -67},
		},
	}
	if cfg.Device.MAC != "" {
		hw, err := net.ParseMAC(cfg.Device.MAC)
		if err != nil || len(hw) != 6 {
			return nil, fmt.Errorf("invalid device MAC %q", cfg.Device.MAC)
		}
		copy(simCfg.MAC[:], hw)
	}
	return sim.New(simCfg), nil
}

// announceOverMDNS publishes the daemon over mDNS and keeps the TXT state
// current as connectivity changes. Returns a cancel function.
func announceOverMDNS(cfg *config.Config, manager *wifi.Manager, listen string) func() {
	port := apiPort(listen)
	ann := discovery.NewAnnouncement(cfg.Device.ID, port, version.Version)

	if state, ok := manager.Status(); ok {
		_ = ann.SetState(state)
	}
	if err := ann.Publish(); err != nil {
		logging.Warn("Failed to announce over mDNS", zap.Error(err))
	}

	cancelSub := manager.OnChange(func(wifi.Notification) {
		state, ok := manager.Status()
		if !ok {
			state = "unknown"
		}
		if err := ann.SetState(state); err != nil {
			logging.Warn("Failed to update mDNS state", zap.Error(err))
		}
	})

	return func() {
		cancelSub()
		ann.Shutdown()
	}
}

// apiPort extracts the port from a listen address, defaulting to the
// standard API port when unparsable.
func apiPort(listen string) int {
	_, portStr, err := net.SplitHostPort(listen)
	if err != nil {
		return 8590
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 8590
	}
	return port
}

// Package config provides configuration file handling for wifid.
//
// This package manages a YAML-based configuration file describing the device
// identity, the WiFi station and access point roles to bring up at boot, and
// the control API settings. The daemon reads /etc/wifid/config.yaml by
// default; WIFID_CONFIG overrides the location (useful for tests and for
// running unprivileged).
//
// # Validation
//
// ValidateStation and ValidateAccessPoint check user-supplied settings before
// any radio operation is attempted. Validation failures wrap ErrInvalid so
// callers can map them to a 400 response or a usage error without touching
// the radio:
//
//	if err := config.ValidateStation(sta); err != nil {
//	    if errors.Is(err, config.ErrInvalid) { ... }
//	}
//
// # Usage Example
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cfg.Wifi.Station.Enable = true
//	cfg.Wifi.Station.SSID = "net1"
//	if err := cfg.Save(""); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// File operations are protected by a mutex to ensure atomic writes.
package config

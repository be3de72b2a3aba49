package config

import (
	"errors"
	"fmt"
	"net"
)

// ErrInvalid is the sentinel wrapped by every validation failure, so callers
// can distinguish bad user input from radio failures.
var ErrInvalid = errors.New("invalid configuration")

const (
	// MaxSSIDLen is the 802.11 SSID length limit in bytes.
	MaxSSIDLen = 32

	// MinPasswordLen and MaxPasswordLen bound WPA2 passphrases.
	MinPasswordLen = 8
	MaxPasswordLen = 64
)

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func validIP(s string) bool {
	ip := net.ParseIP(s)
	return ip != nil && ip.To4() != nil
}

// ValidateStation validates a station role configuration.
// A disabled station is always valid; nothing else is checked for it.
func ValidateStation(sta *Station) error {
	if sta == nil {
		return invalidf("station config is missing")
	}
	if !sta.Enable {
		return nil
	}

	if sta.SSID == "" {
		return invalidf("station SSID is required")
	}
	if len(sta.SSID) > MaxSSIDLen {
		return invalidf("station SSID exceeds %d bytes", MaxSSIDLen)
	}
	if sta.Password != "" {
		if len(sta.Password) < MinPasswordLen || len(sta.Password) > MaxPasswordLen {
			return invalidf("station password must be %d-%d characters", MinPasswordLen, MaxPasswordLen)
		}
	}

	// Static addressing is all-or-nothing: IP and netmask together,
	// gateway optional.
	if (sta.IP == "") != (sta.Netmask == "") {
		return invalidf("station static IP requires both ip and netmask")
	}
	if sta.IP != "" {
		if !validIP(sta.IP) {
			return invalidf("station ip %q is not a valid IPv4 address", sta.IP)
		}
		if !validIP(sta.Netmask) {
			return invalidf("station netmask %q is not a valid IPv4 mask", sta.Netmask)
		}
		if sta.Gateway != "" && !validIP(sta.Gateway) {
			return invalidf("station gateway %q is not a valid IPv4 address", sta.Gateway)
		}
	} else if sta.Gateway != "" {
		return invalidf("station gateway requires a static ip and netmask")
	}

	return nil
}

// ValidateAccessPoint validates an access point role configuration.
// A disabled AP is always valid; nothing else is checked for it.
func ValidateAccessPoint(ap *AccessPoint) error {
	if ap == nil {
		return invalidf("access point config is missing")
	}
	if !ap.Enable {
		return nil
	}

	if ap.SSID == "" {
		return invalidf("AP SSID is required")
	}
	if len(ap.SSID) > MaxSSIDLen {
		return invalidf("AP SSID exceeds %d bytes", MaxSSIDLen)
	}
	if ap.Password != "" {
		if len(ap.Password) < MinPasswordLen || len(ap.Password) > MaxPasswordLen {
			return invalidf("AP password must be %d-%d characters", MinPasswordLen, MaxPasswordLen)
		}
	}
	if ap.Channel < 1 || ap.Channel > 14 {
		return invalidf("AP channel %d is out of range 1-14", ap.Channel)
	}
	if ap.MaxConnections < 1 || ap.MaxConnections > 16 {
		return invalidf("AP max_connections %d is out of range 1-16", ap.MaxConnections)
	}

	if !validIP(ap.IP) {
		return invalidf("AP ip %q is not a valid IPv4 address", ap.IP)
	}
	if !validIP(ap.Netmask) {
		return invalidf("AP netmask %q is not a valid IPv4 mask", ap.Netmask)
	}
	if ap.Gateway != "" && !validIP(ap.Gateway) {
		return invalidf("AP gateway %q is not a valid IPv4 address", ap.Gateway)
	}
	if !validIP(ap.DHCPStart) {
		return invalidf("AP dhcp_start %q is not a valid IPv4 address", ap.DHCPStart)
	}
	if !validIP(ap.DHCPEnd) {
		return invalidf("AP dhcp_end %q is not a valid IPv4 address", ap.DHCPEnd)
	}

	return nil
}

// ValidateWifi validates both roles of a combined WiFi configuration.
func ValidateWifi(w *Wifi) error {
	if w == nil {
		return invalidf("wifi config is missing")
	}
	if err := ValidateStation(w.Station); err != nil {
		return err
	}
	return ValidateAccessPoint(w.AccessPoint)
}

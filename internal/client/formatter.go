package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/embedfarm/wifid/internal/server"
)

// FormatStatusSummary returns a one-line summary of the connectivity status
func FormatStatusSummary(s *server.StatusResponse) string {
	switch {
	case s.State == "got ip":
		return fmt.Sprintf("connected to %s (%s)", s.SSID, s.StationIP)
	case s.State != "":
		return fmt.Sprintf("station %s", s.State)
	case s.APIP != "":
		return fmt.Sprintf("access point up (%s)", s.APIP)
	default:
		return fmt.Sprintf("radio %s", s.Mode)
	}
}

// FormatStatusDetailed returns a multi-line status suitable for terminal display
func FormatStatusDetailed(s *server.StatusResponse) string {
	var b strings.Builder

	b.WriteString("=== WiFi Status ===\n")
	b.WriteString(fmt.Sprintf("Mode:      %s\n", s.Mode))
	if s.State != "" {
		b.WriteString(fmt.Sprintf("Station:   %s\n", s.State))
	} else {
		b.WriteString("Station:   (not configured)\n")
	}
	if s.SSID != "" {
		b.WriteString(fmt.Sprintf("SSID:      %s\n", s.SSID))
	}
	if s.StationIP != "" {
		b.WriteString(fmt.Sprintf("IP:        %s\n", s.StationIP))
	}
	if s.Gateway != "" {
		b.WriteString(fmt.Sprintf("Gateway:   %s\n", s.Gateway))
	}
	if s.DNS != "" {
		b.WriteString(fmt.Sprintf("DNS:       %s\n", s.DNS))
	}
	if s.APIP != "" {
		b.WriteString(fmt.Sprintf("AP IP:     %s\n", s.APIP))
	}

	return b.String()
}

// FormatScanTable returns scan results as an aligned table
func FormatScanTable(scan *server.ScanResponse) string {
	if len(scan.Networks) == 0 {
		return "No networks found.\n"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-32s %-17s %-12s %4s %6s\n",
		"SSID", "BSSID", "AUTH", "CHAN", "RSSI"))
	for _, n := range scan.Networks {
		ssid := n.SSID
		if ssid == "" {
			ssid = "(hidden)"
		}
		b.WriteString(fmt.Sprintf("%-32s %-17s %-12s %4d %6d\n",
			ssid, n.BSSID, n.Auth, n.Channel, n.RSSI))
	}
	return b.String()
}

// FormatJSON renders any API response as indented JSON
func FormatJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode JSON: %w", err)
	}
	return string(data) + "\n", nil
}

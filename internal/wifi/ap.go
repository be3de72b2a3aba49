package wifi

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/embedfarm/wifid/internal/config"
	"github.com/embedfarm/wifid/internal/logging"
)

const apBeaconInterval = 100 * time.Millisecond

// SetupAccessPoint applies an access point role configuration. A disabled
// config removes the AP role. An enabled config brings the role up, expands
// the SSID placeholder, applies addressing and the DHCP lease range, and
// starts the DHCP server.
func (m *Manager) SetupAccessPoint(ap *config.AccessPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setupAccessPointLocked(ap)
}

func (m *Manager) setupAccessPointLocked(ap *config.AccessPoint) error {
	if err := config.ValidateAccessPoint(ap); err != nil {
		logging.Error("WiFi AP: invalid config", zap.Error(err))
		return err
	}

	if !ap.Enable {
		return m.removeModeLocked(ModeAccessPoint)
	}

	if err := m.addModeLocked(ModeAccessPoint); err != nil {
		return err
	}

	ssid := ExpandPlaceholders(ap.SSID, m.stationMACLocked())

	settings := APSettings{
		SSID:           ssid,
		Password:       ap.Password,
		Auth:           AuthWPA2PSK,
		Channel:        ap.Channel,
		Hidden:         ap.Hidden,
		MaxConnections: ap.MaxConnections,
		BeaconInterval: apBeaconInterval,
	}
	if ap.Password == "" {
		settings.Auth = AuthOpen
	}
	if err := m.radio.SetAPSettings(settings); err != nil {
		logging.Error("WiFi AP: failed to set config", zap.Error(err))
		return err
	}

	// The lease range must be staged while the DHCP server is down.
	if err := m.radio.StopDHCPServer(); err != nil {
		logging.Warn("WiFi AP: failed to stop DHCP server", zap.Error(err))
	}
	info := IPInfo{IP: ap.IP, Netmask: ap.Netmask, Gateway: ap.Gateway}
	if err := m.radio.SetIPInfo(IfaceAccessPoint, info); err != nil {
		logging.Error("WiFi AP: failed to set IP config", zap.Error(err))
		return err
	}
	lease := DHCPLease{Start: ap.DHCPStart, End: ap.DHCPEnd}
	if err := m.radio.SetDHCPLease(lease); err != nil {
		logging.Error("WiFi AP: failed to set DHCP config", zap.Error(err))
		return err
	}
	if err := m.radio.StartDHCPServer(); err != nil {
		logging.Error("WiFi AP: failed to start DHCP server", zap.Error(err))
		return err
	}

	logging.Info("WiFi AP IP",
		zap.String("ip", ap.IP),
		zap.String("netmask", ap.Netmask),
		zap.String("gateway", ap.Gateway),
		zap.String("dhcp_start", ap.DHCPStart),
		zap.String("dhcp_end", ap.DHCPEnd),
	)

	// There is no way to tell whether the AP is running already; start is
	// idempotent for an already-running radio.
	_ = m.radio.Start()

	logging.Info("WiFi AP: up",
		zap.String("ssid", ssid),
		zap.Int("channel", ap.Channel),
	)

	return nil
}

// ExpandPlaceholders replaces '?' characters in an SSID with the
// corresponding hex digits of the device MAC, aligned from the end:
// "gate_??????" with MAC ending AB:CD:EF becomes "gate_ABCDEF".
func ExpandPlaceholders(ssid string, mac [6]byte) string {
	digits := fmt.Sprintf("%02X%02X%02X%02X%02X%02X", mac[0], mac[1], mac[2], mac[3], mac[4], mac[5])

	out := []byte(ssid)
	di := len(digits) - 1
	for i := len(out) - 1; i >= 0 && di >= 0; i-- {
		if out[i] == '?' {
			out[i] = digits[di]
			di--
		}
	}
	return string(out)
}

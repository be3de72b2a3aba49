package wifi

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/embedfarm/wifid/internal/config"
	"github.com/embedfarm/wifid/internal/logging"
)

// SetupStation applies a station role configuration. A disabled config
// removes the station role and clears the reconnect policy. An enabled
// config brings the role up, stages SSID/password and addressing, and issues
// a connect request; association itself completes asynchronously.
//
// The sequence is not transactional: a failure part-way leaves whatever the
// preceding steps already applied, mirroring the underlying radio control
// surface which cannot be rolled back.
func (m *Manager) SetupStation(sta *config.Station) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setupStationLocked(sta)
}

func (m *Manager) setupStationLocked(sta *config.Station) error {
	if err := config.ValidateStation(sta); err != nil {
		logging.Error("WiFi STA: invalid config", zap.Error(err))
		return err
	}

	if !sta.Enable {
		m.shouldReconnect = false
		return m.removeModeLocked(ModeStation)
	}

	if err := m.addModeLocked(ModeStation); err != nil {
		return err
	}

	if sta.IP != "" && sta.Netmask != "" {
		if err := m.radio.StopDHCPClient(); err != nil {
			logging.Warn("WiFi STA: failed to stop DHCP client", zap.Error(err))
		}
		info := IPInfo{IP: sta.IP, Netmask: sta.Netmask, Gateway: sta.Gateway}
		if err := m.radio.SetIPInfo(IfaceStation, info); err != nil {
			logging.Error("Failed to set WiFi STA IP config", zap.Error(err))
			return err
		}
		logging.Info("WiFi STA IP",
			zap.String("ip", sta.IP),
			zap.String("netmask", sta.Netmask),
			zap.String("gateway", sta.Gateway),
		)
	} else {
		if err := m.radio.StartDHCPClient(); err != nil {
			logging.Error("Failed to start WiFi STA DHCP client", zap.Error(err))
			return err
		}
	}

	settings := StationSettings{SSID: sta.SSID, Password: sta.Password}
	if err := m.radio.SetStationSettings(settings); err != nil {
		logging.Error("Failed to set STA config", zap.Error(err))
		return err
	}

	m.shouldReconnect = true

	hostname := sta.Hostname
	if hostname == "" {
		hostname = m.hostname
	}
	if hostname != "" {
		err := m.radio.SetHostname(hostname)
		if err != nil && !errors.Is(err, ErrInterfaceNotReady) {
			logging.Error("WiFi STA: failed to set host name", zap.Error(err))
			return err
		}
	}

	if err := m.ensureStartedLocked(m.radio.Connect); err != nil {
		logging.Error("WiFi STA: connect failed", zap.Error(err))
		return fmt.Errorf("connect request failed: %w", err)
	}

	logging.Info("WiFi STA: connecting", zap.String("ssid", sta.SSID))

	return nil
}

// Disconnect drops the station association and disables the auto-reconnect
// policy. The radio mode is left unchanged.
func (m *Manager) Disconnect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.shouldReconnect = false
	if err := m.radio.Disconnect(); err != nil {
		logging.Warn("WiFi STA: disconnect failed", zap.Error(err))
		return err
	}
	return nil
}

// ApplyConfig applies a combined station and access point configuration:
// AP-only when only the AP is enabled, both roles when both are enabled and
// the AP is marked keep_enabled, station-only when only the station is
// enabled, radio off otherwise.
func (m *Manager) ApplyConfig(w *config.Wifi) error {
	if err := config.ValidateWifi(w); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sta, ap := w.Station, w.AccessPoint
	switch {
	case ap.Enable && !sta.Enable:
		return m.setupAccessPointLocked(ap)
	case ap.Enable && sta.Enable && ap.KeepEnabled:
		if err := m.setModeLocked(ModeDual); err != nil {
			return err
		}
		if err := m.setupAccessPointLocked(ap); err != nil {
			return err
		}
		return m.setupStationLocked(sta)
	case sta.Enable:
		return m.setupStationLocked(sta)
	default:
		return m.setModeLocked(ModeOff)
	}
}

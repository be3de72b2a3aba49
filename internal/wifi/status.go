package wifi

// Status returns the station connection state as a string ("idle",
// "connecting", "associated", "got ip"). ok is false when no station has
// been configured.
func (m *Manager) Status() (status string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.staState == staNone {
		return "", false
	}
	return m.staState.String(), true
}

// ConnectedSSID returns the currently associated network. ok is false when
// not associated.
func (m *Manager) ConnectedSSID() (ssid string, ok bool) {
	s, err := m.radio.ConnectedSSID()
	if err != nil || s == "" {
		return "", false
	}
	return s, true
}

// StationIP returns the station interface address. ok is false while the
// interface has no address.
func (m *Manager) StationIP() (ip string, ok bool) {
	return m.ifaceIP(IfaceStation)
}

// APIP returns the access point interface address. ok is false while the
// interface has no address.
func (m *Manager) APIP() (ip string, ok bool) {
	return m.ifaceIP(IfaceAccessPoint)
}

// Gateway returns the station default gateway. ok is false while unknown.
func (m *Manager) Gateway() (gw string, ok bool) {
	info, err := m.radio.IPInfo(IfaceStation)
	if err != nil || info.Gateway == "" {
		return "", false
	}
	return info.Gateway, true
}

// DNSServer returns the station DNS server. ok is false while unknown.
func (m *Manager) DNSServer() (dns string, ok bool) {
	s, err := m.radio.DNSServer()
	if err != nil || s == "" {
		return "", false
	}
	return s, true
}

func (m *Manager) ifaceIP(iface Iface) (string, bool) {
	info, err := m.radio.IPInfo(iface)
	if err != nil || info.IP == "" {
		return "", false
	}
	return info.IP, true
}

package wifi

import (
	"testing"

	"github.com/embedfarm/wifid/internal/config"
)

func apConfig() *config.AccessPoint {
	return &config.AccessPoint{
		Enable:         true,
		SSID:           "gate_??????",
		Password:       "letmein1",
		Channel:        6,
		MaxConnections: 8,
		IP:             "192.168.4.1",
		Netmask:        "255.255.255.0",
		Gateway:        "192.168.4.1",
		DHCPStart:      "192.168.4.2",
		DHCPEnd:        "192.168.4.100",
	}
}

func TestExpandPlaceholders(t *testing.T) {
	mac := [6]byte{0xC4, 0xBE, 0x84, 0x74, 0x86, 0x37}

	tests := []struct {
		ssid string
		want string
	}{
		{"gate_??????", "gate_748637"},
		{"gate_????????????", "gate_C4BE84748637"},
		{"no placeholders", "no placeholders"},
		{"???", "637"},
		{"a?b?c", "a3b7c"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ExpandPlaceholders(tt.ssid, mac); got != tt.want {
			t.Errorf("ExpandPlaceholders(%q) = %q, want %q", tt.ssid, got, tt.want)
		}
	}
}

func TestSetupAccessPoint(t *testing.T) {
	m, radio := newTestManager(t)

	if err := m.SetupAccessPoint(apConfig()); err != nil {
		t.Fatalf("SetupAccessPoint() error = %v", err)
	}

	if m.Mode() != ModeAccessPoint {
		t.Errorf("Mode() = %v, want AP", m.Mode())
	}
	// Placeholder expands with the fake radio's MAC C4:BE:84:01:02:03
	if radio.apSettings.SSID != "gate_010203" {
		t.Errorf("AP SSID = %q, want gate_010203", radio.apSettings.SSID)
	}
	if radio.apSettings.Auth != AuthWPA2PSK {
		t.Errorf("AP auth = %v, want WPA2-PSK", radio.apSettings.Auth)
	}
	if radio.lease.Start != "192.168.4.2" || radio.lease.End != "192.168.4.100" {
		t.Errorf("DHCP lease = %+v", radio.lease)
	}
	if !radio.dhcpServer {
		t.Error("DHCP server should be running")
	}
	info := radio.ipInfo[IfaceAccessPoint]
	if info.IP != "192.168.4.1" {
		t.Errorf("AP IP info = %+v", info)
	}
}

func TestSetupAccessPointOpenNetwork(t *testing.T) {
	m, radio := newTestManager(t)

	ap := apConfig()
	ap.Password = ""
	if err := m.SetupAccessPoint(ap); err != nil {
		t.Fatalf("SetupAccessPoint() error = %v", err)
	}
	if radio.apSettings.Auth != AuthOpen {
		t.Errorf("AP auth = %v, want open for empty password", radio.apSettings.Auth)
	}
}

// The DHCP lease range must be staged while the server is stopped; the fake
// radio rejects SetDHCPLease otherwise.
func TestSetupAccessPointLeaseBeforeServerStart(t *testing.T) {
	m, radio := newTestManager(t)

	radio.dhcpServer = true // pretend a previous AP session left it running
	if err := m.SetupAccessPoint(apConfig()); err != nil {
		t.Fatalf("SetupAccessPoint() error = %v", err)
	}

	var stopIdx, leaseIdx, startIdx int
	for i, c := range radio.calls {
		switch c {
		case "StopDHCPServer":
			stopIdx = i
		case "SetDHCPLease":
			leaseIdx = i
		case "StartDHCPServer":
			startIdx = i
		}
	}
	if !(stopIdx < leaseIdx && leaseIdx < startIdx) {
		t.Errorf("DHCP ordering = stop@%d lease@%d start@%d, want stop < lease < start",
			stopIdx, leaseIdx, startIdx)
	}
}

func TestSetupAccessPointDisabledRemovesRole(t *testing.T) {
	m, _ := newTestManager(t)

	if err := m.SetupAccessPoint(apConfig()); err != nil {
		t.Fatalf("SetupAccessPoint() error = %v", err)
	}
	if err := m.SetupAccessPoint(&config.AccessPoint{}); err != nil {
		t.Fatalf("SetupAccessPoint(disabled) error = %v", err)
	}
	if m.Mode() != ModeOff {
		t.Errorf("Mode() = %v, want off", m.Mode())
	}
}

func TestSetupAccessPointKeepsStationRole(t *testing.T) {
	m, _ := newTestManager(t)

	if err := m.SetupStation(staConfig()); err != nil {
		t.Fatalf("SetupStation() error = %v", err)
	}
	if err := m.SetupAccessPoint(apConfig()); err != nil {
		t.Fatalf("SetupAccessPoint() error = %v", err)
	}
	if m.Mode() != ModeDual {
		t.Errorf("Mode() = %v, want AP+STA", m.Mode())
	}

	// Removing the AP role collapses back to station-only.
	if err := m.SetupAccessPoint(&config.AccessPoint{}); err != nil {
		t.Fatalf("SetupAccessPoint(disabled) error = %v", err)
	}
	if m.Mode() != ModeStation {
		t.Errorf("Mode() = %v, want STA", m.Mode())
	}
}

func TestSetupAccessPointInvalidConfig(t *testing.T) {
	m, radio := newTestManager(t)

	ap := apConfig()
	ap.Channel = 99
	if err := m.SetupAccessPoint(ap); err == nil {
		t.Fatal("SetupAccessPoint() should reject channel 99")
	}
	if len(radio.calls) != 0 {
		t.Errorf("radio calls = %v, want none for invalid config", radio.calls)
	}
}

func TestManagerConfigMACOverridesRadio(t *testing.T) {
	radio := newFakeRadio()
	m, err := NewManager(&ManagerConfig{
		Radio: radio,
		MAC:   "AA:BB:CC:DD:EE:FF",
	})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	defer m.Close()

	if err := m.SetupAccessPoint(apConfig()); err != nil {
		t.Fatalf("SetupAccessPoint() error = %v", err)
	}
	if radio.apSettings.SSID != "gate_DDEEFF" {
		t.Errorf("AP SSID = %q, want gate_DDEEFF", radio.apSettings.SSID)
	}
	if got := radio.callCount("StationMAC"); got != 0 {
		t.Errorf("StationMAC called %d times, want 0 with an explicit MAC", got)
	}
}

func TestNewManagerRequiresRadio(t *testing.T) {
	if _, err := NewManager(nil); err == nil {
		t.Error("NewManager(nil) should fail")
	}
	if _, err := NewManager(&ManagerConfig{}); err == nil {
		t.Error("NewManager without radio should fail")
	}
	if _, err := NewManager(&ManagerConfig{Radio: newFakeRadio(), MAC: "zz"}); err == nil {
		t.Error("NewManager with a malformed MAC should fail")
	}
}

package discovery

import (
	"net"
	"testing"

	"github.com/grandcat/zeroconf"
)

func TestDeviceBaseURL(t *testing.T) {
	d := &Device{ID: "wifid", IP: "192.168.1.40", Port: 8590}
	if got := d.BaseURL(); got != "http://192.168.1.40:8590" {
		t.Errorf("BaseURL() = %q", got)
	}
}

func TestDeviceGetMetadata(t *testing.T) {
	d := &Device{Metadata: map[string]string{"state": "got ip"}}
	if got := d.GetMetadata("state"); got != "got ip" {
		t.Errorf("GetMetadata(state) = %q", got)
	}
	if got := d.GetMetadata("missing"); got != "" {
		t.Errorf("GetMetadata(missing) = %q", got)
	}
	var empty Device
	if got := empty.GetMetadata("state"); got != "" {
		t.Errorf("GetMetadata on nil map = %q", got)
	}
}

func TestParseServiceEntry(t *testing.T) {
	entry := &zeroconf.ServiceEntry{
		HostName: "wifid.local.",
		Port:     8590,
		AddrIPv4: []net.IP{net.ParseIP("192.168.1.40")},
		Text:     []string{"id=garage-sensor", "state=got ip", "version=1.2.0", "flag"},
	}
	entry.Instance = "garage-sensor"

	d := parseServiceEntry(entry)
	if d == nil {
		t.Fatal("parseServiceEntry() = nil")
	}
	if d.ID != "garage-sensor" {
		t.Errorf("ID = %q", d.ID)
	}
	if d.IP != "192.168.1.40" || d.Port != 8590 {
		t.Errorf("addr = %s:%d", d.IP, d.Port)
	}
	if d.GetMetadata("state") != "got ip" {
		t.Errorf("state = %q", d.GetMetadata("state"))
	}
	if v, ok := d.Metadata["flag"]; !ok || v != "" {
		t.Errorf("bare TXT key = (%q, %v)", v, ok)
	}
}

func TestParseServiceEntryNoAddress(t *testing.T) {
	entry := &zeroconf.ServiceEntry{HostName: "wifid.local.", Port: 8590}
	if d := parseServiceEntry(entry); d != nil {
		t.Errorf("parseServiceEntry() = %+v, want nil without an address", d)
	}
}

package discovery

import (
	"fmt"
	"time"
)

// Device represents a wifid instance discovered on the network.
type Device struct {
	// ID is the device identifier from the service instance name
	ID string

	// Hostname is the mDNS hostname (e.g., "wifid.local.")
	Hostname string

	// IP is the IPv4 address
	IP string

	// Port is the API port
	Port int

	// Metadata contains the mDNS TXT record data.
	// Common fields: "id", "state", "version"
	Metadata map[string]string

	// DiscoveredAt is when the device was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	return fmt.Sprintf("wifid %s (%s) at %s:%d", d.ID, d.Hostname, d.IP, d.Port)
}

// BaseURL returns the API base URL for the device
func (d *Device) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", d.IP, d.Port)
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (d *Device) GetMetadata(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}

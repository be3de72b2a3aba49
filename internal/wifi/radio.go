package wifi

import (
	"errors"
	"fmt"
	"time"
)

// Mode is the radio operating mode.
type Mode int

const (
	// ModeOff - radio disabled
	ModeOff Mode = iota
	// ModeStation - client of an existing network
	ModeStation
	// ModeAccessPoint - hosting a network
	ModeAccessPoint
	// ModeDual - station and access point simultaneously
	ModeDual
)

// String returns a human-readable mode name
func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "off"
	case ModeStation:
		return "STA"
	case ModeAccessPoint:
		return "AP"
	case ModeDual:
		return "AP+STA"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// Sentinel errors a Radio driver reports so the Manager can recover.
var (
	// ErrNotInitialized means the radio has not been initialized yet.
	// The Manager reacts by initializing with default parameters and
	// retrying the operation once.
	ErrNotInitialized = errors.New("radio not initialized")

	// ErrNotStarted means the radio is initialized but not started.
	// The Manager reacts by starting the radio and retrying once.
	ErrNotStarted = errors.New("radio not started")

	// ErrInterfaceNotReady means a network interface setting could not be
	// applied yet. Non-fatal for host name assignment.
	ErrInterfaceNotReady = errors.New("interface not ready")

	// ErrScanFailed is delivered to scan callbacks when a scan could not
	// be started or did not complete.
	ErrScanFailed = errors.New("wifi scan failed")
)

// AuthMode is the authentication mode of a network.
type AuthMode int

const (
	AuthOpen AuthMode = iota
	AuthWEP
	AuthWPAPSK
	AuthWPA2PSK
	AuthWPAWPA2PSK
)

// String returns a human-readable auth mode name
func (a AuthMode) String() string {
	switch a {
	case AuthOpen:
		return "open"
	case AuthWEP:
		return "WEP"
	case AuthWPAPSK:
		return "WPA-PSK"
	case AuthWPA2PSK:
		return "WPA2-PSK"
	case AuthWPAWPA2PSK:
		return "WPA/WPA2-PSK"
	default:
		return fmt.Sprintf("unknown(%d)", int(a))
	}
}

// ScanRecord describes one access point found by a scan.
type ScanRecord struct {
	SSID    string
	BSSID   [6]byte
	Auth    AuthMode
	Channel int
	RSSI    int // dBm, negative
}

// BSSIDString formats the BSSID the usual way
func (r ScanRecord) BSSIDString() string {
	b := r.BSSID
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", b[0], b[1], b[2], b[3], b[4], b[5])
}

// ScanParams bound a hardware scan.
type ScanParams struct {
	Active   bool
	MinDwell time.Duration // per-channel
	MaxDwell time.Duration // per-channel
}

// defaultScanParams matches the firmware defaults: active scan, short
// per-channel dwell so a full sweep stays under a second.
var defaultScanParams = ScanParams{
	Active:   true,
	MinDwell: 10 * time.Millisecond,
	MaxDwell: 50 * time.Millisecond,
}

// Iface selects which radio interface an IP operation applies to.
type Iface int

const (
	IfaceStation Iface = iota
	IfaceAccessPoint
)

// IPInfo is the addressing of one interface. Empty strings mean unassigned.
type IPInfo struct {
	IP      string
	Netmask string
	Gateway string
}

// StationSettings is the driver-level station configuration.
type StationSettings struct {
	SSID     string
	Password string
}

// APSettings is the driver-level access point configuration.
type APSettings struct {
	SSID           string
	Password       string
	Auth           AuthMode
	Channel        int
	Hidden         bool
	MaxConnections int
	BeaconInterval time.Duration
}

// DHCPLease is the address range handed out by the AP's DHCP server.
type DHCPLease struct {
	Start string
	End   string
}

// Radio is the capability interface a driver implements. All methods are
// synchronous and must not block on network completion: connect and scan
// outcomes arrive later as events through Manager.HandleEvent.
//
// The Manager calls Radio methods while holding its own lock, so drivers
// must not call back into the Manager from within a Radio method.
type Radio interface {
	// Init initializes the radio with default parameters.
	Init() error
	// Start powers the radio up. Stop powers it down; stopping an
	// uninitialized radio returns ErrNotInitialized.
	Start() error
	Stop() error
	// SetMode selects the operating mode.
	SetMode(Mode) error

	// Connect begins association using the current station settings.
	// Disconnect drops the association.
	Connect() error
	Disconnect() error

	// StartScan begins a network scan. Completion is signaled by an
	// EventScanDone event. ScanResults retrieves at most max records
	// after a successful scan.
	StartScan(ScanParams) error
	ScanResults(max int) ([]ScanRecord, error)

	// SetStationSettings and SetAPSettings stage role configuration.
	SetStationSettings(StationSettings) error
	SetAPSettings(APSettings) error

	// SetHostname assigns the station interface host name. May return
	// ErrInterfaceNotReady, which callers treat as non-fatal.
	SetHostname(string) error

	// DHCP client control for the station interface.
	StartDHCPClient() error
	StopDHCPClient() error

	// Static addressing and lookup per interface.
	SetIPInfo(Iface, IPInfo) error
	IPInfo(Iface) (IPInfo, error)

	// DHCP server control for the access point interface. The lease
	// range must be set while the server is stopped.
	SetDHCPLease(DHCPLease) error
	StartDHCPServer() error
	StopDHCPServer() error

	// ConnectedSSID reports the currently associated network.
	ConnectedSSID() (string, error)
	// DNSServer reports the primary DNS server of the station interface.
	DNSServer() (string, error)
	// StationMAC reports the station interface hardware address.
	StationMAC() ([6]byte, error)
}

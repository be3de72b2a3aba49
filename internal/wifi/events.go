package wifi

import "fmt"

// EventKind identifies an asynchronous radio event.
type EventKind int

const (
	// EventStationStart - the station interface came up
	EventStationStart EventKind = iota
	// EventStationStop - the station interface went down
	EventStationStop
	// EventDisconnected - association lost, Reason carries the driver code
	EventDisconnected
	// EventConnected - associated with an access point
	EventConnected
	// EventIPAcquired - station interface obtained an IP address
	EventIPAcquired
	// EventAPClientJoined - a client joined our access point
	EventAPClientJoined
	// EventAPClientLeft - a client left our access point
	EventAPClientLeft
	// EventScanDone - a hardware scan finished, see ScanOK and ScanCount
	EventScanDone
)

// String returns a human-readable event name
func (k EventKind) String() string {
	switch k {
	case EventStationStart:
		return "station-start"
	case EventStationStop:
		return "station-stop"
	case EventDisconnected:
		return "disconnected"
	case EventConnected:
		return "connected"
	case EventIPAcquired:
		return "ip-acquired"
	case EventAPClientJoined:
		return "ap-client-joined"
	case EventAPClientLeft:
		return "ap-client-left"
	case EventScanDone:
		return "scan-done"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Event is an asynchronous notification from the radio driver. Only the
// fields relevant to the Kind are set.
type Event struct {
	Kind EventKind

	// Reason is the driver disconnect reason code (EventDisconnected).
	Reason int

	// ClientMAC identifies the AP client (EventAPClientJoined/Left).
	ClientMAC [6]byte

	// ScanOK and ScanCount describe a finished scan (EventScanDone).
	// ScanCount is the number of records the hardware holds; it is only
	// meaningful when ScanOK is true.
	ScanOK    bool
	ScanCount int
}

func macString(b [6]byte) string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", b[0], b[1], b[2], b[3], b[4], b[5])
}

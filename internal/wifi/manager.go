package wifi

import (
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"

	"github.com/embedfarm/wifid/internal/logging"
)

// Notification is a connectivity status change delivered to OnChange
// subscribers.
type Notification int

const (
	NotifyDisconnected Notification = iota
	NotifyConnected
	NotifyIPAcquired
)

// String returns a human-readable notification name
func (n Notification) String() string {
	switch n {
	case NotifyDisconnected:
		return "disconnected"
	case NotifyConnected:
		return "connected"
	case NotifyIPAcquired:
		return "ip_acquired"
	default:
		return fmt.Sprintf("unknown(%d)", int(n))
	}
}

// stationState tracks the client connection lifecycle. staNone means no
// station has been configured.
type stationState int

const (
	staNone stationState = iota
	staIdle
	staConnecting
	staAssociated
	staGotIP
)

func (s stationState) String() string {
	switch s {
	case staIdle:
		return "idle"
	case staConnecting:
		return "connecting"
	case staAssociated:
		return "associated"
	case staGotIP:
		return "got ip"
	default:
		return ""
	}
}

// scanWaiter is one pending scan request. It is created on request and
// released right after its callback runs.
type scanWaiter struct {
	cb ScanCallback
}

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	// Radio is the driver. Required.
	Radio Radio

	// Hostname is assigned to the station interface during setup.
	Hostname string

	// MAC overrides the station MAC used for AP SSID placeholder
	// expansion ("AA:BB:CC:DD:EE:FF"). When empty the radio is asked.
	MAC string
}

// Manager owns the radio and all connectivity state. The device has exactly
// one radio, so there is one Manager, created at startup and closed at
// shutdown. All methods are safe for concurrent use.
type Manager struct {
	radio    Radio
	hostname string
	disp     *dispatcher

	mu              sync.Mutex
	mode            Mode
	staState        stationState
	shouldReconnect bool
	scanInFlight    bool
	scanWaiters     []scanWaiter
	mac             [6]byte
	macKnown        bool
	subs            map[uint64]func(Notification)
	nextSub         uint64
}

// NewManager creates a Manager for the given radio. The radio itself is
// initialized lazily on first use.
func NewManager(cfg *ManagerConfig) (*Manager, error) {
	if cfg == nil || cfg.Radio == nil {
		return nil, fmt.Errorf("manager requires a radio")
	}

	m := &Manager{
		radio:    cfg.Radio,
		hostname: cfg.Hostname,
		disp:     newDispatcher(),
		subs:     make(map[uint64]func(Notification)),
	}

	if cfg.MAC != "" {
		hw, err := net.ParseMAC(cfg.MAC)
		if err != nil || len(hw) != 6 {
			return nil, fmt.Errorf("invalid MAC %q: %w", cfg.MAC, err)
		}
		copy(m.mac[:], hw)
		m.macKnown = true
	}

	return m, nil
}

// Close stops callback delivery. Pending deferred callbacks are drained
// first. The radio is left in its current state.
func (m *Manager) Close() {
	m.disp.close()
}

// OnChange registers a connectivity notification callback. Callbacks run on
// the dispatcher goroutine, never on the caller's or the driver's. The
// returned function cancels the subscription.
func (m *Manager) OnChange(cb func(Notification)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	m.subs[id] = cb

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// notifyLocked fans a status change out to all subscribers via the deferred
// dispatcher. Caller holds m.mu.
func (m *Manager) notifyLocked(n Notification) {
	cbs := make([]func(Notification), 0, len(m.subs))
	for _, cb := range m.subs {
		cbs = append(cbs, cb)
	}
	m.disp.invoke(func() {
		for _, cb := range cbs {
			cb(n)
		}
	})
}

// HandleEvent processes an asynchronous radio event. Drivers may call it
// from any goroutine; handling is serialized by the Manager lock.
func (m *Manager) HandleEvent(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch ev.Kind {
	case EventStationStart:
		// We only start the station when a connect is pending.
		m.staState = staConnecting

	case EventStationStop:
		m.staState = staNone
		if m.scanInFlight {
			m.scanInFlight = false
			m.failWaitersLocked()
		}

	case EventDisconnected:
		logging.Info("WiFi STA: disconnected",
			zap.Int("reason", ev.Reason),
			zap.Bool("reconnecting", m.shouldReconnect),
		)
		m.notifyLocked(NotifyDisconnected)
		if m.shouldReconnect {
			m.staState = staConnecting
			if err := m.radio.Connect(); err != nil {
				logging.Error("WiFi STA: reconnect failed", zap.Error(err))
			}
		} else {
			m.staState = staIdle
		}

	case EventConnected:
		m.staState = staAssociated
		m.notifyLocked(NotifyConnected)

	case EventIPAcquired:
		m.staState = staGotIP
		m.notifyLocked(NotifyIPAcquired)

	case EventAPClientJoined:
		logging.Info("WiFi AP: client joined",
			zap.String("mac", macString(ev.ClientMAC)),
		)

	case EventAPClientLeft:
		logging.Info("WiFi AP: client left",
			zap.String("mac", macString(ev.ClientMAC)),
		)

	case EventScanDone:
		m.handleScanDoneLocked(ev)

	default:
		logging.Debug("WiFi: unhandled event", zap.Stringer("kind", ev.Kind))
	}
}

// stationMACLocked returns the MAC used for SSID placeholder expansion,
// asking the radio once and caching the answer.
func (m *Manager) stationMACLocked() [6]byte {
	if !m.macKnown {
		if mac, err := m.radio.StationMAC(); err == nil {
			m.mac = mac
			m.macKnown = true
		}
	}
	return m.mac
}

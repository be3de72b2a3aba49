package sim

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/embedfarm/wifid/internal/logging"
	"github.com/embedfarm/wifid/internal/wifi"
)

// Driver disconnect reason codes, matching the usual 802.11 / firmware
// numbering so log output reads like a real driver's.
const (
	ReasonAssocLeave = 8   // we left voluntarily
	ReasonNoAPFound  = 201 // no network with the configured SSID in range
	ReasonAuthFail   = 202 // wrong password
)

// Network is one simulated access point visible to scans and joinable by
// the station.
type Network struct {
	SSID     string
	Password string // empty for an open network
	BSSID    [6]byte
	Channel  int
	RSSI     int // dBm, negative
	Hidden   bool
}

// Auth derives the advertised auth mode from the password.
func (n Network) Auth() wifi.AuthMode {
	if n.Password == "" {
		return wifi.AuthOpen
	}
	return wifi.AuthWPA2PSK
}

// Config configures a Simulator.
type Config struct {
	// MAC is the simulated station hardware address
	// ("AA:BB:CC:DD:EE:FF" form is not used here; set the bytes).
	MAC [6]byte

	// Networks are the access points in range.
	Networks []Network

	// ConnectDelay is the time between Connect and the association
	// outcome event. Zero means 10ms.
	ConnectDelay time.Duration

	// DHCPDelay is the time between association and the IP acquisition
	// event when the DHCP client is running. Zero means 10ms.
	DHCPDelay time.Duration

	// ScanDelay is the time a scan takes. Zero means 10ms.
	ScanDelay time.Duration
}

const defaultDelay = 10 * time.Millisecond

// Simulator is an in-memory wifi.Radio. Association, scan and DHCP
// outcomes are delivered asynchronously through the event handler, the way
// a real driver raises interrupts.
type Simulator struct {
	mu      sync.Mutex
	cfg     Config
	handler func(wifi.Event)

	inited  bool
	started bool
	mode    wifi.Mode

	sta       wifi.StationSettings
	ap        wifi.APSettings
	hostname  string
	connected string // SSID while associated, "" otherwise

	ipInfo     map[wifi.Iface]wifi.IPInfo
	staticIP   bool // station addressing came from SetIPInfo
	dhcpClient bool
	dhcpServer bool
	lease      wifi.DHCPLease

	lastScan []wifi.ScanRecord

	// fault injection
	failNextScan    bool
	failNextConnect bool

	// event delivery
	evmu    sync.Mutex
	evcond  *sync.Cond
	evqueue []wifi.Event
	closed  bool
	done    chan struct{}
}

// New creates a Simulator. Call SetHandler before any operation that can
// produce events, then Close when done.
func New(cfg Config) *Simulator {
	if cfg.ConnectDelay == 0 {
		cfg.ConnectDelay = defaultDelay
	}
	if cfg.DHCPDelay == 0 {
		cfg.DHCPDelay = defaultDelay
	}
	if cfg.ScanDelay == 0 {
		cfg.ScanDelay = defaultDelay
	}
	s := &Simulator{
		cfg:    cfg,
		ipInfo: make(map[wifi.Iface]wifi.IPInfo),
		done:   make(chan struct{}),
	}
	s.evcond = sync.NewCond(&s.evmu)
	go s.pump()
	return s
}

// SetHandler registers the event sink. Events raised before a handler is
// set are dropped.
func (s *Simulator) SetHandler(h func(wifi.Event)) {
	s.evmu.Lock()
	defer s.evmu.Unlock()
	s.handler = h
}

// Close stops event delivery. Pending events are drained first.
func (s *Simulator) Close() {
	s.evmu.Lock()
	if s.closed {
		s.evmu.Unlock()
		<-s.done
		return
	}
	s.closed = true
	s.evcond.Broadcast()
	s.evmu.Unlock()
	<-s.done
}

// emit queues an event for delivery on the pump goroutine. Never blocks,
// so it is safe to call with s.mu held and from timer goroutines.
func (s *Simulator) emit(ev wifi.Event) {
	s.evmu.Lock()
	defer s.evmu.Unlock()
	if s.closed {
		return
	}
	s.evqueue = append(s.evqueue, ev)
	s.evcond.Signal()
}

func (s *Simulator) pump() {
	defer close(s.done)
	for {
		s.evmu.Lock()
		for len(s.evqueue) == 0 && !s.closed {
			s.evcond.Wait()
		}
		if len(s.evqueue) == 0 && s.closed {
			s.evmu.Unlock()
			return
		}
		ev := s.evqueue[0]
		s.evqueue = s.evqueue[1:]
		h := s.handler
		s.evmu.Unlock()

		if h != nil {
			h(ev)
		}
	}
}

// FailNextScan makes the next scan report failure instead of results.
func (s *Simulator) FailNextScan() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNextScan = true
}

// FailNextConnect makes the next association attempt fail with
// ReasonAuthFail regardless of credentials.
func (s *Simulator) FailNextConnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNextConnect = true
}

func (s *Simulator) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inited = true
	logging.LogRadioEvent("sim: radio initialized")
	return nil
}

func (s *Simulator) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.inited {
		return wifi.ErrNotInitialized
	}
	if s.started {
		return nil
	}
	s.started = true
	if s.mode == wifi.ModeStation || s.mode == wifi.ModeDual {
		s.emit(wifi.Event{Kind: wifi.EventStationStart})
	}
	return nil
}

func (s *Simulator) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.inited {
		return wifi.ErrNotInitialized
	}
	if !s.started {
		return nil
	}
	s.started = false
	s.dropAssociationLocked()
	if s.mode == wifi.ModeStation || s.mode == wifi.ModeDual {
		s.emit(wifi.Event{Kind: wifi.EventStationStop})
	}
	return nil
}

func (s *Simulator) SetMode(m wifi.Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.inited {
		return wifi.ErrNotInitialized
	}
	hadSTA := s.mode == wifi.ModeStation || s.mode == wifi.ModeDual
	hasSTA := m == wifi.ModeStation || m == wifi.ModeDual
	s.mode = m
	if s.started && hasSTA && !hadSTA {
		s.emit(wifi.Event{Kind: wifi.EventStationStart})
	}
	if s.started && hadSTA && !hasSTA {
		s.dropAssociationLocked()
		s.emit(wifi.Event{Kind: wifi.EventStationStop})
	}
	return nil
}

// Connect begins association against the simulated networks. The outcome
// arrives as an event after ConnectDelay.
func (s *Simulator) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.inited {
		return wifi.ErrNotInitialized
	}
	if !s.started {
		return wifi.ErrNotStarted
	}
	ssid := s.sta.SSID
	password := s.sta.Password
	forceFail := s.failNextConnect
	s.failNextConnect = false

	time.AfterFunc(s.cfg.ConnectDelay, func() {
		s.completeConnect(ssid, password, forceFail)
	})
	return nil
}

func (s *Simulator) completeConnect(ssid, password string, forceFail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}

	if forceFail {
		s.emit(wifi.Event{Kind: wifi.EventDisconnected, Reason: ReasonAuthFail})
		return
	}
	net, found := s.lookupLocked(ssid)
	if !found {
		s.emit(wifi.Event{Kind: wifi.EventDisconnected, Reason: ReasonNoAPFound})
		return
	}
	if net.Password != password {
		s.emit(wifi.Event{Kind: wifi.EventDisconnected, Reason: ReasonAuthFail})
		return
	}

	s.connected = ssid
	s.emit(wifi.Event{Kind: wifi.EventConnected})

	if s.staticIP {
		// Addressing was assigned up front; the interface is usable as
		// soon as the association is up.
		s.emit(wifi.Event{Kind: wifi.EventIPAcquired})
		return
	}
	if s.dhcpClient {
		time.AfterFunc(s.cfg.DHCPDelay, s.completeDHCP)
	}
}

func (s *Simulator) completeDHCP() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connected == "" || !s.dhcpClient {
		return
	}
	s.ipInfo[wifi.IfaceStation] = wifi.IPInfo{
		IP:      "192.168.1.100",
		Netmask: "255.255.255.0",
		Gateway: "192.168.1.1",
	}
	s.emit(wifi.Event{Kind: wifi.EventIPAcquired})
}

func (s *Simulator) lookupLocked(ssid string) (Network, bool) {
	for _, n := range s.cfg.Networks {
		if n.SSID == ssid {
			return n, true
		}
	}
	return Network{}, false
}

func (s *Simulator) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connected != "" {
		s.dropAssociationLocked()
		s.emit(wifi.Event{Kind: wifi.EventDisconnected, Reason: ReasonAssocLeave})
	}
	return nil
}

func (s *Simulator) dropAssociationLocked() {
	s.connected = ""
	if !s.staticIP {
		delete(s.ipInfo, wifi.IfaceStation)
	}
}

func (s *Simulator) StartScan(wifi.ScanParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.inited {
		return wifi.ErrNotInitialized
	}
	if !s.started {
		return wifi.ErrNotStarted
	}

	fail := s.failNextScan
	s.failNextScan = false

	time.AfterFunc(s.cfg.ScanDelay, func() {
		s.completeScan(fail)
	})
	return nil
}

func (s *Simulator) completeScan(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fail {
		s.lastScan = nil
		s.emit(wifi.Event{Kind: wifi.EventScanDone, ScanOK: false})
		return
	}
	records := make([]wifi.ScanRecord, 0, len(s.cfg.Networks))
	for _, n := range s.cfg.Networks {
		if n.Hidden {
			continue
		}
		records = append(records, wifi.ScanRecord{
			SSID:    n.SSID,
			BSSID:   n.BSSID,
			Auth:    n.Auth(),
			Channel: n.Channel,
			RSSI:    n.RSSI,
		})
	}
	s.lastScan = records
	s.emit(wifi.Event{Kind: wifi.EventScanDone, ScanOK: true, ScanCount: len(records)})
}

func (s *Simulator) ScanResults(max int) ([]wifi.ScanRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if max > len(s.lastScan) {
		max = len(s.lastScan)
	}
	out := make([]wifi.ScanRecord, max)
	copy(out, s.lastScan[:max])
	return out, nil
}

func (s *Simulator) SetStationSettings(settings wifi.StationSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sta = settings
	return nil
}

func (s *Simulator) SetAPSettings(settings wifi.APSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ap = settings
	logging.LogRadioEvent("sim: AP configured",
		zap.String("ssid", settings.SSID),
		zap.Int("channel", settings.Channel),
	)
	return nil
}

func (s *Simulator) SetHostname(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hostname = name
	return nil
}

func (s *Simulator) StartDHCPClient() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dhcpClient = true
	s.staticIP = false
	delete(s.ipInfo, wifi.IfaceStation)
	return nil
}

func (s *Simulator) StopDHCPClient() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dhcpClient = false
	return nil
}

func (s *Simulator) SetIPInfo(iface wifi.Iface, info wifi.IPInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ipInfo[iface] = info
	if iface == wifi.IfaceStation {
		s.staticIP = true
	}
	return nil
}

func (s *Simulator) IPInfo(iface wifi.Iface) (wifi.IPInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ipInfo[iface], nil
}

func (s *Simulator) SetDHCPLease(lease wifi.DHCPLease) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dhcpServer {
		return fmt.Errorf("dhcp server running, stop it to change the lease range")
	}
	s.lease = lease
	return nil
}

func (s *Simulator) StartDHCPServer() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dhcpServer = true
	return nil
}

func (s *Simulator) StopDHCPServer() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dhcpServer = false
	return nil
}

func (s *Simulator) ConnectedSSID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected, nil
}

func (s *Simulator) DNSServer() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connected == "" {
		return "", nil
	}
	info := s.ipInfo[wifi.IfaceStation]
	return info.Gateway, nil
}

func (s *Simulator) StationMAC() ([6]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.MAC, nil
}

package wifi

import (
	"sync"
	"testing"
	"time"
)

// fakeRadio implements Radio for tests. It records every call, enforces the
// init/start sequencing of a real driver, and lets tests inject failures per
// method.
type fakeRadio struct {
	mu      sync.Mutex
	inited  bool
	started bool
	mode    Mode
	calls   []string
	errs    map[string]error // forced error per method name

	staSettings StationSettings
	apSettings  APSettings
	records     []ScanRecord
	ipInfo      map[Iface]IPInfo
	lease       DHCPLease
	dhcpClient  bool
	dhcpServer  bool
	hostname    string
	ssid        string
	dns         string
	mac         [6]byte
}

func newFakeRadio() *fakeRadio {
	return &fakeRadio{
		errs:   make(map[string]error),
		ipInfo: make(map[Iface]IPInfo),
		mac:    [6]byte{0xC4, 0xBE, 0x84, 0x01, 0x02, 0x03},
	}
}

func (f *fakeRadio) record(name string) error {
	f.calls = append(f.calls, name)
	return f.errs[name]
}

func (f *fakeRadio) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeRadio) Init() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("Init"); err != nil {
		return err
	}
	f.inited = true
	return nil
}

func (f *fakeRadio) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("Start"); err != nil {
		return err
	}
	if !f.inited {
		return ErrNotInitialized
	}
	f.started = true
	return nil
}

func (f *fakeRadio) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("Stop"); err != nil {
		return err
	}
	if !f.inited {
		return ErrNotInitialized
	}
	f.started = false
	return nil
}

func (f *fakeRadio) SetMode(m Mode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SetMode"); err != nil {
		return err
	}
	if !f.inited {
		return ErrNotInitialized
	}
	f.mode = m
	return nil
}

func (f *fakeRadio) Connect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("Connect"); err != nil {
		return err
	}
	if !f.inited {
		return ErrNotInitialized
	}
	if !f.started {
		return ErrNotStarted
	}
	return nil
}

func (f *fakeRadio) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record("Disconnect")
}

func (f *fakeRadio) StartScan(ScanParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("StartScan"); err != nil {
		return err
	}
	if !f.inited {
		return ErrNotInitialized
	}
	if !f.started {
		return ErrNotStarted
	}
	return nil
}

func (f *fakeRadio) ScanResults(max int) ([]ScanRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ScanResults"); err != nil {
		return nil, err
	}
	if max > len(f.records) {
		max = len(f.records)
	}
	return f.records[:max], nil
}

func (f *fakeRadio) SetStationSettings(s StationSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SetStationSettings"); err != nil {
		return err
	}
	f.staSettings = s
	return nil
}

func (f *fakeRadio) SetAPSettings(s APSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SetAPSettings"); err != nil {
		return err
	}
	f.apSettings = s
	return nil
}

func (f *fakeRadio) SetHostname(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SetHostname"); err != nil {
		return err
	}
	f.hostname = name
	return nil
}

func (f *fakeRadio) StartDHCPClient() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("StartDHCPClient"); err != nil {
		return err
	}
	f.dhcpClient = true
	return nil
}

func (f *fakeRadio) StopDHCPClient() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("StopDHCPClient"); err != nil {
		return err
	}
	f.dhcpClient = false
	return nil
}

func (f *fakeRadio) SetIPInfo(iface Iface, info IPInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SetIPInfo"); err != nil {
		return err
	}
	f.ipInfo[iface] = info
	return nil
}

func (f *fakeRadio) IPInfo(iface Iface) (IPInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("IPInfo"); err != nil {
		return IPInfo{}, err
	}
	return f.ipInfo[iface], nil
}

func (f *fakeRadio) SetDHCPLease(l DHCPLease) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SetDHCPLease"); err != nil {
		return err
	}
	if f.dhcpServer {
		return ErrNotStarted // lease must be staged while the server is down
	}
	f.lease = l
	return nil
}

func (f *fakeRadio) StartDHCPServer() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("StartDHCPServer"); err != nil {
		return err
	}
	f.dhcpServer = true
	return nil
}

func (f *fakeRadio) StopDHCPServer() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("StopDHCPServer"); err != nil {
		return err
	}
	f.dhcpServer = false
	return nil
}

func (f *fakeRadio) ConnectedSSID() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ConnectedSSID"); err != nil {
		return "", err
	}
	return f.ssid, nil
}

func (f *fakeRadio) DNSServer() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DNSServer"); err != nil {
		return "", err
	}
	return f.dns, nil
}

func (f *fakeRadio) StationMAC() ([6]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("StationMAC"); err != nil {
		return [6]byte{}, err
	}
	return f.mac, nil
}

// newTestManager returns a Manager over a fresh fakeRadio. The Manager is
// closed when the test ends.
func newTestManager(t *testing.T) (*Manager, *fakeRadio) {
	t.Helper()
	radio := newFakeRadio()
	m, err := NewManager(&ManagerConfig{
		Radio:    radio,
		Hostname: "test-device",
	})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	t.Cleanup(m.Close)
	return m, radio
}

// recv waits for a value with a test-friendly timeout.
func recv[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
		panic("unreachable")
	}
}

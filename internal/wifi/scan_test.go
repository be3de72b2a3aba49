package wifi

import (
	"errors"
	"reflect"
	"sync"
	"testing"
)

var testRecords = []ScanRecord{
	{SSID: "net1", BSSID: [6]byte{1, 2, 3, 4, 5, 6}, Auth: AuthWPA2PSK, Channel: 1, RSSI: -42},
	{SSID: "net2", BSSID: [6]byte{6, 5, 4, 3, 2, 1}, Auth: AuthOpen, Channel: 11, RSSI: -71},
}

type scanResult struct {
	records []ScanRecord
	err     error
}

func scanAndCollect(m *Manager) <-chan scanResult {
	ch := make(chan scanResult, 1)
	m.Scan(func(records []ScanRecord, err error) {
		ch <- scanResult{records: records, err: err}
	})
	return ch
}

func TestScanSingleRequest(t *testing.T) {
	m, radio := newTestManager(t)
	radio.records = testRecords

	ch := scanAndCollect(m)

	if got := radio.callCount("StartScan"); got != 1 {
		t.Fatalf("StartScan called %d times, want 1", got)
	}

	m.HandleEvent(Event{Kind: EventScanDone, ScanOK: true, ScanCount: len(testRecords)})

	res := recv(t, ch, "scan result")
	if res.err != nil {
		t.Fatalf("scan error = %v", res.err)
	}
	if !reflect.DeepEqual(res.records, testRecords) {
		t.Errorf("scan records = %+v, want %+v", res.records, testRecords)
	}
}

func TestScanCoalescesConcurrentRequests(t *testing.T) {
	m, radio := newTestManager(t)
	radio.records = testRecords

	const n = 16
	results := make(chan scanResult, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Scan(func(records []ScanRecord, err error) {
				results <- scanResult{records: records, err: err}
			})
		}()
	}
	wg.Wait()

	if got := radio.callCount("StartScan"); got != 1 {
		t.Fatalf("StartScan called %d times for %d requests, want 1", got, n)
	}

	m.HandleEvent(Event{Kind: EventScanDone, ScanOK: true, ScanCount: len(testRecords)})

	for i := 0; i < n; i++ {
		res := recv(t, results, "scan result")
		if res.err != nil {
			t.Fatalf("waiter %d: error = %v", i, res.err)
		}
		if !reflect.DeepEqual(res.records, testRecords) {
			t.Errorf("waiter %d: records differ from the shared result", i)
		}
	}
}

func TestScanAddsStationCapability(t *testing.T) {
	m, radio := newTestManager(t)
	radio.inited = true
	m.mode = ModeAccessPoint

	ch := scanAndCollect(m)

	if m.Mode() != ModeDual {
		t.Errorf("Mode() = %v, want AP+STA after scan in AP mode", m.Mode())
	}

	m.HandleEvent(Event{Kind: EventScanDone, ScanOK: true, ScanCount: 0})
	res := recv(t, ch, "scan result")
	if res.err != nil {
		t.Fatalf("scan error = %v", res.err)
	}
	if res.records == nil || len(res.records) != 0 {
		t.Errorf("records = %v, want empty non-nil slice for a zero-AP scan", res.records)
	}
}

func TestScanStartFailureFailsOnlyThatRequest(t *testing.T) {
	m, radio := newTestManager(t)
	radio.errs["StartScan"] = errors.New("vendor error")

	ch := scanAndCollect(m)

	res := recv(t, ch, "scan result")
	if !errors.Is(res.err, ErrScanFailed) {
		t.Fatalf("scan error = %v, want ErrScanFailed", res.err)
	}
	if res.records != nil {
		t.Errorf("records = %v, want nil on failure", res.records)
	}

	m.mu.Lock()
	inFlight, waiters := m.scanInFlight, len(m.scanWaiters)
	m.mu.Unlock()
	if inFlight {
		t.Error("no scan should be marked in-flight after a start failure")
	}
	if waiters != 0 {
		t.Errorf("%d waiters queued after a start failure, want 0", waiters)
	}

	// A later request starts fresh once the radio behaves again.
	delete(radio.errs, "StartScan")
	ch = scanAndCollect(m)
	m.HandleEvent(Event{Kind: EventScanDone, ScanOK: true, ScanCount: 0})
	res = recv(t, ch, "scan result")
	if res.err != nil {
		t.Errorf("scan error = %v after recovery", res.err)
	}
}

func TestScanHardwareFailureFansOutFailure(t *testing.T) {
	m, _ := newTestManager(t)

	ch1 := scanAndCollect(m)
	ch2 := scanAndCollect(m)

	m.HandleEvent(Event{Kind: EventScanDone, ScanOK: false})

	for _, ch := range []<-chan scanResult{ch1, ch2} {
		res := recv(t, ch, "scan result")
		if !errors.Is(res.err, ErrScanFailed) {
			t.Errorf("scan error = %v, want ErrScanFailed", res.err)
		}
	}
}

func TestStationStopFailsAllWaiters(t *testing.T) {
	m, radio := newTestManager(t)
	radio.records = testRecords

	const k = 5
	chans := make([]<-chan scanResult, k)
	for i := range chans {
		chans[i] = scanAndCollect(m)
	}

	m.HandleEvent(Event{Kind: EventStationStop})

	for i, ch := range chans {
		res := recv(t, ch, "scan result")
		if !errors.Is(res.err, ErrScanFailed) {
			t.Errorf("waiter %d: error = %v, want ErrScanFailed", i, res.err)
		}
	}

	m.mu.Lock()
	inFlight := m.scanInFlight
	m.mu.Unlock()
	if inFlight {
		t.Error("in-flight flag must be cleared by station stop")
	}
}

func TestScanRequestsAfterDetachStartFreshScan(t *testing.T) {
	m, radio := newTestManager(t)
	radio.records = testRecords

	ch1 := scanAndCollect(m)
	m.HandleEvent(Event{Kind: EventScanDone, ScanOK: true, ScanCount: 1})
	recv(t, ch1, "first scan result")

	ch2 := scanAndCollect(m)
	if got := radio.callCount("StartScan"); got != 2 {
		t.Errorf("StartScan called %d times, want 2 (new scan after fan-out)", got)
	}
	m.HandleEvent(Event{Kind: EventScanDone, ScanOK: true, ScanCount: 2})
	res := recv(t, ch2, "second scan result")
	if len(res.records) != 2 {
		t.Errorf("second scan records = %d, want 2", len(res.records))
	}
}

func TestScanResultsTruncatedToReportedCount(t *testing.T) {
	m, radio := newTestManager(t)
	radio.records = testRecords

	ch := scanAndCollect(m)
	m.HandleEvent(Event{Kind: EventScanDone, ScanOK: true, ScanCount: 1})

	res := recv(t, ch, "scan result")
	if len(res.records) != 1 {
		t.Errorf("records = %d, want 1 (bounded by the reported count)", len(res.records))
	}
}

func TestBSSIDString(t *testing.T) {
	r := ScanRecord{BSSID: [6]byte{0xC4, 0xBE, 0x84, 0x74, 0x86, 0x37}}
	if got := r.BSSIDString(); got != "C4:BE:84:74:86:37" {
		t.Errorf("BSSIDString() = %v", got)
	}
}

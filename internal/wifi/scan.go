package wifi

import (
	"go.uber.org/zap"

	"github.com/embedfarm/wifid/internal/logging"
)

// ScanCallback receives the outcome of a scan request. On success records is
// the full result set, possibly empty when no access points are in range. On
// failure records is nil and err is ErrScanFailed. Callbacks run on the
// dispatcher goroutine.
type ScanCallback func(records []ScanRecord, err error)

// Scan requests a network scan and returns immediately. Concurrent requests
// are coalesced: at most one hardware scan is in flight, and its single
// result is delivered to every pending callback.
//
// Scanning requires the radio to support station mode; if the station role
// is not active it is added transparently. If the scan cannot be started the
// callback receives a failure without affecting other requests.
func (m *Manager) Scan(cb ScanCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.scanInFlight {
		var err error
		if m.mode != ModeStation && m.mode != ModeDual {
			err = m.addModeLocked(ModeStation)
			if err == nil {
				err = m.radio.Start()
			}
		}
		if err == nil {
			err = m.radio.StartScan(defaultScanParams)
			if err == nil {
				m.scanInFlight = true
			}
		}
		if err != nil {
			logging.Error("Failed to start WiFi scan", zap.Error(err))
			// Fail only this request; no shared state was set.
			m.disp.invoke(func() {
				cb(nil, ErrScanFailed)
			})
			return
		}
	}

	m.scanWaiters = append(m.scanWaiters, scanWaiter{cb: cb})
}

// handleScanDoneLocked completes a hardware scan: retrieves the result
// records, detaches the current waiter queue and fans the one result out to
// every detached waiter. Caller holds m.mu.
func (m *Manager) handleScanDoneLocked(ev Event) {
	logging.Info("WiFi scan done",
		zap.Bool("ok", ev.ScanOK),
		zap.Int("aps", ev.ScanCount),
	)

	m.scanInFlight = false

	if !ev.ScanOK {
		m.failWaitersLocked()
		return
	}

	records, err := m.radio.ScanResults(ev.ScanCount)
	if err != nil {
		logging.Error("Failed to get scan results", zap.Error(err))
		m.failWaitersLocked()
		return
	}
	if records == nil {
		// Zero APs is a genuine result, distinct from failure.
		records = []ScanRecord{}
	}

	m.fanOutLocked(records, nil)
}

// fanOutLocked moves the entire waiter queue out from under the lock and
// schedules one deferred delivery to all of them. Requests arriving after
// the detach start a fresh scan instead of joining this result.
func (m *Manager) fanOutLocked(records []ScanRecord, err error) {
	waiters := m.scanWaiters
	m.scanWaiters = nil
	if len(waiters) == 0 {
		return
	}

	m.disp.invoke(func() {
		for _, w := range waiters {
			w.cb(records, err)
		}
	})
}

// failWaitersLocked delivers a scan failure to every pending waiter. A scan
// is never abandoned without notifying its callers.
func (m *Manager) failWaitersLocked() {
	m.fanOutLocked(nil, ErrScanFailed)
}

package wifi

import (
	"errors"

	"go.uber.org/zap"

	"github.com/embedfarm/wifid/internal/logging"
)

// Mode returns the current radio mode.
func (m *Manager) Mode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// SetMode switches the radio to the requested mode, lazily initializing and
// starting the radio as needed. On failure the tracked mode is unchanged.
func (m *Manager) SetMode(mode Mode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setModeLocked(mode)
}

// ensureStartedLocked runs op, recovering once per failure class: an
// ErrNotInitialized result triggers radio init and a retry, a subsequent
// ErrNotStarted triggers radio start and a final retry.
func (m *Manager) ensureStartedLocked(op func() error) error {
	err := op()
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotInitialized) {
		if ierr := m.radio.Init(); ierr != nil {
			logging.Error("Failed to init WiFi", zap.Error(ierr))
			return ierr
		}
		err = op()
		if err == nil {
			return nil
		}
	}
	if errors.Is(err, ErrNotStarted) {
		if serr := m.radio.Start(); serr != nil {
			logging.Error("Failed to start WiFi", zap.Error(serr))
			return serr
		}
		err = op()
	}
	return err
}

func (m *Manager) setModeLocked(mode Mode) error {
	logging.LogModeChange(m.mode.String(), mode.String())

	if mode == ModeOff {
		err := m.radio.Stop()
		if errors.Is(err, ErrNotInitialized) {
			err = nil // nothing to stop
		}
		if err == nil {
			m.mode = ModeOff
		}
		return err
	}

	err := m.ensureStartedLocked(func() error {
		return m.radio.SetMode(mode)
	})
	if err != nil {
		logging.Error("Failed to set WiFi mode",
			zap.Stringer("mode", mode),
			zap.Error(err),
		)
		return err
	}

	m.mode = mode
	return nil
}

// addModeLocked ensures the given single role is active, escalating to dual
// mode when the other role already is. No-op when already satisfied.
func (m *Manager) addModeLocked(mode Mode) error {
	if m.mode == mode || m.mode == ModeDual {
		return nil
	}

	if (m.mode == ModeAccessPoint && mode == ModeStation) ||
		(m.mode == ModeStation && mode == ModeAccessPoint) {
		mode = ModeDual
	}

	return m.setModeLocked(mode)
}

// removeModeLocked removes the given role. The result is always one of off,
// station-only or AP-only: removing one half of dual mode collapses to the
// remaining single role, removing the active role goes to off.
func (m *Manager) removeModeLocked(mode Mode) error {
	if m.mode == ModeOff ||
		(mode == ModeStation && m.mode == ModeAccessPoint) ||
		(mode == ModeAccessPoint && m.mode == ModeStation) {
		// Nothing to do.
		return nil
	}
	if mode == ModeDual ||
		(mode == ModeStation && m.mode == ModeStation) ||
		(mode == ModeAccessPoint && m.mode == ModeAccessPoint) {
		mode = ModeOff
	} else if mode == ModeStation {
		mode = ModeAccessPoint
	} else {
		mode = ModeStation
	}
	return m.setModeLocked(mode)
}

package discovery

import (
	"fmt"
	"sync"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/embedfarm/wifid/internal/logging"
)

// Announcement advertises a wifid instance over mDNS. TXT metadata can be
// refreshed while the announcement is live.
type Announcement struct {
	id      string
	port    int
	version string

	mu     sync.Mutex
	server *zeroconf.Server
	state  string
}

// NewAnnouncement prepares an announcement for the given device id and API
// port. Nothing is published until Publish is called.
func NewAnnouncement(id string, port int, version string) *Announcement {
	return &Announcement{
		id:      id,
		port:    port,
		version: version,
		state:   "unknown",
	}
}

// Publish registers the service. Calling Publish while already published
// re-registers with the current state.
func (a *Announcement) Publish() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.publishLocked()
}

func (a *Announcement) publishLocked() error {
	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}

	txt := []string{
		"id=" + a.id,
		"state=" + a.state,
		"version=" + a.version,
	}
	server, err := zeroconf.Register(a.id, ServiceType, ServiceDomain, a.port, txt, nil)
	if err != nil {
		return fmt.Errorf("failed to register mDNS service: %w", err)
	}
	a.server = server

	logging.Info("mDNS service announced",
		zap.String("instance", a.id),
		zap.String("service", ServiceType),
		zap.Int("port", a.port),
		zap.String("state", a.state),
	)
	return nil
}

// SetState updates the connectivity state carried in the TXT record. If the
// service is published, it is re-registered with the new state.
func (a *Announcement) SetState(state string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == state {
		return nil
	}
	a.state = state
	if a.server == nil {
		return nil
	}
	return a.publishLocked()
}

// Shutdown withdraws the announcement.
func (a *Announcement) Shutdown() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
		logging.Info("mDNS service withdrawn", zap.String("instance", a.id))
	}
}

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/embedfarm/wifid/internal/config"
	"github.com/embedfarm/wifid/internal/logging"
	"github.com/embedfarm/wifid/internal/wifi"
)

// StatusResponse is the body of GET /api/v1/status.
type StatusResponse struct {
	Mode      string `json:"mode"`
	State     string `json:"state,omitempty"`
	SSID      string `json:"ssid,omitempty"`
	StationIP string `json:"station_ip,omitempty"`
	APIP      string `json:"ap_ip,omitempty"`
	Gateway   string `json:"gateway,omitempty"`
	DNS       string `json:"dns,omitempty"`
}

// ScanEntry is one network in the body of GET /api/v1/scan.
type ScanEntry struct {
	SSID    string `json:"ssid"`
	BSSID   string `json:"bssid"`
	Auth    string `json:"auth"`
	Channel int    `json:"channel"`
	RSSI    int    `json:"rssi"`
}

// ScanResponse is the body of GET /api/v1/scan.
type ScanResponse struct {
	Networks []ScanEntry `json:"networks"`
}

// ErrorResponse is the body of any non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("Failed to encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{Mode: s.manager.Mode().String()}
	if state, ok := s.manager.Status(); ok {
		resp.State = state
	}
	if ssid, ok := s.manager.ConnectedSSID(); ok {
		resp.SSID = ssid
	}
	if ip, ok := s.manager.StationIP(); ok {
		resp.StationIP = ip
	}
	if ip, ok := s.manager.APIP(); ok {
		resp.APIP = ip
	}
	if gw, ok := s.manager.Gateway(); ok {
		resp.Gateway = gw
	}
	if dns, ok := s.manager.DNSServer(); ok {
		resp.DNS = dns
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	type result struct {
		records []wifi.ScanRecord
		err     error
	}
	ch := make(chan result, 1)
	s.manager.Scan(func(records []wifi.ScanRecord, err error) {
		ch <- result{records, err}
	})

	select {
	case res := <-ch:
		if res.err != nil {
			writeError(w, http.StatusBadGateway, res.err)
			return
		}
		entries := make([]ScanEntry, 0, len(res.records))
		for _, rec := range res.records {
			entries = append(entries, ScanEntry{
				SSID:    rec.SSID,
				BSSID:   rec.BSSIDString(),
				Auth:    rec.Auth.String(),
				Channel: rec.Channel,
				RSSI:    rec.RSSI,
			})
		}
		writeJSON(w, http.StatusOK, ScanResponse{Networks: entries})
	case <-time.After(scanTimeout):
		writeError(w, http.StatusGatewayTimeout, errors.New("scan timed out"))
	case <-r.Context().Done():
		// Client went away; nothing to write.
	}
}

func (s *Server) handleConfigStation(w http.ResponseWriter, r *http.Request) {
	var sta config.Station
	if err := json.NewDecoder(r.Body).Decode(&sta); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := config.ValidateStation(&sta); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if err := s.manager.SetupStation(&sta); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if s.deviceCfg.Wifi == nil {
		s.deviceCfg.Wifi = &config.Wifi{}
	}
	s.deviceCfg.Wifi.Station = &sta
	s.persistLocked()
	writeJSON(w, http.StatusOK, map[string]string{"result": "applied"})
}

func (s *Server) handleConfigAP(w http.ResponseWriter, r *http.Request) {
	var ap config.AccessPoint
	if err := json.NewDecoder(r.Body).Decode(&ap); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if ap.Enable {
		ap.ApplyDefaults()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := config.ValidateAccessPoint(&ap); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if err := s.manager.SetupAccessPoint(&ap); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if s.deviceCfg.Wifi == nil {
		s.deviceCfg.Wifi = &config.Wifi{}
	}
	s.deviceCfg.Wifi.AccessPoint = &ap
	s.persistLocked()
	writeJSON(w, http.StatusOK, map[string]string{"result": "applied"})
}

// persistLocked writes the running configuration to disk. A persistence
// failure is logged, not surfaced: the change has already been applied to
// the radio and remains in effect until reboot.
func (s *Server) persistLocked() {
	if s.config.ConfigPath == "" {
		return
	}
	if err := s.deviceCfg.Save(s.config.ConfigPath); err != nil {
		logging.Error("Failed to persist configuration",
			zap.String("path", s.config.ConfigPath),
			zap.Error(err),
		)
	}
}

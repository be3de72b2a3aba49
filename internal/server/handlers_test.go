package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/embedfarm/wifid/internal/config"
	"github.com/embedfarm/wifid/internal/radio/sim"
	"github.com/embedfarm/wifid/internal/wifi"
)

type testEnv struct {
	srv     *Server
	http    *httptest.Server
	manager *wifi.Manager
	cfgPath string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	radio := sim.New(sim.Config{
		MAC: [6]byte{0xC4, 0xBE, 0x84, 0x01, 0x02, 0x03},
		Networks: []sim.Network{
			{SSID: "homelab", Password: "secret12", Channel: 6, RSSI: -50},
			{SSID: "coffeeshop", Channel: 11, RSSI: -70},
		},
	})
	manager, err := wifi.NewManager(&wifi.ManagerConfig{
		Radio:    radio,
		Hostname: "test-device",
	})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	radio.SetHandler(manager.HandleEvent)

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	srv, err := New(&Config{
		Listen:     "127.0.0.1:0",
		ConfigPath: cfgPath,
	}, manager, config.New())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(func() {
		ts.Close()
		manager.Close()
		radio.Close()
	})

	return &testEnv{srv: srv, http: ts, manager: manager, cfgPath: cfgPath}
}

func (e *testEnv) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(e.http.URL + path)
	if err != nil {
		t.Fatalf("GET %s error = %v", path, err)
	}
	return resp
}

func (e *testEnv) put(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPut, e.http.URL+path, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT %s error = %v", path, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestStatusEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/api/v1/status")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decode[StatusResponse](t, resp)
	if body.Mode != "off" {
		t.Errorf("mode = %q, want off", body.Mode)
	}
	if body.State != "" {
		t.Errorf("state = %q, want empty before station setup", body.State)
	}
}

func TestScanEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/api/v1/scan")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decode[ScanResponse](t, resp)
	if len(body.Networks) != 2 {
		t.Fatalf("got %d networks, want 2", len(body.Networks))
	}
	found := map[string]ScanEntry{}
	for _, n := range body.Networks {
		found[n.SSID] = n
	}
	if n, ok := found["homelab"]; !ok || n.Auth != "WPA2-PSK" {
		t.Errorf("homelab = %+v", n)
	}
	if n, ok := found["coffeeshop"]; !ok || n.Auth != "open" {
		t.Errorf("coffeeshop = %+v", n)
	}
}

func TestConfigStationEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp := env.put(t, "/api/v1/config/station", map[string]any{
		"enable":   true,
		"ssid":     "homelab",
		"password": "secret12",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	_ = resp.Body.Close()

	if env.manager.Mode() != wifi.ModeStation {
		t.Errorf("Mode() = %v, want STA", env.manager.Mode())
	}

	// The applied configuration must land on disk.
	data, err := os.ReadFile(env.cfgPath)
	if err != nil {
		t.Fatalf("read persisted config: %v", err)
	}
	if !strings.Contains(string(data), "ssid: homelab") {
		t.Errorf("persisted config missing station ssid:\n%s", data)
	}
}

func TestConfigStationRejectsInvalid(t *testing.T) {
	env := newTestEnv(t)

	resp := env.put(t, "/api/v1/config/station", map[string]any{
		"enable":   true,
		"ssid":     "homelab",
		"password": "short",
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	body := decode[ErrorResponse](t, resp)
	if !strings.Contains(body.Error, "password") {
		t.Errorf("error = %q, want password complaint", body.Error)
	}
	// Nothing may be persisted on rejection.
	if _, err := os.Stat(env.cfgPath); !os.IsNotExist(err) {
		t.Error("config file written despite invalid request")
	}
}

func TestConfigStationRejectsMalformedJSON(t *testing.T) {
	env := newTestEnv(t)

	req, _ := http.NewRequest(http.MethodPut,
		env.http.URL+"/api/v1/config/station", strings.NewReader("{nope"))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestConfigAPEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp := env.put(t, "/api/v1/config/ap", map[string]any{
		"enable":          true,
		"ssid":            "WiFid_??????",
		"password":        "letmein1",
		"channel":         6,
		"max_connections": 10,
		"ip":              "192.168.4.1",
		"netmask":         "255.255.255.0",
		"gateway":         "192.168.4.1",
		"dhcp_start":      "192.168.4.2",
		"dhcp_end":        "192.168.4.100",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	_ = resp.Body.Close()

	if env.manager.Mode() != wifi.ModeAccessPoint {
		t.Errorf("Mode() = %v, want AP", env.manager.Mode())
	}

	status := decode[StatusResponse](t, env.get(t, "/api/v1/status"))
	if status.APIP != "192.168.4.1" {
		t.Errorf("ap_ip = %q, want 192.168.4.1", status.APIP)
	}
}

func TestConfigAPRejectsBadChannel(t *testing.T) {
	env := newTestEnv(t)

	resp := env.put(t, "/api/v1/config/ap", map[string]any{
		"enable":  true,
		"ssid":    "devices",
		"channel": 99,
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	_ = resp.Body.Close()
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Post(env.http.URL+"/api/v1/status", "application/json", nil)
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.StatusCode)
	}
}

func TestEventsStream(t *testing.T) {
	env := newTestEnv(t)

	wsURL := "ws" + strings.TrimPrefix(env.http.URL, "http") + "/api/v1/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	defer func() { _ = conn.Close() }()

	resp := env.put(t, "/api/v1/config/station", map[string]any{
		"enable":   true,
		"ssid":     "homelab",
		"password": "secret12",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("config status = %d, want 200", resp.StatusCode)
	}
	_ = resp.Body.Close()

	want := map[string]bool{"connected": false, "ip_acquired": false}
	deadline := time.Now().Add(5 * time.Second)
	for {
		remaining := false
		for _, seen := range want {
			if !seen {
				remaining = true
			}
		}
		if !remaining {
			break
		}
		_ = conn.SetReadDeadline(deadline)
		var msg EventMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read event: %v (seen so far: %v)", err, want)
		}
		if _, ok := want[msg.Event]; ok {
			want[msg.Event] = true
		}
	}
}

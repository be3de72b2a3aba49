package config

// Config represents the entire wifid configuration file.
// It holds the device identity, the WiFi roles to bring up at boot and the
// control API settings.
type Config struct {
	Version  int           `yaml:"version"`
	Device   *Device       `yaml:"device,omitempty"`
	Wifi     *Wifi         `yaml:"wifi,omitempty"`
	API      *API          `yaml:"api,omitempty"`
	LogLevel string        `yaml:"log_level,omitempty"`
	Driver   string        `yaml:"driver,omitempty"` // Radio driver name ("sim" is the only built-in)
}

// Device represents the identity of the device wifid runs on.
type Device struct {
	ID  string `yaml:"id,omitempty"`  // Device identifier, defaults to "wifid"
	MAC string `yaml:"mac,omitempty"` // Station MAC, used for SSID placeholder expansion
}

// Wifi groups the station and access point role configurations.
type Wifi struct {
	Station     *Station     `yaml:"station,omitempty"`
	AccessPoint *AccessPoint `yaml:"access_point,omitempty"`
}

// Station represents the client (STA) role configuration.
// When IP and Netmask are empty the interface uses DHCP.
type Station struct {
	Enable   bool   `yaml:"enable" json:"enable"`
	SSID     string `yaml:"ssid,omitempty" json:"ssid,omitempty"`
	Password string `yaml:"password,omitempty" json:"password,omitempty"`
	IP       string `yaml:"ip,omitempty" json:"ip,omitempty"`
	Netmask  string `yaml:"netmask,omitempty" json:"netmask,omitempty"`
	Gateway  string `yaml:"gateway,omitempty" json:"gateway,omitempty"`
	Hostname string `yaml:"hostname,omitempty" json:"hostname,omitempty"` // DHCP host name override, defaults to device id
}

// AccessPoint represents the access point (AP) role configuration.
// A trailing run of '?' characters in SSID expands to hex digits of the
// device MAC address.
type AccessPoint struct {
	Enable         bool   `yaml:"enable" json:"enable"`
	SSID           string `yaml:"ssid,omitempty" json:"ssid,omitempty"`
	Password       string `yaml:"password,omitempty" json:"password,omitempty"` // Open network when empty
	Channel        int    `yaml:"channel,omitempty" json:"channel,omitempty"`
	Hidden         bool   `yaml:"hidden,omitempty" json:"hidden,omitempty"`
	MaxConnections int    `yaml:"max_connections,omitempty" json:"max_connections,omitempty"`
	IP             string `yaml:"ip,omitempty" json:"ip,omitempty"`
	Netmask        string `yaml:"netmask,omitempty" json:"netmask,omitempty"`
	Gateway        string `yaml:"gateway,omitempty" json:"gateway,omitempty"`
	DHCPStart      string `yaml:"dhcp_start,omitempty" json:"dhcp_start,omitempty"`
	DHCPEnd        string `yaml:"dhcp_end,omitempty" json:"dhcp_end,omitempty"`
	KeepEnabled    bool   `yaml:"keep_enabled,omitempty" json:"keep_enabled,omitempty"` // Keep AP up when the station is enabled too
}

// API represents the control API settings.
type API struct {
	Listen string `yaml:"listen,omitempty"` // host:port, defaults to 127.0.0.1:8590
}

// Default values applied by New and Load.
const (
	DefaultDeviceID  = "wifid"
	DefaultAPIListen = "127.0.0.1:8590"

	DefaultAPSSID      = "WiFid_??????"
	DefaultAPChannel   = 6
	DefaultAPMaxConns  = 10
	DefaultAPIP        = "192.168.4.1"
	DefaultAPNetmask   = "255.255.255.0"
	DefaultAPGateway   = "192.168.4.1"
	DefaultAPDHCPStart = "192.168.4.2"
	DefaultAPDHCPEnd   = "192.168.4.100"
)

// New creates a Config with default values. The station role is disabled and
// the access point role is enabled with the default addressing plan, so a
// freshly provisioned device is reachable.
func New() *Config {
	return &Config{
		Version: 1,
		Device: &Device{
			ID: DefaultDeviceID,
		},
		Wifi: &Wifi{
			Station: &Station{},
			AccessPoint: &AccessPoint{
				Enable:         true,
				SSID:           DefaultAPSSID,
				Channel:        DefaultAPChannel,
				MaxConnections: DefaultAPMaxConns,
				IP:             DefaultAPIP,
				Netmask:        DefaultAPNetmask,
				Gateway:        DefaultAPGateway,
				DHCPStart:      DefaultAPDHCPStart,
				DHCPEnd:        DefaultAPDHCPEnd,
			},
		},
		API: &API{
			Listen: DefaultAPIListen,
		},
		Driver: "sim",
	}
}

// applyDefaults fills in zero values after unmarshaling a config file.
func (c *Config) applyDefaults() {
	if c.Device == nil {
		c.Device = &Device{}
	}
	if c.Device.ID == "" {
		c.Device.ID = DefaultDeviceID
	}
	if c.Wifi == nil {
		c.Wifi = &Wifi{}
	}
	if c.Wifi.Station == nil {
		c.Wifi.Station = &Station{}
	}
	if c.Wifi.AccessPoint == nil {
		c.Wifi.AccessPoint = &AccessPoint{}
	}
	c.Wifi.AccessPoint.ApplyDefaults()
	if c.API == nil {
		c.API = &API{}
	}
	if c.API.Listen == "" {
		c.API.Listen = DefaultAPIListen
	}
	if c.Driver == "" {
		c.Driver = "sim"
	}
}

// ApplyDefaults fills zero-valued fields with the default SSID, channel and
// addressing plan. Partial configurations, whether from a file or the API,
// end up complete before validation.
func (ap *AccessPoint) ApplyDefaults() {
	if ap.SSID == "" {
		ap.SSID = DefaultAPSSID
	}
	if ap.Channel == 0 {
		ap.Channel = DefaultAPChannel
	}
	if ap.MaxConnections == 0 {
		ap.MaxConnections = DefaultAPMaxConns
	}
	if ap.IP == "" {
		ap.IP = DefaultAPIP
	}
	if ap.Netmask == "" {
		ap.Netmask = DefaultAPNetmask
	}
	if ap.Gateway == "" {
		ap.Gateway = DefaultAPGateway
	}
	if ap.DHCPStart == "" {
		ap.DHCPStart = DefaultAPDHCPStart
	}
	if ap.DHCPEnd == "" {
		ap.DHCPEnd = DefaultAPDHCPEnd
	}
}

// StationHostname returns the host name to assign to the station interface:
// the explicit override if set, the device id otherwise.
func (c *Config) StationHostname() string {
	if c.Wifi != nil && c.Wifi.Station != nil && c.Wifi.Station.Hostname != "" {
		return c.Wifi.Station.Hostname
	}
	if c.Device != nil && c.Device.ID != "" {
		return c.Device.ID
	}
	return DefaultDeviceID
}

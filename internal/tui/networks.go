package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/embedfarm/wifid/internal/client"
	"github.com/embedfarm/wifid/internal/config"
	"github.com/embedfarm/wifid/internal/server"
)

// Screen represents the current active screen in the picker
type Screen string

const (
	ScreenScanning   Screen = "scanning"
	ScreenList       Screen = "list"
	ScreenPassword   Screen = "password"
	ScreenConnecting Screen = "connecting"
	ScreenResult     Screen = "result"
)

const (
	// pollInterval is the delay between status checks while connecting
	pollInterval = 500 * time.Millisecond

	// maxPolls bounds the connecting screen to 20 seconds
	maxPolls = 40
)

// Messages

type scanDoneMsg struct {
	networks []server.ScanEntry
	err      error
}

type connectDoneMsg struct {
	err error
}

type statusPollMsg struct {
	status *server.StatusResponse
	err    error
}

// networkItem adapts a scan entry to the bubbles list
type networkItem struct {
	entry server.ScanEntry
}

func (n networkItem) Title() string {
	ssid := n.entry.SSID
	if ssid == "" {
		ssid = "(hidden)"
	}
	return ssid
}

func (n networkItem) Description() string {
	return fmt.Sprintf("%s  ch %d  %s %d dBm",
		n.entry.Auth, n.entry.Channel, signalBars(n.entry.RSSI), n.entry.RSSI)
}

func (n networkItem) FilterValue() string {
	return n.entry.SSID
}

// IsOpen reports whether the network needs no password
func (n networkItem) IsOpen() bool {
	return n.entry.Auth == "open"
}

// signalBars renders RSSI as a four-segment bar gauge.
func signalBars(rssi int) string {
	bars := 1
	switch {
	case rssi >= -55:
		bars = 4
	case rssi >= -67:
		bars = 3
	case rssi >= -75:
		bars = 2
	}
	return strings.Repeat("▂", bars) + strings.Repeat(" ", 4-bars)
}

// pickerKeyMap defines key bindings for the network list
type pickerKeyMap struct {
	Select key.Binding
	Rescan key.Binding
	Back   key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k pickerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Rescan, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k pickerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Select, k.Rescan, k.Back, k.Quit},
	}
}

func newPickerKeyMap() pickerKeyMap {
	return pickerKeyMap{
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "connect"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Model is the network picker application model
type Model struct {
	client *client.Client

	screen   Screen
	list     list.Model
	spinner  spinner.Model
	password textinput.Model
	keys     pickerKeyMap

	selected  *networkItem
	resultErr error
	pollsLeft int
	width     int
	height    int
}

// New creates a picker over the given API client.
func New(c *client.Client) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(PrimaryColor)

	pw := textinput.New()
	pw.Placeholder = "password"
	pw.EchoMode = textinput.EchoPassword
	pw.EchoCharacter = '•'
	pw.CharLimit = 64

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = SelectedStyle
	delegate.Styles.SelectedDesc = DimStyle

	l := list.New(nil, delegate, 0, 0)
	l.Title = "WiFi Networks"
	l.Styles.Title = TitleStyle
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return Model{
		client:   c,
		screen:   ScreenScanning,
		list:     l,
		spinner:  sp,
		password: pw,
		keys:     newPickerKeyMap(),
	}
}

// Init starts the first scan.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.scanCmd())
}

// scanCmd runs a scan through the daemon.
func (m Model) scanCmd() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		scan, err := c.Scan()
		if err != nil {
			return scanDoneMsg{err: err}
		}
		return scanDoneMsg{networks: scan.Networks}
	}
}

// connectCmd applies a station configuration for the selected network.
func (m Model) connectCmd(ssid, password string) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		err := c.SetStation(&config.Station{
			Enable:   true,
			SSID:     ssid,
			Password: password,
		})
		return connectDoneMsg{err: err}
	}
}

// pollStatusCmd checks whether the station reached "got ip".
func (m Model) pollStatusCmd() tea.Cmd {
	c := m.client
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		status, err := c.Status()
		return statusPollMsg{status: status, err: err}
	})
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-2)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case scanDoneMsg:
		if msg.err != nil {
			m.screen = ScreenResult
			m.resultErr = msg.err
			return m, nil
		}
		items := make([]list.Item, 0, len(msg.networks))
		for _, n := range msg.networks {
			items = append(items, networkItem{entry: n})
		}
		m.screen = ScreenList
		return m, m.list.SetItems(items)

	case connectDoneMsg:
		if msg.err != nil {
			m.screen = ScreenResult
			m.resultErr = msg.err
			return m, nil
		}
		// Applied; wait for the association to complete.
		m.pollsLeft = maxPolls
		return m, m.pollStatusCmd()

	case statusPollMsg:
		if m.screen != ScreenConnecting {
			return m, nil
		}
		if msg.err != nil {
			m.screen = ScreenResult
			m.resultErr = msg.err
			return m, nil
		}
		if msg.status.State == "got ip" {
			m.screen = ScreenResult
			m.resultErr = nil
			return m, nil
		}
		m.pollsLeft--
		if m.pollsLeft <= 0 {
			m.screen = ScreenResult
			m.resultErr = errors.New("timed out waiting for connection - check the password")
			return m, nil
		}
		return m, m.pollStatusCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.screen {
	case ScreenList:
		// When filtering, the list owns all key input.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Rescan):
			m.screen = ScreenScanning
			return m, tea.Batch(m.spinner.Tick, m.scanCmd())
		case key.Matches(msg, m.keys.Select):
			item, ok := m.list.SelectedItem().(networkItem)
			if !ok {
				return m, nil
			}
			m.selected = &item
			if item.IsOpen() {
				m.screen = ScreenConnecting
				return m, tea.Batch(m.spinner.Tick, m.connectCmd(item.entry.SSID, ""))
			}
			m.password.SetValue("")
			m.password.Focus()
			m.screen = ScreenPassword
			return m, textinput.Blink
		}

	case ScreenPassword:
		switch msg.String() {
		case "esc":
			m.screen = ScreenList
			return m, nil
		case "enter":
			m.screen = ScreenConnecting
			return m, tea.Batch(m.spinner.Tick,
				m.connectCmd(m.selected.entry.SSID, m.password.Value()))
		case "ctrl+c":
			return m, tea.Quit
		}

	case ScreenResult:
		switch msg.String() {
		case "q", "ctrl+c", "enter":
			return m, tea.Quit
		case "r":
			m.screen = ScreenScanning
			m.resultErr = nil
			return m, tea.Batch(m.spinner.Tick, m.scanCmd())
		}
		return m, nil

	default:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil
	}

	// Delegate remaining keys to the focused component.
	var cmd tea.Cmd
	switch m.screen {
	case ScreenList:
		m.list, cmd = m.list.Update(msg)
	case ScreenPassword:
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model
func (m Model) View() string {
	switch m.screen {
	case ScreenScanning:
		return fmt.Sprintf("\n  %s Scanning for networks...\n\n  %s\n",
			m.spinner.View(),
			HelpStyle.Render("q quit"))

	case ScreenList:
		return m.list.View()

	case ScreenPassword:
		prompt := fmt.Sprintf("Connect to %s\n\n%s",
			SelectedStyle.Render(m.selected.Title()),
			m.password.View())
		return "\n" + PromptStyle.Render(prompt) + "\n\n  " +
			HelpStyle.Render("enter connect • esc back")

	case ScreenConnecting:
		return fmt.Sprintf("\n  %s Connecting to %s...\n",
			m.spinner.View(),
			SelectedStyle.Render(m.selected.Title()))

	case ScreenResult:
		if m.resultErr != nil {
			return fmt.Sprintf("\n  %s\n  %s\n\n  %s\n",
				ErrorStyle.Render("Connection failed"),
				StatusStyle.Render(client.ShortErrorMessage(m.resultErr)),
				HelpStyle.Render("r rescan • q quit"))
		}
		name := ""
		if m.selected != nil {
			name = m.selected.Title()
		}
		return fmt.Sprintf("\n  %s\n\n  %s\n",
			SuccessStyle.Render("Connected to "+name),
			HelpStyle.Render("enter/q quit"))
	}
	return ""
}

// Run starts the picker and blocks until it exits.
func Run(c *client.Client) error {
	p := tea.NewProgram(New(c), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

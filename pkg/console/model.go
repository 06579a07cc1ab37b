/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package console

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/carverauto/rscapture/pkg/models"
)

//go:generate mockgen -destination=mock_service.go -package=console github.com/carverauto/rscapture/pkg/console Service

// Service is the slice of the HTTP surface the console drives.
type Service interface {
	Devices(ctx context.Context) ([]models.Device, error)
	Sessions(ctx context.Context) ([]models.SessionInfo, error)
	StartStream(ctx context.Context, serial string) (*models.SessionInfo, error)
	StopStream(ctx context.Context, serial string) error
	Capture(ctx context.Context, serial, folder string) (*models.CaptureResponse, error)
	Calibration(ctx context.Context, serial, folder string) (*models.CalibrationResponse, error)
}

// Dracula theme colors.
const (
	draculaForeground = "#F8F8F2"
	draculaCyan       = "#8BE9FD"
	draculaGreen      = "#50FA7B"
	draculaPurple     = "#BD93F9"
	draculaRed        = "#FF5555"
	draculaComment    = "#6272A4"
)

const (
	defaultRequestTimeout = 20 * time.Second
	defaultLogHeight      = 10
)

type deviceStatus int

const (
	statusStopped deviceStatus = iota
	statusStreaming
	statusError

	statusUnchanged deviceStatus = -1
)

type deviceRow struct {
	device models.Device
	status deviceStatus
}

type refreshMsg struct {
	devices   []models.Device
	streaming map[string]bool
	err       error
}

type actionResult struct {
	serial string
	status deviceStatus
	line   string
	err    error
}

type actionMsg struct {
	op      string
	results []actionResult
}

type styles struct {
	title, cursor, help, errLine, app lipgloss.Style

	dots map[deviceStatus]lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Foreground(lipgloss.Color(draculaPurple)).Bold(true),
		cursor:  lipgloss.NewStyle().Foreground(lipgloss.Color(draculaCyan)).Bold(true),
		help:    lipgloss.NewStyle().Foreground(lipgloss.Color(draculaComment)),
		errLine: lipgloss.NewStyle().Foreground(lipgloss.Color(draculaRed)),
		app: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(draculaCyan)).
			Foreground(lipgloss.Color(draculaForeground)),
		dots: map[deviceStatus]lipgloss.Style{
			statusStreaming: lipgloss.NewStyle().Foreground(lipgloss.Color(draculaGreen)),
			statusStopped:   lipgloss.NewStyle().Foreground(lipgloss.Color(draculaComment)),
			statusError:     lipgloss.NewStyle().Foreground(lipgloss.Color(draculaRed)),
		},
	}
}

// Model is the bubbletea model behind rscapture-console.
type Model struct {
	svc       Service
	statePath string
	timeout   time.Duration
	now       func() time.Time

	rows    []deviceRow
	cursor  int
	enabled map[string]bool
	folder  textinput.Model
	logs    []string
	busy    bool
	height  int
	styles  styles
}

// NewModel builds a console model seeded from the persisted state.
func NewModel(svc Service, st *State, statePath string) *Model {
	fi := textinput.New()
	fi.Placeholder = "default"
	fi.Prompt = "folder: "
	fi.CharLimit = 128
	fi.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(draculaCyan))

	if st == nil {
		st = &State{}
	}

	enabled := make(map[string]bool, len(st.Enabled))
	for _, serial := range st.Enabled {
		enabled[serial] = true
	}

	return &Model{
		svc:       svc,
		statePath: statePath,
		timeout:   defaultRequestTimeout,
		now:       time.Now,
		enabled:   enabled,
		folder:    fi,
		logs:      tail(append([]string(nil), st.Logs...), MaxLogLines),
		styles:    newStyles(),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.refresh())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
	case refreshMsg:
		m.applyRefresh(msg)
	case actionMsg:
		m.applyAction(msg)
	case tea.KeyMsg:
		if m.folder.Focused() {
			return m.handleFolderKey(msg)
		}

		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleFolderKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m.quit()
	case tea.KeyEnter, tea.KeyEsc, tea.KeyTab:
		m.folder.Blur()

		return m, nil
	default:
		var cmd tea.Cmd
		m.folder, cmd = m.folder.Update(msg)

		return m, cmd
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m.quit()
	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "tab", "/":
		return m, m.folder.Focus()
	case "e":
		m.toggleEnabled()
	case "r":
		return m, m.refresh()
	case "s":
		return m, m.act("start", m.startOne)
	case "x":
		return m, m.act("stop", m.stopOne)
	case "c":
		return m, m.act("capture", m.captureOne)
	case "k":
		return m, m.act("calibration", m.calibrateOne)
	}

	return m, nil
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.persist()

	return m, tea.Quit
}

func (m *Model) toggleEnabled() {
	row, ok := m.selected()
	if !ok {
		return
	}

	serial := row.device.Serial
	if m.enabled[serial] {
		delete(m.enabled, serial)
		m.addLog(fmt.Sprintf("%s disabled", serial))
	} else {
		m.enabled[serial] = true
		m.addLog(fmt.Sprintf("%s enabled", serial))
	}

	m.persist()
}

func (m *Model) selected() (deviceRow, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return deviceRow{}, false
	}

	return m.rows[m.cursor], true
}

// targets returns the enabled devices in list order, or the selected
// device when none are enabled.
func (m *Model) targets() []string {
	var out []string

	for _, row := range m.rows {
		if m.enabled[row.device.Serial] {
			out = append(out, row.device.Serial)
		}
	}

	if len(out) > 0 {
		return out
	}

	if row, ok := m.selected(); ok {
		return []string{row.device.Serial}
	}

	return nil
}

func (m *Model) refresh() tea.Cmd {
	svc, timeout := m.svc, m.timeout

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		devices, err := svc.Devices(ctx)
		if err != nil {
			return refreshMsg{err: err}
		}

		sessions, err := svc.Sessions(ctx)
		if err != nil {
			return refreshMsg{err: err}
		}

		streaming := make(map[string]bool, len(sessions))
		for _, s := range sessions {
			streaming[s.Serial] = s.State == models.SessionStreaming
		}

		return refreshMsg{devices: devices, streaming: streaming}
	}
}

func (m *Model) applyRefresh(msg refreshMsg) {
	if msg.err != nil {
		m.addLog(fmt.Sprintf("refresh failed: %v", msg.err))

		return
	}

	prev := make(map[string]deviceStatus, len(m.rows))
	for _, row := range m.rows {
		prev[row.device.Serial] = row.status
	}

	rows := make([]deviceRow, 0, len(msg.devices))

	for _, d := range msg.devices {
		status := statusStopped

		switch {
		case msg.streaming[d.Serial]:
			status = statusStreaming
		case prev[d.Serial] == statusError:
			status = statusError
		}

		rows = append(rows, deviceRow{device: d, status: status})
	}

	m.rows = rows
	if m.cursor >= len(m.rows) {
		m.cursor = max(len(m.rows)-1, 0)
	}

	m.addLog(fmt.Sprintf("found %d device(s)", len(rows)))
}

type actionFunc func(ctx context.Context, serial, folder string) actionResult

func (m *Model) act(op string, fn actionFunc) tea.Cmd {
	serials := m.targets()
	if len(serials) == 0 {
		m.addLog("no device selected")

		return nil
	}

	if m.busy {
		m.addLog(fmt.Sprintf("%s ignored: request in flight", op))

		return nil
	}

	m.busy = true
	folder := strings.TrimSpace(m.folder.Value())
	timeout := m.timeout

	return func() tea.Msg {
		results := make([]actionResult, 0, len(serials))

		for _, serial := range serials {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			results = append(results, fn(ctx, serial, folder))
			cancel()
		}

		return actionMsg{op: op, results: results}
	}
}

func (m *Model) startOne(ctx context.Context, serial, _ string) actionResult {
	info, err := m.svc.StartStream(ctx, serial)
	if err != nil {
		return actionResult{serial: serial, status: statusError, err: err}
	}

	return actionResult{
		serial: serial,
		status: statusStreaming,
		line:   fmt.Sprintf("%s streaming %dx%d@%d", serial, info.Width, info.Height, info.FPS),
	}
}

func (m *Model) stopOne(ctx context.Context, serial, _ string) actionResult {
	if err := m.svc.StopStream(ctx, serial); err != nil {
		return actionResult{serial: serial, status: statusError, err: err}
	}

	return actionResult{serial: serial, status: statusStopped, line: fmt.Sprintf("%s stopped", serial)}
}

func (m *Model) captureOne(ctx context.Context, serial, folder string) actionResult {
	resp, err := m.svc.Capture(ctx, serial, folder)
	if err != nil {
		return actionResult{serial: serial, status: statusError, err: err}
	}

	return actionResult{
		serial: serial,
		status: statusStreaming,
		line:   fmt.Sprintf("%s captured %s (%s)", serial, resp.Timestamp, strings.Join(resp.Files, ", ")),
	}
}

func (m *Model) calibrateOne(ctx context.Context, serial, folder string) actionResult {
	resp, err := m.svc.Calibration(ctx, serial, folder)
	if err != nil {
		return actionResult{serial: serial, status: statusError, err: err}
	}

	return actionResult{serial: serial, status: statusUnchanged, line: fmt.Sprintf("%s calibration saved to %s", serial, resp.Filename)}
}

func (m *Model) applyAction(msg actionMsg) {
	m.busy = false

	for _, res := range msg.results {
		if res.err != nil {
			m.addLog(fmt.Sprintf("%s %s failed: %v", res.serial, msg.op, res.err))
		} else {
			m.addLog(res.line)
		}

		if res.status == statusUnchanged {
			continue
		}

		for i := range m.rows {
			if m.rows[i].device.Serial == res.serial {
				m.rows[i].status = res.status
			}
		}
	}
}

func (m *Model) addLog(line string) {
	m.logs = append(m.logs, m.now().Format("15:04:05")+" "+line)
	m.logs = tail(m.logs, MaxLogLines)
}

func (m *Model) persist() {
	if m.statePath == "" {
		return
	}

	st := &State{Logs: m.logs}
	for serial := range m.enabled {
		st.Enabled = append(st.Enabled, serial)
	}

	if err := SaveState(m.statePath, st); err != nil {
		m.addLog(fmt.Sprintf("failed to save state: %v", err))
	}
}

// Logs returns the log pane contents, oldest first.
func (m *Model) Logs() []string {
	return append([]string(nil), m.logs...)
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.title.Render("rscapture console"))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(m.styles.help.Render("no devices (r to refresh)"))
		b.WriteString("\n")
	}

	for i, row := range m.rows {
		cursor := "  "
		if i == m.cursor {
			cursor = m.styles.cursor.Render("> ")
		}

		check := "[ ]"
		if m.enabled[row.device.Serial] {
			check = "[x]"
		}

		fmt.Fprintf(&b, "%s%s %s %s  %s  %s\n",
			cursor,
			m.styles.dots[row.status].Render("●"),
			check,
			row.device.Name,
			row.device.Serial,
			m.styles.help.Render(row.device.ProductLine))
	}

	b.WriteString("\n")
	b.WriteString(m.folder.View())
	b.WriteString("\n")
	b.WriteString(m.styles.help.Render("↑/↓ select • e enable • s start • x stop • c capture • k calibration • tab folder • r refresh • q quit"))
	b.WriteString("\n\n")

	for _, line := range tail(m.logs, m.logHeight()) {
		if strings.Contains(line, "failed") {
			line = m.styles.errLine.Render(line)
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	return m.styles.app.Render(strings.TrimRight(b.String(), "\n"))
}

func (m *Model) logHeight() int {
	if m.height <= 0 {
		return defaultLogHeight
	}

	// Leave room for the header, device list and help lines.
	h := m.height - len(m.rows) - 10
	if h < 3 {
		return 3
	}

	return h
}

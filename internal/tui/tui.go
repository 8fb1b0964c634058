// Package tui provides a Bubble Tea terminal user interface for batch
// harvests.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/handiism/yt-harvester/internal/config"
	"github.com/handiism/yt-harvester/internal/download"
	"github.com/handiism/yt-harvester/internal/model"
	"github.com/handiism/yt-harvester/internal/platform"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	artistStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// maxLogs is the number of log lines kept on screen.
const maxLogs = 10

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateInitializing
	StateDownloading
	StateComplete
	StateError
)

// Form fields, in focus order.
const (
	fieldSearchFile = iota
	fieldDestDir
	fieldAmount
	fieldCount
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   model.ProgressLevel
}

// ClientFactory builds the platform client for a run.
type ClientFactory func(settings *config.Settings) platform.Client

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state    State
	inputs   []textinput.Model
	focus    int
	spinner  spinner.Model
	progress progress.Model
	settings *config.Settings
	client   ClientFactory
	logs     []LogEntry
	artists  []string
	report   *download.Report
	formErr  error
	err      error

	// events carries progress events from the run goroutines to Update.
	events chan model.ProgressEvent

	// Download context
	ctx    context.Context
	cancel context.CancelFunc

	// Download manager reference
	manager *download.Manager

	// Download progress
	totalFiles      int32
	downloadedFiles int32
	receivedBytes   int64
	started         time.Time
	elapsed         time.Duration

	// Options
	audioOnly bool
	playlist  bool
	tag       bool
	verbose   bool

	width  int
	height int
}

// NewModel creates a new TUI model. A nil settings uses
// config.DefaultSettings.
func NewModel(settings *config.Settings, client ClientFactory) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.CharLimit = 500
		ti.Width = 60
		inputs[i] = ti
	}
	inputs[fieldSearchFile].Placeholder = "artists.txt"
	inputs[fieldDestDir].Placeholder = "downloads"
	inputs[fieldAmount].Placeholder = "5"
	inputs[fieldAmount].CharLimit = 6
	inputs[fieldSearchFile].Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		inputs:    inputs,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		client:    client,
		logs:      make([]LogEntry, 0),
		events:    make(chan model.ProgressEvent, 256),
		ctx:       ctx,
		cancel:    cancel,
		audioOnly: true,
		playlist:  settings.CreatePlaylist,
		tag:       settings.TagAudio,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg is sent when the run emits a progress event.
	ProgressMsg struct {
		Event model.ProgressEvent
	}

	// InitDoneMsg is sent when harvesting completes.
	InitDoneMsg struct {
		Artists []string
		Err     error
	}

	// DownloadDoneMsg is sent when all downloads complete.
	DownloadDoneMsg struct {
		Report *download.Report
		Err    error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateDownloading || m.state == StateInitializing {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}

		case "tab", "down":
			if m.state == StateInput {
				m.setFocus((m.focus + 1) % fieldCount)
				return m, nil
			}

		case "shift+tab", "up":
			if m.state == StateInput {
				m.setFocus((m.focus + fieldCount - 1) % fieldCount)
				return m, nil
			}

		case "enter":
			if m.state == StateInput {
				run, err := m.formRun()
				if err != nil {
					m.formErr = err
					return m, nil
				}
				m.formErr = nil
				m.state = StateInitializing
				m.started = time.Now()
				settings := m.runSettings()
				m.manager = download.NewManager(m.client(settings), settings, m.emit)
				return m, tea.Batch(m.initializeDownload(run), m.spinner.Tick, m.waitForEvent(), m.tickProgress())
			}

		case "ctrl+a":
			if m.state == StateInput {
				m.audioOnly = !m.audioOnly
			}
			return m, nil

		case "ctrl+p":
			if m.state == StateInput {
				m.playlist = !m.playlist
			}
			return m, nil

		case "ctrl+t":
			if m.state == StateInput {
				m.tag = !m.tag
			}
			return m, nil

		case "ctrl+l":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}
			return m, nil

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.reset()
				return m, textinput.Blink
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		m.appendLog(msg.Event)
		cmds = append(cmds, m.waitForEvent())

	case InitDoneMsg:
		if m.state != StateInitializing {
			return m, nil
		}
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.artists = msg.Artists
			m.state = StateDownloading
			cmds = append(cmds, m.startDownload())
		}

	case DownloadDoneMsg:
		m.elapsed = time.Since(m.started)
		m.syncProgress()
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.report = msg.Report
			m.state = StateComplete
		}

	case TickMsg:
		if m.manager != nil && !m.manager.State().Terminal() {
			m.syncProgress()

			var percent float64
			if m.totalFiles > 0 {
				percent = float64(m.downloadedFiles) / float64(m.totalFiles)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) setFocus(i int) {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
}

func (m *Model) reset() {
	m.state = StateInput
	m.logs = nil
	m.artists = nil
	m.report = nil
	m.err = nil
	m.formErr = nil
	m.downloadedFiles = 0
	m.totalFiles = 0
	m.receivedBytes = 0
	m.manager = nil
	m.events = make(chan model.ProgressEvent, 256)
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.setFocus(fieldSearchFile)
}

func (m *Model) syncProgress() {
	if m.manager == nil {
		return
	}
	received, _, files, totalFiles := m.manager.GetProgress()
	m.receivedBytes = received
	m.downloadedFiles = files
	m.totalFiles = totalFiles
}

// appendLog records event, keeping the last maxLogs entries.
func (m *Model) appendLog(event model.ProgressEvent) {
	if event.Level == model.LevelVerbose && !m.verbose {
		return
	}
	m.logs = append(m.logs, LogEntry{Message: event.Message, Level: event.Level})
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// formRun validates the form into a batch run.
func (m Model) formRun() (model.RunConfig, error) {
	amountText := strings.TrimSpace(m.inputs[fieldAmount].Value())
	amount, err := strconv.Atoi(amountText)
	if err != nil {
		return model.RunConfig{}, model.NewConfigError("amount", "%q is not a number", amountText)
	}

	return config.NewBatchRun(
		strings.TrimSpace(m.inputs[fieldSearchFile].Value()),
		strings.TrimSpace(m.inputs[fieldDestDir].Value()),
		amount,
		m.audioOnly,
		m.runSettings(),
	)
}

// runSettings returns a copy of the settings with the form options applied.
func (m Model) runSettings() *config.Settings {
	s := *m.settings
	s.CreatePlaylist = m.playlist
	s.TagAudio = m.tag
	return &s
}

// emit forwards an event to the UI. Info and debug events are dropped
// while the UI is behind; warnings and errors wait for room until the run
// is cancelled.
func (m Model) emit(event model.ProgressEvent) {
	if event.Level == model.LevelWarning || event.Level == model.LevelError {
		select {
		case m.events <- event:
		case <-m.ctx.Done():
		}
		return
	}

	select {
	case m.events <- event:
	default:
	}
}

// waitForEvent returns a command that delivers the next progress event.
func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		return ProgressMsg{Event: <-events}
	}
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("yt-harvester"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Harvest videos for a list of artists"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateInitializing:
		b.WriteString(m.viewInitializing())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	labels := [fieldCount]string{"Search file:", "Destination directory:", "Videos per artist:"}
	for i, label := range labels {
		b.WriteString(subtitleStyle.Render(label))
		b.WriteString("\n")
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n\n")
	}

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s Audio only (ctrl+a)\n", checkbox(m.audioOnly))
	fmt.Fprintf(&b, "  %s Create playlist (ctrl+p)\n", checkbox(m.playlist))
	fmt.Fprintf(&b, "  %s Tag audio files (ctrl+t)\n", checkbox(m.tag))
	fmt.Fprintf(&b, "  %s Verbose/debug output (ctrl+l)\n", checkbox(m.verbose))

	if m.formErr != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.formErr.Error()))
		b.WriteString("\n")
	}

	return b.String()
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m Model) viewInitializing() string {
	var b strings.Builder

	status := "Loading search file..."
	if m.manager != nil && m.manager.State() == download.StateHarvesting {
		status = fmt.Sprintf("Harvesting artists... (%d done)", m.manager.ArtistsDone())
	}

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render(status))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	if len(m.artists) > 0 {
		b.WriteString(successStyle.Render(fmt.Sprintf("Harvested %d artist(s):", len(m.artists))))
		b.WriteString("\n")
		for _, artist := range m.artists {
			b.WriteString(artistStyle.Render("  " + artist))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.manager != nil && m.manager.State() == download.StateNormalizing {
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(subtitleStyle.Render("Normalizing files..."))
		b.WriteString("\n\n")
	}

	var percent float64
	if m.totalFiles > 0 {
		percent = float64(m.downloadedFiles) / float64(m.totalFiles)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Files: %d/%d | Downloaded: %s",
		m.downloadedFiles,
		m.totalFiles,
		humanize.Bytes(uint64(m.receivedBytes)),
	)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	text := fmt.Sprintf(
		"Harvest Complete!\n\n"+
			"Artists: %d\n"+
			"Files: %d\n"+
			"Size: %s\n"+
			"Time: %s",
		len(m.artists),
		m.downloadedFiles,
		humanize.Bytes(uint64(m.receivedBytes)),
		m.elapsed.Round(time.Second),
	)
	if m.report != nil {
		if m.report.Failed > 0 {
			text += fmt.Sprintf("\nFailed: %d", m.report.Failed)
		}
		if m.report.Playlist != "" {
			text += "\nPlaylist: " + m.report.Playlist
		}
	}
	b.WriteString(boxStyle.Render(text))

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		fmt.Fprintf(&b, "  %s", m.err.Error())
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case model.LevelError:
			style = errorStyle
			prefix = "✗"
		case model.LevelWarning:
			style = warningStyle
			prefix = "!"
		case model.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case model.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • tab: next field • ctrl+a/p/t/l: options • esc: quit"
	case StateInitializing, StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new harvest • q: quit"
	}
	return ""
}

// initializeDownload loads the search file and harvests every artist.
func (m Model) initializeDownload(run model.RunConfig) tea.Cmd {
	ctx, manager := m.ctx, m.manager
	return func() tea.Msg {
		if err := manager.Initialize(ctx, run); err != nil {
			return InitDoneMsg{Err: err}
		}
		return InitDoneMsg{Artists: manager.ArtistSummaries()}
	}
}

// startDownload starts the actual download in background.
func (m Model) startDownload() tea.Cmd {
	ctx, manager := m.ctx, m.manager
	return func() tea.Msg {
		if manager == nil {
			return DownloadDoneMsg{Err: fmt.Errorf("no manager")}
		}
		report, err := manager.StartDownloads(ctx)
		return DownloadDoneMsg{Report: report, Err: err}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings, client ClientFactory) error {
	p := tea.NewProgram(NewModel(settings, client), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

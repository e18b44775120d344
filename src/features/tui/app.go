// Package tui is the terminal dashboard: a filterable track table, the play
// queue and a now-playing bar, driven by the playback event channel.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/contre95/ferrum/src/features/jobs"
	"github.com/contre95/ferrum/src/features/library"
	"github.com/contre95/ferrum/src/features/playback"
	"github.com/contre95/ferrum/src/features/scanning"
	"github.com/contre95/ferrum/src/features/tui/components"
	"github.com/contre95/ferrum/src/features/tui/styles"
	"github.com/contre95/ferrum/src/music"
)

// App bundles the services the dashboard drives.
type App struct {
	Library     *library.Service
	Player      *playback.Service
	Scanner     *scanning.Service
	Jobs        *jobs.Service
	RefreshRate time.Duration
}

// Model holds the dashboard state between updates.
type Model struct {
	app    *App
	width  int
	height int

	// Library state
	tracks   []*music.Track
	filtered []*music.Track

	// Search state
	searchInput   textinput.Model
	searchFocused bool

	// Components
	trackList  *components.TrackList
	nowPlaying *components.NowPlaying
	queueView  *components.Queue

	// Player snapshot, refreshed on every tick and player event
	current   *music.Track
	status    playback.Status
	position  time.Duration
	volume    float64
	mode      music.QueueMode
	queue     []*music.Track
	queuePos  int
	queueName string

	// Rescan state
	scanJobID string

	// Error and message handling
	lastError     error
	errorExpiry   time.Time
	message       string
	messageExpiry time.Time

	quitting bool
}

// NewModel builds the initial dashboard model.
func NewModel(app *App) Model {
	ti := textinput.New()
	ti.Placeholder = "Filter by album, title or artist..."
	ti.CharLimit = 100
	ti.Width = 40

	return Model{
		app:         app,
		searchInput: ti,
		trackList:   components.NewTrackList(),
		nowPlaying:  components.NewNowPlaying(),
		queueView:   components.NewQueue(),
	}
}

// Messages
type tickMsg time.Time
type playerEventMsg playback.Event
type tracksMsg []*music.Track
type scanStartedMsg string
type errMsg error

// Commands
func (m Model) tick() tea.Cmd {
	return tea.Tick(m.app.RefreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) loadTracks() tea.Cmd {
	return func() tea.Msg {
		tracks, err := m.app.Library.GetAllTracks(context.Background())
		if err != nil {
			return errMsg(err)
		}
		return tracksMsg(tracks)
	}
}

// waitEvent blocks on the player event channel and re-arms itself from
// Update after every delivery.
func (m Model) waitEvent() tea.Cmd {
	events := m.app.Player.Events()
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return playerEventMsg(event)
	}
}

func (m Model) startScan() tea.Cmd {
	return func() tea.Msg {
		jobID, err := m.app.Scanner.Scan(context.Background(), false)
		if err != nil {
			return errMsg(err)
		}
		return scanStartedMsg(jobID)
	}
}

func (m Model) playSelected(track *music.Track) tea.Cmd {
	return func() tea.Msg {
		if err := m.app.Player.AppendAndPlay(track); err != nil {
			return errMsg(err)
		}
		return nil
	}
}

func (m Model) toggle() tea.Cmd {
	return func() tea.Msg {
		if err := m.app.Player.Toggle(); err != nil {
			return errMsg(err)
		}
		return nil
	}
}

func (m Model) nextTrack() tea.Cmd {
	return func() tea.Msg {
		if err := m.app.Player.Next(); err != nil {
			return errMsg(err)
		}
		return nil
	}
}

func (m Model) prevTrack() tea.Cmd {
	return func() tea.Msg {
		if err := m.app.Player.Previous(); err != nil {
			return errMsg(err)
		}
		return nil
	}
}

// Init starts the tick, the initial library load and the event pump.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.tick(),
		m.loadTracks(),
		m.waitEvent(),
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.syncPlayer()
		if m.lastError != nil && time.Now().After(m.errorExpiry) {
			m.lastError = nil
		}
		if m.message != "" && time.Now().After(m.messageExpiry) {
			m.message = ""
		}
		if cmd := m.checkScan(); cmd != nil {
			return m, tea.Batch(m.tick(), cmd)
		}
		return m, m.tick()

	case playerEventMsg:
		m.syncPlayer()
		return m, m.waitEvent()

	case tracksMsg:
		m.tracks = msg
		m.applyFilter()
		return m, nil

	case scanStartedMsg:
		m.scanJobID = string(msg)
		return m, nil

	case errMsg:
		m.lastError = msg
		m.errorExpiry = time.Now().Add(5 * time.Second)
		return m, nil
	}

	if m.searchFocused {
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		m.applyFilter()
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}

	if m.searchFocused {
		return m.handleSearchKeyPress(msg)
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "/", "ctrl+f":
		m.searchFocused = true
		m.searchInput.Focus()
		return m, textinput.Blink

	case "esc":
		if m.searchInput.Value() != "" {
			m.searchInput.SetValue("")
			m.applyFilter()
		}
		return m, nil

	case "up", "k":
		m.trackList.MoveUp()
		return m, nil

	case "down", "j":
		m.trackList.MoveDown()
		return m, nil

	case "home", "g":
		m.trackList.Home()
		return m, nil

	case "end", "G":
		m.trackList.End()
		return m, nil

	case "enter":
		if track := m.trackList.Selected(); track != nil {
			return m, m.playSelected(track)
		}
		return m, nil
	}

	// Playback controls
	switch msg.String() {
	case " ":
		return m, m.toggle()

	case "s":
		m.app.Player.Stop()
		m.syncPlayer()
		return m, nil

	case "n":
		return m, m.nextTrack()

	case "p":
		return m, m.prevTrack()

	case "+", "=":
		m.app.Player.SetVolume(m.app.Player.Volume() + 0.05)
		m.syncPlayer()
		return m, nil

	case "-":
		m.app.Player.SetVolume(m.app.Player.Volume() - 0.05)
		m.syncPlayer()
		return m, nil

	case "m":
		mode := m.app.Player.CycleMode()
		m.syncPlayer()
		m.setMessage("Queue mode: " + mode.String())
		return m, nil

	case "S":
		m.app.Player.ShuffleQueue()
		m.syncPlayer()
		m.setMessage("Queue shuffled")
		return m, nil

	case "r":
		if m.scanJobID != "" {
			m.setMessage("Scan already running")
			return m, nil
		}
		return m, m.startScan()
	}

	return m, nil
}

func (m Model) handleSearchKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searchFocused = false
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.applyFilter()
		return m, nil

	case "enter":
		m.searchFocused = false
		m.searchInput.Blur()
		return m, nil

	// The table keeps scrolling while the filter is being typed
	case "up":
		m.trackList.MoveUp()
		return m, nil

	case "down":
		m.trackList.MoveDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.applyFilter()
	return m, cmd
}

// syncPlayer snapshots the player state for the next render.
func (m *Model) syncPlayer() {
	p := m.app.Player
	m.current = p.Current()
	m.status = p.Status()
	m.position = p.Position()
	m.volume = p.Volume()
	m.mode = p.Mode()
	m.queue = p.QueueTracks()
	m.queuePos = p.QueuePosition()
	m.queueName = p.QueueName()
}

func (m *Model) applyFilter() {
	query := m.searchInput.Value()
	if query == "" {
		m.filtered = m.tracks
	} else {
		m.filtered = music.FilterTracks(m.tracks, query)
	}
	m.trackList.SetTracks(m.filtered)
}

// checkScan polls the running scan job and reloads the library once it
// finishes. Scans the watcher kicked off are picked up here too.
func (m *Model) checkScan() tea.Cmd {
	if m.scanJobID == "" {
		for _, job := range m.app.Jobs.GetJobs() {
			if job.Type == "library_scan" &&
				(job.Status == jobs.JobStatusPending || job.Status == jobs.JobStatusRunning) {
				m.scanJobID = job.ID
				break
			}
		}
		if m.scanJobID == "" {
			return nil
		}
	}
	job, ok := m.app.Jobs.GetJob(m.scanJobID)
	if !ok {
		m.scanJobID = ""
		return nil
	}
	switch job.Status {
	case jobs.JobStatusCompleted:
		m.scanJobID = ""
		m.setMessage("Scan finished")
		return m.loadTracks()
	case jobs.JobStatusFailed, jobs.JobStatusCancelled:
		m.scanJobID = ""
		m.lastError = fmt.Errorf("scan %s: %s", job.Status, job.Message)
		m.errorExpiry = time.Now().Add(5 * time.Second)
	}
	return nil
}

func (m *Model) setMessage(text string) {
	m.message = text
	m.messageExpiry = time.Now().Add(4 * time.Second)
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	// Layout: track list and queue side by side, now-playing bar and
	// status line across the bottom.
	leftWidth := m.width * 65 / 100
	rightWidth := m.width - leftWidth
	panelHeight := m.height - 5
	if panelHeight < 8 {
		panelHeight = 8
	}

	paused := m.status == playback.StatusPaused
	trackList := m.trackList.Render(m.searchView(), m.current, paused, leftWidth-2, panelHeight, true)
	queueView := m.queueView.Render(m.queueName, m.queue, m.queuePos, rightWidth-2, panelHeight, false)

	main := lipgloss.JoinHorizontal(lipgloss.Top, trackList, queueView)
	bar := m.nowPlaying.Render(m.current, m.status, m.position, m.volume, m.mode, m.width)
	statusBar := m.renderStatusBar()

	return lipgloss.JoinVertical(lipgloss.Left, main, bar, statusBar)
}

func (m Model) searchView() string {
	if m.searchFocused || m.searchInput.Value() != "" {
		return m.searchInput.View()
	}
	return styles.Dim.Render("Press / to filter")
}

func (m Model) renderStatusBar() string {
	status := styles.Dim.Render("q:quit  /:filter  enter:play  space:pause  n:next  p:prev  +/-:volume  m:mode  S:shuffle  r:rescan")

	if m.message != "" {
		status = styles.Highlight.Render(m.message)
	}
	if m.scanJobID != "" {
		if job, ok := m.app.Jobs.GetJob(m.scanJobID); ok {
			status = styles.Highlight.Render(fmt.Sprintf("Scanning... %d%% %s", job.Progress, job.Message))
		}
	}
	if m.lastError != nil {
		status = styles.ErrorText.Render("Error: " + m.lastError.Error())
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(status)
}

// Run starts the dashboard and blocks until the user quits.
func Run(app *App) error {
	model := NewModel(app)
	p := tea.NewProgram(model, tea.WithAltScreen())

	_, err := p.Run()
	return err
}

package tui

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lockbar-io/lockbar/internal/views"
)

// Model is the root Bubbletea model for the terminal panel.
type Model struct {
	controller *views.Controller
	snapshot   views.Snapshot

	// UI state
	showHelp bool
	width    int
	height   int

	// Status display
	err error

	// Child components
	loginForm   *LoginForm
	vehicleList *VehicleList

	spinnerRunning bool
}

// NewModel creates the initial model from the controller's current state.
func NewModel(controller *views.Controller) Model {
	m := Model{
		controller:  controller,
		loginForm:   NewLoginForm(80),
		vehicleList: NewVehicleList(),
		width:       80,
		height:      24,
	}
	m.applySnapshot(controller.Snapshot())
	return m
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update processes messages and returns an updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.loginForm.SetWidth(msg.Width)
		m.vehicleList.SetHeight(m.listHeight())
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case StateMsg:
		m.applySnapshot(msg.Snapshot)
		return m, m.ensureSpinner()

	case LoginDoneMsg:
		m.loginForm.SetSubmitting(false)
		m.applySnapshot(m.controller.Snapshot())
		return m, nil

	case RefreshDoneMsg:
		m.applySnapshot(m.controller.Snapshot())
		if msg.Err != nil {
			return m, m.showError(msg.Err)
		}
		return m, nil

	case ToggleDoneMsg:
		m.applySnapshot(m.controller.Snapshot())
		// Command failures are shown on the vehicle itself.
		if errors.Is(msg.Err, views.ErrVehicleNotFound) || errors.Is(msg.Err, views.ErrNotLoggedIn) {
			return m, m.showError(msg.Err)
		}
		return m, m.ensureSpinner()

	case ClearErrorMsg:
		m.err = nil
		return m, nil

	case spinnerTickMsg:
		if !m.vehicleList.AnyBusy() {
			m.spinnerRunning = false
			return m, nil
		}
		m.vehicleList.Tick()
		return m, spinnerTick()
	}

	if m.snapshot.Route.Name == views.RouteLogin {
		return m, m.loginForm.Update(msg)
	}
	return m, nil
}

func (m *Model) applySnapshot(s views.Snapshot) {
	m.snapshot = s
	m.vehicleList.SetVehicles(s.Vehicles)
}

func (m *Model) ensureSpinner() tea.Cmd {
	if m.spinnerRunning || !m.vehicleList.AnyBusy() {
		return nil
	}
	m.spinnerRunning = true
	return spinnerTick()
}

func (m *Model) showError(err error) tea.Cmd {
	m.err = err
	return clearErrorAfter(5 * time.Second)
}

func (m *Model) navigate(r views.Route) {
	m.controller.Navigate(r)
	m.applySnapshot(m.controller.Snapshot())
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, globalKeys.Quit) {
		return tea.Quit
	}
	if key.Matches(msg, globalKeys.Help) {
		m.showHelp = !m.showHelp
		return nil
	}
	if m.showHelp {
		if msg.Type == tea.KeyEsc {
			m.showHelp = false
		}
		return nil
	}

	switch m.snapshot.Route.Name {
	case views.RouteLogin:
		return m.handleLoginKey(msg)
	case views.RouteVehicles:
		return m.handleListKey(msg)
	case views.RouteVehicle:
		return m.handleDetailKey(msg)
	}
	return nil
}

func (m *Model) handleLoginKey(msg tea.KeyMsg) tea.Cmd {
	if m.loginForm.Submitting() {
		return nil
	}
	switch {
	case key.Matches(msg, loginKeys.Next):
		m.loginForm.FocusNext()
		return nil
	case key.Matches(msg, loginKeys.Prev):
		m.loginForm.FocusPrev()
		return nil
	case key.Matches(msg, loginKeys.Submit):
		if m.loginForm.FocusIndex() == 0 {
			m.loginForm.FocusNext()
			return nil
		}
		if !m.loginForm.Ready() {
			return m.showError(errors.New("username and password are required"))
		}
		m.loginForm.SetSubmitting(true)
		return loginCmd(m.controller, m.loginForm.Username(), m.loginForm.Password())
	}
	return m.loginForm.Update(msg)
}

func (m *Model) handleListKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, listKeys.Up):
		m.vehicleList.MoveUp()
	case key.Matches(msg, listKeys.Down):
		m.vehicleList.MoveDown()
	case key.Matches(msg, listKeys.Open):
		if v, ok := m.vehicleList.Selected(); ok {
			m.navigate(views.Vehicle(v.Key))
		}
	case key.Matches(msg, listKeys.Refresh):
		return refreshCmd(m.controller)
	}
	return nil
}

func (m *Model) handleDetailKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, detailKeys.Back):
		m.navigate(views.Vehicles())
	case key.Matches(msg, detailKeys.Toggle):
		v, ok := m.snapshot.Find(m.snapshot.Route.Key)
		if !ok || v.Busy {
			return nil
		}
		return toggleCmd(m.controller, v.Key)
	}
	return nil
}

func (m Model) listHeight() int {
	// Header, status bar, panel border.
	h := m.height - 6
	if h < 1 {
		h = 1
	}
	return h
}

// View renders the panel.
func (m Model) View() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	var body string
	switch m.snapshot.Route.Name {
	case views.RouteLogin:
		body = m.loginForm.View(m.snapshot.LoginError)
	case views.RouteVehicles:
		body = m.vehiclesView(width - 4)
	case views.RouteVehicle:
		body = m.detailView(width - 4)
	}

	content := strings.Join([]string{
		renderHeader(m.snapshot, width),
		panelStyle.Width(width - 2).Render(body),
		renderStatusBar(&m, width),
	}, "\n")

	if m.showHelp {
		return renderOverlay(content, renderHelp(width), width, m.height)
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(content)
}

func (m Model) vehiclesView(width int) string {
	switch {
	case m.snapshot.ListError != "":
		return errorStyle.Render(m.snapshot.ListError) + "\n\n" + keyHint("r", "retry")
	case !m.snapshot.Fetched:
		return busyStyle.Render("Loading vehicles…")
	}
	return m.vehicleList.View(width)
}

func (m Model) detailView(width int) string {
	v, ok := m.snapshot.Find(m.snapshot.Route.Key)
	if !ok {
		return dimStyle.Render("Vehicle not found.") + "\n\n" + keyHint("Esc", "back")
	}
	return renderDetail(v, m.vehicleList.spinnerFrame, width)
}

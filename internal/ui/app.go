package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/i474232898/cosmic-weather/internal/store"
)

// Store is the store surface the UI drives.
type Store interface {
	Snapshot() store.State
	Subscribe(fn func(store.State)) (cancel func())
	LoadAstronomy(ctx context.Context)
	LoadWeather(ctx context.Context, locationName string)
	ToggleFavorite(ctx context.Context, date string) error
	ToggleTheme(ctx context.Context) error
}

// changedMsg signals that the store committed a new state.
type changedMsg struct{}

// actionErrMsg carries a failed preference write.
type actionErrMsg struct{ text string }

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx     context.Context
	store   Store
	changes <-chan struct{}

	snapshot store.State
	keys     keyMap

	width  int
	height int

	searching bool
	search    textinput.Model
	spinner   spinner.Model

	notice string
}

// New creates a Model reading from st. changes receives a value whenever the
// store state changes; see Run.
func New(ctx context.Context, st Store, changes <-chan struct{}) Model {
	if ctx == nil {
		ctx = context.Background()
	}

	ti := textinput.New()
	ti.Placeholder = "Search city..."
	ti.CharLimit = 100
	ti.Prompt = "/ "

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:      ctx,
		store:    st,
		changes:  changes,
		snapshot: st.Snapshot(),
		keys:     defaultKeyMap(),
		search:   ti,
		spinner:  sp,
	}
}

// Run starts the program and blocks until the user quits or ctx is done.
func Run(ctx context.Context, st Store) error {
	changes := make(chan struct{}, 1)
	cancel := st.Subscribe(func(store.State) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	defer cancel()

	p := tea.NewProgram(New(ctx, st, changes), tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForChange(m.ctx, m.changes))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchKey(msg)
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.search.Width = max(msg.Width-4, 10)
		return m, nil

	case changedMsg:
		m.snapshot = m.store.Snapshot()
		return m, waitForChange(m.ctx, m.changes)

	case actionErrMsg:
		m.notice = msg.text
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Astronomy):
		return m, m.loadAstronomy()

	case key.Matches(msg, m.keys.Weather):
		return m, m.loadWeather("")

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue("")
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.Favorite):
		if m.snapshot.Astronomy == nil {
			return m, nil
		}
		return m, m.toggleFavorite(m.snapshot.Astronomy.Date)

	case key.Matches(msg, m.keys.Theme):
		return m, m.toggleTheme()
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.searching = false
		m.search.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		city := strings.TrimSpace(m.search.Value())
		if city == "" {
			return m, nil
		}
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		return m, m.loadWeather(city)
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) loadAstronomy() tea.Cmd {
	ctx, st := m.ctx, m.store
	return func() tea.Msg {
		st.LoadAstronomy(ctx)
		return nil
	}
}

func (m Model) loadWeather(city string) tea.Cmd {
	ctx, st := m.ctx, m.store
	return func() tea.Msg {
		st.LoadWeather(ctx, city)
		return nil
	}
}

func (m Model) toggleFavorite(date string) tea.Cmd {
	ctx, st := m.ctx, m.store
	return func() tea.Msg {
		if err := st.ToggleFavorite(ctx, date); err != nil {
			return actionErrMsg{text: "Could not save favorite."}
		}
		return nil
	}
}

func (m Model) toggleTheme() tea.Cmd {
	ctx, st := m.ctx, m.store
	return func() tea.Msg {
		if err := st.ToggleTheme(ctx); err != nil {
			return actionErrMsg{text: "Could not save theme."}
		}
		return nil
	}
}

func waitForChange(ctx context.Context, changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-changes:
			return changedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

// Package tui is the terminal front end for the cat walk tracker.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/thebtf/catwalk/internal/walker"
	"github.com/thebtf/catwalk/pkg/models"
)

// opTimeout bounds each store round trip.
const opTimeout = 5 * time.Second

// Walker is the domain surface the TUI drives.
type Walker interface {
	RegisterCat(ctx context.Context, name string) (*models.Cat, error)
	ToggleWalk(ctx context.Context, catID int64, walking bool) (models.Transition, error)
	Snapshot(ctx context.Context) ([]models.CatState, error)
	History(ctx context.Context) ([]models.HistoryEntry, error)
	Reset(ctx context.Context) error
	Now() time.Time
}

type level int

const (
	levelInfo level = iota
	levelSuccess
	levelWarning
	levelError
)

type mode int

const (
	modeBrowse mode = iota
	modeAdd
)

// loadedMsg carries a fresh read of the store.
type loadedMsg struct {
	cats    []models.CatState
	history []models.HistoryEntry
	now     time.Time
	err     error
}

// resultMsg reports the outcome of a mutation.
type resultMsg struct {
	text  string
	level level
}

// Model is the bubbletea model for the walk tracker.
type Model struct {
	walker Walker

	cats    []models.CatState
	history []models.HistoryEntry
	loaded  time.Time
	cursor  int
	err     error

	mode         mode
	input        textinput.Model
	confirmReset bool
	flash        string
	flashLevel   level

	keys     KeyMap
	help     help.Model
	showHelp bool
	width    int
	height   int
}

// New creates a model bound to w.
func New(w Walker) Model {
	ti := textinput.New()
	ti.Placeholder = "cat name"
	ti.CharLimit = models.MaxNameLength
	ti.Prompt = "Add a new cat: "

	return Model{
		walker: w,
		input:  ti,
		keys:   DefaultKeyMap(),
		help:   help.New(),
	}
}

// Init loads the initial state.
func (m Model) Init() tea.Cmd {
	return m.load
}

func (m Model) load() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	cats, err := m.walker.Snapshot(ctx)
	if err != nil {
		return loadedMsg{err: err}
	}
	history, err := m.walker.History(ctx)
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{cats: cats, history: history, now: m.walker.Now()}
}

func (m Model) addCat(name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		cat, err := m.walker.RegisterCat(ctx, name)
		if err != nil {
			return errorResult(err, "Could not add cat.")
		}
		return resultMsg{text: walker.AddedMessage(cat.Name), level: levelSuccess}
	}
}

func (m Model) toggle(c models.CatState) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		tr, err := m.walker.ToggleWalk(ctx, c.ID, !c.Walking)
		if err != nil {
			return errorResult(err, "Could not update walk.")
		}
		if tr == models.TransitionNone {
			// The snapshot was stale; the cat is already in the requested state.
			c.Walking = !c.Walking
			return resultMsg{text: walker.StateLabel(c), level: levelInfo}
		}
		lvl := levelSuccess
		if tr == models.TransitionEnded {
			lvl = levelInfo
		}
		return resultMsg{text: walker.TransitionMessage(c.Name, tr), level: lvl}
	}
}

func (m Model) reset() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := m.walker.Reset(ctx); err != nil {
		return errorResult(err, "Could not reset data.")
	}
	return resultMsg{text: walker.MsgReset, level: levelSuccess}
}

func errorResult(err error, fallback string) resultMsg {
	msg, ok := walker.ErrorMessage(err)
	if !ok {
		log.Error().Err(err).Msg(fallback)
		return resultMsg{text: fallback, level: levelError}
	}
	lvl := levelError
	if msg == walker.MsgDuplicate {
		lvl = levelWarning
	}
	return resultMsg{text: msg, level: lvl}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(msg.Width-len(m.input.Prompt)-4, 10)
		return m, nil

	case loadedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.cats = msg.cats
			m.history = msg.history
			m.loaded = msg.now
		}
		m.clampCursor()
		return m, nil

	case resultMsg:
		m.flash = msg.text
		m.flashLevel = msg.level
		return m, m.load

	case tea.KeyMsg:
		if m.mode == modeAdd {
			return m.updateAdd(msg)
		}
		return m.updateBrowse(msg)
	}

	return m, nil
}

func (m Model) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		name := m.input.Value()
		m.input.Reset()
		m.input.Blur()
		m.mode = modeBrowse
		return m, m.addCat(name)

	case key.Matches(msg, m.keys.Cancel):
		m.input.Reset()
		m.input.Blur()
		m.mode = modeBrowse
		return m, nil

	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	armed := m.confirmReset
	m.confirmReset = false

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.cats)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		if len(m.cats) == 0 {
			return m, nil
		}
		return m, m.toggle(m.cats[m.cursor])

	case key.Matches(msg, m.keys.Add):
		m.mode = modeAdd
		m.flash = ""
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.load

	case key.Matches(msg, m.keys.Reset):
		if armed {
			return m, m.reset
		}
		m.confirmReset = true
		m.flash = "Press r again to delete all cats and walks."
		m.flashLevel = levelWarning
		return m, nil
	}

	return m, nil
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.cats) {
		m.cursor = len(m.cats) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Run starts the TUI and blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, w Walker) error {
	p := tea.NewProgram(New(w), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

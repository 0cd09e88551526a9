package progress

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"
)

var _emojiIcons = map[bool]string{
	true:  "❌",
	false: "✅",
}

var _boringIcons = map[bool]string{
	true:  "[FAIL] ",
	false: "[done] ",
}

// fileState tracks a single file's render state.
type fileState struct {
	path   string
	failed bool
}

// _maxRows caps the number of file lines kept on screen. The render window
// slides so the most recent files stay visible.
const _maxRows = 12

// model is the bubbletea model for rendering parse progress.
// All methods use pointer receivers so applyEvent mutations operate on the
// same instance without copy aliasing.
type model struct {
	label  string
	files  []fileState
	parsed int
	failed int
	width  int
	boring bool // use ASCII icons instead of emoji
	done   bool
	err    error
}

func newModel(label string, boring bool) *model {
	return &model{label: label, boring: boring}
}

// eventMsg carries an Event from the channel to the bubbletea event loop.
type eventMsg struct{ event Event }

// doneMsg signals the event channel has been closed.
type doneMsg struct{}

// Init implements tea.Model.
func (*model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case eventMsg:
		m.applyEvent(msg.event)
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *model) applyEvent(e Event) {
	failed := e.Err != nil
	if failed {
		m.failed++
		if m.err == nil {
			m.err = fmt.Errorf("file %s: %w", e.Path, e.Err)
		}
	} else {
		m.parsed++
	}
	m.files = append(m.files, fileState{path: e.Path, failed: failed})
	if len(m.files) > _maxRows {
		m.files = m.files[len(m.files)-_maxRows:]
	}
}

var (
	_headerStyle = lipgloss.NewStyle().Bold(true)
	_failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// View implements tea.Model.
func (m *model) View() string {
	var b strings.Builder

	header := fmt.Sprintf("Parsing %s  (%d ok, %d failed)", m.label, m.parsed, m.failed)
	_, _ = b.WriteString(_headerStyle.Render(header))
	_ = b.WriteByte('\n')

	icons := _emojiIcons
	if m.boring {
		icons = _boringIcons
	}

	for _, f := range m.files {
		line := fmt.Sprintf("  %s %s", icons[f.failed], f.path)
		if f.failed {
			line = _failStyle.Render(line)
		}
		_, _ = b.WriteString(line)
		_ = b.WriteByte('\n')
	}

	return b.String()
}

package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// model is the bubbletea TUI wrapper, grounded on the teacher's
// cpu.Debug/model: a single string input buffer accumulated keystroke by
// keystroke, dispatched on Enter, generalized here to a full command line
// instead of single-key stepping.
type model struct {
	session *Session
	input   string
	history []string
	quit    bool
}

const historyLines = 12

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit

	case tea.KeyEnter:
		line := m.input
		m.input = ""
		if line == "" {
			return m, nil
		}
		reply := m.session.Dispatch(line)
		if reply == quitSentinel {
			return m, tea.Quit
		}
		m.history = append(m.history, "> "+line)
		if reply != "" {
			m.history = append(m.history, strings.Split(reply, "\n")...)
		}
		return m, nil

	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
		return m, nil

	case tea.KeyRunes, tea.KeySpace:
		m.input += keyMsg.String()
		return m, nil
	}

	return m, nil
}

var (
	statusStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	inputStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func (m model) status() string {
	info := m.session.eng.Info()
	return statusStyle.Render(fmt.Sprintf("block=%d page=%d buffer_pos=%d", info.CurrBlock, info.CurrPage, info.BufferPos))
}

func (m model) View() string {
	lines := m.history
	if len(lines) > historyLines {
		lines = lines[len(lines)-historyLines:]
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.status(),
		strings.Join(lines, "\n"),
		inputStyle.Render("> "+m.input),
		helpText,
	)
}

// RunTUI starts the interactive bubbletea shell over session.
func RunTUI(session *Session) error {
	_, err := tea.NewProgram(model{session: session}).Run()
	return err
}

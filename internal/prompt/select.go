package prompt

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type selectModel struct {
	title   string
	options []string
	cursor  int
	done    bool
	abort   bool
}

func newSelect(title string, options []string, initial int) *selectModel {
	if initial < 0 || initial >= len(options) {
		initial = 0
	}
	return &selectModel{title: title, options: options, cursor: initial}
}

func (m *selectModel) cancelled() bool { return m.abort }

func (m *selectModel) Init() tea.Cmd { return nil }

func (m *selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || m.done {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "esc":
		m.abort = true
		m.done = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case "enter":
		m.done = true
		return m, tea.Quit
	default:
		// 1-9 picks an option directly
		if n, err := strconv.Atoi(key.String()); err == nil && n >= 1 && n <= len(m.options) {
			m.cursor = n - 1
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *selectModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")

	if m.done && !m.abort {
		b.WriteString("  " + selectedStyle.Render(m.options[m.cursor]) + "\n")
		return b.String()
	}

	for i, opt := range m.options {
		line := strconv.Itoa(i+1) + ". " + opt
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString(hintStyle.Render("↑↓/jk navigate · 1-9 or enter select · ctrl+c quit"))
	b.WriteString("\n")
	return b.String()
}

package prompt

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type textModel struct {
	title string
	def   string
	input textinput.Model
	done  bool
	abort bool
}

func newText(title, def string) *textModel {
	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = def
	in.Focus()
	return &textModel{title: title, def: def, input: in}
}

func (m *textModel) cancelled() bool { return m.abort }

// result is the trimmed input, or the default when nothing was typed.
func (m *textModel) result() string {
	if v := strings.TrimSpace(m.input.Value()); v != "" {
		return v
	}
	return m.def
}

func (m *textModel) Init() tea.Cmd { return textinput.Blink }

func (m *textModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.done {
		return m, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC:
			m.abort = true
			m.done = true
			return m, tea.Quit
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *textModel) View() string {
	if m.done && !m.abort {
		return titleStyle.Render(m.title) + " " + m.result() + "\n"
	}
	return titleStyle.Render(m.title) + "\n" + m.input.View() + "\n" +
		hintStyle.Render("enter confirm · ctrl+c quit") + "\n"
}

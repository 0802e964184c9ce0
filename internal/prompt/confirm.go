package prompt

import tea "github.com/charmbracelet/bubbletea"

type confirmModel struct {
	question string
	value    bool
	done     bool
	abort    bool
}

func newConfirm(question string, def bool) *confirmModel {
	return &confirmModel{question: question, value: def}
}

func (m *confirmModel) cancelled() bool { return m.abort }

func (m *confirmModel) Init() tea.Cmd { return nil }

func (m *confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || m.done {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c":
		m.abort = true
	case "y", "Y":
		m.value = true
	case "n", "N", "esc":
		m.value = false
	case "enter":
	default:
		return m, nil
	}
	m.done = true
	return m, tea.Quit
}

func (m *confirmModel) View() string {
	hint := "[y/N]"
	if m.value {
		hint = "[Y/n]"
	}
	view := titleStyle.Render(m.question) + " " + hintStyle.Render(hint)
	if m.done && !m.abort {
		if m.value {
			view += " yes"
		} else {
			view += " no"
		}
	}
	return view + "\n"
}

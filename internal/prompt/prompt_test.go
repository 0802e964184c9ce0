package prompt

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

// isQuit reports whether cmd, when executed, asks the program to exit.
func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestSelect_Navigate(t *testing.T) {
	m := newSelect("Format", []string{"AAC", "ALAC", "FLAC"}, 0)

	m.Update(key(tea.KeyDown))
	m.Update(runes("j"))
	m.Update(runes("j")) // stays on last
	assert.Equal(t, 2, m.cursor)

	m.Update(key(tea.KeyUp))
	assert.Equal(t, 1, m.cursor)

	_, cmd := m.Update(key(tea.KeyEnter))
	assert.True(t, isQuit(cmd))
	assert.False(t, m.cancelled())
	assert.Equal(t, 1, m.cursor)
}

func TestSelect_NumberPicks(t *testing.T) {
	m := newSelect("Format", []string{"AAC", "ALAC", "FLAC"}, 0)

	_, cmd := m.Update(runes("9"))
	assert.False(t, isQuit(cmd), "out of range number is ignored")

	_, cmd = m.Update(runes("3"))
	assert.True(t, isQuit(cmd))
	assert.Equal(t, 2, m.cursor)
	assert.Contains(t, m.View(), "FLAC")
}

func TestSelect_Cancel(t *testing.T) {
	m := newSelect("Format", []string{"AAC"}, 5)
	assert.Equal(t, 0, m.cursor, "invalid initial index")

	_, cmd := m.Update(key(tea.KeyCtrlC))
	assert.True(t, isQuit(cmd))
	assert.True(t, m.cancelled())
}

func TestSelect_View(t *testing.T) {
	m := newSelect("Choose", []string{"AAC", "MP3"}, 1)
	view := m.View()
	assert.Contains(t, view, "Choose")
	assert.Contains(t, view, "1. AAC")
	assert.Contains(t, view, "> 2. MP3")
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name   string
		def    bool
		msg    tea.KeyMsg
		want   bool
		cancel bool
	}{
		{"yes", false, runes("y"), true, false},
		{"no", true, runes("N"), false, false},
		{"enter keeps default yes", true, key(tea.KeyEnter), true, false},
		{"enter keeps default no", false, key(tea.KeyEnter), false, false},
		{"escape is no", true, key(tea.KeyEscape), false, false},
		{"ctrl+c cancels", true, key(tea.KeyCtrlC), true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newConfirm("Download more?", tt.def)
			_, cmd := m.Update(tt.msg)
			assert.True(t, isQuit(cmd))
			assert.Equal(t, tt.want, m.value)
			assert.Equal(t, tt.cancel, m.cancelled())
		})
	}
}

func TestConfirm_IgnoresOtherKeys(t *testing.T) {
	m := newConfirm("Destroy cookies file?", false)
	_, cmd := m.Update(runes("x"))
	assert.Nil(t, cmd)
	assert.False(t, m.done)
}

func TestText(t *testing.T) {
	m := newText("Cookies file", "cookies.txt")
	assert.Equal(t, "cookies.txt", m.result(), "empty input falls back to default")

	m.Update(runes("  my.txt "))
	_, cmd := m.Update(key(tea.KeyEnter))

	assert.True(t, isQuit(cmd))
	assert.Equal(t, "my.txt", m.result())
	assert.False(t, m.cancelled())
}

func TestText_Cancel(t *testing.T) {
	m := newText("URL", "")
	_, cmd := m.Update(key(tea.KeyCtrlC))
	assert.True(t, isQuit(cmd))
	assert.True(t, m.cancelled())
}

func TestPrompter_Confirm(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("y"), &out)

	got, err := p.Confirm("Download more?", false)

	require.NoError(t, err)
	assert.True(t, got)
}

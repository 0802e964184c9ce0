// Package prompt asks the user questions on the terminal with small
// bubbletea programs that exit as soon as an answer is given.
package prompt

import (
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/amflac/internal/console"
)

// ErrCancelled is returned when the user aborts a prompt with Ctrl+C.
var ErrCancelled = errors.New("prompt cancelled")

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(console.DefaultTheme.Primary)

	selectedStyle = lipgloss.NewStyle().
			Foreground(console.DefaultTheme.Primary).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(console.DefaultTheme.FgMuted)
)

// answer is implemented by every prompt model.
type answer interface {
	tea.Model
	cancelled() bool
}

// Prompter runs prompts against a terminal.
type Prompter struct {
	in  io.Reader
	out io.Writer
}

// New creates a Prompter reading keys from in and drawing to out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out}
}

func (p *Prompter) run(m answer) (tea.Model, error) {
	prog := tea.NewProgram(m, tea.WithInput(p.in), tea.WithOutput(p.out))
	final, err := prog.Run()
	if errors.Is(err, tea.ErrInterrupted) {
		return nil, ErrCancelled
	}
	if err != nil {
		return nil, fmt.Errorf("run prompt: %w", err)
	}
	if a, ok := final.(answer); ok && a.cancelled() {
		return nil, ErrCancelled
	}
	return final, nil
}

// Select asks the user to pick one of options and returns its index.
func (p *Prompter) Select(title string, options []string, initial int) (int, error) {
	final, err := p.run(newSelect(title, options, initial))
	if err != nil {
		return 0, err
	}
	return final.(*selectModel).cursor, nil
}

// Confirm asks a yes/no question. Enter accepts def.
func (p *Prompter) Confirm(question string, def bool) (bool, error) {
	final, err := p.run(newConfirm(question, def))
	if err != nil {
		return false, err
	}
	return final.(*confirmModel).value, nil
}

// Text asks for a line of text. An empty answer returns def.
func (p *Prompter) Text(title, def string) (string, error) {
	final, err := p.run(newText(title, def))
	if err != nil {
		return "", err
	}
	return final.(*textModel).result(), nil
}

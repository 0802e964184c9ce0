// Package console is the user-facing output surface. Components write to a
// Sink instead of printing, so the same code drives the terminal and tests.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Sink receives user-facing messages.
type Sink interface {
	Success(msg string)
	Error(msg string)
	Info(msg string)
	Warning(msg string)
	// Print writes msg without any status marker.
	Print(msg string)
	// Panel writes a titled block of key/value rows.
	Panel(title string, rows []Row)
}

// Row is one key/value line of a panel.
type Row struct {
	Key   string
	Value string
}

// Console is a Sink that renders styled output to a writer.
// Color is used only when the writer is a terminal.
type Console struct {
	mu sync.Mutex
	w  io.Writer
	st styles
}

type styles struct {
	success lipgloss.Style
	err     lipgloss.Style
	info    lipgloss.Style
	warning lipgloss.Style
	key     lipgloss.Style
	title   lipgloss.Style
	panel   lipgloss.Style
	muted   lipgloss.Style
}

// New creates a Console writing to w.
func New(w io.Writer) *Console {
	r := lipgloss.NewRenderer(w)
	t := DefaultTheme
	return &Console{
		w: w,
		st: styles{
			success: r.NewStyle().Foreground(t.Success).Bold(true),
			err:     r.NewStyle().Foreground(t.Error).Bold(true),
			info:    r.NewStyle().Foreground(t.Info).Bold(true),
			warning: r.NewStyle().Foreground(t.Warning).Bold(true),
			key:     r.NewStyle().Bold(true),
			title:   r.NewStyle().Foreground(t.Primary).Bold(true),
			panel: r.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(t.Border).
				Padding(0, 1),
			muted: r.NewStyle().Foreground(t.FgMuted),
		},
	}
}

func (c *Console) line(marker lipgloss.Style, symbol, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "%s %s\n", marker.Render(symbol), msg)
}

// Success implements Sink.
func (c *Console) Success(msg string) { c.line(c.st.success, "✓", msg) }

// Error implements Sink.
func (c *Console) Error(msg string) { c.line(c.st.err, "✗", msg) }

// Info implements Sink.
func (c *Console) Info(msg string) { c.line(c.st.info, "ℹ", msg) }

// Warning implements Sink.
func (c *Console) Warning(msg string) { c.line(c.st.warning, "⚠", msg) }

// Print implements Sink.
func (c *Console) Print(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, msg)
}

// Panel implements Sink.
func (c *Console) Panel(title string, rows []Row) {
	lines := make([]string, 0, len(rows)+1)
	if title != "" {
		lines = append(lines, c.st.title.Render(title))
	}
	for _, row := range rows {
		lines = append(lines, c.st.key.Render(row.Key+":")+" "+row.Value)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, c.st.panel.Render(strings.Join(lines, "\n")))
}

// Muted renders text in the dimmed style.
func (c *Console) Muted(text string) string {
	return c.st.muted.Render(text)
}

// Truncate shortens s to at most width terminal cells, ending with "…".
func Truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return ansi.Truncate(s, width, "…")
}

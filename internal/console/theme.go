package console

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// Theme is the color palette used by the console.
type Theme struct {
	Primary lipgloss.Color // banner accent, panel titles
	FgMuted lipgloss.Color // secondary text
	Border  lipgloss.Color // panel borders

	Success lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color
	Warning lipgloss.Color

	// BannerFrom and BannerTo are the ends of the banner gradient.
	BannerFrom lipgloss.Color
	BannerTo   lipgloss.Color
}

// DefaultTheme is the palette used by New.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#5fd7ff"),
	FgMuted: lipgloss.Color("#808080"),
	Border:  lipgloss.Color("#5fafd7"),

	Success: lipgloss.Color("#5fd75f"),
	Error:   lipgloss.Color("#ff5f5f"),
	Info:    lipgloss.Color("#5f87ff"),
	Warning: lipgloss.Color("#ffd75f"),

	BannerFrom: lipgloss.Color("#fa2d48"),
	BannerTo:   lipgloss.Color("#5fd75f"),
}

// Banner writes the application banner: a gradient title over a dimmed
// version line, inside a rounded border.
func (c *Console) Banner(title, version string) {
	r := lipgloss.NewRenderer(c.w)
	text := applyGradient(r, title, DefaultTheme.BannerFrom, DefaultTheme.BannerTo)
	if version != "" {
		text += "\n" + c.Muted(version)
	}
	box := r.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(DefaultTheme.Primary).
		Padding(0, 2).
		Align(lipgloss.Center).
		Render(text)
	c.Print(box)
}

// applyGradient renders bold text with a horizontal color gradient.
func applyGradient(r *lipgloss.Renderer, text string, from, to lipgloss.Color) string {
	// Split into grapheme clusters for proper unicode handling
	var clusters []string
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		clusters = append(clusters, gr.Str())
	}

	switch len(clusters) {
	case 0:
		return ""
	case 1:
		return r.NewStyle().Foreground(from).Bold(true).Render(text)
	}

	colors := blendColors(len(clusters), from, to)

	var b strings.Builder
	for i, cluster := range clusters {
		style := r.NewStyle().Foreground(lipgloss.Color(colorToHex(colors[i]))).Bold(true)
		b.WriteString(style.Render(cluster))
	}
	return b.String()
}

// blendColors returns size colors blended between from and to in HCL space.
func blendColors(size int, from, to lipgloss.Color) []color.Color {
	c1, _ := colorful.MakeColor(lipglossToColor(from))
	c2, _ := colorful.MakeColor(lipglossToColor(to))

	colors := make([]color.Color, size)
	for i := range size {
		t := float64(i) / float64(size-1)
		colors[i] = c1.BlendHcl(c2, t)
	}
	return colors
}

func lipglossToColor(c lipgloss.Color) color.Color {
	col, err := colorful.Hex(string(c))
	if err != nil {
		return color.RGBA{R: 128, G: 128, B: 128, A: 255}
	}
	return col
}

func colorToHex(c color.Color) string {
	if cf, ok := c.(colorful.Color); ok {
		return cf.Clamped().Hex()
	}
	r, g, b, _ := c.RGBA()
	return colorful.Color{
		R: float64(r) / 65535.0,
		G: float64(g) / 65535.0,
		B: float64(b) / 65535.0,
	}.Hex()
}

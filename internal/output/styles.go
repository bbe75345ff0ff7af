package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary = lipgloss.Color("#7D56F4")
	colorSuccess = lipgloss.Color("#04B575")
	colorError   = lipgloss.Color("#FF5F87")
	colorWarning = lipgloss.Color("#FFAF00")
	colorAccent  = lipgloss.Color("#00AFD7")
	colorSubtle  = lipgloss.Color("#767676")
)

// palette holds styles bound to one writer's renderer, so colors are dropped
// automatically when the writer is not a terminal.
type palette struct {
	title   lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	subtle  lipgloss.Style
	border  lipgloss.Style
	success lipgloss.Style
	warn    lipgloss.Style
	err     lipgloss.Style
	pctl    lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	return palette{
		title:   r.NewStyle().Foreground(colorPrimary).Bold(true),
		label:   r.NewStyle().Foreground(colorAccent),
		value:   r.NewStyle(),
		subtle:  r.NewStyle().Foreground(colorSubtle),
		border:  r.NewStyle().Foreground(colorSubtle),
		success: r.NewStyle().Foreground(colorSuccess).Bold(true),
		warn:    r.NewStyle().Foreground(colorWarning).Bold(true),
		err:     r.NewStyle().Foreground(colorError).Bold(true),
		pctl:    r.NewStyle().Foreground(colorWarning),
	}
}

// rate picks a style for a success percentage.
func (p palette) rate(pct float64) lipgloss.Style {
	switch {
	case pct >= 99:
		return p.success
	case pct >= 95:
		return p.warn
	default:
		return p.err
	}
}

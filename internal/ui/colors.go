package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette("#1DB954", "#1DB954", "#EF4444", "#FFA500", "#6B7280")

var _ Painter = (*Palette)(nil)

// interface Painter defines coloring text with [lipgloss] styles
type Painter interface {
	On(string, lipgloss.Color) string // Sets background color
	As(string, lipgloss.Color) string // Sets foreground color
}

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title  lipgloss.Style
	ok     lipgloss.Style
	err    lipgloss.Style
	warn   lipgloss.Style
	help   lipgloss.Style
	shine  lipgloss.Style
	rank   lipgloss.Style
	muted  lipgloss.Style
	roast  lipgloss.Style
	card   lipgloss.Style
	scream lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title:  NewBold(t).MarginBottom(1),
		ok:     NewBold(s),
		err:    NewBold(e),
		warn:   NewStyle(w),
		help:   NewEm(h),
		shine:  NewBold("#FFFFFF"),
		rank:   NewBold(h).Width(4),
		muted:  NewStyle(h),
		roast:  NewBold(e).MarginBottom(1),
		card:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(e)).Padding(1, 2),
		scream: NewBold(e).Blink(true),
	}
}

// On renders s on a background color.
func (p *Palette) On(s string, c lipgloss.Color) string {
	return lipgloss.NewStyle().Background(c).Render(s)
}

// As renders s in a foreground color.
func (p *Palette) As(s string, c lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(c).Render(s)
}

// Shine renders text in the title color with a three character highlight starting at pos.
func (p *Palette) Shine(text string, pos int) string {
	const width = 3
	var b strings.Builder
	for i, r := range []rune(text) {
		if i >= pos && i < pos+width {
			b.WriteString(p.shine.Render(string(r)))
		} else {
			b.WriteString(p.ok.Render(string(r)))
		}
	}
	return b.String()
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

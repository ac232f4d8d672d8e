// Package picker implements the quick-search selection list used by the
// `bmtidy <query>` flow.
package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/bmtidy/internal/model"
	"github.com/nikbrunner/bmtidy/internal/search"
	"github.com/nikbrunner/bmtidy/internal/tui/layout"
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Cancel key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "cancel"),
		),
	}
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"})

	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"})

	itemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#505050", Dark: "#A0A0A0"})

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#888888", Dark: "#606060"})
)

// Picker is a list selection model over fuzzy search results.
type Picker struct {
	results []search.Result
	query   string
	keys    keyMap
	textCfg layout.TextConfig

	cursor    int
	selected  bool
	cancelled bool
	width     int
	height    int
}

// New creates a Picker over the given search results.
func New(results []search.Result, query string) Picker {
	return Picker{
		results: results,
		query:   query,
		keys:    defaultKeyMap(),
		textCfg: layout.DefaultConfig().Text,
		width:   80,
		height:  24,
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Cancel):
			p.cancelled = true
			return p, tea.Quit

		case key.Matches(msg, p.keys.Select):
			p.selected = true
			return p, tea.Quit

		case key.Matches(msg, p.keys.Down):
			if p.cursor < len(p.results)-1 {
				p.cursor++
			}

		case key.Matches(msg, p.keys.Up):
			if p.cursor > 0 {
				p.cursor--
			}
		}
	}

	return p, nil
}

// viewportHeight is the number of result rows that fit on screen,
// leaving room for the header and footer.
func (p Picker) viewportHeight() int {
	h := p.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Search: %s (%d results)", p.query, len(p.results))))
	b.WriteString("\n\n")

	height := p.viewportHeight()
	offset := layout.CalculateViewportOffset(p.cursor, len(p.results), height)
	end := offset + height
	if end > len(p.results) {
		end = len(p.results)
	}

	for i := offset; i < end; i++ {
		b.WriteString(p.renderResult(i))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(detailStyle.Render("j/k move · enter open · q cancel"))

	return b.String()
}

func (p Picker) renderResult(i int) string {
	rec := p.results[i].Record

	line := rec.Title + "  " + detailStyle.Render(rec.URL)
	if len(rec.Path) > 0 {
		line += detailStyle.Render("  " + model.PathString(rec.Path))
	}
	line = layout.TruncateStyled(line, p.width-2, p.textCfg)

	if i == p.cursor {
		return cursorStyle.Render("> ") + line
	}
	return "  " + itemStyle.Render(line)
}

// SelectedRecord returns the chosen record, or nil if nothing was chosen.
func (p Picker) SelectedRecord() *model.Record {
	if p.cancelled || !p.selected {
		return nil
	}
	if p.cursor < len(p.results) {
		return p.results[p.cursor].Record
	}
	return nil
}

// Cancelled reports whether the user backed out without choosing.
func (p Picker) Cancelled() bool {
	return p.cancelled
}

package decks

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/hanzo/internal/deckmastery"
	"github.com/abhisek/hanzo/internal/engine"
	"github.com/abhisek/hanzo/internal/router"
	"github.com/abhisek/hanzo/internal/screen"
	"github.com/abhisek/hanzo/internal/screens/badges"
	"github.com/abhisek/hanzo/internal/screens/history"
	"github.com/abhisek/hanzo/internal/store"
	"github.com/abhisek/hanzo/internal/ui/components"
	"github.com/abhisek/hanzo/internal/ui/layout"
	"github.com/abhisek/hanzo/internal/ui/theme"
)

type rowKind int

const (
	rowCategory rowKind = iota
	rowDeck
)

type row struct {
	kind     rowKind
	category string
	deck     *engine.DeckStatus
}

type decksLoadedMsg struct {
	Decks []engine.DeckStatus
	Err   error
}

// DecksScreen lists every deck grouped by category. It is the root screen.
type DecksScreen struct {
	engine       *engine.Engine
	events       store.EventRepo
	rows         []row
	cursor       int
	scrollOffset int
	loaded       bool
	errMsg       string
}

var _ screen.Screen = (*DecksScreen)(nil)
var _ screen.KeyHintProvider = (*DecksScreen)(nil)
var _ screen.Resumer = (*DecksScreen)(nil)

// New creates the deck picker. events may be nil, which hides history.
func New(e *engine.Engine, events store.EventRepo) *DecksScreen {
	return &DecksScreen{engine: e, events: events}
}

func (s *DecksScreen) Init() tea.Cmd {
	return s.load
}

// Resume reloads deck progress after a session or exam.
func (s *DecksScreen) Resume() tea.Cmd {
	return s.load
}

func (s *DecksScreen) load() tea.Msg {
	ds, err := s.engine.Decks()
	return decksLoadedMsg{Decks: ds, Err: err}
}

func (s *DecksScreen) Title() string {
	return "Decks"
}

func (s *DecksScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Tab", Description: "Category"},
		{Key: "Enter", Description: "Open"},
		{Key: "B", Description: "Badges"},
	}
	if s.events != nil {
		hints = append(hints, layout.KeyHint{Key: "H", Description: "History"})
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

func (s *DecksScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case decksLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.setRows(msg.Decks)
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			s.moveCursor(-1)
		case "down", "j":
			s.moveCursor(1)
		case "tab":
			s.nextCategory()
		case "enter":
			return s, s.openDeck()
		case "b":
			return s, func() tea.Msg { return router.PushScreenMsg{Screen: badges.New(s.engine)} }
		case "h":
			if s.events != nil {
				return s, func() tea.Msg { return router.PushScreenMsg{Screen: history.New(s.events)} }
			}
		}
	}
	return s, nil
}

// setRows rebuilds the row list, keeping the cursor on the same deck.
func (s *DecksScreen) setRows(ds []engine.DeckStatus) {
	var selected string
	if s.cursor < len(s.rows) && s.rows[s.cursor].deck != nil {
		selected = s.rows[s.cursor].deck.Deck.ID
	}

	byCategory := make(map[string][]int)
	var order []string
	for i, d := range ds {
		c := d.Deck.Category
		if _, ok := byCategory[c]; !ok {
			order = append(order, c)
		}
		byCategory[c] = append(byCategory[c], i)
	}

	s.rows = s.rows[:0]
	s.cursor = -1
	for _, c := range order {
		s.rows = append(s.rows, row{kind: rowCategory, category: c})
		for _, i := range byCategory[c] {
			d := ds[i]
			if d.Deck.ID == selected || (s.cursor < 0 && selected == "") {
				s.cursor = len(s.rows)
			}
			s.rows = append(s.rows, row{kind: rowDeck, category: c, deck: &d})
		}
	}
	if s.cursor < 0 {
		s.cursor = 0
		s.moveCursor(1)
	}
}

func (s *DecksScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading decks...")
	}
	if len(s.rows) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  The catalog has no decks. Import one with `hanzo import`.")
	}

	// Category headers take two lines; keep a margin so the last row shows.
	s.adjustScroll(height / 2)

	var lines []string
	used := 0
	for i, r := range s.rows {
		if i < s.scrollOffset {
			continue
		}
		var line string
		switch r.kind {
		case rowCategory:
			line = renderCategoryHeader(r.category, s.engine.IsBadgeEarned(r.category), width)
		case rowDeck:
			line = renderDeckRow(*r.deck, i == s.cursor, width)
		}
		used += lipgloss.Height(line)
		if used > height && len(lines) > 0 {
			break
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// moveCursor moves the cursor by delta, skipping category headers.
func (s *DecksScreen) moveCursor(delta int) {
	next := s.cursor + delta
	for next >= 0 && next < len(s.rows) {
		if s.rows[next].kind == rowDeck {
			s.cursor = next
			return
		}
		next += delta
	}
}

// nextCategory jumps to the first deck of the next category, wrapping
// around to the top.
func (s *DecksScreen) nextCategory() {
	if len(s.rows) == 0 {
		return
	}
	current := s.rows[s.cursor].category
	for i := 1; i < len(s.rows); i++ {
		j := (s.cursor + i) % len(s.rows)
		if s.rows[j].kind == rowDeck && s.rows[j].category != current {
			s.cursor = j
			return
		}
	}
}

func (s *DecksScreen) adjustScroll(height int) {
	if height <= 0 {
		return
	}
	headerRow := s.cursor
	for headerRow > 0 && s.rows[headerRow-1].kind == rowCategory {
		headerRow--
	}
	if headerRow < s.scrollOffset {
		s.scrollOffset = headerRow
	}
	if s.cursor >= s.scrollOffset+height {
		s.scrollOffset = s.cursor - height + 1
	}
}

func (s *DecksScreen) openDeck() tea.Cmd {
	if s.cursor >= len(s.rows) {
		return nil
	}
	r := s.rows[s.cursor]
	if r.kind != rowDeck || r.deck == nil {
		return nil
	}
	detail := newDeckDetail(s.engine, r.deck.Deck.ID)
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: detail}
	}
}

// stageIcon returns the marker for a deck's lifecycle stage.
func stageIcon(st deckmastery.Stage) string {
	switch st {
	case deckmastery.InProgress:
		return "◐"
	case deckmastery.AllWordsMastered:
		return "◉"
	case deckmastery.ExamPassed:
		return "★"
	default:
		return "○"
	}
}

func renderCategoryHeader(category string, earned bool, width int) string {
	name := strings.ToUpper(category)
	if earned {
		name += "  ★"
	}
	return lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Width(width).
		Padding(1, 0, 0, 2).
		Render(name)
}

func renderDeckRow(d engine.DeckStatus, selected bool, width int) string {
	cursor := "  "
	nameStyle := lipgloss.NewStyle().Foreground(theme.Text)
	switch {
	case selected:
		cursor = "▸ "
		nameStyle = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	case d.Stage == deckmastery.ExamPassed:
		nameStyle = lipgloss.NewStyle().Foreground(theme.Accent)
	case d.Stage == deckmastery.Unseen:
		nameStyle = lipgloss.NewStyle().Foreground(theme.TextDim)
	}

	nameWidth := 22
	name := layout.Truncate(d.Deck.Name, nameWidth)

	barWidth := width - nameWidth - 24
	bar := components.NewCountBar("", d.Mastered, d.Words, max(barWidth, 12))
	bar.Fill = theme.MasteryColor(d.AverageMastery)

	label := lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf("%14s", d.Stage))
	return fmt.Sprintf("  %s%s %s  %s %s",
		cursor,
		stageIcon(d.Stage),
		nameStyle.Render(fmt.Sprintf("%-*s", nameWidth, name)),
		bar.View(),
		label,
	)
}

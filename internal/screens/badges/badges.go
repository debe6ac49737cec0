package badges

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/hanzo/internal/engine"
	"github.com/abhisek/hanzo/internal/router"
	"github.com/abhisek/hanzo/internal/screen"
	"github.com/abhisek/hanzo/internal/ui/components"
	"github.com/abhisek/hanzo/internal/ui/layout"
	"github.com/abhisek/hanzo/internal/ui/theme"
)

// categoryRow is one topic badge and the decks it requires.
type categoryRow struct {
	Category  string
	Earned    bool
	AwardedAt string
	Mastered  int
	Decks     int
}

type badgesLoadedMsg struct {
	Rows []categoryRow
}

// BadgesScreen shows every category's topic badge.
type BadgesScreen struct {
	engine       *engine.Engine
	rows         []categoryRow
	scrollOffset int
	loaded       bool
}

var _ screen.Screen = (*BadgesScreen)(nil)
var _ screen.KeyHintProvider = (*BadgesScreen)(nil)

// New creates a new BadgesScreen.
func New(e *engine.Engine) *BadgesScreen {
	return &BadgesScreen{engine: e}
}

func (s *BadgesScreen) Init() tea.Cmd {
	e := s.engine
	return func() tea.Msg {
		earned := make(map[string]string)
		for _, b := range e.Badges() {
			if b.AwardedAt != nil {
				earned[b.Category] = b.AwardedAt.Local().Format("Jan 02, 2006")
			} else {
				earned[b.Category] = ""
			}
		}

		cat := e.Catalog()
		var rows []categoryRow
		for _, c := range cat.Categories() {
			decks := cat.DecksInCategory(c)
			r := categoryRow{Category: c, Decks: len(decks)}
			r.AwardedAt, r.Earned = earned[c]
			for _, d := range decks {
				if e.IsDeckMastered(d.ID) {
					r.Mastered++
				}
			}
			rows = append(rows, r)
		}
		return badgesLoadedMsg{Rows: rows}
	}
}

func (s *BadgesScreen) Title() string {
	return "Badges"
}

func (s *BadgesScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *BadgesScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case badgesLoadedMsg:
		s.rows = msg.Rows
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.scrollOffset > 0 {
				s.scrollOffset--
			}
		case "down", "j":
			if s.scrollOffset < len(s.rows)-1 {
				s.scrollOffset++
			}
		}
	}
	return s, nil
}

func (s *BadgesScreen) View(width, height int) string {
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading badges...")
	}

	earned := 0
	for _, r := range s.rows {
		if r.Earned {
			earned++
		}
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.Accent).Bold(true).
		Render(fmt.Sprintf("\n★ %d of %d badges earned", earned, len(s.rows))))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
		Render("Pass the exam of every deck in a category to earn its badge."))
	b.WriteString("\n\n")

	barWidth := min(width-8, 60)
	used := lipgloss.Height(b.String())
	for i := s.scrollOffset; i < len(s.rows) && used+3 <= height; i++ {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, renderRow(s.rows[i], barWidth)))
		b.WriteString("\n\n")
		used += 3
	}
	return b.String()
}

func renderRow(r categoryRow, width int) string {
	icon, style := "☆", lipgloss.NewStyle().Foreground(theme.TextDim)
	detail := fmt.Sprintf("%d of %d decks mastered", r.Mastered, r.Decks)
	if r.Earned {
		icon, style = "★", lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
		if r.AwardedAt != "" {
			detail = "earned " + r.AwardedAt
		}
	}

	title := style.Render(fmt.Sprintf("%s %s", icon, r.Category))
	title += strings.Repeat(" ", max(width-lipgloss.Width(title)-lipgloss.Width(detail), 1))
	title += lipgloss.NewStyle().Foreground(theme.TextDim).Render(detail)

	bar := components.NewCountBar("", r.Mastered, r.Decks, width)
	if r.Earned {
		bar.Fill = theme.Accent
	}
	return title + "\n" + bar.View()
}

package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/hanzo/internal/router"
	"github.com/abhisek/hanzo/internal/screen"
	"github.com/abhisek/hanzo/internal/store"
	"github.com/abhisek/hanzo/internal/ui/layout"
	"github.com/abhisek/hanzo/internal/ui/theme"
)

const pageSize = 50

type historyLoadedMsg struct {
	Sessions   []store.SessionSummaryRecord
	Milestones []store.MilestoneEventRecord
	Err        error
}

// HistoryScreen lists past sessions and progression milestones.
type HistoryScreen struct {
	eventRepo      store.EventRepo
	sessions       []store.SessionSummaryRecord
	milestones     []store.MilestoneEventRecord
	showMilestones bool
	selected       int
	loaded         bool
	errMsg         string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(eventRepo store.EventRepo) *HistoryScreen {
	return &HistoryScreen{eventRepo: eventRepo}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		sessions, err := s.eventRepo.QuerySessionSummaries(ctx, store.QueryOpts{Limit: pageSize})
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		milestones, err := s.eventRepo.QueryMilestones(ctx, store.QueryOpts{Limit: pageSize})
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		return historyLoadedMsg{Sessions: sessions, Milestones: milestones}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	other := "Milestones"
	if s.showMilestones {
		other = "Sessions"
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Tab", Description: other},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
			s.milestones = msg.Milestones
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "tab":
			s.showMilestones = !s.showMilestones
			s.selected = 0
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < s.rowCount()-1 {
				s.selected++
			}
		}
	}
	return s, nil
}

func (s *HistoryScreen) rowCount() int {
	if s.showMilestones {
		return len(s.milestones)
	}
	return len(s.sessions)
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}

	var lines []string
	if s.showMilestones {
		lines = s.milestoneLines()
	} else {
		lines = s.sessionLines()
	}
	if len(lines) == 0 {
		empty := "No sessions yet. Start practicing!"
		if s.showMilestones {
			empty = "No milestones yet. Pass a deck exam to earn one."
		}
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  " + empty)
	}

	// Keep the selection in view.
	room := max(height-2, 1)
	start := 0
	if s.selected >= room {
		start = s.selected - room + 1
	}

	var b strings.Builder
	b.WriteString("\n")
	for i := start; i < len(lines) && i < start+room; i++ {
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "> "
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(prefix+lines[i])))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *HistoryScreen) sessionLines() []string {
	lines := make([]string, 0, len(s.sessions))
	for _, sess := range s.sessions {
		var accuracy float64
		if sess.ItemsAnswered > 0 {
			accuracy = float64(sess.CorrectAnswers) / float64(sess.ItemsAnswered) * 100
		}
		status := "done"
		if sess.Action == store.SessionAbandoned {
			status = "left early"
		}
		lines = append(lines, fmt.Sprintf("%s  %-8s %-16s %2d/%-2d  %3.0f%%  %s",
			sess.Timestamp.Format("Jan 02 15:04"), sess.Kind, sess.DeckID,
			sess.ItemsAnswered, sess.ItemsPlanned, accuracy, status))
	}
	return lines
}

func (s *HistoryScreen) milestoneLines() []string {
	lines := make([]string, 0, len(s.milestones))
	for _, m := range s.milestones {
		lines = append(lines, fmt.Sprintf("%s  %s", m.Timestamp.Format("Jan 02 15:04"), describeMilestone(m.MilestoneEventData)))
	}
	return lines
}

func describeMilestone(m store.MilestoneEventData) string {
	switch m.Kind {
	case store.MilestoneDeckMastered:
		return fmt.Sprintf("★ Deck %s mastered", m.Subject)
	case store.MilestoneBadgeAwarded:
		return fmt.Sprintf("★ Badge earned for %s", m.Subject)
	case store.MilestoneExamFailed:
		return fmt.Sprintf("✗ Exam for %s not passed (%s)", m.Subject, m.Detail)
	case store.MilestoneDeckReset:
		return fmt.Sprintf("↺ Exam for %s reset", m.Subject)
	default:
		return fmt.Sprintf("%s %s", m.Kind, m.Subject)
	}
}

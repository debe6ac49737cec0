package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/hanzo/internal/engine"
	"github.com/abhisek/hanzo/internal/router"
	"github.com/abhisek/hanzo/internal/screen"
	"github.com/abhisek/hanzo/internal/session"
	"github.com/abhisek/hanzo/internal/ui/layout"
	"github.com/abhisek/hanzo/internal/ui/theme"
)

// SummaryScreen displays the result of a finished or abandoned run.
type SummaryScreen struct {
	summary *session.Summary
	exam    *engine.ExamResult
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen. exam is nil for practice runs and for
// abandoned exams.
func New(summary *session.Summary, exam *engine.ExamResult) *SummaryScreen {
	return &SummaryScreen{summary: summary, exam: exam}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	if s.summary != nil && s.summary.Kind == session.KindExam {
		return "Exam Result"
	}
	return "Session Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	if sum == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(centered(width, theme.Title, s.heading()))
	b.WriteString("\n\n")

	mins := int(sum.Duration.Minutes())
	secs := int(sum.Duration.Seconds()) % 60
	b.WriteString(centered(width, theme.Subtitle, fmt.Sprintf("Duration: %d:%02d", mins, secs)))
	b.WriteString("\n\n")

	stats := fmt.Sprintf("Answered: %d/%d        Correct: %d        Accuracy: %.0f%%",
		sum.Answered, sum.Planned, sum.Correct, sum.Accuracy*100)
	b.WriteString(centered(width, theme.Body, stats))
	b.WriteString("\n\n")

	if s.exam != nil {
		b.WriteString(s.renderExam(width))
		b.WriteString("\n")
	}

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", min(width-8, 60)))

	if len(sum.ByType) > 0 {
		b.WriteString(centered(width, theme.Hint, "Question types"))
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
		b.WriteString("\n")
		for _, tr := range sum.ByType {
			line := fmt.Sprintf("%-16s %d/%d correct", tr.Type, tr.Correct, tr.Attempted)
			b.WriteString(centered(width, theme.Body, line))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(sum.MasteredWords) > 0 && sum.Kind != session.KindExam {
		b.WriteString(centered(width, theme.Hint, "Mastered this session"))
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
		b.WriteString("\n")
		words := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).
			Render(strings.Join(sum.MasteredWords, "  "))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, words))
		b.WriteString("\n")
	}

	return b.String()
}

func (s *SummaryScreen) heading() string {
	switch {
	case !s.summary.Completed && s.summary.Kind == session.KindExam:
		return "Exam abandoned"
	case !s.summary.Completed:
		return "Session ended early"
	case s.exam != nil && s.exam.Passed:
		return "Exam passed!"
	case s.exam != nil:
		return "Exam not passed"
	default:
		return "Session complete!"
	}
}

func (s *SummaryScreen) renderExam(width int) string {
	ex := s.exam
	var b strings.Builder
	if ex.Passed {
		b.WriteString(centered(width, theme.Correct,
			fmt.Sprintf("%d of %d correct. The deck is mastered.", ex.Correct, ex.Total)))
	} else {
		b.WriteString(centered(width, theme.Incorrect,
			fmt.Sprintf("%d of %d correct. Keep practicing and try again.", ex.Correct, ex.Total)))
	}
	b.WriteString("\n")
	if ex.BadgeAwarded {
		b.WriteString(centered(width, lipgloss.NewStyle().Foreground(theme.Accent).Bold(true),
			fmt.Sprintf("★ Badge earned: %s", ex.Category)))
		b.WriteString("\n")
	}
	return b.String()
}

func centered(width int, style lipgloss.Style, text string) string {
	return style.Width(width).Align(lipgloss.Center).Render(text)
}

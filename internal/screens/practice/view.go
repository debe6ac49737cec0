package practice

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/hanzo/internal/journey"
	"github.com/abhisek/hanzo/internal/mastery"
	"github.com/abhisek/hanzo/internal/ui/theme"
)

func (s *PracticeScreen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return renderError(width, s.errMsg)
	case s.run == nil:
		return renderCentered(width, theme.TextDim, "\n\n\n  Preparing your session...")
	case s.run.Session.Empty():
		return renderCentered(width, theme.TextDim,
			"\n\n\n  This deck has no words to practice yet.\n\n  Press any key to go back.")
	case s.showingQuitConfirm:
		return renderQuitConfirm(width, s.exam)
	case s.question == nil:
		return renderCentered(width, theme.TextDim, "\n\n  Preparing question...")
	}

	var b strings.Builder
	b.WriteString(s.renderInfoLine(width))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	q := s.question
	b.WriteString(renderCentered(width, theme.TextDim, instruction(q.Type)))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Hanzi.Render(q.Prompt)))
	b.WriteString("\n\n")

	switch q.Type {
	case journey.Flashcard:
		if s.revealed {
			b.WriteString(renderCentered(width, theme.Text, q.Reveal))
		} else {
			b.WriteString(renderCentered(width, theme.TextDim, "Press Space to turn the card"))
		}
		if s.revealed && !s.showingFeedback {
			b.WriteString("\n\n")
			b.WriteString(renderCentered(width, theme.Primary, "Did you know it?  [Y] yes   [N] no"))
		}
	case journey.Construction:
		tiles := lipgloss.NewStyle().Foreground(theme.Secondary).Render(strings.Join(q.Tiles, "  "))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, tiles))
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, "Answer: "+s.input.View()))
	default:
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.choices.View()))
	}

	if s.showingFeedback {
		b.WriteString("\n\n")
		b.WriteString(s.renderFeedback(width))
	}
	return b.String()
}

func instruction(qt journey.QuestionType) string {
	switch qt {
	case journey.Flashcard:
		return "Do you know this word?"
	case journey.Pinyin:
		return "How is this read?"
	case journey.Construction:
		return "Build the word from the characters"
	default:
		return "What does this mean?"
	}
}

func (s *PracticeScreen) renderInfoLine(width int) string {
	answered, total := s.run.Progress()
	name := s.deckID
	if d, err := s.engine.Catalog().Deck(s.deckID); err == nil {
		name = d.Name
	}
	label := "Deck"
	if s.exam {
		label = "Exam"
	}
	correct := 0
	for _, a := range s.run.Answers() {
		if a.Correct {
			correct++
		}
	}

	left := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
		Render(fmt.Sprintf("  %s: %s", label, name))
	right := lipgloss.NewStyle().Foreground(theme.TextDim).
		Render(fmt.Sprintf("Q %d/%d  %s %d",
			min(answered+1, total), total,
			lipgloss.NewStyle().Foreground(theme.Success).Render("✓"),
			correct))

	line := left
	if pad := width - lipgloss.Width(left) - lipgloss.Width(right) - 4; pad > 0 {
		line += strings.Repeat(" ", pad) + right
	}
	return line
}

func (s *PracticeScreen) renderFeedback(width int) string {
	a := s.last
	if a == nil {
		return ""
	}

	var b strings.Builder
	if a.Correct {
		b.WriteString(lipgloss.NewStyle().Width(width).Align(lipgloss.Center).
			Foreground(theme.Success).Bold(true).Render("Correct!"))
	} else {
		b.WriteString(lipgloss.NewStyle().Width(width).Align(lipgloss.Center).
			Foreground(theme.Error).Bold(true).Render("Not quite"))
		if s.question.Type != journey.Flashcard {
			b.WriteString("\n")
			b.WriteString(renderCentered(width, theme.TextDim, "Answer: "+s.question.Answer))
		}
	}
	b.WriteString("\n")
	if s.question.Type != journey.Flashcard {
		b.WriteString(renderCentered(width, theme.Text, s.question.Reveal))
		b.WriteString("\n")
	}

	if !s.exam {
		b.WriteString(renderCentered(width, theme.MasteryColor(a.Mastery),
			fmt.Sprintf("Mastery %3.0f%%  (%+.2f)", a.Mastery*100, a.Delta)))
		b.WriteString("\n")
		if a.Mastery >= mastery.MasteredThreshold && a.Delta > 0 {
			b.WriteString(renderCentered(width, theme.Accent, "Word mastered!"))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(renderCentered(width, theme.TextDim, "Press any key to continue..."))
	return b.String()
}

func renderQuitConfirm(width int, exam bool) string {
	title, note := "End session early?", "Your answers so far are kept."
	if exam {
		title, note = "Leave the exam?", "An unfinished exam does not count."
	}

	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(lipgloss.NewStyle().Width(width).Align(lipgloss.Center).
		Foreground(theme.Text).Bold(true).Render(title))
	b.WriteString("\n")
	b.WriteString(renderCentered(width, theme.TextDim, note))
	b.WriteString("\n\n")
	b.WriteString(renderCentered(width, theme.Success, "[Y] Yes, end it"))
	b.WriteString("\n")
	b.WriteString(renderCentered(width, theme.Primary, "[N] No, keep going"))
	return b.String()
}

func renderCentered(width int, fg color.Color, text string) string {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Foreground(fg).Render(text)
}

func renderError(width int, errMsg string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\n  Error: %s\n\n  Press any key to go back.", errMsg))
}

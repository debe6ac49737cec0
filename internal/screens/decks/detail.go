package decks

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/hanzo/internal/engine"
	"github.com/abhisek/hanzo/internal/router"
	"github.com/abhisek/hanzo/internal/screen"
	"github.com/abhisek/hanzo/internal/screens/practice"
	"github.com/abhisek/hanzo/internal/ui/components"
	"github.com/abhisek/hanzo/internal/ui/layout"
	"github.com/abhisek/hanzo/internal/ui/theme"
)

type deckLoadedMsg struct {
	Status engine.DeckStatus
	Words  []engine.WordStatus
	Err    error
}

type examResetMsg struct {
	Err error
}

// DeckDetailScreen shows one deck's words and its actions.
type DeckDetailScreen struct {
	engine *engine.Engine
	deckID string
	status engine.DeckStatus
	words  []engine.WordStatus
	menu   components.Menu

	// wordFocus moves the cursor into the word list for bookmarking.
	wordFocus  bool
	wordCursor int
	loaded     bool
	errMsg     string
}

var _ screen.Screen = (*DeckDetailScreen)(nil)
var _ screen.KeyHintProvider = (*DeckDetailScreen)(nil)
var _ screen.Resumer = (*DeckDetailScreen)(nil)

func newDeckDetail(e *engine.Engine, deckID string) *DeckDetailScreen {
	return &DeckDetailScreen{engine: e, deckID: deckID}
}

func (d *DeckDetailScreen) Init() tea.Cmd   { return d.load }
func (d *DeckDetailScreen) Resume() tea.Cmd { return d.load }

func (d *DeckDetailScreen) load() tea.Msg {
	st, err := d.engine.DeckStatus(d.deckID)
	if err != nil {
		return deckLoadedMsg{Err: err}
	}
	words, err := d.engine.Words(d.deckID)
	return deckLoadedMsg{Status: st, Words: words, Err: err}
}

func (d *DeckDetailScreen) Title() string {
	if d.status.Deck.Name != "" {
		return d.status.Deck.Name
	}
	return d.deckID
}

func (d *DeckDetailScreen) KeyHints() []layout.KeyHint {
	if d.wordFocus {
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Word"},
			{Key: "*", Description: "Bookmark"},
			{Key: "Tab", Description: "Actions"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Tab", Description: "Words"},
		{Key: "Esc", Description: "Back"},
	}
}

func (d *DeckDetailScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case deckLoadedMsg:
		d.loaded = true
		if msg.Err != nil {
			d.errMsg = msg.Err.Error()
			return d, nil
		}
		d.status = msg.Status
		d.words = msg.Words
		d.wordCursor = min(d.wordCursor, max(len(d.words)-1, 0))
		d.menu = d.buildMenu()
		return d, nil

	case examResetMsg:
		if msg.Err != nil {
			d.errMsg = msg.Err.Error()
			return d, nil
		}
		return d, d.load

	case tea.KeyMsg:
		if msg.String() == "tab" && len(d.words) > 0 {
			d.wordFocus = !d.wordFocus
			return d, nil
		}
		if d.wordFocus {
			return d, d.handleWordKey(msg.String())
		}
	}

	var cmd tea.Cmd
	d.menu, cmd = d.menu.Update(msg)
	return d, cmd
}

func (d *DeckDetailScreen) handleWordKey(key string) tea.Cmd {
	switch key {
	case "up", "k":
		if d.wordCursor > 0 {
			d.wordCursor--
		}
	case "down", "j":
		if d.wordCursor < len(d.words)-1 {
			d.wordCursor++
		}
	case "*", "space":
		w := &d.words[d.wordCursor]
		marked, err := d.engine.ToggleBookmark(context.Background(), w.Word.ID)
		if err != nil {
			d.errMsg = err.Error()
			return nil
		}
		w.Bookmarked = marked
	}
	return nil
}

func (d *DeckDetailScreen) buildMenu() components.Menu {
	e, deckID := d.engine, d.deckID
	items := []components.MenuItem{
		{
			Label:    "Practice",
			Disabled: d.status.Words == 0,
			Hint:     "deck is empty",
			Action: func() tea.Cmd {
				return func() tea.Msg { return router.PushScreenMsg{Screen: practice.New(e, deckID)} }
			},
		},
		{
			Label:    "Take exam",
			Disabled: !d.status.ExamUnlocked,
			Hint:     "master every word first",
			Action: func() tea.Cmd {
				return func() tea.Msg { return router.PushScreenMsg{Screen: practice.NewExam(e, deckID)} }
			},
		},
	}
	if d.status.ExamPassed {
		items = append(items, components.MenuItem{
			Label: "Reset exam",
			Action: func() tea.Cmd {
				return func() tea.Msg {
					return examResetMsg{Err: e.ResetDeckExam(context.Background(), deckID)}
				}
			},
		})
	}
	return components.NewMenu(items)
}

func (d *DeckDetailScreen) View(width, height int) string {
	if d.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s\n\nPress Esc to go back.", d.errMsg))
	}
	if !d.loaded {
		return ""
	}

	st := d.status
	contentWidth := min(width-8, 70)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)
	valStyle := lipgloss.NewStyle().Foreground(theme.Text)

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true).
		Render(fmt.Sprintf("  %s  %s", stageIcon(st.Stage), st.Deck.Name)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %s · %s", st.Deck.Category, st.Stage)))
	b.WriteString("\n\n")

	b.WriteString(dimStyle.Render("  Unlocked:  ") + valStyle.Render(fmt.Sprintf("%d of %d words", st.Unlocked, st.Words)) + "\n")
	b.WriteString(dimStyle.Render("  Sessions:  ") + valStyle.Render(fmt.Sprintf("%d completed", st.SessionsCompleted)) + "\n")
	bar := components.NewCountBar("  Mastered: ", st.Mastered, st.Words, contentWidth)
	bar.Fill = theme.MasteryColor(st.AverageMastery)
	b.WriteString(bar.View())
	b.WriteString("\n\n")

	b.WriteString(d.menu.View())
	b.WriteString("\n")

	b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("  Words"))
	b.WriteString("\n")
	used := lipgloss.Height(b.String())
	start := 0
	if room := height - used - 1; room > 0 && d.wordCursor >= room {
		start = d.wordCursor - room + 1
	}
	for i := start; i < len(d.words) && used < height-1; i++ {
		b.WriteString(d.renderWord(i, contentWidth))
		b.WriteString("\n")
		used++
	}

	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top, "\n"+b.String())
}

func (d *DeckDetailScreen) renderWord(i, width int) string {
	w := d.words[i]
	cursor := "  "
	if d.wordFocus && i == d.wordCursor {
		cursor = "▸ "
	}
	mark := " "
	if w.Bookmarked {
		mark = "*"
	}

	style := lipgloss.NewStyle().Foreground(theme.MasteryColor(w.Record.Mastery))
	if !w.Unlocked {
		return lipgloss.NewStyle().Foreground(theme.TextDim).
			Render(fmt.Sprintf("  %s%s 🔒 %s", cursor, mark, w.Word.Hanzi))
	}
	line := fmt.Sprintf("  %s%s %-8s %-16s %s", cursor, mark, w.Word.Hanzi, w.Word.Pinyin, w.Word.Translation())
	line = layout.Truncate(line, width-8)
	return style.Render(line) + lipgloss.NewStyle().Foreground(theme.TextDim).
		Render(fmt.Sprintf("  %3.0f%%", w.Record.Mastery*100))
}

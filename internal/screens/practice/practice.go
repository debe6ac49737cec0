package practice

import (
	"context"
	"errors"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/hanzo/internal/engine"
	"github.com/abhisek/hanzo/internal/journey"
	"github.com/abhisek/hanzo/internal/questiongen"
	"github.com/abhisek/hanzo/internal/router"
	"github.com/abhisek/hanzo/internal/screen"
	"github.com/abhisek/hanzo/internal/screens/summary"
	"github.com/abhisek/hanzo/internal/session"
	"github.com/abhisek/hanzo/internal/ui/components"
	"github.com/abhisek/hanzo/internal/ui/layout"
)

// PracticeScreen runs a practice session or an exam over one deck.
type PracticeScreen struct {
	engine   *engine.Engine
	deckID   string
	exam     bool
	run      *session.Run
	question *questiongen.Question

	choices  components.MultiChoice
	input    components.TextInput
	revealed bool // flashcard back is showing

	last               *session.Answer
	showingFeedback    bool
	showingQuitConfirm bool
	errMsg             string
}

var _ screen.Screen = (*PracticeScreen)(nil)
var _ screen.KeyHintProvider = (*PracticeScreen)(nil)
var _ screen.BackInterceptor = (*PracticeScreen)(nil)

// New creates a practice screen for a deck.
func New(e *engine.Engine, deckID string) *PracticeScreen {
	return &PracticeScreen{engine: e, deckID: deckID}
}

// NewExam creates an exam screen for a deck.
func NewExam(e *engine.Engine, deckID string) *PracticeScreen {
	return &PracticeScreen{engine: e, deckID: deckID, exam: true}
}

func (s *PracticeScreen) Init() tea.Cmd {
	e, deckID, exam := s.engine, s.deckID, s.exam
	return func() tea.Msg {
		ctx := context.Background()
		var (
			run *session.Run
			err error
		)
		if exam {
			run, err = e.StartExam(ctx, deckID)
		} else {
			run, err = e.BuildSession(ctx, deckID)
		}
		return sessionReadyMsg{Run: run, Err: err}
	}
}

func (s *PracticeScreen) Title() string {
	if s.exam {
		return "Exam"
	}
	return "Practice"
}

// InterceptsBack keeps Esc inside the screen while a run is in progress so
// the learner is asked before abandoning it.
func (s *PracticeScreen) InterceptsBack() bool {
	return s.run != nil && s.errMsg == "" && !s.run.Session.Empty()
}

func (s *PracticeScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.run == nil || s.errMsg != "":
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	case s.showingQuitConfirm:
		return []layout.KeyHint{
			{Key: "Y", Description: "End session"},
			{Key: "N", Description: "Keep going"},
		}
	case s.showingFeedback:
		return []layout.KeyHint{{Key: "any key", Description: "Continue"}}
	case s.question == nil:
		return nil
	}

	switch s.question.Type {
	case journey.Flashcard:
		if !s.revealed {
			return []layout.KeyHint{
				{Key: "Space", Description: "Reveal"},
				{Key: "Esc", Description: "Quit"},
			}
		}
		return []layout.KeyHint{
			{Key: "Y", Description: "Knew it"},
			{Key: "N", Description: "Didn't"},
			{Key: "Esc", Description: "Quit"},
		}
	case journey.Construction:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "Quit"},
		}
	default:
		return []layout.KeyHint{
			{Key: "1-4", Description: "Choose"},
			{Key: "↑↓ Enter", Description: "Select"},
			{Key: "Esc", Description: "Quit"},
		}
	}
}

func (s *PracticeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionReadyMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.run = msg.Run
		if s.run.Session.Empty() {
			return s, nil
		}
		return s, s.loadQuestion()

	case questionReadyMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		return s, s.showQuestion(msg.Question)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.question != nil && s.question.Type == journey.Construction && !s.showingFeedback {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *PracticeScreen) loadQuestion() tea.Cmd {
	e, run := s.engine, s.run
	return func() tea.Msg {
		q, err := e.Question(context.Background(), run)
		return questionReadyMsg{Question: q, Err: err}
	}
}

// showQuestion prepares the input widgets for a new question.
func (s *PracticeScreen) showQuestion(q *questiongen.Question) tea.Cmd {
	s.question = q
	s.revealed = false
	s.showingFeedback = false
	s.last = nil

	switch q.Type {
	case journey.Construction:
		s.input = components.NewTextInput("Type the characters...", 16)
		return s.input.Init()
	case journey.Flashcard:
		return nil
	default:
		s.choices = components.NewMultiChoice(q.Choices, q.CorrectIndex())
		return nil
	}
}

func (s *PracticeScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	// Error and empty states: any key goes back.
	if s.errMsg != "" || (s.run != nil && s.run.Session.Empty()) {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	if s.run == nil || s.question == nil {
		return s, nil
	}

	if s.showingQuitConfirm {
		switch key {
		case "y", "Y":
			s.showingQuitConfirm = false
			return s, s.abandon()
		case "n", "N", "esc":
			s.showingQuitConfirm = false
		}
		return s, nil
	}

	if s.showingFeedback {
		return s, s.advance()
	}

	if key == "esc" {
		s.showingQuitConfirm = true
		return s, nil
	}

	switch s.question.Type {
	case journey.Flashcard:
		if !s.revealed {
			if key == "space" || key == "enter" {
				s.revealed = true
			}
			return s, nil
		}
		switch key {
		case "y", "Y", "1":
			return s, s.submit(true)
		case "n", "N", "2":
			return s, s.submit(false)
		}
		return s, nil

	case journey.Construction:
		if key == "enter" {
			if s.input.Value() == "" {
				return s, nil
			}
			correct := questiongen.CheckAnswer(s.input.Value(), s.question)
			s.input.Submit(correct)
			return s, s.submit(correct)
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd

	default:
		s.choices, _ = s.choices.Update(msg)
		if s.choices.Submitted {
			return s, s.submit(s.choices.IsCorrect())
		}
		return s, nil
	}
}

// submit scores the answer and shows feedback.
func (s *PracticeScreen) submit(correct bool) tea.Cmd {
	ans, err := s.engine.SubmitAnswer(context.Background(), s.run, correct)
	if err != nil {
		s.errMsg = err.Error()
		return nil
	}
	s.last = &ans
	s.revealed = true
	s.showingFeedback = true
	return nil
}

// advance moves to the next question, or finishes the run after the last.
func (s *PracticeScreen) advance() tea.Cmd {
	s.showingFeedback = false
	if !s.run.Done() {
		return s.loadQuestion()
	}

	out, err := s.engine.CompleteSession(context.Background(), s.run)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFinished) {
			return s.abandon()
		}
		s.errMsg = err.Error()
		return nil
	}
	next := summary.New(out.Summary, out.Exam)
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

// abandon stops the run early. Applied answers stand.
func (s *PracticeScreen) abandon() tea.Cmd {
	sum := s.engine.AbandonSession(context.Background(), s.run)
	next := summary.New(sum, nil)
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

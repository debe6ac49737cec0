package practice

import (
	"github.com/abhisek/hanzo/internal/questiongen"
	"github.com/abhisek/hanzo/internal/session"
)

// sessionReadyMsg is sent when the run has been built.
type sessionReadyMsg struct {
	Run *session.Run
	Err error
}

// questionReadyMsg is sent when the current item's question is built.
// Building may call the LLM for distractors, so it runs as a command.
type questionReadyMsg struct {
	Question *questiongen.Question
	Err      error
}

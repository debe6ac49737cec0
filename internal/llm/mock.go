package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// MockReply is one scripted outcome: content or an error.
type MockReply struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// DistractorReply scripts a distractor reply listing options.
func DistractorReply(options ...string) MockReply {
	if options == nil {
		options = []string{}
	}
	b, _ := json.Marshal(map[string][]string{"distractors": options})
	return MockReply{Content: b, Usage: Usage{InputTokens: 60, OutputTokens: 8 * len(options)}}
}

// FailedReply scripts a provider failure of the given kind.
func FailedReply(kind ErrorKind) MockReply {
	return MockReply{Err: &Error{Kind: kind, Provider: ProviderMock, Err: errors.New("scripted failure")}}
}

// MockProvider plays back scripted replies in order and records requests.
// Replies go through the same schema check as a real provider's, so a
// malformed script surfaces as InvalidReply. An exhausted script answers
// Unavailable.
type MockProvider struct {
	mu       sync.Mutex
	script   []MockReply
	requests []Request
}

var _ Provider = (*MockProvider)(nil)

func NewMockProvider(replies ...MockReply) *MockProvider {
	return &MockProvider{script: replies}
}

// Script appends replies.
func (m *MockProvider) Script(replies ...MockReply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, replies...)
}

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)
	if len(m.script) == 0 {
		return nil, failure(Unavailable, ProviderMock, req, errors.New("script exhausted"))
	}
	next := m.script[0]
	m.script = m.script[1:]

	if next.Err != nil {
		if e, ok := next.Err.(*Error); ok && e.Purpose == "" {
			tagged := *e
			tagged.Purpose = req.purposeOr()
			return nil, &tagged
		}
		return nil, next.Err
	}
	if err := validateReply(ProviderMock, req, next.Content); err != nil {
		return nil, err
	}
	return &Response{Content: next.Content, Usage: next.Usage, Model: "mock"}, nil
}

func (m *MockProvider) ModelID() string { return "mock" }

// Requests returns the requests received so far.
func (m *MockProvider) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}

// Calls counts Generate calls.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

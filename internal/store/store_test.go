package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil database handle")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so journal_mode is not checked here.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	for _, table := range []string{tableKV, tableAnswers, tableSessions, tableMilestones, tableLLM} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Fatalf("table %s: %v", table, err)
		}
	}
}

func TestKVRoundTrip(t *testing.T) {
	s := openTestStore(t)
	kv := s.KV()
	ctx := context.Background()

	var got map[string]float64
	found, err := kv.Get(ctx, "word_mastery", &got)
	if err != nil {
		t.Fatalf("get (empty): %v", err)
	}
	if found {
		t.Fatal("expected missing key to report found=false")
	}

	want := map[string]float64{"你好": 0.3, "谢谢": 1}
	if err := kv.Set(ctx, "word_mastery", want); err != nil {
		t.Fatalf("set: %v", err)
	}

	found, err = kv.Get(ctx, "word_mastery", &got)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !found {
		t.Fatal("expected key to be found")
	}
	if got["你好"] != 0.3 || got["谢谢"] != 1 {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestKVOverwriteAndDelete(t *testing.T) {
	s := openTestStore(t)
	kv := s.KV()
	ctx := context.Background()

	if err := kv.Set(ctx, "deck_session_counts", map[string]int{"d1": 1}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := kv.Set(ctx, "deck_session_counts", map[string]int{"d1": 2}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	var got map[string]int
	if _, err := kv.Get(ctx, "deck_session_counts", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got["d1"] != 2 {
		t.Errorf("d1 = %d, want 2", got["d1"])
	}

	if err := kv.Delete(ctx, "deck_session_counts"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	found, err := kv.Get(ctx, "deck_session_counts", &got)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if found {
		t.Error("expected key to be gone after delete")
	}
}

func TestMemoryKVFailWrites(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	if err := kv.Set(ctx, "k", map[string]bool{"a": true}); err != nil {
		t.Fatalf("set: %v", err)
	}

	boom := errors.New("disk full")
	kv.FailWrites = boom
	if err := kv.Set(ctx, "k", map[string]bool{"a": false}); !errors.Is(err, boom) {
		t.Fatalf("set error = %v, want %v", err, boom)
	}

	var got map[string]bool
	if _, err := kv.Get(ctx, "k", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got["a"] {
		t.Error("failed write must not change the stored value")
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()
	ctx := context.Background()

	sc, err := newSequenceCounter(db)
	if err != nil {
		t.Fatalf("new sequence counter: %v", err)
	}

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := sc.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	for i := 1; i < len(seqs); i++ {
		if seqs[i] != seqs[i-1]+1 {
			t.Errorf("seq[%d] = %d, want %d", i, seqs[i], seqs[i-1]+1)
		}
	}
}

func TestAnswerEventsAndAccuracy(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	answers := []AnswerEventData{
		{SessionID: "s1", DeckID: "d1", WordID: "你好", QuestionType: "flashcard", Correct: true, Delta: 0.1, Mastery: 0.1},
		{SessionID: "s1", DeckID: "d1", WordID: "你好", QuestionType: "multipleChoice", Correct: false, Delta: -0.15, Mastery: 0},
		{SessionID: "s1", DeckID: "d1", WordID: "你好", QuestionType: "flashcard", Correct: true, Delta: 0.1, Mastery: 0.1},
		{SessionID: "s1", DeckID: "d1", WordID: "谢谢", QuestionType: "flashcard", Correct: true, Delta: 0.1, Mastery: 0.1},
	}
	for _, a := range answers {
		if err := repo.AppendAnswerEvent(ctx, a); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	acc, n, err := repo.WordAccuracy(ctx, "你好")
	if err != nil {
		t.Fatalf("accuracy: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
	if acc < 0.66 || acc > 0.67 {
		t.Errorf("accuracy = %f, want ~0.667", acc)
	}

	records, err := repo.QueryAnswerEvents(ctx, QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].WordID != "谢谢" {
		t.Errorf("newest word = %q, want 谢谢", records[0].WordID)
	}
	if records[0].Sequence <= records[1].Sequence {
		t.Error("expected newest-first ordering")
	}
}

func TestSessionSummariesSkipStarts(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []SessionEventData{
		{SessionID: "a", DeckID: "d1", Action: SessionStart, ItemsPlanned: 15},
		{SessionID: "a", DeckID: "d1", Action: SessionComplete, ItemsPlanned: 15, ItemsAnswered: 15, CorrectAnswers: 12, WordsMastered: 1},
		{SessionID: "b", DeckID: "d1", Action: SessionStart, ItemsPlanned: 15},
		{SessionID: "b", DeckID: "d1", Action: SessionAbandoned, ItemsPlanned: 15, ItemsAnswered: 4},
	}
	for _, e := range events {
		if err := repo.AppendSessionEvent(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	summaries, err := repo.QuerySessionSummaries(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("summaries = %d, want 2", len(summaries))
	}
	if summaries[0].Action != SessionAbandoned || summaries[1].CorrectAnswers != 12 {
		t.Errorf("unexpected summaries: %+v", summaries)
	}
	if summaries[1].Kind != "practice" {
		t.Errorf("kind = %q, want practice default", summaries[1].Kind)
	}
}

func TestMilestonesAndLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	if err := repo.AppendMilestoneEvent(ctx, MilestoneEventData{Kind: MilestoneDeckMastered, Subject: "greetings"}); err != nil {
		t.Fatalf("append milestone: %v", err)
	}
	if err := repo.AppendMilestoneEvent(ctx, MilestoneEventData{Kind: MilestoneBadgeAwarded, Subject: "basics"}); err != nil {
		t.Fatalf("append milestone: %v", err)
	}

	ms, err := repo.QueryMilestones(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query milestones: %v", err)
	}
	if len(ms) != 2 || ms[0].Kind != MilestoneBadgeAwarded {
		t.Fatalf("unexpected milestones: %+v", ms)
	}

	err = repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "mock", Model: "mock", Purpose: "distractors",
		InputTokens: 10, OutputTokens: 5, LatencyMs: 12, Success: true,
	})
	if err != nil {
		t.Fatalf("append llm: %v", err)
	}
	llmEvents, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 10})
	if err != nil {
		t.Fatalf("query llm: %v", err)
	}
	if len(llmEvents) != 1 || llmEvents[0].Purpose != "distractors" || !llmEvents[0].Success {
		t.Errorf("unexpected llm events: %+v", llmEvents)
	}
}

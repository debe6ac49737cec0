package mastery

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDecodeRecords_LegacyNumbers(t *testing.T) {
	raw := map[string]json.RawMessage{
		"你好": json.RawMessage(`0.45`),
		"谢谢": json.RawMessage(`1.2`),
	}

	got := decodeRecords(raw)
	if got["你好"].Mastery != 0.45 {
		t.Errorf("你好 = %f, want 0.45", got["你好"].Mastery)
	}
	if got["谢谢"].Mastery != 1.0 {
		t.Errorf("谢谢 = %f, want clamped 1.0", got["谢谢"].Mastery)
	}
	if got["你好"].WordID != "你好" {
		t.Errorf("WordID = %q", got["你好"].WordID)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	in := map[string]Record{
		"a": {WordID: "a", Mastery: 0.3, LastPracticed: &ts},
		"b": {WordID: "b", Bookmarked: true},
	}

	b, err := json.Marshal(encodeRecords(in))
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatal(err)
	}
	out := decodeRecords(raw)

	if out["a"].Mastery != 0.3 || out["a"].LastPracticed == nil || !out["a"].LastPracticed.Equal(ts) {
		t.Errorf("a = %+v", out["a"])
	}
	if !out["b"].Bookmarked || out["b"].LastPracticed != nil {
		t.Errorf("b = %+v", out["b"])
	}
}

func TestDecodeRecords_SkipsGarbage(t *testing.T) {
	raw := map[string]json.RawMessage{
		"ok":  json.RawMessage(`{"mastery":0.5}`),
		"bad": json.RawMessage(`"not a record"`),
	}
	got := decodeRecords(raw)
	if len(got) != 1 {
		t.Errorf("decoded %d records, want 1", len(got))
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-0.1, 0},
		{0, 0},
		{0.5, 0.5},
		{1, 1},
		{1.3, 1},
		{0.30000000000000004, 0.3},
	}
	for _, tt := range tests {
		if got := Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

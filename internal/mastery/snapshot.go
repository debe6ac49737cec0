package mastery

import (
	"encoding/json"
	"time"
)

// recordData is the persisted form of a Record. Times are RFC3339 strings so
// the stored mapping stays made of primitive values.
type recordData struct {
	Mastery       float64 `json:"mastery"`
	LastPracticed *string `json:"last_practiced,omitempty"`
	Bookmarked    bool    `json:"bookmarked,omitempty"`
}

// encodeRecords converts the in-memory records to their persisted form.
func encodeRecords(records map[string]Record) map[string]recordData {
	out := make(map[string]recordData, len(records))
	for id, r := range records {
		rd := recordData{Mastery: r.Mastery, Bookmarked: r.Bookmarked}
		if r.LastPracticed != nil {
			s := r.LastPracticed.UTC().Format(time.RFC3339Nano)
			rd.LastPracticed = &s
		}
		out[id] = rd
	}
	return out
}

// decodeRecords converts the persisted mapping back into records.
//
// Older databases stored a bare number per word; those entries are migrated
// to records with only the mastery score set.
func decodeRecords(raw map[string]json.RawMessage) map[string]Record {
	out := make(map[string]Record, len(raw))
	for id, msg := range raw {
		var legacy float64
		if err := json.Unmarshal(msg, &legacy); err == nil {
			out[id] = Record{WordID: id, Mastery: Clamp(legacy)}
			continue
		}

		var rd recordData
		if err := json.Unmarshal(msg, &rd); err != nil {
			continue
		}
		r := Record{WordID: id, Mastery: Clamp(rd.Mastery), Bookmarked: rd.Bookmarked}
		if rd.LastPracticed != nil {
			if t, err := time.Parse(time.RFC3339Nano, *rd.LastPracticed); err == nil {
				r.LastPracticed = &t
			}
		}
		out[id] = r
	}
	return out
}

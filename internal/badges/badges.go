// Package badges awards topic badges once every deck in a category has
// passed its exam.
package badges

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/hanzo/internal/catalog"
	"github.com/abhisek/hanzo/internal/store"
)

// StorageKey is the key-value entry holding awarded badges.
const StorageKey = "topic_badges"

// Badge is a category's award. Once earned it is never revoked
// automatically.
type Badge struct {
	Category  string
	Earned    bool
	AwardedAt *time.Time
}

// DeckChecker reports whether a deck has passed its exam.
type DeckChecker interface {
	IsDeckMastered(deckID string) bool
}

// Decks lists the decks in a category.
type Decks interface {
	DecksInCategory(category string) []catalog.Deck
}

type badgeData struct {
	Earned    bool    `json:"earned"`
	AwardedAt *string `json:"awarded_at,omitempty"`
}

// Manager tracks earned topic badges.
type Manager struct {
	mu        sync.Mutex
	kv        store.KeyValueStore
	decks     Decks
	checker   DeckChecker
	eventRepo store.EventRepo
	badges    map[string]Badge
	log       logrus.FieldLogger
	now       func() time.Time
}

// NewManager creates a badge manager, loading awarded badges. eventRepo and
// log may be nil.
func NewManager(ctx context.Context, kv store.KeyValueStore, decks Decks, checker DeckChecker, eventRepo store.EventRepo, log logrus.FieldLogger) (*Manager, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	m := &Manager{
		kv:        kv,
		decks:     decks,
		checker:   checker,
		eventRepo: eventRepo,
		badges:    make(map[string]Badge),
		log:       log,
		now:       time.Now,
	}

	var raw map[string]badgeData
	if _, err := kv.Get(ctx, StorageKey, &raw); err != nil {
		return nil, fmt.Errorf("load badges: %w", err)
	}
	for cat, bd := range raw {
		b := Badge{Category: cat, Earned: bd.Earned}
		if bd.AwardedAt != nil {
			if t, err := time.Parse(time.RFC3339Nano, *bd.AwardedAt); err == nil {
				b.AwardedAt = &t
			}
		}
		m.badges[cat] = b
	}
	return m, nil
}

// IsEarned reports whether the category's badge has been awarded.
func (m *Manager) IsEarned(category string) bool {
	return m.Badge(category).Earned
}

// Badge returns the category's badge, zero-valued if not earned.
func (m *Manager) Badge(category string) Badge {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.badges[category]; ok {
		return b
	}
	return Badge{Category: category}
}

// All returns every earned badge ordered by category.
func (m *Manager) All() []Badge {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := slices.Sorted(maps.Keys(m.badges))
	out := make([]Badge, 0, len(keys))
	for _, k := range keys {
		if b := m.badges[k]; b.Earned {
			out = append(out, b)
		}
	}
	return out
}

// CheckAndAward awards the category's badge when every deck in it is
// mastered. It reports whether a badge was newly awarded; calling it again
// for an earned category changes nothing.
func (m *Manager) CheckAndAward(ctx context.Context, category string) (bool, error) {
	if m.IsEarned(category) {
		return false, nil
	}

	decks := m.decks.DecksInCategory(category)
	if len(decks) == 0 {
		return false, nil
	}
	for _, d := range decks {
		if !m.checker.IsDeckMastered(d.ID) {
			return false, nil
		}
	}

	m.mu.Lock()
	if m.badges[category].Earned {
		m.mu.Unlock()
		return false, nil
	}
	now := m.now()
	next := maps.Clone(m.badges)
	next[category] = Badge{Category: category, Earned: true, AwardedAt: &now}
	if err := m.kv.Set(ctx, StorageKey, encode(next)); err != nil {
		m.mu.Unlock()
		return false, fmt.Errorf("award badge %q: %w", category, err)
	}
	m.badges = next
	m.mu.Unlock()

	if m.eventRepo != nil {
		if err := m.eventRepo.AppendMilestoneEvent(ctx, store.MilestoneEventData{
			Kind:    store.MilestoneBadgeAwarded,
			Subject: category,
			Detail:  fmt.Sprintf("all %d decks mastered", len(decks)),
		}); err != nil {
			m.log.WithError(err).WithFields(logrus.Fields{
				"milestone": store.MilestoneBadgeAwarded,
				"category":  category,
			}).Warn("record milestone")
		}
	}
	return true, nil
}

// Reset clears every badge.
func (m *Manager) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.kv.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("reset badges: %w", err)
	}
	m.badges = make(map[string]Badge)
	return nil
}

func encode(badges map[string]Badge) map[string]badgeData {
	out := make(map[string]badgeData, len(badges))
	for cat, b := range badges {
		bd := badgeData{Earned: b.Earned}
		if b.AwardedAt != nil {
			s := b.AwardedAt.UTC().Format(time.RFC3339Nano)
			bd.AwardedAt = &s
		}
		out[cat] = bd
	}
	return out
}

package catalog

import "errors"

// ErrUnknownDeck is returned when a deck id is not in the catalog.
var ErrUnknownDeck = errors.New("unknown deck")

// WordItem is one vocabulary entry.
type WordItem struct {
	// ID is stable across releases. It defaults to the hanzi text.
	ID           string   `json:"id,omitempty"`
	Hanzi        string   `json:"hanzi" validate:"required"`
	Pinyin       string   `json:"pinyin" validate:"required"`
	Translations []string `json:"translations" validate:"required,min=1,dive,required"`
	Level        int      `json:"level" validate:"min=1,max=5"`
}

// Translation returns the primary translation.
func (w WordItem) Translation() string {
	if len(w.Translations) == 0 {
		return ""
	}
	return w.Translations[0]
}

// Deck is a named, ordered collection of words practiced together.
type Deck struct {
	ID       string     `json:"id" validate:"required"`
	Name     string     `json:"name" validate:"required"`
	Category string     `json:"category" validate:"required"`
	Words    []WordItem `json:"words" validate:"dive"`
}

// CharacterMeta describes a single hanzi character.
type CharacterMeta struct {
	Hanzi   string `json:"hanzi" validate:"required"`
	Pinyin  string `json:"pinyin,omitempty"`
	Meaning string `json:"meaning,omitempty"`
	Strokes int    `json:"strokes,omitempty" validate:"min=0"`
}

// Service is the read-only catalog the engine consumes.
type Service interface {
	// LoadDeckWords returns a deck's words in their stable order.
	LoadDeckWords(deckID string) ([]WordItem, error)

	// LoadCharacters returns character metadata keyed by hanzi.
	LoadCharacters() (map[string]CharacterMeta, error)

	Deck(deckID string) (Deck, error)
	Decks() []Deck
	DecksInCategory(category string) []Deck
	Categories() []string
}

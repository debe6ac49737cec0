package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

//go:embed catalog.json
var builtinCatalog []byte

var validate = validator.New()

// fileData is the on-disk catalog format.
type fileData struct {
	Decks      []Deck          `json:"decks" validate:"dive"`
	Characters []CharacterMeta `json:"characters,omitempty" validate:"dive"`
}

// FileCatalog is a Service backed by a JSON document.
type FileCatalog struct {
	decks      []Deck
	byID       map[string]int
	characters map[string]CharacterMeta
	explicit   []CharacterMeta
}

var _ Service = (*FileCatalog)(nil)

// Parse builds a catalog from JSON, filling in default ids and levels and
// validating every deck.
func Parse(data []byte) (*FileCatalog, error) {
	var fd fileData
	if err := json.Unmarshal(data, &fd); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return build(fd)
}

// LoadFile reads a catalog from disk.
func LoadFile(path string) (*FileCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

var (
	builtinOnce sync.Once
	builtin     *FileCatalog
)

// Builtin returns the sample catalog shipped with the binary.
func Builtin() *FileCatalog {
	builtinOnce.Do(func() {
		c, err := Parse(builtinCatalog)
		if err != nil {
			panic(fmt.Sprintf("built-in catalog: %v", err))
		}
		builtin = c
	})
	return builtin
}

// Open loads the catalog at path, or the built-in one when path is empty.
func Open(path string) (*FileCatalog, error) {
	if path == "" {
		return Builtin(), nil
	}
	return LoadFile(path)
}

func build(fd fileData) (*FileCatalog, error) {
	for i := range fd.Decks {
		normalizeDeck(&fd.Decks[i])
	}
	if err := validate.Struct(fd); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}

	c := &FileCatalog{
		decks:      fd.Decks,
		byID:       make(map[string]int, len(fd.Decks)),
		characters: make(map[string]CharacterMeta),
		explicit:   fd.Characters,
	}
	for i, d := range fd.Decks {
		if _, dup := c.byID[d.ID]; dup {
			return nil, fmt.Errorf("validate catalog: duplicate deck id %q", d.ID)
		}
		c.byID[d.ID] = i

		seen := make(map[string]bool, len(d.Words))
		for _, w := range d.Words {
			if seen[w.ID] {
				return nil, fmt.Errorf("validate catalog: deck %q has duplicate word %q", d.ID, w.ID)
			}
			seen[w.ID] = true
		}
	}

	// Every character used in a word is known, even without explicit metadata.
	for _, d := range fd.Decks {
		for _, w := range d.Words {
			for _, r := range w.Hanzi {
				ch := string(r)
				if _, ok := c.characters[ch]; !ok {
					c.characters[ch] = CharacterMeta{Hanzi: ch}
				}
			}
		}
	}
	for _, cm := range fd.Characters {
		c.characters[cm.Hanzi] = cm
	}
	return c, nil
}

func normalizeDeck(d *Deck) {
	d.ID = strings.TrimSpace(d.ID)
	d.Category = strings.TrimSpace(d.Category)
	for i := range d.Words {
		w := &d.Words[i]
		w.Hanzi = strings.TrimSpace(w.Hanzi)
		if w.ID == "" {
			w.ID = w.Hanzi
		}
		if w.Level == 0 {
			w.Level = 1
		}
		w.Translations = lo.Compact(lo.Map(w.Translations, func(t string, _ int) string {
			return strings.TrimSpace(t)
		}))
	}
}

func (c *FileCatalog) LoadDeckWords(deckID string) ([]WordItem, error) {
	d, err := c.Deck(deckID)
	if err != nil {
		return nil, err
	}
	return d.Words, nil
}

func (c *FileCatalog) LoadCharacters() (map[string]CharacterMeta, error) {
	out := make(map[string]CharacterMeta, len(c.characters))
	for k, v := range c.characters {
		out[k] = v
	}
	return out, nil
}

func (c *FileCatalog) Deck(deckID string) (Deck, error) {
	i, ok := c.byID[deckID]
	if !ok {
		return Deck{}, fmt.Errorf("%w: %q", ErrUnknownDeck, deckID)
	}
	d := c.decks[i]
	d.Words = append([]WordItem(nil), d.Words...)
	return d, nil
}

func (c *FileCatalog) Decks() []Deck {
	return append([]Deck(nil), c.decks...)
}

func (c *FileCatalog) DecksInCategory(category string) []Deck {
	return lo.Filter(c.decks, func(d Deck, _ int) bool {
		return d.Category == category
	})
}

func (c *FileCatalog) Categories() []string {
	return lo.Uniq(lo.Map(c.decks, func(d Deck, _ int) string { return d.Category }))
}

// Words returns every word in the catalog, deduplicated by id.
func (c *FileCatalog) Words() []WordItem {
	all := lo.FlatMap(c.decks, func(d Deck, _ int) []WordItem { return d.Words })
	return lo.UniqBy(all, func(w WordItem) string { return w.ID })
}

// WithDeck returns a copy of the catalog with deck added, replacing any deck
// with the same id.
func (c *FileCatalog) WithDeck(deck Deck) (*FileCatalog, error) {
	fd := fileData{Characters: c.explicit}
	replaced := false
	for _, d := range c.decks {
		if d.ID == deck.ID {
			fd.Decks = append(fd.Decks, deck)
			replaced = true
			continue
		}
		fd.Decks = append(fd.Decks, d)
	}
	if !replaced {
		fd.Decks = append(fd.Decks, deck)
	}
	return build(fd)
}

// Save writes the catalog as JSON, creating parent directories.
func (c *FileCatalog) Save(path string) error {
	fd := fileData{Decks: c.decks, Characters: c.explicit}
	data, err := json.MarshalIndent(fd, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create catalog dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}

package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestBuiltin(t *testing.T) {
	c := Builtin()

	assert.Equal(t, []string{"basics", "people", "food"}, c.Categories())
	assert.Len(t, c.DecksInCategory("basics"), 2)
	assert.Empty(t, c.DecksInCategory("travel"))

	words, err := c.LoadDeckWords("greetings")
	require.NoError(t, err)
	require.NotEmpty(t, words)
	assert.Equal(t, "你好", words[0].ID, "ids default to the hanzi text")
	assert.Equal(t, "hello", words[0].Translation())

	for _, d := range c.Decks() {
		for _, w := range d.Words {
			assert.GreaterOrEqual(t, w.Level, 1, w.ID)
			assert.LessOrEqual(t, w.Level, 5, w.ID)
		}
	}
}

func TestUnknownDeck(t *testing.T) {
	_, err := Builtin().LoadDeckWords("nope")
	assert.True(t, errors.Is(err, ErrUnknownDeck))
}

func TestLoadCharacters(t *testing.T) {
	chars, err := Builtin().LoadCharacters()
	require.NoError(t, err)

	assert.Equal(t, "good", chars["好"].Meaning, "explicit metadata wins")
	_, ok := chars["谢"]
	assert.True(t, ok, "characters used by words are always present")
	_, ok = chars["人"]
	assert.True(t, ok, "standalone characters are kept")
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing pinyin", `{"decks":[{"id":"d","name":"D","category":"c","words":[{"hanzi":"水","translations":["water"]}]}]}`},
		{"missing category", `{"decks":[{"id":"d","name":"D","words":[]}]}`},
		{"empty translation", `{"decks":[{"id":"d","name":"D","category":"c","words":[{"hanzi":"水","pinyin":"shuǐ","translations":[" "]}]}]}`},
		{"level too high", `{"decks":[{"id":"d","name":"D","category":"c","words":[{"hanzi":"水","pinyin":"shuǐ","translations":["water"],"level":9}]}]}`},
		{"duplicate deck", `{"decks":[{"id":"d","name":"D","category":"c"},{"id":"d","name":"E","category":"c"}]}`},
		{"duplicate word", `{"decks":[{"id":"d","name":"D","category":"c","words":[
			{"hanzi":"水","pinyin":"shuǐ","translations":["water"]},
			{"hanzi":"水","pinyin":"shuǐ","translations":["water"]}]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestParse_EmptyDeckAllowed(t *testing.T) {
	c, err := Parse([]byte(`{"decks":[{"id":"d","name":"D","category":"c"}]}`))
	require.NoError(t, err)
	words, err := c.LoadDeckWords("d")
	require.NoError(t, err)
	assert.Empty(t, words)
}

func TestWithDeckSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "catalog.json")

	c, err := Builtin().WithDeck(Deck{
		ID: "colors", Name: "Colors", Category: "basics",
		Words: []WordItem{{Hanzi: "红", Pinyin: "hóng", Translations: []string{"red"}}},
	})
	require.NoError(t, err)
	require.NoError(t, c.Save(path))

	reloaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, reloaded.DecksInCategory("basics"), 3)
	chars, _ := reloaded.LoadCharacters()
	assert.Equal(t, 7, chars["你"].Strokes)

	// Replacing keeps the deck count stable.
	again, err := reloaded.WithDeck(Deck{ID: "colors", Name: "Colours", Category: "basics"})
	require.NoError(t, err)
	assert.Len(t, again.Decks(), len(reloaded.Decks()))
	d, err := again.Deck("colors")
	require.NoError(t, err)
	assert.Equal(t, "Colours", d.Name)
}

func TestImportDeck_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "colors.csv")
	content := "hanzi,pinyin,translation,level\n" +
		"红,hóng,red;crimson,1\n" +
		"蓝,lán,blue,7\n" +
		",,,\n" +
		"绿,,green,2\n" +
		"红,hóng,red,1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := DefaultImportConfig()
	cfg.FilePath = path
	cfg.DeckID = "colors"
	cfg.Category = "basics"

	res, err := ImportDeck(cfg)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Rows)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 2, res.Skipped)
	assert.Len(t, res.Errors, 2)

	require.Len(t, res.Deck.Words, 2)
	assert.Equal(t, []string{"red", "crimson"}, res.Deck.Words[0].Translations)
	assert.Equal(t, 5, res.Deck.Words[1].Level, "levels are clamped")
	assert.Equal(t, "colors", res.Deck.Name)
}

func TestImportDeck_Excel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "animals.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Hanzi", "Pinyin", "English", "Level"},
		{"猫", "māo", "cat", 1},
		{"狗", "gǒu", "dog", 1},
		{"马", "mǎ", "horse", 2},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	cfg := DefaultImportConfig()
	cfg.FilePath = path
	cfg.DeckID = "animals"
	cfg.DeckName = "Animals"
	cfg.Category = "nature"

	res, err := ImportDeck(cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Imported)
	assert.Equal(t, "马", res.Deck.Words[2].ID)
	assert.Equal(t, 2, res.Deck.Words[2].Level)
}

func TestImportDeck_Errors(t *testing.T) {
	_, err := ImportDeck(ImportConfig{FilePath: "x.csv"})
	assert.Error(t, err, "deck id is required")

	_, err = ImportDeck(ImportConfig{FilePath: "x.txt", DeckID: "d"})
	assert.ErrorContains(t, err, "unsupported file type")
}

func TestColumnToIndex(t *testing.T) {
	assert.Equal(t, 0, columnToIndex("A"))
	assert.Equal(t, 3, columnToIndex("d"))
	assert.Equal(t, 27, columnToIndex("AB"))
	assert.Equal(t, -1, columnToIndex("1"))
}

package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"
)

// ImportConfig describes where a deck's words live in a spreadsheet.
type ImportConfig struct {
	FilePath          string // .xlsx or .csv
	SheetName         string // xlsx only; first sheet when empty
	DeckID            string
	DeckName          string
	Category          string
	HanziColumn       string
	PinyinColumn      string
	TranslationColumn string // multiple translations separated by ";"
	LevelColumn       string // optional
	StartRow          int    // 1-based; rows above are headers
}

// DefaultImportConfig reads hanzi, pinyin, translations and level from
// columns A to D, skipping one header row.
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		HanziColumn:       "A",
		PinyinColumn:      "B",
		TranslationColumn: "C",
		LevelColumn:       "D",
		StartRow:          2,
	}
}

// ImportResult summarizes an import.
type ImportResult struct {
	Deck     Deck
	Rows     int
	Imported int
	Skipped  int
	Errors   []string
}

// ImportDeck reads a deck from a spreadsheet. Rows that cannot be used are
// skipped and reported in the result; the deck is validated as a whole.
func ImportDeck(cfg ImportConfig) (*ImportResult, error) {
	if cfg.DeckID == "" {
		return nil, errors.New("import: deck id is required")
	}
	if cfg.DeckName == "" {
		cfg.DeckName = cfg.DeckID
	}
	if cfg.StartRow < 1 {
		cfg.StartRow = 1
	}

	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(cfg.FilePath)) {
	case ".csv":
		rows, err = readCSV(cfg.FilePath)
	case ".xlsx", ".xlsm":
		rows, err = readExcel(cfg.FilePath, cfg.SheetName)
	default:
		return nil, fmt.Errorf("import: unsupported file type %q", filepath.Ext(cfg.FilePath))
	}
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		Deck: Deck{ID: cfg.DeckID, Name: cfg.DeckName, Category: cfg.Category},
	}
	seen := make(map[string]bool)

	for i, row := range rows {
		rowNum := i + 1
		if rowNum < cfg.StartRow {
			continue
		}
		if lo.EveryBy(row, func(c string) bool { return strings.TrimSpace(c) == "" }) {
			continue
		}
		result.Rows++

		w, err := parseRow(row, cfg)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		if seen[w.ID] {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: duplicate word %q", rowNum, w.ID))
			continue
		}
		seen[w.ID] = true
		result.Deck.Words = append(result.Deck.Words, w)
		result.Imported++
	}

	normalizeDeck(&result.Deck)
	if err := validate.Struct(result.Deck); err != nil {
		return result, fmt.Errorf("import: %w", err)
	}
	return result, nil
}

func parseRow(row []string, cfg ImportConfig) (WordItem, error) {
	cell := func(col string) string {
		if col == "" {
			return ""
		}
		idx := columnToIndex(col)
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	w := WordItem{
		Hanzi:  cell(cfg.HanziColumn),
		Pinyin: cell(cfg.PinyinColumn),
		Translations: lo.Compact(lo.Map(strings.Split(cell(cfg.TranslationColumn), ";"), func(s string, _ int) string {
			return strings.TrimSpace(s)
		})),
		Level: 1,
	}
	if w.Hanzi == "" {
		return w, errors.New("hanzi is empty")
	}
	if w.Pinyin == "" {
		return w, errors.New("pinyin is empty")
	}
	if len(w.Translations) == 0 {
		return w, errors.New("translation is empty")
	}
	if lv := cell(cfg.LevelColumn); lv != "" {
		n, err := strconv.Atoi(lv)
		if err != nil {
			return w, fmt.Errorf("level %q is not a number", lv)
		}
		w.Level = min(max(n, 1), 5)
	}
	w.ID = w.Hanzi
	return w, nil
}

func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// columnToIndex converts a spreadsheet column letter ("A", "AB") to a
// zero-based index.
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		if column[i] < 'A' || column[i] > 'Z' {
			return -1
		}
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}

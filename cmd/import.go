package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/hanzo/internal/catalog"
	"github.com/abhisek/hanzo/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import <file.xlsx|file.csv>",
	Short: "Import a deck from a spreadsheet into the catalog",
	Long: `Import a deck from an .xlsx or .csv file. Each row is one word with
hanzi, pinyin, translations (separated by ";") and an optional HSK level.
The deck is added to the catalog file, replacing a deck with the same id.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ic := catalog.DefaultImportConfig()
		ic.FilePath = args[0]
		ic.DeckID, _ = cmd.Flags().GetString("deck")
		ic.DeckName, _ = cmd.Flags().GetString("name")
		ic.Category, _ = cmd.Flags().GetString("category")
		ic.SheetName, _ = cmd.Flags().GetString("sheet")
		ic.StartRow, _ = cmd.Flags().GetInt("start-row")
		ic.HanziColumn, _ = cmd.Flags().GetString("hanzi-col")
		ic.PinyinColumn, _ = cmd.Flags().GetString("pinyin-col")
		ic.TranslationColumn, _ = cmd.Flags().GetString("translation-col")
		ic.LevelColumn, _ = cmd.Flags().GetString("level-col")

		res, err := catalog.ImportDeck(ic)
		for _, msg := range reportErrors(res) {
			fmt.Fprintln(os.Stderr, "skipped", msg)
		}
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = cfg.Catalog.Path
		}
		if out == "" {
			dir, err := store.DataDir()
			if err != nil {
				return err
			}
			out = filepath.Join(dir, "catalog.json")
		}

		base, err := loadImportBase(out, cfg.Catalog.Path)
		if err != nil {
			return err
		}
		merged, err := base.WithDeck(res.Deck)
		if err != nil {
			return err
		}
		if err := merged.Save(out); err != nil {
			return err
		}

		fmt.Printf("Imported %d of %d rows into deck %q (%s).\n", res.Imported, res.Rows, res.Deck.ID, out)
		if cfg.Catalog.Path != out {
			fmt.Printf("Set catalog.path to %s (or HANZO_CATALOG_PATH) to practice it.\n", out)
		}
		return nil
	},
}

// loadImportBase returns the catalog the imported deck is merged into: the
// destination file if it exists, otherwise the configured catalog.
func loadImportBase(out, configured string) (*catalog.FileCatalog, error) {
	if _, err := os.Stat(out); err == nil {
		return catalog.LoadFile(out)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat catalog: %w", err)
	}
	return catalog.Open(configured)
}

func reportErrors(res *catalog.ImportResult) []string {
	if res == nil {
		return nil
	}
	return res.Errors
}

func init() {
	d := catalog.DefaultImportConfig()
	f := importCmd.Flags()
	f.String("deck", "", "Deck id (required)")
	f.String("name", "", "Deck display name (default: deck id)")
	f.String("category", "imported", "Deck category")
	f.String("sheet", "", "Worksheet name for .xlsx files (default: first sheet)")
	f.Int("start-row", d.StartRow, "First data row, 1-based")
	f.String("hanzi-col", d.HanziColumn, "Column holding the hanzi")
	f.String("pinyin-col", d.PinyinColumn, "Column holding the pinyin")
	f.String("translation-col", d.TranslationColumn, "Column holding translations")
	f.String("level-col", d.LevelColumn, "Column holding the HSK level, empty to skip")
	f.StringP("out", "o", "", "Catalog file to write (default: catalog.path, or catalog.json in the data dir)")
	_ = importCmd.MarkFlagRequired("deck")
}

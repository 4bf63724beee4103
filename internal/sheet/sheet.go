package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"flashdeck/internal/domain"

	"github.com/xuri/excelize/v2"
)

// maxSheetName is the longest sheet name a workbook accepts
const maxSheetName = 31

// ErrNoCards is returned when a file holds no usable front/back rows
var ErrNoCards = errors.New("no cards found")

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath    string // Path to the Excel or CSV file
	DeckName    string // Name of the new deck, defaults to the file name
	Description string // Description of the new deck
	FrontColumn string // Column with the card front
	BackColumn  string // Column with the card back
	SheetName   string // Sheet to import, defaults to the first sheet
	StartRow    int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		FrontColumn: "A",
		BackColumn:  "B",
		StartRow:    2, // Skip header
	}
}

// ImportResult holds the deck read from a file
type ImportResult struct {
	Deck           domain.Deck
	TotalProcessed int
	Skipped        int
	Errors         []string
}

// ReadDeck reads an Excel or CSV file into a deck without an id. Rows with a
// blank front or back are skipped and reported in Errors.
func ReadDeck(config ImportConfig) (*ImportResult, error) {
	frontCol, err := excelize.ColumnNameToNumber(config.FrontColumn)
	if err != nil {
		return nil, fmt.Errorf("invalid front column: %w", err)
	}
	backCol, err := excelize.ColumnNameToNumber(config.BackColumn)
	if err != nil {
		return nil, fmt.Errorf("invalid back column: %w", err)
	}

	var rows [][]string
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		rows, err = readCSV(config.FilePath)
	} else {
		rows, err = readExcel(config.FilePath, config.SheetName)
	}
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(config.DeckName)
	if name == "" {
		base := filepath.Base(config.FilePath)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	result := &ImportResult{
		Deck: domain.Deck{
			Name:        name,
			Description: strings.TrimSpace(config.Description),
			Cards:       []domain.Card{},
		},
		Errors: make([]string, 0),
	}

	for i, row := range rows {
		rowNum := i + 1
		if rowNum < config.StartRow {
			continue
		}
		if isBlank(row) {
			continue
		}

		result.TotalProcessed++

		front := cell(row, frontCol)
		back := cell(row, backCol)
		if front == "" || back == "" {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: front and back are required", rowNum))
			continue
		}

		result.Deck.Cards = append(result.Deck.Cards, domain.Card{Front: front, Back: back})
	}

	if len(result.Deck.Cards) == 0 {
		return result, ErrNoCards
	}
	return result, nil
}

func readExcel(path, sheetName string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheetName == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheetName = sheets[0]
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// cell returns the trimmed value of the 1-based column, or "" when the row is short
func cell(row []string, col int) string {
	if col < 1 || col > len(row) {
		return ""
	}
	return strings.TrimSpace(row[col-1])
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// ExportDecks writes every deck to its own sheet of a new workbook at path.
// Each sheet starts with a Front/Back header row.
func ExportDecks(path string, decks []domain.Deck) error {
	if len(decks) == 0 {
		return fmt.Errorf("nothing to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	used := make(map[string]bool, len(decks))

	for i, deck := range decks {
		name := uniqueSheetName(deck.Name, used)
		used[strings.ToLower(name)] = true

		if i == 0 {
			if name != defaultSheet {
				f.SetSheetName(defaultSheet, name)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", name, err)
		}

		if err := writeDeck(f, name, deck); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeDeck(f *excelize.File, sheet string, deck domain.Deck) error {
	if err := f.SetSheetRow(sheet, "A1", &[]string{"Front", "Back"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, card := range deck.Cards {
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, axis, &[]string{card.Front, card.Back}); err != nil {
			return fmt.Errorf("failed to write card %d of %q: %w", i+1, deck.Name, err)
		}
	}
	return nil
}

// sheetNameReplacer drops the characters a sheet name may not contain
var sheetNameReplacer = strings.NewReplacer(
	":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", "(", "]", ")",
)

// uniqueSheetName turns a deck name into a valid sheet name not yet in used.
// used holds lower-cased names since sheet names are case-insensitive.
func uniqueSheetName(deckName string, used map[string]bool) string {
	base := strings.Trim(strings.TrimSpace(sheetNameReplacer.Replace(deckName)), "'")
	if base == "" {
		base = "Deck"
	}
	base = truncate(base, maxSheetName)

	name := base
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		name = truncate(base, maxSheetName-len([]rune(suffix))) + suffix
	}
	return name
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max]))
}

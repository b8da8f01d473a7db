package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/example/nihonwa/internal/database"
	"github.com/example/nihonwa/internal/logger"
	"github.com/example/nihonwa/pkg/models"
)

// Repository is the item storage the importer writes to
type Repository interface {
	GetByTerm(ctx context.Context, kind models.ItemKind, level models.JLPTLevel, term string) (*models.LearnableItem, error)
	CountByLevel(ctx context.Context, kind models.ItemKind, level models.JLPTLevel) (int, error)
	Put(ctx context.Context, item *models.LearnableItem) error
}

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath string // Path to the .xlsx, .csv or .yaml file

	// Used for rows without their own kind or level
	Kind  models.ItemKind
	Level models.JLPTLevel

	// Spreadsheet columns; an empty column is not read
	TermColumn     string
	ReadingColumn  string
	MeaningColumn  string
	ExamplesColumn string // Examples separated by "|"
	LevelColumn    string
	KindColumn     string

	SheetName string // Defaults to the first sheet
	StartRow  int    // First data row (1-based)

	// Leave a (kind, level) pair alone when it already has items
	SkipIfLoaded bool
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		Kind:           models.KindVocabulary,
		Level:          models.N5,
		TermColumn:     "A",
		ReadingColumn:  "B",
		MeaningColumn:  "C",
		ExamplesColumn: "D",
		LevelColumn:    "E",
		KindColumn:     "F",
		StartRow:       2, // Skip header
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Updated        int
	Skipped        int // Rows in levels that were already loaded
	Errors         []string
}

// record is one item read from a source file
type record struct {
	Row      int
	Term     string
	Reading  string
	Meaning  string
	Examples []string
	Level    string
	Kind     string
}

// Importer loads learnable item datasets into the item store
type Importer struct {
	repo Repository
	log  *logger.Logger
}

// NewImporter creates an importer writing to repo
func NewImporter(repo Repository, log *logger.Logger) *Importer {
	if log == nil {
		log = logger.NewNop()
	}
	return &Importer{repo: repo, log: log}
}

// Import reads the file named in config and upserts its items. Items are
// matched on (kind, level, term); existing matches keep their review state.
func (im *Importer) Import(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	var (
		records []record
		err     error
	)
	switch strings.ToLower(filepath.Ext(config.FilePath)) {
	case ".csv":
		records, err = readCSV(config)
	case ".yaml", ".yml":
		records, err = readYAML(config)
	case ".xlsx", ".xlsm":
		records, err = readExcel(config)
	default:
		return nil, errors.Errorf("unsupported file type %q", filepath.Ext(config.FilePath))
	}
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}
	loaded := make(map[string]bool)

	for _, rec := range records {
		result.TotalProcessed++

		kind, level, err := resolve(rec, config)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rec.Row, err))
			continue
		}

		if config.SkipIfLoaded {
			key := string(kind) + "/" + string(level)
			skip, checked := loaded[key]
			if !checked {
				count, err := im.repo.CountByLevel(ctx, kind, level)
				if err != nil {
					return nil, err
				}
				skip = count > 0
				loaded[key] = skip
				if skip {
					im.log.Info("Level already loaded, skipping", "kind", kind, "level", level, "items", count)
				}
			}
			if skip {
				result.Skipped++
				continue
			}
		}

		if err := im.processRecord(ctx, rec, kind, level, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rec.Row, err))
		}
	}

	im.log.Info("Import finished",
		"file", config.FilePath,
		"processed", result.TotalProcessed,
		"created", result.Created,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"errors", len(result.Errors))
	return result, nil
}

// processRecord creates the item or refreshes the content of an existing one
func (im *Importer) processRecord(ctx context.Context, rec record, kind models.ItemKind, level models.JLPTLevel, result *ImportResult) error {
	term := strings.TrimSpace(rec.Term)
	meaning := strings.TrimSpace(rec.Meaning)
	if term == "" {
		return errors.New("term cannot be empty")
	}
	if meaning == "" {
		return errors.New("meaning cannot be empty")
	}

	existing, err := im.repo.GetByTerm(ctx, kind, level, term)
	if err != nil && !errors.Is(err, database.ErrItemNotFound) {
		return errors.Wrap(err, "failed to search for existing item")
	}

	if existing != nil {
		existing.Reading = strings.TrimSpace(rec.Reading)
		existing.Meaning = meaning
		existing.Examples = rec.Examples
		if err := im.repo.Put(ctx, existing); err != nil {
			return errors.Wrap(err, "failed to update item")
		}
		result.Updated++
		return nil
	}

	item := &models.LearnableItem{
		ID:       uuid.NewString(),
		Kind:     kind,
		Level:    level,
		Term:     term,
		Reading:  strings.TrimSpace(rec.Reading),
		Meaning:  meaning,
		Examples: rec.Examples,
	}
	if err := im.repo.Put(ctx, item); err != nil {
		return errors.Wrap(err, "failed to create item")
	}
	result.Created++
	return nil
}

func resolve(rec record, config ImportConfig) (models.ItemKind, models.JLPTLevel, error) {
	kind := config.Kind
	if s := strings.ToLower(strings.TrimSpace(rec.Kind)); s != "" {
		kind = models.ItemKind(s)
	}
	if !kind.Valid() {
		return "", "", errors.Errorf("unknown item kind %q", kind)
	}

	level := config.Level
	if s := strings.TrimSpace(rec.Level); s != "" {
		parsed, err := models.ParseLevel(s)
		if err != nil {
			return "", "", err
		}
		level = parsed
	}
	if !level.Valid() {
		return "", "", errors.Wrapf(models.ErrUnknownLevel, "%q", level)
	}
	return kind, level, nil
}

// readExcel reads rows from a workbook
func readExcel(config ImportConfig) ([]record, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open Excel file")
	}
	defer f.Close()

	sheet := config.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get rows of sheet %q", sheet)
	}

	columns, err := columnIndexes(config)
	if err != nil {
		return nil, err
	}

	var records []record
	for i, row := range rows {
		// Skip header rows
		if i < config.StartRow-1 {
			continue
		}
		if rowIsBlank(row) {
			continue
		}
		records = append(records, columns.record(row, i+1))
	}
	return records, nil
}

// readCSV reads rows from a comma separated file using the same column letters
func readCSV(config ImportConfig) ([]record, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open CSV file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	columns, err := columnIndexes(config)
	if err != nil {
		return nil, err
	}

	var records []record
	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "error reading CSV")
		}
		rowNum++

		if rowNum < config.StartRow || rowIsBlank(row) {
			continue
		}
		records = append(records, columns.record(row, rowNum))
	}
	return records, nil
}

// yamlDataset is the layout of a YAML dataset file
type yamlDataset struct {
	Kind  string `yaml:"kind"`
	Level string `yaml:"level"`
	Items []struct {
		Term     string   `yaml:"term"`
		Reading  string   `yaml:"reading"`
		Meaning  string   `yaml:"meaning"`
		Examples []string `yaml:"examples"`
		Level    string   `yaml:"level"`
		Kind     string   `yaml:"kind"`
	} `yaml:"items"`
}

// readYAML reads a dataset document; file-level kind and level apply to
// items that do not set their own
func readYAML(config ImportConfig) ([]record, error) {
	raw, err := os.ReadFile(config.FilePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read YAML file")
	}

	var doc yamlDataset
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to parse YAML file")
	}

	records := make([]record, 0, len(doc.Items))
	for i, it := range doc.Items {
		rec := record{
			Row:      i + 1,
			Term:     it.Term,
			Reading:  it.Reading,
			Meaning:  it.Meaning,
			Examples: it.Examples,
			Level:    firstNonEmpty(it.Level, doc.Level),
			Kind:     firstNonEmpty(it.Kind, doc.Kind),
		}
		records = append(records, rec)
	}
	return records, nil
}

// columnSet holds zero-based column indexes, -1 for unused columns
type columnSet struct {
	term, reading, meaning, examples, level, kind int
}

func columnIndexes(config ImportConfig) (columnSet, error) {
	var cs columnSet
	targets := []struct {
		name string
		dst  *int
	}{
		{config.TermColumn, &cs.term},
		{config.ReadingColumn, &cs.reading},
		{config.MeaningColumn, &cs.meaning},
		{config.ExamplesColumn, &cs.examples},
		{config.LevelColumn, &cs.level},
		{config.KindColumn, &cs.kind},
	}
	for _, t := range targets {
		if t.name == "" {
			*t.dst = -1
			continue
		}
		n, err := excelize.ColumnNameToNumber(t.name)
		if err != nil {
			return cs, errors.Wrapf(err, "invalid column %q", t.name)
		}
		*t.dst = n - 1
	}
	if cs.term == -1 {
		return cs, errors.New("term column is required")
	}
	return cs, nil
}

func (cs columnSet) record(row []string, rowNum int) record {
	cell := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	return record{
		Row:      rowNum,
		Term:     cell(cs.term),
		Reading:  cell(cs.reading),
		Meaning:  cell(cs.meaning),
		Examples: splitExamples(cell(cs.examples)),
		Level:    cell(cs.level),
		Kind:     cell(cs.kind),
	}
}

func splitExamples(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, "|") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func rowIsBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"harvest-analytics-api/internal/models"
	"harvest-analytics-api/internal/storage"
	"harvest-analytics-api/internal/util"
)

// FileProcessor turns an uploaded spreadsheet into persisted normalized
// rows. Sheets are classified independently, so one workbook can carry
// production, potential and meta tables at once.
type FileProcessor struct {
	store                      *storage.Store
	processor                  *Processor
	allowUnsafeDuplicateIngest bool
}

func NewFileProcessor(store *storage.Store, serialOffset time.Duration, allowUnsafeDuplicateIngest bool) *FileProcessor {
	return &FileProcessor{
		store:                      store,
		processor:                  NewProcessor(serialOffset),
		allowUnsafeDuplicateIngest: allowUnsafeDuplicateIngest,
	}
}

// ProcessXLSX ingests every recognizable sheet of a workbook. A file
// whose hash was seen before short-circuits to "already_ingested".
func (p *FileProcessor) ProcessXLSX(fileData []byte, filename string) (*models.IngestResponse, error) {
	fileHash := util.SHA256Hex(fileData)

	existing, err := p.store.FindUploadByHash(fileHash)
	if err != nil {
		return nil, fmt.Errorf("error checking file hash: %w", err)
	}
	if existing != nil && !p.allowUnsafeDuplicateIngest {
		return &models.IngestResponse{
			Status:   "already_ingested",
			UploadID: &existing.ID,
		}, nil
	}

	f, err := excelize.OpenReader(bytes.NewReader(fileData))
	if err != nil {
		return nil, fmt.Errorf("error opening XLSX: %w", err)
	}
	defer f.Close()

	uploadID, err := p.createUpload(filename, fileHash, existing)
	if err != nil {
		return nil, err
	}

	sheetKinds := make(map[string]string)
	rowsInserted := make(map[string]int)
	var warnings []string

	for _, sheetName := range f.GetSheetList() {
		matrix, err := f.GetRows(sheetName)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("sheet %s: unreadable, skipped", sheetName))
			continue
		}

		kind, count, warns := p.ingestMatrix(uploadID, matrix, sheetName+" "+filename, models.SheetUnknown)
		sheetKinds[sheetName] = string(kind)
		if kind != models.SheetUnknown {
			rowsInserted[string(kind)] += count
		}
		warnings = append(warnings, warns...)
	}

	if err := p.store.FinishUpload(uploadID, sheetKinds, rowsInserted); err != nil {
		return nil, fmt.Errorf("error finishing upload: %w", err)
	}

	return &models.IngestResponse{
		Status:       "ingested",
		UploadID:     &uploadID,
		SheetKinds:   sheetKinds,
		RowsInserted: rowsInserted,
		Warnings:     warnings,
	}, nil
}

// ProcessCSV ingests a single CSV table. kindOverride skips detection
// when the caller already knows what the file is.
func (p *FileProcessor) ProcessCSV(fileData []byte, filename string, kindOverride models.SheetKind) (*models.IngestResponse, error) {
	fileHash := util.SHA256Hex(fileData)

	existing, err := p.store.FindUploadByHash(fileHash)
	if err != nil {
		return nil, fmt.Errorf("error checking file hash: %w", err)
	}
	if existing != nil && !p.allowUnsafeDuplicateIngest {
		return &models.IngestResponse{
			Status:   "already_ingested",
			UploadID: &existing.ID,
		}, nil
	}

	matrix, err := readCSVMatrix(fileData)
	if err != nil {
		return nil, fmt.Errorf("error parsing CSV: %w", err)
	}

	uploadID, err := p.createUpload(filename, fileHash, existing)
	if err != nil {
		return nil, err
	}

	kind, count, warnings := p.ingestMatrix(uploadID, matrix, filename, kindOverride)

	sheetKinds := map[string]string{filename: string(kind)}
	rowsInserted := map[string]int{}
	if kind != models.SheetUnknown {
		rowsInserted[string(kind)] = count
	}

	if err := p.store.FinishUpload(uploadID, sheetKinds, rowsInserted); err != nil {
		return nil, fmt.Errorf("error finishing upload: %w", err)
	}

	return &models.IngestResponse{
		Status:       "ingested",
		UploadID:     &uploadID,
		SheetKinds:   sheetKinds,
		RowsInserted: rowsInserted,
		Warnings:     warnings,
	}, nil
}

func (p *FileProcessor) createUpload(filename, fileHash string, existing *models.Upload) (int64, error) {
	if existing != nil {
		// Unsafe re-ingest keeps the original upload record; the row
		// hashes still deduplicate individual rows.
		return existing.ID, nil
	}
	id, err := p.store.CreateUpload(filename, fileHash)
	if err != nil {
		return 0, fmt.Errorf("error creating upload record: %w", err)
	}
	return id, nil
}

// ingestMatrix classifies one table and stores its normalized rows. A
// sheet yielding zero usable rows is a normal outcome, not an error.
func (p *FileProcessor) ingestMatrix(uploadID int64, matrix [][]string, name string, kindOverride models.SheetKind) (models.SheetKind, int, []string) {
	kind := kindOverride
	headerRow := 0
	if kind == models.SheetUnknown || kind == "" {
		det := DetectSheet(matrix, name)
		kind = det.Kind
		headerRow = det.HeaderRow
	}

	var (
		count int
		err   error
	)

	switch kind {
	case models.SheetProduction:
		count, err = p.store.InsertProductionRows(uploadID, p.processor.NormalizeProduction(matrix, headerRow))
	case models.SheetPotential:
		count, err = p.store.InsertPotentialRows(uploadID, p.processor.NormalizePotential(matrix, headerRow))
	case models.SheetMeta:
		count, err = p.store.InsertMetaRows(uploadID, p.processor.NormalizeMeta(matrix, headerRow))
	case models.SheetSeason:
		count, err = p.store.InsertSeasonRows(uploadID, p.processor.NormalizeSeason(matrix, headerRow))
	default:
		return models.SheetUnknown, 0, []string{fmt.Sprintf("%s: unrecognized layout, skipped", name)}
	}

	if err != nil {
		return kind, count, []string{fmt.Sprintf("%s: %v", name, err)}
	}
	return kind, count, nil
}

// readCSVMatrix tolerates ragged rows and sniffs the delimiter: vendor
// exports in this domain come both comma- and semicolon-separated.
func readCSVMatrix(fileData []byte) ([][]string, error) {
	firstLine := fileData
	if i := bytes.IndexByte(fileData, '\n'); i >= 0 {
		firstLine = fileData[:i]
	}

	reader := csv.NewReader(bytes.NewReader(fileData))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	if bytes.Count(firstLine, []byte(";")) > bytes.Count(firstLine, []byte(",")) {
		reader.Comma = ';'
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	// Strip a UTF-8 BOM if the export carries one.
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\uFEFF")
	}
	return records, nil
}

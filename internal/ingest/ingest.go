package ingest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tealeg/xlsx/v2"

	"github.com/kollab_agentic/backend/internal/models"
)

// Parse converts an uploaded file into feedback records based on its
// extension. Supported formats: .csv, .xlsx, .xls, .json, .txt.
func Parse(filename string, data []byte) ([]models.FeedbackRecord, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv":
		return parseCSV(data)
	case ".xlsx", ".xls":
		return parseXLSX(data)
	case ".json":
		return parseJSON(data)
	case ".txt":
		return parseText(data)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", ext)
	}
}

func parseCSV(data []byte) ([]models.FeedbackRecord, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv parse: %w", err)
	}
	return rowsToRecords(rows), nil
}

func parseXLSX(data []byte) ([]models.FeedbackRecord, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, fmt.Errorf("xlsx open: %w", err)
	}
	if len(f.Sheets) == 0 {
		return nil, nil
	}
	sheet := f.Sheets[0]
	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rowsToRecords(rows), nil
}

func parseJSON(data []byte) ([]models.FeedbackRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	// A single object becomes a one-record list for consistent handling.
	if trimmed[0] == '{' {
		var rec models.FeedbackRecord
		if err := json.Unmarshal(trimmed, &rec); err != nil {
			return nil, fmt.Errorf("json parse: %w", err)
		}
		return []models.FeedbackRecord{rec}, nil
	}
	var recs []models.FeedbackRecord
	if err := json.Unmarshal(trimmed, &recs); err != nil {
		return nil, fmt.Errorf("json parse: %w", err)
	}
	return recs, nil
}

func parseText(data []byte) ([]models.FeedbackRecord, error) {
	content := strings.TrimSpace(string(data))
	if content == "" {
		return nil, nil
	}
	lines := strings.Split(content, "\n")

	// Comma in the first line suggests embedded CSV. Fall back to a
	// single document when the rows do not line up with the header.
	if strings.Contains(lines[0], ",") {
		r := csv.NewReader(strings.NewReader(content))
		r.FieldsPerRecord = -1
		if rows, err := r.ReadAll(); err == nil {
			if recs := rowsToRecords(rows); len(recs) > 0 {
				return recs, nil
			}
		}
	}

	return []models.FeedbackRecord{{"text": content}}, nil
}

// rowsToRecords zips header cells with data rows. Rows whose length
// does not match the header are skipped.
func rowsToRecords(rows [][]string) []models.FeedbackRecord {
	if len(rows) < 2 {
		return nil
	}
	headers := rows[0]
	records := make([]models.FeedbackRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) != len(headers) {
			continue
		}
		rec := make(models.FeedbackRecord, len(headers))
		for i, h := range headers {
			rec[h] = row[i]
		}
		records = append(records, rec)
	}
	return records
}

package sources

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"

	"explorer/internal/dataset"
	"explorer/internal/domain"
)

// ── CSV File Source ─────────────────────────────────────────
// Reads the dataset from a local CSV file. Cells stay text; schema
// inference decides their types.

type csvFileSource struct{}

func init() { dataset.RegisterSource(&csvFileSource{}) }

func (s *csvFileSource) Spec() dataset.SourceSpec {
	return dataset.SourceSpec{
		Type:  "csv_file",
		Label: "CSV File",
		ConfigFields: []dataset.ConfigField{
			{Key: "filePath", Label: "File Path", Type: "file", Required: true, Help: "Path to the CSV file"},
			{Key: "delimiter", Label: "Delimiter", Type: "string", Required: false, Default: ",", Help: "Column delimiter (default: comma)"},
			{Key: "hasHeader", Label: "Has Header", Type: "select", Required: false, Options: []string{"true", "false"}, Default: "true", Help: "Whether the first row contains column names"},
		},
	}
}

func (s *csvFileSource) Fetch(ctx context.Context, cfg dataset.SourceConfig) ([]domain.RawRow, error) {
	const source = "csv_file"

	headers, records, err := readCSVFile(cfg)
	if err != nil {
		return nil, domain.NewFetchError(source, "Failed to fetch dataset", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	values := make([][]any, len(records))
	for i, record := range records {
		row := make([]any, len(headers))
		for j := range headers {
			if j < len(record) {
				row[j] = record[j]
			}
		}
		values[i] = row
	}
	return dataset.RowsFromColumns(headers, values), nil
}

func readCSVFile(cfg dataset.SourceConfig) ([]string, [][]string, error) {
	filePath := cfg.String("filePath")
	if filePath == "" {
		return nil, nil, errors.New("filePath is required")
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	if delim := cfg.String("delimiter"); delim != "" {
		reader.Comma = []rune(delim)[0]
	}
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	// Short rows are padded with nulls.
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return []string{}, nil, nil
	}

	if strings.EqualFold(cfg.String("hasHeader"), "false") {
		headers := make([]string, len(records[0]))
		for i := range headers {
			headers[i] = fmt.Sprintf("Column %d", i+1)
		}
		return headers, records, nil
	}
	return records[0], records[1:], nil
}

package sources

import (
	"context"
	"fmt"
	"os"

	"explorer/internal/dataset"
	"explorer/internal/domain"
)

// ── JSON File Source ────────────────────────────────────────
// Reads the dataset from a local JSON file.

type jsonFileSource struct{}

func init() { dataset.RegisterSource(&jsonFileSource{}) }

func (s *jsonFileSource) Spec() dataset.SourceSpec {
	return dataset.SourceSpec{
		Type:  "json_file",
		Label: "JSON File",
		ConfigFields: []dataset.ConfigField{
			{Key: "filePath", Label: "File Path", Type: "file", Required: true, Help: "Path to the JSON file"},
			{Key: "dataPath", Label: "Data Path", Type: "string", Required: false, Help: "Dot-separated path to the array (e.g., 'data.items'). Leave empty if root is an array."},
		},
	}
}

func (s *jsonFileSource) Fetch(ctx context.Context, cfg dataset.SourceConfig) ([]domain.RawRow, error) {
	const source = "json_file"

	filePath := cfg.String("filePath")
	if filePath == "" {
		return nil, domain.NewFetchError(source, "Failed to fetch dataset", fmt.Errorf("filePath is required"))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, domain.NewFetchError(source, "Failed to fetch dataset", fmt.Errorf("read file: %w", err))
	}
	return dataset.DecodeRows(source, data, cfg.String("dataPath"))
}

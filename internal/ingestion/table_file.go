package ingestion

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/guttosm/brokerfees/internal/validation"
)

// readTable opens and decodes one candidate table file.
func readTable(path string) (validation.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	t, err := validation.Decode(data)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// writeTable writes t as indented JSON, replacing any existing file.
func writeTable(path string, t validation.Table) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

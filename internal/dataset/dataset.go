// Package dataset loads contact record datasets from local files or object
// storage so the same records.json feeds ingestion, the data service, and
// local experiments.
package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/liyue/tracemap/internal/domain"
)

// Source yields a full record dataset.
type Source interface {
	Load(ctx context.Context) ([]domain.ContactRecord, error)
}

// FileSource reads a JSON array of records from the local filesystem.
type FileSource struct {
	Path string
}

func (s FileSource) Load(_ context.Context) ([]domain.ContactRecord, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.Path, err)
	}
	defer file.Close()

	records, err := decodeRecords(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.Path, err)
	}
	return records, nil
}

// WriteFile stores records as a JSON array at path.
func WriteFile(path string, records []domain.ContactRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

func decodeRecords(r io.Reader) ([]domain.ContactRecord, error) {
	var records []domain.ContactRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, err
	}
	return records, nil
}

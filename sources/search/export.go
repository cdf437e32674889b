package search

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"autofilter/sources/persistence/entities"
	"autofilter/sources/platform"
	"autofilter/sources/tracing"
)

const (
	ExportJSON = "json"
	ExportCSV  = "csv"
)

// Export serializes the whole catalog for offline analysis. Supported
// formats are json and csv; anything else is an error before the
// catalog is even read.
func (x *Engine) Export(ctx context.Context, log *tracing.Logger, format string) ([]byte, string, error) {
	defer tracing.ProfilePoint(log, "Catalog export completed", "search.export", "format", format)()

	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportJSON
	}
	if format != ExportJSON && format != ExportCSV {
		return nil, "", fmt.Errorf("unsupported export format: %s", format)
	}

	files, err := x.files.ListAll(ctx, log)
	if err != nil {
		return nil, "", err
	}

	if format == ExportCSV {
		payload, err := exportCSV(files)
		if err != nil {
			return nil, "", err
		}
		return payload, "catalog.csv", nil
	}

	payload, err := json.MarshalIndent(files, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("failed to serialize catalog: %w", err)
	}
	return payload, "catalog.json", nil
}

func exportCSV(files []*entities.File) ([]byte, error) {
	var buffer bytes.Buffer
	writer := csv.NewWriter(&buffer)

	header := []string{"file_id", "file_name", "size", "type", "year", "genre", "keywords"}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, file := range files {
		record := []string{
			file.FileID,
			file.FileName,
			strconv.FormatInt(file.Size, 10),
			platform.StringValue(file.Type, ""),
			platform.StringValue(file.Year, ""),
			platform.StringValue(file.Genre, ""),
			strings.Join(file.Keywords, ";"),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	return buffer.Bytes(), nil
}

package output

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aluiziolira/go-catalog-crawler/models"
)

// DualWriter outputs to both CSV and JSON formats.
type DualWriter struct {
	csvWriter  *CSVWriter
	jsonWriter *JSONWriter
}

// NewDualWriter creates a new dual writer for both CSV and JSON output.
func NewDualWriter(csvFilename, jsonFilename string, indent bool) (*DualWriter, error) {
	csvWriter, err := NewCSVWriter(csvFilename)
	if err != nil {
		return nil, fmt.Errorf("create csv writer: %w", err)
	}

	jsonWriter, err := NewJSONWriter(jsonFilename, indent)
	if err != nil {
		csvWriter.Close()
		return nil, fmt.Errorf("create json writer: %w", err)
	}

	return &DualWriter{
		csvWriter:  csvWriter,
		jsonWriter: jsonWriter,
	}, nil
}

// Write writes sites to both formats.
func (dw *DualWriter) Write(sites []models.SiteEntry) error {
	if err := dw.csvWriter.Write(sites); err != nil {
		return fmt.Errorf("csv write: %w", err)
	}
	if err := dw.jsonWriter.Write(sites); err != nil {
		return fmt.Errorf("json write: %w", err)
	}
	return nil
}

// Close closes both writers.
func (dw *DualWriter) Close() error {
	var errs []error
	if err := dw.csvWriter.Close(); err != nil {
		errs = append(errs, fmt.Errorf("csv close: %w", err))
	}
	if err := dw.jsonWriter.Close(); err != nil {
		errs = append(errs, fmt.Errorf("json close: %w", err))
	}
	return errors.Join(errs...)
}

// Validate validates both output files.
func (dw *DualWriter) Validate() error {
	var errs []error
	if err := dw.csvWriter.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("csv validation: %w", err))
	}
	if err := dw.jsonWriter.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("json validation: %w", err))
	}
	return errors.Join(errs...)
}

// NewWriter picks a writer for format. In dual mode filename names the JSON
// file and the CSV file sits next to it with a .csv extension.
func NewWriter(format, filename string, indent bool) (OutputWriter, error) {
	switch format {
	case "json":
		return NewJSONWriter(filename, indent)
	case "csv":
		return NewCSVWriter(filename)
	case "dual":
		base := strings.TrimSuffix(strings.TrimSuffix(filename, ".json"), ".csv")
		return NewDualWriter(base+".csv", base+".json", indent)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

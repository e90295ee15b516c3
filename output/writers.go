// Package output writes crawl results to disk.
package output

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/aluiziolira/go-catalog-crawler/models"
)

// OutputWriter defines the interface for result output.
type OutputWriter interface {
	Write(sites []models.SiteEntry) error
	Close() error
	Validate() error
}

// CSVWriter writes one row per product.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

var csvHeader = []string{"site_name", "site_url", "category", "id", "name", "price", "rating"}

// NewCSVWriter initialises a CSV writer and writes the header row.
func NewCSVWriter(filename string) (*CSVWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create csv file: %w", err)
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(csvHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("flush csv header: %w", err)
	}

	return &CSVWriter{
		file:   f,
		writer: writer,
	}, nil
}

// Write appends rows in site order, then category name order, then id order.
func (cw *CSVWriter) Write(sites []models.SiteEntry) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	for _, site := range sites {
		for _, category := range site.CategoryNames() {
			for _, p := range site.Categories[category] {
				record := []string{
					site.SiteName,
					site.URL,
					category,
					strconv.Itoa(p.ID),
					p.Name,
					p.Price,
					strconv.Itoa(p.Rating),
				}
				if err := cw.writer.Write(record); err != nil {
					return fmt.Errorf("write csv record: %w", err)
				}
			}
		}
	}
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return nil
}

// Close flushes and closes the file handle.
func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv writer: %w", err)
	}
	return cw.file.Close()
}

// Validate ensures the file has content.
func (cw *CSVWriter) Validate() error {
	return validateSize(cw.file, "csv")
}

// JSONWriter writes the nested site → category → product document.
type JSONWriter struct {
	file   *os.File
	writer *bufio.Writer
	indent bool
	mu     sync.Mutex
}

// NewJSONWriter initialises the JSON writer. With indent the document is
// pretty-printed.
func NewJSONWriter(filename string, indent bool) (*JSONWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create json file: %w", err)
	}

	return &JSONWriter{
		file:   f,
		writer: bufio.NewWriter(f),
		indent: indent,
	}, nil
}

// Write encodes sites as one JSON array.
func (jw *JSONWriter) Write(sites []models.SiteEntry) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if sites == nil {
		sites = []models.SiteEntry{}
	}
	encoder := json.NewEncoder(jw.writer)
	if jw.indent {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(sites); err != nil {
		return fmt.Errorf("encode json document: %w", err)
	}

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return nil
}

// Close flushes buffers and closes the underlying file.
func (jw *JSONWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return jw.file.Close()
}

// Validate ensures the JSON file has data.
func (jw *JSONWriter) Validate() error {
	return validateSize(jw.file, "json")
}

func validateSize(f *os.File, kind string) error {
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s file: %w", kind, err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("%s file is empty", kind)
	}
	return nil
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}

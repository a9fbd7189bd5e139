package audit

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	byteOrderMark  = "\ufeff"
	fieldSeparator = ';'
)

// CSVSink writes records to a semicolon separated file that spreadsheet tools open directly.
// The file starts with a UTF-8 byte order mark and a header row.
type CSVSink struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	writer *csv.Writer
	width  int
	rows   int
}

// CreateCSV truncates or creates dir/name.csv and writes the header.
func CreateCSV(dir, name string, header ...string) (*CSVSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}
	path := filepath.Join(dir, name+".csv")
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit file %s: %w", path, err)
	}

	s := &CSVSink{path: path, file: file, writer: csv.NewWriter(file), width: len(header)}
	s.writer.Comma = fieldSeparator
	s.writer.UseCRLF = true

	if _, err := file.WriteString(byteOrderMark); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write audit file %s: %w", path, err)
	}
	if err := s.write(header); err != nil {
		file.Close()
		return nil, err
	}
	return s, nil
}

// Record appends one row and flushes it to disk.
func (s *CSVSink) Record(fields ...string) error {
	if len(fields) != s.width {
		return fmt.Errorf("audit file %s expects %d fields, got %d", s.path, s.width, len(fields))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(fields); err != nil {
		return err
	}
	s.rows++
	return nil
}

func (s *CSVSink) write(fields []string) error {
	if err := s.writer.Write(fields); err != nil {
		return fmt.Errorf("failed to write audit file %s: %w", s.path, err)
	}
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return fmt.Errorf("failed to flush audit file %s: %w", s.path, err)
	}
	return nil
}

// Path returns the file location.
func (s *CSVSink) Path() string { return s.path }

// Rows returns the number of records written, header excluded.
func (s *CSVSink) Rows() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows
}

// Close flushes and closes the file.
func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

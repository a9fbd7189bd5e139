package pipeline

import (
	"errors"

	"github.com/stwalsh4118/reclaim/internal/audit"
	"github.com/stwalsh4118/reclaim/internal/importer"
)

// Audit file names, without extension.
const (
	DonorsErrors       = "donors-error"
	DonorsCorrections  = "donors-auto-correct"
	PersonsErrors      = "persons-error"
	PersonsCorrections = "persons-auto-correct"
)

// AuditFiles owns the audit CSV files of a run and mirrors them into a
// journal for the optional workbook.
type AuditFiles struct {
	Donors  audit.Trail
	Persons audit.Trail

	journal  *audit.Journal
	files    []*audit.CSVSink
	paths    []string
	workbook string
}

// OpenAudit creates the audit files in dir. When workbook is not empty,
// Close also writes every finding to that xlsx file.
func OpenAudit(dir, workbook string) (*AuditFiles, error) {
	a := &AuditFiles{journal: audit.NewJournal(), workbook: workbook}

	open := func(name string, header []string) (audit.Sink, error) {
		file, err := audit.CreateCSV(dir, name, header...)
		if err != nil {
			return nil, err
		}
		a.files = append(a.files, file)
		a.paths = append(a.paths, file.Path())
		return audit.Multi(file, a.journal.Sink(name, header...)), nil
	}

	sinks := []struct {
		name   string
		header []string
		target *audit.Sink
	}{
		{DonorsErrors, importer.DonorAuditHeader, &a.Donors.Errors},
		{DonorsCorrections, importer.DonorAuditHeader, &a.Donors.Corrections},
		{PersonsErrors, importer.PersonAuditHeader, &a.Persons.Errors},
		{PersonsCorrections, importer.PersonAuditHeader, &a.Persons.Corrections},
	}
	for _, s := range sinks {
		sink, err := open(s.name, s.header)
		if err != nil {
			a.closeFiles()
			return nil, err
		}
		*s.target = sink
	}
	return a, nil
}

// Journal returns the in-memory copy of every finding.
func (a *AuditFiles) Journal() *audit.Journal {
	return a.journal
}

// Paths returns the CSV file paths. They stay available after Close.
func (a *AuditFiles) Paths() []string {
	return append([]string(nil), a.paths...)
}

// Close flushes the CSV files and writes the workbook.
func (a *AuditFiles) Close() error {
	err := a.closeFiles()
	if a.workbook != "" {
		err = errors.Join(err, audit.WriteWorkbook(a.workbook, a.journal))
	}
	return err
}

func (a *AuditFiles) closeFiles() error {
	var errs []error
	for _, f := range a.files {
		errs = append(errs, f.Close())
	}
	a.files = nil
	return errors.Join(errs...)
}

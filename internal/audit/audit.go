// Package audit records data-quality findings for manual follow-up.
package audit

import (
	"errors"
	"sync"
)

// Sink receives audit records. Every record has the fields of the sink's header.
type Sink interface {
	Record(fields ...string) error
}

// Trail groups the two outputs kept per entity type.
type Trail struct {
	Errors      Sink
	Corrections Sink
}

// Discard is a Sink that drops every record.
var Discard Sink = discard{}

type discard struct{}

func (discard) Record(...string) error { return nil }

// Multi fans a record out to every sink.
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}

type multi []Sink

func (m multi) Record(fields ...string) error {
	var errs []error
	for _, s := range m {
		if err := s.Record(fields...); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Journal keeps records in memory, grouped by sink name in creation order.
type Journal struct {
	mu      sync.Mutex
	names   []string
	headers map[string][]string
	records map[string][][]string
}

// NewJournal returns an empty Journal.
func NewJournal() *Journal {
	return &Journal{
		headers: make(map[string][]string),
		records: make(map[string][][]string),
	}
}

// Sink returns a named Sink backed by the journal.
func (j *Journal) Sink(name string, header ...string) Sink {
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, ok := j.headers[name]; !ok {
		j.names = append(j.names, name)
	}
	j.headers[name] = header
	return &journalSink{journal: j, name: name}
}

// Names returns the sink names in creation order.
func (j *Journal) Names() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.names...)
}

// Header returns the header of the named sink.
func (j *Journal) Header(name string) []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.headers[name]
}

// Records returns a copy of the records written to the named sink.
func (j *Journal) Records(name string) [][]string {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([][]string, len(j.records[name]))
	copy(out, j.records[name])
	return out
}

type journalSink struct {
	journal *Journal
	name    string
}

func (s *journalSink) Record(fields ...string) error {
	s.journal.mu.Lock()
	defer s.journal.mu.Unlock()
	s.journal.records[s.name] = append(s.journal.records[s.name], append([]string(nil), fields...))
	return nil
}

package audit

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestCreateCSV_WritesBOMHeaderAndRecords(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "audits")

	sink, err := CreateCSV(dir, "persons-error", "id", "first_name", "last_name")
	require.NoError(t, err)
	require.NoError(t, sink.Record("12", "Anna", "de Vries"))
	require.NoError(t, sink.Record("13", "Jan; Piet", "Jansen"))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(filepath.Join(dir, "persons-error.csv"))
	require.NoError(t, err)

	want := "\ufeffid;first_name;last_name\r\n12;Anna;de Vries\r\n13;\"Jan; Piet\";Jansen\r\n"
	assert.Equal(t, want, string(data))
	assert.Equal(t, 2, sink.Rows())
}

func TestCreateCSV_TruncatesPreviousRun(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateCSV(dir, "donors-error", "id", "name")
	require.NoError(t, err)
	require.NoError(t, first.Record("1", "Old"))
	require.NoError(t, first.Close())

	second, err := CreateCSV(dir, "donors-error", "id", "name")
	require.NoError(t, err)
	require.NoError(t, second.Close())

	data, err := os.ReadFile(second.Path())
	require.NoError(t, err)
	assert.Equal(t, "\ufeffid;name\r\n", string(data))
}

func TestCSVSink_RejectsWrongWidth(t *testing.T) {
	sink, err := CreateCSV(t.TempDir(), "donors-error", "id", "name")
	require.NoError(t, err)
	defer sink.Close()

	assert.Error(t, sink.Record("1"))
}

type failingSink struct{}

func (failingSink) Record(...string) error { return errors.New("disk full") }

func TestMulti_FansOutAndJoinsErrors(t *testing.T) {
	journal := NewJournal()
	sink := Multi(journal.Sink("donors-error", "id", "name"), failingSink{})

	err := sink.Record("1", "Acme")

	assert.EqualError(t, err, "disk full")
	assert.Equal(t, [][]string{{"1", "Acme"}}, journal.Records("donors-error"))
}

func TestWriteWorkbook(t *testing.T) {
	journal := NewJournal()
	errs := journal.Sink("persons-error", "id", "first_name", "last_name")
	journal.Sink("persons-auto-correct", "id", "first_name", "last_name")
	require.NoError(t, errs.Record("12", "Anna", "de Vries"))

	path := filepath.Join(t.TempDir(), "audit.xlsx")
	require.NoError(t, WriteWorkbook(path, journal))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"persons-error", "persons-auto-correct"}, f.GetSheetList())

	rows, err := f.GetRows("persons-error")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"id", "first_name", "last_name"}, {"12", "Anna", "de Vries"}}, rows)

	rows, err = f.GetRows("persons-auto-correct")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"id", "first_name", "last_name"}}, rows)
}

package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stwalsh4118/reclaim/internal/importer"
	"github.com/stwalsh4118/reclaim/internal/legacy"
	"github.com/stwalsh4118/reclaim/internal/mapping"
	"github.com/stwalsh4118/reclaim/internal/models"
	"github.com/stwalsh4118/reclaim/internal/postalcode"
	"github.com/stwalsh4118/reclaim/internal/repository"
)

var cutoff = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

func writeSeeds(t *testing.T, dir string) {
	t.Helper()
	seeds := map[string]string{
		importer.ActivitiesSeed: `[{"id": 1, "name": "Reparatie"}]`,
		importer.DonorsSeed:     `[{"id": 1, "name": "Computerhuis"}]`,
		importer.PersonsSeed:    `[{"id": 897, "first_name": "Sjef"}]`,
	}
	for name, content := range seeds {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
}

func newOptions(t *testing.T) (Options, *repository.MemoryStore, *legacy.MemorySource) {
	t.Helper()
	mapper, err := mapping.Default()
	require.NoError(t, err)
	index, err := postalcode.Load(filepath.Join("..", "postalcode", "testdata", "postal_codes.json"))
	require.NoError(t, err)

	dataDir := t.TempDir()
	writeSeeds(t, dataDir)

	store := repository.NewMemoryStore()
	source := legacy.NewMemorySource()
	return Options{
		Store:   store,
		Source:  source,
		Index:   index,
		Mapper:  mapper,
		Cutoff:  cutoff,
		DataDir: dataDir,
	}, store, source
}

func addLegacyData(source *legacy.MemorySource) {
	source.Add("Tbl_Gebruikers_NAW", map[string]interface{}{
		"Gebruikersnummer":   10,
		"Voornaam":           "Anna",
		"Achternaam":         "Jansen",
		"Postcode":           "1234AB",
		"Adres":              "Verkeerde straat",
		"Huisnummer":         "5",
		"Datum inschrijving": time.Date(2021, 1, 2, 0, 0, 0, 0, time.UTC),
	})
	source.Add("Tbl_computers", map[string]interface{}{
		"Computernummer":   100,
		"Type kast":        "Laptop",
		"Gebruikersnummer": 10,
		"Datum gift":       time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC),
	}, map[string]interface{}{
		"Computernummer": 101,
		"Type kast":      "Printer",
		"Datum gift":     time.Date(2021, 2, 2, 0, 0, 0, 0, time.UTC),
	})
	source.Add("Tbl_Reparaties_main", map[string]interface{}{
		"Reparatienummer": 500,
		"Probleem":        "Start niet",
		"Datum inname":    time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC),
		"Computernummer":  100,
		"Aangenomen door": "Sjef",
		"Status":          "Wachtend",
	})
	source.Add("Tbl_factuur", map[string]interface{}{
		"Factuurnummer": 700,
		"Datum":         time.Date(2021, 4, 1, 0, 0, 0, 0, time.UTC),
		"Klantnr":       10,
	})
	source.Add("Tbl_factuur_omschrijvingen", map[string]interface{}{
		"Factuurnummer":        700,
		"Computernummer":       100,
		"Produkt omschrijving": "Laptop",
	})
}

func TestNew_MissingDependency(t *testing.T) {
	opts, _, _ := newOptions(t)
	opts.Index = nil

	_, err := New(opts)
	assert.ErrorIs(t, err, ErrMissingDependency)
}

func TestPipeline_StepNames(t *testing.T) {
	opts, _, _ := newOptions(t)
	p, err := New(opts)
	require.NoError(t, err)

	assert.Equal(t, []string{
		StepPostalCodes, StepActivities, StepDonors, StepPersonsSeed, StepEquipment,
		StepPersons, StepTimesheets, StepTickets, StepProofOfIssues,
	}, p.StepNames())
	assert.Equal(t, stepOrder[:], p.StepNames())
	for _, s := range p.Steps() {
		assert.NotEmpty(t, s.Description, s.Name)
	}
}

func TestValidateSteps(t *testing.T) {
	assert.NoError(t, ValidateSteps())
	assert.NoError(t, ValidateSteps(StepTickets, StepPostalCodes))

	err := ValidateSteps(StepDonors, "invoices")
	assert.ErrorIs(t, err, ErrUnknownStep)
	assert.Contains(t, err.Error(), `"invoices"`)
}

func TestPipeline_Run(t *testing.T) {
	opts, store, source := newOptions(t)
	addLegacyData(source)
	auditFiles, err := OpenAudit(t.TempDir(), "")
	require.NoError(t, err)
	opts.Donors, opts.Persons = auditFiles.Donors, auditFiles.Persons

	p, err := New(opts)
	require.NoError(t, err)

	report, err := p.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, auditFiles.Close())
	require.Len(t, report.Steps, 9)

	byStep := map[string]importer.Result{}
	for _, s := range report.Steps {
		byStep[s.Step] = s.Result
	}
	assert.Equal(t, 5, byStep[StepPostalCodes].Inserted)
	assert.Equal(t, 1, byStep[StepActivities].Inserted)
	assert.Equal(t, 1, byStep[StepPersonsSeed].Inserted)
	assert.Equal(t, importer.Result{Inserted: 1, Failed: 1}, byStep[StepEquipment])
	assert.Equal(t, importer.Result{Skipped: 1}, byStep[StepPersons], "imported as owner of the equipment")
	assert.Equal(t, 1, byStep[StepTickets].Inserted)
	assert.Equal(t, 1, byStep[StepProofOfIssues].Inserted)

	assert.True(t, report.HasFailures())
	assert.Equal(t, 1, report.Total().Failed)

	assert.Equal(t, 1, store.Count(models.TableEquipment))
	assert.Equal(t, 2, store.Count(models.TablePersons))
	assert.Equal(t, [][]string{{"10", "Anna", "Jansen"}}, auditFiles.Journal().Records(PersonsCorrections))

	again, err := p.Run(context.Background())
	require.NoError(t, err)
	for _, s := range again.Steps {
		assert.Zero(t, s.Inserted, s.Step)
	}
}

func TestPipeline_RunSteps(t *testing.T) {
	opts, store, _ := newOptions(t)
	p, err := New(opts)
	require.NoError(t, err)

	report, err := p.RunSteps(context.Background(), StepActivities, StepPostalCodes, StepActivities)
	require.NoError(t, err)
	require.Len(t, report.Steps, 2)
	assert.Equal(t, StepPostalCodes, report.Steps[0].Step)
	assert.Equal(t, StepActivities, report.Steps[1].Step)
	assert.Equal(t, 1, store.Count(models.TableActivities))
	assert.Zero(t, store.Count(models.TableDonors))

	_, err = p.RunSteps(context.Background(), "invoices")
	assert.ErrorIs(t, err, ErrUnknownStep)
}

func TestPipeline_StopsAtFirstError(t *testing.T) {
	opts, store, _ := newOptions(t)
	require.NoError(t, os.Remove(filepath.Join(opts.DataDir, importer.ActivitiesSeed)))

	p, err := New(opts)
	require.NoError(t, err)

	report, err := p.Run(context.Background())
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "step activities:"))
	require.Len(t, report.Steps, 1)
	assert.Equal(t, StepPostalCodes, report.Steps[0].Step)
	assert.Zero(t, store.Count(models.TableDonors))
}

func TestReport_Total(t *testing.T) {
	r := Report{Steps: []StepReport{
		{Step: StepDonors, Result: importer.Result{Inserted: 2, Warnings: 1}},
		{Step: StepPersons, Result: importer.Result{Inserted: 1, Skipped: 3}},
	}}
	assert.Equal(t, importer.Result{Inserted: 3, Skipped: 3, Warnings: 1}, r.Total())
	assert.False(t, r.HasFailures())
}

func TestOpenAudit(t *testing.T) {
	dir := t.TempDir()
	workbook := filepath.Join(dir, "audit.xlsx")

	a, err := OpenAudit(dir, workbook)
	require.NoError(t, err)
	require.NoError(t, a.Donors.Errors.Record("61", "Leergeld"))
	paths := a.Paths()
	require.NoError(t, a.Close())

	assert.Equal(t, []string{
		filepath.Join(dir, DonorsErrors+".csv"),
		filepath.Join(dir, DonorsCorrections+".csv"),
		filepath.Join(dir, PersonsErrors+".csv"),
		filepath.Join(dir, PersonsCorrections+".csv"),
	}, paths)
	assert.Equal(t, paths, a.Paths(), "paths outlive the open files")

	data, err := os.ReadFile(filepath.Join(dir, DonorsErrors+".csv"))
	require.NoError(t, err)
	assert.Equal(t, "\ufeffid;name\r\n61;Leergeld\r\n", string(data))

	_, err = os.Stat(workbook)
	assert.NoError(t, err)
	assert.Equal(t, [][]string{{"61", "Leergeld"}}, a.Journal().Records(DonorsErrors))
}

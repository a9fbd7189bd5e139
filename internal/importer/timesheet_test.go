package importer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stwalsh4118/reclaim/internal/models"
)

// Access stores clock times on its epoch date.
func clockTime(h, m int) time.Time {
	return time.Date(1899, 12, 30, h, m, 0, 0, time.UTC)
}

func TestTimesheetImporter_ImportLegacy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.writeSeed(t, ActivitiesSeed, `[{"id": 1, "name": "Reparatie"}]`)
	_, err := NewActivityImporter(f.deps, f.seedDir+"/"+ActivitiesSeed).ImportSeed(ctx)
	require.NoError(t, err)

	f.source.Add(tblPersons, legacyPerson(10, nil))
	f.source.Add(tblAttendance,
		map[string]interface{}{"ID": 1, "Gebruikersnummer": 10, "Activiteit": 1, "Datum": day(2021, 2, 3),
			"Begintijd": clockTime(9, 30), "Eindtijd": clockTime(16, 0)},
		map[string]interface{}{"ID": 2, "Gebruikersnummer": 10, "Datum": day(2021, 2, 4), "Begintijd": clockTime(13, 0)},
		map[string]interface{}{"ID": 3, "Gebruikersnummer": 10, "Activiteit": 9, "Datum": day(2021, 2, 5)},
		map[string]interface{}{"ID": 4, "Gebruikersnummer": 404, "Datum": day(2021, 2, 6)},
		map[string]interface{}{"ID": 5, "Gebruikersnummer": 10, "Datum": day(2019, 2, 6)},
	)

	res, err := f.timesheet.ImportLegacy(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Inserted: 2, Skipped: 2, Warnings: 2}, res)

	rows := f.store.Rows(models.TableTimesheets)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0]["id"])
	assert.Equal(t, int64(10), rows[0]["person_id"])
	assert.Equal(t, int64(1), rows[0]["activity_id"])
	assert.Equal(t, time.Date(2021, 2, 3, 9, 30, 0, 0, time.UTC), rows[0]["started"])
	assert.Equal(t, time.Date(2021, 2, 3, 16, 0, 0, 0, time.UTC), rows[0]["finished"])

	assert.Equal(t, time.Date(2021, 2, 4, 13, 0, 0, 0, time.UTC), rows[1]["started"])
	assert.NotContains(t, rows[1], "finished")
	assert.NotContains(t, rows[1], "activity_id")

	assert.Equal(t, 1, f.store.Count(models.TablePersons))
}

func TestTimesheetImporter_TextClockTimes(t *testing.T) {
	f := newFixture(t)
	f.source.Add(tblPersons, legacyPerson(10, nil))
	f.source.Add(tblAttendance, map[string]interface{}{
		"ID": 6, "Gebruikersnummer": 10, "Datum": day(2021, 3, 1), "Begintijd": "09:30:00", "Eindtijd": "12:15:00",
	})

	res, err := f.timesheet.ImportLegacy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)

	rows := f.store.Rows(models.TableTimesheets)
	require.Len(t, rows, 1)
	assert.Equal(t, time.Date(2021, 3, 1, 9, 30, 0, 0, time.UTC), rows[0]["started"])
	assert.Equal(t, time.Date(2021, 3, 1, 12, 15, 0, 0, time.UTC), rows[0]["finished"])
}

func TestClock(t *testing.T) {
	d := time.Date(2021, 2, 3, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, d, clock(d, nil))
	c := clockTime(8, 15)
	assert.Equal(t, time.Date(2021, 2, 3, 8, 15, 0, 0, time.UTC), clock(d, &c))
}

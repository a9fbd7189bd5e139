package importer

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/stwalsh4118/reclaim/internal/legacy"
	"github.com/stwalsh4118/reclaim/internal/logger"
	"github.com/stwalsh4118/reclaim/internal/models"
)

// TimesheetImporter imports volunteer attendance.
type TimesheetImporter struct {
	deps    Deps
	persons Resolver
	log     *logger.Logger
}

// NewTimesheetImporter creates a TimesheetImporter.
func NewTimesheetImporter(d Deps, persons Resolver) *TimesheetImporter {
	return &TimesheetImporter{deps: d, persons: persons, log: d.logger("timesheet")}
}

// ImportLegacy imports every attendance entry dated after the cutoff.
func (i *TimesheetImporter) ImportLegacy(ctx context.Context) (Result, error) {
	q := legacy.From(tblAttendance).
		Filter(legacy.After(colAttendanceDate, i.deps.Cutoff)).
		Order(colAttendanceID)
	recs, err := i.deps.Source.Select(ctx, q)
	if err != nil {
		return Result{}, err
	}
	return importAll(ctx, i.deps, i.log, models.TableTimesheets, colAttendanceID, recs, i.importRecord)
}

func (i *TimesheetImporter) importRecord(ctx context.Context, id int64, rec legacy.Record, _ *Result) error {
	day, err := rec.Time(colAttendanceDate)
	if err != nil {
		return err
	}
	if day == nil {
		return skipf("attendance %d has no date", id)
	}
	begin, err := rec.Time("begintijd")
	if err != nil {
		return err
	}
	end, err := rec.Time("eindtijd")
	if err != nil {
		return err
	}

	ts := models.Timesheet{ID: id, Started: clock(*day, begin)}
	if end != nil {
		finished := clock(*day, end)
		ts.Finished = &finished
	}

	person, err := rec.ID(colPersonID)
	if err != nil {
		return err
	}
	ts.PersonID = person
	if ts.ActivityID, err = rec.Int("activiteit"); err != nil {
		return err
	}

	if ts.ActivityID != nil {
		known, err := i.deps.Store.Exists(ctx, models.TableActivities, sq.Eq{"id": *ts.ActivityID})
		if err != nil {
			return err
		}
		if !known {
			return skipf("activity %d unknown", *ts.ActivityID)
		}
	}

	err = i.persons.ImportByID(ctx, person)
	if errors.Is(err, ErrNotFound) {
		return skipf("person %d not found", person)
	}
	if err != nil {
		return err
	}

	return i.deps.Store.Insert(ctx, models.TableTimesheets, ts.Row())
}

// clock places the time of day of t on day. An absent t yields the start of day.
func clock(day time.Time, t *time.Time) time.Time {
	y, m, d := day.Date()
	if t == nil {
		return time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	}
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, day.Location())
}

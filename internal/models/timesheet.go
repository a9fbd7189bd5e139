package models

import "time"

// Timesheet is one attendance entry of a volunteer.
type Timesheet struct {
	ID         int64
	PersonID   int64
	ActivityID *int64
	Started    time.Time
	Finished   *time.Time
}

// Row maps the entry onto the timesheets table.
func (t Timesheet) Row() Row {
	row := Row{"id": t.ID, "person_id": t.PersonID, "started": t.Started}
	row.set("activity_id", t.ActivityID)
	row.set("finished", t.Finished)
	return row
}

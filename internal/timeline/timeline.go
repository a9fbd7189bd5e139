// Package timeline turns the coarse dates of a legacy repair ticket into an
// ordered sequence of status events and log entries.
package timeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/stwalsh4118/reclaim/internal/models"
)

// Synthetic times of day for date-only legacy fields.
const (
	intakeHour   = 1
	resolvedHour = 20
)

// callHours holds the time of day of each "customer called" slot.
var callHours = [3]int{7, 12, 18}

// Directory resolves free-text staff names to person ids.
type Directory interface {
	Staff(name string) (int64, bool)
	SuggestStaff(name string) string
}

// Call is one "customer called" slot of a legacy ticket.
type Call struct {
	Date *time.Time
	Note *string
}

// Ticket holds the legacy fields the reconstruction works from.
type Ticket struct {
	ID        int64
	Intake    time.Time
	IntakeBy  *string
	HandledBy *string
	Status    *models.TicketStatus
	Resolved  *time.Time
	Calls     [3]Call
}

// Note is an itemized historical note of a ticket.
type Note struct {
	Date   *time.Time
	Author *string
	Text   *string
}

// Timeline is the reconstructed history of one ticket.
type Timeline struct {
	Statuses []models.TicketStatusEvent
	Logs     []models.TicketLogEntry
	// People lists the resolved person ids referenced, in order of first use.
	People []int64
}

func (t *Timeline) addPerson(id int64) {
	for _, p := range t.People {
		if p == id {
			return
		}
	}
	t.People = append(t.People, id)
}

// Reconstructor builds ticket timelines.
type Reconstructor struct {
	staff     Directory
	unknownID int64
}

// NewReconstructor creates a Reconstructor. Names the directory cannot
// resolve are attributed to unknownID.
func NewReconstructor(staff Directory, unknownID int64) *Reconstructor {
	return &Reconstructor{staff: staff, unknownID: unknownID}
}

type event struct {
	at     time.Time
	status models.TicketStatus
	note   *string
	intake bool
}

// Reconstruct emits the status events and log entries of t. Status event
// times are strictly increasing and a CLOSED event is always last.
func (r *Reconstructor) Reconstruct(t Ticket) Timeline {
	var out Timeline
	opened := atHour(t.Intake, intakeHour)

	intakeBy := r.resolve(&out, t.ID, opened, "intake volunteer", t.IntakeBy)
	handledBy := r.resolve(&out, t.ID, opened, "handling volunteer", t.HandledBy)

	events := []event{{at: opened, status: models.TicketOpen, intake: true}}
	watermark := opened

	final := t.Status
	if final != nil && (*final == models.TicketInProgress || *final == models.TicketReady) {
		events = append(events, event{at: opened, status: *final})
	}

	if t.Resolved != nil {
		at := atHour(*t.Resolved, resolvedHour)
		events = append(events, event{at: at, status: models.TicketReady})
		watermark = later(watermark, at)
	}

	callStatus := models.TicketCustomerInformed
	if final != nil && *final == models.TicketCustomerContacted {
		callStatus = models.TicketCustomerContacted
	}
	for i, call := range t.Calls {
		if call.Date == nil {
			continue
		}
		at := atHour(*call.Date, callHours[i])
		watermark = later(watermark, at)
		note := call.Note
		if note != nil && strings.TrimSpace(*note) == "" {
			note = nil
		}
		events = append(events, event{at: at, status: callStatus, note: note})
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].at.Before(events[j].at) })
	for i := 1; i < len(events); i++ {
		if !events[i].at.After(events[i-1].at) {
			events[i].at = events[i-1].at.Add(time.Second)
		}
	}

	if final != nil && *final == models.TicketClosed {
		watermark = later(watermark, events[len(events)-1].at)
		events = append(events, event{at: watermark.Add(time.Second), status: models.TicketClosed})
	}

	for _, e := range events {
		volunteer := handledBy
		if e.intake {
			volunteer = intakeBy
		}
		out.Statuses = append(out.Statuses, models.TicketStatusEvent{
			TicketID:    t.ID,
			Date:        e.at,
			VolunteerID: volunteer,
			Status:      e.status,
		})
		if e.note != nil {
			out.Logs = append(out.Logs, models.TicketLogEntry{
				TicketID:    t.ID,
				Date:        e.at,
				VolunteerID: volunteer,
				Log:         strings.TrimSpace(*e.note),
			})
		}
	}
	return out
}

// ReplayHistory turns historical notes into log entries dated at midnight of
// their own date plus one second per preceding note, keeping source order.
// Notes without text are skipped; notes without a date use fallback.
func (r *Reconstructor) ReplayHistory(ticketID int64, fallback time.Time, notes []Note) Timeline {
	var out Timeline
	n := 0
	for _, note := range notes {
		if note.Text == nil || strings.TrimSpace(*note.Text) == "" {
			continue
		}
		day := fallback
		if note.Date != nil {
			day = *note.Date
		}
		author := r.unknownID
		if note.Author != nil {
			if id, ok := r.staff.Staff(*note.Author); ok {
				author = id
				out.addPerson(id)
			}
		}
		out.Logs = append(out.Logs, models.TicketLogEntry{
			TicketID:    ticketID,
			Date:        atHour(day, 0).Add(time.Duration(n) * time.Second),
			VolunteerID: author,
			Log:         strings.TrimSpace(*note.Text),
		})
		n++
	}
	return out
}

// resolve looks up name and records a diagnostic log entry when it is unknown.
func (r *Reconstructor) resolve(out *Timeline, ticketID int64, at time.Time, role string, name *string) int64 {
	raw := ""
	if name != nil {
		raw = strings.TrimSpace(*name)
	}
	if raw != "" {
		if id, ok := r.staff.Staff(raw); ok {
			out.addPerson(id)
			return id
		}
	}

	msg := fmt.Sprintf("Migration assigned person %d: %s [%s] is unknown.", r.unknownID, role, raw)
	if suggestion := r.staff.SuggestStaff(raw); raw != "" && suggestion != "" {
		msg += fmt.Sprintf(" Closest known alias: [%s].", suggestion)
	}
	out.Logs = append(out.Logs, models.TicketLogEntry{
		TicketID:    ticketID,
		Date:        at,
		VolunteerID: r.unknownID,
		Log:         msg,
	})
	return r.unknownID
}

func atHour(day time.Time, hour int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, hour, 0, 0, 0, day.Location())
}

func later(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}

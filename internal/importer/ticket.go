package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/stwalsh4118/reclaim/internal/legacy"
	"github.com/stwalsh4118/reclaim/internal/logger"
	"github.com/stwalsh4118/reclaim/internal/models"
	"github.com/stwalsh4118/reclaim/internal/normalize"
	"github.com/stwalsh4118/reclaim/internal/repository"
	"github.com/stwalsh4118/reclaim/internal/timeline"
)

// SubjectLength is the maximum length of a ticket subject in characters.
const SubjectLength = 254

var detailColumns = []struct{ name, column string }{
	{"backup", "backup"},
	{"meegeleverde_accessoires", "bijgeleverde accessoires"},
	{"samenvatting", "samenvatting reparatie"},
}

// TicketImporter imports repair tickets together with their reconstructed history.
type TicketImporter struct {
	deps          Deps
	equipment     Resolver
	persons       Resolver
	reconstructor *timeline.Reconstructor
	log           *logger.Logger
}

// NewTicketImporter creates a TicketImporter.
func NewTicketImporter(d Deps, equipment, persons Resolver, r *timeline.Reconstructor) *TicketImporter {
	return &TicketImporter{
		deps:          d,
		equipment:     equipment,
		persons:       persons,
		reconstructor: r,
		log:           d.logger("ticket"),
	}
}

// ImportLegacy imports every ticket taken in after the cutoff.
func (i *TicketImporter) ImportLegacy(ctx context.Context) (Result, error) {
	q := legacy.From(tblTickets).
		Filter(legacy.After(colIntake, i.deps.Cutoff)).
		Order(colTicketID)
	recs, err := i.deps.Source.Select(ctx, q)
	if err != nil {
		return Result{}, err
	}
	return importAll(ctx, i.deps, i.log, models.TableTickets, colTicketID, recs, i.importRecord)
}

func (i *TicketImporter) importRecord(ctx context.Context, id int64, rec legacy.Record, res *Result) error {
	mapper := i.deps.Mapper

	problem, err := rec.Text("probleem")
	if err != nil {
		return err
	}
	intake, err := rec.Time(colIntake)
	if err != nil {
		return err
	}

	t := models.Ticket{
		ID:         id,
		Type:       mapper.TicketType(problem),
		Registered: i.deps.registered(intake),
	}
	t.Subject, t.Description = subject(problem)

	if t.EquipmentID, err = rec.Int(colEquipmentID); err != nil {
		return err
	}

	var props []models.Property
	for _, col := range detailColumns {
		value, err := rec.Text(col.column)
		if err != nil {
			return err
		}
		if value != nil {
			props = append(props, models.Property{Name: col.name, Value: *value})
		}
	}

	lifecycle, err := i.lifecycle(rec, id, t.Registered)
	if err != nil {
		return err
	}
	history, err := i.history(ctx, id, t.Registered)
	if err != nil {
		return err
	}

	if t.EquipmentID != nil {
		err := i.equipment.ImportByID(ctx, *t.EquipmentID)
		if errors.Is(err, ErrNotFound) {
			return skipf("equipment %d not found", *t.EquipmentID)
		}
		if err != nil {
			return err
		}
	}

	if err := i.importPeople(ctx, id, res, lifecycle.People, history.People); err != nil {
		return err
	}

	details := children(mapper, props)
	return i.deps.Store.WithinTx(ctx, func(tx repository.RowStore) error {
		if err := tx.Insert(ctx, models.TableTickets, t.Row()); err != nil {
			return err
		}
		for _, p := range details {
			if err := tx.Insert(ctx, models.TableTicketDetails, models.DetailRow(id, p)); err != nil {
				return err
			}
		}
		for _, e := range lifecycle.Statuses {
			if err := tx.Insert(ctx, models.TableTicketStatus, e.Row()); err != nil {
				return err
			}
		}
		for _, logs := range [][]models.TicketLogEntry{lifecycle.Logs, history.Logs} {
			for _, entry := range logs {
				if err := tx.Insert(ctx, models.TableTicketLog, entry.Row()); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// subject truncates the problem text to a subject. The full text becomes the
// description when it does not fit.
func subject(problem *string) (*string, *string) {
	if problem == nil {
		return nil, nil
	}
	short := strings.TrimSpace(normalize.Truncate(*problem, SubjectLength))
	if utf8.RuneCountInString(*problem) > SubjectLength {
		return &short, problem
	}
	return &short, nil
}

func (i *TicketImporter) lifecycle(rec legacy.Record, id int64, intake time.Time) (timeline.Timeline, error) {
	t := timeline.Ticket{ID: id, Intake: intake}

	status, err := rec.Text("status")
	if err != nil {
		return timeline.Timeline{}, err
	}
	t.Status = i.deps.Mapper.TicketStatus(status)

	if t.IntakeBy, err = rec.Text("aangenomen door"); err != nil {
		return timeline.Timeline{}, err
	}
	if t.HandledBy, err = rec.Text("medewerker"); err != nil {
		return timeline.Timeline{}, err
	}
	if t.Resolved, err = rec.Time("datum opgelost"); err != nil {
		return timeline.Timeline{}, err
	}
	for n := range t.Calls {
		call := &t.Calls[n]
		if call.Date, err = rec.Time(fmt.Sprintf("datum gebeld%d", n+1)); err != nil {
			return timeline.Timeline{}, err
		}
		call.Note = rec.RawText(fmt.Sprintf("reactie gebeld%d", n+1))
	}
	return i.reconstructor.Reconstruct(t), nil
}

func (i *TicketImporter) history(ctx context.Context, id int64, intake time.Time) (timeline.Timeline, error) {
	recs, err := i.deps.Source.Select(ctx, legacy.From(tblTicketHistory).
		Filter(legacy.Eq(colTicketID, id)).
		Order(colHistoryDate, legacy.RowID))
	if err != nil {
		return timeline.Timeline{}, err
	}
	notes := make([]timeline.Note, 0, len(recs))
	for _, rec := range recs {
		var note timeline.Note
		if note.Date, err = rec.Time(colHistoryDate); err != nil {
			return timeline.Timeline{}, err
		}
		if note.Author, err = rec.Text("wie"); err != nil {
			return timeline.Timeline{}, err
		}
		note.Text = rec.RawText("rapport")
		notes = append(notes, note)
	}
	return i.reconstructor.ReplayHistory(id, intake, notes), nil
}

// importPeople imports the staff referenced by the ticket history. Unknown
// staff keep their id on the history rows.
func (i *TicketImporter) importPeople(ctx context.Context, id int64, res *Result, groups ...[]int64) error {
	seen := make(map[int64]struct{})
	for _, people := range groups {
		for _, person := range people {
			if _, ok := seen[person]; ok {
				continue
			}
			seen[person] = struct{}{}

			err := i.persons.ImportByID(ctx, person)
			if errors.Is(err, ErrNotFound) {
				res.Warnings++
				i.log.Warn("staff member not found", map[string]interface{}{"id": id, "person_id": person})
				continue
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

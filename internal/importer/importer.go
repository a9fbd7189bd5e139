// Package importer moves legacy records into the target store, one entity
// type per importer. Every importer is idempotent: rows whose natural key is
// already present are left alone.
package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/stwalsh4118/reclaim/internal/legacy"
	"github.com/stwalsh4118/reclaim/internal/logger"
	"github.com/stwalsh4118/reclaim/internal/mapping"
	"github.com/stwalsh4118/reclaim/internal/models"
	"github.com/stwalsh4118/reclaim/internal/normalize"
	"github.com/stwalsh4118/reclaim/internal/repository"
)

var (
	// ErrNotFound is returned when an entity exists in neither the target store nor the legacy export.
	ErrNotFound = errors.New("entity not found")
	// ErrInconsistentInvoice is returned when the lines of one invoice point at different equipment.
	ErrInconsistentInvoice = errors.New("invoice lines reference different equipment")
)

// Resolver imports a single entity by its natural key when it is missing.
type Resolver interface {
	ImportByID(ctx context.Context, id int64) error
}

// Result counts the outcome of an import.
type Result struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
	Warnings int `json:"warnings"`
}

// Add accumulates other into r.
func (r *Result) Add(other Result) {
	r.Inserted += other.Inserted
	r.Skipped += other.Skipped
	r.Failed += other.Failed
	r.Warnings += other.Warnings
}

// Deps holds the collaborators shared by all importers.
type Deps struct {
	Store  repository.RowStore
	Source legacy.Source
	Mapper *mapping.Mapper
	Log    *logger.Logger
	// Cutoff selects legacy records registered after it. It is also the
	// registration time of records that carry none.
	Cutoff time.Time
}

func (d Deps) logger(entity string) *logger.Logger {
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}
	return log.With(map[string]interface{}{"entity": entity})
}

// IsRecordError reports whether err is confined to a single legacy record.
// Such errors are counted and the import continues.
func IsRecordError(err error) bool {
	return errors.Is(err, mapping.ErrUnsupportedCategory) ||
		errors.Is(err, mapping.ErrUnsupportedStatus) ||
		errors.Is(err, normalize.ErrNotText) ||
		errors.Is(err, normalize.ErrNoDigits) ||
		errors.Is(err, normalize.ErrBadHouseNumber) ||
		errors.Is(err, legacy.ErrBadValue) ||
		errors.Is(err, ErrInconsistentInvoice) ||
		errors.Is(err, ErrNotFound)
}

// skipError marks a record that is deliberately left out.
type skipError struct {
	reason string
}

func (e *skipError) Error() string { return e.reason }

func skipf(format string, args ...interface{}) error {
	return &skipError{reason: fmt.Sprintf(format, args...)}
}

func notFound(entity string, id int64) error {
	return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
}

// recordFunc imports one legacy record that is known to be missing from the target.
type recordFunc func(ctx context.Context, id int64, rec legacy.Record, res *Result) error

// importAll runs fn for every record whose id is not yet in table.
func importAll(ctx context.Context, d Deps, log *logger.Logger, table, idColumn string, recs []legacy.Record, fn recordFunc) (Result, error) {
	var res Result
	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		id, err := rec.ID(idColumn)
		if err != nil {
			res.Failed++
			log.Error("legacy record has no usable id", err, map[string]interface{}{"column": idColumn})
			continue
		}

		exists, err := d.Store.Exists(ctx, table, sq.Eq{"id": id})
		if err != nil {
			return res, err
		}
		if exists {
			res.Skipped++
			continue
		}

		if err := fn(ctx, id, rec, &res); err != nil {
			var skip *skipError
			switch {
			case errors.As(err, &skip):
				res.Skipped++
				res.Warnings++
				log.Warn("record skipped", map[string]interface{}{"id": id, "reason": skip.reason})
			case IsRecordError(err):
				res.Failed++
				log.Error("record failed", err, map[string]interface{}{"id": id})
			default:
				return res, fmt.Errorf("failed to import %s %d: %w", table, id, err)
			}
			continue
		}
		res.Inserted++
	}

	log.Info("import finished", map[string]interface{}{
		"inserted": res.Inserted,
		"skipped":  res.Skipped,
		"failed":   res.Failed,
		"warnings": res.Warnings,
	})
	return res, nil
}

// importOne imports a single legacy record by id unless it is already present.
func importOne(ctx context.Context, d Deps, table string, q legacy.Query, entity string, id int64, fn recordFunc) error {
	exists, err := d.Store.Exists(ctx, table, sq.Eq{"id": id})
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	recs, err := d.Source.Select(ctx, q)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		return notFound(entity, id)
	}

	var res Result
	if err := fn(ctx, id, recs[0], &res); err != nil {
		var skip *skipError
		if errors.As(err, &skip) {
			return fmt.Errorf("%s %d skipped: %s: %w", entity, id, skip.reason, ErrNotFound)
		}
		return err
	}
	return nil
}

// resolveOptional imports the entity behind ref. A reference that cannot be
// found anywhere is dropped with a warning.
func resolveOptional(ctx context.Context, r Resolver, ref *int64, log *logger.Logger, res *Result, id int64, field string) (*int64, error) {
	if ref == nil {
		return nil, nil
	}
	err := r.ImportByID(ctx, *ref)
	if errors.Is(err, ErrNotFound) {
		res.Warnings++
		log.Warn("reference not found, dropped", map[string]interface{}{
			"id":    id,
			"field": field,
			"ref":   *ref,
		})
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ref, nil
}

// children drops properties whose value is blank or the "none" token.
func children(m *mapping.Mapper, props []models.Property) []models.Property {
	out := make([]models.Property, 0, len(props))
	for _, p := range props {
		value := normalize.Text(p.Value)
		if value == nil || m.IsNone(*value) {
			continue
		}
		out = append(out, models.Property{Name: p.Name, Value: *value})
	}
	return out
}

// registered returns t, or the cutoff when t is absent.
func (d Deps) registered(t *time.Time) time.Time {
	if t == nil {
		return d.Cutoff
	}
	return *t
}

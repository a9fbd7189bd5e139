package importer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	sq "github.com/Masterminds/squirrel"
	"github.com/tidwall/gjson"

	"github.com/stwalsh4118/reclaim/internal/logger"
	"github.com/stwalsh4118/reclaim/internal/models"
)

// ErrMalformedSeed is returned for seed files that are not an array of objects with an id.
var ErrMalformedSeed = errors.New("malformed seed file")

// Seed file names inside the data directory.
const (
	ActivitiesSeed = "activities.json"
	DonorsSeed     = "donors.json"
	PersonsSeed    = "persons.json"
)

// LoadSeed reads a seed file: a JSON array of objects, one per row.
// Integral numbers become int64, nested values are kept as raw JSON and
// null members are left out.
func LoadSeed(path string) ([]models.Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	rows, err := ParseSeed(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// ParseSeed decodes seed data.
func ParseSeed(data []byte) ([]models.Row, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedSeed)
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected an array", ErrMalformedSeed)
	}

	var rows []models.Row
	var failed error
	root.ForEach(func(i, element gjson.Result) bool {
		if !element.IsObject() {
			failed = fmt.Errorf("%w: element %d is not an object", ErrMalformedSeed, i.Int())
			return false
		}
		row := models.Row{}
		element.ForEach(func(key, value gjson.Result) bool {
			if v, ok := seedValue(value); ok {
				row[key.String()] = v
			}
			return true
		})
		if _, ok := row.Int64("id"); !ok {
			failed = fmt.Errorf("%w: element %d has no numeric id", ErrMalformedSeed, i.Int())
			return false
		}
		rows = append(rows, row)
		return true
	})
	if failed != nil {
		return nil, failed
	}
	return rows, nil
}

func seedValue(v gjson.Result) (interface{}, bool) {
	switch v.Type {
	case gjson.Null:
		return nil, false
	case gjson.Number:
		if f := v.Float(); f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return v.Int(), true
		}
		return v.Float(), true
	case gjson.True, gjson.False:
		return v.Bool(), true
	case gjson.String:
		return v.String(), true
	default:
		return v.Raw, true
	}
}

// importSeed inserts every seed row of path whose id is not yet in table.
func importSeed(ctx context.Context, d Deps, log *logger.Logger, table, path string) (Result, error) {
	var res Result
	rows, err := LoadSeed(path)
	if err != nil {
		return res, err
	}

	for _, row := range rows {
		id, _ := row.Int64("id")
		exists, err := d.Store.Exists(ctx, table, sq.Eq{"id": id})
		if err != nil {
			return res, err
		}
		if exists {
			res.Skipped++
			continue
		}
		if err := d.Store.Insert(ctx, table, row); err != nil {
			return res, err
		}
		res.Inserted++
	}

	log.Info("seed imported", map[string]interface{}{
		"file":     path,
		"inserted": res.Inserted,
		"skipped":  res.Skipped,
	})
	return res, nil
}

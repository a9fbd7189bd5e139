package importer

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/stwalsh4118/reclaim/internal/logger"
	"github.com/stwalsh4118/reclaim/internal/models"
	"github.com/stwalsh4118/reclaim/internal/postalcode"
)

// PostalCodeImporter writes the postal code reference ranges.
type PostalCodeImporter struct {
	deps  Deps
	index *postalcode.Index
	log   *logger.Logger
}

// NewPostalCodeImporter creates a PostalCodeImporter for index.
func NewPostalCodeImporter(d Deps, index *postalcode.Index) *PostalCodeImporter {
	return &PostalCodeImporter{deps: d, index: index, log: d.logger("postal_code")}
}

// Import writes every range not yet present. Ranges are keyed on code and
// lowest house number.
func (i *PostalCodeImporter) Import(ctx context.Context) (Result, error) {
	var res Result

	for _, c := range i.index.Conflicts() {
		res.Warnings++
		i.log.Warn("overlapping postal code ranges, first one kept", map[string]interface{}{
			"code":    c.Kept.Code,
			"kept":    c.Kept.Street,
			"shadows": c.Shadows.Street,
		})
	}

	for _, r := range i.index.Ranges() {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		key := sq.Eq{"code": r.Code, "house_number_min": nil}
		if !r.PostOfficeBox {
			key["house_number_min"] = r.HouseNumberMin
		}
		exists, err := i.deps.Store.Exists(ctx, models.TablePostalCodes, key)
		if err != nil {
			return res, err
		}
		if exists {
			res.Skipped++
			continue
		}
		if err := i.deps.Store.Insert(ctx, models.TablePostalCodes, r.Row()); err != nil {
			return res, err
		}
		res.Inserted++
	}

	i.log.Info("postal codes imported", map[string]interface{}{
		"inserted": res.Inserted,
		"skipped":  res.Skipped,
	})
	return res, nil
}

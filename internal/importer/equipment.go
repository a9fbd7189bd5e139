package importer

import (
	"context"

	"github.com/stwalsh4118/reclaim/internal/legacy"
	"github.com/stwalsh4118/reclaim/internal/logger"
	"github.com/stwalsh4118/reclaim/internal/models"
	"github.com/stwalsh4118/reclaim/internal/repository"
)

// specificationColumns maps specification names onto legacy columns.
var specificationColumns = []struct{ name, column string }{
	{"processor", "processor"},
	{"geheugen", "geheugen"},
	{"harddisk", "hdd ssd"},
	{"overige", "overige ingebouwde apparaten"},
	{"software", "software"},
}

// EquipmentImporter imports donated and customer-owned devices.
type EquipmentImporter struct {
	deps    Deps
	persons Resolver
	donors  Resolver
	log     *logger.Logger
}

// NewEquipmentImporter creates an EquipmentImporter resolving owners through
// persons and donors through donors.
func NewEquipmentImporter(d Deps, persons, donors Resolver) *EquipmentImporter {
	return &EquipmentImporter{deps: d, persons: persons, donors: donors, log: d.logger("equipment")}
}

// ImportLegacy imports every device donated after the cutoff.
func (i *EquipmentImporter) ImportLegacy(ctx context.Context) (Result, error) {
	q := legacy.From(tblEquipment).
		Filter(legacy.After(colDonated, i.deps.Cutoff)).
		Order(colEquipmentID)
	recs, err := i.deps.Source.Select(ctx, q)
	if err != nil {
		return Result{}, err
	}
	return importAll(ctx, i.deps, i.log, models.TableEquipment, colEquipmentID, recs, i.importRecord)
}

// ImportByID imports the legacy device id unless it is already present.
func (i *EquipmentImporter) ImportByID(ctx context.Context, id int64) error {
	q := legacy.From(tblEquipment).Filter(legacy.Eq(colEquipmentID, id))
	return importOne(ctx, i.deps, models.TableEquipment, q, "equipment", id, i.importRecord)
}

func (i *EquipmentImporter) importRecord(ctx context.Context, id int64, rec legacy.Record, res *Result) error {
	mapper := i.deps.Mapper

	deviceType, err := rec.Text("type kast")
	if err != nil {
		return err
	}
	category, err := mapper.Category(deviceType)
	if err != nil {
		return err
	}
	status, err := rec.Text("status")
	if err != nil {
		return err
	}

	e := models.Equipment{ID: id, Category: category}
	if e.Status, err = mapper.EquipmentStatus(status); err != nil {
		return err
	}
	donated, err := rec.Time(colDonated)
	if err != nil {
		return err
	}
	e.Registered = i.deps.registered(donated)

	err = texts(rec, map[string]**string{
		"fabrikant":    &e.Manufacturer,
		"model nummer": &e.Model,
	})
	if err != nil {
		return err
	}

	if e.OwnerID, err = rec.Int("gebruikersnummer"); err != nil {
		return err
	}
	if e.DonorID, err = rec.Int("gift van"); err != nil {
		return err
	}

	serialDonor := e.DonorID != nil && mapper.Exceptions().IsSerialNumberDonor(*e.DonorID)
	var props []models.Property

	optical, err := rec.Text("optische apparaten")
	if err != nil {
		return err
	}
	if optical != nil && *optical != "0" {
		if serialDonor {
			e.SerialNumber = optical
		} else {
			props = append(props, models.Property{Name: "optisch", Value: *optical})
		}
	}

	remarks, err := rec.Text("bijzonderheden")
	if err != nil {
		return err
	}
	if remarks != nil && !serialDonor {
		props = append(props, models.Property{Name: "bijzonderheden", Value: *remarks})
	}

	for _, spec := range specificationColumns {
		value, err := rec.Text(spec.column)
		if err != nil {
			return err
		}
		if value != nil {
			props = append(props, models.Property{Name: spec.name, Value: *value})
		}
	}

	if e.OwnerID, err = resolveOptional(ctx, i.persons, e.OwnerID, i.log, res, id, "owner_id"); err != nil {
		return err
	}
	if e.DonorID, err = resolveOptional(ctx, i.donors, e.DonorID, i.log, res, id, "donor_id"); err != nil {
		return err
	}
	if e.DonorID != nil && mapper.IsSponsored(deviceType) {
		e.BehalfOfID = e.DonorID
	}

	specs := children(mapper, props)
	return i.deps.Store.WithinTx(ctx, func(tx repository.RowStore) error {
		if err := tx.Insert(ctx, models.TableEquipment, e.Row()); err != nil {
			return err
		}
		for _, p := range specs {
			if err := tx.Insert(ctx, models.TableEquipmentSpecification, models.SpecificationRow(id, p)); err != nil {
				return err
			}
		}
		return nil
	})
}

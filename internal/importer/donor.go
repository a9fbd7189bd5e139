package importer

import (
	"context"

	"github.com/stwalsh4118/reclaim/internal/address"
	"github.com/stwalsh4118/reclaim/internal/legacy"
	"github.com/stwalsh4118/reclaim/internal/logger"
	"github.com/stwalsh4118/reclaim/internal/models"
	"github.com/stwalsh4118/reclaim/internal/repository"
)

// DonorAuditHeader is the header of the donor audit files.
var DonorAuditHeader = []string{"id", "name"}

var donorAddress = addressColumns{
	postalCode:  "postcode",
	street:      "straat",
	houseNumber: "huisnummer",
	city:        "plaats",
}

// DonorImporter imports donating companies and organisations.
type DonorImporter struct {
	deps       Deps
	reconciler *address.Reconciler
	seedPath   string
	log        *logger.Logger
}

// NewDonorImporter creates a DonorImporter. Address findings go to reconciler.
func NewDonorImporter(d Deps, reconciler *address.Reconciler, seedPath string) *DonorImporter {
	return &DonorImporter{deps: d, reconciler: reconciler, seedPath: seedPath, log: d.logger("donor")}
}

// ImportSeed inserts the seeded donors.
func (i *DonorImporter) ImportSeed(ctx context.Context) (Result, error) {
	return importSeed(ctx, i.deps, i.log, models.TableDonors, i.seedPath)
}

// ImportByID imports the legacy donor id unless it is already present.
func (i *DonorImporter) ImportByID(ctx context.Context, id int64) error {
	q := legacy.From(tblDonors).Filter(legacy.Eq(colDonorID, id))
	return importOne(ctx, i.deps, models.TableDonors, q, "donor", id, i.importRecord)
}

func (i *DonorImporter) importRecord(ctx context.Context, id int64, rec legacy.Record, res *Result) error {
	donor := models.Donor{ID: id, Registered: i.deps.Cutoff}

	var err error
	if donor.Name, err = rec.Text("bedrijfsnaam"); err != nil {
		return err
	}
	if donor.Email, err = readEmail(rec, "e-mail"); err != nil {
		return err
	}
	phones, err := readPhones(rec, "telefoon")
	if err != nil {
		return err
	}
	donor.Mobile, donor.Telephone = phones.Mobile, phones.Telephone

	addr, original, err := readAddress(rec, donorAddress)
	if err != nil {
		return err
	}
	donor.Address = addr

	if donor.Snapshot, err = rec.Snapshot(); err != nil {
		return err
	}

	subject := address.NewSubject(id, donor.Name)
	finding := i.reconciler.Reconcile(subject, &donor.Address, original, &donor.Comments)
	i.log.Debug("donor address checked", map[string]interface{}{"id": id, "outcome": finding.Outcome.String()})

	err = i.deps.Store.WithinTx(ctx, func(tx repository.RowStore) error {
		return tx.Insert(ctx, models.TableDonors, donor.Row())
	})
	if err != nil {
		return err
	}
	if finding.Outcome == address.Rejected {
		res.Warnings++
	}
	return finding.Record()
}

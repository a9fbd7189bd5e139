package importer

import (
	"context"

	"github.com/stwalsh4118/reclaim/internal/address"
	"github.com/stwalsh4118/reclaim/internal/legacy"
	"github.com/stwalsh4118/reclaim/internal/logger"
	"github.com/stwalsh4118/reclaim/internal/models"
	"github.com/stwalsh4118/reclaim/internal/repository"
)

// PersonAuditHeader is the header of the person audit files.
var PersonAuditHeader = []string{"id", "first_name", "last_name"}

var personAddress = addressColumns{
	postalCode:  "postcode",
	street:      "adres",
	houseNumber: "huisnummer",
	city:        "plaatsnaam",
}

// PersonImporter imports customers, recipients and volunteers.
type PersonImporter struct {
	deps       Deps
	reconciler *address.Reconciler
	seedPath   string
	log        *logger.Logger
}

// NewPersonImporter creates a PersonImporter. Address findings go to reconciler.
func NewPersonImporter(d Deps, reconciler *address.Reconciler, seedPath string) *PersonImporter {
	return &PersonImporter{deps: d, reconciler: reconciler, seedPath: seedPath, log: d.logger("person")}
}

// ImportSeed inserts the seeded persons.
func (i *PersonImporter) ImportSeed(ctx context.Context) (Result, error) {
	return importSeed(ctx, i.deps, i.log, models.TablePersons, i.seedPath)
}

// ImportLegacy imports every person registered after the cutoff.
func (i *PersonImporter) ImportLegacy(ctx context.Context) (Result, error) {
	q := legacy.From(tblPersons).
		Filter(legacy.After(colPersonRegister, i.deps.Cutoff)).
		Order(colPersonID)
	recs, err := i.deps.Source.Select(ctx, q)
	if err != nil {
		return Result{}, err
	}
	return importAll(ctx, i.deps, i.log, models.TablePersons, colPersonID, recs, i.importRecord)
}

// ImportByID imports the legacy person id unless it is already present.
func (i *PersonImporter) ImportByID(ctx context.Context, id int64) error {
	q := legacy.From(tblPersons).Filter(legacy.Eq(colPersonID, id))
	return importOne(ctx, i.deps, models.TablePersons, q, "person", id, i.importRecord)
}

func (i *PersonImporter) importRecord(ctx context.Context, id int64, rec legacy.Record, res *Result) error {
	person := models.Person{ID: id}

	err := texts(rec, map[string]**string{
		"voorletters":    &person.Initials,
		"voornaam":       &person.FirstName,
		"tussenvoegsels": &person.Infix,
		"achternaam":     &person.LastName,
		"opmerkingen":    &person.Comments,
	})
	if err != nil {
		return err
	}
	if person.DateOfBirth, err = rec.Time("geboortedatum"); err != nil {
		return err
	}
	if person.Email, err = readEmail(rec, "e-mailadres"); err != nil {
		return err
	}
	phones, err := readPhones(rec, "1e telefoon", "2e telefoon")
	if err != nil {
		return err
	}
	person.Mobile, person.Telephone = phones.Mobile, phones.Telephone

	registered, err := rec.Time(colPersonRegister)
	if err != nil {
		return err
	}
	person.Registered = i.deps.registered(registered)

	affiliation, err := rec.Int("bedrijfsnummer")
	if err != nil {
		return err
	}

	addr, original, err := readAddress(rec, personAddress)
	if err != nil {
		return err
	}
	person.Address = addr

	if person.Snapshot, err = rec.Snapshot(); err != nil {
		return err
	}

	subject := address.NewSubject(id, person.FirstName, person.LastName)
	finding := i.reconciler.Reconcile(subject, &person.Address, original, &person.Comments)
	i.log.Debug("person address checked", map[string]interface{}{"id": id, "outcome": finding.Outcome.String()})

	volunteer := affiliation != nil && i.deps.Mapper.Exceptions().IsVolunteerAffiliation(*affiliation)

	err = i.deps.Store.WithinTx(ctx, func(tx repository.RowStore) error {
		if err := tx.Insert(ctx, models.TablePersons, person.Row()); err != nil {
			return err
		}
		if !volunteer {
			return nil
		}
		role := models.PersonRole{PersonID: id, Authority: models.RoleVolunteer}
		return tx.Insert(ctx, models.TablePersonRoles, role.Row())
	})
	if err != nil {
		return err
	}
	if finding.Outcome == address.Rejected {
		res.Warnings++
	}
	return finding.Record()
}

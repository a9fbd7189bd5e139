package importer

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/stwalsh4118/reclaim/internal/legacy"
	"github.com/stwalsh4118/reclaim/internal/logger"
	"github.com/stwalsh4118/reclaim/internal/models"
	"github.com/stwalsh4118/reclaim/internal/repository"
)

// ProofOfIssueImporter imports legacy invoices as proofs of issue.
type ProofOfIssueImporter struct {
	deps      Deps
	equipment Resolver
	persons   Resolver
	log       *logger.Logger
}

// NewProofOfIssueImporter creates a ProofOfIssueImporter.
func NewProofOfIssueImporter(d Deps, equipment, persons Resolver) *ProofOfIssueImporter {
	return &ProofOfIssueImporter{deps: d, equipment: equipment, persons: persons, log: d.logger("proof_of_issue")}
}

// ImportLegacy imports every invoice dated after the cutoff.
func (i *ProofOfIssueImporter) ImportLegacy(ctx context.Context) (Result, error) {
	q := legacy.From(tblInvoices).
		Filter(legacy.After(colInvoiceDate, i.deps.Cutoff)).
		Order(colInvoiceID)
	recs, err := i.deps.Source.Select(ctx, q)
	if err != nil {
		return Result{}, err
	}
	return importAll(ctx, i.deps, i.log, models.TableProofOfIssues, colInvoiceID, recs, i.importRecord)
}

func (i *ProofOfIssueImporter) importRecord(ctx context.Context, id int64, rec legacy.Record, res *Result) error {
	lines, equipmentID, err := i.lines(ctx, id)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return skipf("invoice %d has no lines", id)
	}

	poi := models.ProofOfIssue{
		ID:          id,
		IssuedBy:    i.deps.Mapper.Exceptions().DefaultIssuedBy,
		EquipmentID: equipmentID,
		Lines:       lines,
	}
	if poi.IssueDate, err = rec.Time(colInvoiceDate); err != nil {
		return err
	}
	recipient, err := rec.Int("klantnr")
	if err != nil {
		return err
	}

	if poi.RecipientID, err = resolveOptional(ctx, i.persons, recipient, i.log, res, id, "recipient_id"); err != nil {
		return err
	}

	err = i.equipment.ImportByID(ctx, equipmentID)
	if errors.Is(err, ErrNotFound) {
		return skipf("equipment %d not found", equipmentID)
	}
	if err != nil {
		return err
	}

	equipment, err := i.deps.Store.Select(ctx, models.TableEquipment, sq.Eq{"id": equipmentID})
	if err != nil {
		return err
	}
	if len(equipment) == 0 {
		return skipf("equipment %d not found", equipmentID)
	}
	for _, row := range equipment {
		if behalfOf, ok := row.Int64("behalf_of_id"); ok {
			poi.BehalfOfID = &behalfOf
			break
		}
	}

	return i.deps.Store.WithinTx(ctx, func(tx repository.RowStore) error {
		if err := tx.Insert(ctx, models.TableProofOfIssues, poi.Row()); err != nil {
			return err
		}
		for _, line := range poi.Lines {
			if err := tx.Insert(ctx, models.TableProofOfIssueLines, line.Row()); err != nil {
				return err
			}
		}
		return nil
	})
}

// lines reads and validates the lines of invoice id. All lines that are not
// excluded must reference the same equipment.
func (i *ProofOfIssueImporter) lines(ctx context.Context, id int64) ([]models.ProofOfIssueLine, int64, error) {
	recs, err := i.deps.Source.Select(ctx, legacy.From(tblInvoiceLines).
		Filter(legacy.Eq(colInvoiceID, id)).
		Order(legacy.RowID))
	if err != nil {
		return nil, 0, err
	}

	exceptions := i.deps.Mapper.Exceptions()
	var (
		lines       []models.ProofOfIssueLine
		equipmentID *int64
	)
	for _, rec := range recs {
		ref, err := rec.Int(colEquipmentID)
		if err != nil {
			return nil, 0, err
		}
		if ref == nil {
			return nil, 0, fmt.Errorf("invoice %d: line without equipment: %w", id, ErrInconsistentInvoice)
		}
		if exceptions.IsIgnoredInvoiceLine(id, *ref) {
			i.log.Debug("invoice line ignored", map[string]interface{}{"id": id, "equipment_id": *ref})
			continue
		}
		if equipmentID == nil {
			equipmentID = ref
		} else if *equipmentID != *ref {
			return nil, 0, fmt.Errorf("invoice %d: equipment %d and %d: %w", id, *equipmentID, *ref, ErrInconsistentInvoice)
		}

		description, err := rec.Text("produkt omschrijving")
		if err != nil {
			return nil, 0, err
		}
		lines = append(lines, models.ProofOfIssueLine{
			ProofOfIssueID: id,
			LineID:         len(lines) + 1,
			Description:    description,
		})
	}
	if equipmentID == nil {
		return nil, 0, nil
	}
	return lines, *equipmentID, nil
}

// Package address checks legacy addresses against the postal code index.
package address

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/stwalsh4118/reclaim/internal/audit"
	"github.com/stwalsh4118/reclaim/internal/models"
)

// Index is the part of the postal code index the reconciler needs.
type Index interface {
	CoversAddress(code string, houseNumber *int) bool
	CanonicalStreet(code string, houseNumber *int) (string, bool)
}

// Outcome is the verdict on one address.
type Outcome int

const (
	// Skipped means the address was not checked.
	Skipped Outcome = iota
	// Confirmed means the address matches the reference.
	Confirmed
	// Corrected means the street was replaced by the canonical street.
	Corrected
	// Rejected means the postal code does not cover the house number.
	Rejected
)

// String returns the lower-case name of the outcome.
func (o Outcome) String() string {
	switch o {
	case Confirmed:
		return "confirmed"
	case Corrected:
		return "corrected"
	case Rejected:
		return "rejected"
	default:
		return "skipped"
	}
}

// Verdict is the result of evaluating an address.
type Verdict struct {
	Outcome         Outcome
	CanonicalStreet string
}

// Evaluate checks addr against index without changing anything.
func Evaluate(index Index, addr models.Address) Verdict {
	if addr.IsEmpty() {
		return Verdict{Outcome: Skipped}
	}
	code := ""
	if addr.PostalCode != nil {
		code = *addr.PostalCode
	}
	if !index.CoversAddress(code, addr.HouseNumber) {
		return Verdict{Outcome: Rejected}
	}
	street, ok := index.CanonicalStreet(code, addr.HouseNumber)
	if !ok || street == "" {
		return Verdict{Outcome: Confirmed}
	}
	legacy := ""
	if addr.Street != nil {
		legacy = *addr.Street
	}
	if sameStreet(street, legacy) {
		return Verdict{Outcome: Confirmed}
	}
	return Verdict{Outcome: Corrected, CanonicalStreet: street}
}

func sameStreet(a, b string) bool {
	folder := cases.Fold()
	return folder.String(strings.TrimSpace(a)) == folder.String(strings.TrimSpace(b))
}

// Original holds the address values as they appeared in the legacy record.
type Original struct {
	PostalCode          *string
	Street              *string
	HouseNumber         *string
	HouseNumberAddition *string
}

// Subject identifies the audited record: its natural key followed by display fields.
type Subject []string

// NewSubject builds a Subject from an id and optional display values.
func NewSubject(id int64, display ...*string) Subject {
	s := Subject{strconv.FormatInt(id, 10)}
	for _, d := range display {
		if d == nil {
			s = append(s, "")
			continue
		}
		s = append(s, *d)
	}
	return s
}

// Labels of the lines appended to a record comment.
const (
	labelPostalCode          = "Original postal code"
	labelStreet              = "Original street"
	labelHouseNumber         = "Original house number"
	labelHouseNumberAddition = "Original house number addition"
)

// Reconciler confirms, corrects or rejects addresses of one entity type and keeps its audit trail.
type Reconciler struct {
	index   Index
	trail   audit.Trail
	lenient bool
}

// NewReconciler returns a Reconciler writing findings to trail.
func NewReconciler(index Index, trail audit.Trail) *Reconciler {
	if trail.Errors == nil {
		trail.Errors = audit.Discard
	}
	if trail.Corrections == nil {
		trail.Corrections = audit.Discard
	}
	return &Reconciler{index: index, trail: trail}
}

// Lenient returns a copy of r that skips addresses without a postal code or
// house number instead of rejecting them.
func (r *Reconciler) Lenient() *Reconciler {
	c := *r
	c.lenient = true
	return &c
}

// Finding is the audit record owed for one reconciled address.
type Finding struct {
	Outcome Outcome
	sink    audit.Sink
	subject Subject
}

// Record writes the finding to the audit trail. Call it once the record the
// address belongs to is stored. Confirmed and skipped addresses leave no trace.
func (f Finding) Record() error {
	if f.sink == nil {
		return nil
	}
	if err := f.sink.Record(f.subject...); err != nil {
		return fmt.Errorf("failed to record %s address: %w", f.Outcome, err)
	}
	return nil
}

// Reconcile applies the verdict on addr in place and returns the finding to record.
// Rejected addresses are cleared and their original values appended to comments.
// Corrected addresses get the canonical street and the original street in comments.
// An empty address is rejected unless r is lenient.
func (r *Reconciler) Reconcile(subject Subject, addr *models.Address, original Original, comments **string) Finding {
	if r.lenient && (addr.PostalCode == nil || addr.HouseNumber == nil) {
		return Finding{Outcome: Skipped}
	}

	verdict := Evaluate(r.index, *addr)
	if verdict.Outcome == Skipped {
		verdict.Outcome = Rejected
	}
	finding := Finding{Outcome: verdict.Outcome, subject: subject}

	switch verdict.Outcome {
	case Rejected:
		lines := []string{
			labeled(labelPostalCode, original.PostalCode),
			labeled(labelStreet, original.Street),
			labeled(labelHouseNumber, original.HouseNumber),
			labeled(labelHouseNumberAddition, original.HouseNumberAddition),
		}
		*comments = appendLines(*comments, lines...)
		addr.Clear()
		finding.sink = r.trail.Errors

	case Corrected:
		*comments = appendLines(*comments, labeled(labelStreet, original.Street))
		street := verdict.CanonicalStreet
		addr.Street = &street
		finding.sink = r.trail.Corrections
	}

	return finding
}

func labeled(label string, value *string) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%s: [%s]", label, *value)
}

func appendLines(comments *string, lines ...string) *string {
	var b strings.Builder
	if comments != nil {
		b.WriteString(*comments)
	}
	for _, line := range lines {
		if line == "" {
			continue
		}
		b.WriteString("\n")
		b.WriteString(line)
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return nil
	}
	return &out
}

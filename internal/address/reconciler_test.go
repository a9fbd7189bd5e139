package address

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stwalsh4118/reclaim/internal/audit"
	"github.com/stwalsh4118/reclaim/internal/models"
	"github.com/stwalsh4118/reclaim/internal/postalcode"
)

func ptr(s string) *string { return &s }
func intPtr(i int) *int    { return &i }

func newTestReconciler(t *testing.T) (*Reconciler, *audit.Journal) {
	t.Helper()
	ix, err := postalcode.NewIndex([]models.PostalCodeRange{
		{Code: "1234AB", Street: "Main St", HouseNumberMin: 1, HouseNumberMax: 50},
	})
	require.NoError(t, err)

	journal := audit.NewJournal()
	trail := audit.Trail{
		Errors:      journal.Sink("persons-error", "id", "first_name", "last_name"),
		Corrections: journal.Sink("persons-auto-correct", "id", "first_name", "last_name"),
	}
	return NewReconciler(ix, trail), journal
}

func TestReconcile_CorrectsStreetCase(t *testing.T) {
	r, journal := newTestReconciler(t)
	addr := models.Address{PostalCode: ptr("1234AB"), Street: ptr("main st"), HouseNumber: intPtr(10)}
	var comments *string

	finding := r.Reconcile(NewSubject(7, ptr("Anna"), ptr("de Vries")), &addr,
		Original{PostalCode: ptr("1234 ab"), Street: ptr("main st"), HouseNumber: ptr("10")}, &comments)

	assert.Empty(t, journal.Records("persons-auto-correct"), "recorded only on request")
	require.NoError(t, finding.Record())
	assert.Equal(t, Corrected, finding.Outcome)
	assert.Equal(t, "Main St", *addr.Street)
	assert.Equal(t, "1234AB", *addr.PostalCode)
	assert.Equal(t, "Original street: [main st]", *comments)
	assert.Equal(t, [][]string{{"7", "Anna", "de Vries"}}, journal.Records("persons-auto-correct"))
	assert.Empty(t, journal.Records("persons-error"))
}

func TestReconcile_RejectsUncoveredNumber(t *testing.T) {
	r, journal := newTestReconciler(t)
	addr := models.Address{
		PostalCode:  ptr("1234AB"),
		Street:      ptr("Main St"),
		HouseNumber: intPtr(100),
		City:        ptr("Tilburg"),
	}
	comments := ptr("Bel na 18:00")

	finding := r.Reconcile(NewSubject(8, ptr("Jan"), nil), &addr,
		Original{PostalCode: ptr("1234AB"), Street: ptr("Main St"), HouseNumber: ptr("100")}, &comments)

	require.NoError(t, finding.Record())
	assert.Equal(t, Rejected, finding.Outcome)
	assert.Nil(t, addr.PostalCode)
	assert.Nil(t, addr.Street)
	assert.Nil(t, addr.HouseNumber)
	assert.Equal(t, "Tilburg", *addr.City)
	assert.Equal(t,
		"Bel na 18:00\nOriginal postal code: [1234AB]\nOriginal street: [Main St]\nOriginal house number: [100]",
		*comments)
	assert.Equal(t, [][]string{{"8", "Jan", ""}}, journal.Records("persons-error"))
	assert.Empty(t, journal.Records("persons-auto-correct"))
}

func TestReconcile_ConfirmedAddressUnchanged(t *testing.T) {
	r, journal := newTestReconciler(t)
	addr := models.Address{PostalCode: ptr("1234AB"), Street: ptr("Main St"), HouseNumber: intPtr(1)}
	var comments *string

	finding := r.Reconcile(NewSubject(9), &addr, Original{}, &comments)

	require.NoError(t, finding.Record())
	assert.Equal(t, Confirmed, finding.Outcome)
	assert.Equal(t, "Main St", *addr.Street)
	assert.Nil(t, comments)
	assert.Empty(t, journal.Records("persons-error"))
	assert.Empty(t, journal.Records("persons-auto-correct"))
}

func TestReconcile_IncompleteAddressIsRejected(t *testing.T) {
	r, journal := newTestReconciler(t)
	addr := models.Address{Street: ptr("Main St")}
	var comments *string

	finding := r.Reconcile(NewSubject(10), &addr, Original{Street: ptr("Main St ")}, &comments)

	require.NoError(t, finding.Record())
	assert.Equal(t, Rejected, finding.Outcome)
	assert.Equal(t, "Original street: [Main St ]", *comments)
	assert.Len(t, journal.Records("persons-error"), 1)
}

func TestReconcile_EmptyAddressIsRejected(t *testing.T) {
	r, journal := newTestReconciler(t)
	addr := models.Address{City: ptr("Tilburg")}
	comments := ptr("vaste klant")

	finding := r.Reconcile(NewSubject(11, ptr("Piet"), nil), &addr, Original{}, &comments)

	require.NoError(t, finding.Record())
	assert.Equal(t, Rejected, finding.Outcome)
	assert.Equal(t, "Tilburg", *addr.City)
	assert.Equal(t, "vaste klant", *comments)
	assert.Equal(t, [][]string{{"11", "Piet", ""}}, journal.Records("persons-error"))
}

func TestReconcile_LenientSkipsIncompleteAddress(t *testing.T) {
	r, journal := newTestReconciler(t)
	lenient := r.Lenient()

	for _, addr := range []models.Address{
		{City: ptr("Tilburg")},
		{Street: ptr("Main St"), HouseNumber: intPtr(100)},
		{PostalCode: ptr("1234AB"), Street: ptr("Elders")},
	} {
		addr := addr
		var comments *string
		finding := lenient.Reconcile(NewSubject(12), &addr, Original{Street: addr.Street}, &comments)

		require.NoError(t, finding.Record())
		assert.Equal(t, Skipped, finding.Outcome)
		assert.Equal(t, "skipped", finding.Outcome.String())
		assert.Nil(t, comments)
	}
	assert.Empty(t, journal.Records("persons-error"))
	assert.Empty(t, journal.Records("persons-auto-correct"))

	addr := models.Address{PostalCode: ptr("1234AB"), HouseNumber: intPtr(100)}
	var comments *string
	finding := lenient.Reconcile(NewSubject(13), &addr, Original{}, &comments)
	assert.Equal(t, Rejected, finding.Outcome)
	assert.Equal(t, Rejected, r.Reconcile(NewSubject(14), &models.Address{}, Original{}, &comments).Outcome,
		"the original reconciler stays strict")
}

func TestEvaluate_EmptyAddressIsSkipped(t *testing.T) {
	ix, err := postalcode.NewIndex(nil)
	require.NoError(t, err)

	assert.Equal(t, Skipped, Evaluate(ix, models.Address{City: ptr("Tilburg")}).Outcome)
}

type failingSink struct{}

func (failingSink) Record(...string) error { return errors.New("disk full") }

func TestFinding_RecordError(t *testing.T) {
	ix, err := postalcode.NewIndex(nil)
	require.NoError(t, err)
	r := NewReconciler(ix, audit.Trail{Errors: failingSink{}})
	addr := models.Address{PostalCode: ptr("9999ZZ"), HouseNumber: intPtr(1)}
	var comments *string

	finding := r.Reconcile(NewSubject(15), &addr, Original{}, &comments)

	assert.Equal(t, Rejected, finding.Outcome)
	assert.ErrorContains(t, finding.Record(), "disk full")
}

package timeline

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stwalsh4118/reclaim/internal/mapping"
	"github.com/stwalsh4118/reclaim/internal/models"
)

type fakeDirectory map[string]int64

func (f fakeDirectory) Staff(name string) (int64, bool) {
	id, ok := f[strings.ToLower(strings.TrimSpace(name))]
	return id, ok
}

func (f fakeDirectory) SuggestStaff(name string) string {
	if strings.HasPrefix(strings.ToLower(name), "fr") {
		return "frans"
	}
	return ""
}

var staff = fakeDirectory{"sjef": 897, "frans": 1544}

func str(s string) *string { return &s }

func status(s models.TicketStatus) *models.TicketStatus { return &s }

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func assertStrictlyIncreasing(t *testing.T, events []models.TicketStatusEvent) {
	t.Helper()
	for i := 1; i < len(events); i++ {
		assert.True(t, events[i].Date.After(events[i-1].Date),
			"event %d (%s at %s) is not after event %d (%s at %s)",
			i, events[i].Status, events[i].Date, i-1, events[i-1].Status, events[i-1].Date)
	}
}

func TestReconstruct_ClosedTicketWithSameDayCalls(t *testing.T) {
	r := NewReconstructor(staff, 1)
	intake := *day(2021, 3, 1)

	tl := r.Reconstruct(Ticket{
		ID:        100,
		Intake:    intake,
		IntakeBy:  str("Sjef"),
		HandledBy: str("frans"),
		Status:    status(models.TicketClosed),
		Resolved:  day(2021, 3, 2),
		Calls: [3]Call{
			{Date: &intake, Note: str("voicemail")},
			{Date: &intake, Note: str("  ")},
			{Date: &intake, Note: str("comes tomorrow")},
		},
	})

	require.Len(t, tl.Statuses, 6)
	assertStrictlyIncreasing(t, tl.Statuses)

	assert.Equal(t, models.TicketOpen, tl.Statuses[0].Status)
	assert.Equal(t, time.Date(2021, 3, 1, 1, 0, 0, 0, time.UTC), tl.Statuses[0].Date)
	assert.Equal(t, int64(897), tl.Statuses[0].VolunteerID)

	for _, e := range tl.Statuses[1:4] {
		assert.Equal(t, models.TicketCustomerInformed, e.Status)
		assert.Equal(t, int64(1544), e.VolunteerID)
	}
	assert.Equal(t, time.Date(2021, 3, 1, 7, 0, 0, 0, time.UTC), tl.Statuses[1].Date)
	assert.Equal(t, time.Date(2021, 3, 1, 18, 0, 0, 0, time.UTC), tl.Statuses[3].Date)

	assert.Equal(t, models.TicketReady, tl.Statuses[4].Status)
	assert.Equal(t, time.Date(2021, 3, 2, 20, 0, 0, 0, time.UTC), tl.Statuses[4].Date)

	last := tl.Statuses[5]
	assert.Equal(t, models.TicketClosed, last.Status)
	assert.Equal(t, time.Date(2021, 3, 2, 20, 0, 1, 0, time.UTC), last.Date)

	// Blank call notes produce no log entry
	require.Len(t, tl.Logs, 2)
	assert.Equal(t, "voicemail", tl.Logs[0].Log)
	assert.Equal(t, tl.Statuses[1].Date, tl.Logs[0].Date)
	assert.Equal(t, "comes tomorrow", tl.Logs[1].Log)

	assert.Equal(t, []int64{897, 1544}, tl.People)
}

func TestReconstruct_InProgressIsNudgedPastOpen(t *testing.T) {
	r := NewReconstructor(staff, 1)

	tl := r.Reconstruct(Ticket{
		ID:        7,
		Intake:    time.Date(2022, 1, 10, 14, 30, 0, 0, time.UTC),
		IntakeBy:  str("sjef"),
		HandledBy: str("sjef"),
		Status:    status(models.TicketInProgress),
	})

	require.Len(t, tl.Statuses, 2)
	assertStrictlyIncreasing(t, tl.Statuses)
	assert.Equal(t, models.TicketOpen, tl.Statuses[0].Status)
	assert.Equal(t, models.TicketInProgress, tl.Statuses[1].Status)
	assert.Equal(t, time.Date(2022, 1, 10, 1, 0, 1, 0, time.UTC), tl.Statuses[1].Date)
	assert.Empty(t, tl.Logs)
}

func TestReconstruct_CustomerContactedCalls(t *testing.T) {
	r := NewReconstructor(staff, 1)

	tl := r.Reconstruct(Ticket{
		ID:        8,
		Intake:    *day(2022, 2, 1),
		IntakeBy:  str("sjef"),
		HandledBy: str("frans"),
		Status:    status(models.TicketCustomerContacted),
		Calls:     [3]Call{{}, {Date: day(2022, 2, 3), Note: str("called")}},
	})

	require.Len(t, tl.Statuses, 2)
	assert.Equal(t, models.TicketCustomerContacted, tl.Statuses[1].Status)
	assert.Equal(t, time.Date(2022, 2, 3, 12, 0, 0, 0, time.UTC), tl.Statuses[1].Date)
}

func TestReconstruct_ClosedWithoutOtherEvents(t *testing.T) {
	r := NewReconstructor(staff, 1)

	tl := r.Reconstruct(Ticket{
		ID:        9,
		Intake:    *day(2022, 2, 1),
		IntakeBy:  str("sjef"),
		HandledBy: str("sjef"),
		Status:    status(models.TicketClosed),
	})

	require.Len(t, tl.Statuses, 2)
	assert.Equal(t, time.Date(2022, 2, 1, 1, 0, 1, 0, time.UTC), tl.Statuses[1].Date)
	assert.Equal(t, models.TicketClosed, tl.Statuses[1].Status)
}

func TestReconstruct_UnknownNamesFallBackWithDiagnostics(t *testing.T) {
	r := NewReconstructor(staff, 1)

	tl := r.Reconstruct(Ticket{
		ID:        11,
		Intake:    *day(2021, 6, 1),
		IntakeBy:  nil,
		HandledBy: str("Fransje"),
	})

	require.Len(t, tl.Statuses, 1)
	assert.Equal(t, int64(1), tl.Statuses[0].VolunteerID)
	assert.Empty(t, tl.People)

	require.Len(t, tl.Logs, 2)
	for _, entry := range tl.Logs {
		assert.Equal(t, int64(1), entry.VolunteerID)
		assert.Equal(t, time.Date(2021, 6, 1, 1, 0, 0, 0, time.UTC), entry.Date)
	}
	assert.Contains(t, tl.Logs[0].Log, "intake volunteer []")
	assert.Contains(t, tl.Logs[1].Log, "handling volunteer [Fransje]")
	assert.Contains(t, tl.Logs[1].Log, "[frans]")
}

func TestReconstruct_ResolvedBeforeIntakeStillOrdered(t *testing.T) {
	r := NewReconstructor(staff, 1)

	tl := r.Reconstruct(Ticket{
		ID:        12,
		Intake:    *day(2021, 6, 10),
		IntakeBy:  str("sjef"),
		HandledBy: str("sjef"),
		Status:    status(models.TicketClosed),
		Resolved:  day(2021, 6, 9),
	})

	assertStrictlyIncreasing(t, tl.Statuses)
	assert.Equal(t, models.TicketClosed, tl.Statuses[len(tl.Statuses)-1].Status)
}

func TestReplayHistory(t *testing.T) {
	r := NewReconstructor(staff, 1)
	fallback := *day(2021, 1, 5)

	tl := r.ReplayHistory(40, fallback, []Note{
		{Date: day(2021, 1, 6), Author: str("Sjef"), Text: str("Replaced disk")},
		{Date: day(2021, 1, 6), Author: str("nobody"), Text: nil},
		{Date: day(2021, 1, 6), Author: str("nobody"), Text: str("Installed OS ")},
		{Date: nil, Author: nil, Text: str("Tested")},
	})

	require.Len(t, tl.Logs, 3)
	assert.Equal(t, time.Date(2021, 1, 6, 0, 0, 0, 0, time.UTC), tl.Logs[0].Date)
	assert.Equal(t, int64(897), tl.Logs[0].VolunteerID)
	assert.Equal(t, time.Date(2021, 1, 6, 0, 0, 1, 0, time.UTC), tl.Logs[1].Date)
	assert.Equal(t, int64(1), tl.Logs[1].VolunteerID)
	assert.Equal(t, "Installed OS", tl.Logs[1].Log)
	assert.Equal(t, time.Date(2021, 1, 5, 0, 0, 2, 0, time.UTC), tl.Logs[2].Date)
	assert.Equal(t, []int64{897}, tl.People)
}

func TestReconstruct_WithDefaultStaffTable(t *testing.T) {
	mapper, err := mapping.Default()
	require.NoError(t, err)
	r := NewReconstructor(mapper, mapper.Exceptions().UnknownPersonID)

	tl := r.Reconstruct(Ticket{
		ID:        13,
		Intake:    *day(2021, 6, 1),
		IntakeBy:  str("  SJEF "),
		HandledBy: str("Ali/Frans"),
	})

	assert.Equal(t, []int64{897, 1648}, tl.People)
	assert.Empty(t, tl.Logs)
}

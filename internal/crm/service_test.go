package crm

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aushadhi-pos/aushadhi-pos/internal/sales"
	"github.com/aushadhi-pos/aushadhi-pos/internal/settings"
)

type fakeSales struct {
	lines []sales.SaleLine
}

func (f *fakeSales) ListWithCustomerPhone(_ context.Context, _ uuid.UUID) ([]sales.SaleLine, error) {
	return f.lines, nil
}

type fakeNotes struct {
	note string
}

func (f *fakeNotes) Get(_ context.Context, accountID uuid.UUID) (*settings.Settings, error) {
	s := settings.Defaults(accountID)
	s.ReminderNote = f.note
	return &s, nil
}

func intp(v int) *int { return &v }

func newService(lines []sales.SaleLine, note string) *Service {
	svc := NewService(&fakeSales{lines: lines}, &fakeNotes{note: note})
	svc.now = func() time.Time { return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC) }
	return svc
}

func saleLine(phone, name string, created time.Time, prescribed, taken *int) sales.SaleLine {
	return sales.SaleLine{
		ID:                 uuid.New(),
		CustomerPhone:      phone,
		CustomerName:       name,
		CreatedAt:          created,
		PrescriptionMonths: prescribed,
		MonthsTaken:        taken,
	}
}

func TestClassify(t *testing.T) {
	now := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	_, status := Classify(now, nil, nil, now)
	assert.Equal(t, StatusUnknown, status)

	// all prescribed months taken
	_, status = Classify(now.Add(-100*24*time.Hour), intp(3), intp(3), now)
	assert.Equal(t, StatusCompleted, status)

	// one window taken 40 days ago: next window opened 10 days ago
	due, status := Classify(now.Add(-40*24*time.Hour), intp(3), intp(1), now)
	assert.Equal(t, StatusDue, status)
	require.NotNil(t, due)
	assert.Equal(t, now.Add(-10*24*time.Hour), *due)

	// one window taken 10 days ago: next window opens in 20 days
	_, status = Classify(now.Add(-10*24*time.Hour), intp(3), intp(1), now)
	assert.Equal(t, StatusActive, status)
}

func TestCustomersNewestSaleWins(t *testing.T) {
	old := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	svc := newService([]sales.SaleLine{
		saleLine("9845000000", "Asha Rao", old, intp(6), intp(1)),
		saleLine("9845000000", "Asha Rao", recent, intp(6), intp(2)),
	}, "")

	customers, err := svc.Customers(context.Background(), uuid.New(), "")
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, recent, customers[0].LastPurchase)
	assert.Equal(t, 2, *customers[0].MonthsTaken)
}

func TestCustomersKeepPrescriptionFromOlderSale(t *testing.T) {
	old := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	svc := newService([]sales.SaleLine{
		saleLine("9845000000", "Asha Rao", old, intp(6), intp(1)),
		saleLine("9845000000", "Asha Rao", recent, nil, nil),
	}, "")

	customers, err := svc.Customers(context.Background(), uuid.New(), "")
	require.NoError(t, err)
	require.Len(t, customers, 1)
	require.NotNil(t, customers[0].PrescriptionMonths)
	assert.Equal(t, 6, *customers[0].PrescriptionMonths)
	assert.Equal(t, StatusUnknown, customers[0].Status)
}

func TestCustomersSearch(t *testing.T) {
	now := time.Now()
	svc := newService([]sales.SaleLine{
		saleLine("9845000000", "Asha Rao", now, nil, nil),
		saleLine("9900011122", "Vikram Shetty", now.Add(-time.Hour), nil, nil),
	}, "")

	customers, err := svc.Customers(context.Background(), uuid.New(), "vikram")
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "Vikram Shetty", customers[0].Name)

	customers, err = svc.Customers(context.Background(), uuid.New(), "98450")
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "Asha Rao", customers[0].Name)
}

func TestDueCustomers(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc := newService([]sales.SaleLine{
		saleLine("9845000000", "Asha Rao", now.Add(-40*24*time.Hour), intp(3), intp(1)),
		saleLine("9900011122", "Vikram Shetty", now.Add(-5*24*time.Hour), intp(3), intp(1)),
	}, "")

	due, err := svc.DueCustomers(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "Asha Rao", due[0].Name)
}

func TestReminderMessage(t *testing.T) {
	svc := newService(nil, "Sri Balaji Medicals wishes you good health.")
	nextDue := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)

	msg, err := svc.ReminderMessage(context.Background(), uuid.New(), CustomerSummary{
		Phone:              "9845000000",
		Name:               "Asha Rao",
		PrescriptionMonths: intp(6),
		MonthsTaken:        intp(2),
		NextDue:            &nextDue,
		Notes:              "after food",
	})
	require.NoError(t, err)

	assert.Contains(t, msg, "Sri Balaji Medicals wishes you good health.")
	assert.Contains(t, msg, "Hello Asha Rao")
	assert.Contains(t, msg, "Prescribed months: 6")
	assert.Contains(t, msg, "Months taken: 2")
	assert.Contains(t, msg, "Next due date: 10/09/2026")
	assert.Contains(t, msg, "Notes: after food")
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "919845000000", NormalizePhone("98450 00000"))
	assert.Equal(t, "919845000000", NormalizePhone("+91 98450 00000"))
	assert.Equal(t, "14155550123", NormalizePhone("+1 415 555 0123"))
}

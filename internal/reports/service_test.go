package reports

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aushadhi-pos/aushadhi-pos/internal/catalog"
	"github.com/aushadhi-pos/aushadhi-pos/internal/crm"
)

type fakeCatalog struct {
	total    int
	lowStock []catalog.Product
	expiring []catalog.Product
}

func (f *fakeCatalog) List(_ context.Context, _ uuid.UUID, _ catalog.ListFilter) ([]catalog.Product, int, error) {
	return nil, f.total, nil
}

func (f *fakeCatalog) ListLowStock(_ context.Context, _ uuid.UUID) ([]catalog.Product, error) {
	return f.lowStock, nil
}

func (f *fakeCatalog) ListExpiring(_ context.Context, _ uuid.UUID, _ time.Duration) ([]catalog.Product, error) {
	return f.expiring, nil
}

type fakeSales struct {
	total float64
	count int
	since time.Time
}

func (f *fakeSales) TotalsSince(_ context.Context, _ uuid.UUID, since time.Time) (float64, int, error) {
	f.since = since
	return f.total, f.count, nil
}

type fakeCRM struct {
	customers []crm.CustomerSummary
}

func (f *fakeCRM) Customers(_ context.Context, _ uuid.UUID, _ string) ([]crm.CustomerSummary, error) {
	return f.customers, nil
}

func TestDashboard(t *testing.T) {
	now := time.Date(2026, 8, 31, 15, 30, 0, 0, time.UTC)
	pastExpiry := now.Add(-24 * time.Hour)
	soonExpiry := now.Add(10 * 24 * time.Hour)

	catalogSrc := &fakeCatalog{
		total:    42,
		lowStock: make([]catalog.Product, 3),
		expiring: []catalog.Product{
			{ExpiryDate: &pastExpiry},
			{ExpiryDate: &soonExpiry},
			{ExpiryDate: &soonExpiry},
		},
	}
	salesSrc := &fakeSales{total: 4520.50, count: 17}
	crmSrc := &fakeCRM{customers: []crm.CustomerSummary{
		{Status: crm.StatusActive},
		{Status: crm.StatusActive},
		{Status: crm.StatusDue},
		{Status: crm.StatusCompleted},
		{Status: crm.StatusUnknown},
	}}

	svc := NewService(catalogSrc, salesSrc, crmSrc)
	svc.now = func() time.Time { return now }

	stats, err := svc.Dashboard(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, 42, stats.Products)
	assert.InDelta(t, 4520.50, stats.TodaysSalesTotal, 0.001)
	assert.Equal(t, 17, stats.TodaysSalesCount)
	assert.Equal(t, 3, stats.LowStock)
	assert.Equal(t, 1, stats.Expired)
	assert.Equal(t, 2, stats.ExpiringSoon)
	assert.Equal(t, 2, stats.ActivePrescriptions)
	assert.Equal(t, 1, stats.DueRefills)

	// sales are counted from local midnight
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), salesSrc.since)
}

package billing

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aushadhi-pos/aushadhi-pos/internal/platform/httpx"
	"github.com/aushadhi-pos/aushadhi-pos/internal/pricing"
	"github.com/aushadhi-pos/aushadhi-pos/internal/sales"
	"github.com/aushadhi-pos/aushadhi-pos/internal/settings"
)

type fakeBills struct {
	lines map[uuid.UUID][]sales.SaleLine
}

func (f *fakeBills) Bill(_ context.Context, _ uuid.UUID, billID uuid.UUID) ([]sales.SaleLine, error) {
	lines, ok := f.lines[billID]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return lines, nil
}

type fakeProfiles struct{}

func (f *fakeProfiles) Get(_ context.Context, accountID uuid.UUID) (*settings.Settings, error) {
	s := settings.Defaults(accountID)
	return &s, nil
}

func (f *fakeProfiles) GetProfile(_ context.Context, accountID uuid.UUID) (*settings.StoreProfile, error) {
	return &settings.StoreProfile{
		AccountID: accountID,
		Name:      "Sri Balaji Medicals",
		Address:   "12 MG Road, Bengaluru",
		Phone:     "+91 98450 00000",
		GSTIN:     "29ABCDE1234F1Z5",
	}, nil
}

func newBill(t *testing.T) (*Service, uuid.UUID, uuid.UUID) {
	t.Helper()
	accountID := uuid.New()
	billID := uuid.New()

	// 100 x 2 at 10% discount, 12% exclusive GST: tax 21.60, total 202
	lines := []sales.SaleLine{{
		ID:                 uuid.New(),
		AccountID:          accountID,
		BillID:             &billID,
		ProductID:          uuid.New(),
		ProductName:        "Paracetamol 500mg",
		Quantity:           2,
		UnitPrice:          100,
		TotalPrice:         202,
		TaxAmount:          21.60,
		DiscountPercentage: 10,
		PaymentMode:        "cash",
		CustomerName:       "Asha Rao",
		CustomerPhone:      "9845000000",
		CreatedAt:          time.Date(2026, 3, 14, 11, 30, 0, 0, time.UTC),
	}}
	svc := NewService(&fakeBills{lines: map[uuid.UUID][]sales.SaleLine{billID: lines}}, &fakeProfiles{})
	return svc, accountID, billID
}

func TestReconstructDerivesRateAndDiscount(t *testing.T) {
	svc, accountID, billID := newBill(t)

	bill, err := svc.Reconstruct(context.Background(), accountID, billID)
	require.NoError(t, err)

	require.Len(t, bill.Lines, 1)
	line := bill.Lines[0]
	// 21.60 / (202 - 21.60) x 100, the rounded totals pull it slightly off 12
	assert.InEpsilon(t, 12, line.TaxRate, 0.005)
	assert.InDelta(t, 20, line.DiscountAmount, 0.001)

	assert.InDelta(t, 180.40, bill.Subtotal, 0.001)
	assert.InDelta(t, 21.60, bill.TotalTax, 0.001)
	assert.InDelta(t, 20, bill.TotalDiscount, 0.001)
	assert.InDelta(t, 202, bill.GrandTotal, 0.001)

	assert.Equal(t, "Asha Rao", bill.CustomerName)
	assert.Equal(t, "Sri Balaji Medicals", bill.Store.Name)
}

func TestReconstructTaxFreeLine(t *testing.T) {
	accountID := uuid.New()
	billID := uuid.New()
	lines := []sales.SaleLine{{
		BillID:     &billID,
		AccountID:  accountID,
		Quantity:   2,
		UnitPrice:  90,
		TotalPrice: 180,
		TaxAmount:  0,
		CreatedAt:  time.Now(),
	}}
	svc := NewService(&fakeBills{lines: map[uuid.UUID][]sales.SaleLine{billID: lines}}, &fakeProfiles{})

	bill, err := svc.Reconstruct(context.Background(), accountID, billID)
	require.NoError(t, err)
	assert.Zero(t, bill.Lines[0].TaxRate)
	assert.InDelta(t, 180, bill.Subtotal, 0.001)
	assert.Zero(t, bill.TotalDiscount)
}

func TestReconstructMatchesDeriveFormula(t *testing.T) {
	svc, accountID, billID := newBill(t)

	bill, err := svc.Reconstruct(context.Background(), accountID, billID)
	require.NoError(t, err)

	line := bill.Lines[0]
	want := pricing.DeriveTaxRate(line.TaxAmount, line.LineTotal)
	assert.InDelta(t, want, line.TaxRate, 0.000001)
}

func TestReconstructUnknownBill(t *testing.T) {
	svc, accountID, _ := newBill(t)

	_, err := svc.Reconstruct(context.Background(), accountID, uuid.New())
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestRenderReceipt(t *testing.T) {
	svc, accountID, billID := newBill(t)

	bill, err := svc.Reconstruct(context.Background(), accountID, billID)
	require.NoError(t, err)

	receipt := Render(bill)
	assert.Contains(t, receipt, "Sri Balaji Medicals")
	assert.Contains(t, receipt, "GSTIN: 29ABCDE1234F1Z5")
	assert.Contains(t, receipt, "Paracetamol 500mg")
	assert.Contains(t, receipt, "6.0%") // 12% split into CGST + SGST halves
	assert.Contains(t, receipt, "Grand Total")
	assert.Contains(t, receipt, "202")
	assert.Contains(t, receipt, "cash")
	assert.True(t, strings.HasSuffix(strings.TrimRight(receipt, "\n"), "Get well soon!"))
}

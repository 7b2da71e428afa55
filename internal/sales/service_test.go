package sales

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aushadhi-pos/aushadhi-pos/internal/catalog"
	"github.com/aushadhi-pos/aushadhi-pos/internal/observability"
	"github.com/aushadhi-pos/aushadhi-pos/internal/platform/httpx"
	"github.com/aushadhi-pos/aushadhi-pos/internal/pricing"
	"github.com/aushadhi-pos/aushadhi-pos/internal/settings"
)

type memoryRepo struct {
	lines []SaleLine
}

func (m *memoryRepo) InsertLines(_ context.Context, lines []SaleLine) error {
	for _, l := range lines {
		if l.ID == uuid.Nil {
			l.ID = uuid.New()
		}
		m.lines = append(m.lines, l)
	}
	return nil
}

func (m *memoryRepo) List(_ context.Context, accountID uuid.UUID, filter ListFilter) ([]SaleLine, int, error) {
	var out []SaleLine
	for _, l := range m.lines {
		if l.AccountID != accountID {
			continue
		}
		if filter.Returns && !l.IsReturn() {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(l.CustomerName), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, l)
	}
	return out, len(out), nil
}

func (m *memoryRepo) ListByBill(_ context.Context, accountID, billID uuid.UUID) ([]SaleLine, error) {
	var out []SaleLine
	for _, l := range m.lines {
		if l.AccountID == accountID && l.BillID != nil && *l.BillID == billID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memoryRepo) Get(_ context.Context, accountID, id uuid.UUID) (*SaleLine, error) {
	for _, l := range m.lines {
		if l.AccountID == accountID && l.ID == id {
			line := l
			return &line, nil
		}
	}
	return nil, httpx.ErrNotFound
}

func (m *memoryRepo) ListWithCustomerPhone(_ context.Context, accountID uuid.UUID) ([]SaleLine, error) {
	var out []SaleLine
	for _, l := range m.lines {
		if l.AccountID == accountID && l.CustomerPhone != "" {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memoryRepo) TotalsSince(_ context.Context, accountID uuid.UUID, since time.Time) (float64, int, error) {
	var total float64
	var count int
	for _, l := range m.lines {
		if l.AccountID == accountID && !l.CreatedAt.Before(since) {
			total += l.TotalPrice
			count++
		}
	}
	return total, count, nil
}

type fakeProducts struct {
	products      map[uuid.UUID]*catalog.Product
	failDecrement bool
}

func (f *fakeProducts) Get(_ context.Context, _ uuid.UUID, id uuid.UUID) (*catalog.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (f *fakeProducts) DecrementStock(_ context.Context, _ uuid.UUID, id uuid.UUID, qty int) error {
	if f.failDecrement {
		return errors.New("connection reset")
	}
	p, ok := f.products[id]
	if !ok {
		return httpx.ErrNotFound
	}
	if p.Quantity < qty {
		return catalog.ErrStockExhausted
	}
	p.Quantity -= qty
	return nil
}

func (f *fakeProducts) IncrementStock(_ context.Context, _ uuid.UUID, id uuid.UUID, qty int) error {
	p, ok := f.products[id]
	if !ok {
		return httpx.ErrNotFound
	}
	p.Quantity += qty
	return nil
}

type fakeSettings struct {
	s settings.Settings
}

func (f *fakeSettings) Get(_ context.Context, _ uuid.UUID) (*settings.Settings, error) {
	s := f.s
	return &s, nil
}

type fixture struct {
	svc       *Service
	repo      *memoryRepo
	products  *fakeProducts
	settings  *fakeSettings
	accountID uuid.UUID
	userID    uuid.UUID
	product   *catalog.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	product := &catalog.Product{
		ID:           uuid.New(),
		Name:         "Paracetamol 500mg",
		SellingPrice: 100,
		Quantity:     10,
	}
	repo := &memoryRepo{}
	products := &fakeProducts{products: map[uuid.UUID]*catalog.Product{product.ID: product}}
	settingsReader := &fakeSettings{s: settings.Settings{
		Currency:       "₹",
		TaxEnabled:     true,
		TaxMode:        pricing.TaxExclusive,
		DefaultTaxRate: 12,
	}}
	svc := NewService(repo, products, settingsReader, observability.NewMetrics(), slog.Default())
	return &fixture{
		svc:       svc,
		repo:      repo,
		products:  products,
		settings:  settingsReader,
		accountID: uuid.New(),
		userID:    uuid.New(),
		product:   product,
	}
}

func TestCheckoutExclusiveTax(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Checkout(context.Background(), f.accountID, f.userID, CheckoutRequest{
		Items:              []CheckoutItem{{ProductID: f.product.ID, Quantity: 2}},
		DiscountPercentage: 10,
		PaymentMode:        "cash",
	})
	require.NoError(t, err)

	require.Len(t, result.Lines, 1)
	line := result.Lines[0]
	assert.InDelta(t, 100, line.UnitPrice, 0.001)
	assert.InDelta(t, 21.60, line.TaxAmount, 0.001)
	assert.InDelta(t, 202, line.TotalPrice, 0.001)
	assert.Equal(t, "Walk-in Customer", line.CustomerName)
	require.NotNil(t, line.BillID)
	assert.Equal(t, result.BillID, *line.BillID)

	assert.InDelta(t, 200, result.Subtotal, 0.001)
	assert.InDelta(t, 20, result.TotalDiscount, 0.001)
	assert.InDelta(t, 21.60, result.TotalTax, 0.001)
	assert.InDelta(t, 202, result.GrandTotal, 0.001)

	assert.Equal(t, 8, f.product.Quantity)
}

func TestCheckoutInclusiveTax(t *testing.T) {
	f := newFixture(t)
	f.settings.s.TaxMode = pricing.TaxInclusive

	result, err := f.svc.Checkout(context.Background(), f.accountID, f.userID, CheckoutRequest{
		Items:              []CheckoutItem{{ProductID: f.product.ID, Quantity: 2}},
		DiscountPercentage: 10,
		PaymentMode:        "upi",
	})
	require.NoError(t, err)

	line := result.Lines[0]
	assert.InDelta(t, 21.60, line.TaxAmount, 0.001)
	assert.InDelta(t, 180, line.TotalPrice, 0.001)
	assert.InDelta(t, 180, result.GrandTotal, 0.001)
}

func TestCheckoutTaxDisabled(t *testing.T) {
	f := newFixture(t)
	f.settings.s.TaxEnabled = false

	result, err := f.svc.Checkout(context.Background(), f.accountID, f.userID, CheckoutRequest{
		Items:              []CheckoutItem{{ProductID: f.product.ID, Quantity: 2}},
		DiscountPercentage: 10,
		PaymentMode:        "cash",
	})
	require.NoError(t, err)

	line := result.Lines[0]
	assert.Zero(t, line.TaxAmount)
	assert.InDelta(t, 180, line.TotalPrice, 0.001)
	assert.Zero(t, result.TotalTax)
}

func TestCheckoutCumulativeStockGuard(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Checkout(context.Background(), f.accountID, f.userID, CheckoutRequest{
		Items: []CheckoutItem{
			{ProductID: f.product.ID, Quantity: 6},
			{ProductID: f.product.ID, Quantity: 6},
		},
		PaymentMode: "cash",
	})
	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 10, stockErr.Available)

	// nothing persisted, stock untouched
	assert.Empty(t, f.repo.lines)
	assert.Equal(t, 10, f.product.Quantity)
}

func TestCheckoutOversellGapSurfaced(t *testing.T) {
	f := newFixture(t)
	f.products.failDecrement = true

	result, err := f.svc.Checkout(context.Background(), f.accountID, f.userID, CheckoutRequest{
		Items:       []CheckoutItem{{ProductID: f.product.ID, Quantity: 2}},
		PaymentMode: "cash",
	})
	require.NoError(t, err)

	// the bill stays durable, the gap is reported instead of rolled back
	require.Len(t, f.repo.lines, 1)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Paracetamol 500mg")
}

func TestCheckoutValidatesRequest(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Checkout(context.Background(), f.accountID, f.userID, CheckoutRequest{
		PaymentMode: "cash",
	})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = f.svc.Checkout(context.Background(), f.accountID, f.userID, CheckoutRequest{
		Items:       []CheckoutItem{{ProductID: f.product.ID, Quantity: 1}},
		PaymentMode: "barter",
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestReturnPartial(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Checkout(context.Background(), f.accountID, f.userID, CheckoutRequest{
		Items:       []CheckoutItem{{ProductID: f.product.ID, Quantity: 4}},
		PaymentMode: "cash",
	})
	require.NoError(t, err)
	sold := result.Lines[0]
	require.Equal(t, 6, f.product.Quantity)

	ret, err := f.svc.Return(context.Background(), f.accountID, f.userID, ReturnRequest{
		SaleLineID: sold.ID,
		Quantity:   2,
	})
	require.NoError(t, err)

	assert.Equal(t, -2, ret.Line.Quantity)
	assert.InDelta(t, sold.UnitPrice, ret.Line.UnitPrice, 0.001)
	assert.InDelta(t, -sold.TaxAmount/2, ret.Line.TaxAmount, 0.01)
	expectedRefund := sold.UnitPrice*2 + sold.TaxAmount/2
	assert.InDelta(t, expectedRefund, ret.RefundAmount, 0.01)
	assert.Equal(t, 8, f.product.Quantity)
	assert.Nil(t, ret.Line.BillID)
}

func TestReturnRejectsExcessQuantity(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Checkout(context.Background(), f.accountID, f.userID, CheckoutRequest{
		Items:       []CheckoutItem{{ProductID: f.product.ID, Quantity: 2}},
		PaymentMode: "cash",
	})
	require.NoError(t, err)

	_, err = f.svc.Return(context.Background(), f.accountID, f.userID, ReturnRequest{
		SaleLineID: result.Lines[0].ID,
		Quantity:   3,
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestReturnRejectsReturnOfReturn(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Checkout(context.Background(), f.accountID, f.userID, CheckoutRequest{
		Items:       []CheckoutItem{{ProductID: f.product.ID, Quantity: 2}},
		PaymentMode: "cash",
	})
	require.NoError(t, err)

	ret, err := f.svc.Return(context.Background(), f.accountID, f.userID, ReturnRequest{
		SaleLineID: result.Lines[0].ID,
		Quantity:   1,
	})
	require.NoError(t, err)

	_, err = f.svc.Return(context.Background(), f.accountID, f.userID, ReturnRequest{
		SaleLineID: ret.Line.ID,
		Quantity:   1,
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestBillNotFoundWhenEmpty(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Bill(context.Background(), f.accountID, uuid.New())
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

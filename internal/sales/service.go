package sales

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/aushadhi-pos/aushadhi-pos/internal/catalog"
	"github.com/aushadhi-pos/aushadhi-pos/internal/observability"
	"github.com/aushadhi-pos/aushadhi-pos/internal/platform/httpx"
	"github.com/aushadhi-pos/aushadhi-pos/internal/pricing"
	"github.com/aushadhi-pos/aushadhi-pos/internal/settings"
)

// ProductStore is the slice of the catalog the checkout flow needs.
type ProductStore interface {
	Get(ctx context.Context, accountID, id uuid.UUID) (*catalog.Product, error)
	DecrementStock(ctx context.Context, accountID, id uuid.UUID, qty int) error
	IncrementStock(ctx context.Context, accountID, id uuid.UUID, qty int) error
}

// SettingsReader resolves the account's current tax configuration.
type SettingsReader interface {
	Get(ctx context.Context, accountID uuid.UUID) (*settings.Settings, error)
}

// Service runs checkouts and returns.
type Service struct {
	repo     Repository
	products ProductStore
	settings SettingsReader
	metrics  *observability.Metrics
	logger   *slog.Logger
	validate *validator.Validate
	now      func() time.Time
}

// NewService constructs a sales service.
func NewService(repo Repository, products ProductStore, settingsReader SettingsReader,
	metrics *observability.Metrics, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		products: products,
		settings: settingsReader,
		metrics:  metrics,
		logger:   logger,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Checkout prices the cart against the account's current settings and
// persists one line per item under a fresh bill ID, then decrements stock.
// The steps are sequential, not one transaction: a decrement failure after
// the lines are durable leaves stock oversold. That gap is logged as an
// operational alert and counted, never silently swallowed.
func (s *Service) Checkout(ctx context.Context, accountID, userID uuid.UUID, req CheckoutRequest) (*CheckoutResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}

	cart := &Cart{}
	for _, item := range req.Items {
		product, err := s.products.Get(ctx, accountID, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("load product %s: %w", item.ProductID, err)
		}
		if err := cart.AddItem(*product, item.Quantity, item.PriceOverride, item.TaxRateOverride); err != nil {
			return nil, err
		}
	}

	current, err := s.settings.Get(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	discountPct := pricing.SanitizePercent(req.DiscountPercentage)
	priced, totals := pricing.ComputeCart(cart.Lines(), discountPct, current.Pricing())

	customerName := req.CustomerName
	if customerName == "" {
		customerName = "Walk-in Customer"
	}

	billID := uuid.New()
	now := s.now()
	items := cart.Items()
	lines := make([]SaleLine, 0, len(items))
	for i, item := range items {
		lines = append(lines, SaleLine{
			ID:                 uuid.New(),
			AccountID:          accountID,
			BillID:             &billID,
			ProductID:          item.ProductID,
			ProductName:        item.ProductName,
			Quantity:           item.Quantity,
			UnitPrice:          priced[i].UnitPrice,
			TotalPrice:         priced[i].LineTotal,
			TaxAmount:          priced[i].TaxAmount,
			DiscountPercentage: discountPct,
			PaymentMode:        req.PaymentMode,
			CustomerName:       customerName,
			CustomerPhone:      req.CustomerPhone,
			CustomerAddress:    req.CustomerAddress,
			PrescriptionMonths: req.PrescriptionMonths,
			MonthsTaken:        req.MonthsTaken,
			PrescriptionNotes:  req.PrescriptionNotes,
			UserID:             userID,
			CreatedAt:          now,
		})
	}

	if err := s.repo.InsertLines(ctx, lines); err != nil {
		return nil, fmt.Errorf("persist bill: %w", err)
	}

	result := &CheckoutResult{
		BillID:        billID,
		Lines:         lines,
		Subtotal:      totals.Subtotal,
		TotalDiscount: totals.TotalDiscount,
		TotalTax:      totals.TotalTax,
		GrandTotal:    totals.GrandTotal,
	}

	for _, item := range items {
		if err := s.products.DecrementStock(ctx, accountID, item.ProductID, item.Quantity); err != nil {
			s.logger.Error("stock decrement failed after bill insert, stock is oversold",
				slog.String("bill_id", billID.String()),
				slog.String("product_id", item.ProductID.String()),
				slog.Int("quantity", item.Quantity),
				slog.Any("error", err))
			s.metrics.OversellAlert()
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("stock for %s could not be reduced; adjust it manually", item.ProductName))
		}
	}

	s.metrics.CheckoutRecorded()
	return result, nil
}

// Return posts a negative line against a sold one. The refund scales the
// original tax by the returned fraction; the unit price carries over as is.
func (s *Service) Return(ctx context.Context, accountID, userID uuid.UUID, req ReturnRequest) (*ReturnResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}

	original, err := s.repo.Get(ctx, accountID, req.SaleLineID)
	if err != nil {
		return nil, err
	}
	if original.IsReturn() {
		return nil, fmt.Errorf("%w: cannot return a return entry", httpx.ErrValidation)
	}
	if req.Quantity > original.Quantity {
		return nil, fmt.Errorf("%w: cannot return more than %d items", httpx.ErrValidation, original.Quantity)
	}

	taxAmount, total := pricing.ReturnAmounts(original.UnitPrice, original.TaxAmount, original.Quantity, req.Quantity)

	line := SaleLine{
		ID:            uuid.New(),
		AccountID:     accountID,
		ProductID:     original.ProductID,
		ProductName:   original.ProductName,
		Quantity:      -req.Quantity,
		UnitPrice:     original.UnitPrice,
		TotalPrice:    -total,
		TaxAmount:     -taxAmount,
		CustomerName:  original.CustomerName,
		CustomerPhone: original.CustomerPhone,
		UserID:        userID,
		CreatedAt:     s.now(),
	}
	if err := s.repo.InsertLines(ctx, []SaleLine{line}); err != nil {
		return nil, fmt.Errorf("persist return: %w", err)
	}

	if err := s.products.IncrementStock(ctx, accountID, original.ProductID, req.Quantity); err != nil {
		s.logger.Error("stock increment failed after return insert",
			slog.String("product_id", original.ProductID.String()),
			slog.Int("quantity", req.Quantity),
			slog.Any("error", err))
	}

	s.metrics.ReturnRecorded()
	return &ReturnResult{Line: line, RefundAmount: total}, nil
}

// List returns sale lines for the account.
func (s *Service) List(ctx context.Context, accountID uuid.UUID, filter ListFilter) ([]SaleLine, int, error) {
	return s.repo.List(ctx, accountID, filter)
}

// Bill returns every line persisted under one bill ID.
func (s *Service) Bill(ctx context.Context, accountID, billID uuid.UUID) ([]SaleLine, error) {
	lines, err := s.repo.ListByBill(ctx, accountID, billID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, httpx.ErrNotFound
	}
	return lines, nil
}

package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/aushadhi-pos/aushadhi-pos/internal/platform/httpx"
)

// Service provides business logic for catalog operations.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService constructs a catalog service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// CreateProductRequest carries validated product input.
type CreateProductRequest struct {
	Name              string     `json:"name" validate:"required,max=200"`
	HSNCode           string     `json:"hsn_code" validate:"max=20"`
	Category          string     `json:"category" validate:"max=100"`
	BatchNumber       string     `json:"batch_number" validate:"max=50"`
	Manufacturer      string     `json:"manufacturer" validate:"max=200"`
	ExpiryDate        *time.Time `json:"expiry_date,omitempty"`
	Quantity          int        `json:"quantity" validate:"gte=0"`
	PurchasePrice     float64    `json:"purchase_price" validate:"gte=0"`
	SellingPrice      float64    `json:"selling_price" validate:"required,gte=0"`
	TaxRate           float64    `json:"gst" validate:"gte=0,lte=100"`
	Supplier          string     `json:"supplier" validate:"max=200"`
	LowStockThreshold int        `json:"low_stock_threshold" validate:"gte=0"`
}

// List returns products for the account.
func (s *Service) List(ctx context.Context, accountID uuid.UUID, filter ListFilter) ([]Product, int, error) {
	return s.repo.List(ctx, accountID, filter)
}

// Get returns one product.
func (s *Service) Get(ctx context.Context, accountID, id uuid.UUID) (*Product, error) {
	return s.repo.Get(ctx, accountID, id)
}

// Create validates and stores a new product.
func (s *Service) Create(ctx context.Context, accountID uuid.UUID, req CreateProductRequest) (*Product, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	product := Product{
		AccountID:         accountID,
		Name:              req.Name,
		HSNCode:           req.HSNCode,
		Category:          req.Category,
		BatchNumber:       req.BatchNumber,
		Manufacturer:      req.Manufacturer,
		ExpiryDate:        req.ExpiryDate,
		Quantity:          req.Quantity,
		PurchasePrice:     req.PurchasePrice,
		SellingPrice:      req.SellingPrice,
		TaxRate:           req.TaxRate,
		Supplier:          req.Supplier,
		LowStockThreshold: req.LowStockThreshold,
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return created, nil
}

// Update validates and stores changes to an existing product.
func (s *Service) Update(ctx context.Context, accountID, id uuid.UUID, req CreateProductRequest) (*Product, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	existing, err := s.repo.Get(ctx, accountID, id)
	if err != nil {
		return nil, err
	}
	existing.Name = req.Name
	existing.HSNCode = req.HSNCode
	existing.Category = req.Category
	existing.BatchNumber = req.BatchNumber
	existing.Manufacturer = req.Manufacturer
	existing.ExpiryDate = req.ExpiryDate
	existing.Quantity = req.Quantity
	existing.PurchasePrice = req.PurchasePrice
	existing.SellingPrice = req.SellingPrice
	existing.TaxRate = req.TaxRate
	existing.Supplier = req.Supplier
	existing.LowStockThreshold = req.LowStockThreshold

	if err := s.repo.Update(ctx, *existing); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return existing, nil
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	return s.repo.Delete(ctx, accountID, id)
}

// LowStock lists products at or below their threshold.
func (s *Service) LowStock(ctx context.Context, accountID uuid.UUID) ([]Product, error) {
	return s.repo.ListLowStock(ctx, accountID)
}

// Expiring lists products expiring within the window.
func (s *Service) Expiring(ctx context.Context, accountID uuid.UUID, within time.Duration) ([]Product, error) {
	return s.repo.ListExpiring(ctx, accountID, within)
}

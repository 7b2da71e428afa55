// Package reports assembles the dashboard statistics.
package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/aushadhi-pos/aushadhi-pos/internal/catalog"
	"github.com/aushadhi-pos/aushadhi-pos/internal/crm"
)

// Stats is the dashboard snapshot for one account.
type Stats struct {
	Products            int     `json:"products"`
	TodaysSalesTotal    float64 `json:"todays_sales_total"`
	TodaysSalesCount    int     `json:"todays_sales_count"`
	LowStock            int     `json:"low_stock"`
	Expired             int     `json:"expired"`
	ExpiringSoon        int     `json:"expiring_soon"`
	ActivePrescriptions int     `json:"active_prescriptions"`
	DueRefills          int     `json:"due_refills"`
}

// CatalogSource is the slice of the catalog the dashboard reads.
type CatalogSource interface {
	List(ctx context.Context, accountID uuid.UUID, filter catalog.ListFilter) ([]catalog.Product, int, error)
	ListLowStock(ctx context.Context, accountID uuid.UUID) ([]catalog.Product, error)
	ListExpiring(ctx context.Context, accountID uuid.UUID, within time.Duration) ([]catalog.Product, error)
}

// SalesSource aggregates sale totals.
type SalesSource interface {
	TotalsSince(ctx context.Context, accountID uuid.UUID, since time.Time) (float64, int, error)
}

// CRMSource lists customer refill summaries.
type CRMSource interface {
	Customers(ctx context.Context, accountID uuid.UUID, search string) ([]crm.CustomerSummary, error)
}

// Service computes dashboard stats.
type Service struct {
	products  CatalogSource
	sales     SalesSource
	customers CRMSource
	now       func() time.Time
}

// NewService constructs a reports service.
func NewService(products CatalogSource, sales SalesSource, customers CRMSource) *Service {
	return &Service{products: products, sales: sales, customers: customers, now: time.Now}
}

const expiryHorizon = 30 * 24 * time.Hour

// Dashboard gathers the stats for one account. The source queries are
// independent so they run concurrently.
func (s *Service) Dashboard(ctx context.Context, accountID uuid.UUID) (*Stats, error) {
	now := s.now()
	stats := &Stats{}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		_, total, err := s.products.List(ctx, accountID, catalog.ListFilter{PerPage: 1})
		if err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		stats.Products = total
		return nil
	})

	g.Go(func() error {
		startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		total, count, err := s.sales.TotalsSince(ctx, accountID, startOfDay)
		if err != nil {
			return fmt.Errorf("todays sales: %w", err)
		}
		stats.TodaysSalesTotal = total
		stats.TodaysSalesCount = count
		return nil
	})

	g.Go(func() error {
		lowStock, err := s.products.ListLowStock(ctx, accountID)
		if err != nil {
			return fmt.Errorf("low stock: %w", err)
		}
		stats.LowStock = len(lowStock)
		return nil
	})

	g.Go(func() error {
		expiring, err := s.products.ListExpiring(ctx, accountID, expiryHorizon)
		if err != nil {
			return fmt.Errorf("expiring products: %w", err)
		}
		for _, p := range expiring {
			if p.Expired(now) {
				stats.Expired++
			} else {
				stats.ExpiringSoon++
			}
		}
		return nil
	})

	g.Go(func() error {
		customers, err := s.customers.Customers(ctx, accountID, "")
		if err != nil {
			return fmt.Errorf("customer summaries: %w", err)
		}
		for _, c := range customers {
			switch c.Status {
			case crm.StatusActive:
				stats.ActivePrescriptions++
			case crm.StatusDue:
				stats.DueRefills++
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

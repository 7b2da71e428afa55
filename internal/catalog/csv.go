package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// csvHeader is the canonical column order for import and export.
var csvHeader = []string{
	"name", "hsn_code", "category", "batch_number", "manufacturer", "expiry_date",
	"quantity", "purchase_price", "selling_price", "gst", "supplier", "low_stock_threshold",
}

// ImportResult summarises a CSV import run.
type ImportResult struct {
	Inserted int      `json:"inserted"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings,omitempty"`
}

// ImportCSV reads product rows and inserts them in one transaction. Rows with
// unparseable numbers fall back to zero values rather than aborting the whole
// file; rows without a name are skipped and reported.
func (s *Service) ImportCSV(ctx context.Context, accountID uuid.UUID, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	if _, ok := index["name"]; !ok {
		return nil, fmt.Errorf("csv missing required column %q", "name")
	}

	result := &ImportResult{}
	var products []Product
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Skipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		field := func(name string) string {
			if i, ok := index[name]; ok && i < len(record) {
				return strings.TrimSpace(record[i])
			}
			return ""
		}
		name := field("name")
		if name == "" {
			result.Skipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("line %d: missing name", line))
			continue
		}
		p := Product{
			AccountID:         accountID,
			Name:              name,
			HSNCode:           field("hsn_code"),
			Category:          field("category"),
			BatchNumber:       field("batch_number"),
			Manufacturer:      field("manufacturer"),
			Quantity:          parseIntField(field("quantity")),
			PurchasePrice:     parseFloatField(field("purchase_price")),
			SellingPrice:      parseFloatField(field("selling_price")),
			TaxRate:           parseFloatField(field("gst")),
			Supplier:          field("supplier"),
			LowStockThreshold: parseIntField(field("low_stock_threshold")),
		}
		if raw := field("expiry_date"); raw != "" {
			if t, err := time.Parse("2006-01-02", raw); err == nil {
				p.ExpiryDate = &t
			} else {
				result.Warnings = append(result.Warnings, fmt.Sprintf("line %d: bad expiry date %q", line, raw))
			}
		}
		products = append(products, p)
	}

	if len(products) > 0 {
		inserted, err := s.repo.CreateBatch(ctx, products)
		if err != nil {
			return nil, fmt.Errorf("import products: %w", err)
		}
		result.Inserted = inserted
	}
	return result, nil
}

// ExportCSV writes every product of the account in the canonical column order.
func (s *Service) ExportCSV(ctx context.Context, accountID uuid.UUID, w io.Writer) error {
	products, _, err := s.repo.List(ctx, accountID, ListFilter{PerPage: 100000})
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, p := range products {
		expiry := ""
		if p.ExpiryDate != nil {
			expiry = p.ExpiryDate.Format("2006-01-02")
		}
		record := []string{
			p.Name, p.HSNCode, p.Category, p.BatchNumber, p.Manufacturer, expiry,
			strconv.Itoa(p.Quantity),
			strconv.FormatFloat(p.PurchasePrice, 'f', 2, 64),
			strconv.FormatFloat(p.SellingPrice, 'f', 2, 64),
			strconv.FormatFloat(p.TaxRate, 'f', -1, 64),
			p.Supplier,
			strconv.Itoa(p.LowStockThreshold),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// Malformed or negative numbers import as zero.
func parseIntField(raw string) int {
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func parseFloatField(raw string) float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

package billing

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.MustParse("en-IN"))

// amount formats a currency value with Indian digit grouping.
func amount(v float64) string {
	return printer.Sprintf("%v", number.Decimal(v, number.Scale(2)))
}

// Render produces the plain-text receipt for a reconstructed bill. The tax is
// shown split into equal CGST and SGST components, the intra-state case.
func Render(b *Bill) string {
	var sb strings.Builder
	line := strings.Repeat("-", 64)

	sb.WriteString(center(b.Store.Name, 64) + "\n")
	if b.Store.Address != "" {
		sb.WriteString(center(b.Store.Address, 64) + "\n")
	}
	if b.Store.Phone != "" {
		sb.WriteString(center("Phone: "+b.Store.Phone, 64) + "\n")
	}
	if b.Store.GSTIN != "" {
		sb.WriteString(center("GSTIN: "+b.Store.GSTIN, 64) + "\n")
	}
	sb.WriteString(line + "\n")

	sb.WriteString(fmt.Sprintf("Bill No : %s\n", b.BillID))
	sb.WriteString(fmt.Sprintf("Date    : %s\n", b.Date.Format("02 Jan 2006 15:04")))
	sb.WriteString(fmt.Sprintf("Customer: %s\n", b.CustomerName))
	if b.CustomerPhone != "" {
		sb.WriteString(fmt.Sprintf("Phone   : %s\n", b.CustomerPhone))
	}
	if b.PrescriptionNotes != "" {
		sb.WriteString(fmt.Sprintf("Notes   : %s\n", b.PrescriptionNotes))
	}
	sb.WriteString(line + "\n")

	sb.WriteString(fmt.Sprintf("%-20s %4s %9s %5s %5s %5s %10s\n",
		"Item", "Qty", "Price", "Disc", "CGST", "SGST", "Total"))
	for _, l := range b.Lines {
		half := l.TaxRate / 2
		cgst, sgst := "-", "-"
		if half > 0 {
			cgst = fmt.Sprintf("%.1f%%", half)
			sgst = cgst
		}
		disc := "0"
		if l.DiscountPercentage > 0 {
			disc = fmt.Sprintf("%g%%", l.DiscountPercentage)
		}
		sb.WriteString(fmt.Sprintf("%-20s %4d %9s %5s %5s %5s %10s\n",
			truncate(l.ProductName, 20), l.Quantity, amount(l.UnitPrice), disc, cgst, sgst, amount(l.LineTotal)))
	}
	sb.WriteString(line + "\n")

	sb.WriteString(fmt.Sprintf("%-48s %15s\n", "Subtotal", amount(b.Subtotal)))
	if b.TotalTax > 0 {
		sb.WriteString(fmt.Sprintf("%-48s %15s\n", "GST", amount(b.TotalTax)))
	}
	if b.TotalDiscount > 0 {
		sb.WriteString(fmt.Sprintf("%-48s %15s\n", "Discount", "- "+amount(b.TotalDiscount)))
	}
	sb.WriteString(fmt.Sprintf("%-48s %15s\n", "Grand Total", b.Currency+amount(b.GrandTotal)))
	sb.WriteString(fmt.Sprintf("%-48s %15s\n", "Payment Mode", b.PaymentMode))
	sb.WriteString(line + "\n")
	sb.WriteString(center("Thank you for your purchase. Get well soon!", 64) + "\n")

	return sb.String()
}

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	pad := (width - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

package crm

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aushadhi-pos/aushadhi-pos/internal/sales"
	"github.com/aushadhi-pos/aushadhi-pos/internal/settings"
)

// SaleSource lists sale lines that carry a customer phone.
type SaleSource interface {
	ListWithCustomerPhone(ctx context.Context, accountID uuid.UUID) ([]sales.SaleLine, error)
}

// NoteSource resolves the account's reminder note template.
type NoteSource interface {
	Get(ctx context.Context, accountID uuid.UUID) (*settings.Settings, error)
}

// Service aggregates customer summaries and builds refill reminders.
type Service struct {
	source SaleSource
	notes  NoteSource
	now    func() time.Time
}

// NewService constructs a CRM service.
func NewService(source SaleSource, notes NoteSource) *Service {
	return &Service{source: source, notes: notes, now: time.Now}
}

// Customers aggregates sale lines into one summary per phone, keeping the
// most recent sale's prescription data. An optional search term filters by
// name, phone or address.
func (s *Service) Customers(ctx context.Context, accountID uuid.UUID, search string) ([]CustomerSummary, error) {
	lines, err := s.source.ListWithCustomerPhone(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load customer sales: %w", err)
	}

	now := s.now()
	byPhone := make(map[string]CustomerSummary)
	for _, l := range lines {
		phone := strings.TrimSpace(l.CustomerPhone)
		if phone == "" {
			continue
		}
		existing, seen := byPhone[phone]
		if seen && !existing.LastPurchase.Before(l.CreatedAt) {
			continue
		}

		name := l.CustomerName
		if name == "" {
			name = "Walk-in Customer"
		}
		nextDue, status := Classify(l.CreatedAt, l.PrescriptionMonths, l.MonthsTaken, now)
		summary := CustomerSummary{
			Phone:              phone,
			Name:               name,
			Address:            l.CustomerAddress,
			LastPurchase:       l.CreatedAt,
			PrescriptionMonths: l.PrescriptionMonths,
			MonthsTaken:        l.MonthsTaken,
			Notes:              l.PrescriptionNotes,
			NextDue:            nextDue,
			Status:             status,
		}
		if seen {
			if summary.PrescriptionMonths == nil {
				summary.PrescriptionMonths = existing.PrescriptionMonths
			}
			if summary.MonthsTaken == nil {
				summary.MonthsTaken = existing.MonthsTaken
			}
			if summary.NextDue == nil {
				summary.NextDue = existing.NextDue
			}
		}
		byPhone[phone] = summary
	}

	out := make([]CustomerSummary, 0, len(byPhone))
	q := strings.ToLower(search)
	for _, c := range byPhone {
		if q != "" &&
			!strings.Contains(strings.ToLower(c.Name), q) &&
			!strings.Contains(strings.ToLower(c.Phone), q) &&
			!strings.Contains(strings.ToLower(c.Address), q) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastPurchase.After(out[j].LastPurchase) })
	return out, nil
}

// DueCustomers returns only the customers whose refill window has opened.
func (s *Service) DueCustomers(ctx context.Context, accountID uuid.UUID) ([]CustomerSummary, error) {
	customers, err := s.Customers(ctx, accountID, "")
	if err != nil {
		return nil, err
	}
	var due []CustomerSummary
	for _, c := range customers {
		if c.Status == StatusDue {
			due = append(due, c)
		}
	}
	return due, nil
}

var nonDigits = regexp.MustCompile(`\D`)

// NormalizePhone strips formatting and prefixes the Indian country code onto
// bare 10-digit numbers.
func NormalizePhone(phone string) string {
	digits := nonDigits.ReplaceAllString(phone, "")
	if len(digits) == 10 {
		return "91" + digits
	}
	return digits
}

// ReminderMessage renders the refill reminder for one customer, prefixed with
// the account's custom note when one is configured.
func (s *Service) ReminderMessage(ctx context.Context, accountID uuid.UUID, c CustomerSummary) (string, error) {
	current, err := s.notes.Get(ctx, accountID)
	if err != nil {
		return "", fmt.Errorf("load settings: %w", err)
	}

	var sb strings.Builder
	if current.ReminderNote != "" {
		sb.WriteString(current.ReminderNote)
		sb.WriteString("\n\n")
	}
	sb.WriteString("Hello " + c.Name + "\n")
	sb.WriteString("This is a friendly reminder regarding your prescription.\n")
	sb.WriteString("Prescribed months: " + intOrNA(c.PrescriptionMonths) + "\n")
	sb.WriteString("Months taken: " + intOrNA(c.MonthsTaken) + "\n")
	due := "N/A"
	if c.NextDue != nil {
		due = c.NextDue.Format("02/01/2006")
	}
	sb.WriteString("Next due date: " + due + "\n")
	if c.Notes != "" {
		sb.WriteString("\nNotes: " + c.Notes + "\n")
	}
	return sb.String(), nil
}

func intOrNA(v *int) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d", *v)
}

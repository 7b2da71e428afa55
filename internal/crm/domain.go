// Package crm derives customer refill summaries from sale history.
package crm

import (
	"time"
)

// RefillStatus classifies a customer's prescription progress.
type RefillStatus string

const (
	// StatusCompleted means every prescribed month has been taken.
	StatusCompleted RefillStatus = "completed"
	// StatusDue means the next 30-day window has started without a refill.
	StatusDue RefillStatus = "due"
	// StatusActive means the customer is inside the current window.
	StatusActive RefillStatus = "active"
	// StatusUnknown means the sale carried no prescription data.
	StatusUnknown RefillStatus = "unknown"
)

// refillWindow approximates one prescription month.
const refillWindow = 30 * 24 * time.Hour

// CustomerSummary is the derived, unpersisted view of one customer, keyed by
// phone. It always reflects the customer's most recent sale.
type CustomerSummary struct {
	Phone              string       `json:"phone"`
	Name               string       `json:"name"`
	Address            string       `json:"address,omitempty"`
	LastPurchase       time.Time    `json:"last_purchase"`
	PrescriptionMonths *int         `json:"prescription_months,omitempty"`
	MonthsTaken        *int         `json:"months_taken,omitempty"`
	Notes              string       `json:"notes,omitempty"`
	NextDue            *time.Time   `json:"next_due,omitempty"`
	Status             RefillStatus `json:"status"`
}

// Classify computes the next due date and status from prescription progress.
// The next window opens monthsTaken windows after the last purchase.
func Classify(lastPurchase time.Time, prescriptionMonths, monthsTaken *int, now time.Time) (*time.Time, RefillStatus) {
	if prescriptionMonths == nil || monthsTaken == nil {
		return nil, StatusUnknown
	}
	nextDue := lastPurchase.Add(time.Duration(*monthsTaken) * refillWindow)
	if *monthsTaken >= *prescriptionMonths {
		return &nextDue, StatusCompleted
	}
	if !now.Before(nextDue) {
		return &nextDue, StatusDue
	}
	return &nextDue, StatusActive
}

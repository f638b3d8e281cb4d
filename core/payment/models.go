package payment

import (
	"sort"
	"time"

	"github.com/volatiletech/null/v8"
)

// Statuses reported by the gateway confirmation step.
const (
	StatusPending   = "pending"
	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Supported currencies. INR is the default; USD is the alternate for
// international students.
const (
	CurrencyINR = "INR"
	CurrencyUSD = "USD"
)

// Installment thresholds: anything below is a top-up or test transaction and
// must not drive slot assignment or renewal timing.
const (
	significantMinINR = 2000
	significantMinUSD = 100
)

// CommissionRate is the referrer's cut of a referred student's payment.
const CommissionRate = 0.10

// RenewalPeriodDays is the number of whole days after the latest significant
// payment at which the next installment falls due.
const RenewalPeriodDays = 30

// Event is one externally-confirmed (or attempted) gateway transaction.
// Events are created once by the gateway confirmation step and are immutable
// thereafter; corrections only ever touch the derived student aggregate.
type Event struct {
	ID              string      `json:"id"`
	StudentEmail    string      `json:"student_email"`
	Amount          float64     `json:"amount"`
	Currency        string      `json:"currency"`
	TransactionID   string      `json:"transaction_id"` // gateway's external id
	PaidOn          time.Time   `json:"payment_date"`   // calendar day
	PaidAt          null.String `json:"payment_time"`   // "15:04:05", optional
	Status          string      `json:"status"`
	CourseName      string      `json:"course_name"`
	ReferredByEmail null.String `json:"referred_by_email"`
	CreatedAt       time.Time   `json:"created_at"`
}

// IsSignificant reports whether the event clears the currency-specific
// installment threshold.
func (e Event) IsSignificant() bool {
	if e.Currency == CurrencyUSD {
		return e.Amount >= significantMinUSD
	}
	return e.Amount >= significantMinINR
}

// Significant filters events down to those clearing the installment threshold.
func Significant(events []Event) []Event {
	sig := make([]Event, 0, len(events))
	for _, e := range events {
		if e.IsSignificant() {
			sig = append(sig, e)
		}
	}
	return sig
}

// SortChronological orders events oldest-first by (payment date, payment time).
// A missing payment time sorts as earliest of day; ties preserve input order.
func SortChronological(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		di, dj := events[i].PaidOn, events[j].PaidOn
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		// "HH:MM:SS" compares correctly as a string; null sorts first
		return events[i].PaidAt.String < events[j].PaidAt.String
	})
}

// RenewalEstimate is the computed next-due date for a student's renewal
// prompt. Never persisted; recomputed on every dashboard load.
type RenewalEstimate struct {
	NextDueDate null.Time `json:"next_due_date"`
}

// ReferralSummary totals a referrer's commission over all successful referred
// payments. Amounts in different currencies are summed numerically without
// conversion. Never persisted.
type ReferralSummary struct {
	Count           int     `json:"count"`
	TotalCommission float64 `json:"total_commission"`
}

type QueryFilter struct {
	StudentEmail    string
	ReferredByEmail string
	Status          string
}

package student

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/akili/core/payment"
)

// BuildInstallments maps a student's successful payments onto the fixed
// installment slots: significant events only, oldest-first by (date, time),
// at most SlotCount of them. Slot k holds the k-th such event's amount, date
// and external transaction id; remaining slots stay empty.
func BuildInstallments(events []payment.Event) [SlotCount]Installment {
	sig := payment.Significant(events)
	payment.SortChronological(sig)

	var slots [SlotCount]Installment
	for i, e := range sig {
		if i >= SlotCount {
			break
		}
		slots[i] = Installment{
			Amount:        null.Float64From(e.Amount),
			Date:          null.TimeFrom(e.PaidOn),
			TransactionID: null.StringFrom(e.TransactionID),
		}
	}
	return slots
}

// Aggregates derives the three aggregate fields from filled slots:
// total paid, slot count and the highest-indexed filled slot's date.
func Aggregates(slots [SlotCount]Installment) (total float64, count int, last null.Time) {
	for _, slot := range slots {
		if !slot.IsFilled() {
			continue
		}
		total += slot.Amount.Float64
		count++
		last = slot.Date
	}
	return total, count, last
}

// Snapshot captures the reconciliation-owned fields of a Student row for
// before/after comparison.
type Snapshot struct {
	Installments       [SlotCount]Installment `json:"installments"`
	TotalAmountPaid    float64                `json:"total_amount_paid"`
	TotalPaymentsCount int                    `json:"total_payments_count"`
	LastPaymentDate    null.Time              `json:"last_payment_date"`
}

func takeSnapshot(s Student) Snapshot {
	return Snapshot{
		Installments:       s.Installments,
		TotalAmountPaid:    s.TotalAmountPaid,
		TotalPaymentsCount: s.TotalPaymentsCount,
		LastPaymentDate:    s.LastPaymentDate,
	}
}

// fieldValue is one reconciliation-owned field rendered for reporting.
type fieldValue struct {
	field string
	value string
}

func (s Snapshot) fieldValues() []fieldValue {
	fvs := make([]fieldValue, 0, 3*SlotCount+3)
	for i, slot := range s.Installments {
		fvs = append(fvs,
			fieldValue{fmt.Sprintf("installment[%d].amount", i+1), fmtFloat(slot.Amount)},
			fieldValue{fmt.Sprintf("installment[%d].date", i+1), fmtDate(slot.Date)},
			fieldValue{fmt.Sprintf("installment[%d].transaction_id", i+1), fmtString(slot.TransactionID)},
		)
	}
	return append(fvs,
		fieldValue{"total_amount_paid", fmt.Sprintf("%v", s.TotalAmountPaid)},
		fieldValue{"total_payments_count", fmt.Sprintf("%d", s.TotalPaymentsCount)},
		fieldValue{"last_payment_date", fmtDate(s.LastPaymentDate)},
	)
}

func (s Snapshot) lines() []string {
	fvs := s.fieldValues()
	lines := make([]string, 0, len(fvs))
	for _, fv := range fvs {
		lines = append(lines, fv.field+" = "+fv.value)
	}
	return lines
}

// FieldChange is one stored-vs-recomputed difference in a repair report.
type FieldChange struct {
	Field     string `json:"field"`
	Current   string `json:"current"`
	Corrected string `json:"corrected"`
}

// RepairReport is the outcome of a repair invocation. On a dry run nothing is
// written and Updated stays nil.
type RepairReport struct {
	Email            string        `json:"email"`
	DryRun           bool          `json:"dry_run"`
	RawCount         int           `json:"raw_payments_count"`
	SignificantCount int           `json:"significant_payments_count"`
	Before           Snapshot      `json:"before"`
	After            Snapshot      `json:"after"`
	Changes          []FieldChange `json:"changes"`
	Diff             string        `json:"diff,omitempty"`
	Updated          *Student      `json:"updated,omitempty"`
}

func (r RepairReport) InSync() bool { return len(r.Changes) == 0 }

func compareSnapshots(before, after Snapshot) []FieldChange {
	beforeFVs, afterFVs := before.fieldValues(), after.fieldValues()
	changes := make([]FieldChange, 0)
	for i := range beforeFVs {
		if beforeFVs[i] == afterFVs[i] {
			continue
		}
		changes = append(changes, FieldChange{
			Field:     beforeFVs[i].field,
			Current:   beforeFVs[i].value,
			Corrected: afterFVs[i].value,
		})
	}
	return changes
}

func renderDiff(before, after Snapshot) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(strings.Join(before.lines(), "\n") + "\n"),
		B:        difflib.SplitLines(strings.Join(after.lines(), "\n") + "\n"),
		FromFile: "stored",
		ToFile:   "recomputed",
		Context:  2,
	})
	if err != nil {
		return ""
	}
	return diff
}

func fmtFloat(f null.Float64) string {
	if !f.Valid {
		return "null"
	}
	return fmt.Sprintf("%v", f.Float64)
}

func fmtDate(t null.Time) string {
	if !t.Valid {
		return "null"
	}
	return t.Time.Format("2006-01-02")
}

func fmtString(s null.String) string {
	if !s.Valid {
		return "null"
	}
	return s.String
}

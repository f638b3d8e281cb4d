package payment

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/akili/core"
)

var (
	// errors
	ErrNoPayments            = errors.New("no successful payments found for this email")
	ErrNoSignificantPayments = errors.New("no payments meeting the installment threshold found for this email")
)

type (
	Repository interface {
		CreateEvent(ctx context.Context, evt Event) (Event, error)
		// QueryEvents applies AND operation on available QueryFilter fields,
		// ordered oldest-first by (payment date, payment time).
		QueryEvents(ctx context.Context, filter QueryFilter) ([]Event, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SuccessfulByEmail returns all externally-confirmed payments for a student,
// oldest-first.
func (svc *Service) SuccessfulByEmail(ctx context.Context, email string) ([]Event, error) {
	return svc.repo.QueryEvents(ctx, QueryFilter{
		StudentEmail: core.CleanString(email, true /* lower */),
		Status:       StatusSuccess,
	})
}

// RenewalEstimate computes the next-due date from the most recent significant
// successful payment + RenewalPeriodDays. The estimate is absent when no
// significant payment exists; callers must not render a renewal prompt then.
// Date arithmetic is done in whole calendar days, no timezone shifting.
func (svc *Service) RenewalEstimate(ctx context.Context, email string) (RenewalEstimate, error) {
	events, err := svc.SuccessfulByEmail(ctx, email)
	if err != nil {
		return RenewalEstimate{}, errors.Wrap(err, "querying payments")
	}
	return EstimateRenewal(events), nil
}

// EstimateRenewal is the pure calendar computation behind RenewalEstimate.
func EstimateRenewal(events []Event) RenewalEstimate {
	var last time.Time
	for _, e := range Significant(events) {
		if e.Status != StatusSuccess {
			continue
		}
		if e.PaidOn.After(last) {
			last = e.PaidOn
		}
	}
	if last.IsZero() {
		return RenewalEstimate{}
	}
	return RenewalEstimate{NextDueDate: null.TimeFrom(last.AddDate(0, 0, RenewalPeriodDays))}
}

// ReferralSummary sums the referrer's commission over all successful payments
// referred by the given email. Commission = amount × CommissionRate, rounded
// to 2 decimal places after summation.
func (svc *Service) ReferralSummary(ctx context.Context, email string) (ReferralSummary, error) {
	events, err := svc.repo.QueryEvents(ctx, QueryFilter{
		ReferredByEmail: core.CleanString(email, true /* lower */),
		Status:          StatusSuccess,
	})
	if err != nil {
		return ReferralSummary{}, errors.Wrap(err, "querying referred payments")
	}
	return SummarizeReferrals(events), nil
}

// SummarizeReferrals is the pure computation behind ReferralSummary.
func SummarizeReferrals(events []Event) ReferralSummary {
	var total float64
	for _, e := range events {
		total += e.Amount * CommissionRate
	}
	return ReferralSummary{
		Count:           len(events),
		TotalCommission: round2(total),
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

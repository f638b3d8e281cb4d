package student

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/akili/core"
)

// SlotCount is the fixed number of installment slots: the course is modeled
// as 4 months paid in up to four installments. Significant payments beyond the
// fourth remain in raw history but are never reflected in the aggregate.
const SlotCount = 4

// Installment is one filled (or empty) installment slot of a Student.
type Installment struct {
	Amount        null.Float64 `json:"amount"`
	Date          null.Time    `json:"date"`
	TransactionID null.String  `json:"transaction_id"`
}

func (i Installment) IsFilled() bool { return i.Amount.Valid }

// Student is the per-enrollment aggregate row: a denormalized, rebuildable
// projection of the payment.Event log. Concurrent writers (a gateway webhook
// racing a manual repair) are not coordinated; the row has no version column
// and the store's last-write-wins semantics apply.
type Student struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Batch          string    `json:"batch"`
	CourseName     string    `json:"course_name"`
	EnrollmentDate time.Time `json:"enrollment_date"`

	Installments [SlotCount]Installment `json:"installments"`

	TotalAmountPaid    float64   `json:"total_amount_paid"`
	TotalPaymentsCount int       `json:"total_payments_count"`
	LastPaymentDate    null.Time `json:"last_payment_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewStudent contains information needed to enroll a new Student.
type NewStudent struct {
	Name           string    `json:"name" validate:"required"`
	Email          string    `json:"email" validate:"required,email"`
	Batch          string    `json:"batch" validate:"required"`
	CourseName     string    `json:"course_name" validate:"required"`
	EnrollmentDate time.Time `json:"enrollment_date"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true)
	ns.Batch = core.CleanString(ns.Batch)
	ns.CourseName = core.CleanString(ns.CourseName)
	return validate.Struct(ns)
}

package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/akili/core/payment"
)

type paymentRow struct {
	ID              string      `db:"id"`
	StudentEmail    string      `db:"student_email"`
	Amount          float64     `db:"amount"`
	Currency        string      `db:"currency"`
	TransactionID   string      `db:"transaction_id"`
	PaymentDate     time.Time   `db:"payment_date"`
	PaymentTime     null.String `db:"payment_time"`
	Status          string      `db:"status"`
	CourseName      null.String `db:"course_name"`
	ReferredByEmail null.String `db:"referred_by_email"`
	CreatedAt       time.Time   `db:"created_at"`
}

func (r paymentRow) event() payment.Event {
	return payment.Event{
		ID:              r.ID,
		StudentEmail:    r.StudentEmail,
		Amount:          r.Amount,
		Currency:        r.Currency,
		TransactionID:   r.TransactionID,
		PaidOn:          r.PaymentDate,
		PaidAt:          r.PaymentTime,
		Status:          r.Status,
		CourseName:      r.CourseName.String,
		ReferredByEmail: r.ReferredByEmail,
		CreatedAt:       r.CreatedAt,
	}
}

type paymentRepository struct {
	db *sqlx.DB
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db *sql.DB) *paymentRepository {
	return &paymentRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo paymentRepository) CreateEvent(ctx context.Context, evt payment.Event) (payment.Event, error) {
	evt.ID = uuid.New().String()
	if evt.CreatedAt.IsZero() {
		evt.CreatedAt = time.Now().UTC()
	}
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO payment (id, student_email, amount, currency, transaction_id,
		                     payment_date, payment_time, status, course_name, referred_by_email, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		evt.ID, evt.StudentEmail, evt.Amount, evt.Currency, evt.TransactionID,
		evt.PaidOn, evt.PaidAt, evt.Status, null.NewString(evt.CourseName, evt.CourseName != ""),
		evt.ReferredByEmail, evt.CreatedAt,
	)
	if err != nil {
		return payment.Event{}, errors.Wrap(err, "inserting payment")
	}
	return evt, nil
}

func (repo paymentRepository) QueryEvents(ctx context.Context, filter payment.QueryFilter) ([]payment.Event, error) {
	where := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)
	addClause := func(col, val string) {
		args = append(args, val)
		where = append(where, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if filter.StudentEmail != "" {
		addClause("student_email", filter.StudentEmail)
	}
	if filter.ReferredByEmail != "" {
		addClause("referred_by_email", filter.ReferredByEmail)
	}
	if filter.Status != "" {
		addClause("status", filter.Status)
	}

	q := "SELECT * FROM payment"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY payment_date ASC, payment_time ASC NULLS FIRST"

	var rows []paymentRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying payments")
	}
	events := make([]payment.Event, 0, len(rows))
	for _, r := range rows {
		events = append(events, r.event())
	}
	return events, nil
}

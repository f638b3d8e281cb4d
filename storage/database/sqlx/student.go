package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/akili/core/student"
)

type studentRow struct {
	ID             string      `db:"id"`
	Name           string      `db:"name"`
	Email          string      `db:"email"`
	Batch          null.String `db:"batch"`
	CourseName     null.String `db:"course_name"`
	EnrollmentDate time.Time   `db:"enrollment_date"`

	FirstPaymentAmount  null.Float64 `db:"first_payment_amount"`
	FirstPaymentDate    null.Time    `db:"first_payment_date"`
	FirstPaymentID      null.String  `db:"first_payment_id"`
	SecondPaymentAmount null.Float64 `db:"second_payment_amount"`
	SecondPaymentDate   null.Time    `db:"second_payment_date"`
	SecondPaymentID     null.String  `db:"second_payment_id"`
	ThirdPaymentAmount  null.Float64 `db:"third_payment_amount"`
	ThirdPaymentDate    null.Time    `db:"third_payment_date"`
	ThirdPaymentID      null.String  `db:"third_payment_id"`
	FourthPaymentAmount null.Float64 `db:"fourth_payment_amount"`
	FourthPaymentDate   null.Time    `db:"fourth_payment_date"`
	FourthPaymentID     null.String  `db:"fourth_payment_id"`

	TotalAmountPaid    float64   `db:"total_amount_paid"`
	TotalPaymentsCount int       `db:"total_payments_count"`
	LastPaymentDate    null.Time `db:"last_payment_date"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r studentRow) student() student.Student {
	return student.Student{
		ID:             r.ID,
		Name:           r.Name,
		Email:          r.Email,
		Batch:          r.Batch.String,
		CourseName:     r.CourseName.String,
		EnrollmentDate: r.EnrollmentDate,
		Installments: [student.SlotCount]student.Installment{
			{Amount: r.FirstPaymentAmount, Date: r.FirstPaymentDate, TransactionID: r.FirstPaymentID},
			{Amount: r.SecondPaymentAmount, Date: r.SecondPaymentDate, TransactionID: r.SecondPaymentID},
			{Amount: r.ThirdPaymentAmount, Date: r.ThirdPaymentDate, TransactionID: r.ThirdPaymentID},
			{Amount: r.FourthPaymentAmount, Date: r.FourthPaymentDate, TransactionID: r.FourthPaymentID},
		},
		TotalAmountPaid:    r.TotalAmountPaid,
		TotalPaymentsCount: r.TotalPaymentsCount,
		LastPaymentDate:    r.LastPaymentDate,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sql.DB) *studentRepository {
	return &studentRepository{db: sqlx.NewDb(db, "postgres")}
}

// trapNoRowsErr maps psql "no rows" err to student.ErrNotFound
func (repo studentRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return student.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	std.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO student (id, name, email, batch, course_name, enrollment_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		std.ID, std.Name, std.Email,
		null.NewString(std.Batch, std.Batch != ""), null.NewString(std.CourseName, std.CourseName != ""),
		std.EnrollmentDate, std.CreatedAt.UTC(), std.UpdatedAt.UTC(),
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return student.Student{}, student.ErrEmailExists
		}
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return std, nil
}

func (repo studentRepository) GetStudentByEmail(ctx context.Context, email string) (student.Student, error) {
	var row studentRow
	if err := repo.db.GetContext(ctx, &row, "SELECT * FROM student WHERE email = $1", email); err != nil {
		return student.Student{}, repo.trapNoRowsErr(err, "getting student")
	}
	return row.student(), nil
}

func (repo studentRepository) UpdateReconciliation(ctx context.Context, std student.Student) (student.Student, error) {
	slots := std.Installments
	res, err := repo.db.ExecContext(ctx, `
		UPDATE student
		SET first_payment_amount  = $1, first_payment_date  = $2, first_payment_id  = $3,
		    second_payment_amount = $4, second_payment_date = $5, second_payment_id = $6,
		    third_payment_amount  = $7, third_payment_date  = $8, third_payment_id  = $9,
		    fourth_payment_amount = $10, fourth_payment_date = $11, fourth_payment_id = $12,
		    total_amount_paid     = $13, total_payments_count = $14, last_payment_date = $15,
		    updated_at            = $16
		WHERE id = $17`,
		slots[0].Amount, slots[0].Date, slots[0].TransactionID,
		slots[1].Amount, slots[1].Date, slots[1].TransactionID,
		slots[2].Amount, slots[2].Date, slots[2].TransactionID,
		slots[3].Amount, slots[3].Date, slots[3].TransactionID,
		std.TotalAmountPaid, std.TotalPaymentsCount, std.LastPaymentDate,
		std.UpdatedAt.UTC(), std.ID,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return std, nil
}

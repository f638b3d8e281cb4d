package student

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/akili/core"
	"github.com/trezcool/akili/core/payment"
)

var (
	// errors
	ErrNotFound    = errors.New("student not found")
	ErrEmailExists = errors.New("a student with this email is already enrolled")
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, std Student) (Student, error)
		GetStudentByEmail(ctx context.Context, email string) (Student, error)
		// UpdateReconciliation performs a single atomic row write of the four
		// installment slots, the three aggregate fields and updated_at.
		UpdateReconciliation(ctx context.Context, std Student) (Student, error)
	}

	Service struct {
		repo    Repository
		payRepo payment.Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

func NewService(repo Repository, payRepo payment.Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		repo:    repo,
		payRepo: payRepo,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

// Enroll creates the student aggregate row and sends the welcome email.
// The email is fire-and-forget; enrollment does not fail on a mail error.
func (svc *Service) Enroll(ctx context.Context, ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	enrolledOn := ns.EnrollmentDate
	if enrolledOn.IsZero() {
		enrolledOn = now
	}
	std := Student{
		Name:           ns.Name,
		Email:          ns.Email,
		Batch:          ns.Batch,
		CourseName:     ns.CourseName,
		EnrollmentDate: enrolledOn,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	std, err := svc.repo.CreateStudent(ctx, std)
	if err != nil {
		if err == ErrEmailExists {
			return Student{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return Student{}, err
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: std.Name, Address: std.Email}},
		Subject:      "Welcome to " + svc.conf.AppName,
		TemplateName: "welcome",
		TemplateData: std,
	})
	return std, nil
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Student, error) {
	return svc.repo.GetStudentByEmail(ctx, core.CleanString(email, true /* lower */))
}

// Repair recomputes a student's installment slots and aggregates from the
// payment log and compares them against the stored row. With dryRun it only
// reports the differences; otherwise it writes the corrected values in a
// single row update. Repair is idempotent: recomputation always starts from
// the raw payment events, never from the stored aggregate.
func (svc *Service) Repair(ctx context.Context, email string, dryRun bool) (RepairReport, error) {
	email = core.CleanString(email, true /* lower */)

	events, err := svc.payRepo.QueryEvents(ctx, payment.QueryFilter{
		StudentEmail: email,
		Status:       payment.StatusSuccess,
	})
	if err != nil {
		return RepairReport{}, errors.Wrap(err, "querying payments")
	}
	if len(events) == 0 {
		return RepairReport{}, payment.ErrNoPayments
	}
	significant := payment.Significant(events)
	if len(significant) == 0 {
		return RepairReport{}, payment.ErrNoSignificantPayments
	}

	std, err := svc.repo.GetStudentByEmail(ctx, email)
	if err != nil {
		return RepairReport{}, err
	}

	corrected := std
	corrected.Installments = BuildInstallments(events)
	corrected.TotalAmountPaid, corrected.TotalPaymentsCount, corrected.LastPaymentDate = Aggregates(corrected.Installments)

	before, after := takeSnapshot(std), takeSnapshot(corrected)
	report := RepairReport{
		Email:            email,
		DryRun:           dryRun,
		RawCount:         len(events),
		SignificantCount: len(significant),
		Before:           before,
		After:            after,
		Changes:          compareSnapshots(before, after),
	}
	if !report.InSync() {
		report.Diff = renderDiff(before, after)
	}
	if dryRun {
		return report, nil
	}

	corrected.UpdatedAt = time.Now().UTC()
	updated, err := svc.repo.UpdateReconciliation(ctx, corrected)
	if err != nil {
		return RepairReport{}, errors.Wrap(err, "updating student record")
	}
	report.Updated = &updated
	return report, nil
}

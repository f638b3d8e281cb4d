package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/akili/core/payment"
	"github.com/trezcool/akili/core/student"
)

func CreatePayment(
	t *testing.T,
	repo payment.Repository,
	email string,
	amount float64,
	currency, txnID, status string,
	paidOn time.Time,
	paidAt ...string,
) payment.Event {
	evt := payment.Event{
		StudentEmail:  email,
		Amount:        amount,
		Currency:      currency,
		TransactionID: txnID,
		Status:        status,
		PaidOn:        paidOn,
		CreatedAt:     time.Now().UTC(),
	}
	if len(paidAt) > 0 {
		evt.PaidAt = null.StringFrom(paidAt[0])
	}
	evt, err := repo.CreateEvent(context.Background(), evt)
	if err != nil {
		t.Fatalf("CreatePayment() failed: %v", err)
	}
	return evt
}

func CreateReferredPayment(
	t *testing.T,
	repo payment.Repository,
	email, referrer string,
	amount float64,
	currency, txnID, status string,
	paidOn time.Time,
) payment.Event {
	evt := payment.Event{
		StudentEmail:    email,
		Amount:          amount,
		Currency:        currency,
		TransactionID:   txnID,
		Status:          status,
		PaidOn:          paidOn,
		ReferredByEmail: null.StringFrom(referrer),
		CreatedAt:       time.Now().UTC(),
	}
	evt, err := repo.CreateEvent(context.Background(), evt)
	if err != nil {
		t.Fatalf("CreateReferredPayment() failed: %v", err)
	}
	return evt
}

func CreateStudent(
	t *testing.T,
	repo student.Repository,
	name, email, batch, course string,
	enrolledOn time.Time,
) student.Student {
	now := time.Now().UTC()
	std := student.Student{
		Name:           name,
		Email:          email,
		Batch:          batch,
		CourseName:     course,
		EnrollmentDate: enrolledOn,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	std, err := repo.CreateStudent(context.Background(), std)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}

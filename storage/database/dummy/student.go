package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/akili/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, s := range repo.db.table {
		if s.Email == std.Email {
			return student.Student{}, student.ErrEmailExists
		}
	}
	std.ID = uuid.New().String()
	repo.db.table[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) GetStudentByEmail(ctx context.Context, email string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, s := range repo.db.table {
		if s.Email == email {
			return *s, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateReconciliation(ctx context.Context, std student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	curr, ok := repo.db.table[std.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	curr.Installments = std.Installments
	curr.TotalAmountPaid = std.TotalAmountPaid
	curr.TotalPaymentsCount = std.TotalPaymentsCount
	curr.LastPaymentDate = std.LastPaymentDate
	curr.UpdatedAt = std.UpdatedAt
	return *curr, nil
}

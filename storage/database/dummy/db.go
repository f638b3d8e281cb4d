package dummydb

import (
	"sync"

	"github.com/trezcool/akili/core/payment"
	"github.com/trezcool/akili/core/student"
)

type (
	DB struct {
		payment *paymentTable
		student *studentTable
	}

	paymentTable struct {
		sync.RWMutex
		table map[string]*payment.Event
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student
	}
)

func Open() (*DB, error) {
	db := &DB{
		payment: &paymentTable{table: make(map[string]*payment.Event)},
		student: &studentTable{table: make(map[string]*student.Student)},
	}
	return db, nil
}

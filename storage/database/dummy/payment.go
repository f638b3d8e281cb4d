package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/akili/core/payment"
)

type paymentRepository struct {
	db *paymentTable
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db *DB) payment.Repository {
	return &paymentRepository{db: db.payment}
}

func (repo *paymentRepository) query() []payment.Event {
	events := make([]payment.Event, 0, len(repo.db.table))
	for _, e := range repo.db.table {
		events = append(events, *e)
	}
	return events
}

func (repo *paymentRepository) CreateEvent(ctx context.Context, evt payment.Event) (payment.Event, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	evt.ID = uuid.New().String()
	repo.db.table[evt.ID] = &evt
	return evt, nil
}

func (repo *paymentRepository) QueryEvents(ctx context.Context, filter payment.QueryFilter) ([]payment.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	events := make([]payment.Event, 0)
	for _, e := range repo.query() {
		if filter.StudentEmail != "" && e.StudentEmail != filter.StudentEmail {
			continue
		}
		if filter.ReferredByEmail != "" && e.ReferredByEmail.String != filter.ReferredByEmail {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		events = append(events, e)
	}
	payment.SortChronological(events)
	return events, nil
}

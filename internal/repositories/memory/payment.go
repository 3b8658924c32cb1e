package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tontiva/tontine-backend/internal/domain"
	"github.com/tontiva/tontine-backend/internal/models"
)

// PaymentRepository is an in-memory repositories.PaymentRepository.
type PaymentRepository struct {
	mu       sync.RWMutex
	payments map[primitive.ObjectID]*models.Payment
}

// NewPaymentRepository creates an empty in-memory ledger.
func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{payments: make(map[primitive.ObjectID]*models.Payment)}
}

func clonePayment(p *models.Payment) *models.Payment {
	c := *p
	if p.ValidatedAt != nil {
		at := *p.ValidatedAt
		c.ValidatedAt = &at
	}
	return &c
}

func (r *PaymentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return clonePayment(p), nil
}

func (r *PaymentRepository) FindByTontine(ctx context.Context, tontineID primitive.ObjectID, status models.PaymentStatus) ([]*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Payment
	for _, p := range r.payments {
		if p.TontineID != tontineID {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		out = append(out, clonePayment(p))
	}
	sortPayments(out)
	return out, nil
}

func (r *PaymentRepository) FindByParticipant(ctx context.Context, tontineID primitive.ObjectID, userID string) ([]*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Payment
	for _, p := range r.payments {
		if p.TontineID == tontineID && p.ParticipantID == userID {
			out = append(out, clonePayment(p))
		}
	}
	sortPayments(out)
	return out, nil
}

func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if payment.ID.IsZero() {
		payment.ID = primitive.NewObjectID()
	}
	r.payments[payment.ID] = clonePayment(payment)
	return nil
}

func (r *PaymentRepository) MarkValidated(ctx context.Context, id primitive.ObjectID, status models.PaymentStatus, validatorID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return domain.ErrNotFound
	}
	if p.Status != models.PaymentStatusPending {
		return domain.ErrConflict
	}
	p.Status = status
	p.ValidatorID = validatorID
	validatedAt := at
	p.ValidatedAt = &validatedAt
	return nil
}

func sortPayments(ps []*models.Payment) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].SubmittedAt.After(ps[j].SubmittedAt) })
}

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

// ParticipantRepository is an in-memory repositories.ParticipantRepository.
type ParticipantRepository struct {
	mu      sync.RWMutex
	members map[string]*models.Participant
}

// NewParticipantRepository creates an empty in-memory roster store.
func NewParticipantRepository() *ParticipantRepository {
	return &ParticipantRepository{members: make(map[string]*models.Participant)}
}

func memberKey(tontineID primitive.ObjectID, userID string) string {
	return tontineID.Hex() + "/" + userID
}

func cloneParticipant(p *models.Participant) *models.Participant {
	c := *p
	return &c
}

func (r *ParticipantRepository) FindByTontine(ctx context.Context, tontineID primitive.ObjectID) ([]*models.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Participant
	for _, p := range r.members {
		if p.TontineID == tontineID {
			out = append(out, cloneParticipant(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

func (r *ParticipantRepository) FindByTontineAndUser(ctx context.Context, tontineID primitive.ObjectID, userID string) (*models.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.members[memberKey(tontineID, userID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneParticipant(p), nil
}

func (r *ParticipantRepository) FindTontineIDsByUser(ctx context.Context, userID string) ([]primitive.ObjectID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []primitive.ObjectID
	for _, p := range r.members {
		if p.UserID == userID {
			ids = append(ids, p.TontineID)
		}
	}
	return ids, nil
}

func (r *ParticipantRepository) CountByTontine(ctx context.Context, tontineID primitive.ObjectID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, p := range r.members {
		if p.TontineID == tontineID {
			n++
		}
	}
	return n, nil
}

func (r *ParticipantRepository) Create(ctx context.Context, participant *models.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := memberKey(participant.TontineID, participant.UserID)
	if _, exists := r.members[key]; exists {
		return domain.ErrConflict
	}
	if participant.ID.IsZero() {
		participant.ID = primitive.NewObjectID()
	}
	participant.JoinedAt = time.Now()
	r.members[key] = cloneParticipant(participant)
	return nil
}

func (r *ParticipantRepository) UpdatePaymentStatus(ctx context.Context, tontineID primitive.ObjectID, userID string, status models.PaymentState, lastPaymentAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.members[memberKey(tontineID, userID)]
	if !ok {
		return domain.ErrNotFound
	}
	p.PaymentStatus = status
	if lastPaymentAt != nil {
		at := *lastPaymentAt
		p.LastPaymentAt = &at
	}
	return nil
}

// Package memory provides in-memory repository implementations with the
// same conditional-write semantics as the MongoDB ones. They back the
// service tests and any store-less deployment.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tontiva/tontine-backend/internal/domain"
	"github.com/tontiva/tontine-backend/internal/models"
)

// TontineRepository is an in-memory repositories.TontineRepository.
type TontineRepository struct {
	mu       sync.RWMutex
	tontines map[primitive.ObjectID]*models.Tontine
}

// NewTontineRepository creates an empty in-memory tontine store.
func NewTontineRepository() *TontineRepository {
	return &TontineRepository{tontines: make(map[primitive.ObjectID]*models.Tontine)}
}

func cloneTontine(t *models.Tontine) *models.Tontine {
	c := *t
	c.RotationOrder = append([]string(nil), t.RotationOrder...)
	return &c
}

func (r *TontineRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Tontine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tontines[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneTontine(t), nil
}

func (r *TontineRepository) FindByInviteCode(ctx context.Context, code string) (*models.Tontine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	code = strings.ToUpper(code)
	for _, t := range r.tontines {
		if t.InviteCode == code {
			return cloneTontine(t), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *TontineRepository) FindByInitiator(ctx context.Context, initiatorID string) ([]*models.Tontine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Tontine
	for _, t := range r.tontines {
		if t.InitiatorID == initiatorID {
			out = append(out, cloneTontine(t))
		}
	}
	sortTontines(out)
	return out, nil
}

func (r *TontineRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Tontine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Tontine
	for _, id := range ids {
		if t, ok := r.tontines[id]; ok {
			out = append(out, cloneTontine(t))
		}
	}
	sortTontines(out)
	return out, nil
}

func (r *TontineRepository) Create(ctx context.Context, tontine *models.Tontine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tontines {
		if t.InviteCode == tontine.InviteCode {
			return domain.ErrConflict
		}
	}
	if tontine.ID.IsZero() {
		tontine.ID = primitive.NewObjectID()
	}
	tontine.CreatedAt = time.Now()
	tontine.UpdatedAt = time.Now()
	r.tontines[tontine.ID] = cloneTontine(tontine)
	return nil
}

func (r *TontineRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.TontineStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tontines[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.Status = status
	t.UpdatedAt = time.Now()
	return nil
}

func (r *TontineRepository) UpdateOrder(ctx context.Context, id primitive.ObjectID, order []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tontines[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.RotationOrder = append([]string(nil), order...)
	t.UpdatedAt = time.Now()
	return nil
}

func sortTontines(ts []*models.Tontine) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].CreatedAt.After(ts[j].CreatedAt) })
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tontiva/tontine-backend/internal/config"
	"github.com/tontiva/tontine-backend/internal/domain"
	"github.com/tontiva/tontine-backend/internal/models"
	"github.com/tontiva/tontine-backend/internal/repositories"
	"github.com/tontiva/tontine-backend/internal/utils"
	"github.com/tontiva/tontine-backend/pkg/events"
)

// Compile-time check to ensure TontineServiceImpl implements TontineService
var _ TontineService = (*TontineServiceImpl)(nil)

// TontineServiceImpl implements the tontine lifecycle, join flow and
// collection-order management.
type TontineServiceImpl struct {
	tontineRepo     repositories.TontineRepository
	participantRepo repositories.ParticipantRepository
	publisher       events.Publisher
	cfg             *config.Config
	locks           keyedMutex
}

// NewTontineService creates a new TontineServiceImpl
func NewTontineService(tontineRepo repositories.TontineRepository, participantRepo repositories.ParticipantRepository, publisher events.Publisher, cfg *config.Config) *TontineServiceImpl {
	return &TontineServiceImpl{
		tontineRepo:     tontineRepo,
		participantRepo: participantRepo,
		publisher:       publisher,
		cfg:             cfg,
	}
}

// Create instantiates a tontine in the pending state with a fresh
// invitation code. The store's unique index is the source of truth for
// code uniqueness; on collision a new code is drawn.
func (s *TontineServiceImpl) Create(ctx context.Context, initiator *models.User, req *models.CreateTontineRequest) (*models.Tontine, error) {
	if initiator.Role != models.RoleInitiator {
		return nil, domain.ErrForbidden
	}
	if !req.UnlimitedMembers && req.MaxMembers <= 0 {
		return nil, fmt.Errorf("%w: capacity must be positive or unlimited", domain.ErrInvalidState)
	}

	tontine := &models.Tontine{
		Name:             req.Name,
		Description:      req.Description,
		Kind:             req.Kind,
		Amount:           req.Amount,
		Cadence:          req.Cadence,
		MaxMembers:       req.MaxMembers,
		UnlimitedMembers: req.UnlimitedMembers,
		CollectionDay:    req.CollectionDay,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		RotationOrder:    []string{},
		Status:           models.StatusPending,
		InitiatorID:      initiator.ID.Hex(),
	}
	// The collection window only applies to the savings kind.
	if req.Kind == models.KindSavings {
		tontine.WindowStart = req.WindowStart
		tontine.WindowEnd = req.WindowEnd
	}

	retries := s.cfg.Tontine.CodeRetries
	if retries <= 0 {
		retries = 1
	}
	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		code, err := utils.GenerateInviteCode(s.cfg.Tontine.CodeLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate invitation code: %w", err)
		}
		tontine.InviteCode = code
		tontine.InviteLink = fmt.Sprintf("%s/join?code=%s", s.cfg.Tontine.InviteBaseURL, code)

		lastErr = s.tontineRepo.Create(ctx, tontine)
		if lastErr == nil {
			slog.Info("tontine created", "tontineId", tontine.ID.Hex(), "initiatorId", tontine.InitiatorID)
			s.publish(ctx, events.SubjectTontineCreated, &models.Event{
				Type:      "tontine.created",
				TontineID: tontine.ID.Hex(),
				ActorID:   tontine.InitiatorID,
				Status:    string(tontine.Status),
				At:        time.Now(),
			})
			return tontine, nil
		}
		if lastErr != domain.ErrConflict {
			return nil, lastErr
		}
		slog.Warn("invitation code collision, regenerating", "code", code, "attempt", attempt+1)
	}
	return nil, fmt.Errorf("failed to create tontine after %d code attempts: %w", retries, lastErr)
}

// GetByID retrieves a tontine by id
func (s *TontineServiceImpl) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Tontine, error) {
	return s.tontineRepo.FindByID(ctx, id)
}

// ListForUser returns the tontines the user initiated followed by the
// ones the user joined, deduplicated.
func (s *TontineServiceImpl) ListForUser(ctx context.Context, userID string) ([]*models.Tontine, error) {
	initiated, err := s.tontineRepo.FindByInitiator(ctx, userID)
	if err != nil {
		return nil, err
	}
	memberIDs, err := s.participantRepo.FindTontineIDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	joined, err := s.tontineRepo.FindByIDs(ctx, memberIDs)
	if err != nil {
		return nil, err
	}

	seen := make(map[primitive.ObjectID]bool, len(initiated))
	out := make([]*models.Tontine, 0, len(initiated)+len(joined))
	for _, t := range initiated {
		seen[t.ID] = true
		out = append(out, t)
	}
	for _, t := range joined {
		if !seen[t.ID] {
			out = append(out, t)
		}
	}
	return out, nil
}

// ResolveInviteCode resolves an invitation code to a public preview
func (s *TontineServiceImpl) ResolveInviteCode(ctx context.Context, code string) (*models.InvitationPreview, error) {
	tontine, err := s.tontineRepo.FindByInviteCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return &models.InvitationPreview{
		TontineID: tontine.ID.Hex(),
		Name:      tontine.Name,
		Kind:      tontine.Kind,
		Amount:    tontine.Amount,
		Cadence:   tontine.Cadence,
		Status:    tontine.Status,
	}, nil
}

// ChangeStatus performs a lifecycle transition. Legal transitions:
// pending→active, active⇄suspended, any non-completed→completed.
// Completed is terminal.
func (s *TontineServiceImpl) ChangeStatus(ctx context.Context, id primitive.ObjectID, actorID string, status models.TontineStatus) (*models.Tontine, error) {
	tontine, err := s.tontineRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tontine.InitiatorID != actorID {
		return nil, domain.ErrForbidden
	}
	if !legalTransition(tontine.Status, status) {
		return nil, fmt.Errorf("%w: cannot transition from %s to %s", domain.ErrInvalidState, tontine.Status, status)
	}

	// Configurable activation policy: a first activation may require a
	// minimum roster size.
	if status == models.StatusActive && tontine.Status == models.StatusPending && s.cfg.Tontine.MinRosterSize > 0 {
		count, err := s.participantRepo.CountByTontine(ctx, id)
		if err != nil {
			return nil, err
		}
		if count < int64(s.cfg.Tontine.MinRosterSize) {
			return nil, fmt.Errorf("%w: at least %d participants required to activate", domain.ErrInvalidState, s.cfg.Tontine.MinRosterSize)
		}
	}

	if err := s.tontineRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	tontine.Status = status

	slog.Info("tontine status changed", "tontineId", id.Hex(), "status", status)
	s.publish(ctx, events.SubjectTontineStatus, &models.Event{
		Type:      "tontine.status",
		TontineID: id.Hex(),
		ActorID:   actorID,
		Status:    string(status),
		At:        time.Now(),
	})
	return tontine, nil
}

func legalTransition(from, to models.TontineStatus) bool {
	if from == models.StatusCompleted {
		return false
	}
	switch to {
	case models.StatusActive:
		return from == models.StatusPending || from == models.StatusSuspended
	case models.StatusSuspended:
		return from == models.StatusActive
	case models.StatusCompleted:
		return true
	default:
		return false
	}
}

// Reorder replaces the rotation order. The payload must be a
// permutation of the current order: same ids, no additions, no
// removals, no duplicates.
func (s *TontineServiceImpl) Reorder(ctx context.Context, id primitive.ObjectID, actorID string, order []string) (*models.Tontine, error) {
	unlock := s.locks.lock(id.Hex())
	defer unlock()

	tontine, err := s.tontineRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tontine.InitiatorID != actorID {
		return nil, domain.ErrForbidden
	}
	if tontine.Status == models.StatusCompleted {
		return nil, fmt.Errorf("%w: tontine is completed", domain.ErrInvalidState)
	}
	if !isPermutation(tontine.RotationOrder, order) {
		return nil, domain.ErrInvalidOrder
	}

	if err := s.tontineRepo.UpdateOrder(ctx, id, order); err != nil {
		return nil, err
	}
	tontine.RotationOrder = append([]string(nil), order...)

	slog.Info("rotation order updated", "tontineId", id.Hex())
	s.publish(ctx, events.SubjectTontineReordered, &models.Event{
		Type:      "tontine.reordered",
		TontineID: id.Hex(),
		ActorID:   actorID,
		At:        time.Now(),
	})
	return tontine, nil
}

func isPermutation(current, proposed []string) bool {
	if len(current) != len(proposed) {
		return false
	}
	counts := make(map[string]int, len(current))
	for _, id := range current {
		counts[id]++
	}
	for _, id := range proposed {
		counts[id]--
		if counts[id] < 0 {
			return false
		}
	}
	return true
}

// Join enrolls the user in the tontine behind the invitation code. The
// per-tontine lock serializes concurrent joins so two users cannot
// claim the same trailing rotation position and a double-submitting
// client cannot enroll twice. Joining is legal in every non-completed
// state; only payment submission is gated on active.
func (s *TontineServiceImpl) Join(ctx context.Context, code string, user *models.User) (*models.Participant, error) {
	tontine, err := s.tontineRepo.FindByInviteCode(ctx, code)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(tontine.ID.Hex())
	defer unlock()

	// Re-read under the lock: the order array may have grown.
	tontine, err = s.tontineRepo.FindByID(ctx, tontine.ID)
	if err != nil {
		return nil, err
	}
	if tontine.Status == models.StatusCompleted {
		return nil, fmt.Errorf("%w: tontine is completed", domain.ErrInvalidState)
	}

	userID := user.ID.Hex()
	// Idempotent: a repeated join returns the existing membership.
	if existing, err := s.participantRepo.FindByTontineAndUser(ctx, tontine.ID, userID); err == nil {
		return existing, nil
	} else if err != domain.ErrNotFound {
		return nil, err
	}

	if !tontine.UnlimitedMembers && tontine.MaxMembers > 0 {
		count, err := s.participantRepo.CountByTontine(ctx, tontine.ID)
		if err != nil {
			return nil, err
		}
		if count >= int64(tontine.MaxMembers) {
			return nil, domain.ErrCapacityExceeded
		}
	}

	participant := &models.Participant{
		TontineID:     tontine.ID,
		UserID:        userID,
		Name:          user.DisplayName(),
		Email:         user.Email,
		Phone:         user.Phone,
		PaymentStatus: models.PaymentUnpaid,
		Position:      len(tontine.RotationOrder),
	}
	if err := s.participantRepo.Create(ctx, participant); err != nil {
		return nil, err
	}
	if err := s.tontineRepo.UpdateOrder(ctx, tontine.ID, append(tontine.RotationOrder, userID)); err != nil {
		return nil, err
	}

	slog.Info("participant joined", "tontineId", tontine.ID.Hex(), "userId", userID, "position", participant.Position)
	s.publish(ctx, events.SubjectParticipantJoin, &models.Event{
		Type:      "tontine.joined",
		TontineID: tontine.ID.Hex(),
		ActorID:   userID,
		At:        time.Now(),
	})
	return participant, nil
}

// Roster lists the participants with positions recomputed from the
// rotation order, which is the single source of truth; the stored
// position field is only a join-time snapshot.
func (s *TontineServiceImpl) Roster(ctx context.Context, id primitive.ObjectID) ([]*models.Participant, error) {
	tontine, err := s.tontineRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	participants, err := s.participantRepo.FindByTontine(ctx, id)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(tontine.RotationOrder))
	for i, userID := range tontine.RotationOrder {
		index[userID] = i
	}
	for _, p := range participants {
		if pos, ok := index[p.UserID]; ok {
			p.Position = pos
		}
	}
	return participants, nil
}

func (s *TontineServiceImpl) publish(ctx context.Context, subject string, event *models.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal event", "type", event.Type, "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, subject, data); err != nil {
		slog.Error("failed to publish event", "subject", subject, "error", err)
	}
}

// keyedMutex serializes operations per tontine id.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}

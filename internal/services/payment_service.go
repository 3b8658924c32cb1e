package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tontiva/tontine-backend/internal/domain"
	"github.com/tontiva/tontine-backend/internal/models"
	"github.com/tontiva/tontine-backend/internal/repositories"
	"github.com/tontiva/tontine-backend/internal/utils"
	"github.com/tontiva/tontine-backend/pkg/events"
)

// Compile-time check to ensure PaymentServiceImpl implements PaymentService
var _ PaymentService = (*PaymentServiceImpl)(nil)

// PaymentServiceImpl implements the contribution ledger: claim
// submission and the initiator's validation workflow.
type PaymentServiceImpl struct {
	paymentRepo     repositories.PaymentRepository
	tontineRepo     repositories.TontineRepository
	participantRepo repositories.ParticipantRepository
	publisher       events.Publisher
}

// NewPaymentService creates a new PaymentServiceImpl
func NewPaymentService(paymentRepo repositories.PaymentRepository, tontineRepo repositories.TontineRepository, participantRepo repositories.ParticipantRepository, publisher events.Publisher) *PaymentServiceImpl {
	return &PaymentServiceImpl{
		paymentRepo:     paymentRepo,
		tontineRepo:     tontineRepo,
		participantRepo: participantRepo,
		publisher:       publisher,
	}
}

// Submit appends a contribution claim to the ledger. Only legal while
// the tontine is active; the submitter must be a roster member. The
// ledger keeps every claim, including repeated submissions for the same
// period (correction submissions are allowed).
func (s *PaymentServiceImpl) Submit(ctx context.Context, tontineID primitive.ObjectID, actor *models.User, req *models.SubmitPaymentRequest) (*models.Payment, error) {
	tontine, err := s.tontineRepo.FindByID(ctx, tontineID)
	if err != nil {
		return nil, err
	}
	if tontine.Status != models.StatusActive {
		return nil, fmt.Errorf("%w: payments require an active tontine, status is %s", domain.ErrInvalidState, tontine.Status)
	}

	userID := actor.ID.Hex()
	if _, err := s.participantRepo.FindByTontineAndUser(ctx, tontineID, userID); err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.ErrForbidden
		}
		return nil, err
	}

	now := time.Now()
	period := req.Period
	if period == "" {
		period = utils.PeriodLabel(now)
	}

	payment := &models.Payment{
		TontineID:     tontineID,
		ParticipantID: userID,
		Amount:        req.Amount,
		Period:        period,
		ProofRef:      req.ProofRef,
		Status:        models.PaymentStatusPending,
		SubmittedAt:   now,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	// The roster mirrors the outstanding claim until it is validated.
	if err := s.participantRepo.UpdatePaymentStatus(ctx, tontineID, userID, models.PaymentPending, &now); err != nil {
		slog.Error("failed to sync roster after submission", "tontineId", tontineID.Hex(), "userId", userID, "error", err)
	}

	slog.Info("payment submitted", "paymentId", payment.ID.Hex(), "tontineId", tontineID.Hex(), "userId", userID, "period", period)
	s.publish(ctx, events.SubjectPaymentSubmitted, &models.Event{
		Type:      "payment.submitted",
		TontineID: tontineID.Hex(),
		ActorID:   userID,
		PaymentID: payment.ID.Hex(),
		Status:    string(payment.Status),
		At:        now,
	})
	return payment, nil
}

// Validate records the initiator's decision on a pending claim. The
// conditional write on the payment's current status guarantees the
// transition happens exactly once; a second decision fails with
// ErrConflict. Confirming syncs the participant's roster entry to
// confirmed; rejecting reverts it to unpaid since the claim that made
// it pending no longer stands.
func (s *PaymentServiceImpl) Validate(ctx context.Context, paymentID primitive.ObjectID, actorID string, decision string) (*models.Payment, error) {
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	tontine, err := s.tontineRepo.FindByID(ctx, payment.TontineID)
	if err != nil {
		return nil, err
	}
	if tontine.InitiatorID != actorID {
		return nil, domain.ErrForbidden
	}

	var status models.PaymentStatus
	switch decision {
	case "confirm":
		status = models.PaymentStatusConfirmed
	case "reject":
		status = models.PaymentStatusRejected
	default:
		return nil, fmt.Errorf("%w: unknown decision %q", domain.ErrInvalidState, decision)
	}

	now := time.Now()
	if err := s.paymentRepo.MarkValidated(ctx, paymentID, status, actorID, now); err != nil {
		return nil, err
	}
	payment.Status = status
	payment.ValidatorID = actorID
	payment.ValidatedAt = &now

	rosterState := models.PaymentConfirmed
	var lastPaymentAt *time.Time
	if status == models.PaymentStatusConfirmed {
		lastPaymentAt = &now
	} else {
		rosterState = models.PaymentUnpaid
	}
	if err := s.participantRepo.UpdatePaymentStatus(ctx, payment.TontineID, payment.ParticipantID, rosterState, lastPaymentAt); err != nil {
		slog.Error("failed to sync roster after validation", "tontineId", payment.TontineID.Hex(), "userId", payment.ParticipantID, "error", err)
	}

	slog.Info("payment validated", "paymentId", paymentID.Hex(), "decision", decision, "validatorId", actorID)
	s.publish(ctx, events.SubjectPaymentValidated, &models.Event{
		Type:      "payment.validated",
		TontineID: payment.TontineID.Hex(),
		ActorID:   actorID,
		PaymentID: paymentID.Hex(),
		Status:    string(status),
		At:        now,
	})
	return payment, nil
}

// ListByTontine lists a tontine's ledger newest first. Visible to the
// initiator and roster members only.
func (s *PaymentServiceImpl) ListByTontine(ctx context.Context, tontineID primitive.ObjectID, actorID string, status models.PaymentStatus) ([]*models.Payment, error) {
	tontine, err := s.tontineRepo.FindByID(ctx, tontineID)
	if err != nil {
		return nil, err
	}
	if tontine.InitiatorID != actorID {
		if _, err := s.participantRepo.FindByTontineAndUser(ctx, tontineID, actorID); err != nil {
			if err == domain.ErrNotFound {
				return nil, domain.ErrForbidden
			}
			return nil, err
		}
	}
	return s.paymentRepo.FindByTontine(ctx, tontineID, status)
}

// ListByParticipant lists one member's payments newest first.
func (s *PaymentServiceImpl) ListByParticipant(ctx context.Context, tontineID primitive.ObjectID, userID string) ([]*models.Payment, error) {
	return s.paymentRepo.FindByParticipant(ctx, tontineID, userID)
}

func (s *PaymentServiceImpl) publish(ctx context.Context, subject string, event *models.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal event", "type", event.Type, "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, subject, data); err != nil {
		slog.Error("failed to publish event", "subject", subject, "error", err)
	}
}

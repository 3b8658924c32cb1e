package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tontiva/tontine-backend/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
}

// TontineRepository defines the interface for tontine data access
type TontineRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Tontine, error)
	// FindByInviteCode resolves an invitation code. Codes are stored
	// upper-case; lookups are case-insensitive.
	FindByInviteCode(ctx context.Context, code string) (*models.Tontine, error)
	FindByInitiator(ctx context.Context, initiatorID string) ([]*models.Tontine, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Tontine, error)
	Create(ctx context.Context, tontine *models.Tontine) error
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.TontineStatus) error
	// UpdateOrder atomically replaces the rotation order array.
	UpdateOrder(ctx context.Context, id primitive.ObjectID, order []string) error
}

// ParticipantRepository defines the interface for roster data access
type ParticipantRepository interface {
	FindByTontine(ctx context.Context, tontineID primitive.ObjectID) ([]*models.Participant, error)
	FindByTontineAndUser(ctx context.Context, tontineID primitive.ObjectID, userID string) (*models.Participant, error)
	FindTontineIDsByUser(ctx context.Context, userID string) ([]primitive.ObjectID, error)
	CountByTontine(ctx context.Context, tontineID primitive.ObjectID) (int64, error)
	Create(ctx context.Context, participant *models.Participant) error
	UpdatePaymentStatus(ctx context.Context, tontineID primitive.ObjectID, userID string, status models.PaymentState, lastPaymentAt *time.Time) error
}

// PaymentRepository defines the interface for ledger data access
type PaymentRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error)
	// FindByTontine lists payments newest first; status filters when
	// non-empty.
	FindByTontine(ctx context.Context, tontineID primitive.ObjectID, status models.PaymentStatus) ([]*models.Payment, error)
	FindByParticipant(ctx context.Context, tontineID primitive.ObjectID, userID string) ([]*models.Payment, error)
	Create(ctx context.Context, payment *models.Payment) error
	// MarkValidated transitions a payment from pending to a terminal
	// status in a single conditional write. Returns domain.ErrConflict
	// when the payment is no longer pending.
	MarkValidated(ctx context.Context, id primitive.ObjectID, status models.PaymentStatus, validatorID string, at time.Time) error
}

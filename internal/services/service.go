package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tontiva/tontine-backend/internal/models"
)

// TontineService defines the interface for tontine lifecycle, join and
// collection-order operations
type TontineService interface {
	// Create instantiates a tontine in the pending state and assigns it
	// a unique invitation code and shareable link.
	Create(ctx context.Context, initiator *models.User, req *models.CreateTontineRequest) (*models.Tontine, error)

	// GetByID retrieves a tontine by its id.
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Tontine, error)

	// ListForUser retrieves the tontines the user initiated plus the
	// ones the user has joined.
	ListForUser(ctx context.Context, userID string) ([]*models.Tontine, error)

	// ResolveInviteCode resolves an invitation code case-insensitively
	// to a public preview of the tontine.
	ResolveInviteCode(ctx context.Context, code string) (*models.InvitationPreview, error)

	// ChangeStatus performs a lifecycle transition. Only the initiator
	// may transition; illegal transitions fail with ErrInvalidState.
	ChangeStatus(ctx context.Context, id primitive.ObjectID, actorID string, status models.TontineStatus) (*models.Tontine, error)

	// Reorder replaces the rotation order with a permutation of the
	// current one. Initiator only.
	Reorder(ctx context.Context, id primitive.ObjectID, actorID string, order []string) (*models.Tontine, error)

	// Join enrolls the user in the tontine behind the invitation code,
	// appending them to the rotation order. Idempotent per user.
	Join(ctx context.Context, code string, user *models.User) (*models.Participant, error)

	// Roster lists the tontine's participants with positions recomputed
	// from the authoritative rotation order.
	Roster(ctx context.Context, id primitive.ObjectID) ([]*models.Participant, error)
}

// PaymentService defines the interface for the contribution ledger
type PaymentService interface {
	// Submit appends a contribution claim. The tontine must be active.
	Submit(ctx context.Context, tontineID primitive.ObjectID, actor *models.User, req *models.SubmitPaymentRequest) (*models.Payment, error)

	// Validate records the initiator's confirm/reject decision on a
	// pending claim, exactly once, and syncs the roster entry.
	Validate(ctx context.Context, paymentID primitive.ObjectID, actorID string, decision string) (*models.Payment, error)

	// ListByTontine lists a tontine's payments newest first, optionally
	// filtered by status. Restricted to the initiator and members.
	ListByTontine(ctx context.Context, tontineID primitive.ObjectID, actorID string, status models.PaymentStatus) ([]*models.Payment, error)

	// ListByParticipant lists one member's payments newest first.
	ListByParticipant(ctx context.Context, tontineID primitive.ObjectID, userID string) ([]*models.Payment, error)
}

// AuthService defines the interface for authentication operations
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
}

// UserService defines the interface for profile operations
type UserService interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error)
}

package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tontiva/tontine-backend/internal/domain"
	"github.com/tontiva/tontine-backend/internal/models"
	"github.com/tontiva/tontine-backend/internal/repositories"
)

// PaymentRepository implements the repositories.PaymentRepository interface
type PaymentRepository struct {
	collection *mongo.Collection
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(db *mongo.Database) repositories.PaymentRepository {
	return &PaymentRepository{
		collection: db.Collection("payments"),
	}
}

// FindByID finds a payment by ID
func (r *PaymentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	var payment models.Payment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&payment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// FindByTontine finds a tontine's payments newest first, optionally
// filtered by status
func (r *PaymentRepository) FindByTontine(ctx context.Context, tontineID primitive.ObjectID, status models.PaymentStatus) ([]*models.Payment, error) {
	filter := bson.M{"tontineId": tontineID}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.M{"submittedAt": -1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var payments []*models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

// FindByParticipant finds one member's payments newest first
func (r *PaymentRepository) FindByParticipant(ctx context.Context, tontineID primitive.ObjectID, userID string) ([]*models.Payment, error) {
	opts := options.Find().SetSort(bson.M{"submittedAt": -1})
	cursor, err := r.collection.Find(ctx, bson.M{"tontineId": tontineID, "participantId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var payments []*models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

// Create appends a new payment to the ledger
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	res, err := r.collection.InsertOne(ctx, payment)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		payment.ID = oid
	}
	return nil
}

// MarkValidated transitions a pending payment to a terminal status. The
// filter on the current status is the optimistic-concurrency guard: a
// payment already validated matches nothing and the call fails with
// ErrConflict instead of overwriting the first decision.
func (r *PaymentRepository) MarkValidated(ctx context.Context, id primitive.ObjectID, status models.PaymentStatus, validatorID string, at time.Time) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.PaymentStatusPending},
		bson.M{"$set": bson.M{
			"status":      status,
			"validatorId": validatorID,
			"validatedAt": at,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return domain.ErrConflict
	}
	return nil
}

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

// ParticipantRepository implements the repositories.ParticipantRepository interface
type ParticipantRepository struct {
	collection *mongo.Collection
}

// NewParticipantRepository creates a new ParticipantRepository and
// ensures a user id appears at most once per tontine roster.
func NewParticipantRepository(db *mongo.Database) repositories.ParticipantRepository {
	coll := db.Collection("participants")
	_, _ = coll.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "tontineId", Value: 1}, {Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return &ParticipantRepository{collection: coll}
}

// FindByTontine finds the roster of a tontine in join order
func (r *ParticipantRepository) FindByTontine(ctx context.Context, tontineID primitive.ObjectID) ([]*models.Participant, error) {
	opts := options.Find().SetSort(bson.M{"joinedAt": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"tontineId": tontineID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var participants []*models.Participant
	if err := cursor.All(ctx, &participants); err != nil {
		return nil, err
	}
	return participants, nil
}

// FindByTontineAndUser finds a single membership record
func (r *ParticipantRepository) FindByTontineAndUser(ctx context.Context, tontineID primitive.ObjectID, userID string) (*models.Participant, error) {
	var participant models.Participant
	err := r.collection.FindOne(ctx, bson.M{"tontineId": tontineID, "userId": userID}).Decode(&participant)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &participant, nil
}

// FindTontineIDsByUser finds the ids of all tontines a user has joined
func (r *ParticipantRepository) FindTontineIDsByUser(ctx context.Context, userID string) ([]primitive.ObjectID, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var memberships []*models.Participant
	if err := cursor.All(ctx, &memberships); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.TontineID)
	}
	return ids, nil
}

// CountByTontine counts roster members
func (r *ParticipantRepository) CountByTontine(ctx context.Context, tontineID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"tontineId": tontineID})
}

// Create creates a new membership record
func (r *ParticipantRepository) Create(ctx context.Context, participant *models.Participant) error {
	participant.JoinedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, participant)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrConflict
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		participant.ID = oid
	}
	return nil
}

// UpdatePaymentStatus sets a member's current-cycle payment state
func (r *ParticipantRepository) UpdatePaymentStatus(ctx context.Context, tontineID primitive.ObjectID, userID string, status models.PaymentState, lastPaymentAt *time.Time) error {
	set := bson.M{"paymentStatus": status}
	if lastPaymentAt != nil {
		set["lastPaymentAt"] = *lastPaymentAt
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"tontineId": tontineID, "userId": userID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

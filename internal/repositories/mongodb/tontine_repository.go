package mongodb

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tontiva/tontine-backend/internal/domain"
	"github.com/tontiva/tontine-backend/internal/models"
	"github.com/tontiva/tontine-backend/internal/repositories"
)

// TontineRepository implements the repositories.TontineRepository interface
type TontineRepository struct {
	collection *mongo.Collection
}

// NewTontineRepository creates a new TontineRepository and ensures the
// unique index backing invitation-code uniqueness.
func NewTontineRepository(db *mongo.Database) repositories.TontineRepository {
	coll := db.Collection("tontines")
	_, _ = coll.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.M{"inviteCode": 1},
		Options: options.Index().SetUnique(true),
	})
	return &TontineRepository{collection: coll}
}

// FindByID finds a tontine by ID
func (r *TontineRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Tontine, error) {
	var tontine models.Tontine
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tontine)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &tontine, nil
}

// FindByInviteCode finds a tontine by its invitation code. Codes are
// stored upper-case; lookup is case-insensitive by normalizing here.
func (r *TontineRepository) FindByInviteCode(ctx context.Context, code string) (*models.Tontine, error) {
	var tontine models.Tontine
	err := r.collection.FindOne(ctx, bson.M{"inviteCode": strings.ToUpper(code)}).Decode(&tontine)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &tontine, nil
}

// FindByInitiator finds tontines created by the given user, newest first
func (r *TontineRepository) FindByInitiator(ctx context.Context, initiatorID string) ([]*models.Tontine, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := r.collection.Find(ctx, bson.M{"initiatorId": initiatorID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tontines []*models.Tontine
	if err := cursor.All(ctx, &tontines); err != nil {
		return nil, err
	}
	return tontines, nil
}

// FindByIDs finds the tontines with the given ids
func (r *TontineRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Tontine, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tontines []*models.Tontine
	if err := cursor.All(ctx, &tontines); err != nil {
		return nil, err
	}
	return tontines, nil
}

// Create creates a new tontine
func (r *TontineRepository) Create(ctx context.Context, tontine *models.Tontine) error {
	tontine.CreatedAt = time.Now()
	tontine.UpdatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, tontine)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrConflict
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		tontine.ID = oid
	}
	return nil
}

// UpdateStatus sets the lifecycle status
func (r *TontineRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.TontineStatus) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": status, "updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateOrder replaces the rotation order array atomically
func (r *TontineRepository) UpdateOrder(ctx context.Context, id primitive.ObjectID, order []string) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"rotationOrder": order, "updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

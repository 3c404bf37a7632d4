package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/velronatechnologies/Ticpin-website-sub002/internal/domain/entity"
	"github.com/velronatechnologies/Ticpin-website-sub002/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPassRepository implements PassRepository on a MongoDB collection
type MongoPassRepository struct {
	collection   *mongo.Collection
	transactions bool
}

// NewMongoPassRepository creates a pass repository. transactions enables multi-document
// transactions, which require a replica set.
func NewMongoPassRepository(db *mongo.Database, collectionName string, transactions bool) repository.PassRepository {
	if collectionName == "" {
		collectionName = entity.PassCollection
	}
	collection := db.Collection(collectionName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	emailIndex := mongo.IndexModel{
		Keys: bson.M{"email": 1},
	}

	phoneIndex := mongo.IndexModel{
		Keys: bson.M{"phone": 1},
	}

	// Reminder scan: stored status plus expiry window
	reminderIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "status", Value: 1},
			{Key: "expiryDate", Value: 1},
		},
	}

	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		emailIndex,
		phoneIndex,
		reminderIndex,
	})

	return &MongoPassRepository{
		collection:   collection,
		transactions: transactions,
	}
}

// FindByField returns every pass whose field equals value
func (r *MongoPassRepository) FindByField(ctx context.Context, field, value string) ([]*entity.PassRecord, error) {
	cursor, err := r.collection.Find(ctx, bson.M{field: value})
	if err != nil {
		return nil, fmt.Errorf("failed to query passes by %s: %w", field, err)
	}
	defer cursor.Close(ctx)

	var passes []*entity.PassRecord
	if err := cursor.All(ctx, &passes); err != nil {
		return nil, fmt.Errorf("failed to decode passes: %w", err)
	}

	return passes, nil
}

// FindByID finds a pass by document id
func (r *MongoPassRepository) FindByID(ctx context.Context, id string) (*entity.PassRecord, error) {
	var pass entity.PassRecord
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&pass)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrPassNotFound
		}
		return nil, err
	}
	return &pass, nil
}

// Create inserts a new pass document and returns its id
func (r *MongoPassRepository) Create(ctx context.Context, pass *entity.PassRecord) (string, error) {
	now := time.Now()
	if pass.ID == "" {
		pass.ID = primitive.NewObjectID().Hex()
	}
	if pass.CreatedAt.IsZero() {
		pass.CreatedAt = now
	}
	pass.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, pass); err != nil {
		return "", fmt.Errorf("failed to insert pass: %w", err)
	}

	return pass.ID, nil
}

// Update sets the given fields on a pass document
func (r *MongoPassRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	set := bson.M{"updatedAt": time.Now()}
	for k, v := range fields {
		set[k] = v
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update pass: %w", err)
	}

	if result.MatchedCount == 0 {
		return repository.ErrPassNotFound
	}

	return nil
}

// Delete removes a pass document
func (r *MongoPassRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete pass: %w", err)
	}

	if result.DeletedCount == 0 {
		return repository.ErrPassNotFound
	}

	return nil
}

// FindActiveExpiringBetween finds passes stored as active whose expiry falls inside [from, to]
func (r *MongoPassRepository) FindActiveExpiringBetween(ctx context.Context, from, to time.Time) ([]*entity.PassRecord, error) {
	filter := bson.M{
		"status": entity.PassStatusActive,
		"expiryDate": bson.M{
			"$gte": from,
			"$lte": to,
		},
	}

	opts := options.Find().SetSort(bson.D{{Key: "expiryDate", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query expiring passes: %w", err)
	}
	defer cursor.Close(ctx)

	var passes []*entity.PassRecord
	if err := cursor.All(ctx, &passes); err != nil {
		return nil, fmt.Errorf("failed to decode expiring passes: %w", err)
	}

	return passes, nil
}

// WithTransaction runs fn inside a session transaction when enabled
func (r *MongoPassRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !r.transactions {
		return fn(ctx)
	}

	session, err := r.collection.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}

// Transactional reports whether writes inside WithTransaction are rolled back on error
func (r *MongoPassRepository) Transactional() bool {
	return r.transactions
}

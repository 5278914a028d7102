package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/procurement/internal/domain/models"
)

// InsertRequest stores a new purchase request together with its line items.
func (r *MongoDBRepository) InsertRequest(ctx context.Context, pr models.PurchaseRequest) error {
	now := r.now().UTC()
	if pr.CreatedAt.IsZero() {
		pr.CreatedAt = now
	}
	pr.UpdatedAt = now

	_, err := r.collection(requestsCollection).InsertOne(ctx, pr)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ErrDuplicate, pr.RefNo)
		}
		return fmt.Errorf("failed to insert purchase request: %w", err)
	}
	return nil
}

// ListRequests returns every purchase request, newest first.
func (r *MongoDBRepository) ListRequests(ctx context.Context) ([]models.PurchaseRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection(requestsCollection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchase requests: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []models.PurchaseRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode purchase requests: %w", err)
	}
	for i := range requests {
		requests[i].SyncState = models.SyncStateSynced
	}
	return requests, nil
}

// GetRequest loads one purchase request by reference number.
func (r *MongoDBRepository) GetRequest(ctx context.Context, refNo string) (models.PurchaseRequest, error) {
	var pr models.PurchaseRequest
	err := r.collection(requestsCollection).FindOne(ctx, bson.D{{Key: "ref_no", Value: refNo}}).Decode(&pr)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.PurchaseRequest{}, fmt.Errorf("%w: %s", ErrNotFound, refNo)
		}
		return models.PurchaseRequest{}, fmt.Errorf("failed to load purchase request %s: %w", refNo, err)
	}
	pr.SyncState = models.SyncStateSynced
	return pr, nil
}

// UpdateStatus changes only the status of a stored purchase request.
func (r *MongoDBRepository) UpdateStatus(ctx context.Context, refNo string, status models.RequestStatus) error {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: status},
		{Key: "updated_at", Value: r.now().UTC()},
	}}}

	res, err := r.collection(requestsCollection).UpdateOne(ctx, bson.D{{Key: "ref_no", Value: refNo}}, update)
	if err != nil {
		return fmt.Errorf("failed to update status of %s: %w", refNo, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, refNo)
	}
	return nil
}

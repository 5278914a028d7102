package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/procurement/internal/domain/models"
)

const (
	requestsCollection  = "purchase_requests"
	summariesCollection = "canvass_summaries"
)

var (
	// ErrNotFound indicates no purchase request with the given reference number.
	ErrNotFound = errors.New("purchase request not found")

	// ErrDuplicate indicates a purchase request reference number already stored.
	ErrDuplicate = errors.New("purchase request already exists")
)

// Repository defines the persistence operations for requests and canvass summaries.
type Repository interface {
	InsertRequest(ctx context.Context, pr models.PurchaseRequest) error
	ListRequests(ctx context.Context) ([]models.PurchaseRequest, error)
	GetRequest(ctx context.Context, refNo string) (models.PurchaseRequest, error)
	UpdateStatus(ctx context.Context, refNo string, status models.RequestStatus) error
	SaveSummary(ctx context.Context, summary models.SessionSummary) error
}

var _ Repository = (*MongoDBRepository)(nil)

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
	now    func() time.Time
}

// NewMongoDBRepository connects, pings and prepares the indexes.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	repo := &MongoDBRepository{
		client: client,
		dbName: dbName,
		now:    time.Now,
	}

	if err := repo.ensureIndexes(ctx); err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *MongoDBRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.collection(requestsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "ref_no", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create ref_no index: %w", err)
	}

	_, err = r.collection(summariesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "pr_ref_no", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create pr_ref_no index: %w", err)
	}
	return nil
}

func (r *MongoDBRepository) collection(name string) *mongo.Collection {
	return r.client.Database(r.dbName).Collection(name)
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

package mongodb

import (
	"context"
	"fmt"

	"github.com/mamadbah2/procurement/internal/domain/models"
)

// SaveSummary saves a completed canvass session summary to the database.
func (r *MongoDBRepository) SaveSummary(ctx context.Context, summary models.SessionSummary) error {
	_, err := r.collection(summariesCollection).InsertOne(ctx, summary)
	if err != nil {
		return fmt.Errorf("failed to insert canvass summary: %w", err)
	}
	return nil
}

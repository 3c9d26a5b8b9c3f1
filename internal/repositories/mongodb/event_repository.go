package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/ArowuTest/event-showcase-backend/internal/models"
	"github.com/ArowuTest/event-showcase-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EventRepository implements repositories.EventRepository on a Mongo collection
type EventRepository struct {
	collection *mongo.Collection
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{
		collection: db.Collection("events"),
	}
}

var _ repositories.EventRepository = (*EventRepository)(nil)

// Create inserts a new event
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	now := time.Now()
	event.ID = primitive.NewObjectID()
	event.CreatedAt = now
	event.UpdatedAt = now
	repositories.NormalizeChildren(event)
	repositories.AssignChildIDs(event)

	_, err := r.collection.InsertOne(ctx, event)
	return err
}

// FindByID finds an event by ID
func (r *EventRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	var event models.Event
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	repositories.NormalizeChildren(&event)
	return &event, nil
}

// FindSummaries lists events without their children, oldest first
func (r *EventRepository) FindSummaries(ctx context.Context) ([]*models.EventSummary, error) {
	opts := options.Find().
		SetProjection(bson.M{"title": 1, "description": 1, "date": 1, "eventImgUrl": 1}).
		SetSort(bson.M{"_id": 1})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var summaries []*models.EventSummary
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, err
	}

	// Ensure an empty slice is returned instead of nil if no events found
	if summaries == nil {
		summaries = []*models.EventSummary{}
	}
	return summaries, nil
}

// Update replaces the whole event document
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	event.UpdatedAt = time.Now()
	repositories.NormalizeChildren(event)
	repositories.AssignChildIDs(event)

	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": event.ID}, event)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// Delete deletes an event
func (r *EventRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

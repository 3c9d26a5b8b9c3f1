package repositories

import (
	"context"
	"errors"

	"github.com/ArowuTest/event-showcase-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned when no event matches the requested id.
var ErrNotFound = errors.New("event not found")

// EventRepository defines the interface for event aggregate persistence.
// Events are stored and loaded as whole documents, children included.
type EventRepository interface {
	// Create assigns the event id and timestamps and inserts it with empty children.
	Create(ctx context.Context, event *models.Event) error

	// FindByID loads the full aggregate.
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error)

	// FindSummaries lists every event without its children, oldest first.
	FindSummaries(ctx context.Context) ([]*models.EventSummary, error)

	// Update replaces the stored aggregate. Children with a zero id are new
	// and receive a freshly generated one before the write.
	Update(ctx context.Context, event *models.Event) error

	// Delete removes the aggregate and its embedded children.
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// AssignChildIDs gives every child without an id a new ObjectID.
func AssignChildIDs(event *models.Event) {
	for i := range event.Certificates {
		if event.Certificates[i].ID.IsZero() {
			event.Certificates[i].ID = primitive.NewObjectID()
		}
	}
	for i := range event.Gallery {
		if event.Gallery[i].ID.IsZero() {
			event.Gallery[i].ID = primitive.NewObjectID()
		}
	}
}

// NormalizeChildren makes sure empty collections are stored as arrays, not null.
func NormalizeChildren(event *models.Event) {
	if event.Certificates == nil {
		event.Certificates = []models.Certificate{}
	}
	if event.Gallery == nil {
		event.Gallery = []models.GalleryImage{}
	}
}

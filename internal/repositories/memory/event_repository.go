// Package memory is an in-process event store. It keeps the same whole-document
// semantics as the Mongo store: callers get copies, and writes replace copies.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ArowuTest/event-showcase-backend/internal/models"
	"github.com/ArowuTest/event-showcase-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventRepository implements repositories.EventRepository in memory
type EventRepository struct {
	mu     sync.RWMutex
	events map[primitive.ObjectID]*models.Event
	order  []primitive.ObjectID
	now    func() time.Time
}

// NewEventRepository creates an empty in-memory store
func NewEventRepository() *EventRepository {
	return &EventRepository{
		events: make(map[primitive.ObjectID]*models.Event),
		now:    time.Now,
	}
}

var _ repositories.EventRepository = (*EventRepository)(nil)

func (r *EventRepository) Create(_ context.Context, event *models.Event) error {
	now := r.now()
	event.ID = primitive.NewObjectID()
	event.CreatedAt = now
	event.UpdatedAt = now
	repositories.NormalizeChildren(event)
	repositories.AssignChildIDs(event)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[event.ID] = event.Clone()
	r.order = append(r.order, event.ID)
	return nil
}

func (r *EventRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	event, ok := r.events[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return event.Clone(), nil
}

func (r *EventRepository) FindSummaries(_ context.Context) ([]*models.EventSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	summaries := make([]*models.EventSummary, 0, len(r.order))
	for _, id := range r.order {
		summaries = append(summaries, r.events[id].Clone().Summary())
	}
	return summaries, nil
}

func (r *EventRepository) Update(_ context.Context, event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.events[event.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	event.CreatedAt = stored.CreatedAt
	event.UpdatedAt = r.now()
	repositories.NormalizeChildren(event)
	repositories.AssignChildIDs(event)
	r.events[event.ID] = event.Clone()
	return nil
}

func (r *EventRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.events, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

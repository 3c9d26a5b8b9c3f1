package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is the aggregate root. Certificates and gallery images are embedded
// and only reachable through their parent.
type Event struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Title        string             `json:"title" bson:"title"`
	Description  string             `json:"description" bson:"description"`
	Date         *time.Time         `json:"date,omitempty" bson:"date,omitempty"`
	EventImgURL  string             `json:"eventImgUrl" bson:"eventImgUrl"`
	Certificates []Certificate      `json:"certificates" bson:"certificates"`
	Gallery      []GalleryImage     `json:"gallery" bson:"gallery"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Certificate is an issued certificate owned by an Event.
type Certificate struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id"`
	StudentName string             `json:"studentName" bson:"studentName"`
	CertURL     string             `json:"certUrl" bson:"certUrl"`
}

// GalleryImage is a gallery picture owned by an Event.
type GalleryImage struct {
	ID     primitive.ObjectID `json:"_id" bson:"_id"`
	ImgURL string             `json:"imgUrl" bson:"imgUrl"`
}

// EventSummary is the list projection of an Event, without children.
type EventSummary struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description" bson:"description"`
	Date        *time.Time         `json:"date,omitempty" bson:"date,omitempty"`
	EventImgURL string             `json:"eventImgUrl" bson:"eventImgUrl"`
}

// NewEvent creates an Event with empty child collections
func NewEvent(title, description string, date *time.Time, imgURL string) *Event {
	return &Event{
		Title:        title,
		Description:  description,
		Date:         date,
		EventImgURL:  imgURL,
		Certificates: []Certificate{},
		Gallery:      []GalleryImage{},
	}
}

// Summary projects the event onto its list representation.
func (e *Event) Summary() *EventSummary {
	return &EventSummary{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		EventImgURL: e.EventImgURL,
	}
}

// FindCertificate returns the index of the certificate with the given id, or -1.
func (e *Event) FindCertificate(id primitive.ObjectID) int {
	for i := range e.Certificates {
		if e.Certificates[i].ID == id {
			return i
		}
	}
	return -1
}

// FindGalleryImage returns the index of the gallery image with the given id, or -1.
func (e *Event) FindGalleryImage(id primitive.ObjectID) int {
	for i := range e.Gallery {
		if e.Gallery[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the event.
func (e *Event) Clone() *Event {
	out := *e
	if e.Date != nil {
		d := *e.Date
		out.Date = &d
	}
	out.Certificates = append([]Certificate{}, e.Certificates...)
	out.Gallery = append([]GalleryImage{}, e.Gallery...)
	return &out
}

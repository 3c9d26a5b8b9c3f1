package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ArowuTest/event-showcase-backend/internal/models"
	"github.com/ArowuTest/event-showcase-backend/internal/repositories"
	"github.com/ArowuTest/event-showcase-backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	// ErrValidation is returned when a required field is missing or empty.
	ErrValidation = errors.New("validation error")
	// ErrNotFound is returned for an unknown event or child id.
	ErrNotFound = errors.New("not found")
	// ErrPersistence wraps any store failure other than a missing document.
	ErrPersistence = errors.New("persistence error")

	ErrEventNotFound        = fmt.Errorf("event %w", ErrNotFound)
	ErrCertificateNotFound  = fmt.Errorf("certificate %w", ErrNotFound)
	ErrGalleryImageNotFound = fmt.Errorf("gallery image %w", ErrNotFound)
)

// AssetIngestor persists uploaded files and returns their asset references in input order.
type AssetIngestor interface {
	Ingest(ctx context.Context, parts []storage.FilePart) ([]string, error)
}

// EventServiceInterface is the aggregate service as seen by the HTTP layer
type EventServiceInterface interface {
	ListSummaries(ctx context.Context) ([]*models.EventSummary, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	Create(ctx context.Context, in models.CreateEventInput, image *storage.FilePart) (*models.Event, error)
	Update(ctx context.Context, id primitive.ObjectID, upd models.EventUpdate, image *storage.FilePart) (*models.Event, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	AppendCertificates(ctx context.Context, id primitive.ObjectID, files []storage.FilePart, names []string, keyed []models.CertificateName) ([]models.Certificate, error)
	RemoveCertificate(ctx context.Context, id, certID primitive.ObjectID) error
	RenameCertificate(ctx context.Context, id, certID primitive.ObjectID, newName string) (*models.Certificate, error)
	AppendGalleryImages(ctx context.Context, id primitive.ObjectID, files []storage.FilePart) ([]models.GalleryImage, error)
	RemoveGalleryImage(ctx context.Context, id, imgID primitive.ObjectID) error
}

var _ EventServiceInterface = (*EventService)(nil)

// EventService implements the event aggregate lifecycle and its child collections.
//
// Child mutations are read-modify-write against the store without locking:
// two concurrent mutations of the same event race and the later save wins.
type EventService struct {
	eventRepo repositories.EventRepository
	ingestor  AssetIngestor
	log       *zap.Logger
}

// NewEventService creates a new EventService
func NewEventService(eventRepo repositories.EventRepository, ingestor AssetIngestor, log *zap.Logger) *EventService {
	return &EventService{
		eventRepo: eventRepo,
		ingestor:  ingestor,
		log:       log.With(zap.String("service", "EventService")),
	}
}

// ListSummaries returns every event without its children.
func (s *EventService) ListSummaries(ctx context.Context) ([]*models.EventSummary, error) {
	summaries, err := s.eventRepo.FindSummaries(ctx)
	if err != nil {
		return nil, s.storeErr("list events", err)
	}
	return summaries, nil
}

// GetByID returns the full aggregate.
func (s *EventService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return nil, s.storeErr("get event", err)
	}
	return event, nil
}

// Create stores a new event with empty children. When image is given it is
// ingested after validation and replaces in.ImageRef.
func (s *EventService) Create(ctx context.Context, in models.CreateEventInput, image *storage.FilePart) (*models.Event, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	imageRef := in.ImageRef
	if image != nil {
		ref, err := s.ingestOne(ctx, primitive.NilObjectID, *image)
		if err != nil {
			return nil, err
		}
		imageRef = ref
	}

	event := models.NewEvent(title, in.Description, in.Date, imageRef)
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, s.storeErr("create event", err)
	}

	s.log.Info("event created", zap.String("event_id", event.ID.Hex()), zap.String("title", event.Title))
	return event, nil
}

// Update applies a sparse merge: only the fields set in upd are replaced.
// A new image (upd.EventImgURL or an uploaded image) replaces eventImgUrl and
// leaves the previous asset in place.
func (s *EventService) Update(ctx context.Context, id primitive.ObjectID, upd models.EventUpdate, image *storage.FilePart) (*models.Event, error) {
	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return nil, s.storeErr("get event", err)
	}

	if upd.Title != nil {
		event.Title = strings.TrimSpace(*upd.Title)
	}
	if event.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if upd.Description != nil {
		event.Description = *upd.Description
	}
	if upd.ClearDate {
		event.Date = nil
	} else if upd.Date != nil {
		event.Date = upd.Date
	}
	if upd.EventImgURL != nil {
		event.EventImgURL = *upd.EventImgURL
	}
	if image != nil {
		ref, err := s.ingestOne(ctx, id, *image)
		if err != nil {
			return nil, err
		}
		event.EventImgURL = ref
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, s.storeErr("update event", err)
	}
	return event, nil
}

// Delete removes the aggregate. Uploaded assets are not touched.
func (s *EventService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		return s.storeErr("delete event", err)
	}
	s.log.Info("event deleted", zap.String("event_id", id.Hex()))
	return nil
}

// AppendCertificates ingests files and appends one certificate per file, in
// file order. The student name for file i is, in order of preference: the
// keyed entry with FileIndex i, names[i], or the file name without extension.
// names is matched by position only, so a short or reordered list silently
// falls back or mismatches.
func (s *EventService) AppendCertificates(
	ctx context.Context,
	id primitive.ObjectID,
	files []storage.FilePart,
	names []string,
	keyed []models.CertificateName,
) ([]models.Certificate, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: at least one certificate file is required", ErrValidation)
	}

	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return nil, s.storeErr("get event", err)
	}

	refs, err := s.ingest(ctx, id, files)
	if err != nil {
		return nil, err
	}

	studentNames := ResolveStudentNames(files, names, keyed)
	for i, ref := range refs {
		event.Certificates = append(event.Certificates, models.Certificate{
			StudentName: studentNames[i],
			CertURL:     ref,
		})
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, s.storeErr("save certificates", err)
	}
	s.log.Info("certificates appended", zap.String("event_id", id.Hex()), zap.Int("count", len(refs)))
	return event.Certificates, nil
}

// RemoveCertificate removes one certificate. Removing it again fails with ErrCertificateNotFound.
func (s *EventService) RemoveCertificate(ctx context.Context, id, certID primitive.ObjectID) error {
	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return s.storeErr("get event", err)
	}

	idx := event.FindCertificate(certID)
	if idx < 0 {
		return ErrCertificateNotFound
	}
	event.Certificates = append(event.Certificates[:idx], event.Certificates[idx+1:]...)

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return s.storeErr("remove certificate", err)
	}
	return nil
}

// RenameCertificate replaces the student name when newName is non-empty.
// An empty name leaves the certificate unchanged and is not an error.
func (s *EventService) RenameCertificate(ctx context.Context, id, certID primitive.ObjectID, newName string) (*models.Certificate, error) {
	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return nil, s.storeErr("get event", err)
	}

	idx := event.FindCertificate(certID)
	if idx < 0 {
		return nil, ErrCertificateNotFound
	}

	newName = strings.TrimSpace(newName)
	if newName == "" || newName == event.Certificates[idx].StudentName {
		cert := event.Certificates[idx]
		return &cert, nil
	}

	event.Certificates[idx].StudentName = newName
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, s.storeErr("rename certificate", err)
	}
	cert := event.Certificates[idx]
	return &cert, nil
}

// AppendGalleryImages ingests files and appends one gallery image per file, in order.
func (s *EventService) AppendGalleryImages(ctx context.Context, id primitive.ObjectID, files []storage.FilePart) ([]models.GalleryImage, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: at least one image file is required", ErrValidation)
	}

	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return nil, s.storeErr("get event", err)
	}

	refs, err := s.ingest(ctx, id, files)
	if err != nil {
		return nil, err
	}

	for _, ref := range refs {
		event.Gallery = append(event.Gallery, models.GalleryImage{ImgURL: ref})
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, s.storeErr("save gallery", err)
	}
	s.log.Info("gallery images appended", zap.String("event_id", id.Hex()), zap.Int("count", len(refs)))
	return event.Gallery, nil
}

// RemoveGalleryImage removes one gallery image. Removing it again fails with ErrGalleryImageNotFound.
func (s *EventService) RemoveGalleryImage(ctx context.Context, id, imgID primitive.ObjectID) error {
	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return s.storeErr("get event", err)
	}

	idx := event.FindGalleryImage(imgID)
	if idx < 0 {
		return ErrGalleryImageNotFound
	}
	event.Gallery = append(event.Gallery[:idx], event.Gallery[idx+1:]...)

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return s.storeErr("remove gallery image", err)
	}
	return nil
}

func (s *EventService) ingestOne(ctx context.Context, id primitive.ObjectID, file storage.FilePart) (string, error) {
	refs, err := s.ingest(ctx, id, []storage.FilePart{file})
	if err != nil {
		return "", err
	}
	return refs[0], nil
}

func (s *EventService) ingest(ctx context.Context, id primitive.ObjectID, files []storage.FilePart) ([]string, error) {
	refs, err := s.ingestor.Ingest(ctx, files)
	if err != nil {
		if len(refs) > 0 {
			s.log.Warn("upload batch failed, written files left without metadata",
				zap.String("event_id", id.Hex()),
				zap.Strings("orphans", refs))
		}
		return nil, err
	}
	return refs, nil
}

// ResolveStudentNames picks a student name for every file.
func ResolveStudentNames(files []storage.FilePart, names []string, keyed []models.CertificateName) []string {
	byIndex := make(map[int]string, len(keyed))
	for _, k := range keyed {
		if name := strings.TrimSpace(k.StudentName); name != "" {
			byIndex[k.FileIndex] = name
		}
	}

	out := make([]string, len(files))
	for i, f := range files {
		if name, ok := byIndex[i]; ok {
			out[i] = name
			continue
		}
		if i < len(names) {
			if name := strings.TrimSpace(names[i]); name != "" {
				out[i] = name
				continue
			}
		}
		out[i] = NameFromFilename(f.Filename)
	}
	return out
}

// NameFromFilename strips the directory and final extension from a client file name.
func NameFromFilename(filename string) string {
	base := storage.SanitizeFilename(filename)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" {
		return base
	}
	return name
}

func (s *EventService) storeErr(op string, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrEventNotFound
	}
	s.log.Error("store operation failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/ArowuTest/event-showcase-backend/internal/models"
	"github.com/ArowuTest/event-showcase-backend/internal/services"
	"github.com/ArowuTest/event-showcase-backend/internal/storage"
	"github.com/ArowuTest/event-showcase-backend/internal/utils"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Multipart field names used by the web client
const (
	fieldEventImage   = "eventImg"
	fieldGallery      = "gallery"
	fieldCertificates = "certificates"
	fieldNames        = "names"
	fieldCertsData    = "certsData"
)

// EventHandler handles event-related HTTP requests
type EventHandler struct {
	eventService   services.EventServiceInterface
	log            *zap.Logger
	maxUploadBytes int64
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(eventService services.EventServiceInterface, log *zap.Logger, maxUploadBytes int64) *EventHandler {
	return &EventHandler{
		eventService:   eventService,
		log:            log.With(zap.String("handler", "EventHandler")),
		maxUploadBytes: maxUploadBytes,
	}
}

// ListEvents handles GET /events
func (h *EventHandler) ListEvents(c *gin.Context) {
	summaries, err := h.eventService.ListSummaries(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

// GetEvent handles GET /events/:id
func (h *EventHandler) GetEvent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	event, err := h.eventService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(c *gin.Context) {
	form, err := h.readForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid form data: " + err.Error()})
		return
	}

	in := models.CreateEventInput{
		Title:       form.value("title"),
		Description: form.value("description"),
	}
	if raw := strings.TrimSpace(form.value("date")); raw != "" {
		date, err := utils.ParseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid date"})
			return
		}
		in.Date = &date
	}

	h.withFiles(c, form.files(fieldEventImage), func(parts []storage.FilePart) {
		var image *storage.FilePart
		if len(parts) > 0 {
			image = &parts[0]
		}
		event, err := h.eventService.Create(c.Request.Context(), in, image)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, event)
	})
}

// UpdateEvent handles PUT /events/:id. Only fields present in the body are changed.
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	form, err := h.readForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body: " + err.Error()})
		return
	}
	fieldsSet := form.presentFields("title", "description", "date")

	var upd models.EventUpdate
	upd.Title = fieldsSet["title"]
	upd.Description = fieldsSet["description"]
	if raw, present := fieldsSet["date"]; present {
		if strings.TrimSpace(*raw) == "" {
			upd.ClearDate = true
		} else {
			date, err := utils.ParseDate(*raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid date"})
				return
			}
			upd.Date = &date
		}
	}

	h.withFiles(c, form.files(fieldEventImage), func(parts []storage.FilePart) {
		var image *storage.FilePart
		if len(parts) > 0 {
			image = &parts[0]
		}
		event, err := h.eventService.Update(c.Request.Context(), id, upd, image)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, event)
	})
}

// DeleteEvent handles DELETE /events/:id
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.eventService.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Event deleted"})
}

// AddGalleryImages handles POST /events/:id/gallery
func (h *EventHandler) AddGalleryImages(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	form, err := h.readForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid form data: " + err.Error()})
		return
	}

	h.withFiles(c, form.files(fieldGallery), func(parts []storage.FilePart) {
		gallery, err := h.eventService.AppendGalleryImages(c.Request.Context(), id, parts)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gallery)
	})
}

// DeleteGalleryImage handles DELETE /events/:id/gallery/:imgId
func (h *EventHandler) DeleteGalleryImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	imgID, ok := parseID(c, "imgId")
	if !ok {
		return
	}
	if err := h.eventService.RemoveGalleryImage(c.Request.Context(), id, imgID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Gallery image deleted"})
}

// AddCertificates handles POST /events/:id/certificates
func (h *EventHandler) AddCertificates(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	form, err := h.readForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid form data: " + err.Error()})
		return
	}

	names := form.values(fieldNames)
	if len(names) == 0 {
		names = form.values(fieldNames + "[]")
	}

	var keyed []models.CertificateName
	if raw := strings.TrimSpace(form.value(fieldCertsData)); raw != "" {
		if err := json.Unmarshal([]byte(raw), &keyed); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid certsData: " + err.Error()})
			return
		}
	}

	h.withFiles(c, form.files(fieldCertificates), func(parts []storage.FilePart) {
		certs, err := h.eventService.AppendCertificates(c.Request.Context(), id, parts, names, keyed)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, certs)
	})
}

// DeleteCertificate handles DELETE /events/:id/certificates/:certId
func (h *EventHandler) DeleteCertificate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	certID, ok := parseID(c, "certId")
	if !ok {
		return
	}
	if err := h.eventService.RemoveCertificate(c.Request.Context(), id, certID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Certificate deleted"})
}

// RenameCertificate handles PUT /events/:id/certificates/:certId
func (h *EventHandler) RenameCertificate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	certID, ok := parseID(c, "certId")
	if !ok {
		return
	}

	var req models.RenameCertificateRequest
	if err := c.ShouldBind(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body: " + err.Error()})
		return
	}

	cert, err := h.eventService.RenameCertificate(c.Request.Context(), id, certID, req.StudentName)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cert)
}

// withFiles opens every file header, runs fn with the resulting parts and
// closes the files afterwards.
func (h *EventHandler) withFiles(c *gin.Context, headers []*multipart.FileHeader, fn func([]storage.FilePart)) {
	parts := make([]storage.FilePart, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			h.log.Error("cannot open uploaded file", zap.String("filename", fh.Filename), zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"message": "Cannot read uploaded file " + fh.Filename})
			return
		}
		opened = append(opened, f)
		parts = append(parts, storage.FilePart{Filename: fh.Filename, Content: f})
	}
	fn(parts)
}

func (h *EventHandler) respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, services.ErrEventNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Event not found"})
	case errors.Is(err, services.ErrCertificateNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Certificate not found"})
	case errors.Is(err, services.ErrGalleryImageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Gallery image not found"})
	case errors.Is(err, storage.ErrStorage):
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to store uploaded file"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}

func parseID(c *gin.Context, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID format"})
		return primitive.NilObjectID, false
	}
	return id, true
}

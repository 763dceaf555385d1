package images

import (
	"errors"
	"io"
	"log"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/abofield/abofield/api/common"
	"github.com/abofield/abofield/database/models"
	"github.com/abofield/abofield/internal/registry"
	"github.com/gin-gonic/gin"
)

// Handler exposes the image registry over HTTP.
type Handler struct {
	registry registry.Registry
}

// NewHandler creates a new images handler.
func NewHandler(reg registry.Registry) *Handler {
	return &Handler{registry: reg}
}

// imageView is a registry record with its resolved public URL.
type imageView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Path        string   `json:"path,omitempty"`
	BucketName  string   `json:"bucket_name,omitempty"`
	FilePath    string   `json:"file_path,omitempty"`
	URL         string   `json:"url"`
	UsedIn      []string `json:"used_in"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

func (h *Handler) toView(record *models.Image) imageView {
	usedIn := record.UsedIn
	if usedIn == nil {
		usedIn = models.StringList{}
	}
	return imageView{
		ID:          record.ID,
		Name:        record.Name,
		Description: record.Description,
		Type:        string(record.Origin),
		Path:        record.Path,
		BucketName:  record.BucketName,
		FilePath:    record.FilePath,
		URL:         h.registry.PublicURL(record),
		UsedIn:      usedIn,
		CreatedAt:   record.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:   record.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// List returns every image, most recent first.
func (h *Handler) List(c *gin.Context) {
	records, err := h.registry.List(c.Request.Context())
	if err != nil {
		log.Printf("Failed to list images: %v", err)
		common.RespondError(c, http.StatusInternalServerError, "Failed to list images")
		return
	}

	views := make([]imageView, 0, len(records))
	for _, record := range records {
		views = append(views, h.toView(record))
	}

	common.RespondSuccess(c, gin.H{
		"mode":   h.registry.Mode(),
		"images": views,
	})
}

// Upload creates a managed image from a multipart upload.
func (h *Handler) Upload(c *gin.Context) {
	name := c.PostForm("name")
	if name == "" {
		common.RespondError(c, http.StatusBadRequest, "Image name is required")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Image file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	record, err := h.registry.Create(c.Request.Context(), registry.CreateInput{
		Name:        name,
		Description: c.PostForm("description"),
		File:        file,
		FileName:    fileHeader.Filename,
	})
	if err != nil {
		h.respondRegistryError(c, "Failed to upload image", err)
		return
	}

	common.RespondSuccessMessage(c, "Image uploaded", h.toView(record))
}

type externalRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	URL         string `json:"url" binding:"required,url"`
}

// AddExternal registers an image hosted elsewhere.
func (h *Handler) AddExternal(c *gin.Context) {
	var req externalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	record, err := h.registry.Create(c.Request.Context(), registry.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		IsExternal:  true,
		ExternalURL: req.URL,
	})
	if err != nil {
		h.respondRegistryError(c, "Failed to add external image", err)
		return
	}

	common.RespondSuccessMessage(c, "External image added", h.toView(record))
}

// Update rewrites metadata and optionally replaces the backing file. It
// accepts multipart form data so file and fields travel together.
func (h *Handler) Update(c *gin.Context) {
	id := c.Param("id")

	input := registry.UpdateInput{}
	if name, ok := c.GetPostForm("name"); ok {
		input.Name = &name
	}
	if description, ok := c.GetPostForm("description"); ok {
		input.Description = &description
	}

	if fileHeader, err := c.FormFile("file"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			common.RespondError(c, http.StatusBadRequest, "Failed to read uploaded file")
			return
		}
		defer file.Close()
		input.File = file
		input.FileName = fileHeader.Filename
	}

	found, err := h.registry.Update(c.Request.Context(), id, input)
	if err != nil {
		h.respondRegistryError(c, "Failed to update image", err)
		return
	}
	if !found {
		common.RespondError(c, http.StatusNotFound, "Image not found")
		return
	}

	record, err := h.registry.Get(c.Request.Context(), id)
	if err != nil || record == nil {
		common.RespondSuccessMessage(c, "Image updated", nil)
		return
	}
	common.RespondSuccessMessage(c, "Image updated", h.toView(record))
}

// Delete removes an image. Deleting an already-deleted image succeeds.
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")

	found, err := h.registry.Delete(c.Request.Context(), id)
	if err != nil {
		h.respondRegistryError(c, "Failed to delete image", err)
		return
	}
	if !found {
		// Benign: the record is gone either way.
		common.RespondSuccessMessage(c, "Image already deleted", nil)
		return
	}

	common.RespondSuccessMessage(c, "Image deleted", nil)
}

type usageRequest struct {
	UsedIn []string `json:"used_in"`
}

// UpdateUsage replaces the used-in page list wholesale.
func (h *Handler) UpdateUsage(c *gin.Context) {
	id := c.Param("id")

	var req usageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	found, err := h.registry.UpdateUsage(c.Request.Context(), id, req.UsedIn)
	if err != nil {
		h.respondRegistryError(c, "Failed to update image usage", err)
		return
	}
	if !found {
		common.RespondError(c, http.StatusNotFound, "Image not found")
		return
	}

	common.RespondSuccessMessage(c, "Image usage updated", nil)
}

// Resolve serves a public image request: managed blobs are streamed from
// the storage backend, local and external records redirect to their source.
func (h *Handler) Resolve(c *gin.Context) {
	id := c.Param("id")

	record, err := h.registry.Get(c.Request.Context(), id)
	if err != nil {
		log.Printf("Failed to resolve image %s: %v", id, err)
		common.RespondError(c, http.StatusInternalServerError, "Failed to resolve image")
		return
	}
	if record == nil {
		common.RespondError(c, http.StatusNotFound, "Image not found")
		return
	}

	if record.Origin == models.OriginManaged {
		reader, err := h.registry.Open(c.Request.Context(), record)
		if err != nil {
			log.Printf("Failed to open blob for image %s: %v", id, err)
			common.RespondError(c, http.StatusNotFound, "Image data not available")
			return
		}
		defer reader.Close()

		contentType := mime.TypeByExtension(filepath.Ext(record.FilePath))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.Header("Content-Type", contentType)
		c.Header("Cache-Control", "public, max-age=86400")
		c.Status(http.StatusOK)
		if _, err := io.Copy(c.Writer, reader); err != nil {
			log.Printf("Failed to stream image %s: %v", id, err)
		}
		return
	}

	target := h.registry.PublicURL(record)
	if target == "" {
		common.RespondError(c, http.StatusNotFound, "Image has no resolvable location")
		return
	}

	c.Redirect(http.StatusFound, target)
}

func (h *Handler) respondRegistryError(c *gin.Context, message string, err error) {
	if errors.Is(err, registry.ErrDemoMode) {
		common.RespondError(c, http.StatusServiceUnavailable, "Image management is disabled in demo mode")
		return
	}
	log.Printf("%s: %v", message, err)
	common.RespondError(c, http.StatusInternalServerError, message)
}

package settings

import (
	"log"
	"net/http"

	"github.com/abofield/abofield/api/common"
	"github.com/abofield/abofield/config"
	"github.com/abofield/abofield/database/repo/settings"
	"github.com/gin-gonic/gin"
)

// Handler exposes site settings and the storage backend override.
type Handler struct {
	repo         *settings.Repository
	overridePath string
	backend      config.BackendSettings
}

// NewHandler creates a new settings handler.
func NewHandler(repo *settings.Repository, overridePath string, backend config.BackendSettings) *Handler {
	return &Handler{
		repo:         repo,
		overridePath: overridePath,
		backend:      backend,
	}
}

// List returns every site setting.
func (h *Handler) List(c *gin.Context) {
	values, err := h.repo.All(c.Request.Context())
	if err != nil {
		log.Printf("Failed to list settings: %v", err)
		common.RespondError(c, http.StatusInternalServerError, "Failed to list settings")
		return
	}
	common.RespondSuccess(c, values)
}

type setRequest struct {
	Key   string `json:"key" binding:"required,max=128"`
	Value string `json:"value" binding:"max=4000"`
}

// Set upserts one site setting.
func (h *Handler) Set(c *gin.Context) {
	var req setRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	if err := h.repo.Set(c.Request.Context(), req.Key, req.Value); err != nil {
		log.Printf("Failed to set setting %s: %v", req.Key, err)
		common.RespondError(c, http.StatusInternalServerError, "Failed to save setting")
		return
	}

	common.RespondSuccessMessage(c, "Setting saved", nil)
}

// Backend reports the resolved storage backend. Secrets are never returned.
func (h *Handler) Backend(c *gin.Context) {
	common.RespondSuccess(c, gin.H{
		"mode":          h.backend.Mode,
		"storage_type":  h.backend.StorageType,
		"bucket":        h.backend.Bucket,
		"endpoint":      h.backend.Endpoint,
		"from_override": h.backend.FromOverride,
	})
}

type overrideRequest struct {
	Endpoint  string `json:"endpoint" binding:"required"`
	AccessKey string `json:"access_key" binding:"required"`
	SecretKey string `json:"secret_key" binding:"required"`
	UseSSL    bool   `json:"use_ssl"`
	Bucket    string `json:"bucket"`
}

// SetBackendOverride persists operator-supplied backend credentials. They
// take effect on the next restart.
func (h *Handler) SetBackendOverride(c *gin.Context) {
	var req overrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	override := &config.BackendOverride{
		Endpoint:  req.Endpoint,
		AccessKey: req.AccessKey,
		SecretKey: req.SecretKey,
		UseSSL:    req.UseSSL,
		Bucket:    req.Bucket,
	}
	if err := config.WriteOverride(h.overridePath, override); err != nil {
		log.Printf("Failed to write backend override: %v", err)
		common.RespondError(c, http.StatusInternalServerError, "Failed to save backend override")
		return
	}

	common.RespondSuccessMessage(c, "Backend override saved, restart to apply", nil)
}

// ClearBackendOverride removes the persisted override.
func (h *Handler) ClearBackendOverride(c *gin.Context) {
	if err := config.ClearOverride(h.overridePath); err != nil {
		log.Printf("Failed to clear backend override: %v", err)
		common.RespondError(c, http.StatusInternalServerError, "Failed to clear backend override")
		return
	}

	common.RespondSuccessMessage(c, "Backend override cleared, restart to apply", nil)
}

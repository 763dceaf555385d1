package core

import (
	"context"
	"net/http"
	"time"

	"github.com/abofield/abofield/api/common"
	"github.com/abofield/abofield/config"
	"github.com/abofield/abofield/storage"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type healthHandler struct {
	db      *gorm.DB
	storage storage.Provider
	mode    config.Mode
}

func newHealthHandler(db *gorm.DB, store storage.Provider, mode config.Mode) *healthHandler {
	return &healthHandler{db: db, storage: store, mode: mode}
}

// Health reports liveness of the database and the storage backend. In demo
// mode there is no backend to check.
func (h *healthHandler) Health(c *gin.Context) {
	checks := gin.H{"mode": h.mode}
	healthy := true

	if h.db != nil {
		if err := h.checkDatabase(c.Request.Context()); err != nil {
			checks["database"] = "unhealthy: " + err.Error()
			healthy = false
		} else {
			checks["database"] = "ok"
		}
	}

	if h.storage != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		if err := h.storage.Health(ctx); err != nil {
			checks["storage"] = "unhealthy: " + err.Error()
			healthy = false
		} else {
			checks["storage"] = h.storage.Name() + " ok"
		}
	}

	if !healthy {
		common.Respond(c, http.StatusServiceUnavailable, "error", "unhealthy", checks)
		return
	}
	common.RespondSuccess(c, checks)
}

// Version reports the build version.
func (h *healthHandler) Version(c *gin.Context) {
	common.RespondSuccess(c, gin.H{
		"version": config.Version,
		"commit":  config.CommitHash,
	})
}

func (h *healthHandler) checkDatabase(parent context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(parent, 5*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

package contact

import (
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/abofield/abofield/api/common"
	"github.com/abofield/abofield/config"
	"github.com/abofield/abofield/database/models"
	"github.com/abofield/abofield/database/repo/contacts"
	"github.com/gin-gonic/gin"
)

// Handler exposes the contact and brochure request forms.
type Handler struct {
	repo *contacts.Repository
}

// NewHandler creates a new contact handler.
func NewHandler(repo *contacts.Repository) *Handler {
	return &Handler{repo: repo}
}

type contactRequest struct {
	Name    string `json:"name" binding:"required,max=128"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone" binding:"max=32"`
	Subject string `json:"subject" binding:"max=256"`
	Message string `json:"message" binding:"required,max=4000"`
}

type brochureRequest struct {
	Name  string `json:"name" binding:"required,max=128"`
	Email string `json:"email" binding:"required,email"`
}

// SubmitContact stores a contact form submission.
func (h *Handler) SubmitContact(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	msg := &models.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
	}
	if err := h.repo.CreateMessage(c.Request.Context(), msg); err != nil {
		log.Printf("Failed to store contact message: %v", err)
		common.RespondError(c, http.StatusInternalServerError, "Failed to submit message")
		return
	}

	common.RespondSuccessMessage(c, "Message received", gin.H{"id": msg.ID})
}

// RequestBrochure records the request and serves the brochure PDF.
func (h *Handler) RequestBrochure(c *gin.Context) {
	var req brochureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	record := &models.BrochureRequest{
		Name:  req.Name,
		Email: req.Email,
	}
	if err := h.repo.CreateBrochureRequest(c.Request.Context(), record); err != nil {
		log.Printf("Failed to store brochure request: %v", err)
		common.RespondError(c, http.StatusInternalServerError, "Failed to submit request")
		return
	}

	brochurePath := config.Get().BrochurePath
	if brochurePath == "" {
		common.RespondSuccessMessage(c, "Request received", gin.H{"id": record.ID})
		return
	}
	if _, err := os.Stat(brochurePath); err != nil {
		log.Printf("Brochure file missing at %s: %v", brochurePath, err)
		common.RespondSuccessMessage(c, "Request received", gin.H{"id": record.ID})
		return
	}

	c.FileAttachment(brochurePath, "brochure-abofield.pdf")
}

// ListMessages returns contact messages for the admin inbox.
func (h *Handler) ListMessages(c *gin.Context) {
	page, pageSize := pagination(c)

	messages, total, err := h.repo.ListMessages(c.Request.Context(), page, pageSize)
	if err != nil {
		log.Printf("Failed to list contact messages: %v", err)
		common.RespondError(c, http.StatusInternalServerError, "Failed to list messages")
		return
	}

	common.RespondSuccess(c, gin.H{
		"messages":  messages,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// ListBrochureRequests returns brochure requests for the admin inbox.
func (h *Handler) ListBrochureRequests(c *gin.Context) {
	page, pageSize := pagination(c)

	requests, total, err := h.repo.ListBrochureRequests(c.Request.Context(), page, pageSize)
	if err != nil {
		log.Printf("Failed to list brochure requests: %v", err)
		common.RespondError(c, http.StatusInternalServerError, "Failed to list requests")
		return
	}

	common.RespondSuccess(c, gin.H{
		"requests":  requests,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func pagination(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if err != nil || pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

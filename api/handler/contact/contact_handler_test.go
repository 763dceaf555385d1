package contact

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abofield/abofield/database/models"
	"github.com/abofield/abofield/database/repo/contacts"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupContactRouter(t *testing.T) (*gin.Engine, *contacts.Repository) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ContactMessage{}, &models.BrochureRequest{}))

	repo := contacts.NewRepository(db)
	handler := NewHandler(repo)

	router := gin.New()
	router.POST("/api/contact", handler.SubmitContact)
	router.POST("/api/brochure", handler.RequestBrochure)
	router.GET("/api/v1/admin/messages", handler.ListMessages)
	router.GET("/api/v1/admin/brochure-requests", handler.ListBrochureRequests)
	return router, repo
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestSubmitContact(t *testing.T) {
	router, _ := setupContactRouter(t)

	w := postJSON(router, "/api/contact",
		`{"name":"Jean","email":"jean@example.com","message":"Devis pour un terrain"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
}

func TestSubmitContactValidation(t *testing.T) {
	router, _ := setupContactRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"email":"a@b.com","message":"hi"}`},
		{"missing email", `{"name":"Jean","message":"hi"}`},
		{"bad email", `{"name":"Jean","email":"not-an-email","message":"hi"}`},
		{"missing message", `{"name":"Jean","email":"a@b.com"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(router, "/api/contact", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestRequestBrochureRecordsRequest(t *testing.T) {
	router, repo := setupContactRouter(t)

	w := postJSON(router, "/api/brochure", `{"name":"Jean","email":"jean@example.com"}`)
	// No brochure file is configured in tests, the request is still stored.
	require.Equal(t, http.StatusOK, w.Code)

	requests, total, err := repo.ListBrochureRequests(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, requests, 1)
	assert.Equal(t, "jean@example.com", requests[0].Email)
}

func TestRequestBrochureValidation(t *testing.T) {
	router, _ := setupContactRouter(t)

	w := postJSON(router, "/api/brochure", `{"name":"Jean"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListMessagesPagination(t *testing.T) {
	router, repo := setupContactRouter(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.CreateMessage(context.Background(), &models.ContactMessage{
			Name: "Jean", Email: "jean@example.com", Message: "hello",
		}))
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/messages?page=1&page_size=2", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Messages []json.RawMessage `json:"messages"`
			Total    int64             `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(3), body.Data.Total)
	assert.Len(t, body.Data.Messages, 2)
}

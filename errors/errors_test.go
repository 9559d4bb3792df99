package errors_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/YoussefMohammed93/TheBrothers-Store-sub000/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAs(t *testing.T) {
	cause := errors.New("connection refused")

	wrapped := apperrors.ErrBadGateway.Wrap(cause)
	assert.Same(t, wrapped, apperrors.As(wrapped))
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, "Upstream service error: connection refused", wrapped.Error())

	got := apperrors.As(cause)
	assert.Equal(t, http.StatusInternalServerError, got.Code)
	assert.ErrorIs(t, got, cause)
}

func TestErrorMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(apperrors.ErrorMiddleware())
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(apperrors.ErrConflict)
	})
	r.GET("/written", func(c *gin.Context) {
		_ = c.Error(apperrors.ErrConflict)
		c.JSON(http.StatusAccepted, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	require.Equal(t, http.StatusConflict, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Conflict", body["message"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/written", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)
}

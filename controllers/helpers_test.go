package controllers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "github.com/Company-KERL/Kerl-backend/common/errors"
	"github.com/Company-KERL/Kerl-backend/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindJSON_NamesInvalidFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/cart", strings.NewReader(`{"productId":"p1","quantity":0}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var req models.AddCartItemRequest
	assert.False(t, bindJSON(c, &req, "bad cart"))
	require.Len(t, c.Errors, 1)

	var appErr *apperrors.Error
	require.True(t, errors.As(c.Errors.Last().Err, &appErr))
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	assert.Equal(t, "bad cart", appErr.Message)
	assert.Contains(t, appErr.Err.Error(), "AddCartItemRequest.Quantity(required)")
	assert.Contains(t, appErr.Err.Error(), "AddCartItemRequest.SelectedSizeIndex(required)")
}

func TestSessionUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	id := "64b7f0c2a1b2c3d4e5f60718"

	tests := []struct {
		name    string
		session string
		claimed string
		ok      bool
	}{
		{"defaults to session", id, "", true},
		{"matching claim", id, id, true},
		{"other user", id, "64b7f0c2a1b2c3d4e5f60719", false},
		{"no session", "", "", false},
		{"malformed session id", "user-1", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			if tt.session != "" {
				c.Set("userID", tt.session)
			}

			oid, ok := sessionUser(c, tt.claimed)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, id, oid.Hex())
			} else {
				assert.True(t, c.IsAborted())
				assert.Equal(t, http.StatusUnauthorized, apperrors.From(c.Errors.Last().Err).Code)
			}
		})
	}
}

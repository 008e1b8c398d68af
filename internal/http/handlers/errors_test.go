package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"sitebackend/internal/domain"
	"sitebackend/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestRespondDomainErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name     string
		err      error
		status   int
		code     string
		message  string
		hasField bool
	}{
		{"validation", domain.ValidationError{Field: "email", Msg: "must be a valid email"}, http.StatusBadRequest, "validation_error", "email: must be a valid email", true},
		{"wrapped validation", fmt.Errorf("create: %w", domain.ValidationError{Msg: "bad"}), http.StatusBadRequest, "validation_error", "create: bad", false},
		{"unauthorized", domain.UnauthorizedError{Msg: "invalid credentials"}, http.StatusUnauthorized, "unauthorized", "invalid credentials", false},
		{"not found", domain.NotFoundError{Resource: "booking"}, http.StatusNotFound, "not_found", "booking not found", false},
		{"conflict", domain.ConflictError{Msg: "slug already exists"}, http.StatusConflict, "conflict", "slug already exists", false},
		{"internal", errors.New("dial tcp 10.0.0.1:3306: connection refused"), http.StatusInternalServerError, "internal_error", "internal server error", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(middleware.RequestID())
			r.GET("/x", func(c *gin.Context) { RespondDomainError(c, tc.err) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
			require.Equal(t, tc.status, w.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			require.Equal(t, tc.code, body.Code)
			require.Equal(t, tc.message, body.Error)
			require.NotEmpty(t, body.RequestID)
			require.Equal(t, tc.hasField, body.Details != nil)
		})
	}
}

func TestBindJSONOrErrorRejectsEmptyBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/x", func(c *gin.Context) {
		var dst struct {
			Name string `json:"name"`
		}
		if BindJSONOrError(c, &dst) {
			c.JSON(http.StatusOK, dst)
		}
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", http.NoBody))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "request body is required")
}

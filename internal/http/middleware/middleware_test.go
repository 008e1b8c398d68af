package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"sitebackend/internal/domain"
	"sitebackend/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type staticParser map[string]domain.RequestContext

func (p staticParser) Parse(token string) (domain.RequestContext, error) {
	if rc, ok := p[token]; ok {
		return rc, nil
	}
	return domain.RequestContext{}, errors.New("bad token")
}

func newEngine(p TokenParser) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), AuthOptional(p))
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user":    Identity(c).UserID,
			"ctx_rid": utils.RequestIDFrom(c.Request.Context()),
		})
	})
	r.GET("/admin", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func TestRequestIDGeneratedAndPropagated(t *testing.T) {
	r := newEngine(nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	require.Equal(t, http.StatusOK, w.Code)
	rid := w.Header().Get("X-Request-ID")
	require.Len(t, rid, 36)
	require.Contains(t, w.Body.String(), rid)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-Request-ID", "client-id")
	r.ServeHTTP(w, req)
	require.Equal(t, "client-id", w.Header().Get("X-Request-ID"))
}

func TestAuthOptionalAndRequireAdmin(t *testing.T) {
	r := newEngine(staticParser{
		"admin-token":  {UserID: "u1", Role: "admin"},
		"editor-token": {UserID: "u2", Role: "editor"},
	})

	cases := []struct {
		name   string
		header string
		cookie string
		want   int
	}{
		{"anonymous", "", "", http.StatusUnauthorized},
		{"invalid token", "Bearer nope", "", http.StatusUnauthorized},
		{"bearer admin", "Bearer admin-token", "", http.StatusNoContent},
		{"cookie admin", "", "admin-token", http.StatusNoContent},
		{"wrong role", "Bearer editor-token", "", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tc.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			require.Equal(t, tc.want, w.Code)
		})
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"https://site.test", " "}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://site.test")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, "https://site.test", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.test")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestUploadHeadersSandboxSVG(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(UploadHeaders())
	r.GET("/uploads/*filepath", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/blog/logo.SVG", nil))
	require.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	require.Contains(t, w.Header().Get("Content-Security-Policy"), "default-src 'none'")
	require.Equal(t, "attachment", w.Header().Get("Content-Disposition"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/blog/cover.png", nil))
	require.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	require.Empty(t, w.Header().Get("Content-Security-Policy"))
	require.Empty(t, w.Header().Get("Content-Disposition"))
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	intconfig "sitebackend/internal/config"
	"sitebackend/internal/domain"
	"sitebackend/internal/domain/models"
	h "sitebackend/internal/http/handlers"
	"sitebackend/internal/http/middleware"
	"sitebackend/internal/notify"
	"sitebackend/internal/repositories"
	"sitebackend/internal/services"
	"sitebackend/internal/viewmark"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2030, 1, 15, 9, 30, 0, 0, time.UTC)

type bookingStore struct {
	mu   sync.Mutex
	rows map[string]models.Booking
}

func (s *bookingStore) Create(_ context.Context, b models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[b.ID] = b
	return nil
}

func (s *bookingStore) GetByID(_ context.Context, id string) (models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.rows[id]; ok {
		return b, nil
	}
	return models.Booking{}, repositories.ErrNotFound
}

func (s *bookingStore) GetByToken(_ context.Context, token string) (models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.rows {
		if b.Token == token {
			return b, nil
		}
	}
	return models.Booking{}, repositories.ErrNotFound
}

func (s *bookingStore) List(_ context.Context, f models.BookingFilter) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Booking{}
	for _, b := range s.rows {
		if f.Status == "" || string(b.Status) == f.Status {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *bookingStore) Update(_ context.Context, id string, upd models.BookingUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.rows[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if upd.Status != nil {
		b.Status = *upd.Status
	}
	s.rows[id] = b
	return nil
}

func (s *bookingStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *bookingStore) Cancel(_ context.Context, id string, reason *string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.rows[id]
	if !ok || b.Status.Terminal() {
		return false, nil
	}
	b.Status, b.CancellationReason, b.CancelledAt = models.BookingCancelled, reason, &at
	s.rows[id] = b
	return true, nil
}

func (s *bookingStore) Reschedule(_ context.Context, id string, _ *string, at time.Time, next models.Booking) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.rows[id]
	if !ok || b.Status.Terminal() {
		return false, nil
	}
	b.Status, b.RescheduledAt = models.BookingRescheduled, &at
	s.rows[id] = b
	s.rows[next.ID] = next
	return true, nil
}

type blogStore struct {
	mu   sync.Mutex
	rows map[string]models.Blog
}

func (s *blogStore) List(_ context.Context, f models.ContentFilter) ([]models.Blog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Blog{}
	for _, b := range s.rows {
		if f.Status == "" || b.Status == f.Status {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *blogStore) GetByID(_ context.Context, id string) (models.Blog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.rows[id]; ok {
		return b, nil
	}
	return models.Blog{}, repositories.ErrNotFound
}

func (s *blogStore) GetBySlug(_ context.Context, slug string) (models.Blog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.rows {
		if b.Slug == slug {
			return b, nil
		}
	}
	return models.Blog{}, repositories.ErrNotFound
}

func (s *blogStore) Create(_ context.Context, b models.Blog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.rows {
		if existing.Slug == b.Slug {
			return repositories.ErrDuplicate
		}
	}
	s.rows[b.ID] = b
	return nil
}

func (s *blogStore) Update(_ context.Context, b models.Blog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[b.ID] = b
	return nil
}

func (s *blogStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
	return nil
}

type counter struct {
	mu    sync.Mutex
	views map[string]int64
}

func (c *counter) Increment(_ context.Context, kind models.ContentKind, id string) (int64, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := string(kind) + ":" + id
	c.views[key]++
	return c.views[key], repositories.PathRPC, nil
}

type noopNotifier struct{}

func (noopNotifier) Dispatch(context.Context, notify.Event) {}

type fixture struct {
	router *gin.Engine
	auth   services.AuthService
	admin  string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	now := func() time.Time { return fixedNow }
	auth := services.AuthService{Secret: []byte("test-secret"), TTL: time.Hour, Now: now}
	uploadDir := t.TempDir()
	uploads := services.UploadService{Dir: uploadDir}

	hs := &h.Handlers{
		Bookings: services.BookingService{Store: &bookingStore{rows: map[string]models.Booking{}}, Notifier: noopNotifier{}, BaseURL: "https://site.test", Now: now},
		Content:  services.ContentService{Blogs: &blogStore{rows: map[string]models.Blog{}}, Images: uploads, Now: now},
		Views:    services.ViewService{Counter: &counter{views: map[string]int64{}}, Marker: viewmark.NewMemoryMarker(0, 0)},
		Auth:     auth,
		Uploads:  uploads,
		Ping:     func(context.Context) error { return nil },
	}
	hs.Export = services.ExportService{Bookings: hs.Bookings.Store}
	hs.Docs = services.DocsService{Bookings: hs.Bookings.Store, BaseURL: "https://site.test"}

	env := intconfig.Env{CORSAllowedOrigins: []string{"https://site.test"}, UploadDir: uploadDir}
	token, _, err := auth.Issue(models.AdminUser{ID: "admin-1", Name: "Admin", Email: "admin@site.test", Role: domain.RoleAdmin})
	require.NoError(t, err)

	return fixture{router: NewRouter(env, hs, auth), auth: auth, admin: token}
}

func (f fixture) do(t *testing.T, method, path string, body any, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set("Authorization", "Bearer "+f.admin)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestBookingLifecycleOverHTTP(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/bookings", map[string]any{
		"name":          "Jane Doe",
		"email":         "Jane@Example.com",
		"selected_date": "2030-02-01",
		"selected_time": "10:00",
	}, false)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	booking := decode(t, w)["booking"].(map[string]any)
	require.Equal(t, "pending", booking["status"])
	token := booking["token"].(string)

	w = f.do(t, http.MethodGet, "/api/bookings/verify-token?token="+token, nil, false)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPost, "/api/bookings/cancel", map[string]any{"token": token, "reason": "conflict"}, false)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "cancelled", decode(t, w)["booking"].(map[string]any)["status"])

	w = f.do(t, http.MethodPost, "/api/bookings/cancel", map[string]any{"token": token}, false)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "conflict", decode(t, w)["code"])

	w = f.do(t, http.MethodPost, "/api/bookings/reschedule", map[string]any{"token": token, "new_date": "2030-03-01", "new_time": "11:00"}, false)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestRescheduleOverHTTP(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/api/bookings", map[string]any{
		"name": "Sam", "email": "sam@example.com", "selected_date": "2030-02-01", "selected_time": "10:00",
	}, false)
	require.Equal(t, http.StatusCreated, w.Code)
	token := decode(t, w)["booking"].(map[string]any)["token"].(string)

	w = f.do(t, http.MethodPost, "/api/bookings/reschedule", map[string]any{"token": token, "new_date": "2030-03-01", "new_time": "11:00"}, false)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode(t, w)
	require.Equal(t, "rescheduled", out["original"].(map[string]any)["status"])
	next := out["booking"].(map[string]any)
	require.Equal(t, "pending", next["status"])
	require.Equal(t, out["original"].(map[string]any)["id"], next["original_booking_id"])
	require.NotEqual(t, token, next["token"])
}

func TestBookingValidationErrors(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/bookings", map[string]any{
		"name": "Jane", "email": "not-an-email", "selected_date": "2030-01-14", "selected_time": "10:00",
	}, false)
	require.Equal(t, http.StatusBadRequest, w.Code)
	out := decode(t, w)
	require.Equal(t, "validation_error", out["code"])
	require.NotEmpty(t, out["details"])

	w = f.do(t, http.MethodGet, "/api/bookings/verify-token?token=abc", nil, false)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/api/bookings/verify-token?token=6f1c2a4e-0000-4000-8000-000000000000", nil, false)
	require.Equal(t, http.StatusNotFound, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRoutesRequireSession(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/api/bookings", "/api/bookings/export", "/api/auth/me"} {
		w := f.do(t, http.MethodGet, path, nil, false)
		require.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := f.do(t, http.MethodGet, "/api/bookings?status=all", nil, true)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/bookings?status=bogus", nil, true)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/api/bookings/missing", nil, true)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodGet, "/api/bookings/export", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Disposition"), "bookings.xlsx")
}

func TestBlogPublishingAndViews(t *testing.T) {
	f := newFixture(t)
	post := map[string]any{"title": "Hello World", "content": "<p>Body</p>", "status": "published"}

	w := f.do(t, http.MethodPost, "/api/blogs", post, false)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodPost, "/api/blogs", post, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	blog := decode(t, w)["blog"].(map[string]any)
	require.Equal(t, "hello-world", blog["slug"])

	w = f.do(t, http.MethodPost, "/api/blogs", post, true)
	require.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodGet, "/api/blogs/hello-world", nil, false)
	require.Equal(t, http.StatusOK, w.Code)

	draft := map[string]any{"title": "Secret", "content": "tbd", "status": "draft"}
	w = f.do(t, http.MethodPost, "/api/blogs", draft, true)
	require.Equal(t, http.StatusCreated, w.Code)
	w = f.do(t, http.MethodGet, "/api/blogs/secret", nil, false)
	require.Equal(t, http.StatusNotFound, w.Code)
	w = f.do(t, http.MethodGet, "/api/blogs/secret", nil, true)
	require.Equal(t, http.StatusOK, w.Code)

	id := blog["id"].(string)
	w = f.do(t, http.MethodPost, "/api/blogs/"+id+"/view", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, decode(t, w)["counted"])

	var visitor *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == h.VisitorCookie {
			visitor = c
		}
	}
	require.NotNil(t, visitor)

	req := httptest.NewRequest(http.MethodPost, "/api/blogs/"+id+"/view", nil)
	req.AddCookie(visitor)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, false, decode(t, rec)["counted"])
}

func TestUploadRoundTrip(t *testing.T) {
	f := newFixture(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "pixel.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("folder", "blog"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+f.admin)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	path := decode(t, w)["path"].(string)
	require.True(t, strings.HasPrefix(path, "blog/"))

	w = f.do(t, http.MethodDelete, "/api/uploads?path="+path, nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	w = f.do(t, http.MethodDelete, "/api/uploads?path="+path, nil, true)
	require.Equal(t, http.StatusNotFound, w.Code)
	w = f.do(t, http.MethodDelete, "/api/uploads?path=../etc/passwd", nil, true)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func postUpload(t *testing.T, f fixture, name string, content []byte) string {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+f.admin)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)["url"].(string)
}

func TestUploadedSVGIsServedAsAttachment(t *testing.T) {
	f := newFixture(t)

	svgURL := postUpload(t, f, "logo.svg", []byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`))
	w := f.do(t, http.MethodGet, svgURL, nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "attachment", w.Header().Get("Content-Disposition"))
	require.Contains(t, w.Header().Get("Content-Security-Policy"), "default-src 'none'")
	require.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	pngURL := postUpload(t, f, "pixel.png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	w = f.do(t, http.MethodGet, pngURL, nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, w.Header().Get("Content-Disposition"))
	require.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestSystemAndUnknownRoutes(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/health", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	w = f.do(t, http.MethodGet, "/api/db-check", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	w = f.do(t, http.MethodGet, "/api/nope", nil, false)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

var _ middleware.TokenParser = services.AuthService{}

package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinevault/cinevault-api/internal/constants"
	"github.com/cinevault/cinevault-api/internal/models"
)

func serve(s *Server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.RemoteAddr = "192.0.2.10:40000"
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.GetRouter().ServeHTTP(w, req)
	return w
}

func TestRoutes_Public(t *testing.T) {
	s, store := newTestServer(t)

	t.Run("banner", func(t *testing.T) {
		w := serve(s, http.MethodGet, "/", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, constants.MsgServiceBanner, w.Body.String())
		assert.Equal(t, constants.CSPAPIOnly, w.Header().Get(constants.HeaderContentSecurityPolicy))
	})

	t.Run("health", func(t *testing.T) {
		w := serve(s, http.MethodGet, constants.HealthPath, "", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Data map[string]string `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "healthy", body.Data["status"])
		assert.Equal(t, "test-version", body.Data["version"])
	})

	t.Run("health unavailable", func(t *testing.T) {
		store.healthErr = assert.AnError
		defer func() { store.healthErr = nil }()

		w := serve(s, http.MethodGet, constants.HealthPath, "", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("signup", func(t *testing.T) {
		w := serve(s, http.MethodPost, "/api/users/signup",
			`{"username":"ana","email":"a@x.com","password":"Abc123!"}`, nil)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, constants.CacheControlNoStore, w.Header().Get(constants.HeaderCacheControl))
	})

	t.Run("unknown route", func(t *testing.T) {
		w := serve(s, http.MethodGet, "/api/users/nope", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), constants.CodeNotFound)
	})

	t.Run("wrong method", func(t *testing.T) {
		w := serve(s, http.MethodGet, "/api/users/login", "", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestRoutes_Protected(t *testing.T) {
	s, _ := newTestServer(t)

	protected := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/api/users/profile", ""},
		{http.MethodPost, "/api/users/update-list", `{"listKind":"watchlist","movieReference":{"movieId":42}}`},
		{http.MethodPut, "/api/users/change-language", `{"email":"ada@example.com","language":"fr"}`},
		{http.MethodPut, "/api/users/change-username", `{"username":"ada"}`},
		{http.MethodPut, "/api/users/change-password", `{"current":"a","new":"bbbbbb"}`},
		{http.MethodPut, "/api/users/delete-photo", ""},
	}

	for _, route := range protected {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			w := serve(s, route.method, route.path, route.body, nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			w = serve(s, route.method, route.path, route.body, map[string]string{
				constants.HeaderAuthorization: "Bearer token-for-u-1",
			})
			assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		})
	}

	t.Run("token for a deleted user", func(t *testing.T) {
		w := serve(s, http.MethodGet, "/api/users/profile", "", map[string]string{
			constants.HeaderAuthorization: "Bearer token-for-u-gone",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRoutes_RateLimitedLogin(t *testing.T) {
	s, _ := newTestServer(t)

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = serve(s, http.MethodPost, "/api/users/login", `{"email":"a@x.com","password":"Abc123!"}`, nil)
	}
	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.NotEmpty(t, last.Header().Get(constants.HeaderRetryAfter))

	// other categories keep their own budget
	w := serve(s, http.MethodPost, "/api/users/forgotpassword", `{"email":"a@x.com"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoutes_Uploads(t *testing.T) {
	s, _ := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.uploadsDir, "profilePhotos", "u-1_1.png"), []byte("png"), 0o644))

	w := serve(s, http.MethodGet, "/uploads/profilePhotos/u-1_1.png", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png", w.Body.String())
	assert.Contains(t, w.Header().Get(constants.HeaderCacheControl), "max-age=")

	w = serve(s, http.MethodGet, "/uploads/profilePhotos/", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(s, http.MethodGet, "/uploads/profilePhotos/missing.png", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoutes_CORSPreflight(t *testing.T) {
	s, _ := newTestServer(t)

	w := serve(s, http.MethodOptions, "/api/users/change-photo", "", map[string]string{
		"Origin":                        "http://localhost:3000",
		"Access-Control-Request-Method": http.MethodPut,
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRoutes_GoogleLoginNotConfigured(t *testing.T) {
	s, _ := newTestServer(t)
	s.googleLogin = false
	s.SetupRoutes()

	w := serve(s, http.MethodPost, "/api/users/google-login", `{"token":"assertion"}`, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoutes_ForwardedHeadersDoNotResetTheLimit(t *testing.T) {
	s, _ := newTestServer(t)

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = serve(s, http.MethodPost, "/api/users/resetpassword",
			`{"email":"a@x.com","code":"123456","newPassword":"brandnew"}`,
			map[string]string{
				"X-Forwarded-For": fmt.Sprintf("198.51.100.%d", i+1),
				"X-Real-IP":       fmt.Sprintf("203.0.113.%d", i+1),
			})
	}
	assert.Equal(t, http.StatusTooManyRequests, last.Code)
}

// envelope decodes the data member of a response.
func envelope(t *testing.T, w *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	var body struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	require.NoError(t, json.Unmarshal(body.Data, into), w.Body.String())
}

func signup(t *testing.T, s *Server, email, password string) string {
	t.Helper()
	w := serve(s, http.MethodPost, "/api/users/signup",
		fmt.Sprintf(`{"username":"Ada","email":%q,"password":%q}`, email, password), nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp models.AuthResponse
	envelope(t, w, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func bearer(token string) map[string]string {
	return map[string]string{constants.HeaderAuthorization: "Bearer " + token}
}

func TestRoutes_SignupThenToggleTwice(t *testing.T) {
	s, _, _ := newFlowServer(t)
	token := signup(t, s, "ada@example.com", "secret1")

	body := `{"listKind":"watchlist","movieReference":{"movieId":603,"title":"The Matrix"}}`

	w := serve(s, http.MethodPost, "/api/users/update-list", body, bearer(token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var lists models.ListsResponse
	envelope(t, w, &lists)
	require.Len(t, lists.Watchlist, 1)
	assert.Equal(t, int64(603), lists.Watchlist[0].MovieID)

	w = serve(s, http.MethodPost, "/api/users/update-list", body, bearer(token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	lists = models.ListsResponse{}
	envelope(t, w, &lists)
	assert.NotNil(t, lists.Watchlist)
	assert.Empty(t, lists.Watchlist)
	assert.Empty(t, lists.Favourites)

	w = serve(s, http.MethodGet, "/api/users/profile", "", bearer(token))
	require.Equal(t, http.StatusOK, w.Code)
	var profile models.UserResponse
	envelope(t, w, &profile)
	assert.Empty(t, profile.Watchlist)
}

func TestRoutes_PasswordResetFlow(t *testing.T) {
	s, users, mailer := newFlowServer(t)
	signup(t, s, "ada@example.com", "secret1")

	w := serve(s, http.MethodPost, "/api/users/forgotpassword", `{"email":"ada@example.com"}`, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	code := mailer.code("ada@example.com")
	require.Len(t, code, 6)

	wrong := "100000"
	if code == wrong {
		wrong = "100001"
	}
	reset := func(code, password string) *httptest.ResponseRecorder {
		return serve(s, http.MethodPost, "/api/users/resetpassword",
			fmt.Sprintf(`{"email":"ada@example.com","code":%q,"newPassword":%q}`, code, password), nil)
	}

	w = reset(wrong, "brandnew")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	users.expireResetCode("ada@example.com")
	w = reset(code, "brandnew")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(s, http.MethodPost, "/api/users/login", `{"email":"ada@example.com","password":"brandnew"}`, nil)
	assert.NotEqual(t, http.StatusOK, w.Code)

	// a fresh code still works after the failures
	w = serve(s, http.MethodPost, "/api/users/forgotpassword", `{"email":"ada@example.com"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = reset(mailer.code("ada@example.com"), "brandnew")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = serve(s, http.MethodPost, "/api/users/login", `{"email":"ada@example.com","password":"brandnew"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = serve(s, http.MethodPost, "/api/users/login", `{"email":"ada@example.com","password":"secret1"}`, nil)
	assert.NotEqual(t, http.StatusOK, w.Code)
}

func photoUpload(t *testing.T, content string) (string, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(constants.PhotoFormField, "me.png")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return buf.String(), mw.FormDataContentType()
}

func TestRoutes_ReplacePhotoTwice(t *testing.T) {
	s, _, _ := newFlowServer(t)
	token := signup(t, s, "ada@example.com", "secret1")

	png := "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"
	change := func() string {
		body, contentType := photoUpload(t, png)
		headers := bearer(token)
		headers[constants.HeaderContentType] = contentType
		w := serve(s, http.MethodPut, "/api/users/change-photo", body, headers)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp models.PhotoResponse
		envelope(t, w, &resp)
		return resp.PhotoURL
	}

	first := change()
	second := change()
	require.NotEqual(t, first, second)

	entries, err := os.ReadDir(filepath.Join(s.uploadsDir, "profilePhotos"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	w := serve(s, http.MethodGet, strings.TrimPrefix(second, "http://api.test"), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = serve(s, http.MethodGet, strings.TrimPrefix(first, "http://api.test"), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

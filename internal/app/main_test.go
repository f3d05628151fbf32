package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/storage"
	userHttp "github.com/nekogravitycat/civic-directory-backend/internal/user/http"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testApp struct {
	*Container
}

// newTestApp builds an isolated in-memory application.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	c, err := NewContainer(Config{
		Storage:    store,
		CacheTTL:   time.Minute,
		JWTSecret:  "test-secret",
		JWTTTL:     30 * time.Minute,
		BcryptCost: 4, // Lower cost for testing purposes
	})
	require.NoError(t, err)
	return &testApp{Container: c}
}

func (a *testApp) executeRequest(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req, _ := http.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

// register creates an account over HTTP and returns its token and profile.
func (a *testApp) register(t *testing.T, phone, name, role, org string) (string, userHttp.UserResponse) {
	t.Helper()
	w := a.executeRequest(http.MethodPost, "/v1/auth/register", userHttp.RegisterRequest{
		Phone:           phone,
		Password:        "password123",
		ConfirmPassword: "password123",
		DisplayName:     name,
		Role:            role,
		Organization:    org,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp userHttp.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.AccessToken, resp.User
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

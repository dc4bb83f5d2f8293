package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wang-tianhao/vibrant-accounts/internal/accounts"
	"github.com/Wang-tianhao/vibrant-accounts/internal/common"
	"github.com/Wang-tianhao/vibrant-accounts/internal/models"
	"github.com/Wang-tianhao/vibrant-accounts/jwtauth"
)

type fakeAccounts struct {
	user *models.User
	err  error
}

func (f *fakeAccounts) Authenticate(context.Context, string, string) (*models.User, error) {
	return f.user, f.err
}

func (f *fakeAccounts) Register(context.Context, string, string, string) (*models.User, error) {
	return f.user, f.err
}

func (f *fakeAccounts) List(context.Context, int64, int) ([]models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []models.User{*f.user}, nil
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func newFakeRouter(t *testing.T, acc Accounts, pinger Pinger) (*gin.Engine, *Handler) {
	t.Helper()
	cfg, err := jwtauth.NewConfig(jwtauth.WithHS256([]byte(testSecret)))
	require.NoError(t, err)

	h := NewHandler(acc, jwtauth.NewIssuer(cfg), pinger, zerolog.Nop())
	return NewRouter(RouterConfig{Handler: h, Gate: jwtauth.NewGate(cfg), Logger: zerolog.Nop()}), h
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		path       string
		body       string
		wantStatus int
		wantReason string
	}{
		{
			name:       "invalid credentials",
			err:        accounts.ErrInvalidCredentials,
			path:       "/auth/token",
			body:       `{"email":"a@example.org","password":"x"}`,
			wantStatus: http.StatusBadRequest,
			wantReason: "Invalid credentials",
		},
		{
			name:       "duplicate",
			err:        errors.Join(errors.New("insert user"), common.ErrAlreadyExists),
			path:       "/user",
			body:       `{"email":"a@example.org","name":"A","password":"x"}`,
			wantStatus: http.StatusConflict,
			wantReason: "Resource already exists",
		},
		{
			name:       "storage failure on register",
			err:        errors.New("connection refused"),
			path:       "/user",
			body:       `{"email":"a@example.org","name":"A","password":"x"}`,
			wantStatus: http.StatusInternalServerError,
			wantReason: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newFakeRouter(t, &fakeAccounts{err: tt.err}, nil)

			w := serve(r, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, `{"reason":"`+tt.wantReason+`"}`, w.Body.String())
			assert.NotContains(t, w.Body.String(), "connection refused")
		})
	}
}

func TestToken_SigningFailure(t *testing.T) {
	r, h := newFakeRouter(t, &fakeAccounts{user: &models.User{ID: 1, Email: "a@example.org"}}, nil)
	h.now = func() time.Time { return time.Unix(1<<63-1-62135596800, 0) }

	w := serve(r, http.MethodPost, "/auth/token", `{"email":"a@example.org","password":"x"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"reason":"Internal server error"}`, w.Body.String())
}

func TestRequestDecoding(t *testing.T) {
	r, _ := newFakeRouter(t, &fakeAccounts{user: &models.User{ID: 1}}, nil)

	tests := []struct {
		name string
		path string
		body string
	}{
		{"malformed json", "/user", `{"email":`},
		{"missing password", "/user", `{"email":"a@example.org","name":"A"}`},
		{"invalid email", "/user", `{"email":"not-an-email","name":"A","password":"x"}`},
		{"wrong type", "/auth/token", `{"email":1,"password":"x"}`},
		{"body too large", "/auth/token", `{"email":"` + strings.Repeat("a", MaxBodySize) + `","password":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var payload ErrorPayload
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
			assert.NotEmpty(t, payload.Reason)
		})
	}
}

func TestHealth_StorageDown(t *testing.T) {
	r, _ := newFakeRouter(t, &fakeAccounts{}, fakePinger{err: errors.New("down")})

	w := serve(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zerolog.Nop()))
	r.GET("/panic", func(*gin.Context) { panic("boom") })

	w := serve(r, http.MethodGet, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"reason":"Internal server error"}`, w.Body.String())
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		id, _ := jwtauth.GetRequestID(c.Request.Context())
		c.String(http.StatusOK, id)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))

	w = serve(r, http.MethodGet, "/", "")
	assert.Len(t, w.Body.String(), 36)
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(time.Millisecond))
	r.GET("/", func(c *gin.Context) {
		<-c.Request.Context().Done()
		c.String(http.StatusOK, c.Request.Context().Err().Error())
	})

	w := serve(r, http.MethodGet, "/", "")
	assert.Equal(t, context.DeadlineExceeded.Error(), w.Body.String())
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)

	r := gin.New()
	r.Use(RequestID(), RequestLogger(log))
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, http.MethodGet, "/health", "")
	assert.Empty(t, buf.String())

	serve(r, http.MethodGet, "/fail", "")
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), `"status":500`)
	assert.Contains(t, buf.String(), `"request_id"`)
}


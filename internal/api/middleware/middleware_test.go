package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohits-web03/dropvault/internal/logging"
)

func sessionCookie(t *testing.T, secret string, claims jwt.MapClaims) *http.Cookie {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return &http.Cookie{Name: SessionCookie, Value: signed}
}

func echoUser(w http.ResponseWriter, r *http.Request) {
	id, ok := UserIDFromContext(r.Context())
	if !ok {
		w.Write([]byte("anonymous"))
		return
	}
	w.Write([]byte(id.String()))
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	handler := AuthMiddleware("secret")(http.HandlerFunc(echoUser))
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name   string
		cookie *http.Cookie
		want   int
	}{
		{name: "no cookie", want: http.StatusUnauthorized},
		{name: "valid", cookie: sessionCookie(t, "secret", jwt.MapClaims{"userId": userID.String(), "exp": exp}), want: http.StatusOK},
		{name: "wrong secret", cookie: sessionCookie(t, "other", jwt.MapClaims{"userId": userID.String(), "exp": exp}), want: http.StatusUnauthorized},
		{name: "expired", cookie: sessionCookie(t, "secret", jwt.MapClaims{"userId": userID.String(), "exp": time.Now().Add(-time.Hour).Unix()}), want: http.StatusUnauthorized},
		{name: "missing claim", cookie: sessionCookie(t, "secret", jwt.MapClaims{"exp": exp}), want: http.StatusUnauthorized},
		{name: "malformed id", cookie: sessionCookie(t, "secret", jwt.MapClaims{"userId": "42", "exp": exp}), want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/deliveries", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, userID.String(), rec.Body.String())
			}
		})
	}
}

func TestAuthMiddleware_PassesPreflight(t *testing.T) {
	handler := AuthMiddleware("secret")(http.HandlerFunc(echoUser))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/deliveries", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOptionalAuth(t *testing.T) {
	userID := uuid.New()
	handler := OptionalAuth("secret")(http.HandlerFunc(echoUser))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/share/x", nil))
	assert.Equal(t, "anonymous", rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/share/x", nil)
	req.AddCookie(sessionCookie(t, "secret", jwt.MapClaims{"userId": userID.String()}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, userID.String(), rec.Body.String())
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	handler := Logger(logging.New(&buf, "development"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "request", line["msg"])
	assert.Equal(t, "/health", line["path"])
	assert.Equal(t, float64(http.StatusTeapot), line["status"])
	assert.Equal(t, float64(15), line["bytes"])
}

package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-32"

func TestIssueAndParseToken(t *testing.T) {
	now := time.Now()
	signed, issued, err := IssueToken(testSecret, 42, now)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.JTI)

	claims, err := ParseToken(testSecret, signed)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, issued.JTI, claims.JTI)
	assert.WithinDuration(t, now.Add(TokenTTL), claims.ExpiresAt, time.Second)
}

func TestParseToken_Rejects(t *testing.T) {
	signed, _, err := IssueToken(testSecret, 1, time.Now())
	require.NoError(t, err)

	_, err = ParseToken("another-secret-that-is-long-enough", signed)
	assert.Error(t, err)

	expired, _, err := IssueToken(testSecret, 1, time.Now().Add(-8*24*time.Hour))
	require.NoError(t, err)
	_, err = ParseToken(testSecret, expired)
	assert.Error(t, err)

	_, err = ParseToken(testSecret, "not-a-jwt")
	assert.Error(t, err)
}

func TestTokenFromRequest(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		tok, err := TokenFromRequest(c)
		switch {
		case IsNoToken(err):
			return c.SendString("none")
		case err != nil:
			return c.SendString("bad")
		}
		return c.SendString(tok)
	})

	tests := []struct {
		name   string
		header string
		cookie string
		want   string
	}{
		{"bearer header", "Bearer abc", "", "abc"},
		{"cookie fallback", "", "xyz", "xyz"},
		{"header wins", "Bearer abc", "xyz", "abc"},
		{"malformed header", "Token abc", "", "bad"},
		{"nothing", "", "", "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: TokenCookie, Value: tt.cookie})
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			var body bytes.Buffer
			_, _ = body.ReadFrom(resp.Body)
			assert.Equal(t, tt.want, body.String())
		})
	}
}

func TestCheckRateLimit_BypassedOutsideProduction(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	allowed, err := CheckRateLimit(context.Background(), nil, "login", "ip:1", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCheckRateLimit_NilRedisInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	allowed, err := CheckRateLimit(context.Background(), nil, "login", "ip:1", 1, time.Minute)
	assert.Error(t, err)
	assert.False(t, allowed)
}

func TestContextLogger_AddsRequestAndUser(t *testing.T) {
	var buf bytes.Buffer
	logger := NewContextLogger(slog.NewJSONHandler(&buf, nil))

	ctx := context.WithValue(context.Background(), RequestIDKey, "rid-1")
	ctx = WithUserID(ctx, 7)
	logger.InfoContext(ctx, "hello")

	assert.Contains(t, buf.String(), `"request_id":"rid-1"`)
	assert.Contains(t, buf.String(), `"user_id":7`)
}

func TestContextMiddleware_PropagatesRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(requestid.New())
	app.Use(ContextMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		rid, _ := c.UserContext().Value(RequestIDKey).(string)
		return c.SendString(rid)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body bytes.Buffer
	_, _ = body.ReadFrom(resp.Body)
	assert.Equal(t, "abc-123", body.String())
}

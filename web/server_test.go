package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roastsync/accounting"
	"roastsync/auth"
	"roastsync/config"
)

func TestBearerToken(t *testing.T) {
	token, ok := bearerToken("Bearer abc.def.ghi")
	assert.True(t, ok)
	assert.Equal(t, "abc.def.ghi", token)

	token, ok = bearerToken("bearer abc")
	assert.True(t, ok, "scheme is case-insensitive")
	assert.Equal(t, "abc", token)

	_, ok = bearerToken("")
	assert.False(t, ok)
	_, ok = bearerToken("Basic dXNlcjpwdw==")
	assert.False(t, ok)
	_, ok = bearerToken("Bearer ")
	assert.False(t, ok)
}

// the middleware must refuse missing or unverifiable tokens before ever
// touching the database
func TestRequireUserRejectsBadTokens(t *testing.T) {
	s := New(nil, config.Config{SecretKey: "secret"})

	app := fiber.New()
	app.Get("/protected", s.requireUser, func(ctx *fiber.Ctx) error {
		return ctx.SendString("ok")
	})

	cases := map[string]string{
		"no header":     "",
		"wrong scheme":  "Basic abc",
		"garbage token": "Bearer not.a.token",
	}
	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set(fiber.HeaderAuthorization, header)
		}

		resp, err := app.Test(req)
		require.NoError(t, err, name)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, name)
	}

	// a token signed with a different secret is just as invalid
	foreign, err := auth.NewToken([]byte("other"), "x@y.z", time.Hour, time.Now())
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+foreign)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRejectedResponseShape(t *testing.T) {
	app := fiber.New()
	app.Post("/x", func(ctx *fiber.Ctx) error {
		return rejected(ctx, accounting.Rejections{{
			Kind:    accounting.ExceedsAvailableStock,
			Field:   "green_input_g",
			Message: "insufficient green stock: 200 g available",
		}})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/x", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed struct {
		Rejections accounting.Rejections `json:"rejections"`
	}
	require.NoError(t, json.Unmarshal(body, &parsed))
	require.Len(t, parsed.Rejections, 1)
	assert.Equal(t, accounting.ExceedsAvailableStock, parsed.Rejections[0].Kind)
	assert.Equal(t, "green_input_g", parsed.Rejections[0].Field)
}

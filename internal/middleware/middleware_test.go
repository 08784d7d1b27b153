package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionLimiter(t *testing.T) {
	t.Parallel()

	cl := NewConnectionLimiter(2)
	assert.Equal(t, 2, cl.Limit())
	assert.True(t, cl.Acquire())
	assert.True(t, cl.Acquire())
	assert.False(t, cl.Acquire())
	cl.Release()
	assert.True(t, cl.Acquire())

	assert.Equal(t, 1, NewConnectionLimiter(0).Limit())
}

func TestConnectionLimiterMiddleware_Full(t *testing.T) {
	t.Parallel()

	cl := NewConnectionLimiter(1)
	require.True(t, cl.Acquire())

	app := fiber.New()
	app.Use(ConnectionLimiterMiddleware(cl))
	app.Get("/", func(c fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	cl.Release()
	resp, err = app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	// The slot is released after the request.
	assert.True(t, cl.Acquire())
}

func TestPanicRecoveryMiddleware(t *testing.T) {
	t.Parallel()

	log, hook := test.NewNullLogger()
	app := fiber.New()
	app.Use(PanicRecoveryMiddleware(logrus.NewEntry(log)))
	app.Get("/boom", func(c fiber.Ctx) error { panic("boom") })

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "Panic recovered", hook.LastEntry().Message)
	assert.Equal(t, "boom", hook.LastEntry().Data["panic"])
}

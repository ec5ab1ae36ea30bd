package requestid

import (
	"net/http/httptest"
	"testing"

	"github.com/MaksimBoltov/comments/internal/pkg/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(seen *string, fromContext *string) *fiber.App {
	app := fiber.New()
	app.Use(New())
	app.Get("/", func(c *fiber.Ctx) error {
		*seen = GetRequestID(c)
		*fromContext = log.RequestID(c.UserContext())
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestRequestID_Generated(t *testing.T) {
	var seen, fromContext string
	app := newApp(&seen, &fromContext)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)

	header := resp.Header.Get(HeaderRequestID)
	_, parseErr := uuid.FromString(header)
	assert.NoError(t, parseErr)
	assert.Equal(t, header, seen)
	assert.Equal(t, header, fromContext)
}

func TestRequestID_Propagated(t *testing.T) {
	var seen, fromContext string
	app := newApp(&seen, &fromContext)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(HeaderRequestID, "upstream-id")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, "upstream-id", resp.Header.Get(HeaderRequestID))
	assert.Equal(t, "upstream-id", seen)
	assert.Equal(t, "upstream-id", fromContext)
}

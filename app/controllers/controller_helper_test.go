package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/BaanBox/internal/pkg/checkout"
	"github.com/ManuelReschke/BaanBox/internal/pkg/constants"
)

func TestSafeNext(t *testing.T) {
	assert.Equal(t, "/orders/42", safeNext("/orders/42", "/menu"))
	assert.Equal(t, "/menu", safeNext("", "/menu"))
	assert.Equal(t, "/menu", safeNext("https://evil.example", "/menu"))
	assert.Equal(t, "/menu", safeNext("//evil.example", "/menu"))
	assert.Equal(t, "/menu", safeNext("/\\evil.example", "/menu"))
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "nick", firstNonEmpty("", "  ", "nick", "name"))
	assert.Equal(t, "", firstNonEmpty(" ", ""))
}

func TestStepRoute(t *testing.T) {
	to, msg := stepRoute(checkout.StepPlan)
	assert.Equal(t, constants.RoutePlans, to)
	assert.NotEmpty(t, msg)

	to, _ = stepRoute(checkout.StepMeals)
	assert.Equal(t, constants.RouteMeals, to)

	to, _ = stepRoute(checkout.StepDraft)
	assert.Equal(t, constants.RouteCheckoutStart, to)
}

func TestTimeOptionsMarksSelection(t *testing.T) {
	opts := timeOptions("evening")
	require.NotEmpty(t, opts)
	assert.Equal(t, "", opts[0].Value)

	selected := 0
	for _, o := range opts {
		if o.Selected {
			selected++
			assert.Equal(t, "evening", o.Value)
		}
	}
	assert.Equal(t, 1, selected)

	// the shared option list is not modified
	for _, o := range deliveryTimes {
		assert.False(t, o.Selected)
	}
}

func TestFormBool(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"on":    formBool(c, "a"),
			"true":  formBool(c, "b"),
			"no":    formBool(c, "c"),
			"unset": formBool(c, "d"),
		})
	})

	form := url.Values{"a": {"on"}, "b": {"TRUE"}, "c": {"no"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", fiber.MIMEApplicationForm)
	resp, err := app.Test(req)
	require.NoError(t, err)

	var got map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, map[string]bool{"on": true, "true": true, "no": false, "unset": false}, got)
}

func TestGetClientIP(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(GetClientIP(c))
	})

	cases := map[string]map[string]string{
		"203.0.113.7":  {"CF-Connecting-IP": "203.0.113.7", "X-Forwarded-For": "198.51.100.1"},
		"198.51.100.1": {"X-Forwarded-For": "198.51.100.1, 10.0.0.1"},
	}
	for want, headers := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, want, string(body))
	}
}

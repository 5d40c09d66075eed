package controllers

import (
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/sujit-baniya/flash"

	"github.com/ManuelReschke/BaanBox/app/repository"
	"github.com/ManuelReschke/BaanBox/internal/pkg/env"
	"github.com/ManuelReschke/BaanBox/internal/pkg/usercontext"
	"github.com/ManuelReschke/BaanBox/views"
)

// Session keys, shared with the user context middleware.
const (
	AUTH_KEY       = usercontext.AuthKey
	USER_ID        = usercontext.KeyUserID
	USER_NAME      = usercontext.KeyUsername
	USER_IS_ADMIN  = usercontext.KeyIsAdmin
	FROM_PROTECTED = usercontext.KeyFromProtected
)

func isLoggedIn(c *fiber.Ctx) bool {
	return usercontext.IsLoggedIn(c)
}

// layout fills the values every page shows: user, flash, csrf token, cart
// badge, unread notifications and footer links.
func layout(c *fiber.Ctx, repos *repository.Repositories, title string, data interface{}) views.Layout {
	userCtx := usercontext.GetUserContext(c)
	csrfToken, _ := c.Locals("csrf").(string)

	l := views.Layout{
		Title: "BaanBox" + title,
		User:  userCtx,
		Flash: flash.Get(c),
		CSRF:  csrfToken,
		Path:  c.Path(),
		IsDev: env.IsDev(),
		Data:  data,
	}

	if sc := storeController; sc != nil {
		l.CartCount = sc.cartCount(c)
	}
	if repos == nil {
		return l
	}
	if userCtx.IsLoggedIn {
		if n, err := repos.Notification.CountUnread(userCtx.UserID); err == nil {
			l.UnreadCount = n
		}
	}
	if pages, err := repos.Page.GetFooter(); err == nil {
		l.FooterPages = pages
	}
	return l
}

// render serves the page template name inside the layout.
func render(c *fiber.Ctx, repos *repository.Repositories, page, title string, data interface{}, status ...int) error {
	var opts []func(*templ.ComponentHandler)
	if len(status) > 0 {
		opts = append(opts, templ.WithStatus(status[0]))
	}
	component := views.Page(page, layout(c, repos, title, data))
	handler := adaptor.HTTPHandler(templ.Handler(component, opts...))
	return handler(c)
}

func redirectWithError(c *fiber.Ctx, to, message string) error {
	fm := fiber.Map{
		"type":    "error",
		"message": message,
	}
	return flash.WithError(c, fm).Redirect(to, fiber.StatusSeeOther)
}

func redirectWithSuccess(c *fiber.Ctx, to, message string) error {
	fm := fiber.Map{
		"type":    "success",
		"message": message,
	}
	return flash.WithSuccess(c, fm).Redirect(to, fiber.StatusSeeOther)
}

func redirectWithInfo(c *fiber.Ctx, to, message string) error {
	fm := fiber.Map{
		"type":    "info",
		"message": message,
	}
	return flash.WithSuccess(c, fm).Redirect(to, fiber.StatusSeeOther)
}

// serverError logs err and hands a generic 500 to the error handler.
func serverError(prefix string, err error) error {
	log.Errorf("[%s] %v", prefix, err)
	return fiber.NewError(fiber.StatusInternalServerError, "Something went wrong on our side. Please try again.")
}

// paramUint parses a positive integer route param.
func paramUint(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// formInt returns -1 for anything that is not an integer, which the cart
// treats as an out-of-range index.
func formInt(c *fiber.Ctx, key string) int {
	v, err := strconv.Atoi(strings.TrimSpace(c.FormValue(key)))
	if err != nil {
		return -1
	}
	return v
}

func formBool(c *fiber.Ctx, key string) bool {
	switch strings.ToLower(strings.TrimSpace(c.FormValue(key))) {
	case "1", "on", "true", "yes":
		return true
	}
	return false
}

// safeNext only allows local redirect targets.
func safeNext(next, fallback string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.Contains(next, "\\") {
		return next
	}
	return fallback
}

// GetClientIP returns the client address, preferring the proxy headers.
func GetClientIP(c *fiber.Ctx) string {
	if cf := strings.TrimSpace(c.Get("CF-Connecting-IP")); cf != "" {
		return cf
	}
	if xff := c.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	return strings.TrimPrefix(c.IP(), "::ffff:")
}

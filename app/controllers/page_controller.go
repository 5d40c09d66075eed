package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ManuelReschke/BaanBox/app/repository"
	"github.com/ManuelReschke/BaanBox/internal/pkg/viewmodel"
)

// PageController serves the static pages linked in the footer.
type PageController struct {
	repos *repository.Repositories
}

func NewPageController(repos *repository.Repositories) *PageController {
	return &PageController{repos: repos}
}

func (pc *PageController) HandlePageDisplay(c *fiber.Ctx) error {
	slug := strings.ToLower(strings.TrimSpace(c.Params("slug")))
	if slug == "" {
		return fiber.ErrNotFound
	}

	page, err := pc.repos.Page.GetBySlug(slug)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !page.IsActive) {
		return fiber.ErrNotFound
	}
	if err != nil {
		return serverError("Page", err)
	}

	return render(c, pc.repos, "page", " | "+page.Title, viewmodel.StaticPage{Page: page})
}

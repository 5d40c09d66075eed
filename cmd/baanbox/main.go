package main

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/favicon"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"

	"github.com/ManuelReschke/BaanBox/app/models"
	"github.com/ManuelReschke/BaanBox/app/repository"
	"github.com/ManuelReschke/BaanBox/internal/pkg/cache"
	"github.com/ManuelReschke/BaanBox/internal/pkg/database"
	"github.com/ManuelReschke/BaanBox/internal/pkg/env"
	"github.com/ManuelReschke/BaanBox/internal/pkg/jobqueue"
	"github.com/ManuelReschke/BaanBox/internal/pkg/metrics/counter"
	"github.com/ManuelReschke/BaanBox/internal/pkg/router"
	"github.com/ManuelReschke/BaanBox/internal/pkg/statistics"
	"github.com/ManuelReschke/BaanBox/views"
)

func main() {
	app := NewApplication()

	// mail workers and the popularity flush
	jobs := jobqueue.GetManager()
	jobs.Start()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	jobs.Stop()
	if ferr := counter.FlushAll(); ferr != nil {
		log.Warnf("[Counter] final flush failed: %v", ferr)
	}
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())
	statistics.UpdateCacheIfNeeded(repository.GetGlobalRepositories().Order)

	if err := models.LoadSettings(database.GetDB()); err != nil {
		log.Warnf("[Settings] using defaults: %v", err)
	}

	// Define possible base paths
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/baanbox to project root
		"../../../", // Fallback
	}

	// Find the correct base path
	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + "public"); !os.IsNotExist(err) {
			basePath = path
			break
		}
	}

	if basePath == "" {
		panic("Could not find project root directory")
	}

	errorViews, err := fs.Sub(views.ErrorFS, "errors")
	if err != nil {
		panic(err)
	}

	// init fiber app
	app := fiber.New(fiber.Config{
		Views:        html.NewFileSystem(http.FS(errorViews), ".html"),
		ErrorHandler: errorHandler,
		BodyLimit:    1 * 1024 * 1024,
	})

	// ignore and cache favicon
	app.Use(favicon.New(favicon.Config{
		File:         basePath + "public/assets/icons/favicon.ico",
		URL:          "/favicon.ico",
		CacheControl: "public, max-age=604800",
	}))

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	installMetrics(app)

	// static files
	app.Static("/assets", basePath+"public/assets", fiber.Static{
		CacheDuration: 15 * time.Second,
		Compress:      true,
	})

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/",
		FilePath: basePath + "public/docs/v1/openapi.yml",
		Path:     "v1",
		Title:    "BaanBox API",
	}
	app.Use(swagger.New(openAPICfg))

	// ROUTER
	router.InstallRouter(app)

	return app
}

// errorHandler renders errors/error.html; API requests get JSON.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Something went wrong on our side. Please try again."

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	} else {
		log.Errorf("[App] %s %s: %v", c.Method(), c.Path(), err)
	}
	if code == fiber.StatusNotFound {
		message = "We could not find that page."
	}

	if len(c.Path()) >= 5 && c.Path()[:5] == "/api/" {
		return c.Status(code).JSON(fiber.Map{"error": http.StatusText(code), "message": message})
	}

	c.Status(code)
	if rerr := c.Render("error", fiber.Map{
		"Title":   http.StatusText(code),
		"Code":    code,
		"Message": message,
	}); rerr != nil {
		return c.Status(code).SendString(message)
	}
	return nil
}

// installMetrics mounts the monitor behind basic auth. Without METRICS_PASSWORD
// the route is not registered at all.
func installMetrics(app *fiber.App) bool {
	password := env.GetEnv("METRICS_PASSWORD", "")
	if password == "" {
		log.Warn("[Metrics] METRICS_PASSWORD is empty, /metrics is disabled")
		return false
	}
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): password,
		},
	}), monitor.New(monitor.Config{Title: "BaanBox metrics"}))
	return true
}

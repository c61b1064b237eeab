package httpapi

import (
	"io"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// NewApp builds the Fiber app with the shared error handler and middleware.
// Access logs go to logOutput.
func NewApp(logOutput io.Writer) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "cosmic-weather",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// Refresh handlers wait for the upstream call.
		WriteTimeout: 60 * time.Second,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: errorHandler,
	})

	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Output: logOutput,
		Format: "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path} ${error}\n",
	}))
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "cosmic-weather",
		})
	})

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

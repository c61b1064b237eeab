package httpapi

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/i474232898/cosmic-weather/internal/astronomy"
	"github.com/i474232898/cosmic-weather/internal/store"
)

var validate = validator.New()

// State is the store surface exposed over HTTP.
type State interface {
	Snapshot() store.State
	LoadAstronomy(ctx context.Context)
	LoadWeather(ctx context.Context, locationName string)
	SetCity(name string)
	ToggleFavorite(ctx context.Context, date string) error
	ToggleTheme(ctx context.Context) error
}

// Archive looks up APOD entries for past dates.
type Archive interface {
	FetchByDate(ctx context.Context, date string) (astronomy.Record, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. A nil gatherer
// leaves /metrics unregistered.
func RegisterRoutes(app *fiber.App, st State, archive Archive, gatherer prometheus.Gatherer, log zerolog.Logger) {
	log = log.With().Str("component", "api").Logger()

	if gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	v1 := app.Group("/api/v1")

	v1.Get("/state", func(c *fiber.Ctx) error {
		return c.JSON(st.Snapshot())
	})

	v1.Post("/astronomy/refresh", func(c *fiber.Ctx) error {
		st.LoadAstronomy(c.UserContext())
		return c.JSON(st.Snapshot())
	})

	v1.Get("/astronomy", func(c *fiber.Ctx) error {
		q := dateParam{Date: c.Query("date")}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}

		rec, err := archive.FetchByDate(c.UserContext(), q.Date)
		if err != nil {
			log.Warn().Err(err).Str("date", q.Date).Msg("archive lookup failed")
			return fiber.NewError(fiber.StatusBadGateway, "failed to fetch astronomy picture")
		}
		return c.JSON(rec)
	})

	v1.Post("/weather/refresh", func(c *fiber.Ctx) error {
		var req weatherRequest
		if err := bindOptional(c, &req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		city := ""
		if req.City != nil {
			city = strings.TrimSpace(*req.City)
			if city == "" {
				return fiber.NewError(fiber.StatusBadRequest, "city must not be blank")
			}
		}

		st.LoadWeather(c.UserContext(), city)
		return c.JSON(st.Snapshot())
	})

	v1.Put("/city", func(c *fiber.Ctx) error {
		var req cityRequest
		if err := bindOptional(c, &req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		req.City = strings.TrimSpace(req.City)
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "city is required")
		}

		st.SetCity(req.City)
		return c.JSON(st.Snapshot())
	})

	v1.Post("/favorites/:date/toggle", func(c *fiber.Ctx) error {
		p := dateParam{Date: c.Params("date")}
		if err := validate.Struct(p); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}

		if err := st.ToggleFavorite(c.UserContext(), p.Date); err != nil {
			log.Error().Err(err).Msg("toggle favorite failed")
			return fiber.NewError(fiber.StatusInternalServerError, "failed to save favorites")
		}
		return c.JSON(st.Snapshot())
	})

	v1.Post("/theme/toggle", func(c *fiber.Ctx) error {
		if err := st.ToggleTheme(c.UserContext()); err != nil {
			log.Error().Err(err).Msg("toggle theme failed")
			return fiber.NewError(fiber.StatusInternalServerError, "failed to save theme")
		}
		return c.JSON(st.Snapshot())
	})
}

type dateParam struct {
	Date string `validate:"required,datetime=2006-01-02"`
}

// weatherRequest distinguishes an absent city (device location) from a
// blank one (rejected).
type weatherRequest struct {
	City *string `json:"city"`
}

type cityRequest struct {
	City string `json:"city" validate:"required,max=200"`
}

// bindOptional decodes a JSON body into out; an empty body leaves out as is.
func bindOptional(c *fiber.Ctx, out any) error {
	body := c.Body()
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	return nil
}

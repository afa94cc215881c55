package httpapi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/smart-mirror/internal/datetime"
	"github.com/i474232898/smart-mirror/internal/layout"
	"github.com/i474232898/smart-mirror/internal/profile"
	"github.com/i474232898/smart-mirror/internal/quotes"
	"github.com/i474232898/smart-mirror/internal/weather"
)

const serviceName = "smart-mirror"

var validate = validator.New()

// Dependencies are the widgets the API reads from.
type Dependencies struct {
	Weather *weather.Service
	Clock   *datetime.Ticker
	Quotes  *quotes.Rotator
	Profile profile.Store
}

// NewApp builds the Fiber app with the mirror's error handling and global
// middleware. Request logging is skipped when quiet is set.
func NewApp(quiet bool) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	if !quiet {
		app.Use(logger.New())
	}
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": serviceName,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	return app
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Dependencies) {
	// Kept at the root, where the mirror's settings form submits to.
	app.Get("/updateUsername", func(c *fiber.Ctx) error {
		q := usernameQuery{Username: strings.TrimSpace(c.Query("username"))}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := deps.Profile.SaveUsername(c.UserContext(), q.Username); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to save configured username")
		}

		return c.JSON(fiber.Map{"username": q.Username})
	})

	v1 := app.Group("/api/v1")

	v1.Get("/weather", func(c *fiber.Ctx) error {
		return c.JSON(deps.Weather.GetView())
	})

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		current := deps.Weather.GetCurrent()
		if current == nil {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.JSON(current)
	})

	v1.Get("/datetime", func(c *fiber.Ctx) error {
		return c.JSON(deps.Clock.Current())
	})

	v1.Get("/quote", func(c *fiber.Ctx) error {
		q, ok := deps.Quotes.Current()
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "no quote of the day yet")
		}
		return c.JSON(q)
	})

	v1.Get("/layout", func(c *fiber.Ctx) error {
		q, err := parseLayoutQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		class, err := layout.PositionClass(q.Rows, q.Columns, q.Pos)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		return c.JSON(fiber.Map{"class": class})
	})

	v1.Get("/username", func(c *fiber.Ctx) error {
		name, err := deps.Profile.LoadUsername(c.UserContext())
		if err != nil {
			if errors.Is(err, profile.ErrNoUsername) {
				return fiber.NewError(fiber.StatusNotFound, "no username set")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load username")
		}
		return c.JSON(fiber.Map{"username": name})
	})
}

type usernameQuery struct {
	Username string `validate:"required,max=64"`
}

// layoutQuery holds the mirror grid query parameters.
type layoutQuery struct {
	Rows    int `validate:"gt=0"`
	Columns int `validate:"gt=0"`
	Pos     int `validate:"gte=0"`
}

func parseLayoutQuery(c *fiber.Ctx) (layoutQuery, error) {
	var q layoutQuery

	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"mirror_rows", &q.Rows},
		{"mirror_columns", &q.Columns},
		{"mirror_pos", &q.Pos},
	} {
		v := c.Query(p.name)
		if v == "" {
			return q, fmt.Errorf("%s query parameter is required", p.name)
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return q, fmt.Errorf("%s must be an integer", p.name)
		}
		*p.dst = n
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}

	return q, nil
}

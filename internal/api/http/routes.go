package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/outfitly/outfit-calendar/internal/calendar"
	"github.com/outfitly/outfit-calendar/internal/schedule"
	"github.com/outfitly/outfit-calendar/internal/timeutil"
	"github.com/outfitly/outfit-calendar/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, materializer *calendar.Materializer, coordinator *schedule.Coordinator) {
	v1 := app.Group("/api/v1")

	v1.Get("/calendar/:year/:month", func(c *fiber.Ctx) error {
		year, err := strconv.Atoi(c.Params("year"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid year")
		}
		month, err := strconv.Atoi(c.Params("month"))
		if err != nil || month < 1 || month > 12 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid month")
		}

		locReq, err := parseLocationQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		days, err := materializer.Materialize(c.Context(), year, time.Month(month), locReq.toLocation())
		if err != nil {
			return scheduleError(err)
		}

		return c.JSON(fiber.Map{
			"year":  year,
			"month": month,
			"days":  days,
		})
	})

	v1.Get("/outfits/upcoming", func(c *fiber.Ctx) error {
		days := 0
		if v := c.Query("days"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > 31 {
				return fiber.NewError(fiber.StatusBadRequest, "days must be an integer between 1 and 31")
			}
			days = n
		}

		entries, err := coordinator.GetUpcoming(c.Context(), days)
		if err != nil {
			return scheduleError(err)
		}

		return c.JSON(fiber.Map{"outfits": entries})
	})

	v1.Get("/outfits/date/:date", func(c *fiber.Ctx) error {
		date, err := timeutil.ParseDate(c.Params("date"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid date; use YYYY-MM-DD")
		}

		entry, err := coordinator.GetForDate(c.Context(), date)
		if err != nil {
			return scheduleError(err)
		}

		return c.JSON(entry)
	})

	v1.Post("/outfits", func(c *fiber.Ctx) error {
		var req scheduleRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		date, err := timeutil.ParseDate(req.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid date; use YYYY-MM-DD")
		}

		entry, err := coordinator.GenerateAndSchedule(c.Context(), date, req.Location.toLocation(), req.Occasion, req.Wardrobe)
		if err != nil {
			return scheduleError(err)
		}

		return c.Status(fiber.StatusCreated).JSON(entry)
	})

	v1.Delete("/outfits/:id", func(c *fiber.Ctx) error {
		if err := coordinator.Delete(c.Context(), c.Params("id")); err != nil {
			return scheduleError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// scheduleError maps domain errors onto HTTP statuses, distinguishing
// "will never succeed" (out of horizon) from "retry later" (provider
// failures) so the UI can prompt accordingly.
func scheduleError(err error) error {
	switch {
	case errors.Is(err, schedule.ErrPastDate),
		errors.Is(err, schedule.ErrEmptyWardrobe):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, schedule.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, weather.ErrOutOfHorizon):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, weather.ErrTimeout):
		return fiber.NewError(fiber.StatusGatewayTimeout, err.Error())
	case errors.Is(err, weather.ErrUnavailable),
		errors.Is(err, schedule.ErrForecastUnavailable),
		errors.Is(err, schedule.ErrRecommendationFailed):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}
}

// locationQuery holds query parameters for identifying a location.
type locationQuery struct {
	City    string `json:"city" validate:"required"`
	Country string `json:"country"`
}

func (l locationQuery) toLocation() weather.Location {
	return weather.Location{
		City:    l.City,
		Country: l.Country,
	}
}

func parseLocationQuery(c *fiber.Ctx) (locationQuery, error) {
	var q locationQuery

	q.City = c.Query("city")
	q.Country = c.Query("country")

	if err := validate.Struct(q); err != nil {
		return q, err
	}

	return q, nil
}

// scheduleRequest is the body of POST /outfits.
type scheduleRequest struct {
	Date     string                  `json:"date" validate:"required"`
	Occasion string                  `json:"occasion" validate:"required"`
	Location locationQuery           `json:"location" validate:"required"`
	Wardrobe []schedule.WardrobeItem `json:"wardrobe" validate:"required,min=1,dive"`
}

package schedule

import "errors"

var (
	// ErrPastDate is returned when scheduling is attempted for a date before
	// today. Rejected before any network or store call.
	ErrPastDate = errors.New("cannot schedule an outfit for a past date")

	// ErrForecastUnavailable is returned when no forecast could be obtained
	// for the requested date. The wrapped cause distinguishes out-of-horizon
	// (will never succeed) from provider failure (retry later); match with
	// errors.Is against weather.ErrOutOfHorizon, weather.ErrTimeout or
	// weather.ErrUnavailable.
	ErrForecastUnavailable = errors.New("forecast unavailable for date")

	// ErrEmptyWardrobe is returned when scheduling is attempted with no
	// wardrobe items to choose from.
	ErrEmptyWardrobe = errors.New("wardrobe is empty")

	// ErrRecommendationFailed is returned when the recommendation generator
	// fails or produces an empty outfit. Nothing is committed.
	ErrRecommendationFailed = errors.New("outfit recommendation failed")

	// ErrNotFound is returned when no schedule entry exists for the request.
	ErrNotFound = errors.New("scheduled outfit not found")
)

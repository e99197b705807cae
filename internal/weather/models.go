package weather

// Condition represents a normalized high-level weather condition.
// Values are provider-supplied and intentionally unconstrained beyond this set;
// unknown provider text maps to ConditionUnknown rather than failing.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionSunny   Condition = "sunny"
	ConditionCloudy  Condition = "cloudy"
	ConditionRainy   Condition = "rainy"
	ConditionSnowy   Condition = "snowy"
	ConditionWindy   Condition = "windy"
)

// Location represents a logical place for which we fetch forecasts.
// City must be provided; Country is optional but recommended for disambiguation.
type Location struct {
	City    string `json:"city"`
	Country string `json:"country,omitempty"`
}

// Key returns a canonical string key for indexing this location in caches.
func (l Location) Key() string {
	return l.City + ":" + l.Country
}

// WeatherCondition is a single day's forecast (or current conditions) for a
// location. Immutable once constructed: the forecast cache hands out copies,
// and a snapshot frozen onto a schedule entry is never rewritten.
type WeatherCondition struct {
	Temperature int       `json:"temperature"` // provider units (Celsius)
	Condition   Condition `json:"condition"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Humidity    int       `json:"humidity"`
	WindSpeed   float64   `json:"windSpeed"`
}

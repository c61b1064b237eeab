package weather

import (
	"time"
)

// Condition is the upstream's coarse condition group, kept as received.
type Condition string

const (
	ConditionClear        Condition = "Clear"
	ConditionClouds       Condition = "Clouds"
	ConditionRain         Condition = "Rain"
	ConditionDrizzle      Condition = "Drizzle"
	ConditionSnow         Condition = "Snow"
	ConditionThunderstorm Condition = "Thunderstorm"
	ConditionMist         Condition = "Mist"
	ConditionFog          Condition = "Fog"
)

// Coordinates is a geocoding result. It is consumed immediately and never
// persisted.
type Coordinates struct {
	Latitude     float64 `json:"lat"`
	Longitude    float64 `json:"lon"`
	ResolvedName string  `json:"name"`
	CountryCode  string  `json:"country"`
	State        string  `json:"state,omitempty"`
}

// Position is a device location fix.
type Position struct {
	Latitude  float64
	Longitude float64
	AccuracyM float64 // 0 when unknown
}

// Snapshot is the current conditions for one location, in metric units.
type Snapshot struct {
	LocationName         string    `json:"locationName"`
	CountryCode          string    `json:"countryCode"`
	TemperatureC         float64   `json:"temperatureC"`
	FeelsLikeC           float64   `json:"feelsLikeC"`
	HumidityPct          float64   `json:"humidityPct"`
	PressureHpa          float64   `json:"pressureHpa"`
	WindSpeedMS          float64   `json:"windSpeedMs"`
	VisibilityM          float64   `json:"visibilityM"`
	ConditionMain        Condition `json:"conditionMain"`
	ConditionDescription string    `json:"conditionDescription"`
	Icon                 string    `json:"icon,omitempty"`
	ObservedAt           time.Time `json:"observedAt"` // always UTC
}

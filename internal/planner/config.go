package planner

// Config holds the tunable knobs of the planning engine.
// It is loaded from the service config file or environment variables.
type Config struct {
	// Fuzzy matching
	MatchThreshold float64 `mapstructure:"match_threshold" env:"MATCH_THRESHOLD" default:"0.6"`

	// Geographic filtering
	MaxDistanceKm float64 `mapstructure:"max_distance_km" env:"MAX_DISTANCE_KM" default:"10.0"`

	// Validation limits
	MaxIngredients int `mapstructure:"max_ingredients" env:"MAX_INGREDIENTS" default:"100"`

	// Time-savings heuristic
	StopMinutes        float64 `mapstructure:"stop_minutes" env:"STOP_MINUTES" default:"30.0"`
	TravelMinutesPerKm float64 `mapstructure:"travel_minutes_per_km" env:"TRAVEL_MINUTES_PER_KM" default:"5.0"`
}

// Defaults returns the default engine configuration.
func Defaults() *Config {
	return &Config{
		MatchThreshold:     0.6,
		MaxDistanceKm:      10.0,
		MaxIngredients:     100,
		StopMinutes:        30.0,
		TravelMinutesPerKm: 5.0,
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.MatchThreshold <= 0 || c.MatchThreshold > 1 {
		return ErrInvalidConfig{Field: "match_threshold", Reason: "must be in (0, 1]"}
	}
	if c.MaxDistanceKm <= 0 {
		return ErrInvalidConfig{Field: "max_distance_km", Reason: "must be positive"}
	}
	if c.MaxIngredients < 1 {
		return ErrInvalidConfig{Field: "max_ingredients", Reason: "must be at least 1"}
	}
	if c.StopMinutes < 0 {
		return ErrInvalidConfig{Field: "stop_minutes", Reason: "must be non-negative"}
	}
	if c.TravelMinutesPerKm < 0 {
		return ErrInvalidConfig{Field: "travel_minutes_per_km", Reason: "must be non-negative"}
	}
	return nil
}

// ErrInvalidConfig is returned when the engine configuration is invalid.
type ErrInvalidConfig struct {
	Field  string
	Reason string
}

func (e ErrInvalidConfig) Error() string {
	return e.Field + ": " + e.Reason
}

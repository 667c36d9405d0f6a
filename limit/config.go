package limit

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Config describes one fixed-window budget: MaxRequests per Interval.
// Configs are immutable process-wide constants; they are never mutated at
// runtime.
type Config struct {
	Interval    time.Duration `mapstructure:"interval" validate:"required,gt=0"`
	MaxRequests int           `mapstructure:"max_requests" validate:"required,gt=0"`
}

// Presets with decreasing permissiveness. Auth covers login/signup traffic,
// API general mutating API calls, Public read-only listing pages, Sensitive
// payment and account-deletion style endpoints.
var (
	Auth      = Config{Interval: time.Minute, MaxRequests: 5}
	API       = Config{Interval: time.Minute, MaxRequests: 60}
	Public    = Config{Interval: time.Minute, MaxRequests: 120}
	Sensitive = Config{Interval: time.Minute, MaxRequests: 3}
)

var validate = validator.New()

// Validate reports whether the config is usable. Called at startup; a zero
// or negative interval or request count is a configuration error, not
// something to paper over at check time.
func (c Config) Validate() error {
	return validate.Struct(c)
}

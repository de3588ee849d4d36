package optimizer

// Config holds the configuration for the basket optimizer.
// It is loaded from environment variables or a config file.
type Config struct {
	// Validation limits
	MaxBasketItems int `mapstructure:"max_basket_items" env:"MAX_BASKET_ITEMS" default:"100"`

	// Feature flags
	EnableUnitPrice bool `mapstructure:"enable_unit_price" env:"ENABLE_UNIT_PRICE" default:"true"`
}

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		MaxBasketItems:  100,
		EnableUnitPrice: true,
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.MaxBasketItems < 1 {
		return ErrInvalidConfig{Field: "max_basket_items", Reason: "must be at least 1"}
	}
	return nil
}

// ErrInvalidConfig is returned when the configuration is invalid.
type ErrInvalidConfig struct {
	Field  string
	Reason string
}

func (e ErrInvalidConfig) Error() string {
	return e.Field + ": " + e.Reason
}

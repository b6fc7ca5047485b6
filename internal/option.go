package internal

// Option configures the slip-box application before Run or RunMCP starts it.
type Option func(*application)

// application collects everything the entrypoints assemble from options.
type application struct {
	config *Config
}

// WithConfig supplies the loaded configuration. Run fails without it.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

package telemetry

// Config controls tracing for one invocation.
type Config struct {
	// Enabled turns tracing on. When false a noop provider is used and
	// nothing is recorded.
	Enabled bool

	ServiceName    string
	ServiceVersion string

	// SampleRate is the fraction of root spans recorded, 0.0 to 1.0.
	SampleRate float64
}

// DefaultConfig has tracing disabled.
func DefaultConfig() Config {
	return Config{
		Enabled:        false,
		ServiceName:    "poetryctl",
		ServiceVersion: "dev",
		SampleRate:     1.0,
	}
}

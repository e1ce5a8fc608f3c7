package config

// Validate checks the configuration for values the runner cannot work with.
func Validate(cfg Config) error {
	ve := &ValidationError{}

	if cfg.TestDataDir == "" {
		ve.Add("testDataDir", "must not be empty")
	}
	if cfg.Parallel < 1 {
		ve.Add("parallel", "must be at least 1, got %d", cfg.Parallel)
	}
	if cfg.Timeout <= 0 {
		ve.Add("timeout", "must be positive, got %s", cfg.Timeout)
	}
	if cfg.PollInterval <= 0 {
		ve.Add("pollInterval", "must be positive, got %s", cfg.PollInterval)
	}
	if cfg.DefaultPollTimeout <= 0 {
		ve.Add("defaultPollTimeout", "must be positive, got %s", cfg.DefaultPollTimeout)
	}
	if cfg.RequestTimeout <= 0 {
		ve.Add("requestTimeout", "must be positive, got %s", cfg.RequestTimeout)
	}
	if cfg.RequestsPerSecond < 0 {
		ve.Add("requestsPerSecond", "must not be negative, got %v", cfg.RequestsPerSecond)
	}
	if cfg.RequestsPerSecond > 0 && cfg.Burst < 1 {
		ve.Add("burst", "must be at least 1 when requestsPerSecond is set, got %d", cfg.Burst)
	}

	if ve.HasErrors() {
		return ve
	}
	return nil
}

package config

import "fmt"

// Validate checks the configuration for values that cannot work at runtime.
func (c *Config) Validate() error {
	if c.Paths.DataDir == "" {
		return fmt.Errorf("paths.data_dir must be set")
	}

	for name, hours := range map[string]int{
		"hltb.positive_ttl_hours":       c.HLTB.PositiveTTLHours,
		"hltb.negative_ttl_hours":       c.HLTB.NegativeTTLHours,
		"hltb.build_ttl_hours":          c.HLTB.BuildTTLHours,
		"opencritic.positive_ttl_hours": c.OpenCritic.PositiveTTLHours,
		"opencritic.negative_ttl_hours": c.OpenCritic.NegativeTTLHours,
	} {
		if hours <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, hours)
		}
	}

	for name, seconds := range map[string]int{
		"hltb.timeout_seconds":       c.HLTB.TimeoutSeconds,
		"opencritic.timeout_seconds": c.OpenCritic.TimeoutSeconds,
		"steam.timeout_seconds":      c.Steam.TimeoutSeconds,
	} {
		if seconds <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, seconds)
		}
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}

	return nil
}

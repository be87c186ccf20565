package config

import "strings"

// normalize expands path fields and canonicalizes string values in place.
func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(strings.TrimSpace(c.Paths.DataDir)); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return err
	}

	c.HLTB.BaseURL = strings.TrimRight(strings.TrimSpace(c.HLTB.BaseURL), "/")
	c.OpenCritic.Host = strings.TrimSpace(c.OpenCritic.Host)
	c.Steam.Region = strings.ToLower(strings.TrimSpace(c.Steam.Region))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	return nil
}

package main

import (
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"questlog/internal/config"
	"questlog/internal/hltb"
	"questlog/internal/logging"
	"questlog/internal/metacache"
	"questlog/internal/opencritic"
	"questlog/internal/resolver"
	"questlog/internal/steam"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	serviceOnce sync.Once
	service     *resolver.Service
	serviceErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureService() (*resolver.Service, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	c.serviceOnce.Do(func() {
		logger, err := buildLogger(cfg)
		if err != nil {
			c.serviceErr = err
			return
		}

		hltbClient := hltb.New(hltb.Config{
			BaseURL:        cfg.HLTB.BaseURL,
			BuildCachePath: cfg.BuildCachePath(),
			BuildTTL:       cfg.BuildTTL(),
			HTTPClient:     httpClient(cfg.HLTB.TimeoutSeconds),
			Logger:         logger,
		})
		steamClient := steam.New(steam.Config{
			HTTPClient: httpClient(cfg.Steam.TimeoutSeconds),
			Logger:     logger,
		})
		scoreFactory := func() (resolver.ScoreSource, error) {
			host := cfg.OpenCritic.Host
			if envHost := os.Getenv(opencritic.EnvHost); envHost != "" {
				host = envHost
			}
			client, err := opencritic.New(opencritic.Config{
				APIKey:     os.Getenv(opencritic.EnvAPIKey),
				Host:       host,
				HTTPClient: httpClient(cfg.OpenCritic.TimeoutSeconds),
				Logger:     logger,
			})
			if err != nil {
				return nil, err
			}
			return client, nil
		}

		c.service = resolver.New(resolver.Config{
			Completion:   hltbClient,
			ScoreFactory: scoreFactory,
			Prices:       steamClient,
			CompletionCache: metacache.NewStore(
				cfg.CompletionCachePath(), cfg.HLTBPositiveTTL(), cfg.HLTBNegativeTTL(), logger),
			ScoreCache: metacache.NewStore(
				cfg.ScoreCachePath(), cfg.ScorePositiveTTL(), cfg.ScoreNegativeTTL(), logger),
			Logger: logger,
		})
	})
	return c.service, c.serviceErr
}

func buildLogger(cfg *config.Config) (*slog.Logger, error) {
	format := cfg.Logging.Format
	// Piped output gets machine-readable lines regardless of the configured
	// terminal format.
	if format == "text" && !consoleIsInteractive(os.Stderr) {
		format = "json"
	}
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: format,
		Output: os.Stderr,
	})
}

func httpClient(timeoutSeconds int) *http.Client {
	return &http.Client{Timeout: time.Duration(timeoutSeconds) * time.Second}
}

package config

const (
	defaultDataDir = "~/.local/share/questlog"
	defaultLogDir  = "~/.local/share/questlog/logs"

	defaultHLTBBaseURL = "https://howlongtobeat.com"

	// Negative entries expire faster than positive ones: "not found" is a
	// weaker claim than a measured duration.
	defaultHLTBPositiveTTLHours  = 720
	defaultHLTBNegativeTTLHours  = 24
	defaultBuildTTLHours         = 24
	defaultScorePositiveTTLHours = 168
	defaultScoreNegativeTTLHours = 24

	defaultSteamRegion    = "us"
	defaultTimeoutSeconds = 20

	defaultLogFormat = "text"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		HLTB: HLTB{
			BaseURL:          defaultHLTBBaseURL,
			PositiveTTLHours: defaultHLTBPositiveTTLHours,
			NegativeTTLHours: defaultHLTBNegativeTTLHours,
			BuildTTLHours:    defaultBuildTTLHours,
			TimeoutSeconds:   defaultTimeoutSeconds,
		},
		OpenCritic: OpenCritic{
			PositiveTTLHours: defaultScorePositiveTTLHours,
			NegativeTTLHours: defaultScoreNegativeTTLHours,
			TimeoutSeconds:   defaultTimeoutSeconds,
		},
		Steam: Steam{
			Region:         defaultSteamRegion,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

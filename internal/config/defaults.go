package config

const (
	defaultAPIURL           = "https://api.strem.io"
	defaultRequestTimeout   = 20
	defaultDataDir          = "~/.local/share/stremsync"
	defaultWatchedThreshold = 0.7
	defaultCreditsThreshold = 0.9
	defaultCacheTTLHours    = 24
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Stremio: Stremio{
			APIURL:         defaultAPIURL,
			RequestTimeout: defaultRequestTimeout,
		},
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		Playback: Playback{
			WatchedThreshold: defaultWatchedThreshold,
			CreditsThreshold: defaultCreditsThreshold,
		},
		Metadata: Metadata{
			CacheTTLHours: defaultCacheTTLHours,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

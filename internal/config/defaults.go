package config

const (
	defaultDataDir             = "~/.local/share/vpack"
	defaultLogDir              = "~/.local/share/vpack/logs"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultSmoothingWindow     = 5
	defaultSmoothingMajority   = 3
	defaultFallbackMaxWidth    = 100
	defaultFallbackMaxHeight   = 100
	defaultMinDisplaceFrac     = 0.05
	defaultDisplacePx          = 3.0
	defaultConvergenceWindow   = 3
	defaultRecoveryFrames      = 3
	defaultProfileAlpha        = 0.4
	defaultNotifyTimeout       = 10
	defaultRecoveryTimeout     = 30
	defaultRecoveryMaxAttempts = 3
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Engine: Engine{
			SmoothingWindow:   defaultSmoothingWindow,
			SmoothingMajority: defaultSmoothingMajority,
			FallbackMaxWidth:  defaultFallbackMaxWidth,
			FallbackMaxHeight: defaultFallbackMaxHeight,
			MinDisplaceFrac:   defaultMinDisplaceFrac,
			DefaultDisplacePx: defaultDisplacePx,
			ConvergenceWindow: defaultConvergenceWindow,
			RecoveryFrames:    defaultRecoveryFrames,
			ProfileAlpha:      defaultProfileAlpha,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Events:         true,
			Recovery:       true,
			Errors:         true,
		},
		Recovery: Recovery{
			Timeout:     defaultRecoveryTimeout,
			MaxAttempts: defaultRecoveryMaxAttempts,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

package config

const (
	defaultConfigPath   = "~/.config/texturefinder/config.toml"
	projectConfigName   = "texturefinder.toml"
	defaultLogDir       = "."
	defaultLogFile      = "texturefinder.log"
	defaultLogFormat    = "text"
	defaultLogLevel     = "debug"
	defaultMaxThreads   = 4
	defaultShowProgress = true
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
			File:   defaultLogFile,
		},
		Display: Display{
			Progress: defaultShowProgress,
		},
	}
}

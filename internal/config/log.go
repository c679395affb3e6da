package config

// LogConfig controls the zap logger built by the logging package.
type LogConfig struct {
	Level  string
	Dev    bool
	File   string // optional rotating file sink; stdout only when empty
	MaxAge int    // days of rotated files to keep
}

func LoadLogConfig() LogConfig {
	dev := envBool("LOG_DEV", false)
	lvl := envStr("LOG_LEVEL", "")
	if lvl == "" {
		if dev {
			lvl = "debug"
		} else {
			lvl = "info"
		}
	}
	return LogConfig{
		Level:  lvl,
		Dev:    dev,
		File:   envStr("LOG_FILE", ""),
		MaxAge: envInt("LOG_MAX_AGE_DAYS", 7),
	}
}

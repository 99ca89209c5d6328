package config

const (
	defaultConfigPath  = "~/.config/shelve/config.toml"
	projectConfigName  = "shelve.toml"
	defaultLogsDir     = "logs"
	defaultBackend     = BackendJSON
	defaultOnConflict  = ConflictOverwrite
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
	logsDirEnvOverride = "SHELVE_LOGS_DIR"
)

// Record store backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Destination collision policies.
const (
	ConflictOverwrite = "overwrite"
	ConflictFail      = "fail"
)

// Default returns a Config populated with built-in defaults. Categories is
// left empty, which selects the built-in category table.
func Default() Config {
	return Config{
		Paths: Paths{
			LogsDir: defaultLogsDir,
		},
		Store: Store{
			Backend: defaultBackend,
		},
		Organize: Organize{
			OnConflict: defaultOnConflict,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

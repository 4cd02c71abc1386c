package log

const (
	ModeProduction  = "production"
	ModeDevelopment = "development"

	EncodingConsole = "console"
	EncodingJSON    = "json"
)

// Level names accepted by ZapConfig.Level.
const (
	LevelDebug  = "debug"
	LevelInfo   = "info"
	LevelWarn   = "warn"
	LevelError  = "error"
	LevelFatal  = "fatal"
	LevelPanic  = "panic"
	LevelDPanic = "dpanic"
)

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

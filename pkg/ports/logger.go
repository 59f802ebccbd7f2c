// Package ports defines the interfaces the pipeline depends on.
package ports

// LogLevel is the severity of a log message.
type LogLevel int

const (
	// LevelDebug is for stage internals.
	LevelDebug LogLevel = iota
	// LevelInfo is for orchestration steps.
	LevelInfo
	// LevelWarn is for recoverable problems such as a transform fallback.
	LevelWarn
	// LevelError is for failures that stop a render.
	LevelError
	// LevelQuiet suppresses all output.
	LevelQuiet
)

var levelNames = map[LogLevel]string{
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
	LevelQuiet: "quiet",
}

func (l LogLevel) String() string {
	if s, ok := levelNames[l]; ok {
		return s
	}
	return "unknown"
}

// Allows reports whether a logger configured at l emits messages at msg.
func (l LogLevel) Allows(msg LogLevel) bool {
	return l != LevelQuiet && msg >= l
}

// ParseLogLevel parses a level name, defaulting to LevelInfo.
func ParseLogLevel(s string) LogLevel {
	for l, name := range levelNames {
		if name == s {
			return l
		}
	}
	return LevelInfo
}

// Logger abstracts leveled logging. msg is a format string that doubles
// as the translation key.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	// WithComponent returns a Logger that prefixes messages with the component name.
	WithComponent(component string) Logger
}

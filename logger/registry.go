package logger

import (
	"sync"
)

// Components the runtime logs under. The host seeds these after Init;
// everything else derives from the global logger on demand.
var DefaultComponents = []string{"repl", "eval", "pipeline", "process"}

// registry is the global named-logger registry.
var registry = &loggerRegistry{
	loggers: make(map[string]*Logger),
}

type loggerRegistry struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
}

// Register stores a named logger in the registry.
func Register(name string, l *Logger) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.loggers[name] = l
}

// Get retrieves a named logger. If the name is not registered it returns the
// global logger tagged with the requested component name.
func Get(name string) *Logger {
	registry.mu.RLock()
	l, ok := registry.loggers[name]
	registry.mu.RUnlock()
	if ok {
		return l
	}
	return GetGlobalLogger().WithComponent(name)
}

// RegisterDefaults registers named loggers from the global config,
// DefaultComponents when no names are given. Call after Init.
func RegisterDefaults(names ...string) {
	if len(names) == 0 {
		names = DefaultComponents
	}
	for _, name := range names {
		Register(name, GetGlobalLogger().WithComponent(name))
	}
}

package logger

import (
	"sync"
)

// registry holds component loggers shared by every pipeline instance.
var registry = &loggerRegistry{
	loggers: make(map[string]*Logger),
}

type loggerRegistry struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
}

// Register stores a named logger, replacing any previous one.
func Register(name string, l *Logger) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.loggers[name] = l
}

// Get retrieves a named logger. Unknown names resolve to the global logger
// tagged with the component name; the result is cached.
func Get(name string) *Logger {
	registry.mu.RLock()
	l, ok := registry.loggers[name]
	registry.mu.RUnlock()
	if ok {
		return l
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()
	if l, ok := registry.loggers[name]; ok {
		return l
	}
	l = GetGlobalLogger().WithComponent(name)
	registry.loggers[name] = l
	return l
}

// Reset drops every registered logger. Loggers handed out earlier keep
// working.
func Reset() {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.loggers = make(map[string]*Logger)
}

package logger

import "sync"

// named holds loggers registered under a component name. Init clears it so
// registrations never outlive the global logger they were derived from.
var named sync.Map

// Register stores l under name for later Get calls.
func Register(name string, l *Logger) {
	named.Store(name, l)
}

// Get returns the logger registered under name, or the global logger tagged
// with name as its component.
func Get(name string) *Logger {
	if l, ok := named.Load(name); ok {
		return l.(*Logger)
	}
	return GetGlobalLogger().WithComponent(name)
}

func resetNamed() {
	named.Clear()
}

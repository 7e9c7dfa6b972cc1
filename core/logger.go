package core

// Logger is any service that can log messages.
// expected args: error, map[string]interface{}, Person or key/value pairs.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Person identifies the authenticated caller a log entry is about.
type Person struct {
	ID       string
	Username string
}

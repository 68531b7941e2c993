package core

// Logger is the app-wide logging contract; the trailing args may carry
// errors or structured context consumed by the backing service.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

package cluster

// Logger interface for mapper logging
type Logger interface {
	Printf(format string, v ...interface{})
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

type nopLogger struct{}

func (nopLogger) Printf(format string, v ...interface{}) {}
func (nopLogger) Debug(format string, v ...interface{})  {}
func (nopLogger) Info(format string, v ...interface{})   {}
func (nopLogger) Warn(format string, v ...interface{})   {}
func (nopLogger) Error(format string, v ...interface{})  {}

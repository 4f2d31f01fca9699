package telemetry

// Logger interface for decoder logging
type Logger interface {
	Printf(format string, v ...interface{})
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
	DebugCAN(direction string, id uint32, data []byte, length uint8)
}

type nopLogger struct{}

func (nopLogger) Printf(format string, v ...interface{}) {}
func (nopLogger) Debug(format string, v ...interface{})  {}
func (nopLogger) Info(format string, v ...interface{})   {}
func (nopLogger) Warn(format string, v ...interface{})   {}
func (nopLogger) Error(format string, v ...interface{})  {}
func (nopLogger) DebugCAN(direction string, id uint32, data []byte, length uint8) {
}

// debugCANFrame logs a received frame at debug level
func debugCANFrame(logger Logger, direction string, id uint32, data [8]byte, length uint8) {
	if logger != nil {
		logger.DebugCAN(direction, id, data[:], length)
	}
}

package max11300

// Logger receives the driver's diagnostic messages.
// Messages are plain strings so the TinyGo build can avoid fmt.
type Logger interface {
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

var globalLogger Logger = nopLogger{}

// SetLogger replaces the package logger. A nil l silences the driver.
func SetLogger(l Logger) {
	if l == nil {
		globalLogger = nopLogger{}
		return
	}
	globalLogger = l
}

// logErr reports a failed operation together with its cause.
func logErr(op string, err error) {
	if err == nil {
		return
	}
	globalLogger.Error(op + ": " + err.Error())
}

type nopLogger struct{}

func (nopLogger) Debug(string) {}
func (nopLogger) Info(string)  {}
func (nopLogger) Warn(string)  {}
func (nopLogger) Error(string) {}

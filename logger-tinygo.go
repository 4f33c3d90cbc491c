//go:build tinygo

package max11300

import (
	"machine"
)

func init() {
	globalLogger = serialLogger{}
}

// serialLogger writes straight to machine.Serial to keep fmt out of the image.
type serialLogger struct{}

func (serialLogger) write(level, msg string) {
	machine.Serial.Write([]byte("max11300 "))
	machine.Serial.Write([]byte(level))
	machine.Serial.Write([]byte(msg))
	machine.Serial.Write([]byte("\r\n"))
}

func (l serialLogger) Debug(msg string) { l.write("[DEBUG] ", msg) }
func (l serialLogger) Info(msg string)  { l.write("[INFO]  ", msg) }
func (l serialLogger) Warn(msg string)  { l.write("[WARN]  ", msg) }
func (l serialLogger) Error(msg string) { l.write("[ERROR] ", msg) }

//go:build !tinygo

package max11300

import (
	"log"
	"os"
)

func init() {
	globalLogger = &stdLogger{l: log.New(os.Stderr, "max11300 ", log.LstdFlags|log.Lmicroseconds)}
}

// stdLogger writes through the standard library log package.
type stdLogger struct {
	l *log.Logger
}

func (s *stdLogger) Debug(msg string) { s.l.Print("[DEBUG] " + msg) }
func (s *stdLogger) Info(msg string)  { s.l.Print("[INFO]  " + msg) }
func (s *stdLogger) Warn(msg string)  { s.l.Print("[WARN]  " + msg) }
func (s *stdLogger) Error(msg string) { s.l.Print("[ERROR] " + msg) }

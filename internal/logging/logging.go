// Package logging is a small leveled logger built on top of the standard
// library's log package.
package logging

import (
	"log"
	"os"
)

var std = log.New(os.Stderr, "", log.LstdFlags)

// Info logs an informational message.
func Info(msg string) { std.Printf("INFO  %s", msg) }

// Warn logs a warning message.
func Warn(msg string) { std.Printf("WARN  %s", msg) }

// Error logs err at error level.
func Error(err error) {
	if err == nil {
		return
	}
	std.Printf("ERROR %v", err)
}

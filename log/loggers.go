package log

import (
	"fmt"
	"time"
)

const (
	infoHeader  = "[INFO]"
	debugHeader = "[DEBUG]"
	warnHeader  = "[WARN]"
	errorHeader = "[ERROR]"
)

func stage(sl *SubLogger, header, data string) {
	if sl == nil {
		return
	}
	mu.RLock()
	defer mu.RUnlock()
	fmt.Fprintf(output, "%s %s %s %s\n",
		time.Now().Format(timestampFormat),
		sl.name,
		header,
		data)
}

// Info takes a pointer sublogger and writes an info level message
func Info(sl *SubLogger, data string) {
	if sl == nil || !sl.Levels.Info {
		return
	}
	stage(sl, infoHeader, data)
}

// Infof takes a pointer sublogger, format string and args and writes an
// info level message
func Infof(sl *SubLogger, data string, v ...interface{}) {
	if sl == nil || !sl.Levels.Info {
		return
	}
	stage(sl, infoHeader, fmt.Sprintf(data, v...))
}

// Debug takes a pointer sublogger and writes a debug level message
func Debug(sl *SubLogger, data string) {
	if sl == nil || !sl.Levels.Debug {
		return
	}
	stage(sl, debugHeader, data)
}

// Debugf takes a pointer sublogger, format string and args and writes a
// debug level message
func Debugf(sl *SubLogger, data string, v ...interface{}) {
	if sl == nil || !sl.Levels.Debug {
		return
	}
	stage(sl, debugHeader, fmt.Sprintf(data, v...))
}

// Warn takes a pointer sublogger and writes a warning level message
func Warn(sl *SubLogger, data string) {
	if sl == nil || !sl.Levels.Warn {
		return
	}
	stage(sl, warnHeader, data)
}

// Warnf takes a pointer sublogger, format string and args and writes a
// warning level message
func Warnf(sl *SubLogger, data string, v ...interface{}) {
	if sl == nil || !sl.Levels.Warn {
		return
	}
	stage(sl, warnHeader, fmt.Sprintf(data, v...))
}

// Error takes a pointer sublogger and writes an error level message
func Error(sl *SubLogger, data string) {
	if sl == nil || !sl.Levels.Error {
		return
	}
	stage(sl, errorHeader, data)
}

// Errorf takes a pointer sublogger, format string and args and writes an
// error level message
func Errorf(sl *SubLogger, data string, v ...interface{}) {
	if sl == nil || !sl.Levels.Error {
		return
	}
	stage(sl, errorHeader, fmt.Sprintf(data, v...))
}

package log

import (
	"io"
	"os"
	"strings"
	"sync"
)

const timestampFormat = "02/01/2006 15:04:05"

var (
	mu         sync.RWMutex
	output     io.Writer = os.Stdout
	subLoggers           = map[string]*SubLogger{}

	// Global vars related to the logger package
	Global       *SubLogger
	BackTester   *SubLogger
	PortfolioMgr *SubLogger
	ExchangeSys  *SubLogger
	Execution    *SubLogger
	TCA          *SubLogger
	Strategy     *SubLogger
)

// Levels flags each severity on or off for a sublogger
type Levels struct {
	Info  bool
	Debug bool
	Warn  bool
	Error bool
}

// SubLogger defines a sub logger for a subsystem so output can be
// filtered per concern
type SubLogger struct {
	name string
	Levels
}

func init() {
	Global = NewSubLogger("LOG")
	BackTester = NewSubLogger("BACKTESTER")
	PortfolioMgr = NewSubLogger("PORTFOLIO")
	ExchangeSys = NewSubLogger("EXCHANGE")
	Execution = NewSubLogger("EXECUTION")
	TCA = NewSubLogger("TCA")
	Strategy = NewSubLogger("STRATEGY")
}

// NewSubLogger registers a new sublogger with all levels bar debug
// enabled, returning the existing registration when the name is taken
func NewSubLogger(name string) *SubLogger {
	mu.Lock()
	defer mu.Unlock()
	name = strings.ToUpper(name)
	if sl, ok := subLoggers[name]; ok {
		return sl
	}
	sl := &SubLogger{
		name: name,
		Levels: Levels{
			Info:  true,
			Warn:  true,
			Error: true,
		},
	}
	subLoggers[name] = sl
	return sl
}

// SetLevels overwrites the enabled levels of a sublogger
func (sl *SubLogger) SetLevels(l Levels) {
	mu.Lock()
	defer mu.Unlock()
	sl.Levels = l
}

// SetOutput redirects all logging output, primarily for tests
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

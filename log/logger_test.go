package log

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

// not parallel, the tests below redirect the shared output writer

func TestNewSubLoggerRegistry(t *testing.T) {
	sl := NewSubLogger("registrytest")
	assert.NotNil(t, sl, "NewSubLogger must return a sublogger")
	assert.True(t, sl.Info, "info should default on")
	assert.False(t, sl.Debug, "debug should default off")
	assert.Same(t, sl, NewSubLogger("REGISTRYTEST"),
		"re-registering a name returns the existing sublogger")
}

func TestLevelsFilterOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)

	sl := NewSubLogger("leveltest")
	Infof(sl, "hello %v", "world")
	assert.Contains(t, buf.String(), "hello world", "enabled info should log")
	assert.Contains(t, buf.String(), "LEVELTEST", "output should carry the sublogger name")

	buf.Reset()
	Debug(sl, "quiet")
	assert.Empty(t, buf.String(), "disabled debug should stay silent")

	sl.SetLevels(Levels{Debug: true})
	buf.Reset()
	Debug(sl, "loud")
	Warn(sl, "also quiet")
	assert.Contains(t, buf.String(), "loud", "enabled debug should log")
	assert.NotContains(t, buf.String(), "also quiet", "disabled warn should stay silent")
}

func TestNilSubLogger(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)

	Info(nil, "dropped")
	Errorf(nil, "dropped %v", "too")
	assert.Empty(t, buf.String(), "nil subloggers must drop messages")
}

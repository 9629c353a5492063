package log

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.InfoLevel, ParseLevel("info"))
	assert.Equal(t, logrus.WarnLevel, ParseLevel(" warn "))
	assert.Equal(t, logrus.DebugLevel, ParseLevel(""))
	assert.Equal(t, logrus.DebugLevel, ParseLevel("chatty"))
}

func TestNewLoggerIsShared(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("LOG_LEVEL", "error")

	first := NewLogger()
	assert.Same(t, first, NewLogger())
	assert.Equal(t, logrus.ErrorLevel, first.GetLevel())
}

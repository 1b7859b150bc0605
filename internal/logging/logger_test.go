package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, GetLevel("DEBUG"))
	assert.Equal(t, logrus.WarnLevel, GetLevel("warning"))
	assert.Equal(t, logrus.TraceLevel, GetLevel("trace"))
	assert.Equal(t, logrus.InfoLevel, GetLevel(""))
	assert.Equal(t, logrus.InfoLevel, GetLevel("nonsense"))
	assert.Equal(t, logrus.ErrorLevel, GetLevel(" error "))
}

func TestSetup_WritesToFile(t *testing.T) {
	prevOut := logrus.StandardLogger().Out
	prevLevel := logrus.GetLevel()
	prevFormatter := logrus.StandardLogger().Formatter
	t.Cleanup(func() {
		logrus.SetOutput(prevOut)
		logrus.SetLevel(prevLevel)
		logrus.SetFormatter(prevFormatter)
	})

	logFile := filepath.Join(t.TempDir(), "scheduler")
	Setup(LoggerSetupParams{
		LogFileName:   logFile,
		LogLevel:      "debug",
		LogFormatJSON: true,
	})
	logrus.WithField("rule_id", "abc").Debug("hello")

	data, err := os.ReadFile(logFile + ".log")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"rule_id":"abc"`)
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
}

func TestSetup_StdoutOnlyWithoutFile(t *testing.T) {
	prevOut := logrus.StandardLogger().Out
	prevLevel := logrus.GetLevel()
	t.Cleanup(func() {
		logrus.SetOutput(prevOut)
		logrus.SetLevel(prevLevel)
	})

	Setup(LoggerSetupParams{LogLevel: "bogus"})
	assert.Equal(t, os.Stdout, logrus.StandardLogger().Out)
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
}

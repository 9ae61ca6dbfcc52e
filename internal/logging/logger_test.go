package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	t.Cleanup(func() { Init(Options{Level: "info"}) })

	file := filepath.Join(t.TempDir(), "app.log")
	Init(Options{Level: "debug", Format: "json", File: file})

	assert.Equal(t, logrus.DebugLevel, Logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, Logger.Formatter)

	Logger.WithField("task_id", 7).Info("task created")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"task_id":7`)
	assert.Contains(t, string(data), "task created")
}

func TestInitUnknownLevel(t *testing.T) {
	t.Cleanup(func() { Init(Options{Level: "info"}) })

	Init(Options{Level: "chatty"})
	assert.Equal(t, logrus.InfoLevel, Logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, Logger.Formatter)
}

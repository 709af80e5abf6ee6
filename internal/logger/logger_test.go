package logger_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/zach-dev/internal/logger"
)

func TestNew_WritesJSONAtConfiguredLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.log")

	log, err := logger.New(logger.Config{Level: "warn", OutputPaths: []string{path}})
	require.NoError(t, err)

	log.Info("dropped below level")
	log.With(logger.String("source", "blogger")).Warn("fetch retry", logger.Int("attempt", 1))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped below level")
	assert.Contains(t, string(data), `"msg":"fetch retry"`)
	assert.Contains(t, string(data), `"source":"blogger"`)
	assert.Contains(t, string(data), `"attempt":1`)
}

func TestNewNop_DiscardsWithoutPanicking(t *testing.T) {
	log := logger.NewNop()
	log.Error("nothing", logger.Error(errors.New("boom")))
	assert.NoError(t, log.Sync())
}

package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger_File(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "app.log")

	lg, err := NewLogger(Config{Level: "info", File: file, Production: true})
	require.NoError(t, err)

	lg.Info("hello", zap.Int64(FieldNoteID, 7))
	lg.Debug("hidden")
	_ = lg.Sync()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"noteId":7`)
	assert.NotContains(t, string(data), "hidden")
}

func TestNewLogger_BadLevel(t *testing.T) {
	_, err := NewLogger(Config{Level: "loud"})
	assert.Error(t, err)
}

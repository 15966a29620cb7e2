package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/haierkeys/simple-note-service/pkg/safe_close"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestServerAbort_RunsClosers(t *testing.T) {
	s := &Server{logger: zap.NewNop(), sc: safe_close.NewSafeClose()}

	var closed bool
	s.sc.AttachCloser(func(ctx context.Context) error {
		closed = true
		return nil
	})

	cause := errors.New("boom")
	err := s.abort(cause)
	assert.ErrorIs(t, err, cause)
	assert.True(t, closed)
	assert.ErrorIs(t, s.sc.Err(), cause)
}

func TestNewServer_BadCronReleasesResources(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "logs", "log.log")
	configFile := filepath.Join(dir, "config.yaml")

	config := `
server:
  run-mode: test
  http-port: ""
  private-http-listen: ""
log:
  level: info
  file: ` + logFile + `
database:
  type: sqlite
  path: ` + filepath.Join(dir, "notes.db") + `
app:
  maintenance-cron: "not a schedule"
tracer:
  enabled: true
  jaeger-agent: "127.0.0.1:6831"
`
	require.NoError(t, os.WriteFile(configFile, []byte(config), 0o644))

	s, err := NewServer(&runFlags{config: configFile})
	require.Error(t, err)
	assert.Nil(t, s)
	assert.Contains(t, err.Error(), "initScheduler")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "server init failed")
}

package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/haierkeys/simple-note-service/internal/app"
	"github.com/haierkeys/simple-note-service/internal/dao"
	"github.com/haierkeys/simple-note-service/pkg/safe_close"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingTask struct {
	schedule string
	startup  bool
	runs     atomic.Int32
	err      error
	panics   bool
}

func (t *countingTask) Name() string       { return "counting" }
func (t *countingTask) Schedule() string   { return t.schedule }
func (t *countingTask) IsStartupRun() bool { return t.startup }
func (t *countingTask) Run(ctx context.Context) error {
	t.runs.Add(1)
	if t.panics {
		panic("boom")
	}
	return t.err
}

func newTestApp(t *testing.T, body string) *app.App {
	t.Helper()

	cfg, err := app.ParseConfig([]byte(body))
	require.NoError(t, err)

	db, err := dao.NewDBEngineWithConfig(cfg.GetDatabaseConfig(), nil)
	require.NoError(t, err)

	a, err := app.NewApp(cfg, zap.NewNop(), db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })
	return a
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	s := NewScheduler(zap.NewNop(), safe_close.NewSafeClose())
	assert.Error(t, s.AddTask(&countingTask{schedule: "not a cron"}))
	assert.Empty(t, s.tasks)
}

func TestScheduler_StartupRunAndStop(t *testing.T) {
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.NewNop(), sc)

	startup := &countingTask{schedule: "@every 1h", startup: true, err: errors.New("ignored")}
	panicking := &countingTask{schedule: "@every 1h", startup: true, panics: true}
	idle := &countingTask{schedule: "@every 1h"}
	require.NoError(t, s.AddTask(startup))
	require.NoError(t, s.AddTask(panicking))
	require.NoError(t, s.AddTask(idle))

	s.Start()

	assert.Eventually(t, func() bool {
		return startup.runs.Load() == 1 && panicking.runs.Load() == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(0), idle.runs.Load())

	sc.SendCloseSignal(nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, sc.WaitClosed(ctx))
}

func TestScheduler_CronRun(t *testing.T) {
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.NewNop(), sc)

	tick := &countingTask{schedule: "@every 1s"}
	require.NoError(t, s.AddTask(tick))
	s.Start()
	defer func() {
		sc.SendCloseSignal(nil)
		_ = sc.WaitClosed(context.Background())
	}()

	assert.Eventually(t, func() bool { return tick.runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}

func TestDbMaintenanceTask(t *testing.T) {
	a := newTestApp(t, "database:\n  path: \":memory:\"\n")

	tk, err := NewDbMaintenanceTask(a)
	require.NoError(t, err)
	require.NotNil(t, tk)
	assert.Equal(t, "@every 1h", tk.Schedule())
	assert.NoError(t, tk.Run(context.Background()))
}

func TestDbMaintenanceTask_Disabled(t *testing.T) {
	a := newTestApp(t, "database:\n  path: \":memory:\"\napp:\n  maintenance-cron: \"\"\n")

	tk, err := NewDbMaintenanceTask(a)
	require.NoError(t, err)
	assert.Nil(t, tk)

	m := NewManager(zap.NewNop(), safe_close.NewSafeClose(), a)
	require.NoError(t, m.RegisterTasks())
	assert.Empty(t, m.scheduler.tasks)
}

func TestManager_RegisterTasks(t *testing.T) {
	a := newTestApp(t, "database:\n  path: \":memory:\"\n")
	sc := safe_close.NewSafeClose()

	m := NewManager(zap.NewNop(), sc, a)
	require.NoError(t, m.RegisterTasks())
	require.Len(t, m.scheduler.tasks, 1)
	assert.Equal(t, "DbMaintenance", m.scheduler.tasks[0].Name())

	m.Start()
	sc.SendCloseSignal(nil)
	assert.NoError(t, sc.WaitClosed(context.Background()))
}

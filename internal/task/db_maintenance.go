package task

import (
	"context"
	"time"

	"github.com/haierkeys/simple-note-service/internal/app"
	"github.com/haierkeys/simple-note-service/pkg/logger"

	"go.uber.org/zap"
)

func init() {
	Register(NewDbMaintenanceTask)
}

// DbMaintenanceTask 数据库维护任务
// SQLite 下截断 WAL 文件并更新查询统计，其他数据库只检查连接
type DbMaintenanceTask struct {
	app      *app.App
	schedule string
}

// Name 返回任务名称
func (t *DbMaintenanceTask) Name() string {
	return "DbMaintenance"
}

// Schedule 返回 cron 表达式
func (t *DbMaintenanceTask) Schedule() string {
	return t.schedule
}

// IsStartupRun 是否立即执行一次
func (t *DbMaintenanceTask) IsStartupRun() bool {
	return false
}

// Run 执行维护
func (t *DbMaintenanceTask) Run(ctx context.Context) error {
	start := time.Now()
	if err := t.app.Dao.Maintain(ctx); err != nil {
		return err
	}

	t.app.Logger().Info("task log",
		zap.String("task", t.Name()),
		zap.Duration(logger.FieldDuration, time.Since(start)),
		zap.String("msg", "success"))
	return nil
}

// NewDbMaintenanceTask 创建维护任务，app.maintenance-cron 为空时不启用
func NewDbMaintenanceTask(appContainer *app.App) (Task, error) {
	schedule := appContainer.Config().App.MaintenanceCron
	if schedule == "" {
		return nil, nil
	}
	return &DbMaintenanceTask{app: appContainer, schedule: schedule}, nil
}

// Package task 定时后台任务
package task

import (
	"context"

	"github.com/haierkeys/simple-note-service/pkg/safe_close"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Task 定义任务接口
type Task interface {
	Name() string                  // 任务名称
	Run(ctx context.Context) error // 执行任务
	Schedule() string              // cron 表达式，支持 @every 1h 等描述符
	IsStartupRun() bool            // 是否立即执行一次
}

// Scheduler 任务调度器
type Scheduler struct {
	logger *zap.Logger
	cron   *cron.Cron
	tasks  []Task
	sc     *safe_close.SafeClose
}

// NewScheduler 创建任务调度器
func NewScheduler(logger *zap.Logger, sc *safe_close.SafeClose) *Scheduler {
	return &Scheduler{
		logger: logger,
		// 上一次执行未结束时跳过本次
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		sc:   sc,
	}
}

// AddTask 添加任务，表达式不合法时返回错误
func (s *Scheduler) AddTask(task Task) error {
	if _, err := s.cron.AddFunc(task.Schedule(), func() { s.run(task, "cronRun") }); err != nil {
		return errors.Wrapf(err, "task %s schedule %q", task.Name(), task.Schedule())
	}
	s.tasks = append(s.tasks, task)
	return nil
}

// Start 启动所有任务，收到关闭信号后等待正在执行的任务结束
func (s *Scheduler) Start() {
	if len(s.tasks) == 0 {
		s.logger.Info("no tasks to schedule")
		return
	}

	s.logger.Info("tasks starting", zap.Int("count", len(s.tasks)))

	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()

		for _, task := range s.tasks {
			if task.IsStartupRun() {
				go s.run(task, "startupRun")
			}
		}

		s.cron.Start()
		<-closeSignal

		<-s.cron.Stop().Done()
		s.logger.Info("tasks stopped")
	})
}

// run 执行一次任务，panic 只记录日志
func (s *Scheduler) run(task Task, mode string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("task panic",
				zap.String("name", task.Name()),
				zap.String("mode", mode),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()

	s.logger.Debug("task running", zap.String("name", task.Name()), zap.String("mode", mode))
	if err := task.Run(context.Background()); err != nil {
		s.logger.Error("task running error",
			zap.String("name", task.Name()),
			zap.String("mode", mode),
			zap.Error(err))
	}
}

// Package scheduler 提供定时任务调度
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dumeirei/lodge-booking-backend/internal/common/logger"
)

// 单次任务执行的超时上限
const taskTimeout = 5 * time.Minute

// task 注册到调度器上的一个周期任务
type task struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context) error
}

// Scheduler 定时任务调度器，每个任务独立 goroutine 周期执行
type Scheduler struct {
	tasks  []task
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler 创建调度器
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{ctx: ctx, cancel: cancel}
}

// AddTask 注册周期任务，需在 Start 之前调用
func (s *Scheduler) AddTask(name string, interval time.Duration, run func(ctx context.Context) error) {
	s.tasks = append(s.tasks, task{name: name, interval: interval, run: run})
}

// Start 启动所有已注册的任务
func (s *Scheduler) Start() {
	logger.Info("定时任务调度器启动", zap.Int("tasks", len(s.tasks)))

	for i := range s.tasks {
		t := s.tasks[i]
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.loop(t)
		}()
	}
}

// Stop 停止调度器并等待所有任务退出
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	logger.Info("定时任务调度器已停止")
}

// loop 周期执行单个任务，启动时先跑一次
func (s *Scheduler) loop(t task) {
	logger.Info("定时任务已注册",
		zap.String("task", t.name),
		zap.Duration("interval", t.interval),
	)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	s.execute(t)

	for {
		select {
		case <-s.ctx.Done():
			logger.Info("定时任务退出", zap.String("task", t.name))
			return
		case <-ticker.C:
			s.execute(t)
		}
	}
}

func (s *Scheduler) execute(t task) {
	ctx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	start := time.Now()
	if err := t.run(ctx); err != nil {
		logger.Error("定时任务执行失败",
			zap.String("task", t.name),
			zap.Error(err),
		)
		return
	}
	logger.Debug("定时任务执行完成",
		zap.String("task", t.name),
		zap.Duration("cost", time.Since(start)),
	)
}

// Package scheduler 提供定时任务
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dumeirei/lodge-booking-backend/internal/common/config"
	"github.com/dumeirei/lodge-booking-backend/internal/common/logger"
	"github.com/dumeirei/lodge-booking-backend/internal/common/metrics"
	"github.com/dumeirei/lodge-booking-backend/internal/models"
	"github.com/dumeirei/lodge-booking-backend/internal/repository"
	bookingService "github.com/dumeirei/lodge-booking-backend/internal/service/booking"
)

// 操作日志保留天数
const operationLogRetentionDays = 90

// TaskHandler 任务处理器
type TaskHandler struct {
	bookingRepo      *repository.BookingRepository
	operationLogRepo *repository.OperationLogRepository
	bookingService   *bookingService.BookingService
}

// NewTaskHandler 创建任务处理器
func NewTaskHandler(
	bookingRepo *repository.BookingRepository,
	operationLogRepo *repository.OperationLogRepository,
	bookingSvc *bookingService.BookingService,
) *TaskHandler {
	return &TaskHandler{
		bookingRepo:      bookingRepo,
		operationLogRepo: operationLogRepo,
		bookingService:   bookingSvc,
	}
}

// ExpirePendingBookings 过期超时未确认的预订
func (h *TaskHandler) ExpirePendingBookings(ctx context.Context) error {
	count, err := h.bookingService.ExpirePendingBookings(ctx, 100)
	if err != nil {
		return err
	}
	if count > 0 {
		logger.Info("批量过期超时预订", zap.Int("count", count))
	}
	return nil
}

// CompletePastBookings 完成已过退房日的预订
func (h *TaskHandler) CompletePastBookings(ctx context.Context) error {
	count, err := h.bookingService.CompletePastBookings(ctx, 100)
	if err != nil {
		return err
	}
	if count > 0 {
		logger.Info("批量完成已退房预订", zap.Int("count", count))
	}
	return nil
}

// RefreshPendingGauge 刷新待确认预订数指标
func (h *TaskHandler) RefreshPendingGauge(ctx context.Context) error {
	count, err := h.bookingRepo.CountByStatus(ctx, models.BookingStatusPending)
	if err != nil {
		return err
	}
	if m := metrics.GetMetrics(); m != nil {
		m.SetPendingBookings(float64(count))
	}
	return nil
}

// CleanOperationLogs 清理超过保留期的操作日志
func (h *TaskHandler) CleanOperationLogs(ctx context.Context) error {
	before := time.Now().AddDate(0, 0, -operationLogRetentionDays)

	deleted, err := h.operationLogRepo.DeleteBefore(ctx, before)
	if err != nil {
		return err
	}
	if deleted > 0 {
		logger.Info("清理过期操作日志",
			zap.Int64("deleted", deleted),
			zap.String("before", before.Format("2006-01-02")),
		)
	}
	return nil
}

// SetupTasks 注册全部定时任务
func SetupTasks(scheduler *Scheduler, handler *TaskHandler, cfg config.BookingConfig) {
	expireInterval := time.Duration(cfg.ExpireCheckInterval) * time.Minute
	if expireInterval <= 0 {
		expireInterval = 10 * time.Minute
	}

	// 定期过期超时未确认的预订
	scheduler.AddTask("ExpirePendingBookings", expireInterval, handler.ExpirePendingBookings)

	// 每小时完成已过退房日的预订
	scheduler.AddTask("CompletePastBookings", time.Hour, handler.CompletePastBookings)

	// 每分钟刷新待确认预订数指标
	scheduler.AddTask("RefreshPendingGauge", time.Minute, handler.RefreshPendingGauge)

	// 每天清理过期操作日志
	scheduler.AddTask("CleanOperationLogs", 24*time.Hour, handler.CleanOperationLogs)
}

// Package repository 提供数据访问层
package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/lodge-booking-backend/internal/models"
)

// OperationLogRepository 操作日志仓储
type OperationLogRepository struct {
	db *gorm.DB
}

// NewOperationLogRepository 创建操作日志仓储
func NewOperationLogRepository(db *gorm.DB) *OperationLogRepository {
	return &OperationLogRepository{db: db}
}

// OperationLogFilter 日志查询条件，零值字段不参与过滤
type OperationLogFilter struct {
	AdminID    int64
	Module     string
	Action     string
	TargetType string
	TargetID   int64
	Since      *time.Time
	Until      *time.Time
}

func (f *OperationLogFilter) apply(query *gorm.DB) *gorm.DB {
	if f == nil {
		return query
	}
	if f.AdminID > 0 {
		query = query.Where("admin_id = ?", f.AdminID)
	}
	if f.Module != "" {
		query = query.Where("module = ?", f.Module)
	}
	if f.Action != "" {
		query = query.Where("action = ?", f.Action)
	}
	if f.TargetType != "" {
		query = query.Where("target_type = ?", f.TargetType)
	}
	if f.TargetID > 0 {
		query = query.Where("target_id = ?", f.TargetID)
	}
	if f.Since != nil {
		query = query.Where("created_at >= ?", *f.Since)
	}
	if f.Until != nil {
		query = query.Where("created_at <= ?", *f.Until)
	}
	return query
}

// Create 创建操作日志
func (r *OperationLogRepository) Create(ctx context.Context, log *models.OperationLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// GetByID 根据 ID 获取操作日志
func (r *OperationLogRepository) GetByID(ctx context.Context, id int64) (*models.OperationLog, error) {
	var log models.OperationLog
	if err := r.db.WithContext(ctx).Preload("Admin").First(&log, id).Error; err != nil {
		return nil, err
	}
	return &log, nil
}

// List 按条件分页获取操作日志，按 ID 倒序并预加载管理员信息
func (r *OperationLogRepository) List(ctx context.Context, offset, limit int, filter *OperationLogFilter) ([]*models.OperationLog, int64, error) {
	query := filter.apply(r.db.WithContext(ctx).Model(&models.OperationLog{}))
	return r.page(query, offset, limit)
}

// ListByTarget 获取针对某个目标的操作日志
func (r *OperationLogRepository) ListByTarget(ctx context.Context, targetType string, targetID int64, offset, limit int) ([]*models.OperationLog, int64, error) {
	filter := &OperationLogFilter{TargetType: targetType, TargetID: targetID}
	return r.List(ctx, offset, limit, filter)
}

func (r *OperationLogRepository) page(query *gorm.DB, offset, limit int) ([]*models.OperationLog, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []*models.OperationLog
	err := query.Preload("Admin").Order("id DESC").Offset(offset).Limit(limit).Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// DeleteBefore 删除指定时间之前的日志
func (r *OperationLogRepository) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", before).
		Delete(&models.OperationLog{})
	return result.RowsAffected, result.Error
}

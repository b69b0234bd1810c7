// Package repository 提供数据访问层
package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/lodge-booking-backend/internal/models"
)

// PriceOverrideRepository 价格覆盖仓储
type PriceOverrideRepository struct {
	db *gorm.DB
}

// NewPriceOverrideRepository 创建价格覆盖仓储
func NewPriceOverrideRepository(db *gorm.DB) *PriceOverrideRepository {
	return &PriceOverrideRepository{db: db}
}

// Create 创建覆盖记录
func (r *PriceOverrideRepository) Create(ctx context.Context, override *models.PriceOverride) error {
	return r.db.WithContext(ctx).Create(override).Error
}

// GetByID 根据 ID 获取覆盖记录
func (r *PriceOverrideRepository) GetByID(ctx context.Context, id int64) (*models.PriceOverride, error) {
	var override models.PriceOverride
	err := r.db.WithContext(ctx).First(&override, id).Error
	if err != nil {
		return nil, err
	}
	return &override, nil
}

// GetByDateAndType 根据日期和资源类型获取覆盖记录
func (r *PriceOverrideRepository) GetByDateAndType(ctx context.Context, date, resourceType string) (*models.PriceOverride, error) {
	var override models.PriceOverride
	err := r.db.WithContext(ctx).
		Where("date = ? AND resource_type = ?", date, resourceType).
		First(&override).Error
	if err != nil {
		return nil, err
	}
	return &override, nil
}

// GetAll 获取全部覆盖记录
func (r *PriceOverrideRepository) GetAll(ctx context.Context) ([]*models.PriceOverride, error) {
	var overrides []*models.PriceOverride
	err := r.db.WithContext(ctx).
		Order("date ASC, resource_type ASC").
		Find(&overrides).Error
	return overrides, err
}

// GetByDateRange 获取日期区间内的覆盖记录（左闭右开）
func (r *PriceOverrideRepository) GetByDateRange(ctx context.Context, from, to string) ([]*models.PriceOverride, error) {
	var overrides []*models.PriceOverride
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date < ?", from, to).
		Order("date ASC, resource_type ASC").
		Find(&overrides).Error
	return overrides, err
}

// Update 更新覆盖记录
func (r *PriceOverrideRepository) Update(ctx context.Context, override *models.PriceOverride) error {
	return r.db.WithContext(ctx).Save(override).Error
}

// Upsert 按 (日期, 资源类型) 创建或更新覆盖记录
func (r *PriceOverrideRepository) Upsert(ctx context.Context, override *models.PriceOverride) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.PriceOverride
		err := tx.Where("date = ? AND resource_type = ?", override.Date, override.ResourceType).
			First(&existing).Error
		if err == nil {
			override.ID = existing.ID
			override.CreatedAt = existing.CreatedAt
			return tx.Save(override).Error
		}
		if err == gorm.ErrRecordNotFound {
			return tx.Create(override).Error
		}
		return err
	})
}

// Delete 删除覆盖记录
func (r *PriceOverrideRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.PriceOverride{}, id).Error
}

// DeleteByDateAndType 根据日期和资源类型删除覆盖记录
func (r *PriceOverrideRepository) DeleteByDateAndType(ctx context.Context, date, resourceType string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("date = ? AND resource_type = ?", date, resourceType).
		Delete(&models.PriceOverride{})
	return result.RowsAffected, result.Error
}

// DeleteBefore 删除指定日期之前的覆盖记录（历史清理）
func (r *PriceOverrideRepository) DeleteBefore(ctx context.Context, date string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("date < ?", date).
		Delete(&models.PriceOverride{})
	return result.RowsAffected, result.Error
}

// ExistsByDateAndType 检查覆盖记录是否存在
func (r *PriceOverrideRepository) ExistsByDateAndType(ctx context.Context, date, resourceType string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PriceOverride{}).
		Where("date = ? AND resource_type = ?", date, resourceType).
		Count(&count).Error
	return count > 0, err
}

// PriceOverrideListFilters 覆盖记录列表筛选条件
type PriceOverrideListFilters struct {
	ResourceType string
	DateFrom     string
	DateTo       string
}

// List 获取覆盖记录列表
func (r *PriceOverrideRepository) List(ctx context.Context, offset, limit int, filters *PriceOverrideListFilters) ([]*models.PriceOverride, int64, error) {
	var overrides []*models.PriceOverride
	var total int64

	query := r.db.WithContext(ctx).Model(&models.PriceOverride{})

	if filters != nil {
		if filters.ResourceType != "" {
			query = query.Where("resource_type = ?", filters.ResourceType)
		}
		if filters.DateFrom != "" {
			query = query.Where("date >= ?", filters.DateFrom)
		}
		if filters.DateTo != "" {
			query = query.Where("date < ?", filters.DateTo)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("date ASC, resource_type ASC").Offset(offset).Limit(limit).Find(&overrides).Error; err != nil {
		return nil, 0, err
	}

	return overrides, total, nil
}

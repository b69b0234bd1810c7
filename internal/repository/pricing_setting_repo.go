// Package repository 提供数据访问层
package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/lodge-booking-backend/internal/models"
)

// PricingSettingRepository 定价常量仓储
type PricingSettingRepository struct {
	db *gorm.DB
}

// NewPricingSettingRepository 创建定价常量仓储
func NewPricingSettingRepository(db *gorm.DB) *PricingSettingRepository {
	return &PricingSettingRepository{db: db}
}

// Create 创建配置
func (r *PricingSettingRepository) Create(ctx context.Context, setting *models.PricingSetting) error {
	return r.db.WithContext(ctx).Create(setting).Error
}

// GetByKey 根据键获取配置
func (r *PricingSettingRepository) GetByKey(ctx context.Context, key string) (*models.PricingSetting, error) {
	var setting models.PricingSetting
	err := r.db.WithContext(ctx).
		Where("\"key\" = ?", key).
		First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// GetAll 获取全部配置
func (r *PricingSettingRepository) GetAll(ctx context.Context) ([]*models.PricingSetting, error) {
	var settings []*models.PricingSetting
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&settings).Error
	return settings, err
}

// UpdateValue 更新配置值
func (r *PricingSettingRepository) UpdateValue(ctx context.Context, key, value string) error {
	return r.db.WithContext(ctx).Model(&models.PricingSetting{}).
		Where("\"key\" = ?", key).
		Update("value", value).Error
}

// BatchUpsert 批量创建或更新配置
func (r *PricingSettingRepository) BatchUpsert(ctx context.Context, settings []*models.PricingSetting) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, setting := range settings {
			var existing models.PricingSetting
			err := tx.Where("\"key\" = ?", setting.Key).First(&existing).Error
			if err == nil {
				setting.ID = existing.ID
				setting.CreatedAt = existing.CreatedAt
				if err := tx.Save(setting).Error; err != nil {
					return err
				}
			} else if err == gorm.ErrRecordNotFound {
				if err := tx.Create(setting).Error; err != nil {
					return err
				}
			} else {
				return err
			}
		}
		return nil
	})
}

// ExistsByKey 检查配置是否存在
func (r *PricingSettingRepository) ExistsByKey(ctx context.Context, key string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PricingSetting{}).
		Where("\"key\" = ?", key).
		Count(&count).Error
	return count > 0, err
}

// Delete 删除配置
func (r *PricingSettingRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).
		Where("\"key\" = ?", key).
		Delete(&models.PricingSetting{}).Error
}

// Package pricing 提供定价管理服务
package pricing

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/lodge-booking-backend/internal/common/cache"
	"github.com/dumeirei/lodge-booking-backend/internal/common/errors"
	"github.com/dumeirei/lodge-booking-backend/internal/common/logger"
	"github.com/dumeirei/lodge-booking-backend/internal/models"
	engine "github.com/dumeirei/lodge-booking-backend/internal/pricing"
	"github.com/dumeirei/lodge-booking-backend/internal/repository"
)

// overridesCacheTTL 覆盖集合缓存时间
const overridesCacheTTL = 5 * time.Minute

// OverrideService 价格覆盖服务
type OverrideService struct {
	overrideRepo *repository.PriceOverrideRepository
	useCache     bool
}

// NewOverrideService 创建价格覆盖服务
func NewOverrideService(overrideRepo *repository.PriceOverrideRepository) *OverrideService {
	return &OverrideService{
		overrideRepo: overrideRepo,
		useCache:     cache.GetClient() != nil,
	}
}

// UpsertOverrideRequest 写入覆盖请求
// 同一 (日期, 资源类型) 重复写入按更新处理
type UpsertOverrideRequest struct {
	Date         string `json:"date" binding:"required"`
	ResourceType string `json:"resource_type" binding:"required"`
	Price        int64  `json:"price" binding:"required"`
	MaxGuests    *int   `json:"max_guests"`
	Remark       string `json:"remark"`
}

// Upsert 创建或更新覆盖记录
func (s *OverrideService) Upsert(ctx context.Context, req *UpsertOverrideRequest) (*models.PriceOverride, error) {
	if _, err := engine.ParseDate(req.Date); err != nil {
		return nil, errors.ErrInvalidParams.WithMessage("日期格式必须为 YYYY-MM-DD")
	}
	if req.ResourceType != models.ResourceTypeRoom && req.ResourceType != models.ResourceTypeCamping {
		return nil, errors.ErrInvalidResourceType
	}
	if req.Price <= 0 {
		return nil, errors.ErrMalformedOverride.WithMessage("覆盖价格必须大于 0")
	}
	if req.MaxGuests != nil {
		if req.ResourceType != models.ResourceTypeRoom {
			return nil, errors.ErrMalformedOverride.WithMessage("仅房间覆盖可设置最大入住人数")
		}
		if *req.MaxGuests <= 0 {
			return nil, errors.ErrMalformedOverride.WithMessage("最大入住人数必须大于 0")
		}
	}

	override := &models.PriceOverride{
		Date:         req.Date,
		ResourceType: req.ResourceType,
		Price:        req.Price,
		MaxGuests:    req.MaxGuests,
	}
	if req.Remark != "" {
		override.Remark = &req.Remark
	}

	if err := s.overrideRepo.Upsert(ctx, override); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	s.invalidate(ctx)
	return override, nil
}

// Delete 删除覆盖记录
func (s *OverrideService) Delete(ctx context.Context, date, resourceType string) error {
	affected, err := s.overrideRepo.DeleteByDateAndType(ctx, date, resourceType)
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	if affected == 0 {
		return errors.ErrOverrideNotFound
	}
	s.invalidate(ctx)
	return nil
}

// GetByDateAndType 获取单条覆盖记录
func (s *OverrideService) GetByDateAndType(ctx context.Context, date, resourceType string) (*models.PriceOverride, error) {
	override, err := s.overrideRepo.GetByDateAndType(ctx, date, resourceType)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrOverrideNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return override, nil
}

// List 获取覆盖记录列表
func (s *OverrideService) List(ctx context.Context, page, pageSize int, resourceType, dateFrom, dateTo string) ([]*models.PriceOverride, int64, error) {
	offset := (page - 1) * pageSize
	filters := &repository.PriceOverrideListFilters{
		ResourceType: resourceType,
		DateFrom:     dateFrom,
		DateTo:       dateTo,
	}
	return s.overrideRepo.List(ctx, offset, pageSize, filters)
}

// GetEngineOverrides 获取全部覆盖并转换为引擎输入
// 存储层已保证日期格式合法，解析失败的记录跳过并告警
func (s *OverrideService) GetEngineOverrides(ctx context.Context) ([]engine.Override, error) {
	var records []*models.PriceOverride

	cached := false
	if s.useCache {
		if err := cache.Get(ctx, cache.KeyPrefixOverrides, &records); err == nil {
			cached = true
		}
	}

	if !cached {
		var err error
		records, err = s.overrideRepo.GetAll(ctx)
		if err != nil {
			return nil, errors.ErrDatabaseError.WithError(err)
		}
		if s.useCache {
			_ = cache.Set(ctx, cache.KeyPrefixOverrides, records, overridesCacheTTL)
		}
	}

	overrides := make([]engine.Override, 0, len(records))
	for _, record := range records {
		date, err := engine.ParseDate(record.Date)
		if err != nil {
			logger.Warn("覆盖记录日期非法",
				zap.Int64("id", record.ID),
				zap.String("date", record.Date),
			)
			continue
		}
		overrides = append(overrides, engine.Override{
			Date:         date,
			ResourceType: record.ResourceType,
			Price:        record.Price,
			MaxGuests:    record.MaxGuests,
		})
	}
	return overrides, nil
}

// invalidate 清除覆盖缓存并递增定价数据版本号
func (s *OverrideService) invalidate(ctx context.Context) {
	if !s.useCache {
		return
	}
	_ = cache.Delete(ctx, cache.KeyPrefixOverrides)
	if _, err := cache.Incr(ctx, cache.KeyPricingVersion); err != nil {
		logger.Warn("定价版本号递增失败", zap.Error(err))
	}
}

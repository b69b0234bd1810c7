// Package pricing 提供定价管理服务
package pricing

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/dumeirei/lodge-booking-backend/internal/common/cache"
	"github.com/dumeirei/lodge-booking-backend/internal/common/config"
	"github.com/dumeirei/lodge-booking-backend/internal/common/errors"
	"github.com/dumeirei/lodge-booking-backend/internal/common/logger"
	"github.com/dumeirei/lodge-booking-backend/internal/models"
	engine "github.com/dumeirei/lodge-booking-backend/internal/pricing"
	"github.com/dumeirei/lodge-booking-backend/internal/repository"
)

// SettingsService 定价常量服务
type SettingsService struct {
	settingRepo *repository.PricingSettingRepository
	defaults    config.PricingConfig
	useCache    bool
}

// NewSettingsService 创建定价常量服务
func NewSettingsService(settingRepo *repository.PricingSettingRepository, defaults config.PricingConfig) *SettingsService {
	return &SettingsService{
		settingRepo: settingRepo,
		defaults:    defaults,
		useCache:    cache.GetClient() != nil,
	}
}

// GetConstants 获取生效的定价常量
// 数据库未配置的键回落到配置文件默认值
func (s *SettingsService) GetConstants(ctx context.Context) (engine.Constants, error) {
	constants := engine.Constants{
		RoomPrice:        s.defaults.RoomPrice,
		CampingPrice:     s.defaults.CampingPrice,
		MaxGuestsPerRoom: s.defaults.MaxGuestsPerRoom,
		TotalRooms:       s.defaults.TotalRooms,
	}

	if s.useCache {
		if err := cache.Get(ctx, cache.KeyPrefixConstants, &constants); err == nil {
			return constants, nil
		}
	}

	settings, err := s.settingRepo.GetAll(ctx)
	if err != nil {
		return engine.Constants{}, errors.ErrDatabaseError.WithError(err)
	}

	for _, setting := range settings {
		val, err := strconv.ParseInt(setting.Value, 10, 64)
		if err != nil {
			logger.Warn("定价常量值解析失败",
				zap.String("key", setting.Key),
				zap.String("value", setting.Value),
			)
			continue
		}
		switch setting.Key {
		case models.SettingKeyRoomPrice:
			constants.RoomPrice = val
		case models.SettingKeyCampingPrice:
			constants.CampingPrice = val
		case models.SettingKeyMaxGuestsPerRoom:
			constants.MaxGuestsPerRoom = int(val)
		case models.SettingKeyTotalRooms:
			constants.TotalRooms = int(val)
		}
	}

	if s.useCache {
		ttl := time.Duration(s.defaults.CacheTTL) * time.Second
		_ = cache.Set(ctx, cache.KeyPrefixConstants, constants, ttl)
	}

	return constants, nil
}

// UpdateSettingsRequest 更新定价常量请求
type UpdateSettingsRequest struct {
	RoomPrice        *int64 `json:"room_price"`
	CampingPrice     *int64 `json:"camping_price"`
	MaxGuestsPerRoom *int   `json:"max_guests_per_room"`
	TotalRooms       *int   `json:"total_rooms"`
}

// UpdateSettings 更新定价常量
func (s *SettingsService) UpdateSettings(ctx context.Context, req *UpdateSettingsRequest) (engine.Constants, error) {
	if req.RoomPrice != nil && *req.RoomPrice <= 0 {
		return engine.Constants{}, errors.ErrInvalidPrice.WithMessage("房间单价必须大于 0")
	}
	if req.CampingPrice != nil && *req.CampingPrice <= 0 {
		return engine.Constants{}, errors.ErrInvalidPrice.WithMessage("露营单价必须大于 0")
	}
	if req.MaxGuestsPerRoom != nil && *req.MaxGuestsPerRoom <= 0 {
		return engine.Constants{}, errors.ErrInvalidCapacity.WithMessage("单间最大入住人数必须大于 0")
	}
	if req.TotalRooms != nil && *req.TotalRooms < 0 {
		return engine.Constants{}, errors.ErrInvalidCapacity.WithMessage("房间总数不能为负数")
	}

	var settings []*models.PricingSetting
	if req.RoomPrice != nil {
		settings = append(settings, intSetting(models.SettingKeyRoomPrice, *req.RoomPrice))
	}
	if req.CampingPrice != nil {
		settings = append(settings, intSetting(models.SettingKeyCampingPrice, *req.CampingPrice))
	}
	if req.MaxGuestsPerRoom != nil {
		settings = append(settings, intSetting(models.SettingKeyMaxGuestsPerRoom, int64(*req.MaxGuestsPerRoom)))
	}
	if req.TotalRooms != nil {
		settings = append(settings, intSetting(models.SettingKeyTotalRooms, int64(*req.TotalRooms)))
	}

	if len(settings) > 0 {
		if err := s.settingRepo.BatchUpsert(ctx, settings); err != nil {
			return engine.Constants{}, errors.ErrDatabaseError.WithError(err)
		}
		s.invalidate(ctx)
	}

	return s.GetConstants(ctx)
}

// invalidate 清除常量缓存并递增定价数据版本号
func (s *SettingsService) invalidate(ctx context.Context) {
	if !s.useCache {
		return
	}
	_ = cache.Delete(ctx, cache.KeyPrefixConstants)
	if _, err := cache.Incr(ctx, cache.KeyPricingVersion); err != nil {
		logger.Warn("定价版本号递增失败", zap.Error(err))
	}
}

func intSetting(key string, value int64) *models.PricingSetting {
	return &models.PricingSetting{
		Key:   key,
		Value: strconv.FormatInt(value, 10),
		Type:  models.SettingTypeInt,
	}
}

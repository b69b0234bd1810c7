// Package pricing 定价常量服务单元测试
package pricing

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dumeirei/lodge-booking-backend/internal/common/cache"
	"github.com/dumeirei/lodge-booking-backend/internal/common/config"
	"github.com/dumeirei/lodge-booking-backend/internal/common/errors"
	"github.com/dumeirei/lodge-booking-backend/internal/models"
	"github.com/dumeirei/lodge-booking-backend/internal/repository"
)

// setupPricingTestDB 创建测试数据库
func setupPricingTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.PricingSetting{}, &models.PriceOverride{})
	require.NoError(t, err)

	return db
}

// setupPricingTestCache 注入 miniredis 客户端
func setupPricingTestCache(t *testing.T) *miniredis.Miniredis {
	s, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	cache.SetClient(client)

	t.Cleanup(func() {
		cache.SetClient(nil)
		_ = client.Close()
		s.Close()
	})
	return s
}

// testPricingDefaults 测试用默认定价配置
func testPricingDefaults() config.PricingConfig {
	return config.PricingConfig{
		RoomPrice:        400000,
		CampingPrice:     40000,
		MaxGuestsPerRoom: 4,
		TotalRooms:       5,
		CacheTTL:         300,
	}
}

func int64Ptr(v int64) *int64 {
	return &v
}

func intPtr(v int) *int {
	return &v
}

// ==================== GetConstants 测试 ====================

func TestSettingsService_GetConstants_Defaults(t *testing.T) {
	db := setupPricingTestDB(t)
	setupPricingTestCache(t)
	svc := NewSettingsService(repository.NewPricingSettingRepository(db), testPricingDefaults())
	ctx := context.Background()

	// 数据库为空时回落到配置默认值
	constants, err := svc.GetConstants(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(400000), constants.RoomPrice)
	assert.Equal(t, int64(40000), constants.CampingPrice)
	assert.Equal(t, 4, constants.MaxGuestsPerRoom)
	assert.Equal(t, 5, constants.TotalRooms)
}

func TestSettingsService_GetConstants_FromDatabase(t *testing.T) {
	db := setupPricingTestDB(t)
	setupPricingTestCache(t)
	svc := NewSettingsService(repository.NewPricingSettingRepository(db), testPricingDefaults())
	ctx := context.Background()

	db.Create(&models.PricingSetting{
		Key: models.SettingKeyRoomPrice, Value: "450000", Type: models.SettingTypeInt,
	})
	db.Create(&models.PricingSetting{
		Key: models.SettingKeyTotalRooms, Value: "6", Type: models.SettingTypeInt,
	})

	constants, err := svc.GetConstants(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(450000), constants.RoomPrice)
	assert.Equal(t, 6, constants.TotalRooms)
	// 未配置的键仍用默认值
	assert.Equal(t, int64(40000), constants.CampingPrice)
	assert.Equal(t, 4, constants.MaxGuestsPerRoom)
}

func TestSettingsService_GetConstants_IgnoresBadValue(t *testing.T) {
	db := setupPricingTestDB(t)
	setupPricingTestCache(t)
	svc := NewSettingsService(repository.NewPricingSettingRepository(db), testPricingDefaults())
	ctx := context.Background()

	db.Create(&models.PricingSetting{
		Key: models.SettingKeyRoomPrice, Value: "not_a_number", Type: models.SettingTypeInt,
	})

	constants, err := svc.GetConstants(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(400000), constants.RoomPrice)
}

// ==================== UpdateSettings 测试 ====================

func TestSettingsService_UpdateSettings(t *testing.T) {
	db := setupPricingTestDB(t)
	setupPricingTestCache(t)
	svc := NewSettingsService(repository.NewPricingSettingRepository(db), testPricingDefaults())
	ctx := context.Background()

	constants, err := svc.UpdateSettings(ctx, &UpdateSettingsRequest{
		RoomPrice:  int64Ptr(500000),
		TotalRooms: intPtr(3),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(500000), constants.RoomPrice)
	assert.Equal(t, 3, constants.TotalRooms)

	// 再次读取应反映新值
	constants, err = svc.GetConstants(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(500000), constants.RoomPrice)
}

func TestSettingsService_UpdateSettings_Validation(t *testing.T) {
	db := setupPricingTestDB(t)
	setupPricingTestCache(t)
	svc := NewSettingsService(repository.NewPricingSettingRepository(db), testPricingDefaults())
	ctx := context.Background()

	tests := []struct {
		name    string
		req     *UpdateSettingsRequest
		errCode int
	}{
		{"房间单价为零", &UpdateSettingsRequest{RoomPrice: int64Ptr(0)}, errors.ErrInvalidPrice.Code},
		{"露营单价为负", &UpdateSettingsRequest{CampingPrice: int64Ptr(-100)}, errors.ErrInvalidPrice.Code},
		{"单间人数为零", &UpdateSettingsRequest{MaxGuestsPerRoom: intPtr(0)}, errors.ErrInvalidCapacity.Code},
		{"房间总数为负", &UpdateSettingsRequest{TotalRooms: intPtr(-1)}, errors.ErrInvalidCapacity.Code},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateSettings(ctx, tt.req)
			require.Error(t, err)
			appErr := errors.GetAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.errCode, appErr.Code)
		})
	}
}

func TestSettingsService_UpdateSettings_TotalRoomsZeroAllowed(t *testing.T) {
	db := setupPricingTestDB(t)
	setupPricingTestCache(t)
	svc := NewSettingsService(repository.NewPricingSettingRepository(db), testPricingDefaults())
	ctx := context.Background()

	// 全员露营的场地允许房间总数为 0
	constants, err := svc.UpdateSettings(ctx, &UpdateSettingsRequest{TotalRooms: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, 0, constants.TotalRooms)
}

func TestSettingsService_UpdateSettings_InvalidatesCache(t *testing.T) {
	db := setupPricingTestDB(t)
	s := setupPricingTestCache(t)
	svc := NewSettingsService(repository.NewPricingSettingRepository(db), testPricingDefaults())
	ctx := context.Background()

	// 预热常量缓存
	_, err := svc.GetConstants(ctx)
	require.NoError(t, err)
	assert.True(t, s.Exists(cache.KeyPrefixConstants))

	_, err = svc.UpdateSettings(ctx, &UpdateSettingsRequest{RoomPrice: int64Ptr(500000)})
	require.NoError(t, err)

	// 版本号被递增
	version, err := s.Get(cache.KeyPricingVersion)
	require.NoError(t, err)
	assert.Equal(t, "1", version)
}

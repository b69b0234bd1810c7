// Package booking 预订服务单元测试
package booking

import (
	"context"
	"strings"
	"testing"
	"time"

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
	"github.com/dumeirei/lodge-booking-backend/internal/common/qrcode"
	"github.com/dumeirei/lodge-booking-backend/internal/models"
	"github.com/dumeirei/lodge-booking-backend/internal/repository"
	pricingService "github.com/dumeirei/lodge-booking-backend/internal/service/pricing"
	"github.com/dumeirei/lodge-booking-backend/pkg/sms"
)

// setupBookingService 构建完整的预订服务
func setupBookingService(t *testing.T) (*BookingService, *sms.MockSender, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.Booking{}, &models.PricingSetting{}, &models.PriceOverride{})
	require.NoError(t, err)

	s, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	cache.SetClient(client)
	t.Cleanup(func() {
		cache.SetClient(nil)
		_ = client.Close()
		s.Close()
	})

	pricingCfg := config.PricingConfig{
		RoomPrice:        400000,
		CampingPrice:     40000,
		MaxGuestsPerRoom: 4,
		TotalRooms:       5,
		CacheTTL:         300,
	}
	settings := pricingService.NewSettingsService(repository.NewPricingSettingRepository(db), pricingCfg)
	overrides := pricingService.NewOverrideService(repository.NewPriceOverrideRepository(db))
	quotes := pricingService.NewQuoteService(settings, overrides, pricingCfg)

	sender := sms.NewMockSender()
	svc := NewBookingService(
		repository.NewBookingRepository(db),
		quotes,
		sender,
		qrcode.NewGenerator(),
		config.BookingConfig{
			MaxGuests:          30,
			MaxNights:          30,
			PendingExpireHours: 24,
			CompleteGraceDays:  1,
		},
	)
	return svc, sender, db
}

// validCreateRequest 合法的创建请求
func validCreateRequest() *CreateBookingRequest {
	return &CreateBookingRequest{
		CheckIn:      "2026-09-01",
		CheckOut:     "2026-09-03",
		Guests:       2,
		ContactName:  "张三",
		ContactPhone: "13800138000",
	}
}

// ==================== Create 测试 ====================

func TestBookingService_Create(t *testing.T) {
	svc, _, db := setupBookingService(t)
	ctx := context.Background()

	info, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(info.BookingNo, "BK"))
	assert.Equal(t, models.BookingStatusPending, info.Status)
	assert.Equal(t, 2, info.Nights)
	assert.Equal(t, 1, info.Rooms)
	assert.False(t, info.Camping)
	assert.Equal(t, int64(800000), info.TotalAmount)
	require.NotNil(t, info.Quote)
	assert.Equal(t, 2, len(info.Quote.Breakdown))
	require.NotNil(t, info.ExpireAt)
	assert.True(t, info.ExpireAt.After(time.Now()))

	// 报价快照已落库
	var stored models.Booking
	require.NoError(t, db.First(&stored, info.ID).Error)
	assert.NotNil(t, stored.Quote)
}

func TestBookingService_Create_ServerSidePricing(t *testing.T) {
	svc, _, db := setupBookingService(t)
	ctx := context.Background()

	// 当前生效覆盖参与计价
	db.Create(&models.PriceOverride{
		Date: "2026-09-01", ResourceType: models.ResourceTypeRoom, Price: 600000,
	})

	info, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(1000000), info.TotalAmount)
}

func TestBookingService_Create_Validation(t *testing.T) {
	svc, _, _ := setupBookingService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(req *CreateBookingRequest)
		errCode int
	}{
		{
			"同日往返",
			func(req *CreateBookingRequest) { req.CheckOut = req.CheckIn },
			errors.ErrEmptyStayRange.Code,
		},
		{
			"倒置区间",
			func(req *CreateBookingRequest) { req.CheckIn, req.CheckOut = req.CheckOut, req.CheckIn },
			errors.ErrEmptyStayRange.Code,
		},
		{
			"日期格式非法",
			func(req *CreateBookingRequest) { req.CheckIn = "09/01/2026" },
			errors.ErrInvalidStayRange.Code,
		},
		{
			"入住天数超限",
			func(req *CreateBookingRequest) { req.CheckOut = "2026-10-15" },
			errors.ErrStayTooLong.Code,
		},
		{
			"客人数量为零",
			func(req *CreateBookingRequest) { req.Guests = 0 },
			errors.ErrGuestCountInvalid.Code,
		},
		{
			"客人数量超限",
			func(req *CreateBookingRequest) { req.Guests = 31 },
			errors.ErrGuestCountInvalid.Code,
		},
		{
			"联系人为空",
			func(req *CreateBookingRequest) { req.ContactName = "  " },
			errors.ErrContactInvalid.Code,
		},
		{
			"手机号非法",
			func(req *CreateBookingRequest) { req.ContactPhone = "123" },
			errors.ErrContactInvalid.Code,
		},
		{
			"邮箱非法",
			func(req *CreateBookingRequest) { req.ContactEmail = "not-an-email" },
			errors.ErrContactInvalid.Code,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(req)

			_, err := svc.Create(ctx, req)
			require.Error(t, err)
			appErr := errors.GetAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.errCode, appErr.Code)
		})
	}
}

func TestBookingService_Create_DuplicateSubmit(t *testing.T) {
	svc, _, _ := setupBookingService(t)
	ctx := context.Background()

	req := validCreateRequest()

	// 预先持有同一手机号的提交锁，模拟并发中的另一次提交
	locked, err := cache.SetNX(ctx, cache.KeyPrefixLock+"booking:"+req.ContactPhone, 1, time.Minute)
	require.NoError(t, err)
	require.True(t, locked)

	_, err = svc.Create(ctx, req)
	require.Error(t, err)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrRateLimitExceed.Code, appErr.Code)

	// 锁释放后可以正常提交
	require.NoError(t, cache.Delete(ctx, cache.KeyPrefixLock+"booking:"+req.ContactPhone))
	_, err = svc.Create(ctx, req)
	assert.NoError(t, err)
}

// ==================== GetByBookingNo 测试 ====================

func TestBookingService_GetByBookingNo(t *testing.T) {
	svc, _, _ := setupBookingService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	info, err := svc.GetByBookingNo(ctx, created.BookingNo)
	require.NoError(t, err)
	assert.Equal(t, created.ID, info.ID)
	// 快照还原的报价明细
	require.NotNil(t, info.Quote)
	assert.Equal(t, int64(800000), info.Quote.TotalAmount)
	// 到店出示的二维码
	assert.True(t, strings.HasPrefix(info.QRCode, "data:image/png;base64,"))

	_, err = svc.GetByBookingNo(ctx, "BK_NOT_EXIST")
	assert.Equal(t, errors.ErrBookingNotFound, err)
}

func TestBookingService_GetByBookingNo_LazyExpire(t *testing.T) {
	svc, _, db := setupBookingService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	// 将过期时间改到过去
	past := time.Now().Add(-time.Hour)
	db.Model(&models.Booking{}).Where("id = ?", created.ID).Update("expire_at", past)

	info, err := svc.GetByBookingNo(ctx, created.BookingNo)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusExpired, info.Status)
}

// ==================== Cancel 测试 ====================

func TestBookingService_Cancel(t *testing.T) {
	svc, sender, _ := setupBookingService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	// 手机号不匹配时不泄露预订存在性
	err = svc.Cancel(ctx, created.BookingNo, "13900139000")
	assert.Equal(t, errors.ErrBookingNotFound, err)

	err = svc.Cancel(ctx, created.BookingNo, "13800138000")
	require.NoError(t, err)

	msg := sender.GetLastMessage()
	require.NotNil(t, msg)
	assert.Equal(t, "booking_cancel", msg.Template)
	assert.Equal(t, created.BookingNo, msg.Params["booking_no"])

	// 已取消的预订不能再次取消
	err = svc.Cancel(ctx, created.BookingNo, "13800138000")
	assert.Equal(t, errors.ErrBookingCannotCancel, err)
}

// ==================== Confirm 测试 ====================

func TestBookingService_Confirm(t *testing.T) {
	svc, sender, _ := setupBookingService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	info, err := svc.Confirm(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, info.Status)

	msg := sender.GetLastMessage()
	require.NotNil(t, msg)
	assert.Equal(t, "booking_confirm", msg.Template)
	assert.Equal(t, "2026-09-01", msg.Params["check_in"])

	// 已确认的预订不能重复确认
	_, err = svc.Confirm(ctx, created.ID)
	assert.Equal(t, errors.ErrBookingStatusError, err)
}

func TestBookingService_Confirm_Expired(t *testing.T) {
	svc, _, db := setupBookingService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	db.Model(&models.Booking{}).Where("id = ?", created.ID).
		Update("status", models.BookingStatusExpired)

	_, err = svc.Confirm(ctx, created.ID)
	assert.Equal(t, errors.ErrBookingExpired, err)
}

// ==================== AdminCancel 测试 ====================

func TestBookingService_AdminCancel(t *testing.T) {
	svc, sender, _ := setupBookingService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, created.ID)
	require.NoError(t, err)

	// 已确认的预订管理员仍可取消
	err = svc.AdminCancel(ctx, created.ID)
	require.NoError(t, err)

	msg := sender.GetLastMessage()
	require.NotNil(t, msg)
	assert.Equal(t, "booking_cancel", msg.Template)
}

// ==================== List 测试 ====================

func TestBookingService_List(t *testing.T) {
	svc, _, _ := setupBookingService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	second := validCreateRequest()
	second.CheckIn = "2026-10-01"
	second.CheckOut = "2026-10-02"
	second.ContactPhone = "13900139000"
	_, err = svc.Create(ctx, second)
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, first.ID)
	require.NoError(t, err)

	// 全部
	_, total, err := svc.List(ctx, 1, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	// 按状态
	list, total, err := svc.List(ctx, 1, 10, &BookingListFilters{Status: models.BookingStatusConfirmed})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, first.ID, list[0].ID)

	// 按入住日期区间
	_, total, err = svc.List(ctx, 1, 10, &BookingListFilters{CheckInFrom: "2026-10-01", CheckInTo: "2026-11-01"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	// 按联系电话
	_, total, err = svc.List(ctx, 1, 10, &BookingListFilters{Phone: "13900139000"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestBookingService_ListByPhone(t *testing.T) {
	svc, _, _ := setupBookingService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	other := validCreateRequest()
	other.ContactPhone = "13900139000"
	_, err = svc.Create(ctx, other)
	require.NoError(t, err)

	list, total, err := svc.ListByPhone(ctx, "13800138000", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, "13800138000", list[0].ContactPhone)

	// 手机号格式非法
	_, _, err = svc.ListByPhone(ctx, "123", 1, 10)
	assert.ErrorIs(t, err, errors.ErrContactInvalid)
}

// ==================== 定时任务测试 ====================

func TestBookingService_ExpirePendingBookings(t *testing.T) {
	svc, _, db := setupBookingService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	second := validCreateRequest()
	second.ContactPhone = "13900139000"
	alive, err := svc.Create(ctx, second)
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour)
	db.Model(&models.Booking{}).Where("id = ?", first.ID).Update("expire_at", past)

	expired, err := svc.ExpirePendingBookings(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	info, err := svc.GetByBookingNo(ctx, first.BookingNo)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusExpired, info.Status)

	info, err = svc.GetByBookingNo(ctx, alive.BookingNo)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, info.Status)
}

func TestBookingService_CompletePastBookings(t *testing.T) {
	svc, _, db := setupBookingService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, created.ID)
	require.NoError(t, err)

	// 退房日改到宽限期之前
	db.Model(&models.Booking{}).Where("id = ?", created.ID).Update("check_out", "2026-08-01")

	completed, err := svc.CompletePastBookings(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, completed)

	info, err := svc.GetByBookingNo(ctx, created.BookingNo)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, info.Status)
}

// Package booking 提供预订服务
package booking

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/lodge-booking-backend/internal/common/cache"
	"github.com/dumeirei/lodge-booking-backend/internal/common/config"
	"github.com/dumeirei/lodge-booking-backend/internal/common/crypto"
	"github.com/dumeirei/lodge-booking-backend/internal/common/errors"
	"github.com/dumeirei/lodge-booking-backend/internal/common/logger"
	"github.com/dumeirei/lodge-booking-backend/internal/common/metrics"
	"github.com/dumeirei/lodge-booking-backend/internal/common/qrcode"
	"github.com/dumeirei/lodge-booking-backend/internal/common/utils"
	"github.com/dumeirei/lodge-booking-backend/internal/models"
	engine "github.com/dumeirei/lodge-booking-backend/internal/pricing"
	"github.com/dumeirei/lodge-booking-backend/internal/repository"
	pricingService "github.com/dumeirei/lodge-booking-backend/internal/service/pricing"
	"github.com/dumeirei/lodge-booking-backend/pkg/sms"
)

// BookingService 预订服务
type BookingService struct {
	bookingRepo  *repository.BookingRepository
	quoteService *pricingService.QuoteService
	smsSender    sms.Sender
	qrGenerator  *qrcode.Generator
	cfg          config.BookingConfig
}

// NewBookingService 创建预订服务
func NewBookingService(
	bookingRepo *repository.BookingRepository,
	quoteService *pricingService.QuoteService,
	smsSender sms.Sender,
	qrGenerator *qrcode.Generator,
	cfg config.BookingConfig,
) *BookingService {
	return &BookingService{
		bookingRepo:  bookingRepo,
		quoteService: quoteService,
		smsSender:    smsSender,
		qrGenerator:  qrGenerator,
		cfg:          cfg,
	}
}

// CreateBookingRequest 创建预订请求
type CreateBookingRequest struct {
	CheckIn      string `json:"check_in" binding:"required"`
	CheckOut     string `json:"check_out" binding:"required"`
	Guests       int    `json:"guests" binding:"required"`
	ContactName  string `json:"contact_name" binding:"required"`
	ContactPhone string `json:"contact_phone" binding:"required"`
	ContactEmail string `json:"contact_email"`
	Remark       string `json:"remark"`
}

// BookingInfo 预订信息
type BookingInfo struct {
	ID           int64         `json:"id"`
	BookingNo    string        `json:"booking_no"`
	ContactName  string        `json:"contact_name"`
	ContactPhone string        `json:"contact_phone"`
	CheckIn      string        `json:"check_in"`
	CheckOut     string        `json:"check_out"`
	Guests       int           `json:"guests"`
	Nights       int           `json:"nights"`
	Rooms        int           `json:"rooms"`
	Camping      bool          `json:"camping"`
	TotalAmount  int64         `json:"total_amount"`
	Status       string        `json:"status"`
	Quote        *engine.Quote `json:"quote,omitempty"`
	QRCode       string        `json:"qr_code,omitempty"`
	ExpireAt     *time.Time    `json:"expire_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Create 创建预订
// 报价由服务端按当前生效定价重新计算，不信任客户端金额
func (s *BookingService) Create(ctx context.Context, req *CreateBookingRequest) (*BookingInfo, error) {
	checkIn, err := engine.ParseDate(req.CheckIn)
	if err != nil {
		return nil, errors.ErrInvalidStayRange.WithMessage("入住日期格式必须为 YYYY-MM-DD")
	}
	checkOut, err := engine.ParseDate(req.CheckOut)
	if err != nil {
		return nil, errors.ErrInvalidStayRange.WithMessage("退房日期格式必须为 YYYY-MM-DD")
	}

	stay := engine.Stay{CheckIn: checkIn, CheckOut: checkOut, Guests: req.Guests}
	nights := stay.Nights()
	if nights <= 0 {
		return nil, errors.ErrEmptyStayRange
	}
	if s.cfg.MaxNights > 0 && nights > s.cfg.MaxNights {
		return nil, errors.ErrStayTooLong
	}
	if req.Guests < 1 || (s.cfg.MaxGuests > 0 && req.Guests > s.cfg.MaxGuests) {
		return nil, errors.ErrGuestCountInvalid
	}
	if strings.TrimSpace(req.ContactName) == "" || !utils.ValidatePhone(req.ContactPhone) {
		return nil, errors.ErrContactInvalid
	}
	if req.ContactEmail != "" && !utils.ValidateEmail(req.ContactEmail) {
		return nil, errors.ErrContactInvalid.WithMessage("无效的邮箱地址")
	}

	// 同一手机号的并发提交只放行一个，防止重复下单
	lockKey := cache.KeyPrefixLock + "booking:" + req.ContactPhone
	locked, err := cache.SetNX(ctx, lockKey, 1, 10*time.Second)
	if err == nil && !locked {
		return nil, errors.ErrRateLimitExceed.WithMessage("预订提交过于频繁，请稍后再试")
	}
	if err == nil {
		defer cache.Delete(ctx, lockKey)
	}

	quote, err := s.quoteService.GetQuote(ctx, &pricingService.QuoteRequest{
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
		Guests:   req.Guests,
	})
	if err != nil {
		return nil, err
	}

	snapshot, err := models.ToJSON(quote)
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}

	bookingNo, err := s.nextBookingNo(ctx)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	expireAt := time.Now().Add(time.Duration(s.cfg.PendingExpireHours) * time.Hour)
	booking := &models.Booking{
		BookingNo:    bookingNo,
		ContactName:  strings.TrimSpace(req.ContactName),
		ContactPhone: req.ContactPhone,
		CheckIn:      req.CheckIn,
		CheckOut:     req.CheckOut,
		Guests:       req.Guests,
		Nights:       quote.Nights,
		Rooms:        quote.Rooms,
		Camping:      quote.Camping,
		TotalAmount:  quote.TotalAmount,
		Quote:        snapshot,
		Status:       models.BookingStatusPending,
		ExpireAt:     &expireAt,
	}
	if req.ContactEmail != "" {
		booking.ContactEmail = &req.ContactEmail
	}
	if req.Remark != "" {
		booking.Remark = &req.Remark
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	metrics.RecordBookingGlobal(models.BookingStatusPending)
	logger.Info("预订已创建",
		logger.BookingID(booking.ID),
		logger.BookingNo(booking.BookingNo),
		zap.String("contact_phone", crypto.MaskPhone(booking.ContactPhone)),
		zap.Int("guests", booking.Guests),
		zap.Int64("total_amount", booking.TotalAmount),
	)

	return s.toBookingInfo(booking, quote, false), nil
}

// nextBookingNo 生成未被占用的预订号，随机段冲突时重新生成
func (s *BookingService) nextBookingNo(ctx context.Context) (string, error) {
	for i := 0; i < 3; i++ {
		no := utils.GenerateBookingNo("BK")
		exists, err := s.bookingRepo.ExistsByBookingNo(ctx, no)
		if err != nil {
			return "", err
		}
		if !exists {
			return no, nil
		}
	}
	return "", errors.ErrInternalError.WithMessage("预订号生成失败")
}

// GetByBookingNo 根据预订号获取预订
// 待确认且已超时的预订在读取时顺带标记过期
func (s *BookingService) GetByBookingNo(ctx context.Context, bookingNo string) (*BookingInfo, error) {
	booking, err := s.bookingRepo.GetByBookingNo(ctx, bookingNo)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrBookingNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	if booking.Status == models.BookingStatusPending &&
		booking.ExpireAt != nil && booking.ExpireAt.Before(time.Now()) {
		if err := s.bookingRepo.MarkExpired(ctx, booking.ID); err == nil {
			booking.Status = models.BookingStatusExpired
		}
	}

	return s.toBookingInfo(booking, nil, true), nil
}

// Cancel 客人取消预订（需要联系电话验证）
func (s *BookingService) Cancel(ctx context.Context, bookingNo, contactPhone string) error {
	booking, err := s.bookingRepo.GetByBookingNo(ctx, bookingNo)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrBookingNotFound
		}
		return errors.ErrDatabaseError.WithError(err)
	}

	if booking.ContactPhone != contactPhone {
		return errors.ErrBookingNotFound
	}
	if !booking.CanCancel() {
		return errors.ErrBookingCannotCancel
	}

	if err := s.bookingRepo.Cancel(ctx, booking.ID); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	metrics.RecordBookingGlobal(models.BookingStatusCancelled)

	s.notifyCancel(ctx, booking)
	return nil
}

// Confirm 管理员确认预订
func (s *BookingService) Confirm(ctx context.Context, id int64) (*BookingInfo, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrBookingNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	if booking.Status == models.BookingStatusExpired {
		return nil, errors.ErrBookingExpired
	}
	if !booking.CanConfirm() {
		return nil, errors.ErrBookingStatusError
	}

	if err := s.bookingRepo.Confirm(ctx, booking.ID); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	booking.Status = models.BookingStatusConfirmed
	metrics.RecordBookingGlobal(models.BookingStatusConfirmed)

	if s.smsSender != nil {
		if err := s.smsSender.SendBookingConfirm(ctx, booking.ContactPhone, booking.BookingNo, booking.CheckIn); err != nil {
			logger.Warn("预订确认短信发送失败",
				logger.BookingNo(booking.BookingNo),
				zap.Error(err),
			)
		}
	}

	return s.toBookingInfo(booking, nil, false), nil
}

// AdminCancel 管理员取消预订
func (s *BookingService) AdminCancel(ctx context.Context, id int64) error {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrBookingNotFound
		}
		return errors.ErrDatabaseError.WithError(err)
	}

	if !booking.CanCancel() {
		return errors.ErrBookingCannotCancel
	}

	if err := s.bookingRepo.Cancel(ctx, booking.ID); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	metrics.RecordBookingGlobal(models.BookingStatusCancelled)

	s.notifyCancel(ctx, booking)
	return nil
}

// BookingListFilters 预订列表筛选条件
type BookingListFilters struct {
	Status      string
	BookingNo   string
	Phone       string
	CheckInFrom string
	CheckInTo   string
}

// List 获取预订列表
func (s *BookingService) List(ctx context.Context, page, pageSize int, filters *BookingListFilters) ([]*BookingInfo, int64, error) {
	var filter *repository.BookingFilter
	if filters != nil {
		filter = &repository.BookingFilter{
			Status:       filters.Status,
			BookingNo:    filters.BookingNo,
			ContactPhone: filters.Phone,
			CheckInFrom:  filters.CheckInFrom,
			CheckInTo:    filters.CheckInTo,
		}
	}

	bookings, total, err := s.bookingRepo.List(ctx, page, pageSize, filter)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}

	return s.toBookingInfos(bookings), total, nil
}

// ListByPhone 获取联系电话名下的预订，供客人凭手机号自助查询
func (s *BookingService) ListByPhone(ctx context.Context, phone string, page, pageSize int) ([]*BookingInfo, int64, error) {
	if !utils.ValidatePhone(phone) {
		return nil, 0, errors.ErrContactInvalid
	}

	bookings, total, err := s.bookingRepo.ListByPhone(ctx, phone, page, pageSize)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return s.toBookingInfos(bookings), total, nil
}

func (s *BookingService) toBookingInfos(bookings []*models.Booking) []*BookingInfo {
	infos := make([]*BookingInfo, len(bookings))
	for i, booking := range bookings {
		infos[i] = s.toBookingInfo(booking, nil, false)
	}
	return infos
}

// ExpirePendingBookings 批量标记超时未确认的预订（定时任务调用）
func (s *BookingService) ExpirePendingBookings(ctx context.Context, limit int) (int, error) {
	bookings, err := s.bookingRepo.ListExpiredPending(ctx, limit)
	if err != nil {
		return 0, errors.ErrDatabaseError.WithError(err)
	}

	expired := 0
	for _, booking := range bookings {
		if err := s.bookingRepo.MarkExpired(ctx, booking.ID); err != nil {
			logger.Warn("预订过期标记失败",
				logger.BookingID(booking.ID),
				zap.Error(err),
			)
			continue
		}
		metrics.RecordBookingGlobal(models.BookingStatusExpired)
		expired++
	}
	return expired, nil
}

// CompletePastBookings 批量完成退房日已过的预订（定时任务调用）
func (s *BookingService) CompletePastBookings(ctx context.Context, limit int) (int, error) {
	graceDays := s.cfg.CompleteGraceDays
	cutoff := time.Now().AddDate(0, 0, -graceDays).Format(engine.DateLayout)

	bookings, err := s.bookingRepo.ListToComplete(ctx, cutoff, limit)
	if err != nil {
		return 0, errors.ErrDatabaseError.WithError(err)
	}

	completed := 0
	for _, booking := range bookings {
		if err := s.bookingRepo.Complete(ctx, booking.ID); err != nil {
			logger.Warn("预订完成标记失败",
				logger.BookingID(booking.ID),
				zap.Error(err),
			)
			continue
		}
		metrics.RecordBookingGlobal(models.BookingStatusCompleted)
		completed++
	}
	return completed, nil
}

// notifyCancel 发送取消通知（尽力而为）
func (s *BookingService) notifyCancel(ctx context.Context, booking *models.Booking) {
	if s.smsSender == nil {
		return
	}
	if err := s.smsSender.SendBookingCancel(ctx, booking.ContactPhone, booking.BookingNo); err != nil {
		logger.Warn("预订取消短信发送失败",
			logger.BookingNo(booking.BookingNo),
			zap.Error(err),
		)
	}
}

// toBookingInfo 转换为预订信息
// quote 为空时从快照还原；withQR 控制是否携带到店出示的二维码
func (s *BookingService) toBookingInfo(booking *models.Booking, quote *engine.Quote, withQR bool) *BookingInfo {
	info := &BookingInfo{
		ID:           booking.ID,
		BookingNo:    booking.BookingNo,
		ContactName:  booking.ContactName,
		ContactPhone: booking.ContactPhone,
		CheckIn:      booking.CheckIn,
		CheckOut:     booking.CheckOut,
		Guests:       booking.Guests,
		Nights:       booking.Nights,
		Rooms:        booking.Rooms,
		Camping:      booking.Camping,
		TotalAmount:  booking.TotalAmount,
		Status:       booking.Status,
		ExpireAt:     booking.ExpireAt,
		CreatedAt:    booking.CreatedAt,
	}

	if quote != nil {
		info.Quote = quote
	} else if booking.Quote != nil {
		var restored engine.Quote
		if err := booking.Quote.Unmarshal(&restored); err == nil {
			info.Quote = &restored
		}
	}

	if withQR && s.qrGenerator != nil {
		if dataURL, err := s.qrGenerator.GenerateDataURL(booking.BookingNo); err == nil {
			info.QRCode = dataURL
		}
	}

	return info
}

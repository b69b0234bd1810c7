// Package repository 提供数据访问层
package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/lodge-booking-backend/internal/common/database"
	"github.com/dumeirei/lodge-booking-backend/internal/models"
)

// BookingRepository 预订仓储
type BookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository 创建预订仓储
func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// BookingFilter 预订查询条件，零值字段不参与过滤
type BookingFilter struct {
	Status       string
	Statuses     []string
	BookingNo    string // 模糊匹配
	ContactPhone string
	CheckInFrom  string // 含当日
	CheckInTo    string // 不含当日
}

func (f *BookingFilter) apply(query *gorm.DB) *gorm.DB {
	if f == nil {
		return query
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if len(f.Statuses) > 0 {
		query = query.Where("status IN ?", f.Statuses)
	}
	if f.BookingNo != "" {
		query = query.Where("booking_no LIKE ?", "%"+f.BookingNo+"%")
	}
	if f.ContactPhone != "" {
		query = query.Where("contact_phone = ?", f.ContactPhone)
	}
	if f.CheckInFrom != "" {
		query = query.Where("check_in >= ?", f.CheckInFrom)
	}
	if f.CheckInTo != "" {
		query = query.Where("check_in < ?", f.CheckInTo)
	}
	return query
}

// Create 创建预订
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

// GetByID 根据 ID 获取预订
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).First(&booking, id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetByBookingNo 根据预订号获取预订
func (r *BookingRepository) GetByBookingNo(ctx context.Context, bookingNo string) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Where("booking_no = ?", bookingNo).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// ExistsByBookingNo 检查预订号是否已被占用
func (r *BookingRepository) ExistsByBookingNo(ctx context.Context, bookingNo string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("booking_no = ?", bookingNo).
		Count(&count).Error
	return count > 0, err
}

// setStatus 更新状态并记录对应的时间戳字段
func (r *BookingRepository) setStatus(ctx context.Context, id int64, status, timeField string) error {
	return r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":  status,
			timeField: time.Now(),
		}).Error
}

// Confirm 确认预订
func (r *BookingRepository) Confirm(ctx context.Context, id int64) error {
	return r.setStatus(ctx, id, models.BookingStatusConfirmed, "confirmed_at")
}

// Cancel 取消预订
func (r *BookingRepository) Cancel(ctx context.Context, id int64) error {
	return r.setStatus(ctx, id, models.BookingStatusCancelled, "cancelled_at")
}

// Complete 标记完成
func (r *BookingRepository) Complete(ctx context.Context, id int64) error {
	return r.setStatus(ctx, id, models.BookingStatusCompleted, "completed_at")
}

// MarkExpired 标记已过期，仅作用于仍处于待确认状态的预订
func (r *BookingRepository) MarkExpired(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ?", id).
		Where("status = ?", models.BookingStatusPending).
		Update("status", models.BookingStatusExpired).Error
}

// List 按条件分页获取预订，按创建时间倒序
func (r *BookingRepository) List(ctx context.Context, page, pageSize int, filter *BookingFilter) ([]*models.Booking, int64, error) {
	query := filter.apply(r.db.WithContext(ctx).Model(&models.Booking{}))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var bookings []*models.Booking
	err := query.
		Scopes(database.OrderByCreatedDesc, database.Paginate(page, pageSize)).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// ListByPhone 获取联系电话名下的预订
func (r *BookingRepository) ListByPhone(ctx context.Context, phone string, page, pageSize int) ([]*models.Booking, int64, error) {
	return r.List(ctx, page, pageSize, &BookingFilter{ContactPhone: phone})
}

// ListExpiredPending 获取已超时未确认的预订列表
func (r *BookingRepository) ListExpiredPending(ctx context.Context, limit int) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := r.db.WithContext(ctx).
		Where("status = ?", models.BookingStatusPending).
		Where("expire_at IS NOT NULL AND expire_at < ?", time.Now()).
		Limit(limit).
		Find(&bookings).Error
	return bookings, err
}

// ListToComplete 获取退房日已过、需要标记完成的预订列表
func (r *BookingRepository) ListToComplete(ctx context.Context, before string, limit int) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := r.db.WithContext(ctx).
		Where("status = ?", models.BookingStatusConfirmed).
		Where("check_out <= ?", before).
		Limit(limit).
		Find(&bookings).Error
	return bookings, err
}

// ListOverlapping 获取与住宿区间重叠的有效预订（入住日期按左闭右开比较）
func (r *BookingRepository) ListOverlapping(ctx context.Context, checkIn, checkOut string) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := r.db.WithContext(ctx).
		Where("status IN ?", []string{
			models.BookingStatusPending,
			models.BookingStatusConfirmed,
		}).
		Where("check_in < ? AND check_out > ?", checkOut, checkIn).
		Find(&bookings).Error
	return bookings, err
}

// CountByStatus 统计指定状态的预订数量
func (r *BookingRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

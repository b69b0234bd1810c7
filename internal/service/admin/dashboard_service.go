// Package admin 管理端服务
package admin

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/lodge-booking-backend/internal/models"
	"github.com/dumeirei/lodge-booking-backend/internal/repository"
)

// DashboardService 管理端仪表盘服务
type DashboardService struct {
	db          *gorm.DB
	bookingRepo *repository.BookingRepository
}

// NewDashboardService 创建仪表盘服务
func NewDashboardService(db *gorm.DB, bookingRepo *repository.BookingRepository) *DashboardService {
	return &DashboardService{db: db, bookingRepo: bookingRepo}
}

// LodgeOverview 经营概览数据
type LodgeOverview struct {
	// 预订统计
	TotalBookings     int64 `json:"total_bookings"`
	TodayBookings     int64 `json:"today_bookings"`
	PendingBookings   int64 `json:"pending_bookings"`
	ConfirmedBookings int64 `json:"confirmed_bookings"`

	// 当日入住离店
	TodayArrivals   int64 `json:"today_arrivals"`
	TodayDepartures int64 `json:"today_departures"`

	// 收入统计（分）
	TotalRevenue int64 `json:"total_revenue"`
	MonthRevenue int64 `json:"month_revenue"`

	// 露营统计
	CampingBookings int64 `json:"camping_bookings"`
}

// GetOverview 获取经营概览数据
func (s *DashboardService) GetOverview(ctx context.Context) (*LodgeOverview, error) {
	overview := &LodgeOverview{}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := today.Add(24 * time.Hour)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	todayDate := today.Format("2006-01-02")

	// 有效订单（收入按已确认/已完成计）
	revenueStatuses := []string{models.BookingStatusConfirmed, models.BookingStatusCompleted}

	// 预订统计
	s.db.WithContext(ctx).Model(&models.Booking{}).Count(&overview.TotalBookings)
	s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("created_at >= ? AND created_at < ?", today, tomorrow).
		Count(&overview.TodayBookings)
	s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("status = ?", models.BookingStatusPending).
		Count(&overview.PendingBookings)
	s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("status = ?", models.BookingStatusConfirmed).
		Count(&overview.ConfirmedBookings)

	// 当日入住离店
	s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("check_in = ? AND status IN ?", todayDate, revenueStatuses).
		Count(&overview.TodayArrivals)
	s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("check_out = ? AND status IN ?", todayDate, revenueStatuses).
		Count(&overview.TodayDepartures)

	// 总收入
	s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("status IN ?", revenueStatuses).
		Select("COALESCE(SUM(total_amount), 0)").
		Row().Scan(&overview.TotalRevenue)

	// 本月收入
	s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("status IN ? AND created_at >= ?", revenueStatuses, monthStart).
		Select("COALESCE(SUM(total_amount), 0)").
		Row().Scan(&overview.MonthRevenue)

	// 含露营的预订
	s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("camping = ? AND status IN ?", true, revenueStatuses).
		Count(&overview.CampingBookings)

	return overview, nil
}

// BookingTrend 预订趋势数据
type BookingTrend struct {
	Date     string `json:"date"`
	Bookings int64  `json:"bookings"`
	Revenue  int64  `json:"revenue"`
}

// GetBookingTrend 获取预订趋势（最近N天，按下单日期统计）
func (s *DashboardService) GetBookingTrend(ctx context.Context, days int) ([]BookingTrend, error) {
	if days <= 0 {
		days = 7
	}
	if days > 30 {
		days = 30
	}

	trends := make([]BookingTrend, days)
	now := time.Now()

	revenueStatuses := []string{models.BookingStatusConfirmed, models.BookingStatusCompleted}

	for i := days - 1; i >= 0; i-- {
		date := now.Add(-time.Duration(i) * 24 * time.Hour)
		startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
		endOfDay := startOfDay.Add(24 * time.Hour)

		trend := BookingTrend{
			Date: startOfDay.Format("2006-01-02"),
		}

		// 预订数
		s.db.WithContext(ctx).Model(&models.Booking{}).
			Where("created_at >= ? AND created_at < ?", startOfDay, endOfDay).
			Count(&trend.Bookings)

		// 收入
		s.db.WithContext(ctx).Model(&models.Booking{}).
			Where("status IN ? AND created_at >= ? AND created_at < ?",
				revenueStatuses, startOfDay, endOfDay).
			Select("COALESCE(SUM(total_amount), 0)").
			Row().Scan(&trend.Revenue)

		trends[days-1-i] = trend
	}

	return trends, nil
}

// OccupancyDay 单日房态
type OccupancyDay struct {
	Date        string `json:"date"`
	RoomsBooked int64  `json:"rooms_booked"`
	Guests      int64  `json:"guests"`
}

// GetOccupancy 获取日期区间内的房态（已确认预订按晚占用房间数）
func (s *DashboardService) GetOccupancy(ctx context.Context, from, to time.Time) ([]OccupancyDay, error) {
	days := int(to.Sub(from).Hours() / 24)
	if days <= 0 {
		return []OccupancyDay{}, nil
	}
	if days > 62 {
		days = 62
	}

	// 一次取出与整个区间重叠的有效预订，再按晚聚合
	bookings, err := s.bookingRepo.ListOverlapping(ctx,
		from.Format("2006-01-02"),
		from.AddDate(0, 0, days).Format("2006-01-02"))
	if err != nil {
		return nil, err
	}

	results := make([]OccupancyDay, days)
	for i := 0; i < days; i++ {
		// 覆盖该晚的预订：check_in <= date < check_out（日期串可直接按字典序比较）
		date := from.AddDate(0, 0, i).Format("2006-01-02")
		day := OccupancyDay{Date: date}
		for _, b := range bookings {
			if b.CheckIn <= date && date < b.CheckOut {
				day.RoomsBooked += int64(b.Rooms)
				day.Guests += int64(b.Guests)
			}
		}
		results[i] = day
	}

	return results, nil
}

// RecentBooking 最近预订
type RecentBooking struct {
	ID           int64     `json:"id"`
	BookingNo    string    `json:"booking_no"`
	ContactName  string    `json:"contact_name"`
	ContactPhone string    `json:"contact_phone"`
	CheckIn      string    `json:"check_in"`
	CheckOut     string    `json:"check_out"`
	Guests       int       `json:"guests"`
	TotalAmount  int64     `json:"total_amount"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// GetRecentBookings 获取最近预订
func (s *DashboardService) GetRecentBookings(ctx context.Context, limit int) ([]RecentBooking, error) {
	if limit <= 0 {
		limit = 10
	}

	var bookings []models.Booking
	err := s.db.WithContext(ctx).Model(&models.Booking{}).
		Order("created_at DESC").
		Limit(limit).
		Find(&bookings).Error

	if err != nil {
		return nil, err
	}

	results := make([]RecentBooking, len(bookings))
	for i, booking := range bookings {
		results[i] = RecentBooking{
			ID:           booking.ID,
			BookingNo:    booking.BookingNo,
			ContactName:  booking.ContactName,
			ContactPhone: booking.ContactPhone,
			CheckIn:      booking.CheckIn,
			CheckOut:     booking.CheckOut,
			Guests:       booking.Guests,
			TotalAmount:  booking.TotalAmount,
			Status:       booking.Status,
			CreatedAt:    booking.CreatedAt,
		}
	}

	return results, nil
}

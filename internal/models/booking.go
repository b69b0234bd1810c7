package models

import (
	"time"
)

// Booking 预订单
type Booking struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	BookingNo    string     `gorm:"type:varchar(32);uniqueIndex;not null" json:"booking_no"`
	ContactName  string     `gorm:"type:varchar(50);not null" json:"contact_name"`
	ContactPhone string     `gorm:"type:varchar(20);not null;index" json:"contact_phone"`
	ContactEmail *string    `gorm:"type:varchar(100)" json:"contact_email,omitempty"`
	CheckIn      string     `gorm:"type:varchar(10);not null;index" json:"check_in"`
	CheckOut     string     `gorm:"type:varchar(10);not null" json:"check_out"`
	Guests       int        `gorm:"not null" json:"guests"`
	Nights       int        `gorm:"not null" json:"nights"`
	Rooms        int        `gorm:"not null" json:"rooms"`
	Camping      bool       `gorm:"not null;default:false" json:"camping"`
	TotalAmount  int64      `gorm:"not null" json:"total_amount"`
	Quote        JSON       `gorm:"type:jsonb" json:"quote,omitempty"`
	Status       string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Remark       *string    `gorm:"type:varchar(500)" json:"remark,omitempty"`
	ExpireAt     *time.Time `gorm:"index" json:"expire_at,omitempty"`
	ConfirmedAt  *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (Booking) TableName() string {
	return "bookings"
}

// BookingStatus 预订状态
const (
	BookingStatusPending   = "pending"   // 待确认
	BookingStatusConfirmed = "confirmed" // 已确认
	BookingStatusCompleted = "completed" // 已完成
	BookingStatusCancelled = "cancelled" // 已取消
	BookingStatusExpired   = "expired"   // 已过期
)

// CanCancel 判断当前状态是否允许取消
func (b *Booking) CanCancel() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}

// CanConfirm 判断当前状态是否允许确认
func (b *Booking) CanConfirm() bool {
	return b.Status == BookingStatusPending
}

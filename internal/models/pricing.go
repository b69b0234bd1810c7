package models

import (
	"time"
)

// PriceOverride 单晚价格覆盖
// 同一日期同一资源类型最多一条记录
type PriceOverride struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Date         string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_price_overrides_date_type" json:"date"`
	ResourceType string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_price_overrides_date_type" json:"resource_type"`
	Price        int64     `gorm:"not null" json:"price"`
	MaxGuests    *int      `json:"max_guests,omitempty"`
	Remark       *string   `gorm:"type:varchar(255)" json:"remark,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (PriceOverride) TableName() string {
	return "price_overrides"
}

// ResourceType 资源类型
const (
	ResourceTypeRoom    = "room"    // 房间
	ResourceTypeCamping = "camping" // 露营
)

// PricingSetting 定价常量配置（键值存储）
type PricingSetting struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Key         string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"key"`
	Value       string    `gorm:"type:text;not null" json:"value"`
	Type        string    `gorm:"type:varchar(20);not null;default:'int'" json:"type"`
	Description *string   `gorm:"type:varchar(255)" json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (PricingSetting) TableName() string {
	return "pricing_settings"
}

// SettingKey 定价常量键
const (
	SettingKeyRoomPrice        = "room_price"          // 房间单价（分/晚）
	SettingKeyCampingPrice     = "camping_price"       // 露营单价（分/人/晚）
	SettingKeyMaxGuestsPerRoom = "max_guests_per_room" // 单间最大入住人数
	SettingKeyTotalRooms       = "total_rooms"         // 房间总数
)

// SettingType 配置值类型
const (
	SettingTypeInt    = "int"    // 整数
	SettingTypeString = "string" // 字符串
)

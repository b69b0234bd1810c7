// Package pricing 住宿动态定价与房间/露营容量分配引擎
//
// 纯计算、同步、无 I/O。引擎的两个输入（覆盖集合、定价常量）由调用方
// 预先从存储层取出后传入，引擎本身不持有可变共享状态，可被多个报价
// 请求并发调用。
package pricing

import (
	"errors"
	"time"
)

// DateLayout 日期格式（按日历日粒度匹配，不含时间部分）
const DateLayout = "2006-01-02"

// 资源类型
const (
	ResourceRoom    = "room"    // 客房
	ResourceCamping = "camping" // 露营区
)

// 硬错误定义
var (
	// ErrInvalidCapacity 生效的单房容量 <= 0，配置错误，整个报价必须失败
	ErrInvalidCapacity = errors.New("无效的容量配置")
	// ErrMalformedOverride 覆盖记录价格 <= 0 或容量字段非法，整个报价必须失败
	ErrMalformedOverride = errors.New("覆盖记录数据非法")
)

// Stay 一次住宿请求（每次报价临时构造）
type Stay struct {
	CheckIn  time.Time // 入住日
	CheckOut time.Time // 离店日（不含当晚）
	Guests   int       // 客人总数
}

// Nights 返回 [CheckIn, CheckOut) 的整晚数，同日或倒置区间返回 0
func (s Stay) Nights() int {
	in := DateOnly(s.CheckIn)
	out := DateOnly(s.CheckOut)
	n := int(out.Sub(in) / (24 * time.Hour))
	if n < 0 {
		return 0
	}
	return n
}

// Constants 基础定价常量（由设置存储加载，覆盖记录按晚优先于此）
type Constants struct {
	RoomPrice        int64 // 客房每晚基础价（整货币单位）
	CampingPrice     int64 // 露营每人每晚基础价
	MaxGuestsPerRoom int   // 单房最大入住人数
	TotalRooms       int   // 客房物理总数（硬上限）
}

// Override 日期级价格/容量覆盖，(Date, ResourceType) 唯一
type Override struct {
	Date         time.Time
	ResourceType string // room / camping
	Price        int64
	MaxGuests    *int // 仅对 room 有意义，缺省时沿用基础常量
}

// NightRate 某一晚生效的价格与容量（覆盖解析结果）
type NightRate struct {
	Date             time.Time
	RoomPrice        int64
	CampingPrice     int64
	MaxGuestsPerRoom int
	TotalRooms       int
}

// NightAllocation 某一晚的分配结果（派生数据，不持久化）
type NightAllocation struct {
	Date          time.Time `json:"date"`
	RoomsUsed     int       `json:"rooms_used"`
	RoomGuests    int       `json:"room_guests"`
	CampingGuests int       `json:"camping_guests"`
	RoomPrice     int64     `json:"room_price"`
	CampingPrice  int64     `json:"camping_price"`
	Cost          int64     `json:"cost"`
}

// Quote 报价结果，携带完整逐晚明细；汇总字段均由明细推导
type Quote struct {
	Nights      int               `json:"nights"`
	Rooms       int               `json:"rooms"`   // 首晚使用的房间数
	Camping     bool              `json:"camping"` // 任意一晚存在露营客人
	TotalAmount int64             `json:"total_amount"`
	Breakdown   []NightAllocation `json:"breakdown"`
}

// DateOnly 截断到日历日（UTC），引擎内所有日期比较均以此为准
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

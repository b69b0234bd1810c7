package pricing

import "time"

// ComputeQuote 计算一次住宿的完整报价。
//
// 对 [CheckIn, CheckOut) 内的每个日历日独立执行覆盖解析与分配，逐晚
// 价格与容量可以不同。所有调用方（公共预订、管理端模拟器、后台预览）
// 共用这一个入口，汇总字段一律从逐晚明细推导，不做近似计算。
//
// 晚数 <= 0（同日或倒置区间）返回零报价且 error 为 nil：这是用户尚未
// 选完日期的正常状态，调用方据此禁用提交按钮，不能与硬错误混淆。
func ComputeQuote(stay Stay, overrides []Override, c Constants) (*Quote, error) {
	nights := stay.Nights()
	quote := &Quote{Breakdown: []NightAllocation{}}
	if nights <= 0 {
		return quote, nil
	}

	day := DateOnly(stay.CheckIn)
	total := int64(0)
	for i := 0; i < nights; i++ {
		rate, err := ResolveNight(day, overrides, c)
		if err != nil {
			return nil, err
		}
		alloc, err := AllocateNight(stay.Guests, rate)
		if err != nil {
			return nil, err
		}
		total += alloc.Cost
		quote.Breakdown = append(quote.Breakdown, alloc)
		day = day.AddDate(0, 0, 1)
	}

	quote.Nights = nights
	quote.TotalAmount = total
	quote.Rooms = quote.Breakdown[0].RoomsUsed
	for _, a := range quote.Breakdown {
		if a.CampingGuests > 0 {
			quote.Camping = true
			break
		}
	}
	return quote, nil
}

// ParseDate 按 DateLayout 解析日期字符串
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

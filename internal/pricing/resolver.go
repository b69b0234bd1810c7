package pricing

import "time"

// ResolveNight 解析某一晚生效的价格与容量。
//
// 按日历日字符串精确匹配覆盖记录：命中 room 覆盖时替换房价，且其
// MaxGuests 非空时替换单房容量；命中 camping 覆盖时替换露营单价。
// 无覆盖是正常路径，不是错误。命中的覆盖记录非法（价格 <= 0，或
// MaxGuests 存在但 <= 0）时返回 ErrMalformedOverride，绝不静默回退
// 到基础常量，否则会对真实订单错误计价。
func ResolveNight(date time.Time, overrides []Override, c Constants) (NightRate, error) {
	rate := NightRate{
		Date:             DateOnly(date),
		RoomPrice:        c.RoomPrice,
		CampingPrice:     c.CampingPrice,
		MaxGuestsPerRoom: c.MaxGuestsPerRoom,
		TotalRooms:       c.TotalRooms,
	}

	key := rate.Date.Format(DateLayout)
	for _, ov := range overrides {
		if ov.Date.Format(DateLayout) != key {
			continue
		}
		switch ov.ResourceType {
		case ResourceRoom:
			if ov.Price <= 0 {
				return NightRate{}, ErrMalformedOverride
			}
			rate.RoomPrice = ov.Price
			if ov.MaxGuests != nil {
				if *ov.MaxGuests <= 0 {
					return NightRate{}, ErrMalformedOverride
				}
				rate.MaxGuestsPerRoom = *ov.MaxGuests
			}
		case ResourceCamping:
			if ov.Price <= 0 {
				return NightRate{}, ErrMalformedOverride
			}
			rate.CampingPrice = ov.Price
		}
	}

	return rate, nil
}

package pricing

// AllocateNight 计算某一晚的房间分配与费用。
//
// 算法（含物理上限钳制）：
//  1. roomsNeeded = ceil(guests / maxGuestsPerRoom)
//  2. roomsUsed = min(roomsNeeded, totalRooms) —— 房间数存在硬物理上限，
//     超出部分永远不会变成更多房间
//  3. campingGuests = max(0, guests - roomsUsed*maxGuestsPerRoom) ——
//     钳制后装不下的客人全部进入露营区，而不是拒绝预订
//  4. cost = roomsUsed*roomPrice + campingGuests*campingPrice
//
// guests <= 0 返回零分配（调用方 UI 保证最少 1 人，这里仍做防御）；
// 单房容量 <= 0 或房间总数 < 0 返回 ErrInvalidCapacity，绝不除零，
// 也绝不把非法配置钳制成默认值。
func AllocateNight(guests int, rate NightRate) (NightAllocation, error) {
	if rate.MaxGuestsPerRoom <= 0 || rate.TotalRooms < 0 {
		return NightAllocation{}, ErrInvalidCapacity
	}

	alloc := NightAllocation{
		Date:         rate.Date,
		RoomPrice:    rate.RoomPrice,
		CampingPrice: rate.CampingPrice,
	}
	if guests <= 0 {
		return alloc, nil
	}

	roomsNeeded := (guests + rate.MaxGuestsPerRoom - 1) / rate.MaxGuestsPerRoom
	roomsUsed := roomsNeeded
	if roomsUsed > rate.TotalRooms {
		roomsUsed = rate.TotalRooms
	}

	roomCapacity := roomsUsed * rate.MaxGuestsPerRoom
	campingGuests := guests - roomCapacity
	if campingGuests < 0 {
		campingGuests = 0
	}

	alloc.RoomsUsed = roomsUsed
	alloc.RoomGuests = guests - campingGuests
	alloc.CampingGuests = campingGuests
	alloc.Cost = int64(roomsUsed)*rate.RoomPrice + int64(campingGuests)*rate.CampingPrice
	return alloc, nil
}

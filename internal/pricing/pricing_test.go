package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func baseConstants() Constants {
	return Constants{
		RoomPrice:        400000,
		CampingPrice:     40000,
		MaxGuestsPerRoom: 4,
		TotalRooms:       5,
	}
}

func TestResolveNight(t *testing.T) {
	c := baseConstants()

	t.Run("无覆盖时使用基础常量", func(t *testing.T) {
		rate, err := ResolveNight(date("2026-09-01"), nil, c)
		require.NoError(t, err)
		assert.Equal(t, int64(400000), rate.RoomPrice)
		assert.Equal(t, int64(40000), rate.CampingPrice)
		assert.Equal(t, 4, rate.MaxGuestsPerRoom)
		assert.Equal(t, 5, rate.TotalRooms)
	})

	t.Run("房价覆盖仅命中对应日期", func(t *testing.T) {
		overrides := []Override{
			{Date: date("2026-09-02"), ResourceType: ResourceRoom, Price: 600000},
		}

		rate, err := ResolveNight(date("2026-09-02"), overrides, c)
		require.NoError(t, err)
		assert.Equal(t, int64(600000), rate.RoomPrice)
		assert.Equal(t, 4, rate.MaxGuestsPerRoom)

		// 相邻日期不受影响
		rate, err = ResolveNight(date("2026-09-01"), overrides, c)
		require.NoError(t, err)
		assert.Equal(t, int64(400000), rate.RoomPrice)
	})

	t.Run("覆盖的容量字段生效", func(t *testing.T) {
		mg := 2
		overrides := []Override{
			{Date: date("2026-09-02"), ResourceType: ResourceRoom, Price: 600000, MaxGuests: &mg},
		}
		rate, err := ResolveNight(date("2026-09-02"), overrides, c)
		require.NoError(t, err)
		assert.Equal(t, 2, rate.MaxGuestsPerRoom)
	})

	t.Run("露营覆盖不影响房价", func(t *testing.T) {
		overrides := []Override{
			{Date: date("2026-09-02"), ResourceType: ResourceCamping, Price: 55000},
		}
		rate, err := ResolveNight(date("2026-09-02"), overrides, c)
		require.NoError(t, err)
		assert.Equal(t, int64(55000), rate.CampingPrice)
		assert.Equal(t, int64(400000), rate.RoomPrice)
	})

	t.Run("忽略时间部分按日历日匹配", func(t *testing.T) {
		overrides := []Override{
			{Date: date("2026-09-02"), ResourceType: ResourceRoom, Price: 600000},
		}
		noon := time.Date(2026, 9, 2, 12, 30, 0, 0, time.UTC)
		rate, err := ResolveNight(noon, overrides, c)
		require.NoError(t, err)
		assert.Equal(t, int64(600000), rate.RoomPrice)
	})

	t.Run("覆盖价格非法返回硬错误", func(t *testing.T) {
		overrides := []Override{
			{Date: date("2026-09-02"), ResourceType: ResourceRoom, Price: 0},
		}
		_, err := ResolveNight(date("2026-09-02"), overrides, c)
		assert.ErrorIs(t, err, ErrMalformedOverride)
	})

	t.Run("覆盖容量非法返回硬错误", func(t *testing.T) {
		mg := 0
		overrides := []Override{
			{Date: date("2026-09-02"), ResourceType: ResourceRoom, Price: 600000, MaxGuests: &mg},
		}
		_, err := ResolveNight(date("2026-09-02"), overrides, c)
		assert.ErrorIs(t, err, ErrMalformedOverride)
	})
}

func TestAllocateNight(t *testing.T) {
	c := baseConstants()
	rate := NightRate{
		Date:             date("2026-09-01"),
		RoomPrice:        c.RoomPrice,
		CampingPrice:     c.CampingPrice,
		MaxGuestsPerRoom: c.MaxGuestsPerRoom,
		TotalRooms:       c.TotalRooms,
	}

	t.Run("正常分配", func(t *testing.T) {
		alloc, err := AllocateNight(2, rate)
		require.NoError(t, err)
		assert.Equal(t, 1, alloc.RoomsUsed)
		assert.Equal(t, 0, alloc.CampingGuests)
		assert.Equal(t, int64(400000), alloc.Cost)
	})

	t.Run("超出房间上限溢出到露营", func(t *testing.T) {
		// 22 人，5 间房 * 4 人 = 20 人容量，溢出 2 人
		alloc, err := AllocateNight(22, rate)
		require.NoError(t, err)
		assert.Equal(t, 5, alloc.RoomsUsed)
		assert.Equal(t, 20, alloc.RoomGuests)
		assert.Equal(t, 2, alloc.CampingGuests)
		assert.Equal(t, int64(5*400000+2*40000), alloc.Cost)
	})

	t.Run("客人数为零返回零分配", func(t *testing.T) {
		alloc, err := AllocateNight(0, rate)
		require.NoError(t, err)
		assert.Equal(t, 0, alloc.RoomsUsed)
		assert.Equal(t, 0, alloc.CampingGuests)
		assert.Equal(t, int64(0), alloc.Cost)
	})

	t.Run("单房容量非法返回硬错误", func(t *testing.T) {
		bad := rate
		bad.MaxGuestsPerRoom = 0
		_, err := AllocateNight(4, bad)
		assert.ErrorIs(t, err, ErrInvalidCapacity)
	})

	t.Run("房间数随客人数单调不减", func(t *testing.T) {
		prevRooms := 0
		prevCamping := 0
		saturated := false
		for guests := 1; guests <= 60; guests++ {
			alloc, err := AllocateNight(guests, rate)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, alloc.RoomsUsed, prevRooms)
			assert.LessOrEqual(t, alloc.RoomsUsed, rate.TotalRooms)
			if alloc.RoomsUsed == rate.TotalRooms {
				saturated = true
			}
			if saturated {
				// 房间饱和后露营人数单调不减
				assert.GreaterOrEqual(t, alloc.CampingGuests, prevCamping)
			}
			assert.GreaterOrEqual(t, alloc.Cost, int64(0))
			prevRooms = alloc.RoomsUsed
			prevCamping = alloc.CampingGuests
		}
		assert.True(t, saturated)
	})
}

func TestComputeQuote(t *testing.T) {
	c := baseConstants()

	t.Run("两晚无覆盖", func(t *testing.T) {
		// 场景：2 人 2 晚，每晚 1 间房
		stay := Stay{CheckIn: date("2026-09-01"), CheckOut: date("2026-09-03"), Guests: 2}
		quote, err := ComputeQuote(stay, nil, c)
		require.NoError(t, err)
		assert.Equal(t, 2, quote.Nights)
		assert.Equal(t, 1, quote.Rooms)
		assert.False(t, quote.Camping)
		assert.Equal(t, int64(800000), quote.TotalAmount)
		require.Len(t, quote.Breakdown, 2)
		assert.Equal(t, date("2026-09-01"), quote.Breakdown[0].Date)
		assert.Equal(t, date("2026-09-02"), quote.Breakdown[1].Date)
	})

	t.Run("钳制后溢出露营", func(t *testing.T) {
		stay := Stay{CheckIn: date("2026-09-01"), CheckOut: date("2026-09-02"), Guests: 22}
		quote, err := ComputeQuote(stay, nil, c)
		require.NoError(t, err)
		assert.Equal(t, 1, quote.Nights)
		assert.Equal(t, 5, quote.Rooms)
		assert.True(t, quote.Camping)
		assert.Equal(t, int64(2080000), quote.TotalAmount)
	})

	t.Run("覆盖晚独立计算", func(t *testing.T) {
		// 第二晚容量降为 2，同样 4 人需要 2 间房
		mg := 2
		overrides := []Override{
			{Date: date("2026-09-02"), ResourceType: ResourceRoom, Price: 600000, MaxGuests: &mg},
		}
		stay := Stay{CheckIn: date("2026-09-01"), CheckOut: date("2026-09-03"), Guests: 4}
		quote, err := ComputeQuote(stay, overrides, c)
		require.NoError(t, err)
		require.Len(t, quote.Breakdown, 2)
		assert.Equal(t, 1, quote.Breakdown[0].RoomsUsed)
		assert.Equal(t, int64(400000), quote.Breakdown[0].Cost)
		assert.Equal(t, 2, quote.Breakdown[1].RoomsUsed)
		assert.Equal(t, int64(1200000), quote.Breakdown[1].Cost)
		assert.Equal(t, int64(1600000), quote.TotalAmount)
		// 汇总房间数取首晚
		assert.Equal(t, 1, quote.Rooms)
	})

	t.Run("同日区间返回零报价而非错误", func(t *testing.T) {
		stay := Stay{CheckIn: date("2026-09-01"), CheckOut: date("2026-09-01"), Guests: 2}
		quote, err := ComputeQuote(stay, nil, c)
		require.NoError(t, err)
		assert.Equal(t, 0, quote.Nights)
		assert.Equal(t, int64(0), quote.TotalAmount)
		assert.Empty(t, quote.Breakdown)
	})

	t.Run("倒置区间返回零报价", func(t *testing.T) {
		stay := Stay{CheckIn: date("2026-09-03"), CheckOut: date("2026-09-01"), Guests: 2}
		quote, err := ComputeQuote(stay, nil, c)
		require.NoError(t, err)
		assert.Equal(t, 0, quote.Nights)
		assert.Equal(t, int64(0), quote.TotalAmount)
	})

	t.Run("幂等性", func(t *testing.T) {
		mg := 3
		overrides := []Override{
			{Date: date("2026-09-02"), ResourceType: ResourceRoom, Price: 500000, MaxGuests: &mg},
			{Date: date("2026-09-03"), ResourceType: ResourceCamping, Price: 60000},
		}
		stay := Stay{CheckIn: date("2026-09-01"), CheckOut: date("2026-09-05"), Guests: 25}
		q1, err := ComputeQuote(stay, overrides, c)
		require.NoError(t, err)
		q2, err := ComputeQuote(stay, overrides, c)
		require.NoError(t, err)
		assert.Equal(t, q1, q2)
	})

	t.Run("非法覆盖使整个报价失败", func(t *testing.T) {
		overrides := []Override{
			{Date: date("2026-09-02"), ResourceType: ResourceRoom, Price: -1},
		}
		stay := Stay{CheckIn: date("2026-09-01"), CheckOut: date("2026-09-03"), Guests: 2}
		_, err := ComputeQuote(stay, overrides, c)
		assert.ErrorIs(t, err, ErrMalformedOverride)
	})

	t.Run("非法容量配置使整个报价失败", func(t *testing.T) {
		bad := c
		bad.MaxGuestsPerRoom = 0
		stay := Stay{CheckIn: date("2026-09-01"), CheckOut: date("2026-09-03"), Guests: 2}
		_, err := ComputeQuote(stay, nil, bad)
		assert.ErrorIs(t, err, ErrInvalidCapacity)
	})

	t.Run("总价随客人数单调不减", func(t *testing.T) {
		stay := Stay{CheckIn: date("2026-09-01"), CheckOut: date("2026-09-04")}
		prev := int64(0)
		for guests := 1; guests <= 40; guests++ {
			stay.Guests = guests
			quote, err := ComputeQuote(stay, nil, c)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, quote.TotalAmount, prev)
			prev = quote.TotalAmount
		}
	})
}

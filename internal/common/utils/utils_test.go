package utils

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// ==================== 预订号生成测试 ====================

func TestGenerateBookingNo(t *testing.T) {
	for _, prefix := range []string{"BK", "B", ""} {
		bookingNo := GenerateBookingNo(prefix)
		assert.True(t, strings.HasPrefix(bookingNo, prefix))
		// 前缀 + 14 位时间戳 + 6 位随机数
		assert.Len(t, bookingNo, len(prefix)+20)
		for _, c := range bookingNo[len(prefix):] {
			assert.True(t, c >= '0' && c <= '9', "时间戳和随机段应全为数字")
		}
	}
}

func TestGenerateBookingNo_Unique(t *testing.T) {
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		no := GenerateBookingNo("BK")
		_, dup := seen[no]
		assert.False(t, dup, "预订号重复: %s", no)
		seen[no] = struct{}{}
	}
}

func TestGenerateRandomNumber(t *testing.T) {
	for _, length := range []int{4, 6, 10} {
		t.Run(fmt.Sprintf("len-%d", length), func(t *testing.T) {
			number := GenerateRandomNumber(length)
			assert.Len(t, number, length)
			for _, c := range number {
				assert.True(t, c >= '0' && c <= '9')
			}
		})
	}
}

// ==================== 校验测试 ====================

func TestValidatePhone(t *testing.T) {
	valid := []string{"13812345678", "15912345678", "19912345678"}
	invalid := []string{"", "1381234567", "138123456789", "12812345678", "1381234567a", "+8613812345678"}

	for _, phone := range valid {
		assert.True(t, ValidatePhone(phone), phone)
	}
	for _, phone := range invalid {
		assert.False(t, ValidatePhone(phone), phone)
	}
}

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"guest@example.com",
		"zhang.wei@lodge.example.com",
		"guest+camping@example.com",
	}
	invalid := []string{"", "guestexample.com", "guest@", "@example.com", "guest@example"}

	for _, email := range valid {
		assert.True(t, ValidateEmail(email), email)
	}
	for _, email := range invalid {
		assert.False(t, ValidateEmail(email), email)
	}
}

// ==================== 分页测试 ====================

func TestPagination_OffsetLimit(t *testing.T) {
	p := &Pagination{Page: 3, PageSize: 15}
	assert.Equal(t, 30, p.GetOffset())
	assert.Equal(t, 15, p.GetLimit())

	first := &Pagination{Page: 1, PageSize: 10}
	assert.Equal(t, 0, first.GetOffset())
}

func TestPagination_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		in       Pagination
		page     int
		pageSize int
	}{
		{"合法值保持不变", Pagination{Page: 2, PageSize: 20}, 2, 20},
		{"页码过小归一", Pagination{Page: 0, PageSize: 20}, 1, 20},
		{"页码为负归一", Pagination{Page: -1, PageSize: 20}, 1, 20},
		{"页大小缺省为10", Pagination{Page: 1, PageSize: 0}, 1, 10},
		{"页大小封顶100", Pagination{Page: 1, PageSize: 500}, 1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			p.Normalize()
			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.pageSize, p.PageSize)
		})
	}
}

func TestPagination_GetTotalPages(t *testing.T) {
	tests := []struct {
		total    int64
		pageSize int
		want     int
	}{
		{0, 10, 0},
		{5, 10, 1},
		{100, 10, 10},
		{101, 10, 11},
		{100, 20, 5},
	}

	for _, tt := range tests {
		p := &Pagination{Total: tt.total, PageSize: tt.pageSize}
		assert.Equal(t, tt.want, p.GetTotalPages(), "total=%d size=%d", tt.total, tt.pageSize)
	}
}

// ==================== 性能测试 ====================

func BenchmarkGenerateBookingNo(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = GenerateBookingNo("BK")
	}
}

func BenchmarkValidatePhone(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = ValidatePhone("13812345678")
	}
}

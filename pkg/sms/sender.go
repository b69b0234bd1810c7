// Package sms 短信通知
package sms

import (
	"context"
	"time"
)

// Sender 短信发送接口
type Sender interface {
	// SendBookingConfirm 发送预订确认通知
	SendBookingConfirm(ctx context.Context, phone, bookingNo, checkIn string) error
	// SendBookingCancel 发送预订取消通知
	SendBookingCancel(ctx context.Context, phone, bookingNo string) error
}

// MockSender 模拟短信发送器（用于开发/测试）
type MockSender struct {
	SentMessages []MockMessage
}

// MockMessage 模拟消息
type MockMessage struct {
	Phone    string
	Template string
	Params   map[string]string
	SentAt   time.Time
}

// NewMockSender 创建模拟发送器
func NewMockSender() *MockSender {
	return &MockSender{
		SentMessages: make([]MockMessage, 0),
	}
}

func (s *MockSender) record(phone, template string, params map[string]string) {
	s.SentMessages = append(s.SentMessages, MockMessage{
		Phone:    phone,
		Template: template,
		Params:   params,
		SentAt:   time.Now(),
	})
}

// SendBookingConfirm 模拟发送预订确认通知
func (s *MockSender) SendBookingConfirm(ctx context.Context, phone, bookingNo, checkIn string) error {
	s.record(phone, "booking_confirm", map[string]string{
		"booking_no": bookingNo,
		"check_in":   checkIn,
	})
	return nil
}

// SendBookingCancel 模拟发送预订取消通知
func (s *MockSender) SendBookingCancel(ctx context.Context, phone, bookingNo string) error {
	s.record(phone, "booking_cancel", map[string]string{
		"booking_no": bookingNo,
	})
	return nil
}

// GetLastMessage 获取最后发送的消息
func (s *MockSender) GetLastMessage() *MockMessage {
	if len(s.SentMessages) == 0 {
		return nil
	}
	return &s.SentMessages[len(s.SentMessages)-1]
}

// Clear 清空消息记录
func (s *MockSender) Clear() {
	s.SentMessages = make([]MockMessage, 0)
}

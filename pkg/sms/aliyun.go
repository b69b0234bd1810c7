// Package sms 短信通知
package sms

import (
	"context"
	"encoding/json"
	"fmt"

	openapi "github.com/alibabacloud-go/darabonba-openapi/v2/client"
	dysmsapi "github.com/alibabacloud-go/dysmsapi-20170525/v3/client"
	"github.com/alibabacloud-go/tea/tea"
)

// Config 阿里云短信配置
type Config struct {
	AccessKeyID     string
	AccessKeySecret string
	SignName        string
	Endpoint        string // 默认 dysmsapi.aliyuncs.com
	ConfirmTemplate string // 预订确认模板编码
	CancelTemplate  string // 预订取消模板编码
}

// AliyunSender 阿里云短信发送器
type AliyunSender struct {
	client          *dysmsapi.Client
	signName        string
	confirmTemplate string
	cancelTemplate  string
}

// NewAliyunSender 创建阿里云短信发送器
func NewAliyunSender(cfg *Config) (*AliyunSender, error) {
	config := &openapi.Config{
		AccessKeyId:     tea.String(cfg.AccessKeyID),
		AccessKeySecret: tea.String(cfg.AccessKeySecret),
	}

	if cfg.Endpoint != "" {
		config.Endpoint = tea.String(cfg.Endpoint)
	} else {
		config.Endpoint = tea.String("dysmsapi.aliyuncs.com")
	}

	client, err := dysmsapi.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sms client: %w", err)
	}

	return &AliyunSender{
		client:          client,
		signName:        cfg.SignName,
		confirmTemplate: cfg.ConfirmTemplate,
		cancelTemplate:  cfg.CancelTemplate,
	}, nil
}

// send 发送模板短信
func (s *AliyunSender) send(ctx context.Context, phone, templateCode string, params map[string]string) error {
	if templateCode == "" {
		return fmt.Errorf("短信模板未配置")
	}

	templateParam, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("序列化模板参数失败: %w", err)
	}

	request := &dysmsapi.SendSmsRequest{
		PhoneNumbers:  tea.String(phone),
		SignName:      tea.String(s.signName),
		TemplateCode:  tea.String(templateCode),
		TemplateParam: tea.String(string(templateParam)),
	}

	response, err := s.client.SendSms(request)
	if err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}

	if response.Body == nil || response.Body.Code == nil || *response.Body.Code != "OK" {
		msg := "未知错误"
		if response.Body != nil && response.Body.Message != nil {
			msg = *response.Body.Message
		}
		return fmt.Errorf("sms send failed: %s", msg)
	}

	return nil
}

// SendBookingConfirm 发送预订确认通知
func (s *AliyunSender) SendBookingConfirm(ctx context.Context, phone, bookingNo, checkIn string) error {
	return s.send(ctx, phone, s.confirmTemplate, map[string]string{
		"booking_no": bookingNo,
		"check_in":   checkIn,
	})
}

// SendBookingCancel 发送预订取消通知
func (s *AliyunSender) SendBookingCancel(ctx context.Context, phone, bookingNo string) error {
	return s.send(ctx, phone, s.cancelTemplate, map[string]string{
		"booking_no": bookingNo,
	})
}

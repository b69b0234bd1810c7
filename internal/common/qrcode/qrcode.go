// Package qrcode 封装预订凭证二维码的生成
package qrcode

import (
	"encoding/base64"
	"fmt"
	"image"

	"github.com/skip2/go-qrcode"
)

// RecoveryLevel 纠错级别，依次对应 7%、15%、25%、30% 的冗余
type RecoveryLevel int

const (
	Low RecoveryLevel = iota
	Medium
	High
	Highest
)

// levels 映射到底层库的纠错级别
var levels = [...]qrcode.RecoveryLevel{
	Low:     qrcode.Low,
	Medium:  qrcode.Medium,
	High:    qrcode.High,
	Highest: qrcode.Highest,
}

// Generator 二维码生成器
type Generator struct {
	size          int
	recoveryLevel RecoveryLevel
}

// Option 生成器选项
type Option func(*Generator)

// WithSize 设置输出尺寸（像素）
func WithSize(size int) Option {
	return func(g *Generator) { g.size = size }
}

// WithRecoveryLevel 设置纠错级别
func WithRecoveryLevel(level RecoveryLevel) Option {
	return func(g *Generator) { g.recoveryLevel = level }
}

// NewGenerator 创建生成器，默认 256px、中等纠错
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{size: 256, recoveryLevel: Medium}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) level() qrcode.RecoveryLevel {
	if g.recoveryLevel < Low || g.recoveryLevel > Highest {
		return qrcode.Medium
	}
	return levels[g.recoveryLevel]
}

// Generate 生成二维码图片
func (g *Generator) Generate(content string) (image.Image, error) {
	qr, err := qrcode.New(content, g.level())
	if err != nil {
		return nil, fmt.Errorf("创建二维码失败: %w", err)
	}
	return qr.Image(g.size), nil
}

// GeneratePNG 生成 PNG 字节流
func (g *Generator) GeneratePNG(content string) ([]byte, error) {
	return qrcode.Encode(content, g.level(), g.size)
}

// GenerateBase64 生成 Base64 编码的 PNG
func (g *Generator) GenerateBase64(content string) (string, error) {
	data, err := g.GeneratePNG(content)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// GenerateDataURL 生成可直接嵌入 <img> 的 Data URL
func (g *Generator) GenerateDataURL(content string) (string, error) {
	b64, err := g.GenerateBase64(content)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + b64, nil
}

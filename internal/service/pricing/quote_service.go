// Package pricing 提供定价管理服务
package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dumeirei/lodge-booking-backend/internal/common/cache"
	"github.com/dumeirei/lodge-booking-backend/internal/common/config"
	"github.com/dumeirei/lodge-booking-backend/internal/common/errors"
	"github.com/dumeirei/lodge-booking-backend/internal/common/metrics"
	engine "github.com/dumeirei/lodge-booking-backend/internal/pricing"
)

// QuoteService 报价服务
type QuoteService struct {
	settings  *SettingsService
	overrides *OverrideService
	cacheTTL  time.Duration
	useCache  bool
}

// NewQuoteService 创建报价服务
func NewQuoteService(settings *SettingsService, overrides *OverrideService, cfg config.PricingConfig) *QuoteService {
	return &QuoteService{
		settings:  settings,
		overrides: overrides,
		cacheTTL:  time.Duration(cfg.CacheTTL) * time.Second,
		useCache:  cache.GetClient() != nil,
	}
}

// QuoteRequest 报价请求
type QuoteRequest struct {
	CheckIn  string `json:"check_in" binding:"required"`
	CheckOut string `json:"check_out" binding:"required"`
	Guests   int    `json:"guests"`
}

// GetQuote 计算住宿报价
// 同日或倒置区间返回零报价，定价配置非法返回硬错误
func (s *QuoteService) GetQuote(ctx context.Context, req *QuoteRequest) (*engine.Quote, error) {
	checkIn, err := engine.ParseDate(req.CheckIn)
	if err != nil {
		return nil, errors.ErrInvalidStayRange.WithMessage("入住日期格式必须为 YYYY-MM-DD")
	}
	checkOut, err := engine.ParseDate(req.CheckOut)
	if err != nil {
		return nil, errors.ErrInvalidStayRange.WithMessage("退房日期格式必须为 YYYY-MM-DD")
	}

	// 命中缓存直接返回
	key := s.cacheKey(ctx, req)
	if key != "" {
		var cached engine.Quote
		if err := cache.Get(ctx, key, &cached); err == nil {
			metrics.RecordCacheHitGlobal("quote")
			metrics.RecordQuoteGlobal("cache")
			return &cached, nil
		}
		metrics.RecordCacheMissGlobal("quote")
	}

	quote, err := s.compute(ctx, engine.Stay{CheckIn: checkIn, CheckOut: checkOut, Guests: req.Guests})
	if err != nil {
		return nil, err
	}
	metrics.RecordQuoteGlobal("computed")

	if key != "" {
		_ = cache.Set(ctx, key, quote, s.cacheTTL)
	}
	return quote, nil
}

// Simulate 按给定常量模拟报价（管理端调价预览，不读写缓存）
func (s *QuoteService) Simulate(ctx context.Context, req *QuoteRequest, constants *engine.Constants) (*engine.Quote, error) {
	checkIn, err := engine.ParseDate(req.CheckIn)
	if err != nil {
		return nil, errors.ErrInvalidStayRange.WithMessage("入住日期格式必须为 YYYY-MM-DD")
	}
	checkOut, err := engine.ParseDate(req.CheckOut)
	if err != nil {
		return nil, errors.ErrInvalidStayRange.WithMessage("退房日期格式必须为 YYYY-MM-DD")
	}

	stay := engine.Stay{CheckIn: checkIn, CheckOut: checkOut, Guests: req.Guests}

	effective, err := s.settings.GetConstants(ctx)
	if err != nil {
		return nil, err
	}
	if constants != nil {
		effective = *constants
	}

	overrides, err := s.overrides.GetEngineOverrides(ctx)
	if err != nil {
		return nil, err
	}

	return mapEngineError(engine.ComputeQuote(stay, overrides, effective))
}

// compute 加载生效定价数据并执行报价计算
func (s *QuoteService) compute(ctx context.Context, stay engine.Stay) (*engine.Quote, error) {
	constants, err := s.settings.GetConstants(ctx)
	if err != nil {
		return nil, err
	}
	overrides, err := s.overrides.GetEngineOverrides(ctx)
	if err != nil {
		return nil, err
	}
	return mapEngineError(engine.ComputeQuote(stay, overrides, constants))
}

// cacheKey 构建带版本号的报价缓存键，缓存不可用时返回空串
func (s *QuoteService) cacheKey(ctx context.Context, req *QuoteRequest) string {
	if !s.useCache {
		return ""
	}
	version, err := cache.GetString(ctx, cache.KeyPricingVersion)
	if err != nil {
		if err != redis.Nil {
			return ""
		}
		version = "0"
	}
	return fmt.Sprintf("%sv%s:%s:%s:%d", cache.KeyPrefixQuote, version, req.CheckIn, req.CheckOut, req.Guests)
}

// mapEngineError 将引擎错误映射为业务错误码
func mapEngineError(quote *engine.Quote, err error) (*engine.Quote, error) {
	switch err {
	case nil:
		return quote, nil
	case engine.ErrInvalidCapacity:
		return nil, errors.ErrInvalidCapacity
	case engine.ErrMalformedOverride:
		return nil, errors.ErrMalformedOverride
	default:
		return nil, errors.ErrInternalError.WithError(err)
	}
}

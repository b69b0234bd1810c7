package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

// newEnabledTracer 初始化一个启用状态的追踪器（stdout 导出器），测试结束时关闭
func newEnabledTracer(t *testing.T, sampleRate float64) *Tracer {
	t.Helper()
	tracer, err := Init(&Config{
		ServiceName:    "lodge-booking-test",
		ServiceVersion: "0.1.0",
		Environment:    "test",
		SampleRate:     sampleRate,
		Enabled:        true,
	})
	require.NoError(t, err)
	require.NotNil(t, tracer)
	t.Cleanup(func() { _ = tracer.Shutdown(context.Background()) })
	return tracer
}

// ==================== 初始化测试 ====================

func TestInit_NilConfigUsesDefaults(t *testing.T) {
	tracer, err := Init(nil)
	require.NoError(t, err)
	require.NotNil(t, tracer.config)
	assert.Equal(t, "lodge-booking-backend", tracer.config.ServiceName)
	_ = tracer.Shutdown(context.Background())
}

func TestInit_Disabled(t *testing.T) {
	tracer, err := Init(&Config{ServiceName: "disabled", Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, tracer.provider)
	assert.NoError(t, tracer.Shutdown(context.Background()))
}

func TestInit_SampleRates(t *testing.T) {
	// 0、中间值、1 分别对应 Never/Ratio/Always 采样器
	for _, rate := range []float64{0, 0.5, 1.0} {
		tracer := newEnabledTracer(t, rate)
		assert.NotNil(t, tracer.provider)
	}
}

func TestGetTracer(t *testing.T) {
	want := newEnabledTracer(t, 1.0)
	assert.Same(t, want, GetTracer())
}

// ==================== Span 测试 ====================

func TestTracer_Start(t *testing.T) {
	tracer := newEnabledTracer(t, 1.0)

	ctx, span := tracer.Start(context.Background(), "POST /api/admin/bookings")
	require.NotNil(t, ctx)
	require.NotNil(t, span)
	span.End()

	assert.NotNil(t, SpanFromContext(ctx))
}

func TestTracer_StartSpan_WithAttributes(t *testing.T) {
	tracer := newEnabledTracer(t, 1.0)

	ctx, span := tracer.StartSpan(context.Background(), "db-query",
		WithDBTable("bookings"),
		attribute.String("db.operation", "SELECT"),
	)
	require.NotNil(t, ctx)
	require.NotNil(t, span)
	span.End()
}

func TestTracer_DisabledFallsBackToNoop(t *testing.T) {
	disabled := &Tracer{config: &Config{Enabled: false}}

	ctx, span := disabled.Start(context.Background(), "quote-compute")
	require.NotNil(t, ctx)
	require.NotNil(t, span)

	// noop span 的所有操作都必须安全
	span.AddEvent("cache-miss")
	span.SetAttributes(WithBookingNo("BK20260901123456789012"))
	span.End()
}

func TestContextHelpers(t *testing.T) {
	tracer := newEnabledTracer(t, 1.0)
	ctx, span := tracer.Start(context.Background(), "booking-confirm")
	defer span.End()

	// 不 panic 即为通过
	AddEvent(ctx, "admin-login", attribute.String("username", "innkeeper"))
	AddEvent(ctx, "cache-miss")
	SetError(ctx, errors.New("预订不存在"))
	SetAttributes(ctx, WithBookingID(123), WithOperation("confirm"))
}

// ==================== 属性辅助测试 ====================

func TestAttributeHelpers(t *testing.T) {
	tests := []struct {
		attr attribute.KeyValue
		key  string
		val  interface{}
	}{
		{WithAdminID(7), "admin.id", int64(7)},
		{WithBookingID(456), "booking.id", int64(456)},
		{WithBookingNo("BK20260901123456789012"), "booking.no", "BK20260901123456789012"},
		{WithOperation("cancel"), "operation", "cancel"},
		{WithDBTable("price_overrides"), "db.table", "price_overrides"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.key, string(tt.attr.Key))
		assert.Equal(t, tt.val, tt.attr.Value.AsInterface())
	}
}

func TestAttributeKeys(t *testing.T) {
	assert.Equal(t, attribute.Key("stay.date"), AttrStayDate)
	assert.Equal(t, attribute.Key("pricing.resource_type"), AttrResource)
	assert.Equal(t, attribute.Key("db.operation"), AttrDBOperation)
	assert.Equal(t, attribute.Key("cache.key"), AttrCacheKey)
}

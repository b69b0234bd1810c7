// Package errors 定义业务错误码和错误处理
package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError 应用错误，Code 同时决定 HTTP 状态码映射
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New 创建应用错误
func New(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// WithMessage 返回替换了消息的副本，预定义错误本身不受影响
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{Code: e.Code, Message: message, Err: e.Err}
}

// WithError 返回附加了底层错误的副本
func (e *AppError) WithError(err error) *AppError {
	return &AppError{Code: e.Code, Message: e.Message, Err: err}
}

// GetAppError 从错误链中提取应用错误，提取不到时归为未知错误
func GetAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return ErrUnknown.WithError(err)
}

// 通用错误码 (1000-1999)
var (
	ErrUnknown         = New(1000, "未知错误")
	ErrInvalidParams   = New(1001, "参数错误")
	ErrNotFound        = New(1002, "资源不存在")
	ErrAlreadyExists   = New(1003, "资源已存在")
	ErrDatabaseError   = New(1004, "数据库错误")
	ErrCacheError      = New(1005, "缓存错误")
	ErrInternalError   = New(1006, "内部错误")
	ErrExternalService = New(1007, "外部服务错误")
	ErrRateLimitExceed = New(1008, "请求过于频繁")
	ErrOperationFailed = New(1009, "操作失败")
)

// 认证错误码 (2000-2999)
var (
	ErrUnauthorized     = New(2000, "未登录")
	ErrTokenExpired     = New(2001, "登录已过期")
	ErrTokenInvalid     = New(2002, "无效的令牌")
	ErrTokenRefreshFail = New(2003, "刷新令牌失败")
	ErrPermissionDenied = New(2004, "权限不足")
	ErrAccountDisabled  = New(2005, "账号已禁用")
	ErrPasswordError    = New(2006, "密码错误")
	ErrSmsSendFail      = New(2007, "短信发送失败")
)

// 定价错误码 (3000-3999)
var (
	ErrInvalidStayRange    = New(3000, "无效的入住日期区间")
	ErrInvalidCapacity     = New(3001, "容量配置无效")
	ErrMalformedOverride   = New(3002, "价格覆盖数据非法")
	ErrOverrideNotFound    = New(3003, "价格覆盖不存在")
	ErrOverrideExists      = New(3004, "该日期已存在同类型价格覆盖")
	ErrInvalidResourceType = New(3005, "无效的资源类型")
	ErrInvalidPrice        = New(3006, "价格必须为正数")
	ErrSettingNotFound     = New(3007, "定价设置不存在")
)

// 预订错误码 (4000-4999)
var (
	ErrBookingNotFound     = New(4000, "预订不存在")
	ErrBookingStatusError  = New(4001, "预订状态异常")
	ErrBookingExpired      = New(4002, "预订已过期")
	ErrBookingCannotCancel = New(4003, "预订无法取消")
	ErrGuestCountInvalid   = New(4004, "无效的客人数量")
	ErrStayTooLong         = New(4005, "入住天数超出限制")
	ErrEmptyStayRange      = New(4006, "请先选择有效的入住日期")
	ErrContactInvalid      = New(4007, "无效的联系方式")
)

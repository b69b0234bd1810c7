// Package middleware 提供 HTTP 中间件
package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/lodge-booking-backend/internal/models"
	"github.com/dumeirei/lodge-booking-backend/internal/repository"
)

// OperationLogger 操作日志中间件，把管理后台的写操作落库留痕
type OperationLogger struct {
	repo *repository.OperationLogRepository
}

// NewOperationLogger 创建操作日志中间件
func NewOperationLogger(repo *repository.OperationLogRepository) *OperationLogger {
	return &OperationLogger{repo: repo}
}

// OperationConfig 操作配置
type OperationConfig struct {
	Module     string
	Action     string
	TargetType string
}

// 已知路由到模块/操作的映射，未列出的写操作按方法和路径推断
var moduleActionMap = map[string]OperationConfig{
	"PUT /admin/pricing/settings": {
		Module: models.LogModulePricing,
		Action: models.LogActionUpdate,
	},
	"POST /admin/pricing/overrides": {
		Module:     models.LogModulePricing,
		Action:     models.LogActionCreate,
		TargetType: "price_override",
	},
	"DELETE /admin/pricing/overrides": {
		Module:     models.LogModulePricing,
		Action:     models.LogActionDelete,
		TargetType: "price_override",
	},
	"POST /admin/bookings/:id/confirm": {
		Module:     models.LogModuleBooking,
		Action:     models.LogActionConfirm,
		TargetType: "booking",
	},
	"POST /admin/bookings/:id/cancel": {
		Module:     models.LogModuleBooking,
		Action:     models.LogActionCancel,
		TargetType: "booking",
	},
	"POST /admin/auth/login": {
		Module: models.LogModuleAuth,
		Action: models.LogActionLogin,
	},
	"POST /admin/auth/logout": {
		Module: models.LogModuleAuth,
		Action: "logout",
	},
	"PUT /admin/auth/password": {
		Module: models.LogModuleAuth,
		Action: "change_password",
	},
}

// 请求体中不落库的字段
var sensitiveFields = []string{
	"password", "old_password", "new_password", "confirm_password",
	"token", "access_token", "refresh_token",
	"secret", "api_key", "api_secret",
}

// Log 操作日志中间件处理函数，只记录写操作，落库走异步
func (l *OperationLogger) Log() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case "POST", "PUT", "PATCH", "DELETE":
		default:
			c.Next()
			return
		}

		var requestBody []byte
		if c.Request.Body != nil {
			requestBody, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))
		}

		c.Next()

		go l.record(c, requestBody)
	}
}

func (l *OperationLogger) record(c *gin.Context, requestBody []byte) {
	if l.repo == nil {
		return
	}

	adminID, ok := adminIDFrom(c)
	if !ok {
		return
	}

	cfg := l.resolveConfig(c)
	entry := &models.OperationLog{
		AdminID: adminID,
		Module:  cfg.Module,
		Action:  cfg.Action,
		IP:      c.ClientIP(),
	}
	if ua := c.Request.UserAgent(); ua != "" {
		entry.UserAgent = &ua
	}
	if cfg.TargetType != "" {
		entry.TargetType = &cfg.TargetType
		entry.TargetID = targetIDFrom(c)
	}
	if data := filterBody(requestBody); data != nil {
		entry.AfterData = data
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = l.repo.Create(ctx, entry)
}

// resolveConfig 优先查路由映射表，查不到按方法和路径推断
func (l *OperationLogger) resolveConfig(c *gin.Context) OperationConfig {
	path := c.FullPath()
	method := c.Request.Method

	if cfg, ok := moduleActionMap[method+" "+path]; ok {
		return cfg
	}
	// Gin full path 带 /api/v1 前缀，映射表里的键不带
	if cfg, ok := moduleActionMap[method+" "+trimAPIPrefix(path)]; ok {
		return cfg
	}

	cfg := OperationConfig{Module: "unknown", Action: "unknown"}
	switch {
	case strings.Contains(path, "/pricing"):
		cfg.Module = models.LogModulePricing
	case strings.Contains(path, "/bookings"):
		cfg.Module = models.LogModuleBooking
	case strings.Contains(path, "/auth"):
		cfg.Module = models.LogModuleAuth
	case strings.Contains(path, "/admins"):
		cfg.Module = "admin"
	}
	switch method {
	case "POST":
		cfg.Action = models.LogActionCreate
	case "PUT", "PATCH":
		cfg.Action = models.LogActionUpdate
	case "DELETE":
		cfg.Action = models.LogActionDelete
	}
	return cfg
}

func trimAPIPrefix(path string) string {
	path = strings.TrimPrefix(path, "/api")
	return strings.TrimPrefix(path, "/v1")
}

func adminIDFrom(c *gin.Context) (int64, bool) {
	if v, ok := c.Get("admin_id"); ok {
		if id, ok := v.(int64); ok {
			return id, true
		}
	}
	// AdminAuth 中间件只设置 user_id / user_type
	if userType, _ := c.Get("user_type"); userType == "admin" {
		if v, ok := c.Get("user_id"); ok {
			if id, ok := v.(int64); ok {
				return id, true
			}
		}
	}
	return 0, false
}

func targetIDFrom(c *gin.Context) *int64 {
	idStr := c.Param("id")
	if idStr == "" {
		return nil
	}
	if id, err := json.Number(idStr).Int64(); err == nil {
		return &id
	}
	return nil
}

// filterBody 解析请求体并打码敏感字段，非 JSON 对象返回 nil
func filterBody(body []byte) map[string]interface{} {
	if len(body) == 0 {
		return nil
	}
	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil
	}
	if m, ok := maskSensitive(data).(map[string]interface{}); ok {
		return m
	}
	return nil
}

func maskSensitive(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			if isSensitiveKey(key) {
				result[key] = "***"
			} else {
				result[key] = maskSensitive(value)
			}
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = maskSensitive(item)
		}
		return result
	default:
		return data
	}
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, sf := range sensitiveFields {
		if strings.Contains(lower, sf) {
			return true
		}
	}
	return false
}

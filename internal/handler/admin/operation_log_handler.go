// Package admin 管理端 HTTP Handler
package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/lodge-booking-backend/internal/common/handler"
	"github.com/dumeirei/lodge-booking-backend/internal/repository"
)

// OperationLogHandler 操作日志处理器
type OperationLogHandler struct {
	logRepo *repository.OperationLogRepository
}

// NewOperationLogHandler 创建操作日志处理器
func NewOperationLogHandler(logRepo *repository.OperationLogRepository) *OperationLogHandler {
	return &OperationLogHandler{logRepo: logRepo}
}

// List 获取操作日志列表
// @Summary 获取操作日志列表
// @Tags 管理-操作日志
// @Produce json
// @Security Bearer
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Param module query string false "模块" Enums(pricing, booking, auth)
// @Param action query string false "动作"
// @Param admin_id query int false "管理员ID"
// @Param start_date query string false "开始日期 YYYY-MM-DD"
// @Param end_date query string false "结束日期 YYYY-MM-DD"
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/admin/logs [get]
func (h *OperationLogHandler) List(c *gin.Context) {
	p := handler.BindPagination(c)

	adminID, ok := handler.ParseQueryID(c, "admin_id", "管理员")
	if !ok {
		return
	}
	start, end, ok := handler.ParseQueryDateRange(c)
	if !ok {
		return
	}

	filter := &repository.OperationLogFilter{
		Module: c.Query("module"),
		Action: c.Query("action"),
		Since:  start,
		Until:  end,
	}
	if adminID != nil {
		filter.AdminID = *adminID
	}

	logs, total, err := h.logRepo.List(c.Request.Context(), p.GetOffset(), p.GetLimit(), filter)
	handler.MustSucceedPage(c, err, logs, total, p.Page, p.PageSize)
}

// ListByBooking 获取某预订的操作日志
// @Summary 获取某预订的操作日志
// @Tags 管理-操作日志
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/admin/bookings/{id}/logs [get]
func (h *OperationLogHandler) ListByBooking(c *gin.Context) {
	id, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}

	p := handler.BindPagination(c)

	logs, total, err := h.logRepo.ListByTarget(c.Request.Context(), "booking", id, p.GetOffset(), p.GetLimit())
	handler.MustSucceedPage(c, err, logs, total, p.Page, p.PageSize)
}

// RegisterRoutes 注册操作日志路由（需管理员认证）
func (h *OperationLogHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/logs", h.List)
	r.GET("/bookings/:id/logs", h.ListByBooking)
}

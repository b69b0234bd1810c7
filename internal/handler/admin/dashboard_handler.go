// Package admin 管理端 HTTP Handler
package admin

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/lodge-booking-backend/internal/common/response"
	adminService "github.com/dumeirei/lodge-booking-backend/internal/service/admin"
)

// DashboardHandler 仪表盘处理器
type DashboardHandler struct {
	dashboardService *adminService.DashboardService
}

// NewDashboardHandler 创建仪表盘处理器
func NewDashboardHandler(dashboardSvc *adminService.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardSvc,
	}
}

// GetOverview 获取经营概览
// @Summary 获取经营概览
// @Tags 管理-仪表盘
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=adminService.LodgeOverview}
// @Router /api/v1/admin/dashboard/overview [get]
func (h *DashboardHandler) GetOverview(c *gin.Context) {
	overview, err := h.dashboardService.GetOverview(c.Request.Context())
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, overview)
}

// GetBookingTrend 获取预订趋势
// @Summary 获取预订趋势
// @Tags 管理-仪表盘
// @Produce json
// @Security Bearer
// @Param days query int false "天数" default(7)
// @Success 200 {object} response.Response{data=[]adminService.BookingTrend}
// @Router /api/v1/admin/dashboard/booking-trend [get]
func (h *DashboardHandler) GetBookingTrend(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))

	trends, err := h.dashboardService.GetBookingTrend(c.Request.Context(), days)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, trends)
}

// GetOccupancy 获取房态
// @Summary 获取日期区间房态
// @Tags 管理-仪表盘
// @Produce json
// @Security Bearer
// @Param from query string true "开始日期 YYYY-MM-DD"
// @Param to query string true "结束日期 YYYY-MM-DD（不含）"
// @Success 200 {object} response.Response{data=[]adminService.OccupancyDay}
// @Router /api/v1/admin/dashboard/occupancy [get]
func (h *DashboardHandler) GetOccupancy(c *gin.Context) {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		response.BadRequest(c, "请指定开始和结束日期")
		return
	}

	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		response.BadRequest(c, "无效的开始日期格式")
		return
	}
	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		response.BadRequest(c, "无效的结束日期格式")
		return
	}

	days, err := h.dashboardService.GetOccupancy(c.Request.Context(), from, to)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, days)
}

// GetRecentBookings 获取最近预订
// @Summary 获取最近预订
// @Tags 管理-仪表盘
// @Produce json
// @Security Bearer
// @Param limit query int false "数量" default(10)
// @Success 200 {object} response.Response{data=[]adminService.RecentBooking}
// @Router /api/v1/admin/dashboard/recent-bookings [get]
func (h *DashboardHandler) GetRecentBookings(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	bookings, err := h.dashboardService.GetRecentBookings(c.Request.Context(), limit)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, bookings)
}

package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/lodge-booking-backend/internal/common/handler"
	bookingService "github.com/dumeirei/lodge-booking-backend/internal/service/booking"
)

// BookingHandler 预订管理处理器
type BookingHandler struct {
	bookingService *bookingService.BookingService
}

// NewBookingHandler 创建预订管理处理器
func NewBookingHandler(bookingSvc *bookingService.BookingService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingSvc,
	}
}

// List 获取预订列表
// @Summary 获取预订列表
// @Tags 预订管理
// @Produce json
// @Security Bearer
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Param status query string false "状态 pending/confirmed/completed/cancelled/expired"
// @Param booking_no query string false "预订号（模糊匹配）"
// @Param phone query string false "联系电话"
// @Param check_in_from query string false "入住日期起 YYYY-MM-DD"
// @Param check_in_to query string false "入住日期止 YYYY-MM-DD"
// @Success 200 {object} response.PageResponse
// @Router /admin/bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	p := handler.BindPagination(c)

	filters := &bookingService.BookingListFilters{
		Status:      c.Query("status"),
		BookingNo:   c.Query("booking_no"),
		Phone:       c.Query("phone"),
		CheckInFrom: c.Query("check_in_from"),
		CheckInTo:   c.Query("check_in_to"),
	}

	list, total, err := h.bookingService.List(c.Request.Context(), p.Page, p.PageSize, filters)
	handler.MustSucceedPage(c, err, list, total, p.Page, p.PageSize)
}

// Confirm 确认预订
// @Summary 确认待确认的预订（触发短信通知）
// @Tags 预订管理
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Router /admin/bookings/{id}/confirm [post]
func (h *BookingHandler) Confirm(c *gin.Context) {
	id, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}

	info, err := h.bookingService.Confirm(c.Request.Context(), id)
	handler.MustSucceed(c, err, info)
}

// Cancel 取消预订
// @Summary 管理员取消预订（触发短信通知）
// @Tags 预订管理
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response
// @Router /admin/bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	id, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}

	err := h.bookingService.AdminCancel(c.Request.Context(), id)
	handler.MustSucceed(c, err, nil)
}

// RegisterRoutes 注册预订管理路由（需管理员认证）
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup) {
	bookings := r.Group("/bookings")
	{
		bookings.GET("", h.List)
		bookings.POST("/:id/confirm", h.Confirm)
		bookings.POST("/:id/cancel", h.Cancel)
	}
}

// Package booking 提供预订相关的 HTTP Handler
package booking

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/lodge-booking-backend/internal/common/handler"
	"github.com/dumeirei/lodge-booking-backend/internal/common/response"
	bookingService "github.com/dumeirei/lodge-booking-backend/internal/service/booking"
)

// BookingHandler 预订处理器
type BookingHandler struct {
	bookingService *bookingService.BookingService
}

// NewBookingHandler 创建预订处理器
func NewBookingHandler(bookingSvc *bookingService.BookingService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingSvc,
	}
}

// Create 创建预订
// @Summary 创建预订（金额由服务端按当前定价计算）
// @Tags 预订
// @Accept json
// @Produce json
// @Param request body bookingService.CreateBookingRequest true "请求参数"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	var req bookingService.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	info, err := h.bookingService.Create(c.Request.Context(), &req)
	handler.MustSucceed(c, err, info)
}

// GetByBookingNo 按预订号查询预订
// @Summary 按预订号查询预订（含报价明细和到店二维码）
// @Tags 预订
// @Produce json
// @Param booking_no path string true "预订号"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Router /bookings/{booking_no} [get]
func (h *BookingHandler) GetByBookingNo(c *gin.Context) {
	bookingNo := c.Param("booking_no")
	if bookingNo == "" {
		response.BadRequest(c, "请提供预订号")
		return
	}

	info, err := h.bookingService.GetByBookingNo(c.Request.Context(), bookingNo)
	handler.MustSucceed(c, err, info)
}

// ListByPhone 按联系电话查询预订
// @Summary 按联系电话查询本人预订
// @Tags 预订
// @Produce json
// @Param phone query string true "下单时的联系电话"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /bookings [get]
func (h *BookingHandler) ListByPhone(c *gin.Context) {
	phone := c.Query("phone")
	if phone == "" {
		response.BadRequest(c, "请提供联系电话")
		return
	}

	p := handler.BindPagination(c)
	list, total, err := h.bookingService.ListByPhone(c.Request.Context(), phone, p.Page, p.PageSize)
	handler.MustSucceedPage(c, err, list, total, p.Page, p.PageSize)
}

// CancelRequest 取消预订请求
type CancelRequest struct {
	ContactPhone string `json:"contact_phone" binding:"required"`
}

// Cancel 客人取消预订
// @Summary 取消预订（需提供下单时的联系电话）
// @Tags 预订
// @Accept json
// @Produce json
// @Param booking_no path string true "预订号"
// @Param request body CancelRequest true "请求参数"
// @Success 200 {object} response.Response
// @Router /bookings/{booking_no}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	bookingNo := c.Param("booking_no")
	if bookingNo == "" {
		response.BadRequest(c, "请提供预订号")
		return
	}

	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	err := h.bookingService.Cancel(c.Request.Context(), bookingNo, req.ContactPhone)
	handler.MustSucceed(c, err, nil)
}

// RegisterRoutes 注册公开预订路由，createMiddleware 仅作用于创建接口
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, createMiddleware ...gin.HandlerFunc) {
	bookings := r.Group("/bookings")
	{
		bookings.POST("", append(createMiddleware, h.Create)...)
		bookings.GET("", h.ListByPhone)
		bookings.GET("/:booking_no", h.GetByBookingNo)
		bookings.POST("/:booking_no/cancel", h.Cancel)
	}
}

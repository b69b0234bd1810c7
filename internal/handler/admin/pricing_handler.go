package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/lodge-booking-backend/internal/common/handler"
	"github.com/dumeirei/lodge-booking-backend/internal/common/response"
	engine "github.com/dumeirei/lodge-booking-backend/internal/pricing"
	pricingService "github.com/dumeirei/lodge-booking-backend/internal/service/pricing"
)

// PricingHandler 定价管理处理器
type PricingHandler struct {
	settingsService *pricingService.SettingsService
	overrideService *pricingService.OverrideService
	quoteService    *pricingService.QuoteService
}

// NewPricingHandler 创建定价管理处理器
func NewPricingHandler(
	settingsSvc *pricingService.SettingsService,
	overrideSvc *pricingService.OverrideService,
	quoteSvc *pricingService.QuoteService,
) *PricingHandler {
	return &PricingHandler{
		settingsService: settingsSvc,
		overrideService: overrideSvc,
		quoteService:    quoteSvc,
	}
}

// GetSettings 获取定价设置
// @Summary 获取当前生效的定价常量
// @Tags 定价管理
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=engine.Constants}
// @Router /admin/pricing/settings [get]
func (h *PricingHandler) GetSettings(c *gin.Context) {
	constants, err := h.settingsService.GetConstants(c.Request.Context())
	handler.MustSucceed(c, err, constants)
}

// UpdateSettings 更新定价设置
// @Summary 更新定价常量（未提供的字段保持不变）
// @Tags 定价管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body pricingService.UpdateSettingsRequest true "请求参数"
// @Success 200 {object} response.Response{data=engine.Constants}
// @Router /admin/pricing/settings [put]
func (h *PricingHandler) UpdateSettings(c *gin.Context) {
	var req pricingService.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	constants, err := h.settingsService.UpdateSettings(c.Request.Context(), &req)
	handler.MustSucceed(c, err, constants)
}

// ListOverrides 获取价格覆盖列表
// @Summary 获取单日价格覆盖列表
// @Tags 定价管理
// @Produce json
// @Security Bearer
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Param resource_type query string false "资源类型 room/camping"
// @Param date_from query string false "起始日期 YYYY-MM-DD"
// @Param date_to query string false "结束日期 YYYY-MM-DD（不含）"
// @Success 200 {object} response.PageResponse
// @Router /admin/pricing/overrides [get]
func (h *PricingHandler) ListOverrides(c *gin.Context) {
	p := handler.BindPagination(c)

	overrides, total, err := h.overrideService.List(
		c.Request.Context(),
		p.Page, p.PageSize,
		c.Query("resource_type"),
		c.Query("date_from"),
		c.Query("date_to"),
	)
	handler.MustSucceedPage(c, err, overrides, total, p.Page, p.PageSize)
}

// UpsertOverride 创建或更新价格覆盖
// @Summary 创建或更新单日价格覆盖（同一日期同一资源类型唯一）
// @Tags 定价管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body pricingService.UpsertOverrideRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.PriceOverride}
// @Router /admin/pricing/overrides [post]
func (h *PricingHandler) UpsertOverride(c *gin.Context) {
	var req pricingService.UpsertOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	override, err := h.overrideService.Upsert(c.Request.Context(), &req)
	handler.MustSucceed(c, err, override)
}

// DeleteOverride 删除价格覆盖
// @Summary 删除单日价格覆盖
// @Tags 定价管理
// @Produce json
// @Security Bearer
// @Param date query string true "日期 YYYY-MM-DD"
// @Param resource_type query string true "资源类型 room/camping"
// @Success 200 {object} response.Response
// @Router /admin/pricing/overrides [delete]
func (h *PricingHandler) DeleteOverride(c *gin.Context) {
	date := c.Query("date")
	resourceType := c.Query("resource_type")
	if date == "" || resourceType == "" {
		response.BadRequest(c, "请指定日期和资源类型")
		return
	}

	err := h.overrideService.Delete(c.Request.Context(), date, resourceType)
	handler.MustSucceed(c, err, nil)
}

// SimulateRequest 报价模拟请求
type SimulateRequest struct {
	CheckIn   string            `json:"check_in" binding:"required"`
	CheckOut  string            `json:"check_out" binding:"required"`
	Guests    int               `json:"guests" binding:"required"`
	Constants *engine.Constants `json:"constants"`
}

// Simulate 报价模拟
// @Summary 按假设的定价常量模拟报价（不落库、不走缓存）
// @Tags 定价管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body SimulateRequest true "请求参数"
// @Success 200 {object} response.Response{data=engine.Quote}
// @Router /admin/pricing/simulate [post]
func (h *PricingHandler) Simulate(c *gin.Context) {
	var req SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	quote, err := h.quoteService.Simulate(c.Request.Context(), &pricingService.QuoteRequest{
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
		Guests:   req.Guests,
	}, req.Constants)
	handler.MustSucceed(c, err, quote)
}

// RegisterRoutes 注册定价管理路由（需管理员认证）
func (h *PricingHandler) RegisterRoutes(r *gin.RouterGroup) {
	pricing := r.Group("/pricing")
	{
		pricing.GET("/settings", h.GetSettings)
		pricing.PUT("/settings", h.UpdateSettings)
		pricing.GET("/overrides", h.ListOverrides)
		pricing.POST("/overrides", h.UpsertOverride)
		pricing.DELETE("/overrides", h.DeleteOverride)
		pricing.POST("/simulate", h.Simulate)
	}
}

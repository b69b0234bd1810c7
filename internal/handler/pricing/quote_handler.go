// Package pricing 提供报价相关的 HTTP Handler
package pricing

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/lodge-booking-backend/internal/common/handler"
	"github.com/dumeirei/lodge-booking-backend/internal/common/response"
	pricingService "github.com/dumeirei/lodge-booking-backend/internal/service/pricing"
)

// QuoteHandler 报价处理器
type QuoteHandler struct {
	quoteService *pricingService.QuoteService
}

// NewQuoteHandler 创建报价处理器
func NewQuoteHandler(quoteSvc *pricingService.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		quoteService: quoteSvc,
	}
}

// GetQuote 获取报价
// @Summary 按入住区间和人数计算报价（含逐夜明细）
// @Tags 报价
// @Accept json
// @Produce json
// @Param request body pricingService.QuoteRequest true "请求参数"
// @Success 200 {object} response.Response{data=engine.Quote}
// @Router /quotes [post]
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	var req pricingService.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	quote, err := h.quoteService.GetQuote(c.Request.Context(), &req)
	handler.MustSucceed(c, err, quote)
}

// RegisterRoutes 注册公开报价路由
func (h *QuoteHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/quotes", h.GetQuote)
}

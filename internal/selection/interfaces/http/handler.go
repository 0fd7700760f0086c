package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/response"

	"github.com/wyfcoding/optionselector/internal/selection/application"
	"github.com/wyfcoding/optionselector/internal/selection/domain"
	"github.com/wyfcoding/optionselector/pkg/utils"
)

// HTTP 处理器
// 负责处理合约选择相关的 HTTP 请求
type SelectionHandler struct {
	command *application.CommandService
	query   *application.QueryService
}

// 创建 HTTP 处理器实例
func NewSelectionHandler(command *application.CommandService, query *application.QueryService) *SelectionHandler {
	return &SelectionHandler{command: command, query: query}
}

// 注册路由
func (h *SelectionHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/v1/selection")
	{
		api.POST("/select", h.RunSelection)
		api.GET("/selections/:id", h.GetSelection)
		api.GET("/latest/:symbol", h.GetLatest)
		api.GET("/history/:symbol", h.ListSelections)
	}
}

// RunSelectionRequest 发起选择请求
type RunSelectionRequest struct {
	Symbol         string   `json:"symbol" binding:"required"`
	SpotPrice      float64  `json:"spot_price" binding:"required,gt=0"`
	Bias           string   `json:"bias" binding:"required,oneof=BULLISH BEARISH NEUTRAL"`
	StrikeInterval float64  `json:"strike_interval" binding:"required,gt=0"`
	DaysToExpiry   *float64 `json:"days_to_expiry" binding:"required"`
	MinDelta       float64  `json:"min_delta"`
	MaxDelta       *float64 `json:"max_delta" binding:"omitempty,gt=0"`
	MinGamma       float64  `json:"min_gamma"`
	PreferATM      *bool    `json:"prefer_atm"`
}

// RunSelection 执行一次合约选择
func (h *SelectionHandler) RunSelection(c *gin.Context) {
	var req RunSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	cmd := application.RunSelectionCommand{
		Symbol:         req.Symbol,
		SpotPrice:      req.SpotPrice,
		Bias:           req.Bias,
		StrikeInterval: req.StrikeInterval,
		DaysToExpiry:   *req.DaysToExpiry,
		MinDelta:       req.MinDelta,
		MaxDelta:       1.0,
		MinGamma:       req.MinGamma,
		PreferATM:      true,
	}
	if req.MaxDelta != nil {
		cmd.MaxDelta = *req.MaxDelta
	}
	if req.PreferATM != nil {
		cmd.PreferATM = *req.PreferATM
	}

	dto, err := h.command.RunSelection(c.Request.Context(), cmd)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidConfiguration) {
			response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
			return
		}
		logging.Error(c.Request.Context(), "Failed to run selection", "symbol", req.Symbol, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}

	response.Success(c, dto)
}

// GetSelection 按 ID 查询选择结果
func (h *SelectionHandler) GetSelection(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.ErrorWithStatus(c, http.StatusBadRequest, "id is required", "")
		return
	}

	dto, err := h.query.GetSelection(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrSelectionNotFound) {
			response.ErrorWithStatus(c, http.StatusNotFound, "selection not found", "")
			return
		}
		logging.Error(c.Request.Context(), "Failed to get selection", "id", id, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}

	response.Success(c, dto)
}

// GetLatest 查询某标的最近一次选择结果
func (h *SelectionHandler) GetLatest(c *gin.Context) {
	symbol := c.Param("symbol")
	if symbol == "" {
		response.ErrorWithStatus(c, http.StatusBadRequest, "symbol is required", "")
		return
	}

	dto, err := h.query.GetLatest(c.Request.Context(), symbol)
	if err != nil {
		if errors.Is(err, domain.ErrSelectionNotFound) {
			response.ErrorWithStatus(c, http.StatusNotFound, "no selection for symbol", "")
			return
		}
		logging.Error(c.Request.Context(), "Failed to get latest selection", "symbol", symbol, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}

	response.Success(c, dto)
}

// ListSelections 分页查询历史选择结果
func (h *SelectionHandler) ListSelections(c *gin.Context) {
	symbol := c.Param("symbol")
	if symbol == "" {
		response.ErrorWithStatus(c, http.StatusBadRequest, "symbol is required", "")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	p := utils.NewPagination(page, pageSize, 0)

	dtos, total, err := h.query.ListSelections(c.Request.Context(), symbol, p.Limit(), p.Offset())
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to list selections", "symbol", symbol, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}

	response.Success(c, gin.H{
		"pagination": utils.NewPagination(page, pageSize, total),
		"selections": dtos,
	})
}

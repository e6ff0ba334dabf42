package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/shange6/wantong/internal/mes/entity"
	"github.com/shange6/wantong/internal/mes/repository"
	"github.com/shange6/wantong/internal/mes/service"
)

// OrderHandler 生产订单明细处理器
type OrderHandler struct {
	svc *service.OrderService
}

func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// List 获取订单明细列表
func (h *OrderHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := &repository.OrderListParams{
		ProjectCode: c.Query("project_code"),
		Wtcode:      c.Query("wtcode"),
		Code:        c.Query("code"),
		Page:        page,
		PageSize:    pageSize,
	}

	items, total, err := h.svc.ListOrders(c.Request.Context(), params)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, ListResponse{Items: items, Pagination: NewPagination(page, pageSize, total)})
}

// Get 获取订单明细详情
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		BadRequest(c, "无效的订单ID")
		return
	}

	item, err := h.svc.GetOrder(c.Request.Context(), id)
	if err != nil {
		NotFound(c, "订单明细不存在")
		return
	}
	Success(c, item)
}

// Create 手工补录订单明细
func (h *OrderHandler) Create(c *gin.Context) {
	var input service.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	item, err := h.svc.CreateOrder(c.Request.Context(), &input)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, item)
}

// MarkStage 标记工序完工
func (h *OrderHandler) MarkStage(c *gin.Context) {
	var input service.StageUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}
	if input.User == "" {
		input.User = GetUserName(c)
	}

	item, err := h.svc.MarkStage(c.Request.Context(), &input)
	if err != nil {
		h.stageError(c, err)
		return
	}
	Success(c, item)
}

// UnmarkStage 撤销工序完工
func (h *OrderHandler) UnmarkStage(c *gin.Context) {
	var input service.StageUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	item, err := h.svc.UnmarkStage(c.Request.Context(), &input)
	if err != nil {
		h.stageError(c, err)
		return
	}
	Success(c, item)
}

func (h *OrderHandler) stageError(c *gin.Context, err error) {
	var violation *entity.StageOrderViolation
	switch {
	case errors.As(err, &violation):
		Conflict(c, violation.Error())
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, "订单明细不存在")
	default:
		InternalError(c, err.Error())
	}
}

// Delete 删除订单明细
func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		BadRequest(c, "无效的订单ID")
		return
	}

	if err := h.svc.DeleteOrder(c.Request.Context(), id); err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, nil)
}

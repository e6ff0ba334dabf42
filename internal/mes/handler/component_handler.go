package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/shange6/wantong/internal/mes/repository"
	"github.com/shange6/wantong/internal/mes/service"
)

// ComponentHandler 部件处理器
type ComponentHandler struct {
	svc *service.ComponentService
}

func NewComponentHandler(svc *service.ComponentService) *ComponentHandler {
	return &ComponentHandler{svc: svc}
}

// List 获取部件列表
func (h *ComponentHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := &repository.ComponentListParams{
		ProjectCode: c.Query("project_code"),
		Wtcode:      c.Query("wtcode"),
		Code:        c.Query("code"),
		Name:        c.Query("name"),
		Page:        page,
		PageSize:    pageSize,
	}

	components, total, err := h.svc.ListComponents(c.Request.Context(), params)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, ListResponse{Items: components, Pagination: NewPagination(page, pageSize, total)})
}

// ListUnordered 获取未生成订单明细的部件
func (h *ComponentHandler) ListUnordered(c *gin.Context) {
	projectCode := c.Query("project_code")
	if projectCode == "" {
		BadRequest(c, "缺少项目编码")
		return
	}

	components, err := h.svc.ListUnordered(c.Request.Context(), projectCode)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": components})
}

// Get 获取部件详情
func (h *ComponentHandler) Get(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		BadRequest(c, "无效的部件ID")
		return
	}

	component, err := h.svc.GetComponent(c.Request.Context(), id)
	if err != nil {
		NotFound(c, "部件不存在")
		return
	}
	Success(c, component)
}

// Create 创建部件
func (h *ComponentHandler) Create(c *gin.Context) {
	var input service.CreateComponentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	component, err := h.svc.CreateComponent(c.Request.Context(), &input)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, component)
}

// Update 更新部件
func (h *ComponentHandler) Update(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		BadRequest(c, "无效的部件ID")
		return
	}

	var input service.UpdateComponentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	component, err := h.svc.UpdateComponent(c.Request.Context(), id, &input)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "部件不存在")
			return
		}
		InternalError(c, err.Error())
		return
	}
	Success(c, component)
}

// Delete 删除部件
func (h *ComponentHandler) Delete(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		BadRequest(c, "无效的部件ID")
		return
	}

	if err := h.svc.DeleteComponent(c.Request.Context(), id); err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, nil)
}

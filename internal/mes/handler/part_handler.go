package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/shange6/wantong/internal/mes/repository"
	"github.com/shange6/wantong/internal/mes/service"
)

// PartHandler 零件处理器
type PartHandler struct {
	svc *service.PartService
}

func NewPartHandler(svc *service.PartService) *PartHandler {
	return &PartHandler{svc: svc}
}

// List 获取零件列表
func (h *PartHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := &repository.PartListParams{
		ProjectCode: c.Query("project_code"),
		Wtcode:      c.Query("wtcode"),
		Code:        c.Query("code"),
		Material:    c.Query("material"),
		Page:        page,
		PageSize:    pageSize,
	}

	parts, total, err := h.svc.ListParts(c.Request.Context(), params)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, ListResponse{Items: parts, Pagination: NewPagination(page, pageSize, total)})
}

// Tree 获取项目零件树，节点带读取时现算的汇总重量
func (h *PartHandler) Tree(c *gin.Context) {
	projectCode := c.Query("project_code")
	if projectCode == "" {
		BadRequest(c, "缺少项目编码")
		return
	}

	tree, err := h.svc.GetPartTree(c.Request.Context(), projectCode)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": tree})
}

// Get 获取零件详情
func (h *PartHandler) Get(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		BadRequest(c, "无效的零件ID")
		return
	}

	part, err := h.svc.GetPart(c.Request.Context(), id)
	if err != nil {
		NotFound(c, "零件不存在")
		return
	}
	Success(c, part)
}

// Create 创建零件
func (h *PartHandler) Create(c *gin.Context) {
	var input service.CreatePartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	part, err := h.svc.CreatePart(c.Request.Context(), &input)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, part)
}

// Update 更新零件
func (h *PartHandler) Update(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		BadRequest(c, "无效的零件ID")
		return
	}

	var input service.UpdatePartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	part, err := h.svc.UpdatePart(c.Request.Context(), id, &input)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "零件不存在")
			return
		}
		InternalError(c, err.Error())
		return
	}
	Success(c, part)
}

// Delete 删除零件
func (h *PartHandler) Delete(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		BadRequest(c, "无效的零件ID")
		return
	}

	if err := h.svc.DeletePart(c.Request.Context(), id); err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, nil)
}

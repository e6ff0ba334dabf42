package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/shange6/wantong/internal/mes/repository"
	"github.com/shange6/wantong/internal/mes/service"
)

// ProjectHandler 项目处理器
type ProjectHandler struct {
	svc *service.ProjectService
}

func NewProjectHandler(svc *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

// List 获取项目列表
func (h *ProjectHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := &repository.ProjectListParams{
		Code:     c.Query("code"),
		Name:     c.Query("name"),
		No:       c.Query("no"),
		Page:     page,
		PageSize: pageSize,
	}

	projects, total, err := h.svc.ListProjects(c.Request.Context(), params)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, ListResponse{Items: projects, Pagination: NewPagination(page, pageSize, total)})
}

// Get 获取项目详情
func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		BadRequest(c, "无效的项目ID")
		return
	}

	project, err := h.svc.GetProject(c.Request.Context(), id)
	if err != nil {
		NotFound(c, "项目不存在")
		return
	}
	Success(c, project)
}

// Create 创建项目
func (h *ProjectHandler) Create(c *gin.Context) {
	var input service.CreateProjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	project, err := h.svc.CreateProject(c.Request.Context(), &input)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, project)
}

// Update 更新项目
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		BadRequest(c, "无效的项目ID")
		return
	}

	var input service.UpdateProjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	project, err := h.svc.UpdateProject(c.Request.Context(), id, &input)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "项目不存在")
			return
		}
		InternalError(c, err.Error())
		return
	}
	Success(c, project)
}

// Delete 删除项目
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		BadRequest(c, "无效的项目ID")
		return
	}

	if err := h.svc.DeleteProject(c.Request.Context(), id); err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, nil)
}

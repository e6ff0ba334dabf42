package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shange6/wantong/internal/config"
	"github.com/shange6/wantong/internal/mes/service"
)

// Handlers 处理器集合
type Handlers struct {
	Project   *ProjectHandler
	Component *ComponentHandler
	Part      *PartHandler
	Order     *OrderHandler
	Data      *DataHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svc *service.Services, cfg *config.Config) *Handlers {
	return &Handlers{
		Project:   NewProjectHandler(svc.Project),
		Component: NewComponentHandler(svc.Component),
		Part:      NewPartHandler(svc.Part),
		Order:     NewOrderHandler(svc.Order),
		Data:      NewDataHandler(svc.Import, svc.Storage, cfg),
	}
}

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse 列表响应结构
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

// Pagination 分页信息
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPagination 组装分页信息，pageSize 为 0 表示不分页
func NewPagination(page, pageSize int, total int64) *Pagination {
	p := &Pagination{Page: page, PageSize: pageSize, Total: int(total)}
	if pageSize > 0 {
		p.TotalPages = int(total) / pageSize
		if int(total)%pageSize > 0 {
			p.TotalPages++
		}
	}
	return p
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 参数错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// Conflict 状态冲突响应
func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

// InternalError 服务器错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// GetUserID 从上下文获取用户ID
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetUserName 从上下文获取用户名
func GetUserName(c *gin.Context) string {
	name, _ := c.Get("user_name")
	if n, ok := name.(string); ok {
		return n
	}
	return ""
}

// GetPagination 从请求获取分页参数
func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v >= 0 && v <= 500 {
			pageSize = v
		}
	}

	return page, pageSize
}

// ParamID 解析路径中的数字主键
func ParamID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

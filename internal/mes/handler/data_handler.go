package handler

import (
	"bytes"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/shange6/wantong/internal/config"
	"github.com/shange6/wantong/internal/mes/service"
)

// DataHandler 明细导入处理器：上传解析与审阅后提交
type DataHandler struct {
	importSvc  *service.ImportService
	storageSvc *service.StorageService
	cfg        *config.Config
}

func NewDataHandler(importSvc *service.ImportService, storageSvc *service.StorageService, cfg *config.Config) *DataHandler {
	return &DataHandler{importSvc: importSvc, storageSvc: storageSvc, cfg: cfg}
}

// Upload 上传明细文件，返回解析出的零件树供审阅。
// 带 project_code 时会对照现有目录标注每行的 create/update 动作。
func (h *DataHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "未找到上传文件")
		return
	}
	if fileHeader.Size > h.cfg.Import.MaxUploadSize {
		BadRequest(c, "上传文件超过大小限制")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		InternalError(c, "打开上传文件失败: "+err.Error())
		return
	}
	defer f.Close()

	// 原件归档和解析各读一遍，先整体读入
	data, err := io.ReadAll(f)
	if err != nil {
		InternalError(c, "读取上传文件失败: "+err.Error())
		return
	}

	projectCode := c.PostForm("project_code")
	baseWtcode := c.PostForm("wtcode")

	result, err := h.importSvc.ParseUpload(c.Request.Context(), projectCode, baseWtcode, fileHeader.Filename, bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, service.ErrEmptyUpload) {
			BadRequest(c, err.Error())
			return
		}
		InternalError(c, err.Error())
		return
	}

	if projectCode != "" {
		contentType := fileHeader.Header.Get("Content-Type")
		if _, err := h.storageSvc.ArchiveUpload(c.Request.Context(), projectCode, fileHeader.Filename, bytes.NewReader(data), fileHeader.Size, contentType); err != nil {
			// 归档失败不阻塞解析结果
			result.Info = append(result.Info, "信息!!!上传原件归档失败: "+err.Error())
		}
	}

	Success(c, result)
}

// Commit 提交审阅后的零件表，整体事务落库
func (h *DataHandler) Commit(c *gin.Context) {
	var req service.CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	result, err := h.importSvc.Commit(c.Request.Context(), &req)
	if err != nil {
		var conflict *service.ConcurrentImportConflict
		var failure *service.CommitFailure
		switch {
		case errors.As(err, &conflict):
			Conflict(c, conflict.Error())
		case errors.Is(err, service.ErrProjectCodeRequired):
			BadRequest(c, err.Error())
		case errors.As(err, &failure):
			InternalError(c, failure.Error())
		default:
			InternalError(c, err.Error())
		}
		return
	}

	Success(c, result)
}

// Export 导出项目零件表为 xlsx
func (h *DataHandler) Export(c *gin.Context) {
	projectCode := c.Query("project_code")

	f, err := h.importSvc.ExportParts(c.Request.Context(), projectCode)
	if err != nil {
		if errors.Is(err, service.ErrProjectCodeRequired) {
			BadRequest(c, err.Error())
			return
		}
		InternalError(c, err.Error())
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="parts_`+projectCode+`.xlsx"`)
	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "导出失败: "+err.Error())
	}
}

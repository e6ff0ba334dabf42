package service

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyUpload 上传数据为空或无法按表格解析，整个导入失败
	ErrEmptyUpload = errors.New("上传数据为空")

	// ErrProjectCodeRequired 提交时必须指定目标项目编码
	ErrProjectCodeRequired = errors.New("项目编码不能为空")
)

// ConcurrentImportConflict 同一项目已有导入会话在执行，本次被整体拒绝
type ConcurrentImportConflict struct {
	ProjectCode string
}

func (e *ConcurrentImportConflict) Error() string {
	return fmt.Sprintf("项目 %s 正在导入中，请等待当前导入完成后重试", e.ProjectCode)
}

// CommitFailure 落库失败，会话的全部变更已回滚
type CommitFailure struct {
	ProjectCode string
	Err         error
}

func (e *CommitFailure) Error() string {
	return fmt.Sprintf("项目 %s 导入落库失败，已整体回滚: %v", e.ProjectCode, e.Err)
}

func (e *CommitFailure) Unwrap() error {
	return e.Err
}

// 行级问题不终止会话，降级为告警清单；保留原系统的提示前缀
const (
	msgErrPrefix  = "错误!!!"
	msgInfoPrefix = "信息!!!"
)

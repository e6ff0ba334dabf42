package repository

import (
	"context"
	"errors"

	"github.com/shange6/wantong/internal/mes/entity"
	"gorm.io/gorm"
)

type PartRepository struct {
	db *gorm.DB
}

func NewPartRepository(db *gorm.DB) *PartRepository {
	return &PartRepository{db: db}
}

// Create 创建零件
func (r *PartRepository) Create(ctx context.Context, part *entity.Part) error {
	return r.db.WithContext(ctx).Create(part).Error
}

// BatchCreate 批量创建零件
func (r *PartRepository) BatchCreate(ctx context.Context, parts []entity.Part) error {
	if len(parts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&parts).Error
}

// FindByID 根据ID查找零件
func (r *PartRepository) FindByID(ctx context.Context, id uint) (*entity.Part, error) {
	var part entity.Part
	err := r.db.WithContext(ctx).First(&part, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &part, nil
}

// FindByProjectAndCode 项目内按代号查找（code 唯一性以 project_code 为作用域）
func (r *PartRepository) FindByProjectAndCode(ctx context.Context, projectCode, code string) (*entity.Part, error) {
	var part entity.Part
	err := r.db.WithContext(ctx).First(&part, "project_code = ? AND code = ?", projectCode, code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &part, nil
}

// ListByProject 项目下全部零件（构建导入会话目录快照用）
func (r *PartRepository) ListByProject(ctx context.Context, projectCode string) ([]entity.Part, error) {
	var parts []entity.Part
	err := r.db.WithContext(ctx).Where("project_code = ?", projectCode).Find(&parts).Error
	return parts, err
}

// PartListParams 零件列表过滤
type PartListParams struct {
	ProjectCode string
	ParentCode  string
	Code        string
	Wtcode      string
	Spec        string
	Material    string
	Remark      string
	Page        int
	PageSize    int
}

// List 分页查询零件列表
func (r *PartRepository) List(ctx context.Context, params *PartListParams) ([]entity.Part, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Part{})

	if params.ProjectCode != "" {
		query = query.Where("project_code = ?", params.ProjectCode)
	}
	if params.ParentCode != "" {
		query = query.Where("parent_code = ?", params.ParentCode)
	}
	if params.Code != "" {
		query = query.Where("code ILIKE ?", "%"+params.Code+"%")
	}
	if params.Wtcode != "" {
		query = query.Where("wtcode ILIKE ?", "%"+params.Wtcode+"%")
	}
	if params.Spec != "" {
		query = query.Where("spec ILIKE ?", "%"+params.Spec+"%")
	}
	if params.Material != "" {
		query = query.Where("material ILIKE ?", "%"+params.Material+"%")
	}
	if params.Remark != "" {
		query = query.Where("remark ILIKE ?", "%"+params.Remark+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if params.PageSize > 0 {
		query = query.Offset((params.Page - 1) * params.PageSize).Limit(params.PageSize)
	}

	var parts []entity.Part
	err := query.Order("wtcode").Find(&parts).Error
	return parts, total, err
}

// Update 更新零件
func (r *PartRepository) Update(ctx context.Context, part *entity.Part) error {
	return r.db.WithContext(ctx).Save(part).Error
}

// Delete 删除零件
func (r *PartRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.Part{}, "id = ?", id).Error
}

package repository

import (
	"context"
	"errors"

	"github.com/shange6/wantong/internal/mes/entity"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create 创建项目
func (r *ProjectRepository) Create(ctx context.Context, project *entity.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

// FindByID 根据ID查找项目
func (r *ProjectRepository) FindByID(ctx context.Context, id uint) (*entity.Project, error) {
	var project entity.Project
	err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// FindByCode 根据项目编码查找
func (r *ProjectRepository) FindByCode(ctx context.Context, code string) (*entity.Project, error) {
	var project entity.Project
	err := r.db.WithContext(ctx).First(&project, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// FindByCodeOrNo 根据编码或合同号查找（导入时的项目去重口径）
func (r *ProjectRepository) FindByCodeOrNo(ctx context.Context, code, no string) (*entity.Project, error) {
	var project entity.Project
	err := r.db.WithContext(ctx).First(&project, "code = ? OR no = ?", code, no).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// ProjectListParams 项目列表过滤
type ProjectListParams struct {
	Code     string
	Name     string
	No       string
	Page     int
	PageSize int
}

// List 分页查询项目列表，PageSize 为 0 时返回全部
func (r *ProjectRepository) List(ctx context.Context, params *ProjectListParams) ([]entity.Project, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Project{})

	if params.Code != "" {
		query = query.Where("code ILIKE ?", "%"+params.Code+"%")
	}
	if params.Name != "" {
		query = query.Where("name ILIKE ?", "%"+params.Name+"%")
	}
	if params.No != "" {
		query = query.Where("no ILIKE ?", "%"+params.No+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if params.PageSize > 0 {
		query = query.Offset((params.Page - 1) * params.PageSize).Limit(params.PageSize)
	}

	var projects []entity.Project
	err := query.Order("created_time DESC").Find(&projects).Error
	return projects, total, err
}

// Update 更新项目
func (r *ProjectRepository) Update(ctx context.Context, project *entity.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

// Delete 删除项目。历史订单工序记录不级联删除，审计痕迹保留。
func (r *ProjectRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.Project{}, "id = ?", id).Error
}

package repository

import (
	"context"
	"errors"

	"github.com/shange6/wantong/internal/mes/entity"
	"gorm.io/gorm"
)

type ComponentRepository struct {
	db *gorm.DB
}

func NewComponentRepository(db *gorm.DB) *ComponentRepository {
	return &ComponentRepository{db: db}
}

// Create 创建部件
func (r *ComponentRepository) Create(ctx context.Context, component *entity.Component) error {
	return r.db.WithContext(ctx).Create(component).Error
}

// FindByID 根据ID查找部件
func (r *ComponentRepository) FindByID(ctx context.Context, id uint) (*entity.Component, error) {
	var component entity.Component
	err := r.db.WithContext(ctx).First(&component, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &component, nil
}

// FindByWtcode 根据万通码查找部件
func (r *ComponentRepository) FindByWtcode(ctx context.Context, wtcode string) (*entity.Component, error) {
	var component entity.Component
	err := r.db.WithContext(ctx).First(&component, "wtcode = ?", wtcode).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &component, nil
}

// ListByProject 项目下全部部件（构建导入会话目录快照用）
func (r *ComponentRepository) ListByProject(ctx context.Context, projectCode string) ([]entity.Component, error) {
	var components []entity.Component
	err := r.db.WithContext(ctx).Where("project_code = ?", projectCode).Find(&components).Error
	return components, err
}

// ComponentListParams 部件列表过滤
type ComponentListParams struct {
	ProjectCode string
	Code        string
	Name        string
	Wtcode      string
	Spec        string
	Material    string
	Remark      string
	Page        int
	PageSize    int
}

// List 分页查询部件列表
func (r *ComponentRepository) List(ctx context.Context, params *ComponentListParams) ([]entity.Component, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Component{})

	if params.ProjectCode != "" {
		query = query.Where("project_code = ?", params.ProjectCode)
	}
	if params.Code != "" {
		query = query.Where("code ILIKE ?", "%"+params.Code+"%")
	}
	if params.Name != "" {
		query = query.Where("name ILIKE ?", "%"+params.Name+"%")
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

	var components []entity.Component
	err := query.Order("created_time DESC").Find(&components).Error
	return components, total, err
}

// ListWithoutOrder 尚未生成订单明细的部件
func (r *ComponentRepository) ListWithoutOrder(ctx context.Context, projectCode string) ([]entity.Component, error) {
	query := r.db.WithContext(ctx).
		Where("wtcode NOT IN (?)", r.db.Model(&entity.OrderItem{}).Select("wtcode"))
	if projectCode != "" {
		query = query.Where("project_code = ?", projectCode)
	}

	var components []entity.Component
	err := query.Order("wtcode").Find(&components).Error
	return components, err
}

// Update 更新部件
func (r *ComponentRepository) Update(ctx context.Context, component *entity.Component) error {
	return r.db.WithContext(ctx).Save(component).Error
}

// Delete 删除部件
func (r *ComponentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.Component{}, "id = ?", id).Error
}

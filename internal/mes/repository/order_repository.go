package repository

import (
	"context"
	"errors"

	"github.com/shange6/wantong/internal/mes/entity"
	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create 创建订单明细
func (r *OrderRepository) Create(ctx context.Context, item *entity.OrderItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// BatchCreate 批量创建订单明细（导入落库用）
func (r *OrderRepository) BatchCreate(ctx context.Context, items []entity.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// FindByID 根据ID查找订单明细
func (r *OrderRepository) FindByID(ctx context.Context, id uint) (*entity.OrderItem, error) {
	var item entity.OrderItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByWtcode 根据万通码查找订单明细
func (r *OrderRepository) FindByWtcode(ctx context.Context, wtcode string) (*entity.OrderItem, error) {
	var item entity.OrderItem
	err := r.db.WithContext(ctx).First(&item, "wtcode = ?", wtcode).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ExistingWtcodes 已有订单明细的万通码集合（导入时跳过已生成的）
func (r *OrderRepository) ExistingWtcodes(ctx context.Context, projectCode string) (map[string]struct{}, error) {
	var wtcodes []string
	err := r.db.WithContext(ctx).Model(&entity.OrderItem{}).
		Where("project_code = ?", projectCode).
		Pluck("wtcode", &wtcodes).Error
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(wtcodes))
	for _, w := range wtcodes {
		set[w] = struct{}{}
	}
	return set, nil
}

// OrderListParams 订单列表过滤
type OrderListParams struct {
	ProjectCode string
	Wtcode      string
	Code        string
	Spec        string
	Material    string
	Remark      string
	Page        int
	PageSize    int
}

// List 分页查询订单明细
func (r *OrderRepository) List(ctx context.Context, params *OrderListParams) ([]entity.OrderItem, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.OrderItem{})

	if params.ProjectCode != "" {
		query = query.Where("project_code = ?", params.ProjectCode)
	}
	if params.Wtcode != "" {
		query = query.Where("wtcode ILIKE ?", "%"+params.Wtcode+"%")
	}
	if params.Code != "" {
		query = query.Where("code ILIKE ?", "%"+params.Code+"%")
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

	var items []entity.OrderItem
	err := query.Order("created_time DESC").Find(&items).Error
	return items, total, err
}

// Update 更新订单明细
func (r *OrderRepository) Update(ctx context.Context, item *entity.OrderItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Delete 删除订单明细
func (r *OrderRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.OrderItem{}, "id = ?", id).Error
}

package service

import (
	"context"
	"fmt"

	"github.com/shange6/wantong/internal/mes/entity"
	"github.com/shange6/wantong/internal/mes/repository"
)

type ComponentService struct {
	componentRepo *repository.ComponentRepository
	projectRepo   *repository.ProjectRepository
}

func NewComponentService(componentRepo *repository.ComponentRepository, projectRepo *repository.ProjectRepository) *ComponentService {
	return &ComponentService{componentRepo: componentRepo, projectRepo: projectRepo}
}

type CreateComponentInput struct {
	ProjectCode string  `json:"project_code" binding:"required"`
	ParentCode  string  `json:"parent_code"`
	Wtcode      string  `json:"wtcode" binding:"required"`
	Code        string  `json:"code" binding:"required"`
	Name        string  `json:"name"`
	Spec        string  `json:"spec"`
	Count       int     `json:"count"`
	Material    string  `json:"material"`
	UnitMass    float64 `json:"unit_mass"`
	Remark      string  `json:"remark"`
}

type UpdateComponentInput struct {
	Name     *string  `json:"name"`
	Spec     *string  `json:"spec"`
	Count    *int     `json:"count"`
	Material *string  `json:"material"`
	UnitMass *float64 `json:"unit_mass"`
	Remark   *string  `json:"remark"`
}

// CreateComponent 新建部件，项目必须已存在，万通码全局唯一
func (s *ComponentService) CreateComponent(ctx context.Context, input *CreateComponentInput) (*entity.Component, error) {
	if _, err := s.projectRepo.FindByCode(ctx, input.ProjectCode); err != nil {
		return nil, fmt.Errorf("项目不存在: %s", input.ProjectCode)
	}
	if _, err := s.componentRepo.FindByWtcode(ctx, input.Wtcode); err == nil {
		return nil, fmt.Errorf("部件万通码已存在: %s", input.Wtcode)
	}

	component := &entity.Component{
		ProjectCode: input.ProjectCode,
		ParentCode:  input.ParentCode,
		Wtcode:      input.Wtcode,
		Code:        standardCode(input.Code),
		Name:        input.Name,
		Spec:        input.Spec,
		Count:       input.Count,
		Material:    input.Material,
		UnitMass:    input.UnitMass,
		TotalMass:   input.UnitMass * float64(input.Count),
		Remark:      input.Remark,
	}
	if err := s.componentRepo.Create(ctx, component); err != nil {
		return nil, fmt.Errorf("create component: %w", err)
	}
	return component, nil
}

func (s *ComponentService) GetComponent(ctx context.Context, id uint) (*entity.Component, error) {
	return s.componentRepo.FindByID(ctx, id)
}

func (s *ComponentService) ListComponents(ctx context.Context, params *repository.ComponentListParams) ([]entity.Component, int64, error) {
	return s.componentRepo.List(ctx, params)
}

// ListUnordered 未生成订单明细的部件清单
func (s *ComponentService) ListUnordered(ctx context.Context, projectCode string) ([]entity.Component, error) {
	return s.componentRepo.ListWithoutOrder(ctx, projectCode)
}

// UpdateComponent 数量和单重变动时总重跟着重算
func (s *ComponentService) UpdateComponent(ctx context.Context, id uint, input *UpdateComponentInput) (*entity.Component, error) {
	component, err := s.componentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		component.Name = *input.Name
	}
	if input.Spec != nil {
		component.Spec = *input.Spec
	}
	if input.Count != nil {
		component.Count = *input.Count
	}
	if input.Material != nil {
		component.Material = *input.Material
	}
	if input.UnitMass != nil {
		component.UnitMass = *input.UnitMass
	}
	if input.Remark != nil {
		component.Remark = *input.Remark
	}
	component.TotalMass = component.UnitMass * float64(component.Count)

	if err := s.componentRepo.Update(ctx, component); err != nil {
		return nil, fmt.Errorf("update component: %w", err)
	}
	return component, nil
}

func (s *ComponentService) DeleteComponent(ctx context.Context, id uint) error {
	return s.componentRepo.Delete(ctx, id)
}

package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/shange6/wantong/internal/mes/entity"
	"github.com/shange6/wantong/internal/mes/repository"
)

type PartService struct {
	partRepo    *repository.PartRepository
	projectRepo *repository.ProjectRepository
}

func NewPartService(partRepo *repository.PartRepository, projectRepo *repository.ProjectRepository) *PartService {
	return &PartService{partRepo: partRepo, projectRepo: projectRepo}
}

type CreatePartInput struct {
	ProjectCode string  `json:"project_code" binding:"required"`
	ParentCode  string  `json:"parent_code"`
	Wtcode      string  `json:"wtcode" binding:"required"`
	Code        string  `json:"code" binding:"required"`
	Spec        string  `json:"spec"`
	Count       int     `json:"count"`
	Material    string  `json:"material"`
	UnitMass    float64 `json:"unit_mass"`
	Remark      string  `json:"remark"`
	X           string  `json:"x"`
	Y           string  `json:"y"`
}

type UpdatePartInput struct {
	Spec     *string  `json:"spec"`
	Count    *int     `json:"count"`
	Material *string  `json:"material"`
	UnitMass *float64 `json:"unit_mass"`
	Remark   *string  `json:"remark"`
	X        *string  `json:"x"`
	Y        *string  `json:"y"`
}

// CreatePart 单个零件录入，同项目内代号唯一
func (s *PartService) CreatePart(ctx context.Context, input *CreatePartInput) (*entity.Part, error) {
	if _, err := s.projectRepo.FindByCode(ctx, input.ProjectCode); err != nil {
		return nil, fmt.Errorf("项目不存在: %s", input.ProjectCode)
	}
	code := standardCode(input.Code)
	if _, err := s.partRepo.FindByProjectAndCode(ctx, input.ProjectCode, code); err == nil {
		return nil, fmt.Errorf("零件代号已存在: %s", code)
	}

	part := &entity.Part{
		ProjectCode: input.ProjectCode,
		ParentCode:  input.ParentCode,
		Wtcode:      input.Wtcode,
		Code:        code,
		Spec:        input.Spec,
		Count:       input.Count,
		Material:    input.Material,
		UnitMass:    input.UnitMass,
		Remark:      input.Remark,
		X:           input.X,
		Y:           input.Y,
	}
	part.RecalcTotalMass()
	if err := s.partRepo.Create(ctx, part); err != nil {
		return nil, fmt.Errorf("create part: %w", err)
	}
	return part, nil
}

func (s *PartService) GetPart(ctx context.Context, id uint) (*entity.Part, error) {
	return s.partRepo.FindByID(ctx, id)
}

func (s *PartService) ListParts(ctx context.Context, params *repository.PartListParams) ([]entity.Part, int64, error) {
	return s.partRepo.List(ctx, params)
}

// PartTreeNode 零件树节点，汇总重量在读取时现算不落库
type PartTreeNode struct {
	entity.Part
	RollupMass float64         `json:"rollup_mass"`
	Children   []*PartTreeNode `json:"children,omitempty"`
}

// GetPartTree 按万通码前缀把项目零件挂成树，父不在本表的行上浮为根。
// 每个节点的汇总重量 = 自身总重 + 子树汇总之和。
func (s *PartService) GetPartTree(ctx context.Context, projectCode string) ([]*PartTreeNode, error) {
	parts, err := s.partRepo.ListByProject(ctx, projectCode)
	if err != nil {
		return nil, err
	}

	nodes := make(map[string]*PartTreeNode, len(parts))
	wtcodes := make([]string, 0, len(parts))
	for i := range parts {
		n := &PartTreeNode{Part: parts[i]}
		nodes[n.Wtcode] = n
		wtcodes = append(wtcodes, n.Wtcode)
	}
	sort.Strings(wtcodes)

	var roots []*PartTreeNode
	for _, wtcode := range wtcodes {
		n := nodes[wtcode]
		if parent, ok := nodes[parentWtcode(wtcode)]; ok {
			parent.Children = append(parent.Children, n)
		} else {
			roots = append(roots, n)
		}
	}
	for _, root := range roots {
		rollupPartTree(root)
	}
	return roots, nil
}

func rollupPartTree(n *PartTreeNode) float64 {
	n.RollupMass = n.TotalMass
	for _, child := range n.Children {
		n.RollupMass += rollupPartTree(child)
	}
	return n.RollupMass
}

// UpdatePart 数量或单重变动时总重重算
func (s *PartService) UpdatePart(ctx context.Context, id uint, input *UpdatePartInput) (*entity.Part, error) {
	part, err := s.partRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Spec != nil {
		part.Spec = *input.Spec
	}
	if input.Count != nil {
		part.Count = *input.Count
	}
	if input.Material != nil {
		part.Material = *input.Material
	}
	if input.UnitMass != nil {
		part.UnitMass = *input.UnitMass
	}
	if input.Remark != nil {
		part.Remark = *input.Remark
	}
	if input.X != nil {
		part.X = *input.X
	}
	if input.Y != nil {
		part.Y = *input.Y
	}
	part.RecalcTotalMass()

	if err := s.partRepo.Update(ctx, part); err != nil {
		return nil, fmt.Errorf("update part: %w", err)
	}
	return part, nil
}

func (s *PartService) DeletePart(ctx context.Context, id uint) error {
	return s.partRepo.Delete(ctx, id)
}

package service

import (
	"context"
	"fmt"

	"github.com/shange6/wantong/internal/mes/entity"
	"github.com/shange6/wantong/internal/mes/repository"
)

type ProjectService struct {
	projectRepo *repository.ProjectRepository
}

func NewProjectService(projectRepo *repository.ProjectRepository) *ProjectService {
	return &ProjectService{projectRepo: projectRepo}
}

type CreateProjectInput struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name"`
	No   string `json:"no"`
}

type UpdateProjectInput struct {
	Name *string `json:"name"`
	No   *string `json:"no"`
}

// CreateProject 新建项目，编码或合同号重复时拒绝
func (s *ProjectService) CreateProject(ctx context.Context, input *CreateProjectInput) (*entity.Project, error) {
	if _, err := s.projectRepo.FindByCodeOrNo(ctx, input.Code, input.No); err == nil {
		return nil, fmt.Errorf("项目已存在: %s", input.Code)
	}

	project := &entity.Project{
		Code: input.Code,
		Name: input.Name,
		No:   input.No,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return project, nil
}

func (s *ProjectService) GetProject(ctx context.Context, id uint) (*entity.Project, error) {
	return s.projectRepo.FindByID(ctx, id)
}

func (s *ProjectService) GetProjectByCode(ctx context.Context, code string) (*entity.Project, error) {
	return s.projectRepo.FindByCode(ctx, code)
}

func (s *ProjectService) ListProjects(ctx context.Context, params *repository.ProjectListParams) ([]entity.Project, int64, error) {
	return s.projectRepo.List(ctx, params)
}

// UpdateProject 更新项目基本信息，编码不可改
func (s *ProjectService) UpdateProject(ctx context.Context, id uint, input *UpdateProjectInput) (*entity.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		project.Name = *input.Name
	}
	if input.No != nil {
		project.No = *input.No
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return project, nil
}

func (s *ProjectService) DeleteProject(ctx context.Context, id uint) error {
	return s.projectRepo.Delete(ctx, id)
}

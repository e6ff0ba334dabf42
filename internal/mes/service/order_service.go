package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/shange6/wantong/internal/mes/entity"
	"github.com/shange6/wantong/internal/mes/repository"
)

// OrderService 生产订单明细与五道工序的状态机。
// 同一条明细的工序更新用按万通码分键的互斥锁串行化，
// 读改写之间不会被同键的并发请求插队。
type OrderService struct {
	orderRepo     *repository.OrderRepository
	componentRepo *repository.ComponentRepository

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewOrderService(orderRepo *repository.OrderRepository, componentRepo *repository.ComponentRepository) *OrderService {
	return &OrderService{
		orderRepo:     orderRepo,
		componentRepo: componentRepo,
		locks:         make(map[string]*sync.Mutex),
	}
}

func (s *OrderService) itemLock(wtcode string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[wtcode]
	if !ok {
		l = &sync.Mutex{}
		s.locks[wtcode] = l
	}
	return l
}

type CreateOrderInput struct {
	ProjectCode string  `json:"project_code" binding:"required"`
	Wtcode      string  `json:"wtcode" binding:"required"`
	Code        string  `json:"code"`
	Spec        string  `json:"spec"`
	Count       int     `json:"count"`
	Material    string  `json:"material"`
	UnitMass    float64 `json:"unit_mass"`
	Remark      string  `json:"remark"`
}

// CreateOrder 手工补录订单明细，部件必须已入目录
func (s *OrderService) CreateOrder(ctx context.Context, input *CreateOrderInput) (*entity.OrderItem, error) {
	if _, err := s.componentRepo.FindByWtcode(ctx, input.Wtcode); err != nil {
		return nil, fmt.Errorf("部件不存在: %s", input.Wtcode)
	}
	if _, err := s.orderRepo.FindByWtcode(ctx, input.Wtcode); err == nil {
		return nil, fmt.Errorf("订单明细已存在: %s", input.Wtcode)
	}

	item := &entity.OrderItem{
		ProjectCode: input.ProjectCode,
		Wtcode:      input.Wtcode,
		Code:        input.Code,
		Spec:        input.Spec,
		Count:       input.Count,
		Material:    input.Material,
		UnitMass:    input.UnitMass,
		TotalMass:   input.UnitMass * float64(input.Count),
		Remark:      input.Remark,
	}
	if err := s.orderRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create order item: %w", err)
	}
	return item, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uint) (*entity.OrderItem, error) {
	return s.orderRepo.FindByID(ctx, id)
}

func (s *OrderService) ListOrders(ctx context.Context, params *repository.OrderListParams) ([]entity.OrderItem, int64, error) {
	return s.orderRepo.List(ctx, params)
}

type StageUpdateInput struct {
	Wtcode     string   `json:"wtcode" binding:"required"`
	Stage      string   `json:"stage" binding:"required"`
	User       string   `json:"user"`
	LaborHours *float64 `json:"labor_hours"`
}

// MarkStage 标记完工。前道未完工时拒绝并保持原状，
// 已完工的工序重复标记只刷新记录不报错。
func (s *OrderService) MarkStage(ctx context.Context, input *StageUpdateInput) (*entity.OrderItem, error) {
	stage, ok := entity.ParseStage(input.Stage)
	if !ok {
		return nil, fmt.Errorf("无效的工序: %s", input.Stage)
	}

	lock := s.itemLock(input.Wtcode)
	lock.Lock()
	defer lock.Unlock()

	item, err := s.orderRepo.FindByWtcode(ctx, input.Wtcode)
	if err != nil {
		return nil, err
	}
	if err := item.MarkComplete(stage, input.User, input.LaborHours, nil); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update order item: %w", err)
	}
	return item, nil
}

// UnmarkStage 撤销完工。后道已完工时拒绝，先撤销后道
func (s *OrderService) UnmarkStage(ctx context.Context, input *StageUpdateInput) (*entity.OrderItem, error) {
	stage, ok := entity.ParseStage(input.Stage)
	if !ok {
		return nil, fmt.Errorf("无效的工序: %s", input.Stage)
	}

	lock := s.itemLock(input.Wtcode)
	lock.Lock()
	defer lock.Unlock()

	item, err := s.orderRepo.FindByWtcode(ctx, input.Wtcode)
	if err != nil {
		return nil, err
	}
	if err := item.MarkIncomplete(stage); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update order item: %w", err)
	}
	return item, nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, id uint) error {
	return s.orderRepo.Delete(ctx, id)
}

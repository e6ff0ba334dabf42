package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shange6/wantong/internal/mes/entity"
	"github.com/shange6/wantong/internal/mes/repository"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
	"gorm.io/gorm"
)

// ImportService 导入会话编排：解析 → 调和 → 层级 → 汇总 → 生成订单明细 → 落库。
// 单次上传就是一个单线程的会话，目录快照建一次、会话内只读。
type ImportService struct {
	repos  *repository.Repositories
	locker ProjectLocker
	logger *zap.Logger
}

func NewImportService(repos *repository.Repositories, locker ProjectLocker, logger *zap.Logger) *ImportService {
	return &ImportService{repos: repos, locker: locker, logger: logger}
}

// UploadResult 上传解析结果，供用户提交前审阅
type UploadResult struct {
	RowCount  int         `json:"row_count"`  // 解析出的原始行数
	PartCount int         `json:"part_count"` // 去重后的零件数
	Info      []string    `json:"info"`       // 告警与提示清单
	Data      []*TreeNode `json:"data"`       // 建议落库的零件树
}

// ParseUpload 解析上传的明细文件。projectCode 非空时对照该项目目录做
// 调和预演，树节点会带上 create/update 动作标注；为空时只做结构预览。
// baseWtcode 是本批部件的万通码（部件编号），为空时取首行代号。
func (s *ImportService) ParseUpload(ctx context.Context, projectCode, baseWtcode, filename string, r io.Reader) (*UploadResult, error) {
	raw, err := extractRows(filename, r)
	if err != nil {
		return nil, err
	}

	rows, warnings, err := ParseRows(raw)
	if err != nil {
		return nil, err
	}

	if baseWtcode == "" {
		baseWtcode = standardCode(rows[0].Code)
	}
	rows, info := AssignWtcodes(baseWtcode, rows)
	warnings = append(warnings, info...)

	result := &UploadResult{
		RowCount: len(raw),
		Info:     warnings,
	}

	if projectCode == "" {
		result.PartCount = len(rows)
		result.Data = BuildTree(rows)
		return result, nil
	}

	// 调和预演：不落库，只标注每行将要发生什么
	ix, err := s.buildCatalogIndex(ctx, projectCode)
	if err != nil {
		return nil, err
	}
	resolutions, rwarn := Reconcile(projectCode, rows, ix)
	result.Info = append(result.Info, rwarn...)
	result.PartCount = len(resolutions)
	result.Data = BuildResolutionTree(resolutions)
	return result, nil
}

// ProjectInfo 提交时的项目信息
type ProjectInfo struct {
	Name string `json:"name"`
	Code string `json:"code"`
	No   string `json:"no"` // 合同号
}

// ComponentInfo 提交时的部件信息（部件经独立通道到达）
type ComponentInfo struct {
	ParentCode string  `json:"parent_code"`
	Wtcode     string  `json:"wtcode"`
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Spec       string  `json:"spec"`
	Count      int     `json:"count"`
	Material   string  `json:"material"`
	UnitMass   float64 `json:"unit_mass"`
	Remark     string  `json:"remark"`
}

// CommitRequest 审阅后的提交载荷
type CommitRequest struct {
	Project   ProjectInfo   `json:"project"`
	Component ComponentInfo `json:"component"`
	Parts     []ImportRow   `json:"parts"`
}

// RowOutcome 每行的落库结果
type RowOutcome struct {
	Code   string `json:"code"`
	Wtcode string `json:"wtcode"`
	Action string `json:"action"` // created / updated / rejected
	Reason string `json:"reason,omitempty"`
}

// CommitResult 会话落库统计
type CommitResult struct {
	ProjectsAdded   int          `json:"projects_added"`
	ComponentsAdded int          `json:"components_added"`
	PartsCreated    int          `json:"parts_created"`
	PartsUpdated    int          `json:"parts_updated"`
	PartsRejected   int          `json:"parts_rejected"`
	OrdersSeeded    int          `json:"orders_seeded"`
	Outcomes        []RowOutcome `json:"outcomes"`
	Warnings        []string     `json:"warnings"`
}

// Commit 把审阅后的零件表落库。同一项目的并发提交被项目锁串行化；
// 落库是整体事务，要么全部生效要么全部回滚，不会留下孤儿子树。
func (s *ImportService) Commit(ctx context.Context, req *CommitRequest) (*CommitResult, error) {
	projectCode := strings.TrimSpace(req.Project.Code)
	if projectCode == "" {
		return nil, ErrProjectCodeRequired
	}

	release, err := s.locker.Acquire(ctx, projectCode)
	if err != nil {
		return nil, err
	}
	defer release()

	ix, err := s.buildCatalogIndex(ctx, projectCode)
	if err != nil {
		return nil, err
	}

	resolutions, warnings := Reconcile(projectCode, req.Parts, ix)

	batchComponents := make(map[string]struct{}, 1)
	if req.Component.Wtcode != "" {
		batchComponents[req.Component.Wtcode] = struct{}{}
	}
	accepted, rejected, hwarn := BuildHierarchy(projectCode, resolutions, batchComponents, ix)
	warnings = append(warnings, hwarn...)

	existingOrders, err := s.repos.Order.ExistingWtcodes(ctx, projectCode)
	if err != nil {
		return nil, err
	}

	result := &CommitResult{Warnings: warnings}
	for _, res := range rejected {
		result.PartsRejected++
		result.Outcomes = append(result.Outcomes, RowOutcome{
			Code:   res.Row.Code,
			Wtcode: res.Row.Wtcode,
			Action: "rejected",
			Reason: res.Reason,
		})
	}

	err = s.repos.DB().Transaction(func(tx *gorm.DB) error {
		txRepos := s.repos.WithTx(tx)

		// 项目按编码或合同号判重，存在则不做修改
		if _, err := txRepos.Project.FindByCodeOrNo(ctx, projectCode, req.Project.No); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			project := &entity.Project{Code: projectCode, Name: req.Project.Name, No: req.Project.No}
			if err := txRepos.Project.Create(ctx, project); err != nil {
				return fmt.Errorf("create project: %w", err)
			}
			result.ProjectsAdded = 1
		}

		// 部件按万通码判重
		if req.Component.Wtcode != "" && ix.LookupComponentByWtcode(projectCode, req.Component.Wtcode) == nil {
			component := &entity.Component{
				ProjectCode: projectCode,
				ParentCode:  req.Component.ParentCode,
				Wtcode:      req.Component.Wtcode,
				Code:        req.Component.Code,
				Name:        req.Component.Name,
				Spec:        req.Component.Spec,
				Count:       req.Component.Count,
				Material:    req.Component.Material,
				UnitMass:    req.Component.UnitMass,
				TotalMass:   req.Component.UnitMass * float64(req.Component.Count),
				Remark:      req.Component.Remark,
			}
			if err := txRepos.Component.Create(ctx, component); err != nil {
				return fmt.Errorf("create component: %w", err)
			}
			result.ComponentsAdded = 1
		}

		var orderSeeds []entity.OrderItem
		for _, res := range accepted {
			row := res.Row

			switch res.Action {
			case ActionCreate:
				part := entity.Part{
					ProjectCode: projectCode,
					ParentCode:  row.ParentCode,
					Wtcode:      row.Wtcode,
					Code:        row.Code,
					Spec:        row.Spec,
					Count:       row.Count,
					Material:    row.Material,
					UnitMass:    row.UnitMass,
					Remark:      row.Remark,
					X:           row.X,
					Y:           row.Y,
				}
				part.RecalcTotalMass()
				if err := txRepos.Part.Create(ctx, &part); err != nil {
					return fmt.Errorf("create part %s: %w", row.Code, err)
				}
				result.PartsCreated++
				result.Outcomes = append(result.Outcomes, RowOutcome{Code: row.Code, Wtcode: row.Wtcode, Action: "created"})

			case ActionUpdate:
				existing := ix.LookupPart(projectCode, row.Code)
				part := *existing
				part.ParentCode = row.ParentCode
				part.Spec = row.Spec
				part.Count = row.Count
				part.Material = row.Material
				part.UnitMass = row.UnitMass
				part.Remark = row.Remark
				part.X = row.X
				part.Y = row.Y
				part.RecalcTotalMass()
				if err := txRepos.Part.Update(ctx, &part); err != nil {
					return fmt.Errorf("update part %s: %w", row.Code, err)
				}
				result.PartsUpdated++
				result.Outcomes = append(result.Outcomes, RowOutcome{Code: row.Code, Wtcode: row.Wtcode, Action: "updated"})
			}

			// 每个零件落点一条订单明细：重复行已并入数量，不会重复生成
			if _, ok := existingOrders[row.Wtcode]; !ok {
				item := entity.OrderItem{
					ProjectCode: projectCode,
					Wtcode:      row.Wtcode,
					Code:        row.Code,
					Spec:        row.Spec,
					Count:       row.Count,
					Material:    row.Material,
					UnitMass:    row.UnitMass,
					TotalMass:   row.UnitMass * float64(row.Count),
					Remark:      row.Remark,
				}
				orderSeeds = append(orderSeeds, item)
				existingOrders[row.Wtcode] = struct{}{}
			}
		}

		if err := txRepos.Order.BatchCreate(ctx, orderSeeds); err != nil {
			return fmt.Errorf("seed order items: %w", err)
		}
		result.OrdersSeeded = len(orderSeeds)
		return nil
	})
	if err != nil {
		return nil, &CommitFailure{ProjectCode: projectCode, Err: err}
	}

	s.logger.Info("导入会话完成",
		zap.String("project_code", projectCode),
		zap.Int("parts_created", result.PartsCreated),
		zap.Int("parts_updated", result.PartsUpdated),
		zap.Int("parts_rejected", result.PartsRejected),
		zap.Int("orders_seeded", result.OrdersSeeded),
	)
	return result, nil
}

// ExportParts 导出项目现有零件表，列序与上传模板一致
func (s *ImportService) ExportParts(ctx context.Context, projectCode string) (*excelize.File, error) {
	if strings.TrimSpace(projectCode) == "" {
		return nil, ErrProjectCodeRequired
	}
	parts, err := s.repos.Part.ListByProject(ctx, projectCode)
	if err != nil {
		return nil, err
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].Wtcode < parts[j].Wtcode })

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	header := []interface{}{"万通码", "序号", "代号", "规格", "数量", "材料", "单重", "总重", "备注"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("写入表头失败: %w", err)
	}
	for i, p := range parts {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		row := []interface{}{p.Wtcode, i + 1, p.Code, p.Spec, p.Count, p.Material, p.UnitMass, p.TotalMass, p.Remark}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("写入行失败: %w", err)
		}
	}
	return f, nil
}

// buildCatalogIndex 为会话建一次目录快照索引
func (s *ImportService) buildCatalogIndex(ctx context.Context, projectCode string) (*CatalogIndex, error) {
	components, err := s.repos.Component.ListByProject(ctx, projectCode)
	if err != nil {
		return nil, err
	}
	parts, err := s.repos.Part.ListByProject(ctx, projectCode)
	if err != nil {
		return nil, err
	}
	return NewCatalogIndex(components, parts), nil
}

// extractRows 把上传文件读成二维表。xlsx 走 excelize，
// 其余按制表符分列的文本处理，编码按 GBK→UTF-8 解码。
func extractRows(filename string, r io.Reader) ([][]string, error) {
	if strings.HasSuffix(strings.ToLower(filename), ".xlsx") {
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("解析Excel失败: %w", err)
		}
		defer f.Close()

		rows, err := f.GetRows(f.GetSheetName(0))
		if err != nil {
			return nil, fmt.Errorf("读取工作表失败: %w", err)
		}
		return rows, nil
	}

	utf8Reader := transform.NewReader(r, simplifiedchinese.GBK.NewDecoder())
	scanner := bufio.NewScanner(utf8Reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var rows [][]string
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		for i := range fields {
			fields[i] = strings.Trim(fields[i], "\"")
		}
		rows = append(rows, fields)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("读取上传文件失败: %w", err)
	}
	return rows, nil
}

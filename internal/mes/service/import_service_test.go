package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shange6/wantong/internal/mes/entity"
	"github.com/shange6/wantong/internal/mes/repository"
	"github.com/shange6/wantong/internal/mes/testutil"
	"go.uber.org/zap"
)

func setupImportService(t *testing.T) (*ImportService, *repository.Repositories, ProjectLocker) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	locker := NewMemoryLocker()
	return NewImportService(repos, locker, zap.NewNop()), repos, locker
}

func sampleCommitRequest() *CommitRequest {
	return &CommitRequest{
		Project: ProjectInfo{Code: "P-100", Name: "试验台项目", No: "HT-2024-100"},
		Component: ComponentInfo{
			Wtcode: "A.3", Code: "WT01", Name: "机架", Count: 1, UnitMass: 0,
		},
		Parts: []ImportRow{
			{Code: "WT01.1", Wtcode: "A.3.1", Spec: "底板", Count: 2, Material: "Q235", UnitMass: 5},
			{Code: "WT01.1.1", Wtcode: "A.3.1.1", Spec: "垫块", Count: 4, Material: "Q235", UnitMass: 1.5},
			{Code: "WT99.9", Wtcode: "Z.9.9", Spec: "孤儿行", Count: 1, UnitMass: 1},
		},
	}
}

func TestCommitCreatesHierarchy(t *testing.T) {
	svc, repos, _ := setupImportService(t)
	ctx := context.Background()

	result, err := svc.Commit(ctx, sampleCommitRequest())
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if result.ProjectsAdded != 1 || result.ComponentsAdded != 1 {
		t.Errorf("Expected project and component added, got %+v", result)
	}
	if result.PartsCreated != 2 || result.PartsRejected != 1 {
		t.Errorf("Expected 2 created / 1 rejected, got %+v", result)
	}
	if result.OrdersSeeded != 2 {
		t.Errorf("Expected 2 seeded order items, got %d", result.OrdersSeeded)
	}

	// 被剔除的行不落库
	if _, err := repos.Part.FindByProjectAndCode(ctx, "P-100", "WT99.9"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Rejected row must not be persisted, got %v", err)
	}

	part, err := repos.Part.FindByProjectAndCode(ctx, "P-100", "WT01.1")
	if err != nil {
		t.Fatalf("Part not persisted: %v", err)
	}
	if part.TotalMass != 10 || part.ParentCode != "A.3" {
		t.Errorf("Unexpected part: %+v", part)
	}

	item, err := repos.Order.FindByWtcode(ctx, "A.3.1")
	if err != nil {
		t.Fatalf("Order item not seeded: %v", err)
	}
	if item.StageRecordOf(entity.StageBlanking).Completed {
		t.Error("Seeded order item must start with all stages incomplete")
	}
}

func TestCommitSecondRunUpdates(t *testing.T) {
	svc, repos, _ := setupImportService(t)
	ctx := context.Background()

	if _, err := svc.Commit(ctx, sampleCommitRequest()); err != nil {
		t.Fatalf("First commit failed: %v", err)
	}

	req := sampleCommitRequest()
	req.Parts = req.Parts[:2]
	req.Parts[0].Count = 3 // 数量变更

	result, err := svc.Commit(ctx, req)
	if err != nil {
		t.Fatalf("Second commit failed: %v", err)
	}

	if result.ProjectsAdded != 0 || result.ComponentsAdded != 0 {
		t.Errorf("Re-import must not duplicate project/component, got %+v", result)
	}
	if result.PartsUpdated != 2 || result.PartsCreated != 0 {
		t.Errorf("Expected 2 updates, got %+v", result)
	}
	if result.OrdersSeeded != 0 {
		t.Errorf("Existing order items must not be re-seeded, got %d", result.OrdersSeeded)
	}

	part, err := repos.Part.FindByProjectAndCode(ctx, "P-100", "WT01.1")
	if err != nil {
		t.Fatalf("Part lookup failed: %v", err)
	}
	if part.Count != 3 || part.TotalMass != 15 {
		t.Errorf("Expected updated count 3 / total 15, got %+v", part)
	}
	// 万通码沿用首次导入分配的
	if part.Wtcode != "A.3.1" {
		t.Errorf("Wtcode must stay stable across imports, got %q", part.Wtcode)
	}
}

func TestCommitDuplicateRowsMergeOnce(t *testing.T) {
	svc, repos, _ := setupImportService(t)
	ctx := context.Background()

	req := sampleCommitRequest()
	req.Parts = []ImportRow{
		{Code: "WT01.1", Wtcode: "A.3.1", Spec: "底板", Count: 3, UnitMass: 2},
		{Code: "WT01.1", Wtcode: "A.3.9", Spec: "底板", Count: 5, UnitMass: 2},
	}

	result, err := svc.Commit(ctx, req)
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if result.PartsCreated != 1 {
		t.Errorf("Duplicate rows must merge into one part, got %+v", result)
	}

	part, err := repos.Part.FindByProjectAndCode(ctx, "P-100", "WT01.1")
	if err != nil {
		t.Fatalf("Part lookup failed: %v", err)
	}
	if part.Count != 8 || part.TotalMass != 16 {
		t.Errorf("Expected merged count 8 / total 16, got count=%d total=%g", part.Count, part.TotalMass)
	}

	item, err := repos.Order.FindByWtcode(ctx, "A.3.1")
	if err != nil {
		t.Fatalf("Order item lookup failed: %v", err)
	}
	if item.Count != 8 {
		t.Errorf("Order item must carry the merged count, got %d", item.Count)
	}
}

func TestCommitConcurrentConflict(t *testing.T) {
	svc, _, locker := setupImportService(t)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "P-100")
	if err != nil {
		t.Fatalf("Lock setup failed: %v", err)
	}
	defer release()

	_, err = svc.Commit(ctx, sampleCommitRequest())
	var conflict *ConcurrentImportConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("Expected ConcurrentImportConflict, got %v", err)
	}
}

func TestCommitRequiresProjectCode(t *testing.T) {
	svc, _, _ := setupImportService(t)

	req := sampleCommitRequest()
	req.Project.Code = "  "
	_, err := svc.Commit(context.Background(), req)
	if !errors.Is(err, ErrProjectCodeRequired) {
		t.Fatalf("Expected ErrProjectCodeRequired, got %v", err)
	}
}

func TestExportPartsRoundTrip(t *testing.T) {
	svc, _, _ := setupImportService(t)
	ctx := context.Background()

	if _, err := svc.Commit(ctx, sampleCommitRequest()); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	f, err := svc.ExportParts(ctx, "P-100")
	if err != nil {
		t.Fatalf("ExportParts failed: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	// 表头 + 两个入库零件，按万通码排序
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}
	if rows[1][0] != "A.3.1" || rows[2][0] != "A.3.1.1" {
		t.Errorf("Unexpected wtcode order: %q, %q", rows[1][0], rows[2][0])
	}
	if rows[1][2] != "WT01.1" || rows[1][4] != "2" {
		t.Errorf("Unexpected exported row: %v", rows[1])
	}

	if _, err := svc.ExportParts(ctx, " "); !errors.Is(err, ErrProjectCodeRequired) {
		t.Errorf("Expected ErrProjectCodeRequired for blank code, got %v", err)
	}
}

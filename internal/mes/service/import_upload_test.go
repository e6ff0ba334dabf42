package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

func uploadOnlyService() *ImportService {
	// 不带 project_code 的解析预览不触目录，不需要数据库
	return NewImportService(nil, NewMemoryLocker(), zap.NewNop())
}

func TestParseUploadXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"序号", "代号", "规格", "数量", "材料", "单重", "总重", "备注"},
		{"1", "WT01", "部件本体", 1, "", "", "", ""},
		{"2", "WT01.1", "底板", 2, "Q235", 5, 10, ""},
		{"3", "WT01.1.1", "垫块", 4, "Q235", 1.5, 6, ""},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow failed: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write xlsx failed: %v", err)
	}

	svc := uploadOnlyService()
	result, err := svc.ParseUpload(context.Background(), "", "A.3", "明细表.xlsx", &buf)
	if err != nil {
		t.Fatalf("ParseUpload failed: %v", err)
	}

	if result.PartCount != 3 {
		t.Errorf("Expected 3 parts, got %d", result.PartCount)
	}
	if len(result.Data) != 1 {
		t.Fatalf("Expected single root, got %d", len(result.Data))
	}
	root := result.Data[0]
	if root.Wtcode != "A.3" {
		t.Errorf("Expected root wtcode A.3, got %q", root.Wtcode)
	}
	// 底板10 + 垫块6 全部汇总到根
	if root.RollupMass != 16 {
		t.Errorf("Expected rollup 16, got %g", root.RollupMass)
	}
}

func TestParseUploadGBKText(t *testing.T) {
	lines := []string{
		"1\tWT01\t部件本体\t1\t\t\t\t",
		"2\tWT01.1\t底板\t2\tQ235\t5\t10\t",
	}
	utf8Text := strings.Join(lines, "\r\n")

	// 上传通道按 GBK 到达
	gbkBytes, _, err := transform.Bytes(simplifiedchinese.GBK.NewEncoder(), []byte(utf8Text))
	if err != nil {
		t.Fatalf("GBK encode failed: %v", err)
	}

	svc := uploadOnlyService()
	result, err := svc.ParseUpload(context.Background(), "", "A.3", "明细表.txt", bytes.NewReader(gbkBytes))
	if err != nil {
		t.Fatalf("ParseUpload failed: %v", err)
	}

	if result.RowCount != 2 || result.PartCount != 2 {
		t.Errorf("Expected 2 rows / 2 parts, got %d / %d", result.RowCount, result.PartCount)
	}
	if result.Data[0].Children[0].Spec != "底板" {
		t.Errorf("GBK decode failed, spec = %q", result.Data[0].Children[0].Spec)
	}
}

func TestParseUploadEmptyFile(t *testing.T) {
	svc := uploadOnlyService()
	_, err := svc.ParseUpload(context.Background(), "", "", "empty.txt", strings.NewReader(""))
	if err == nil {
		t.Fatal("Expected error for empty upload")
	}
}

func TestParseUploadDefaultBaseWtcode(t *testing.T) {
	svc := uploadOnlyService()
	result, err := svc.ParseUpload(context.Background(), "", "", "明细表.txt", strings.NewReader("1\tWT01\t部件本体\t1\t\t\t\t"))
	if err != nil {
		t.Fatalf("ParseUpload failed: %v", err)
	}
	// 未指定部件编号时取首行代号
	if result.Data[0].Wtcode != "WT01" {
		t.Errorf("Expected default base wtcode WT01, got %q", result.Data[0].Wtcode)
	}
}

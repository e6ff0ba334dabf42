package service

import (
	"fmt"
	"strconv"
	"strings"
)

// ImportRow 上传明细的规范化行。数值字段过了这一层只会是已校验的数值，
// 不再出现字符串/数字混用。x、y 为板材排样坐标，仅透传。
type ImportRow struct {
	Seq        string  `json:"seq"`
	Wtcode     string  `json:"wtcode"`
	ParentCode string  `json:"parent_code"` // 所属部件的 wtcode，空时按 wtcode 前缀推导
	Code       string  `json:"code"`
	Spec       string  `json:"spec"`
	Count      int     `json:"count"`
	Material   string  `json:"material"`
	UnitMass   float64 `json:"unit_mass"`
	TotalMass  float64 `json:"total_mass"`
	Remark     string  `json:"remark"`
	X          string  `json:"x"`
	Y          string  `json:"y"`
}

// 上传表格的列序，对齐图纸明细表：序号 代号 规格 数量 材料 单重 总重 备注 x y
const (
	colSeq = iota
	colCode
	colSpec
	colCount
	colMaterial
	colUnitMass
	colTotalMass
	colRemark
	colX
	colY
)

// ParseRows 把松散类型的原始行转成 ImportRow。单行问题降级为告警继续，
// 只有整批为空时返回 ErrEmptyUpload。
func ParseRows(raw [][]string) ([]ImportRow, []string, error) {
	var warnings []string

	rows := make([]ImportRow, 0, len(raw))
	for i, fields := range raw {
		if len(fields) == 0 || isBlankRow(fields) {
			continue
		}
		if i == 0 && isHeaderRow(fields) {
			continue
		}

		row := ImportRow{
			Seq:      cell(fields, colSeq),
			Code:     strings.TrimSpace(cell(fields, colCode)),
			Spec:     strings.TrimSpace(cell(fields, colSpec)),
			Material: strings.TrimSpace(cell(fields, colMaterial)),
			Remark:   strings.TrimSpace(cell(fields, colRemark)),
			X:        strings.TrimSpace(cell(fields, colX)),
			Y:        strings.TrimSpace(cell(fields, colY)),
		}

		if row.Code == "" {
			warnings = append(warnings, fmt.Sprintf("%s第%d行缺少代号，已跳过 %v", msgErrPrefix, i+1, fields))
			continue
		}

		row.Count = parseCount(cell(fields, colCount))
		row.UnitMass = parseMass(cell(fields, colUnitMass))
		row.TotalMass = parseMass(cell(fields, colTotalMass))

		warnings = append(warnings, fixupMasses(&row)...)
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, warnings, ErrEmptyUpload
	}
	return rows, warnings, nil
}

// fixupMasses 数值自洽检查，沿用图纸明细的容错口径
func fixupMasses(row *ImportRow) []string {
	var warnings []string

	if row.Count == 0 {
		warnings = append(warnings, fmt.Sprintf("%s数量不能为0 %s %s", msgErrPrefix, row.Code, row.Spec))
	}
	if row.UnitMass == 0 {
		if row.TotalMass != 0 {
			if row.Count == 1 {
				row.UnitMass = row.TotalMass
			} else {
				warnings = append(warnings, fmt.Sprintf("%s单位重量不能为0 %s %s", msgErrPrefix, row.Code, row.Spec))
			}
		}
	} else if row.TotalMass == 0 {
		warnings = append(warnings, fmt.Sprintf("%s总重量不能为0 %s %s", msgErrPrefix, row.Code, row.Spec))
	}
	return warnings
}

func cell(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}

func isBlankRow(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// isHeaderRow 首行是表头时跳过（数量列不是数字即认为是表头）
func isHeaderRow(fields []string) bool {
	count := strings.TrimSpace(cell(fields, colCount))
	if count == "" {
		return false
	}
	_, err := strconv.ParseFloat(count, 64)
	return err != nil
}

// parseCount 宽容解析数量，接受 "3"、"3.0"、空串
func parseCount(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

// parseMass 宽容解析重量，空串和非法值归零
func parseMass(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return 0
}

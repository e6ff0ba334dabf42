package service

import (
	"fmt"
)

// 行级调和结果
const (
	ActionCreate   = "create"
	ActionUpdate   = "update"
	ActionRejected = "rejected"
)

// Resolution 一条去重后的零件及其落库动作
type Resolution struct {
	Row        ImportRow `json:"row"`
	Action     string    `json:"action"`
	ExistingID uint      `json:"existing_id,omitempty"` // update 时带上目录里的ID
	MergedRows int       `json:"merged_rows,omitempty"` // 并入本条的重复行数
	Reason     string    `json:"reason,omitempty"`      // rejected 时的原因
}

// Reconcile 按批次顺序调和每一行：
//  1. 同批内代号重复 → 数量并入首现行并重算总重，首现行的规格/材料/备注
//     优先，后续冲突降级为告警；
//  2. 目录里已有该代号 → update，带上已有ID并沿用已有万通码；
//  3. 都没有 → create。
//
// 层级校验依赖去重后的集合，所以必须先跑完调和再构建层级。
func Reconcile(projectCode string, rows []ImportRow, ix *CatalogIndex) ([]*Resolution, []string) {
	var warnings []string

	resolutions := make([]*Resolution, 0, len(rows))
	byCode := make(map[string]*Resolution, len(rows))

	for _, row := range rows {
		if prev, ok := byCode[row.Code]; ok {
			// 同批重复：数量累加，首现行其余字段获胜
			prev.Row.Count += row.Count
			prev.Row.TotalMass = prev.Row.UnitMass * float64(prev.Row.Count)
			prev.MergedRows++
			warnings = append(warnings, fmt.Sprintf("%s代号 %s 重复出现，数量并入首次出现行（现数量 %d）",
				msgInfoPrefix, row.Code, prev.Row.Count))
			if row.Spec != "" && row.Spec != prev.Row.Spec {
				warnings = append(warnings, fmt.Sprintf("%s代号 %s 重复行规格不一致（%s / %s），以首次出现为准",
					msgErrPrefix, row.Code, prev.Row.Spec, row.Spec))
			}
			continue
		}

		res := &Resolution{Row: row, Action: ActionCreate}
		res.Row.TotalMass = res.Row.UnitMass * float64(res.Row.Count)
		if existing := ix.LookupPart(projectCode, row.Code); existing != nil {
			res.Action = ActionUpdate
			res.ExistingID = existing.ID
			// 万通码是身份标识，更新沿用目录里的
			res.Row.Wtcode = existing.Wtcode
		}
		byCode[row.Code] = res
		resolutions = append(resolutions, res)
	}

	return resolutions, warnings
}

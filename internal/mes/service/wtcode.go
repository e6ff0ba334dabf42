package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// 万通码生成：图纸明细的代号（如 WT01.2.3）按行序做相邻比较，推导出
// 每行在部件结构里的万通码。购买件挂在合成的"外购件汇总"节点下。

var codeSeqPattern = regexp.MustCompile(`\d+`)

// standardCode 标准化代号：去空白，- 和 / 统一为 .
func standardCode(code string) string {
	code = strings.TrimSpace(code)
	code = strings.ReplaceAll(code, "-", ".")
	code = strings.ReplaceAll(code, "/", ".")
	return code
}

// isCompCode 是否是专用件代号（以部件基准代号为前缀）
func isCompCode(baseCode, code string) bool {
	return strings.HasPrefix(code, baseCode)
}

// codeSeq 取代号段里的第一个数字，取不到按0
func codeSeq(code string) int {
	m := codeSeqPattern.FindString(code)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

// childCode 下一级连续子码
func childCode(code string) string {
	return code + ".1"
}

// nextPeerCode 下一个连续同级码
func nextPeerCode(code string) string {
	parts := strings.Split(code, ".")
	parts[len(parts)-1] = strconv.Itoa(codeSeq(parts[len(parts)-1]) + 1)
	return strings.Join(parts, ".")
}

// nextUpCode 回升 index 级后的下一个码
func nextUpCode(code string, index int) string {
	parts := strings.Split(code, ".")
	if len(parts) == 1 {
		return nextPeerCode(code)
	}
	if index >= len(parts) {
		index = len(parts) - 1
	}
	cut := len(parts) - index
	next := strconv.Itoa(codeSeq(parts[cut]) + 1)
	return strings.Join(append(parts[:cut], next), ".")
}

// firstBuyCode 第一个外购件汇总节点的万通码（部件下一个顶层段）
func firstBuyCode(code string) string {
	parts := strings.Split(code, ".")
	if len(parts) < 3 {
		return code + ".1"
	}
	return strings.Join(parts[0:2], ".") + "." + strconv.Itoa(codeSeq(parts[2])+1)
}

// generateWtcode 比较相邻两个代号的层级关系，给出当前行的万通码
func generateWtcode(prevWtcode, prevCode, currCode string) string {
	prevParts := strings.Split(standardCode(prevCode), ".")
	currParts := strings.Split(standardCode(currCode), ".")

	switch {
	case len(currParts) == len(prevParts):
		// 同级：完全相等、连续、不连续都推进同级序号
		return nextPeerCode(prevWtcode)
	case len(currParts) > len(prevParts):
		// 下级（连续或跳号）
		return childCode(prevWtcode)
	default:
		// 回升若干级
		up := len(prevParts) - len(currParts) + 1
		return nextUpCode(prevWtcode, up)
	}
}

// splitRows 按最后一个专用件把明细分割成专用件和外购件两段
func splitRows(baseCode string, rows []ImportRow) (dedicated, buy []ImportRow) {
	i := len(rows) - 1
	for ; i > 0; i-- {
		if isCompCode(baseCode, rows[i].Code) {
			break
		}
	}
	return rows[:i+1], rows[i+1:]
}

// removeForeign 删除混进专用件段的外购件行
func removeForeign(baseCode string, dedicated []ImportRow) ([]ImportRow, []string) {
	var info []string
	kept := dedicated[:0]
	for _, row := range dedicated {
		if isCompCode(baseCode, row.Code) {
			kept = append(kept, row)
			continue
		}
		info = append(info, fmt.Sprintf("%s删除专用件明细表中的外购件 %s %s", msgInfoPrefix, row.Code, row.Spec))
	}
	return kept, info
}

// AssignWtcodes 为整批明细生成万通码。第一行视作部件本体，baseWtcode
// 是该部件的万通码（部件编号）。返回重排后的行和提示清单。
func AssignWtcodes(baseWtcode string, rows []ImportRow) ([]ImportRow, []string) {
	if len(rows) == 0 {
		return rows, nil
	}

	var info []string

	// 代号先统一标准化，后续的层级比较都基于标准形
	for i := range rows {
		rows[i].Code = standardCode(rows[i].Code)
	}
	baseCode := rows[0].Code

	dedicated, buy := splitRows(baseCode, rows)
	info = append(info, fmt.Sprintf("%s零件数量共%d件，其中专用件%d件，外购件%d件",
		msgInfoPrefix, len(rows), len(dedicated), len(buy)))

	dedicated, removed := removeForeign(baseCode, dedicated)
	info = append(info, removed...)

	dedicated[0].Wtcode = baseWtcode
	for m := 1; m < len(dedicated); m++ {
		dedicated[m].Wtcode = generateWtcode(dedicated[m-1].Wtcode, dedicated[m-1].Code, dedicated[m].Code)
		if dedicated[m].Code == dedicated[0].Code {
			info = append(info, fmt.Sprintf("%s部件编码重复 (%s %s %g), (%s %s %g)",
				msgErrPrefix,
				dedicated[m].Code, dedicated[m].Spec, dedicated[m].TotalMass,
				dedicated[0].Code, dedicated[0].Spec, dedicated[0].TotalMass))
		}
	}
	info = append(info, fmt.Sprintf("%s专用件列表还剩 %d 件", msgInfoPrefix, len(dedicated)))

	if len(buy) == 0 {
		return dedicated, info
	}

	// 给所有外购件加一个合成上级，再顺序编码
	summary := ImportRow{Spec: "外购件汇总", Count: 1}
	summary.Wtcode = firstBuyCode(dedicated[len(dedicated)-1].Wtcode)
	buy = append([]ImportRow{summary}, buy...)
	buy[1].Wtcode = childCode(buy[0].Wtcode)
	for n := 2; n < len(buy); n++ {
		buy[n].Wtcode = nextPeerCode(buy[n-1].Wtcode)
	}

	return append(dedicated, buy...), info
}

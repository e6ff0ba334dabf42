package service

import (
	"github.com/shange6/wantong/internal/mes/entity"
)

// CatalogIndex 导入会话的目录快照：按 (project_code, code) 索引零件、
// 按 (project_code, wtcode) 索引部件。每个会话从当前目录整建一次，
// 会话期间只读，保证调和阶段看不到半提交的上一次导入。
type CatalogIndex struct {
	parts      map[string]*entity.Part
	components map[string]*entity.Component
}

func catalogKey(projectCode, code string) string {
	return projectCode + "\x00" + code
}

// NewCatalogIndex 从目录快照构建索引
func NewCatalogIndex(components []entity.Component, parts []entity.Part) *CatalogIndex {
	ix := &CatalogIndex{
		parts:      make(map[string]*entity.Part, len(parts)),
		components: make(map[string]*entity.Component, len(components)),
	}
	for i := range parts {
		p := &parts[i]
		ix.parts[catalogKey(p.ProjectCode, p.Code)] = p
	}
	for i := range components {
		c := &components[i]
		ix.components[catalogKey(c.ProjectCode, c.Wtcode)] = c
	}
	return ix
}

// LookupPart 项目内按代号查零件，没有返回 nil
func (ix *CatalogIndex) LookupPart(projectCode, code string) *entity.Part {
	return ix.parts[catalogKey(projectCode, code)]
}

// LookupComponentByWtcode 项目内按万通码查部件，没有返回 nil
func (ix *CatalogIndex) LookupComponentByWtcode(projectCode, wtcode string) *entity.Component {
	return ix.components[catalogKey(projectCode, wtcode)]
}

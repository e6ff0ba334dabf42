package entity

// Part 零件，从板材下料的物理件；parent_code 指向所属部件的 wtcode（跨实体关联）
type Part struct {
	Model
	ProjectCode string  `json:"project_code" gorm:"size:64;not null;index:idx_parts_project_code"`
	ParentCode  string  `json:"parent_code" gorm:"size:64;index"` // 部件 wtcode
	Wtcode      string  `json:"wtcode" gorm:"size:64;not null;uniqueIndex"`
	Code        string  `json:"code" gorm:"size:64;index:idx_parts_project_code"`
	Spec        string  `json:"spec" gorm:"size:255"`
	Count       int     `json:"count"`
	Material    string  `json:"material" gorm:"size:255"`
	UnitMass    float64 `json:"unit_mass"`
	TotalMass   float64 `json:"total_mass"`
	Remark      string  `json:"remark" gorm:"size:500"`
	X           string  `json:"x" gorm:"size:32"` // 板材排样坐标，仅透传
	Y           string  `json:"y" gorm:"size:32"`

	// Children 是按 parent_code 分组的展示层聚合，不是存储关系
	Children []*Part `json:"children,omitempty" gorm:"-"`
}

func (Part) TableName() string {
	return "projects_parts"
}

// RecalcTotalMass 保持 total_mass == unit_mass × count
func (p *Part) RecalcTotalMass() {
	p.TotalMass = p.UnitMass * float64(p.Count)
}

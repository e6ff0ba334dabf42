package entity

// Component 部件，归属唯一项目；wtcode（万通码）是工序分组的结构标识
type Component struct {
	Model
	ProjectCode string  `json:"project_code" gorm:"size:64;not null;index:idx_components_project_code"`
	ParentCode  string  `json:"parent_code" gorm:"size:64"` // 上级部件编码，顶层为空
	Wtcode      string  `json:"wtcode" gorm:"size:64;not null;uniqueIndex"`
	Code        string  `json:"code" gorm:"size:64;index:idx_components_project_code"` // 代号，项目内唯一
	Name        string  `json:"name" gorm:"size:255"`
	Spec        string  `json:"spec" gorm:"size:255"`
	Count       int     `json:"count"`
	Material    string  `json:"material" gorm:"size:255"`
	UnitMass    float64 `json:"unit_mass"`
	TotalMass   float64 `json:"total_mass"`
	Remark      string  `json:"remark" gorm:"size:500"`
}

func (Component) TableName() string {
	return "projects_components"
}

package entity

// Project 项目（所有部件/零件层级的根）
type Project struct {
	Model
	Code string `json:"code" gorm:"size:64;not null;uniqueIndex"` // 项目编码，被子级引用后不可变
	Name string `json:"name" gorm:"size:255"`
	No   string `json:"no" gorm:"size:64;index"` // 合同号
}

func (Project) TableName() string {
	return "projects_project"
}

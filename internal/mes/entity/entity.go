package entity

import "time"

// Model 实体公共字段（对齐历史表结构的 created_time/updated_time 列名）
type Model struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	CreatedTime time.Time `json:"created_time" gorm:"column:created_time;autoCreateTime"`
	UpdatedTime time.Time `json:"updated_time" gorm:"column:updated_time;autoUpdateTime"`
}

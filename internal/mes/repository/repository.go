package repository

import (
	"errors"

	"gorm.io/gorm"
)

// 错误定义
var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 仓库集合
type Repositories struct {
	Project   *ProjectRepository
	Component *ComponentRepository
	Part      *PartRepository
	Order     *OrderRepository

	db *gorm.DB
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Project:   NewProjectRepository(db),
		Component: NewComponentRepository(db),
		Part:      NewPartRepository(db),
		Order:     NewOrderRepository(db),
		db:        db,
	}
}

// DB 返回底层连接
func (r *Repositories) DB() *gorm.DB {
	return r.db
}

// WithTx 返回绑定到事务的仓库集合，导入提交用它保证全有或全无
func (r *Repositories) WithTx(tx *gorm.DB) *Repositories {
	return NewRepositories(tx)
}

package entity

import (
	"fmt"
	"time"
)

// Stage 生产工序，固定五道且严格有序
type Stage int

const (
	StageBlanking  Stage = iota // 下料
	StageRivetWeld              // 铆焊
	StageMachine                // 机加
	StageFitting                // 装配
	StagePainting               // 喷漆

	stageCount = 5
)

var stageNames = [stageCount]string{"blanking", "rivetweld", "machine", "fitting", "painting"}

var stageLabels = [stageCount]string{"下料", "铆焊", "机加", "装配", "喷漆"}

func (s Stage) Valid() bool {
	return s >= StageBlanking && s <= StagePainting
}

func (s Stage) String() string {
	if !s.Valid() {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// Label 工序中文名
func (s Stage) Label() string {
	if !s.Valid() {
		return s.String()
	}
	return stageLabels[s]
}

// Stages 按工艺顺序返回全部工序
func Stages() [stageCount]Stage {
	return [stageCount]Stage{StageBlanking, StageRivetWeld, StageMachine, StageFitting, StagePainting}
}

// ParseStage 解析工序名（下料/blanking 等），无效时返回 false
func ParseStage(name string) (Stage, bool) {
	for i, n := range stageNames {
		if n == name || stageLabels[i] == name {
			return Stage(i), true
		}
	}
	return 0, false
}

// StageOrderViolation 工序乱序：前道未完成不能报完工，后道已完成不能撤销
type StageOrderViolation struct {
	Stage    Stage
	Blocking Stage // 造成冲突的工序
	Undo     bool  // true 表示撤销被拒绝
}

func (e *StageOrderViolation) Error() string {
	if e.Undo {
		return fmt.Sprintf("后道工序 %s 已完工，不能撤销 %s", e.Blocking.Label(), e.Stage.Label())
	}
	return fmt.Sprintf("前道工序 %s 未完工，不能完成 %s", e.Blocking.Label(), e.Stage.Label())
}

// StageRecord 单道工序的完工记录
type StageRecord struct {
	Completed  bool       `json:"completed"`
	Time       *time.Time `json:"time,omitempty"`
	User       string     `json:"user,omitempty" gorm:"size:64"`
	LaborHours *float64   `json:"labor_hours,omitempty"`
}

// OrderItem 订单明细，导入流水线按解析后的零件落点生成（每个 wtcode 一条）
type OrderItem struct {
	Model
	ProjectCode string  `json:"project_code" gorm:"size:64;not null;index:idx_orders_project_code"`
	Wtcode      string  `json:"wtcode" gorm:"size:64;not null;uniqueIndex"`
	Code        string  `json:"code" gorm:"size:64;index:idx_orders_project_code"`
	Spec        string  `json:"spec" gorm:"size:255"`
	Count       int     `json:"count"`
	Material    string  `json:"material" gorm:"size:255"`
	UnitMass    float64 `json:"unit_mass"`
	TotalMass   float64 `json:"total_mass"`
	Remark      string  `json:"remark" gorm:"size:500"`

	Blanking  StageRecord `json:"blanking" gorm:"embedded;embeddedPrefix:blanking_"`
	RivetWeld StageRecord `json:"rivetweld" gorm:"embedded;embeddedPrefix:rivetweld_"`
	Machine   StageRecord `json:"machine" gorm:"embedded;embeddedPrefix:machine_"`
	Fitting   StageRecord `json:"fitting" gorm:"embedded;embeddedPrefix:fitting_"`
	Painting  StageRecord `json:"painting" gorm:"embedded;embeddedPrefix:painting_"`
}

func (OrderItem) TableName() string {
	return "orders_components"
}

// stageRecord 返回指定工序记录的指针
func (o *OrderItem) stageRecord(s Stage) *StageRecord {
	switch s {
	case StageBlanking:
		return &o.Blanking
	case StageRivetWeld:
		return &o.RivetWeld
	case StageMachine:
		return &o.Machine
	case StageFitting:
		return &o.Fitting
	case StagePainting:
		return &o.Painting
	}
	return nil
}

// StageRecordOf 只读取指定工序的完工记录
func (o *OrderItem) StageRecordOf(s Stage) StageRecord {
	if r := o.stageRecord(s); r != nil {
		return *r
	}
	return StageRecord{}
}

// MarkComplete 报完工。前置条件：之前所有工序均已完工，否则返回
// StageOrderViolation 且不做任何修改。at 为空时取当前时间。
func (o *OrderItem) MarkComplete(stage Stage, user string, laborHours *float64, at *time.Time) error {
	if !stage.Valid() {
		return fmt.Errorf("无效的工序: %d", int(stage))
	}
	for s := StageBlanking; s < stage; s++ {
		if !o.stageRecord(s).Completed {
			return &StageOrderViolation{Stage: stage, Blocking: s}
		}
	}

	t := time.Now()
	if at != nil {
		t = *at
	}
	rec := o.stageRecord(stage)
	rec.Completed = true
	rec.Time = &t
	rec.User = user
	rec.LaborHours = laborHours
	o.UpdatedTime = time.Now()
	return nil
}

// MarkIncomplete 撤销完工，用于纠正录入错误。后道工序已完工时拒绝撤销。
func (o *OrderItem) MarkIncomplete(stage Stage) error {
	if !stage.Valid() {
		return fmt.Errorf("无效的工序: %d", int(stage))
	}
	for s := stage + 1; s <= StagePainting; s++ {
		if o.stageRecord(s).Completed {
			return &StageOrderViolation{Stage: stage, Blocking: s, Undo: true}
		}
	}

	rec := o.stageRecord(stage)
	rec.Completed = false
	rec.Time = nil
	rec.User = ""
	rec.LaborHours = nil
	o.UpdatedTime = time.Now()
	return nil
}

// IsFullyComplete 五道工序是否全部完工（删除保护等策略由调用方取用）
func (o *OrderItem) IsFullyComplete() bool {
	for _, s := range Stages() {
		if !o.stageRecord(s).Completed {
			return false
		}
	}
	return true
}

package entity

import (
	"errors"
	"testing"
	"time"
)

func hours(v float64) *float64 { return &v }

func TestMarkCompleteInOrder(t *testing.T) {
	item := &OrderItem{Wtcode: "A.1", Code: "WT-01.00.01"}

	now := time.Now()
	for _, s := range Stages() {
		if err := item.MarkComplete(s, "张工", hours(2), &now); err != nil {
			t.Fatalf("MarkComplete(%s) failed: %v", s, err)
		}
	}

	if !item.IsFullyComplete() {
		t.Error("Expected item to be fully complete")
	}
	rec := item.StageRecordOf(StagePainting)
	if rec.User != "张工" || rec.LaborHours == nil || *rec.LaborHours != 2 {
		t.Errorf("Unexpected painting record: %+v", rec)
	}
}

func TestMarkCompleteSkipRejected(t *testing.T) {
	item := &OrderItem{Wtcode: "A.1"}

	err := item.MarkComplete(StageMachine, "李工", nil, nil)
	var violation *StageOrderViolation
	if !errors.As(err, &violation) {
		t.Fatalf("Expected StageOrderViolation, got %v", err)
	}
	if violation.Stage != StageMachine || violation.Blocking != StageBlanking {
		t.Errorf("Unexpected violation: %+v", violation)
	}

	// 被拒绝的标记不能留下任何痕迹
	if item.StageRecordOf(StageMachine).Completed {
		t.Error("Rejected mark must not mutate the record")
	}
	if item.StageRecordOf(StageMachine).Time != nil {
		t.Error("Rejected mark must not set a timestamp")
	}
}

func TestMarkCompleteIdempotent(t *testing.T) {
	item := &OrderItem{Wtcode: "A.1"}

	if err := item.MarkComplete(StageBlanking, "王工", nil, nil); err != nil {
		t.Fatalf("First mark failed: %v", err)
	}
	first := item.StageRecordOf(StageBlanking)

	// 重复报完工不报错，记录按最新一次刷新
	if err := item.MarkComplete(StageBlanking, "赵工", hours(1.5), nil); err != nil {
		t.Fatalf("Repeated mark failed: %v", err)
	}
	second := item.StageRecordOf(StageBlanking)
	if !second.Completed || second.User != "赵工" {
		t.Errorf("Expected refreshed record, got %+v", second)
	}
	if first.User == second.User {
		t.Error("Record should have been overwritten by the second mark")
	}
}

func TestMarkIncompleteBlockedByLaterStage(t *testing.T) {
	item := &OrderItem{Wtcode: "A.1"}
	for _, s := range []Stage{StageBlanking, StageRivetWeld, StageMachine} {
		if err := item.MarkComplete(s, "", nil, nil); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}

	err := item.MarkIncomplete(StageRivetWeld)
	var violation *StageOrderViolation
	if !errors.As(err, &violation) {
		t.Fatalf("Expected StageOrderViolation, got %v", err)
	}
	if !violation.Undo || violation.Blocking != StageMachine {
		t.Errorf("Unexpected violation: %+v", violation)
	}

	// 先撤最后一道，再撤前一道就放行
	if err := item.MarkIncomplete(StageMachine); err != nil {
		t.Fatalf("MarkIncomplete(machine) failed: %v", err)
	}
	if err := item.MarkIncomplete(StageRivetWeld); err != nil {
		t.Fatalf("MarkIncomplete(rivetweld) failed: %v", err)
	}
	if item.StageRecordOf(StageRivetWeld).Completed {
		t.Error("Stage should be incomplete after undo")
	}
}

func TestParseStage(t *testing.T) {
	cases := []struct {
		in   string
		want Stage
		ok   bool
	}{
		{"blanking", StageBlanking, true},
		{"下料", StageBlanking, true},
		{"喷漆", StagePainting, true},
		{"painting", StagePainting, true},
		{"抛光", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseStage(c.in)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("ParseStage(%q) = (%v, %v), want (%v, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestStageOrderViolationMessage(t *testing.T) {
	forward := &StageOrderViolation{Stage: StageFitting, Blocking: StageMachine}
	if forward.Error() == "" {
		t.Error("Expected non-empty message")
	}
	undo := &StageOrderViolation{Stage: StageBlanking, Blocking: StageRivetWeld, Undo: true}
	if undo.Error() == forward.Error() {
		t.Error("Undo violation should read differently")
	}
}

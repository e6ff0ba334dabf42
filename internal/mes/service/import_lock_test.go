package service

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryLockerMutualExclusion(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "P-001")
	if err != nil {
		t.Fatalf("First acquire failed: %v", err)
	}

	// 同一项目的第二个会话直接拿到冲突
	_, err = locker.Acquire(ctx, "P-001")
	var conflict *ConcurrentImportConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("Expected ConcurrentImportConflict, got %v", err)
	}
	if conflict.ProjectCode != "P-001" {
		t.Errorf("Unexpected project in conflict: %q", conflict.ProjectCode)
	}

	// 不同项目互不影响
	release2, err := locker.Acquire(ctx, "P-002")
	if err != nil {
		t.Fatalf("Acquire on another project failed: %v", err)
	}
	release2()

	// 释放后可重新获取
	release()
	release3, err := locker.Acquire(ctx, "P-001")
	if err != nil {
		t.Fatalf("Acquire after release failed: %v", err)
	}
	release3()
}

package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/shange6/wantong/internal/config"
	"github.com/shange6/wantong/internal/mes/repository"
	"github.com/shange6/wantong/internal/mes/service"
	"github.com/shange6/wantong/internal/mes/testutil"
	"go.uber.org/zap"
)

func setupDataTest(t *testing.T) (*testutil.TestEnv, service.ProjectLocker) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	router := testutil.SetupRouter()

	repos := repository.NewRepositories(db)
	locker := service.NewMemoryLocker()
	importSvc := service.NewImportService(repos, locker, zap.NewNop())
	storageSvc := service.NewStorageService(nil, "", zap.NewNop())

	cfg := &config.Config{}
	cfg.Import.MaxUploadSize = 100 << 20

	h := NewDataHandler(importSvc, storageSvc, cfg)
	api := testutil.AuthGroup(router, "/api/v1")
	api.POST("/data/upload", h.Upload)
	api.POST("/data/commit", h.Commit)

	return &testutil.TestEnv{DB: db, Router: router, T: t}, locker
}

func commitPayload() map[string]interface{} {
	return map[string]interface{}{
		"project": map[string]interface{}{
			"code": "P-200", "name": "试验台项目", "no": "HT-2024-200",
		},
		"component": map[string]interface{}{
			"wtcode": "A.3", "code": "WT01", "name": "机架", "count": 1,
		},
		"parts": []map[string]interface{}{
			{"code": "WT01.1", "wtcode": "A.3.1", "spec": "底板", "count": 2, "unit_mass": 5},
			{"code": "WT99.9", "wtcode": "Z.9.9", "spec": "孤儿行", "count": 1, "unit_mass": 1},
		},
	}
}

func TestCommitHTTPFlow(t *testing.T) {
	env, _ := setupDataTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/data/commit", commitPayload(), token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["parts_created"].(float64) != 1 {
		t.Errorf("Expected 1 part created, got %v", data["parts_created"])
	}
	if data["parts_rejected"].(float64) != 1 {
		t.Errorf("Expected 1 part rejected, got %v", data["parts_rejected"])
	}
}

func TestCommitConflictReturns409(t *testing.T) {
	env, locker := setupDataTest(t)
	token := testutil.DefaultTestToken()

	release, err := locker.Acquire(context.Background(), "P-200")
	if err != nil {
		t.Fatalf("Lock setup failed: %v", err)
	}
	defer release()

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/data/commit", commitPayload(), token)
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCommitMissingProjectCode(t *testing.T) {
	env, _ := setupDataTest(t)
	token := testutil.DefaultTestToken()

	payload := commitPayload()
	payload["project"] = map[string]interface{}{"code": ""}

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/data/commit", payload, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

package handler

import (
	"net/http"
	"testing"

	"github.com/shange6/wantong/internal/mes/entity"
	"github.com/shange6/wantong/internal/mes/repository"
	"github.com/shange6/wantong/internal/mes/service"
	"github.com/shange6/wantong/internal/mes/testutil"
)

func setupOrderTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	router := testutil.SetupRouter()

	repos := repository.NewRepositories(db)
	orderSvc := service.NewOrderService(repos.Order, repos.Component)
	h := NewOrderHandler(orderSvc)

	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/orders", h.List)
	api.POST("/orders/stage/mark", h.MarkStage)
	api.POST("/orders/stage/unmark", h.UnmarkStage)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func TestMarkStageHTTPFlow(t *testing.T) {
	env := setupOrderTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedProject(t, env.DB, "P-001", "试验台项目", "HT-001")
	testutil.SeedOrderItem(t, env.DB, "P-001", "A.3.1", "WT01.1", 2)

	// 按工艺顺序报完工
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/orders/stage/mark",
		map[string]interface{}{"wtcode": "A.3.1", "stage": "下料", "labor_hours": 2.5}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var item entity.OrderItem
	if err := env.DB.Where("wtcode = ?", "A.3.1").First(&item).Error; err != nil {
		t.Fatalf("Order item lookup failed: %v", err)
	}
	rec := item.StageRecordOf(entity.StageBlanking)
	if !rec.Completed || rec.User != "测试管理员" {
		t.Errorf("Unexpected blanking record: %+v", rec)
	}
}

func TestMarkStageSkipReturnsConflict(t *testing.T) {
	env := setupOrderTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedProject(t, env.DB, "P-001", "试验台项目", "HT-001")
	testutil.SeedOrderItem(t, env.DB, "P-001", "A.3.1", "WT01.1", 2)

	// 跳过下料直接报机加
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/orders/stage/mark",
		map[string]interface{}{"wtcode": "A.3.1", "stage": "机加"}, token)
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409, got %d: %s", w.Code, w.Body.String())
	}

	// 被拒绝的标记在库里不能留下痕迹
	var item entity.OrderItem
	env.DB.Where("wtcode = ?", "A.3.1").First(&item)
	if item.StageRecordOf(entity.StageMachine).Completed {
		t.Error("Rejected mark must not be persisted")
	}
}

func TestUnmarkStageBlockedByLaterStage(t *testing.T) {
	env := setupOrderTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedProject(t, env.DB, "P-001", "试验台项目", "HT-001")
	testutil.SeedOrderItem(t, env.DB, "P-001", "A.3.1", "WT01.1", 2)

	for _, stage := range []string{"下料", "铆焊"} {
		w := testutil.DoRequest(env.Router, "POST", "/api/v1/orders/stage/mark",
			map[string]interface{}{"wtcode": "A.3.1", "stage": stage}, token)
		if w.Code != http.StatusOK {
			t.Fatalf("Mark %s failed: %d %s", stage, w.Code, w.Body.String())
		}
	}

	// 后道已完工，撤销前道被拒
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/orders/stage/unmark",
		map[string]interface{}{"wtcode": "A.3.1", "stage": "下料"}, token)
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409, got %d: %s", w.Code, w.Body.String())
	}

	// 先撤后道则放行
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/orders/stage/unmark",
		map[string]interface{}{"wtcode": "A.3.1", "stage": "铆焊"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestMarkStageUnknownItem(t *testing.T) {
	env := setupOrderTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/orders/stage/mark",
		map[string]interface{}{"wtcode": "NO-SUCH", "stage": "下料"}, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestListOrdersRequiresAuth(t *testing.T) {
	env := setupOrderTest(t)

	w := testutil.DoRequest(env.Router, "GET", "/api/v1/orders", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", w.Code)
	}
}
